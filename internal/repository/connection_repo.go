package repository

import (
	"context"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JoshTheCodre/myqitt-sub000/internal/model"
)

// ConnectionRepository 同学连接数据访问接口
type ConnectionRepository interface {
	Upsert(ctx context.Context, conn *model.Connection) error
	GetByID(ctx context.Context, id string) (*model.Connection, error)
	GetByPair(ctx context.Context, followerID, followingID string) (*model.Connection, error)
	UpdateTypes(ctx context.Context, id string, types []string) error
	DeleteByPair(ctx context.Context, followerID, followingID string) error
	ListByFollower(ctx context.Context, followerID string) ([]model.Connection, error)
	ListByFollowing(ctx context.Context, followingID string) ([]model.Connection, error)
}

// connectionRepo ConnectionRepository 的 GORM 实现
type connectionRepo struct {
	db *gorm.DB
}

// NewConnectionRepo 创建 ConnectionRepository 实例
func NewConnectionRepo(db *gorm.DB) ConnectionRepository {
	return &connectionRepo{db: db}
}

// Upsert 创建连接；(follower_id, following_id) 冲突时整体替换授权类型
// 唯一索引保证每个有序对至多一条边
func (r *connectionRepo) Upsert(ctx context.Context, conn *model.Connection) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "follower_id"}, {Name: "following_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"connection_types", "updated_at"}),
		}).
		Create(conn).Error
}

func (r *connectionRepo) GetByID(ctx context.Context, id string) (*model.Connection, error) {
	var conn model.Connection
	err := r.db.WithContext(ctx).
		Where("connection_id = ?", id).
		First(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepo) GetByPair(ctx context.Context, followerID, followingID string) (*model.Connection, error) {
	var conn model.Connection
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepo) UpdateTypes(ctx context.Context, id string, types []string) error {
	return r.db.WithContext(ctx).
		Model(&model.Connection{}).
		Where("connection_id = ?", id).
		Update("connection_types", pq.StringArray(types)).Error
}

func (r *connectionRepo) DeleteByPair(ctx context.Context, followerID, followingID string) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&model.Connection{}).Error
}

func (r *connectionRepo) ListByFollower(ctx context.Context, followerID string) ([]model.Connection, error) {
	var conns []model.Connection
	err := r.db.WithContext(ctx).
		Preload("Following").
		Where("follower_id = ?", followerID).
		Order("created_at ASC").
		Find(&conns).Error
	return conns, err
}

func (r *connectionRepo) ListByFollowing(ctx context.Context, followingID string) ([]model.Connection, error) {
	var conns []model.Connection
	err := r.db.WithContext(ctx).
		Preload("Follower").
		Where("following_id = ?", followingID).
		Order("created_at ASC").
		Find(&conns).Error
	return conns, err
}
