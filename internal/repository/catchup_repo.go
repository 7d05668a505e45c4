package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/JoshTheCodre/myqitt-sub000/internal/model"
)

// CatchupRepository 公告数据访问接口
type CatchupRepository interface {
	Create(ctx context.Context, catchup *model.Catchup) error
	GetByID(ctx context.Context, id string) (*model.Catchup, error)
	Update(ctx context.Context, catchup *model.Catchup) error
	Delete(ctx context.Context, id string) error
	ListActive(ctx context.Context, now time.Time) ([]model.Catchup, error)
	ListByCreator(ctx context.Context, userID string) ([]model.Catchup, error)
}

// catchupRepo CatchupRepository 的 GORM 实现
type catchupRepo struct {
	db *gorm.DB
}

// NewCatchupRepo 创建 CatchupRepository 实例
func NewCatchupRepo(db *gorm.DB) CatchupRepository {
	return &catchupRepo{db: db}
}

func (r *catchupRepo) Create(ctx context.Context, catchup *model.Catchup) error {
	return r.db.WithContext(ctx).Create(catchup).Error
}

func (r *catchupRepo) GetByID(ctx context.Context, id string) (*model.Catchup, error) {
	var catchup model.Catchup
	err := r.db.WithContext(ctx).
		Where("catchup_id = ?", id).
		First(&catchup).Error
	if err != nil {
		return nil, err
	}
	return &catchup, nil
}

func (r *catchupRepo) Update(ctx context.Context, catchup *model.Catchup) error {
	return r.db.WithContext(ctx).Save(catchup).Error
}

func (r *catchupRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("catchup_id = ?", id).
		Delete(&model.Catchup{}).Error
}

// ListActive 列出未过期公告；投放范围过滤在 Service 层按用户资料完成
func (r *catchupRepo) ListActive(ctx context.Context, now time.Time) ([]model.Catchup, error) {
	var catchups []model.Catchup
	err := r.db.WithContext(ctx).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("created_at DESC").
		Find(&catchups).Error
	return catchups, err
}

func (r *catchupRepo) ListByCreator(ctx context.Context, userID string) ([]model.Catchup, error) {
	var catchups []model.Catchup
	err := r.db.WithContext(ctx).
		Where("created_by = ?", userID).
		Order("created_at DESC").
		Find(&catchups).Error
	return catchups, err
}
