package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/JoshTheCodre/myqitt-sub000/internal/model"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	ListByClassGroup(ctx context.Context, group model.ClassGroup) ([]model.User, error)
	DeleteWithDependents(ctx context.Context, id string) error
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", ids).
		Find(&users).Error
	return users, err
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepo) ListByClassGroup(ctx context.Context, group model.ClassGroup) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("school = ? AND department = ? AND level = ? AND semester = ?",
			group.School, group.Department, group.Level, group.Semester).
		Order("name ASC").
		Find(&users).Error
	return users, err
}

// DeleteWithDependents 账号注销：单事务内先删除依赖行再删除用户
// 连接（双向）、课表、提交状态、通知相关行由外键级联覆盖；
// 用户本人创建的作业/变更/公告无级联，需显式删除
func (r *userRepo) DeleteWithDependents(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("created_by = ?", id).Delete(&model.Assignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("created_by = ?", id).Delete(&model.TodaysClass{}).Error; err != nil {
			return err
		}
		if err := tx.Where("created_by = ?", id).Delete(&model.Catchup{}).Error; err != nil {
			return err
		}
		if err := tx.Where("created_by = ?", id).Delete(&model.InviteCode{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", id).Delete(&model.User{}).Error
	})
}
