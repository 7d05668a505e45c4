package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/JoshTheCodre/myqitt-sub000/internal/model"
)

// SchoolRepository 学校/院系数据访问接口
type SchoolRepository interface {
	List(ctx context.Context) ([]model.School, error)
	GetByID(ctx context.Context, id string) (*model.School, error)
}

// schoolRepo SchoolRepository 的 GORM 实现
type schoolRepo struct {
	db *gorm.DB
}

// NewSchoolRepo 创建 SchoolRepository 实例
func NewSchoolRepo(db *gorm.DB) SchoolRepository {
	return &schoolRepo{db: db}
}

func (r *schoolRepo) List(ctx context.Context) ([]model.School, error) {
	var schools []model.School
	err := r.db.WithContext(ctx).
		Preload("Departments", func(db *gorm.DB) *gorm.DB {
			return db.Order("departments.name ASC")
		}).
		Order("name ASC").
		Find(&schools).Error
	return schools, err
}

func (r *schoolRepo) GetByID(ctx context.Context, id string) (*model.School, error) {
	var school model.School
	err := r.db.WithContext(ctx).
		Preload("Departments").
		Where("school_id = ?", id).
		First(&school).Error
	if err != nil {
		return nil, err
	}
	return &school, nil
}
