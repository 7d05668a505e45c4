package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/JoshTheCodre/myqitt-sub000/internal/model"
)

// TodaysClassRepository 当日课程变更数据访问接口
type TodaysClassRepository interface {
	Create(ctx context.Context, tc *model.TodaysClass) error
	GetByID(ctx context.Context, id string) (*model.TodaysClass, error)
	Update(ctx context.Context, tc *model.TodaysClass) error
	Delete(ctx context.Context, id string) error
	ListByGroupAndDate(ctx context.Context, group model.ClassGroup, date time.Time) ([]model.TodaysClass, error)
}

// todaysClassRepo TodaysClassRepository 的 GORM 实现
type todaysClassRepo struct {
	db *gorm.DB
}

// NewTodaysClassRepo 创建 TodaysClassRepository 实例
func NewTodaysClassRepo(db *gorm.DB) TodaysClassRepository {
	return &todaysClassRepo{db: db}
}

func (r *todaysClassRepo) Create(ctx context.Context, tc *model.TodaysClass) error {
	return r.db.WithContext(ctx).Create(tc).Error
}

func (r *todaysClassRepo) GetByID(ctx context.Context, id string) (*model.TodaysClass, error) {
	var tc model.TodaysClass
	err := r.db.WithContext(ctx).
		Where("todays_class_id = ?", id).
		First(&tc).Error
	if err != nil {
		return nil, err
	}
	return &tc, nil
}

func (r *todaysClassRepo) Update(ctx context.Context, tc *model.TodaysClass) error {
	return r.db.WithContext(ctx).Save(tc).Error
}

func (r *todaysClassRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("todays_class_id = ?", id).
		Delete(&model.TodaysClass{}).Error
}

func (r *todaysClassRepo) ListByGroupAndDate(ctx context.Context, group model.ClassGroup, date time.Time) ([]model.TodaysClass, error) {
	var classes []model.TodaysClass
	err := r.db.WithContext(ctx).
		Where("school = ? AND department = ? AND level = ? AND semester = ? AND class_date = ?",
			group.School, group.Department, group.Level, group.Semester, date.Format("2006-01-02")).
		Order("start_time ASC").
		Find(&classes).Error
	return classes, err
}
