package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/JoshTheCodre/myqitt-sub000/internal/model"
)

// TimetableRepository 课程表数据访问接口
type TimetableRepository interface {
	ReplaceByUser(ctx context.Context, userID string, entries []model.TimetableEntry) error
	ListByUser(ctx context.Context, userID string) ([]model.TimetableEntry, error)
	ListByUsers(ctx context.Context, userIDs []string) ([]model.TimetableEntry, error)
	ListByUsersAndDay(ctx context.Context, userIDs []string, dayOfWeek int) ([]model.TimetableEntry, error)
	GetByID(ctx context.Context, id string) (*model.TimetableEntry, error)
}

// timetableRepo TimetableRepository 的 GORM 实现
type timetableRepo struct {
	db *gorm.DB
}

// NewTimetableRepo 创建 TimetableRepository 实例
func NewTimetableRepo(db *gorm.DB) TimetableRepository {
	return &timetableRepo{db: db}
}

// ReplaceByUser 全量替换用户课表：单事务内删除旧条目后批量插入
// entries 为空时等价于清空课表
func (r *timetableRepo) ReplaceByUser(ctx context.Context, userID string, entries []model.TimetableEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.TimetableEntry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.CreateInBatches(entries, 100).Error
	})
}

func (r *timetableRepo) ListByUser(ctx context.Context, userID string) ([]model.TimetableEntry, error) {
	var entries []model.TimetableEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("day_of_week ASC, start_time ASC").
		Find(&entries).Error
	return entries, err
}

func (r *timetableRepo) ListByUsers(ctx context.Context, userIDs []string) ([]model.TimetableEntry, error) {
	var entries []model.TimetableEntry
	if len(userIDs) == 0 {
		return entries, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("day_of_week ASC, start_time ASC").
		Find(&entries).Error
	return entries, err
}

func (r *timetableRepo) ListByUsersAndDay(ctx context.Context, userIDs []string, dayOfWeek int) ([]model.TimetableEntry, error) {
	var entries []model.TimetableEntry
	if len(userIDs) == 0 {
		return entries, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id IN ? AND day_of_week = ?", userIDs, dayOfWeek).
		Order("start_time ASC").
		Find(&entries).Error
	return entries, err
}

func (r *timetableRepo) GetByID(ctx context.Context, id string) (*model.TimetableEntry, error) {
	var entry model.TimetableEntry
	err := r.db.WithContext(ctx).
		Where("entry_id = ?", id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
