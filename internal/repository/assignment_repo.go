package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JoshTheCodre/myqitt-sub000/internal/model"
)

// AssignmentRepository 作业数据访问接口
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.Assignment) error
	GetByID(ctx context.Context, id string) (*model.Assignment, error)
	Update(ctx context.Context, assignment *model.Assignment) error
	Delete(ctx context.Context, id string) error
	ListByClassGroup(ctx context.Context, group model.ClassGroup) ([]model.Assignment, error)

	GetSubmission(ctx context.Context, assignmentID, userID string) (*model.AssignmentSubmission, error)
	UpsertSubmission(ctx context.Context, sub *model.AssignmentSubmission) error
	ListSubmissionsByUser(ctx context.Context, assignmentIDs []string, userID string) ([]model.AssignmentSubmission, error)
	ListSubmissionsByAssignments(ctx context.Context, assignmentIDs []string) ([]model.AssignmentSubmission, error)
}

// assignmentRepo AssignmentRepository 的 GORM 实现
type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	var assignment model.Assignment
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Where("assignment_id = ?", id).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepo) Update(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

// Delete 删除作业；提交状态行由外键级联一并删除
func (r *assignmentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("assignment_id = ?", id).
		Delete(&model.Assignment{}).Error
}

func (r *assignmentRepo) ListByClassGroup(ctx context.Context, group model.ClassGroup) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Where("school = ? AND department = ? AND level = ? AND semester = ?",
			group.School, group.Department, group.Level, group.Semester).
		Order("due_at ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) GetSubmission(ctx context.Context, assignmentID, userID string) (*model.AssignmentSubmission, error) {
	var sub model.AssignmentSubmission
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND user_id = ?", assignmentID, userID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// UpsertSubmission 写入提交状态；(assignment_id, user_id) 冲突时更新标记
func (r *assignmentRepo) UpsertSubmission(ctx context.Context, sub *model.AssignmentSubmission) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"submitted", "submitted_at", "updated_at"}),
		}).
		Create(sub).Error
}

func (r *assignmentRepo) ListSubmissionsByUser(ctx context.Context, assignmentIDs []string, userID string) ([]model.AssignmentSubmission, error) {
	var subs []model.AssignmentSubmission
	if len(assignmentIDs) == 0 {
		return subs, nil
	}
	err := r.db.WithContext(ctx).
		Where("assignment_id IN ? AND user_id = ?", assignmentIDs, userID).
		Find(&subs).Error
	return subs, err
}

func (r *assignmentRepo) ListSubmissionsByAssignments(ctx context.Context, assignmentIDs []string) ([]model.AssignmentSubmission, error) {
	var subs []model.AssignmentSubmission
	if len(assignmentIDs) == 0 {
		return subs, nil
	}
	err := r.db.WithContext(ctx).
		Where("assignment_id IN ?", assignmentIDs).
		Find(&subs).Error
	return subs, err
}
