package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JoshTheCodre/myqitt-sub000/internal/dto"
	"github.com/JoshTheCodre/myqitt-sub000/internal/model"
	"github.com/JoshTheCodre/myqitt-sub000/internal/repository"
)

// ── 作业模块业务错误 ──

var (
	ErrAssignmentNotFound   = errors.New("assignment not found")
	ErrAssignmentNotCreator = errors.New("only the creator can modify this assignment")
	ErrAssignmentNotRep     = errors.New("only course reps can manage assignments")
)

// AssignmentService 作业业务接口
// 作业按班级共享：创建后全班可见，提交状态按学生独立记录
type AssignmentService interface {
	Create(ctx context.Context, userID string, req *dto.CreateAssignmentRequest) (*dto.AssignmentResponse, error)
	Update(ctx context.Context, id, userID string, req *dto.UpdateAssignmentRequest) (*dto.AssignmentResponse, error)
	Delete(ctx context.Context, id, userID string) error
	Get(ctx context.Context, id, userID string) (*dto.AssignmentResponse, error)
	// List 当前用户班级的全部作业，附带本人提交状态
	List(ctx context.Context, userID string) ([]dto.AssignmentResponse, error)
	// ToggleSubmission 学生切换自己的提交标记
	ToggleSubmission(ctx context.Context, assignmentID, userID string, req *dto.ToggleSubmissionRequest) (*dto.SubmissionResponse, error)
	// ExportSubmissionMatrix 导出全班提交状态矩阵（课代表，xlsx）
	ExportSubmissionMatrix(ctx context.Context, userID string) ([]byte, error)
}

type assignmentService struct {
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(repo *repository.Repository, notifier NotificationService, logger *zap.Logger) AssignmentService {
	return &assignmentService{repo: repo, notifier: notifier, logger: logger}
}

func (s *assignmentService) Create(ctx context.Context, userID string, req *dto.CreateAssignmentRequest) (*dto.AssignmentResponse, error) {
	user, err := s.requireCourseRep(ctx, userID)
	if err != nil {
		return nil, err
	}

	assignment := model.Assignment{
		ClassGroup:     user.Group(),
		Course:         req.Course,
		Title:          req.Title,
		Description:    req.Description,
		DueAt:          req.DueAt,
		AttachmentURLs: req.AttachmentURLs,
		CreatedBy:      userID,
	}
	if assignment.AttachmentURLs == nil {
		assignment.AttachmentURLs = []string{}
	}
	if err := s.repo.Assignment.Create(ctx, &assignment); err != nil {
		s.logger.Error("创建作业失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("作业已创建",
		zap.String("assignment_id", assignment.AssignmentID),
		zap.String("course", assignment.Course),
	)

	// 全班广播，发起者除外；失败仅记录
	relatedType := model.NotificationTypeAssignment
	if nerr := s.notifier.NotifyGroup(ctx, user.Group(), userID, model.NotificationTypeAssignment,
		"New assignment: "+assignment.Title,
		fmt.Sprintf("%s — due %s", assignment.Course, assignment.DueAt.Format("Jan 2, 3:04 PM")),
		&relatedType, &assignment.AssignmentID); nerr != nil {
		s.logger.Warn("作业通知发送失败", zap.Error(nerr))
	}

	resp := toAssignmentResponse(&assignment, nil)
	resp.CreatorName = user.Name
	return &resp, nil
}

func (s *assignmentService) Update(ctx context.Context, id, userID string, req *dto.UpdateAssignmentRequest) (*dto.AssignmentResponse, error) {
	assignment, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Course != nil {
		assignment.Course = *req.Course
	}
	if req.Title != nil {
		assignment.Title = *req.Title
	}
	if req.Description != nil {
		assignment.Description = *req.Description
	}
	if req.DueAt != nil {
		assignment.DueAt = *req.DueAt
	}
	if req.AttachmentURLs != nil {
		assignment.AttachmentURLs = req.AttachmentURLs
	}

	if err := s.repo.Assignment.Update(ctx, assignment); err != nil {
		s.logger.Error("更新作业失败", zap.Error(err))
		return nil, err
	}

	sub, _ := s.repo.Assignment.GetSubmission(ctx, id, userID)
	resp := toAssignmentResponse(assignment, sub)
	return &resp, nil
}

func (s *assignmentService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.getOwned(ctx, id, userID); err != nil {
		return err
	}
	if err := s.repo.Assignment.Delete(ctx, id); err != nil {
		s.logger.Error("删除作业失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *assignmentService) Get(ctx context.Context, id, userID string) (*dto.AssignmentResponse, error) {
	assignment, err := s.repo.Assignment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	// 与列表同口径：只有同班成员可见，外班请求不暴露作业是否存在
	if assignment.ClassGroup != user.Group() && user.Role != model.RoleAdmin {
		return nil, ErrAssignmentNotFound
	}

	sub, err := s.repo.Assignment.GetSubmission(ctx, id, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	resp := toAssignmentResponse(assignment, sub)
	return &resp, nil
}

func (s *assignmentService) List(ctx context.Context, userID string) ([]dto.AssignmentResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.repo.Assignment.ListByClassGroup(ctx, user.Group())
	if err != nil {
		s.logger.Error("查询作业列表失败", zap.Error(err))
		return nil, err
	}

	ids := make([]string, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.AssignmentID)
	}
	subs, err := s.repo.Assignment.ListSubmissionsByUser(ctx, ids, userID)
	if err != nil {
		s.logger.Error("查询提交状态失败", zap.Error(err))
		return nil, err
	}
	subByAssignment := make(map[string]*model.AssignmentSubmission, len(subs))
	for i := range subs {
		subByAssignment[subs[i].AssignmentID] = &subs[i]
	}

	result := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		result = append(result, toAssignmentResponse(&assignments[i], subByAssignment[assignments[i].AssignmentID]))
	}
	return result, nil
}

func (s *assignmentService) ToggleSubmission(ctx context.Context, assignmentID, userID string, req *dto.ToggleSubmissionRequest) (*dto.SubmissionResponse, error) {
	if _, err := s.repo.Assignment.GetByID(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	sub := model.AssignmentSubmission{
		AssignmentID: assignmentID,
		UserID:       userID,
		Submitted:    req.Submitted,
	}
	if req.Submitted {
		now := time.Now()
		sub.SubmittedAt = &now
	}

	if err := s.repo.Assignment.UpsertSubmission(ctx, &sub); err != nil {
		s.logger.Error("更新提交状态失败", zap.Error(err))
		return nil, err
	}

	return &dto.SubmissionResponse{
		AssignmentID: sub.AssignmentID,
		UserID:       sub.UserID,
		Submitted:    sub.Submitted,
		SubmittedAt:  sub.SubmittedAt,
	}, nil
}

// ════════════════════════════════════════════════════════════
// ExportSubmissionMatrix — 提交状态矩阵导出
// ════════════════════════════════════════════════════════════
//
// 行为学生、列为作业的 xlsx 矩阵，课代表用于课堂点名核对

func (s *assignmentService) ExportSubmissionMatrix(ctx context.Context, userID string) ([]byte, error) {
	user, err := s.requireCourseRep(ctx, userID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.repo.Assignment.ListByClassGroup(ctx, user.Group())
	if err != nil {
		return nil, err
	}
	members, err := s.repo.User.ListByClassGroup(ctx, user.Group())
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.AssignmentID)
	}
	subs, err := s.repo.Assignment.ListSubmissionsByAssignments(ctx, ids)
	if err != nil {
		return nil, err
	}
	submitted := make(map[string]bool, len(subs))
	for _, sub := range subs {
		if sub.Submitted {
			submitted[sub.AssignmentID+"/"+sub.UserID] = true
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Submissions"
	f.SetSheetName("Sheet1", sheet)

	f.SetCellValue(sheet, "A1", "Student")
	for col, a := range assignments {
		cell, _ := excelize.CoordinatesToCellName(col+2, 1)
		f.SetCellValue(sheet, cell, fmt.Sprintf("%s: %s", a.Course, a.Title))
	}

	for row, m := range members {
		cell, _ := excelize.CoordinatesToCellName(1, row+2)
		f.SetCellValue(sheet, cell, m.Name)
		for col, a := range assignments {
			cell, _ := excelize.CoordinatesToCellName(col+2, row+2)
			mark := ""
			if submitted[a.AssignmentID+"/"+m.UserID] {
				mark = "✓"
			}
			f.SetCellValue(sheet, cell, mark)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		s.logger.Error("导出提交矩阵失败", zap.Error(err))
		return nil, err
	}
	return buf.Bytes(), nil
}

// ── 私有辅助方法 ──

func (s *assignmentService) requireCourseRep(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsCourseRep() && user.Role != model.RoleAdmin {
		return nil, ErrAssignmentNotRep
	}
	return user, nil
}

func (s *assignmentService) getOwned(ctx context.Context, id, userID string) (*model.Assignment, error) {
	assignment, err := s.repo.Assignment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if assignment.CreatedBy != userID {
		return nil, ErrAssignmentNotCreator
	}
	return assignment, nil
}

// ── 响应转换器 ──

func toAssignmentResponse(a *model.Assignment, sub *model.AssignmentSubmission) dto.AssignmentResponse {
	resp := dto.AssignmentResponse{
		ID:             a.AssignmentID,
		Course:         a.Course,
		Title:          a.Title,
		Description:    a.Description,
		DueAt:          a.DueAt,
		AttachmentURLs: []string(a.AttachmentURLs),
		CreatedBy:      a.CreatedBy,
		CreatedAt:      a.CreatedAt,
	}
	if a.Creator != nil {
		resp.CreatorName = a.Creator.Name
	}
	if sub != nil {
		resp.Submitted = sub.Submitted
		resp.SubmittedAt = sub.SubmittedAt
	}
	return resp
}
