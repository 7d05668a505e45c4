package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/JoshTheCodre/myqitt-sub000/internal/dto"
	"github.com/JoshTheCodre/myqitt-sub000/internal/model"
	"github.com/JoshTheCodre/myqitt-sub000/internal/repository"
)

// ── 公告模块业务错误 ──

var (
	ErrCatchupNotFound   = errors.New("catchup not found")
	ErrCatchupNotCreator = errors.New("only the creator can modify this catchup")
	ErrCatchupNotAllowed = errors.New("only course reps and admins can manage catchups")
)

// CatchupService 定向公告业务接口
// 公告按投放范围（全局 / 学院 / 系 / 年级 / 班级）定向；
// 范围匹配在读取时按用户资料计算，资料变更立即生效
type CatchupService interface {
	Create(ctx context.Context, userID string, req *dto.CreateCatchupRequest) (*dto.CatchupResponse, error)
	Update(ctx context.Context, id, userID string, req *dto.UpdateCatchupRequest) (*dto.CatchupResponse, error)
	Delete(ctx context.Context, id, userID string) error
	// Get 公告详情；仅投放范围覆盖当前用户（或本人创建、管理员）时可见
	Get(ctx context.Context, id, userID string) (*dto.CatchupResponse, error)
	// ListForUser 面向当前用户的未过期公告
	ListForUser(ctx context.Context, userID string) ([]dto.CatchupResponse, error)
	// ListMine 当前用户创建的公告（管理视图，含已过期）
	ListMine(ctx context.Context, userID string) ([]dto.CatchupResponse, error)
}

type catchupService struct {
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewCatchupService 创建 CatchupService 实例
func NewCatchupService(repo *repository.Repository, notifier NotificationService, logger *zap.Logger) CatchupService {
	return &catchupService{repo: repo, notifier: notifier, logger: logger}
}

func (s *catchupService) Create(ctx context.Context, userID string, req *dto.CreateCatchupRequest) (*dto.CatchupResponse, error) {
	user, err := s.requirePublisher(ctx, userID)
	if err != nil {
		return nil, err
	}

	targets := toTargets(&req.Targets)
	// 课代表只能投放本班；全局与跨班范围仅管理员可用
	if user.Role != model.RoleAdmin {
		targets = model.CatchupTargets{ClassGroups: []string{user.GroupKey()}}
	}

	catchup := model.Catchup{
		Title:     req.Title,
		Summary:   req.Summary,
		Content:   req.Content,
		ImageURL:  req.ImageURL,
		CTALabel:  req.CTALabel,
		CTAURL:    req.CTAURL,
		Targets:   datatypes.NewJSONType(targets),
		ExpiresAt: req.ExpiresAt,
		CreatedBy: userID,
	}
	if err := s.repo.Catchup.Create(ctx, &catchup); err != nil {
		s.logger.Error("创建公告失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("公告已发布",
		zap.String("catchup_id", catchup.CatchupID),
		zap.String("title", catchup.Title),
	)

	// 班级定向的公告顺带发通知；全局公告量大，仅靠列表展示
	relatedType := model.NotificationTypeCatchup
	for _, key := range targets.ClassGroups {
		group, ok := model.ParseClassGroupKey(key)
		if !ok {
			continue
		}
		if nerr := s.notifier.NotifyGroup(ctx, group, userID, model.NotificationTypeCatchup,
			catchup.Title, catchup.Summary, &relatedType, &catchup.CatchupID); nerr != nil {
			s.logger.Warn("公告通知发送失败", zap.Error(nerr))
		}
	}

	resp := toCatchupResponse(&catchup)
	return &resp, nil
}

func (s *catchupService) Update(ctx context.Context, id, userID string, req *dto.UpdateCatchupRequest) (*dto.CatchupResponse, error) {
	catchup, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		catchup.Title = *req.Title
	}
	if req.Summary != nil {
		catchup.Summary = *req.Summary
	}
	if req.Content != nil {
		catchup.Content = req.Content
	}
	if req.ImageURL != nil {
		catchup.ImageURL = req.ImageURL
	}
	if req.CTALabel != nil {
		catchup.CTALabel = req.CTALabel
	}
	if req.CTAURL != nil {
		catchup.CTAURL = req.CTAURL
	}
	if req.Targets != nil {
		catchup.Targets = datatypes.NewJSONType(toTargets(req.Targets))
	}
	if req.ExpiresAt != nil {
		catchup.ExpiresAt = req.ExpiresAt
	}

	if err := s.repo.Catchup.Update(ctx, catchup); err != nil {
		s.logger.Error("更新公告失败", zap.Error(err))
		return nil, err
	}

	resp := toCatchupResponse(catchup)
	return &resp, nil
}

func (s *catchupService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.getOwned(ctx, id, userID); err != nil {
		return err
	}
	if err := s.repo.Catchup.Delete(ctx, id); err != nil {
		s.logger.Error("删除公告失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *catchupService) Get(ctx context.Context, id, userID string) (*dto.CatchupResponse, error) {
	catchup, err := s.repo.Catchup.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCatchupNotFound
		}
		return nil, err
	}

	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	// 与列表同口径：投放范围不覆盖当前用户时不暴露公告是否存在
	if catchup.CreatedBy != userID && user.Role != model.RoleAdmin &&
		!catchup.Targets.Data().MatchesUser(user) {
		return nil, ErrCatchupNotFound
	}

	resp := toCatchupResponse(catchup)
	return &resp, nil
}

func (s *catchupService) ListForUser(ctx context.Context, userID string) ([]dto.CatchupResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	catchups, err := s.repo.Catchup.ListActive(ctx, time.Now())
	if err != nil {
		s.logger.Error("查询公告失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CatchupResponse, 0, len(catchups))
	for i := range catchups {
		if !catchups[i].Targets.Data().MatchesUser(user) {
			continue
		}
		result = append(result, toCatchupResponse(&catchups[i]))
	}
	return result, nil
}

func (s *catchupService) ListMine(ctx context.Context, userID string) ([]dto.CatchupResponse, error) {
	catchups, err := s.repo.Catchup.ListByCreator(ctx, userID)
	if err != nil {
		s.logger.Error("查询公告失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.CatchupResponse, 0, len(catchups))
	for i := range catchups {
		result = append(result, toCatchupResponse(&catchups[i]))
	}
	return result, nil
}

// ── 私有辅助方法 ──

func (s *catchupService) requirePublisher(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsCourseRep() && user.Role != model.RoleAdmin {
		return nil, ErrCatchupNotAllowed
	}
	return user, nil
}

func (s *catchupService) getOwned(ctx context.Context, id, userID string) (*model.Catchup, error) {
	catchup, err := s.repo.Catchup.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCatchupNotFound
		}
		return nil, err
	}
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if catchup.CreatedBy != userID && user.Role != model.RoleAdmin {
		return nil, ErrCatchupNotCreator
	}
	return catchup, nil
}

func toTargets(in *dto.CatchupTargetsInput) model.CatchupTargets {
	return model.CatchupTargets{
		Global:      in.Global,
		Schools:     in.Schools,
		Departments: in.Departments,
		Levels:      in.Levels,
		ClassGroups: in.ClassGroups,
	}
}

// ── 响应转换器 ──

func toCatchupResponse(c *model.Catchup) dto.CatchupResponse {
	resp := dto.CatchupResponse{
		ID:        c.CatchupID,
		Title:     c.Title,
		Summary:   c.Summary,
		Content:   c.Content,
		ImageURL:  c.ImageURL,
		ExpiresAt: c.ExpiresAt,
		CreatedAt: c.CreatedAt,
	}
	if c.CTALabel != nil && c.CTAURL != nil {
		resp.CTA = &dto.CatchupCTA{Label: *c.CTALabel, URL: *c.CTAURL}
	}
	return resp
}
