package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JoshTheCodre/myqitt-sub000/internal/dto"
	"github.com/JoshTheCodre/myqitt-sub000/internal/model"
	"github.com/JoshTheCodre/myqitt-sub000/internal/realtime"
	"github.com/JoshTheCodre/myqitt-sub000/internal/repository"
)

// ── 通知模块业务错误 ──

var (
	ErrNotificationNotFound = errors.New("notification not found")
)

// NotificationService 通知业务接口
// 除面向端的查询/已读操作外，还提供给其他模块的落库 + 推送入口：
// 通知先写库，再通过 WebSocket Hub 推送给在线用户；
// 推送失败不影响落库结果
type NotificationService interface {
	List(ctx context.Context, userID string, page, pageSize int) ([]dto.NotificationResponse, int64, error)
	UnreadCount(ctx context.Context, userID string) (*dto.UnreadCountResponse, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error

	GetPreferences(ctx context.Context, userID string) (*dto.PreferencesResponse, error)
	UpdatePreferences(ctx context.Context, userID string, req *dto.UpdatePreferencesRequest) (*dto.PreferencesResponse, error)

	RegisterToken(ctx context.Context, userID string, req *dto.RegisterTokenRequest) error
	RemoveToken(ctx context.Context, userID, token string) error

	// Notify 给单个用户发通知（遵循该用户偏好）
	Notify(ctx context.Context, userID, notificationType, title, body string, relatedType, relatedID *string) error
	// NotifyGroup 给整个班级发通知，excludeUserID 通常为动作发起者
	NotifyGroup(ctx context.Context, group model.ClassGroup, excludeUserID, notificationType, title, body string, relatedType, relatedID *string) error
}

type notificationService struct {
	repo   *repository.Repository
	hub    *realtime.Hub
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, hub *realtime.Hub, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, hub: hub, logger: logger}
}

func (s *notificationService) List(ctx context.Context, userID string, page, pageSize int) ([]dto.NotificationResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	notifications, total, err := s.repo.Notification.ListByUser(ctx, userID, (page-1)*pageSize, pageSize)
	if err != nil {
		s.logger.Error("查询通知列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		result = append(result, toNotificationResponse(n))
	}
	return result, total, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (*dto.UnreadCountResponse, error) {
	count, err := s.repo.Notification.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error("查询未读数量失败", zap.Error(err))
		return nil, err
	}
	return &dto.UnreadCountResponse{Unread: count}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.Notification.MarkRead(ctx, id, userID); err != nil {
		s.logger.Error("标记已读失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.Notification.MarkAllRead(ctx, userID); err != nil {
		s.logger.Error("全部标记已读失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *notificationService) GetPreferences(ctx context.Context, userID string) (*dto.PreferencesResponse, error) {
	pref, err := s.repo.Notification.GetPreferences(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 未显式设置过偏好时返回默认值（全部开启）
			return &dto.PreferencesResponse{
				Assignments:  true,
				TodayClasses: true,
				Catchups:     true,
				Connections:  true,
			}, nil
		}
		return nil, err
	}
	return toPreferencesResponse(pref), nil
}

func (s *notificationService) UpdatePreferences(ctx context.Context, userID string, req *dto.UpdatePreferencesRequest) (*dto.PreferencesResponse, error) {
	pref, err := s.repo.Notification.GetPreferences(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		pref = &model.NotificationPreference{
			UserID:       userID,
			Assignments:  true,
			TodayClasses: true,
			Catchups:     true,
			Connections:  true,
		}
	}

	if req.Assignments != nil {
		pref.Assignments = *req.Assignments
	}
	if req.TodayClasses != nil {
		pref.TodayClasses = *req.TodayClasses
	}
	if req.Catchups != nil {
		pref.Catchups = *req.Catchups
	}
	if req.Connections != nil {
		pref.Connections = *req.Connections
	}

	if err := s.repo.Notification.UpsertPreferences(ctx, pref); err != nil {
		s.logger.Error("更新通知偏好失败", zap.Error(err))
		return nil, err
	}

	return toPreferencesResponse(pref), nil
}

func (s *notificationService) RegisterToken(ctx context.Context, userID string, req *dto.RegisterTokenRequest) error {
	token := model.NotificationToken{
		UserID:   userID,
		Token:    req.Token,
		Platform: req.Platform,
	}
	if err := s.repo.Notification.CreateToken(ctx, &token); err != nil {
		s.logger.Error("注册推送令牌失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *notificationService) RemoveToken(ctx context.Context, userID, token string) error {
	return s.repo.Notification.DeleteToken(ctx, userID, token)
}

// ── 落库 + 推送 ──

func (s *notificationService) Notify(ctx context.Context, userID, notificationType, title, body string, relatedType, relatedID *string) error {
	allowed, err := s.allowedByPreference(ctx, userID, notificationType)
	if err != nil {
		return err
	}
	if !allowed {
		return nil
	}

	n := model.Notification{
		UserID:      userID,
		Type:        notificationType,
		Title:       title,
		Body:        body,
		RelatedType: relatedType,
		RelatedID:   relatedID,
	}
	if err := s.repo.Notification.Create(ctx, &n); err != nil {
		s.logger.Error("写入通知失败", zap.Error(err))
		return err
	}

	s.hub.Publish(userID, toNotificationResponse(n))
	return nil
}

func (s *notificationService) NotifyGroup(ctx context.Context, group model.ClassGroup, excludeUserID, notificationType, title, body string, relatedType, relatedID *string) error {
	members, err := s.repo.User.ListByClassGroup(ctx, group)
	if err != nil {
		s.logger.Error("查询班级成员失败", zap.Error(err))
		return err
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		if m.UserID != excludeUserID {
			ids = append(ids, m.UserID)
		}
	}

	prefs, err := s.repo.Notification.ListPreferencesByUsers(ctx, ids)
	if err != nil {
		s.logger.Error("查询通知偏好失败", zap.Error(err))
		return err
	}
	prefByUser := make(map[string]*model.NotificationPreference, len(prefs))
	for i := range prefs {
		prefByUser[prefs[i].UserID] = &prefs[i]
	}

	notifications := make([]model.Notification, 0, len(ids))
	for _, id := range ids {
		// 无偏好记录视为默认全部开启
		if pref, ok := prefByUser[id]; ok && !pref.Allows(notificationType) {
			continue
		}
		notifications = append(notifications, model.Notification{
			UserID:      id,
			Type:        notificationType,
			Title:       title,
			Body:        body,
			RelatedType: relatedType,
			RelatedID:   relatedID,
		})
	}

	if err := s.repo.Notification.BatchCreate(ctx, notifications); err != nil {
		s.logger.Error("批量写入通知失败", zap.Error(err))
		return err
	}

	for _, n := range notifications {
		s.hub.Publish(n.UserID, toNotificationResponse(n))
	}
	return nil
}

func (s *notificationService) allowedByPreference(ctx context.Context, userID, notificationType string) (bool, error) {
	pref, err := s.repo.Notification.GetPreferences(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, err
	}
	return pref.Allows(notificationType), nil
}

// ── 响应转换器 ──

func toNotificationResponse(n model.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:          n.NotificationID,
		Type:        n.Type,
		Title:       n.Title,
		Body:        n.Body,
		IsRead:      n.IsRead,
		RelatedType: n.RelatedType,
		RelatedID:   n.RelatedID,
		CreatedAt:   n.CreatedAt,
	}
}

func toPreferencesResponse(p *model.NotificationPreference) *dto.PreferencesResponse {
	return &dto.PreferencesResponse{
		Assignments:  p.Assignments,
		TodayClasses: p.TodayClasses,
		Catchups:     p.Catchups,
		Connections:  p.Connections,
	}
}
