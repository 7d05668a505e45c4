package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JoshTheCodre/myqitt-sub000/internal/dto"
	"github.com/JoshTheCodre/myqitt-sub000/internal/model"
	"github.com/JoshTheCodre/myqitt-sub000/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrUserNotFound = errors.New("user not found")
)

// UserService 用户资料业务接口
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	// DeleteAccount 注销账号，级联清理用户创建与关联的数据
	DeleteAccount(ctx context.Context, userID string) error
	// ListClassmates 同班同学列表，附带我方连接状态
	ListClassmates(ctx context.Context, userID string) ([]dto.ClassmateResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.School != nil {
		user.School = *req.School
	}
	if req.Department != nil {
		user.Department = *req.Department
	}
	if req.Level != nil {
		user.Level = *req.Level
	}
	if req.Semester != nil {
		user.Semester = *req.Semester
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户资料失败", zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.repo.User.DeleteWithDependents(ctx, userID); err != nil {
		s.logger.Error("注销账号失败", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	s.logger.Info("账号已注销", zap.String("user_id", userID))
	return nil
}

func (s *userService) ListClassmates(ctx context.Context, userID string) ([]dto.ClassmateResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	members, err := s.repo.User.ListByClassGroup(ctx, user.Group())
	if err != nil {
		s.logger.Error("查询同班同学失败", zap.Error(err))
		return nil, err
	}

	conns, err := s.repo.Connection.ListByFollower(ctx, userID)
	if err != nil {
		s.logger.Error("查询连接状态失败", zap.Error(err))
		return nil, err
	}
	connByPeer := make(map[string]*model.Connection, len(conns))
	for i := range conns {
		connByPeer[conns[i].FollowingID] = &conns[i]
	}

	result := make([]dto.ClassmateResponse, 0, len(members))
	for _, m := range members {
		if m.UserID == userID {
			continue
		}
		item := dto.ClassmateResponse{
			ID:        m.UserID,
			Name:      m.Name,
			Bio:       m.Bio,
			AvatarURL: m.AvatarURL,
			Role:      m.Role,
		}
		if c, ok := connByPeer[m.UserID]; ok {
			item.Connected = true
			item.ConnectionID = c.ConnectionID
			item.ConnectionTypes = []string(c.ConnectionTypes)
		}
		result = append(result, item)
	}
	return result, nil
}

// ── 响应转换器 ──

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:         u.UserID,
		Email:      u.Email,
		Name:       u.Name,
		School:     u.School,
		Department: u.Department,
		Level:      u.Level,
		Semester:   u.Semester,
		Bio:        u.Bio,
		AvatarURL:  u.AvatarURL,
		Role:       u.Role,
	}
}
