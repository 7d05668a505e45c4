package service

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/JoshTheCodre/myqitt-sub000/config"
	"github.com/JoshTheCodre/myqitt-sub000/internal/dto"
	"github.com/JoshTheCodre/myqitt-sub000/internal/model"
	"github.com/JoshTheCodre/myqitt-sub000/internal/repository"
	"github.com/JoshTheCodre/myqitt-sub000/pkg/jwt"
	"github.com/JoshTheCodre/myqitt-sub000/pkg/redis"
)

// ── 认证模块业务错误 ──

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInviteCodeInvalid  = errors.New("invite code is invalid")
	ErrInviteCodeExpired  = errors.New("invite code has expired")
	ErrOldPasswordWrong   = errors.New("old password is incorrect")
	ErrRefreshTokenType   = errors.New("not a refresh token")
	ErrNotCourseRep       = errors.New("only course reps can do this")
)

// AuthService 认证业务接口
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error

	// GenerateInvite 课代表生成绑定本班的邀请码
	GenerateInvite(ctx context.Context, userID string, req *dto.GenerateInviteRequest) (*dto.InviteCodeResponse, error)
	// ValidateInvite 校验邀请码并返回其绑定的班级信息
	ValidateInvite(ctx context.Context, code string) (*dto.InviteCodeResponse, error)
}

type authService struct {
	repo    *repository.Repository
	jwtMgr  *jwt.Manager
	rdb     *redis.Client
	authCfg *config.AuthConfig
	logger  *zap.Logger
}

// NewAuthService 创建 AuthService 实例
// rdb 可为 nil：Redis 不可用时退出登录降级为客户端丢弃 Token
func NewAuthService(repo *repository.Repository, jwtMgr *jwt.Manager, rdb *redis.Client, authCfg *config.AuthConfig, logger *zap.Logger) AuthService {
	return &authService{repo: repo, jwtMgr: jwtMgr, rdb: rdb, authCfg: authCfg, logger: logger}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	if _, err := s.repo.User.GetByEmail(ctx, strings.ToLower(req.Email)); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询邮箱失败", zap.Error(err))
		return nil, err
	}

	user := model.User{
		Email:      strings.ToLower(req.Email),
		Name:       req.Name,
		School:     req.School,
		Department: req.Department,
		Level:      req.Level,
		Semester:   req.Semester,
		Role:       model.RoleStudent,
	}
	if user.Level == 0 {
		user.Level = 1
	}
	if user.Semester == "" {
		user.Semester = "first"
	}

	// 邀请码注册：班级信息以邀请码绑定为准
	if req.InviteCode != "" {
		invite, err := s.lookupInvite(ctx, req.InviteCode)
		if err != nil {
			return nil, err
		}
		user.School = invite.School
		user.Department = invite.Department
		user.Level = invite.Level
		user.Semester = invite.Semester
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}
	user.PasswordHash = string(hash)

	if err := s.repo.User.Create(ctx, &user); err != nil {
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户注册成功",
		zap.String("user_id", user.UserID),
		zap.String("email", user.Email),
	)

	return s.issueTokens(&user, false)
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.repo.User.GetByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(user, req.RememberMe)
}

func (s *authService) RefreshToken(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(req.RefreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != "refresh" {
		return nil, ErrRefreshTokenType
	}

	if s.rdb != nil {
		blacklisted, err := s.rdb.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("黑名单检查失败", zap.Error(err))
		} else if blacklisted {
			return nil, jwt.ErrTokenInvalid
		}
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, jwt.ErrTokenInvalid
		}
		return nil, err
	}

	// 旧 refresh token 作废，实现轮换
	if s.rdb != nil && claims.ExpiresAt != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if err := s.rdb.BlacklistToken(ctx, claims.ID, ttl); err != nil {
			s.logger.Warn("旧 Token 加入黑名单失败", zap.Error(err))
		}
	}

	return s.issueTokens(user, claims.RememberMe)
}

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.rdb == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.rdb.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("Token 加入黑名单失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)) != nil {
		return ErrOldPasswordWrong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新密码失败", zap.Error(err))
		return err
	}

	s.logger.Info("密码修改成功", zap.String("user_id", userID))
	return nil
}

// ── 邀请码 ──

func (s *authService) GenerateInvite(ctx context.Context, userID string, req *dto.GenerateInviteRequest) (*dto.InviteCodeResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsCourseRep() && user.Role != model.RoleAdmin {
		return nil, ErrNotCourseRep
	}

	ttl := time.Duration(req.TTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 168 * time.Hour
	}

	code, err := randomInviteCode(8)
	if err != nil {
		s.logger.Error("生成邀请码失败", zap.Error(err))
		return nil, err
	}

	invite := model.InviteCode{
		Code:       code,
		CreatedBy:  userID,
		ClassGroup: user.Group(),
		ExpiresAt:  time.Now().Add(ttl),
	}
	if err := s.repo.InviteCode.Create(ctx, &invite); err != nil {
		s.logger.Error("创建邀请码失败", zap.Error(err))
		return nil, err
	}

	return toInviteCodeResponse(&invite), nil
}

func (s *authService) ValidateInvite(ctx context.Context, code string) (*dto.InviteCodeResponse, error) {
	invite, err := s.lookupInvite(ctx, code)
	if err != nil {
		return nil, err
	}
	return toInviteCodeResponse(invite), nil
}

// ── 私有辅助方法 ──

func (s *authService) lookupInvite(ctx context.Context, code string) (*model.InviteCode, error) {
	invite, err := s.repo.InviteCode.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteCodeInvalid
		}
		return nil, err
	}
	if invite.Expired(time.Now()) {
		return nil, ErrInviteCodeExpired
	}
	return invite, nil
}

func (s *authService) issueTokens(user *model.User, rememberMe bool) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role)
	if err != nil {
		s.logger.Error("生成 Access Token 失败", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role, rememberMe)
	if err != nil {
		s.logger.Error("生成 Refresh Token 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.authCfg.AccessTokenTTL.Seconds()),
		User:         toUserResponse(user),
	}, nil
}

// 邀请码字符集去除了易混淆的 0/O/1/I
const inviteCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomInviteCode(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = inviteCharset[int(buf[i])%len(inviteCharset)]
	}
	return string(buf), nil
}

// ── 响应转换器 ──

func toInviteCodeResponse(i *model.InviteCode) *dto.InviteCodeResponse {
	return &dto.InviteCodeResponse{
		Code:       i.Code,
		School:     i.School,
		Department: i.Department,
		Level:      i.Level,
		Semester:   i.Semester,
		ExpiresAt:  i.ExpiresAt.Format(time.RFC3339),
	}
}
