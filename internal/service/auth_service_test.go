package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/JoshTheCodre/myqitt-sub000/config"
	"github.com/JoshTheCodre/myqitt-sub000/internal/dto"
	"github.com/JoshTheCodre/myqitt-sub000/internal/model"
	"github.com/JoshTheCodre/myqitt-sub000/pkg/jwt"
)

func newAuthTestService(env *testEnv) AuthService {
	authCfg := &config.AuthConfig{
		JWTSecret:               "test-secret-at-least-16-chars",
		AccessTokenTTL:          15 * time.Minute,
		RefreshTokenTTLDefault:  24 * time.Hour,
		RefreshTokenTTLRemember: 168 * time.Hour,
	}
	return NewAuthService(env.repo, jwt.NewManager(authCfg), nil, authCfg, env.logger)
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv()
	svc := newAuthTestService(env)

	ctx := context.Background()
	resp, err := svc.Register(ctx, &dto.RegisterRequest{
		Email:      "Ada@Example.com",
		Password:   "password123",
		Name:       "Ada",
		School:     "Engineering",
		Department: "Computer Science",
		Level:      2,
		Semester:   "first",
	})
	if err != nil {
		t.Fatalf("Register 报错: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("注册成功应签发双 Token")
	}
	if resp.User.Email != "ada@example.com" {
		t.Errorf("邮箱应统一小写, 实际 %s", resp.User.Email)
	}
	if resp.User.Role != model.RoleStudent {
		t.Errorf("新用户角色应为 student, 实际 %s", resp.User.Role)
	}

	// 明文密码不应直接入库
	stored, _ := env.users.GetByEmail(ctx, "ada@example.com")
	if stored.PasswordHash == "password123" {
		t.Error("密码必须哈希存储")
	}

	login, err := svc.Login(ctx, &dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 报错: %v", err)
	}
	if login.User.ID != resp.User.ID {
		t.Error("登录应返回同一用户")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv()
	svc := newAuthTestService(env)

	ctx := context.Background()
	req := &dto.RegisterRequest{Email: "ada@example.com", Password: "password123", Name: "Ada"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("首次注册报错: %v", err)
	}
	if _, err := svc.Register(ctx, req); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("重复邮箱期望 ErrEmailTaken, 实际 %v", err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	env := newTestEnv()
	svc := newAuthTestService(env)

	ctx := context.Background()
	svc.Register(ctx, &dto.RegisterRequest{Email: "ada@example.com", Password: "password123", Name: "Ada"})

	_, err := svc.Login(ctx, &dto.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("错误密码期望 ErrInvalidCredentials, 实际 %v", err)
	}

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("不存在的邮箱期望 ErrInvalidCredentials, 实际 %v", err)
	}
}

func TestRegisterWithInviteCodeBindsClassGroup(t *testing.T) {
	env := newTestEnv()
	rep := env.addUser("Rep", model.RoleCourseRep, testGroup)
	svc := newAuthTestService(env)

	ctx := context.Background()
	invite, err := svc.GenerateInvite(ctx, rep.UserID, &dto.GenerateInviteRequest{})
	if err != nil {
		t.Fatalf("GenerateInvite 报错: %v", err)
	}

	// 请求里的班级信息应被邀请码绑定覆盖
	resp, err := svc.Register(ctx, &dto.RegisterRequest{
		Email:      "new@example.com",
		Password:   "password123",
		Name:       "Newcomer",
		InviteCode: invite.Code,
		School:     "Wrong School",
		Department: "Wrong Dept",
		Level:      5,
	})
	if err != nil {
		t.Fatalf("Register 报错: %v", err)
	}
	if resp.User.School != testGroup.School || resp.User.Department != testGroup.Department ||
		resp.User.Level != testGroup.Level || resp.User.Semester != testGroup.Semester {
		t.Errorf("班级信息应以邀请码为准: %+v", resp.User)
	}
}

func TestRegisterRejectsExpiredInvite(t *testing.T) {
	env := newTestEnv()
	rep := env.addUser("Rep", model.RoleCourseRep, testGroup)
	svc := newAuthTestService(env)

	ctx := context.Background()
	expired := model.InviteCode{
		Code:       "EXPIRED1",
		CreatedBy:  rep.UserID,
		ClassGroup: testGroup,
		ExpiresAt:  time.Now().Add(-time.Hour),
	}
	env.repo.InviteCode.Create(ctx, &expired)

	_, err := svc.Register(ctx, &dto.RegisterRequest{
		Email:      "new@example.com",
		Password:   "password123",
		Name:       "Newcomer",
		InviteCode: "EXPIRED1",
	})
	if !errors.Is(err, ErrInviteCodeExpired) {
		t.Errorf("过期邀请码期望 ErrInviteCodeExpired, 实际 %v", err)
	}

	_, err = svc.Register(ctx, &dto.RegisterRequest{
		Email:      "new2@example.com",
		Password:   "password123",
		Name:       "Newcomer",
		InviteCode: "NOSUCH",
	})
	if !errors.Is(err, ErrInviteCodeInvalid) {
		t.Errorf("无效邀请码期望 ErrInviteCodeInvalid, 实际 %v", err)
	}
}

func TestGenerateInviteRequiresRep(t *testing.T) {
	env := newTestEnv()
	alice := env.addUser("Alice", model.RoleStudent, testGroup)
	svc := newAuthTestService(env)

	_, err := svc.GenerateInvite(context.Background(), alice.UserID, &dto.GenerateInviteRequest{})
	if !errors.Is(err, ErrNotCourseRep) {
		t.Errorf("普通学生生成邀请码期望 ErrNotCourseRep, 实际 %v", err)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	env := newTestEnv()
	svc := newAuthTestService(env)

	ctx := context.Background()
	reg, err := svc.Register(ctx, &dto.RegisterRequest{
		Email: "ada@example.com", Password: "password123", Name: "Ada",
	})
	if err != nil {
		t.Fatalf("Register 报错: %v", err)
	}

	refreshed, err := svc.RefreshToken(ctx, &dto.RefreshRequest{RefreshToken: reg.RefreshToken})
	if err != nil {
		t.Fatalf("RefreshToken 报错: %v", err)
	}
	if refreshed.AccessToken == "" || refreshed.RefreshToken == "" {
		t.Error("刷新应签发新的双 Token")
	}

	// access token 不能用于刷新
	_, err = svc.RefreshToken(ctx, &dto.RefreshRequest{RefreshToken: reg.AccessToken})
	if !errors.Is(err, ErrRefreshTokenType) {
		t.Errorf("access token 刷新期望 ErrRefreshTokenType, 实际 %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv()
	svc := newAuthTestService(env)

	ctx := context.Background()
	reg, _ := svc.Register(ctx, &dto.RegisterRequest{
		Email: "ada@example.com", Password: "password123", Name: "Ada",
	})

	err := svc.ChangePassword(ctx, reg.User.ID, &dto.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "newpassword456",
	})
	if !errors.Is(err, ErrOldPasswordWrong) {
		t.Fatalf("旧密码错误期望 ErrOldPasswordWrong, 实际 %v", err)
	}

	if err := svc.ChangePassword(ctx, reg.User.ID, &dto.ChangePasswordRequest{
		OldPassword: "password123",
		NewPassword: "newpassword456",
	}); err != nil {
		t.Fatalf("ChangePassword 报错: %v", err)
	}

	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "ada@example.com", Password: "newpassword456"}); err != nil {
		t.Errorf("新密码登录失败: %v", err)
	}
	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "ada@example.com", Password: "password123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("旧密码应失效, 实际 %v", err)
	}
}

func TestRandomInviteCodeFormat(t *testing.T) {
	code, err := randomInviteCode(8)
	if err != nil {
		t.Fatalf("randomInviteCode 报错: %v", err)
	}
	if len(code) != 8 {
		t.Fatalf("期望 8 位邀请码, 实际 %q", code)
	}
	for _, c := range code {
		if !strings.ContainsRune(inviteCharset, c) {
			t.Errorf("字符 %q 不在邀请码字符集内", c)
		}
	}
}
