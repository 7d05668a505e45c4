package jwt

import (
	"testing"
	"time"

	"github.com/JoshTheCodre/myqitt-sub000/config"
)

func newTestManager(accessTTL time.Duration) *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:               "test-secret-at-least-16-chars",
		AccessTokenTTL:          accessTTL,
		RefreshTokenTTLDefault:  24 * time.Hour,
		RefreshTokenTTLRemember: 168 * time.Hour,
	})
}

func TestGenerateAndParseAccessToken(t *testing.T) {
	mgr := newTestManager(15 * time.Minute)

	token, err := mgr.GenerateAccessToken("user-1", "student")
	if err != nil {
		t.Fatalf("生成 AccessToken 失败: %v", err)
	}

	claims, err := mgr.ParseToken(token)
	if err != nil {
		t.Fatalf("解析 Token 失败: %v", err)
	}

	if claims.UserID != "user-1" {
		t.Errorf("UserID 期望 user-1, 实际 %s", claims.UserID)
	}
	if claims.Role != "student" {
		t.Errorf("Role 期望 student, 实际 %s", claims.Role)
	}
	if claims.TokenType != "access" {
		t.Errorf("TokenType 期望 access, 实际 %s", claims.TokenType)
	}
	if claims.ID == "" {
		t.Error("JTI 不应为空")
	}
}

func TestParseExpiredToken(t *testing.T) {
	mgr := newTestManager(-1 * time.Minute)

	token, err := mgr.GenerateAccessToken("user-1", "student")
	if err != nil {
		t.Fatalf("生成 AccessToken 失败: %v", err)
	}

	if _, err := mgr.ParseToken(token); err != ErrTokenExpired {
		t.Errorf("期望 ErrTokenExpired, 实际 %v", err)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	mgr := newTestManager(15 * time.Minute)
	other := NewManager(&config.AuthConfig{
		JWTSecret:      "another-secret-16-chars-min",
		AccessTokenTTL: 15 * time.Minute,
	})

	token, err := mgr.GenerateAccessToken("user-1", "student")
	if err != nil {
		t.Fatalf("生成 AccessToken 失败: %v", err)
	}

	if _, err := other.ParseToken(token); err != ErrTokenInvalid {
		t.Errorf("期望 ErrTokenInvalid, 实际 %v", err)
	}
}

func TestRefreshTokenRememberMeTTL(t *testing.T) {
	mgr := newTestManager(15 * time.Minute)

	short, err := mgr.GenerateRefreshToken("user-1", "student", false)
	if err != nil {
		t.Fatalf("生成 RefreshToken 失败: %v", err)
	}
	long, err := mgr.GenerateRefreshToken("user-1", "student", true)
	if err != nil {
		t.Fatalf("生成 RefreshToken 失败: %v", err)
	}

	cShort, err := mgr.ParseToken(short)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	cLong, err := mgr.ParseToken(long)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}

	if !cLong.ExpiresAt.After(cShort.ExpiresAt.Time) {
		t.Error("remember_me 的 RefreshToken 有效期应更长")
	}
	if !cLong.RememberMe {
		t.Error("RememberMe 声明应为 true")
	}
	if cShort.TokenType != "refresh" {
		t.Errorf("TokenType 期望 refresh, 实际 %s", cShort.TokenType)
	}
}
