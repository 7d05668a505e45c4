package dto

// ── 注册 / 登录 ──

// RegisterRequest 注册请求
// 提供 invite_code 时，班级信息（school/department/level/semester）
// 由邀请码预绑定，忽略请求中的同名字段
type RegisterRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Name       string `json:"name" binding:"required,max=100"`
	InviteCode string `json:"invite_code" binding:"omitempty,max=50"`
	School     string `json:"school" binding:"omitempty,max=150"`
	Department string `json:"department" binding:"omitempty,max=150"`
	Level      int    `json:"level" binding:"omitempty,min=1,max=6"`
	Semester   string `json:"semester" binding:"omitempty,oneof=first second"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshRequest 刷新 Token 请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse 登录/刷新成功响应
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // access token 有效期（秒）
	User         UserResponse `json:"user"`
}

// ── 修改密码 ──

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ── 邀请码 ──

// GenerateInviteRequest 生成邀请码请求（课代表）
type GenerateInviteRequest struct {
	TTLHours int `json:"ttl_hours" binding:"omitempty,min=1,max=720"` // 默认 168（7 天）
}

// InviteCodeResponse 邀请码响应
type InviteCodeResponse struct {
	Code       string `json:"code"`
	School     string `json:"school"`
	Department string `json:"department"`
	Level      int    `json:"level"`
	Semester   string `json:"semester"`
	ExpiresAt  string `json:"expires_at"`
}
