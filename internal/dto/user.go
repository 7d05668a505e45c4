package dto

// UserResponse 用户资料响应
type UserResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	School     string `json:"school"`
	Department string `json:"department"`
	Level      int    `json:"level"`
	Semester   string `json:"semester"`
	Bio        string `json:"bio,omitempty"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	Role       string `json:"role"`
}

// UpdateProfileRequest 更新个人资料请求
type UpdateProfileRequest struct {
	Name       *string `json:"name" binding:"omitempty,max=100"`
	School     *string `json:"school" binding:"omitempty,max=150"`
	Department *string `json:"department" binding:"omitempty,max=150"`
	Level      *int    `json:"level" binding:"omitempty,min=1,max=6"`
	Semester   *string `json:"semester" binding:"omitempty,oneof=first second"`
	Bio        *string `json:"bio" binding:"omitempty,max=500"`
	AvatarURL  *string `json:"avatar_url" binding:"omitempty,url"`
}

// ClassmateResponse 同班同学响应（附连接状态）
type ClassmateResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Bio             string   `json:"bio,omitempty"`
	AvatarURL       string   `json:"avatar_url,omitempty"`
	Role            string   `json:"role"`
	Connected       bool     `json:"connected"`        // 我 → TA 是否有连接
	ConnectionID    string   `json:"connection_id,omitempty"`
	ConnectionTypes []string `json:"connection_types,omitempty"`
}
