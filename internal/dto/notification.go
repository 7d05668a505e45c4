package dto

import "time"

// NotificationResponse 通知响应
type NotificationResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Body        string    `json:"body,omitempty"`
	IsRead      bool      `json:"is_read"`
	RelatedType *string   `json:"related_type,omitempty"`
	RelatedID   *string   `json:"related_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// UnreadCountResponse 未读数量响应
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

// UpdatePreferencesRequest 更新通知偏好请求
type UpdatePreferencesRequest struct {
	Assignments  *bool `json:"assignments"`
	TodayClasses *bool `json:"today_classes"`
	Catchups     *bool `json:"catchups"`
	Connections  *bool `json:"connections"`
}

// PreferencesResponse 通知偏好响应
type PreferencesResponse struct {
	Assignments  bool `json:"assignments"`
	TodayClasses bool `json:"today_classes"`
	Catchups     bool `json:"catchups"`
	Connections  bool `json:"connections"`
}

// RegisterTokenRequest 注册推送令牌请求
type RegisterTokenRequest struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform" binding:"required,oneof=web ios android"`
}
