package dto

import "time"

// ── 连接生命周期 ──

// ConnectRequest 创建连接请求
type ConnectRequest struct {
	FollowingID string   `json:"following_id" binding:"required,uuid"`
	Types       []string `json:"types" binding:"required,min=1,dive,oneof=timetable assignments today_classes course_outline"`
}

// UpdateConnectionTypesRequest 更新授权类型请求（整体替换）
type UpdateConnectionTypesRequest struct {
	Types []string `json:"types" binding:"required,min=1,dive,oneof=timetable assignments today_classes course_outline"`
}

// ConnectionResponse 连接响应
type ConnectionResponse struct {
	ID          string    `json:"id"`
	FollowerID  string    `json:"follower_id"`
	FollowingID string    `json:"following_id"`
	Types       []string  `json:"types"`
	PeerName    string    `json:"peer_name,omitempty"`
	PeerAvatar  string    `json:"peer_avatar,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ── 可见性解析 ──

// VisibilitySource 单个可见内容来源
type VisibilitySource struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	IsOwnData bool   `json:"is_own_data"`
}

// VisibilityResponse 可见性解析结果
// 按策略合并所有授权来源；自己的数据（若有）永远排在首位
type VisibilityResponse struct {
	Visible bool               `json:"visible"`
	Kind    string             `json:"kind"`
	Sources []VisibilitySource `json:"sources"`
}
