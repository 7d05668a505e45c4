package dto

import "time"

// CatchupTargetsInput 公告投放范围输入
type CatchupTargetsInput struct {
	Global      bool     `json:"global"`
	Schools     []string `json:"schools" binding:"omitempty,dive,max=150"`
	Departments []string `json:"departments" binding:"omitempty,dive,max=150"`
	Levels      []int    `json:"levels" binding:"omitempty,dive,min=1,max=6"`
	ClassGroups []string `json:"class_groups" binding:"omitempty,dive,max=400"`
}

// CreateCatchupRequest 创建公告请求（管理员/课代表）
type CreateCatchupRequest struct {
	Title     string              `json:"title" binding:"required,max=200"`
	Summary   string              `json:"summary" binding:"required,max=1000"`
	Content   *string             `json:"content" binding:"omitempty,max=20000"` // markdown
	ImageURL  *string             `json:"image_url" binding:"omitempty,url"`
	CTALabel  *string             `json:"cta_label" binding:"omitempty,max=100"`
	CTAURL    *string             `json:"cta_url" binding:"omitempty,url"`
	Targets   CatchupTargetsInput `json:"targets"`
	ExpiresAt *time.Time          `json:"expires_at"`
}

// UpdateCatchupRequest 更新公告请求
type UpdateCatchupRequest struct {
	Title     *string              `json:"title" binding:"omitempty,max=200"`
	Summary   *string              `json:"summary" binding:"omitempty,max=1000"`
	Content   *string              `json:"content" binding:"omitempty,max=20000"`
	ImageURL  *string              `json:"image_url" binding:"omitempty,url"`
	CTALabel  *string              `json:"cta_label" binding:"omitempty,max=100"`
	CTAURL    *string              `json:"cta_url" binding:"omitempty,url"`
	Targets   *CatchupTargetsInput `json:"targets"`
	ExpiresAt *time.Time           `json:"expires_at"`
}

// CatchupCTA 公告行动按钮
type CatchupCTA struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// CatchupResponse 公告响应
type CatchupResponse struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Summary   string      `json:"summary"`
	Content   *string     `json:"content,omitempty"`
	ImageURL  *string     `json:"image_url,omitempty"`
	CTA       *CatchupCTA `json:"cta,omitempty"`
	ExpiresAt *time.Time  `json:"expires_at,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
