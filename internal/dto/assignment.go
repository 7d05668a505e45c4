package dto

import "time"

// ── 作业 CRUD（课代表） ──

// CreateAssignmentRequest 创建作业请求
type CreateAssignmentRequest struct {
	Course         string    `json:"course" binding:"required,max=200"`
	Title          string    `json:"title" binding:"required,max=200"`
	Description    string    `json:"description" binding:"omitempty,max=5000"`
	DueAt          time.Time `json:"due_at" binding:"required"`
	AttachmentURLs []string  `json:"attachment_urls" binding:"omitempty,dive,url"`
}

// UpdateAssignmentRequest 更新作业请求
type UpdateAssignmentRequest struct {
	Course         *string    `json:"course" binding:"omitempty,max=200"`
	Title          *string    `json:"title" binding:"omitempty,max=200"`
	Description    *string    `json:"description" binding:"omitempty,max=5000"`
	DueAt          *time.Time `json:"due_at"`
	AttachmentURLs []string   `json:"attachment_urls" binding:"omitempty,dive,url"`
}

// AssignmentResponse 作业响应（含当前用户的提交状态）
type AssignmentResponse struct {
	ID             string     `json:"id"`
	Course         string     `json:"course"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	DueAt          time.Time  `json:"due_at"`
	AttachmentURLs []string   `json:"attachment_urls,omitempty"`
	CreatedBy      string     `json:"created_by"`
	CreatorName    string     `json:"creator_name,omitempty"`
	Submitted      bool       `json:"submitted"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ── 提交状态 ──

// ToggleSubmissionRequest 提交状态切换请求
type ToggleSubmissionRequest struct {
	Submitted bool `json:"submitted"`
}

// SubmissionResponse 提交状态响应
type SubmissionResponse struct {
	AssignmentID string     `json:"assignment_id"`
	UserID       string     `json:"user_id"`
	Submitted    bool       `json:"submitted"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
}
