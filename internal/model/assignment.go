package model

import (
	"time"

	"github.com/lib/pq"
)

// Assignment 作业表 — 对应 assignments
// 作业按班级 + 课程共享；每个学生的提交状态单独存放在
// assignment_submissions，二者解耦
type Assignment struct {
	AssignmentID   string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	ClassGroup     `json:"class_group"`
	Course         string         `gorm:"type:varchar(200);not null"            json:"course"`
	Title          string         `gorm:"type:varchar(200);not null"            json:"title"`
	Description    string         `gorm:"type:text;not null;default:''"         json:"description"`
	DueAt          time.Time      `gorm:"not null"                              json:"due_at"`
	AttachmentURLs pq.StringArray `gorm:"type:text[];not null;default:'{}'"     json:"attachment_urls"`
	CreatedBy      string         `gorm:"type:uuid;not null"                    json:"created_by"`
	BaseModel

	// 关联
	Creator *User `gorm:"foreignKey:CreatedBy;references:UserID" json:"creator,omitempty"`
}

// TableName 指定表名
func (Assignment) TableName() string { return "assignments" }

// AssignmentSubmission 学生提交状态 — 对应 assignment_submissions
// 复合主键 (assignment_id, user_id)，每学生每作业至多一行
type AssignmentSubmission struct {
	AssignmentID string     `gorm:"type:uuid;primaryKey" json:"assignment_id"`
	UserID       string     `gorm:"type:uuid;primaryKey" json:"user_id"`
	Submitted    bool       `gorm:"not null;default:false" json:"submitted"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
	BaseModel
}

// TableName 指定表名
func (AssignmentSubmission) TableName() string { return "assignment_submissions" }
