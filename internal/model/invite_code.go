package model

import "time"

// InviteCode 邀请码表 — 对应 invite_codes
// 课代表生成，注册时预绑定班级信息
type InviteCode struct {
	InviteCodeID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"invite_code_id"`
	Code         string    `gorm:"type:varchar(50);not null;uniqueIndex"          json:"code"`
	CreatedBy    string    `gorm:"type:uuid;not null"                             json:"created_by"`
	ClassGroup   `json:"class_group"`
	ExpiresAt    time.Time `gorm:"not null" json:"expires_at"`
	BaseModel
}

// TableName 指定表名
func (InviteCode) TableName() string { return "invite_codes" }

// Expired 邀请码是否已过期
func (i *InviteCode) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
