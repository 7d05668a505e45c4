package model

import (
	"time"

	"gorm.io/datatypes"
)

// CatchupTargets 公告投放范围
// global 为 true 时对全体可见；否则任一维度命中即可见
type CatchupTargets struct {
	Global      bool     `json:"global"`
	Schools     []string `json:"schools,omitempty"`
	Departments []string `json:"departments,omitempty"`
	Levels      []int    `json:"levels,omitempty"`
	ClassGroups []string `json:"class_groups,omitempty"` // "school/department/level/semester"
}

// MatchesUser 判断公告是否面向该用户
func (t CatchupTargets) MatchesUser(u *User) bool {
	if t.Global {
		return true
	}
	for _, s := range t.Schools {
		if s == u.School {
			return true
		}
	}
	for _, d := range t.Departments {
		if d == u.Department {
			return true
		}
	}
	for _, l := range t.Levels {
		if l == u.Level {
			return true
		}
	}
	key := u.GroupKey()
	for _, g := range t.ClassGroups {
		if g == key {
			return true
		}
	}
	return false
}

// Catchup 广播公告表 — 对应 catchups
type Catchup struct {
	CatchupID string                                 `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"catchup_id"`
	Title     string                                 `gorm:"type:varchar(200);not null"     json:"title"`
	Summary   string                                 `gorm:"type:text;not null;default:''"  json:"summary"`
	Content   *string                                `gorm:"type:text"                      json:"content,omitempty"` // markdown
	ImageURL  *string                                `gorm:"type:text"                      json:"image_url,omitempty"`
	CTALabel  *string                                `gorm:"type:varchar(100);column:cta_label" json:"cta_label,omitempty"`
	CTAURL    *string                                `gorm:"type:text;column:cta_url"       json:"cta_url,omitempty"`
	Targets   datatypes.JSONType[CatchupTargets]     `gorm:"type:jsonb;not null"            json:"targets"`
	ExpiresAt *time.Time                             `json:"expires_at,omitempty"`
	CreatedBy string                                 `gorm:"type:uuid;not null"             json:"created_by"`
	BaseModel
}

// TableName 指定表名
func (Catchup) TableName() string { return "catchups" }

// Expired 公告是否已过期（expires_at 为空表示永不过期）
func (c *Catchup) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}
