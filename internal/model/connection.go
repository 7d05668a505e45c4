package model

import "github.com/lib/pq"

// 连接授权的内容类型词汇表
const (
	ConnectionTypeTimetable     = "timetable"
	ConnectionTypeAssignments   = "assignments"
	ConnectionTypeTodayClasses  = "today_classes"
	ConnectionTypeCourseOutline = "course_outline"
)

// ValidConnectionType 判断是否为合法的连接内容类型
func ValidConnectionType(t string) bool {
	switch t {
	case ConnectionTypeTimetable, ConnectionTypeAssignments,
		ConnectionTypeTodayClasses, ConnectionTypeCourseOutline:
		return true
	}
	return false
}

// Connection 同学连接表 — 对应 connections
// 定向边：follower 请求查看 following 的指定类型内容。
// (follower_id, following_id) 组合唯一，由数据库唯一索引保证。
type Connection struct {
	ConnectionID    string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"     json:"connection_id"`
	FollowerID      string         `gorm:"type:uuid;not null;uniqueIndex:uniq_conn_pair"      json:"follower_id"`
	FollowingID     string         `gorm:"type:uuid;not null;uniqueIndex:uniq_conn_pair"      json:"following_id"`
	ConnectionTypes pq.StringArray `gorm:"type:text[];not null"                               json:"connection_types"`
	BaseModel

	// 关联
	Follower  *User `gorm:"foreignKey:FollowerID;references:UserID"  json:"follower,omitempty"`
	Following *User `gorm:"foreignKey:FollowingID;references:UserID" json:"following,omitempty"`
}

// TableName 指定表名
func (Connection) TableName() string { return "connections" }

// Grants 判断该连接是否授权了指定内容类型
func (c *Connection) Grants(kind string) bool {
	for _, t := range c.ConnectionTypes {
		if t == kind {
			return true
		}
	}
	return false
}
