package model

// 通知类型
const (
	NotificationTypeAssignment  = "assignment"
	NotificationTypeTodaysClass = "todays_class"
	NotificationTypeCatchup     = "catchup"
	NotificationTypeConnection  = "connection"
)

// Notification 通知消息表 — 对应 notifications
type Notification struct {
	NotificationID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string  `gorm:"type:uuid;not null"                             json:"user_id"`
	Type           string  `gorm:"type:varchar(50);not null"                      json:"type"`
	Title          string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Body           string  `gorm:"type:text;not null;default:''"                  json:"body"`
	IsRead         bool    `gorm:"not null;default:false"                         json:"is_read"`
	RelatedType    *string `gorm:"type:varchar(30)"                               json:"related_type,omitempty"` // assignment | todays_class | catchup | connection
	RelatedID      *string `gorm:"type:uuid"                                      json:"related_id,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// NotificationPreference 通知偏好表 — 对应 notification_preferences（与 users 1:1）
type NotificationPreference struct {
	UserID       string `gorm:"type:uuid;primaryKey"  json:"user_id"`
	Assignments  bool   `gorm:"not null;default:true" json:"assignments"`
	TodayClasses bool   `gorm:"not null;default:true" json:"today_classes"`
	Catchups     bool   `gorm:"not null;default:true" json:"catchups"`
	Connections  bool   `gorm:"not null;default:true" json:"connections"`
	BaseModel
}

// TableName 指定表名
func (NotificationPreference) TableName() string { return "notification_preferences" }

// Allows 判断偏好是否允许指定类型的通知
func (p *NotificationPreference) Allows(notificationType string) bool {
	switch notificationType {
	case NotificationTypeAssignment:
		return p.Assignments
	case NotificationTypeTodaysClass:
		return p.TodayClasses
	case NotificationTypeCatchup:
		return p.Catchups
	case NotificationTypeConnection:
		return p.Connections
	}
	return true
}

// NotificationToken 推送令牌表 — 对应 notification_tokens
// 仅保存令牌；实际推送投递由外部服务完成
type NotificationToken struct {
	TokenID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"token_id"`
	UserID   string `gorm:"type:uuid;not null;uniqueIndex:uniq_user_token" json:"user_id"`
	Token    string `gorm:"type:text;not null;uniqueIndex:uniq_user_token" json:"token"`
	Platform string `gorm:"type:varchar(20);not null"                      json:"platform"` // web | ios | android
	BaseModel
}

// TableName 指定表名
func (NotificationToken) TableName() string { return "notification_tokens" }
