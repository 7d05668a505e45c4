package model

import "time"

// TodaysClass 当日课程变更 — 对应 todays_classes
// 针对具体日期的例外（调时间、换教室、停课），叠加在常规课表之上。
// entry_id 可选：关联常规课表条目时为覆盖，否则为临时加课。
// 课代表创建/编辑/删除，删除即恢复常规课表，全程可逆。
type TodaysClass struct {
	TodaysClassID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"todays_class_id"`
	ClassGroup    `json:"class_group"`
	ClassDate     time.Time `gorm:"type:date;not null"                    json:"class_date"`
	EntryID       *string   `gorm:"type:uuid"                             json:"entry_id,omitempty"`
	StartTime     string    `gorm:"type:varchar(5);not null"              json:"start_time"`
	EndTime       string    `gorm:"type:varchar(5);not null"              json:"end_time"`
	Course        string    `gorm:"type:varchar(200);not null"            json:"course"`
	Venue         string    `gorm:"type:varchar(200);not null;default:''" json:"venue"`
	IsCancelled   bool      `gorm:"not null;default:false"                json:"is_cancelled"`
	Notes         string    `gorm:"type:text;not null;default:''"         json:"notes"`
	CreatedBy     string    `gorm:"type:uuid;not null"                    json:"created_by"`
	BaseModel
}

// TableName 指定表名
func (TodaysClass) TableName() string { return "todays_classes" }
