package model

// TimetableEntry 课程表条目 — 对应 timetable_entries
// 规范化存储：每行一个 (用户, 星期, 时间段, 课程, 地点)。
// start_time / end_time 存储为补零的 HH:MM，排序一律按解析后的分钟数。
type TimetableEntry struct {
	EntryID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"entry_id"`
	UserID    string `gorm:"type:uuid;not null;index:idx_entries_user_day"  json:"user_id"`
	DayOfWeek int    `gorm:"not null;index:idx_entries_user_day"            json:"day_of_week"` // 1=周一 … 7=周日
	StartTime string `gorm:"type:varchar(5);not null"                       json:"start_time"`
	EndTime   string `gorm:"type:varchar(5);not null"                       json:"end_time"`
	Course    string `gorm:"type:varchar(200);not null"                     json:"course"`
	Venue     string `gorm:"type:varchar(200);not null;default:''"          json:"venue"`
	BaseModel
}

// TableName 指定表名
func (TimetableEntry) TableName() string { return "timetable_entries" }
