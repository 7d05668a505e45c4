package dto

// ── 保存课表（全量替换） ──

// TimetableEntryInput 课表条目输入
type TimetableEntryInput struct {
	DayOfWeek int    `json:"day_of_week" binding:"required,min=1,max=7"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Course    string `json:"course" binding:"required,max=200"`
	Venue     string `json:"venue" binding:"omitempty,max=200"`
}

// SaveTimetableRequest 保存课表请求（覆盖式，允许清空）
type SaveTimetableRequest struct {
	Entries []TimetableEntryInput `json:"entries" binding:"required,dive"`
}

// ── 聚合课表 ──

// TimetableEntryResponse 课表条目响应
// 聚合视图中标注数据归属：is_owner=false 时附 owner_name
type TimetableEntryResponse struct {
	ID        string `json:"id"`
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Course    string `json:"course"` // 已去除 " - 讲师" 后缀
	Venue     string `json:"venue,omitempty"`
	IsOwner   bool   `json:"is_owner"`
	OwnerID   string `json:"owner_id"`
	OwnerName string `json:"owner_name,omitempty"`
}

// TimetableResponse 聚合课表响应（按星期分组）
type TimetableResponse struct {
	Days map[int][]TimetableEntryResponse `json:"days"` // 1=周一 … 7=周日
}
