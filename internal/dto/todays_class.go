package dto

// ── 当日课程变更 CRUD（课代表） ──

// CreateTodaysClassRequest 创建变更请求
// entry_id 关联常规课表条目时为覆盖，否则为临时加课
type CreateTodaysClassRequest struct {
	ClassDate string  `json:"class_date" binding:"required"` // YYYY-MM-DD
	EntryID   *string `json:"entry_id" binding:"omitempty,uuid"`
	StartTime string  `json:"start_time" binding:"required"`
	EndTime   string  `json:"end_time" binding:"required"`
	Course    string  `json:"course" binding:"required,max=200"`
	Venue     string  `json:"venue" binding:"omitempty,max=200"`
	Notes     string  `json:"notes" binding:"omitempty,max=1000"`
}

// UpdateTodaysClassRequest 更新变更请求
type UpdateTodaysClassRequest struct {
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	Course      *string `json:"course" binding:"omitempty,max=200"`
	Venue       *string `json:"venue" binding:"omitempty,max=200"`
	IsCancelled *bool   `json:"is_cancelled"`
	Notes       *string `json:"notes" binding:"omitempty,max=1000"`
}

// TodaysClassResponse 变更条目响应
type TodaysClassResponse struct {
	ID          string  `json:"id"`
	ClassDate   string  `json:"class_date"`
	EntryID     *string `json:"entry_id,omitempty"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Course      string  `json:"course"`
	Venue       string  `json:"venue,omitempty"`
	IsCancelled bool    `json:"is_cancelled"`
	Notes       string  `json:"notes,omitempty"`
}

// ── 合并视图 ──

// MergedClassResponse 常规课表与当日变更的合并结果
// changed 标记按字段独立计算，original_* 保留变更前的值供 UI 高亮
type MergedClassResponse struct {
	EntryID          string `json:"entry_id,omitempty"`
	OverrideID       string `json:"override_id,omitempty"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	Course           string `json:"course"`
	Venue            string `json:"venue,omitempty"`
	IsCancelled      bool   `json:"is_cancelled"`
	IsAdHoc          bool   `json:"is_ad_hoc"` // 无对应常规条目的临时加课
	Notes            string `json:"notes,omitempty"`
	TimeChanged      bool   `json:"time_changed"`
	LocationChanged  bool   `json:"location_changed"`
	CourseChanged    bool   `json:"course_changed"`
	OriginalStart    string `json:"original_start_time,omitempty"`
	OriginalEnd      string `json:"original_end_time,omitempty"`
	OriginalVenue    string `json:"original_venue,omitempty"`
	OriginalCourse   string `json:"original_course,omitempty"`
	OwnerID          string `json:"owner_id,omitempty"`
	OwnerName        string `json:"owner_name,omitempty"`
	IsOwner          bool   `json:"is_owner"`
}

// TodayScheduleResponse 当日课程合并视图响应
type TodayScheduleResponse struct {
	Date    string                `json:"date"`
	Classes []MergedClassResponse `json:"classes"`
}
