package model

// Course 课程表 — 对应 courses
// 按院系 + 年级 + 学期组织，选课/注册界面使用
type Course struct {
	CourseID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	DepartmentID string `gorm:"type:uuid;not null"         json:"department_id"`
	Code         string `gorm:"type:varchar(20);not null"  json:"code"`
	Title        string `gorm:"type:varchar(200);not null" json:"title"`
	Level        int    `gorm:"not null"                   json:"level"`
	Semester     string `gorm:"type:varchar(10);not null"  json:"semester"`
	Units        int    `gorm:"not null;default:0"         json:"units"`
	BaseModel
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }
