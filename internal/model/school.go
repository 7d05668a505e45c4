package model

// School 学校表 — 对应 schools
type School struct {
	SchoolID  string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"school_id"`
	Name      string  `gorm:"type:varchar(150);not null;uniqueIndex"         json:"name"`
	ShortName *string `gorm:"type:varchar(30)"                               json:"short_name,omitempty"`
	BaseModel

	// 关联
	Departments []Department `gorm:"foreignKey:SchoolID;references:SchoolID" json:"departments,omitempty"`
}

// TableName 指定表名
func (School) TableName() string { return "schools" }

// Department 院系表 — 对应 departments
type Department struct {
	DepartmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"department_id"`
	SchoolID     string `gorm:"type:uuid;not null"                             json:"school_id"`
	Name         string `gorm:"type:varchar(150);not null"                     json:"name"`
	BaseModel
}

// TableName 指定表名
func (Department) TableName() string { return "departments" }
