package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ── 班级（class group）──
//
// Qitt 中作业、公告与当日课程变更均以班级为作用域：
// 同一 school + department + level + semester 的学生属于同一班级。

// ClassGroup 班级标识（嵌入到按班级作用域的模型中）
type ClassGroup struct {
	School     string `gorm:"type:varchar(150);not null" json:"school"`
	Department string `gorm:"type:varchar(150);not null" json:"department"`
	Level      int    `gorm:"not null"                   json:"level"`
	Semester   string `gorm:"type:varchar(10);not null"  json:"semester"`
}

// Matches 判断两个班级标识是否相同
func (g ClassGroup) Matches(other ClassGroup) bool {
	return g.School == other.School &&
		g.Department == other.Department &&
		g.Level == other.Level &&
		g.Semester == other.Semester
}

// Key 返回 "school/department/level/semester" 形式的班级键
func (g ClassGroup) Key() string {
	return fmt.Sprintf("%s/%s/%d/%s", g.School, g.Department, g.Level, g.Semester)
}

// ParseClassGroupKey 解析 Key 生成的班级键，格式不合法时 ok 为 false
func ParseClassGroupKey(key string) (ClassGroup, bool) {
	parts := strings.Split(key, "/")
	if len(parts) != 4 {
		return ClassGroup{}, false
	}
	level, err := strconv.Atoi(parts[2])
	if err != nil {
		return ClassGroup{}, false
	}
	return ClassGroup{
		School:     parts[0],
		Department: parts[1],
		Level:      level,
		Semester:   parts[3],
	}, true
}
