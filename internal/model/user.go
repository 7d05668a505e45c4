package model

// 用户角色
const (
	RoleStudent   = "student"
	RoleCourseRep = "course_rep"
	RoleAdmin     = "admin"
)

// User 用户表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	School       string `gorm:"type:varchar(150);not null;default:''"          json:"school"`
	Department   string `gorm:"type:varchar(150);not null;default:''"          json:"department"`
	Level        int    `gorm:"not null;default:1"                             json:"level"`
	Semester     string `gorm:"type:varchar(10);not null;default:'first'"      json:"semester"`
	Bio          string `gorm:"type:text;not null;default:''"                  json:"bio"`
	AvatarURL    string `gorm:"type:text;not null;default:''"                  json:"avatar_url"`
	Role         string `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// Group 返回用户所属班级
func (u *User) Group() ClassGroup {
	return ClassGroup{
		School:     u.School,
		Department: u.Department,
		Level:      u.Level,
		Semester:   u.Semester,
	}
}

// GroupKey 返回用户班级键，与 CatchupTargets.ClassGroups 的格式一致
func (u *User) GroupKey() string { return u.Group().Key() }

// IsCourseRep 是否为课代表
func (u *User) IsCourseRep() bool { return u.Role == RoleCourseRep }
