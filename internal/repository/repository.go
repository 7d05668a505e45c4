package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User         UserRepository
	InviteCode   InviteCodeRepository
	Connection   ConnectionRepository
	Timetable    TimetableRepository
	Assignment   AssignmentRepository
	TodaysClass  TodaysClassRepository
	Catchup      CatchupRepository
	Notification NotificationRepository
	School       SchoolRepository
	Course       CourseRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		InviteCode:   NewInviteCodeRepo(db),
		Connection:   NewConnectionRepo(db),
		Timetable:    NewTimetableRepo(db),
		Assignment:   NewAssignmentRepo(db),
		TodaysClass:  NewTodaysClassRepo(db),
		Catchup:      NewCatchupRepo(db),
		Notification: NewNotificationRepo(db),
		School:       NewSchoolRepo(db),
		Course:       NewCourseRepo(db),
	}
}
