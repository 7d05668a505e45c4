package service

import (
	"go.uber.org/zap"

	"github.com/JoshTheCodre/myqitt-sub000/config"
	"github.com/JoshTheCodre/myqitt-sub000/internal/realtime"
	"github.com/JoshTheCodre/myqitt-sub000/internal/repository"
	"github.com/JoshTheCodre/myqitt-sub000/pkg/jwt"
	"github.com/JoshTheCodre/myqitt-sub000/pkg/redis"
)

// Service 业务层聚合
type Service struct {
	Auth         AuthService
	User         UserService
	Connection   ConnectionService
	Timetable    TimetableService
	Assignment   AssignmentService
	TodaysClass  TodaysClassService
	Catchup      CatchupService
	Notification NotificationService
	School       SchoolService
}

// NewService 创建业务层聚合
// rdb 允许为 nil（Redis 不可用时认证相关功能降级）
func NewService(repo *repository.Repository, jwtMgr *jwt.Manager, rdb *redis.Client, hub *realtime.Hub, authCfg *config.AuthConfig, logger *zap.Logger) *Service {
	notification := NewNotificationService(repo, hub, logger)
	connection := NewConnectionService(repo, notification, logger)

	return &Service{
		Auth:         NewAuthService(repo, jwtMgr, rdb, authCfg, logger),
		User:         NewUserService(repo, logger),
		Connection:   connection,
		Timetable:    NewTimetableService(repo, connection, logger),
		Assignment:   NewAssignmentService(repo, notification, logger),
		TodaysClass:  NewTodaysClassService(repo, connection, notification, logger),
		Catchup:      NewCatchupService(repo, notification, logger),
		Notification: notification,
		School:       NewSchoolService(repo, logger),
	}
}
