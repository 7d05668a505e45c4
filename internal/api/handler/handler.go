package handler

import (
	"github.com/JoshTheCodre/myqitt-sub000/internal/realtime"
	"github.com/JoshTheCodre/myqitt-sub000/internal/service"
	"github.com/JoshTheCodre/myqitt-sub000/pkg/jwt"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Connection   *ConnectionHandler
	Timetable    *TimetableHandler
	Assignment   *AssignmentHandler
	TodaysClass  *TodaysClassHandler
	Catchup      *CatchupHandler
	Notification *NotificationHandler
	School       *SchoolHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, hub *realtime.Hub, jwtMgr *jwt.Manager) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User),
		Connection:   NewConnectionHandler(svc.Connection),
		Timetable:    NewTimetableHandler(svc.Timetable),
		Assignment:   NewAssignmentHandler(svc.Assignment),
		TodaysClass:  NewTodaysClassHandler(svc.TodaysClass),
		Catchup:      NewCatchupHandler(svc.Catchup),
		Notification: NewNotificationHandler(svc.Notification, hub, jwtMgr),
		School:       NewSchoolHandler(svc.School),
	}
}
