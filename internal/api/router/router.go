package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JoshTheCodre/myqitt-sub000/config"
	"github.com/JoshTheCodre/myqitt-sub000/internal/api/handler"
	"github.com/JoshTheCodre/myqitt-sub000/internal/api/middleware"
	"github.com/JoshTheCodre/myqitt-sub000/pkg/jwt"
	"github.com/JoshTheCodre/myqitt-sub000/pkg/redis"
)

// Setup 组装全部路由与中间件
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	// ── 公开接口 ──
	auth := v1.Group("/auth")
	{
		// 认证相关接口限流防爆破
		authLimit := middleware.RateLimit(rdb, 10, time.Minute)
		auth.POST("/register", authLimit, h.Auth.Register)
		auth.POST("/login", authLimit, h.Auth.Login)
		auth.POST("/refresh", authLimit, h.Auth.RefreshToken)
		auth.GET("/invite/:code", h.Auth.ValidateInvite)
	}

	// ── 需认证接口 ──
	authorized := v1.Group("")
	authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
	{
		// 认证（登录态下）
		authorized.POST("/auth/logout", h.Auth.Logout)
		authorized.PUT("/auth/password", h.Auth.ChangePassword)
		authorized.POST("/auth/invite",
			middleware.RoleAuth("course_rep", "admin"), h.Auth.GenerateInvite)

		// 用户
		users := authorized.Group("/users")
		{
			users.GET("/me", h.User.GetMe)
			users.PUT("/me", h.User.UpdateMe)
			users.DELETE("/me", h.User.DeleteMe)
			users.GET("/classmates", h.User.ListClassmates)
		}

		// 连接与可见性
		connections := authorized.Group("/connections")
		{
			connections.POST("", h.Connection.Connect)
			connections.GET("/outgoing", h.Connection.ListOutgoing)
			connections.GET("/incoming", h.Connection.ListIncoming)
			connections.GET("/visibility/:kind", h.Connection.Resolve)
			connections.PUT("/:id", h.Connection.UpdateTypes)
			connections.DELETE("/:following_id", h.Connection.Disconnect)
		}

		// 课表
		timetable := authorized.Group("/timetable")
		{
			timetable.PUT("", h.Timetable.Save)
			timetable.GET("", h.Timetable.Get)
			timetable.GET("/own", h.Timetable.GetOwn)
			timetable.GET("/export.ics", h.Timetable.ExportICS)
		}

		// 作业（写操作的课代表校验由业务层执行）
		assignments := authorized.Group("/assignments")
		{
			assignments.POST("", h.Assignment.Create)
			assignments.GET("", h.Assignment.List)
			assignments.GET("/export", h.Assignment.ExportSubmissionMatrix)
			assignments.GET("/:id", h.Assignment.Get)
			assignments.PUT("/:id", h.Assignment.Update)
			assignments.DELETE("/:id", h.Assignment.Delete)
			assignments.PUT("/:id/submission", h.Assignment.ToggleSubmission)
		}

		// 当日课程变更
		todaysClasses := authorized.Group("/todays-classes")
		{
			todaysClasses.POST("", h.TodaysClass.Create)
			todaysClasses.GET("", h.TodaysClass.ListForDate)
			todaysClasses.GET("/schedule", h.TodaysClass.GetMergedSchedule)
			todaysClasses.PUT("/:id", h.TodaysClass.Update)
			todaysClasses.DELETE("/:id", h.TodaysClass.Delete)
		}

		// 补课公告
		catchups := authorized.Group("/catchups")
		{
			catchups.POST("", h.Catchup.Create)
			catchups.GET("", h.Catchup.ListForUser)
			catchups.GET("/mine", h.Catchup.ListMine)
			catchups.GET("/:id", h.Catchup.Get)
			catchups.PUT("/:id", h.Catchup.Update)
			catchups.DELETE("/:id", h.Catchup.Delete)
		}

		// 通知
		notifications := authorized.Group("/notifications")
		{
			notifications.GET("", h.Notification.List)
			notifications.GET("/unread", h.Notification.UnreadCount)
			notifications.PUT("/read-all", h.Notification.MarkAllRead)
			notifications.PUT("/:id/read", h.Notification.MarkRead)
			notifications.GET("/preferences", h.Notification.GetPreferences)
			notifications.PUT("/preferences", h.Notification.UpdatePreferences)
			notifications.POST("/tokens", h.Notification.RegisterToken)
			notifications.DELETE("/tokens/:token", h.Notification.RemoveToken)
		}

		// 基础数据
		authorized.GET("/schools", h.School.ListSchools)
		authorized.GET("/courses", h.School.ListCourses)
	}

	// WebSocket 实时流：令牌通过查询参数携带，不走 JWTAuth 中间件
	v1.GET("/notifications/stream", h.Notification.Stream)

	return r
}
