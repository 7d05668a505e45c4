package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/JoshTheCodre/myqitt-sub000/config"
	"github.com/JoshTheCodre/myqitt-sub000/internal/api/handler"
	"github.com/JoshTheCodre/myqitt-sub000/internal/api/router"
	"github.com/JoshTheCodre/myqitt-sub000/internal/realtime"
	"github.com/JoshTheCodre/myqitt-sub000/internal/repository"
	"github.com/JoshTheCodre/myqitt-sub000/internal/service"
	"github.com/JoshTheCodre/myqitt-sub000/pkg/database"
	"github.com/JoshTheCodre/myqitt-sub000/pkg/jwt"
	"github.com/JoshTheCodre/myqitt-sub000/pkg/logger"
	"github.com/JoshTheCodre/myqitt-sub000/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	// .env 不存在时忽略，配置走环境变量和默认值
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// ── 数据库 ──
	db, err := database.NewDB(&cfg.Database, log)
	if err != nil {
		log.Fatal("数据库连接失败", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("获取底层数据库连接失败", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB, log); err != nil {
		log.Fatal("数据库迁移失败", zap.Error(err))
	}

	// ── Redis（不可用时降级：黑名单与限流跳过） ──
	rdb, err := redis.NewClient(&cfg.Redis, log)
	if err != nil {
		log.Warn("Redis 不可用，Token 黑名单与限流降级", zap.Error(err))
		rdb = nil
	} else {
		defer rdb.Close()
	}

	// ── 组装各层 ──
	jwtMgr := jwt.NewManager(&cfg.Auth)
	hub := realtime.NewHub(log)
	repo := repository.NewRepository(db)
	svc := service.NewService(repo, jwtMgr, rdb, hub, &cfg.Auth, log)
	h := handler.NewHandler(svc, hub, jwtMgr)
	r := router.Setup(cfg, h, jwtMgr, rdb, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP 服务启动", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP 服务异常退出", zap.Error(err))
		}
	}()

	// ── 优雅停机 ──
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("收到停机信号，开始优雅关闭")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("优雅关闭失败", zap.Error(err))
	}

	log.Info("服务已退出")
}
