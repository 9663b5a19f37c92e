package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Hikan-Teki/deadnetguard/api"
	"github.com/Hikan-Teki/deadnetguard/internal/admin"
	"github.com/Hikan-Teki/deadnetguard/internal/platform/config"
	"github.com/Hikan-Teki/deadnetguard/internal/platform/database"
	"github.com/Hikan-Teki/deadnetguard/internal/platform/health"
	"github.com/Hikan-Teki/deadnetguard/internal/platform/shutdown"
	"github.com/Hikan-Teki/deadnetguard/internal/platform/startup"
	"github.com/Hikan-Teki/deadnetguard/pkg/lifecycle"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("加载配置失败: %v", err))
	}

	// 2. 初始化SQLite和Redis
	database.InitDB(cfg.Database.Sqlite)
	database.InitRedis(cfg.Database.Redis)

	// 3. 阻塞式获取初始Run ID
	health.InitializeRunID()

	// 4. 执行应用首次启动初始化流程（迁移表结构、预热封禁列表缓存）
	if err := startup.InitializeApplication(); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 5. 阻塞式执行一次启动后健康检查
	fmt.Println("正在执行启动后健康检查...")
	health.PerformCheck()

	// 6. 创建生命周期管理器并启动后台服务
	gracefulManager := lifecycle.NewManager()
	forcefulManager := lifecycle.NewManager()

	healthHandle, err := gracefulManager.NewServiceHandle("redis-health-check")
	if err != nil {
		panic(err)
	}
	health.StartRedisHealthCheck(healthHandle)

	sweeperHandle, err := gracefulManager.NewServiceHandle("session-sweeper")
	if err != nil {
		panic(err)
	}
	admin.StartSessionSweeper(sweeperHandle)

	// 7. 创建Gin引擎并配置CORS
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health/live", health.LivenessHandler)
	api.SetupRoutes(r)

	// 8. 在独立的Goroutine中启动HTTP服务器
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}
	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic("Failed to start server: " + err.Error())
		}
	}()

	// 9. 阻塞等待停机信号并编排优雅停机
	coordinator := shutdown.NewCoordinator(gracefulManager, forcefulManager)
	coordinator.ListenForSignalsAndShutdown(server)
}
