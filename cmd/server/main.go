package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/easayliu/mediabox-download/docs"
	"github.com/easayliu/mediabox-download/internal/application/container"
	"github.com/easayliu/mediabox-download/internal/infrastructure/config"
	"github.com/easayliu/mediabox-download/internal/interfaces/http/routes"
	"github.com/easayliu/mediabox-download/pkg/logger"
	"github.com/gin-gonic/gin"
)

// @title Mediabox Download API
// @version 1.0
// @description 多平台媒体下载任务编排服务
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name MIT
// @license.url https://github.com/easayliu/mediabox-download/blob/main/LICENSE

// @host localhost:8081
// @BasePath /api/v1
// @schemes http https
func main() {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// 初始化日志
	if err := logger.Init(logger.Options{
		Level:     cfg.Log.Level,
		Output:    cfg.Log.Output,
		Format:    cfg.Log.Format,
		FilePath:  cfg.Log.FilePath,
		Colorize:  cfg.Log.Colorize,
		AddSource: cfg.Log.AddSource,
	}); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化服务容器
	serviceContainer := container.NewServiceContainer(cfg)
	if err := serviceContainer.ValidateServices(); err != nil {
		log.Fatal("Failed to initialize service container:", err)
	}

	// 初始化路由
	router := routes.SetupRoutesWithContainer(serviceContainer)

	// 设置信号处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// 启动服务器
	go func() {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		logger.Info("Starting server", "address", addr)
		if err := router.Run(addr); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// 等待退出信号
	<-quit
	logger.Info("Shutting down server...")

	serviceContainer.Shutdown()
	logger.Info("Server stopped")
}
