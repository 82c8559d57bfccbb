package routes

import (
	"github.com/easayliu/mediabox-download/internal/application/container"
	"github.com/easayliu/mediabox-download/internal/interfaces/http/handlers"
	"github.com/easayliu/mediabox-download/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RoutesConfig 路由配置 - API First架构
type RoutesConfig struct {
	container *container.ServiceContainer
}

// NewRoutesConfig 创建路由配置
func NewRoutesConfig(container *container.ServiceContainer) *RoutesConfig {
	return &RoutesConfig{
		container: container,
	}
}

// SetupRoutes 设置路由
func (rc *RoutesConfig) SetupRoutes(router *gin.Engine) {
	taskHandler := handlers.NewTaskHandler(rc.container)
	folderHandler := handlers.NewFolderHandler(rc.container)

	// API 路由组
	api := router.Group("/api/v1")
	{
		// 健康检查
		api.GET("/health", handlers.HealthCheck)
		api.GET("/health/services", handlers.ServiceHealth(rc.container))

		// 下载任务路由
		api.POST("/task-detect", taskHandler.DetectPlatform)
		api.POST("/task-create", taskHandler.CreateTask)
		api.GET("/tasks", taskHandler.ListTasks)
		api.GET("/task/:id", taskHandler.GetTask)
		api.DELETE("/task/:id", taskHandler.DeleteTask)
		api.DELETE("/history", taskHandler.ClearHistory)

		// 下载目录路由
		api.GET("/folders", folderHandler.ListFolders)
	}
}

// SetupRoutesWithContainer 使用ServiceContainer构建完整的路由引擎
func SetupRoutesWithContainer(c *container.ServiceContainer) *gin.Engine {
	router := gin.New()

	// 全局中间件
	router.Use(middleware.RecoverMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.ErrorHandlerMiddleware())
	router.Use(middleware.ContainerMiddleware(c))

	// Swagger文档路由
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 创建路由配置并设置路由
	routesConfig := NewRoutesConfig(c)
	routesConfig.SetupRoutes(router)

	return router
}
