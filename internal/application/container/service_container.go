package container

import (
	"fmt"
	"sync"

	"github.com/easayliu/mediabox-download/internal/application/contracts"
	"github.com/easayliu/mediabox-download/internal/application/services/notification"
	"github.com/easayliu/mediabox-download/internal/application/services/task"
	"github.com/easayliu/mediabox-download/internal/domain/services/detect"
	"github.com/easayliu/mediabox-download/internal/infrastructure/config"
	"github.com/easayliu/mediabox-download/internal/infrastructure/downloader"
	"github.com/easayliu/mediabox-download/internal/infrastructure/downloader/gallerydl"
	"github.com/easayliu/mediabox-download/internal/infrastructure/downloader/ytdlp"
	"github.com/easayliu/mediabox-download/internal/infrastructure/filesystem"
	"github.com/easayliu/mediabox-download/internal/infrastructure/registry"
	"github.com/easayliu/mediabox-download/pkg/logger"
)

// ServiceContainer 服务容器 - 实现依赖注入
// 所有服务按需惰性初始化,整个进程只构建一次
type ServiceContainer struct {
	config *config.Config

	// 基础设施层
	taskRegistry *registry.TaskRegistry
	detector     *detect.Detector
	backends     *downloader.Factory

	// 应用层服务实例
	taskService         contracts.TaskService
	folderService       contracts.FolderService
	notificationService contracts.NotificationService
	watchdog            *task.Watchdog

	// 单例模式锁
	once sync.Once
}

// NewServiceContainer 创建服务容器
func NewServiceContainer(cfg *config.Config) *ServiceContainer {
	return &ServiceContainer{
		config: cfg,
	}
}

// GetTaskService 获取任务服务实例
func (c *ServiceContainer) GetTaskService() contracts.TaskService {
	c.once.Do(c.initServices)
	return c.taskService
}

// GetFolderService 获取目录服务实例
func (c *ServiceContainer) GetFolderService() contracts.FolderService {
	c.once.Do(c.initServices)
	return c.folderService
}

// GetNotificationService 获取通知服务实例
func (c *ServiceContainer) GetNotificationService() contracts.NotificationService {
	c.once.Do(c.initServices)
	return c.notificationService
}

// GetTaskRegistry 获取任务注册表
func (c *ServiceContainer) GetTaskRegistry() *registry.TaskRegistry {
	c.once.Do(c.initServices)
	return c.taskRegistry
}

// initServices 初始化所有服务（单例模式）
func (c *ServiceContainer) initServices() {
	logger.Info("Initializing service container")

	// 1. 初始化基础设施层
	c.taskRegistry = registry.NewTaskRegistry()
	c.detector = detect.NewDetector()
	c.backends = downloader.NewFactory(
		ytdlp.New(c.config.YTDLP, c.config.Download.ProgressInterval, c.config.Download.CancelGrace),
		gallerydl.New(c.config.GalleryDL, c.config.Download.ProgressInterval, c.config.Download.CancelGrace),
	)

	// 2. 初始化应用层服务 - 注意依赖关系
	c.folderService = filesystem.NewFolderService(c.config)
	c.notificationService = notification.NewAppNotificationService(c.config)

	taskService := task.NewAppTaskService(
		c.config,
		c.taskRegistry,
		c.detector,
		c.backends,
		c.folderService,
		c.notificationService,
	)
	c.taskService = taskService

	// 3. 启动存活性巡检
	c.watchdog = task.NewWatchdog(taskService,
		c.config.Download.StallTimeout, c.config.Download.HistoryRetention)
	if err := c.watchdog.Start(); err != nil {
		logger.Error("Failed to start task watchdog", "error", err)
	}

	logger.Info("Service container initialized successfully")
}

// Shutdown 关闭服务容器
func (c *ServiceContainer) Shutdown() {
	logger.Info("Shutting down service container")

	if c.watchdog != nil {
		c.watchdog.Stop()
	}

	logger.Info("Service container shutdown completed")
}

// ValidateServices 验证服务配置
func (c *ServiceContainer) ValidateServices() error {
	c.once.Do(c.initServices)

	if c.taskService == nil {
		return fmt.Errorf("task service not initialized")
	}
	if c.folderService == nil {
		return fmt.Errorf("folder service not initialized")
	}
	if c.notificationService == nil {
		return fmt.Errorf("notification service not initialized")
	}

	logger.Info("Service validation completed successfully")
	return nil
}

// GetServiceHealth 获取服务健康状态
func (c *ServiceContainer) GetServiceHealth() map[string]interface{} {
	c.once.Do(c.initServices)

	return map[string]interface{}{
		"container": "healthy",
		"services": map[string]interface{}{
			"task_service":         c.getServiceStatus(c.taskService != nil),
			"folder_service":       c.getServiceStatus(c.folderService != nil),
			"notification_service": c.getServiceStatus(c.notificationService != nil),
			"watchdog":             c.getServiceStatus(c.watchdog != nil),
		},
		"tasks": map[string]interface{}{
			"total":  len(c.taskRegistry.List()),
			"active": c.taskRegistry.ActiveCount(),
		},
	}
}

// getServiceStatus 获取服务状态
func (c *ServiceContainer) getServiceStatus(initialized bool) string {
	if initialized {
		return "healthy"
	}
	return "unhealthy"
}
