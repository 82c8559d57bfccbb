package notification

import (
	"context"
	"fmt"

	"github.com/easayliu/mediabox-download/internal/application/contracts"
	"github.com/easayliu/mediabox-download/internal/infrastructure/config"
	"github.com/easayliu/mediabox-download/internal/infrastructure/telegram"
	"github.com/easayliu/mediabox-download/pkg/logger"
)

// AppNotificationService 应用层通知服务 - 实现contracts.NotificationService接口
// 任务到达终态时向Telegram推送结果;通知失败只记日志,不影响任务状态
type AppNotificationService struct {
	config         *config.Config
	telegramClient *telegram.Client
}

// NewAppNotificationService 创建应用通知服务
func NewAppNotificationService(cfg *config.Config) contracts.NotificationService {
	var telegramClient *telegram.Client
	if cfg.Telegram.Enabled {
		telegramClient = telegram.NewClient(&cfg.Telegram)
	}

	return &AppNotificationService{
		config:         cfg,
		telegramClient: telegramClient,
	}
}

// NotifyTaskCompleted 任务完成通知
func (s *AppNotificationService) NotifyTaskCompleted(ctx context.Context, task contracts.TaskResponse) {
	if s.telegramClient == nil {
		return
	}

	message := fmt.Sprintf(
		"<b>下载完成</b>\n\n平台: %s\n文件: %s\n保存位置: %s",
		task.Platform.DisplayName(), task.FileName, task.FilePath,
	)
	s.telegramClient.Broadcast(message)
	logger.Debug("Task completion notification sent", "task_id", task.ID)
}

// NotifyTaskFailed 任务失败通知
func (s *AppNotificationService) NotifyTaskFailed(ctx context.Context, task contracts.TaskResponse) {
	if s.telegramClient == nil {
		return
	}

	message := fmt.Sprintf(
		"<b>下载失败</b>\n\n平台: %s\n链接: %s\n原因: %s",
		task.Platform.DisplayName(), task.URL, task.Error,
	)
	s.telegramClient.Broadcast(message)
	logger.Debug("Task failure notification sent", "task_id", task.ID)
}
