package contracts

import (
	"context"
	"time"

	"github.com/easayliu/mediabox-download/internal/domain/valueobjects"
)

// DetectRequest 平台识别请求
type DetectRequest struct {
	URL string `json:"url" binding:"required"`
}

// DetectResponse 平台识别响应
type DetectResponse struct {
	Platform     valueobjects.Platform       `json:"platform"`
	Downloader   valueobjects.DownloaderKind `json:"downloader"`
	Confidence   float64                     `json:"confidence"`
	PlatformName string                      `json:"platform_name"`
	RequiresAuth bool                        `json:"requires_auth"`
}

// TaskCreateRequest 创建下载任务请求
// downloader为空时使用识别结果推荐的下载器
type TaskCreateRequest struct {
	URL        string `json:"url" binding:"required"`
	SaveFolder string `json:"save_folder" binding:"required"`
	Downloader string `json:"downloader,omitempty"`
	Format     string `json:"format,omitempty"`
}

// TaskCreateResponse 创建下载任务响应
type TaskCreateResponse struct {
	TaskID string `json:"task_id"`
}

// TaskResponse 下载任务统一响应格式
type TaskResponse struct {
	ID         string                      `json:"id"`
	URL        string                      `json:"url"`
	Platform   valueobjects.Platform       `json:"platform"`
	Downloader valueobjects.DownloaderKind `json:"downloader"`
	Status     valueobjects.TaskStatus     `json:"status"`
	Progress   float64                     `json:"progress"`
	Speed      string                      `json:"speed,omitempty"`
	ETA        string                      `json:"eta,omitempty"`
	SaveFolder string                      `json:"save_folder"`
	FileName   string                      `json:"file_name,omitempty"`
	FilePath   string                      `json:"file_path,omitempty"`
	Error      string                      `json:"error,omitempty"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
}

// TaskListResponse 任务列表响应
type TaskListResponse struct {
	Tasks       []TaskResponse `json:"tasks"`
	TotalCount  int            `json:"total_count"`
	ActiveCount int            `json:"active_count"`
}

// TaskDeleteResponse 取消/删除任务响应
// cancelled表示任务仍在执行中并已发出取消信号,deleted表示终态记录已被移除
type TaskDeleteResponse struct {
	TaskID    string `json:"task_id"`
	Cancelled bool   `json:"cancelled"`
	Deleted   bool   `json:"deleted"`
}

// ClearHistoryResponse 清空历史响应
type ClearHistoryResponse struct {
	Removed int `json:"removed"`
}

// TaskService 下载任务服务业务契约
type TaskService interface {
	// DetectPlatform 识别URL所属平台并推荐下载器
	DetectPlatform(ctx context.Context, req DetectRequest) (*DetectResponse, error)
	// CreateTask 创建下载任务并异步开始执行,立即返回任务ID
	CreateTask(ctx context.Context, req TaskCreateRequest) (*TaskCreateResponse, error)
	// ListTasks 获取全部任务的一致性快照
	ListTasks(ctx context.Context) (*TaskListResponse, error)
	// GetTask 获取单个任务
	GetTask(ctx context.Context, id string) (*TaskResponse, error)
	// CancelOrDeleteTask 活动任务发出取消信号,终态任务直接删除记录
	CancelOrDeleteTask(ctx context.Context, id string) (*TaskDeleteResponse, error)
	// ClearHistory 一次性清除所有终态任务,活动任务不受影响
	ClearHistory(ctx context.Context) (*ClearHistoryResponse, error)
}

// FolderService 目录管理协作方契约
// 校验下载目标目录合法性并列出已注册目录
type FolderService interface {
	// ValidateFolder 校验目录是否为允许的下载目标
	ValidateFolder(path string) error
	// ListFolders 列出全部已注册的下载目录
	ListFolders() []string
}

// NotificationService 通知服务业务契约
type NotificationService interface {
	// NotifyTaskCompleted 任务完成通知,失败只记录日志不影响任务状态
	NotifyTaskCompleted(ctx context.Context, task TaskResponse)
	// NotifyTaskFailed 任务失败通知
	NotifyTaskFailed(ctx context.Context, task TaskResponse)
}
