package task

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/easayliu/mediabox-download/internal/application/contracts"
	"github.com/easayliu/mediabox-download/internal/domain/entities"
	"github.com/easayliu/mediabox-download/internal/domain/services/detect"
	"github.com/easayliu/mediabox-download/internal/domain/valueobjects"
	"github.com/easayliu/mediabox-download/internal/infrastructure/config"
	"github.com/easayliu/mediabox-download/internal/infrastructure/downloader"
	"github.com/easayliu/mediabox-download/internal/infrastructure/registry"
	"github.com/easayliu/mediabox-download/pkg/logger"
)

// AppTaskService 应用层下载任务服务 - 负责任务编排
// 创建请求经过平台识别和目录校验后写入注册表,随即异步交给下载器后端执行;
// 创建调用立即返回任务ID,绝不阻塞在下载本身上
type AppTaskService struct {
	config   *config.Config
	registry *registry.TaskRegistry
	detector *detect.Detector
	backends *downloader.Factory
	folders  contracts.FolderService
	notifier contracts.NotificationService

	// cancels 每个活动任务的取消函数,任务ID → cancel
	// 同一任务只会有一次执行,执行结束后立即清除
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewAppTaskService 创建应用任务服务
func NewAppTaskService(cfg *config.Config, reg *registry.TaskRegistry,
	detector *detect.Detector, backends *downloader.Factory,
	folders contracts.FolderService, notifier contracts.NotificationService) *AppTaskService {

	return &AppTaskService{
		config:   cfg,
		registry: reg,
		detector: detector,
		backends: backends,
		folders:  folders,
		notifier: notifier,
		cancels:  make(map[string]context.CancelFunc),
	}
}

// DetectPlatform 识别URL所属平台并推荐下载器
func (s *AppTaskService) DetectPlatform(ctx context.Context, req contracts.DetectRequest) (*contracts.DetectResponse, error) {
	result, err := s.detector.Detect(req.URL)
	if err != nil {
		return nil, contracts.NewServiceErrorWithCause(contracts.ErrorCodeInvalidURL, err.Error(), err)
	}

	return &contracts.DetectResponse{
		Platform:     result.Platform,
		Downloader:   result.Downloader,
		Confidence:   result.Confidence,
		PlatformName: result.PlatformName,
		RequiresAuth: result.RequiresAuth,
	}, nil
}

// CreateTask 创建下载任务并异步开始执行
func (s *AppTaskService) CreateTask(ctx context.Context, req contracts.TaskCreateRequest) (*contracts.TaskCreateResponse, error) {
	logger.Info("Creating download task", "url", req.URL, "save_folder", req.SaveFolder, "downloader", req.Downloader)

	detection, err := s.detector.Detect(req.URL)
	if err != nil {
		return nil, contracts.NewServiceErrorWithCause(contracts.ErrorCodeInvalidURL, err.Error(), err)
	}

	kind, err := s.resolveDownloader(req, detection)
	if err != nil {
		return nil, err
	}

	if err := s.folders.ValidateFolder(req.SaveFolder); err != nil {
		return nil, contracts.NewServiceErrorWithDetails(contracts.ErrorCodeDestinationInvalid,
			err.Error(), map[string]interface{}{"folders": s.folders.ListFolders()})
	}

	backend, err := s.backends.ForKind(kind)
	if err != nil {
		return nil, contracts.NewServiceErrorWithCause(contracts.ErrorCodeInternalError, err.Error(), err)
	}

	task := s.registry.Create(req.URL, detection.Platform, kind, req.SaveFolder, req.Format)

	// 执行上下文独立于请求上下文:HTTP请求结束不应中断下载
	execCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancels[task.ID] = cancel
	s.mu.Unlock()

	go s.execute(execCtx, backend, task.ID, downloader.Request{
		TaskID:     task.ID,
		URL:        task.URL,
		SaveFolder: task.SaveFolder,
		Format:     task.Format,
	})

	logger.Info("Download task created", "task_id", task.ID, "platform", task.Platform, "downloader", kind)
	return &contracts.TaskCreateResponse{TaskID: task.ID}, nil
}

// resolveDownloader 确定执行任务的下载器
// 显式指定时校验合法性;未指定时采用识别推荐,但置信度低于阈值的
// 未知平台会被拒绝,避免盲目把任意URL交给通用下载器
func (s *AppTaskService) resolveDownloader(req contracts.TaskCreateRequest, detection *detect.Result) (valueobjects.DownloaderKind, error) {
	if req.Downloader != "" {
		kind := valueobjects.DownloaderKind(req.Downloader)
		if !kind.IsValid() {
			return "", contracts.NewServiceError(contracts.ErrorCodeInvalidRequest,
				fmt.Sprintf("unknown downloader %q", req.Downloader))
		}
		return kind, nil
	}

	if detection.Confidence < s.config.Download.MinConfidence {
		return "", contracts.NewServiceErrorWithDetails(contracts.ErrorCodeUnsupportedPlatform,
			"platform not recognized; specify a downloader explicitly to proceed",
			map[string]interface{}{
				"platform":   detection.Platform,
				"confidence": detection.Confidence,
			})
	}
	return detection.Downloader, nil
}

// execute 驱动一次下载执行,负责全部状态迁移
// 运行在独立goroutine中,终态迁移恰好发生一次
func (s *AppTaskService) execute(ctx context.Context, backend downloader.Backend, id string, req downloader.Request) {
	defer s.releaseCancel(id)

	// 发起任何网络IO之前先进入downloading
	if err := s.registry.MarkDownloading(id); err != nil {
		// 任务在启动前已被取消或删除
		logger.Debug("Task no longer pending, skipping execution", "task_id", id, "error", err)
		return
	}

	report := func(percent float64, speed, eta string) {
		// 终态之后的迟到进度会被注册表拒绝,忽略即可
		_ = s.registry.UpdateProgress(id, percent, speed, eta)
	}

	result, err := backend.Run(ctx, req, report)
	switch {
	case err == nil:
		if markErr := s.registry.MarkCompleted(id, result.FileName, result.FilePath); markErr != nil {
			// 竞争失败:存活性巡检或取消已先行占据终态
			logger.Warn("Completed download could not be recorded", "task_id", id, "error", markErr)
			return
		}
		logger.Info("Download completed", "task_id", id, "file_path", result.FilePath)
		s.notifyTerminal(id, true)

	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		if markErr := s.registry.MarkCancelled(id); markErr == nil {
			logger.Info("Download cancelled", "task_id", id)
		}

	default:
		if markErr := s.registry.MarkFailed(id, err.Error()); markErr != nil {
			logger.Warn("Failed download could not be recorded", "task_id", id, "error", markErr)
			return
		}
		logger.Error("Download failed", "task_id", id, "error", err)
		s.notifyTerminal(id, false)
	}
}

// notifyTerminal 推送终态通知,失败不影响任务状态
func (s *AppTaskService) notifyTerminal(id string, completed bool) {
	if s.notifier == nil {
		return
	}
	task, err := s.registry.Get(id)
	if err != nil {
		return
	}
	resp := toTaskResponse(task)
	if completed {
		s.notifier.NotifyTaskCompleted(context.Background(), resp)
	} else {
		s.notifier.NotifyTaskFailed(context.Background(), resp)
	}
}

// releaseCancel 执行结束后清除取消函数并释放上下文
func (s *AppTaskService) releaseCancel(id string) {
	s.mu.Lock()
	cancel, ok := s.cancels[id]
	delete(s.cancels, id)
	s.mu.Unlock()
	if ok {
		cancel()
	}
}

// cancelExecution 向任务的执行goroutine发出取消信号
// 返回是否找到了可取消的执行
func (s *AppTaskService) cancelExecution(id string) bool {
	s.mu.Lock()
	cancel, ok := s.cancels[id]
	s.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// ListTasks 获取全部任务的一致性快照
func (s *AppTaskService) ListTasks(ctx context.Context) (*contracts.TaskListResponse, error) {
	tasks := s.registry.List()

	responses := make([]contracts.TaskResponse, 0, len(tasks))
	active := 0
	for _, task := range tasks {
		if task.IsActive() {
			active++
		}
		responses = append(responses, toTaskResponse(task))
	}

	return &contracts.TaskListResponse{
		Tasks:       responses,
		TotalCount:  len(responses),
		ActiveCount: active,
	}, nil
}

// GetTask 获取单个任务
// 任务不存在不代表从未存在过:可能已被删除,或随服务重启丢失
func (s *AppTaskService) GetTask(ctx context.Context, id string) (*contracts.TaskResponse, error) {
	task, err := s.registry.Get(id)
	if err != nil {
		return nil, contracts.NewServiceErrorWithCause(contracts.ErrorCodeTaskNotFound,
			fmt.Sprintf("task %s not found", id), err)
	}
	resp := toTaskResponse(task)
	return &resp, nil
}

// CancelOrDeleteTask 活动任务发出取消信号,终态任务直接删除记录
// 取消是尽力而为:不等待后端确认,状态由执行goroutine在退出时落账
func (s *AppTaskService) CancelOrDeleteTask(ctx context.Context, id string) (*contracts.TaskDeleteResponse, error) {
	task, err := s.registry.Get(id)
	if err != nil {
		return nil, contracts.NewServiceErrorWithCause(contracts.ErrorCodeTaskNotFound,
			fmt.Sprintf("task %s not found", id), err)
	}

	if task.IsActive() {
		if !s.cancelExecution(id) {
			// 没有在途执行可以通知(如进程重启前的遗留pending),直接落终态
			_ = s.registry.MarkCancelled(id)
		}
		logger.Info("Task cancellation requested", "task_id", id)
		return &contracts.TaskDeleteResponse{TaskID: id, Cancelled: true}, nil
	}

	s.registry.Remove(id)
	logger.Info("Terminal task deleted", "task_id", id)
	return &contracts.TaskDeleteResponse{TaskID: id, Deleted: true}, nil
}

// ClearHistory 一次性清除所有终态任务
func (s *AppTaskService) ClearHistory(ctx context.Context) (*contracts.ClearHistoryResponse, error) {
	removed := s.registry.ClearTerminal()
	logger.Info("Task history cleared", "removed", removed)
	return &contracts.ClearHistoryResponse{Removed: removed}, nil
}

// toTaskResponse 将任务实体转换为统一响应格式
func toTaskResponse(task *entities.DownloadTask) contracts.TaskResponse {
	return contracts.TaskResponse{
		ID:         task.ID,
		URL:        task.URL,
		Platform:   task.Platform,
		Downloader: task.Downloader,
		Status:     task.Status,
		Progress:   task.Progress,
		Speed:      task.Speed,
		ETA:        task.ETA,
		SaveFolder: task.SaveFolder,
		FileName:   task.FileName,
		FilePath:   task.FilePath,
		Error:      task.Error,
		CreatedAt:  task.CreatedAt,
		UpdatedAt:  task.UpdatedAt,
	}
}
