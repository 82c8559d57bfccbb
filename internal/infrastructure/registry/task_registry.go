package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/easayliu/mediabox-download/internal/domain/entities"
	"github.com/easayliu/mediabox-download/internal/domain/valueobjects"
	"github.com/google/uuid"
)

var (
	// ErrTaskNotFound 任务不存在(可能已被删除或随进程重启丢失)
	ErrTaskNotFound = errors.New("task not found")
	// ErrInvalidTransition 非法状态迁移(包括对终态任务的任何状态变更)
	ErrInvalidTransition = errors.New("invalid status transition")
)

// TaskRegistry 下载任务注册表
// 服务端任务状态的唯一权威来源:仅存在于进程内存中,不跨重启持久化
// (客户端通过本地历史缓存补偿,见pkg/syncclient)
//
// 所有读操作返回任务副本,保证并发变更时读到的是一致性快照;
// 每个任务只会被其所属的一次执行写入,注册表内部用读写锁保证线性化
type TaskRegistry struct {
	mu    sync.RWMutex
	tasks map[string]*entities.DownloadTask
}

// NewTaskRegistry 创建任务注册表
func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{
		tasks: make(map[string]*entities.DownloadTask),
	}
}

// Create 创建新任务记录,分配ID并置为pending
func (r *TaskRegistry) Create(url string, platform valueobjects.Platform,
	downloader valueobjects.DownloaderKind, saveFolder, format string) *entities.DownloadTask {

	now := time.Now()
	task := &entities.DownloadTask{
		ID:         uuid.New().String(),
		URL:        url,
		Platform:   platform,
		Downloader: downloader,
		Status:     valueobjects.TaskStatusPending,
		SaveFolder: saveFolder,
		Format:     format,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = task
	return task.Clone()
}

// Get 根据ID获取任务副本
func (r *TaskRegistry) Get(id string) (*entities.DownloadTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, exists := r.tasks[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return task.Clone(), nil
}

// List 获取所有任务的副本,按创建时间降序排列
func (r *TaskRegistry) List() []*entities.DownloadTask {
	r.mu.RLock()
	tasks := make([]*entities.DownloadTask, 0, len(r.tasks))
	for _, task := range r.tasks {
		tasks = append(tasks, task.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID > tasks[j].ID
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks
}

// ActiveCount 统计活动任务数量
func (r *TaskRegistry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, task := range r.tasks {
		if task.IsActive() {
			count++
		}
	}
	return count
}

// MarkDownloading 将任务从pending迁移到downloading
// 下载器必须在发起任何网络IO之前调用
func (r *TaskRegistry) MarkDownloading(id string) error {
	return r.transition(id, valueobjects.TaskStatusDownloading, func(task *entities.DownloadTask) {})
}

// UpdateProgress 更新下载进度,只在downloading状态下生效
// 进度单调不减,越界值被收敛到[0,100]
func (r *TaskRegistry) UpdateProgress(id string, progress float64, speed, eta string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, exists := r.tasks[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if task.Status != valueobjects.TaskStatusDownloading {
		return fmt.Errorf("%w: progress update in status %s", ErrInvalidTransition, task.Status)
	}

	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	if progress > task.Progress {
		task.Progress = progress
	}
	task.Speed = speed
	task.ETA = eta
	task.UpdatedAt = time.Now()
	return nil
}

// MarkCompleted 将任务迁移到completed并记录产出文件
func (r *TaskRegistry) MarkCompleted(id, fileName, filePath string) error {
	return r.transition(id, valueobjects.TaskStatusCompleted, func(task *entities.DownloadTask) {
		task.Progress = 100
		task.Speed = ""
		task.ETA = ""
		task.FileName = fileName
		task.FilePath = filePath
	})
}

// MarkFailed 将任务迁移到failed并记录错误信息
func (r *TaskRegistry) MarkFailed(id, message string) error {
	return r.transition(id, valueobjects.TaskStatusFailed, func(task *entities.DownloadTask) {
		task.Speed = ""
		task.ETA = ""
		task.Error = message
	})
}

// MarkCancelled 将任务迁移到cancelled
func (r *TaskRegistry) MarkCancelled(id string) error {
	return r.transition(id, valueobjects.TaskStatusCancelled, func(task *entities.DownloadTask) {
		task.Speed = ""
		task.ETA = ""
	})
}

// transition 执行一次状态迁移,mutate在状态检查通过后持锁执行
func (r *TaskRegistry) transition(id string, target valueobjects.TaskStatus,
	mutate func(*entities.DownloadTask)) error {

	r.mu.Lock()
	defer r.mu.Unlock()

	task, exists := r.tasks[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if !task.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, task.Status, target)
	}

	task.Status = target
	mutate(task)
	task.UpdatedAt = time.Now()
	return nil
}

// Remove 删除任务记录,返回是否存在
func (r *TaskRegistry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.tasks[id]
	delete(r.tasks, id)
	return exists
}

// ClearTerminal 原子清除所有终态任务,返回清除数量
func (r *TaskRegistry) ClearTerminal() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, task := range r.tasks {
		if task.IsTerminal() {
			delete(r.tasks, id)
			removed++
		}
	}
	return removed
}

// PruneTerminalBefore 清除在cutoff之前就已到达终态的任务,返回清除数量
// 供历史保留策略定期回收长期无人认领的终态记录
func (r *TaskRegistry) PruneTerminalBefore(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, task := range r.tasks {
		if task.IsTerminal() && task.UpdatedAt.Before(cutoff) {
			delete(r.tasks, id)
			removed++
		}
	}
	return removed
}

// Stalled 返回在cutoff之前就没有任何更新的downloading任务副本
// 供存活性巡检判定卡死任务
func (r *TaskRegistry) Stalled(cutoff time.Time) []*entities.DownloadTask {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stalled []*entities.DownloadTask
	for _, task := range r.tasks {
		if task.Status == valueobjects.TaskStatusDownloading && task.UpdatedAt.Before(cutoff) {
			stalled = append(stalled, task.Clone())
		}
	}
	return stalled
}
