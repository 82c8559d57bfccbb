package syncclient

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/easayliu/mediabox-download/internal/application/contracts"
	"github.com/easayliu/mediabox-download/internal/domain/valueobjects"
	"github.com/easayliu/mediabox-download/internal/infrastructure/ratelimit"
	"github.com/easayliu/mediabox-download/pkg/httpclient"
	"github.com/easayliu/mediabox-download/pkg/logger"
)

// apiEnvelope 服务端统一响应包装
type apiEnvelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// TaskView 渲染用的任务视图
// Cached表示该条目只存在于本地历史缓存(服务端已遗忘);
// PendingCancel表示取消请求已发出但尚未被下一次轮询确认,UI可先置灰
type TaskView struct {
	contracts.TaskResponse
	Cached        bool `json:"cached"`
	PendingCancel bool `json:"pending_cancel"`
}

// Client 客户端同步层
// 周期轮询服务端任务列表,与本地历史缓存合并;服务端注册表是易失的,
// 完成任务落入本地历史后即使服务端重启也能继续展示
type Client struct {
	baseURL  string
	store    HistoryStore
	interval time.Duration
	onUpdate func([]TaskView)

	// pollLimiter 约束Resume触发的即时轮询,用户连续操作不会击穿服务端
	pollLimiter *ratelimit.RateLimiter

	mu            sync.Mutex
	live          []contracts.TaskResponse
	history       []HistoryEntry
	pendingCancel map[string]bool

	resume chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// NewClient 创建同步客户端并加载本地历史
// onUpdate在每次成功合并后被调用(轮询goroutine上),可为nil
func NewClient(baseURL string, store HistoryStore, interval time.Duration, onUpdate func([]TaskView)) (*Client, error) {
	history, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load history cache: %w", err)
	}

	return &Client{
		baseURL:       baseURL,
		store:         store,
		interval:      interval,
		onUpdate:      onUpdate,
		pollLimiter:   ratelimit.NewIntervalLimiter(interval / 2),
		history:       history,
		pendingCancel: make(map[string]bool),
		resume:        make(chan struct{}, 1),
	}, nil
}

// Detect 请求服务端识别URL所属平台
func (c *Client) Detect(ctx context.Context, url string) (*contracts.DetectResponse, error) {
	var envelope apiEnvelope[contracts.DetectResponse]
	err := httpclient.PostJSON(c.baseURL+"/api/v1/task-detect",
		contracts.DetectRequest{URL: url}, &envelope,
		httpclient.DefaultOptions().WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// CreateTask 创建下载任务并触发一次恢复轮询
func (c *Client) CreateTask(ctx context.Context, req contracts.TaskCreateRequest) (string, error) {
	var envelope apiEnvelope[contracts.TaskCreateResponse]
	err := httpclient.PostJSON(c.baseURL+"/api/v1/task-create", req, &envelope,
		httpclient.DefaultOptions().WithContext(ctx))
	if err != nil {
		return "", err
	}

	c.Resume()
	return envelope.Data.TaskID, nil
}

// CancelTask 请求取消/删除任务
// 不在本地预测结果,由下一次轮询反映真实状态;仅做乐观置灰
func (c *Client) CancelTask(ctx context.Context, id string) error {
	c.mu.Lock()
	c.pendingCancel[id] = true
	c.mu.Unlock()

	err := httpclient.DeleteJSON(c.baseURL+"/api/v1/task/"+id, nil, nil,
		httpclient.DefaultOptions().WithContext(ctx))
	if err != nil {
		// 请求没有到达服务端,撤销置灰
		c.mu.Lock()
		delete(c.pendingCancel, id)
		c.mu.Unlock()
		return err
	}

	c.Resume()
	return nil
}

// ClearHistory 清空服务端终态任务并修剪本地历史
// 仍在live活动集中的任务永不丢弃
func (c *Client) ClearHistory(ctx context.Context) error {
	err := httpclient.DeleteJSON(c.baseURL+"/api/v1/history", nil, nil,
		httpclient.DefaultOptions().WithContext(ctx))
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	activeIDs := make(map[string]bool)
	for _, task := range c.live {
		if task.Status.IsActive() {
			activeIDs[task.ID] = true
		}
	}

	kept := c.history[:0]
	for _, entry := range c.history {
		if activeIDs[entry.ID] {
			kept = append(kept, entry)
		}
	}
	c.history = kept

	if err := c.store.Save(c.history); err != nil {
		logger.Warn("Failed to persist trimmed history", "error", err)
	}
	return nil
}

// PollOnce 执行一次轮询并合并结果
// 网络失败视为瞬态:返回错误但绝不清空本地历史
func (c *Client) PollOnce(ctx context.Context) error {
	var envelope apiEnvelope[contracts.TaskListResponse]
	err := httpclient.GetJSON(c.baseURL+"/api/v1/tasks", &envelope,
		httpclient.DefaultOptions().WithContext(ctx))
	if err != nil {
		return fmt.Errorf("poll failed: %w", err)
	}

	c.applySnapshot(envelope.Data.Tasks)

	if c.onUpdate != nil {
		c.onUpdate(c.Snapshot())
	}
	return nil
}

// applySnapshot 合并服务端快照:live永远覆盖缓存,完成任务落入历史
// 幂等:同一快照应用多次结果一致
func (c *Client) applySnapshot(tasks []contracts.TaskResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	known := make(map[string]bool, len(c.history))
	for _, entry := range c.history {
		known[entry.ID] = true
	}

	changed := false
	for _, task := range tasks {
		if task.Status == valueobjects.TaskStatusCompleted && !known[task.ID] {
			c.history = append(c.history, HistoryEntry{
				ID:        task.ID,
				URL:       task.URL,
				Platform:  string(task.Platform),
				FileName:  task.FileName,
				FilePath:  task.FilePath,
				CreatedAt: task.CreatedAt,
			})
			known[task.ID] = true
			changed = true
		}

		// 任务已落终态或已消失,取消不再是悬而未决
		if !task.Status.IsActive() {
			delete(c.pendingCancel, task.ID)
		}
	}

	liveIDs := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		liveIDs[task.ID] = true
	}
	for id := range c.pendingCancel {
		if !liveIDs[id] {
			delete(c.pendingCancel, id)
		}
	}

	c.live = tasks

	if changed {
		if err := c.store.Save(c.history); err != nil {
			logger.Warn("Failed to persist history cache", "error", err)
		}
	}
}

// Snapshot 返回合并后的渲染列表
// live ∪ (history \ live),按创建时间倒序,ID去重
func (c *Client) Snapshot() []TaskView {
	c.mu.Lock()
	defer c.mu.Unlock()

	views := make([]TaskView, 0, len(c.live)+len(c.history))
	seen := make(map[string]bool, len(c.live))

	for _, task := range c.live {
		views = append(views, TaskView{
			TaskResponse:  task,
			PendingCancel: c.pendingCancel[task.ID],
		})
		seen[task.ID] = true
	}

	for _, entry := range c.history {
		if seen[entry.ID] {
			continue
		}
		views = append(views, TaskView{
			TaskResponse: contracts.TaskResponse{
				ID:        entry.ID,
				URL:       entry.URL,
				Platform:  valueobjects.Platform(entry.Platform),
				Status:    valueobjects.TaskStatusCompleted,
				Progress:  100,
				FileName:  entry.FileName,
				FilePath:  entry.FilePath,
				CreatedAt: entry.CreatedAt,
			},
			Cached: true,
		})
		seen[entry.ID] = true
	}

	sort.SliceStable(views, func(i, j int) bool {
		if !views[i].CreatedAt.Equal(views[j].CreatedAt) {
			return views[i].CreatedAt.After(views[j].CreatedAt)
		}
		return views[i].ID < views[j].ID
	})
	return views
}

// hasActive 是否还有需要跟进的活动任务
func (c *Client) hasActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, task := range c.live {
		if task.Status.IsActive() {
			return true
		}
	}
	return false
}

// Start 启动自适应轮询
// 只在有活动任务时按固定间隔轮询,空闲时挂起直到Resume被调用
func (c *Client) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})

	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		// 启动先同步一次,恢复上次会话的在途任务视图
		if err := c.PollOnce(ctx); err != nil {
			logger.Debug("Initial poll failed", "error", err)
		}

		for {
			if !c.hasActive() {
				// 空闲挂起,避免无意义的轮询负载
				select {
				case <-c.resume:
				case <-ctx.Done():
					return
				}
				if c.pollLimiter.Allow() {
					if err := c.PollOnce(ctx); err != nil {
						logger.Debug("Poll failed, will retry", "error", err)
					}
				}
				continue
			}

			select {
			case <-ticker.C:
				if err := c.PollOnce(ctx); err != nil {
					logger.Debug("Poll failed, will retry", "error", err)
				}
			case <-c.resume:
				if c.pollLimiter.Allow() {
					if err := c.PollOnce(ctx); err != nil {
						logger.Debug("Poll failed, will retry", "error", err)
					}
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Resume 唤醒空闲中的轮询(用户操作或应用回到前台时调用)
func (c *Client) Resume() {
	select {
	case c.resume <- struct{}{}:
	default:
	}
}

// Stop 停止轮询并关闭历史存储
func (c *Client) Stop() error {
	if c.cancel != nil {
		c.cancel()
		<-c.done
	}
	return c.store.Close()
}
