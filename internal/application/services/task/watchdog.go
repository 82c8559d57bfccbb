package task

import (
	"fmt"
	"time"

	"github.com/easayliu/mediabox-download/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Watchdog 任务存活性巡检与历史保留
// 下载器进程静默死亡时任务会永远停在downloading,客户端看到的就是
// 一个卡死的进度条;巡检把超过stall_timeout没有任何进度更新的任务
// 判定为失败并回收其执行上下文
//
// 超时阈值取自download.stall_timeout(默认10分钟),上游没有给出
// 明确的策略,这里选择宁可误杀慢速下载(可重新创建任务)也不留僵尸
type Watchdog struct {
	service   *AppTaskService
	timeout   time.Duration
	retention time.Duration
	cron      *cron.Cron
}

// NewWatchdog 创建存活性巡检
// retention为终态任务在注册表中的保留时长,0表示不自动清理
func NewWatchdog(service *AppTaskService, timeout, retention time.Duration) *Watchdog {
	return &Watchdog{
		service:   service,
		timeout:   timeout,
		retention: retention,
	}
}

// Start 启动周期巡检:每分钟扫描卡死任务,每天回收过期终态记录
func (w *Watchdog) Start() error {
	if w.timeout <= 0 && w.retention <= 0 {
		logger.Info("Task watchdog disabled")
		return nil
	}

	w.cron = cron.New()
	if w.timeout > 0 {
		if _, err := w.cron.AddFunc("@every 1m", w.Sweep); err != nil {
			return fmt.Errorf("failed to schedule watchdog sweep: %w", err)
		}
	}
	if w.retention > 0 {
		if _, err := w.cron.AddFunc("@daily", w.PruneHistory); err != nil {
			return fmt.Errorf("failed to schedule history pruning: %w", err)
		}
	}
	w.cron.Start()
	logger.Info("Task watchdog started",
		"stall_timeout", w.timeout.String(), "history_retention", w.retention.String())
	return nil
}

// Stop 停止巡检
func (w *Watchdog) Stop() {
	if w.cron != nil {
		w.cron.Stop()
	}
}

// Sweep 单次巡检:将卡死的downloading任务判定为失败
func (w *Watchdog) Sweep() {
	cutoff := time.Now().Add(-w.timeout)
	for _, task := range w.service.registry.Stalled(cutoff) {
		message := fmt.Sprintf("download stalled: no progress for %s", w.timeout)
		if err := w.service.registry.MarkFailed(task.ID, message); err != nil {
			// 执行goroutine抢先落了终态,不需要处理
			continue
		}
		logger.Warn("Stalled task marked as failed", "task_id", task.ID, "url", task.URL,
			"last_update", task.UpdatedAt)

		// 回收僵尸执行:取消上下文让子进程收到信号
		w.service.cancelExecution(task.ID)
		w.service.notifyTerminal(task.ID, false)
	}
}

// PruneHistory 回收超过保留时长的终态任务
// 客户端每次轮询都已把完成任务落入本地历史,服务端的记录只是便利
func (w *Watchdog) PruneHistory() {
	removed := w.service.registry.PruneTerminalBefore(time.Now().Add(-w.retention))
	if removed > 0 {
		logger.Info("Expired terminal tasks pruned", "removed", removed,
			"retention", w.retention.String())
	}
}
