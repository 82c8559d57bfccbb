package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/easayliu/mediabox-download/internal/application/contracts"
	"github.com/easayliu/mediabox-download/internal/domain/services/detect"
	"github.com/easayliu/mediabox-download/internal/domain/valueobjects"
	"github.com/easayliu/mediabox-download/internal/infrastructure/config"
	"github.com/easayliu/mediabox-download/internal/infrastructure/downloader"
	"github.com/easayliu/mediabox-download/internal/infrastructure/filesystem"
	"github.com/easayliu/mediabox-download/internal/infrastructure/registry"
)

// stubBackend 可编程的下载器后端,用于编排测试
type stubBackend struct {
	kind valueobjects.DownloaderKind
	run  func(ctx context.Context, req downloader.Request, report downloader.ProgressFunc) (*downloader.Result, error)
}

func (b *stubBackend) Kind() valueobjects.DownloaderKind {
	return b.kind
}

func (b *stubBackend) Run(ctx context.Context, req downloader.Request, report downloader.ProgressFunc) (*downloader.Result, error) {
	return b.run(ctx, req, report)
}

func newService(backends ...downloader.Backend) *AppTaskService {
	cfg := &config.Config{}
	cfg.Download.Folders = []string{"/downloads"}
	cfg.Download.MinConfidence = 0.5

	return NewAppTaskService(cfg, registry.NewTaskRegistry(), detect.NewDetector(),
		downloader.NewFactory(backends...), filesystem.NewFolderService(cfg), nil)
}

// waitFor 轮询等待条件成立
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func serviceErrorCode(t *testing.T, err error) contracts.ErrorCode {
	t.Helper()
	var svcErr *contracts.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("error type = %T, want *contracts.ServiceError: %v", err, err)
	}
	return svcErr.Code
}

func TestDetectPlatform(t *testing.T) {
	s := newService()

	resp, err := s.DetectPlatform(context.Background(),
		contracts.DetectRequest{URL: "https://www.youtube.com/watch?v=abc"})
	if err != nil {
		t.Fatalf("DetectPlatform returned error: %v", err)
	}
	if resp.Platform != valueobjects.PlatformYouTube {
		t.Errorf("platform = %s, want youtube", resp.Platform)
	}
	if resp.Downloader != valueobjects.DownloaderYTDLP {
		t.Errorf("downloader = %s, want ytdlp", resp.Downloader)
	}
	if resp.RequiresAuth {
		t.Error("youtube should not require auth")
	}

	_, err = s.DetectPlatform(context.Background(), contracts.DetectRequest{URL: "not a url"})
	if code := serviceErrorCode(t, err); code != contracts.ErrorCodeInvalidURL {
		t.Errorf("code = %s, want INVALID_URL", code)
	}
}

func TestCreateTask_ImmediateReturnAndPendingSnapshot(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	backend := &stubBackend{
		kind: valueobjects.DownloaderYTDLP,
		run: func(ctx context.Context, req downloader.Request, report downloader.ProgressFunc) (*downloader.Result, error) {
			close(started)
			<-release
			return &downloader.Result{FileName: "v.mp4", FilePath: "/downloads/v.mp4"}, nil
		},
	}
	s := newService(backend)

	resp, err := s.CreateTask(context.Background(), contracts.TaskCreateRequest{
		URL:        "https://www.youtube.com/watch?v=abc",
		SaveFolder: "/downloads",
	})
	if err != nil {
		t.Fatalf("CreateTask returned error: %v", err)
	}
	if resp.TaskID == "" {
		t.Fatal("CreateTask should return a task id")
	}

	// 创建后立即可见,且进度相关字段为空
	list, err := s.ListTasks(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Tasks) != 1 {
		t.Fatalf("len(tasks) = %d, want 1", len(list.Tasks))
	}
	got := list.Tasks[0]
	if got.ID != resp.TaskID {
		t.Errorf("listed id = %s, want %s", got.ID, resp.TaskID)
	}
	if !got.Status.IsActive() {
		t.Errorf("status = %s, want an active status", got.Status)
	}
	if got.FileName != "" || got.FilePath != "" || got.Error != "" {
		t.Error("progress-dependent fields should be empty before completion")
	}

	<-started
	close(release)

	waitFor(t, "completion", func() bool {
		task, err := s.GetTask(context.Background(), resp.TaskID)
		return err == nil && task.Status == valueobjects.TaskStatusCompleted
	})

	task, _ := s.GetTask(context.Background(), resp.TaskID)
	if task.FileName != "v.mp4" || task.FilePath != "/downloads/v.mp4" {
		t.Errorf("completed task file fields = %q/%q", task.FileName, task.FilePath)
	}
	if task.Progress != 100 {
		t.Errorf("completed progress = %f, want 100", task.Progress)
	}
}

func TestCreateTask_InvalidDestination(t *testing.T) {
	s := newService(&stubBackend{kind: valueobjects.DownloaderYTDLP})

	_, err := s.CreateTask(context.Background(), contracts.TaskCreateRequest{
		URL:        "https://www.youtube.com/watch?v=abc",
		SaveFolder: "/invalid",
	})
	if code := serviceErrorCode(t, err); code != contracts.ErrorCodeDestinationInvalid {
		t.Errorf("code = %s, want DESTINATION_INVALID", code)
	}

	// 不应产生任务记录
	list, _ := s.ListTasks(context.Background())
	if len(list.Tasks) != 0 {
		t.Errorf("len(tasks) = %d, want 0", len(list.Tasks))
	}
}

func TestCreateTask_UnsupportedPlatform(t *testing.T) {
	backend := &stubBackend{
		kind: valueobjects.DownloaderYTDLP,
		run: func(ctx context.Context, req downloader.Request, report downloader.ProgressFunc) (*downloader.Result, error) {
			return &downloader.Result{FileName: "f", FilePath: "/downloads/f"}, nil
		},
	}
	s := newService(backend)

	// 未知平台且未显式指定下载器 → 拒绝
	_, err := s.CreateTask(context.Background(), contracts.TaskCreateRequest{
		URL:        "https://example.com/video",
		SaveFolder: "/downloads",
	})
	if code := serviceErrorCode(t, err); code != contracts.ErrorCodeUnsupportedPlatform {
		t.Errorf("code = %s, want UNSUPPORTED_PLATFORM", code)
	}

	// 显式指定下载器 → 放行
	resp, err := s.CreateTask(context.Background(), contracts.TaskCreateRequest{
		URL:        "https://example.com/video",
		SaveFolder: "/downloads",
		Downloader: "ytdlp",
	})
	if err != nil {
		t.Fatalf("explicit downloader should be accepted: %v", err)
	}

	waitFor(t, "completion", func() bool {
		task, err := s.GetTask(context.Background(), resp.TaskID)
		return err == nil && task.Status == valueobjects.TaskStatusCompleted
	})
}

func TestCreateTask_BackendFailure(t *testing.T) {
	backend := &stubBackend{
		kind: valueobjects.DownloaderYTDLP,
		run: func(ctx context.Context, req downloader.Request, report downloader.ProgressFunc) (*downloader.Result, error) {
			report(10, "1MiB/s", "01:00")
			return nil, errors.New("yt-dlp failed: HTTP Error 403")
		},
	}
	s := newService(backend)

	resp, err := s.CreateTask(context.Background(), contracts.TaskCreateRequest{
		URL:        "https://www.youtube.com/watch?v=abc",
		SaveFolder: "/downloads",
	})
	if err != nil {
		t.Fatal(err)
	}

	waitFor(t, "failure", func() bool {
		task, err := s.GetTask(context.Background(), resp.TaskID)
		return err == nil && task.Status == valueobjects.TaskStatusFailed
	})

	task, _ := s.GetTask(context.Background(), resp.TaskID)
	if task.Error == "" {
		t.Error("failed task must carry the backend error")
	}
	if task.FileName != "" || task.FilePath != "" {
		t.Error("failed task must not carry file fields")
	}
}

func TestCancelOrDelete_ActiveTask(t *testing.T) {
	backend := &stubBackend{
		kind: valueobjects.DownloaderYTDLP,
		run: func(ctx context.Context, req downloader.Request, report downloader.ProgressFunc) (*downloader.Result, error) {
			report(5, "1MiB/s", "10:00")
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	s := newService(backend)

	resp, _ := s.CreateTask(context.Background(), contracts.TaskCreateRequest{
		URL:        "https://www.youtube.com/watch?v=abc",
		SaveFolder: "/downloads",
	})

	waitFor(t, "downloading", func() bool {
		task, err := s.GetTask(context.Background(), resp.TaskID)
		return err == nil && task.Status == valueobjects.TaskStatusDownloading
	})

	del, err := s.CancelOrDeleteTask(context.Background(), resp.TaskID)
	if err != nil {
		t.Fatalf("cancel returned error: %v", err)
	}
	if !del.Cancelled || del.Deleted {
		t.Errorf("expected cancellation, got %+v", del)
	}

	waitFor(t, "cancelled", func() bool {
		task, err := s.GetTask(context.Background(), resp.TaskID)
		return err == nil && task.Status == valueobjects.TaskStatusCancelled
	})

	task, _ := s.GetTask(context.Background(), resp.TaskID)
	if task.FileName != "" || task.FilePath != "" || task.Error != "" {
		t.Errorf("cancelled task outcome fields must be empty: %+v", task)
	}

	// 再次调用:任务已是终态,转为删除
	del, err = s.CancelOrDeleteTask(context.Background(), resp.TaskID)
	if err != nil {
		t.Fatalf("second call returned error: %v", err)
	}
	if !del.Deleted {
		t.Errorf("second call should delete the terminal record, got %+v", del)
	}

	// 第三次调用:记录已不存在
	_, err = s.CancelOrDeleteTask(context.Background(), resp.TaskID)
	if code := serviceErrorCode(t, err); code != contracts.ErrorCodeTaskNotFound {
		t.Errorf("code = %s, want TASK_NOT_FOUND", code)
	}
}

func TestClearHistory_KeepsActiveTasks(t *testing.T) {
	release := make(chan struct{})
	backend := &stubBackend{
		kind: valueobjects.DownloaderYTDLP,
		run: func(ctx context.Context, req downloader.Request, report downloader.ProgressFunc) (*downloader.Result, error) {
			select {
			case <-release:
				return &downloader.Result{FileName: "f.mp4", FilePath: "/downloads/f.mp4"}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}
	s := newService(backend)

	done, _ := s.CreateTask(context.Background(), contracts.TaskCreateRequest{
		URL: "https://www.youtube.com/watch?v=first", SaveFolder: "/downloads",
	})
	close(release)
	waitFor(t, "first completion", func() bool {
		task, err := s.GetTask(context.Background(), done.TaskID)
		return err == nil && task.Status == valueobjects.TaskStatusCompleted
	})

	activeBackend := &stubBackend{
		kind: valueobjects.DownloaderGalleryDL,
		run: func(ctx context.Context, req downloader.Request, report downloader.ProgressFunc) (*downloader.Result, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	s.backends = downloader.NewFactory(backend, activeBackend)
	active, _ := s.CreateTask(context.Background(), contracts.TaskCreateRequest{
		URL: "https://www.pixiv.net/artworks/1", SaveFolder: "/downloads",
	})

	cleared, err := s.ClearHistory(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if cleared.Removed != 1 {
		t.Errorf("removed = %d, want 1", cleared.Removed)
	}

	if _, err := s.GetTask(context.Background(), active.TaskID); err != nil {
		t.Error("active task must survive ClearHistory")
	}
	if _, err := s.GetTask(context.Background(), done.TaskID); err == nil {
		t.Error("terminal task should have been cleared")
	}

	s.CancelOrDeleteTask(context.Background(), active.TaskID)
}

func TestWatchdog_FailsStalledTask(t *testing.T) {
	stalled := make(chan struct{})
	backend := &stubBackend{
		kind: valueobjects.DownloaderYTDLP,
		run: func(ctx context.Context, req downloader.Request, report downloader.ProgressFunc) (*downloader.Result, error) {
			// 模拟僵死的下载进程:不再上报任何进度
			<-ctx.Done()
			close(stalled)
			return nil, ctx.Err()
		},
	}
	s := newService(backend)

	resp, _ := s.CreateTask(context.Background(), contracts.TaskCreateRequest{
		URL: "https://www.youtube.com/watch?v=abc", SaveFolder: "/downloads",
	})

	waitFor(t, "downloading", func() bool {
		task, err := s.GetTask(context.Background(), resp.TaskID)
		return err == nil && task.Status == valueobjects.TaskStatusDownloading
	})

	time.Sleep(20 * time.Millisecond)

	w := NewWatchdog(s, 10*time.Millisecond, 0)
	w.Sweep()

	task, err := s.GetTask(context.Background(), resp.TaskID)
	if err != nil {
		t.Fatal(err)
	}
	if task.Status != valueobjects.TaskStatusFailed {
		t.Errorf("status = %s, want failed", task.Status)
	}
	if task.Error == "" {
		t.Error("stalled task must carry an error message")
	}

	// 巡检应回收执行上下文
	select {
	case <-stalled:
	case <-time.After(2 * time.Second):
		t.Error("watchdog should cancel the zombie execution")
	}
}
