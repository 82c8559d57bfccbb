package syncclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/easayliu/mediabox-download/internal/application/contracts"
	"github.com/easayliu/mediabox-download/internal/domain/valueobjects"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	store, err := NewJSONHistoryStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	client, err := NewClient(baseURL, store, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func liveTask(id string, status valueobjects.TaskStatus, createdAt time.Time) contracts.TaskResponse {
	task := contracts.TaskResponse{
		ID:        id,
		URL:       "https://www.youtube.com/watch?v=" + id,
		Platform:  valueobjects.PlatformYouTube,
		Status:    status,
		CreatedAt: createdAt,
	}
	if status == valueobjects.TaskStatusCompleted {
		task.Progress = 100
		task.FileName = id + ".mp4"
		task.FilePath = "/downloads/" + id + ".mp4"
	}
	return task
}

// 合并幂等:同一快照应用两次,渲染结果与一次完全一致
func TestApplySnapshot_Idempotent(t *testing.T) {
	client := newTestClient(t, "http://unused")

	now := time.Now()
	snapshot := []contracts.TaskResponse{
		liveTask("aaa", valueobjects.TaskStatusCompleted, now.Add(-time.Minute)),
		liveTask("bbb", valueobjects.TaskStatusDownloading, now),
	}

	client.applySnapshot(snapshot)
	once := client.Snapshot()

	client.applySnapshot(snapshot)
	twice := client.Snapshot()

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("merge is not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
	if len(twice) != 2 {
		t.Errorf("len(views) = %d, want 2", len(twice))
	}
}

// 历史持久性:完成任务从服务端消失(重启)后,合并列表仍包含它
func TestHistoryDurability_SurvivesServerRestart(t *testing.T) {
	client := newTestClient(t, "http://unused")

	now := time.Now()
	client.applySnapshot([]contracts.TaskResponse{
		liveTask("ccc", valueobjects.TaskStatusCompleted, now),
	})

	// 服务端重启,注册表清空
	client.applySnapshot(nil)

	views := client.Snapshot()
	if len(views) != 1 {
		t.Fatalf("len(views) = %d, want 1", len(views))
	}
	got := views[0]
	if !got.Cached {
		t.Error("restored entry should be marked as cached")
	}
	if got.FileName != "ccc.mp4" || got.FilePath != "/downloads/ccc.mp4" {
		t.Errorf("file fields = %q/%q, lost in merge", got.FileName, got.FilePath)
	}
	if got.Status != valueobjects.TaskStatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
}

// live永远覆盖缓存条目
func TestMerge_LiveSupersedesHistory(t *testing.T) {
	client := newTestClient(t, "http://unused")

	now := time.Now()
	completed := liveTask("ddd", valueobjects.TaskStatusCompleted, now)
	client.applySnapshot([]contracts.TaskResponse{completed})

	// 同一ID仍在live列表中,渲染应采用live版本而不是缓存副本
	views := client.Snapshot()
	if len(views) != 1 {
		t.Fatalf("len(views) = %d, want 1", len(views))
	}
	if views[0].Cached {
		t.Error("live entry must not be rendered from cache")
	}
}

// 渲染顺序:按创建时间倒序,ID去重
func TestSnapshot_Ordering(t *testing.T) {
	client := newTestClient(t, "http://unused")

	now := time.Now()
	client.applySnapshot([]contracts.TaskResponse{
		liveTask("old", valueobjects.TaskStatusCompleted, now.Add(-time.Hour)),
	})
	client.applySnapshot([]contracts.TaskResponse{
		liveTask("new", valueobjects.TaskStatusDownloading, now),
	})

	views := client.Snapshot()
	if len(views) != 2 {
		t.Fatalf("len(views) = %d, want 2", len(views))
	}
	if views[0].ID != "new" || views[1].ID != "old" {
		t.Errorf("order = [%s %s], want [new old]", views[0].ID, views[1].ID)
	}
}

// 历史在进程重启之间持久
func TestHistory_PersistsAcrossClientRestart(t *testing.T) {
	dir := t.TempDir()
	store, err := NewJSONHistoryStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	client, err := NewClient("http://unused", store, time.Second, nil)
	if err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	client.applySnapshot([]contracts.TaskResponse{
		liveTask("eee", valueobjects.TaskStatusCompleted, now),
	})

	// 重新创建客户端,模拟App重启
	store2, err := NewJSONHistoryStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	client2, err := NewClient("http://unused", store2, time.Second, nil)
	if err != nil {
		t.Fatal(err)
	}

	views := client2.Snapshot()
	if len(views) != 1 || views[0].ID != "eee" {
		t.Fatalf("history not restored after restart: %+v", views)
	}
}

// 单次轮询失败绝不清空本地历史
func TestPollFailure_KeepsHistory(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:0")

	now := time.Now()
	client.applySnapshot([]contracts.TaskResponse{
		liveTask("fff", valueobjects.TaskStatusCompleted, now),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := client.PollOnce(ctx); err == nil {
		t.Fatal("poll against unreachable server should fail")
	}

	if views := client.Snapshot(); len(views) != 1 {
		t.Errorf("history wiped by transient poll failure: %+v", views)
	}
}

type fakeServer struct {
	mu    sync.Mutex
	tasks []contracts.TaskResponse
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/tasks", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":    0,
			"message": "success",
			"data":    contracts.TaskListResponse{Tasks: f.tasks, TotalCount: len(f.tasks)},
		})
	})
	mux.HandleFunc("/api/v1/history", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		kept := f.tasks[:0]
		for _, task := range f.tasks {
			if task.Status.IsActive() {
				kept = append(kept, task)
			}
		}
		f.tasks = kept
		json.NewEncoder(w).Encode(map[string]interface{}{"code": 0, "message": "success"})
	})
	return mux
}

// 两个客户端轮询同一服务端,对同一任务观察到相同状态
func TestTwoClients_ObserveSameState(t *testing.T) {
	now := time.Now()
	server := &fakeServer{tasks: []contracts.TaskResponse{
		liveTask("ggg", valueobjects.TaskStatusDownloading, now),
	}}
	ts := httptest.NewServer(server.handler())
	defer ts.Close()

	clientA := newTestClient(t, ts.URL)
	clientB := newTestClient(t, ts.URL)

	for _, c := range []*Client{clientA, clientB} {
		if err := c.PollOnce(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if clientA.Snapshot()[0].Status != clientB.Snapshot()[0].Status {
		t.Error("clients observed divergent status for the same task")
	}

	// 任务完成后两个客户端在下一次轮询后仍然一致
	server.mu.Lock()
	server.tasks[0] = liveTask("ggg", valueobjects.TaskStatusCompleted, now)
	server.mu.Unlock()

	for _, c := range []*Client{clientA, clientB} {
		if err := c.PollOnce(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	a, b := clientA.Snapshot()[0], clientB.Snapshot()[0]
	if a.Status != b.Status || a.FilePath != b.FilePath {
		t.Errorf("split-brain after completion: %+v vs %+v", a, b)
	}
}

// 客户端清空历史:仍在活动集中的任务永不丢弃
func TestClearHistory_NeverDropsActiveTasks(t *testing.T) {
	now := time.Now()
	server := &fakeServer{tasks: []contracts.TaskResponse{
		liveTask("done", valueobjects.TaskStatusCompleted, now.Add(-time.Minute)),
		liveTask("busy", valueobjects.TaskStatusDownloading, now),
	}}
	ts := httptest.NewServer(server.handler())
	defer ts.Close()

	client := newTestClient(t, ts.URL)
	if err := client.PollOnce(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := client.ClearHistory(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := client.PollOnce(context.Background()); err != nil {
		t.Fatal(err)
	}

	views := client.Snapshot()
	if len(views) != 1 || views[0].ID != "busy" {
		t.Fatalf("active task must survive clear history, got %+v", views)
	}
}
