package syncclient

import "time"

// HistoryEntry 完成任务的不可变历史副本
// 服务端注册表重启即失忆,客户端把完成任务的关键字段留档,
// 之后无论服务端是否还记得这条任务,历史列表都能继续展示
type HistoryEntry struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Platform  string    `json:"platform"`
	FileName  string    `json:"file_name"`
	FilePath  string    `json:"file_path"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryStore 历史缓存的持久化后端
type HistoryStore interface {
	// Load 读取全部历史记录,文件/表不存在时返回空列表
	Load() ([]HistoryEntry, error)
	// Save 全量覆盖写入历史记录
	Save(entries []HistoryEntry) error
	// Close 释放底层资源
	Close() error
}
