package syncclient

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSONHistoryStore 基于JSON文件的历史缓存存储
// 轻量客户端(无SQLite依赖)使用,全量读写,记录量在个人使用场景下很小
type JSONHistoryStore struct {
	filePath string
	mutex    sync.Mutex
}

// NewJSONHistoryStore 创建JSON历史存储,数据目录不存在时自动创建
func NewJSONHistoryStore(dataDir string) (*JSONHistoryStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &JSONHistoryStore{
		filePath: filepath.Join(dataDir, "history.json"),
	}, nil
}

// Load 读取全部历史记录
func (s *JSONHistoryStore) Load() ([]HistoryEntry, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []HistoryEntry{}, nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var entries []HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}
	return entries, nil
}

// Save 全量覆盖写入
// 先写临时文件再rename,避免写入途中崩溃留下半截文件
func (s *JSONHistoryStore) Save(entries []HistoryEntry) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tmpPath := s.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := os.Rename(tmpPath, s.filePath); err != nil {
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}

// Close JSON存储无需释放资源
func (s *JSONHistoryStore) Close() error {
	return nil
}
