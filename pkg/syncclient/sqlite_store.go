package syncclient

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteHistoryStore 基于SQLite的历史缓存存储
// 桌面/移动客户端使用,历史量大时比JSON全量重写更合适
type SQLiteHistoryStore struct {
	db *sql.DB
}

// NewSQLiteHistoryStore 创建SQLite历史存储,数据目录不存在时自动创建
func NewSQLiteHistoryStore(dataDir string) (*SQLiteHistoryStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbFile := filepath.Join(dataDir, "history.db")
	db, err := sql.Open("sqlite", dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect history database: %w", err)
	}

	// WAL模式提升并发读写表现,失败不致命
	_, _ = db.Exec(`
		PRAGMA busy_timeout = 5000;
		PRAGMA journal_mode = WAL;
	`)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			id         TEXT PRIMARY KEY,
			url        TEXT NOT NULL,
			platform   TEXT NOT NULL,
			file_name  TEXT NOT NULL,
			file_path  TEXT NOT NULL,
			created_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}

	return &SQLiteHistoryStore{db: db}, nil
}

// Load 读取全部历史记录,按创建时间倒序
func (s *SQLiteHistoryStore) Load() ([]HistoryEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, url, platform, file_name, file_path, created_at
		FROM history ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var entry HistoryEntry
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.URL, &entry.Platform,
			&entry.FileName, &entry.FilePath, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entry.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Save 全量覆盖写入,整体在一个事务中完成
func (s *SQLiteHistoryStore) Save(entries []HistoryEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM history`); err != nil {
		return fmt.Errorf("failed to clear history table: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO history (id, url, platform, file_name, file_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		if _, err := stmt.Exec(entry.ID, entry.URL, entry.Platform,
			entry.FileName, entry.FilePath, entry.CreatedAt.Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("failed to insert history entry %s: %w", entry.ID, err)
		}
	}

	return tx.Commit()
}

// Close 关闭数据库连接
func (s *SQLiteHistoryStore) Close() error {
	return s.db.Close()
}
