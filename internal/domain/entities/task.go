package entities

import (
	"time"

	"github.com/easayliu/mediabox-download/internal/domain/valueobjects"
)

// DownloadTask 下载任务实体
// id/url/platform/downloader/save_folder/created_at在创建后不可变,
// 其余字段由任务执行过程更新
type DownloadTask struct {
	ID         string                       `json:"id"`
	URL        string                       `json:"url"`
	Platform   valueobjects.Platform        `json:"platform"`
	Downloader valueobjects.DownloaderKind  `json:"downloader"`
	Status     valueobjects.TaskStatus      `json:"status"`
	Progress   float64                      `json:"progress"`
	Speed      string                       `json:"speed,omitempty"`
	ETA        string                       `json:"eta,omitempty"`
	SaveFolder string                       `json:"save_folder"`
	FileName   string                       `json:"file_name,omitempty"`
	FilePath   string                       `json:"file_path,omitempty"`
	Error      string                       `json:"error,omitempty"`
	Format     string                       `json:"format,omitempty"`
	CreatedAt  time.Time                    `json:"created_at"`
	UpdatedAt  time.Time                    `json:"updated_at"`
}

// Clone 返回任务的副本,供注册表对外输出一致性快照
func (t *DownloadTask) Clone() *DownloadTask {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}

// IsActive 判断任务是否处于活动状态
func (t *DownloadTask) IsActive() bool {
	return t.Status.IsActive()
}

// IsTerminal 判断任务是否已到达终态
func (t *DownloadTask) IsTerminal() bool {
	return t.Status.IsTerminal()
}
