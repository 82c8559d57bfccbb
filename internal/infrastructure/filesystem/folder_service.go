package filesystem

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/easayliu/mediabox-download/internal/infrastructure/config"
)

// maxPathLength 最大路径长度(保守值,兼容大多数文件系统)
const maxPathLength = 1024

// FolderValidationError 目录校验错误
type FolderValidationError struct {
	Path   string
	Reason string
}

func (e *FolderValidationError) Error() string {
	return fmt.Sprintf("目录校验失败: %s - %s", e.Path, e.Reason)
}

// FolderService 下载目录管理服务
// 维护允许作为下载目标的媒体库目录清单,任务创建前校验save_folder
// 必须落在某个已注册目录之内
type FolderService struct {
	folders []string
}

// NewFolderService 创建目录管理服务
// 注册目录在加载时统一Clean,保证后续前缀比较的一致性
func NewFolderService(cfg *config.Config) *FolderService {
	folders := make([]string, 0, len(cfg.Download.Folders))
	for _, f := range cfg.Download.Folders {
		if f == "" {
			continue
		}
		folders = append(folders, filepath.Clean(f))
	}
	return &FolderService{folders: folders}
}

// ListFolders 列出全部已注册的下载目录
func (s *FolderService) ListFolders() []string {
	out := make([]string, len(s.folders))
	copy(out, s.folders)
	return out
}

// ValidateFolder 校验目录是否为允许的下载目标
func (s *FolderService) ValidateFolder(path string) error {
	if path == "" {
		return &FolderValidationError{Path: path, Reason: "路径为空"}
	}

	if len(path) > maxPathLength {
		return &FolderValidationError{
			Path:   path,
			Reason: fmt.Sprintf("路径长度超过限制 (%d > %d)", len(path), maxPathLength),
		}
	}

	// 目录遍历检查:先于Clean检查原始输入
	if strings.Contains(path, "..") {
		return &FolderValidationError{Path: path, Reason: "路径包含潜在的目录遍历攻击 (..)"}
	}

	if err := validateCharacters(path); err != nil {
		return err
	}

	if !filepath.IsAbs(path) {
		return &FolderValidationError{Path: path, Reason: "必须是绝对路径"}
	}

	cleaned := filepath.Clean(path)
	for _, root := range s.folders {
		if cleaned == root || strings.HasPrefix(cleaned, root+string(filepath.Separator)) {
			return nil
		}
	}

	return &FolderValidationError{Path: path, Reason: "不在已注册的下载目录内"}
}

// validateCharacters 检查控制字符和零宽字符
func validateCharacters(path string) error {
	for _, r := range path {
		if unicode.Is(unicode.Cc, r) {
			return &FolderValidationError{
				Path:   path,
				Reason: fmt.Sprintf("路径包含控制字符: U+%04X", r),
			}
		}
		if isZeroWidthChar(r) {
			return &FolderValidationError{
				Path:   path,
				Reason: fmt.Sprintf("路径包含零宽字符: U+%04X", r),
			}
		}
	}
	return nil
}

// isZeroWidthChar 判断是否为零宽字符
func isZeroWidthChar(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\ufeff', '\u2060':
		return true
	default:
		return false
	}
}
