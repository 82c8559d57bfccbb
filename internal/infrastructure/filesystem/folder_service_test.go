package filesystem

import (
	"testing"

	"github.com/easayliu/mediabox-download/internal/infrastructure/config"
)

func newService() *FolderService {
	cfg := &config.Config{}
	cfg.Download.Folders = []string{"/downloads", "/media/library/"}
	return NewFolderService(cfg)
}

func TestValidateFolder_Registered(t *testing.T) {
	s := newService()

	valid := []string{
		"/downloads",
		"/downloads/videos",
		"/media/library",
		"/media/library/pixiv/artist",
	}
	for _, path := range valid {
		if err := s.ValidateFolder(path); err != nil {
			t.Errorf("ValidateFolder(%q) = %v, want nil", path, err)
		}
	}
}

func TestValidateFolder_Rejected(t *testing.T) {
	s := newService()

	invalid := []string{
		"",
		"/invalid",
		"/downloadsextra",          // 前缀相似但不是子目录
		"/downloads/../etc",        // 目录遍历
		"relative/path",            // 相对路径
		"/downloads/a​b",      // 零宽字符
		"/downloads/bad\x00name",   // 控制字符
	}
	for _, path := range invalid {
		if err := s.ValidateFolder(path); err == nil {
			t.Errorf("ValidateFolder(%q) = nil, want error", path)
		}
	}
}

func TestListFolders_ReturnsCopy(t *testing.T) {
	s := newService()

	folders := s.ListFolders()
	if len(folders) != 2 {
		t.Fatalf("len(folders) = %d, want 2", len(folders))
	}

	folders[0] = "/tampered"
	if s.ListFolders()[0] == "/tampered" {
		t.Error("ListFolders should return a copy")
	}
}
