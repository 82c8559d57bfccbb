package downloader

import (
	"context"
	"fmt"

	"github.com/easayliu/mediabox-download/internal/domain/valueobjects"
)

// Request 一次下载执行的输入
type Request struct {
	TaskID     string
	URL        string
	SaveFolder string
	Format     string
}

// Result 下载成功后的产出
type Result struct {
	FileName string
	FilePath string
}

// ProgressFunc 进度回调
// percent取值[0,100],无法计算百分比的下载器可以传0只刷新speed/eta;
// 后端负责按配置的间隔节流,不要求每个字节都上报
type ProgressFunc func(percent float64, speed, eta string)

// Backend 下载器后端契约
// Run阻塞直到下载结束:成功返回Result,失败返回错误,
// ctx取消时必须在宽限期内停止IO并返回ctx.Err()
type Backend interface {
	Kind() valueobjects.DownloaderKind
	Run(ctx context.Context, req Request, report ProgressFunc) (*Result, error)
}

// Factory 按下载器类型分发后端实例
type Factory struct {
	backends map[valueobjects.DownloaderKind]Backend
}

// NewFactory 创建后端工厂
func NewFactory(backends ...Backend) *Factory {
	m := make(map[valueobjects.DownloaderKind]Backend, len(backends))
	for _, b := range backends {
		m[b.Kind()] = b
	}
	return &Factory{backends: m}
}

// ForKind 获取指定类型的后端
func (f *Factory) ForKind(kind valueobjects.DownloaderKind) (Backend, error) {
	backend, ok := f.backends[kind]
	if !ok {
		return nil, fmt.Errorf("no backend registered for downloader %q", kind)
	}
	return backend, nil
}
