package gallerydl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/easayliu/mediabox-download/internal/domain/valueobjects"
	"github.com/easayliu/mediabox-download/internal/infrastructure/config"
	"github.com/easayliu/mediabox-download/internal/infrastructure/downloader"
	"github.com/easayliu/mediabox-download/internal/infrastructure/ratelimit"
	"github.com/easayliu/mediabox-download/pkg/logger"
)

// Downloader 图片/图集下载器,封装gallery-dl子进程
//
// gallery-dl无法预知图集总量,不产生百分比进度:
// 执行期间只上报已下载文件数(percent保持0),结束时由编排方置为100
type Downloader struct {
	cfg              config.GalleryDLConfig
	progressInterval time.Duration
	cancelGrace      time.Duration
}

// New 创建gallery-dl下载器后端
func New(cfg config.GalleryDLConfig, progressInterval, cancelGrace time.Duration) *Downloader {
	return &Downloader{
		cfg:              cfg,
		progressInterval: progressInterval,
		cancelGrace:      cancelGrace,
	}
}

// Kind 返回下载器类型
func (d *Downloader) Kind() valueobjects.DownloaderKind {
	return valueobjects.DownloaderGalleryDL
}

// Run 执行一次图集下载,阻塞直到gallery-dl退出
func (d *Downloader) Run(ctx context.Context, req downloader.Request, report downloader.ProgressFunc) (*downloader.Result, error) {
	args := d.buildArgs(req)
	logger.Debug("Starting gallery-dl", "task_id", req.TaskID, "url", req.URL)

	cmd := exec.CommandContext(ctx, d.binary(), args...)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGINT)
	}
	cmd.WaitDelay = d.cancelGrace

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderrTail := downloader.NewTailBuffer(4096)
	cmd.Stderr = stderrTail

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start gallery-dl: %w", err)
	}

	files := d.consumeOutput(stdout, report)

	err = cmd.Wait()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		msg := stderrTail.String()
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("gallery-dl failed: %s", msg)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("gallery-dl exited successfully but downloaded no files")
	}

	return resultFromFiles(files), nil
}

// binary 返回gallery-dl可执行文件路径
func (d *Downloader) binary() string {
	if d.cfg.Path != "" {
		return d.cfg.Path
	}
	return "gallery-dl"
}

// buildArgs 组装gallery-dl命令行参数
func (d *Downloader) buildArgs(req downloader.Request) []string {
	args := []string{
		"-d", req.SaveFolder,
	}
	if req.Format != "" {
		// format作为图片筛选表达式透传,如 "extension in ('jpg','png')"
		args = append(args, "--filter", req.Format)
	}
	if d.cfg.CookiesFile != "" {
		args = append(args, "--cookies", d.cfg.CookiesFile)
	}
	return append(args, req.URL)
}

// consumeOutput 逐行消费gallery-dl输出并收集产出文件
// gallery-dl每下载一个文件输出其路径,已跳过的文件带"# "前缀
func (d *Downloader) consumeOutput(stdout io.Reader, report downloader.ProgressFunc) []string {
	limiter := ratelimit.NewIntervalLimiter(d.progressInterval)
	var files []string

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		path, ok := parseFileLine(line)
		if !ok {
			continue
		}
		files = append(files, path)
		if limiter.Allow() {
			report(0, fmt.Sprintf("%d 个文件", len(files)), "")
		}
	}
	return files
}

// parseFileLine 判断输出行是否为产出文件路径
// "# /path"表示文件已存在被跳过,同样计入产出
func parseFileLine(line string) (string, bool) {
	if line == "" {
		return "", false
	}
	if skipped, found := strings.CutPrefix(line, "# "); found {
		line = skipped
	}
	if !strings.HasPrefix(line, "/") && !strings.HasPrefix(line, "./") {
		return "", false
	}
	return line, true
}

// resultFromFiles 从产出文件列表构建结果
// 单文件直接返回该文件,多文件返回所在目录
func resultFromFiles(files []string) *downloader.Result {
	if len(files) == 1 {
		return &downloader.Result{
			FileName: filepath.Base(files[0]),
			FilePath: files[0],
		}
	}
	dir := filepath.Dir(files[0])
	return &downloader.Result{
		FileName: filepath.Base(dir),
		FilePath: dir,
	}
}
