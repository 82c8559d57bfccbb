package ytdlp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/easayliu/mediabox-download/internal/domain/valueobjects"
	"github.com/easayliu/mediabox-download/internal/infrastructure/config"
	"github.com/easayliu/mediabox-download/internal/infrastructure/downloader"
	"github.com/easayliu/mediabox-download/internal/infrastructure/ratelimit"
	"github.com/easayliu/mediabox-download/pkg/logger"
)

// progressPrefix 自定义进度模板的行前缀,便于从混合输出中挑出进度行
const progressPrefix = "PROGRESS|"

// progressTemplate yt-dlp --progress-template参数,按|分隔百分比/速度/ETA
const progressTemplate = "download:" + progressPrefix +
	"%(progress._percent_str)s|%(progress._speed_str)s|%(progress._eta_str)s"

// outputTemplate 产出文件命名模板,带视频ID避免同名覆盖
const outputTemplate = "%(title)s [%(id)s].%(ext)s"

// Downloader 通用视频下载器,封装yt-dlp子进程
type Downloader struct {
	cfg              config.YTDLPConfig
	progressInterval time.Duration
	cancelGrace      time.Duration
}

// New 创建yt-dlp下载器后端
func New(cfg config.YTDLPConfig, progressInterval, cancelGrace time.Duration) *Downloader {
	return &Downloader{
		cfg:              cfg,
		progressInterval: progressInterval,
		cancelGrace:      cancelGrace,
	}
}

// Kind 返回下载器类型
func (d *Downloader) Kind() valueobjects.DownloaderKind {
	return valueobjects.DownloaderYTDLP
}

// Run 执行一次下载,阻塞直到yt-dlp退出
// ctx取消时先发SIGINT让yt-dlp清理分片文件,宽限期后强杀
func (d *Downloader) Run(ctx context.Context, req downloader.Request, report downloader.ProgressFunc) (*downloader.Result, error) {
	args := d.buildArgs(req)
	logger.Debug("Starting yt-dlp", "task_id", req.TaskID, "url", req.URL, "args", strings.Join(args, " "))

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
		return nil, fmt.Errorf("failed to start yt-dlp: %w", err)
	}

	destination := d.consumeOutput(stdout, report)

	err = cmd.Wait()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		msg := stderrTail.String()
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("yt-dlp failed: %s", msg)
	}

	if destination == "" {
		return nil, fmt.Errorf("yt-dlp exited successfully but no output file was reported")
	}

	return &downloader.Result{
		FileName: filepath.Base(destination),
		FilePath: destination,
	}, nil
}

// binary 返回yt-dlp可执行文件路径
func (d *Downloader) binary() string {
	if d.cfg.Path != "" {
		return d.cfg.Path
	}
	return "yt-dlp"
}

// buildArgs 组装yt-dlp命令行参数
func (d *Downloader) buildArgs(req downloader.Request) []string {
	format := req.Format
	if format == "" {
		format = d.cfg.Quality
	}

	args := []string{
		"--newline",
		"--no-warnings",
		"--no-playlist",
		"--progress-template", progressTemplate,
		"-o", filepath.Join(req.SaveFolder, outputTemplate),
	}
	if format != "" {
		args = append(args, "-f", format)
	}
	if d.cfg.Proxy != "" {
		args = append(args, "--proxy", d.cfg.Proxy)
	}
	if d.cfg.CookiesFile != "" {
		args = append(args, "--cookies", d.cfg.CookiesFile)
	}
	return append(args, req.URL)
}

// consumeOutput 逐行消费yt-dlp输出:节流上报进度,并跟踪产出文件路径
// 返回最后一次观察到的目标文件路径(合并分片时以Merger输出为准)
func (d *Downloader) consumeOutput(stdout io.Reader, report downloader.ProgressFunc) string {
	limiter := ratelimit.NewIntervalLimiter(d.progressInterval)
	destination := ""

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if percent, speed, eta, ok := parseProgressLine(line); ok {
			if limiter.Allow() {
				report(percent, speed, eta)
			}
			continue
		}

		if dest, ok := parseDestinationLine(line); ok {
			destination = dest
		}
	}
	return destination
}

// parseProgressLine 解析进度模板行 "PROGRESS|  1.2%|1.25MiB/s|00:30"
func parseProgressLine(line string) (percent float64, speed, eta string, ok bool) {
	if !strings.HasPrefix(line, progressPrefix) {
		return 0, "", "", false
	}

	parts := strings.Split(strings.TrimPrefix(line, progressPrefix), "|")
	if len(parts) != 3 {
		return 0, "", "", false
	}

	percentStr := strings.TrimSuffix(strings.TrimSpace(parts[0]), "%")
	percent, err := strconv.ParseFloat(percentStr, 64)
	if err != nil {
		// 直播等场景下百分比为"N/A",只透传速度
		percent = 0
	}

	speed = strings.TrimSpace(parts[1])
	eta = strings.TrimSpace(parts[2])
	if speed == "N/A" || speed == "Unknown" {
		speed = ""
	}
	if eta == "N/A" || eta == "Unknown" {
		eta = ""
	}
	return percent, speed, eta, true
}

// parseDestinationLine 从输出中提取产出文件路径
// 关注三类行:
//
//	[download] Destination: /path/file.mp4
//	[Merger] Merging formats into "/path/file.mp4"
//	[download] /path/file.mp4 has already been downloaded
func parseDestinationLine(line string) (string, bool) {
	if dest, found := strings.CutPrefix(line, "[download] Destination: "); found {
		return dest, true
	}
	if rest, found := strings.CutPrefix(line, `[Merger] Merging formats into "`); found {
		return strings.TrimSuffix(rest, `"`), true
	}
	if rest, found := strings.CutPrefix(line, "[download] "); found {
		if dest, found := strings.CutSuffix(rest, " has already been downloaded"); found {
			return dest, true
		}
	}
	return "", false
}
