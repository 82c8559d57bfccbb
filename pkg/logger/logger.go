package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Options 日志初始化选项
type Options struct {
	Level     string // debug/info/warn/error
	Output    string // stdout/stderr/file
	Format    string // text/json
	FilePath  string // Output=file时的日志文件路径
	Colorize  bool   // 预留:终端彩色输出
	AddSource bool   // 是否记录调用位置
}

var defaultLogger = slog.Default()

// Init 初始化全局日志器
func Init(opts Options) error {
	var writer io.Writer
	switch opts.Output {
	case "", "stdout":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	case "file":
		if opts.FilePath == "" {
			return fmt.Errorf("log output is file but file_path is empty")
		}
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		writer = f
	default:
		return fmt.Errorf("unknown log output: %s", opts.Output)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     parseLevel(opts.Level),
		AddSource: opts.AddSource,
	}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(writer, handlerOpts)
	} else {
		handler = slog.NewTextHandler(writer, handlerOpts)
	}

	defaultLogger = slog.New(handler)
	return nil
}

// parseLevel 解析日志级别,默认info
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Debug 输出调试日志,键值对参数自动脱敏
func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, SanitizeArgs(args...)...)
}

// Info 输出信息日志,键值对参数自动脱敏
func Info(msg string, args ...any) {
	defaultLogger.Info(msg, SanitizeArgs(args...)...)
}

// Warn 输出警告日志,键值对参数自动脱敏
func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, SanitizeArgs(args...)...)
}

// Error 输出错误日志,键值对参数自动脱敏
func Error(msg string, args ...any) {
	defaultLogger.Error(msg, SanitizeArgs(args...)...)
}
