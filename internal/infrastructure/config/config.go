package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Download DownloadConfig `mapstructure:"download"`
	YTDLP    YTDLPConfig    `mapstructure:"ytdlp"`
	GalleryDL GalleryDLConfig `mapstructure:"gallerydl"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type LogConfig struct {
	Level     string `mapstructure:"level"`
	Output    string `mapstructure:"output"`
	Format    string `mapstructure:"format"`
	FilePath  string `mapstructure:"file_path"`
	Colorize  bool   `mapstructure:"colorize"`
	AddSource bool   `mapstructure:"add_source"`
}

type DownloadConfig struct {
	// Folders 允许作为下载目标的根目录(媒体库目录),save_folder必须落在其中之一
	Folders       []string `mapstructure:"folders"`
	DefaultFolder string   `mapstructure:"default_folder"`
	// MinConfidence 平台识别置信度阈值:未显式指定下载器且置信度低于该值时拒绝创建任务
	MinConfidence float64 `mapstructure:"min_confidence"`
	// StallTimeout 下载中的任务超过该时长没有任何进度更新时判定为失败
	StallTimeout time.Duration `mapstructure:"stall_timeout"`
	// ProgressInterval 进度上报合并间隔,下载器按该频率节流进度写入
	ProgressInterval time.Duration `mapstructure:"progress_interval"`
	// CancelGrace 取消信号发出后等待下载器退出的宽限时长
	CancelGrace time.Duration `mapstructure:"cancel_grace"`
	// HistoryRetention 终态任务在注册表中的保留时长,0表示不自动清理
	// 客户端每次轮询都会把完成任务落入本地历史,服务端保留只是便利
	HistoryRetention time.Duration `mapstructure:"history_retention"`
}

type YTDLPConfig struct {
	Path        string `mapstructure:"path"`
	Quality     string `mapstructure:"quality"`
	Proxy       string `mapstructure:"proxy"`
	CookiesFile string `mapstructure:"cookies_file"`
}

type GalleryDLConfig struct {
	Path        string `mapstructure:"path"`
	CookiesFile string `mapstructure:"cookies_file"`
}

type TelegramConfig struct {
	Enabled  bool    `mapstructure:"enabled"`
	BotToken string  `mapstructure:"bot_token"`
	ChatIDs  []int64 `mapstructure:"chat_ids"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// 设置默认值
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8081")
	viper.SetDefault("server.mode", "debug")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.format", "text")
	viper.SetDefault("log.colorize", false)
	viper.SetDefault("log.add_source", false)

	// 下载配置默认值
	viper.SetDefault("download.folders", []string{"/downloads"})
	viper.SetDefault("download.default_folder", "/downloads")
	viper.SetDefault("download.min_confidence", 0.5)
	viper.SetDefault("download.stall_timeout", "10m")
	viper.SetDefault("download.progress_interval", "500ms")
	viper.SetDefault("download.cancel_grace", "5s")
	viper.SetDefault("download.history_retention", "0")

	// 下载器默认值
	viper.SetDefault("ytdlp.path", "yt-dlp")
	viper.SetDefault("ytdlp.quality", "best[height<=1080]")
	viper.SetDefault("gallerydl.path", "gallery-dl")

	viper.SetDefault("telegram.enabled", false)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
