package valueobjects

// DownloaderKind 下载器类型值对象
// 封闭的下载器枚举:新增平台时增加Detector规则,必要时增加枚举值,
// 而不是在调用点做字符串匹配
type DownloaderKind string

const (
	DownloaderYTDLP     DownloaderKind = "ytdlp"     // 通用视频下载器 yt-dlp
	DownloaderGalleryDL DownloaderKind = "gallerydl" // 图片/图集下载器 gallery-dl
	DownloaderUnknown   DownloaderKind = "unknown"
)

// String 返回下载器类型的字符串表示
func (d DownloaderKind) String() string {
	return string(d)
}

// IsValid 检查下载器类型是否有效(unknown不是可执行的下载器)
func (d DownloaderKind) IsValid() bool {
	return d == DownloaderYTDLP || d == DownloaderGalleryDL
}

// DisplayName 返回下载器的展示名称
func (d DownloaderKind) DisplayName() string {
	switch d {
	case DownloaderYTDLP:
		return "yt-dlp"
	case DownloaderGalleryDL:
		return "gallery-dl"
	default:
		return "未知"
	}
}
