package valueobjects

// Platform 媒体平台值对象
type Platform string

const (
	PlatformYouTube     Platform = "youtube"
	PlatformBilibili    Platform = "bilibili"
	PlatformX           Platform = "x"
	PlatformTikTok      Platform = "tiktok"
	PlatformPixiv       Platform = "pixiv"
	PlatformXiaohongshu Platform = "xiaohongshu"
	PlatformUnknown     Platform = "unknown"
)

// String 返回平台的字符串表示
func (p Platform) String() string {
	return string(p)
}

// IsValid 检查平台是否有效
func (p Platform) IsValid() bool {
	switch p {
	case PlatformYouTube, PlatformBilibili, PlatformX, PlatformTikTok,
		PlatformPixiv, PlatformXiaohongshu, PlatformUnknown:
		return true
	default:
		return false
	}
}

// DisplayName 返回平台的展示名称
func (p Platform) DisplayName() string {
	switch p {
	case PlatformYouTube:
		return "YouTube"
	case PlatformBilibili:
		return "哔哩哔哩"
	case PlatformX:
		return "X (Twitter)"
	case PlatformTikTok:
		return "TikTok"
	case PlatformPixiv:
		return "Pixiv"
	case PlatformXiaohongshu:
		return "小红书"
	default:
		return "未知平台"
	}
}
