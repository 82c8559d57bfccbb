package detect

import (
	"net/url"
	"strings"

	"github.com/easayliu/mediabox-download/internal/domain/valueobjects"
)

// Result 平台识别结果
type Result struct {
	Platform     valueobjects.Platform       `json:"platform"`
	Downloader   valueobjects.DownloaderKind `json:"downloader"`
	Confidence   float64                     `json:"confidence"`
	PlatformName string                      `json:"platform_name"`
	RequiresAuth bool                        `json:"requires_auth"`
}

// rule 单条平台识别规则:按host后缀匹配
type rule struct {
	hosts        []string
	platform     valueobjects.Platform
	downloader   valueobjects.DownloaderKind
	confidence   float64
	requiresAuth bool
}

// rules 平台签名表
// 主域名置信度1.0,短链域名0.8(跳转目标未展开,识别仅基于域名)
// requires_auth表示平台需要预先配置登录凭证(cookies),Detector本身不校验凭证是否存在
var rules = []rule{
	{
		hosts:      []string{"youtube.com", "youtu.be", "music.youtube.com"},
		platform:   valueobjects.PlatformYouTube,
		downloader: valueobjects.DownloaderYTDLP,
		confidence: 1.0,
	},
	{
		hosts:      []string{"bilibili.com"},
		platform:   valueobjects.PlatformBilibili,
		downloader: valueobjects.DownloaderYTDLP,
		confidence: 1.0,
	},
	{
		hosts:      []string{"b23.tv"},
		platform:   valueobjects.PlatformBilibili,
		downloader: valueobjects.DownloaderYTDLP,
		confidence: 0.8,
	},
	{
		hosts:        []string{"x.com", "twitter.com"},
		platform:     valueobjects.PlatformX,
		downloader:   valueobjects.DownloaderYTDLP,
		confidence:   1.0,
		requiresAuth: true,
	},
	{
		hosts:      []string{"tiktok.com"},
		platform:   valueobjects.PlatformTikTok,
		downloader: valueobjects.DownloaderYTDLP,
		confidence: 1.0,
	},
	{
		hosts:        []string{"pixiv.net"},
		platform:     valueobjects.PlatformPixiv,
		downloader:   valueobjects.DownloaderGalleryDL,
		confidence:   1.0,
		requiresAuth: true,
	},
	{
		hosts:        []string{"xiaohongshu.com"},
		platform:     valueobjects.PlatformXiaohongshu,
		downloader:   valueobjects.DownloaderGalleryDL,
		confidence:   1.0,
		requiresAuth: true,
	},
	{
		hosts:        []string{"xhslink.com"},
		platform:     valueobjects.PlatformXiaohongshu,
		downloader:   valueobjects.DownloaderGalleryDL,
		confidence:   0.8,
		requiresAuth: true,
	},
}

// Detector 平台识别器
// 纯函数式:只做URL模式匹配,不发起网络请求,不产生副作用
// UI会在输入防抖后的每次变更时调用,必须保持廉价
type Detector struct{}

// NewDetector 创建平台识别器
func NewDetector() *Detector {
	return &Detector{}
}

// Detect 识别URL所属平台并推荐下载器
// 无法识别的host返回Unknown平台,推荐通用视频下载器,置信度0
func (d *Detector) Detect(rawURL string) (*Result, error) {
	host, err := normalizeHost(rawURL)
	if err != nil {
		return nil, err
	}

	for _, r := range rules {
		for _, h := range r.hosts {
			if hostMatches(host, h) {
				return &Result{
					Platform:     r.platform,
					Downloader:   r.downloader,
					Confidence:   r.confidence,
					PlatformName: r.platform.DisplayName(),
					RequiresAuth: r.requiresAuth,
				}, nil
			}
		}
	}

	// 未知平台:默认推荐通用视频下载器,由调用方根据置信度决定是否放行
	return &Result{
		Platform:     valueobjects.PlatformUnknown,
		Downloader:   valueobjects.DownloaderYTDLP,
		Confidence:   0,
		PlatformName: valueobjects.PlatformUnknown.DisplayName(),
		RequiresAuth: false,
	}, nil
}

// normalizeHost 解析URL并返回小写host(去掉www.前缀和端口)
func normalizeHost(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", &InvalidURLError{URL: rawURL, Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &InvalidURLError{URL: rawURL, Reason: "scheme must be http or https"}
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", &InvalidURLError{URL: rawURL, Reason: "missing host"}
	}
	return strings.TrimPrefix(host, "www."), nil
}

// hostMatches 判断host是否等于目标域名或为其子域名
func hostMatches(host, target string) bool {
	return host == target || strings.HasSuffix(host, "."+target)
}

// InvalidURLError URL格式错误
type InvalidURLError struct {
	URL    string
	Reason string
}

func (e *InvalidURLError) Error() string {
	return "invalid url: " + e.Reason
}
