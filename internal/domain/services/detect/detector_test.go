package detect

import (
	"errors"
	"testing"

	"github.com/easayliu/mediabox-download/internal/domain/valueobjects"
)

func TestDetect_KnownPlatforms(t *testing.T) {
	detector := NewDetector()

	tests := []struct {
		name         string
		url          string
		platform     valueobjects.Platform
		downloader   valueobjects.DownloaderKind
		requiresAuth bool
	}{
		{"YouTube视频页", "https://www.youtube.com/watch?v=abc", valueobjects.PlatformYouTube, valueobjects.DownloaderYTDLP, false},
		{"YouTube短链", "https://youtu.be/abc123", valueobjects.PlatformYouTube, valueobjects.DownloaderYTDLP, false},
		{"B站视频页", "https://www.bilibili.com/video/BV1xx411c7mD", valueobjects.PlatformBilibili, valueobjects.DownloaderYTDLP, false},
		{"B站短链", "https://b23.tv/abcdef", valueobjects.PlatformBilibili, valueobjects.DownloaderYTDLP, false},
		{"X帖子", "https://x.com/user/status/123", valueobjects.PlatformX, valueobjects.DownloaderYTDLP, true},
		{"旧域名twitter", "https://twitter.com/user/status/123", valueobjects.PlatformX, valueobjects.DownloaderYTDLP, true},
		{"TikTok", "https://www.tiktok.com/@user/video/123", valueobjects.PlatformTikTok, valueobjects.DownloaderYTDLP, false},
		{"Pixiv作品页", "https://www.pixiv.net/artworks/12345", valueobjects.PlatformPixiv, valueobjects.DownloaderGalleryDL, true},
		{"小红书笔记", "https://www.xiaohongshu.com/explore/abc", valueobjects.PlatformXiaohongshu, valueobjects.DownloaderGalleryDL, true},
		{"小红书短链", "https://xhslink.com/abc", valueobjects.PlatformXiaohongshu, valueobjects.DownloaderGalleryDL, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := detector.Detect(tt.url)
			if err != nil {
				t.Fatalf("Detect(%q) returned error: %v", tt.url, err)
			}
			if result.Platform != tt.platform {
				t.Errorf("platform = %s, want %s", result.Platform, tt.platform)
			}
			if result.Downloader != tt.downloader {
				t.Errorf("downloader = %s, want %s", result.Downloader, tt.downloader)
			}
			if result.RequiresAuth != tt.requiresAuth {
				t.Errorf("requires_auth = %v, want %v", result.RequiresAuth, tt.requiresAuth)
			}
			if result.Confidence <= 0 {
				t.Errorf("confidence = %f, want > 0", result.Confidence)
			}
		})
	}
}

func TestDetect_UnknownHost(t *testing.T) {
	detector := NewDetector()

	result, err := detector.Detect("https://example.com/some/video")
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}

	if result.Platform != valueobjects.PlatformUnknown {
		t.Errorf("platform = %s, want unknown", result.Platform)
	}
	if result.Downloader != valueobjects.DownloaderYTDLP {
		t.Errorf("unknown host should recommend the general video downloader, got %s", result.Downloader)
	}
	if result.Confidence != 0 {
		t.Errorf("confidence = %f, want 0", result.Confidence)
	}
	if result.RequiresAuth {
		t.Error("unknown host should not require auth")
	}
}

func TestDetect_InvalidURL(t *testing.T) {
	detector := NewDetector()

	invalid := []string{
		"",
		"not a url",
		"ftp://example.com/file",
		"https://",
	}

	for _, raw := range invalid {
		if _, err := detector.Detect(raw); err == nil {
			t.Errorf("Detect(%q) should return error", raw)
		} else {
			var invalidErr *InvalidURLError
			if !errors.As(err, &invalidErr) {
				t.Errorf("Detect(%q) error type = %T, want *InvalidURLError", raw, err)
			}
		}
	}
}

func TestDetect_ShortLinkConfidence(t *testing.T) {
	detector := NewDetector()

	full, _ := detector.Detect("https://www.bilibili.com/video/BV1")
	short, _ := detector.Detect("https://b23.tv/xyz")

	if short.Confidence >= full.Confidence {
		t.Errorf("short link confidence (%f) should be lower than full domain (%f)",
			short.Confidence, full.Confidence)
	}
}

func TestDetect_Idempotent(t *testing.T) {
	detector := NewDetector()

	first, err := detector.Detect("https://www.youtube.com/watch?v=abc")
	if err != nil {
		t.Fatal(err)
	}
	second, err := detector.Detect("https://www.youtube.com/watch?v=abc")
	if err != nil {
		t.Fatal(err)
	}

	if *first != *second {
		t.Errorf("repeated detection should return identical results: %+v vs %+v", first, second)
	}
}
