package ytdlp

import (
	"strings"
	"testing"
	"time"

	"github.com/easayliu/mediabox-download/internal/infrastructure/config"
	"github.com/easayliu/mediabox-download/internal/infrastructure/downloader"
)

func TestParseProgressLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		percent float64
		speed   string
		eta     string
		ok      bool
	}{
		{"常规进度", "PROGRESS|  42.5%|1.25MiB/s|00:30", 42.5, "1.25MiB/s", "00:30", true},
		{"完成", "PROGRESS|100.0%|5.00MiB/s|00:00", 100.0, "5.00MiB/s", "00:00", true},
		{"未知百分比", "PROGRESS|N/A|2.00MiB/s|N/A", 0, "2.00MiB/s", "", true},
		{"普通输出行", "[youtube] Extracting URL", 0, "", "", false},
		{"字段不足", "PROGRESS|50%", 0, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			percent, speed, eta, ok := parseProgressLine(tt.line)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if percent != tt.percent || speed != tt.speed || eta != tt.eta {
				t.Errorf("got (%f, %q, %q), want (%f, %q, %q)",
					percent, speed, eta, tt.percent, tt.speed, tt.eta)
			}
		})
	}
}

func TestParseDestinationLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		dest string
		ok   bool
	}{
		{"下载目标", "[download] Destination: /downloads/video [abc].mp4", "/downloads/video [abc].mp4", true},
		{"分片合并", `[Merger] Merging formats into "/downloads/video [abc].mkv"`, "/downloads/video [abc].mkv", true},
		{"已存在", "[download] /downloads/video [abc].mp4 has already been downloaded", "/downloads/video [abc].mp4", true},
		{"无关行", "[download] 100% of 10.00MiB", "", false},
		{"信息行", "[info] Downloading video thumbnail", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest, ok := parseDestinationLine(tt.line)
			if ok != tt.ok || dest != tt.dest {
				t.Errorf("got (%q, %v), want (%q, %v)", dest, ok, tt.dest, tt.ok)
			}
		})
	}
}

func TestConsumeOutput(t *testing.T) {
	d := New(config.YTDLPConfig{}, 0, time.Second)

	output := strings.Join([]string{
		"[youtube] abc: Downloading webpage",
		"[download] Destination: /downloads/video [abc].f137.mp4",
		"PROGRESS| 10.0%|1.00MiB/s|01:00",
		"PROGRESS| 50.0%|1.00MiB/s|00:30",
		"[download] Destination: /downloads/video [abc].f140.m4a",
		"PROGRESS|100.0%|2.00MiB/s|00:00",
		`[Merger] Merging formats into "/downloads/video [abc].mp4"`,
	}, "\n")

	var reports []float64
	dest := d.consumeOutput(strings.NewReader(output), func(percent float64, speed, eta string) {
		reports = append(reports, percent)
	})

	if dest != "/downloads/video [abc].mp4" {
		t.Errorf("destination = %q, want merged output path", dest)
	}
	if len(reports) != 3 {
		t.Errorf("len(reports) = %d, want 3 (no limiter)", len(reports))
	}
}

func TestConsumeOutput_CoalescesProgress(t *testing.T) {
	d := New(config.YTDLPConfig{}, time.Hour, time.Second)

	var lines []string
	for i := 0; i < 50; i++ {
		lines = append(lines, "PROGRESS| 10.0%|1.00MiB/s|01:00")
	}

	count := 0
	d.consumeOutput(strings.NewReader(strings.Join(lines, "\n")), func(float64, string, string) {
		count++
	})

	if count != 1 {
		t.Errorf("reports = %d, want 1 (coalesced)", count)
	}
}

func TestBuildArgs(t *testing.T) {
	d := New(config.YTDLPConfig{
		Quality:     "best[height<=1080]",
		Proxy:       "socks5://127.0.0.1:1080",
		CookiesFile: "/data/cookies.txt",
	}, time.Second, time.Second)

	req := downloader.Request{
		TaskID:     "t1",
		URL:        "https://www.youtube.com/watch?v=abc",
		SaveFolder: "/downloads",
	}
	args := strings.Join(d.buildArgs(req), " ")

	for _, want := range []string{
		"-f best[height<=1080]",
		"--proxy socks5://127.0.0.1:1080",
		"--cookies /data/cookies.txt",
		"-o /downloads/",
		"https://www.youtube.com/watch?v=abc",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("args missing %q: %s", want, args)
		}
	}

	// 显式format覆盖默认画质
	req.Format = "bestaudio"
	args = strings.Join(d.buildArgs(req), " ")
	if !strings.Contains(args, "-f bestaudio") {
		t.Errorf("explicit format should override quality: %s", args)
	}
}
