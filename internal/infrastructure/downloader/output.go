package downloader

import (
	"strings"
	"sync"
)

// TailBuffer 只保留最后maxBytes字节的写缓冲
// 用于截取子进程stderr的结尾部分作为错误信息,避免长输出占用内存
type TailBuffer struct {
	mu       sync.Mutex
	buf      []byte
	maxBytes int
}

// NewTailBuffer 创建尾部缓冲
func NewTailBuffer(maxBytes int) *TailBuffer {
	if maxBytes <= 0 {
		maxBytes = 4096
	}
	return &TailBuffer{maxBytes: maxBytes}
}

func (t *TailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf = append(t.buf, p...)
	if len(t.buf) > t.maxBytes {
		t.buf = t.buf[len(t.buf)-t.maxBytes:]
	}
	return len(p), nil
}

// String 返回缓冲内容(去除首尾空白)
func (t *TailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(string(t.buf))
}
