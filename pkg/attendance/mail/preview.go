package mail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// PreviewSender writes each message to a directory instead of relaying it.
type PreviewSender struct {
	dir string

	mu    sync.Mutex
	count int
}

// NewPreviewSender creates a PreviewSender writing into dir.
func NewPreviewSender(dir string) *PreviewSender {
	return &PreviewSender{dir: dir}
}

// Send writes body to <dir>/<n>-<to>.html, where n counts the messages
// this sender has written.
func (p *PreviewSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return err
	}

	p.mu.Lock()
	p.count++
	n := p.count
	p.mu.Unlock()

	filename := filepath.Join(p.dir, fmt.Sprintf("%03d-%s.html", n, safeFileName(to)))
	return os.WriteFile(filename, []byte(body), 0644)
}

func (p *PreviewSender) GetHost() string {
	return "preview"
}

func (p *PreviewSender) GetPort() int {
	return 0
}

// safeFileName keeps address characters that are valid in file names.
func safeFileName(s string) string {
	if s == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '@' || r == '.' || r == '-' || r == '_' || r == '+':
			return r
		}
		return '_'
	}, s)
}
