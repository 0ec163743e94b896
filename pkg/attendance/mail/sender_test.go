package mail

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRelaySender(r *fakeRelay) Sender {
	host, port := r.addr()
	return NewSMTPSender(SMTPConfig{
		Host:     host,
		Port:     port,
		Username: "sender@example.com",
		Password: "secret",
	})
}

func TestNewSMTPSender(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "smtp.gmail.com", Port: 465, Username: "a@example.com", Password: "x"})

	assert.Implements(t, (*Sender)(nil), s)
	assert.Equal(t, "smtp.gmail.com", s.GetHost())
	assert.Equal(t, 465, s.GetPort())
	assert.True(t, s.(*smtpSender).dialer.SSL, "port 465 should use implicit TLS")
}

func TestSMTPSender_Send_HappyPath(t *testing.T) {
	relay := startFakeRelay(t, nil)
	s := newRelaySender(relay)

	err := s.Send(context.Background(), "asha@example.com", "Attendance Report for Asha", "<p>report</p>")
	require.NoError(t, err)

	msgs := relay.received()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "From: sender@example.com")
	assert.Contains(t, msgs[0], "To: asha@example.com")
	assert.Contains(t, msgs[0], "Subject: Attendance Report for Asha")
	assert.Contains(t, msgs[0], "Content-Type: multipart/mixed;")

	parts := readParts(t, msgs[0])
	require.Len(t, parts, 1)
	assert.Equal(t, "text/html", parts[0].mediaType)
	assert.Equal(t, "<p>report</p>", parts[0].body)
}

func TestSMTPSender_Send_Rejected(t *testing.T) {
	relay := startFakeRelay(t, func(string) bool { return true })
	s := newRelaySender(relay)

	err := s.Send(context.Background(), "nobody@example.com", "Subject", "<p>body</p>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "550")
	assert.Empty(t, relay.received())
}

func TestSMTPSender_Send_NoRelay(t *testing.T) {
	relay := startFakeRelay(t, nil)
	s := newRelaySender(relay)
	relay.stop()

	err := s.Send(context.Background(), "asha@example.com", "Subject", "<p>body</p>")
	assert.Error(t, err, "Should return error when no SMTP server")
}

func TestSMTPSender_Send_ContextDeadline(t *testing.T) {
	relay := startSilentRelay(t)
	s := newRelaySender(relay)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := s.Send(ctx, "asha@example.com", "Subject", "<p>body</p>")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestPreviewSender(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "previews")
	p := NewPreviewSender(dir)

	require.NoError(t, p.Send(context.Background(), "asha@example.com", "S", "<p>one</p>"))
	require.NoError(t, p.Send(context.Background(), "ravi/../x@example.com", "S", "<p>two</p>"))

	body, err := os.ReadFile(filepath.Join(dir, "001-asha@example.com.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>one</p>", string(body))

	_, err = os.Stat(filepath.Join(dir, "002-ravi_.._x@example.com.html"))
	assert.NoError(t, err)
}

func TestPreviewSender_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewPreviewSender(t.TempDir()).Send(ctx, "asha@example.com", "S", "B")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSafeFileName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"asha@example.com", "asha@example.com"},
		{"a b/c", "a_b_c"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		if got := safeFileName(tt.input); got != tt.expected {
			t.Errorf("safeFileName(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
