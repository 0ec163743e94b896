package mail

import (
	"bytes"
	"context"
	"time"

	"gopkg.in/gomail.v2"
)

// Sender delivers a single HTML message.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
	GetHost() string
	GetPort() int
}

// SMTPConfig describes the mail relay and the sending account.
type SMTPConfig struct {
	Host string
	Port int
	// Username and Password authenticate against the relay. Username is
	// also used as the From address.
	Username string
	Password string
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender returns a Sender for the relay. Port 465 uses implicit TLS.
func NewSMTPSender(cfg SMTPConfig) Sender {
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.Username,
	}
}

func (s *smtpSender) Send(ctx context.Context, to, subject, body string) error {
	raw, err := buildMessage(s.from, to, subject, body, time.Now())
	if err != nil {
		return err
	}

	// gomail has no context support. On cancellation the dial goroutine is
	// abandoned and exits once the relay connection closes.
	done := make(chan error, 1)
	go func() {
		done <- s.deliver(to, raw)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *smtpSender) deliver(to string, raw []byte) error {
	sc, err := s.dialer.Dial()
	if err != nil {
		return err
	}
	defer sc.Close()
	return sc.Send(s.from, []string{to}, bytes.NewReader(raw))
}

func (s *smtpSender) GetHost() string {
	return s.dialer.Host
}

func (s *smtpSender) GetPort() int {
	return s.dialer.Port
}
