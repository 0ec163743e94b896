package mail

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ukaji3/attendance-mailer/pkg/attendance/models"
)

// Notifier sends reports and records failed deliveries.
type Notifier struct {
	sender  Sender
	log     *zap.Logger
	timeout time.Duration
}

// NewNotifier creates a Notifier. A zero timeout leaves each send unbounded.
func NewNotifier(sender Sender, log *zap.Logger, timeout time.Duration) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{sender: sender, log: log, timeout: timeout}
}

// Notify mails a report to the student. It reports whether the relay
// accepted the message; failures are logged and never returned.
func (n *Notifier) Notify(ctx context.Context, rep *models.Report) bool {
	sendCtx := ctx
	if n.timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	err := n.sender.Send(sendCtx, rep.Identity.Email, rep.Subject, rep.HTML)
	if err == nil {
		return true
	}

	n.log.Error("Failed to send email",
		zap.Int("row", rep.Row),
		zap.String("name", rep.Identity.Name),
		zap.String("email", rep.Identity.Email),
		zap.String("roll_number", rep.Identity.RollNumber),
		zap.String("total_attendance", rep.Total),
		zap.String("relay", n.sender.GetHost()),
		zap.Error(err),
	)
	return false
}
