package attendance

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ukaji3/attendance-mailer/pkg/attendance/mail"
	"github.com/ukaji3/attendance-mailer/pkg/attendance/metrics"
	"github.com/ukaji3/attendance-mailer/pkg/attendance/models"
	"github.com/ukaji3/attendance-mailer/pkg/attendance/parser"
	"github.com/ukaji3/attendance-mailer/pkg/attendance/report"
)

// Runner mails one report per source row.
type Runner struct {
	opts    Options
	sender  mail.Sender
	log     *zap.Logger
	out     io.Writer
	metrics *metrics.Recorder
	now     func() time.Time
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithMetrics counts outcomes into m and writes them to Options.MetricsFile.
func WithMetrics(m *metrics.Recorder) RunnerOption {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithClock overrides the clock used for the metrics timestamp.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner creates a Runner. Per-row outcome lines and the final summary
// are written to out; failed deliveries go to log.
func NewRunner(opts Options, sender mail.Sender, log *zap.Logger, out io.Writer, options ...RunnerOption) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Runner{
		opts:   opts,
		sender: sender,
		log:    log,
		out:    out,
		now:    time.Now,
	}
	for _, o := range options {
		o(r)
	}
	return r
}

// Run processes every row of the source in order. Configuration and source
// errors are returned before any mail is sent. Delivery failures are counted
// and never stop the run. A canceled context stops before the next row and
// returns the summary so far with ctx.Err().
func (r *Runner) Run(ctx context.Context) (*models.RunSummary, error) {
	if err := r.opts.Validate(); err != nil {
		return nil, err
	}

	renderer, err := report.NewRenderer(r.opts.Sessions, r.opts.Course)
	if err != nil {
		return nil, err
	}

	recs, err := parser.Open(r.opts.SourcePath, r.opts.Sheet)
	if err != nil {
		return nil, err
	}
	defer recs.Close()

	summary := &models.RunSummary{RunID: uuid.NewString()}
	log := r.log.With(zap.String("run_id", summary.RunID))
	notifier := mail.NewNotifier(r.sender, log, r.opts.SendTimeout)

	for recs.Next() {
		if ctx.Err() != nil {
			break
		}
		rec := recs.Record()

		rep, err := renderer.Build(rec)
		if err != nil {
			if r.opts.OnMalformed == PolicyAbort {
				return nil, NewRowError(rec.Row, "render", err)
			}
			log.Error("Skipped malformed row",
				zap.Int("row", rec.Row),
				zap.String("name", rec.Lookup(models.FieldName)),
				zap.String("email", rec.Lookup(models.FieldEmail)),
				zap.Error(err),
			)
			fmt.Fprintf(r.out, "Skipped row %d: %v\n", rec.Row, err)
			summary.Skipped++
			r.count(func(m *metrics.Recorder) { m.RowsSkipped.Inc() })
			continue
		}

		if notifier.Notify(ctx, rep) {
			fmt.Fprintf(r.out, "Email sent successfully to %s at %s\n", rep.Identity.Name, rep.Identity.Email)
			summary.Sent++
			r.count(func(m *metrics.Recorder) { m.MailSent.Inc() })
		} else {
			fmt.Fprintf(r.out, "Failed to send email to %s at %s\n", rep.Identity.Name, rep.Identity.Email)
			summary.Failed++
			r.count(func(m *metrics.Recorder) { m.MailFailed.Inc() })
		}
	}
	if err := recs.Err(); err != nil {
		return nil, err
	}

	r.printSummary(summary)

	if r.metrics != nil && r.opts.MetricsFile != "" {
		if err := r.metrics.WriteTextfile(r.opts.MetricsFile, r.now()); err != nil {
			return summary, fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	return summary, ctx.Err()
}

func (r *Runner) count(fn func(*metrics.Recorder)) {
	if r.metrics != nil {
		fn(r.metrics)
	}
}

func (r *Runner) printSummary(s *models.RunSummary) {
	fmt.Fprintf(r.out, "\nEmail sending completed.\n")
	fmt.Fprintf(r.out, "Successful emails: %d\n", s.Sent)
	fmt.Fprintf(r.out, "Failed emails: %d\n", s.Failed)
	if s.Skipped > 0 {
		fmt.Fprintf(r.out, "Skipped rows: %d\n", s.Skipped)
	}
	fmt.Fprintf(r.out, "Check '%s' for details on failed emails.\n", r.opts.LogPath)
}

// NewSender returns the relay sender, or a preview sender for dry runs.
func NewSender(opts Options) mail.Sender {
	if opts.DryRun {
		return mail.NewPreviewSender(opts.PreviewDir)
	}
	return mail.NewSMTPSender(mail.SMTPConfig{
		Host:     opts.RelayHost,
		Port:     opts.RelayPort,
		Username: opts.SenderAddress,
		Password: opts.SenderSecret,
	})
}
