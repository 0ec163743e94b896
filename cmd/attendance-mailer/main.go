// Package main provides the CLI entry point for attendance-mailer.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ukaji3/attendance-mailer/pkg/attendance"
	"github.com/ukaji3/attendance-mailer/pkg/attendance/mail"
	"github.com/ukaji3/attendance-mailer/pkg/attendance/metrics"
)

const defaultEnvFile = ".env"

func main() {
	if err := newRootCmd(os.Getenv, attendance.NewSender).Execute(); err != nil {
		os.Exit(1)
	}
}

type senderFactory func(attendance.Options) mail.Sender

type cliFlags struct {
	envFile     string
	file        string
	sheet       string
	logFile     string
	timeout     time.Duration
	onMalformed string
	dryRun      bool
	previewDir  string
	metricsFile string
	sessions    int
}

func newRootCmd(getenv func(string) string, newSender senderFactory) *cobra.Command {
	var f cliFlags

	rootCmd := &cobra.Command{
		Use:   "attendance-mailer",
		Short: "Email attendance reports to students",
		Long: `attendance-mailer reads per-student session durations from a spreadsheet
and emails each student an HTML attendance report.

Credentials are read from EMAIL_USER and EMAIL_PASSWORD, either in the
environment or in a .env file.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f, getenv, newSender)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&f.envFile, "env-file", defaultEnvFile, "File of KEY=VALUE settings loaded before the environment defaults")
	flags.StringVarP(&f.file, "file", "f", "", "Attendance spreadsheet, xlsx or csv (default: $EXCEL_FILE or "+attendance.DefaultSourcePath+")")
	flags.StringVar(&f.sheet, "sheet", "", "Worksheet to read (default: the active sheet)")
	flags.StringVar(&f.logFile, "log-file", "", "Failure log path (default: $ERROR_LOG_FILE or "+attendance.DefaultLogPath+")")
	flags.DurationVar(&f.timeout, "timeout", 0, "Per-email relay timeout, 0 for none")
	flags.StringVar(&f.onMalformed, "on-malformed", string(attendance.PolicySkip), "Malformed row handling: skip or abort")
	flags.BoolVar(&f.dryRun, "dry-run", false, "Write reports to --preview-dir instead of sending them")
	flags.StringVar(&f.previewDir, "preview-dir", attendance.DefaultPreviewDir, "Directory for dry-run reports")
	flags.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics for the run to this file")
	flags.IntVar(&f.sessions, "sessions", 0, "Number of session columns (default: $SESSION_COUNT or 21)")

	return rootCmd
}

func run(cmd *cobra.Command, f cliFlags, getenv func(string) string, newSender senderFactory) error {
	lookup, err := withEnvFile(getenv, f.envFile, cmd.Flags().Changed("env-file"))
	if err != nil {
		return err
	}

	opts, err := attendance.LoadOptions(lookup)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, f, &opts); err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	logger, err := setupLogger(opts.LogPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	var runnerOpts []attendance.RunnerOption
	if opts.MetricsFile != "" {
		runnerOpts = append(runnerOpts, attendance.WithMetrics(metrics.NewRecorder()))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := attendance.NewRunner(opts, newSender(opts), logger, cmd.OutOrStdout(), runnerOpts...)
	_, err = runner.Run(ctx)
	return err
}

// withEnvFile layers a dotenv file under the process environment. A missing
// default file is ignored; a missing explicit one is an error.
func withEnvFile(getenv func(string) string, path string, explicit bool) (func(string) string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return getenv, nil
		}
		return nil, fmt.Errorf("failed to load env file %s: %w", path, err)
	}

	return func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return values[key]
	}, nil
}

// applyFlags overrides options with flags the user set explicitly.
func applyFlags(cmd *cobra.Command, f cliFlags, opts *attendance.Options) error {
	changed := cmd.Flags().Changed

	if changed("file") {
		opts.SourcePath = f.file
	}
	if changed("sheet") {
		opts.Sheet = f.sheet
	}
	if changed("log-file") {
		opts.LogPath = f.logFile
	}
	if changed("timeout") {
		opts.SendTimeout = f.timeout
	}
	if changed("sessions") {
		opts.Sessions.Count = f.sessions
	}

	policy, err := attendance.ParseRowPolicy(f.onMalformed)
	if err != nil {
		return err
	}
	opts.OnMalformed = policy

	opts.DryRun = f.dryRun
	opts.PreviewDir = f.previewDir
	opts.MetricsFile = f.metricsFile
	return nil
}

// setupLogger builds the failure log: one JSON line per entry, appended to path.
func setupLogger(path string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	// Every failed delivery must be recorded.
	cfg.Sampling = nil
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	cfg.OutputPaths = []string{path}
	cfg.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format(time.RFC3339))
	}
	cfg.EncoderConfig.TimeKey = "ts"
	return cfg.Build()
}
