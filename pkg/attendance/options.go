// Package attendance mails per-student attendance reports read from a
// spreadsheet.
package attendance

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ukaji3/attendance-mailer/pkg/attendance/models"
	"github.com/ukaji3/attendance-mailer/pkg/attendance/report"
)

// RowPolicy decides what happens to a row that cannot be rendered.
type RowPolicy string

const (
	// PolicySkip logs the row to the failure log and continues.
	PolicySkip RowPolicy = "skip"
	// PolicyAbort stops the run at the first malformed row.
	PolicyAbort RowPolicy = "abort"
)

// ParseRowPolicy parses a policy name.
func ParseRowPolicy(s string) (RowPolicy, error) {
	switch RowPolicy(s) {
	case PolicySkip, PolicyAbort:
		return RowPolicy(s), nil
	default:
		return "", fmt.Errorf("invalid row policy: %s (must be skip or abort)", s)
	}
}

// Defaults used when neither environment nor flags set a value.
const (
	DefaultSourcePath = "attendance_sep4.xlsx"
	DefaultLogPath    = "email_errors.log"
	DefaultRelayHost  = "smtp.gmail.com"
	DefaultRelayPort  = 465
	DefaultPreviewDir = "previews"
)

// Environment variable names.
const (
	EnvSenderAddress = "EMAIL_USER"
	EnvSenderSecret  = "EMAIL_PASSWORD"
	EnvSourcePath    = "EXCEL_FILE"
	EnvRelayHost     = "SMTP_HOST"
	EnvRelayPort     = "SMTP_PORT"
	EnvSendTimeout   = "SEND_TIMEOUT"
	EnvLogPath       = "ERROR_LOG_FILE"
	EnvSessionCount  = "SESSION_COUNT"
	EnvSessionLabel  = "SESSION_LABEL"
	EnvSupportEmail  = "SUPPORT_EMAIL"
	EnvCourseName    = "COURSE_NAME"
	EnvCourseOrg     = "COURSE_PROVIDER"
	EnvCourseProgram = "COURSE_PROGRAM"
)

// Options configures a run. It is assembled once at startup.
type Options struct {
	// SenderAddress is the From address and relay login.
	SenderAddress string
	// SenderSecret is the relay password.
	SenderSecret string
	// SourcePath is the xlsx or csv file to read.
	SourcePath string
	// Sheet selects the worksheet; empty means the active sheet.
	Sheet     string
	RelayHost string
	RelayPort int
	// SendTimeout bounds each relay call. Zero means no bound.
	SendTimeout time.Duration
	// LogPath is the append-only failure log.
	LogPath  string
	Sessions models.SessionSchema
	Course   report.Course
	// OnMalformed decides the fate of rows that cannot be rendered.
	OnMalformed RowPolicy
	// DryRun writes reports to PreviewDir instead of sending them.
	DryRun     bool
	PreviewDir string
	// MetricsFile, when set, receives run counters in Prometheus text format.
	MetricsFile string
}

// DefaultOptions returns options without credentials.
func DefaultOptions() Options {
	return Options{
		SourcePath:  DefaultSourcePath,
		RelayHost:   DefaultRelayHost,
		RelayPort:   DefaultRelayPort,
		LogPath:     DefaultLogPath,
		Sessions:    models.DefaultSessionSchema(),
		Course:      report.DefaultCourse(),
		OnMalformed: PolicySkip,
		PreviewDir:  DefaultPreviewDir,
	}
}

// LoadOptions overlays environment values on the defaults. getenv is
// usually os.Getenv.
func LoadOptions(getenv func(string) string) (Options, error) {
	opts := DefaultOptions()

	opts.SenderAddress = getenv(EnvSenderAddress)
	opts.SenderSecret = getenv(EnvSenderSecret)

	setString(&opts.SourcePath, getenv(EnvSourcePath))
	setString(&opts.RelayHost, getenv(EnvRelayHost))
	setString(&opts.LogPath, getenv(EnvLogPath))
	setString(&opts.Sessions.LabelFormat, getenv(EnvSessionLabel))
	setString(&opts.Course.SupportEmail, getenv(EnvSupportEmail))
	setString(&opts.Course.Name, getenv(EnvCourseName))
	setString(&opts.Course.Provider, getenv(EnvCourseOrg))
	setString(&opts.Course.Program, getenv(EnvCourseProgram))

	if v := getenv(EnvRelayPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("invalid %s %q: %w", EnvRelayPort, v, err)
		}
		opts.RelayPort = port
	}
	if v := getenv(EnvSendTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return opts, fmt.Errorf("invalid %s %q: %w", EnvSendTimeout, v, err)
		}
		opts.SendTimeout = d
	}
	if v := getenv(EnvSessionCount); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("invalid %s %q: %w", EnvSessionCount, v, err)
		}
		opts.Sessions.Count = n
	}

	return opts, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Validate checks the options before any row is read.
func (o Options) Validate() error {
	if !o.DryRun && (o.SenderAddress == "" || o.SenderSecret == "") {
		return ErrMissingCredentials
	}
	if o.SourcePath == "" {
		return fmt.Errorf("source file path is empty")
	}
	if !o.DryRun && (o.RelayPort < 1 || o.RelayPort > 65535) {
		return fmt.Errorf("invalid relay port: %d", o.RelayPort)
	}
	if o.SendTimeout < 0 {
		return fmt.Errorf("invalid send timeout: %s", o.SendTimeout)
	}
	if _, err := ParseRowPolicy(string(o.OnMalformed)); err != nil {
		return err
	}
	return o.Sessions.Validate()
}
