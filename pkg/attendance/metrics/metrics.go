// Package metrics counts delivery outcomes of a run and exports them in the
// Prometheus text format for the node_exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the counters of one run.
type Recorder struct {
	registry *prometheus.Registry

	MailSent    prometheus.Counter
	MailFailed  prometheus.Counter
	RowsSkipped prometheus.Counter
	LastRun     prometheus.Gauge
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		MailSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "attendance_mail_sent_total",
			Help: "Total number of attendance reports accepted by the relay",
		}),
		MailFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "attendance_mail_failed_total",
			Help: "Total number of attendance reports that could not be delivered",
		}),
		RowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "attendance_rows_skipped_total",
			Help: "Total number of source rows skipped as malformed",
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "attendance_run_last_completion_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}
	r.registry.MustRegister(r.MailSent, r.MailFailed, r.RowsSkipped, r.LastRun)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile stamps the completion time and writes all metrics to path.
func (r *Recorder) WriteTextfile(path string, now time.Time) error {
	r.LastRun.Set(float64(now.Unix()))
	return prometheus.WriteToTextfile(path, r.registry)
}
