// Package metrics exposes per-cycle check results in the Prometheus text
// format for the node exporter textfile collector.
package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/aleister1102/feedwatch/internal/common"
	"github.com/aleister1102/feedwatch/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

const (
	// MetricsNamespace prefixes every metric name.
	MetricsNamespace = "feedwatch"

	ResultOK     = "ok"
	ResultFailed = "failed"
)

// Recorder holds the cycle metrics in a private registry.
type Recorder struct {
	registry     *prometheus.Registry
	textfilePath string
	logger       zerolog.Logger

	ChecksTotal          *prometheus.CounterVec
	LastCycleTimestamp   prometheus.Gauge
	LastCycleDuration    prometheus.Gauge
	LastCycleFailures    prometheus.Gauge
	LastCycleSubjects    prometheus.Gauge
	LastSuccessTimestamp *prometheus.GaugeVec
}

// NewRecorder creates a recorder. The textfile is only written when
// cfg.TextfilePath is set.
func NewRecorder(cfg config.MetricsConfig, logger zerolog.Logger) *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry:     reg,
		textfilePath: cfg.TextfilePath,
		logger:       logger.With().Str("component", "MetricsRecorder").Logger(),

		ChecksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Name:      "checks_total",
				Help:      "Number of subject checks by result",
			},
			[]string{"subject", "kind", "result"},
		),
		LastCycleTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "last_cycle_timestamp_seconds",
			Help:      "Unix time the last cycle finished",
		}),
		LastCycleDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "last_cycle_duration_seconds",
			Help:      "Duration of the last cycle in seconds",
		}),
		LastCycleFailures: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "last_cycle_failures",
			Help:      "Number of failed subject checks in the last cycle",
		}),
		LastCycleSubjects: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "last_cycle_subjects",
			Help:      "Number of subjects checked in the last cycle",
		}),
		LastSuccessTimestamp: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: MetricsNamespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful check per subject",
			},
			[]string{"subject", "kind"},
		),
	}
}

// Gatherer returns the registry holding the recorder's metrics.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ObserveCheck counts one subject check.
func (r *Recorder) ObserveCheck(subject string, kind config.SubjectKind, at time.Time, err error) {
	result := ResultOK
	if err != nil {
		result = ResultFailed
	} else {
		r.LastSuccessTimestamp.WithLabelValues(subject, string(kind)).Set(float64(at.Unix()))
	}
	r.ChecksTotal.WithLabelValues(subject, string(kind), result).Inc()
}

// ObserveCycle records cycle totals and rewrites the textfile.
func (r *Recorder) ObserveCycle(started, finished time.Time, checked, failed int) error {
	r.LastCycleTimestamp.Set(float64(finished.Unix()))
	r.LastCycleDuration.Set(finished.Sub(started).Seconds())
	r.LastCycleFailures.Set(float64(failed))
	r.LastCycleSubjects.Set(float64(checked))

	return r.WriteTextfile()
}

// WriteTextfile writes every metric to the configured textfile. The write
// goes through a temporary file so the collector never reads a partial file.
func (r *Recorder) WriteTextfile() error {
	if r.textfilePath == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(r.textfilePath), 0755); err != nil {
		return common.WrapError(err, "failed to create metrics directory")
	}
	if err := prometheus.WriteToTextfile(r.textfilePath, r.registry); err != nil {
		return common.WrapError(err, "failed to write metrics textfile")
	}

	r.logger.Debug().Str("path", r.textfilePath).Msg("Metrics textfile written")
	return nil
}
