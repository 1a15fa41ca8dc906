package telemetry

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

const metricsNamespace = "prodcfg"

// Metrics counts check and fix activity.
type Metrics struct {
	// DeltaEntries counts computed delta entries. Labels: type.
	DeltaEntries *prometheus.CounterVec

	// FixedEntries counts delta entries applied. Labels: type.
	FixedEntries *prometheus.CounterVec

	// Messages counts validation messages. Labels: severity.
	Messages *prometheus.CounterVec

	// CheckDuration observes one component's check. Labels: status.
	CheckDuration *prometheus.HistogramVec
}

// NewMetrics registers the metrics with reg. A nil reg creates a private
// registry so repeated construction in one process never collides.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Metrics{
		DeltaEntries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "delta",
				Name:      "entries_total",
				Help:      "Delta entries computed by type",
			},
			[]string{"type"},
		),
		FixedEntries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "delta",
				Name:      "fixed_total",
				Help:      "Delta entries fixed by type",
			},
			[]string{"type"},
		),
		Messages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "validation",
				Name:      "messages_total",
				Help:      "Validation messages by severity",
			},
			[]string{"severity"},
		),
		CheckDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "check",
				Name:      "duration_seconds",
				Help:      "Time to check one product component",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"status"},
		),
	}
}

// WriteMetrics gathers g and writes every family to w in the Prometheus text
// exposition format.
func WriteMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
