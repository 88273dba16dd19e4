// Package metrics exposes Prometheus instrumentation for calculations and
// energy model refreshes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/thermogain/thermogain/pkg/energy"
)

const (
	resultSuccess = "success"
	resultError   = "error"
)

// Metrics bundles engine metrics.
type Metrics struct {
	CalculationsTotal   *prometheus.CounterVec
	CalculationDuration prometheus.Histogram
	ModelRefreshTotal   *prometheus.CounterVec
	ModelAgeDays        *prometheus.GaugeVec
}

// New constructs metrics registered on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry constructs metrics and registers them on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CalculationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thermogain_calculations_total",
				Help: "Total projection calculations by result",
			},
			[]string{"result"},
		),
		CalculationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "thermogain_calculation_duration_seconds",
			Help:    "Projection calculation duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		ModelRefreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thermogain_model_refresh_total",
				Help: "Total energy price model refreshes by energy and result",
			},
			[]string{"energy", "result"},
		),
		ModelAgeDays: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "thermogain_model_age_days",
				Help: "Age in days of the cached energy price model",
			},
			[]string{"energy"},
		),
	}
	if reg != nil {
		reg.MustRegister(
			m.CalculationsTotal,
			m.CalculationDuration,
			m.ModelRefreshTotal,
			m.ModelAgeDays,
		)
	}
	return m
}

// ObserveCalculation records the outcome and duration of one calculation.
func (m *Metrics) ObserveCalculation(started time.Time, err error) {
	if m == nil {
		return
	}
	m.CalculationsTotal.WithLabelValues(result(err)).Inc()
	m.CalculationDuration.Observe(time.Since(started).Seconds())
}

// ObserveRefresh records the outcome of one model refresh.
func (m *Metrics) ObserveRefresh(e energy.Type, err error) {
	if m == nil {
		return
	}
	m.ModelRefreshTotal.WithLabelValues(string(e), result(err)).Inc()
}

// SetModelAge records the age of a cached model.
func (m *Metrics) SetModelAge(e energy.Type, days int) {
	if m == nil {
		return
	}
	m.ModelAgeDays.WithLabelValues(string(e)).Set(float64(days))
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}
