package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thermogain/thermogain/pkg/energy"
)

func TestObserveCalculation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.ObserveCalculation(time.Now(), nil)
	m.ObserveCalculation(time.Now(), nil)
	m.ObserveCalculation(time.Now(), errors.New("boom"))

	assert.Equal(t, 2.0, value(t, m.CalculationsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, value(t, m.CalculationsTotal.WithLabelValues("error")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["thermogain_calculation_duration_seconds"])
}

func TestObserveRefresh(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.ObserveRefresh(energy.Gas, nil)
	m.ObserveRefresh(energy.Gas, errors.New("no history"))
	m.SetModelAge(energy.Gas, 12)

	assert.Equal(t, 1.0, value(t, m.ModelRefreshTotal.WithLabelValues("gaz", "success")))
	assert.Equal(t, 1.0, value(t, m.ModelRefreshTotal.WithLabelValues("gaz", "error")))
	assert.Equal(t, 12.0, value(t, m.ModelAgeDays.WithLabelValues("gaz")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveCalculation(time.Now(), nil)
	m.ObserveRefresh(energy.Wood, nil)
	m.SetModelAge(energy.Wood, 1)
}

func value(t *testing.T, c prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, c.Write(&out))
	switch {
	case out.Counter != nil:
		return out.Counter.GetValue()
	case out.Gauge != nil:
		return out.Gauge.GetValue()
	}
	t.Fatalf("unsupported metric type")
	return 0
}
