package pipeline

import (
	"fmt"
	"strconv"
	"time"

	"forest-cover-benchmark/internal/aggregate"
	"forest-cover-benchmark/internal/classes"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors for classification runs. Each instance owns its
// registry so concurrent runs and tests never share collectors.
type Metrics struct {
	registry      *prometheus.Registry
	pixels        *prometheus.GaugeVec
	area          *prometheus.GaugeVec
	stageDuration *prometheus.HistogramVec
	runs          *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		pixels: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fcbm_pixels",
			Help: "Pixels per transition class in the last run (class 0 is unclassified)",
		}, []string{"class"}),
		area: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fcbm_area_hectares",
			Help: "Area per class in hectares in the last run",
		}, []string{"kind", "class"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fcbm_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fcbm_runs_total",
			Help: "Classification runs by result",
		}, []string{"result"}),
	}
	m.registry.MustRegister(m.pixels, m.area, m.stageDuration, m.runs)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveStage implements timing.Observer.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) RecordTables(t *aggregate.Tables) {
	for c, n := range t.Counts {
		m.pixels.WithLabelValues(strconv.Itoa(c)).Set(float64(n))
	}
	for _, c := range classes.Transitions() {
		m.area.WithLabelValues("transitional", strconv.Itoa(int(c))).Set(t.Transitional[c])
	}
	for _, i := range classes.InterpretedClasses() {
		m.area.WithLabelValues("interpreted", strconv.Itoa(int(i))).Set(t.Interpreted[i])
	}
}

func (m *Metrics) RecordRun(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.runs.WithLabelValues(result).Inc()
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
