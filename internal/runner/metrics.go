package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"conflictsuite/internal/dataset"
	"conflictsuite/internal/manifest"
)

// buildMetrics collects per-run figures for the optional Prometheus textfile.
type buildMetrics struct {
	registry     *prometheus.Registry
	stageSeconds *prometheus.GaugeVec
	variants     *prometheus.GaugeVec
	drops        *prometheus.GaugeVec
	fallbacks    *prometheus.GaugeVec
	checks       *prometheus.GaugeVec
	bases        prometheus.Gauge
}

func newBuildMetrics() *buildMetrics {
	m := &buildMetrics{
		registry: prometheus.NewRegistry(),
		stageSeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "conflictsuite_stage_duration_seconds",
			Help: "Wall time spent in each build stage.",
		}, []string{"stage"}),
		variants: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "conflictsuite_variants",
			Help: "Emitted variants by split and operator.",
		}, []string{"split", "operator"}),
		drops: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "conflictsuite_dropped_records",
			Help: "Raw records dropped by reason.",
		}, []string{"reason"}),
		fallbacks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "conflictsuite_fallbacks",
			Help: "Degraded generation paths taken by reason.",
		}, []string{"reason"}),
		checks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "conflictsuite_integrity_check_passed",
			Help: "1 when the named integrity check passed.",
		}, []string{"check"}),
		bases: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "conflictsuite_base_examples",
			Help: "Base examples that survived filtering.",
		}),
	}
	m.registry.MustRegister(m.stageSeconds, m.variants, m.drops, m.fallbacks, m.checks, m.bases)
	return m
}

func (m *buildMetrics) observeStage(stage Stage, elapsed time.Duration) {
	m.stageSeconds.WithLabelValues(string(stage)).Set(elapsed.Seconds())
}

func (m *buildMetrics) record(man manifest.Manifest, rows []dataset.VariantExample) {
	m.bases.Set(float64(man.Totals.BaseExamples))
	for _, row := range rows {
		m.variants.WithLabelValues(string(row.Split), string(row.Operator)).Inc()
	}
	for reason, n := range man.Drops {
		m.drops.WithLabelValues(reason).Set(float64(n))
	}
	for reason, n := range man.Fallbacks {
		m.fallbacks.WithLabelValues(reason).Set(float64(n))
	}
	for check, status := range man.IntegrityChecks {
		if status == manifest.StatusSkip {
			continue
		}
		passed := 0.0
		if status == manifest.StatusPass {
			passed = 1
		}
		m.checks.WithLabelValues(check).Set(passed)
	}
}

func (m *buildMetrics) write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
