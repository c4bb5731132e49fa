// Package metrics exposes comparison and purge counters in the Prometheus
// text format, written to a file for the node_exporter textfile collector.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"
	"github.com/sdejongh/sdverify/pkg/models"
)

const namespace = "sdverify"

// Metrics holds the collectors for one run
type Metrics struct {
	registry *prometheus.Registry

	ComparisonsTotal   *prometheus.CounterVec
	MissingFiles       prometheus.Gauge
	ExcludedFiles      prometheus.Gauge
	PurgesTotal        *prometheus.CounterVec
	FilesDeletedTotal  prometheus.Counter
	BytesDeletedTotal  prometheus.Counter
	LastPurgeTimestamp prometheus.Gauge
	LastPurgeDuration  prometheus.Gauge
}

// New creates the collectors on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ComparisonsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comparisons_total",
			Help:      "Number of folder comparisons by outcome.",
		}, []string{"status"}),
		MissingFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "missing_files",
			Help:      "Source files absent from the destination in the last comparison.",
		}),
		ExcludedFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "excluded_files",
			Help:      "Source files skipped by the exclusion filter in the last comparison.",
		}),
		PurgesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purges_total",
			Help:      "Number of purges by outcome and drive verdict.",
		}, []string{"status", "verdict"}),
		FilesDeletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_deleted_total",
			Help:      "Total number of files deleted by purges.",
		}),
		BytesDeletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_deleted_total",
			Help:      "Total bytes deleted by purges.",
		}),
		LastPurgeTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_purge_timestamp_seconds",
			Help:      "Unix time the last purge finished.",
		}),
		LastPurgeDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_purge_duration_seconds",
			Help:      "Duration of the last purge in seconds.",
		}),
	}

	m.registry.MustRegister(
		m.ComparisonsTotal,
		m.MissingFiles,
		m.ExcludedFiles,
		m.PurgesTotal,
		m.FilesDeletedTotal,
		m.BytesDeletedTotal,
		m.LastPurgeTimestamp,
		m.LastPurgeDuration,
	)

	return m
}

// ObserveComparison records the outcome of a comparison
func (m *Metrics) ObserveComparison(report *models.ComparisonReport) {
	m.ComparisonsTotal.WithLabelValues(string(report.Status())).Inc()
	m.MissingFiles.Set(float64(len(report.Missing)))
	m.ExcludedFiles.Set(float64(len(report.Excluded)))
}

// RecordPurge records the outcome of a purge
func (m *Metrics) RecordPurge(ctx context.Context, result *models.PurgeResult, err error) error {
	status := models.StatusSuccess
	if err != nil {
		status = models.StatusFailed
	}

	m.PurgesTotal.WithLabelValues(string(status), string(result.Verdict)).Inc()
	m.FilesDeletedTotal.Add(float64(len(result.Deleted)))
	m.BytesDeletedTotal.Add(float64(result.BytesDeleted))
	m.LastPurgeTimestamp.Set(float64(result.EndTime.Unix()))
	m.LastPurgeDuration.Set(result.EndTime.Sub(result.StartTime).Seconds())
	return nil
}

// Restore seeds the collectors from a textfile written by an earlier run so
// counters keep accumulating across invocations and gauges keep their last
// value. A missing file leaves the collectors at zero.
func (m *Metrics) Restore(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open metrics file: %w", err)
	}
	defer f.Close()

	parser := expfmt.NewTextParser(model.UTF8Validation)
	families, err := parser.TextToMetricFamilies(f)
	if err != nil {
		return fmt.Errorf("failed to parse metrics file: %w", err)
	}

	for name, family := range families {
		for _, metric := range family.GetMetric() {
			m.restore(name, metric)
		}
	}
	return nil
}

// restore applies one sample of a known family; unknown families and label
// sets that do not fit the collector are dropped
func (m *Metrics) restore(name string, metric *dto.Metric) {
	labels := make(prometheus.Labels, len(metric.GetLabel()))
	for _, pair := range metric.GetLabel() {
		labels[pair.GetName()] = pair.GetValue()
	}

	switch name {
	case namespace + "_comparisons_total":
		if c, err := m.ComparisonsTotal.GetMetricWith(labels); err == nil {
			addCounter(c, metric)
		}
	case namespace + "_purges_total":
		if c, err := m.PurgesTotal.GetMetricWith(labels); err == nil {
			addCounter(c, metric)
		}
	case namespace + "_files_deleted_total":
		addCounter(m.FilesDeletedTotal, metric)
	case namespace + "_bytes_deleted_total":
		addCounter(m.BytesDeletedTotal, metric)
	case namespace + "_missing_files":
		m.MissingFiles.Set(metric.GetGauge().GetValue())
	case namespace + "_excluded_files":
		m.ExcludedFiles.Set(metric.GetGauge().GetValue())
	case namespace + "_last_purge_timestamp_seconds":
		m.LastPurgeTimestamp.Set(metric.GetGauge().GetValue())
	case namespace + "_last_purge_duration_seconds":
		m.LastPurgeDuration.Set(metric.GetGauge().GetValue())
	}
}

func addCounter(c prometheus.Counter, metric *dto.Metric) {
	if v := metric.GetCounter().GetValue(); v > 0 {
		c.Add(v)
	}
}

// Gatherer exposes the registry
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile atomically writes all metrics to path
func (m *Metrics) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
