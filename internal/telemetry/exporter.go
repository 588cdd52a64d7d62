// Package telemetry exposes the latest snapshot as Prometheus gauges.
package telemetry

import (
	"context"
	"sync"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/logger"
	"codeberg.org/mutker/ryzenctl/internal/table"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ryzenctl"

// Exporter holds the Prometheus collectors for ryzenadj readings. It uses
// a custom registry so nothing leaks into the global default.
type Exporter struct {
	Registry *prometheus.Registry

	MetricValue    *prometheus.GaugeVec
	Records        prometheus.Gauge
	InvalidRecords prometheus.Gauge
	LastPoll       prometheus.Gauge
	SnapshotsTotal prometheus.Counter

	mu     sync.Mutex
	logger logger.Logger
}

func NewExporter(log logger.Logger) *Exporter {
	reg := prometheus.NewRegistry()

	e := &Exporter{
		Registry: reg,
		logger:   log,

		MetricValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "metric_value",
			Help:      "Latest value of a ryzenadj power table entry.",
		}, []string{"name", "offset", "unit"}),
		Records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_records",
			Help:      "Number of rows in the latest snapshot.",
		}),
		InvalidRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_invalid_records",
			Help:      "Rows in the latest snapshot whose value did not parse.",
		}),
		LastPoll: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_poll_timestamp_seconds",
			Help:      "Unix time of the latest successful poll.",
		}),
		SnapshotsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_total",
			Help:      "Total number of snapshots exported.",
		}),
	}

	reg.MustRegister(
		e.MetricValue,
		e.Records,
		e.InvalidRecords,
		e.LastPoll,
		e.SnapshotsTotal,
	)

	return e
}

// RegisterHealth adds an up gauge that reads 1 while src has no error.
func (e *Exporter) RegisterHealth(src HealthSource) error {
	up := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "up",
		Help:      "1 when the latest poll or apply succeeded, 0 otherwise.",
	}, func() float64 {
		if src.LastError() != nil {
			return 0
		}
		return 1
	})

	if err := e.Registry.Register(up); err != nil {
		return errors.New().Wrap(ErrInvalidConfig, err)
	}

	return nil
}

// Record replaces the exported readings with those of snap. Rows whose
// value did not parse are counted but not exported.
func (e *Exporter) Record(_ context.Context, snap *table.Snapshot) error {
	if snap == nil {
		return errors.New().New(ErrInvalidSnapshot)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.MetricValue.Reset()

	invalid := 0
	for _, rec := range snap.Records() {
		if !rec.Valid() {
			invalid++
			continue
		}
		e.MetricValue.WithLabelValues(rec.Name, rec.Offset, rec.Unit).Set(rec.Value)
	}

	e.Records.Set(float64(snap.Len()))
	e.InvalidRecords.Set(float64(invalid))
	if !snap.CapturedAt().IsZero() {
		e.LastPoll.Set(float64(snap.CapturedAt().UnixMilli()) / 1000)
	}
	e.SnapshotsTotal.Inc()

	e.logger.Debug().
		Str("poll_id", snap.ID()).
		Int("records", snap.Len()).
		Int("invalid", invalid).
		Msg("Exported snapshot")

	return nil
}
