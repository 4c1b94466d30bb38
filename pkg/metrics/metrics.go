package metrics

import (
	"io"
	"math"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Registry owns every collector of the process. Nothing is served over
// HTTP; WriteText dumps it on demand.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	TradesRecorded = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "sssm_trades_recorded_total",
		Help: "Total number of trades recorded in a ledger",
	}, []string{"direction"})

	TradesImported = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "sssm_trades_imported_total",
		Help: "Total number of trade records read by the importer",
	}, []string{"status"})

	Calculations = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "sssm_calculations_total",
		Help: "Total number of calculations by metric and outcome",
	}, []string{"metric", "outcome"})

	AllShareIndex = factory.NewGauge(prometheus.GaugeOpts{
		Name: "sssm_all_share_index",
		Help: "Last computed all-share index, NaN when unknown",
	})

	ImportDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sssm_import_duration_seconds",
		Help:    "Duration of trade import stages",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})
)

var disabled atomic.Bool

// SetEnabled turns recording on or off. Collectors stay registered.
func SetEnabled(enabled bool) {
	disabled.Store(!enabled)
}

func Enabled() bool {
	return !disabled.Load()
}

func RecordTrade(direction string) {
	if !Enabled() {
		return
	}
	TradesRecorded.WithLabelValues(direction).Inc()
}

func RecordTradeImported(status string) {
	if !Enabled() {
		return
	}
	TradesImported.WithLabelValues(status).Inc()
}

// RecordCalculation counts a result of metric as known or unknown (NaN).
func RecordCalculation(metric string, value float64) {
	if !Enabled() {
		return
	}
	outcome := "known"
	if math.IsNaN(value) {
		outcome = "unknown"
	}
	Calculations.WithLabelValues(metric, outcome).Inc()
}

func RecordAllShareIndex(value float64) {
	if !Enabled() {
		return
	}
	AllShareIndex.Set(value)
	RecordCalculation("all_share_index", value)
}

// WriteText writes the registry in the Prometheus text format.
func WriteText(w io.Writer) error {
	families, err := Registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{
		start: time.Now(),
	}
}

func (t *Timer) ObserveDuration(observer prometheus.Observer) {
	if !Enabled() {
		return
	}
	observer.Observe(time.Since(t.start).Seconds())
}
