package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "avcompare"

// Metrics contains the Prometheus collectors of the playback engine. The
// methods are safe to call on a nil *Metrics, which records nothing.
type Metrics struct {
	// Sync scheduler
	SchedulerTicks   prometheus.Counter
	TickDuration     prometheus.Histogram
	CorrectiveSeeks  *prometheus.CounterVec
	SeekErrors       *prometheus.CounterVec
	Drift            *prometheus.GaugeVec
	SchedulerRunning prometheus.Gauge

	// Analysis pipeline
	AnalysisDuration prometheus.Histogram
	AnalysisFailures prometheus.Counter
}

// NewMetrics creates the collectors and registers them in reg; a nil reg
// means prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		SchedulerTicks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_ticks_total",
			Help:      "Total number of sync scheduler ticks",
		}),
		TickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scheduler_tick_duration_seconds",
			Help:      "Time spent in a single sync scheduler tick",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		CorrectiveSeeks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_corrective_seeks_total",
			Help:      "Total number of seeks issued to realign a follower with the leader",
		}, []string{"transport"}),
		SeekErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_seek_errors_total",
			Help:      "Total number of corrective seeks that failed",
		}, []string{"transport"}),
		Drift: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scheduler_drift_seconds",
			Help:      "Last observed position of a follower minus the position of the leader",
		}, []string{"transport"}),
		SchedulerRunning: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scheduler_running",
			Help:      "1 while the sync scheduler loop is armed",
		}),
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent decoding and analyzing the sources of a session",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		AnalysisFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_failures_total",
			Help:      "Total number of failed session analyses",
		}),
	}
}

func (m *Metrics) ObserveTick(seconds float64) {
	if m == nil {
		return
	}
	m.SchedulerTicks.Inc()
	m.TickDuration.Observe(seconds)
}

func (m *Metrics) ObserveDrift(transport string, drift float64) {
	if m == nil {
		return
	}
	m.Drift.WithLabelValues(transport).Set(drift)
}

func (m *Metrics) CorrectiveSeek(transport string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.SeekErrors.WithLabelValues(transport).Inc()
		return
	}
	m.CorrectiveSeeks.WithLabelValues(transport).Inc()
}

func (m *Metrics) SetSchedulerRunning(running bool) {
	if m == nil {
		return
	}
	if running {
		m.SchedulerRunning.Set(1)
	} else {
		m.SchedulerRunning.Set(0)
	}
}

func (m *Metrics) ObserveAnalysis(seconds float64, err error) {
	if m == nil {
		return
	}
	m.AnalysisDuration.Observe(seconds)
	if err != nil {
		m.AnalysisFailures.Inc()
	}
}
