package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

const namespace = "scores"

type Metrics struct {
	Registry       *prometheus.Registry
	TablesParsed   *prometheus.CounterVec
	Resolutions    *prometheus.CounterVec
	ReplayLength   prometheus.Histogram
	RemoteDuration *prometheus.HistogramVec
	HTTPDuration   *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		TablesParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tables_parsed_total",
			Help:      "Results tables parsed, by outcome.",
		}, []string{"outcome"}),
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Table resolutions, by outcome.",
		}, []string{"outcome"}),
		ReplayLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "replay_matches",
			Help:      "Matches replayed to predict one table.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34},
		}),
		RemoteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "leaderboard_request_duration_seconds",
			Help:      "Leaderboard API latency, by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "outcome"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.TablesParsed,
		m.Resolutions,
		m.ReplayLength,
		m.RemoteDuration,
		m.HTTPDuration,
	)
	return m
}

// Outcome labels an operation result for the counters.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var Module = fx.Provide(New)
