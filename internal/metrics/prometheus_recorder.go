package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg            *prom.Registry
	updates        *prom.CounterVec
	updateDuration prom.Histogram
	downloadBytes  prom.Histogram
	polls          prom.Counter
	lastSuccess    prom.Gauge
}

// NewPrometheusRecorder constructs and registers the wow metrics on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		updates: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "wow",
			Name:      "updates_total",
			Help:      "Update attempts by outcome",
		}, []string{"outcome"}),
		updateDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "wow",
			Name:      "update_duration_seconds",
			Help:      "Duration of update attempts that reached the network",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		downloadBytes: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "wow",
			Name:      "download_bytes",
			Help:      "Size of downloaded wallpapers",
			Buckets:   prom.ExponentialBuckets(256<<10, 2, 8),
		}),
		polls: prom.NewCounter(prom.CounterOpts{
			Namespace: "wow",
			Name:      "daemon_polls_total",
			Help:      "Daemon poll iterations",
		}),
		lastSuccess: prom.NewGauge(prom.GaugeOpts{
			Namespace: "wow",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful update",
		}),
	}
	reg.MustRegister(pr.updates, pr.updateDuration, pr.downloadBytes, pr.polls, pr.lastSuccess)
	return pr
}

func (p *PrometheusRecorder) ObserveUpdate(outcome Outcome, d time.Duration) {
	p.updates.WithLabelValues(string(outcome)).Inc()
	if outcome != OutcomeNotDue && outcome != OutcomeClockReset {
		p.updateDuration.Observe(d.Seconds())
	}
}

func (p *PrometheusRecorder) ObserveDownloadBytes(n int) {
	p.downloadBytes.Observe(float64(n))
}

func (p *PrometheusRecorder) IncPoll() {
	p.polls.Inc()
}

func (p *PrometheusRecorder) SetLastSuccess(t time.Time) {
	p.lastSuccess.Set(float64(t.Unix()))
}

// Handler serves the recorder's registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
