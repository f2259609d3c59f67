// Package metrics exposes broker outcomes as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driven"
)

// Ensure Collector implements MetricsRecorder
var _ driven.MetricsRecorder = (*Collector)(nil)

const namespace = "linkedin_broker"

// Collector records broker metrics into a Prometheus registry.
type Collector struct {
	callbacks       *prometheus.CounterVec
	publishes       *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	sweepRuns       prometheus.Counter
	sweepPublished  prometheus.Counter
	sweepFailed     prometheus.Counter
	statesCleaned   prometheus.Counter
}

// NewCollector creates the collectors and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		callbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oauth_callbacks_total",
			Help:      "OAuth callbacks handled, by outcome.",
		}, []string{"outcome"}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publishes_total",
			Help:      "Publish requests handled, by outcome.",
		}, []string{"outcome"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Latency of LinkedIn API calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		sweepRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "welcome_sweep_runs_total",
			Help:      "Welcome sweep passes that held the lock.",
		}),
		sweepPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "welcome_posts_published_total",
			Help:      "Default posts published by the sweep.",
		}),
		sweepFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "welcome_posts_failed_total",
			Help:      "Identities the sweep could not publish for.",
		}),
		statesCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pkce_states_cleaned_total",
			Help:      "Expired PKCE states removed by the janitor.",
		}),
	}

	reg.MustRegister(
		c.callbacks,
		c.publishes,
		c.providerLatency,
		c.sweepRuns,
		c.sweepPublished,
		c.sweepFailed,
		c.statesCleaned,
	)

	return c
}

func (c *Collector) RecordCallback(outcome string) {
	c.callbacks.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordPublish(outcome string) {
	c.publishes.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordProviderLatency(op string, d time.Duration) {
	c.providerLatency.WithLabelValues(op).Observe(d.Seconds())
}

// RecordSweep counts one sweep pass and its per-identity results.
func (c *Collector) RecordSweep(published, failed int) {
	c.sweepRuns.Inc()
	c.sweepPublished.Add(float64(published))
	c.sweepFailed.Add(float64(failed))
}

func (c *Collector) RecordStatesCleaned(n int64) {
	c.statesCleaned.Add(float64(n))
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
