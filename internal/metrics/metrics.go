// Package metrics exposes Prometheus collectors for the bot services.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	jobsTotal             *prometheus.CounterVec
	repliesTotal          *prometheus.CounterVec
	scrapesTotal          *prometheus.CounterVec
	scrapeDurationSeconds *prometheus.HistogramVec
	webhookEventsTotal    *prometheus.CounterVec
	publishedJobsTotal    prometheus.Counter
	publishFailuresTotal  prometheus.Counter

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		jobsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surfbot_jobs_total",
				Help: "Total number of jobs processed, labeled by command kind.",
			},
			[]string{"command"},
		)

		repliesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surfbot_replies_total",
				Help: "Total number of outbound replies, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		scrapesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surfbot_scrapes_total",
				Help: "Total number of scrape attempts, labeled by page and outcome.",
			},
			[]string{"page", "outcome"},
		)

		scrapeDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "surfbot_scrape_duration_seconds",
				Help:    "Histogram of scrape latencies, labeled by page.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"page"},
		)

		webhookEventsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surfbot_webhook_events_total",
				Help: "Total number of inbound webhook events, labeled by disposition.",
			},
			[]string{"disposition"},
		)

		publishedJobsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "surfbot_published_jobs_total",
				Help: "Total number of jobs published to the queue.",
			},
		)

		publishFailuresTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "surfbot_publish_failures_total",
				Help: "Total number of failed queue publishes.",
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveJob increments the job counter for the given command kind.
func ObserveJob(command string) {
	jobsTotal.WithLabelValues(command).Inc()
}

// ObserveReply increments the reply counter for the given outcome.
func ObserveReply(outcome string) {
	repliesTotal.WithLabelValues(outcome).Inc()
}

// ObserveScrape records one scrape attempt and its latency.
func ObserveScrape(page, outcome string, duration time.Duration) {
	scrapesTotal.WithLabelValues(page, outcome).Inc()
	scrapeDurationSeconds.WithLabelValues(page).Observe(duration.Seconds())
}

// ObserveWebhookEvent increments the webhook event counter.
func ObserveWebhookEvent(disposition string) {
	webhookEventsTotal.WithLabelValues(disposition).Inc()
}

// ObservePublish counts a queue publish attempt.
func ObservePublish(err error) {
	if err != nil {
		publishFailuresTotal.Inc()
		return
	}
	publishedJobsTotal.Inc()
}
