package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the services report to. Collector is the Prometheus implementation.
type Recorder interface {
	RecordGeneration(kind string, err error)
	RecordPublish(outcome string)
	RecordAnalyticsFallback()
	RecordExternalCall(service, operation string, duration time.Duration, err error)
	RecordTokenRefresh(err error)
}

const (
	GenerationPost     = "post"
	GenerationHashtags = "hashtags"

	PublishSuccess  = "success"
	PublishFailed   = "failed"
	PublishConflict = "conflict"
	PublishSkipped  = "skipped"
)

type Collector struct {
	generations       *prometheus.CounterVec
	publishes         *prometheus.CounterVec
	analyticsFallback prometheus.Counter
	externalLatency   *prometheus.HistogramVec
	externalErrors    *prometheus.CounterVec
	tokenRefreshes    *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autopost_generations_total",
			Help: "Content generation requests by kind and result.",
		}, []string{"kind", "result"}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autopost_publish_total",
			Help: "Publish attempts by outcome.",
		}, []string{"outcome"}),
		analyticsFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autopost_analytics_fallback_total",
			Help: "Analytics fetches that fell back to zero counts.",
		}),
		externalLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "autopost_external_call_seconds",
			Help:    "Latency of calls to external services.",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "operation"}),
		externalErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autopost_external_call_errors_total",
			Help: "Failed calls to external services.",
		}, []string{"service", "operation"}),
		tokenRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autopost_token_refresh_total",
			Help: "Access token refreshes by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
	}

	reg.MustRegister(
		c.generations,
		c.publishes,
		c.analyticsFallback,
		c.externalLatency,
		c.externalErrors,
		c.tokenRefreshes,
		c.httpRequests,
		c.httpDuration,
	)

	return c
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (c *Collector) RecordGeneration(kind string, err error) {
	c.generations.WithLabelValues(kind, result(err)).Inc()
}

func (c *Collector) RecordPublish(outcome string) {
	c.publishes.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordAnalyticsFallback() {
	c.analyticsFallback.Inc()
}

func (c *Collector) RecordExternalCall(service, operation string, duration time.Duration, err error) {
	c.externalLatency.WithLabelValues(service, operation).Observe(duration.Seconds())
	if err != nil {
		c.externalErrors.WithLabelValues(service, operation).Inc()
	}
}

func (c *Collector) RecordTokenRefresh(err error) {
	c.tokenRefreshes.WithLabelValues(result(err)).Inc()
}

// RecordHTTPRequest counts a served request. endpoint is the route pattern,
// not the raw path, to keep label cardinality bounded.
func (c *Collector) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything. Used where no registry is wired.
type Nop struct{}

func (Nop) RecordGeneration(string, error)                          {}
func (Nop) RecordPublish(string)                                    {}
func (Nop) RecordAnalyticsFallback()                                {}
func (Nop) RecordExternalCall(string, string, time.Duration, error) {}
func (Nop) RecordTokenRefresh(error)                                {}
