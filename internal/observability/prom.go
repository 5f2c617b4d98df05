package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	// Upstream weather provider
	FetchDuration *prometheus.HistogramVec
	FetchResults  *prometheus.CounterVec
	CacheResults  *prometheus.CounterVec
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "weatherhub",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "weatherhub",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "weatherhub",
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "weatherhub",
				Subsystem: "weather",
				Name:      "fetch_duration_seconds",
				Help:      "Upstream weather fetch latency.",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"result"}, // result=ok|miss|error
		),
		FetchResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "weatherhub",
				Subsystem: "weather",
				Name:      "fetch_results_total",
				Help:      "Upstream weather fetch outcomes.",
			},
			[]string{"result"}, // result=ok|miss|error
		),
		CacheResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "weatherhub",
				Subsystem: "weather",
				Name:      "cache_results_total",
				Help:      "Snapshot cache outcomes per lookup.",
			},
			[]string{"result"}, // result=hit|miss|bypass
		),
	}
	reg.MustRegister(p.RequestsTotal, p.RequestsDuration, p.InFlight, p.FetchDuration, p.FetchResults, p.CacheResults)

	return p
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// route template is only available after routing; best effort:
		route := ctx.FullPath()

		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}

// ObserveFetch records one upstream fetch outcome.
// result must be one of ok, miss, error.
func (p *Prom) ObserveFetch(result string, elapsed time.Duration) {
	p.FetchResults.WithLabelValues(result).Inc()
	p.FetchDuration.WithLabelValues(result).Observe(elapsed.Seconds())
}
