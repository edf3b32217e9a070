package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var stages = []string{"idle", "refine", "select", "weather", "analytics", "addresses", "output", "done"}

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotel_weather", Name: "http_requests_total", Help: "Status server requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hotel_weather", Name: "http_request_duration_seconds",
			Help:    "Status server request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotel_weather", Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hotel_weather", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	RecordsRefined = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotel_weather", Name: "records_refined_total", Help: "Input rows by refine outcome."},
		[]string{"outcome"}, // kept|missing_field|bad_number|out_of_range
	)
	PipelineStage = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: "hotel_weather", Name: "pipeline_stage", Help: "1 for the stage currently running."},
		[]string{"stage"},
	)
	FetchProgress = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: "hotel_weather", Name: "fetch_progress", Help: "Bulk fetch counters."},
		[]string{"kind", "state"}, // kind: weather|address, state: total|done|failed
	)
)

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, RecordsRefined, PipelineStage, FetchProgress)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

// ObserveExternal records one outbound attempt. status is 0 when no response arrived.
func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveRefine(kept int, dropped map[string]int) {
	RecordsRefined.WithLabelValues("kept").Add(float64(kept))
	for reason, n := range dropped {
		RecordsRefined.WithLabelValues(reason).Add(float64(n))
	}
}

func SetStage(stage string) {
	for _, s := range stages {
		v := 0.0
		if s == stage {
			v = 1
		}
		PipelineStage.WithLabelValues(s).Set(v)
	}
}

func ObserveFetchProgress(kind, state string, v float64) {
	FetchProgress.WithLabelValues(kind, state).Set(v)
}
