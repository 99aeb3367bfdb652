package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "climatrix_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "climatrix_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "climatrix_cache_operations_total",
			Help: "Cache operations by kind and result (hit, miss, error, ok)",
		},
		[]string{"operation", "result"},
	)

	WeatherRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "climatrix_weather_requests_total",
			Help: "Requests sent to the weather provider by endpoint and result",
		},
		[]string{"endpoint", "result"},
	)

	AlertsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "climatrix_alerts_expired_total",
			Help: "Alerts deactivated by the expiry job",
		},
	)

	ReadingsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "climatrix_readings_ingested_total",
			Help: "Climate readings stored by the ingestion job",
		},
		[]string{"result"},
	)

	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "climatrix_alert_stream_clients",
			Help: "Currently connected alert stream clients",
		},
	)
)

func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordCache(operation, result string) {
	CacheOperations.WithLabelValues(operation, result).Inc()
}

func RecordWeatherRequest(endpoint string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	WeatherRequests.WithLabelValues(endpoint, result).Inc()
}
