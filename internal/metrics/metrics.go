// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "metro_http_requests_total",
		Help: "Total number of HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "metro_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	SensorReadings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "metro_sensor_readings_total",
		Help: "Total number of sensor readings stored, by sensor type and source.",
	}, []string{"sensor_type", "source"})

	SensorAnomalies = promauto.NewCounter(prometheus.CounterOpts{
		Name: "metro_sensor_anomalies_total",
		Help: "Total number of sensor readings flagged anomalous.",
	})

	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "metro_websocket_clients",
		Help: "Number of connected websocket clients.",
	})

	WebsocketDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "metro_websocket_dropped_total",
		Help: "Total number of websocket clients dropped after a failed send.",
	})

	MQTTPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "metro_mqtt_publish_failures_total",
		Help: "Total number of sensor readings that could not be published to MQTT.",
	})

	PlansGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "metro_induction_plans_generated_total",
		Help: "Total number of induction plans generated.",
	})

	CacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "metro_cache_results_total",
		Help: "Dashboard cache lookups by result (hit, miss).",
	}, []string{"result"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest records one finished HTTP request.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
