// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Geocoding outcomes used as label values
const (
	OutcomeFound       = "found"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cityapi_http_requests_total",
		Help: "Total number of HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})
	HTTPRequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cityapi_http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000, 10000},
	}, []string{"route"})
	GeocodingRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cityapi_geocoding_requests_total",
		Help: "Total outbound geocoding lookups by outcome",
	}, []string{"outcome"})
	GeocodingDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cityapi_geocoding_duration_ms",
		Help:    "Outbound geocoding call duration in milliseconds",
		Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000, 10000},
	})
	GeocodingCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cityapi_geocoding_cache_hits_total",
		Help: "Total geocoding cache hits",
	})
	GeocodingCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cityapi_geocoding_cache_misses_total",
		Help: "Total geocoding cache misses",
	})
	CitiesCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cityapi_cities_created_total",
		Help: "Total number of cities created through the API",
	})
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDurationMs)
	prometheus.MustRegister(GeocodingRequestsTotal)
	prometheus.MustRegister(GeocodingDurationMs)
	prometheus.MustRegister(GeocodingCacheHitsTotal)
	prometheus.MustRegister(GeocodingCacheMissesTotal)
	prometheus.MustRegister(CitiesCreatedTotal)
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
