package api

import (
	"net/http"

	"github.com/alexivanou/city-api/internal/config"
	"github.com/alexivanou/city-api/internal/metrics"
	"github.com/alexivanou/city-api/internal/service"
	"github.com/alexivanou/city-api/internal/stats"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the HTTP layer needs
type Dependencies struct {
	Service        service.ServiceInterface
	Stats          *stats.Collector
	Health         HealthChecker
	App            config.AppConfig
	CORSOrigins    []string
	MetricsEnabled bool
	Logger         *zap.Logger
}

// NewRouter creates a new HTTP router
func NewRouter(deps Dependencies) http.Handler {
	handler := NewHandler(deps.Service, deps.Health, deps.App, deps.Logger)
	statsHandler := NewStatsHandler(deps.Stats, deps.Logger)

	router := mux.NewRouter()
	router.Use(Metrics)
	router.NotFoundHandler = Metrics(http.HandlerFunc(handler.NotFound))
	router.MethodNotAllowedHandler = Metrics(http.HandlerFunc(handler.MethodNotAllowed))

	router.HandleFunc("/health", handler.HealthCheck).Methods(http.MethodGet)

	router.HandleFunc("/cities", handler.CreateCity).Methods(http.MethodPost)
	router.HandleFunc("/cities", handler.ListCities).Methods(http.MethodGet)
	router.HandleFunc("/cities/nearest", handler.FindNearestCities).Methods(http.MethodPost)
	router.HandleFunc("/cities/{id}", handler.GetCity).Methods(http.MethodGet)
	router.HandleFunc("/cities/{id}", handler.DeleteCity).Methods(http.MethodDelete)

	router.HandleFunc("/stats", handler.GetStats).Methods(http.MethodGet)
	router.HandleFunc("/stats/detailed", statsHandler.GetDetailedStats).Methods(http.MethodGet)

	if deps.MetricsEnabled {
		router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   deps.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
	})

	return RequestLogger(deps.Logger)(corsHandler.Handler(router))
}
