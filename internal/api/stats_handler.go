package api

import (
	"net/http"

	"github.com/alexivanou/city-api/internal/stats"
	"go.uber.org/zap"
)

// StatsHandler handles detailed statistics requests
type StatsHandler struct {
	collector *stats.Collector
	logger    *zap.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(collector *stats.Collector, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{collector: collector, logger: logger}
}

// GetDetailedStats handles GET /stats/detailed
func (h *StatsHandler) GetDetailedStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.collector.Collect(r.Context())
	if err != nil {
		h.logger.Error("Error collecting statistics", zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "failed to collect statistics")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, stats)
}
