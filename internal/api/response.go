package api

import (
	"encoding/json"
	"net/http"

	"github.com/alexivanou/city-api/internal/model"
	"go.uber.org/zap"
)

func errorBody(detail string) model.ErrorResponse {
	return model.ErrorResponse{Detail: detail}
}

func writeError(w http.ResponseWriter, logger *zap.Logger, status int, detail string) {
	writeJSON(w, logger, status, errorBody(detail))
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Error encoding response", zap.Error(err))
	}
}
