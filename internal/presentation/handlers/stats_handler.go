package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tempulse/tip20-indexer/internal/application/services"
)

// StatsHandler handles HTTP requests for aggregate statistics
type StatsHandler struct {
	service *services.StatsService
	logger  *zap.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(service *services.StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the stats routes
func (h *StatsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tokens/{address}/stats", h.GetTokenStats)
	r.Get("/tokens/{address}/stats/hourly", h.GetHourly)
	r.Get("/tvl", h.GetTVL)
}

// GetTokenStats handles GET /api/v1/tokens/{address}/stats
func (h *StatsHandler) GetTokenStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	if !isValidAddress(address) {
		h.respondError(w, http.StatusBadRequest, "Invalid address format")
		return
	}

	address = strings.ToLower(address)

	response, err := h.service.GetTokenStats(ctx, address)
	if err != nil {
		h.logger.Error("Failed to get token stats", zap.Error(err), zap.String("address", address))
		h.respondError(w, http.StatusInternalServerError, "Failed to get token stats")
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// GetHourly handles GET /api/v1/tokens/{address}/stats/hourly
func (h *StatsHandler) GetHourly(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	if !isValidAddress(address) {
		h.respondError(w, http.StatusBadRequest, "Invalid address format")
		return
	}

	limit := 168
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 && l <= 720 {
			limit = l
		}
	}

	stats, err := h.service.GetHourly(ctx, strings.ToLower(address), limit)
	if err != nil {
		h.logger.Error("Failed to get hourly stats", zap.Error(err), zap.String("address", address))
		h.respondError(w, http.StatusInternalServerError, "Failed to get hourly stats")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{"data": stats})
}

// GetTVL handles GET /api/v1/tvl
func (h *StatsHandler) GetTVL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	response, err := h.service.GetTVL(ctx)
	if err != nil {
		h.logger.Error("Failed to get tvl", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Failed to get tvl")
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

func (h *StatsHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *StatsHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
