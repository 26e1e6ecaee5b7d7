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

// HoldersHandler handles HTTP requests for token holders
type HoldersHandler struct {
	service *services.HoldersService
	logger  *zap.Logger
}

// NewHoldersHandler creates a new holders handler
func NewHoldersHandler(service *services.HoldersService, logger *zap.Logger) *HoldersHandler {
	return &HoldersHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the holder routes
func (h *HoldersHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tokens/{address}/holders", h.GetTopHolders)
	r.Get("/tokens/{address}/holders/{holder}", h.GetHolderBalance)
}

// GetTopHolders handles GET /api/v1/tokens/{address}/holders
func (h *HoldersHandler) GetTopHolders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	if !isValidAddress(address) {
		h.respondError(w, http.StatusBadRequest, "Invalid address format")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 && l <= 500 {
			limit = l
		}
	}

	response, err := h.service.GetTopHolders(ctx, strings.ToLower(address), limit)
	if err != nil {
		h.logger.Error("Failed to get top holders", zap.Error(err), zap.String("address", address))
		h.respondError(w, http.StatusInternalServerError, "Failed to get top holders")
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// GetHolderBalance handles GET /api/v1/tokens/{address}/holders/{holder}
func (h *HoldersHandler) GetHolderBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")
	holder := chi.URLParam(r, "holder")

	if !isValidAddress(address) || !isValidAddress(holder) {
		h.respondError(w, http.StatusBadRequest, "Invalid address format")
		return
	}

	response, err := h.service.GetHolderBalance(ctx, strings.ToLower(address), strings.ToLower(holder))
	if err != nil {
		h.logger.Error("Failed to get holder balance", zap.Error(err),
			zap.String("address", address), zap.String("holder", holder))
		h.respondError(w, http.StatusInternalServerError, "Failed to get holder balance")
		return
	}

	if response == nil {
		h.respondError(w, http.StatusNotFound, "holder not found")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{"data": response})
}

func (h *HoldersHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *HoldersHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
