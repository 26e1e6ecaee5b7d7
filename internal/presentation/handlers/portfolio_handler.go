package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tempulse/tip20-indexer/internal/application/services"
)

// PortfolioHandler handles HTTP requests for wallet portfolios
type PortfolioHandler struct {
	service *services.PortfolioService
	logger  *zap.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(service *services.PortfolioService, logger *zap.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the portfolio routes
func (h *PortfolioHandler) RegisterRoutes(r chi.Router) {
	r.Get("/wallets/{address}/portfolio", h.GetPortfolio)
}

// GetPortfolio handles GET /api/v1/wallets/{address}/portfolio
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	if !isValidAddress(address) {
		h.respondError(w, http.StatusBadRequest, "Invalid address format")
		return
	}

	response, err := h.service.GetPortfolio(ctx, strings.ToLower(address))
	if err != nil {
		h.logger.Error("Failed to get portfolio", zap.Error(err), zap.String("address", address))
		h.respondError(w, http.StatusInternalServerError, "Failed to get portfolio")
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

func (h *PortfolioHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *PortfolioHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
