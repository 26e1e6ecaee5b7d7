package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tempulse/tip20-indexer/internal/application/services"
	"github.com/tempulse/tip20-indexer/internal/domain/entities"
)

// TransferHandler handles HTTP requests for transfer history
type TransferHandler struct {
	service *services.TransferService
	logger  *zap.Logger
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(service *services.TransferService, logger *zap.Logger) *TransferHandler {
	return &TransferHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the transfer routes
func (h *TransferHandler) RegisterRoutes(r chi.Router) {
	r.Get("/transfers", h.GetTransfers)
	r.Get("/transfers/recent", h.GetRecent)
	r.Get("/tokens/{address}/transfers", h.GetTokenTransfers)
}

// GetTransfers handles GET /api/v1/transfers
func (h *TransferHandler) GetTransfers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, errMsg := parseTransferFilter(r)
	if errMsg != "" {
		h.respondError(w, http.StatusBadRequest, errMsg)
		return
	}

	response, err := h.service.GetTransfers(ctx, filter)
	if err != nil {
		h.logger.Error("Failed to get transfers", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Failed to get transfers")
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// GetTokenTransfers handles GET /api/v1/tokens/{address}/transfers
func (h *TransferHandler) GetTokenTransfers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	if !isValidAddress(address) {
		h.respondError(w, http.StatusBadRequest, "Invalid address format")
		return
	}

	filter, errMsg := parseTransferFilter(r)
	if errMsg != "" {
		h.respondError(w, http.StatusBadRequest, errMsg)
		return
	}

	address = strings.ToLower(address)
	filter.TokenAddress = &address

	response, err := h.service.GetTransfers(ctx, filter)
	if err != nil {
		h.logger.Error("Failed to get token transfers", zap.Error(err), zap.String("address", address))
		h.respondError(w, http.StatusInternalServerError, "Failed to get transfers")
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// GetRecent handles GET /api/v1/transfers/recent
func (h *TransferHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	transfers, err := h.service.GetRecent(ctx, limit)
	if err != nil {
		h.logger.Error("Failed to get recent transfers", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Failed to get recent transfers")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{"data": transfers})
}

// parseTransferFilter builds a filter from query parameters. It returns a
// non-empty message on invalid input.
func parseTransferFilter(r *http.Request) (entities.TransferFilter, string) {
	filter := entities.DefaultTransferFilter()
	q := r.URL.Query()

	if v := q.Get("address"); v != "" {
		if !isValidAddress(v) {
			return filter, "Invalid address format"
		}
		addr := strings.ToLower(v)
		filter.Address = &addr
	}
	if v := q.Get("event_type"); v != "" {
		if v != entities.EventTypeTransfer && v != entities.EventTypeMint && v != entities.EventTypeBurn {
			return filter, "Invalid event type"
		}
		filter.EventType = &v
	}
	if v := q.Get("from_block"); v != "" {
		b, err := strconv.ParseInt(v, 10, 64)
		if err != nil || b < 0 {
			return filter, "Invalid from_block"
		}
		filter.FromBlock = &b
	}
	if v := q.Get("to_block"); v != "" {
		b, err := strconv.ParseInt(v, 10, 64)
		if err != nil || b < 0 {
			return filter, "Invalid to_block"
		}
		filter.ToBlock = &b
	}
	if v := q.Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 && l <= 1000 {
			filter.Limit = l
		}
	}
	if v := q.Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil && o >= 0 {
			filter.Offset = o
		}
	}

	return filter, ""
}

func (h *TransferHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *TransferHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

func isValidAddress(addr string) bool {
	if len(addr) != 42 {
		return false
	}
	if !strings.HasPrefix(addr, "0x") {
		return false
	}
	return true
}
