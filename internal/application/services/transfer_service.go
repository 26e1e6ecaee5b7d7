package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tempulse/tip20-indexer/internal/domain/entities"
	"github.com/tempulse/tip20-indexer/internal/domain/repositories"
	"github.com/tempulse/tip20-indexer/internal/infrastructure/cache"
)

// TransferService provides business logic for transfer history queries
type TransferService struct {
	transferRepo repositories.TransferRepository
	cache        *cache.RedisCache
	logger       *zap.Logger
}

// NewTransferService creates a new transfer service
func NewTransferService(
	transferRepo repositories.TransferRepository,
	cache *cache.RedisCache,
	logger *zap.Logger,
) *TransferService {
	return &TransferService{
		transferRepo: transferRepo,
		cache:        cache,
		logger:       logger,
	}
}

// TransferDTO is the API representation of a transfer
type TransferDTO struct {
	ID              int64   `json:"id"`
	TokenAddress    string  `json:"token_address"`
	FromAddress     string  `json:"from_address"`
	ToAddress       string  `json:"to_address"`
	Amount          string  `json:"amount"`
	Memo            *string `json:"memo,omitempty"`
	EventType       string  `json:"event_type"`
	TransactionHash string  `json:"transaction_hash"`
	BlockNumber     int64   `json:"block_number"`
	LogIndex        int     `json:"log_index"`
	CreatedAt       string  `json:"created_at"`
}

// TransferListResponse is the API response for transfer queries
type TransferListResponse struct {
	Data       []TransferDTO      `json:"data"`
	Pagination PaginationResponse `json:"pagination"`
}

// GetTransfers retrieves transfers matching the filter, with the total count
// for pagination
func (s *TransferService) GetTransfers(ctx context.Context, filter entities.TransferFilter) (*TransferListResponse, error) {
	normalizeFilter(&filter)

	transfers, err := s.transferRepo.GetByFilter(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get transfers: %w", err)
	}

	total, err := s.transferRepo.GetCount(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count transfers: %w", err)
	}

	dtos := make([]TransferDTO, len(transfers))
	for i := range transfers {
		dtos[i] = transferToDTO(&transfers[i])
	}

	return &TransferListResponse{
		Data: dtos,
		Pagination: PaginationResponse{
			Total:  total,
			Limit:  filter.Limit,
			Offset: filter.Offset,
		},
	}, nil
}

// recentTTL keeps the activity feed fresh between polls
const recentTTL = 10 * time.Second

// GetRecent returns the most recent transfers across all tokens. This feeds
// the activity feed on every page load, so it is cached with a short TTL.
func (s *TransferService) GetRecent(ctx context.Context, limit int) ([]TransferDTO, error) {
	cacheKey := fmt.Sprintf("transfers:recent:%d", limit)

	var cached []TransferDTO
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return cached, nil
		}
	}

	transfers, err := s.transferRepo.GetRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent transfers: %w", err)
	}

	dtos := make([]TransferDTO, len(transfers))
	for i := range transfers {
		dtos[i] = transferToDTO(&transfers[i])
	}

	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, cacheKey, dtos, recentTTL); err != nil {
			s.logger.Warn("Failed to cache response", zap.Error(err))
		}
	}

	return dtos, nil
}

// normalizeFilter lowercases address filters and clamps pagination
func normalizeFilter(filter *entities.TransferFilter) {
	if filter.TokenAddress != nil {
		addr := strings.ToLower(*filter.TokenAddress)
		filter.TokenAddress = &addr
	}
	if filter.Address != nil {
		addr := strings.ToLower(*filter.Address)
		filter.Address = &addr
	}
	if filter.Limit <= 0 || filter.Limit > 1000 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
}

// transferToDTO converts a transfer entity to a DTO
func transferToDTO(t *entities.Transfer) TransferDTO {
	return TransferDTO{
		ID:              t.ID,
		TokenAddress:    t.TokenAddress,
		FromAddress:     t.FromAddress,
		ToAddress:       t.ToAddress,
		Amount:          t.Amount,
		Memo:            t.Memo,
		EventType:       t.EventType,
		TransactionHash: t.TransactionHash,
		BlockNumber:     t.BlockNumber,
		LogIndex:        t.LogIndex,
		CreatedAt:       t.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
