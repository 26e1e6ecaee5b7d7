package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tempulse/tip20-indexer/internal/domain/repositories"
	"github.com/tempulse/tip20-indexer/internal/infrastructure/cache"
)

// HoldersService provides business logic for holder balance queries
type HoldersService struct {
	accountRepo repositories.AccountRepository
	cache       *cache.RedisCache
	logger      *zap.Logger
}

// NewHoldersService creates a new holders service
func NewHoldersService(
	accountRepo repositories.AccountRepository,
	cache *cache.RedisCache,
	logger *zap.Logger,
) *HoldersService {
	return &HoldersService{
		accountRepo: accountRepo,
		cache:       cache,
		logger:      logger,
	}
}

// HolderDTO is the API representation of one holder
type HolderDTO struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
	Rank    int    `json:"rank"`
}

// HoldersResponse is the API response for top holder queries
type HoldersResponse struct {
	TokenAddress string      `json:"token_address"`
	HolderCount  int64       `json:"holder_count"`
	Holders      []HolderDTO `json:"holders"`
}

// GetTopHolders returns the largest holders of a token with the total count
// of positive-balance addresses
func (s *HoldersService) GetTopHolders(ctx context.Context, tokenAddress string, limit int) (*HoldersResponse, error) {
	tokenAddress = strings.ToLower(tokenAddress)
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	cacheKey := fmt.Sprintf("holders:top:%s:%d", tokenAddress, limit)

	var cached HoldersResponse
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return &cached, nil
		}
	}

	holders, err := s.accountRepo.GetTopHolders(ctx, tokenAddress, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top holders: %w", err)
	}

	count, err := s.accountRepo.GetHolderCount(ctx, tokenAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to count holders: %w", err)
	}

	dtos := make([]HolderDTO, len(holders))
	for i, h := range holders {
		dtos[i] = HolderDTO{
			Address: h.Address,
			Balance: h.Balance,
			Rank:    h.Rank,
		}
	}

	response := &HoldersResponse{
		TokenAddress: tokenAddress,
		HolderCount:  count,
		Holders:      dtos,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, response); err != nil {
			s.logger.Warn("Failed to cache response", zap.Error(err))
		}
	}

	return response, nil
}

// GetHolderBalance returns one holder's balance and rank, or nil when the
// holder has no positive balance for the token
func (s *HoldersService) GetHolderBalance(ctx context.Context, tokenAddress, holderAddress string) (*HolderDTO, error) {
	tokenAddress = strings.ToLower(tokenAddress)
	holderAddress = strings.ToLower(holderAddress)

	holder, err := s.accountRepo.GetHolderBalance(ctx, tokenAddress, holderAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to get holder balance: %w", err)
	}
	if holder == nil {
		return nil, nil
	}

	return &HolderDTO{
		Address: holder.Address,
		Balance: holder.Balance,
		Rank:    holder.Rank,
	}, nil
}
