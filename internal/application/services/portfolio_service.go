package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tempulse/tip20-indexer/internal/domain/repositories"
	"github.com/tempulse/tip20-indexer/internal/infrastructure/cache"
)

// PortfolioService provides business logic for wallet portfolio queries
type PortfolioService struct {
	accountRepo repositories.AccountRepository
	cache       *cache.RedisCache
	logger      *zap.Logger
}

// NewPortfolioService creates a new portfolio service
func NewPortfolioService(
	accountRepo repositories.AccountRepository,
	cache *cache.RedisCache,
	logger *zap.Logger,
) *PortfolioService {
	return &PortfolioService{
		accountRepo: accountRepo,
		cache:       cache,
		logger:      logger,
	}
}

// HoldingDTO is one token position within a wallet
type HoldingDTO struct {
	TokenAddress string `json:"token_address"`
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Decimals     int16  `json:"decimals"`
	Currency     string `json:"currency"`
	Balance      string `json:"balance"`
}

// PortfolioResponse is the API response for wallet portfolio queries
type PortfolioResponse struct {
	WalletAddress string       `json:"wallet_address"`
	Holdings      []HoldingDTO `json:"holdings"`
}

// GetPortfolio returns every positive token position for a wallet
func (s *PortfolioService) GetPortfolio(ctx context.Context, walletAddress string) (*PortfolioResponse, error) {
	walletAddress = strings.ToLower(walletAddress)

	cacheKey := fmt.Sprintf("portfolio:%s", walletAddress)

	var cached PortfolioResponse
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return &cached, nil
		}
	}

	holdings, err := s.accountRepo.GetWalletHoldings(ctx, walletAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet holdings: %w", err)
	}

	dtos := make([]HoldingDTO, len(holdings))
	for i, h := range holdings {
		dtos[i] = HoldingDTO{
			TokenAddress: h.TokenAddress,
			Symbol:       h.Symbol,
			Name:         h.Name,
			Decimals:     h.Decimals,
			Currency:     h.Currency,
			Balance:      h.Balance,
		}
	}

	response := &PortfolioResponse{
		WalletAddress: walletAddress,
		Holdings:      dtos,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, response); err != nil {
			s.logger.Warn("Failed to cache response", zap.Error(err))
		}
	}

	return response, nil
}
