package services

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tempulse/tip20-indexer/internal/domain/repositories"
	"github.com/tempulse/tip20-indexer/internal/infrastructure/cache"
)

// StatsService provides business logic for aggregate stats queries
type StatsService struct {
	statsRepo repositories.StatsRepository
	cache     *cache.RedisCache
	logger    *zap.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(
	statsRepo repositories.StatsRepository,
	cache *cache.RedisCache,
	logger *zap.Logger,
) *StatsService {
	return &StatsService{
		statsRepo: statsRepo,
		cache:     cache,
		logger:    logger,
	}
}

// WindowStatsDTO is one aggregated time window
type WindowStatsDTO struct {
	TransferCount  int64  `json:"transfer_count"`
	TransferVolume string `json:"transfer_volume"`
	MintCount      int64  `json:"mint_count"`
	MintVolume     string `json:"mint_volume"`
	BurnCount      int64  `json:"burn_count"`
	BurnVolume     string `json:"burn_volume"`
}

// TokenStatsResponse is the API response for per-token stats
type TokenStatsResponse struct {
	TokenAddress string         `json:"token_address"`
	Hour         WindowStatsDTO `json:"1h"`
	Day          WindowStatsDTO `json:"24h"`
	Week         WindowStatsDTO `json:"7d"`
}

// HourlyStatsDTO is one raw hourly bucket
type HourlyStatsDTO struct {
	Hour            string `json:"hour"`
	TransferCount   int64  `json:"transfer_count"`
	TransferVolume  string `json:"transfer_volume"`
	MintCount       int64  `json:"mint_count"`
	MintVolume      string `json:"mint_volume"`
	BurnCount       int64  `json:"burn_count"`
	BurnVolume      string `json:"burn_volume"`
	UniqueSenders   int64  `json:"unique_senders"`
	UniqueReceivers int64  `json:"unique_receivers"`
}

// TVLEntryDTO is one token's supply in the TVL listing
type TVLEntryDTO struct {
	TokenAddress string `json:"token_address"`
	Symbol       string `json:"symbol"`
	Currency     string `json:"currency"`
	TotalSupply  string `json:"total_supply"`
}

// TVLResponse is the API response for total value locked
type TVLResponse struct {
	Total  string        `json:"total"`
	Tokens []TVLEntryDTO `json:"tokens"`
}

// GetTokenStats aggregates the standard 1h/24h/7d windows for a token
func (s *StatsService) GetTokenStats(ctx context.Context, tokenAddress string) (*TokenStatsResponse, error) {
	tokenAddress = strings.ToLower(tokenAddress)

	cacheKey := fmt.Sprintf("stats:token:%s", tokenAddress)

	var cached TokenStatsResponse
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return &cached, nil
		}
	}

	now := time.Now().UTC()
	response := &TokenStatsResponse{TokenAddress: tokenAddress}

	windows := []struct {
		since time.Time
		dest  *WindowStatsDTO
	}{
		{now.Add(-time.Hour), &response.Hour},
		{now.Add(-24 * time.Hour), &response.Day},
		{now.Add(-7 * 24 * time.Hour), &response.Week},
	}

	for _, w := range windows {
		stats, err := s.statsRepo.GetWindow(ctx, tokenAddress, w.since)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate stats window: %w", err)
		}
		*w.dest = WindowStatsDTO{
			TransferCount:  stats.TransferCount,
			TransferVolume: stats.TransferVolume,
			MintCount:      stats.MintCount,
			MintVolume:     stats.MintVolume,
			BurnCount:      stats.BurnCount,
			BurnVolume:     stats.BurnVolume,
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, response); err != nil {
			s.logger.Warn("Failed to cache response", zap.Error(err))
		}
	}

	return response, nil
}

// GetHourly returns raw hourly buckets for a token, newest first
func (s *StatsService) GetHourly(ctx context.Context, tokenAddress string, limit int) ([]HourlyStatsDTO, error) {
	tokenAddress = strings.ToLower(tokenAddress)
	if limit <= 0 || limit > 720 {
		limit = 168
	}

	stats, err := s.statsRepo.GetHourly(ctx, tokenAddress, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get hourly stats: %w", err)
	}

	dtos := make([]HourlyStatsDTO, len(stats))
	for i, st := range stats {
		dtos[i] = HourlyStatsDTO{
			Hour:            st.Hour.Format("2006-01-02T15:04:05Z"),
			TransferCount:   st.TransferCount,
			TransferVolume:  st.TransferVolume,
			MintCount:       st.MintCount,
			MintVolume:      st.MintVolume,
			BurnCount:       st.BurnCount,
			BurnVolume:      st.BurnVolume,
			UniqueSenders:   st.UniqueSenders,
			UniqueReceivers: st.UniqueReceivers,
		}
	}

	return dtos, nil
}

// GetTVL returns per-token total supply and the sum across all tokens.
// The sum is exact big-integer arithmetic over the stored supply strings.
func (s *StatsService) GetTVL(ctx context.Context) (*TVLResponse, error) {
	cacheKey := "stats:tvl"

	var cached TVLResponse
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return &cached, nil
		}
	}

	entries, err := s.statsRepo.GetTVL(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tvl: %w", err)
	}

	total := new(big.Int)
	dtos := make([]TVLEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = TVLEntryDTO{
			TokenAddress: e.TokenAddress,
			Symbol:       e.Symbol,
			Currency:     e.Currency,
			TotalSupply:  e.TotalSupply,
		}
		if supply, ok := new(big.Int).SetString(e.TotalSupply, 10); ok {
			total.Add(total, supply)
		}
	}

	response := &TVLResponse{
		Total:  total.String(),
		Tokens: dtos,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, response); err != nil {
			s.logger.Warn("Failed to cache response", zap.Error(err))
		}
	}

	return response, nil
}
