package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tempulse/tip20-indexer/internal/domain/entities"
	"github.com/tempulse/tip20-indexer/internal/domain/repositories"
)

// Ensure StatsRepo implements StatsRepository
var _ repositories.StatsRepository = (*StatsRepo)(nil)

// StatsRepo reads the pre-aggregated hourly buckets
type StatsRepo struct {
	db *sqlx.DB
}

// NewStatsRepo creates a new stats repository
func NewStatsRepo(db *sqlx.DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// GetHourly returns raw hourly buckets for a token, newest first
func (r *StatsRepo) GetHourly(ctx context.Context, tokenAddress string, limit int) ([]entities.HourlyStats, error) {
	query := `
		SELECT token_address, hour, transfer_count, transfer_volume,
			   mint_count, mint_volume, burn_count, burn_volume,
			   unique_senders, unique_receivers
		FROM hourly_stats
		WHERE token_address = $1
		ORDER BY hour DESC
		LIMIT $2
	`

	var stats []entities.HourlyStats
	if err := r.db.SelectContext(ctx, &stats, query, tokenAddress, limit); err != nil {
		return nil, fmt.Errorf("failed to get hourly stats: %w", err)
	}

	return stats, nil
}

// GetWindow aggregates buckets for a token since the given time. A token
// with no buckets in the window yields all-zero stats rather than an error.
func (r *StatsRepo) GetWindow(ctx context.Context, tokenAddress string, since time.Time) (*repositories.TokenWindowStats, error) {
	query := `
		SELECT COALESCE(SUM(transfer_count), 0) AS transfer_count,
			   COALESCE(SUM(CAST(transfer_volume AS NUMERIC)), 0)::TEXT AS transfer_volume,
			   COALESCE(SUM(mint_count), 0) AS mint_count,
			   COALESCE(SUM(CAST(mint_volume AS NUMERIC)), 0)::TEXT AS mint_volume,
			   COALESCE(SUM(burn_count), 0) AS burn_count,
			   COALESCE(SUM(CAST(burn_volume AS NUMERIC)), 0)::TEXT AS burn_volume
		FROM hourly_stats
		WHERE token_address = $1 AND hour >= $2
	`

	var stats repositories.TokenWindowStats
	if err := r.db.GetContext(ctx, &stats, query, tokenAddress, since); err != nil {
		return nil, fmt.Errorf("failed to aggregate stats window: %w", err)
	}

	return &stats, nil
}

// GetTVL returns total supply per token, largest first
func (r *StatsRepo) GetTVL(ctx context.Context) ([]repositories.TVLEntry, error) {
	query := `
		SELECT address, symbol, currency, total_supply
		FROM tokens
		ORDER BY CAST(total_supply AS NUMERIC) DESC
	`

	var entries []repositories.TVLEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("failed to get tvl: %w", err)
	}

	return entries, nil
}
