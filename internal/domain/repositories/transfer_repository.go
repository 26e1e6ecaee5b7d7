package repositories

import (
	"context"

	"github.com/tempulse/tip20-indexer/internal/domain/entities"
)

// TransferRepository defines the read interface over the append-only
// transfer log. Writes happen only through BatchRepository.CommitBatch.
type TransferRepository interface {
	// GetByFilter retrieves transfers matching the given filter
	GetByFilter(ctx context.Context, filter entities.TransferFilter) ([]entities.Transfer, error)

	// GetCount returns the count of transfers matching the filter
	GetCount(ctx context.Context, filter entities.TransferFilter) (int64, error)

	// GetRecent returns the most recent transfers across all tokens
	GetRecent(ctx context.Context, limit int) ([]entities.Transfer, error)
}
