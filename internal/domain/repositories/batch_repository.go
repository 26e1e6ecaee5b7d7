package repositories

import (
	"context"

	"github.com/tempulse/tip20-indexer/internal/domain/entities"
)

// BatchRepository is the write side of the indexing pipeline. The store must
// support multi-statement atomic transactions: every method here is
// all-or-nothing.
type BatchRepository interface {
	// CommitBatch applies one accumulated batch in a single transaction:
	// transfer inserts (deduplicated on the natural key), balance upserts,
	// supply deltas, hourly-stat upserts, the head block's hash record, and
	// the cursor advance. Any failure aborts the whole batch.
	CommitBatch(ctx context.Context, batch *entities.Batch) error

	// RollbackTo deletes all derived state strictly after the fork block and
	// rewinds the cursor to it, in a single transaction.
	RollbackTo(ctx context.Context, forkBlock int64) error

	// LastIndexedBlock reads the durable cursor.
	LastIndexedBlock(ctx context.Context) (int64, error)

	// EnsureCursor seeds the cursor row on a fresh database; it is a no-op
	// when a cursor already exists.
	EnsureCursor(ctx context.Context, startBlock int64) error

	// StoredBlockHash returns the recorded hash for a block number, or ""
	// when no row exists.
	StoredBlockHash(ctx context.Context, blockNumber int64) (string, error)
}
