package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/tempulse/tip20-indexer/internal/domain/entities"
	"github.com/tempulse/tip20-indexer/internal/domain/repositories"
)

// Ensure BatchRepo implements BatchRepository
var _ repositories.BatchRepository = (*BatchRepo)(nil)

// BatchRepo is the single writer for all derived indexing state. Every write
// path here runs inside one transaction so a reader only ever observes whole
// batches.
type BatchRepo struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewBatchRepo creates a new batch repository
func NewBatchRepo(db *sqlx.DB, logger *zap.Logger) *BatchRepo {
	return &BatchRepo{db: db, logger: logger}
}

const cursorKey = "last_indexed_block"

// Balances, supplies and volumes are exact base-10 integer text. Arithmetic
// happens in Postgres NUMERIC space and is cast back to text; subtraction is
// clamped at zero with GREATEST.
const (
	addBalanceQuery = `
		INSERT INTO accounts (address, token_address, balance, updated_at_block)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (address, token_address) DO UPDATE
		SET balance = (CAST(accounts.balance AS NUMERIC) + CAST($3 AS NUMERIC))::TEXT,
			updated_at_block = $4
	`

	subBalanceQuery = `
		INSERT INTO accounts (address, token_address, balance, updated_at_block)
		VALUES ($1, $2, '0', $4)
		ON CONFLICT (address, token_address) DO UPDATE
		SET balance = GREATEST(0, CAST(accounts.balance AS NUMERIC) - CAST($3 AS NUMERIC))::TEXT,
			updated_at_block = $4
	`

	addSupplyQuery = `
		UPDATE tokens
		SET total_supply = (CAST(total_supply AS NUMERIC) + CAST($2 AS NUMERIC))::TEXT,
			updated_at = NOW()
		WHERE address = $1
	`

	subSupplyQuery = `
		UPDATE tokens
		SET total_supply = GREATEST(0, CAST(total_supply AS NUMERIC) - CAST($2 AS NUMERIC))::TEXT,
			updated_at = NOW()
		WHERE address = $1
	`

	upsertStatsQuery = `
		INSERT INTO hourly_stats (token_address, hour, transfer_count, transfer_volume,
								  mint_count, mint_volume, burn_count, burn_volume,
								  unique_senders, unique_receivers)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (token_address, hour) DO UPDATE SET
			transfer_count = hourly_stats.transfer_count + $3,
			transfer_volume = (CAST(hourly_stats.transfer_volume AS NUMERIC) + CAST($4 AS NUMERIC))::TEXT,
			mint_count = hourly_stats.mint_count + $5,
			mint_volume = (CAST(hourly_stats.mint_volume AS NUMERIC) + CAST($6 AS NUMERIC))::TEXT,
			burn_count = hourly_stats.burn_count + $7,
			burn_volume = (CAST(hourly_stats.burn_volume AS NUMERIC) + CAST($8 AS NUMERIC))::TEXT,
			unique_senders = hourly_stats.unique_senders + $9,
			unique_receivers = hourly_stats.unique_receivers + $10
	`

	// Bucket keys are UTC hour truncations; AT TIME ZONE 'UTC' pins both
	// sides so the comparison is independent of the session time zone.
	rollbackStatsQuery = `
		DELETE FROM hourly_stats
		WHERE (token_address, hour AT TIME ZONE 'UTC') IN (
			SELECT DISTINCT token_address, DATE_TRUNC('hour', created_at AT TIME ZONE 'UTC')
			FROM transfers WHERE block_number > $1
		)
	`

	upsertBlockQuery = `
		INSERT INTO indexed_blocks (block_number, block_hash, parent_hash, timestamp)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (block_number) DO UPDATE
		SET block_hash = $2, parent_hash = $3, timestamp = $4
	`

	setCursorQuery = `UPDATE indexer_state SET value = $1 WHERE key = $2`
)

// CommitBatch applies one accumulated batch atomically
func (r *BatchRepo) CommitBatch(ctx context.Context, batch *entities.Batch) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.insertTransfers(ctx, tx, batch.Transfers); err != nil {
		return err
	}

	for key, delta := range batch.BalanceDeltas {
		if delta.Delta.Sign() == 0 {
			continue
		}
		query := addBalanceQuery
		amount := delta.Delta
		if delta.Delta.Sign() < 0 {
			query = subBalanceQuery
			amount = new(big.Int).Abs(delta.Delta)
		}
		if _, err := tx.ExecContext(ctx, query,
			key.Address, key.TokenAddress, amount.String(), delta.UpdatedAtBlock,
		); err != nil {
			return fmt.Errorf("failed to upsert balance for %s/%s: %w", key.Address, key.TokenAddress, err)
		}
	}

	for token, delta := range batch.SupplyDeltas {
		if delta.Sign() == 0 {
			continue
		}
		query := addSupplyQuery
		amount := delta
		if delta.Sign() < 0 {
			query = subSupplyQuery
			amount = new(big.Int).Abs(delta)
		}
		if _, err := tx.ExecContext(ctx, query, token, amount.String()); err != nil {
			return fmt.Errorf("failed to update supply for %s: %w", token, err)
		}
	}

	for key, delta := range batch.StatsDeltas {
		if _, err := tx.ExecContext(ctx, upsertStatsQuery,
			key.TokenAddress, key.Hour,
			delta.TransferCount, delta.TransferVolume.String(),
			delta.MintCount, delta.MintVolume.String(),
			delta.BurnCount, delta.BurnVolume.String(),
			delta.UniqueSenders, delta.UniqueReceivers,
		); err != nil {
			return fmt.Errorf("failed to upsert hourly stats for %s: %w", key.TokenAddress, err)
		}
	}

	if _, err := tx.ExecContext(ctx, upsertBlockQuery,
		batch.Head.BlockNumber, batch.Head.BlockHash, batch.Head.ParentHash, batch.Head.Timestamp,
	); err != nil {
		return fmt.Errorf("failed to record head block %d: %w", batch.Head.BlockNumber, err)
	}

	if _, err := tx.ExecContext(ctx, setCursorQuery,
		fmt.Sprintf("%d", batch.ToBlock), cursorKey,
	); err != nil {
		return fmt.Errorf("failed to advance cursor: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	return nil
}

const (
	transferInsertColumns = 10
	// Postgres caps a statement at 65535 bind parameters; 1000 rows keeps a
	// chunk well under that.
	transferInsertChunk = 1000
)

// insertTransfers writes the append-only rows as multi-row INSERTs, skipping
// duplicates on the (transaction_hash, log_index) natural key so retries stay
// idempotent.
func (r *BatchRepo) insertTransfers(ctx context.Context, tx *sqlx.Tx, transfers []entities.Transfer) error {
	for start := 0; start < len(transfers); start += transferInsertChunk {
		end := start + transferInsertChunk
		if end > len(transfers) {
			end = len(transfers)
		}

		query, args := buildTransferInsert(transfers[start:end])
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert transfers %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}

// buildTransferInsert renders one multi-row VALUES statement for the chunk.
func buildTransferInsert(transfers []entities.Transfer) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO transfers (token_address, from_address, to_address, amount, memo,
		event_type, transaction_hash, block_number, log_index, created_at) VALUES `)

	args := make([]interface{}, 0, len(transfers)*transferInsertColumns)
	for i, t := range transfers {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * transferInsertColumns
		sb.WriteByte('(')
		for col := 1; col <= transferInsertColumns; col++ {
			if col > 1 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", base+col)
		}
		sb.WriteByte(')')

		args = append(args,
			t.TokenAddress,
			t.FromAddress,
			t.ToAddress,
			t.Amount,
			t.Memo,
			t.EventType,
			t.TransactionHash,
			t.BlockNumber,
			t.LogIndex,
			t.CreatedAt,
		)
	}

	sb.WriteString(" ON CONFLICT (transaction_hash, log_index) DO NOTHING")
	return sb.String(), args
}

// RollbackTo deletes all derived state strictly after the fork block and
// rewinds the cursor, in one transaction. Hourly buckets are cleared
// conservatively: any bucket containing a to-be-deleted transfer goes, even
// if it also held unaffected rows; the loop rebuilds those on re-index.
func (r *BatchRepo) RollbackTo(ctx context.Context, forkBlock int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, rollbackStatsQuery, forkBlock); err != nil {
		return fmt.Errorf("failed to delete hourly stats after fork: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM transfers WHERE block_number > $1`, forkBlock); err != nil {
		return fmt.Errorf("failed to delete transfers after fork: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM indexed_blocks WHERE block_number > $1`, forkBlock); err != nil {
		return fmt.Errorf("failed to delete indexed blocks after fork: %w", err)
	}

	if _, err := tx.ExecContext(ctx, setCursorQuery,
		fmt.Sprintf("%d", forkBlock), cursorKey,
	); err != nil {
		return fmt.Errorf("failed to rewind cursor: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rollback: %w", err)
	}

	r.logger.Warn("Reorg rollback complete",
		zap.Int64("fork_block", forkBlock),
	)

	return nil
}

// LastIndexedBlock reads the durable cursor. A missing or unparsable row
// reads as 0, matching a fresh database.
func (r *BatchRepo) LastIndexedBlock(ctx context.Context) (int64, error) {
	var value string
	query := `SELECT value FROM indexer_state WHERE key = $1`

	if err := r.db.GetContext(ctx, &value, query, cursorKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read cursor: %w", err)
	}

	var block int64
	if _, err := fmt.Sscanf(value, "%d", &block); err != nil {
		return 0, nil
	}
	return block, nil
}

// EnsureCursor seeds the cursor row if the database is fresh. The migration
// leaves indexer_state empty, so the first boot's configured starting block
// wins; later boots keep the stored cursor.
func (r *BatchRepo) EnsureCursor(ctx context.Context, startBlock int64) error {
	query := `
		INSERT INTO indexer_state (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, cursorKey, fmt.Sprintf("%d", startBlock)); err != nil {
		return fmt.Errorf("failed to seed cursor: %w", err)
	}
	return nil
}

// StoredBlockHash returns the recorded hash for a block, or "" when no row
// exists
func (r *BatchRepo) StoredBlockHash(ctx context.Context, blockNumber int64) (string, error) {
	var hash string
	query := `SELECT block_hash FROM indexed_blocks WHERE block_number = $1`

	if err := r.db.GetContext(ctx, &hash, query, blockNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get stored block hash: %w", err)
	}

	return hash, nil
}
