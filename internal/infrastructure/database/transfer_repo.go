package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/tempulse/tip20-indexer/internal/domain/entities"
	"github.com/tempulse/tip20-indexer/internal/domain/repositories"
)

// Ensure TransferRepo implements TransferRepository
var _ repositories.TransferRepository = (*TransferRepo)(nil)

// TransferRepo implements TransferRepository using PostgreSQL
type TransferRepo struct {
	db *sqlx.DB
}

// NewTransferRepo creates a new transfer repository
func NewTransferRepo(db *sqlx.DB) *TransferRepo {
	return &TransferRepo{db: db}
}

// GetByFilter retrieves transfers matching the given filter
func (r *TransferRepo) GetByFilter(ctx context.Context, filter entities.TransferFilter) ([]entities.Transfer, error) {
	query, args := r.buildFilterQuery(filter, false)

	var transfers []entities.Transfer
	if err := r.db.SelectContext(ctx, &transfers, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get transfers: %w", err)
	}

	return transfers, nil
}

// GetCount returns the count of transfers matching the filter
func (r *TransferRepo) GetCount(ctx context.Context, filter entities.TransferFilter) (int64, error) {
	query, args := r.buildFilterQuery(filter, true)

	var count int64
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to get transfer count: %w", err)
	}

	return count, nil
}

// GetRecent returns the most recent transfers across all tokens
func (r *TransferRepo) GetRecent(ctx context.Context, limit int) ([]entities.Transfer, error) {
	query := `
		SELECT * FROM transfers
		ORDER BY block_number DESC, log_index DESC
		LIMIT $1
	`

	var transfers []entities.Transfer
	if err := r.db.SelectContext(ctx, &transfers, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get recent transfers: %w", err)
	}

	return transfers, nil
}

// buildFilterQuery builds the SQL query for filtering transfers
func (r *TransferRepo) buildFilterQuery(filter entities.TransferFilter, countOnly bool) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argIdx := 1

	if filter.TokenAddress != nil {
		conditions = append(conditions, fmt.Sprintf("token_address = $%d", argIdx))
		args = append(args, *filter.TokenAddress)
		argIdx++
	}

	if filter.Address != nil {
		conditions = append(conditions, fmt.Sprintf("(from_address = $%d OR to_address = $%d)", argIdx, argIdx))
		args = append(args, *filter.Address)
		argIdx++
	}

	if filter.EventType != nil {
		conditions = append(conditions, fmt.Sprintf("event_type = $%d", argIdx))
		args = append(args, *filter.EventType)
		argIdx++
	}

	if filter.FromBlock != nil {
		conditions = append(conditions, fmt.Sprintf("block_number >= $%d", argIdx))
		args = append(args, *filter.FromBlock)
		argIdx++
	}

	if filter.ToBlock != nil {
		conditions = append(conditions, fmt.Sprintf("block_number <= $%d", argIdx))
		args = append(args, *filter.ToBlock)
		argIdx++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	if countOnly {
		return fmt.Sprintf("SELECT COUNT(*) FROM transfers %s", whereClause), args
	}

	query := fmt.Sprintf(`
		SELECT id, token_address, from_address, to_address, amount, memo,
			   event_type, transaction_hash, block_number, log_index, created_at
		FROM transfers
		%s
		ORDER BY block_number DESC, log_index DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIdx, argIdx+1)

	args = append(args, filter.Limit, filter.Offset)

	return query, args
}
