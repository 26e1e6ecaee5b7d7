package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tempulse/tip20-indexer/internal/domain/entities"
	"github.com/tempulse/tip20-indexer/internal/domain/repositories"
)

// Ensure TokenRepo implements TokenRepository
var _ repositories.TokenRepository = (*TokenRepo)(nil)

// TokenRepo implements TokenRepository using PostgreSQL
type TokenRepo struct {
	db *sqlx.DB
}

// NewTokenRepo creates a new token repository
func NewTokenRepo(db *sqlx.DB) *TokenRepo {
	return &TokenRepo{db: db}
}

// GetByAddress retrieves a token by its address
func (r *TokenRepo) GetByAddress(ctx context.Context, address string) (*entities.Token, error) {
	var token entities.Token
	query := `SELECT * FROM tokens WHERE address = $1`

	if err := r.db.GetContext(ctx, &token, query, address); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	return &token, nil
}

// GetAll retrieves all tokens ordered by symbol
func (r *TokenRepo) GetAll(ctx context.Context) ([]entities.Token, error) {
	var tokens []entities.Token
	query := `SELECT * FROM tokens ORDER BY symbol`

	if err := r.db.SelectContext(ctx, &tokens, query); err != nil {
		return nil, fmt.Errorf("failed to get tokens: %w", err)
	}

	return tokens, nil
}

// GetAllPaginated retrieves tokens with pagination
func (r *TokenRepo) GetAllPaginated(ctx context.Context, limit, offset int) ([]*entities.Token, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM tokens`); err != nil {
		return nil, 0, fmt.Errorf("failed to count tokens: %w", err)
	}

	var tokens []*entities.Token
	query := `SELECT * FROM tokens ORDER BY symbol LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &tokens, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to get tokens: %w", err)
	}

	return tokens, total, nil
}

// GetAllAddresses returns every tracked token address
func (r *TokenRepo) GetAllAddresses(ctx context.Context) ([]string, error) {
	var addresses []string
	if err := r.db.SelectContext(ctx, &addresses, `SELECT address FROM tokens`); err != nil {
		return nil, fmt.Errorf("failed to get token addresses: %w", err)
	}
	return addresses, nil
}

// Count returns the total number of tokens
func (r *TokenRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM tokens`); err != nil {
		return 0, fmt.Errorf("failed to count tokens: %w", err)
	}
	return count, nil
}

// Insert creates a token if it does not already exist
func (r *TokenRepo) Insert(ctx context.Context, token *entities.Token) error {
	query := `
		INSERT INTO tokens (address, name, symbol, decimals, currency, total_supply, created_at_block, created_at_tx)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (address) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		token.Address,
		token.Name,
		token.Symbol,
		token.Decimals,
		token.Currency,
		token.TotalSupply,
		token.CreatedAtBlock,
		token.CreatedAtTx,
	)
	if err != nil {
		return fmt.Errorf("failed to insert token: %w", err)
	}

	return nil
}

// UpdateMetadata fills in name/symbol/currency for a placeholder token
func (r *TokenRepo) UpdateMetadata(ctx context.Context, address, name, symbol, currency string) error {
	query := `
		UPDATE tokens SET
			name = $2,
			symbol = $3,
			currency = $4,
			updated_at = NOW()
		WHERE address = $1
	`

	_, err := r.db.ExecContext(ctx, query, address, name, symbol, currency)
	if err != nil {
		return fmt.Errorf("failed to update token metadata: %w", err)
	}

	return nil
}
