package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tempulse/tip20-indexer/internal/domain/repositories"
)

// Ensure AccountRepo implements AccountRepository
var _ repositories.AccountRepository = (*AccountRepo)(nil)

// AccountRepo reads the materialized balance table
type AccountRepo struct {
	db *sqlx.DB
}

// NewAccountRepo creates a new account repository
func NewAccountRepo(db *sqlx.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// GetTopHolders returns holders with positive balances, largest first.
// Balances are text columns, so ordering casts through NUMERIC.
func (r *AccountRepo) GetTopHolders(ctx context.Context, tokenAddress string, limit int) ([]repositories.HolderBalance, error) {
	query := `
		SELECT address, balance
		FROM accounts
		WHERE token_address = $1 AND CAST(balance AS NUMERIC) > 0
		ORDER BY CAST(balance AS NUMERIC) DESC, address ASC
		LIMIT $2
	`

	rows, err := r.db.QueryxContext(ctx, query, tokenAddress, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top holders: %w", err)
	}
	defer rows.Close()

	var holders []repositories.HolderBalance
	rank := 1
	for rows.Next() {
		var h repositories.HolderBalance
		if err := rows.Scan(&h.Address, &h.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan holder: %w", err)
		}
		h.Rank = rank
		rank++
		holders = append(holders, h)
	}

	return holders, rows.Err()
}

// GetHolderBalance returns the balance and rank for one holder, or nil when
// the holder has no row for the token
func (r *AccountRepo) GetHolderBalance(ctx context.Context, tokenAddress, holderAddress string) (*repositories.HolderBalance, error) {
	query := `
		SELECT address, balance, rank FROM (
			SELECT address, balance,
				   RANK() OVER (ORDER BY CAST(balance AS NUMERIC) DESC, address ASC) AS rank
			FROM accounts
			WHERE token_address = $1 AND CAST(balance AS NUMERIC) > 0
		) ranked
		WHERE address = $2
	`

	var h repositories.HolderBalance
	if err := r.db.QueryRowxContext(ctx, query, tokenAddress, holderAddress).
		Scan(&h.Address, &h.Balance, &h.Rank); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get holder balance: %w", err)
	}

	return &h, nil
}

// GetHolderCount returns the number of addresses with a positive balance
func (r *AccountRepo) GetHolderCount(ctx context.Context, tokenAddress string) (int64, error) {
	var count int64
	query := `
		SELECT COUNT(*) FROM accounts
		WHERE token_address = $1 AND CAST(balance AS NUMERIC) > 0
	`

	if err := r.db.GetContext(ctx, &count, query, tokenAddress); err != nil {
		return 0, fmt.Errorf("failed to count holders: %w", err)
	}

	return count, nil
}

// GetWalletHoldings returns every positive token position for a wallet,
// joined with token metadata, largest position first
func (r *AccountRepo) GetWalletHoldings(ctx context.Context, walletAddress string) ([]repositories.TokenHolding, error) {
	query := `
		SELECT a.token_address, t.symbol, t.name, t.decimals, t.currency, a.balance
		FROM accounts a
		JOIN tokens t ON t.address = a.token_address
		WHERE a.address = $1 AND CAST(a.balance AS NUMERIC) > 0
		ORDER BY CAST(a.balance AS NUMERIC) DESC
	`

	var holdings []repositories.TokenHolding
	if err := r.db.SelectContext(ctx, &holdings, query, walletAddress); err != nil {
		return nil, fmt.Errorf("failed to get wallet holdings: %w", err)
	}

	return holdings, nil
}
