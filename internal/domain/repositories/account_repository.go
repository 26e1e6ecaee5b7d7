package repositories

import (
	"context"
	"time"

	"github.com/tempulse/tip20-indexer/internal/domain/entities"
)

// HolderBalance is one holder's materialized balance with its rank among the
// token's holders.
type HolderBalance struct {
	Address string
	Balance string
	Rank    int
}

// TokenHolding is one token position within a wallet's portfolio.
type TokenHolding struct {
	TokenAddress string `db:"token_address"`
	Symbol       string `db:"symbol"`
	Name         string `db:"name"`
	Decimals     int16  `db:"decimals"`
	Currency     string `db:"currency"`
	Balance      string `db:"balance"`
}

// AccountRepository reads the materialized balance table.
type AccountRepository interface {
	// GetTopHolders returns holders with positive balances, largest first
	GetTopHolders(ctx context.Context, tokenAddress string, limit int) ([]HolderBalance, error)

	// GetHolderBalance returns the balance and rank for one holder
	GetHolderBalance(ctx context.Context, tokenAddress, holderAddress string) (*HolderBalance, error)

	// GetHolderCount returns the number of addresses with a positive balance
	GetHolderCount(ctx context.Context, tokenAddress string) (int64, error)

	// GetWalletHoldings returns every positive token position for a wallet
	GetWalletHoldings(ctx context.Context, walletAddress string) ([]TokenHolding, error)
}

// TokenWindowStats aggregates hourly buckets over a time window.
type TokenWindowStats struct {
	TransferCount  int64  `db:"transfer_count"`
	TransferVolume string `db:"transfer_volume"`
	MintCount      int64  `db:"mint_count"`
	MintVolume     string `db:"mint_volume"`
	BurnCount      int64  `db:"burn_count"`
	BurnVolume     string `db:"burn_volume"`
}

// TVLEntry is one token's share of the total value locked listing.
type TVLEntry struct {
	TokenAddress string `db:"address"`
	Symbol       string `db:"symbol"`
	Currency     string `db:"currency"`
	TotalSupply  string `db:"total_supply"`
}

// StatsRepository reads the hourly aggregates and supply-derived stats.
type StatsRepository interface {
	// GetHourly returns raw hourly buckets for a token, newest first
	GetHourly(ctx context.Context, tokenAddress string, limit int) ([]entities.HourlyStats, error)

	// GetWindow aggregates buckets for a token since the given time
	GetWindow(ctx context.Context, tokenAddress string, since time.Time) (*TokenWindowStats, error)

	// GetTVL returns total supply per token, largest first
	GetTVL(ctx context.Context) ([]TVLEntry, error)
}
