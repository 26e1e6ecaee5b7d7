package entities

import (
	"time"
)

// Token represents a tracked TIP-20 stablecoin.
//
// A token row is created either from a factory TokenCreated event (full
// metadata) or lazily when the first event from a structurally valid but
// undiscovered address is observed (empty name/symbol, enriched later).
type Token struct {
	Address        string    `db:"address"`
	Name           string    `db:"name"`
	Symbol         string    `db:"symbol"`
	Decimals       int16     `db:"decimals"`
	Currency       string    `db:"currency"`
	TotalSupply    string    `db:"total_supply"`
	CreatedAtBlock int64     `db:"created_at_block"`
	CreatedAtTx    string    `db:"created_at_tx"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// TokenCreated is a decoded TIP20Factory TokenCreated event.
type TokenCreated struct {
	TokenAddress    string
	Name            string
	Symbol          string
	Currency        string
	QuoteToken      string
	Admin           string
	Salt            string
	BlockNumber     int64
	TransactionHash string
}
