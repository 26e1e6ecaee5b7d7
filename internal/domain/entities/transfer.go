package entities

import (
	"time"
)

// Event types stored on transfer rows.
const (
	EventTypeTransfer = "transfer"
	EventTypeMint     = "mint"
	EventTypeBurn     = "burn"
)

// Transfer is an immutable record of one token movement (transfer, mint or
// burn). The zero address denotes the mint source / burn destination.
// (transaction_hash, log_index) is the natural key; re-processing a range
// must not duplicate rows.
type Transfer struct {
	ID              int64     `db:"id"`
	TokenAddress    string    `db:"token_address"`
	FromAddress     string    `db:"from_address"`
	ToAddress       string    `db:"to_address"`
	Amount          string    `db:"amount"`
	Memo            *string   `db:"memo"`
	EventType       string    `db:"event_type"`
	TransactionHash string    `db:"transaction_hash"`
	BlockNumber     int64     `db:"block_number"`
	LogIndex        int       `db:"log_index"`
	CreatedAt       time.Time `db:"created_at"`
}

// TransferFilter contains filters for querying transfers
type TransferFilter struct {
	TokenAddress *string
	Address      *string // matches either from or to
	EventType    *string
	FromBlock    *int64
	ToBlock      *int64
	Limit        int
	Offset       int
}

// DefaultTransferFilter returns a filter with sensible defaults
func DefaultTransferFilter() TransferFilter {
	return TransferFilter{
		Limit:  100,
		Offset: 0,
	}
}
