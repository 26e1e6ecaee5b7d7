package entities

import (
	"math/big"
	"time"
)

// EventKind classifies a decoded TIP-20 log. The set is closed; the
// accumulator switches over it exhaustively.
type EventKind int

const (
	// EventTransfer is a plain movement between two non-zero addresses.
	EventTransfer EventKind = iota
	// EventMint is a Transfer whose sender is the zero address.
	EventMint
	// EventBurn is a Transfer whose recipient is the zero address.
	EventBurn
	// EventTransferWithMemo is the memo-carrying transfer variant.
	EventTransferWithMemo
)

// String returns the storage name for the kind (memo transfers are stored as
// plain transfers with the memo attached).
func (k EventKind) String() string {
	switch k {
	case EventMint:
		return EventTypeMint
	case EventBurn:
		return EventTypeBurn
	default:
		return EventTypeTransfer
	}
}

// Event is a decoded TIP-20 token event. It is a tagged union over one wire
// shape: Kind selects which fields are meaningful (Memo only for
// EventTransferWithMemo; From is the zero address for mints, To for burns).
type Event struct {
	Kind            EventKind
	TokenAddress    string
	From            string
	To              string
	Amount          *big.Int
	Memo            string // hex encoded bytes32, empty unless memo variant
	BlockNumber     int64
	TransactionHash string
	LogIndex        int
	BlockTime       time.Time // zero when the log carried no known timestamp
}
