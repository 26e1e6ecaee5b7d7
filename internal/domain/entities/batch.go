package entities

import (
	"math/big"
	"time"
)

// BalanceKey identifies one (holder, token) balance.
type BalanceKey struct {
	Address      string
	TokenAddress string
}

// BalanceDelta is a signed balance change accumulated across one batch.
type BalanceDelta struct {
	Delta          *big.Int
	UpdatedAtBlock int64
}

// StatsKey identifies one hourly aggregate bucket.
type StatsKey struct {
	TokenAddress string
	Hour         time.Time
}

// StatsDelta is the increment applied to one hourly_stats bucket.
type StatsDelta struct {
	TransferCount   int64
	TransferVolume  *big.Int
	MintCount       int64
	MintVolume      *big.Int
	BurnCount       int64
	BurnVolume      *big.Int
	UniqueSenders   int64
	UniqueReceivers int64
}

// Batch is the complete set of derived-state changes computed from one block
// range. It is applied atomically: a reader never observes a partially
// committed batch, and the cursor only advances inside the same transaction.
type Batch struct {
	FromBlock int64
	ToBlock   int64

	// Head is the hash/parent-hash record for the last block of the range.
	Head IndexedBlock

	Transfers     []Transfer
	BalanceDeltas map[BalanceKey]*BalanceDelta
	SupplyDeltas  map[string]*big.Int
	StatsDeltas   map[StatsKey]*StatsDelta
}

// Empty reports whether the batch carries no decoded events. The head block
// and cursor are still committed for empty batches so reorg detection keeps
// a contiguous hash chain.
func (b *Batch) Empty() bool {
	return len(b.Transfers) == 0
}
