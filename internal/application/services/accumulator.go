package services

import (
	"math/big"
	"time"

	"github.com/tempulse/tip20-indexer/internal/domain/entities"
	"github.com/tempulse/tip20-indexer/internal/infrastructure/tempo"
)

// Accumulator folds decoded events into one Batch of derived-state deltas.
// All arithmetic is exact big.Int; nothing is written until the batch is
// handed to the repository in one transaction.
type Accumulator struct {
	batch *entities.Batch
}

// NewAccumulator starts an empty batch for the given block range
func NewAccumulator(fromBlock, toBlock int64, head entities.IndexedBlock) *Accumulator {
	return &Accumulator{
		batch: &entities.Batch{
			FromBlock:     fromBlock,
			ToBlock:       toBlock,
			Head:          head,
			BalanceDeltas: make(map[entities.BalanceKey]*entities.BalanceDelta),
			SupplyDeltas:  make(map[string]*big.Int),
			StatsDeltas:   make(map[entities.StatsKey]*entities.StatsDelta),
		},
	}
}

// Add folds one decoded event into the batch
func (a *Accumulator) Add(event *entities.Event) {
	a.addTransferRow(event)

	switch event.Kind {
	case entities.EventMint:
		a.addBalance(event.To, event.TokenAddress, event.Amount, event.BlockNumber)
		a.addSupply(event.TokenAddress, event.Amount)
	case entities.EventBurn:
		a.subBalance(event.From, event.TokenAddress, event.Amount, event.BlockNumber)
		a.subSupply(event.TokenAddress, event.Amount)
	case entities.EventTransfer, entities.EventTransferWithMemo:
		a.subBalance(event.From, event.TokenAddress, event.Amount, event.BlockNumber)
		a.addBalance(event.To, event.TokenAddress, event.Amount, event.BlockNumber)
	}

	a.addStats(event)
}

// Batch returns the accumulated batch
func (a *Accumulator) Batch() *entities.Batch {
	return a.batch
}

func (a *Accumulator) addTransferRow(event *entities.Event) {
	var memo *string
	if event.Kind == entities.EventTransferWithMemo {
		m := event.Memo
		memo = &m
	}

	createdAt := event.BlockTime
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	a.batch.Transfers = append(a.batch.Transfers, entities.Transfer{
		TokenAddress:    event.TokenAddress,
		FromAddress:     event.From,
		ToAddress:       event.To,
		Amount:          event.Amount.String(),
		Memo:            memo,
		EventType:       event.Kind.String(),
		TransactionHash: event.TransactionHash,
		BlockNumber:     event.BlockNumber,
		LogIndex:        event.LogIndex,
		CreatedAt:       createdAt,
	})
}

// addBalance credits an address. The zero address never gets a balance row.
func (a *Accumulator) addBalance(address, token string, amount *big.Int, block int64) {
	if address == tempo.ZeroAddressHex {
		return
	}
	delta := a.balanceDelta(address, token, block)
	delta.Delta.Add(delta.Delta, amount)
}

func (a *Accumulator) subBalance(address, token string, amount *big.Int, block int64) {
	if address == tempo.ZeroAddressHex {
		return
	}
	delta := a.balanceDelta(address, token, block)
	delta.Delta.Sub(delta.Delta, amount)
}

func (a *Accumulator) balanceDelta(address, token string, block int64) *entities.BalanceDelta {
	key := entities.BalanceKey{Address: address, TokenAddress: token}
	delta, ok := a.batch.BalanceDeltas[key]
	if !ok {
		delta = &entities.BalanceDelta{Delta: new(big.Int)}
		a.batch.BalanceDeltas[key] = delta
	}
	if block > delta.UpdatedAtBlock {
		delta.UpdatedAtBlock = block
	}
	return delta
}

func (a *Accumulator) addSupply(token string, amount *big.Int) {
	delta := a.supplyDelta(token)
	delta.Add(delta, amount)
}

func (a *Accumulator) subSupply(token string, amount *big.Int) {
	delta := a.supplyDelta(token)
	delta.Sub(delta, amount)
}

func (a *Accumulator) supplyDelta(token string) *big.Int {
	delta, ok := a.batch.SupplyDeltas[token]
	if !ok {
		delta = new(big.Int)
		a.batch.SupplyDeltas[token] = delta
	}
	return delta
}

func (a *Accumulator) addStats(event *entities.Event) {
	hour := event.BlockTime
	if hour.IsZero() {
		hour = time.Now().UTC()
	}
	hour = hour.Truncate(time.Hour)

	key := entities.StatsKey{TokenAddress: event.TokenAddress, Hour: hour}
	delta, ok := a.batch.StatsDeltas[key]
	if !ok {
		delta = &entities.StatsDelta{
			TransferVolume: new(big.Int),
			MintVolume:     new(big.Int),
			BurnVolume:     new(big.Int),
		}
		a.batch.StatsDeltas[key] = delta
	}

	switch event.Kind {
	case entities.EventMint:
		delta.MintCount++
		delta.MintVolume.Add(delta.MintVolume, event.Amount)
	case entities.EventBurn:
		delta.BurnCount++
		delta.BurnVolume.Add(delta.BurnVolume, event.Amount)
	case entities.EventTransfer, entities.EventTransferWithMemo:
		delta.TransferCount++
		delta.TransferVolume.Add(delta.TransferVolume, event.Amount)
	}

	// Sender/receiver counters are per-event increments, not distinct
	// addresses; the zero address is never counted.
	if event.From != tempo.ZeroAddressHex {
		delta.UniqueSenders++
	}
	if event.To != tempo.ZeroAddressHex {
		delta.UniqueReceivers++
	}
}
