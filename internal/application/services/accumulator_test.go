package services

import (
	"math/big"
	"testing"
	"time"

	"github.com/tempulse/tip20-indexer/internal/domain/entities"
	"github.com/tempulse/tip20-indexer/internal/testutil"
)

func newTestAccumulator() *Accumulator {
	return NewAccumulator(101, 200, entities.IndexedBlock{
		BlockNumber: 200,
		BlockHash:   "0xhead",
		ParentHash:  "0xparent",
	})
}

func TestAccumulator_MintThenTransfer(t *testing.T) {
	acc := newTestAccumulator()

	// Mint 100 to alice, then alice sends 40 to bob
	acc.Add(testutil.CreateTestEvent(
		testutil.EventWithKind(entities.EventMint),
		testutil.EventWithFrom(testutil.ZeroAddress),
		testutil.EventWithTo(testutil.AliceAddress),
		testutil.EventWithAmount(100),
	))
	acc.Add(testutil.CreateTestEvent(
		testutil.EventWithFrom(testutil.AliceAddress),
		testutil.EventWithTo(testutil.BobAddress),
		testutil.EventWithAmount(40),
		testutil.EventWithLogIndex(1),
	))

	batch := acc.Batch()

	if len(batch.Transfers) != 2 {
		t.Fatalf("expected 2 transfers, got %d", len(batch.Transfers))
	}

	aliceKey := entities.BalanceKey{Address: testutil.AliceAddress, TokenAddress: testutil.AlphaTokenAddress}
	bobKey := entities.BalanceKey{Address: testutil.BobAddress, TokenAddress: testutil.AlphaTokenAddress}

	if got := batch.BalanceDeltas[aliceKey].Delta.Int64(); got != 60 {
		t.Errorf("expected alice delta 60, got %d", got)
	}
	if got := batch.BalanceDeltas[bobKey].Delta.Int64(); got != 40 {
		t.Errorf("expected bob delta 40, got %d", got)
	}
	if got := batch.SupplyDeltas[testutil.AlphaTokenAddress].Int64(); got != 100 {
		t.Errorf("expected supply delta 100, got %d", got)
	}
}

func TestAccumulator_BurnReducesSupply(t *testing.T) {
	acc := newTestAccumulator()

	acc.Add(testutil.CreateTestEvent(
		testutil.EventWithKind(entities.EventBurn),
		testutil.EventWithFrom(testutil.AliceAddress),
		testutil.EventWithTo(testutil.ZeroAddress),
		testutil.EventWithAmount(30),
	))

	batch := acc.Batch()

	aliceKey := entities.BalanceKey{Address: testutil.AliceAddress, TokenAddress: testutil.AlphaTokenAddress}
	if got := batch.BalanceDeltas[aliceKey].Delta.Int64(); got != -30 {
		t.Errorf("expected alice delta -30, got %d", got)
	}
	if got := batch.SupplyDeltas[testutil.AlphaTokenAddress].Int64(); got != -30 {
		t.Errorf("expected supply delta -30, got %d", got)
	}

	// The zero address never accumulates a balance
	zeroKey := entities.BalanceKey{Address: testutil.ZeroAddress, TokenAddress: testutil.AlphaTokenAddress}
	if _, ok := batch.BalanceDeltas[zeroKey]; ok {
		t.Error("expected no balance delta for the zero address")
	}
}

// applyClamped mirrors the store's write arithmetic: deltas add in NUMERIC
// space and negative results floor at zero.
func applyClamped(current string, delta *big.Int) string {
	value, _ := new(big.Int).SetString(current, 10)
	value.Add(value, delta)
	if value.Sign() < 0 {
		value.SetInt64(0)
	}
	return value.String()
}

func TestAccumulator_BurnBeyondBalanceClampsToZero(t *testing.T) {
	acc := newTestAccumulator()

	// Alice holds 60 and total supply is 60; a burn of 1000 must land both
	// at "0", never negative.
	acc.Add(testutil.CreateTestEvent(
		testutil.EventWithKind(entities.EventBurn),
		testutil.EventWithFrom(testutil.AliceAddress),
		testutil.EventWithTo(testutil.ZeroAddress),
		testutil.EventWithAmount(1000),
	))

	batch := acc.Batch()

	aliceKey := entities.BalanceKey{Address: testutil.AliceAddress, TokenAddress: testutil.AlphaTokenAddress}
	if got := batch.BalanceDeltas[aliceKey].Delta.Int64(); got != -1000 {
		t.Fatalf("expected alice delta -1000, got %d", got)
	}

	if got := applyClamped("60", batch.BalanceDeltas[aliceKey].Delta); got != "0" {
		t.Errorf("expected balance clamped to 0, got %s", got)
	}
	if got := applyClamped("60", batch.SupplyDeltas[testutil.AlphaTokenAddress]); got != "0" {
		t.Errorf("expected supply clamped to 0, got %s", got)
	}
}

func TestAccumulator_StatsBuckets(t *testing.T) {
	acc := newTestAccumulator()

	// Two transfers in the same hour, one mint in the next
	acc.Add(testutil.CreateTestEvent(
		testutil.EventWithAmount(10),
		testutil.EventWithBlockTime(testutil.TestHour.Add(5*time.Minute)),
	))
	acc.Add(testutil.CreateTestEvent(
		testutil.EventWithAmount(15),
		testutil.EventWithLogIndex(1),
		testutil.EventWithBlockTime(testutil.TestHour.Add(50*time.Minute)),
	))
	acc.Add(testutil.CreateTestEvent(
		testutil.EventWithKind(entities.EventMint),
		testutil.EventWithFrom(testutil.ZeroAddress),
		testutil.EventWithAmount(100),
		testutil.EventWithLogIndex(2),
		testutil.EventWithBlockTime(testutil.TestHour.Add(70*time.Minute)),
	))

	batch := acc.Batch()

	if len(batch.StatsDeltas) != 2 {
		t.Fatalf("expected 2 stat buckets, got %d", len(batch.StatsDeltas))
	}

	first := batch.StatsDeltas[entities.StatsKey{TokenAddress: testutil.AlphaTokenAddress, Hour: testutil.TestHour}]
	if first == nil {
		t.Fatal("expected bucket at the test hour")
	}
	if first.TransferCount != 2 {
		t.Errorf("expected 2 transfers in first bucket, got %d", first.TransferCount)
	}
	if first.TransferVolume.Int64() != 25 {
		t.Errorf("expected transfer volume 25, got %s", first.TransferVolume)
	}
	if first.UniqueSenders != 2 || first.UniqueReceivers != 2 {
		t.Errorf("expected 2 senders and 2 receivers, got %d/%d", first.UniqueSenders, first.UniqueReceivers)
	}

	second := batch.StatsDeltas[entities.StatsKey{TokenAddress: testutil.AlphaTokenAddress, Hour: testutil.TestHour.Add(time.Hour)}]
	if second == nil {
		t.Fatal("expected bucket at the next hour")
	}
	if second.MintCount != 1 || second.MintVolume.Int64() != 100 {
		t.Errorf("expected 1 mint of 100, got %d/%s", second.MintCount, second.MintVolume)
	}
	// Mint sender is the zero address and does not count
	if second.UniqueSenders != 0 {
		t.Errorf("expected 0 senders for mint bucket, got %d", second.UniqueSenders)
	}
	if second.UniqueReceivers != 1 {
		t.Errorf("expected 1 receiver for mint bucket, got %d", second.UniqueReceivers)
	}
}

func TestAccumulator_MemoStoredAsTransfer(t *testing.T) {
	acc := newTestAccumulator()

	acc.Add(testutil.CreateTestEvent(
		testutil.EventWithMemo("0x6d656d6f0000000000000000000000000000000000000000000000000000000"),
		testutil.EventWithAmount(5),
	))

	batch := acc.Batch()

	if len(batch.Transfers) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(batch.Transfers))
	}
	row := batch.Transfers[0]
	if row.EventType != entities.EventTypeTransfer {
		t.Errorf("expected event type transfer, got %s", row.EventType)
	}
	if row.Memo == nil {
		t.Fatal("expected memo to be stored")
	}

	// Memo variant still moves balances like a plain transfer
	key := entities.StatsKey{TokenAddress: testutil.AlphaTokenAddress, Hour: testutil.TestHour}
	if batch.StatsDeltas[key].TransferCount != 1 {
		t.Errorf("expected memo transfer counted as transfer")
	}
}

func TestAccumulator_SelfTransferNetsToZero(t *testing.T) {
	acc := newTestAccumulator()

	acc.Add(testutil.CreateTestEvent(
		testutil.EventWithFrom(testutil.AliceAddress),
		testutil.EventWithTo(testutil.AliceAddress),
		testutil.EventWithAmount(50),
	))

	batch := acc.Batch()

	aliceKey := entities.BalanceKey{Address: testutil.AliceAddress, TokenAddress: testutil.AlphaTokenAddress}
	if got := batch.BalanceDeltas[aliceKey].Delta.Sign(); got != 0 {
		t.Errorf("expected zero net delta for self transfer, got sign %d", got)
	}
	if len(batch.SupplyDeltas) != 0 {
		t.Error("expected no supply delta for plain transfer")
	}
}

func TestAccumulator_UpdatedAtBlockTracksNewest(t *testing.T) {
	acc := newTestAccumulator()

	acc.Add(testutil.CreateTestEvent(
		testutil.EventWithAmount(10),
		testutil.EventWithBlock(105),
	))
	acc.Add(testutil.CreateTestEvent(
		testutil.EventWithAmount(10),
		testutil.EventWithBlock(150),
		testutil.EventWithLogIndex(1),
	))

	batch := acc.Batch()

	aliceKey := entities.BalanceKey{Address: testutil.AliceAddress, TokenAddress: testutil.AlphaTokenAddress}
	if got := batch.BalanceDeltas[aliceKey].UpdatedAtBlock; got != 150 {
		t.Errorf("expected updated_at_block 150, got %d", got)
	}
}

func TestAccumulator_EmptyBatch(t *testing.T) {
	acc := newTestAccumulator()
	batch := acc.Batch()

	if !batch.Empty() {
		t.Error("expected empty batch")
	}
	if batch.Head.BlockNumber != 200 {
		t.Errorf("expected head block 200, got %d", batch.Head.BlockNumber)
	}
}
