package testutil

import (
	"math/big"
	"time"

	"github.com/tempulse/tip20-indexer/internal/domain/entities"
)

// Common test addresses. Token addresses carry the TIP-20 prefix.
const (
	AlphaTokenAddress = "0x20c0000000000000000000000000000000000001"
	BetaTokenAddress  = "0x20c0000000000000000000000000000000000002"
	AliceAddress      = "0x1111111111111111111111111111111111111111"
	BobAddress        = "0x2222222222222222222222222222222222222222"
	CharlieAddress    = "0x3333333333333333333333333333333333333333"
	ZeroAddress       = "0x0000000000000000000000000000000000000000"
)

// TestHour is a fixed bucket boundary used across stats tests
var TestHour = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// CreateTestToken creates a test token with default values
func CreateTestToken(opts ...TokenOption) *entities.Token {
	t := &entities.Token{
		Address:        AlphaTokenAddress,
		Name:           "Alpha Dollar",
		Symbol:         "AUSD",
		Decimals:       6,
		Currency:       "USD",
		TotalSupply:    "0",
		CreatedAtBlock: 100,
		CreatedAtTx:    "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

type TokenOption func(*entities.Token)

func TokenWithAddress(addr string) TokenOption {
	return func(t *entities.Token) {
		t.Address = addr
	}
}

func TokenWithSymbol(symbol string) TokenOption {
	return func(t *entities.Token) {
		t.Symbol = symbol
	}
}

func TokenWithName(name string) TokenOption {
	return func(t *entities.Token) {
		t.Name = name
	}
}

func TokenWithSupply(supply string) TokenOption {
	return func(t *entities.Token) {
		t.TotalSupply = supply
	}
}

// CreateTestEvent creates a decoded token event with default values
func CreateTestEvent(opts ...EventOption) *entities.Event {
	e := &entities.Event{
		Kind:            entities.EventTransfer,
		TokenAddress:    AlphaTokenAddress,
		From:            AliceAddress,
		To:              BobAddress,
		Amount:          big.NewInt(1_000_000),
		BlockNumber:     101,
		TransactionHash: "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		LogIndex:        0,
		BlockTime:       TestHour.Add(10 * time.Minute),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

type EventOption func(*entities.Event)

func EventWithKind(kind entities.EventKind) EventOption {
	return func(e *entities.Event) {
		e.Kind = kind
	}
}

func EventWithToken(addr string) EventOption {
	return func(e *entities.Event) {
		e.TokenAddress = addr
	}
}

func EventWithFrom(addr string) EventOption {
	return func(e *entities.Event) {
		e.From = addr
	}
}

func EventWithTo(addr string) EventOption {
	return func(e *entities.Event) {
		e.To = addr
	}
}

func EventWithAmount(amount int64) EventOption {
	return func(e *entities.Event) {
		e.Amount = big.NewInt(amount)
	}
}

func EventWithBlock(number int64) EventOption {
	return func(e *entities.Event) {
		e.BlockNumber = number
	}
}

func EventWithLogIndex(idx int) EventOption {
	return func(e *entities.Event) {
		e.LogIndex = idx
	}
}

func EventWithBlockTime(ts time.Time) EventOption {
	return func(e *entities.Event) {
		e.BlockTime = ts
	}
}

func EventWithMemo(memo string) EventOption {
	return func(e *entities.Event) {
		e.Kind = entities.EventTransferWithMemo
		e.Memo = memo
	}
}

// CreateTestTransfer creates a stored transfer row with default values
func CreateTestTransfer(opts ...TransferOption) entities.Transfer {
	t := entities.Transfer{
		ID:              1,
		TokenAddress:    AlphaTokenAddress,
		FromAddress:     AliceAddress,
		ToAddress:       BobAddress,
		Amount:          "1000000",
		EventType:       entities.EventTypeTransfer,
		TransactionHash: "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		BlockNumber:     101,
		LogIndex:        0,
		CreatedAt:       TestHour.Add(10 * time.Minute),
	}

	for _, opt := range opts {
		opt(&t)
	}

	return t
}

type TransferOption func(*entities.Transfer)

func TransferWithID(id int64) TransferOption {
	return func(t *entities.Transfer) {
		t.ID = id
	}
}

func TransferWithToken(addr string) TransferOption {
	return func(t *entities.Transfer) {
		t.TokenAddress = addr
	}
}

func TransferWithEventType(eventType string) TransferOption {
	return func(t *entities.Transfer) {
		t.EventType = eventType
	}
}

func TransferWithBlock(number int64) TransferOption {
	return func(t *entities.Transfer) {
		t.BlockNumber = number
	}
}

func TransferWithLogIndex(idx int) TransferOption {
	return func(t *entities.Transfer) {
		t.LogIndex = idx
	}
}

// PointerTo returns a pointer to the given value
func PointerTo[T any](v T) *T {
	return &v
}
