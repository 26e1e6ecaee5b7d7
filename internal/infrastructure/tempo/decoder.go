package tempo

import (
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/tempulse/tip20-indexer/internal/domain/entities"
)

// DecodeTokenEvent classifies a raw log into one of the four TIP-20 event
// variants. A Transfer whose sender is the zero address is a Mint; one whose
// recipient is the zero address is a Burn. Logs that match neither the
// transfer shape nor the memo variant yield nil: unrelated contracts can
// share the watched topics, so an undecodable log is skipped, never an
// error.
func DecodeTokenEvent(log types.Log, blockTime time.Time) *entities.Event {
	if log.Removed || len(log.Topics) == 0 {
		return nil
	}

	switch log.Topics[0] {
	case TransferEventSig:
		// Transfer(address indexed from, address indexed to, uint256 amount)
		if len(log.Topics) != 3 || len(log.Data) != 32 {
			return nil
		}

		from := common.BytesToAddress(log.Topics[1].Bytes())
		to := common.BytesToAddress(log.Topics[2].Bytes())

		kind := entities.EventTransfer
		if from == ZeroAddress {
			kind = entities.EventMint
		} else if to == ZeroAddress {
			kind = entities.EventBurn
		}

		return &entities.Event{
			Kind:            kind,
			TokenAddress:    lowerHex(log.Address),
			From:            lowerHex(from),
			To:              lowerHex(to),
			Amount:          new(big.Int).SetBytes(log.Data),
			BlockNumber:     int64(log.BlockNumber),
			TransactionHash: log.TxHash.Hex(),
			LogIndex:        int(log.Index),
			BlockTime:       blockTime,
		}

	case TransferWithMemoEventSig:
		// TransferWithMemo(address indexed from, address indexed to,
		//                  uint256 amount, bytes32 indexed memo)
		if len(log.Topics) != 4 || len(log.Data) != 32 {
			return nil
		}

		return &entities.Event{
			Kind:            entities.EventTransferWithMemo,
			TokenAddress:    lowerHex(log.Address),
			From:            lowerHex(common.BytesToAddress(log.Topics[1].Bytes())),
			To:              lowerHex(common.BytesToAddress(log.Topics[2].Bytes())),
			Amount:          new(big.Int).SetBytes(log.Data),
			Memo:            log.Topics[3].Hex(),
			BlockNumber:     int64(log.BlockNumber),
			TransactionHash: log.TxHash.Hex(),
			LogIndex:        int(log.Index),
			BlockTime:       blockTime,
		}
	}

	return nil
}

// tokenCreatedArgs describes the non-indexed payload of
// TokenCreated(address indexed token, string name, string symbol,
//              string currency, address quoteToken, address admin, bytes32 salt).
var tokenCreatedArgs = abi.Arguments{
	{Name: "name", Type: mustNewType("string")},
	{Name: "symbol", Type: mustNewType("string")},
	{Name: "currency", Type: mustNewType("string")},
	{Name: "quoteToken", Type: mustNewType("address")},
	{Name: "admin", Type: mustNewType("address")},
	{Name: "salt", Type: mustNewType("bytes32")},
}

// DecodeTokenCreated decodes a TIP20Factory TokenCreated log. Returns nil on
// any shape mismatch; a malformed factory log is skipped like any other
// undecodable log.
func DecodeTokenCreated(log types.Log) *entities.TokenCreated {
	if log.Removed || len(log.Topics) != 2 || log.Topics[0] != TokenCreatedEventSig {
		return nil
	}

	values, err := tokenCreatedArgs.Unpack(log.Data)
	if err != nil || len(values) != 6 {
		return nil
	}

	name, ok1 := values[0].(string)
	symbol, ok2 := values[1].(string)
	currency, ok3 := values[2].(string)
	quoteToken, ok4 := values[3].(common.Address)
	admin, ok5 := values[4].(common.Address)
	salt, ok6 := values[5].([32]byte)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
		return nil
	}

	return &entities.TokenCreated{
		TokenAddress:    lowerHex(common.BytesToAddress(log.Topics[1].Bytes())),
		Name:            name,
		Symbol:          symbol,
		Currency:        currency,
		QuoteToken:      lowerHex(quoteToken),
		Admin:           lowerHex(admin),
		Salt:            common.Hash(salt).Hex(),
		BlockNumber:     int64(log.BlockNumber),
		TransactionHash: log.TxHash.Hex(),
	}
}

func lowerHex(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

func mustNewType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}
