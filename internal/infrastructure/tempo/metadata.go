package tempo

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// TokenMetadata holds the TIP-20 view-function metadata for a token.
type TokenMetadata struct {
	Name     string
	Symbol   string
	Currency string
}

// MetadataFetcher enriches lazily discovered tokens via eth_call. Tokens
// registered from a factory event never need it; placeholder rows do.
type MetadataFetcher struct {
	client *Client
	logger *zap.Logger
}

// NewMetadataFetcher creates a new metadata fetcher
func NewMetadataFetcher(client *Client, logger *zap.Logger) *MetadataFetcher {
	return &MetadataFetcher{
		client: client,
		logger: logger,
	}
}

// TIP-20 view function selectors (first 4 bytes of the keccak256 hash).
var (
	nameSelector     = crypto.Keccak256([]byte("name()"))[:4]
	symbolSelector   = crypto.Keccak256([]byte("symbol()"))[:4]
	currencySelector = crypto.Keccak256([]byte("currency()"))[:4]
)

// stringResult decodes a single ABI-encoded string return value.
var stringResult = mustNewType("string")

// FetchMetadata calls name(), symbol() and currency() on a token contract.
// Individual call failures fall back to empty strings; the caller decides
// whether a partially enriched token is worth updating.
func (f *MetadataFetcher) FetchMetadata(ctx context.Context, tokenAddress string) (*TokenMetadata, error) {
	addr := common.HexToAddress(tokenAddress)

	meta := &TokenMetadata{}
	for _, call := range []struct {
		selector []byte
		field    *string
		label    string
	}{
		{nameSelector, &meta.Name, "name"},
		{symbolSelector, &meta.Symbol, "symbol"},
		{currencySelector, &meta.Currency, "currency"},
	} {
		value, err := f.callString(ctx, addr, call.selector)
		if err != nil {
			f.logger.Warn("Failed to fetch token metadata field",
				zap.String("token", tokenAddress),
				zap.String("field", call.label),
				zap.Error(err),
			)
			continue
		}
		*call.field = value
	}

	if meta.Name == "" && meta.Symbol == "" && meta.Currency == "" {
		return nil, fmt.Errorf("no metadata readable for %s", tokenAddress)
	}

	return meta, nil
}

func (f *MetadataFetcher) callString(ctx context.Context, addr common.Address, selector []byte) (string, error) {
	result, err := f.client.CallContract(ctx, addr, selector)
	if err != nil {
		return "", err
	}

	values, err := (abi.Arguments{{Type: stringResult}}).Unpack(result)
	if err != nil {
		return "", fmt.Errorf("failed to decode string return: %w", err)
	}
	if len(values) != 1 {
		return "", fmt.Errorf("unexpected return arity %d", len(values))
	}

	s, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("unexpected return type %T", values[0])
	}
	return s, nil
}
