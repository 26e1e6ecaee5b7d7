package tempo

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/tempulse/tip20-indexer/internal/config"
)

// Client wraps the Tempo RPC client with retry logic
type Client struct {
	client *ethclient.Client
	config config.TempoConfig
	logger *zap.Logger
}

// NewClient connects to a Tempo node
func NewClient(cfg config.TempoConfig, logger *zap.Logger) (*Client, error) {
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Tempo node: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	height, err := client.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query chain head: %w", err)
	}

	logger.Info("Connected to Tempo node",
		zap.String("rpc_url", cfg.RPCURL),
		zap.Uint64("head", height),
	)

	return &Client{
		client: client,
		config: cfg,
		logger: logger,
	}, nil
}

// Close closes the RPC connection
func (c *Client) Close() {
	c.client.Close()
}

// CurrentHeight returns the latest block number
func (c *Client) CurrentHeight(ctx context.Context) (int64, error) {
	var height uint64
	var err error

	for i := 0; i <= c.config.MaxRetries; i++ {
		height, err = c.client.BlockNumber(ctx)
		if err == nil {
			return int64(height), nil
		}

		c.logger.Warn("Failed to get chain height, retrying",
			zap.Int("attempt", i+1),
			zap.Error(err),
		)

		if i < c.config.MaxRetries {
			time.Sleep(c.config.RetryDelay)
		}
	}

	return 0, fmt.Errorf("failed to get chain height after %d retries: %w", c.config.MaxRetries, err)
}

// HeaderByNumber returns the block header at the given height
func (c *Client) HeaderByNumber(ctx context.Context, number int64) (*types.Header, error) {
	var header *types.Header
	var err error

	for i := 0; i <= c.config.MaxRetries; i++ {
		header, err = c.client.HeaderByNumber(ctx, big.NewInt(number))
		if err == nil {
			return header, nil
		}

		c.logger.Warn("Failed to get block header, retrying",
			zap.Int64("block_number", number),
			zap.Int("attempt", i+1),
			zap.Error(err),
		)

		if i < c.config.MaxRetries {
			time.Sleep(c.config.RetryDelay)
		}
	}

	return nil, fmt.Errorf("failed to get header %d after %d retries: %w", number, c.config.MaxRetries, err)
}

// FilterLogs retrieves logs matching the filter query
func (c *Client) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	var logs []types.Log
	var err error

	for i := 0; i <= c.config.MaxRetries; i++ {
		logs, err = c.client.FilterLogs(ctx, query)
		if err == nil {
			return logs, nil
		}

		c.logger.Warn("Failed to get logs, retrying",
			zap.Int("attempt", i+1),
			zap.Error(err),
		)

		if i < c.config.MaxRetries {
			time.Sleep(c.config.RetryDelay)
		}
	}

	return nil, fmt.Errorf("failed to get logs after %d retries: %w", c.config.MaxRetries, err)
}

// CallContract performs a read-only contract call against the latest state
func (c *Client) CallContract(ctx context.Context, addr common.Address, data []byte) ([]byte, error) {
	msg := ethereum.CallMsg{
		To:   &addr,
		Data: data,
	}
	return c.client.CallContract(ctx, msg, nil)
}

// FactoryFilterQuery selects TokenCreated events from the one fixed factory
// contract for an inclusive block range.
func FactoryFilterQuery(fromBlock, toBlock int64) ethereum.FilterQuery {
	return ethereum.FilterQuery{
		FromBlock: big.NewInt(fromBlock),
		ToBlock:   big.NewInt(toBlock),
		Addresses: []common.Address{FactoryAddress},
		Topics: [][]common.Hash{
			{TokenCreatedEventSig},
		},
	}
}

// TokenEventFilterQuery selects the transfer-family topic network-wide. The
// query deliberately carries no address list: filtering by address does not
// scale as the token population grows, so irrelevant contracts are discarded
// per log with IsTokenAddress instead.
func TokenEventFilterQuery(fromBlock, toBlock int64) ethereum.FilterQuery {
	return ethereum.FilterQuery{
		FromBlock: big.NewInt(fromBlock),
		ToBlock:   big.NewInt(toBlock),
		Topics: [][]common.Hash{
			{TransferEventSig, TransferWithMemoEventSig},
		},
	}
}
