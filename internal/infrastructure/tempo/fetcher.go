package tempo

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tempulse/tip20-indexer/internal/config"
)

// HeaderInfo is the subset of a block header the indexer consumes.
type HeaderInfo struct {
	Number     int64
	Hash       string
	ParentHash string
	Time       time.Time
}

// RangeLogs is everything fetched for one block range: factory creation
// logs, prefix-valid token event logs, the timestamps of every block that
// carries a log, and the header of the range's last block.
type RangeLogs struct {
	FactoryLogs []types.Log
	TokenLogs   []types.Log
	Timestamps  map[uint64]time.Time
	Head        HeaderInfo
}

// Fetcher pulls logs and block metadata for the batch indexer
type Fetcher struct {
	client *Client
	config config.IndexerConfig
	logger *zap.Logger
}

// NewFetcher creates a new fetcher
func NewFetcher(client *Client, cfg config.IndexerConfig, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client: client,
		config: cfg,
		logger: logger,
	}
}

// CurrentHeight returns the live chain head
func (f *Fetcher) CurrentHeight(ctx context.Context) (int64, error) {
	return f.client.CurrentHeight(ctx)
}

// HeaderInfo returns hash, parent hash and timestamp for one block
func (f *Fetcher) HeaderInfo(ctx context.Context, number int64) (*HeaderInfo, error) {
	header, err := f.client.HeaderByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return headerInfo(header), nil
}

// FetchRange runs the two range queries (factory creations and the
// network-wide transfer-family topic) and resolves block timestamps for
// every block that produced a log. The two filter queries are independent
// reads and run concurrently. Token logs from contracts outside the TIP-20
// address prefix are discarded here, before any further work is spent on
// them.
func (f *Fetcher) FetchRange(ctx context.Context, fromBlock, toBlock int64) (*RangeLogs, error) {
	var factoryLogs, tokenLogs []types.Log

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logs, err := f.client.FilterLogs(gCtx, FactoryFilterQuery(fromBlock, toBlock))
		if err != nil {
			return fmt.Errorf("failed to fetch factory logs: %w", err)
		}
		factoryLogs = logs
		return nil
	})
	g.Go(func() error {
		logs, err := f.client.FilterLogs(gCtx, TokenEventFilterQuery(fromBlock, toBlock))
		if err != nil {
			return fmt.Errorf("failed to fetch token logs: %w", err)
		}
		tokenLogs = filterByPrefix(logs)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Unique blocks that need a timestamp, plus the range head for the
	// block hash record.
	blockNumbers := make(map[uint64]struct{})
	for _, lg := range factoryLogs {
		blockNumbers[lg.BlockNumber] = struct{}{}
	}
	for _, lg := range tokenLogs {
		blockNumbers[lg.BlockNumber] = struct{}{}
	}

	timestamps, err := f.fetchBlockTimestamps(ctx, blockNumbers)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch block timestamps: %w", err)
	}

	head, err := f.client.HeaderByNumber(ctx, toBlock)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch head block %d: %w", toBlock, err)
	}

	f.logger.Debug("Fetched range",
		zap.Int64("from_block", fromBlock),
		zap.Int64("to_block", toBlock),
		zap.Int("factory_logs", len(factoryLogs)),
		zap.Int("token_logs", len(tokenLogs)),
	)

	return &RangeLogs{
		FactoryLogs: factoryLogs,
		TokenLogs:   tokenLogs,
		Timestamps:  timestamps,
		Head:        *headerInfo(head),
	}, nil
}

// fetchBlockTimestamps resolves timestamps for multiple blocks concurrently
func (f *Fetcher) fetchBlockTimestamps(ctx context.Context, blockNumbers map[uint64]struct{}) (map[uint64]time.Time, error) {
	timestamps := make(map[uint64]time.Time, len(blockNumbers))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(f.config.TimestampWorkers)

	for blockNum := range blockNumbers {
		blockNum := blockNum
		g.Go(func() error {
			header, err := f.client.HeaderByNumber(gCtx, int64(blockNum))
			if err != nil {
				return fmt.Errorf("failed to get header for block %d: %w", blockNum, err)
			}

			mu.Lock()
			timestamps[blockNum] = time.Unix(int64(header.Time), 0).UTC()
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return timestamps, nil
}

func filterByPrefix(logs []types.Log) []types.Log {
	kept := logs[:0]
	for _, lg := range logs {
		if IsTokenAddress(lg.Address) {
			kept = append(kept, lg)
		}
	}
	return kept
}

func headerInfo(h *types.Header) *HeaderInfo {
	return &HeaderInfo{
		Number:     h.Number.Int64(),
		Hash:       strings.ToLower(h.Hash().Hex()),
		ParentHash: strings.ToLower(h.ParentHash.Hex()),
		Time:       time.Unix(int64(h.Time), 0).UTC(),
	}
}
