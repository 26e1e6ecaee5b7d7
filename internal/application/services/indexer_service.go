package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tempulse/tip20-indexer/internal/config"
	"github.com/tempulse/tip20-indexer/internal/domain/entities"
	"github.com/tempulse/tip20-indexer/internal/domain/repositories"
	"github.com/tempulse/tip20-indexer/internal/infrastructure/tempo"
)

// ChainSource is the chain read surface the indexing loop depends on
type ChainSource interface {
	CurrentHeight(ctx context.Context) (int64, error)
	HeaderInfo(ctx context.Context, number int64) (*tempo.HeaderInfo, error)
	FetchRange(ctx context.Context, fromBlock, toBlock int64) (*tempo.RangeLogs, error)
}

// IndexerService drives the fetch-decode-commit loop. One iteration processes
// at most one batch of blocks; the durable cursor only moves inside the same
// transaction that persists the batch, so a crash at any point resumes
// cleanly.
type IndexerService struct {
	chain     ChainSource
	registry  *RegistryService
	batchRepo repositories.BatchRepository
	config    config.IndexerConfig
	logger    *zap.Logger
	metrics   *IndexerMetrics
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewIndexerService creates a new indexer service
func NewIndexerService(
	chain ChainSource,
	registry *RegistryService,
	batchRepo repositories.BatchRepository,
	cfg config.IndexerConfig,
	logger *zap.Logger,
	metrics *IndexerMetrics,
) *IndexerService {
	return &IndexerService{
		chain:     chain,
		registry:  registry,
		batchRepo: batchRepo,
		config:    cfg,
		logger:    logger,
		metrics:   metrics,
		stopCh:    make(chan struct{}),
	}
}

// Start seeds the cursor and registry, then begins the indexing loop
func (s *IndexerService) Start(ctx context.Context) error {
	s.logger.Info("Starting indexer service",
		zap.Int64("start_block", s.config.StartBlock),
		zap.Int64("batch_size", s.config.BatchSize),
	)

	if err := s.batchRepo.EnsureCursor(ctx, s.config.StartBlock); err != nil {
		return fmt.Errorf("failed to seed cursor: %w", err)
	}

	if err := s.registry.Load(ctx); err != nil {
		return err
	}

	s.wg.Add(1)
	go s.runIndexingLoop(ctx)

	return nil
}

// Stop gracefully stops the indexer
func (s *IndexerService) Stop() {
	s.logger.Info("Stopping indexer service")
	close(s.stopCh)
	s.wg.Wait()
}

// runIndexingLoop processes batches until stopped. After an error the loop
// backs off instead of hammering a failing RPC endpoint or database.
func (s *IndexerService) runIndexingLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		default:
		}

		wait := s.config.PollInterval
		processed, err := s.Tick(ctx)
		switch {
		case err != nil:
			s.logger.Error("Indexing iteration failed", zap.Error(err))
			s.metrics.ErrorsTotal.Inc()
			wait = s.config.ErrorBackoff
		case processed:
			// More blocks may be waiting; poll again immediately.
			wait = 0
		}

		if wait > 0 {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-time.After(wait):
			}
		}
	}
}

// Tick runs one iteration: reorg check, then at most one batch. It reports
// whether a batch was committed, so the caller can poll again without
// sleeping while behind the head.
func (s *IndexerService) Tick(ctx context.Context) (bool, error) {
	cursor, err := s.batchRepo.LastIndexedBlock(ctx)
	if err != nil {
		return false, err
	}

	head, err := s.chain.CurrentHeight(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get chain head: %w", err)
	}
	s.metrics.ChainHead.Set(float64(head))

	if cursor >= head {
		return false, nil
	}

	reorged, err := s.checkReorg(ctx, cursor)
	if err != nil {
		return false, err
	}
	if reorged {
		// Re-read the cursor next iteration and re-index from the fork.
		return true, nil
	}

	fromBlock := cursor + 1
	toBlock := cursor + s.config.BatchSize
	if toBlock > head {
		toBlock = head
	}

	start := time.Now()
	batch, err := s.processRange(ctx, fromBlock, toBlock)
	if err != nil {
		return false, err
	}

	if err := s.batchRepo.CommitBatch(ctx, batch); err != nil {
		return false, fmt.Errorf("failed to commit batch %d-%d: %w", fromBlock, toBlock, err)
	}

	s.metrics.BlocksIndexed.Add(float64(toBlock - fromBlock + 1))
	s.metrics.LastIndexedBlock.Set(float64(toBlock))
	for _, t := range batch.Transfers {
		s.metrics.EventsIndexed.WithLabelValues(t.EventType).Inc()
	}
	s.metrics.BatchLatency.Observe(time.Since(start).Seconds())

	s.logger.Debug("Committed batch",
		zap.Int64("from_block", fromBlock),
		zap.Int64("to_block", toBlock),
		zap.Int("events", len(batch.Transfers)),
		zap.Int64("lag", head-toBlock),
	)

	return true, nil
}

// checkReorg compares the stored hash at the cursor against the live chain.
// On mismatch it walks back to the fork point and rolls everything after it
// back. Blocks with no stored hash row are skipped during the walk; if no
// stored block matches the live chain the rollback goes to block 0 and the
// loop re-indexes from genesis.
func (s *IndexerService) checkReorg(ctx context.Context, cursor int64) (bool, error) {
	if cursor <= 0 {
		return false, nil
	}

	stored, err := s.batchRepo.StoredBlockHash(ctx, cursor)
	if err != nil {
		return false, err
	}
	if stored == "" {
		return false, nil
	}

	live, err := s.chain.HeaderInfo(ctx, cursor)
	if err != nil {
		return false, fmt.Errorf("failed to get header for block %d: %w", cursor, err)
	}
	if live.Hash == stored {
		return false, nil
	}

	s.logger.Warn("Reorg detected",
		zap.Int64("block", cursor),
		zap.String("stored_hash", stored),
		zap.String("live_hash", live.Hash),
	)

	fork, err := s.findForkBlock(ctx, cursor)
	if err != nil {
		return false, err
	}

	if err := s.batchRepo.RollbackTo(ctx, fork); err != nil {
		return false, fmt.Errorf("failed to roll back to block %d: %w", fork, err)
	}

	s.metrics.ReorgsTotal.Inc()
	s.metrics.LastIndexedBlock.Set(float64(fork))

	return true, nil
}

// findForkBlock walks backwards from the mismatching block to the newest
// stored block whose hash still matches the live chain
func (s *IndexerService) findForkBlock(ctx context.Context, mismatch int64) (int64, error) {
	for number := mismatch - 1; number > 0; number-- {
		stored, err := s.batchRepo.StoredBlockHash(ctx, number)
		if err != nil {
			return 0, err
		}
		if stored == "" {
			continue
		}

		live, err := s.chain.HeaderInfo(ctx, number)
		if err != nil {
			return 0, fmt.Errorf("failed to get header for block %d: %w", number, err)
		}
		if live.Hash == stored {
			return number, nil
		}
	}
	return 0, nil
}

// processRange fetches and decodes one block range into a batch
func (s *IndexerService) processRange(ctx context.Context, fromBlock, toBlock int64) (*entities.Batch, error) {
	logs, err := s.chain.FetchRange(ctx, fromBlock, toBlock)
	if err != nil {
		return nil, err
	}

	// Factory creations register first so token rows carry full metadata
	// before any of the range's transfers reference them.
	for _, lg := range logs.FactoryLogs {
		created := tempo.DecodeTokenCreated(lg)
		if created == nil {
			continue
		}
		if known := s.registry.IsKnown(created.TokenAddress); !known {
			s.metrics.TokensDiscovered.Inc()
		}
		if err := s.registry.RegisterCreated(ctx, created); err != nil {
			return nil, err
		}
	}

	acc := NewAccumulator(fromBlock, toBlock, entities.IndexedBlock{
		BlockNumber: logs.Head.Number,
		BlockHash:   logs.Head.Hash,
		ParentHash:  logs.Head.ParentHash,
		Timestamp:   logs.Head.Time.Unix(),
	})

	for _, lg := range logs.TokenLogs {
		event := tempo.DecodeTokenEvent(lg, logs.Timestamps[lg.BlockNumber])
		if event == nil {
			continue
		}

		if !s.registry.IsKnown(event.TokenAddress) {
			s.metrics.TokensDiscovered.Inc()
			if err := s.registry.EnsureKnown(ctx, event.TokenAddress, event.BlockNumber, event.TransactionHash); err != nil {
				return nil, err
			}
		}

		acc.Add(event)
	}

	return acc.Batch(), nil
}
