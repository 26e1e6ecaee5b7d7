package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/tempulse/tip20-indexer/internal/domain/entities"
	"github.com/tempulse/tip20-indexer/internal/domain/repositories"
	"github.com/tempulse/tip20-indexer/internal/infrastructure/tempo"
)

// MetadataSource resolves TIP-20 view-function metadata for a token contract
type MetadataSource interface {
	FetchMetadata(ctx context.Context, tokenAddress string) (*tempo.TokenMetadata, error)
}

// RegistryService maintains the set of tracked tokens. Tokens enter the set
// two ways: a factory TokenCreated event (authoritative, full metadata), or
// lazily when a structurally valid address emits its first event before its
// creation event was seen. Both paths are insert-if-absent, so a lazy
// placeholder followed by the factory event, or the same event replayed after
// a restart, never duplicates a row.
type RegistryService struct {
	tokenRepo repositories.TokenRepository
	metadata  MetadataSource
	logger    *zap.Logger

	mu    sync.RWMutex
	known map[string]struct{}
}

// NewRegistryService creates a new registry service
func NewRegistryService(
	tokenRepo repositories.TokenRepository,
	metadata MetadataSource,
	logger *zap.Logger,
) *RegistryService {
	return &RegistryService{
		tokenRepo: tokenRepo,
		metadata:  metadata,
		logger:    logger,
		known:     make(map[string]struct{}),
	}
}

// Load seeds the in-memory known set from the database
func (s *RegistryService) Load(ctx context.Context) error {
	addresses, err := s.tokenRepo.GetAllAddresses(ctx)
	if err != nil {
		return fmt.Errorf("failed to load token registry: %w", err)
	}

	s.mu.Lock()
	for _, addr := range addresses {
		s.known[addr] = struct{}{}
	}
	s.mu.Unlock()

	s.logger.Info("Loaded token registry", zap.Int("tokens", len(addresses)))
	return nil
}

// IsKnown reports whether a token is already tracked
func (s *RegistryService) IsKnown(address string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.known[address]
	return ok
}

// RegisterCreated registers a token from a decoded factory event
func (s *RegistryService) RegisterCreated(ctx context.Context, created *entities.TokenCreated) error {
	token := &entities.Token{
		Address:        created.TokenAddress,
		Name:           created.Name,
		Symbol:         created.Symbol,
		Decimals:       tempo.TokenDecimals,
		Currency:       created.Currency,
		TotalSupply:    "0",
		CreatedAtBlock: created.BlockNumber,
		CreatedAtTx:    created.TransactionHash,
	}

	if err := s.tokenRepo.Insert(ctx, token); err != nil {
		return fmt.Errorf("failed to register token %s: %w", created.TokenAddress, err)
	}

	s.markKnown(created.TokenAddress)

	s.logger.Info("Registered token from factory event",
		zap.String("address", created.TokenAddress),
		zap.String("symbol", created.Symbol),
		zap.Int64("block", created.BlockNumber),
	)

	return nil
}

// EnsureKnown registers a placeholder row for a token discovered by its first
// event. Metadata enrichment is best effort: a failed eth_call leaves the
// placeholder empty and a later factory event or retry fills it in.
func (s *RegistryService) EnsureKnown(ctx context.Context, tokenAddress string, blockNumber int64, txHash string) error {
	if s.IsKnown(tokenAddress) {
		return nil
	}

	token := &entities.Token{
		Address:        tokenAddress,
		Decimals:       tempo.TokenDecimals,
		TotalSupply:    "0",
		CreatedAtBlock: blockNumber,
		CreatedAtTx:    txHash,
	}

	if err := s.tokenRepo.Insert(ctx, token); err != nil {
		return fmt.Errorf("failed to register discovered token %s: %w", tokenAddress, err)
	}

	s.markKnown(tokenAddress)

	s.logger.Info("Discovered token by first event",
		zap.String("address", tokenAddress),
		zap.Int64("block", blockNumber),
	)

	s.enrich(ctx, tokenAddress)
	return nil
}

// enrich fills in placeholder metadata via eth_call
func (s *RegistryService) enrich(ctx context.Context, tokenAddress string) {
	if s.metadata == nil {
		return
	}

	md, err := s.metadata.FetchMetadata(ctx, tokenAddress)
	if err != nil {
		s.logger.Warn("Failed to fetch token metadata",
			zap.String("address", tokenAddress),
			zap.Error(err),
		)
		return
	}

	if md.Name == "" && md.Symbol == "" && md.Currency == "" {
		return
	}

	if err := s.tokenRepo.UpdateMetadata(ctx, tokenAddress, md.Name, md.Symbol, md.Currency); err != nil {
		s.logger.Warn("Failed to update token metadata",
			zap.String("address", tokenAddress),
			zap.Error(err),
		)
	}
}

func (s *RegistryService) markKnown(address string) {
	s.mu.Lock()
	s.known[address] = struct{}{}
	s.mu.Unlock()
}
