package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tempulse/tip20-indexer/internal/domain/entities"
	"github.com/tempulse/tip20-indexer/internal/domain/repositories"
	"github.com/tempulse/tip20-indexer/internal/infrastructure/tempo"
)

type MockCall struct {
	Method string
	Args   []interface{}
}

// MockTokenRepository is a mock implementation of TokenRepository
type MockTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]*entities.Token

	// Function hooks for custom behavior
	GetByAddressFunc     func(ctx context.Context, address string) (*entities.Token, error)
	GetAllPaginatedFunc  func(ctx context.Context, limit, offset int) ([]*entities.Token, int64, error)
	InsertFunc           func(ctx context.Context, token *entities.Token) error
	UpdateMetadataFunc   func(ctx context.Context, address, name, symbol, currency string) error

	Calls []MockCall
}

func NewMockTokenRepository() *MockTokenRepository {
	return &MockTokenRepository{
		tokens: make(map[string]*entities.Token),
		Calls:  make([]MockCall, 0),
	}
}

func (m *MockTokenRepository) GetByAddress(ctx context.Context, address string) (*entities.Token, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetByAddress", Args: []interface{}{address}})
	m.mu.Unlock()

	if m.GetByAddressFunc != nil {
		return m.GetByAddressFunc(ctx, address)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if token, ok := m.tokens[address]; ok {
		return token, nil
	}
	return nil, nil
}

func (m *MockTokenRepository) GetAll(ctx context.Context) ([]entities.Token, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetAll", Args: nil})
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]entities.Token, 0, len(m.tokens))
	for _, token := range m.tokens {
		result = append(result, *token)
	}
	return result, nil
}

func (m *MockTokenRepository) GetAllPaginated(ctx context.Context, limit, offset int) ([]*entities.Token, int64, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetAllPaginated", Args: []interface{}{limit, offset}})
	m.mu.Unlock()

	if m.GetAllPaginatedFunc != nil {
		return m.GetAllPaginatedFunc(ctx, limit, offset)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*entities.Token, 0, len(m.tokens))
	for _, token := range m.tokens {
		result = append(result, token)
	}

	total := int64(len(result))

	start := offset
	if start > len(result) {
		return []*entities.Token{}, total, nil
	}
	end := start + limit
	if end > len(result) {
		end = len(result)
	}

	return result[start:end], total, nil
}

func (m *MockTokenRepository) GetAllAddresses(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetAllAddresses", Args: nil})
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	addresses := make([]string, 0, len(m.tokens))
	for addr := range m.tokens {
		addresses = append(addresses, addr)
	}
	return addresses, nil
}

func (m *MockTokenRepository) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Count", Args: nil})
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.tokens)), nil
}

func (m *MockTokenRepository) Insert(ctx context.Context, token *entities.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "Insert", Args: []interface{}{token}})

	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, token)
	}

	// Insert-if-absent, matching ON CONFLICT DO NOTHING
	if _, ok := m.tokens[token.Address]; !ok {
		m.tokens[token.Address] = token
	}
	return nil
}

func (m *MockTokenRepository) UpdateMetadata(ctx context.Context, address, name, symbol, currency string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "UpdateMetadata", Args: []interface{}{address, name, symbol, currency}})

	if m.UpdateMetadataFunc != nil {
		return m.UpdateMetadataFunc(ctx, address, name, symbol, currency)
	}

	if token, ok := m.tokens[address]; ok {
		token.Name = name
		token.Symbol = symbol
		token.Currency = currency
	}
	return nil
}

// AddToken adds a token to the mock store
func (m *MockTokenRepository) AddToken(token *entities.Token) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token.Address] = token
}

// CallCount returns how many times a method was invoked
func (m *MockTokenRepository) CallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, c := range m.Calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

// MockTransferRepository is a mock implementation of TransferRepository
type MockTransferRepository struct {
	mu        sync.RWMutex
	transfers []entities.Transfer

	GetByFilterFunc func(ctx context.Context, filter entities.TransferFilter) ([]entities.Transfer, error)
	GetCountFunc    func(ctx context.Context, filter entities.TransferFilter) (int64, error)

	Calls []MockCall
}

func NewMockTransferRepository() *MockTransferRepository {
	return &MockTransferRepository{
		transfers: make([]entities.Transfer, 0),
		Calls:     make([]MockCall, 0),
	}
}

func (m *MockTransferRepository) GetByFilter(ctx context.Context, filter entities.TransferFilter) ([]entities.Transfer, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetByFilter", Args: []interface{}{filter}})
	m.mu.Unlock()

	if m.GetByFilterFunc != nil {
		return m.GetByFilterFunc(ctx, filter)
	}

	result := m.filtered(filter)

	start := filter.Offset
	if start > len(result) {
		return []entities.Transfer{}, nil
	}
	end := start + filter.Limit
	if end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

func (m *MockTransferRepository) GetCount(ctx context.Context, filter entities.TransferFilter) (int64, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetCount", Args: []interface{}{filter}})
	m.mu.Unlock()

	if m.GetCountFunc != nil {
		return m.GetCountFunc(ctx, filter)
	}

	return int64(len(m.filtered(filter))), nil
}

func (m *MockTransferRepository) GetRecent(ctx context.Context, limit int) ([]entities.Transfer, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetRecent", Args: []interface{}{limit}})
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	// Newest first
	result := make([]entities.Transfer, len(m.transfers))
	copy(result, m.transfers)
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockTransferRepository) filtered(filter entities.TransferFilter) []entities.Transfer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]entities.Transfer, 0)
	for _, t := range m.transfers {
		if filter.TokenAddress != nil && t.TokenAddress != *filter.TokenAddress {
			continue
		}
		if filter.Address != nil && t.FromAddress != *filter.Address && t.ToAddress != *filter.Address {
			continue
		}
		if filter.EventType != nil && t.EventType != *filter.EventType {
			continue
		}
		if filter.FromBlock != nil && t.BlockNumber < *filter.FromBlock {
			continue
		}
		if filter.ToBlock != nil && t.BlockNumber > *filter.ToBlock {
			continue
		}
		result = append(result, t)
	}
	return result
}

// AddTransfers adds transfers to the mock store
func (m *MockTransferRepository) AddTransfers(transfers ...entities.Transfer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers = append(m.transfers, transfers...)
}

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mu       sync.RWMutex
	holders  map[string][]repositories.HolderBalance // keyed by token address
	holdings map[string][]repositories.TokenHolding  // keyed by wallet address

	GetTopHoldersFunc func(ctx context.Context, tokenAddress string, limit int) ([]repositories.HolderBalance, error)

	Calls []MockCall
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		holders:  make(map[string][]repositories.HolderBalance),
		holdings: make(map[string][]repositories.TokenHolding),
		Calls:    make([]MockCall, 0),
	}
}

func (m *MockAccountRepository) GetTopHolders(ctx context.Context, tokenAddress string, limit int) ([]repositories.HolderBalance, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetTopHolders", Args: []interface{}{tokenAddress, limit}})
	m.mu.Unlock()

	if m.GetTopHoldersFunc != nil {
		return m.GetTopHoldersFunc(ctx, tokenAddress, limit)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	holders := m.holders[tokenAddress]
	if len(holders) > limit {
		holders = holders[:limit]
	}
	return holders, nil
}

func (m *MockAccountRepository) GetHolderBalance(ctx context.Context, tokenAddress, holderAddress string) (*repositories.HolderBalance, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetHolderBalance", Args: []interface{}{tokenAddress, holderAddress}})
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, h := range m.holders[tokenAddress] {
		if h.Address == holderAddress {
			result := h
			return &result, nil
		}
	}
	return nil, nil
}

func (m *MockAccountRepository) GetHolderCount(ctx context.Context, tokenAddress string) (int64, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetHolderCount", Args: []interface{}{tokenAddress}})
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.holders[tokenAddress])), nil
}

func (m *MockAccountRepository) GetWalletHoldings(ctx context.Context, walletAddress string) ([]repositories.TokenHolding, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetWalletHoldings", Args: []interface{}{walletAddress}})
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.holdings[walletAddress], nil
}

// AddHolder adds a holder balance to the mock store
func (m *MockAccountRepository) AddHolder(tokenAddress string, holder repositories.HolderBalance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holders[tokenAddress] = append(m.holders[tokenAddress], holder)
}

// AddHolding adds a wallet position to the mock store
func (m *MockAccountRepository) AddHolding(walletAddress string, holding repositories.TokenHolding) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holdings[walletAddress] = append(m.holdings[walletAddress], holding)
}

// MockStatsRepository is a mock implementation of StatsRepository
type MockStatsRepository struct {
	mu     sync.RWMutex
	hourly map[string][]entities.HourlyStats
	tvl    []repositories.TVLEntry

	GetWindowFunc func(ctx context.Context, tokenAddress string, since time.Time) (*repositories.TokenWindowStats, error)

	Calls []MockCall
}

func NewMockStatsRepository() *MockStatsRepository {
	return &MockStatsRepository{
		hourly: make(map[string][]entities.HourlyStats),
		Calls:  make([]MockCall, 0),
	}
}

func (m *MockStatsRepository) GetHourly(ctx context.Context, tokenAddress string, limit int) ([]entities.HourlyStats, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetHourly", Args: []interface{}{tokenAddress, limit}})
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := m.hourly[tokenAddress]
	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}

func (m *MockStatsRepository) GetWindow(ctx context.Context, tokenAddress string, since time.Time) (*repositories.TokenWindowStats, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetWindow", Args: []interface{}{tokenAddress, since}})
	m.mu.Unlock()

	if m.GetWindowFunc != nil {
		return m.GetWindowFunc(ctx, tokenAddress, since)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := &repositories.TokenWindowStats{
		TransferVolume: "0",
		MintVolume:     "0",
		BurnVolume:     "0",
	}
	for _, st := range m.hourly[tokenAddress] {
		if st.Hour.Before(since) {
			continue
		}
		result.TransferCount += st.TransferCount
		result.MintCount += st.MintCount
		result.BurnCount += st.BurnCount
	}
	return result, nil
}

func (m *MockStatsRepository) GetTVL(ctx context.Context) ([]repositories.TVLEntry, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetTVL", Args: nil})
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.tvl, nil
}

// AddHourly adds an hourly bucket to the mock store
func (m *MockStatsRepository) AddHourly(stats entities.HourlyStats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hourly[stats.TokenAddress] = append(m.hourly[stats.TokenAddress], stats)
}

// SetTVL sets the TVL listing returned by the mock
func (m *MockStatsRepository) SetTVL(entries []repositories.TVLEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tvl = entries
}

// MockBatchRepository is an in-memory implementation of BatchRepository that
// tracks committed batches and the cursor the way the real store does
type MockBatchRepository struct {
	mu     sync.RWMutex
	cursor int64
	seeded bool
	blocks map[int64]string // block number -> stored hash

	Committed []*entities.Batch
	Rollbacks []int64

	CommitBatchFunc func(ctx context.Context, batch *entities.Batch) error
	RollbackToFunc  func(ctx context.Context, forkBlock int64) error

	Calls []MockCall
}

func NewMockBatchRepository() *MockBatchRepository {
	return &MockBatchRepository{
		blocks: make(map[int64]string),
	}
}

func (m *MockBatchRepository) CommitBatch(ctx context.Context, batch *entities.Batch) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "CommitBatch", Args: []interface{}{batch}})
	m.mu.Unlock()

	if m.CommitBatchFunc != nil {
		return m.CommitBatchFunc(ctx, batch)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Committed = append(m.Committed, batch)
	m.blocks[batch.Head.BlockNumber] = batch.Head.BlockHash
	m.cursor = batch.ToBlock
	return nil
}

func (m *MockBatchRepository) RollbackTo(ctx context.Context, forkBlock int64) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "RollbackTo", Args: []interface{}{forkBlock}})
	m.mu.Unlock()

	if m.RollbackToFunc != nil {
		return m.RollbackToFunc(ctx, forkBlock)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for number := range m.blocks {
		if number > forkBlock {
			delete(m.blocks, number)
		}
	}
	m.Rollbacks = append(m.Rollbacks, forkBlock)
	m.cursor = forkBlock
	return nil
}

func (m *MockBatchRepository) LastIndexedBlock(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cursor, nil
}

func (m *MockBatchRepository) EnsureCursor(ctx context.Context, startBlock int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.seeded {
		m.cursor = startBlock
		m.seeded = true
	}
	return nil
}

func (m *MockBatchRepository) StoredBlockHash(ctx context.Context, blockNumber int64) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.blocks[blockNumber], nil
}

// SetCursor sets the cursor directly
func (m *MockBatchRepository) SetCursor(block int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursor = block
	m.seeded = true
}

// SetBlockHash records a stored block hash directly
func (m *MockBatchRepository) SetBlockHash(blockNumber int64, hash string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocks[blockNumber] = hash
}

// MockChainSource is a mock implementation of the indexer's chain read
// surface
type MockChainSource struct {
	mu sync.RWMutex

	Height  int64
	Headers map[int64]*tempo.HeaderInfo
	Ranges  map[int64]*tempo.RangeLogs // keyed by from block

	CurrentHeightFunc func(ctx context.Context) (int64, error)
	HeaderInfoFunc    func(ctx context.Context, number int64) (*tempo.HeaderInfo, error)
	FetchRangeFunc    func(ctx context.Context, fromBlock, toBlock int64) (*tempo.RangeLogs, error)

	Calls []MockCall
}

func NewMockChainSource() *MockChainSource {
	return &MockChainSource{
		Headers: make(map[int64]*tempo.HeaderInfo),
		Ranges:  make(map[int64]*tempo.RangeLogs),
	}
}

func (m *MockChainSource) CurrentHeight(ctx context.Context) (int64, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "CurrentHeight", Args: nil})
	m.mu.Unlock()

	if m.CurrentHeightFunc != nil {
		return m.CurrentHeightFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Height, nil
}

func (m *MockChainSource) HeaderInfo(ctx context.Context, number int64) (*tempo.HeaderInfo, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "HeaderInfo", Args: []interface{}{number}})
	m.mu.Unlock()

	if m.HeaderInfoFunc != nil {
		return m.HeaderInfoFunc(ctx, number)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if h, ok := m.Headers[number]; ok {
		return h, nil
	}
	return nil, errors.New("header not found")
}

func (m *MockChainSource) FetchRange(ctx context.Context, fromBlock, toBlock int64) (*tempo.RangeLogs, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "FetchRange", Args: []interface{}{fromBlock, toBlock}})
	m.mu.Unlock()

	if m.FetchRangeFunc != nil {
		return m.FetchRangeFunc(ctx, fromBlock, toBlock)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.Ranges[fromBlock]; ok {
		return r, nil
	}

	// Default: an empty range with a synthetic head
	head := tempo.HeaderInfo{Number: toBlock}
	if h, ok := m.Headers[toBlock]; ok {
		head = *h
	}
	return &tempo.RangeLogs{
		Timestamps: make(map[uint64]time.Time),
		Head:       head,
	}, nil
}

// MockHealthChecker is a mock implementation of HealthChecker
type MockHealthChecker struct {
	mu    sync.RWMutex
	Error error
}

func NewMockHealthChecker(healthy bool) *MockHealthChecker {
	var err error
	if !healthy {
		err = errors.New("health check failed")
	}
	return &MockHealthChecker{Error: err}
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Error
}
