package services

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/tempulse/tip20-indexer/internal/domain/entities"
	"github.com/tempulse/tip20-indexer/internal/infrastructure/tempo"
	"github.com/tempulse/tip20-indexer/internal/testutil"
)

type stubMetadataSource struct {
	metadata *tempo.TokenMetadata
	err      error
	calls    int
}

func (s *stubMetadataSource) FetchMetadata(ctx context.Context, tokenAddress string) (*tempo.TokenMetadata, error) {
	s.calls++
	return s.metadata, s.err
}

func setupRegistryTest() (*RegistryService, *testutil.MockTokenRepository, *stubMetadataSource) {
	tokenRepo := testutil.NewMockTokenRepository()
	metadata := &stubMetadataSource{
		metadata: &tempo.TokenMetadata{Name: "Alpha Dollar", Symbol: "AUSD", Currency: "USD"},
	}
	service := NewRegistryService(tokenRepo, metadata, zap.NewNop())
	return service, tokenRepo, metadata
}

func TestRegistryService_Load(t *testing.T) {
	service, tokenRepo, _ := setupRegistryTest()
	ctx := context.Background()

	tokenRepo.AddToken(testutil.CreateTestToken())

	if err := service.Load(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !service.IsKnown(testutil.AlphaTokenAddress) {
		t.Error("expected loaded token to be known")
	}
	if service.IsKnown(testutil.BetaTokenAddress) {
		t.Error("expected unseen token to be unknown")
	}
}

func TestRegistryService_RegisterCreated(t *testing.T) {
	service, tokenRepo, metadata := setupRegistryTest()
	ctx := context.Background()

	created := &entities.TokenCreated{
		TokenAddress:    testutil.AlphaTokenAddress,
		Name:            "Alpha Dollar",
		Symbol:          "AUSD",
		Currency:        "USD",
		BlockNumber:     42,
		TransactionHash: "0xcc",
	}

	if err := service.RegisterCreated(ctx, created); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !service.IsKnown(testutil.AlphaTokenAddress) {
		t.Error("expected token to be known after registration")
	}

	token, _ := tokenRepo.GetByAddress(ctx, testutil.AlphaTokenAddress)
	if token == nil {
		t.Fatal("expected token row")
	}
	if token.Symbol != "AUSD" || token.Currency != "USD" {
		t.Errorf("expected factory metadata on row, got %q/%q", token.Symbol, token.Currency)
	}
	if token.CreatedAtBlock != 42 {
		t.Errorf("expected creation block 42, got %d", token.CreatedAtBlock)
	}
	if token.TotalSupply != "0" {
		t.Errorf("expected zero initial supply, got %s", token.TotalSupply)
	}

	// Factory registration carries full metadata, no eth_call needed
	if metadata.calls != 0 {
		t.Errorf("expected no metadata fetch, got %d", metadata.calls)
	}
}

func TestRegistryService_EnsureKnown_RegistersOnce(t *testing.T) {
	service, tokenRepo, metadata := setupRegistryTest()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := service.EnsureKnown(ctx, testutil.AlphaTokenAddress, 10, "0xdd"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := tokenRepo.CallCount("Insert"); got != 1 {
		t.Errorf("expected 1 insert, got %d", got)
	}
	if metadata.calls != 1 {
		t.Errorf("expected 1 metadata fetch, got %d", metadata.calls)
	}

	token, _ := tokenRepo.GetByAddress(ctx, testutil.AlphaTokenAddress)
	if token == nil {
		t.Fatal("expected token row")
	}
	// Placeholder enriched via eth_call
	if token.Name != "Alpha Dollar" || token.Symbol != "AUSD" {
		t.Errorf("expected enriched metadata, got %q/%q", token.Name, token.Symbol)
	}
}

func TestRegistryService_EnsureKnown_MetadataFailureKeepsPlaceholder(t *testing.T) {
	service, tokenRepo, metadata := setupRegistryTest()
	ctx := context.Background()

	metadata.metadata = nil
	metadata.err = errors.New("eth_call failed")

	if err := service.EnsureKnown(ctx, testutil.AlphaTokenAddress, 10, "0xdd"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Registration survives the failed enrichment
	if !service.IsKnown(testutil.AlphaTokenAddress) {
		t.Error("expected token to be known")
	}
	token, _ := tokenRepo.GetByAddress(ctx, testutil.AlphaTokenAddress)
	if token == nil {
		t.Fatal("expected placeholder row")
	}
	if token.Name != "" {
		t.Errorf("expected empty placeholder name, got %q", token.Name)
	}
}

func TestRegistryService_LazyThenFactoryKeepsSingleRow(t *testing.T) {
	service, tokenRepo, _ := setupRegistryTest()
	ctx := context.Background()

	if err := service.EnsureKnown(ctx, testutil.AlphaTokenAddress, 10, "0xdd"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := service.RegisterCreated(ctx, &entities.TokenCreated{
		TokenAddress: testutil.AlphaTokenAddress,
		Name:         "Alpha Dollar",
		Symbol:       "AUSD",
		BlockNumber:  5,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count, _ := tokenRepo.Count(ctx)
	if count != 1 {
		t.Errorf("expected single row, got %d", count)
	}
}
