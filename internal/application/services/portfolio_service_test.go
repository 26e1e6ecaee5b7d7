package services

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/tempulse/tip20-indexer/internal/domain/repositories"
	"github.com/tempulse/tip20-indexer/internal/testutil"
)

func setupPortfolioServiceTest() (*PortfolioService, *testutil.MockAccountRepository) {
	accountRepo := testutil.NewMockAccountRepository()
	service := NewPortfolioService(accountRepo, nil, zap.NewNop())
	return service, accountRepo
}

func TestPortfolioService_GetPortfolio(t *testing.T) {
	service, accountRepo := setupPortfolioServiceTest()
	ctx := context.Background()

	accountRepo.AddHolding(testutil.AliceAddress, repositories.TokenHolding{
		TokenAddress: testutil.AlphaTokenAddress,
		Symbol:       "AUSD",
		Name:         "Alpha Dollar",
		Decimals:     6,
		Currency:     "USD",
		Balance:      "3000000",
	})
	accountRepo.AddHolding(testutil.AliceAddress, repositories.TokenHolding{
		TokenAddress: testutil.BetaTokenAddress,
		Symbol:       "BEUR",
		Name:         "Beta Euro",
		Decimals:     6,
		Currency:     "EUR",
		Balance:      "500000",
	})

	response, err := service.GetPortfolio(ctx, testutil.AliceAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if response.WalletAddress != testutil.AliceAddress {
		t.Errorf("unexpected wallet address %s", response.WalletAddress)
	}
	if len(response.Holdings) != 2 {
		t.Fatalf("expected 2 holdings, got %d", len(response.Holdings))
	}
	if response.Holdings[0].Symbol != "AUSD" || response.Holdings[0].Balance != "3000000" {
		t.Errorf("unexpected holding %+v", response.Holdings[0])
	}
	if response.Holdings[1].Currency != "EUR" {
		t.Errorf("unexpected holding %+v", response.Holdings[1])
	}
}

func TestPortfolioService_GetPortfolio_Empty(t *testing.T) {
	service, _ := setupPortfolioServiceTest()

	response, err := service.GetPortfolio(context.Background(), testutil.CharlieAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(response.Holdings) != 0 {
		t.Errorf("expected empty portfolio, got %d holdings", len(response.Holdings))
	}
}

func TestPortfolioService_GetPortfolio_NormalizesAddress(t *testing.T) {
	service, accountRepo := setupPortfolioServiceTest()

	wallet := "0xabcdef0000000000000000000000000000000abc"
	accountRepo.AddHolding(wallet, repositories.TokenHolding{
		TokenAddress: testutil.AlphaTokenAddress,
		Symbol:       "AUSD",
		Balance:      "42",
	})

	response, err := service.GetPortfolio(context.Background(), "0xABCDEF0000000000000000000000000000000ABC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.WalletAddress != wallet {
		t.Errorf("expected lowercased wallet address, got %s", response.WalletAddress)
	}
	if len(response.Holdings) != 1 {
		t.Errorf("expected 1 holding, got %d", len(response.Holdings))
	}
}
