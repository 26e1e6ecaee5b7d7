package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tempulse/tip20-indexer/internal/application/services"
	"github.com/tempulse/tip20-indexer/internal/domain/repositories"
	"github.com/tempulse/tip20-indexer/internal/testutil"
)

func setupHoldersHandlerTest() (*HoldersHandler, *testutil.MockAccountRepository) {
	accountRepo := testutil.NewMockAccountRepository()
	logger := zap.NewNop()

	service := services.NewHoldersService(accountRepo, nil, logger)
	handler := NewHoldersHandler(service, logger)

	return handler, accountRepo
}

func TestHoldersHandler_GetTopHolders(t *testing.T) {
	handler, accountRepo := setupHoldersHandlerTest()

	accountRepo.AddHolder(testutil.AlphaTokenAddress, repositories.HolderBalance{
		Address: testutil.AliceAddress, Balance: "900", Rank: 1,
	})
	accountRepo.AddHolder(testutil.AlphaTokenAddress, repositories.HolderBalance{
		Address: testutil.BobAddress, Balance: "100", Rank: 2,
	})

	r := chi.NewRouter()
	r.Get("/tokens/{address}/holders", handler.GetTopHolders)

	req := httptest.NewRequest(http.MethodGet, "/tokens/"+testutil.AlphaTokenAddress+"/holders", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var response services.HoldersResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.HolderCount != 2 {
		t.Errorf("expected holder count 2, got %d", response.HolderCount)
	}
	if len(response.Holders) != 2 || response.Holders[0].Rank != 1 {
		t.Errorf("unexpected holders %+v", response.Holders)
	}
}

func TestHoldersHandler_GetTopHolders_InvalidAddress(t *testing.T) {
	handler, _ := setupHoldersHandlerTest()

	r := chi.NewRouter()
	r.Get("/tokens/{address}/holders", handler.GetTopHolders)

	req := httptest.NewRequest(http.MethodGet, "/tokens/0xshort/holders", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestHoldersHandler_GetHolderBalance(t *testing.T) {
	handler, accountRepo := setupHoldersHandlerTest()

	accountRepo.AddHolder(testutil.AlphaTokenAddress, repositories.HolderBalance{
		Address: testutil.BobAddress, Balance: "250", Rank: 4,
	})

	r := chi.NewRouter()
	r.Get("/tokens/{address}/holders/{holder}", handler.GetHolderBalance)

	req := httptest.NewRequest(http.MethodGet,
		"/tokens/"+testutil.AlphaTokenAddress+"/holders/"+testutil.BobAddress, nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var response struct {
		Data services.HolderDTO `json:"data"`
	}
	json.NewDecoder(rec.Body).Decode(&response)

	if response.Data.Balance != "250" || response.Data.Rank != 4 {
		t.Errorf("unexpected holder %+v", response.Data)
	}
}

func TestHoldersHandler_GetHolderBalance_NotFound(t *testing.T) {
	handler, _ := setupHoldersHandlerTest()

	r := chi.NewRouter()
	r.Get("/tokens/{address}/holders/{holder}", handler.GetHolderBalance)

	req := httptest.NewRequest(http.MethodGet,
		"/tokens/"+testutil.AlphaTokenAddress+"/holders/"+testutil.CharlieAddress, nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}

	var response map[string]string
	json.NewDecoder(rec.Body).Decode(&response)
	if response["error"] != "holder not found" {
		t.Errorf("unexpected error message: %s", response["error"])
	}
}

func TestHoldersHandler_RegisterRoutes(t *testing.T) {
	handler, _ := setupHoldersHandlerTest()

	r := chi.NewRouter()
	handler.RegisterRoutes(r)

	routes := []string{
		"/tokens/" + testutil.AlphaTokenAddress + "/holders",
	}

	for _, path := range routes {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		if rec.Code == http.StatusNotFound {
			t.Errorf("route GET %s not registered", path)
		}
	}
}
