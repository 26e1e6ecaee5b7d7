package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tempulse/tip20-indexer/internal/application/services"
	"github.com/tempulse/tip20-indexer/internal/domain/entities"
	"github.com/tempulse/tip20-indexer/internal/testutil"
)

func setupTokenHandlerTest() (*TokenHandler, *testutil.MockTokenRepository) {
	tokenRepo := testutil.NewMockTokenRepository()
	logger := zap.NewNop()

	service := services.NewTokenService(tokenRepo, nil, logger)
	handler := NewTokenHandler(service, logger)

	return handler, tokenRepo
}

func TestTokenHandler_GetAllTokens_Success(t *testing.T) {
	handler, tokenRepo := setupTokenHandlerTest()

	tokenRepo.AddToken(testutil.CreateTestToken(
		testutil.TokenWithAddress(testutil.AlphaTokenAddress),
		testutil.TokenWithSymbol("AUSD"),
	))
	tokenRepo.AddToken(testutil.CreateTestToken(
		testutil.TokenWithAddress(testutil.BetaTokenAddress),
		testutil.TokenWithSymbol("BEUR"),
	))

	req := httptest.NewRequest(http.MethodGet, "/tokens", nil)
	rec := httptest.NewRecorder()

	handler.GetAllTokens(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var response services.TokenListResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Pagination.Total != 2 {
		t.Errorf("expected 2 tokens, got %d", response.Pagination.Total)
	}
	if len(response.Data) != 2 {
		t.Errorf("expected 2 tokens in data, got %d", len(response.Data))
	}
}

func TestTokenHandler_GetAllTokens_DefaultParams(t *testing.T) {
	handler, _ := setupTokenHandlerTest()

	req := httptest.NewRequest(http.MethodGet, "/tokens", nil)
	rec := httptest.NewRecorder()

	handler.GetAllTokens(rec, req)

	var response services.TokenListResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if response.Pagination.Limit != 100 {
		t.Errorf("expected default limit 100, got %d", response.Pagination.Limit)
	}
	if response.Pagination.Offset != 0 {
		t.Errorf("expected default offset 0, got %d", response.Pagination.Offset)
	}
}

func TestTokenHandler_GetAllTokens_InvalidLimit(t *testing.T) {
	handler, _ := setupTokenHandlerTest()

	// limit above the cap falls back to the default
	req := httptest.NewRequest(http.MethodGet, "/tokens?limit=5000", nil)
	rec := httptest.NewRecorder()

	handler.GetAllTokens(rec, req)

	var response services.TokenListResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if response.Pagination.Limit != 100 {
		t.Errorf("expected default limit 100, got %d", response.Pagination.Limit)
	}
}

func TestTokenHandler_GetAllTokens_ServiceError(t *testing.T) {
	handler, tokenRepo := setupTokenHandlerTest()

	tokenRepo.GetAllPaginatedFunc = func(ctx context.Context, limit, offset int) ([]*entities.Token, int64, error) {
		return nil, 0, errors.New("database error")
	}

	req := httptest.NewRequest(http.MethodGet, "/tokens", nil)
	rec := httptest.NewRecorder()

	handler.GetAllTokens(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}

	var response map[string]string
	json.NewDecoder(rec.Body).Decode(&response)
	if response["error"] != "Failed to get tokens" {
		t.Errorf("unexpected error message: %s", response["error"])
	}
}

func TestTokenHandler_GetByAddress_Success(t *testing.T) {
	handler, tokenRepo := setupTokenHandlerTest()

	tokenRepo.AddToken(testutil.CreateTestToken(
		testutil.TokenWithAddress(testutil.AlphaTokenAddress),
		testutil.TokenWithName("Alpha Dollar"),
		testutil.TokenWithSymbol("AUSD"),
	))

	r := chi.NewRouter()
	r.Get("/tokens/{address}", handler.GetByAddress)

	req := httptest.NewRequest(http.MethodGet, "/tokens/"+testutil.AlphaTokenAddress, nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var response services.TokenResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if response.Data.Address != testutil.AlphaTokenAddress {
		t.Errorf("expected address %s, got %s", testutil.AlphaTokenAddress, response.Data.Address)
	}
	if response.Data.Symbol != "AUSD" {
		t.Errorf("expected symbol AUSD, got %s", response.Data.Symbol)
	}
	if response.Data.Decimals != 6 {
		t.Errorf("expected 6 decimals, got %d", response.Data.Decimals)
	}
}

func TestTokenHandler_GetByAddress_NotFound(t *testing.T) {
	handler, _ := setupTokenHandlerTest()

	r := chi.NewRouter()
	r.Get("/tokens/{address}", handler.GetByAddress)

	req := httptest.NewRequest(http.MethodGet, "/tokens/"+testutil.AlphaTokenAddress, nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}

	var response map[string]string
	json.NewDecoder(rec.Body).Decode(&response)
	if response["error"] != "token not found" {
		t.Errorf("unexpected error message: %s", response["error"])
	}
}

func TestTokenHandler_GetByAddress_InvalidAddress(t *testing.T) {
	handler, _ := setupTokenHandlerTest()

	r := chi.NewRouter()
	r.Get("/tokens/{address}", handler.GetByAddress)

	tests := []struct {
		name    string
		address string
	}{
		{"too short", "0x1234"},
		{"no prefix", "20c0111111111111111111111111111111111111xx"},
		{"wrong prefix", "1x20c0000000000000000000000000000000000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/tokens/"+tt.address, nil)
			rec := httptest.NewRecorder()

			r.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", rec.Code)
			}

			var response map[string]string
			json.NewDecoder(rec.Body).Decode(&response)
			if response["error"] != "Invalid address format" {
				t.Errorf("unexpected error: %s", response["error"])
			}
		})
	}
}

func TestTokenHandler_GetByAddress_UppercaseAddress(t *testing.T) {
	handler, tokenRepo := setupTokenHandlerTest()

	tokenRepo.AddToken(testutil.CreateTestToken(
		testutil.TokenWithAddress(testutil.AlphaTokenAddress),
	))

	r := chi.NewRouter()
	r.Get("/tokens/{address}", handler.GetByAddress)

	upperAddr := "0x20C0000000000000000000000000000000000001"
	req := httptest.NewRequest(http.MethodGet, "/tokens/"+upperAddr, nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var response services.TokenResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if response.Data.Address != testutil.AlphaTokenAddress {
		t.Errorf("expected lowercase address %s, got %s", testutil.AlphaTokenAddress, response.Data.Address)
	}
}

func TestTokenHandler_GetByAddress_ServiceError(t *testing.T) {
	handler, tokenRepo := setupTokenHandlerTest()

	tokenRepo.GetByAddressFunc = func(ctx context.Context, address string) (*entities.Token, error) {
		return nil, errors.New("database error")
	}

	r := chi.NewRouter()
	r.Get("/tokens/{address}", handler.GetByAddress)

	req := httptest.NewRequest(http.MethodGet, "/tokens/"+testutil.AlphaTokenAddress, nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
}

func TestTokenHandler_RegisterRoutes(t *testing.T) {
	handler, tokenRepo := setupTokenHandlerTest()

	tokenRepo.AddToken(testutil.CreateTestToken(
		testutil.TokenWithAddress(testutil.AlphaTokenAddress),
	))

	r := chi.NewRouter()
	handler.RegisterRoutes(r)

	routes := []struct {
		method string
		path   string
	}{
		{"GET", "/tokens"},
		{"GET", "/tokens/" + testutil.AlphaTokenAddress},
	}

	for _, route := range routes {
		req := httptest.NewRequest(route.method, route.path, nil)
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		if rec.Code == http.StatusNotFound {
			t.Errorf("route %s %s not registered", route.method, route.path)
		}
	}
}

func TestTokenHandler_ResponseContentType(t *testing.T) {
	handler, _ := setupTokenHandlerTest()

	req := httptest.NewRequest(http.MethodGet, "/tokens", nil)
	rec := httptest.NewRecorder()

	handler.GetAllTokens(rec, req)

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}
}
