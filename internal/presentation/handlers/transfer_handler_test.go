package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tempulse/tip20-indexer/internal/application/services"
	"github.com/tempulse/tip20-indexer/internal/domain/entities"
	"github.com/tempulse/tip20-indexer/internal/testutil"
)

func setupTransferHandlerTest() (*TransferHandler, *testutil.MockTransferRepository) {
	transferRepo := testutil.NewMockTransferRepository()
	logger := zap.NewNop()

	service := services.NewTransferService(transferRepo, nil, logger)
	handler := NewTransferHandler(service, logger)

	return handler, transferRepo
}

func TestTransferHandler_GetTransfers_Success(t *testing.T) {
	handler, transferRepo := setupTransferHandlerTest()

	transferRepo.AddTransfers(
		testutil.CreateTestTransfer(testutil.TransferWithID(1)),
		testutil.CreateTestTransfer(testutil.TransferWithID(2), testutil.TransferWithLogIndex(1)),
	)

	req := httptest.NewRequest(http.MethodGet, "/transfers", nil)
	rec := httptest.NewRecorder()

	handler.GetTransfers(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var response services.TransferListResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Pagination.Total != 2 {
		t.Errorf("expected total 2, got %d", response.Pagination.Total)
	}
	if len(response.Data) != 2 {
		t.Errorf("expected 2 transfers, got %d", len(response.Data))
	}
}

func TestTransferHandler_GetTransfers_EventTypeFilter(t *testing.T) {
	handler, transferRepo := setupTransferHandlerTest()

	transferRepo.AddTransfers(
		testutil.CreateTestTransfer(testutil.TransferWithID(1)),
		testutil.CreateTestTransfer(
			testutil.TransferWithID(2),
			testutil.TransferWithEventType(entities.EventTypeMint),
			testutil.TransferWithLogIndex(1),
		),
	)

	req := httptest.NewRequest(http.MethodGet, "/transfers?event_type=mint", nil)
	rec := httptest.NewRecorder()

	handler.GetTransfers(rec, req)

	var response services.TransferListResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if len(response.Data) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(response.Data))
	}
	if response.Data[0].EventType != entities.EventTypeMint {
		t.Errorf("expected mint, got %s", response.Data[0].EventType)
	}
}

func TestTransferHandler_GetTransfers_InvalidEventType(t *testing.T) {
	handler, _ := setupTransferHandlerTest()

	req := httptest.NewRequest(http.MethodGet, "/transfers?event_type=swap", nil)
	rec := httptest.NewRecorder()

	handler.GetTransfers(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}

	var response map[string]string
	json.NewDecoder(rec.Body).Decode(&response)
	if response["error"] != "Invalid event type" {
		t.Errorf("unexpected error: %s", response["error"])
	}
}

func TestTransferHandler_GetTransfers_InvalidBlockRange(t *testing.T) {
	handler, _ := setupTransferHandlerTest()

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"non-numeric from_block", "?from_block=abc", "Invalid from_block"},
		{"negative from_block", "?from_block=-5", "Invalid from_block"},
		{"non-numeric to_block", "?to_block=xyz", "Invalid to_block"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/transfers"+tt.query, nil)
			rec := httptest.NewRecorder()

			handler.GetTransfers(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", rec.Code)
			}

			var response map[string]string
			json.NewDecoder(rec.Body).Decode(&response)
			if response["error"] != tt.want {
				t.Errorf("expected %q, got %q", tt.want, response["error"])
			}
		})
	}
}

func TestTransferHandler_GetTransfers_InvalidAddressFilter(t *testing.T) {
	handler, _ := setupTransferHandlerTest()

	req := httptest.NewRequest(http.MethodGet, "/transfers?address=0x1234", nil)
	rec := httptest.NewRecorder()

	handler.GetTransfers(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestTransferHandler_GetTokenTransfers(t *testing.T) {
	handler, transferRepo := setupTransferHandlerTest()

	transferRepo.AddTransfers(
		testutil.CreateTestTransfer(testutil.TransferWithID(1)),
		testutil.CreateTestTransfer(
			testutil.TransferWithID(2),
			testutil.TransferWithToken(testutil.BetaTokenAddress),
			testutil.TransferWithLogIndex(1),
		),
	)

	r := chi.NewRouter()
	r.Get("/tokens/{address}/transfers", handler.GetTokenTransfers)

	req := httptest.NewRequest(http.MethodGet, "/tokens/"+testutil.AlphaTokenAddress+"/transfers", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var response services.TransferListResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if len(response.Data) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(response.Data))
	}
	if response.Data[0].TokenAddress != testutil.AlphaTokenAddress {
		t.Errorf("unexpected token address %s", response.Data[0].TokenAddress)
	}
}

func TestTransferHandler_GetTokenTransfers_InvalidAddress(t *testing.T) {
	handler, _ := setupTransferHandlerTest()

	r := chi.NewRouter()
	r.Get("/tokens/{address}/transfers", handler.GetTokenTransfers)

	req := httptest.NewRequest(http.MethodGet, "/tokens/0xdead/transfers", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestTransferHandler_GetRecent(t *testing.T) {
	handler, transferRepo := setupTransferHandlerTest()

	for i := int64(1); i <= 5; i++ {
		transferRepo.AddTransfers(testutil.CreateTestTransfer(
			testutil.TransferWithID(i),
			testutil.TransferWithBlock(100+i),
		))
	}

	req := httptest.NewRequest(http.MethodGet, "/transfers/recent?limit=3", nil)
	rec := httptest.NewRecorder()

	handler.GetRecent(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var response struct {
		Data []services.TransferDTO `json:"data"`
	}
	json.NewDecoder(rec.Body).Decode(&response)

	if len(response.Data) != 3 {
		t.Fatalf("expected 3 transfers, got %d", len(response.Data))
	}
	if response.Data[0].BlockNumber != 105 {
		t.Errorf("expected newest first, got block %d", response.Data[0].BlockNumber)
	}
}

func TestTransferHandler_GetRecent_LimitClamped(t *testing.T) {
	handler, transferRepo := setupTransferHandlerTest()

	transferRepo.AddTransfers(testutil.CreateTestTransfer())

	// limit above the cap falls back to the default of 20
	req := httptest.NewRequest(http.MethodGet, "/transfers/recent?limit=9999", nil)
	rec := httptest.NewRecorder()

	handler.GetRecent(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestTransferHandler_MemoInResponse(t *testing.T) {
	handler, transferRepo := setupTransferHandlerTest()

	memo := "0x" + "00000000000000000000000000000000000000000000000000000000000000ff"
	transfer := testutil.CreateTestTransfer(testutil.TransferWithID(1))
	transfer.Memo = testutil.PointerTo(memo)
	transferRepo.AddTransfers(transfer)

	req := httptest.NewRequest(http.MethodGet, "/transfers", nil)
	rec := httptest.NewRecorder()

	handler.GetTransfers(rec, req)

	var response services.TransferListResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if len(response.Data) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(response.Data))
	}
	if response.Data[0].Memo == nil || *response.Data[0].Memo != memo {
		t.Errorf("expected memo carried through, got %v", response.Data[0].Memo)
	}
}

func TestTransferHandler_RegisterRoutes(t *testing.T) {
	handler, _ := setupTransferHandlerTest()

	r := chi.NewRouter()
	handler.RegisterRoutes(r)

	routes := []string{
		"/transfers",
		"/transfers/recent",
		"/tokens/" + testutil.AlphaTokenAddress + "/transfers",
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
