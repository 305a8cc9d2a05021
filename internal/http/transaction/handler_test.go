package transaction_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborbank/ledger/internal/audit"
	auditStore "github.com/harborbank/ledger/internal/audit/store"
	"github.com/harborbank/ledger/internal/balance"
	txHandler "github.com/harborbank/ledger/internal/http/transaction"
	"github.com/harborbank/ledger/internal/transaction"
	txStore "github.com/harborbank/ledger/internal/transaction/store"
)

func newServer(t *testing.T) (http.Handler, *audit.Recorder) {
	t.Helper()

	recorder := audit.NewRecorder(auditStore.New())

	svc := transaction.NewService(
		txStore.New(),
		recorder,
		balance.NewStub(),
		transaction.Config{
			Sleep: func(context.Context, time.Duration) error { return nil },
		},
	)

	router := chi.NewRouter()
	router.Route("/transactions", txHandler.NewHandler(svc).Routes)

	return router, recorder
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func createBody(orderID string) map[string]any {
	return map[string]any{
		"order_id":    orderID,
		"account_id":  "ACC-654321",
		"amount":      "100.50",
		"type":        "CREDIT",
		"category":    "SALARY",
		"description": "monthly salary",
	}
}

func TestHandler_CreateAndGet(t *testing.T) {
	h, _ := newServer(t)

	rec := doJSON(t, h, http.MethodPost, "/transactions", createBody("ORD-123456"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, float64(1), created["id"])
	assert.Equal(t, "ORD-123456", created["order_id"])
	assert.Equal(t, float64(1), created["version"])

	rec = doJSON(t, h, http.MethodGet, "/transactions/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_CreateDuplicate(t *testing.T) {
	h, _ := newServer(t)

	rec := doJSON(t, h, http.MethodPost, "/transactions", createBody("ORD-123456"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/transactions", createBody("ORD-123456"))
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "TRANSACTION_CONFLICT", resp["code"])
}

func TestHandler_CreateInvalid(t *testing.T) {
	h, _ := newServer(t)

	body := createBody("not-an-order-id")
	body["amount"] = "0.001"

	rec := doJSON(t, h, http.MethodPost, "/transactions", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Code   string   `json:"code"`
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_TRANSACTION", resp.Code)
	assert.NotEmpty(t, resp.Errors)
}

func TestHandler_GetAbsent(t *testing.T) {
	h, _ := newServer(t)

	rec := doJSON(t, h, http.MethodGet, "/transactions/99", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/transactions/banana", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Update(t *testing.T) {
	h, recorder := newServer(t)

	rec := doJSON(t, h, http.MethodPost, "/transactions", createBody("ORD-123456"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPut, "/transactions/1", map[string]any{
		"category":    "BONUS",
		"description": "reclassified",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "BONUS", updated["category"])
	assert.Equal(t, float64(2), updated["version"])

	entries := recorder.FindByEntity(context.Background(), "Transaction", "1")
	require.Len(t, entries, 2) // create + update
	assert.Contains(t, entries[1].Details, `"SALARY"`)
	assert.Contains(t, entries[1].Details, `"BONUS"`)

	rec = doJSON(t, h, http.MethodPut, "/transactions/1", map[string]any{"category": "NOPE"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPut, "/transactions/99", map[string]any{"category": "BONUS"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Delete(t *testing.T) {
	h, recorder := newServer(t)

	rec := doJSON(t, h, http.MethodPost, "/transactions", createBody("ORD-123456"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/transactions/1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/transactions/1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/transactions/1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	entries := recorder.FindByEntity(context.Background(), "Transaction", "1")
	require.Len(t, entries, 2) // create + delete
	assert.Contains(t, entries[1].Details, "Deleted transaction: ")
	assert.Contains(t, entries[1].Details, "ORD-123456")
}

func TestHandler_List(t *testing.T) {
	h, _ := newServer(t)

	for i := 0; i < 15; i++ {
		orderID := fmt.Sprintf("ORD-%06d", 100000+i)
		rec := doJSON(t, h, http.MethodPost, "/transactions", createBody(orderID))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	var page struct {
		Items         []json.RawMessage `json:"items"`
		TotalElements int64             `json:"total_elements"`
		TotalPages    int               `json:"total_pages"`
	}

	rec := doJSON(t, h, http.MethodGet, "/transactions?pageNumber=1&pageSize=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Items, 5)
	assert.Equal(t, int64(15), page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)

	rec = doJSON(t, h, http.MethodGet, "/transactions?pageNumber=4&pageSize=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(15), page.TotalElements)

	rec = doJSON(t, h, http.MethodGet, "/transactions?pageNumber=0&pageSize=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(0), page.TotalElements)
}
