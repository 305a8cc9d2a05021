package transaction

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/harborbank/ledger/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createTransactionRequest struct {
	OrderID     string          `json:"order_id"`
	AccountID   string          `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}

	tx, err := h.svc.Create(r.Context(), transaction.CreateParams{
		OrderID:     req.OrderID,
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(tx))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(tx))
}

type updateTransactionRequest struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}

	tx, err := h.svc.Update(r.Context(), id, transaction.UpdateParams{
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	pageNumber := queryInt(r, "pageNumber", 1)
	pageSize := queryInt(r, "pageSize", 20)

	page, err := h.svc.List(r.Context(), pageNumber, pageSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPageResponse(page))
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid transaction id", nil)
		return 0, false
	}

	return id, true
}

func queryInt(r *http.Request, name string, def int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}

	return v
}

func writeServiceError(w http.ResponseWriter, err error) {
	var invalid *transaction.InvalidError
	if errors.As(err, &invalid) {
		writeError(w, http.StatusBadRequest, "INVALID_TRANSACTION", "transaction validation failed", invalid.Violations)
		return
	}

	var conflict *transaction.VersionConflictError
	if errors.As(err, &conflict) {
		writeError(w, http.StatusConflict, "CONCURRENT_UPDATE_CONFLICT", conflict.Error(), nil)
		return
	}

	switch {
	case errors.Is(err, transaction.ErrNotFound):
		writeError(w, http.StatusNotFound, "TRANSACTION_NOT_FOUND", "transaction not found", nil)
	case errors.Is(err, transaction.ErrDuplicateOrderID):
		writeError(w, http.StatusConflict, "TRANSACTION_CONFLICT", err.Error(), nil)
	case errors.Is(err, transaction.ErrInsufficientBalance):
		writeError(w, http.StatusBadRequest, "INSUFFICIENT_BALANCE", err.Error(), nil)
	default:
		slog.Error("unhandled service error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error", nil)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string, violations []string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message, Errors: violations})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
