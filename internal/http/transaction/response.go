package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/harborbank/ledger/internal/transaction"
)

type transactionResponse struct {
	ID          int64                `json:"id"`
	OrderID     string               `json:"order_id"`
	AccountID   string               `json:"account_id"`
	Amount      decimal.Decimal      `json:"amount"`
	Type        transaction.Type     `json:"type"`
	Category    transaction.Category `json:"category"`
	Description string               `json:"description,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	Version     int64                `json:"version"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		OrderID:     tx.OrderID,
		AccountID:   tx.AccountID,
		Amount:      tx.Amount,
		Type:        tx.Type,
		Category:    tx.Category,
		Description: tx.Description,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
		Version:     tx.Version,
	}
}

type pageResponse struct {
	Items         []transactionResponse `json:"items"`
	PageNumber    int                   `json:"page_number"`
	PageSize      int                   `json:"page_size"`
	TotalElements int64                 `json:"total_elements"`
	TotalPages    int                   `json:"total_pages"`
}

func toPageResponse(p *transaction.Page) pageResponse {
	items := make([]transactionResponse, len(p.Items))
	for i, tx := range p.Items {
		items[i] = toResponse(tx)
	}

	return pageResponse{
		Items:         items,
		PageNumber:    p.PageNumber,
		PageSize:      p.PageSize,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
	}
}

type errorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}
