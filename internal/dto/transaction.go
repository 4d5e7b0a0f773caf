package dto

import (
	"time"

	"github.com/GregMSThompson/wallet-api/internal/models"
)

// TransactionFilters selects a page of an owner's transactions. Values are
// in cents. It doubles as the cache key filter set, so every field carries
// an omitempty tag.
type TransactionFilters struct {
	UserID     string     `json:"userId"`
	CategoryID string     `json:"categoryId,omitempty"`
	MethodID   string     `json:"methodId,omitempty"`
	StartDate  *time.Time `json:"startDate,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	MinValue   *int64     `json:"minValue,omitempty"`
	MaxValue   *int64     `json:"maxValue,omitempty"`
	PageSize   int        `json:"pageSize,omitempty"`
	LastDocID  string     `json:"lastDocId,omitempty"`
}

// Normalize swaps inverted value bounds and clamps the page size.
func (f *TransactionFilters) Normalize(defaultSize, maxSize int) {
	if f.MinValue != nil && f.MaxValue != nil && *f.MinValue > *f.MaxValue {
		f.MinValue, f.MaxValue = f.MaxValue, f.MinValue
	}
	if f.PageSize <= 0 {
		f.PageSize = defaultSize
	}
	if maxSize > 0 && f.PageSize > maxSize {
		f.PageSize = maxSize
	}
}

// TransactionQuery selects every matching transaction, unpaginated. Used by
// the aggregations.
type TransactionQuery struct {
	UserID string
	Type   models.TransactionType
	From   *time.Time
	To     *time.Time
}

type TransactionView struct {
	models.Transaction
	CategoryName     *string `json:"categoryName"`
	MethodName       *string `json:"methodName"`
	CreatedAtDisplay string  `json:"createdAtDisplay"`
}

type PaginatedTransactions struct {
	Transactions []TransactionView `json:"transactions"`
	LastDocID    string            `json:"lastDocId,omitempty"`
	HasMore      bool              `json:"hasMore"`
}

type CreateTransactionRequest struct {
	Type        models.TransactionType `json:"type"`
	Value       int64                  `json:"value"`
	CategoryID  string                 `json:"categoryId"`
	MethodID    string                 `json:"methodId"`
	Description string                 `json:"description"`
	FileURL     string                 `json:"fileUrl,omitempty"`
	CreatedAt   *time.Time             `json:"createdAt,omitempty"`
}

type CreatedResponse struct {
	ID string `json:"id"`
}

type BalanceResponse struct {
	Balance   float64 `json:"balance"`
	Income    float64 `json:"income"`
	Expense   float64 `json:"expense"`
	Formatted string  `json:"formatted"`
}
