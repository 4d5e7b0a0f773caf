package models

import (
	"time"
)

type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// Transaction values are stored in cents and are always positive; the
// sign comes from Type.
type Transaction struct {
	ID          string          `firestore:"-" json:"id"`
	UserID      string          `firestore:"userId" json:"userId" validate:"nonblank"`
	CategoryID  string          `firestore:"categoryId" json:"categoryId" validate:"nonblank"`
	MethodID    string          `firestore:"methodId" json:"methodId" validate:"nonblank"`
	Value       int64           `firestore:"value" json:"value" validate:"gt=0"`
	Type        TransactionType `firestore:"type" json:"type" validate:"oneof=income expense"`
	Description string          `firestore:"description" json:"description" validate:"max=200"`
	FileURL     string          `firestore:"fileUrl,omitempty" json:"fileUrl,omitempty"`
	CreatedAt   time.Time       `firestore:"createdAt" json:"createdAt"`
}

var transactionMessages = map[string]string{
	"userId":      "user id is required",
	"categoryId":  "category is required",
	"methodId":    "payment method is required",
	"value":       "value must be greater than zero",
	"type":        "type must be income or expense",
	"description": "description must be at most 200 characters",
}

func (t *Transaction) Validate() error {
	return check(t, transactionMessages)
}

// SignedValue is the balance contribution of the transaction in cents.
func (t *Transaction) SignedValue() int64 {
	if t.Type == TransactionIncome {
		return t.Value
	}
	return -t.Value
}

// TransactionPatch holds the mutable fields of a transaction. Nil fields are
// left untouched. The owner is never patchable.
type TransactionPatch struct {
	CategoryID  *string          `json:"categoryId,omitempty" validate:"omitnil,nonblank"`
	MethodID    *string          `json:"methodId,omitempty" validate:"omitnil,nonblank"`
	Value       *int64           `json:"value,omitempty" validate:"omitnil,gt=0"`
	Type        *TransactionType `json:"type,omitempty" validate:"omitnil,oneof=income expense"`
	Description *string          `json:"description,omitempty" validate:"omitnil,max=200"`
	FileURL     *string          `json:"fileUrl,omitempty"`
	CreatedAt   *time.Time       `json:"createdAt,omitempty"`
}

func (p *TransactionPatch) Validate() error {
	return check(p, transactionMessages)
}

func (p *TransactionPatch) Empty() bool {
	return p.CategoryID == nil && p.MethodID == nil && p.Value == nil &&
		p.Type == nil && p.Description == nil && p.FileURL == nil && p.CreatedAt == nil
}

// Apply copies the set fields onto t.
func (p *TransactionPatch) Apply(t *Transaction) {
	if p.CategoryID != nil {
		t.CategoryID = *p.CategoryID
	}
	if p.MethodID != nil {
		t.MethodID = *p.MethodID
	}
	if p.Value != nil {
		t.Value = *p.Value
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.FileURL != nil {
		t.FileURL = *p.FileURL
	}
	if p.CreatedAt != nil {
		t.CreatedAt = *p.CreatedAt
	}
}
