package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/GregMSThompson/wallet-api/internal/errs"
	"github.com/GregMSThompson/wallet-api/pkg/helpers"
)

func validTransaction() Transaction {
	return Transaction{
		UserID:     "u1",
		CategoryID: "salary",
		MethodID:   "pix",
		Value:      10000,
		Type:       TransactionIncome,
	}
}

func TestTransactionValidateFirstFailureWins(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Transaction)
		field  string
	}{
		{"valid", func(*Transaction) {}, ""},
		{"missing everything reports owner", func(tx *Transaction) { *tx = Transaction{} }, "userId"},
		{"blank owner", func(tx *Transaction) { tx.UserID = "  " }, "userId"},
		{"category before value", func(tx *Transaction) { tx.CategoryID = ""; tx.Value = 0 }, "categoryId"},
		{"method", func(tx *Transaction) { tx.MethodID = "" }, "methodId"},
		{"zero value", func(tx *Transaction) { tx.Value = 0 }, "value"},
		{"negative value", func(tx *Transaction) { tx.Value = -5 }, "value"},
		{"value before type", func(tx *Transaction) { tx.Value = 0; tx.Type = "transfer" }, "value"},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, "type"},
		{"long description", func(tx *Transaction) { tx.Description = strings.Repeat("a", 201) }, "description"},
		{"description at limit", func(tx *Transaction) { tx.Description = strings.Repeat("á", 200) }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)

			err := tx.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verr *errs.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Fatalf("field = %q, want %q (%s)", verr.Field, tt.field, verr.Message)
			}
		})
	}
}

func TestTransactionPatchValidate(t *testing.T) {
	if err := (&TransactionPatch{}).Validate(); err != nil {
		t.Fatalf("empty patch should be valid: %v", err)
	}

	bad := TransactionPatch{Value: helpers.Ptr(int64(0))}
	var verr *errs.ValidationError
	if err := bad.Validate(); !errors.As(err, &verr) || verr.Field != "value" {
		t.Fatalf("expected value error, got %v", err)
	}

	badType := TransactionPatch{Type: helpers.Ptr(TransactionType(""))}
	if err := badType.Validate(); !errors.As(err, &verr) || verr.Field != "type" {
		t.Fatalf("expected type error, got %v", err)
	}
}

func TestTransactionPatchApply(t *testing.T) {
	tx := validTransaction()
	p := TransactionPatch{
		Value:       helpers.Ptr(int64(2500)),
		Type:        helpers.Ptr(TransactionExpense),
		Description: helpers.Ptr("groceries"),
	}

	p.Apply(&tx)

	if tx.Value != 2500 || tx.Type != TransactionExpense || tx.Description != "groceries" {
		t.Fatalf("unexpected transaction %+v", tx)
	}
	if tx.UserID != "u1" || tx.CategoryID != "salary" {
		t.Fatalf("untouched fields changed: %+v", tx)
	}
}

func TestSignedValue(t *testing.T) {
	tx := validTransaction()
	if tx.SignedValue() != 10000 {
		t.Fatalf("income = %d", tx.SignedValue())
	}
	tx.Type = TransactionExpense
	if tx.SignedValue() != -10000 {
		t.Fatalf("expense = %d", tx.SignedValue())
	}
}
