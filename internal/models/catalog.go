package models

import "time"

// Category and PaymentMethod form a catalog shared by every user.
type Category struct {
	ID        string          `firestore:"-" json:"id"`
	Name      string          `firestore:"name" json:"name" validate:"nonblank,max=60"`
	Icon      string          `firestore:"icon" json:"icon"`
	Color     string          `firestore:"color" json:"color"`
	Type      TransactionType `firestore:"type" json:"type" validate:"oneof=income expense"`
	CreatedAt time.Time       `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time       `firestore:"updatedAt" json:"updatedAt"`
}

var categoryMessages = map[string]string{
	"name": "category name is required and must be at most 60 characters",
	"type": "category type must be income or expense",
}

func (c *Category) Validate() error {
	return check(c, categoryMessages)
}

type CategoryPatch struct {
	Name  *string          `json:"name,omitempty" validate:"omitnil,nonblank,max=60"`
	Icon  *string          `json:"icon,omitempty"`
	Color *string          `json:"color,omitempty"`
	Type  *TransactionType `json:"type,omitempty" validate:"omitnil,oneof=income expense"`
}

func (p *CategoryPatch) Validate() error {
	return check(p, categoryMessages)
}

type MethodType string

const (
	MethodCreditCard   MethodType = "credit_card"
	MethodDebitCard    MethodType = "debit_card"
	MethodCash         MethodType = "cash"
	MethodPix          MethodType = "pix"
	MethodBankTransfer MethodType = "bank_transfer"
	MethodOther        MethodType = "other"
)

type PaymentMethod struct {
	ID        string     `firestore:"-" json:"id"`
	Name      string     `firestore:"name" json:"name" validate:"nonblank,max=60"`
	Icon      string     `firestore:"icon" json:"icon"`
	Type      MethodType `firestore:"type" json:"type" validate:"oneof=credit_card debit_card cash pix bank_transfer other"`
	CardID    string     `firestore:"cardId,omitempty" json:"cardId,omitempty"`
	CreatedAt time.Time  `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `firestore:"updatedAt" json:"updatedAt"`
}

var methodMessages = map[string]string{
	"name": "payment method name is required and must be at most 60 characters",
	"type": "invalid payment method type",
}

func (m *PaymentMethod) Validate() error {
	return check(m, methodMessages)
}

type MethodPatch struct {
	Name   *string     `json:"name,omitempty" validate:"omitnil,nonblank,max=60"`
	Icon   *string     `json:"icon,omitempty"`
	Type   *MethodType `json:"type,omitempty" validate:"omitnil,oneof=credit_card debit_card cash pix bank_transfer other"`
	CardID *string     `json:"cardId,omitempty"`
}

func (p *MethodPatch) Validate() error {
	return check(p, methodMessages)
}
