package dto

import "github.com/GregMSThompson/wallet-api/internal/models"

type CardFilters struct {
	UserID    string           `json:"userId"`
	Type      *models.CardType `json:"type,omitempty"`
	Blocked   *bool            `json:"blocked,omitempty"`
	Principal *bool            `json:"principal,omitempty"`
}

type CreateCardRequest struct {
	Number    string          `json:"number"`
	Name      string          `json:"name"`
	CVV       int             `json:"cvv"`
	ExpiredAt string          `json:"expiredAt"`
	Type      models.CardType `json:"type"`
	Flag      models.CardFlag `json:"flag"`
	Blocked   bool            `json:"blocked"`
	Principal bool            `json:"principal"`
}
