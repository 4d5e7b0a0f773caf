package models

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

type CardType string

const (
	CardBlack         CardType = "Black"
	CardPlatinum      CardType = "Platinum"
	CardGold          CardType = "Gold"
	CardStandard      CardType = "Standard"
	CardInternational CardType = "International"
	CardNacional      CardType = "Nacional"
)

type CardFlag string

const (
	FlagVisa       CardFlag = "Visa"
	FlagMasterCard CardFlag = "MasterCard"
	FlagElo        CardFlag = "Elo"
)

// Card is a user's payment card. CVV is held in clear only in memory; the
// stored form is SealedCVV.
type Card struct {
	ID        string    `firestore:"-" json:"id"`
	UserID    string    `firestore:"userId" json:"userId" validate:"nonblank"`
	Number    string    `firestore:"number" json:"number" validate:"nonblank"`
	Name      string    `firestore:"name" json:"name" validate:"nonblank"`
	CVV       int       `firestore:"-" json:"cvv,omitempty" validate:"gte=100,lte=9999"`
	ExpiredAt string    `firestore:"expiredAt" json:"expiredAt" validate:"expiry"`
	Type      CardType  `firestore:"type" json:"type" validate:"oneof=Black Platinum Gold Standard International Nacional"`
	Flag      CardFlag  `firestore:"flag" json:"flag" validate:"oneof=Visa MasterCard Elo"`
	Blocked   bool      `firestore:"blocked" json:"blocked"`
	Principal bool      `firestore:"principal" json:"principal"`
	SealedCVV string    `firestore:"cvv" json:"-"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
}

var cardMessages = map[string]string{
	"userId":    "user id is required",
	"number":    "card number is required",
	"name":      "card name is required",
	"cvv":       "cvv must be between 100 and 9999",
	"expiredAt": "invalid expiry date",
	"type":      "invalid card type",
	"flag":      "flag must be Visa, MasterCard or Elo",
}

// Validate checks the structure of the card only. Expiry against the clock
// is IsExpired.
func (c *Card) Validate() error {
	return check(c, cardMessages)
}

// IsExpired reports whether the MM/YY expiry is before the month of now.
// Unparseable expiries count as expired.
func (c *Card) IsExpired(now time.Time) bool {
	m := expiryPattern.FindStringSubmatch(c.ExpiredAt)
	if m == nil {
		return true
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])

	currentYear := now.Year() % 100
	currentMonth := int(now.Month())

	if year != currentYear {
		return year < currentYear
	}
	return month < currentMonth
}

// MaskNumber keeps the last four digits of a card number.
func MaskNumber(number string) string {
	digits := make([]rune, 0, len(number))
	for _, r := range number {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}
	if len(digits) <= 4 {
		return string(digits)
	}
	return strings.Repeat("*", 4) + " " + string(digits[len(digits)-4:])
}

// CardPatch holds the user-editable fields of a card. Principal is changed
// only through the principal operation.
type CardPatch struct {
	Number    *string   `json:"number,omitempty"`
	Name      *string   `json:"name,omitempty"`
	CVV       *int      `json:"cvv,omitempty"`
	ExpiredAt *string   `json:"expiredAt,omitempty"`
	Type      *CardType `json:"type,omitempty"`
	Flag      *CardFlag `json:"flag,omitempty"`
	Blocked   *bool     `json:"blocked,omitempty"`
}

func (p *CardPatch) Apply(c *Card) {
	if p.Number != nil {
		c.Number = *p.Number
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.CVV != nil {
		c.CVV = *p.CVV
	}
	if p.ExpiredAt != nil {
		c.ExpiredAt = *p.ExpiredAt
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Flag != nil {
		c.Flag = *p.Flag
	}
	if p.Blocked != nil {
		c.Blocked = *p.Blocked
	}
}
