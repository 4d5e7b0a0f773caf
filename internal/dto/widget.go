package dto

import "github.com/GregMSThompson/wallet-api/internal/models"

// CategoryTotal is one slice of a category breakdown, in major units.
type CategoryTotal struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
	Icon  string  `json:"icon,omitempty"`
}

type ResumePoint struct {
	Date      string  `json:"date"`
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

type FinancialResume struct {
	TotalValue float64       `json:"totalValue"`
	Data       []ResumePoint `json:"data"`
}

type ResumeRequest struct {
	Type  models.TransactionType
	Start string
	End   string
}

type MonthlyAnalysis struct {
	MonthExpense    float64 `json:"monthExpense"`
	MonthIncome     float64 `json:"monthIncome"`
	DifferenceValue float64 `json:"differenceValue"`
	TotalValue      float64 `json:"totalValue"`
}
