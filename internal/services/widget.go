package services

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/GregMSThompson/wallet-api/internal/dto"
	"github.com/GregMSThompson/wallet-api/internal/errs"
	"github.com/GregMSThompson/wallet-api/internal/models"
	"github.com/GregMSThompson/wallet-api/internal/money"
	"github.com/GregMSThompson/wallet-api/pkg/logger"
)

const (
	uncategorized    = "Sem categoria"
	biggestEntries   = 3
	monthlyWindow    = 30
	singleShadeColor = "#7a60602f"
)

type transactionQuerier interface {
	Query(ctx context.Context, q dto.TransactionQuery, handle func(*models.Transaction) error) error
}

// widgetService computes the dashboard aggregations. Sums are kept in
// cents and converted once at the end.
type widgetService struct {
	transactions transactionQuerier
	categories   categoryLookup
	loc          *time.Location
	clockNow     func() time.Time
}

func NewWidgetService(transactions transactionQuerier, categories categoryLookup, loc *time.Location) *widgetService {
	if loc == nil {
		loc = time.UTC
	}
	return &widgetService{
		transactions: transactions,
		categories:   categories,
		loc:          loc,
		clockNow:     time.Now,
	}
}

// SpendingByCategory totals the owner's expenses per category, largest
// first, each with a shade of the widget gradient.
func (s *widgetService) SpendingByCategory(ctx context.Context, uid string) ([]dto.CategoryTotal, error) {
	totals, err := s.byCategory(ctx, uid, models.TransactionExpense)
	if err != nil {
		return nil, err
	}
	for i := range totals {
		totals[i].Icon = ""
		totals[i].Color = shade(i, len(totals))
	}
	return totals, nil
}

// BiggestEntries returns the three categories with the largest income.
func (s *widgetService) BiggestEntries(ctx context.Context, uid string) ([]dto.CategoryTotal, error) {
	totals, err := s.byCategory(ctx, uid, models.TransactionIncome)
	if err != nil {
		return nil, err
	}
	if len(totals) > biggestEntries {
		totals = totals[:biggestEntries]
	}
	return totals, nil
}

func (s *widgetService) byCategory(ctx context.Context, uid string, typ models.TransactionType) ([]dto.CategoryTotal, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, errs.NewFieldError("userId", "user id is required")
	}

	sums := make(map[string]int64)
	err := s.transactions.Query(ctx, dto.TransactionQuery{UserID: uid, Type: typ}, func(tx *models.Transaction) error {
		if tx.CategoryID == "" {
			return nil
		}
		sums[tx.CategoryID] += tx.Value
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Error("failed to aggregate by category", "type", typ, "error", err)
		return nil, err
	}

	ids := make([]string, 0, len(sums))
	for id := range sums {
		ids = append(ids, id)
	}
	cats := lookupAll(ctx, "category", ids, s.categories.Get)

	out := make([]dto.CategoryTotal, 0, len(sums))
	for id, cents := range sums {
		item := dto.CategoryTotal{ID: id, Name: uncategorized, Value: money.ToMajor(cents)}
		if c, ok := cats[id]; ok {
			item.Name = c.Name
			item.Icon = c.Icon
		}
		out = append(out, item)
	}
	slices.SortFunc(out, func(a, b dto.CategoryTotal) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// shade interpolates from #5f6b6b to #7a1b1b across total items.
func shade(index, total int) string {
	if total <= 1 {
		return singleShadeColor
	}
	ratio := float64(index) / float64(total-1)
	lerp := func(from, to int) int {
		return int(math.Round(float64(from) + float64(to-from)*ratio))
	}
	return fmt.Sprintf("#%02x%02x%02x2f", lerp(0x5f, 0x7a), lerp(0x6b, 0x1b), lerp(0x6b, 0x1b))
}

// FinancialResume buckets one transaction type per local calendar day over
// the inclusive [start, end] window.
func (s *widgetService) FinancialResume(ctx context.Context, uid string, req dto.ResumeRequest) (*dto.FinancialResume, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, errs.NewFieldError("userId", "user id is required")
	}
	if !req.Type.Valid() {
		return nil, errs.NewFieldError("type", "type must be income or expense")
	}
	start, err := time.ParseInLocation(isoDateLayout, req.Start, s.loc)
	if err != nil {
		return nil, errs.NewFieldError("start", "start must be a YYYY-MM-DD date")
	}
	end, err := time.ParseInLocation(isoDateLayout, req.End, s.loc)
	if err != nil {
		return nil, errs.NewFieldError("end", "end must be a YYYY-MM-DD date")
	}
	if end.Before(start) {
		return nil, errs.NewFieldError("end", "end must not be before start")
	}

	from, to := startOfDay(start, s.loc), endOfDay(end, s.loc)
	buckets := make(map[string]int64)
	err = s.transactions.Query(ctx, dto.TransactionQuery{UserID: uid, Type: req.Type, From: &from, To: &to}, func(tx *models.Transaction) error {
		if tx.CreatedAt.Before(from) || tx.CreatedAt.After(to) {
			return nil
		}
		buckets[tx.CreatedAt.In(s.loc).Format(isoDateLayout)] += tx.Value
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Error("failed to build financial resume", "error", err)
		return nil, err
	}

	var total int64
	points := make([]dto.ResumePoint, 0, len(buckets))
	for day, cents := range buckets {
		midnight, _ := time.ParseInLocation(isoDateLayout, day, s.loc)
		points = append(points, dto.ResumePoint{
			Date:      day,
			Timestamp: midnight.UnixMilli(),
			Value:     money.ToMajor(cents),
		})
		total += cents
	}
	slices.SortFunc(points, func(a, b dto.ResumePoint) int { return cmp.Compare(a.Date, b.Date) })

	return &dto.FinancialResume{TotalValue: money.ToMajor(total), Data: points}, nil
}

// MonthlyAnalysis covers the trailing thirty local days, today included.
func (s *widgetService) MonthlyAnalysis(ctx context.Context, uid string) (*dto.MonthlyAnalysis, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, errs.NewFieldError("userId", "user id is required")
	}

	today := startOfDay(s.clockNow(), s.loc)
	from := today.AddDate(0, 0, -(monthlyWindow - 1))
	to := endOfDay(today, s.loc)

	var income, expense int64
	err := s.transactions.Query(ctx, dto.TransactionQuery{UserID: uid, From: &from, To: &to}, func(tx *models.Transaction) error {
		switch tx.Type {
		case models.TransactionIncome:
			income += tx.Value
		case models.TransactionExpense:
			expense += tx.Value
		}
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Error("failed to build monthly analysis", "error", err)
		return nil, err
	}

	return &dto.MonthlyAnalysis{
		MonthExpense:    money.ToMajor(expense),
		MonthIncome:     money.ToMajor(income),
		DifferenceValue: money.ToMajor(income - expense),
		TotalValue:      money.ToMajor(income + expense),
	}, nil
}
