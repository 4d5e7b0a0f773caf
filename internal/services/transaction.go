package services

import (
	"context"
	"strings"
	"time"

	"github.com/GregMSThompson/wallet-api/internal/cache"
	"github.com/GregMSThompson/wallet-api/internal/dto"
	"github.com/GregMSThompson/wallet-api/internal/errs"
	"github.com/GregMSThompson/wallet-api/internal/models"
	"github.com/GregMSThompson/wallet-api/internal/money"
	"github.com/GregMSThompson/wallet-api/pkg/helpers"
	"github.com/GregMSThompson/wallet-api/pkg/logger"
)

type transactionStore interface {
	Add(ctx context.Context, tx *models.Transaction) (string, error)
	Get(ctx context.Context, id string) (*models.Transaction, error)
	Update(ctx context.Context, id string, patch *models.TransactionPatch) error
	Delete(ctx context.Context, id string) error
	Page(ctx context.Context, f dto.TransactionFilters) ([]*models.Transaction, bool, error)
	Query(ctx context.Context, q dto.TransactionQuery, handle func(*models.Transaction) error) error
	Watch(ctx context.Context, f dto.TransactionFilters, onChange func([]*models.Transaction) error) error
}

// PageLimits bounds the transaction page size.
type PageLimits struct {
	Default int
	Max     int
}

type transactionService struct {
	store      transactionStore
	categories categoryLookup
	methods    methodLookup
	cache      *cache.Cache
	loc        *time.Location
	limits     PageLimits
	clockNow   func() time.Time
}

func NewTransactionService(store transactionStore, categories categoryLookup, methods methodLookup, c *cache.Cache, loc *time.Location, limits PageLimits) *transactionService {
	if loc == nil {
		loc = time.UTC
	}
	return &transactionService{
		store:      store,
		categories: categories,
		methods:    methods,
		cache:      c,
		loc:        loc,
		limits:     limits,
		clockNow:   time.Now,
	}
}

func (s *transactionService) Add(ctx context.Context, uid string, req dto.CreateTransactionRequest) (string, error) {
	log := logger.FromContext(ctx)

	tx := &models.Transaction{
		UserID:      uid,
		CategoryID:  req.CategoryID,
		MethodID:    req.MethodID,
		Value:       req.Value,
		Type:        req.Type,
		Description: strings.TrimSpace(req.Description),
		FileURL:     req.FileURL,
		CreatedAt:   helpers.ValueOr(req.CreatedAt, s.clockNow()),
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = s.clockNow()
	}
	if err := tx.Validate(); err != nil {
		return "", err
	}

	id, err := s.store.Add(ctx, tx)
	if err != nil {
		log.Error("failed to add transaction", "error", err)
		return "", err
	}
	s.invalidate(ctx, uid)

	log.Info("transaction created", "transaction_id", id, "type", tx.Type, "value", tx.Value)
	return id, nil
}

func (s *transactionService) Get(ctx context.Context, uid, id string) (*dto.TransactionView, error) {
	tx, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil || tx.UserID != uid {
		return nil, errs.NewNotFoundError("transaction not found")
	}
	views := s.views(ctx, []*models.Transaction{tx})
	return &views[0], nil
}

// owned loads a transaction for mutation by uid.
func (s *transactionService) owned(ctx context.Context, uid, id string) (*models.Transaction, error) {
	tx, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, errs.NewNotFoundError("transaction not found")
	}
	if tx.UserID != uid {
		return nil, errs.NewForbiddenError("transaction belongs to another user")
	}
	return tx, nil
}

func (s *transactionService) Update(ctx context.Context, uid, id string, patch *models.TransactionPatch) error {
	log := logger.FromContext(ctx)

	if err := patch.Validate(); err != nil {
		return err
	}
	if patch.Empty() {
		return errs.NewValidationError("nothing to update")
	}
	if patch.Description != nil {
		patch.Description = helpers.Ptr(strings.TrimSpace(*patch.Description))
	}

	if _, err := s.owned(ctx, uid, id); err != nil {
		return err
	}
	if err := s.store.Update(ctx, id, patch); err != nil {
		log.Error("failed to update transaction", "transaction_id", id, "error", err)
		return err
	}
	s.invalidate(ctx, uid)

	log.Info("transaction updated", "transaction_id", id)
	return nil
}

func (s *transactionService) Delete(ctx context.Context, uid, id string) error {
	log := logger.FromContext(ctx)

	if _, err := s.owned(ctx, uid, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		log.Error("failed to delete transaction", "transaction_id", id, "error", err)
		return err
	}
	s.invalidate(ctx, uid)

	log.Info("transaction deleted", "transaction_id", id)
	return nil
}

// List returns one page of the owner's transactions, newest first.
func (s *transactionService) List(ctx context.Context, f dto.TransactionFilters) (*dto.PaginatedTransactions, error) {
	f, err := s.normalize(f)
	if err != nil {
		return nil, err
	}

	key, keyErr := cache.NewKey(cache.EntityTransactions, f.UserID, f)
	if keyErr == nil {
		if page, ok := cache.GetJSON[dto.PaginatedTransactions](ctx, s.cache, key); ok {
			return &page, nil
		}
	}

	txs, hasMore, err := s.store.Page(ctx, f)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list transactions", "error", err)
		return nil, err
	}

	page := &dto.PaginatedTransactions{
		Transactions: s.views(ctx, txs),
		HasMore:      hasMore,
	}
	if n := len(txs); n > 0 {
		page.LastDocID = txs[n-1].ID
	}

	if keyErr == nil {
		cache.PutJSON(ctx, s.cache, key, page)
	}
	return page, nil
}

func (s *transactionService) normalize(f dto.TransactionFilters) (dto.TransactionFilters, error) {
	f.UserID = strings.TrimSpace(f.UserID)
	if f.UserID == "" {
		return f, errs.NewFieldError("userId", "user id is required")
	}
	f.Normalize(s.limits.Default, s.limits.Max)
	if f.EndDate != nil {
		end := endOfDay(*f.EndDate, s.loc)
		f.EndDate = &end
	}
	return f, nil
}

// Watch streams the live first page to emit until ctx ends.
func (s *transactionService) Watch(ctx context.Context, f dto.TransactionFilters, emit func(*dto.PaginatedTransactions) error) error {
	f, err := s.normalize(f)
	if err != nil {
		return err
	}
	f.LastDocID = ""

	return s.store.Watch(ctx, f, func(txs []*models.Transaction) error {
		hasMore := len(txs) > f.PageSize
		if hasMore {
			txs = txs[:f.PageSize]
		}
		page := &dto.PaginatedTransactions{Transactions: s.views(ctx, txs), HasMore: hasMore}
		if n := len(txs); n > 0 {
			page.LastDocID = txs[n-1].ID
		}
		return emit(page)
	})
}

// CalculateBalance sums the owner's income minus expenses.
func (s *transactionService) CalculateBalance(ctx context.Context, uid string) (*dto.BalanceResponse, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, errs.NewFieldError("userId", "user id is required")
	}

	key, keyErr := cache.NewKey(cache.EntityBalance, uid, nil)
	if keyErr == nil {
		if b, ok := cache.GetJSON[dto.BalanceResponse](ctx, s.cache, key); ok {
			return &b, nil
		}
	}

	var income, expense int64
	err := s.store.Query(ctx, dto.TransactionQuery{UserID: uid}, func(tx *models.Transaction) error {
		switch tx.Type {
		case models.TransactionIncome:
			income += tx.Value
		case models.TransactionExpense:
			expense += tx.Value
		}
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Error("failed to calculate balance", "error", err)
		return nil, err
	}

	net := income - expense
	b := &dto.BalanceResponse{
		Balance:   money.ToMajor(net),
		Income:    money.ToMajor(income),
		Expense:   money.ToMajor(expense),
		Formatted: money.Format(net),
	}
	if keyErr == nil {
		cache.PutJSON(ctx, s.cache, key, b)
	}
	return b, nil
}

func (s *transactionService) invalidate(ctx context.Context, uid string) {
	s.cache.InvalidateOwner(ctx, cache.EntityTransactions, uid)
	s.cache.InvalidateOwner(ctx, cache.EntityBalance, uid)
}

// views adds the category and method names and the display date.
func (s *transactionService) views(ctx context.Context, txs []*models.Transaction) []dto.TransactionView {
	catIDs := make([]string, 0, len(txs))
	methodIDs := make([]string, 0, len(txs))
	for _, tx := range txs {
		catIDs = append(catIDs, tx.CategoryID)
		methodIDs = append(methodIDs, tx.MethodID)
	}

	cats := lookupAll(ctx, "category", catIDs, s.categories.Get)
	methods := lookupAll(ctx, "method", methodIDs, s.methods.Get)

	out := make([]dto.TransactionView, 0, len(txs))
	for _, tx := range txs {
		v := dto.TransactionView{
			Transaction:      *tx,
			CreatedAtDisplay: tx.CreatedAt.In(s.loc).Format(displayDateLayout),
		}
		if c, ok := cats[tx.CategoryID]; ok {
			name := c.Name
			v.CategoryName = &name
		}
		if m, ok := methods[tx.MethodID]; ok {
			name := m.Name
			v.MethodName = &name
		}
		out = append(out, v)
	}
	return out
}
