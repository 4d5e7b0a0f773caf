package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/GregMSThompson/wallet-api/internal/cache"
	"github.com/GregMSThompson/wallet-api/internal/dto"
	"github.com/GregMSThompson/wallet-api/internal/errs"
	"github.com/GregMSThompson/wallet-api/internal/models"
)

var errBoom = errors.New("boom")

// fakeTxStore keeps transactions in memory and pages them like the
// Firestore store: newest first, one look-ahead item, unknown cursors start
// from the top.
type fakeTxStore struct {
	mu      sync.Mutex
	seq     int
	txs     map[string]*models.Transaction
	pages   int
	queries int
	err     error
}

func newFakeTxStore() *fakeTxStore {
	return &fakeTxStore{txs: make(map[string]*models.Transaction)}
}

func (f *fakeTxStore) Add(_ context.Context, tx *models.Transaction) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.seq++
	id := fmt.Sprintf("tx-%03d", f.seq)
	cp := *tx
	cp.ID = id
	f.txs[id] = &cp
	return id, nil
}

func (f *fakeTxStore) Get(_ context.Context, id string) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	tx, ok := f.txs[id]
	if !ok {
		return nil, nil
	}
	cp := *tx
	return &cp, nil
}

func (f *fakeTxStore) Update(_ context.Context, id string, patch *models.TransactionPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.txs[id]
	if !ok {
		return errs.NewNotFoundError("transaction not found")
	}
	patch.Apply(tx)
	return nil
}

func (f *fakeTxStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.txs, id)
	return nil
}

func (f *fakeTxStore) matching(fl dto.TransactionFilters) []*models.Transaction {
	var out []*models.Transaction
	for _, tx := range f.txs {
		if tx.UserID != fl.UserID {
			continue
		}
		if fl.CategoryID != "" && tx.CategoryID != fl.CategoryID {
			continue
		}
		if fl.MethodID != "" && tx.MethodID != fl.MethodID {
			continue
		}
		if fl.StartDate != nil && tx.CreatedAt.Before(*fl.StartDate) {
			continue
		}
		if fl.EndDate != nil && tx.CreatedAt.After(*fl.EndDate) {
			continue
		}
		if fl.MinValue != nil && tx.Value < *fl.MinValue {
			continue
		}
		if fl.MaxValue != nil && tx.Value > *fl.MaxValue {
			continue
		}
		cp := *tx
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (f *fakeTxStore) Page(_ context.Context, fl dto.TransactionFilters) ([]*models.Transaction, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages++
	if f.err != nil {
		return nil, false, f.err
	}

	all := f.matching(fl)
	if fl.LastDocID != "" {
		for i, tx := range all {
			if tx.ID == fl.LastDocID {
				all = all[i+1:]
				break
			}
		}
	}
	if len(all) > fl.PageSize+1 {
		all = all[:fl.PageSize+1]
	}
	hasMore := len(all) > fl.PageSize
	if hasMore {
		all = all[:fl.PageSize]
	}
	return all, hasMore, nil
}

func (f *fakeTxStore) Query(_ context.Context, q dto.TransactionQuery, handle func(*models.Transaction) error) error {
	f.mu.Lock()
	f.queries++
	if f.err != nil {
		f.mu.Unlock()
		return f.err
	}
	var out []*models.Transaction
	for _, tx := range f.txs {
		if tx.UserID != q.UserID {
			continue
		}
		if q.Type != "" && tx.Type != q.Type {
			continue
		}
		if q.From != nil && tx.CreatedAt.Before(*q.From) {
			continue
		}
		if q.To != nil && tx.CreatedAt.After(*q.To) {
			continue
		}
		cp := *tx
		out = append(out, &cp)
	}
	f.mu.Unlock()

	for _, tx := range out {
		if err := handle(tx); err != nil {
			return err
		}
	}
	return nil
}

// Watch emits one snapshot of the first page plus look-ahead.
func (f *fakeTxStore) Watch(ctx context.Context, fl dto.TransactionFilters, onChange func([]*models.Transaction) error) error {
	f.mu.Lock()
	all := f.matching(fl)
	f.mu.Unlock()
	if len(all) > fl.PageSize+1 {
		all = all[:fl.PageSize+1]
	}
	return onChange(all)
}

type fakeCategories struct {
	byID map[string]*models.Category
	err  map[string]error
}

func (f *fakeCategories) Get(_ context.Context, id string) (*models.Category, error) {
	if err := f.err[id]; err != nil {
		return nil, err
	}
	return f.byID[id], nil
}

type fakeMethods struct {
	byID map[string]*models.PaymentMethod
}

func (f *fakeMethods) Get(_ context.Context, id string) (*models.PaymentMethod, error) {
	return f.byID[id], nil
}

func testCategories() *fakeCategories {
	return &fakeCategories{byID: map[string]*models.Category{
		"food":   {ID: "food", Name: "Alimentação", Icon: "utensils", Type: models.TransactionExpense},
		"rent":   {ID: "rent", Name: "Moradia", Icon: "home", Type: models.TransactionExpense},
		"salary": {ID: "salary", Name: "Salário", Icon: "wallet", Type: models.TransactionIncome},
	}}
}

func testMethods() *fakeMethods {
	return &fakeMethods{byID: map[string]*models.PaymentMethod{
		"pix":  {ID: "pix", Name: "Pix", Type: models.MethodPix},
		"cash": {ID: "cash", Name: "Dinheiro", Type: models.MethodCash},
	}}
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache(clock *testClock) *cache.Cache {
	return cache.New(cache.NewMemory(100), time.Minute, clock.Now)
}

func saoPaulo() *time.Location {
	return time.FixedZone("BRT", -3*60*60)
}
