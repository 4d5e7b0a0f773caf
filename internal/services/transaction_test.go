package services

import (
	"errors"
	"testing"
	"time"

	"github.com/GregMSThompson/wallet-api/internal/dto"
	"github.com/GregMSThompson/wallet-api/internal/errs"
	"github.com/GregMSThompson/wallet-api/internal/models"
	"github.com/GregMSThompson/wallet-api/pkg/helpers"
)

var txBase = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTxService(store *fakeTxStore, clock *testClock) *transactionService {
	svc := NewTransactionService(store, testCategories(), testMethods(), newTestCache(clock), saoPaulo(), PageLimits{Default: 10, Max: 100})
	svc.clockNow = clock.Now
	return svc
}

func seedTx(t *testing.T, store *fakeTxStore, uid string, n int) {
	t.Helper()
	ctx := helpers.TestCtx()
	for i := 0; i < n; i++ {
		_, err := store.Add(ctx, &models.Transaction{
			UserID:     uid,
			CategoryID: "food",
			MethodID:   "pix",
			Value:      int64(100 * (i + 1)),
			Type:       models.TransactionExpense,
			CreatedAt:  txBase.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func validTxRequest() dto.CreateTransactionRequest {
	return dto.CreateTransactionRequest{
		Type:        models.TransactionExpense,
		Value:       1250,
		CategoryID:  "food",
		MethodID:    "pix",
		Description: "  lunch  ",
	}
}

func TestTransactionAddDefaultsCreatedAt(t *testing.T) {
	store := newFakeTxStore()
	clock := &testClock{now: txBase}
	svc := newTxService(store, clock)

	id, err := svc.Add(helpers.TestCtx(), "u1", validTxRequest())
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	got := store.txs[id]
	if !got.CreatedAt.Equal(txBase) {
		t.Fatalf("createdAt = %v, want %v", got.CreatedAt, txBase)
	}
	if got.Description != "lunch" {
		t.Fatalf("description = %q, want trimmed", got.Description)
	}
	if got.UserID != "u1" {
		t.Fatalf("userId = %q", got.UserID)
	}
}

func TestTransactionAddValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*dto.CreateTransactionRequest)
		field string
	}{
		{"zero value", func(r *dto.CreateTransactionRequest) { r.Value = 0 }, "value"},
		{"missing category", func(r *dto.CreateTransactionRequest) { r.CategoryID = " " }, "categoryId"},
		{"missing method", func(r *dto.CreateTransactionRequest) { r.MethodID = "" }, "methodId"},
		{"bad type", func(r *dto.CreateTransactionRequest) { r.Type = "transfer" }, "type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeTxStore()
			svc := newTxService(store, &testClock{now: txBase})
			req := validTxRequest()
			tt.edit(&req)

			_, err := svc.Add(helpers.TestCtx(), "u1", req)
			var vErr *errs.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Field != tt.field {
				t.Fatalf("field = %q, want %q", vErr.Field, tt.field)
			}
			if len(store.txs) != 0 {
				t.Fatalf("invalid transaction was stored")
			}
		})
	}
}

func TestTransactionListPaginates(t *testing.T) {
	store := newFakeTxStore()
	seedTx(t, store, "u1", 25)
	svc := newTxService(store, &testClock{now: txBase})
	ctx := helpers.TestCtx()

	var (
		cursor string
		sizes  []int
		more   []bool
		seen   = map[string]bool{}
	)
	for {
		page, err := svc.List(ctx, dto.TransactionFilters{UserID: "u1", PageSize: 10, LastDocID: cursor})
		if err != nil {
			t.Fatalf("List returned error: %v", err)
		}
		sizes = append(sizes, len(page.Transactions))
		more = append(more, page.HasMore)
		for _, v := range page.Transactions {
			if seen[v.ID] {
				t.Fatalf("transaction %s returned twice", v.ID)
			}
			seen[v.ID] = true
		}
		if !page.HasMore {
			break
		}
		cursor = page.LastDocID
	}

	if len(sizes) != 3 || sizes[0] != 10 || sizes[1] != 10 || sizes[2] != 5 {
		t.Fatalf("page sizes = %v, want [10 10 5]", sizes)
	}
	if !more[0] || !more[1] || more[2] {
		t.Fatalf("hasMore = %v, want [true true false]", more)
	}
	if len(seen) != 25 {
		t.Fatalf("saw %d transactions, want 25", len(seen))
	}
}

func TestTransactionListOrderAndNames(t *testing.T) {
	store := newFakeTxStore()
	seedTx(t, store, "u1", 3)
	svc := newTxService(store, &testClock{now: txBase})

	page, err := svc.List(helpers.TestCtx(), dto.TransactionFilters{UserID: "u1"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(page.Transactions) != 3 || page.HasMore {
		t.Fatalf("unexpected page: %d items, hasMore=%v", len(page.Transactions), page.HasMore)
	}
	for i := 1; i < len(page.Transactions); i++ {
		if page.Transactions[i-1].CreatedAt.Before(page.Transactions[i].CreatedAt) {
			t.Fatalf("transactions not ordered newest first")
		}
	}
	first := page.Transactions[0]
	if first.CategoryName == nil || *first.CategoryName != "Alimentação" {
		t.Fatalf("categoryName = %v", first.CategoryName)
	}
	if first.MethodName == nil || *first.MethodName != "Pix" {
		t.Fatalf("methodName = %v", first.MethodName)
	}
	if first.CreatedAtDisplay != "10/03/2024" {
		t.Fatalf("createdAtDisplay = %q", first.CreatedAtDisplay)
	}
	if page.LastDocID != page.Transactions[2].ID {
		t.Fatalf("lastDocId = %q, want %q", page.LastDocID, page.Transactions[2].ID)
	}
}

func TestTransactionListExactPageHasNoMore(t *testing.T) {
	store := newFakeTxStore()
	seedTx(t, store, "u1", 10)
	svc := newTxService(store, &testClock{now: txBase})

	page, err := svc.List(helpers.TestCtx(), dto.TransactionFilters{UserID: "u1", PageSize: 10})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(page.Transactions) != 10 || page.HasMore {
		t.Fatalf("got %d items hasMore=%v, want 10 false", len(page.Transactions), page.HasMore)
	}
}

func TestTransactionListEmpty(t *testing.T) {
	svc := newTxService(newFakeTxStore(), &testClock{now: txBase})

	page, err := svc.List(helpers.TestCtx(), dto.TransactionFilters{UserID: "nobody"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(page.Transactions) != 0 || page.HasMore || page.LastDocID != "" {
		t.Fatalf("unexpected empty page: %+v", page)
	}
}

func TestTransactionListRequiresUser(t *testing.T) {
	svc := newTxService(newFakeTxStore(), &testClock{now: txBase})

	_, err := svc.List(helpers.TestCtx(), dto.TransactionFilters{UserID: "  "})
	var vErr *errs.ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "userId" {
		t.Fatalf("expected userId ValidationError, got %v", err)
	}
}

func TestTransactionListSwapsValueBounds(t *testing.T) {
	store := newFakeTxStore()
	seedTx(t, store, "u1", 5) // values 100..500
	svc := newTxService(store, &testClock{now: txBase})

	page, err := svc.List(helpers.TestCtx(), dto.TransactionFilters{
		UserID:   "u1",
		MinValue: helpers.Ptr(int64(400)),
		MaxValue: helpers.Ptr(int64(200)),
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(page.Transactions) != 3 {
		t.Fatalf("got %d transactions, want 3", len(page.Transactions))
	}
	for _, v := range page.Transactions {
		if v.Value < 200 || v.Value > 400 {
			t.Fatalf("value %d outside [200, 400]", v.Value)
		}
	}
}

func TestTransactionListEndDateIsInclusive(t *testing.T) {
	store := newFakeTxStore()
	loc := saoPaulo()
	late := time.Date(2024, 3, 10, 23, 30, 0, 0, loc)
	_, _ = store.Add(helpers.TestCtx(), &models.Transaction{
		UserID: "u1", CategoryID: "food", MethodID: "pix", Value: 100,
		Type: models.TransactionExpense, CreatedAt: late,
	})
	svc := newTxService(store, &testClock{now: txBase})

	end := time.Date(2024, 3, 10, 0, 0, 0, 0, loc)
	page, err := svc.List(helpers.TestCtx(), dto.TransactionFilters{UserID: "u1", EndDate: &end})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(page.Transactions) != 1 {
		t.Fatalf("late transaction on the end date was excluded")
	}
}

func TestTransactionListMissingNamesAreNull(t *testing.T) {
	store := newFakeTxStore()
	_, _ = store.Add(helpers.TestCtx(), &models.Transaction{
		UserID: "u1", CategoryID: "ghost", MethodID: "cash", Value: 100,
		Type: models.TransactionExpense, CreatedAt: txBase,
	})
	_, _ = store.Add(helpers.TestCtx(), &models.Transaction{
		UserID: "u1", CategoryID: "rent", MethodID: "cash", Value: 100,
		Type: models.TransactionExpense, CreatedAt: txBase.Add(time.Minute),
	})
	cats := testCategories()
	cats.err = map[string]error{"rent": errBoom}
	clock := &testClock{now: txBase}
	svc := NewTransactionService(store, cats, testMethods(), newTestCache(clock), saoPaulo(), PageLimits{Default: 10, Max: 100})

	page, err := svc.List(helpers.TestCtx(), dto.TransactionFilters{UserID: "u1"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	for _, v := range page.Transactions {
		if v.CategoryName != nil {
			t.Fatalf("category %s should have no name, got %q", v.CategoryID, *v.CategoryName)
		}
		if v.MethodName == nil || *v.MethodName != "Dinheiro" {
			t.Fatalf("methodName = %v", v.MethodName)
		}
	}
}

func TestTransactionListUsesCacheUntilMutation(t *testing.T) {
	store := newFakeTxStore()
	seedTx(t, store, "u1", 3)
	clock := &testClock{now: txBase}
	svc := newTxService(store, clock)
	ctx := helpers.TestCtx()
	filters := dto.TransactionFilters{UserID: "u1", CategoryID: "food"}

	if _, err := svc.List(ctx, filters); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if _, err := svc.List(ctx, filters); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if store.pages != 1 {
		t.Fatalf("store pages = %d, want 1 (second call cached)", store.pages)
	}

	if _, err := svc.Add(ctx, "u1", validTxRequest()); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	page, err := svc.List(ctx, filters)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if store.pages != 2 {
		t.Fatalf("store pages = %d, want 2 after invalidation", store.pages)
	}
	if len(page.Transactions) != 4 {
		t.Fatalf("got %d transactions after add, want 4", len(page.Transactions))
	}
}

func TestTransactionListCacheExpires(t *testing.T) {
	store := newFakeTxStore()
	seedTx(t, store, "u1", 1)
	clock := &testClock{now: txBase}
	svc := newTxService(store, clock)
	ctx := helpers.TestCtx()

	_, _ = svc.List(ctx, dto.TransactionFilters{UserID: "u1"})
	clock.Advance(time.Minute)
	_, _ = svc.List(ctx, dto.TransactionFilters{UserID: "u1"})

	if store.pages != 2 {
		t.Fatalf("store pages = %d, want 2 after TTL", store.pages)
	}
}

func TestTransactionUpdateOwnership(t *testing.T) {
	store := newFakeTxStore()
	seedTx(t, store, "owner", 1)
	svc := newTxService(store, &testClock{now: txBase})
	ctx := helpers.TestCtx()
	patch := &models.TransactionPatch{Value: helpers.Ptr(int64(999))}

	var forbidden *errs.ForbiddenError
	if err := svc.Update(ctx, "intruder", "tx-001", patch); !errors.As(err, &forbidden) {
		t.Fatalf("expected ForbiddenError, got %v", err)
	}
	var notFound *errs.NotFoundError
	if err := svc.Update(ctx, "owner", "missing", patch); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if err := svc.Update(ctx, "owner", "tx-001", patch); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if store.txs["tx-001"].Value != 999 {
		t.Fatalf("value = %d, want 999", store.txs["tx-001"].Value)
	}
}

func TestTransactionUpdateRejectsEmptyAndInvalidPatch(t *testing.T) {
	store := newFakeTxStore()
	seedTx(t, store, "u1", 1)
	svc := newTxService(store, &testClock{now: txBase})
	ctx := helpers.TestCtx()

	var vErr *errs.ValidationError
	if err := svc.Update(ctx, "u1", "tx-001", &models.TransactionPatch{}); !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for empty patch, got %v", err)
	}
	if err := svc.Update(ctx, "u1", "tx-001", &models.TransactionPatch{Value: helpers.Ptr(int64(-5))}); !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for negative value, got %v", err)
	}
}

func TestTransactionDelete(t *testing.T) {
	store := newFakeTxStore()
	seedTx(t, store, "u1", 1)
	svc := newTxService(store, &testClock{now: txBase})
	ctx := helpers.TestCtx()

	var forbidden *errs.ForbiddenError
	if err := svc.Delete(ctx, "u2", "tx-001"); !errors.As(err, &forbidden) {
		t.Fatalf("expected ForbiddenError, got %v", err)
	}
	if err := svc.Delete(ctx, "u1", "tx-001"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if len(store.txs) != 0 {
		t.Fatalf("transaction not deleted")
	}
}

func TestTransactionGetHidesOtherOwners(t *testing.T) {
	store := newFakeTxStore()
	seedTx(t, store, "u1", 1)
	svc := newTxService(store, &testClock{now: txBase})

	var notFound *errs.NotFoundError
	if _, err := svc.Get(helpers.TestCtx(), "u2", "tx-001"); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	v, err := svc.Get(helpers.TestCtx(), "u1", "tx-001")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if v.CategoryName == nil || *v.CategoryName != "Alimentação" {
		t.Fatalf("categoryName = %v", v.CategoryName)
	}
}

func TestCalculateBalance(t *testing.T) {
	store := newFakeTxStore()
	ctx := helpers.TestCtx()
	_, _ = store.Add(ctx, &models.Transaction{UserID: "u1", CategoryID: "salary", MethodID: "pix", Value: 10000, Type: models.TransactionIncome, CreatedAt: txBase})
	_, _ = store.Add(ctx, &models.Transaction{UserID: "u1", CategoryID: "food", MethodID: "pix", Value: 3050, Type: models.TransactionExpense, CreatedAt: txBase})
	_, _ = store.Add(ctx, &models.Transaction{UserID: "u2", CategoryID: "food", MethodID: "pix", Value: 999, Type: models.TransactionExpense, CreatedAt: txBase})
	svc := newTxService(store, &testClock{now: txBase})

	b, err := svc.CalculateBalance(ctx, "u1")
	if err != nil {
		t.Fatalf("CalculateBalance returned error: %v", err)
	}
	if b.Balance != 69.5 || b.Income != 100 || b.Expense != 30.5 {
		t.Fatalf("balance = %+v", b)
	}
	if b.Formatted != "R$ 69,50" {
		t.Fatalf("formatted = %q", b.Formatted)
	}

	if _, err := svc.CalculateBalance(ctx, "u1"); err != nil {
		t.Fatalf("CalculateBalance returned error: %v", err)
	}
	if store.queries != 1 {
		t.Fatalf("queries = %d, want 1 (cached)", store.queries)
	}

	req := validTxRequest()
	req.Value = 950
	if _, err := svc.Add(ctx, "u1", req); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	b, err = svc.CalculateBalance(ctx, "u1")
	if err != nil {
		t.Fatalf("CalculateBalance returned error: %v", err)
	}
	if b.Balance != 60 {
		t.Fatalf("balance after add = %v, want 60", b.Balance)
	}
}

func TestCalculateBalanceEmptyAndError(t *testing.T) {
	store := newFakeTxStore()
	svc := newTxService(store, &testClock{now: txBase})

	b, err := svc.CalculateBalance(helpers.TestCtx(), "u1")
	if err != nil {
		t.Fatalf("CalculateBalance returned error: %v", err)
	}
	if b.Balance != 0 {
		t.Fatalf("balance = %v, want 0", b.Balance)
	}

	store.err = errBoom
	if _, err := svc.CalculateBalance(helpers.TestCtx(), "u3"); !errors.Is(err, errBoom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestTransactionWatchTrimsLookAhead(t *testing.T) {
	store := newFakeTxStore()
	seedTx(t, store, "u1", 4)
	svc := newTxService(store, &testClock{now: txBase})

	var got *dto.PaginatedTransactions
	err := svc.Watch(helpers.TestCtx(), dto.TransactionFilters{UserID: "u1", PageSize: 3}, func(p *dto.PaginatedTransactions) error {
		got = p
		return nil
	})
	if err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
	if got == nil || len(got.Transactions) != 3 || !got.HasMore {
		t.Fatalf("unexpected watched page: %+v", got)
	}
}
