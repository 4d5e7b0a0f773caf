package store

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/wallet-api/internal/dto"
	"github.com/GregMSThompson/wallet-api/internal/errs"
	"github.com/GregMSThompson/wallet-api/internal/models"
	"github.com/GregMSThompson/wallet-api/pkg/logger"
)

type transactionStore struct {
	client   *firestore.Client
	clockNow func() time.Time
}

func NewTransactionStore(client *firestore.Client) *transactionStore {
	return &transactionStore{client: client, clockNow: time.Now}
}

func (s *transactionStore) collection() *firestore.CollectionRef {
	return s.client.Collection(transactionsCollection)
}

func (s *transactionStore) decode(doc *firestore.DocumentSnapshot) (*models.Transaction, error) {
	var tx models.Transaction
	if err := doc.DataTo(&tx); err != nil {
		return nil, err
	}
	tx.ID = docID(doc)
	createdAtOr(&tx.CreatedAt, s.clockNow)
	return &tx, nil
}

func (s *transactionStore) Add(ctx context.Context, tx *models.Transaction) (string, error) {
	ref := s.collection().NewDoc()
	createdAtOr(&tx.CreatedAt, s.clockNow)

	if _, err := ref.Create(ctx, tx); err != nil {
		return "", errs.NewDatabaseError("create", "failed to add transaction", err)
	}
	tx.ID = ref.ID
	return ref.ID, nil
}

// Get returns nil when the transaction does not exist.
func (s *transactionStore) Get(ctx context.Context, id string) (*models.Transaction, error) {
	doc, err := s.collection().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, errs.NewDatabaseError("read", "failed to get transaction", err)
	}
	tx, err := s.decode(doc)
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse transaction data", err)
	}
	return tx, nil
}

func (s *transactionStore) Update(ctx context.Context, id string, patch *models.TransactionPatch) error {
	updates := transactionUpdates(patch)
	if len(updates) == 0 {
		return nil
	}

	_, err := s.collection().Doc(id).Update(ctx, updates)
	if err != nil {
		if isNotFound(err) {
			return errs.NewNotFoundError("transaction not found")
		}
		return errs.NewDatabaseError("update", "failed to update transaction", err)
	}
	return nil
}

func transactionUpdates(p *models.TransactionPatch) []firestore.Update {
	var updates []firestore.Update
	if p.CategoryID != nil {
		updates = append(updates, firestore.Update{Path: "categoryId", Value: *p.CategoryID})
	}
	if p.MethodID != nil {
		updates = append(updates, firestore.Update{Path: "methodId", Value: *p.MethodID})
	}
	if p.Value != nil {
		updates = append(updates, firestore.Update{Path: "value", Value: *p.Value})
	}
	if p.Type != nil {
		updates = append(updates, firestore.Update{Path: "type", Value: string(*p.Type)})
	}
	if p.Description != nil {
		updates = append(updates, firestore.Update{Path: "description", Value: *p.Description})
	}
	if p.FileURL != nil {
		updates = append(updates, firestore.Update{Path: "fileUrl", Value: *p.FileURL})
	}
	if p.CreatedAt != nil {
		updates = append(updates, firestore.Update{Path: "createdAt", Value: *p.CreatedAt})
	}
	return updates
}

func (s *transactionStore) Delete(ctx context.Context, id string) error {
	if _, err := s.collection().Doc(id).Delete(ctx); err != nil {
		return errs.NewDatabaseError("delete", "failed to delete transaction", err)
	}
	return nil
}

// pageQuery builds the filtered, newest-first query without cursor or limit.
func (s *transactionStore) pageQuery(f dto.TransactionFilters) firestore.Query {
	q := s.collection().Where("userId", "==", f.UserID)
	if f.CategoryID != "" {
		q = q.Where("categoryId", "==", f.CategoryID)
	}
	if f.MethodID != "" {
		q = q.Where("methodId", "==", f.MethodID)
	}
	if f.StartDate != nil {
		q = q.Where("createdAt", ">=", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("createdAt", "<=", *f.EndDate)
	}
	if f.MinValue != nil {
		q = q.Where("value", ">=", *f.MinValue)
	}
	if f.MaxValue != nil {
		q = q.Where("value", "<=", *f.MaxValue)
	}
	return q.OrderBy("createdAt", firestore.Desc)
}

// Page fetches one page newest first. It reads one document past the page
// size to decide whether more exist. An unknown cursor starts from the top.
func (s *transactionStore) Page(ctx context.Context, f dto.TransactionFilters) ([]*models.Transaction, bool, error) {
	q := s.pageQuery(f)

	if f.LastDocID != "" {
		cursor, err := s.collection().Doc(f.LastDocID).Get(ctx)
		switch {
		case err == nil:
			q = q.StartAfter(cursor)
		case isNotFound(err):
			logger.FromContext(ctx).Warn("pagination cursor not found", "cursor", f.LastDocID)
		default:
			return nil, false, errs.NewDatabaseError("read", "failed to list transactions", err)
		}
	}

	docs, err := q.Limit(f.PageSize + 1).Documents(ctx).GetAll()
	if err != nil {
		return nil, false, errs.NewDatabaseError("read", "failed to list transactions", err)
	}

	hasMore := len(docs) > f.PageSize
	if hasMore {
		docs = docs[:f.PageSize]
	}

	out := make([]*models.Transaction, 0, len(docs))
	for _, d := range docs {
		tx, err := s.decode(d)
		if err != nil {
			return nil, false, errs.NewDatabaseError("read", "failed to parse transaction data", err)
		}
		out = append(out, tx)
	}
	return out, hasMore, nil
}

// Query streams every matching transaction, oldest first, to handle.
func (s *transactionStore) Query(ctx context.Context, tq dto.TransactionQuery, handle func(*models.Transaction) error) error {
	q := s.collection().Where("userId", "==", tq.UserID)
	if tq.Type != "" {
		q = q.Where("type", "==", string(tq.Type))
	}
	if tq.From != nil {
		q = q.Where("createdAt", ">=", *tq.From)
	}
	if tq.To != nil {
		q = q.Where("createdAt", "<=", *tq.To)
	}
	if tq.From != nil || tq.To != nil {
		q = q.OrderBy("createdAt", firestore.Asc)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return errs.NewDatabaseError("read", "failed to query transactions", err)
		}
		tx, err := s.decode(doc)
		if err != nil {
			return errs.NewDatabaseError("read", "failed to parse transaction data", err)
		}
		if err := handle(tx); err != nil {
			return err
		}
	}
}

// Watch listens to the first page of f, plus one look-ahead document, and
// calls onChange with each new snapshot until ctx is cancelled or onChange
// fails.
func (s *transactionStore) Watch(ctx context.Context, f dto.TransactionFilters, onChange func([]*models.Transaction) error) error {
	it := s.pageQuery(f).Limit(f.PageSize + 1).Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			if ctx.Err() != nil || status.Code(err) == codes.Canceled || errors.Is(err, iterator.Done) {
				return nil
			}
			return errs.NewDatabaseError("read", "failed to watch transactions", err)
		}

		docs, err := snap.Documents.GetAll()
		if err != nil {
			return errs.NewDatabaseError("read", "failed to read transaction snapshot", err)
		}
		page := make([]*models.Transaction, 0, len(docs))
		for _, d := range docs {
			tx, err := s.decode(d)
			if err != nil {
				return errs.NewDatabaseError("read", "failed to parse transaction data", err)
			}
			page = append(page, tx)
		}
		if err := onChange(page); err != nil {
			return err
		}
	}
}
