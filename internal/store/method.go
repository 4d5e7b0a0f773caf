package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/GregMSThompson/wallet-api/internal/errs"
	"github.com/GregMSThompson/wallet-api/internal/models"
)

type methodStore struct {
	client   *firestore.Client
	clockNow func() time.Time
}

func NewMethodStore(client *firestore.Client) *methodStore {
	return &methodStore{client: client, clockNow: time.Now}
}

func (s *methodStore) collection() *firestore.CollectionRef {
	return s.client.Collection(methodsCollection)
}

func (s *methodStore) decode(doc *firestore.DocumentSnapshot) (*models.PaymentMethod, error) {
	var m models.PaymentMethod
	if err := doc.DataTo(&m); err != nil {
		return nil, err
	}
	m.ID = docID(doc)
	return &m, nil
}

func (s *methodStore) List(ctx context.Context) ([]*models.PaymentMethod, error) {
	docs, err := s.collection().OrderBy("name", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list payment methods", err)
	}
	out := make([]*models.PaymentMethod, 0, len(docs))
	for _, d := range docs {
		m, err := s.decode(d)
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse payment method data", err)
		}
		out = append(out, m)
	}
	return out, nil
}

// Get returns nil when the payment method does not exist.
func (s *methodStore) Get(ctx context.Context, id string) (*models.PaymentMethod, error) {
	doc, err := s.collection().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, errs.NewDatabaseError("read", "failed to get payment method", err)
	}
	m, err := s.decode(doc)
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse payment method data", err)
	}
	return m, nil
}

func (s *methodStore) Create(ctx context.Context, m *models.PaymentMethod) (string, error) {
	ref := s.collection().NewDoc()
	now := s.clockNow()
	m.CreatedAt, m.UpdatedAt = now, now

	if _, err := ref.Create(ctx, m); err != nil {
		return "", errs.NewDatabaseError("create", "failed to add payment method", err)
	}
	m.ID = ref.ID
	return ref.ID, nil
}

// Put writes a payment method under a fixed id, replacing any existing document.
func (s *methodStore) Put(ctx context.Context, m *models.PaymentMethod) error {
	now := s.clockNow()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	if _, err := s.collection().Doc(m.ID).Set(ctx, m); err != nil {
		return errs.NewDatabaseError("create", "failed to save payment method", err)
	}
	return nil
}

// Update applies the patch and returns the stored result.
func (s *methodStore) Update(ctx context.Context, id string, p *models.MethodPatch) (*models.PaymentMethod, error) {
	updates := []firestore.Update{{Path: "updatedAt", Value: s.clockNow()}}
	if p.Name != nil {
		updates = append(updates, firestore.Update{Path: "name", Value: *p.Name})
	}
	if p.Icon != nil {
		updates = append(updates, firestore.Update{Path: "icon", Value: *p.Icon})
	}
	if p.CardID != nil {
		updates = append(updates, firestore.Update{Path: "cardId", Value: *p.CardID})
	}
	if p.Type != nil {
		updates = append(updates, firestore.Update{Path: "type", Value: string(*p.Type)})
	}

	if _, err := s.collection().Doc(id).Update(ctx, updates); err != nil {
		if isNotFound(err) {
			return nil, errs.NewNotFoundError("payment method not found")
		}
		return nil, errs.NewDatabaseError("update", "failed to update payment method", err)
	}

	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errs.NewNotFoundError("payment method not found")
	}
	return m, nil
}

func (s *methodStore) Delete(ctx context.Context, id string) error {
	if _, err := s.collection().Doc(id).Delete(ctx); err != nil {
		return errs.NewDatabaseError("delete", "failed to delete payment method", err)
	}
	return nil
}
