package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/GregMSThompson/wallet-api/internal/errs"
	"github.com/GregMSThompson/wallet-api/internal/models"
)

type categoryStore struct {
	client   *firestore.Client
	clockNow func() time.Time
}

func NewCategoryStore(client *firestore.Client) *categoryStore {
	return &categoryStore{client: client, clockNow: time.Now}
}

func (s *categoryStore) collection() *firestore.CollectionRef {
	return s.client.Collection(categoriesCollection)
}

func (s *categoryStore) decode(doc *firestore.DocumentSnapshot) (*models.Category, error) {
	var c models.Category
	if err := doc.DataTo(&c); err != nil {
		return nil, err
	}
	c.ID = docID(doc)
	return &c, nil
}

func (s *categoryStore) List(ctx context.Context) ([]*models.Category, error) {
	docs, err := s.collection().OrderBy("name", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list categories", err)
	}
	out := make([]*models.Category, 0, len(docs))
	for _, d := range docs {
		c, err := s.decode(d)
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse category data", err)
		}
		out = append(out, c)
	}
	return out, nil
}

// Get returns nil when the category does not exist.
func (s *categoryStore) Get(ctx context.Context, id string) (*models.Category, error) {
	doc, err := s.collection().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, errs.NewDatabaseError("read", "failed to get category", err)
	}
	c, err := s.decode(doc)
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse category data", err)
	}
	return c, nil
}

func (s *categoryStore) Create(ctx context.Context, c *models.Category) (string, error) {
	ref := s.collection().NewDoc()
	now := s.clockNow()
	c.CreatedAt, c.UpdatedAt = now, now

	if _, err := ref.Create(ctx, c); err != nil {
		return "", errs.NewDatabaseError("create", "failed to add category", err)
	}
	c.ID = ref.ID
	return ref.ID, nil
}

// Put writes a category under a fixed id, replacing any existing document.
func (s *categoryStore) Put(ctx context.Context, c *models.Category) error {
	now := s.clockNow()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if _, err := s.collection().Doc(c.ID).Set(ctx, c); err != nil {
		return errs.NewDatabaseError("create", "failed to save category", err)
	}
	return nil
}

// Update applies the patch and returns the stored result.
func (s *categoryStore) Update(ctx context.Context, id string, p *models.CategoryPatch) (*models.Category, error) {
	updates := []firestore.Update{{Path: "updatedAt", Value: s.clockNow()}}
	if p.Name != nil {
		updates = append(updates, firestore.Update{Path: "name", Value: *p.Name})
	}
	if p.Icon != nil {
		updates = append(updates, firestore.Update{Path: "icon", Value: *p.Icon})
	}
	if p.Color != nil {
		updates = append(updates, firestore.Update{Path: "color", Value: *p.Color})
	}
	if p.Type != nil {
		updates = append(updates, firestore.Update{Path: "type", Value: string(*p.Type)})
	}

	if _, err := s.collection().Doc(id).Update(ctx, updates); err != nil {
		if isNotFound(err) {
			return nil, errs.NewNotFoundError("category not found")
		}
		return nil, errs.NewDatabaseError("update", "failed to update category", err)
	}

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errs.NewNotFoundError("category not found")
	}
	return c, nil
}

func (s *categoryStore) Delete(ctx context.Context, id string) error {
	if _, err := s.collection().Doc(id).Delete(ctx); err != nil {
		return errs.NewDatabaseError("delete", "failed to delete category", err)
	}
	return nil
}
