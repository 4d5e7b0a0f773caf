package store

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"

	"github.com/GregMSThompson/wallet-api/internal/dto"
	"github.com/GregMSThompson/wallet-api/internal/errs"
	"github.com/GregMSThompson/wallet-api/internal/models"
)

type cardStore struct {
	client   *firestore.Client
	clockNow func() time.Time
}

func NewCardStore(client *firestore.Client) *cardStore {
	return &cardStore{client: client, clockNow: time.Now}
}

func (s *cardStore) collection() *firestore.CollectionRef {
	return s.client.Collection(cardsCollection)
}

func (s *cardStore) decode(doc *firestore.DocumentSnapshot) (*models.Card, error) {
	var c models.Card
	if err := doc.DataTo(&c); err != nil {
		return nil, err
	}
	c.ID = docID(doc)
	createdAtOr(&c.CreatedAt, s.clockNow)
	return &c, nil
}

func (s *cardStore) List(ctx context.Context, f dto.CardFilters) ([]*models.Card, error) {
	q := s.collection().Where("userId", "==", f.UserID)
	if f.Type != nil {
		q = q.Where("type", "==", string(*f.Type))
	}
	if f.Blocked != nil {
		q = q.Where("blocked", "==", *f.Blocked)
	}
	if f.Principal != nil {
		q = q.Where("principal", "==", *f.Principal)
	}

	docs, err := q.OrderBy("createdAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list cards", err)
	}
	cards := make([]*models.Card, 0, len(docs))
	for _, d := range docs {
		c, err := s.decode(d)
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse card data", err)
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// Get returns nil when the card does not exist.
func (s *cardStore) Get(ctx context.Context, id string) (*models.Card, error) {
	doc, err := s.collection().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, errs.NewDatabaseError("read", "failed to get card", err)
	}
	c, err := s.decode(doc)
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse card data", err)
	}
	return c, nil
}

// Create stores a new card. A card created as principal takes the flag
// from the owner's other cards in the same transaction.
func (s *cardStore) Create(ctx context.Context, card *models.Card) (string, error) {
	ref := s.collection().NewDoc()
	createdAtOr(&card.CreatedAt, s.clockNow)

	if !card.Principal {
		if _, err := ref.Create(ctx, card); err != nil {
			return "", errs.NewDatabaseError("create", "failed to add card", err)
		}
		card.ID = ref.ID
		return ref.ID, nil
	}

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		others, err := tx.Documents(s.collection().Where("userId", "==", card.UserID)).GetAll()
		if err != nil {
			return err
		}
		for _, d := range others {
			if err := tx.Update(d.Ref, []firestore.Update{{Path: "principal", Value: false}}); err != nil {
				return err
			}
		}
		return tx.Create(ref, card)
	})
	if err != nil {
		return "", errs.NewDatabaseError("create", "failed to add card", err)
	}
	card.ID = ref.ID
	return ref.ID, nil
}

// Update writes the editable fields. The principal flag is left alone so a
// concurrent principal change is never overwritten.
func (s *cardStore) Update(ctx context.Context, card *models.Card) error {
	_, err := s.collection().Doc(card.ID).Update(ctx, []firestore.Update{
		{Path: "number", Value: card.Number},
		{Path: "name", Value: card.Name},
		{Path: "cvv", Value: card.SealedCVV},
		{Path: "expiredAt", Value: card.ExpiredAt},
		{Path: "type", Value: string(card.Type)},
		{Path: "flag", Value: string(card.Flag)},
		{Path: "blocked", Value: card.Blocked},
	})
	if err != nil {
		if isNotFound(err) {
			return errs.NewNotFoundError("card not found")
		}
		return errs.NewDatabaseError("update", "failed to update card", err)
	}
	return nil
}

func (s *cardStore) Delete(ctx context.Context, id string) error {
	if _, err := s.collection().Doc(id).Delete(ctx); err != nil {
		return errs.NewDatabaseError("delete", "failed to delete card", err)
	}
	return nil
}

// SetPrincipal makes cardID the owner's only principal card. Every other
// card of the owner is written in the same transaction, so two concurrent
// calls touch overlapping documents and Firestore serializes them.
func (s *cardStore) SetPrincipal(ctx context.Context, userID, cardID string) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		target, err := tx.Get(s.collection().Doc(cardID))
		if err != nil {
			if isNotFound(err) {
				return errs.NewNotFoundError("card not found")
			}
			return err
		}
		owner, err := target.DataAt("userId")
		if err != nil || owner != userID {
			return errs.NewForbiddenError("card belongs to another user")
		}

		docs, err := tx.Documents(s.collection().Where("userId", "==", userID)).GetAll()
		if err != nil {
			return err
		}

		for _, d := range docs {
			if d.Ref.ID == cardID {
				continue
			}
			if err := tx.Update(d.Ref, []firestore.Update{{Path: "principal", Value: false}}); err != nil {
				return err
			}
		}
		return tx.Update(target.Ref, []firestore.Update{{Path: "principal", Value: true}})
	})
	if err == nil {
		return nil
	}

	var (
		notFound  *errs.NotFoundError
		forbidden *errs.ForbiddenError
	)
	if errors.As(err, &notFound) || errors.As(err, &forbidden) {
		return err
	}
	return errs.NewDatabaseError("update", "failed to set principal card", err)
}

// CountPrincipals counts the owner's cards flagged principal.
func (s *cardStore) CountPrincipals(ctx context.Context, userID string) (int, error) {
	q := s.collection().
		Where("userId", "==", userID).
		Where("principal", "==", true)
	res, err := q.NewAggregationQuery().WithCount("count").Get(ctx)
	if err != nil {
		return 0, errs.NewDatabaseError("read", "failed to count principal cards", err)
	}

	v, ok := res["count"].(*firestorepb.Value)
	if !ok {
		return 0, errs.NewDatabaseError("read", "unexpected count result", nil)
	}
	return int(v.GetIntegerValue()), nil
}
