package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/GregMSThompson/wallet-api/internal/cache"
	"github.com/GregMSThompson/wallet-api/internal/crypto"
	"github.com/GregMSThompson/wallet-api/internal/dto"
	"github.com/GregMSThompson/wallet-api/internal/errs"
	"github.com/GregMSThompson/wallet-api/internal/models"
	"github.com/GregMSThompson/wallet-api/pkg/logger"
)

type cardStore interface {
	List(ctx context.Context, f dto.CardFilters) ([]*models.Card, error)
	Get(ctx context.Context, id string) (*models.Card, error)
	Create(ctx context.Context, card *models.Card) (string, error)
	Update(ctx context.Context, card *models.Card) error
	Delete(ctx context.Context, id string) error
	SetPrincipal(ctx context.Context, userID, cardID string) error
	CountPrincipals(ctx context.Context, userID string) (int, error)
}

type cardService struct {
	store    cardStore
	cipher   crypto.Cipher
	cache    *cache.Cache
	clockNow func() time.Time
}

func NewCardService(store cardStore, cipher crypto.Cipher, c *cache.Cache) *cardService {
	return &cardService{
		store:    store,
		cipher:   cipher,
		cache:    c,
		clockNow: time.Now,
	}
}

// List returns the owner's cards without their security codes.
func (s *cardService) List(ctx context.Context, f dto.CardFilters) ([]*models.Card, error) {
	f.UserID = strings.TrimSpace(f.UserID)
	if f.UserID == "" {
		return nil, errs.NewFieldError("userId", "user id is required")
	}

	key, keyErr := cache.NewKey(cache.EntityCards, f.UserID, f)
	if keyErr == nil {
		if cards, ok := cache.GetJSON[[]*models.Card](ctx, s.cache, key); ok {
			return cards, nil
		}
	}

	cards, err := s.store.List(ctx, f)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list cards", "error", err)
		return nil, err
	}
	for _, c := range cards {
		c.CVV = 0
	}

	if keyErr == nil {
		cache.PutJSON(ctx, s.cache, key, cards)
	}
	return cards, nil
}

// Get returns one of the owner's cards with its security code opened.
func (s *cardService) Get(ctx context.Context, uid, id string) (*models.Card, error) {
	card, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if card == nil || card.UserID != uid {
		return nil, errs.NewNotFoundError("card not found")
	}
	if err := s.open(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

func (s *cardService) Add(ctx context.Context, uid string, req dto.CreateCardRequest) (string, error) {
	log := logger.FromContext(ctx)

	card := &models.Card{
		UserID:    uid,
		Number:    strings.TrimSpace(req.Number),
		Name:      strings.TrimSpace(req.Name),
		CVV:       req.CVV,
		ExpiredAt: strings.TrimSpace(req.ExpiredAt),
		Type:      req.Type,
		Flag:      req.Flag,
		Blocked:   req.Blocked,
		Principal: req.Principal,
		CreatedAt: s.clockNow(),
	}
	if err := s.check(card, true); err != nil {
		return "", err
	}
	card.Number = models.MaskNumber(card.Number)
	if err := s.seal(ctx, card); err != nil {
		return "", err
	}

	id, err := s.store.Create(ctx, card)
	if err != nil {
		log.Error("failed to add card", "error", err)
		return "", err
	}
	s.cache.InvalidateOwner(ctx, cache.EntityCards, uid)

	log.Info("card created", "card_id", id, "principal", card.Principal)
	return id, nil
}

// Update applies patch to the owner's card and re-validates the result.
func (s *cardService) Update(ctx context.Context, uid, id string, patch *models.CardPatch) (*models.Card, error) {
	log := logger.FromContext(ctx)

	card, err := s.owned(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	if err := s.open(ctx, card); err != nil {
		return nil, err
	}

	patch.Apply(card)
	if err := s.check(card, patch.ExpiredAt != nil); err != nil {
		return nil, err
	}
	if patch.Number != nil {
		card.Number = models.MaskNumber(card.Number)
	}
	if err := s.seal(ctx, card); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, card); err != nil {
		log.Error("failed to update card", "card_id", id, "error", err)
		return nil, err
	}
	s.cache.InvalidateOwner(ctx, cache.EntityCards, uid)

	log.Info("card updated", "card_id", id)
	return card, nil
}

func (s *cardService) Delete(ctx context.Context, uid, id string) error {
	log := logger.FromContext(ctx)

	if _, err := s.owned(ctx, uid, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		log.Error("failed to delete card", "card_id", id, "error", err)
		return err
	}
	s.cache.InvalidateOwner(ctx, cache.EntityCards, uid)

	log.Info("card deleted", "card_id", id)
	return nil
}

// SetPrincipal makes id the owner's only principal card.
func (s *cardService) SetPrincipal(ctx context.Context, uid, id string) error {
	log := logger.FromContext(ctx)

	if err := s.store.SetPrincipal(ctx, uid, id); err != nil {
		log.Error("failed to set principal card", "card_id", id, "error", err)
		return err
	}
	s.cache.InvalidateOwner(ctx, cache.EntityCards, uid)

	n, err := s.store.CountPrincipals(ctx, uid)
	if err != nil {
		return err
	}
	if n != 1 {
		log.Error("principal card invariant broken", "card_id", id, "principals", n)
		return errs.NewConflictError("principal card changed concurrently, retry")
	}

	log.Info("principal card set", "card_id", id)
	return nil
}

func (s *cardService) owned(ctx context.Context, uid, id string) (*models.Card, error) {
	card, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, errs.NewNotFoundError("card not found")
	}
	if card.UserID != uid {
		return nil, errs.NewForbiddenError("card belongs to another user")
	}
	return card, nil
}

// check validates the card's structure. The expiry is only compared with
// the clock when withExpiry is set, so an expired card can still be edited.
func (s *cardService) check(card *models.Card, withExpiry bool) error {
	if err := card.Validate(); err != nil {
		return err
	}
	if withExpiry && card.IsExpired(s.clockNow()) {
		return errs.NewFieldError("expiredAt", "invalid expiry date")
	}
	return nil
}

// seal encrypts the CVV bound to the owner's uid.
func (s *cardService) seal(ctx context.Context, card *models.Card) error {
	sealed, err := s.cipher.Seal(ctx, strconv.Itoa(card.CVV), card.UserID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to seal card secret", "error", err)
		return err
	}
	card.SealedCVV = sealed
	return nil
}

func (s *cardService) open(ctx context.Context, card *models.Card) error {
	if card.SealedCVV == "" {
		return nil
	}
	plain, err := s.cipher.Open(ctx, card.SealedCVV, card.UserID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to open card secret", "card_id", card.ID, "error", err)
		return err
	}
	cvv, err := strconv.Atoi(plain)
	if err != nil {
		return errs.NewDatabaseError("read", "stored card secret is malformed", err)
	}
	card.CVV = cvv
	return nil
}
