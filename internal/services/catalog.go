package services

import (
	"context"
	"strings"

	"github.com/GregMSThompson/wallet-api/internal/errs"
	"github.com/GregMSThompson/wallet-api/internal/models"
	"github.com/GregMSThompson/wallet-api/pkg/logger"
)

type categoryStore interface {
	List(ctx context.Context) ([]*models.Category, error)
	Get(ctx context.Context, id string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) (string, error)
	Update(ctx context.Context, id string, p *models.CategoryPatch) (*models.Category, error)
	Delete(ctx context.Context, id string) error
}

type methodStore interface {
	List(ctx context.Context) ([]*models.PaymentMethod, error)
	Get(ctx context.Context, id string) (*models.PaymentMethod, error)
	Create(ctx context.Context, m *models.PaymentMethod) (string, error)
	Update(ctx context.Context, id string, p *models.MethodPatch) (*models.PaymentMethod, error)
	Delete(ctx context.Context, id string) error
}

// catalogService manages the shared categories and payment methods.
type catalogService struct {
	categories categoryStore
	methods    methodStore
}

func NewCatalogService(categories categoryStore, methods methodStore) *catalogService {
	return &catalogService{categories: categories, methods: methods}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.categories.List(ctx)
}

func (s *catalogService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	c, err := s.categories.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errs.NewNotFoundError("category not found")
	}
	return c, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, c *models.Category) (string, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return "", err
	}
	id, err := s.categories.Create(ctx, c)
	if err != nil {
		logger.FromContext(ctx).Error("failed to create category", "error", err)
		return "", err
	}
	logger.FromContext(ctx).Info("category created", "category_id", id, "name", c.Name)
	return id, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id string, p *models.CategoryPatch) (*models.Category, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	c, err := s.categories.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("category updated", "category_id", id)
	return c, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("category deleted", "category_id", id)
	return nil
}

func (s *catalogService) ListMethods(ctx context.Context) ([]*models.PaymentMethod, error) {
	return s.methods.List(ctx)
}

func (s *catalogService) GetMethod(ctx context.Context, id string) (*models.PaymentMethod, error) {
	m, err := s.methods.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errs.NewNotFoundError("payment method not found")
	}
	return m, nil
}

func (s *catalogService) CreateMethod(ctx context.Context, m *models.PaymentMethod) (string, error) {
	m.Name = strings.TrimSpace(m.Name)
	if err := m.Validate(); err != nil {
		return "", err
	}
	id, err := s.methods.Create(ctx, m)
	if err != nil {
		logger.FromContext(ctx).Error("failed to create payment method", "error", err)
		return "", err
	}
	logger.FromContext(ctx).Info("payment method created", "method_id", id, "name", m.Name)
	return id, nil
}

func (s *catalogService) UpdateMethod(ctx context.Context, id string, p *models.MethodPatch) (*models.PaymentMethod, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	m, err := s.methods.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("payment method updated", "method_id", id)
	return m, nil
}

func (s *catalogService) DeleteMethod(ctx context.Context, id string) error {
	if _, err := s.GetMethod(ctx, id); err != nil {
		return err
	}
	if err := s.methods.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("payment method deleted", "method_id", id)
	return nil
}
