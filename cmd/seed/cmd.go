package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/GregMSThompson/wallet-api/internal/bootstrap"
	"github.com/GregMSThompson/wallet-api/internal/config"
	"github.com/GregMSThompson/wallet-api/internal/models"
	"github.com/GregMSThompson/wallet-api/internal/store"
	"github.com/GregMSThompson/wallet-api/pkg/logger"
)

type categoryPutter interface {
	Put(ctx context.Context, c *models.Category) error
}

type methodPutter interface {
	Put(ctx context.Context, m *models.PaymentMethod) error
}

var defaultCategories = []models.Category{
	{ID: "salary", Name: "Salário", Icon: "briefcase", Color: "#2e7d32", Type: models.TransactionIncome},
	{ID: "freelance", Name: "Freelance", Icon: "laptop", Color: "#388e3c", Type: models.TransactionIncome},
	{ID: "investments", Name: "Investimentos", Icon: "trending-up", Color: "#43a047", Type: models.TransactionIncome},
	{ID: "food", Name: "Alimentação", Icon: "utensils", Color: "#e53935", Type: models.TransactionExpense},
	{ID: "transport", Name: "Transporte", Icon: "car", Color: "#fb8c00", Type: models.TransactionExpense},
	{ID: "housing", Name: "Moradia", Icon: "home", Color: "#6d4c41", Type: models.TransactionExpense},
	{ID: "health", Name: "Saúde", Icon: "heart", Color: "#d81b60", Type: models.TransactionExpense},
	{ID: "education", Name: "Educação", Icon: "book", Color: "#3949ab", Type: models.TransactionExpense},
	{ID: "leisure", Name: "Lazer", Icon: "smile", Color: "#8e24aa", Type: models.TransactionExpense},
	{ID: "others", Name: "Outros", Icon: "tag", Color: "#757575", Type: models.TransactionExpense},
}

var defaultMethods = []models.PaymentMethod{
	{ID: "credit_card", Name: "Cartão de crédito", Icon: "credit-card", Type: models.MethodCreditCard},
	{ID: "debit_card", Name: "Cartão de débito", Icon: "credit-card", Type: models.MethodDebitCard},
	{ID: "cash", Name: "Dinheiro", Icon: "banknote", Type: models.MethodCash},
	{ID: "pix", Name: "Pix", Icon: "zap", Type: models.MethodPix},
	{ID: "bank_transfer", Name: "Transferência", Icon: "repeat", Type: models.MethodBankTransfer},
}

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	cfg := config.New()
	log := logger.New(cfg.LogLevel, logger.NewCloudRunHandler)
	ctx := logger.ToContext(context.Background(), log)

	fs, err := bootstrap.InitFirestore(ctx, log, cfg.ProjectID)
	exitOnError("firestore init failed", err, log)
	defer fs.Close()

	err = seed(ctx, store.NewCategoryStore(fs), store.NewMethodStore(fs))
	exitOnError("seed failed", err, log)
}

// seed writes the default catalog under fixed ids, so reruns overwrite
// instead of duplicating.
func seed(ctx context.Context, categories categoryPutter, methods methodPutter) error {
	log := logger.FromContext(ctx)

	for i := range defaultCategories {
		c := defaultCategories[i]
		if err := c.Validate(); err != nil {
			return fmt.Errorf("category %s: %w", c.ID, err)
		}
		if err := categories.Put(ctx, &c); err != nil {
			return fmt.Errorf("category %s: %w", c.ID, err)
		}
	}
	for i := range defaultMethods {
		m := defaultMethods[i]
		if err := m.Validate(); err != nil {
			return fmt.Errorf("method %s: %w", m.ID, err)
		}
		if err := methods.Put(ctx, &m); err != nil {
			return fmt.Errorf("method %s: %w", m.ID, err)
		}
	}

	log.Info("catalog seeded", "categories", len(defaultCategories), "methods", len(defaultMethods))
	return nil
}
