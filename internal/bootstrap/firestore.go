package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"cloud.google.com/go/firestore"
)

// InitFirestore opens the default database. The client library switches to
// the emulator on its own when FIRESTORE_EMULATOR_HOST is set.
func InitFirestore(ctx context.Context, log *slog.Logger, projectID string) (*firestore.Client, error) {
	if host := os.Getenv("FIRESTORE_EMULATOR_HOST"); host != "" {
		log.Info("using firestore emulator", "host", host)
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, firestore.DefaultDatabaseID)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return client, nil
}
