package services

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/GregMSThompson/wallet-api/internal/models"
	"github.com/GregMSThompson/wallet-api/pkg/logger"
)

const lookupConcurrency = 8

type categoryLookup interface {
	Get(ctx context.Context, id string) (*models.Category, error)
}

type methodLookup interface {
	Get(ctx context.Context, id string) (*models.PaymentMethod, error)
}

// lookupAll fetches each distinct id with bounded concurrency. Missing
// records and failed lookups are left out of the result; callers treat
// them as unnamed.
func lookupAll[T any](ctx context.Context, kind string, ids []string, get func(context.Context, string) (*T, error)) map[string]*T {
	out := make(map[string]*T, len(ids))
	if len(ids) == 0 {
		return out
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(lookupConcurrency)
	log := logger.FromContext(ctx)

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		g.Go(func() error {
			v, err := get(ctx, id)
			if err != nil {
				log.Warn("name lookup failed", "kind", kind, "id", id, "error", err)
				return nil
			}
			if v == nil {
				return nil
			}
			mu.Lock()
			out[id] = v
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}
