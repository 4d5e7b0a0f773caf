package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/GregMSThompson/wallet-api/internal/bootstrap"
	storageclient "github.com/GregMSThompson/wallet-api/internal/client/storage"
	"github.com/GregMSThompson/wallet-api/internal/config"
	"github.com/GregMSThompson/wallet-api/internal/crypto"
	"github.com/GregMSThompson/wallet-api/internal/handlers"
	"github.com/GregMSThompson/wallet-api/internal/middleware"
	"github.com/GregMSThompson/wallet-api/internal/response"
	"github.com/GregMSThompson/wallet-api/internal/router"
	"github.com/GregMSThompson/wallet-api/internal/services"
	"github.com/GregMSThompson/wallet-api/internal/store"
	"github.com/GregMSThompson/wallet-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	loc := cfg.Location()

	// helpers
	var cipher crypto.Cipher = crypto.Plain{}
	if bs.KMS != nil {
		cipher = crypto.NewKMS(bs.KMS, cfg.KMSKeyName)
	} else {
		bs.Log.Warn("no KMS key configured, card secrets are stored unencrypted")
	}
	uploader := storageclient.NewAdapter(bs.Bucket, cfg.StorageBucket)

	// stores
	ustore := store.NewUserStore(bs.Firestore)
	tstore := store.NewTransactionStore(bs.Firestore)
	cstore := store.NewCardStore(bs.Firestore)
	catstore := store.NewCategoryStore(bs.Firestore)
	mstore := store.NewMethodStore(bs.Firestore)

	// services
	userv := services.NewUserService(bs.Firebase, bs.Identity, ustore)
	tserv := services.NewTransactionService(tstore, catstore, mstore, bs.Cache, loc,
		services.PageLimits{Default: cfg.DefaultPageSize, Max: cfg.MaxPageSize})
	cserv := services.NewCardService(cstore, cipher, bs.Cache)
	catserv := services.NewCatalogService(catstore, mstore)
	wserv := services.NewWidgetService(tstore, catstore, loc)
	upserv := services.NewUploadService(uploader, userv)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.Location = loc
	deps.UserSvc = userv
	deps.TransactionSvc = tserv
	deps.CardSvc = cserv
	deps.CatalogSvc = catserv
	deps.WidgetSvc = wserv
	deps.UploadSvc = upserv

	// router
	authMW := middleware.NewMiddleware(bs.Firebase, rh)
	r := router.NewRouter(deps, authMW.FirebaseAuth)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.ToContext(ctx, bs.Log)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bs.Log.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		sweepCache(ctx, bs)
		return nil
	})
	if bs.Bus != nil {
		g.Go(func() error {
			err := bs.Bus.Consume(ctx, bs.Cache)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	err = g.Wait()
	exitOnError("server stopped", err, bs.Log)
	bs.Log.Info("server stopped")
}

// sweepCache drops expired entries once per TTL until ctx is done.
func sweepCache(ctx context.Context, bs *bootstrap.Bootstrap) {
	ticker := time.NewTicker(bs.Cache.TTL())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := bs.Cache.Sweep(ctx); n > 0 {
				bs.Log.Debug("swept cache", "removed", n)
			}
		}
	}
}
