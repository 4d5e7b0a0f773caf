package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"cloud.google.com/go/firestore"
	gcpkms "cloud.google.com/go/kms/apiv1"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	gcs "cloud.google.com/go/storage"
	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/wallet-api/internal/cache"
	identityclient "github.com/GregMSThompson/wallet-api/internal/client/identity"
	"github.com/GregMSThompson/wallet-api/internal/config"
	"github.com/GregMSThompson/wallet-api/internal/events"
	"github.com/GregMSThompson/wallet-api/pkg/logger"
)

type Bootstrap struct {
	Log       *slog.Logger
	Firestore *firestore.Client
	Firebase  *auth.Client
	Bucket    *gcs.BucketHandle
	Identity  *identityclient.Adapter
	// KMS is nil when no key is configured.
	KMS     *gcpkms.KeyManagementClient
	Secrets *secretmanager.Client
	Cache   *cache.Cache
	// Bus is nil when no broker is configured.
	Bus *events.Bus

	closeCache func() error
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewCloudRunHandler)
	if err = cfg.Validate(); err != nil {
		return bs, err
	}

	bs.Firestore, err = InitFirestore(applicationCtx, bs.Log, cfg.ProjectID)
	if err != nil {
		return bs, err
	}
	app, err := InitFirebase(applicationCtx, cfg.ProjectID, cfg.StorageBucket)
	if err != nil {
		return bs, err
	}
	bs.Firebase, err = InitAuth(applicationCtx, app)
	if err != nil {
		return bs, err
	}
	bs.Bucket, err = InitBucket(applicationCtx, app)
	if err != nil {
		return bs, err
	}

	if cfg.FirebaseAPIKey == "" {
		bs.Secrets, err = InitSecretManager(applicationCtx)
		if err != nil {
			return bs, err
		}
	}
	bs.Identity, err = InitIdentity(applicationCtx, cfg, bs.Secrets)
	if err != nil {
		return bs, err
	}

	if cfg.KMSKeyName != "" {
		bs.KMS, err = InitKMS(applicationCtx)
		if err != nil {
			return bs, err
		}
	}

	bs.Cache, bs.closeCache, err = InitCache(cfg)
	if err != nil {
		return bs, err
	}

	if cfg.AMQPURL != "" {
		bs.Bus, err = events.NewBus(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return bs, err
		}
		bs.Cache.SetNotifier(bs.Bus)
	}

	return bs, nil
}

// Close releases every client that was opened.
func (bs *Bootstrap) Close() error {
	var errList []error
	if bs.Bus != nil {
		errList = append(errList, bs.Bus.Close())
	}
	if bs.closeCache != nil {
		errList = append(errList, bs.closeCache())
	}
	if bs.KMS != nil {
		errList = append(errList, bs.KMS.Close())
	}
	if bs.Secrets != nil {
		errList = append(errList, bs.Secrets.Close())
	}
	if bs.Firestore != nil {
		errList = append(errList, bs.Firestore.Close())
	}
	return errors.Join(errList...)
}
