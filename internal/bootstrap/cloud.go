package bootstrap

import (
	"context"
	"fmt"

	gcpkms "cloud.google.com/go/kms/apiv1"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"

	identityclient "github.com/GregMSThompson/wallet-api/internal/client/identity"
	"github.com/GregMSThompson/wallet-api/internal/config"
	"github.com/GregMSThompson/wallet-api/internal/store"
)

func InitKMS(ctx context.Context) (*gcpkms.KeyManagementClient, error) {
	return gcpkms.NewKeyManagementClient(ctx)
}

func InitSecretManager(ctx context.Context) (*secretmanager.Client, error) {
	return secretmanager.NewClient(ctx)
}

// InitIdentity builds the password sign-in client. The API key comes from
// FIREBASEAPIKEY or, when that is empty, from Secret Manager.
func InitIdentity(ctx context.Context, cfg *config.Config, secrets *secretmanager.Client) (*identityclient.Adapter, error) {
	apiKey := cfg.FirebaseAPIKey
	if apiKey == "" {
		if secrets == nil {
			return nil, fmt.Errorf("no firebase api key configured")
		}
		var err error
		apiKey, err = store.NewSecretsStore(secrets, cfg.ProjectID).Access(ctx, cfg.FirebaseAPIKeySecret)
		if err != nil {
			return nil, fmt.Errorf("resolve firebase api key: %w", err)
		}
	}
	return identityclient.NewAdapter(ctx, apiKey)
}
