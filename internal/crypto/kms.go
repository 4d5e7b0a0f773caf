package crypto

import (
	"context"
	"encoding/base64"

	gcpkms "cloud.google.com/go/kms/apiv1"
	"cloud.google.com/go/kms/apiv1/kmspb"

	"github.com/GregMSThompson/wallet-api/internal/errs"
)

// Cipher seals short secrets for storage. aad binds the ciphertext to a
// context (the owning user) so it cannot be replayed onto another record.
type Cipher interface {
	Seal(ctx context.Context, plaintext, aad string) (string, error)
	Open(ctx context.Context, sealed, aad string) (string, error)
}

type kms struct {
	client  *gcpkms.KeyManagementClient
	keyName string
}

func NewKMS(client *gcpkms.KeyManagementClient, keyName string) *kms {
	return &kms{client: client, keyName: keyName}
}

// Seal encrypts plaintext with the configured key and returns base64 text.
func (k *kms) Seal(ctx context.Context, plaintext, aad string) (string, error) {
	resp, err := k.client.Encrypt(ctx, &kmspb.EncryptRequest{
		Name:                        k.keyName,
		Plaintext:                   []byte(plaintext),
		AdditionalAuthenticatedData: []byte(aad),
	})
	if err != nil {
		return "", errs.NewExternalServiceError("kms", "failed to encrypt card secret", false, err)
	}
	return base64.StdEncoding.EncodeToString(resp.Ciphertext), nil
}

func (k *kms) Open(ctx context.Context, sealed, aad string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", errs.NewValidationError("stored card secret is not valid base64")
	}
	resp, err := k.client.Decrypt(ctx, &kmspb.DecryptRequest{
		Name:                        k.keyName,
		Ciphertext:                  raw,
		AdditionalAuthenticatedData: []byte(aad),
	})
	if err != nil {
		return "", errs.NewExternalServiceError("kms", "failed to decrypt card secret", false, err)
	}
	return string(resp.Plaintext), nil
}
