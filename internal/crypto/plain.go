package crypto

import "context"

// Plain stores secrets as-is. Used when no KMS key is configured.
type Plain struct{}

func (Plain) Seal(_ context.Context, plaintext, _ string) (string, error) {
	return plaintext, nil
}

func (Plain) Open(_ context.Context, sealed, _ string) (string, error) {
	return sealed, nil
}
