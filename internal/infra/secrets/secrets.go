package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spounge-ai/postgresql-connector/internal/infra/config"
)

// SecretProvider retrieves a named secret.
type SecretProvider interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// LoadPublicKey returns the PEM bytes of the token verification key. The
// SSM parameter wins when configured; store may be nil otherwise.
func LoadPublicKey(ctx context.Context, cfg config.AuthConfig, store SecretProvider) ([]byte, error) {
	if cfg.PublicKeySSMParameter != "" {
		if store == nil {
			return nil, errors.New("public key parameter configured without a secret provider")
		}
		value, err := store.GetSecret(ctx, cfg.PublicKeySSMParameter)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch public key: %w", err)
		}
		return []byte(value), nil
	}

	if cfg.PublicKeyPath == "" {
		return nil, errors.New("no public key source configured")
	}
	data, err := os.ReadFile(cfg.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key file: %w", err)
	}
	return data, nil
}
