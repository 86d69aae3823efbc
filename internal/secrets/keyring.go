package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// serviceName namespaces our entries in the OS keychain.
const serviceName = "dictaflow"

// KeyringStore stores secrets in the OS keychain (Keychain on macOS,
// Secret Service on Linux, Credential Manager on Windows).
type KeyringStore struct {
	service string
}

// NewKeyringStore creates a keychain-backed secret store.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: serviceName}
}

func (s *KeyringStore) Get(ctx context.Context, key string) (string, error) {
	value, err := keyring.Get(s.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("keychain get %s: %w", key, err)
	}
	return value, nil
}

func (s *KeyringStore) Set(ctx context.Context, key, value string) error {
	if err := keyring.Set(s.service, key, value); err != nil {
		return fmt.Errorf("keychain set %s: %w", key, err)
	}
	return nil
}

func (s *KeyringStore) Delete(ctx context.Context, key string) error {
	err := keyring.Delete(s.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keychain delete %s: %w", key, err)
	}
	return nil
}
