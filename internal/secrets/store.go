// Package secrets provides opaque key/value secret storage for API keys and
// access credentials. Secrets are addressed by logical key; callers never see
// where or how the value is stored.
package secrets

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no secret exists under the requested key.
var ErrNotFound = errors.New("secret not found")

// Store manages stored secrets by logical key.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
