package provider

import (
	"context"

	"github.com/nextlevelbuilder/dictaflow/internal/config"
	"github.com/nextlevelbuilder/dictaflow/internal/secrets"
)

// Validity is the recomputed usability of a configuration. The secret store
// and the credential files can change out of band, so this is derived on
// every read and never persisted.
type Validity struct {
	Valid  bool
	Reason string // empty when valid
}

// CheckConfiguration reports whether a configuration's auth descriptor
// resolves to non-empty credentials for its provider's required shape, and
// whether provider-specific required fields are present.
func CheckConfiguration(ctx context.Context, cfg config.Configuration, secretStore secrets.Store, resolver ProfileResolver) Validity {
	info, ok := Lookup(ID(cfg.Provider))
	if !ok {
		return Validity{Reason: "unknown provider " + cfg.Provider}
	}

	switch {
	case info.ID == Bedrock && cfg.AuthKind == config.AuthProfile:
		if cfg.Profile == "" {
			return Validity{Reason: "no credential profile selected"}
		}
		if _, err := resolver.GetCredentials(cfg.Profile); err != nil {
			return Validity{Reason: "profile does not resolve: " + err.Error()}
		}
		return Validity{Valid: true}

	case info.ID == Bedrock:
		if cfg.Region == "" {
			return Validity{Reason: "region is required"}
		}
		accessKey, _ := secretStore.Get(ctx, cfg.AccessKeySecretKey())
		secretKey, _ := secretStore.Get(ctx, cfg.SecretKeySecretKey())
		if accessKey != "" && secretKey != "" {
			return Validity{Valid: true}
		}
		if key, _ := secretStore.Get(ctx, cfg.APIKeySecretKey()); key != "" {
			return Validity{Valid: true}
		}
		return Validity{Reason: "no access key pair or API key stored"}

	case cfg.AuthKind == config.AuthAPIKey:
		if key, _ := secretStore.Get(ctx, cfg.APIKeySecretKey()); key != "" {
			return Validity{Valid: true}
		}
		return Validity{Reason: "no API key stored"}

	default:
		return Validity{Reason: "configuration carries no credentials"}
	}
}
