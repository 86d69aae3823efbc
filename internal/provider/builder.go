package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/dictaflow/internal/awscred"
	"github.com/nextlevelbuilder/dictaflow/internal/config"
	"github.com/nextlevelbuilder/dictaflow/internal/secrets"
)

// ErrNoCredentials is returned when a configuration's auth descriptor does
// not resolve to usable credentials for its provider.
var ErrNoCredentials = errors.New("configuration has no usable credentials")

// ProfileResolver resolves a named external credential profile. Satisfied by
// *awscred.Resolver; tests inject fakes.
type ProfileResolver interface {
	GetCredentials(profileName string) (awscred.Credentials, error)
}

// Builder derives the single shared active session from the current settings.
// Rebuild is cheap for store-backed auth; profile-backed auth resolves
// asynchronously, and only the most recent rebuild is allowed to publish its
// result, so a stale resolution can never resurrect an old session.
type Builder struct {
	settings *config.Store
	secrets  secrets.Store
	resolver ProfileResolver

	mu      sync.Mutex
	current *Session
	pending string // token of the most recent rebuild
}

// NewBuilder creates a session builder over the given collaborators.
func NewBuilder(settings *config.Store, secretStore secrets.Store, resolver ProfileResolver) *Builder {
	return &Builder{settings: settings, secrets: secretStore, resolver: resolver}
}

// Current returns the active session, or nil when enhancement is not
// configured.
func (b *Builder) Current() *Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Rebuild re-derives the active session from the current settings. Building
// never fails: any unsatisfied precondition collapses to "no session".
// Profile-backed Bedrock configurations publish nil immediately and fill the
// session in once resolution completes, unless a newer rebuild has started.
func (b *Builder) Rebuild(ctx context.Context) {
	token := uuid.NewString()
	b.mu.Lock()
	b.pending = token
	b.mu.Unlock()

	cfg, ok := b.settings.ActiveConfiguration()
	if !ok {
		b.publish(token, b.legacySession())
		return
	}

	if ID(cfg.Provider) == Bedrock && cfg.AuthKind == config.AuthProfile {
		b.publish(token, nil)
		go func() {
			session, err := b.profileSession(cfg)
			if err != nil {
				slog.Warn("session.profile_resolution_failed",
					"config", cfg.ID, "profile", cfg.Profile, "error", err)
				session = nil
			}
			b.publish(token, session)
		}()
		return
	}

	b.publish(token, b.buildSync(ctx, cfg))
}

// BuildBlocking builds a session for a specific configuration, resolving a
// credential profile inline when needed. Used by the validation service to
// probe candidate configurations without touching the shared session.
func (b *Builder) BuildBlocking(ctx context.Context, cfg config.Configuration) (*Session, error) {
	if ID(cfg.Provider) == Bedrock && cfg.AuthKind == config.AuthProfile {
		return b.profileSession(cfg)
	}
	session := b.buildSync(ctx, cfg)
	if session == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoCredentials, cfg.Name)
	}
	return session, nil
}

// publish installs a session if token still identifies the latest rebuild.
func (b *Builder) publish(token string, session *Session) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending != token {
		return
	}
	b.current = session
	if session != nil {
		slog.Info("session.ready", "provider", session.Provider, "model", session.Model)
	} else {
		slog.Info("session.cleared")
	}
}

// buildSync handles every auth shape that needs no I/O beyond the secret
// store. Returns nil when nothing resolves.
func (b *Builder) buildSync(ctx context.Context, cfg config.Configuration) *Session {
	info, ok := Lookup(ID(cfg.Provider))
	if !ok {
		return nil
	}
	model := cfg.Model
	if model == "" {
		model = info.DefaultModel
	}

	switch info.ID {
	case Bedrock:
		region := cfg.Region
		if region == "" {
			region = defaultBedrockRegion
		}
		if cfg.CrossRegion {
			model = crossRegionModel(region, model)
		}
		// Explicit access key pair takes precedence over a bearer secret.
		accessKey, _ := b.secrets.Get(ctx, cfg.AccessKeySecretKey())
		secretKey, _ := b.secrets.Get(ctx, cfg.SecretKeySecretKey())
		if accessKey != "" && secretKey != "" {
			return &Session{
				Provider: Bedrock,
				Model:    model,
				Region:   region,
				Endpoint: BedrockEndpoint(region, model),
				Auth: SigningAuth{Credentials: awscred.Credentials{
					AccessKeyID:     accessKey,
					SecretAccessKey: secretKey,
					Region:          region,
				}},
			}
		}
		if token := b.configOrLegacyKey(ctx, cfg); token != "" {
			return &Session{
				Provider: Bedrock,
				Model:    model,
				Region:   region,
				Endpoint: BedrockEndpoint(region, model),
				Auth:     BearerAuth{Token: token},
			}
		}
		return nil

	case Anthropic:
		if token := b.configOrLegacyKey(ctx, cfg); token != "" {
			return &Session{Provider: Anthropic, Model: model, Endpoint: info.Endpoint, Auth: HeaderAuth{Token: token}}
		}
		return nil

	case OpenAI, Groq, OpenRouter:
		if token := b.configOrLegacyKey(ctx, cfg); token != "" {
			return &Session{Provider: info.ID, Model: model, Endpoint: info.Endpoint, Auth: BearerAuth{Token: token}}
		}
		return nil

	default:
		return nil
	}
}

// profileSession resolves an AWS profile into a signing session. The region
// resolved from the profile files overrides the configuration's stored one.
func (b *Builder) profileSession(cfg config.Configuration) (*Session, error) {
	creds, err := b.resolver.GetCredentials(cfg.Profile)
	if err != nil {
		return nil, err
	}

	region := creds.Region
	if region == "" {
		region = cfg.Region
	}
	if region == "" {
		region = defaultBedrockRegion
	}
	creds.Region = region

	info, _ := Lookup(Bedrock)
	model := cfg.Model
	if model == "" {
		model = info.DefaultModel
	}
	if cfg.CrossRegion {
		model = crossRegionModel(region, model)
	}

	return &Session{
		Provider: Bedrock,
		Model:    model,
		Region:   region,
		Endpoint: BedrockEndpoint(region, model),
		Auth:     SigningAuth{Credentials: creds},
	}, nil
}

// configOrLegacyKey fetches the configuration's stored API key, falling back
// to the legacy single-global-key setting.
func (b *Builder) configOrLegacyKey(ctx context.Context, cfg config.Configuration) string {
	if cfg.AuthKind == config.AuthAPIKey {
		if key, err := b.secrets.Get(ctx, cfg.APIKeySecretKey()); err == nil && key != "" {
			return key
		}
	}
	return b.settings.Get().LegacyAPIKey
}

// legacySession builds a session from the legacy single provider + key pair,
// used when no configuration is selected.
func (b *Builder) legacySession() *Session {
	s := b.settings.Get()
	if s.LegacyProvider == "" || s.LegacyAPIKey == "" {
		return nil
	}
	info, ok := Lookup(ID(s.LegacyProvider))
	if !ok || info.Signing {
		return nil
	}

	session := &Session{Provider: info.ID, Model: info.DefaultModel, Endpoint: info.Endpoint}
	if info.ID == Anthropic {
		session.Auth = HeaderAuth{Token: s.LegacyAPIKey}
	} else {
		session.Auth = BearerAuth{Token: s.LegacyAPIKey}
	}
	return session
}
