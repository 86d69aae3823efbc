// Package validation probes candidate provider configurations with a hard
// timeout before they become active. At most one validation is in flight;
// starting a new one cancels and discards the previous attempt entirely.
package validation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/nextlevelbuilder/dictaflow/internal/config"
	"github.com/nextlevelbuilder/dictaflow/internal/provider"
)

const (
	// probeTimeout is the hard budget for one validation probe.
	probeTimeout = 5 * time.Second

	// probeMaxTokens keeps the probe completion tiny.
	probeMaxTokens = 16

	// successHold is how long the transient success indicator stays up.
	successHold = 2 * time.Second
)

// State of the validation service.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
)

// Status is a snapshot of the service's published state.
type Status struct {
	State       State
	ConfigID    string // target of the in-flight validation, if any
	Err         *Error // retained failure, nil when none
	SucceededID string // configuration showing the transient success flag
}

// SessionBuilder builds a probe session for a candidate configuration.
// Satisfied by *provider.Builder.
type SessionBuilder interface {
	BuildBlocking(ctx context.Context, cfg config.Configuration) (*provider.Session, error)
}

// Service validates configurations before activating them.
type Service struct {
	settings *config.Store
	sessions SessionBuilder
	client   *http.Client

	timeout     time.Duration
	successHold time.Duration

	mu           sync.Mutex
	gen          uint64 // bumped on every switch/cancel; stale attempts compare against it
	validatingID string
	cancel       context.CancelFunc
	lastErr      *Error
	successID    string
	successTimer *time.Timer
}

// NewService creates a validation service over the shared settings store and
// session builder.
func NewService(settings *config.Store, sessions SessionBuilder) *Service {
	return &Service{
		settings:    settings,
		sessions:    sessions,
		client:      &http.Client{},
		timeout:     probeTimeout,
		successHold: successHold,
	}
}

// Status returns the current published state.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{ConfigID: s.validatingID, Err: s.lastErr, SucceededID: s.successID}
	if s.validatingID != "" {
		st.State = StateValidating
	} else {
		st.State = StateIdle
	}
	return st
}

// SwitchTo starts validating the configuration with the given id, cancelling
// any in-flight validation and clearing any prior error. On success the
// configuration becomes active in settings.
func (s *Service) SwitchTo(ctx context.Context, configID string) {
	cfg, ok := s.settings.ConfigurationByID(configID)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	gen := s.gen
	s.lastErr = nil
	s.clearSuccessLocked()

	if !ok {
		s.validatingID = ""
		s.lastErr = &Error{Kind: KindUnknown, Detail: "unknown configuration " + configID}
		s.mu.Unlock()
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.validatingID = configID
	s.mu.Unlock()

	slog.Info("validation.started", "config", configID, "provider", cfg.Provider)
	go s.run(runCtx, gen, cfg)
}

// CancelValidation aborts any in-flight validation without recording a
// result.
func (s *Service) CancelValidation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.validatingID = ""
}

// ClearError dismisses a retained validation failure.
func (s *Service) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = nil
}

// run executes one validation attempt and publishes its outcome, unless a
// newer attempt superseded it in the meantime. A superseded attempt must
// leave no trace: not even its error is recorded.
func (s *Service) run(ctx context.Context, gen uint64, cfg config.Configuration) {
	verr := s.probe(ctx, cfg)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || ctx.Err() != nil {
		return
	}

	s.validatingID = ""
	s.cancel = nil

	if verr != nil {
		s.lastErr = verr
		slog.Warn("validation.failed", "config", cfg.ID, "kind", verr.Kind, "error", verr)
		return
	}

	if err := s.settings.SetActiveConfiguration(cfg.ID); err != nil {
		s.lastErr = &Error{Kind: KindUnknown, Detail: err.Error()}
		return
	}
	slog.Info("validation.succeeded", "config", cfg.ID)

	s.successID = cfg.ID
	s.successTimer = time.AfterFunc(s.successHold, func() {
		s.mu.Lock()
		if s.successID == cfg.ID {
			s.successID = ""
		}
		s.mu.Unlock()
	})
}

// probe races the live probe against the timeout.
func (s *Service) probe(ctx context.Context, cfg config.Configuration) *Error {
	verr, err := raceTimeout(ctx, s.timeout, func(ctx context.Context) (*Error, error) {
		return s.ValidateOnce(ctx, cfg), nil
	})
	switch {
	case err == nil:
		return verr
	case errors.Is(err, errProbeTimedOut):
		return &Error{Kind: KindTimeout, Provider: provider.ID(cfg.Provider)}
	case ctx.Err() != nil:
		// Superseded; run() will discard the outcome anyway.
		return nil
	default:
		return &Error{Kind: KindUnknown, Provider: provider.ID(cfg.Provider), Detail: err.Error()}
	}
}

// ValidateOnce performs a single live probe of a configuration with a
// minimal prompt and a tiny completion budget. Shared between the background
// switch validation and the quick verify-and-save flow.
func (s *Service) ValidateOnce(ctx context.Context, cfg config.Configuration) *Error {
	pid := provider.ID(cfg.Provider)

	session, err := s.sessions.BuildBlocking(ctx, cfg)
	if err != nil {
		return &Error{Kind: KindInvalidCredentials, Provider: pid, Detail: err.Error()}
	}

	req, err := provider.NewHTTPRequest(ctx, session, provider.ChatRequest{
		User:      "Hi",
		MaxTokens: probeMaxTokens,
	}, time.Now())
	if err != nil {
		return &Error{Kind: KindUnknown, Provider: pid, Detail: err.Error()}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Provider: pid, Detail: err.Error()}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusOK {
		return nil
	}
	return FromStatus(pid, resp.StatusCode, parseRetryAfter(resp.Header.Get("Retry-After")))
}

// parseRetryAfter reads a seconds-valued Retry-After header; 0 when absent
// or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	secs, err := strconv.Atoi(value)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func (s *Service) clearSuccessLocked() {
	if s.successTimer != nil {
		s.successTimer.Stop()
		s.successTimer = nil
	}
	s.successID = ""
}
