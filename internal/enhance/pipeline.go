// Package enhance runs transcribed text through the active provider session:
// rate limiting, provider-specific payloads, classified retries, response
// parsing and output cleanup.
package enhance

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nextlevelbuilder/dictaflow/internal/config"
	"github.com/nextlevelbuilder/dictaflow/internal/provider"
)

// minRequestInterval is the enforced gap between request starts.
const minRequestInterval = time.Second

const requestTimeout = 60 * time.Second

// Result is the outcome of one enhancement call.
type Result struct {
	Text       string
	Elapsed    time.Duration
	PromptName string
}

// RequestSnapshot records the last request sent, for diagnostic display.
type RequestSnapshot struct {
	System string
	User   string
	SentAt time.Time
}

// SessionSource yields the shared active session. Satisfied by
// *provider.Builder.
type SessionSource interface {
	Current() *provider.Session
}

// Pipeline is the enhancement request pipeline. It reads the shared active
// session on every call and owns its own rate limiter so tests can reset it.
type Pipeline struct {
	sessions SessionSource
	settings *config.Store
	context  ContextSource

	client  *http.Client
	limiter *rate.Limiter
	retry   RetryConfig

	mu   sync.Mutex
	last RequestSnapshot
}

// NewPipeline creates a pipeline over the shared session builder and
// settings store. src may be nil when no desktop context capture exists.
func NewPipeline(sessions SessionSource, settings *config.Store, src ContextSource) *Pipeline {
	return &Pipeline{
		sessions: sessions,
		settings: settings,
		context:  src,
		client:   &http.Client{Timeout: requestTimeout},
		limiter:  rate.NewLimiter(rate.Every(minRequestInterval), 1),
		retry:    DefaultRetryConfig(),
	}
}

// LastRequest returns a snapshot of the most recently sent request.
func (p *Pipeline) LastRequest() RequestSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Enhance sends text through the active session and returns the cleaned-up
// result. Empty input short-circuits with an empty result and no network
// call. Fails with ErrNotConfigured when no session exists.
func (p *Pipeline) Enhance(ctx context.Context, text string) (Result, error) {
	settings := p.settings.Get()
	promptName := settings.ActivePromptName

	if strings.TrimSpace(text) == "" {
		return Result{PromptName: promptName}, nil
	}

	session := p.sessions.Current()
	if session == nil {
		return Result{}, ErrNotConfigured
	}

	system := buildSystemInstruction(settings, p.context)

	// One conceptual in-flight slot: wait out the minimum interval since
	// the previous request start.
	if err := p.limiter.Wait(ctx); err != nil {
		return Result{}, err
	}

	p.mu.Lock()
	p.last = RequestSnapshot{System: system, User: text, SentAt: time.Now()}
	p.mu.Unlock()

	slog.Info("enhance.request", "provider", session.Provider, "model", session.Model,
		"system_chars", len(system), "user_chars", len(text))

	start := time.Now()
	raw, attempts, err := executeWithRetry(ctx, p.retry, func() (string, error) {
		return p.dispatch(ctx, session, system, text)
	})
	elapsed := time.Since(start)

	if err != nil {
		slog.Error("enhance.request_failed", "provider", session.Provider,
			"attempts", attempts, "elapsed", elapsed, "error", err)
		return Result{}, err
	}

	return Result{
		Text:       FilterOutput(raw),
		Elapsed:    elapsed,
		PromptName: promptName,
	}, nil
}

// dispatch performs a single request attempt and classifies its failure.
func (p *Pipeline) dispatch(ctx context.Context, s *provider.Session, system, user string) (string, error) {
	req, err := provider.NewHTTPRequest(ctx, s, provider.ChatRequest{
		System:    system,
		User:      user,
		MaxTokens: provider.DefaultMaxTokens,
	}, time.Now())
	if err != nil {
		return "", err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Err: err}
	}

	if err := classifyStatus(resp.StatusCode, body); err != nil {
		return "", err
	}

	text, err := provider.ParseResponse(s.Provider, body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEnhancementFailed, err)
	}
	return text, nil
}
