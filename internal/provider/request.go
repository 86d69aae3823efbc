package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nextlevelbuilder/dictaflow/internal/awscred"
)

const (
	anthropicVersion = "2023-06-01"
	bedrockService   = "bedrock"

	// DefaultMaxTokens bounds the completion size for providers that require
	// an explicit budget.
	DefaultMaxTokens = 8192

	bedrockTemperature = 0.2
	defaultTemperature = 0.3
)

// ChatRequest is the provider-independent request content.
type ChatRequest struct {
	System    string
	User      string
	MaxTokens int
}

// noTemperatureModelPrefixes lists model families that reject an explicit
// temperature parameter. The same families accept reasoning_effort.
var noTemperatureModelPrefixes = []string{"gpt-5", "o1", "o3", "o4"}

func modelOmitsTemperature(model string) bool {
	for _, prefix := range noTemperatureModelPrefixes {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// NewHTTPRequest builds the fully authenticated HTTP request for one chat
// call against the session. now feeds the request signature for signing
// sessions; bearer and header auth ignore it.
func NewHTTPRequest(ctx context.Context, s *Session, cr ChatRequest, now time.Time) (*http.Request, error) {
	maxTokens := cr.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	var payload any
	switch s.Provider {
	case OpenAI, Groq, OpenRouter:
		body := map[string]any{
			"model": s.Model,
			"messages": []map[string]string{
				{"role": "system", "content": cr.System},
				{"role": "user", "content": cr.User},
			},
			"stream": false,
		}
		if modelOmitsTemperature(s.Model) {
			body["reasoning_effort"] = "low"
		} else {
			body["temperature"] = defaultTemperature
		}
		payload = body

	case Anthropic:
		payload = map[string]any{
			"model":      s.Model,
			"max_tokens": maxTokens,
			"system":     cr.System,
			"messages": []map[string]string{
				{"role": "user", "content": cr.User},
			},
		}

	case Bedrock:
		// Converse takes no separate system field here; the instruction is
		// folded into the single user message.
		text := cr.User
		if cr.System != "" {
			text = cr.System + "\n\n" + cr.User
		}
		payload = map[string]any{
			"messages": []map[string]any{
				{"role": "user", "content": []map[string]string{{"text": text}}},
			},
			"inferenceConfig": map[string]any{
				"maxTokens":   maxTokens,
				"temperature": bedrockTemperature,
			},
		}

	default:
		return nil, fmt.Errorf("unhandled provider %q", s.Provider)
	}

	bodyJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", s.Provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", s.Provider, err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := attachAuth(req, s, bodyJSON, now); err != nil {
		return nil, err
	}
	return req, nil
}

// attachAuth adds the session's auth headers to the request.
func attachAuth(req *http.Request, s *Session, body []byte, now time.Time) error {
	switch auth := s.Auth.(type) {
	case BearerAuth:
		req.Header.Set("Authorization", "Bearer "+auth.Token)
		return nil

	case HeaderAuth:
		req.Header.Set("x-api-key", auth.Token)
		req.Header.Set("anthropic-version", anthropicVersion)
		return nil

	case SigningAuth:
		signed := awscred.SignV4(awscred.SigningInput{
			Method:      req.Method,
			URL:         req.URL,
			Headers:     req.Header,
			Body:        body,
			Credentials: auth.Credentials,
			Region:      s.Region,
			Service:     bedrockService,
			Time:        now,
		})
		req.Header = signed
		return nil

	default:
		return fmt.Errorf("session for %s carries no auth", s.Provider)
	}
}
