package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/nextlevelbuilder/dictaflow/internal/awscred"
)

func decodeBody(t *testing.T, req *http.Request) map[string]any {
	t.Helper()
	rc, err := req.GetBody()
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	var body map[string]any
	if err := json.NewDecoder(rc).Decode(&body); err != nil {
		t.Fatal(err)
	}
	return body
}

func TestNewHTTPRequest_OpenAIShape(t *testing.T) {
	s := &Session{Provider: OpenAI, Model: "gpt-4o-mini", Endpoint: "https://api.openai.com/v1/chat/completions",
		Auth: BearerAuth{Token: "sk-test"}}

	req, err := NewHTTPRequest(context.Background(), s, ChatRequest{System: "sys", User: "usr"}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := req.Header.Get("Authorization"); got != "Bearer sk-test" {
		t.Errorf("unexpected auth header: %q", got)
	}
	body := decodeBody(t, req)
	if body["model"] != "gpt-4o-mini" || body["stream"] != false {
		t.Errorf("unexpected body: %v", body)
	}
	if _, ok := body["temperature"]; !ok {
		t.Error("expected temperature for a non-reasoning model")
	}
	messages := body["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(messages))
	}
	first := messages[0].(map[string]any)
	if first["role"] != "system" || first["content"] != "sys" {
		t.Errorf("unexpected first message: %v", first)
	}
}

func TestNewHTTPRequest_ReasoningModelOmitsTemperature(t *testing.T) {
	s := &Session{Provider: OpenAI, Model: "o3-mini", Endpoint: "https://api.openai.com/v1/chat/completions",
		Auth: BearerAuth{Token: "sk"}}

	req, err := NewHTTPRequest(context.Background(), s, ChatRequest{User: "usr"}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := decodeBody(t, req)
	if _, ok := body["temperature"]; ok {
		t.Error("temperature must be omitted for reasoning models")
	}
	if body["reasoning_effort"] != "low" {
		t.Errorf("expected reasoning_effort=low, got %v", body["reasoning_effort"])
	}
}

func TestNewHTTPRequest_AnthropicShape(t *testing.T) {
	s := &Session{Provider: Anthropic, Model: "claude-3-5-haiku-20241022", Endpoint: "https://api.anthropic.com/v1/messages",
		Auth: HeaderAuth{Token: "sk-ant"}}

	req, err := NewHTTPRequest(context.Background(), s, ChatRequest{System: "sys", User: "usr", MaxTokens: 100}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Header.Get("x-api-key") != "sk-ant" {
		t.Error("x-api-key header missing")
	}
	if req.Header.Get("anthropic-version") != "2023-06-01" {
		t.Error("anthropic-version header missing")
	}
	if req.Header.Get("Authorization") != "" {
		t.Error("anthropic requests must not carry a bearer header")
	}

	body := decodeBody(t, req)
	if body["system"] != "sys" {
		t.Errorf("expected top-level system field, got %v", body["system"])
	}
	if body["max_tokens"] != float64(100) {
		t.Errorf("expected max_tokens 100, got %v", body["max_tokens"])
	}
	messages := body["messages"].([]any)
	if len(messages) != 1 {
		t.Errorf("expected a single user message, got %d", len(messages))
	}
}

func TestNewHTTPRequest_BedrockSigned(t *testing.T) {
	s := &Session{
		Provider: Bedrock,
		Model:    "anthropic.claude-3-5-haiku-20241022-v1:0",
		Region:   "us-east-1",
		Endpoint: BedrockEndpoint("us-east-1", "anthropic.claude-3-5-haiku-20241022-v1:0"),
		Auth: SigningAuth{Credentials: awscred.Credentials{
			AccessKeyID: "AKIATEST", SecretAccessKey: "secret",
		}},
	}

	req, err := NewHTTPRequest(context.Background(), s, ChatRequest{System: "sys", User: "usr"}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(req.URL.String(), "https://bedrock-runtime.us-east-1.amazonaws.com/model/") {
		t.Errorf("unexpected URL: %s", req.URL)
	}
	if !strings.HasSuffix(req.URL.Path, "/converse") {
		t.Errorf("expected converse path, got %s", req.URL.Path)
	}
	if !strings.HasPrefix(req.Header.Get("Authorization"), "AWS4-HMAC-SHA256 ") {
		t.Errorf("expected SigV4 authorization, got %q", req.Header.Get("Authorization"))
	}
	if req.Header.Get("X-Amz-Date") == "" {
		t.Error("X-Amz-Date missing from signed request")
	}

	body := decodeBody(t, req)
	if _, ok := body["system"]; ok {
		t.Error("bedrock payload must not have a separate system field")
	}
	messages := body["messages"].([]any)
	content := messages[0].(map[string]any)["content"].([]any)
	text := content[0].(map[string]any)["text"].(string)
	if text != "sys\n\nusr" {
		t.Errorf("system text must be folded into the user message, got %q", text)
	}
	inf := body["inferenceConfig"].(map[string]any)
	if inf["maxTokens"] != float64(DefaultMaxTokens) {
		t.Errorf("expected default max tokens, got %v", inf["maxTokens"])
	}
}

func TestNewHTTPRequest_BedrockBearer(t *testing.T) {
	s := &Session{Provider: Bedrock, Model: "m", Region: "us-east-1",
		Endpoint: BedrockEndpoint("us-east-1", "m"), Auth: BearerAuth{Token: "bedrock-key"}}

	req, err := NewHTTPRequest(context.Background(), s, ChatRequest{User: "usr"}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Header.Get("Authorization") != "Bearer bedrock-key" {
		t.Errorf("expected plain bearer auth, got %q", req.Header.Get("Authorization"))
	}
}

func TestCrossRegionModel(t *testing.T) {
	if got := crossRegionModel("us-east-1", "anthropic.claude"); got != "us.anthropic.claude" {
		t.Errorf("expected us. prefix, got %q", got)
	}
	if got := crossRegionModel("eu-west-1", "anthropic.claude"); got != "eu.anthropic.claude" {
		t.Errorf("expected eu. prefix, got %q", got)
	}
	if got := crossRegionModel("ap-southeast-2", "anthropic.claude"); got != "apac.anthropic.claude" {
		t.Errorf("expected apac. prefix, got %q", got)
	}
	if got := crossRegionModel("us-east-1", "us.anthropic.claude"); got != "us.anthropic.claude" {
		t.Errorf("already prefixed model must pass through, got %q", got)
	}
}
