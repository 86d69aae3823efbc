// Package provider defines the closed set of remote LLM backends, builds the
// active session from a configuration, and knows how to shape and parse each
// provider's requests and responses.
package provider

import (
	"fmt"
	"net/url"
	"strings"
)

// ID tags one of the supported providers. The set is closed: every dispatch
// point in this package switches on it exhaustively.
type ID string

const (
	OpenAI     ID = "openai"
	Groq       ID = "groq"
	OpenRouter ID = "openrouter"
	Anthropic  ID = "anthropic"
	Bedrock    ID = "bedrock"
)

// Info describes a provider's fixed endpoint and defaults.
type Info struct {
	ID           ID
	Endpoint     string // full request URL; empty for Bedrock (region-specific)
	DefaultModel string
	Signing      bool // authenticated via computed request signatures
}

var catalog = []Info{
	{ID: OpenAI, Endpoint: "https://api.openai.com/v1/chat/completions", DefaultModel: "gpt-4o-mini"},
	{ID: Groq, Endpoint: "https://api.groq.com/openai/v1/chat/completions", DefaultModel: "llama-3.3-70b-versatile"},
	{ID: OpenRouter, Endpoint: "https://openrouter.ai/api/v1/chat/completions", DefaultModel: "openai/gpt-4o-mini"},
	{ID: Anthropic, Endpoint: "https://api.anthropic.com/v1/messages", DefaultModel: "claude-3-5-haiku-20241022"},
	{ID: Bedrock, DefaultModel: "anthropic.claude-3-5-haiku-20241022-v1:0", Signing: true},
}

// defaultBedrockRegion is used when neither the configuration nor the
// resolved credentials carry a region.
const defaultBedrockRegion = "us-east-1"

// Lookup returns the catalog entry for a provider tag.
func Lookup(id ID) (Info, bool) {
	for _, info := range catalog {
		if info.ID == id {
			return info, true
		}
	}
	return Info{}, false
}

// All returns the provider catalog in display order.
func All() []Info {
	return append([]Info{}, catalog...)
}

// BedrockEndpoint builds the region-specific runtime URL for a model.
func BedrockEndpoint(region, model string) string {
	return fmt.Sprintf("https://bedrock-runtime.%s.amazonaws.com/model/%s/converse",
		region, url.PathEscape(model))
}

// crossRegionModel prefixes a Bedrock model id with the region's geo prefix
// ("us.", "eu.", "apac.") to select a cross-region inference profile. Already
// prefixed ids pass through unchanged.
func crossRegionModel(region, model string) string {
	for _, prefix := range []string{"us.", "eu.", "apac."} {
		if strings.HasPrefix(model, prefix) {
			return model
		}
	}
	geo := "us"
	switch {
	case strings.HasPrefix(region, "eu-"):
		geo = "eu"
	case strings.HasPrefix(region, "ap-"):
		geo = "apac"
	}
	return geo + "." + model
}
