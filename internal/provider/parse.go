package provider

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrUnexpectedResponse is returned when a success payload does not contain
// the provider's documented text field.
var ErrUnexpectedResponse = errors.New("unexpected response shape")

// ParseResponse extracts the completion text from a successful response
// body. Bedrock has shipped several envelope shapes across model families,
// so its parser tries each observed shape in order and falls back to the raw
// body as a UTF-8 string rather than failing.
func ParseResponse(p ID, body []byte) (string, error) {
	switch p {
	case OpenAI, Groq, OpenRouter:
		if text := gjson.GetBytes(body, "choices.0.message.content"); text.Exists() {
			return text.String(), nil
		}
		return "", fmt.Errorf("%w: no choices[0].message.content in %s response", ErrUnexpectedResponse, p)

	case Anthropic:
		if text := gjson.GetBytes(body, "content.0.text"); text.Exists() {
			return text.String(), nil
		}
		return "", fmt.Errorf("%w: no content[0].text in anthropic response", ErrUnexpectedResponse)

	case Bedrock:
		return parseBedrockResponse(body), nil

	default:
		return "", fmt.Errorf("unhandled provider %q", p)
	}
}

// parseBedrockResponse tries the observed Converse envelope shapes in order
// and returns the first match.
func parseBedrockResponse(body []byte) string {
	root := gjson.ParseBytes(body)

	// Standard Converse shape: output.message.content[].text.
	content := root.Get("output.message.content")
	if content.IsArray() {
		for _, block := range content.Array() {
			if text := block.Get("text"); text.Exists() {
				return text.String()
			}
		}
		// Reasoning models put the text one level deeper.
		for _, block := range content.Array() {
			if text := block.Get("reasoningContent.reasoningText.text"); text.Exists() {
				return text.String()
			}
		}
	}

	// Flat shapes seen from older model families.
	for _, field := range []string{"completion", "outputText", "generation"} {
		if text := root.Get(field); text.Exists() {
			return text.String()
		}
	}

	if text := root.Get("outputs.0.text"); text.Exists() {
		return text.String()
	}

	// Nothing matched: treat the body itself as the text.
	return string(body)
}
