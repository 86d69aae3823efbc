// Package config holds the persisted application settings: provider
// configurations, the active configuration selection, context toggles and the
// active prompt. Secret values are never stored here — a configuration only
// references the secret store or an external credential profile.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// AuthKind discriminates a configuration's auth descriptor.
type AuthKind string

const (
	// AuthNone means the configuration carries no credentials at all.
	AuthNone AuthKind = "none"

	// AuthAPIKey means the secret store holds an API key (and, for the
	// signing provider, optionally an access key id + secret key pair)
	// under keys derived from the configuration id.
	AuthAPIKey AuthKind = "api_key"

	// AuthProfile means credentials come from a named AWS profile.
	AuthProfile AuthKind = "profile"
)

// Configuration is a user-edited provider setup. It may be invalid at any
// point in time: validity depends on the secret store and the credential
// files, both of which can change out of band, so it is recomputed on read
// rather than stored.
type Configuration struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Provider    string   `json:"provider"`
	Model       string   `json:"model"`
	Region      string   `json:"region,omitempty"`
	CrossRegion bool     `json:"cross_region,omitempty"`
	AuthKind    AuthKind `json:"auth_kind"`
	Profile     string   `json:"profile,omitempty"` // set when AuthKind == AuthProfile
}

// Secret store keys derived from a configuration id. The id is stable for
// the lifetime of the configuration, so deleting a configuration can also
// delete its secrets.

func (c Configuration) APIKeySecretKey() string    { return "config." + c.ID + ".api_key" }
func (c Configuration) AccessKeySecretKey() string { return "config." + c.ID + ".access_key_id" }
func (c Configuration) SecretKeySecretKey() string { return "config." + c.ID + ".secret_access_key" }

// Settings is the full persisted settings document.
type Settings struct {
	Configurations []Configuration `json:"configurations"`
	ActiveConfigID string          `json:"active_config_id,omitempty"`

	// Legacy single-provider fields, kept as the final fallback when a
	// configuration's own auth does not resolve.
	LegacyProvider string `json:"legacy_provider,omitempty"`
	LegacyAPIKey   string `json:"legacy_api_key,omitempty"`

	// Context toggles control which ambient text blocks are embedded in the
	// system instruction.
	UseUserProfile  bool `json:"use_user_profile"`
	UseSelectedText bool `json:"use_selected_text"`
	UseClipboard    bool `json:"use_clipboard"`
	UseScreenText   bool `json:"use_screen_text"`

	UserProfile string `json:"user_profile,omitempty"`

	ActivePromptName string `json:"active_prompt_name,omitempty"`
	ActivePromptText string `json:"active_prompt_text,omitempty"`
}

// DefaultSettings returns the settings used before any file exists.
func DefaultSettings() Settings {
	return Settings{
		ActivePromptName: "default",
		ActivePromptText: "Clean up the transcribed text. Fix punctuation and obvious transcription errors without changing the meaning.",
	}
}

// DefaultPath returns the platform-conventional settings file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "dictaflow", "settings.json"), nil
}

// Load reads settings from path. A missing file yields DefaultSettings.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes settings to path, creating parent directories as needed.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
