package enhance

import (
	"strings"
	"testing"

	"github.com/nextlevelbuilder/dictaflow/internal/config"
)

type fakeContext struct {
	selected  string
	clipboard string
	screen    string
}

func (f fakeContext) SelectedText() string  { return f.selected }
func (f fakeContext) ClipboardText() string { return f.clipboard }
func (f fakeContext) ScreenText() string    { return f.screen }

func TestBuildSystemInstruction_PromptOnly(t *testing.T) {
	s := config.Settings{ActivePromptText: "Fix the text."}
	got := buildSystemInstruction(s, fakeContext{selected: "ignored", clipboard: "ignored"})
	if got != "Fix the text." {
		t.Errorf("disabled toggles must exclude context, got %q", got)
	}
}

func TestBuildSystemInstruction_AllBlocksInOrder(t *testing.T) {
	s := config.Settings{
		ActivePromptText: "prompt",
		UseUserProfile:   true,
		UseSelectedText:  true,
		UseClipboard:     true,
		UseScreenText:    true,
		UserProfile:      "a developer",
	}
	src := fakeContext{selected: "sel", clipboard: "clip", screen: "scr"}

	got := buildSystemInstruction(s, src)

	order := []string{"<user_profile>", "<selected_text>", "<clipboard>", "<screen_text>"}
	last := -1
	for _, tag := range order {
		idx := strings.Index(got, tag)
		if idx < 0 {
			t.Fatalf("missing %s in %q", tag, got)
		}
		if idx < last {
			t.Errorf("%s out of order in %q", tag, got)
		}
		last = idx
	}
	if !strings.HasPrefix(got, "prompt") {
		t.Errorf("instruction must start with the prompt, got %q", got)
	}
}

func TestBuildSystemInstruction_EmptySourcesOmitted(t *testing.T) {
	s := config.Settings{
		ActivePromptText: "prompt",
		UseSelectedText:  true,
		UseClipboard:     true,
	}
	got := buildSystemInstruction(s, fakeContext{clipboard: "clip"})

	if strings.Contains(got, "<selected_text>") {
		t.Errorf("empty source must be omitted even when enabled: %q", got)
	}
	if !strings.Contains(got, "<clipboard>\nclip\n</clipboard>") {
		t.Errorf("expected wrapped clipboard block, got %q", got)
	}
}

func TestBuildSystemInstruction_NilSource(t *testing.T) {
	s := config.Settings{ActivePromptText: "prompt", UseClipboard: true, UseUserProfile: true, UserProfile: "me"}
	got := buildSystemInstruction(s, nil)
	if !strings.Contains(got, "<user_profile>") {
		t.Errorf("user profile comes from settings, not the capture source: %q", got)
	}
	if strings.Contains(got, "<clipboard>") {
		t.Errorf("nil source must contribute nothing: %q", got)
	}
}
