package enhance

import (
	"strings"

	"github.com/nextlevelbuilder/dictaflow/internal/config"
)

// ContextSource supplies the ambient text blocks the system instruction can
// embed. Implemented by the desktop capture layer; any accessor may return
// an empty string when nothing is available.
type ContextSource interface {
	SelectedText() string
	ClipboardText() string
	ScreenText() string
}

// buildSystemInstruction assembles the active prompt plus the enabled,
// non-empty context blocks in fixed order: user profile, selected text,
// clipboard, screen text. Each block is wrapped in its own tagged delimiter
// so the model can tell instruction from context.
func buildSystemInstruction(s config.Settings, src ContextSource) string {
	var b strings.Builder
	b.WriteString(s.ActivePromptText)

	appendBlock := func(tag, text string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		b.WriteString("\n\n<")
		b.WriteString(tag)
		b.WriteString(">\n")
		b.WriteString(text)
		b.WriteString("\n</")
		b.WriteString(tag)
		b.WriteString(">")
	}

	if s.UseUserProfile {
		appendBlock("user_profile", s.UserProfile)
	}
	if src != nil {
		if s.UseSelectedText {
			appendBlock("selected_text", src.SelectedText())
		}
		if s.UseClipboard {
			appendBlock("clipboard", src.ClipboardText())
		}
		if s.UseScreenText {
			appendBlock("screen_text", src.ScreenText())
		}
	}
	return b.String()
}
