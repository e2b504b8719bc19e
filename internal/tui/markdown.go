package tui

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdown renders bot replies, falling back to plain text
type markdown struct {
	renderer *glamour.TermRenderer
}

func newMarkdown(width int) *markdown {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		slog.Debug("markdown rendering disabled", slog.String("error", err.Error()))
		return &markdown{}
	}
	return &markdown{renderer: r}
}

func (m *markdown) Render(text string) string {
	if m == nil || m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
