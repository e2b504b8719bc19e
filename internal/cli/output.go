package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/gennadis/projectchat/internal/route"
	"github.com/gennadis/projectchat/internal/tui"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)
)

// stderrNotifier is the notification surface of the plain commands
type stderrNotifier struct {
	w io.Writer
}

func (n stderrNotifier) Notify(text string) {
	fmt.Fprintln(n.w, tui.AlertText(text))
}

// hintNavigator stands in for the router when a single command runs: instead
// of switching screens it tells the user which command comes next.
type hintNavigator struct {
	w io.Writer
}

func (h hintNavigator) Navigate(v route.View) {
	var hint string
	switch v {
	case route.Login:
		hint = "Run 'projectchat login' to sign in"
	case route.Projects:
		hint = "Run 'projectchat projects pick' to choose a project"
	case route.Chat:
		hint = "Run 'projectchat chat' to start chatting"
	default:
		return
	}
	fmt.Fprintln(h.w, hintStyle.Render(hint))
}
