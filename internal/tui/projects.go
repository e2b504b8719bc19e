package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gennadis/projectchat/internal/client"
	"github.com/gennadis/projectchat/internal/notify"
	"github.com/gennadis/projectchat/internal/projects"
)

type projectsLoadedMsg struct {
	projects []client.Project
	err      error
}

// PickerModel is the project list screen
type PickerModel struct {
	ctx      context.Context
	lister   *projects.Lister
	projects []client.Project
	cursor   int
	loading  bool
	chosen   *client.Project
	spinner  spinner.Model
	alerts   *alertBox
}

func NewPickerModel(ctx context.Context, lister *projects.Lister) PickerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return PickerModel{
		ctx:     ctx,
		lister:  lister,
		loading: true,
		spinner: sp,
		alerts:  &alertBox{},
	}
}

// Chosen returns the project picked with enter, if any
func (m PickerModel) Chosen() (client.Project, bool) {
	if m.chosen == nil {
		return client.Project{}, false
	}
	return *m.chosen, true
}

func (m PickerModel) Init() tea.Cmd {
	return tea.Batch(m.load(), m.spinner.Tick)
}

func (m PickerModel) load() tea.Cmd {
	ctx, lister := m.ctx, m.lister
	return func() tea.Msg {
		list, err := lister.Load(ctx)
		return projectsLoadedMsg{projects: list, err: err}
	}
}

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case projectsLoadedMsg:
		m.loading = false
		m.projects = msg.projects
		if m.cursor >= len(m.projects) {
			m.cursor = 0
		}
		notify.Present(m.alerts, msg.err)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		m.alerts.clear()
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.projects)-1 {
				m.cursor++
			}
		case "r":
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, tea.Batch(m.load(), m.spinner.Tick)
		case "enter":
			return m.choose()
		}
	}
	return m, nil
}

func (m PickerModel) choose() (tea.Model, tea.Cmd) {
	if m.loading || len(m.projects) == 0 {
		return m, nil
	}
	project := m.projects[m.cursor]
	if err := m.lister.Select(m.ctx, project.ID); err != nil {
		notify.Present(m.alerts, err)
		return m, nil
	}
	m.chosen = &project
	return m, tea.Quit
}

func (m PickerModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Projects"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), dimStyle.Render("Loading...")))
	case len(m.projects) == 0:
		b.WriteString(dimStyle.Render("No projects found"))
		b.WriteString("\n")
	default:
		for i, p := range m.projects {
			line := projectLine(p)
			if i == m.cursor {
				b.WriteString(cursorStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString(m.alerts.view())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓: move • enter: open • r: reload • q: quit"))
	b.WriteString("\n")
	return b.String()
}

func projectLine(p client.Project) string {
	if p.Description == "" {
		return p.Name
	}
	return p.Name + dimStyle.Render(" - "+p.Description)
}

// PickProject runs the picker on in and out. ok is false when the user quit
// without choosing.
func PickProject(ctx context.Context, in io.Reader, out io.Writer, lister *projects.Lister) (client.Project, bool, error) {
	p := tea.NewProgram(NewPickerModel(ctx, lister),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, err := p.Run()
	if err != nil {
		return client.Project{}, false, err
	}
	chosen, ok := final.(PickerModel).Chosen()
	return chosen, ok, nil
}
