package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gennadis/projectchat/internal/chat"
	"github.com/gennadis/projectchat/internal/notify"
)

const defaultWidth = 80

// replyMsg carries the outcome of a finished exchange back to the model
type replyMsg struct {
	err error
}

// ChatModel is the chat screen. It owns its Chat, so the transcript goes away
// with the screen.
type ChatModel struct {
	ctx      context.Context
	chat     *chat.Chat
	title    string
	input    textinput.Model
	spinner  spinner.Model
	alerts   *alertBox
	markdown *markdown
	width    int
}

// NewChatModel builds the chat screen for c. title is shown in the header.
func NewChatModel(ctx context.Context, c *chat.Chat, title string) ChatModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 4096
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return ChatModel{
		ctx:      ctx,
		chat:     c,
		title:    title,
		input:    ti,
		spinner:  sp,
		alerts:   &alertBox{},
		markdown: newMarkdown(defaultWidth - 4),
		width:    defaultWidth,
	}
}

func (m ChatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 4
		m.markdown = newMarkdown(msg.Width - 4)
		return m, nil

	case tea.KeyMsg:
		m.alerts.clear()
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}

	case replyMsg:
		notify.Present(m.alerts, msg.err)
		return m, nil

	case spinner.TickMsg:
		if !m.chat.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts an exchange; the reply arrives later as a replyMsg
func (m ChatModel) submit() (tea.Model, tea.Cmd) {
	exchange, err := m.chat.Begin(m.ctx, m.input.Value())
	if err != nil {
		notify.Present(m.alerts, err)
		return m, nil
	}
	m.input.Reset()

	ctx := m.ctx
	complete := func() tea.Msg {
		return replyMsg{err: exchange.Complete(ctx)}
	}
	return m, tea.Batch(complete, m.spinner.Tick)
}

func (m ChatModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	for _, msg := range m.chat.Messages() {
		switch msg.Role {
		case chat.RoleUser:
			b.WriteString(userStyle.Render("You: "))
			b.WriteString(msg.Content)
		default:
			b.WriteString(botStyle.Render("Bot:"))
			b.WriteString("\n")
			b.WriteString(m.markdown.Render(msg.Content))
		}
		b.WriteString("\n")
	}

	if m.chat.Pending() {
		b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), dimStyle.Render("Sending...")))
	}
	b.WriteString(m.alerts.view())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: send • esc: quit"))
	b.WriteString("\n")
	return b.String()
}

// RunChat runs the chat screen on in and out until the user quits
func RunChat(ctx context.Context, in io.Reader, out io.Writer, c *chat.Chat, title string) error {
	p := tea.NewProgram(NewChatModel(ctx, c, title),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	_, err := p.Run()
	return err
}
