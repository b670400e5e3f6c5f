package tuicmder

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/papercomputeco/azurechat/chatpage"
	"github.com/papercomputeco/azurechat/pkg/llm"
)

const (
	botUser = chatpage.BotUser

	failureLine = "Something went wrong while talking to " + botUser + ". Try again."

	defaultWidth = 80
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7DC4A5"))
	userLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6CB6FF"))
	botLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7DC4A5"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	helpStyle      = lipgloss.NewStyle().Faint(true)
)

type generator interface {
	Generate(ctx context.Context, userQuery string) (string, error)
}

// entry is one line of the visible transcript.
type entry struct {
	role   llm.Role
	text   string
	failed bool
}

// replyMsg carries the outcome of one generation back into the update loop.
type replyMsg struct {
	reply string
	err   error
}

type model struct {
	ctx     context.Context
	client  generator
	render  func(string) string
	input   textinput.Model
	spinner spinner.Model
	entries []entry
	waiting bool
	width   int
}

func newModel(ctx context.Context, client generator, render func(string) string) model {
	ti := textinput.New()
	ti.Placeholder = "Ask " + botUser + " something"
	ti.Prompt = "> "
	ti.Width = defaultWidth - 4
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		ctx:     ctx,
		client:  client,
		render:  render,
		input:   ti,
		spinner: sp,
		width:   defaultWidth,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			// One generation at a time: Enter does nothing until the
			// pending reply arrives.
			if m.waiting {
				return m, nil
			}
			query := m.input.Value()
			if strings.TrimSpace(query) == "" {
				return m, nil
			}
			m.input.Reset()
			m.entries = append(m.entries, entry{role: llm.RoleUser, text: query})
			m.waiting = true
			return m, tea.Batch(m.spinner.Tick, m.generate(query))
		}

	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.entries = append(m.entries, entry{role: llm.RoleAssistant, text: failureLine, failed: true})
		} else {
			m.entries = append(m.entries, entry{role: llm.RoleAssistant, text: msg.reply})
		}
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 4
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// generate runs the blocking call off the update loop.
func (m model) generate(query string) tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		reply, err := client.Generate(ctx, query)
		return replyMsg{reply: reply, err: err}
	}
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(chatpage.Title))
	b.WriteString("\n\n")

	for _, e := range m.entries {
		switch {
		case e.role == llm.RoleUser:
			b.WriteString(userLabelStyle.Render("You"))
			b.WriteString("\n")
			b.WriteString(ansi.Wordwrap(e.text, m.width, ""))
		case e.failed:
			b.WriteString(botLabelStyle.Render(botUser))
			b.WriteString("\n")
			b.WriteString(errorStyle.Render(e.text))
		default:
			b.WriteString(botLabelStyle.Render(botUser))
			b.WriteString("\n")
			b.WriteString(m.render(e.text))
		}
		b.WriteString("\n\n")
	}

	if m.waiting {
		b.WriteString(m.spinner.View())
		b.WriteString(" " + botUser + " is thinking...\n\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter send • esc quit"))
	b.WriteString("\n")

	return b.String()
}
