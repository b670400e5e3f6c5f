package tuicmder

import (
	"context"
	"errors"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/papercomputeco/azurechat/pkg/config"
	"github.com/papercomputeco/azurechat/pkg/conversation"
)

const chatLongDesc string = `Chat with the deployment from the terminal.

Opens an interactive session backed by its own conversation. Replies are
rendered as markdown. The session ends with esc or ctrl+c and nothing is
kept afterwards.

Examples:
  azurechat chat`

const chatShortDesc string = "Chat from the terminal"

var errNotTerminal = errors.New("chat needs an interactive terminal")

type chatCommander struct{}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context())
		},
	}

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errNotTerminal
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs are dropped.
	client, err := conversation.New(cfg.Azure, cfg.Persona, zap.NewNop())
	if err != nil {
		return err
	}

	width := defaultWidth
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	render, err := newMarkdownRenderer(width - 4)
	if err != nil {
		return err
	}

	m := newModel(ctx, client, render)
	m.width = width
	m.input.Width = width - 4

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// newMarkdownRenderer returns a glamour renderer matched to the terminal's
// background. Replies that fail to render are shown as plain text.
func newMarkdownRenderer(width int) (func(string) string, error) {
	style := "light"
	if termenv.HasDarkBackground() {
		style = "dark"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}

	return func(s string) string {
		out, err := r.Render(s)
		if err != nil {
			return s
		}
		return strings.Trim(out, "\n")
	}, nil
}
