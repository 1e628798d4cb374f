package installer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type InputConfig struct {
	Title       string
	Placeholder string
	Hint        string
	Secret      bool
	// Optional accepts an empty answer.
	Optional bool
	// UseDefault stores the placeholder when the answer is empty.
	UseDefault bool
	Skip       func(*InstallState) bool
	Target     func(*InstallState) *string
}

// InputStep asks for a single line of text.
type InputStep struct {
	cfg   InputConfig
	input textinput.Model
	err   string
}

func NewInputStep(cfg InputConfig) Step {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 48
	ti.Placeholder = cfg.Placeholder
	if cfg.Secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return &InputStep{cfg: cfg, input: ti}
}

func (s *InputStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *InputStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.cfg.Skip != nil && s.cfg.Skip(state) {
		return nil, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEnter {
		val := strings.TrimSpace(s.input.Value())
		switch {
		case val == "" && s.cfg.UseDefault:
			val = s.cfg.Placeholder
		case val == "" && !s.cfg.Optional:
			s.err = "a value is required"
			return s, nil
		}
		*s.cfg.Target(state) = val
		return nil, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.err = ""
	return s, cmd
}

func (s *InputStep) View(state *InstallState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Enter the %s:\n\n%s\n\n", s.cfg.Title, s.input.View())

	switch {
	case s.err != "":
		b.WriteString(errorStyle.Render(s.err) + "\n")
	case s.cfg.Hint != "":
		b.WriteString(hintStyle.Render(s.cfg.Hint) + "\n")
	case s.cfg.Optional:
		b.WriteString(hintStyle.Render("optional, press enter to skip") + "\n")
	case s.cfg.UseDefault:
		b.WriteString(hintStyle.Render("press enter to keep "+s.cfg.Placeholder) + "\n")
	}
	b.WriteString("\n(press enter to confirm)\n")
	return b.String()
}
