package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/campusbot/internal/config"
)

// ProvidersStep picks which providers join the fallback chain.
type ProvidersStep struct {
	choices  []config.ChainEntry
	selected []bool
	cursor   int
}

func NewProvidersStep() Step {
	choices := config.DefaultChain()
	return &ProvidersStep{
		choices:  choices,
		selected: make([]bool, len(choices)),
	}
}

func (s *ProvidersStep) Init() tea.Cmd {
	return nil
}

func (s *ProvidersStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch key.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.choices)-1 {
			s.cursor++
		}
	case " ", "x":
		s.selected[s.cursor] = !s.selected[s.cursor]
	case "enter":
		state.Providers = state.Providers[:0]
		for i, c := range s.choices {
			if s.selected[i] {
				state.Providers = append(state.Providers, c.Kind)
			}
		}
		return nil, nil
	}
	return s, nil
}

func (s *ProvidersStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString("Select the AI providers to try, in this order:\n\n")
	for i, c := range s.choices {
		mark := "[ ]"
		if s.selected[i] {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s (%s)", mark, c.Name, c.Kind)
		if s.cursor == i {
			b.WriteString(selStyle.Render("❯ "+line) + "\n")
		} else {
			b.WriteString(itemStyle.Render("  "+line) + "\n")
		}
	}
	b.WriteString("\n" + hintStyle.Render("space to toggle, enter to confirm. With none selected CampusBot answers in smart mode only.") + "\n")
	return b.String()
}
