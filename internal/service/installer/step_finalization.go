package installer

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// FinalizationStep derives the values no screen asks for directly.
type FinalizationStep struct {
	err error
}

func NewFinalizationStep() Step {
	return &FinalizationStep{}
}

func (s *FinalizationStep) Init() tea.Cmd {
	return nil
}

func (s *FinalizationStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.err != nil {
		return s, nil
	}
	if err := finalize(state); err != nil {
		s.err = err
		return s, nil
	}
	return nil, nil
}

func (s *FinalizationStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	return "Finalizing configuration...\n"
}

func finalize(state *InstallState) error {
	if state.Env.TelegramToken == "" {
		state.Env.EnableTelegram = false
	}

	state.Env.TelegramOwnerID = 0
	if raw := strings.TrimSpace(state.OwnerID); raw != "" && state.Env.EnableTelegram {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("telegram owner id %q is not a number", raw)
		}
		state.Env.TelegramOwnerID = id
	}

	if !state.hasProvider("ollama") {
		state.Env.OllamaBaseURL = ""
	}
	return nil
}
