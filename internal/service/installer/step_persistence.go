package installer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/campusbot/internal/config"
	"github.com/sandevgo/campusbot/pkg/env"
)

const (
	envFileName   = ".env"
	chainFileName = "providers.yaml"
)

// SaveEnvStep writes the collected settings to <runtime>/.env.
type SaveEnvStep struct {
	err   error
	saved bool
}

func NewSaveEnvStep() Step {
	return &SaveEnvStep{}
}

func (s *SaveEnvStep) Init() tea.Cmd {
	return nil
}

func (s *SaveEnvStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.saved {
		return nil, nil
	}
	if s.err != nil {
		return s, nil
	}
	if s.err = saveEnv(state); s.err != nil {
		return s, nil
	}
	s.saved = true
	return nil, nil
}

func (s *SaveEnvStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	return "Saving configuration...\n"
}

func saveEnv(state *InstallState) error {
	if err := os.MkdirAll(state.RuntimePath, 0o755); err != nil {
		return fmt.Errorf("failed to create runtime directory: %w", err)
	}

	path := filepath.Join(state.RuntimePath, envFileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists at %s", envFileName, path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	content, err := env.MarshalEnv(&state.Env)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return os.WriteFile(path, []byte(content), 0o600)
}

// SaveChainStep writes providers.yaml with the selected providers in
// default order. It leaves an existing file alone.
type SaveChainStep struct {
	err error
}

func NewSaveChainStep() Step {
	return &SaveChainStep{}
}

func (s *SaveChainStep) Init() tea.Cmd {
	return nil
}

func (s *SaveChainStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.err != nil {
		return s, nil
	}
	if s.err = saveChain(state); s.err != nil {
		return s, nil
	}
	return nil, nil
}

func (s *SaveChainStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	return "Writing provider chain...\n"
}

func saveChain(state *InstallState) error {
	chain := state.Chain()
	if len(chain) == 0 {
		return nil
	}

	path := filepath.Join(state.RuntimePath, chainFileName)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return config.SaveChain(path, chain)
}
