package installer

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sandevgo/campusbot/internal/core"
)

var ErrInterrupted = errors.New("campusbot installation interrupted")

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	itemStyle  = lipgloss.NewStyle().PaddingLeft(2)
	selStyle   = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("5"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Step is one screen of the wizard. Returning a nil Step from Update
// advances to the next screen.
type Step interface {
	Init() tea.Cmd
	Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd)
	View(state *InstallState) string
}

func getSteps() []Step {
	onlyFor := func(kind core.ProviderKind) func(*InstallState) bool {
		return func(s *InstallState) bool { return !s.hasProvider(string(kind)) }
	}
	noTelegram := func(s *InstallState) bool { return !s.Env.EnableTelegram }

	return []Step{
		NewInputStep(InputConfig{
			Title:       "CampusBot data service URL",
			Placeholder: "http://localhost:3000",
			UseDefault:  true,
			Target:      func(s *InstallState) *string { return &s.Env.DataAPIURL },
		}),
		NewProvidersStep(),
		NewInputStep(InputConfig{
			Title: "Gemini API key", Placeholder: "AIza...", Secret: true,
			Skip:   onlyFor(core.ProviderGemini),
			Target: func(s *InstallState) *string { return &s.Env.GeminiAPIKey },
		}),
		NewInputStep(InputConfig{
			Title: "Groq API key", Placeholder: "gsk_...", Secret: true,
			Skip:   onlyFor(core.ProviderGroq),
			Target: func(s *InstallState) *string { return &s.Env.GroqAPIKey },
		}),
		NewInputStep(InputConfig{
			Title: "OpenRouter API key", Placeholder: "sk-or-v1-...", Secret: true,
			Skip:   onlyFor(core.ProviderOpenRouter),
			Target: func(s *InstallState) *string { return &s.Env.OpenRouterAPIKey },
		}),
		NewInputStep(InputConfig{
			Title: "OpenAI API key", Placeholder: "sk-...", Secret: true,
			Skip:   onlyFor(core.ProviderOpenAI),
			Target: func(s *InstallState) *string { return &s.Env.OpenAIAPIKey },
		}),
		NewInputStep(InputConfig{
			Title: "Anthropic API key", Placeholder: "sk-ant-...", Secret: true,
			Skip:   onlyFor(core.ProviderAnthropic),
			Target: func(s *InstallState) *string { return &s.Env.AnthropicAPIKey },
		}),
		NewInputStep(InputConfig{
			Title: "Ollama base URL", Placeholder: "http://127.0.0.1:11434", UseDefault: true,
			Skip:   onlyFor(core.ProviderOllama),
			Target: func(s *InstallState) *string { return &s.Env.OllamaBaseURL },
		}),
		NewInputStep(InputConfig{
			Title:       "Public URL for keep-alive pings",
			Placeholder: "https://campusbot.example.com",
			Optional:    true,
			Target:      func(s *InstallState) *string { return &s.Env.PublicURL },
		}),
		NewChannelStep(),
		NewInputStep(InputConfig{
			Title: "Telegram bot token", Placeholder: "123456789:ABCDEF...", Secret: true,
			Skip:   noTelegram,
			Target: func(s *InstallState) *string { return &s.Env.TelegramToken },
		}),
		NewInputStep(InputConfig{
			Title: "Telegram owner id", Placeholder: "123456789", Optional: true,
			Hint:   "leave empty to let every student talk to the bot",
			Skip:   noTelegram,
			Target: func(s *InstallState) *string { return &s.OwnerID },
		}),
		NewFinalizationStep(),
		NewSaveEnvStep(),
		NewSaveChainStep(),
	}
}

type nextMsg struct{}

func next() tea.Msg { return nextMsg{} }

type model struct {
	steps       []Step
	currentStep int
	state       *InstallState
	quitting    bool
	width       int
	height      int
}

func initialModel(state *InstallState) model {
	return model{
		steps: getSteps(),
		state: state,
	}
}

func (m model) Init() tea.Cmd {
	if len(m.steps) > 0 {
		return m.steps[0].Init()
	}
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	}

	if m.currentStep >= len(m.steps) {
		return m, tea.Quit
	}

	step, cmd := m.steps[m.currentStep].Update(msg, m.state, m.width, m.height)
	if step != nil {
		m.steps[m.currentStep] = step
		return m, cmd
	}

	m.currentStep++
	if m.currentStep >= len(m.steps) {
		return m, tea.Quit
	}
	return m, tea.Batch(m.steps[m.currentStep].Init(), next)
}

func (m model) View() string {
	if m.quitting {
		return "Installation cancelled.\n"
	}
	if m.currentStep >= len(m.steps) {
		return "Configuration complete!\n"
	}
	header := titleStyle.Render(fmt.Sprintf("Setting up %s 🎓", core.CampusName))
	progress := hintStyle.Render(fmt.Sprintf("step %d of %d", m.currentStep+1, len(m.steps)))
	return header + "  " + progress + "\n\n" + m.steps[m.currentStep].View(m.state)
}

// RunWizard runs the TUI and returns the collected state once every step,
// including persistence, has completed.
func RunWizard(runtimePath string) (*InstallState, error) {
	p := tea.NewProgram(initialModel(NewInstallState(runtimePath)), tea.WithAltScreen())
	m, err := p.Run()
	if err != nil {
		return nil, err
	}

	final := m.(model)
	if final.quitting {
		return nil, ErrInterrupted
	}
	return final.state, nil
}
