package installer

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/campusbot/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	down  = tea.KeyMsg{Type: tea.KeyDown}
)

func typed(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

type driver struct {
	t *testing.T
	m model
}

func (d *driver) send(msgs ...tea.Msg) {
	for _, msg := range msgs {
		tm, _ := d.m.Update(msg)
		d.m = tm.(model)
		d.settle()
	}
}

// settle lets auto-advancing steps run, as the wizard's next message would.
func (d *driver) settle() {
	for range d.m.steps {
		tm, _ := d.m.Update(nextMsg{})
		d.m = tm.(model)
	}
}

func TestWizard_FullFlow(t *testing.T) {
	dir := t.TempDir()
	d := &driver{t: t, m: initialModel(NewInstallState(dir))}

	d.send(tea.WindowSizeMsg{Width: 80, Height: 24})

	// data service url keeps its default
	d.send(enter)

	// gemini and openrouter
	d.send(space, down, down, space, enter)
	assert.Equal(t, []string{"gemini", "openrouter"}, d.m.state.Providers)

	d.send(typed("AIza-test"), enter)
	d.send(typed("sk-or"), enter)

	// no public url
	d.send(enter)

	// HTTP + Telegram
	d.send(down, enter)
	require.True(t, d.m.state.Env.EnableTelegram)

	d.send(typed("123:abc"), enter)
	d.send(typed("42"), enter)

	require.Equal(t, len(d.m.steps), d.m.currentStep)

	envData, err := os.ReadFile(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Equal(t,
		"CAMPUS_DATA_API_URL=http://localhost:3000\n"+
			"CAMPUS_GEMINI_API_KEY=AIza-test\n"+
			"CAMPUS_OPENROUTER_API_KEY=sk-or\n"+
			"CAMPUS_ENABLE_TELEGRAM=true\n"+
			"TELEGRAM_TOKEN=123:abc\n"+
			"TELEGRAM_OWNER_ID=42\n",
		string(envData))

	chain, err := config.LoadChain(filepath.Join(dir, "providers.yaml"))
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, "Gemini 1.5 Flash", chain[0].Name)
	assert.Equal(t, "DeepSeek V3", chain[1].Name)
}

func TestInputStep(t *testing.T) {
	tests := []struct {
		name    string
		cfg     InputConfig
		keys    []tea.Msg
		done    bool
		want    string
		wantErr bool
	}{
		{name: "typed value", keys: []tea.Msg{typed(" abc "), enter}, done: true, want: "abc"},
		{name: "default", cfg: InputConfig{Placeholder: "http://x", UseDefault: true}, keys: []tea.Msg{enter}, done: true, want: "http://x"},
		{name: "optional empty", cfg: InputConfig{Optional: true}, keys: []tea.Msg{enter}, done: true},
		{name: "required empty", keys: []tea.Msg{enter}, wantErr: true},
		{name: "skipped", cfg: InputConfig{Skip: func(*InstallState) bool { return true }}, keys: []tea.Msg{nextMsg{}}, done: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewInstallState(t.TempDir())
			tt.cfg.Target = func(s *InstallState) *string { return &s.Env.PublicURL }

			var step Step = NewInputStep(tt.cfg)
			for _, k := range tt.keys {
				step, _ = step.Update(k, state, 80, 24)
				if step == nil {
					break
				}
			}

			assert.Equal(t, tt.done, step == nil)
			assert.Equal(t, tt.want, state.Env.PublicURL)
			if tt.wantErr {
				assert.Contains(t, step.View(state), "a value is required")
			}
		})
	}
}

func TestFinalize(t *testing.T) {
	tests := []struct {
		name      string
		state     InstallState
		wantTG    bool
		wantOwner int64
		wantErr   bool
	}{
		{
			name:      "telegram with owner",
			state:     InstallState{Env: EnvFile{EnableTelegram: true, TelegramToken: "t"}, OwnerID: "42"},
			wantTG:    true,
			wantOwner: 42,
		},
		{
			name:  "telegram without token",
			state: InstallState{Env: EnvFile{EnableTelegram: true}, OwnerID: "42"},
		},
		{
			name:    "bad owner",
			state:   InstallState{Env: EnvFile{EnableTelegram: true, TelegramToken: "t"}, OwnerID: "me"},
			wantTG:  true,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := finalize(&tt.state)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTG, tt.state.Env.EnableTelegram)
			assert.Equal(t, tt.wantOwner, tt.state.Env.TelegramOwnerID)
		})
	}
}

func TestSaveEnv_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("X=1\n"), 0o600))

	state := NewInstallState(dir)
	state.Env.DataAPIURL = "http://localhost:3000"
	assert.ErrorContains(t, saveEnv(state), "already exists")
}

func TestSaveChain_NoProviders(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, saveChain(NewInstallState(dir)))

	_, err := os.Stat(filepath.Join(dir, "providers.yaml"))
	assert.True(t, os.IsNotExist(err))
}
