package installer

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

type item struct {
	id    string
	title string
	desc  string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.id }

const channelTelegram = "telegram"

// ChannelStep chooses the chat surfaces besides the HTTP API.
type ChannelStep struct {
	list list.Model
}

func NewChannelStep() Step {
	items := []list.Item{
		item{id: "http", title: "HTTP only", desc: "the web client talks to POST /chat"},
		item{id: channelTelegram, title: "HTTP + Telegram", desc: "students can also chat with a Telegram bot"},
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select chat channels"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle

	return &ChannelStep{list: l}
}

func (s *ChannelStep) Init() tea.Cmd {
	return nil
}

func (s *ChannelStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if width > 0 {
		s.list.SetSize(width, height-4)
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEnter {
		if i, ok := s.list.SelectedItem().(item); ok {
			state.Env.EnableTelegram = i.id == channelTelegram
			return nil, nil
		}
	}

	var cmd tea.Cmd
	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

func (s *ChannelStep) View(state *InstallState) string {
	return s.list.View()
}
