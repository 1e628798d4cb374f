package fallback

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/campusbot/internal/core"
)

const (
	ThrottleNotice = "⚠️ The AI service is busy right now, so I'm using structured responses."

	schedulePrompt     = "I'd be happy to help with your schedule! However, I couldn't find specific schedule information for your question. Could you be more specific about which class or day you're asking about?"
	taskPrompt         = "I can help with your tasks and assignments! Could you specify which task or subject you're asking about?"
	announcementPrompt = "I can help with announcements! What specific information are you looking for?"
	genericPrompt      = "I'm here to help with your academic schedule, tasks, and announcements. What would you like to know?"
	invitation         = "I'm here to help! What specific information are you looking for?"
	greetingReply      = "Hello! 👋 I'm your academic schedule assistant. Ask me about your classes, tasks, deadlines or announcements."
)

var (
	scheduleWords     = []string{"schedule", "class", "subject"}
	taskWords         = []string{"task", "assignment", "homework", "due"}
	announcementWords = []string{"announcement", "news", "update"}
	greetings         = []string{"hi", "hello", "hey", "good morning", "good afternoon", "good evening", "howdy"}
)

// group order and bullet limits for the summary layout
var groups = []struct {
	kind  core.ContextKind
	noun  string
	limit int
}{
	{core.KindSchedule, "schedule item", 3},
	{core.KindTask, "task", 3},
	{core.KindAnnouncement, "announcement", 2},
}

// Renderer produces deterministic answers from context items alone.
type Renderer struct {
	loc *time.Location
	now func() time.Time
}

func NewRenderer(loc *time.Location, now func() time.Time) *Renderer {
	if now == nil {
		now = time.Now
	}
	return &Renderer{loc: loc, now: now}
}

// Render never performs I/O. throttled appends a busy notice unless the
// message asked for a structured view.
func (r *Renderer) Render(message string, items []core.ContextItem, throttled bool) string {
	msg := strings.ToLower(strings.TrimSpace(message))

	switch detectView(msg) {
	case viewTasks:
		return renderList(items, core.KindTask, "📋 Your tasks", "Tasks", "You don't have any tasks right now. 🎉")
	case viewAnnouncements:
		return renderList(items, core.KindAnnouncement, "📢 Latest announcements", "Announcements", "There are no announcements right now.")
	case viewThisWeek:
		return r.renderWeek(items, false)
	case viewNextWeek:
		return r.renderWeek(items, true)
	}

	text := r.summary(msg, items)
	if throttled {
		text += "\n\n" + ThrottleNotice
	}
	return text
}

// IsStructuredView reports whether message triggers a dedicated layout.
func IsStructuredView(message string) bool {
	return detectView(strings.ToLower(strings.TrimSpace(message))) != viewNone
}

func (r *Renderer) summary(msg string, items []core.ContextItem) string {
	if len(items) == 0 {
		switch {
		case isGreeting(msg):
			return greetingReply
		case containsAny(msg, scheduleWords):
			return schedulePrompt
		case containsAny(msg, taskWords):
			return taskPrompt
		case containsAny(msg, announcementWords):
			return announcementPrompt
		default:
			return genericPrompt
		}
	}

	var sections []string
	for _, g := range groups {
		var matched []string
		for _, it := range items {
			if it.Kind == g.kind {
				matched = append(matched, it.Content)
			}
		}
		if len(matched) == 0 {
			continue
		}

		noun := g.noun
		if len(matched) > 1 {
			noun += "s"
		}
		lines := []string{fmt.Sprintf("I found %d relevant %s:", len(matched), noun)}
		for i, c := range matched {
			if i == g.limit {
				break
			}
			lines = append(lines, "• "+c)
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if len(sections) == 0 {
		return invitation
	}
	return strings.Join(sections, "\n\n")
}

func isGreeting(msg string) bool {
	msg = strings.TrimRight(msg, "!.?, ")
	for _, g := range greetings {
		if msg == g || strings.HasPrefix(msg, g+" ") || strings.HasPrefix(msg, g+",") || strings.HasPrefix(msg, g+"!") {
			return true
		}
	}
	return false
}

func containsAny(msg string, words []string) bool {
	for _, w := range words {
		if strings.Contains(msg, w) {
			return true
		}
	}
	return false
}
