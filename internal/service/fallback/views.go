package fallback

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/campusbot/internal/core"
	"github.com/sandevgo/campusbot/internal/service/retriever"
)

type view int

const (
	viewNone view = iota
	viewTasks
	viewAnnouncements
	viewThisWeek
	viewNextWeek
)

const previewSize = 3

var (
	tasksTriggers         = []string{"show my tasks", "show tasks", "list my tasks", "all my tasks", "my tasks"}
	announcementsTriggers = []string{"show announcements", "show my announcements", "latest announcements", "any announcements"}
	thisWeekTriggers      = []string{"schedule for this week", "schedules for this week", "this week's schedule", "my week"}
	nextWeekTriggers      = []string{"schedule for next week", "schedules for next week", "next week's schedule"}
)

func detectView(msg string) view {
	switch {
	case containsAny(msg, nextWeekTriggers):
		return viewNextWeek
	case containsAny(msg, thisWeekTriggers):
		return viewThisWeek
	case containsAny(msg, tasksTriggers):
		return viewTasks
	case containsAny(msg, announcementsTriggers):
		return viewAnnouncements
	}
	return viewNone
}

// ViewItems picks from all the items a structured view of message lists:
// every item of its kind, limited to the week window for week views. ok is
// false when message triggers no view.
func (r *Renderer) ViewItems(message string, all []core.ContextItem) ([]core.ContextItem, bool) {
	switch v := detectView(strings.ToLower(strings.TrimSpace(message))); v {
	case viewTasks:
		return ofKind(all, core.KindTask), true
	case viewAnnouncements:
		return ofKind(all, core.KindAnnouncement), true
	case viewThisWeek, viewNextWeek:
		monday, sunday := WeekWindow(r.now(), r.loc, v == viewNextWeek)
		items := []core.ContextItem{}
		for _, it := range ofKind(all, core.KindSchedule) {
			d, valid := retriever.ParseDate(it.Date, r.loc)
			if valid && !d.Before(monday) && !d.After(sunday) {
				items = append(items, it)
			}
		}
		return items, true
	}
	return nil, false
}

func ofKind(items []core.ContextItem, kind core.ContextKind) []core.ContextItem {
	out := []core.ContextItem{}
	for _, it := range items {
		if it.Kind == kind {
			out = append(out, it)
		}
	}
	return out
}

// WeekWindow returns Monday and Sunday of the week containing now in loc,
// or of the following week when next is set.
func WeekWindow(now time.Time, loc *time.Location, next bool) (time.Time, time.Time) {
	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	// time.Weekday starts at Sunday
	offset := (int(today.Weekday()) + 6) % 7
	monday := today.AddDate(0, 0, -offset)
	if next {
		monday = monday.AddDate(0, 0, 7)
	}
	return monday, monday.AddDate(0, 0, 6)
}

func (r *Renderer) renderWeek(items []core.ContextItem, next bool) string {
	monday, sunday := WeekWindow(r.now(), r.loc, next)
	label := "this week"
	if next {
		label = "next week"
	}

	byDay := make(map[time.Weekday][]string)
	for _, it := range items {
		if it.Kind != core.KindSchedule {
			continue
		}
		d, ok := retriever.ParseDate(it.Date, r.loc)
		if !ok || d.Before(monday) || d.After(sunday) {
			continue
		}
		byDay[d.Weekday()] = append(byDay[d.Weekday()], it.Content)
	}

	if len(byDay) == 0 {
		return "No classes scheduled for " + label
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 Your schedule for %s (%s – %s):", label, monday.Format("Jan 2"), sunday.Format("Jan 2"))
	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i).Weekday()
		entries := byDay[day]
		if len(entries) == 0 {
			continue
		}
		b.WriteString("\n\n")
		b.WriteString(day.String())
		for _, e := range entries {
			b.WriteString("\n• ")
			b.WriteString(e)
		}
	}
	return b.String()
}

func renderList(items []core.ContextItem, kind core.ContextKind, title, viewName, empty string) string {
	matched := ofKind(items, kind)
	if len(matched) == 0 {
		return empty
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d total):", title, len(matched))
	for i, it := range matched {
		if i == previewSize {
			break
		}
		fmt.Fprintf(&b, "\n%d. %s", i+1, it.Content)
	}
	if rest := len(matched) - previewSize; rest > 0 {
		fmt.Fprintf(&b, "\n\n…and %d more — see the full %s view", rest, viewName)
	}
	return b.String()
}
