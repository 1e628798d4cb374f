package retriever

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/campusbot/internal/core"
)

const (
	dateLayout = "2006-01-02"
	// LongDateLayout renders dates in user-facing text.
	LongDateLayout = "Monday, January 2, 2006"
)

// ParseDate accepts a bare calendar date or an RFC 3339 timestamp and returns
// the calendar date in loc.
func ParseDate(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(dateLayout, raw, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.In(loc)
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), true
	}
	return time.Time{}, false
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func (r *Retriever) scheduleItem(s core.Schedule) core.ContextItem {
	item := core.ContextItem{
		Kind:  core.KindSchedule,
		Day:   s.Day,
		Title: s.Subject,
		Date:  s.Date,
	}
	if d, ok := ParseDate(s.Date, r.loc); ok {
		item.Date = d.Format(dateLayout)
		if item.Day == "" {
			item.Day = d.Weekday().String()
		}
	}

	content := fmt.Sprintf("%s class on %s from %s to %s in room %s", s.Subject, item.Day, s.StartTime, s.EndTime, s.Room)
	if s.Instructor != "" {
		content += " with " + s.Instructor
	}
	item.Content = content
	return item
}

func (r *Retriever) taskItem(t core.Task, today time.Time) core.ContextItem {
	item := core.ContextItem{
		Kind:  core.KindTask,
		Title: t.Title,
		Date:  t.DueDate,
	}

	due := t.DueDate
	if d, ok := ParseDate(t.DueDate, r.loc); ok {
		item.Date = d.Format(dateLayout)
		due = fmt.Sprintf("%s, %s", d.Format("Jan 2, 2006"), dueIn(d, today))
	}

	parts := []string{"Type: " + t.Type, "Priority: " + t.Priority}
	if t.Status != "" {
		parts = append(parts, "Status: "+t.Status)
	}
	parts = append(parts, "Due: "+due)

	item.Content = fmt.Sprintf("Task: %s for %s (%s)", t.Title, t.Class, strings.Join(parts, ", "))
	return item
}

func dueIn(due, today time.Time) string {
	days := int(due.Sub(today).Hours() / 24)
	switch {
	case days == 0:
		return "due today"
	case days == 1:
		return "due tomorrow"
	case days > 1:
		return fmt.Sprintf("due in %d days", days)
	case days == -1:
		return "overdue by 1 day"
	default:
		return fmt.Sprintf("overdue by %d days", -days)
	}
}

func (r *Retriever) announcementItem(a core.Announcement) core.ContextItem {
	item := core.ContextItem{
		Kind:    core.KindAnnouncement,
		Title:   a.Title,
		Content: fmt.Sprintf("Announcement: %s - %s", a.Title, a.Description),
	}
	if d, ok := ParseDate(a.CreatedAt, r.loc); ok {
		item.Date = d.Format(dateLayout)
	}
	return item
}

func noClassesItem(target time.Time) core.ContextItem {
	return core.ContextItem{
		Kind:    core.KindSchedule,
		Content: "No classes scheduled for " + target.Format(LongDateLayout),
	}
}
