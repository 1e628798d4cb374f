package retriever

import (
	"sort"
	"strings"
	"time"

	"github.com/sandevgo/campusbot/internal/core"
)

const (
	DefaultLimit = 10
	MinLimit     = 10
	MaxLimit     = 15
)

// Retriever picks the facts relevant to one message.
type Retriever struct {
	limit int
	loc   *time.Location
	now   func() time.Time
}

type Option func(*Retriever)

// WithClock fixes the reference clock.
func WithClock(now func() time.Time) Option {
	return func(r *Retriever) { r.now = now }
}

func New(limit int, loc *time.Location, opts ...Option) *Retriever {
	if limit < MinLimit {
		limit = MinLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if loc == nil {
		loc = time.FixedZone("UTC+8", 8*3600)
	}

	r := &Retriever{
		limit: limit,
		loc:   loc,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Retriever) Location() *time.Location {
	return r.loc
}

// Limit is the most items Retrieve returns.
func (r *Retriever) Limit() int {
	return r.limit
}

// All formats every fact without matching or truncation, in the order
// schedules, tasks, announcements.
func (r *Retriever) All(facts core.Facts) []core.ContextItem {
	today := dayOf(r.now(), r.loc)
	items := make([]core.ContextItem, 0, len(facts.Schedules)+len(facts.Tasks)+len(facts.Announcements))
	for _, s := range facts.Schedules {
		items = append(items, r.scheduleItem(s))
	}
	for _, t := range facts.Tasks {
		items = append(items, r.taskItem(t, today))
	}
	for _, a := range facts.Announcements {
		items = append(items, r.announcementItem(a))
	}
	return items
}

// Retrieve returns at most limit items, ordered schedule, task, announcement
// unless the message asks about priorities.
func (r *Retriever) Retrieve(message string, facts core.Facts) []core.ContextItem {
	msg := strings.ToLower(message)
	in := classify(msg)
	today := dayOf(r.now(), r.loc)

	target, dated := r.targetDate(msg, today)

	var items []core.ContextItem
	switch {
	case in.exclusive() && in.schedule:
		items = r.schedules(facts.Schedules, msg, target, dated, true)
	case in.exclusive() && in.task:
		for _, t := range facts.Tasks {
			items = append(items, r.taskItem(t, today))
		}
	case in.exclusive() && in.announcement:
		for _, a := range facts.Announcements {
			items = append(items, r.announcementItem(a))
		}
	default:
		items = r.schedules(facts.Schedules, msg, target, dated, false)
		for _, t := range facts.Tasks {
			if containsToken(msg, t.Title, t.Class, t.Type) || containsAny(msg, taskGeneric) {
				items = append(items, r.taskItem(t, today))
			}
		}
		for _, a := range facts.Announcements {
			if containsToken(msg, a.Title) || containsAny(msg, announcementGeneric) {
				items = append(items, r.announcementItem(a))
			}
		}
	}

	if in.priority {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Kind == core.KindTask && items[j].Kind != core.KindTask
		})
	}

	if len(items) > r.limit {
		items = items[:r.limit]
	}
	if items == nil {
		items = []core.ContextItem{}
	}
	return items
}

// schedules applies date targeting when the message names a day, otherwise
// keyword matching. all skips keyword matching for schedule-only queries.
func (r *Retriever) schedules(list []core.Schedule, msg string, target time.Time, dated, all bool) []core.ContextItem {
	var items []core.ContextItem

	if dated {
		for _, s := range list {
			d, ok := ParseDate(s.Date, r.loc)
			if !ok || !d.Equal(target) {
				continue
			}
			items = append(items, r.scheduleItem(s))
		}
		if len(items) == 0 {
			items = append(items, noClassesItem(target))
		}
		return items
	}

	for _, s := range list {
		if all || containsToken(msg, s.Subject, s.Room, s.Day) || containsAny(msg, scheduleGeneric) {
			items = append(items, r.scheduleItem(s))
		}
	}
	return items
}

func (r *Retriever) targetDate(msg string, today time.Time) (time.Time, bool) {
	if containsAny(msg, casualFollowUps) {
		return time.Time{}, false
	}
	switch {
	case strings.Contains(msg, "tomorrow"):
		return today.AddDate(0, 0, 1), true
	case strings.Contains(msg, "today"):
		return today, true
	}
	return time.Time{}, false
}
