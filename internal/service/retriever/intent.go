package retriever

import "strings"

var (
	announcementIntent = []string{"announcement", "news", "update", "notice"}
	taskIntent         = []string{"task", "assignment", "homework", "project", "due", "deadline", "exam", "quiz"}
	scheduleIntent     = []string{"schedule", "class", "subject", "lecture", "timetable"}

	scheduleGeneric     = []string{"schedule", "class", "subject"}
	taskGeneric         = []string{"task", "assignment", "homework", "project", "due"}
	announcementGeneric = []string{"announcement", "news", "update"}

	priorityHints   = []string{"priority", "urgent", "deadline", "what should i do"}
	casualFollowUps = []string{"how about", "what about", "and tomorrow", "and today"}
)

// intent holds the non-exclusive query flags of one lower-cased message.
type intent struct {
	announcement bool
	task         bool
	schedule     bool
	priority     bool
}

func classify(msg string) intent {
	in := intent{
		announcement: containsAny(msg, announcementIntent),
		task:         containsAny(msg, taskIntent),
		schedule:     containsAny(msg, scheduleIntent),
	}
	in.priority = in.task || containsAny(msg, priorityHints)
	return in
}

func (in intent) count() int {
	n := 0
	for _, f := range []bool{in.announcement, in.task, in.schedule} {
		if f {
			n++
		}
	}
	return n
}

func (in intent) exclusive() bool {
	return in.count() == 1
}

func containsAny(msg string, words []string) bool {
	for _, w := range words {
		if strings.Contains(msg, w) {
			return true
		}
	}
	return false
}

// containsToken ignores empty tokens so a blank field never matches everything.
func containsToken(msg string, tokens ...string) bool {
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && strings.Contains(msg, t) {
			return true
		}
	}
	return false
}
