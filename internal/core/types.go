package core

import "time"

const (
	CampusName      = "CampusBot"
	CampusUserAgent = "CampusBot/0.1"
	CampusVersion   = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Schedule is one class session as stored by the data service.
type Schedule struct {
	ID         string `json:"_id"`
	Subject    string `json:"subject"`
	Room       string `json:"room"`
	Day        string `json:"day"`
	Date       string `json:"date"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	Instructor string `json:"instructor"`
}

type Task struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Class       string `json:"class"`
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	DueDate     string `json:"dueDate"`
	Description string `json:"description"`
}

type Announcement struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PostedBy    string `json:"postedBy"`
	CreatedAt   string `json:"createdAt"`
}

// Facts is everything fetched from the data service for a single request.
type Facts struct {
	Schedules     []Schedule
	Tasks         []Task
	Announcements []Announcement
}

type ContextKind string

const (
	KindSchedule     ContextKind = "schedule"
	KindTask         ContextKind = "task"
	KindAnnouncement ContextKind = "announcement"
)

type ContextItem struct {
	Kind    ContextKind `json:"type"`
	Content string      `json:"content"`
	Date    string      `json:"date,omitempty"`
	Day     string      `json:"day,omitempty"`
	Title   string      `json:"title,omitempty"`
}

type Turn struct {
	User        string    `json:"user"`
	Assistant   string    `json:"assistant"`
	Timestamp   time.Time `json:"timestamp"`
	ContextUsed int       `json:"context_used"`
}
