package chat

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/campusbot/internal/core"
)

// Tokenizer counts prompt tokens.
type Tokenizer interface {
	Count(text string) int
}

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func (t tiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

// ApproxTokenizer estimates four characters per token.
type ApproxTokenizer struct{}

func (ApproxTokenizer) Count(text string) int {
	n := len([]rune(text))
	return (n + 3) / 4
}

var (
	defaultTokenizer Tokenizer
	tokenizerOnce    sync.Once
)

// DefaultTokenizer loads cl100k_base once. The encoding is fetched on first
// use; when that fails the approximation is used instead.
func DefaultTokenizer() Tokenizer {
	tokenizerOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			defaultTokenizer = ApproxTokenizer{}
			return
		}
		defaultTokenizer = tiktokenCounter{enc: enc}
	})
	return defaultTokenizer
}

const persona = "You are a helpful academic schedule assistant for a student. You have access to their schedule, tasks, and announcements."

const instructions = `Instructions:
- Answer helpfully and conversationally
- Use the provided schedule/task/announcement information when relevant
- If you can't find specific information, acknowledge it politely
- Never invent classes, tasks or announcements that are not listed above
- Keep responses concise but informative
- Be friendly and supportive
- Format times and dates clearly
- If asked about deadlines, calculate days remaining when possible`

// PromptBuilder assembles the prompt and the history messages within a token budget.
type PromptBuilder struct {
	tokenizer    Tokenizer
	budget       int
	historyTurns int
	loc          *time.Location
}

func NewPromptBuilder(tokenizer Tokenizer, budget, historyTurns int, loc *time.Location) *PromptBuilder {
	if tokenizer == nil {
		tokenizer = ApproxTokenizer{}
	}
	return &PromptBuilder{
		tokenizer:    tokenizer,
		budget:       budget,
		historyTurns: historyTurns,
		loc:          loc,
	}
}

// Build returns the prompt for the current question and the prior turns as
// messages. Oldest history goes first when over budget, then trailing context items.
func (b *PromptBuilder) Build(message string, items []core.ContextItem, history []core.Turn, now time.Time) (string, []core.Message) {
	if len(history) > b.historyTurns {
		history = history[len(history)-b.historyTurns:]
	}

	contents := make([]string, 0, len(items))
	for _, it := range items {
		contents = append(contents, it.Content)
	}

	prompt := b.render(message, contents, now)
	if b.budget > 0 {
		for b.cost(prompt, history) > b.budget && len(history) > 0 {
			history = history[1:]
		}
		for b.cost(prompt, history) > b.budget && len(contents) > 0 {
			contents = contents[:len(contents)-1]
			prompt = b.render(message, contents, now)
		}
	}

	messages := make([]core.Message, 0, len(history)*2)
	for _, t := range history {
		messages = append(messages,
			core.Message{Role: core.RoleUser, Content: t.User},
			core.Message{Role: core.RoleAssistant, Content: t.Assistant},
		)
	}
	return prompt, messages
}

func (b *PromptBuilder) cost(prompt string, history []core.Turn) int {
	n := b.tokenizer.Count(prompt)
	for _, t := range history {
		n += b.tokenizer.Count(t.User) + b.tokenizer.Count(t.Assistant)
	}
	return n
}

func (b *PromptBuilder) render(message string, contents []string, now time.Time) string {
	info := "No matching schedule, task or announcement information was found."
	if len(contents) > 0 {
		info = strings.Join(contents, "\n")
	}

	var sb strings.Builder
	sb.WriteString(persona)
	fmt.Fprintf(&sb, "\nToday is %s.\n\n", now.In(b.loc).Format("Monday, January 2, 2006"))
	sb.WriteString("Current relevant information:\n")
	sb.WriteString(info)
	sb.WriteString("\n\nUser's current question: ")
	sb.WriteString(message)
	sb.WriteString("\n\n")
	sb.WriteString(instructions)
	return sb.String()
}
