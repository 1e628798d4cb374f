package chat

import (
	"context"
	"errors"
	"time"

	"github.com/sandevgo/campusbot/internal/core"
	"github.com/sandevgo/campusbot/internal/service/chain"
	"github.com/sandevgo/campusbot/internal/service/conversation"
	"github.com/sandevgo/campusbot/internal/service/fallback"
	"github.com/sandevgo/campusbot/internal/service/retriever"
	"github.com/sandevgo/campusbot/pkg/conv"
	"github.com/sandevgo/campusbot/pkg/log"
)

const (
	AnonymousUser = "anonymous"
	FallbackModel = "smart_mode"
)

var ErrEmptyMessage = errors.New("message is required")

type Reply struct {
	Response         string
	ResponseHTML     string
	ContextItemsUsed int
	AIPowered        bool
	Throttled        bool
	ModelUsed        string
	Timestamp        time.Time
}

// Orchestrator answers one message: retrieve facts, ask the provider chain,
// fall back to the renderer, remember the turn.
type Orchestrator struct {
	data      core.DataSource
	retriever *retriever.Retriever
	chain     *chain.Chain
	renderer  *fallback.Renderer
	store     *conversation.Store
	prompt    *PromptBuilder
	now       func() time.Time
}

func NewOrchestrator(
	data core.DataSource,
	r *retriever.Retriever,
	c *chain.Chain,
	renderer *fallback.Renderer,
	store *conversation.Store,
	prompt *PromptBuilder,
	now func() time.Time,
) *Orchestrator {
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		data:      data,
		retriever: r,
		chain:     c,
		renderer:  renderer,
		store:     store,
		prompt:    prompt,
		now:       now,
	}
}

func (o *Orchestrator) Chat(ctx context.Context, user, message string) (Reply, error) {
	message = conv.SanitizeInput(message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}
	if user == "" {
		user = AnonymousUser
	}

	logger := log.FromCtx(ctx).With().Str("user", user).Logger()

	// a caller going away must not fail the providers; the fetch and call
	// timeouts bound the work instead
	work := context.WithoutCancel(ctx)

	facts := o.data.FetchAll(work)
	items := o.retriever.Retrieve(message, facts)

	// structured views list every matching fact, not just the top items
	view, isView := o.renderer.ViewItems(message, o.retriever.All(facts))
	if isView && len(items) == 0 {
		items = view
		if n := o.retriever.Limit(); len(items) > n {
			items = items[:n]
		}
	}

	prompt, history := o.prompt.Build(message, items, o.store.History(user), o.now())
	res := o.chain.Attempt(work, prompt, history)

	reply := Reply{
		ContextItemsUsed: len(items),
		Throttled:        res.Throttled,
		Timestamp:        o.now(),
	}
	if res.UsedFallback {
		rendered := items
		if isView {
			rendered = view
		}
		reply.Response = o.renderer.Render(message, rendered, res.Throttled)
		reply.ModelUsed = FallbackModel
	} else {
		reply.Response = res.Text
		reply.AIPowered = true
		reply.ModelUsed = res.Provider
	}
	reply.ResponseHTML = conv.MarkdownToHTML(reply.Response)

	o.store.Append(user, core.Turn{
		User:        message,
		Assistant:   reply.Response,
		Timestamp:   reply.Timestamp,
		ContextUsed: len(items),
	})

	logger.Info().
		Int("context_items", len(items)).
		Bool("ai_powered", reply.AIPowered).
		Bool("throttled", reply.Throttled).
		Str("model", reply.ModelUsed).
		Msg("chat answered")
	return reply, nil
}

func (o *Orchestrator) History(user string) []core.Turn {
	return o.store.History(user)
}

func (o *Orchestrator) Clear(user string) {
	o.store.Clear(user)
}

type Health struct {
	Mode              string    `json:"mode"`
	WorkingModels     []string  `json:"working_models"`
	ThrottledModels   []string  `json:"throttled_models"`
	ServiceFunctional bool      `json:"service_functional"`
	LastReset         time.Time `json:"last_reset"`
}

const (
	ModeAIEnhanced = "ai_enhanced"
	ModeSmart      = "smart_mode"
	ModeError      = "error"
)

// Health clears expired throttle marks, then reports provider and data service state.
func (o *Orchestrator) Health(ctx context.Context, cooldown time.Duration) Health {
	throttle := o.chain.Throttle()
	if throttle.ResetIfExpired(cooldown) {
		log.FromCtx(ctx).Info().Msg("throttle cooldown expired, providers restored")
	}

	h := Health{
		Mode:              ModeSmart,
		WorkingModels:     []string{},
		ThrottledModels:   throttle.Names(),
		ServiceFunctional: o.data.Ping(ctx),
		LastReset:         throttle.LastReset(),
	}
	for _, d := range o.chain.Working() {
		h.WorkingModels = append(h.WorkingModels, d.Name)
		if !throttle.IsThrottled(d.Name) {
			h.Mode = ModeAIEnhanced
		}
	}
	return h
}

func (o *Orchestrator) ResetThrottle() {
	o.chain.Throttle().Reset()
}
