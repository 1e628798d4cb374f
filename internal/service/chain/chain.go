package chain

import (
	"context"
	"sync"
	"time"

	"github.com/sandevgo/campusbot/internal/core"
	"github.com/sandevgo/campusbot/internal/providers/llm"
	"github.com/sandevgo/campusbot/pkg/log"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultCallTimeout = 30 * time.Second
	defaultMaxTokens   = 1024
	probePrompt        = "Hello"
)

// AttemptRecorder receives the outcome of every provider call.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, a core.Attempt) error
}

type Result struct {
	Text         string
	UsedFallback bool
	Provider     string
	Throttled    bool
}

// Chain walks providers in configured order until one answers.
type Chain struct {
	mu      sync.RWMutex
	entries []llm.Entry
	working []llm.Entry

	throttle  *ThrottleState
	recorder  AttemptRecorder
	timeout   time.Duration
	maxTokens int
}

type Option func(*Chain)

func WithRecorder(r AttemptRecorder) Option {
	return func(c *Chain) { c.recorder = r }
}

func WithCallTimeout(d time.Duration) Option {
	return func(c *Chain) { c.timeout = d }
}

func WithMaxTokens(n int) Option {
	return func(c *Chain) { c.maxTokens = n }
}

// New keeps only available entries. Until Probe runs every available entry
// counts as working.
func New(entries []llm.Entry, throttle *ThrottleState, opts ...Option) *Chain {
	available := make([]llm.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Descriptor.Available {
			available = append(available, e)
		}
	}

	c := &Chain{
		entries:   available,
		working:   available,
		throttle:  throttle,
		timeout:   DefaultCallTimeout,
		maxTokens: defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Probe sends a trivial prompt to every available provider and keeps the
// responders, in their original order.
func (c *Chain) Probe(ctx context.Context) []core.ProviderDescriptor {
	logger := log.FromCtx(ctx)

	ok := make([]bool, len(c.entries))
	var g errgroup.Group
	for i, e := range c.entries {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			_, err := e.Model.Complete(callCtx, e.Descriptor.Model, []core.Message{{Role: core.RoleUser, Content: probePrompt}}, 16)
			if err != nil {
				logger.Warn().Err(err).Str("provider", e.Descriptor.Name).Msg("probe failed")
				return nil
			}
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	working := make([]llm.Entry, 0, len(c.entries))
	for i, e := range c.entries {
		if ok[i] {
			working = append(working, e)
		}
	}

	c.mu.Lock()
	c.working = working
	c.mu.Unlock()

	logger.Info().Int("working", len(working)).Int("available", len(c.entries)).Msg("provider probe finished")
	return c.Working()
}

// Working returns the descriptors of the providers that passed the probe.
func (c *Chain) Working() []core.ProviderDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]core.ProviderDescriptor, 0, len(c.working))
	for _, e := range c.working {
		out = append(out, e.Descriptor)
	}
	return out
}

func (c *Chain) Throttle() *ThrottleState {
	return c.throttle
}

// Attempt sends history followed by prompt to each working provider in order.
func (c *Chain) Attempt(ctx context.Context, prompt string, history []core.Message) Result {
	logger := log.FromCtx(ctx)

	c.mu.RLock()
	working := c.working
	c.mu.RUnlock()

	if len(working) == 0 {
		logger.Debug().Msg("no working providers")
		return Result{UsedFallback: true}
	}

	messages := make([]core.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, core.Message{Role: core.RoleUser, Content: prompt})

	for _, e := range working {
		name := e.Descriptor.Name
		if c.throttle.IsThrottled(name) {
			logger.Debug().Str("provider", name).Msg("skipping throttled provider")
			continue
		}

		start := time.Now()
		text, err := c.call(ctx, e, messages)
		outcome := llm.Classify(err)
		if outcome != llm.OutcomeOK && ctx.Err() != nil {
			// the caller gave up; the provider did not fail
			logger.Debug().Err(ctx.Err()).Str("provider", name).Msg("attempt abandoned")
			return Result{UsedFallback: true}
		}
		c.record(ctx, name, outcome, time.Since(start), err)

		switch outcome {
		case llm.OutcomeOK:
			c.throttle.Unmark(name)
			logger.Info().Str("provider", name).Dur("latency", time.Since(start)).Msg("provider answered")
			return Result{Text: text, Provider: name}
		case llm.OutcomeRateLimited:
			c.throttle.Mark(name)
			logger.Warn().Err(err).Str("provider", name).Msg("provider rate limited")
		default:
			logger.Warn().Err(err).Str("provider", name).Str("outcome", outcome.String()).Msg("provider failed")
		}
	}

	for _, e := range working {
		c.throttle.Mark(e.Descriptor.Name)
	}
	logger.Warn().Int("providers", len(working)).Msg("all providers exhausted")
	return Result{UsedFallback: true, Throttled: true}
}

func (c *Chain) call(ctx context.Context, e llm.Entry, messages []core.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return e.Model.Complete(ctx, e.Descriptor.Model, messages, c.maxTokens)
}

func (c *Chain) record(ctx context.Context, name string, outcome llm.Outcome, latency time.Duration, err error) {
	if c.recorder == nil {
		return
	}
	a := core.Attempt{Provider: name, Outcome: outcome.String(), Latency: latency}
	if err != nil {
		a.Error = err.Error()
	}
	if rerr := c.recorder.RecordAttempt(ctx, a); rerr != nil {
		log.FromCtx(ctx).Error().Err(rerr).Msg("failed to record provider attempt")
	}
}
