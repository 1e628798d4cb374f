package srv

import (
	"context"

	"github.com/sandevgo/campusbot/pkg/log"
)

// cleanup releases a resource on shutdown and does nothing on start.
type cleanup struct {
	name string
	fn   func() error
}

func (c *cleanup) Start(ctx context.Context) error {
	return nil
}

func (c *cleanup) Shutdown(ctx context.Context) error {
	if c.fn == nil {
		return nil
	}
	if err := c.fn(); err != nil {
		return err
	}
	log.FromCtx(ctx).Debug().Str("resource", c.name).Msg("released")
	return nil
}

func NewCleanup(name string, fn func() error) Service {
	return &cleanup{name: name, fn: fn}
}
