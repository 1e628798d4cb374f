package srv

import (
	"context"
	"time"

	"github.com/sandevgo/campusbot/pkg/log"
)

// ShutdownTimeout bounds each service's Shutdown call.
const ShutdownTimeout = 15 * time.Second

type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// StartServices launches every service in its own goroutine. A service that
// fails to start triggers stop, which begins a graceful shutdown of the rest.
func StartServices(ctx context.Context, stop context.CancelFunc, services []Service) {
	logger := log.FromCtx(ctx)
	for _, service := range services {
		go func(service Service) {
			if err := service.Start(ctx); err != nil {
				logger.Error().Err(err).Msgf("%T failed, shutting down", service)
				stop()
			}
		}(service)
	}
}

// ShutdownServices waits for ctx to end, then shuts services down in order.
// Each Shutdown gets a fresh context so it can finish after the signal.
func ShutdownServices(ctx context.Context, services []Service) {
	<-ctx.Done()
	logger := log.FromCtx(ctx)

	for _, service := range services {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		if err := service.Shutdown(sctx); err != nil {
			logger.Error().Err(err).Msgf("%T failed to shutdown", service)
		}
		cancel()
	}
}
