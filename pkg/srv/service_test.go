package srv

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, name)
}

type fakeService struct {
	name     string
	startErr error
	rec      *recorder
	ctxAlive bool
}

func (f *fakeService) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	<-ctx.Done()
	return nil
}

func (f *fakeService) Shutdown(ctx context.Context) error {
	f.ctxAlive = ctx.Err() == nil
	f.rec.add(f.name)
	return nil
}

func TestServices_FailedStartStopsAll(t *testing.T) {
	rec := &recorder{}
	http := &fakeService{name: "http", rec: rec}
	broken := &fakeService{name: "broken", rec: rec, startErr: errors.New("port in use")}
	released := false
	db := NewCleanup("db", func() error { released = true; return nil })

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	services := []Service{http, broken, db}
	StartServices(ctx, stop, services)

	done := make(chan struct{})
	go func() {
		ShutdownServices(ctx, services)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not happen after a failed start")
	}

	assert.Equal(t, []string{"http", "broken"}, rec.order)
	assert.True(t, http.ctxAlive, "shutdown context must outlive the signal")
	assert.True(t, released)
}

func TestCleanup_Error(t *testing.T) {
	c := NewCleanup("db", func() error { return errors.New("busy") })
	require.NoError(t, c.Start(context.Background()))
	assert.EqualError(t, c.Shutdown(context.Background()), "busy")
}
