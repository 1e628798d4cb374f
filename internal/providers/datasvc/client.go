package datasvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/inbucket/html2text"
	"github.com/sandevgo/campusbot/internal/core"
	"github.com/sandevgo/campusbot/pkg/log"
	"github.com/sandevgo/campusbot/pkg/retry"
	"golang.org/x/sync/errgroup"
)

const (
	fetchTimeout    = 10 * time.Second
	pingTimeout     = 5 * time.Second
	maxResponseSize = 4 << 20

	schedulesPath     = "/api/schedules"
	tasksPath         = "/api/tasks"
	announcementsPath = "/api/announcements"
)

var errBadStatus = errors.New("unexpected status")

// Client reads schedules, tasks and announcements from the primary data service.
type Client struct {
	baseURL string
	client  *http.Client
	retrier *retry.Retrier
}

func NewClient(baseURL string) *Client {
	cfg := retry.NewFetchConfig()
	cfg.Retryable = isRetryable

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: fetchTimeout,
		},
		retrier: retry.NewRetrier(cfg),
	}
}

// FetchAll loads the three collections concurrently. Any collection that
// cannot be loaded comes back empty.
func (c *Client) FetchAll(ctx context.Context) core.Facts {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	logger := log.FromCtx(ctx)
	var facts core.Facts
	var g errgroup.Group

	g.Go(func() error {
		var err error
		facts.Schedules, err = fetchCollection[core.Schedule](ctx, c, schedulesPath)
		return err
	})
	g.Go(func() error {
		var err error
		facts.Tasks, err = fetchCollection[core.Task](ctx, c, tasksPath)
		return err
	})
	g.Go(func() error {
		var err error
		facts.Announcements, err = fetchCollection[core.Announcement](ctx, c, announcementsPath)
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Warn().Err(err).Msg("data service fetch degraded")
	}

	for i := range facts.Announcements {
		facts.Announcements[i].Description = plainText(facts.Announcements[i].Description)
	}

	logger.Debug().
		Int("schedules", len(facts.Schedules)).
		Int("tasks", len(facts.Tasks)).
		Int("announcements", len(facts.Announcements)).
		Msg("facts fetched")
	return facts
}

// Ping reports whether the data service answers at all.
func (c *Client) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+schedulesPath, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", core.CampusUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func fetchCollection[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var items []T
	err := c.retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return retry.Stop(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("User-Agent", core.CampusUserAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", path, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return &statusError{path: path, code: resp.StatusCode}
		}

		var envelope struct {
			Data []T `json:"data"`
		}
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&envelope); err != nil {
			return retry.Stop(fmt.Errorf("decode %s: %w", path, err))
		}
		items = envelope.Data
		return nil
	})
	if err != nil {
		return []T{}, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

type statusError struct {
	path string
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("fetch %s: http %d", e.path, e.code)
}

func (e *statusError) Unwrap() error { return errBadStatus }

// only server-side failures and network errors are worth another try
func isRetryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// plainText flattens rich-text announcement bodies.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	text, err := html2text.FromString(s, html2text.Options{OmitLinks: true})
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(text), " ")
}
