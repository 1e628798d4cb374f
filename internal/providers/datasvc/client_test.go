package datasvc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_FetchAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case schedulesPath:
			_, _ = w.Write([]byte(`{"data":[{"_id":"s1","subject":"Math","room":"101","day":"Monday","date":"2025-01-13","startTime":"09:00","endTime":"10:30"}]}`))
		case tasksPath:
			_, _ = w.Write([]byte(`{"data":[{"_id":"t1","title":"Essay","class":"English","type":"assignment","priority":"high","dueDate":"2025-01-15"}]}`))
		case announcementsPath:
			_, _ = w.Write([]byte(`{"data":[{"_id":"a1","title":"Fair","description":"<p>Career <span>fair</span> on Friday</p>"}]}`))
		}
	}))
	defer server.Close()

	facts := NewClient(server.URL + "/").FetchAll(context.Background())

	require.Len(t, facts.Schedules, 1)
	assert.Equal(t, "Math", facts.Schedules[0].Subject)
	assert.Equal(t, "2025-01-13", facts.Schedules[0].Date)

	require.Len(t, facts.Tasks, 1)
	assert.Equal(t, "high", facts.Tasks[0].Priority)

	require.Len(t, facts.Announcements, 1)
	assert.Equal(t, "Career fair on Friday", facts.Announcements[0].Description)
}

func TestClient_FetchAll_Degrades(t *testing.T) {
	var taskCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case schedulesPath:
			_, _ = w.Write([]byte(`{"data":[{"subject":"Physics"}]}`))
		case tasksPath:
			taskCalls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		default:
			_, _ = w.Write([]byte(`not json`))
		}
	}))
	defer server.Close()

	facts := NewClient(server.URL).FetchAll(context.Background())

	assert.Len(t, facts.Schedules, 1)
	assert.NotNil(t, facts.Tasks)
	assert.Empty(t, facts.Tasks)
	assert.Empty(t, facts.Announcements)
	// 4xx is not retried
	assert.Equal(t, int32(1), taskCalls.Load())
}

func TestClient_FetchAll_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := NewClient(url)
	facts := c.FetchAll(context.Background())

	assert.Empty(t, facts.Schedules)
	assert.Empty(t, facts.Tasks)
	assert.Empty(t, facts.Announcements)
	assert.False(t, c.Ping(context.Background()))
}

func TestClient_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	assert.True(t, NewClient(server.URL).Ping(context.Background()))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "no markup", plainText("no markup"))
	assert.Equal(t, "Exam moved to Room 204", plainText("<div>Exam moved to <span>Room 204</span></div>"))
}
