package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pbaille/journal/internal/domain"
	"github.com/pbaille/journal/internal/router"
	"github.com/pbaille/journal/internal/store"
	"github.com/pbaille/journal/internal/tools"
)

type echoAssistant struct {
	got []string
}

func (e *echoAssistant) Handle(_ context.Context, msg string) string {
	e.got = append(e.got, msg)
	return "echo: " + msg
}

func (e *echoAssistant) Clear() error { return nil }

func newTestServer(t *testing.T, a Assistant) (*httptest.Server, *store.Store) {
	t.Helper()
	s, err := store.New(store.WithClock(func() time.Time {
		return time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	srv := httptest.NewServer(New(a, s, "", zaptest.NewLogger(t)).Handler())
	t.Cleanup(srv.Close)
	return srv, s
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &echoAssistant{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPostMessage(t *testing.T) {
	a := &echoAssistant{}
	srv, _ := newTestServer(t, a)

	resp, err := http.Post(srv.URL+"/messages", "application/json", strings.NewReader(`{"message":"hello"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body MessageResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "echo: hello", body.Response)
	assert.Equal(t, []string{"hello"}, a.got)
}

func TestPostMessageRejectsBadInput(t *testing.T) {
	a := &echoAssistant{}
	srv, _ := newTestServer(t, a)

	for _, body := range []string{`{"message":"   "}`, `not json`} {
		resp, err := http.Post(srv.URL+"/messages", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
	assert.Empty(t, a.got)
}

func TestEntriesAndClearThroughRouter(t *testing.T) {
	s, err := store.New()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	logger := zaptest.NewLogger(t)
	r := router.New(s, nil, tools.New(s, logger), router.WithLogger(logger))
	srv := httptest.NewServer(New(r, s, "", logger).Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+"/messages", "application/json",
		strings.NewReader(`{"message":"task — 2024-01-01 10:00 buy milk\nreminder — 2024-01-02 09:00 call mom"}`))
	require.NoError(t, err)
	var reply MessageResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	resp.Body.Close()
	assert.Equal(t, "✅ Added 2 journal entries successfully.", reply.Response)

	resp, err = http.Get(srv.URL + "/entries")
	require.NoError(t, err)
	var listed struct {
		Entries []domain.Entry `json:"entries"`
		Total   int            `json:"total"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	resp.Body.Close()
	assert.Equal(t, 2, listed.Total)
	assert.Equal(t, "buy milk", listed.Entries[0].Content)

	resp, err = http.Get(srv.URL + "/transcript")
	require.NoError(t, err)
	var transcript struct {
		Messages []domain.Message `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&transcript))
	resp.Body.Close()
	assert.Len(t, transcript.Messages, 2)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/entries", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
	msgs, err := s.Transcript()
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
