package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/docchat-go/internal/backend"
	"github.com/raphaelgruber/docchat-go/internal/metrics"
	"github.com/raphaelgruber/docchat-go/internal/models"
)

// stubForwarder returns a canned response and records the forwarded request.
type stubForwarder struct {
	status int
	body   string
	err    error

	calls int
	mode  models.QueryMode
	sent  map[string]any
}

func (f *stubForwarder) Forward(_ context.Context, mode models.QueryMode, body []byte) (int, []byte, error) {
	f.calls++
	f.mode = mode
	f.sent = map[string]any{}
	_ = json.Unmarshal(body, &f.sent)
	if f.err != nil {
		return 0, nil, f.err
	}
	return f.status, []byte(f.body), nil
}

func newTestServer(fwd Forwarder, opts ...Option) http.Handler {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return NewServer(fwd, opts...).Handler()
}

func postChat(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, PathChat, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestChatRejectsInvalidType(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown", `{"question": "q", "collection_name": "c", "type": "invalid"}`},
		{"missing", `{"question": "q"}`},
		{"wrong case", `{"question": "q", "type": "RAG"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fwd := &stubForwarder{}
			rec := postChat(t, newTestServer(fwd), tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error": "Invalid query type"}`, rec.Body.String())
			assert.Zero(t, fwd.calls)
		})
	}
}

func TestChatRejectsBadBody(t *testing.T) {
	fwd := &stubForwarder{}
	rec := postChat(t, newTestServer(fwd), `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error": "invalid request body"}`, rec.Body.String())
	assert.Zero(t, fwd.calls)
}

func TestChatRelaysVerbatim(t *testing.T) {
	tests := []struct {
		name   string
		typ    string
		status int
		body   string
	}{
		{"direct success", "direct", http.StatusOK, `{"answer": "Hello!", "sources": []}`},
		{"rag success", "rag", http.StatusOK, `{"answer": "A", "sources": [{"content": "c", "page": 4}]}`},
		{"backend error", "rag", http.StatusBadRequest, `{"error": "Collection not found"}`},
		{"backend crash", "direct", http.StatusInternalServerError, `{"error": "Failed to query LLM: boom"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fwd := &stubForwarder{status: tt.status, body: tt.body}
			rec := postChat(t, newTestServer(fwd),
				fmt.Sprintf(`{"question": "What is this?", "collection_name": "pdf_a", "type": %q}`, tt.typ))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			assert.Equal(t, models.QueryMode(tt.typ), fwd.mode)
			assert.Equal(t, map[string]any{"question": "What is this?", "collection_name": "pdf_a"}, fwd.sent)
		})
	}
}

func TestChatTransportFailure(t *testing.T) {
	fwd := &stubForwarder{err: fmt.Errorf("%w: connection refused", backend.ErrTransport)}
	rec := postChat(t, newTestServer(fwd), `{"question": "q", "type": "direct"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "backend unreachable: connection refused", resp.Error)
}

func TestChatAgainstBackendClient(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, backend.PathAskDirect, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"answer":"Hi","sources":[]}`)
	}))
	defer upstream.Close()

	h := newTestServer(backend.New(upstream.URL))
	rec := postChat(t, h, `{"question": "Hello", "collection_name": null, "type": "direct"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"answer":"Hi","sources":[]}`, rec.Body.String())
}

func TestStatsAndHealth(t *testing.T) {
	m := metrics.NewCollector()
	h := newTestServer(&stubForwarder{status: http.StatusOK, body: `{}`}, WithMetrics(m))

	postChat(t, h, `{"question": "q", "type": "direct"}`)
	postChat(t, h, `{"question": "q", "type": "bogus"}`)

	srv := httptest.NewServer(h)
	defer srv.Close()
	c := NewClient(srv.URL + "/")

	require.NoError(t, c.Health(context.Background()))

	snap, err := c.Stats(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap.Relay)
	assert.Equal(t, int64(2), snap.Relay.Count)
	assert.Equal(t, int64(1), snap.Relay.Errors)
}

func TestStatsClientError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewClient(srv.URL).Stats(context.Background())
	assert.ErrorContains(t, err, "status 404")
}

func TestCORS(t *testing.T) {
	h := newTestServer(&stubForwarder{}, WithAllowedOrigins([]string{"http://localhost:5173"}))

	req := httptest.NewRequest(http.MethodOptions, PathChat, nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x?"+strings.Repeat("a", 300), nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "request failed", entry["msg"])
	assert.EqualValues(t, http.StatusBadGateway, entry["status"])
	assert.Len(t, entry["query"], maxQueryLogLen)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdefgh", 5))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
