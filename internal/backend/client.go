// Package backend provides the HTTP adapter for the document question-answering service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/raphaelgruber/docchat-go/internal/config"
	"github.com/raphaelgruber/docchat-go/internal/metrics"
	"github.com/raphaelgruber/docchat-go/internal/models"
)

// Backend endpoint paths.
const (
	PathUpload    = "/api/upload"
	PathAskDirect = "/api/ask_direct"
	PathAskRAG    = "/api/ask_rag"
)

// maxResponseBytes bounds how much of a backend response is read.
const maxResponseBytes = 10 << 20

// Client calls the question-answering backend. No call is retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	metrics    *metrics.Collector
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds every request made by the client. Zero keeps the HTTP client's own timeout.
// A client passed to WithHTTPClient is copied, not modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics records request timings into m.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a backend client. An empty baseURL uses config.DefaultBackendURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = config.DefaultBackendURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Answer is a validated answer payload.
type Answer struct {
	Text    string
	Sources []models.Source
}

// answerPayload mirrors {answer, sources}; pointers detect missing required fields.
type answerPayload struct {
	Answer  *string         `json:"answer"`
	Sources []sourcePayload `json:"sources"`
}

type sourcePayload struct {
	Content *string          `json:"content"`
	Page    models.PageLabel `json:"page"`
}

type askRequest struct {
	Question       string `json:"question"`
	CollectionName string `json:"collection_name,omitempty"`
}

type uploadResponse struct {
	CollectionName string `json:"collection_name"`
}

// EndpointFor maps a query mode to its backend path.
func EndpointFor(mode models.QueryMode) (string, error) {
	switch mode {
	case models.ModeDirect:
		return PathAskDirect, nil
	case models.ModeRAG:
		return PathAskRAG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
}

// Ask posts a question in the given mode. Direct mode ignores collection.
func (c *Client) Ask(ctx context.Context, question string, mode models.QueryMode, collection string) (Answer, error) {
	req := askRequest{Question: question}
	switch mode {
	case models.ModeDirect:
	case models.ModeRAG:
		if collection == "" {
			return Answer{}, ErrMissingCollection
		}
		req.CollectionName = collection
	default:
		return Answer{}, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Answer{}, fmt.Errorf("marshal request: %w", err)
	}

	status, respBody, err := c.Forward(ctx, mode, body)
	if err != nil {
		return Answer{}, err
	}
	if !isSuccess(status) {
		return Answer{}, newAPIError(status, respBody, fallbackAskMessage)
	}
	return decodeAnswer(respBody)
}

// Forward posts a raw JSON body to the endpoint for mode and returns the backend status and body
// untouched. Only transport failures and invalid modes produce an error.
func (c *Client) Forward(ctx context.Context, mode models.QueryMode, body []byte) (int, []byte, error) {
	path, err := EndpointFor(mode)
	if err != nil {
		return 0, nil, err
	}

	op := metrics.OpAskDirect
	if mode == models.ModeRAG {
		op = metrics.OpAskRAG
	}
	return c.do(ctx, op, path, "application/json", bytes.NewReader(body))
}

// Upload sends a PDF as multipart field "file" and returns the collection name.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	status, body, err := c.do(ctx, metrics.OpUpload, PathUpload, mw.FormDataContentType(), &buf)
	if err != nil {
		return "", err
	}
	if !isSuccess(status) {
		return "", newAPIError(status, body, fallbackUploadMessage)
	}

	var resp uploadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", malformed("decode upload response: %v", err)
	}
	if resp.CollectionName == "" {
		return "", malformed("upload response has no collection_name")
	}
	return resp.CollectionName, nil
}

// UploadFile uploads a local PDF file.
func (c *Client) UploadFile(ctx context.Context, path string) (string, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return "", fmt.Errorf("%w: %s", ErrNotPDF, filepath.Base(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return c.Upload(ctx, path, f)
}

// do performs a POST and returns status and body. Errors are transport errors only.
func (c *Client) do(ctx context.Context, op, path, contentType string, body io.Reader) (status int, respBody []byte, err error) {
	start := time.Now()
	defer func() {
		duration := time.Since(start)
		failed := err != nil || !isSuccess(status)
		c.metrics.RecordTiming(op, duration, failed)
		attrs := []any{"op", op, "status", status, "duration_ms", duration.Milliseconds()}
		if err != nil {
			c.logger.Error("backend request failed", append(attrs, "error", err)...)
		} else {
			c.logger.Debug("backend request completed", attrs...)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, transportError(err)
	}
	defer resp.Body.Close()

	respBody, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, transportError(fmt.Errorf("read response: %w", err))
	}
	return resp.StatusCode, respBody, nil
}

// decodeAnswer validates the answer schema; missing or mistyped fields are rejected.
func decodeAnswer(body []byte) (Answer, error) {
	var p answerPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return Answer{}, malformed("decode answer: %v", err)
	}
	if p.Answer == nil {
		return Answer{}, malformed("answer field missing")
	}

	sources := make([]models.Source, 0, len(p.Sources))
	for i, s := range p.Sources {
		if s.Content == nil {
			return Answer{}, malformed("source %d has no content", i)
		}
		sources = append(sources, models.Source{Page: s.Page, Content: *s.Content})
	}
	return Answer{Text: *p.Answer, Sources: sources}, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
