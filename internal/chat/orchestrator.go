package chat

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/raphaelgruber/docchat-go/internal/backend"
	"github.com/raphaelgruber/docchat-go/internal/models"
)

// Backend is the subset of the backend client the orchestrator needs.
type Backend interface {
	Ask(ctx context.Context, question string, mode models.QueryMode, collection string) (backend.Answer, error)
	UploadFile(ctx context.Context, path string) (string, error)
}

// TitleSynthesizer derives a chat title from the first prompt of a session.
type TitleSynthesizer interface {
	SynthesizeTitle(ctx context.Context, prompt string) (string, error)
}

// Orchestrator owns the session list and drives backend requests for it.
// All state transitions are serialized; backend calls run without holding the lock,
// so the UI can render placeholders while requests are in flight.
type Orchestrator struct {
	mu      sync.Mutex
	store   *Store
	backend Backend
	titles  TitleSynthesizer
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTitleSynthesizer replaces the default four-word title heuristic.
func WithTitleSynthesizer(t TitleSynthesizer) Option {
	return func(o *Orchestrator) { o.titles = t }
}

// WithRequestTimeout bounds each backend round trip. Zero disables the bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithLogger sets the orchestrator logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithStore uses an existing store instead of a fresh one.
func WithStore(s *Store) Option {
	return func(o *Orchestrator) { o.store = s }
}

// NewOrchestrator creates an orchestrator with no sessions.
func NewOrchestrator(be Backend, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:   NewStore(),
		backend: be,
		titles:  backend.TitleFunc(backend.SynthesizeTitle),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewSession creates a session, makes it active and returns it.
func (o *Orchestrator) NewSession() models.ChatSession {
	o.mu.Lock()
	defer o.mu.Unlock()
	sess := o.store.NewSession()
	o.logger.Debug("session created", "session_id", sess.ID)
	return sess
}

// SelectSession activates id. Unknown ids are ignored.
func (o *Orchestrator) SelectSession(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.store.Select(id)
}

// RenameSession sets the title of id.
func (o *Orchestrator) RenameSession(id, title string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.store.Rename(id, title)
}

// DeleteSession removes id; the session list is never empty afterwards.
func (o *Orchestrator) DeleteSession(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	ok := o.store.Delete(id)
	if ok {
		o.logger.Debug("session deleted", "session_id", id, "active_id", o.store.ActiveID())
	}
	return ok
}

// Sessions returns a snapshot of all sessions, most recent first.
func (o *Orchestrator) Sessions() []models.ChatSession {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.store.Sessions()
}

// Session returns a snapshot of one session.
func (o *Orchestrator) Session(id string) (models.ChatSession, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.store.Session(id)
}

// Active returns a snapshot of the active session.
func (o *Orchestrator) Active() (models.ChatSession, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.store.Active()
}

// ActiveID returns the active session id.
func (o *Orchestrator) ActiveID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.store.ActiveID()
}

// SendMessage appends the prompt and a placeholder, asks the backend and settles the placeholder.
// Returns ErrNoActiveSession, ErrEmptyPrompt or ErrRequestPending without touching state;
// a backend failure is recorded inline and also returned.
func (o *Orchestrator) SendMessage(ctx context.Context, text string) error {
	p, err := o.BeginSend(text)
	if err != nil {
		return err
	}
	out := o.Resolve(ctx, p)
	o.CompleteSend(p, out)
	return out.Err
}

// BeginSend is the synchronous half of SendMessage: the placeholder is visible on return.
func (o *Orchestrator) BeginSend(text string) (PendingSend, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.store.BeginSend(text)
}

// Resolve issues the question and, for a session's first message, the title request
// concurrently, and waits for both. Only the question's failure is reported.
func (o *Orchestrator) Resolve(ctx context.Context, p PendingSend) Outcome {
	ctx, cancel := o.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	var (
		answer backend.Answer
		title  string
		g      errgroup.Group
	)

	g.Go(func() error {
		var err error
		answer, err = o.backend.Ask(ctx, p.Question, p.Mode, p.Collection)
		return err
	})
	if p.NeedsTitle && o.titles != nil {
		g.Go(func() error {
			t, err := o.titles.SynthesizeTitle(ctx, p.Question)
			if err != nil {
				o.logger.Warn("title synthesis failed", "session_id", p.SessionID, "error", err)
				return nil
			}
			title = t
			return nil
		})
	}
	err := g.Wait()

	attrs := []any{"session_id", p.SessionID, "mode", p.Mode, "duration_ms", time.Since(start).Milliseconds()}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			attrs = append(attrs, "timeout", o.timeout)
		}
		o.logger.Error("question failed", append(attrs, "error", err)...)
		return Outcome{Err: err}
	}
	o.logger.Info("question answered", append(attrs, "sources", len(answer.Sources))...)
	return Outcome{Text: answer.Text, Sources: answer.Sources, Title: title}
}

// CompleteSend settles the placeholder created by BeginSend.
func (o *Orchestrator) CompleteSend(p PendingSend, out Outcome) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	ok := o.store.CompleteSend(p, out)
	if !ok {
		o.logger.Debug("dropping answer for deleted session", "session_id", p.SessionID)
	}
	return ok
}

// UploadDocument uploads a PDF for the active session. On success the session switches to
// retrieval mode. Returns ErrNoActiveSession when there is nothing to attach the document to.
func (o *Orchestrator) UploadDocument(ctx context.Context, path string) error {
	p, err := o.BeginUpload(path)
	if err != nil {
		return err
	}
	collection, err := o.ResolveUpload(ctx, p)
	o.CompleteUpload(p, collection, err)
	return err
}

// BeginUpload shows the uploading placeholder on the active session.
func (o *Orchestrator) BeginUpload(path string) (PendingUpload, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.store.BeginUpload(path)
}

// ResolveUpload performs the upload request.
func (o *Orchestrator) ResolveUpload(ctx context.Context, p PendingUpload) (string, error) {
	ctx, cancel := o.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	collection, err := o.backend.UploadFile(ctx, p.Path)
	attrs := []any{"session_id", p.SessionID, "file", p.Filename, "duration_ms", time.Since(start).Milliseconds()}
	if err != nil {
		o.logger.Error("upload failed", append(attrs, "error", err)...)
		return "", err
	}
	o.logger.Info("document processed", append(attrs, "collection", collection)...)
	return collection, nil
}

// CompleteUpload settles the placeholder created by BeginUpload.
func (o *Orchestrator) CompleteUpload(p PendingUpload, collection string, err error) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.store.CompleteUpload(p, collection, err)
}

func (o *Orchestrator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.timeout)
}
