// Package chat owns the in-memory chat sessions and the request orchestration around them.
package chat

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/raphaelgruber/docchat-go/internal/models"
)

// Sentinel errors for session operations.
var (
	// ErrNoActiveSession indicates an operation that needs an active session ran without one.
	ErrNoActiveSession = errors.New("no active chat session")

	// ErrEmptyPrompt indicates a prompt that is empty after trimming.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrRequestPending indicates the session already has a placeholder waiting for the backend.
	ErrRequestPending = errors.New("a request is still pending for this chat")
)

// Inline message prefixes for failed operations.
const (
	sendErrorPrefix   = "Error: Failed to get response from backend. "
	uploadErrorPrefix = "Error: Failed to upload PDF. "
)

// PendingSend captures everything needed to resolve a message once its placeholder is shown.
type PendingSend struct {
	SessionID  string
	Question   string
	Mode       models.QueryMode
	Collection string
	// NeedsTitle is set for the first message of a session.
	NeedsTitle bool
}

// Outcome is the settled result of a PendingSend.
type Outcome struct {
	Text    string
	Sources []models.Source
	// Title is empty when no title was synthesized.
	Title string
	Err   error
}

// PendingUpload identifies an upload whose placeholder is shown.
type PendingUpload struct {
	SessionID string
	Path      string
	Filename  string
}

// Store is the session state container. Sessions are kept most-recent-first.
// Every method is a synchronous state transition with no I/O.
// Store is not safe for concurrent use; Orchestrator serializes access.
type Store struct {
	sessions []models.ChatSession
	activeID string
	newID    func() string
}

// NewStore creates an empty store using random UUIDs for session ids.
func NewStore() *Store {
	return &Store{newID: uuid.NewString}
}

func (s *Store) index(id string) int {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

// NewSession prepends a fresh session and makes it active.
func (s *Store) NewSession() models.ChatSession {
	sess := models.ChatSession{
		ID:       s.newID(),
		Title:    models.DefaultTitle,
		Messages: []models.Message{},
	}
	s.sessions = append([]models.ChatSession{sess}, s.sessions...)
	s.activeID = sess.ID
	return sess.Clone()
}

// Select makes id active. Unknown ids are ignored.
func (s *Store) Select(id string) bool {
	if s.index(id) < 0 {
		return false
	}
	s.activeID = id
	return true
}

// Rename sets a session title. Titles that are empty after trimming are ignored.
func (s *Store) Rename(id, title string) bool {
	title = strings.TrimSpace(title)
	i := s.index(id)
	if i < 0 || title == "" {
		return false
	}
	s.sessions[i].Title = title
	return true
}

// Delete removes a session. Deleting the active session activates the most recent
// remaining one, or a brand-new session when none remain.
func (s *Store) Delete(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)

	if s.activeID != id {
		return true
	}
	if len(s.sessions) > 0 {
		s.activeID = s.sessions[0].ID
	} else {
		s.NewSession()
	}
	return true
}

// Sessions returns a copy of all sessions, most recent first.
func (s *Store) Sessions() []models.ChatSession {
	out := make([]models.ChatSession, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.Clone()
	}
	return out
}

// Session returns a copy of the session with id.
func (s *Store) Session(id string) (models.ChatSession, bool) {
	i := s.index(id)
	if i < 0 {
		return models.ChatSession{}, false
	}
	return s.sessions[i].Clone(), true
}

// ActiveID returns the active session id, or "" before the first session exists.
func (s *Store) ActiveID() string {
	return s.activeID
}

// Active returns a copy of the active session.
func (s *Store) Active() (models.ChatSession, bool) {
	return s.Session(s.activeID)
}

// BeginSend appends the user message and a thinking placeholder to the active session.
func (s *Store) BeginSend(text string) (PendingSend, error) {
	if strings.TrimSpace(text) == "" {
		return PendingSend{}, ErrEmptyPrompt
	}
	i := s.index(s.activeID)
	if i < 0 {
		return PendingSend{}, ErrNoActiveSession
	}
	sess := &s.sessions[i]
	if sess.Pending() {
		return PendingSend{}, ErrRequestPending
	}

	p := PendingSend{
		SessionID:  sess.ID,
		Question:   text,
		Mode:       sess.Mode(),
		Collection: sess.CollectionName,
		NeedsTitle: len(sess.Messages) == 0,
	}
	sess.Messages = append(sess.Messages,
		models.Message{Sender: models.SenderUser, Text: text},
		models.ThinkingMessage(),
	)
	return p, nil
}

// CompleteSend replaces the placeholder of p's session with the outcome.
// Returns false if the session no longer exists.
func (s *Store) CompleteSend(p PendingSend, o Outcome) bool {
	i := s.index(p.SessionID)
	if i < 0 {
		return false
	}
	sess := &s.sessions[i]

	if o.Err != nil {
		s.replaceLast(sess, models.Message{Sender: models.SenderAI, Text: sendErrorPrefix + o.Err.Error()})
		return true
	}

	s.replaceLast(sess, models.Message{Sender: models.SenderAI, Text: o.Text, Sources: o.Sources})
	if o.Title != "" {
		sess.Title = o.Title
	}
	return true
}

// BeginUpload appends the uploading placeholder to the active session.
func (s *Store) BeginUpload(path string) (PendingUpload, error) {
	i := s.index(s.activeID)
	if i < 0 {
		return PendingUpload{}, ErrNoActiveSession
	}
	sess := &s.sessions[i]
	if sess.Pending() {
		return PendingUpload{}, ErrRequestPending
	}

	sess.Messages = append(sess.Messages, models.UploadingMessage())
	return PendingUpload{SessionID: sess.ID, Path: path, Filename: filepath.Base(path)}, nil
}

// CompleteUpload replaces the uploading placeholder. On success the collection is stored,
// switching the session to retrieval mode. Returns false if the session no longer exists.
func (s *Store) CompleteUpload(p PendingUpload, collection string, err error) bool {
	i := s.index(p.SessionID)
	if i < 0 {
		return false
	}
	sess := &s.sessions[i]

	if err != nil {
		s.replaceLast(sess, models.Message{Sender: models.SenderAI, Text: uploadErrorPrefix + err.Error()})
		return true
	}

	s.replaceLast(sess, models.Message{
		Sender: models.SenderAI,
		Text:   fmt.Sprintf("PDF %q processed successfully. You can now ask questions about it.", p.Filename),
	})
	sess.CollectionName = collection
	return true
}

// replaceLast swaps the trailing placeholder for msg. Without a placeholder msg is appended.
func (s *Store) replaceLast(sess *models.ChatSession, msg models.Message) {
	if sess.Pending() {
		sess.Messages[len(sess.Messages)-1] = msg
		return
	}
	sess.Messages = append(sess.Messages, msg)
}
