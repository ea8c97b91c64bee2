package chat

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/docchat-go/internal/models"
)

// newTestStore returns a store with deterministic ids: s1, s2, ...
func newTestStore() *Store {
	n := 0
	return &Store{newID: func() string {
		n++
		return fmt.Sprintf("s%d", n)
	}}
}

func TestNewSessionPrependsAndActivates(t *testing.T) {
	s := newTestStore()
	first := s.NewSession()
	second := s.NewSession()

	assert.Equal(t, "s2", s.ActiveID())
	sessions := s.Sessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, second.ID, sessions[0].ID)
	assert.Equal(t, first.ID, sessions[1].ID)
	assert.Equal(t, models.DefaultTitle, sessions[0].Title)
	assert.Empty(t, sessions[0].Messages)
	assert.Empty(t, sessions[0].CollectionName)
}

func TestSelect(t *testing.T) {
	s := newTestStore()
	s.NewSession()
	s.NewSession()

	assert.True(t, s.Select("s1"))
	assert.Equal(t, "s1", s.ActiveID())
	assert.False(t, s.Select("nope"))
	assert.Equal(t, "s1", s.ActiveID())
}

func TestRename(t *testing.T) {
	s := newTestStore()
	s.NewSession()

	assert.True(t, s.Rename("s1", "  Contract review  "))
	sess, _ := s.Session("s1")
	assert.Equal(t, "Contract review", sess.Title)

	assert.False(t, s.Rename("s1", "   "))
	sess, _ = s.Session("s1")
	assert.Equal(t, "Contract review", sess.Title)

	assert.False(t, s.Rename("missing", "x"))
}

func TestDelete(t *testing.T) {
	t.Run("inactive session keeps selection", func(t *testing.T) {
		s := newTestStore()
		s.NewSession()
		s.NewSession()

		assert.True(t, s.Delete("s1"))
		assert.Equal(t, "s2", s.ActiveID())
		assert.Len(t, s.Sessions(), 1)
	})

	t.Run("active session falls back to most recent", func(t *testing.T) {
		s := newTestStore()
		s.NewSession()
		s.NewSession()
		s.NewSession()
		s.Select("s2")

		assert.True(t, s.Delete("s2"))
		assert.Equal(t, "s3", s.ActiveID())
	})

	t.Run("last session is replaced", func(t *testing.T) {
		s := newTestStore()
		s.NewSession()

		assert.True(t, s.Delete("s1"))
		sessions := s.Sessions()
		require.Len(t, sessions, 1)
		assert.Equal(t, "s2", sessions[0].ID)
		assert.Equal(t, "s2", s.ActiveID())
		assert.Equal(t, models.DefaultTitle, sessions[0].Title)
	})

	t.Run("unknown id", func(t *testing.T) {
		s := newTestStore()
		s.NewSession()
		assert.False(t, s.Delete("missing"))
		assert.Len(t, s.Sessions(), 1)
	})
}

func TestBeginSend(t *testing.T) {
	t.Run("no active session", func(t *testing.T) {
		_, err := newTestStore().BeginSend("hello")
		assert.ErrorIs(t, err, ErrNoActiveSession)
	})

	t.Run("blank prompt leaves session untouched", func(t *testing.T) {
		s := newTestStore()
		s.NewSession()
		_, err := s.BeginSend("  \n\t")
		assert.ErrorIs(t, err, ErrEmptyPrompt)
		sess, _ := s.Active()
		assert.Empty(t, sess.Messages)
	})

	t.Run("appends prompt and placeholder", func(t *testing.T) {
		s := newTestStore()
		s.NewSession()
		p, err := s.BeginSend("What is Article 21?")
		require.NoError(t, err)

		assert.Equal(t, PendingSend{
			SessionID:  "s1",
			Question:   "What is Article 21?",
			Mode:       models.ModeDirect,
			NeedsTitle: true,
		}, p)

		sess, _ := s.Active()
		require.Len(t, sess.Messages, 2)
		assert.Equal(t, models.Message{Sender: models.SenderUser, Text: "What is Article 21?"}, sess.Messages[0])
		assert.Equal(t, models.ThinkingMessage(), sess.Messages[1])
	})

	t.Run("second send while pending is rejected", func(t *testing.T) {
		s := newTestStore()
		s.NewSession()
		_, err := s.BeginSend("one")
		require.NoError(t, err)

		_, err = s.BeginSend("two")
		assert.ErrorIs(t, err, ErrRequestPending)
		sess, _ := s.Active()
		assert.Len(t, sess.Messages, 2)
	})
}

func TestCompleteSend(t *testing.T) {
	t.Run("success replaces placeholder and sets title", func(t *testing.T) {
		s := newTestStore()
		s.NewSession()
		p, err := s.BeginSend("hello there")
		require.NoError(t, err)

		src := []models.Source{{Page: "3", Content: "c"}}
		assert.True(t, s.CompleteSend(p, Outcome{Text: "hi", Sources: src, Title: "hello there"}))

		sess, _ := s.Active()
		require.Len(t, sess.Messages, 2)
		assert.Equal(t, models.Message{Sender: models.SenderAI, Text: "hi", Sources: src}, sess.Messages[1])
		assert.Equal(t, "hello there", sess.Title)
		assert.False(t, sess.Pending())
	})

	t.Run("failure keeps title and shows error inline", func(t *testing.T) {
		s := newTestStore()
		s.NewSession()
		p, err := s.BeginSend("hello")
		require.NoError(t, err)

		s.CompleteSend(p, Outcome{Err: errors.New("Backend API error"), Title: "ignored"})

		sess, _ := s.Active()
		require.Len(t, sess.Messages, 2)
		assert.Equal(t, "Error: Failed to get response from backend. Backend API error", sess.Messages[1].Text)
		assert.Equal(t, models.SenderAI, sess.Messages[1].Sender)
		assert.Equal(t, models.DefaultTitle, sess.Title)
	})

	t.Run("lands on originating session after switching", func(t *testing.T) {
		s := newTestStore()
		s.NewSession()
		p, err := s.BeginSend("question")
		require.NoError(t, err)
		s.NewSession()

		s.CompleteSend(p, Outcome{Text: "answer"})

		origin, _ := s.Session("s1")
		assert.Equal(t, "answer", origin.Messages[1].Text)
		current, _ := s.Active()
		assert.Empty(t, current.Messages)
	})

	t.Run("deleted session drops the outcome", func(t *testing.T) {
		s := newTestStore()
		s.NewSession()
		p, err := s.BeginSend("question")
		require.NoError(t, err)
		s.Delete("s1")

		assert.False(t, s.CompleteSend(p, Outcome{Text: "answer"}))
		sess, _ := s.Active()
		assert.Empty(t, sess.Messages)
	})

	t.Run("later message does not request a title", func(t *testing.T) {
		s := newTestStore()
		s.NewSession()
		p, _ := s.BeginSend("first")
		s.CompleteSend(p, Outcome{Text: "a"})

		p, err := s.BeginSend("second")
		require.NoError(t, err)
		assert.False(t, p.NeedsTitle)
	})
}

func TestUploadLifecycle(t *testing.T) {
	t.Run("success switches to retrieval mode", func(t *testing.T) {
		s := newTestStore()
		s.NewSession()
		p, err := s.BeginUpload("/docs/judgment.pdf")
		require.NoError(t, err)
		assert.Equal(t, "judgment.pdf", p.Filename)

		sess, _ := s.Active()
		assert.Equal(t, models.UploadingMessage(), sess.Messages[0])

		s.CompleteUpload(p, "pdf_judgment_1a2b", nil)
		sess, _ = s.Active()
		require.Len(t, sess.Messages, 1)
		assert.Equal(t, `PDF "judgment.pdf" processed successfully. You can now ask questions about it.`, sess.Messages[0].Text)
		assert.Equal(t, "pdf_judgment_1a2b", sess.CollectionName)
		assert.Equal(t, models.ModeRAG, sess.Mode())

		next, err := s.BeginSend("what does it say?")
		require.NoError(t, err)
		assert.Equal(t, models.ModeRAG, next.Mode)
		assert.Equal(t, "pdf_judgment_1a2b", next.Collection)
	})

	t.Run("failure keeps direct mode", func(t *testing.T) {
		s := newTestStore()
		s.NewSession()
		p, err := s.BeginUpload("bad.pdf")
		require.NoError(t, err)

		s.CompleteUpload(p, "", errors.New("Invalid or no selected file"))
		sess, _ := s.Active()
		assert.Equal(t, "Error: Failed to upload PDF. Invalid or no selected file", sess.Messages[0].Text)
		assert.Empty(t, sess.CollectionName)
		assert.Equal(t, models.ModeDirect, sess.Mode())
	})

	t.Run("no active session", func(t *testing.T) {
		_, err := newTestStore().BeginUpload("a.pdf")
		assert.ErrorIs(t, err, ErrNoActiveSession)
	})
}

func TestSnapshotsAreIsolated(t *testing.T) {
	s := newTestStore()
	s.NewSession()
	p, _ := s.BeginSend("q")
	s.CompleteSend(p, Outcome{Text: "a"})

	sess, _ := s.Active()
	sess.Messages[0].Text = "mutated"
	sess.Title = "mutated"

	again, _ := s.Active()
	assert.Equal(t, "q", again.Messages[0].Text)
	assert.NotEqual(t, "mutated", again.Title)
}
