// Package models defines the chat data structures shared by the client, the TUI and the relay.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// QueryMode selects the backend endpoint used to answer a question.
type QueryMode string

const (
	// ModeDirect asks the language model with no document context.
	ModeDirect QueryMode = "direct"
	// ModeRAG answers from the document identified by a collection name.
	ModeRAG QueryMode = "rag"
)

// Valid reports whether m is one of the two recognized modes.
func (m QueryMode) Valid() bool {
	return m == ModeDirect || m == ModeRAG
}

// Placeholder texts shown while a backend request is in flight.
const (
	ThinkingText  = "..."
	UploadingText = "Uploading and processing PDF..."
)

// DefaultTitle is the title a session carries until one is synthesized or assigned.
const DefaultTitle = "New Chat"

// PageLabel is a page reference as reported by the backend.
// The backend emits either an integer page number or a string such as "N/A".
type PageLabel string

// UnmarshalJSON accepts a JSON string, number or null.
func (p *PageLabel) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PageLabel(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("page label must be string or number: %s", data)
	}
	if i, err := n.Int64(); err == nil {
		*p = PageLabel(strconv.FormatInt(i, 10))
		return nil
	}
	*p = PageLabel(n.String())
	return nil
}

// Source is a citation attached to a retrieval-mode answer.
type Source struct {
	Page    PageLabel `json:"page"`
	Content string    `json:"content"`
}

// Message is a single chat entry.
type Message struct {
	Sender  Sender   `json:"sender"`
	Text    string   `json:"text"`
	Sources []Source `json:"sources,omitempty"`
	// Placeholder marks a transient entry that will be replaced in place.
	Placeholder bool `json:"placeholder,omitempty"`
}

// ThinkingMessage is the placeholder shown while a question is being answered.
func ThinkingMessage() Message {
	return Message{Sender: SenderAI, Text: ThinkingText, Placeholder: true}
}

// UploadingMessage is the placeholder shown while a PDF is being processed.
func UploadingMessage() Message {
	return Message{Sender: SenderAI, Text: UploadingText, Placeholder: true}
}

// IsPlaceholder reports whether the message is a transient pending indicator.
func (m Message) IsPlaceholder() bool {
	return m.Placeholder
}

// ChatSession is one conversation in the sidebar.
// CollectionName is empty until a PDF has been processed for the session.
type ChatSession struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Messages       []Message `json:"messages"`
	CollectionName string    `json:"collection_name,omitempty"`
}

// Mode returns the query mode implied by the session's collection.
func (s ChatSession) Mode() QueryMode {
	if s.CollectionName != "" {
		return ModeRAG
	}
	return ModeDirect
}

// Pending reports whether the last message is a placeholder.
func (s ChatSession) Pending() bool {
	n := len(s.Messages)
	return n > 0 && s.Messages[n-1].IsPlaceholder()
}

// Clone returns a deep copy so callers cannot mutate store-owned slices.
func (s ChatSession) Clone() ChatSession {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		if m.Sources != nil {
			m.Sources = append([]Source(nil), m.Sources...)
		}
		out.Messages[i] = m
	}
	return out
}
