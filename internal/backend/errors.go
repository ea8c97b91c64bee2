package backend

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for backend operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrBackend indicates the backend answered with a non-success status.
	// The concrete error is an *APIError carrying the server-provided message.
	ErrBackend = errors.New("backend error")

	// ErrTransport indicates the backend could not be reached or the exchange was cut short.
	ErrTransport = errors.New("backend unreachable")

	// ErrMalformedResponse indicates a success status with a body that does not match the answer schema.
	ErrMalformedResponse = errors.New("malformed backend response")

	// ErrInvalidMode indicates a query mode other than direct or rag.
	ErrInvalidMode = errors.New("invalid query type")

	// ErrMissingCollection indicates a retrieval-mode question without a collection name.
	ErrMissingCollection = errors.New("collection name is required for retrieval mode")

	// ErrNotPDF indicates an upload of a file without a .pdf extension.
	ErrNotPDF = errors.New("only .pdf files can be uploaded")
)

// Fallback messages used when the backend error body carries no usable text.
const (
	fallbackUploadMessage = "Failed to upload PDF"
	fallbackAskMessage    = "Backend API error"
)

// APIError is a non-2xx backend response.
// Error returns the backend's message verbatim so it can be shown in the conversation.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is(err, ErrBackend) match.
func (e *APIError) Unwrap() error {
	return ErrBackend
}

// errorBody is the backend's error payload: {"error": "..."}.
type errorBody struct {
	Error string `json:"error"`
}

// newAPIError extracts the backend error message from body, falling back when absent.
func newAPIError(status int, body []byte, fallback string) *APIError {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || eb.Error == "" {
		return &APIError{Status: status, Message: fallback}
	}
	return &APIError{Status: status, Message: eb.Error}
}

func transportError(err error) error {
	return fmt.Errorf("%w: %v", ErrTransport, err)
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}
