package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Kind classifies a backend failure coarsely enough for the UI to pick a
// message and a recovery path.
type Kind string

const (
	KindNetwork      Kind = "network"
	KindBadRequest   Kind = "bad_request"
	KindUnauthorized Kind = "unauthorized"
	KindNotFound     Kind = "not_found"
	KindServer       Kind = "server"
	KindUnknown      Kind = "unknown"
)

// APIError is any failure talking to the backend. Nothing here is fatal:
// callers surface the message and return to an interactive state.
type APIError struct {
	Kind       Kind
	StatusCode int // zero for connectivity failures
	Message    string
	cause      error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("backend: %s (HTTP %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("backend: %s", e.Message)
}

func (e *APIError) Unwrap() error { return e.cause }

// IsUnauthorized reports whether err is a 401 from the backend, meaning
// the caller should route the user to sign-in.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindUnauthorized
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindNotFound
}

func netError(err error) *APIError {
	return &APIError{Kind: KindNetwork, Message: "could not reach the backend", cause: err}
}

// httpError classifies a non-2xx response, preferring the human-readable
// message in the JSON body over the raw status text.
func httpError(resp *http.Response) *APIError {
	msg := extractMessage(resp.Body)
	if msg == "" {
		msg = resp.Status
	}

	var kind Kind
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		kind = KindUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		kind = KindNotFound
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		kind = KindBadRequest
	case resp.StatusCode >= 500:
		kind = KindServer
	default:
		kind = KindUnknown
	}
	return &APIError{Kind: kind, StatusCode: resp.StatusCode, Message: msg}
}

// extractMessage pulls the error text out of JSON bodies shaped like
// {"error": ...}, {"message": ...} or {"detail": ...}.
func extractMessage(r io.Reader) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&body); err != nil {
		return ""
	}
	switch {
	case body.Error != "":
		return body.Error
	case body.Message != "":
		return body.Message
	default:
		return body.Detail
	}
}
