package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// FallbackMessage is reported when no better error text is available.
const FallbackMessage = "request failed, please try again"

// maxErrorBody caps how much of an error response body is read.
const maxErrorBody = 64 * 1024

// Error is a non-2xx backend response.
type Error struct {
	Status int
	Detail string // structured detail field when the body carried one
}

// Error returns the human-readable message for the failure.
func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return http.StatusText(e.Status)
}

// newError builds an Error from a non-2xx response, preferring the
// structured detail field in the body.
func newError(resp *http.Response) *Error {
	apiErr := &Error{Status: resp.StatusCode}

	blob, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return apiErr
	}
	var body struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(blob, &body); err != nil {
		return apiErr
	}
	switch {
	case body.Detail != "":
		apiErr.Detail = body.Detail
	case body.Message != "":
		apiErr.Detail = body.Message
	case body.Error != "":
		apiErr.Detail = body.Error
	}
	return apiErr
}

// Message normalizes any error from this adapter into a single
// human-readable string: the structured detail when present, else the
// transport error text, else a fixed fallback.
// PRE: none
// POST: Returns a non-empty string
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return FallbackMessage
}

// asError is a local errors.As wrapper kept for call-site readability.
func asError(err error, target **Error) bool {
	return errors.As(err, target)
}
