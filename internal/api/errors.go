package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies why a call to the backend failed
type Kind int

const (
	KindUnknown    Kind = iota // anything not matching below
	KindNetwork                // no response reached us
	KindNotFound               // structured 404
	KindValidation             // rejected before sending
	KindServer                 // any other structured failure response
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error is returned by every Client method on failure.
// Message and Details are only set when the backend sent them.
type Error struct {
	Op         string
	Kind       Kind
	StatusCode int
	Message    string
	Details    string
	RequestID  string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (%d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the Kind of err, KindUnknown if err is not an *Error
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// AsError unwraps err to an *Error
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// errorPayload is the backend's error envelope. message and details
// arrive either as a string or as a list of strings.
type errorPayload struct {
	Message    json.RawMessage `json:"message"`
	Details    json.RawMessage `json:"details"`
	Error      string          `json:"error"`
	StatusCode int             `json:"statusCode"`
}

// parseErrorPayload pulls message and details out of a response body.
// Bodies that are not a JSON object yield empty strings.
func parseErrorPayload(body []byte) (message, details string) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return "", ""
	}
	var p errorPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return "", ""
	}
	return flattenText(p.Message), flattenText(p.Details)
}

func flattenText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.TrimSpace(strings.Join(list, "\n"))
	}
	return ""
}
