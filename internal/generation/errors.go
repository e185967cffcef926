package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorKind string

const (
	RemoteUnreachable ErrorKind = "remote_unreachable"
	RemoteRejected    ErrorKind = "remote_rejected"
	MalformedResponse ErrorKind = "malformed_response"
	InvalidInput      ErrorKind = "invalid_input"
	NoToolSelected    ErrorKind = "no_tool_selected"
)

var (
	ErrNoToolSelected = errors.New("no generation tool selected")
	ErrEmptyPrompt    = errors.New("prompt is empty")
)

type Error struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return "generation error"
	}
	msg := string(e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) ErrorKind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}

// Remote reports whether the kind describes a failed remote call, i.e. one a
// soft policy replaces with fallback content.
func (k ErrorKind) Remote() bool {
	switch k {
	case RemoteUnreachable, RemoteRejected, MalformedResponse:
		return true
	default:
		return false
	}
}

// HTTPError is a non-2xx answer from the generation backend.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "http error"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if msg == "" {
		msg = "http error"
	}
	if strings.TrimSpace(e.Code) != "" {
		return fmt.Sprintf("http error: status=%d code=%s message=%s", e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("http error: status=%d message=%s", e.StatusCode, msg)
}

// parseHTTPError understands {"error": {"message", "code"}} envelopes and the
// flat {"error": "..."} bodies the generation backend emits.
func parseHTTPError(status int, raw []byte) *HTTPError {
	herr := &HTTPError{StatusCode: status, Body: strings.TrimSpace(string(raw))}

	var env struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err != nil || len(env.Error) == 0 {
		return herr
	}
	var nested struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(env.Error, &nested); err == nil {
		herr.Message = strings.TrimSpace(nested.Message)
		herr.Code = strings.TrimSpace(nested.Code)
		return herr
	}
	var flat string
	if err := json.Unmarshal(env.Error, &flat); err == nil {
		herr.Message = strings.TrimSpace(flat)
	}
	return herr
}
