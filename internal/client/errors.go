package client

import (
	"errors"
	"fmt"
	json "github.com/goccy/go-json"
	"regexp"
	"strings"
)

// ErrUnauthenticated is returned before any I/O when no authenticated
// credentials are available.
var ErrUnauthenticated = errors.New("no authenticated session")

// HTTPError carries every non-2xx response back to the caller.
type HTTPError struct {
	StatusCode int
	Body       []byte
	Method     string
	URL        string
}

func (e *HTTPError) Error() string {
	msg := e.ServerMessage()
	if msg == "" {
		return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.URL, e.StatusCode, msg)
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// ServerMessage extracts the most useful human-readable text from a backend
// error body: the `message`, then `exc`, then `_server_messages`, then the raw
// body when it is short enough to show.
func (e *HTTPError) ServerMessage() string {
	var body struct {
		Message        json.RawMessage `json:"message"`
		Exc            string          `json:"exc"`
		ExcType        string          `json:"exc_type"`
		ServerMessages string          `json:"_server_messages"`
	}
	if err := json.Unmarshal(e.Body, &body); err != nil {
		raw := strings.TrimSpace(string(e.Body))
		if len(raw) > 0 && len(raw) <= 200 && !strings.HasPrefix(raw, "<") {
			return raw
		}
		return ""
	}

	if len(body.Message) > 0 {
		var s string
		if err := json.Unmarshal(body.Message, &s); err == nil && s != "" {
			return s
		}
		var m struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body.Message, &m); err == nil && m.Message != "" {
			return m.Message
		}
	}
	if body.ServerMessages != "" {
		if msg := firstServerMessage(body.ServerMessages); msg != "" {
			return msg
		}
	}
	if body.Exc != "" {
		return lastLine(body.Exc)
	}
	return body.ExcType
}

// _server_messages is a JSON list of JSON-encoded objects.
func firstServerMessage(raw string) string {
	var encoded []string
	if err := json.Unmarshal([]byte(raw), &encoded); err != nil {
		return ""
	}
	for _, item := range encoded {
		var m struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal([]byte(item), &m); err == nil && m.Message != "" {
			return strings.TrimSpace(htmlTag.ReplaceAllString(m.Message, ""))
		}
	}
	return ""
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// NetworkError means the request never produced an HTTP response.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == code
}
