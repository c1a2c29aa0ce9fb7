package testutil

import (
	json "github.com/goccy/go-json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type RecordedRequest struct {
	Method        string
	Path          string
	Query         map[string][]string
	Authorization string
	Body          []byte
}

// FakeSite is an httptest backend speaking the remote resource API. Handlers
// are keyed by method and decoded path; anything unregistered answers 404.
type FakeSite struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	requests []RecordedRequest
}

func NewFakeSite(t *testing.T) *FakeSite {
	t.Helper()
	f := &FakeSite{handlers: make(map[string]http.HandlerFunc)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

func (f *FakeSite) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.Query(),
		Authorization: r.Header.Get("Authorization"),
		Body:          body,
	})
	h, ok := f.handlers[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if !ok {
		WriteJSON(w, http.StatusNotFound, map[string]string{"exc_type": "DoesNotExistError"})
		return
	}
	h(w, r)
}

func (f *FakeSite) Handle(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method+" "+path] = h
}

// JSON registers a fixed response.
func (f *FakeSite) JSON(method, path string, status int, body any) {
	f.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, status, body)
	})
}

func (f *FakeSite) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// Calls counts recorded requests for method and path.
func (f *FakeSite) Calls(method, path string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (f *FakeSite) Last(method, path string) (RecordedRequest, bool) {
	reqs := f.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Method == method && reqs[i].Path == path {
			return reqs[i], true
		}
	}
	return RecordedRequest{}, false
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
