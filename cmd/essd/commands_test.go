package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	Method string
	Path   string
	Query  string
	Body   map[string]string
}

type fakeDaemon struct {
	*httptest.Server
	mu    sync.Mutex
	calls []recordedCall
}

func newFakeDaemon(t *testing.T) *fakeDaemon {
	t.Helper()
	d := &fakeDaemon{}
	d.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := recordedCall{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &call.Body)
		}
		d.mu.Lock()
		d.calls = append(d.calls, call)
		d.mu.Unlock()
		_, _ = w.Write([]byte(`{"success":true,"data":{"state":"authenticated"}}`))
	}))
	t.Cleanup(d.Close)
	return d
}

func (d *fakeDaemon) last(t *testing.T) recordedCall {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	require.NotEmpty(t, d.calls)
	return d.calls[len(d.calls)-1]
}

func execute(t *testing.T, d *fakeDaemon, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(append([]string{"--api", d.URL}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands_RouteToDaemon(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want recordedCall
	}{
		{"status", []string{"status"}, recordedCall{Method: "GET", Path: "/session"}},
		{"site set", []string{"site", "set", "erp.example.com"}, recordedCall{Method: "POST", Path: "/session/site", Body: map[string]string{"url": "erp.example.com"}}},
		{"site reset", []string{"site", "reset"}, recordedCall{Method: "DELETE", Path: "/session/site"}},
		{"logout", []string{"logout"}, recordedCall{Method: "POST", Path: "/session/logout"}},
		{"password", []string{"password", "new-secret-1"}, recordedCall{Method: "POST", Path: "/session/password", Body: map[string]string{"newPassword": "new-secret-1"}}},
		{"attendance today", []string{"attendance", "today"}, recordedCall{Method: "GET", Path: "/attendance/today"}},
		{"attendance toggle", []string{"attendance", "toggle", "--location", "HQ"}, recordedCall{Method: "POST", Path: "/attendance/toggle", Body: map[string]string{"location": "HQ"}}},
		{"attendance month", []string{"attendance", "month", "--year", "2024", "--month", "3"}, recordedCall{Method: "GET", Path: "/attendance/month", Query: "month=3&year=2024"}},
		{"leave types", []string{"leave", "types"}, recordedCall{Method: "GET", Path: "/leave/types"}},
		{"leave apply", []string{"leave", "apply", "--type", "Sick Leave", "--from", "2024-03-04", "--to", "2024-03-05", "--reason", "flu"},
			recordedCall{Method: "POST", Path: "/leave", Body: map[string]string{"leaveType": "Sick Leave", "fromDate": "2024-03-04", "toDate": "2024-03-05", "reason": "flu"}}},
		{"holidays", []string{"holidays"}, recordedCall{Method: "GET", Path: "/holidays"}},
		{"profile", []string{"profile"}, recordedCall{Method: "GET", Path: "/profile"}},
		{"updates", []string{"updates"}, recordedCall{Method: "GET", Path: "/updates"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newFakeDaemon(t)
			out, err := execute(t, d, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.last(t))
			assert.Contains(t, out, `"state": "authenticated"`)
		})
	}
}

func TestLoginCommand_PasswordFromEnv(t *testing.T) {
	d := newFakeDaemon(t)
	t.Setenv("ESS_APP_PASSWORD", "from-env")
	loginPassword = ""

	_, err := execute(t, d, "login", "--app-id", "jane")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"appId": "jane", "appPassword": "from-env"}, d.last(t).Body)
}

func TestLoginCommand_RequiresPassword(t *testing.T) {
	d := newFakeDaemon(t)
	t.Setenv("ESS_APP_PASSWORD", "")
	loginPassword = ""

	_, err := execute(t, d, "login", "--app-id", "jane")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app password is required")
	assert.Empty(t, d.calls)
}
