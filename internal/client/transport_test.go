package client

import (
	"context"
	"ess/internal/structures"
	"ess/internal/testutil"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransport(metrics *testutil.MockMetrics) *Transport {
	conf := &structures.Config{Site: structures.SiteConfig{Timeout: 5 * time.Second}}
	return NewTransport(conf, &testutil.MockLogger{}, metrics)
}

func TestTransport_DecodesSuccess(t *testing.T) {
	site := testutil.NewFakeSite(t)
	site.JSON(http.MethodGet, "/api/method/ping", http.StatusOK, map[string]string{"message": "pong"})
	metrics := testutil.NewMockMetrics()

	var out struct {
		Message string `json:"message"`
	}
	err := newTestTransport(metrics).Do(context.Background(), site.URL+"/", Request{
		Method:   http.MethodGet,
		Path:     MethodPath("ping"),
		Resource: "ping",
	}, &out)

	require.NoError(t, err)
	assert.Equal(t, "pong", out.Message)
	assert.Equal(t, 1, metrics.Remote("ping"))
}

func TestTransport_SendsAuthorizationAndBody(t *testing.T) {
	site := testutil.NewFakeSite(t)
	site.JSON(http.MethodPost, "/api/resource/Employee Checkin", http.StatusOK, map[string]any{"data": map[string]string{"name": "CHK-1"}})

	err := newTestTransport(testutil.NewMockMetrics()).Do(context.Background(), site.URL, Request{
		Method:      http.MethodPost,
		Path:        ResourcePath("Employee Checkin"),
		Body:        map[string]string{"log_type": "IN"},
		Credentials: &Credentials{APIKey: "key", APISecret: "secret"},
		Resource:    "Employee Checkin",
	}, nil)
	require.NoError(t, err)

	req, ok := site.Last(http.MethodPost, "/api/resource/Employee Checkin")
	require.True(t, ok)
	assert.Equal(t, "token key:secret", req.Authorization)
	assert.JSONEq(t, `{"log_type":"IN"}`, string(req.Body))
}

func TestTransport_NonSuccessIsHTTPError(t *testing.T) {
	site := testutil.NewFakeSite(t)
	site.JSON(http.MethodGet, "/api/resource/Employee", http.StatusForbidden, map[string]string{"exc_type": "PermissionError"})

	err := newTestTransport(testutil.NewMockMetrics()).Do(context.Background(), site.URL, Request{
		Method:   http.MethodGet,
		Path:     ResourcePath("Employee"),
		Resource: "Employee",
	}, nil)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
	assert.Contains(t, string(httpErr.Body), "PermissionError")
	assert.True(t, IsStatus(err, http.StatusForbidden))
}

func TestTransport_NetworkError(t *testing.T) {
	site := testutil.NewFakeSite(t)
	url := site.URL
	site.Close()
	metrics := testutil.NewMockMetrics()

	err := newTestTransport(metrics).Do(context.Background(), url, Request{
		Method:   http.MethodGet,
		Path:     MethodPath("ping"),
		Resource: "ping",
	}, nil)

	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
	assert.Equal(t, 1, metrics.Remote("ping"))
}

func TestTransport_InvalidJSON(t *testing.T) {
	site := testutil.NewFakeSite(t)
	site.Handle(http.MethodGet, "/api/method/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	var out map[string]any
	err := newTestTransport(testutil.NewMockMetrics()).Do(context.Background(), site.URL, Request{
		Method: http.MethodGet,
		Path:   MethodPath("ping"),
	}, &out)
	assert.ErrorContains(t, err, "decode")
}

func TestHTTPError_ServerMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string message", `{"message":"Invalid app password"}`, "Invalid app password"},
		{"nested message", `{"message":{"success":false,"message":"Invalid App ID"}}`, "Invalid App ID"},
		{"server messages", `{"_server_messages":"[\"{\\\"message\\\": \\\"<b>Not</b> permitted\\\"}\"]"}`, "Not permitted"},
		{"exc", `{"exc":"Traceback\nframe\nfrappe.exceptions.AuthenticationError"}`, "frappe.exceptions.AuthenticationError"},
		{"plain text", `Bad Gateway`, "Bad Gateway"},
		{"html", `<html>oops</html>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &HTTPError{StatusCode: 417, Body: []byte(tt.body)}
			assert.Equal(t, tt.want, e.ServerMessage())
		})
	}
}
