package client

import (
	"bytes"
	"context"
	json "github.com/goccy/go-json"
	"ess/internal/providers"
	"ess/internal/structures"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBytes = 8 << 20

type Credentials struct {
	APIKey    string
	APISecret string
}

func (c Credentials) header() string {
	return "token " + c.APIKey + ":" + c.APISecret
}

// Request describes one call against the remote site. Resource is the metrics
// and log label for the call.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        any
	Credentials *Credentials
	Resource    string
}

// Transport performs single-attempt requests. Every non-2xx response becomes
// an *HTTPError and every transport failure a *NetworkError.
type Transport struct {
	httpClient *http.Client
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
}

func NewTransport(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) *Transport {
	return &Transport{
		httpClient: &http.Client{Timeout: conf.Site.Timeout},
		logger:     logger,
		metrics:    metrics,
	}
}

// Do sends req to baseURL and decodes a successful body into out when out is
// non-nil.
func (t *Transport) Do(ctx context.Context, baseURL string, req Request, out any) error {
	target := strings.TrimRight(baseURL, "/") + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", req.Resource, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", req.Resource, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Credentials != nil {
		httpReq.Header.Set("Authorization", req.Credentials.header())
	}

	start := time.Now()
	resp, err := t.httpClient.Do(httpReq)
	t.metrics.ObserveRemoteDuration(req.Resource, time.Since(start))
	if err != nil {
		t.metrics.IncRemoteCalls(req.Resource, 0)
		t.logger.Warnf(providers.TypeRemote, "%s %s failed: %v", req.Method, req.Path, err)
		return &NetworkError{Method: req.Method, URL: req.Path, Err: err}
	}
	defer resp.Body.Close()

	t.metrics.IncRemoteCalls(req.Resource, resp.StatusCode)
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &NetworkError{Method: req.Method, URL: req.Path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		t.logger.Debugf(providers.TypeRemote, "%s %s -> %d", req.Method, req.Path, resp.StatusCode)
		return &HTTPError{StatusCode: resp.StatusCode, Body: data, Method: req.Method, URL: req.Path}
	}
	t.logger.Debugf(providers.TypeRemote, "%s %s -> %d (%d bytes)", req.Method, req.Path, resp.StatusCode, len(data))

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.Resource, err)
	}
	return nil
}
