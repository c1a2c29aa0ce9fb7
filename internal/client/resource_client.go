package client

import (
	"context"
	json "github.com/goccy/go-json"
	"net/http"
	"net/url"
)

// CredentialSource yields the site and credentials of an authenticated
// session. ok is false whenever the session is not authenticated.
type CredentialSource interface {
	Credentials() (siteURL string, creds Credentials, ok bool)
}

type ResourceClientInterface interface {
	List(ctx context.Context, doctype string, opts ListOptions, out any) error
	Get(ctx context.Context, doctype, name string, out any) error
	Create(ctx context.Context, doctype string, payload any, out any) error
	Update(ctx context.Context, doctype, name string, payload any, out any) error
	Remove(ctx context.Context, doctype, name string) error
	InvokeMethod(ctx context.Context, method string, params any, out any) error
	CallGet(ctx context.Context, method string, params url.Values, out any) error
	Count(ctx context.Context, doctype string, filters []Filter) (int, error)
}

type ResourceClient struct {
	transport *Transport
	source    CredentialSource
}

func NewResourceClient(transport *Transport, source CredentialSource) *ResourceClient {
	return &ResourceClient{transport: transport, source: source}
}

// envelope unwraps `data` for resource calls and `message` for method calls.
// A body without the key is decoded whole.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message json.RawMessage `json:"message"`
}

func (c *ResourceClient) do(ctx context.Context, req Request, key string, out any) error {
	siteURL, creds, ok := c.source.Credentials()
	if !ok {
		return ErrUnauthenticated
	}
	req.Credentials = &creds

	if out == nil {
		return c.transport.Do(ctx, siteURL, req, nil)
	}

	var raw json.RawMessage
	if err := c.transport.Do(ctx, siteURL, req, &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		inner := env.Data
		if key == "message" {
			inner = env.Message
		}
		if len(inner) > 0 && string(inner) != "null" {
			raw = inner
		}
	}
	return json.Unmarshal(raw, out)
}

func (c *ResourceClient) List(ctx context.Context, doctype string, opts ListOptions, out any) error {
	query, err := opts.Values()
	if err != nil {
		return err
	}
	return c.do(ctx, Request{
		Method:   http.MethodGet,
		Path:     ResourcePath(doctype),
		Query:    query,
		Resource: doctype,
	}, "data", out)
}

func (c *ResourceClient) Get(ctx context.Context, doctype, name string, out any) error {
	return c.do(ctx, Request{Method: http.MethodGet, Path: DocumentPath(doctype, name), Resource: doctype}, "data", out)
}

func (c *ResourceClient) Create(ctx context.Context, doctype string, payload any, out any) error {
	return c.do(ctx, Request{Method: http.MethodPost, Path: ResourcePath(doctype), Body: payload, Resource: doctype}, "data", out)
}

func (c *ResourceClient) Update(ctx context.Context, doctype, name string, payload any, out any) error {
	return c.do(ctx, Request{Method: http.MethodPut, Path: DocumentPath(doctype, name), Body: payload, Resource: doctype}, "data", out)
}

func (c *ResourceClient) Remove(ctx context.Context, doctype, name string) error {
	return c.do(ctx, Request{Method: http.MethodDelete, Path: DocumentPath(doctype, name), Resource: doctype}, "message", nil)
}

// InvokeMethod needs a fully authenticated session. Login and the forced
// password reset run before that state exists and call Transport directly.
func (c *ResourceClient) InvokeMethod(ctx context.Context, method string, params any, out any) error {
	return c.do(ctx, Request{Method: http.MethodPost, Path: MethodPath(method), Body: params, Resource: method}, "message", out)
}

func (c *ResourceClient) CallGet(ctx context.Context, method string, params url.Values, out any) error {
	return c.do(ctx, Request{Method: http.MethodGet, Path: MethodPath(method), Query: params, Resource: method}, "message", out)
}

func (c *ResourceClient) Count(ctx context.Context, doctype string, filters []Filter) (int, error) {
	params := url.Values{}
	params.Set("doctype", doctype)
	if len(filters) > 0 {
		encoded, err := json.Marshal(filters)
		if err != nil {
			return 0, err
		}
		params.Set("filters", string(encoded))
	}
	var count int
	if err := c.CallGet(ctx, "frappe.client.get_count", params, &count); err != nil {
		return 0, err
	}
	return count, nil
}
