// Package apitest provides test helpers for code built on the rest client:
// a recording stub Transport and httptest-backed clients.
package apitest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/bjaus/rest"
)

// Handler produces the outcome of one stubbed call.
type Handler func(ctx context.Context, req *rest.Request) (*rest.RawResponse, error)

// Transport is a rest.Transport that records every request and answers
// with a Handler instead of the network.
type Transport struct {
	handler Handler

	mu       sync.Mutex
	requests []*rest.Request
}

// NewTransport returns a stub transport answering with h.
func NewTransport(h Handler) *Transport {
	return &Transport{handler: h}
}

// Do records req and calls the handler.
func (t *Transport) Do(ctx context.Context, req *rest.Request) (*rest.RawResponse, error) {
	t.mu.Lock()
	t.requests = append(t.requests, req)
	t.mu.Unlock()
	return t.handler(ctx, req)
}

// Requests returns the recorded requests in call order.
func (t *Transport) Requests() []*rest.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*rest.Request, len(t.requests))
	copy(out, t.requests)
	return out
}

// Last returns the most recent request, or nil.
func (t *Transport) Last() *rest.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.requests) == 0 {
		return nil
	}
	return t.requests[len(t.requests)-1]
}

// Respond answers every call with status and body encoded as JSON.
func Respond(status int, body any) Handler {
	return func(_ context.Context, _ *rest.Request) (*rest.RawResponse, error) {
		return jsonResponse(status, body)
	}
}

// Reject answers every call by rejecting with a structured response, the
// way a transport that treats non-2xx statuses as errors would.
func Reject(status int, body any) Handler {
	return func(_ context.Context, _ *rest.Request) (*rest.RawResponse, error) {
		resp, err := jsonResponse(status, body)
		if err != nil {
			return nil, err
		}
		return nil, &rest.ResponseError{Response: resp}
	}
}

// Fail answers every call with err and no response.
func Fail(err error) Handler {
	return func(_ context.Context, _ *rest.Request) (*rest.RawResponse, error) {
		return nil, err
	}
}

func jsonResponse(status int, body any) (*rest.RawResponse, error) {
	resp := &rest.RawResponse{
		StatusCode: status,
		Header:     http.Header{},
	}
	if body == nil {
		return resp, nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	resp.Header.Set("Content-Type", "application/json")
	resp.Body = b
	return resp, nil
}

// NewStubClient creates a client whose transport is a stub answering with h.
func NewStubClient(t testing.TB, h Handler, opts ...rest.ClientOption) (*rest.Client, *Transport) {
	t.Helper()
	tr := NewTransport(h)
	opts = append([]rest.ClientOption{rest.WithTransport(tr)}, opts...)
	c, err := rest.New("http://api.test", opts...)
	if err != nil {
		t.Fatalf("apitest: new client: %v", err)
	}
	return c, tr
}

// NewClient starts an httptest server for h and returns a client pointed at
// it. The server is closed when the test ends.
func NewClient(t testing.TB, h http.Handler, opts ...rest.ClientOption) *rest.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	opts = append([]rest.ClientOption{rest.WithHTTPClient(srv.Client())}, opts...)
	c, err := rest.New(srv.URL, opts...)
	if err != nil {
		t.Fatalf("apitest: new client: %v", err)
	}
	return c
}
