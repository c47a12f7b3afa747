package rest

import (
	"context"
	"net/http"
)

// RequestFunc is a typed call bound to one endpoint of a Client. It never
// returns nil; every outcome is reported through the envelope.
type RequestFunc[Data, Resp, ErrResp any] func(ctx context.Context, opts *Options[Data]) *Response[Resp, ErrResp]

// Async starts the call in its own goroutine and returns immediately. The
// channel receives exactly one envelope and is then closed.
func (f RequestFunc[Data, Resp, ErrResp]) Async(ctx context.Context, opts *Options[Data]) <-chan *Response[Resp, ErrResp] {
	ch := make(chan *Response[Resp, ErrResp], 1)
	go func() {
		defer close(ch)
		ch <- f(ctx, opts)
	}()
	return ch
}

// bind is the internal generic binding function.
func bind[Data, Resp, ErrResp any](c *Client, method, path string) RequestFunc[Data, Resp, ErrResp] {
	ep := newEndpoint(method, path)
	return func(ctx context.Context, opts *Options[Data]) *Response[Resp, ErrResp] {
		return dispatch[Data, Resp, ErrResp](ctx, c, ep, opts)
	}
}

// Get binds a GET endpoint. GET calls never carry a body.
func Get[Resp, ErrResp any](c *Client, path string) RequestFunc[Void, Resp, ErrResp] {
	return bind[Void, Resp, ErrResp](c, http.MethodGet, path)
}

// Post binds a POST endpoint.
func Post[Data, Resp, ErrResp any](c *Client, path string) RequestFunc[Data, Resp, ErrResp] {
	return bind[Data, Resp, ErrResp](c, http.MethodPost, path)
}

// Put binds a PUT endpoint.
func Put[Data, Resp, ErrResp any](c *Client, path string) RequestFunc[Data, Resp, ErrResp] {
	return bind[Data, Resp, ErrResp](c, http.MethodPut, path)
}

// Patch binds a PATCH endpoint.
func Patch[Data, Resp, ErrResp any](c *Client, path string) RequestFunc[Data, Resp, ErrResp] {
	return bind[Data, Resp, ErrResp](c, http.MethodPatch, path)
}

// Delete binds a DELETE endpoint.
func Delete[Data, Resp, ErrResp any](c *Client, path string) RequestFunc[Data, Resp, ErrResp] {
	return bind[Data, Resp, ErrResp](c, http.MethodDelete, path)
}
