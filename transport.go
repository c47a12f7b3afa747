package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Void is used as a type parameter when a call sends no body or expects no
// payload. Void payloads are never decoded.
type Void struct{}

// Request is the fully-resolved outbound call handed to a Transport.
type Request struct {
	Method  string
	Pattern string // endpoint path as declared, before parameter substitution
	URL     string // absolute URL without the query string
	Query   url.Values
	Header  http.Header
	Body    []byte // nil when no body is sent
}

// FullURL returns URL with the encoded query appended.
func (r *Request) FullURL() string {
	if len(r.Query) == 0 {
		return r.URL
	}
	return r.URL + "?" + r.Query.Encode()
}

// RawResponse is the buffered result of a transport call.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport performs the network I/O for a Request. Implementations return
// a RawResponse for every HTTP response they receive, whatever its status,
// and an error only when no response is available. A Transport may instead
// reject with a *ResponseError to report a structured failure.
type Transport interface {
	Do(ctx context.Context, req *Request) (*RawResponse, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req *Request) (*RawResponse, error)

// Do calls f.
func (f TransportFunc) Do(ctx context.Context, req *Request) (*RawResponse, error) {
	return f(ctx, req)
}

// HTTPTransport is the default Transport, backed by an *http.Client.
type HTTPTransport struct {
	Client *http.Client

	// MaxResponseBytes caps the buffered response body. Zero means no limit.
	MaxResponseBytes int64
}

// NewHTTPTransport wraps client. A nil client uses http.DefaultClient.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{Client: client}
}

// Do sends req and buffers the response body.
func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*RawResponse, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.FullURL(), body)
	if err != nil {
		return nil, err
	}
	if req.Header != nil {
		httpReq.Header = req.Header.Clone()
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := readBody(resp.Body, t.MaxResponseBytes)
	if err != nil {
		return nil, err
	}

	return &RawResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// readBody reads r fully, failing with ErrResponseTooLarge once more than
// maxBytes have been read.
func readBody(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrResponseTooLarge, maxBytes)
	}
	return data, nil
}
