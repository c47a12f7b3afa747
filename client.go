package rest

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// Client is the request dispatcher. It holds the base URL, the default
// headers, the transport chain, and configuration shared by every endpoint
// bound to it. A Client is safe for concurrent use.
type Client struct {
	baseURL string

	transport  Transport
	httpClient *http.Client
	middleware []Middleware
	chain      Transport

	encoders []Encoder
	decoders []Decoder
	codecs   *codecRegistry

	contract       Contract
	validator      Validator
	validateStatus func(code int) bool

	maxResponseBytes int64

	mu       sync.RWMutex
	updateMu sync.Mutex
	headers  http.Header
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTransport sets the transport that performs network I/O.
func WithTransport(t Transport) ClientOption {
	return func(c *Client) {
		c.transport = t
	}
}

// WithHTTPClient uses client through an HTTPTransport.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithHeaders sets the initial default headers.
func WithHeaders(h http.Header) ClientOption {
	return func(c *Client) {
		c.headers = h.Clone()
	}
}

// WithMiddleware appends transport middleware. Middleware is applied in the
// order added.
func WithMiddleware(mw ...Middleware) ClientOption {
	return func(c *Client) {
		c.middleware = append(c.middleware, mw...)
	}
}

// WithEncoder registers an additional request body encoder.
func WithEncoder(enc Encoder) ClientOption {
	return func(c *Client) {
		c.encoders = append(c.encoders, enc)
	}
}

// WithDecoder registers an additional response decoder.
func WithDecoder(dec Decoder) ClientOption {
	return func(c *Client) {
		c.decoders = append(c.decoders, dec)
	}
}

// WithContract restricts the client to the endpoints declared in contract.
// The contract is validated by New.
func WithContract(contract Contract) ClientOption {
	return func(c *Client) {
		c.contract = contract
	}
}

// WithValidator validates request data before it is sent.
func WithValidator(v Validator) ClientOption {
	return func(c *Client) {
		c.validator = v
	}
}

// WithStatusValidator decides which status codes count as success. The
// default accepts 2xx.
func WithStatusValidator(fn func(code int) bool) ClientOption {
	return func(c *Client) {
		c.validateStatus = fn
	}
}

// WithMaxResponseBytes caps the size of response bodies.
func WithMaxResponseBytes(n int64) ClientOption {
	return func(c *Client) {
		c.maxResponseBytes = n
	}
}

// New creates a Client for baseURL. Without a transport option the client
// uses http.DefaultClient.
func New(baseURL string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		baseURL:        baseURL,
		validateStatus: defaultValidateStatus,
	}
	for _, opt := range opts {
		opt(c)
	}

	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidBaseURL, baseURL)
		}
	}

	if c.contract != nil {
		if err := c.contract.Validate(); err != nil {
			return nil, err
		}
	}

	if c.transport == nil {
		ht := NewHTTPTransport(c.httpClient)
		ht.MaxResponseBytes = c.maxResponseBytes
		c.transport = ht
	}
	if c.headers == nil {
		c.headers = http.Header{}
	}
	if c.validateStatus == nil {
		c.validateStatus = defaultValidateStatus
	}

	c.codecs = newCodecRegistry(c.encoders, c.decoders)
	c.chain = chain(c.transport, c.middleware)

	return c, nil
}

// MustNew is like New but panics on error.
func MustNew(baseURL string, opts ...ClientOption) *Client {
	c, err := New(baseURL, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// BaseURL returns the base URL the client resolves endpoint paths against.
func (c *Client) BaseURL() string { return c.baseURL }

// Contract returns the configured contract, or nil.
func (c *Client) Contract() Contract { return c.contract }

// Headers returns a copy of the current default headers.
func (c *Client) Headers() http.Header {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headers.Clone()
}

// UpdateHeaders replaces the default headers with fn's result. fn receives
// a copy of the current headers and may call Headers; it must not call
// UpdateHeaders. Concurrent updates apply one after another. Calls already
// built keep the headers they captured.
func (c *Client) UpdateHeaders(fn func(current http.Header) http.Header) {
	c.updateMu.Lock()
	defer c.updateMu.Unlock()

	next := fn(c.Headers())
	if next == nil {
		next = http.Header{}
	}
	next = next.Clone()

	c.mu.Lock()
	c.headers = next
	c.mu.Unlock()
}

// resolve joins path onto the base URL. Absolute URLs are used as-is. A
// query string on the base URL is kept after the joined path.
func (c *Client) resolve(path string) string {
	if c.baseURL == "" || isAbsoluteURL(path) {
		return path
	}

	base, baseQuery, _ := strings.Cut(c.baseURL, "?")
	joined := base
	if path != "" {
		joined = strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
	}

	switch {
	case baseQuery == "":
		return joined
	case strings.Contains(joined, "?"):
		return joined + "&" + baseQuery
	default:
		return joined + "?" + baseQuery
	}
}

func isAbsoluteURL(s string) bool {
	i := strings.Index(s, "://")
	if i <= 0 {
		return strings.HasPrefix(s, "//")
	}
	for _, r := range s[:i] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return false
		}
	}
	return true
}

func defaultValidateStatus(code int) bool {
	return code >= 200 && code < 300
}
