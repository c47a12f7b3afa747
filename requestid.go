package rest

import (
	"context"

	"github.com/google/uuid"
)

const defaultRequestIDHeader = "X-Request-ID"

// RequestIDConfig configures the RequestID middleware.
type RequestIDConfig struct {
	Header    string        // default: "X-Request-ID"
	Generator func() string // default: random UUID
}

// RequestID returns middleware that stamps each outbound call with a request
// ID header. An ID already present on the call is kept.
func RequestID(cfg ...RequestIDConfig) Middleware {
	c := RequestIDConfig{
		Header:    defaultRequestIDHeader,
		Generator: uuid.NewString,
	}
	if len(cfg) > 0 {
		if cfg[0].Header != "" {
			c.Header = cfg[0].Header
		}
		if cfg[0].Generator != nil {
			c.Generator = cfg[0].Generator
		}
	}

	return func(next Transport) Transport {
		return TransportFunc(func(ctx context.Context, req *Request) (*RawResponse, error) {
			if req.Header.Get(c.Header) == "" {
				out := *req
				out.Header = req.Header.Clone()
				if out.Header == nil {
					out.Header = make(map[string][]string)
				}
				out.Header.Set(c.Header, c.Generator())
				req = &out
			}
			return next.Do(ctx, req)
		})
	}
}
