package rest

import (
	"context"
	"time"
)

// Timeout returns middleware that bounds every call with d. A call that does
// not complete in time ends with context.DeadlineExceeded.
func Timeout(d time.Duration) Middleware {
	return func(next Transport) Transport {
		return TransportFunc(func(ctx context.Context, req *Request) (*RawResponse, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next.Do(ctx, req)
		})
	}
}
