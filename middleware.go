package rest

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Middleware wraps a Transport. Middleware passed to a Client is applied in
// the order given, so the first one sees the call first.
type Middleware func(next Transport) Transport

// chain wraps t with mw, first element outermost.
func chain(t Transport, mw []Middleware) Transport {
	for i := len(mw) - 1; i >= 0; i-- {
		t = mw[i](t)
	}
	return t
}

// Recovery returns middleware that turns a panic further down the chain into
// an error wrapping ErrPanic.
func Recovery() Middleware {
	return func(next Transport) Transport {
		return TransportFunc(func(ctx context.Context, req *Request) (resp *RawResponse, err error) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("panic recovered",
						"panic", rec,
						"stack", string(debug.Stack()),
						"method", req.Method,
						"url", req.URL,
					)
					resp = nil
					err = fmt.Errorf("%w: %v", ErrPanic, rec)
				}
			}()
			return next.Do(ctx, req)
		})
	}
}
