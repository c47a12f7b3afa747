package rest

import (
	"context"
	"log/slog"
	"time"
)

// Logger returns middleware that logs each call using the provided slog.Logger.
// Calls that end without a response are logged at warn level.
func Logger(logger *slog.Logger) Middleware {
	return func(next Transport) Transport {
		return TransportFunc(func(ctx context.Context, req *Request) (*RawResponse, error) {
			start := time.Now()
			resp, err := next.Do(ctx, req)

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("pattern", req.Pattern),
				slog.String("url", req.URL),
				slog.Duration("latency", time.Since(start)),
			}

			if id := req.Header.Get(defaultRequestIDHeader); id != "" {
				attrs = append(attrs, slog.String("request_id", id))
			}

			level := slog.LevelInfo
			switch {
			case resp != nil:
				attrs = append(attrs,
					slog.Int("status", resp.StatusCode),
					slog.Int("size", len(resp.Body)),
				)
			case err != nil:
				if status := ErrorStatus(err); status != 0 {
					attrs = append(attrs, slog.Int("status", status))
				}
				attrs = append(attrs, slog.String("err", err.Error()))
				level = slog.LevelWarn
			}

			logger.LogAttrs(ctx, level, "request", attrs...)
			return resp, err
		})
	}
}
