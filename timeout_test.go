package rest_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/rest"
	"github.com/bjaus/rest/apitest"
)

func TestTimeout(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		delay      time.Duration
		wantStatus rest.Status
	}{
		"fast call completes": {
			delay:      0,
			wantStatus: rest.StatusSuccess,
		},
		"slow call times out": {
			delay:      time.Second,
			wantStatus: rest.StatusError,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c, _ := apitest.NewStubClient(t, func(ctx context.Context, _ *rest.Request) (*rest.RawResponse, error) {
				select {
				case <-time.After(tc.delay):
					return &rest.RawResponse{StatusCode: http.StatusOK}, nil
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}, rest.WithMiddleware(rest.Timeout(50*time.Millisecond)))

			resp := rest.Get[rest.Void, rest.Void](c, "/slow")(context.Background(), nil)
			require.Equal(t, tc.wantStatus, resp.Status)
			if tc.wantStatus == rest.StatusError {
				assert.ErrorIs(t, resp.Err, context.DeadlineExceeded)
			}
		})
	}
}

func TestCancellation_reports_error(t *testing.T) {
	t.Parallel()

	c, _ := apitest.NewStubClient(t, func(ctx context.Context, _ *rest.Request) (*rest.RawResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	ch := rest.Get[rest.Void, rest.Void](c, "/slow").Async(ctx, nil)
	cancel()

	resp := <-ch
	assert.Equal(t, rest.StatusError, resp.Status)
	assert.ErrorIs(t, resp.Err, context.Canceled)
}
