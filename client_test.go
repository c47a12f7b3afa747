package rest_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/rest"
	"github.com/bjaus/rest/apitest"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		baseURL string
		opts    []rest.ClientOption
		wantErr error
	}{
		"absolute base url": {
			baseURL: "https://api.example.com/v1",
		},
		"empty base url": {
			baseURL: "",
		},
		"relative base url": {
			baseURL: "/v1",
			wantErr: rest.ErrInvalidBaseURL,
		},
		"unparseable base url": {
			baseURL: "http://[::1",
			wantErr: rest.ErrInvalidBaseURL,
		},
		"invalid contract": {
			baseURL: "https://api.example.com",
			opts:    []rest.ClientOption{rest.WithContract(rest.Contract{"/a": {"TRACE": {}}})},
			wantErr: rest.ErrInvalidContract,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c, err := rest.New(tc.baseURL, tc.opts...)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.baseURL, c.BaseURL())
			assert.Empty(t, c.Headers())
		})
	}
}

func TestMustNew_panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { rest.MustNew("not a url") })
	assert.NotPanics(t, func() { rest.MustNew("http://api.test") })
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		base string
		path string
		want string
	}{
		"joins with one slash":         {base: "http://api.test", path: "/users", want: "http://api.test/users"},
		"trailing base slash":          {base: "http://api.test/", path: "/users", want: "http://api.test/users"},
		"path without leading slash":   {base: "http://api.test/v1", path: "users", want: "http://api.test/v1/users"},
		"base path kept":               {base: "http://api.test/v1/", path: "/users", want: "http://api.test/v1/users"},
		"empty path":                   {base: "http://api.test/v1", path: "", want: "http://api.test/v1"},
		"absolute path used as is":     {base: "http://api.test", path: "https://other.test/x", want: "https://other.test/x"},
		"protocol relative used as is": {base: "http://api.test", path: "//cdn.test/x", want: "//cdn.test/x"},
		"no base":                      {base: "", path: "/users", want: "/users"},
		"base query after the path":    {base: "http://api.test/v1?key=1", path: "/users", want: "http://api.test/v1/users?key=1"},
		"base query merged":            {base: "http://api.test/v1/?key=1", path: "/users?q=x", want: "http://api.test/v1/users?q=x&key=1"},
		"base query with empty path":   {base: "http://api.test/v1?key=1", path: "", want: "http://api.test/v1?key=1"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c, err := rest.New(tc.base)
			require.NoError(t, err)
			assert.Equal(t, tc.want, c.Resolve(tc.path))
		})
	}
}

func TestIsAbsoluteURL(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]bool{
		"http://a.test":      true,
		"custom+scheme://x":  true,
		"//a.test":           true,
		"/relative":          false,
		"relative/path":      false,
		"://missing-scheme":  false,
		"bad scheme!://host": false,
	} {
		assert.Equal(t, want, rest.IsAbsoluteURL(in), in)
	}
}

func TestWithHeaders_copies_input(t *testing.T) {
	t.Parallel()

	h := http.Header{"Authorization": {"Bearer a"}}
	c, err := rest.New("http://api.test", rest.WithHeaders(h))
	require.NoError(t, err)

	h.Set("Authorization", "Bearer mutated")
	assert.Equal(t, "Bearer a", c.Headers().Get("Authorization"))

	got := c.Headers()
	got.Set("Authorization", "Bearer also mutated")
	assert.Equal(t, "Bearer a", c.Headers().Get("Authorization"))
}

func TestUpdateHeaders(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		fn   func(http.Header) http.Header
		want http.Header
	}{
		"adds to current": {
			fn: func(h http.Header) http.Header {
				h.Set("Authorization", "Bearer new")
				return h
			},
			want: http.Header{"X-Client": {"rest"}, "Authorization": {"Bearer new"}},
		},
		"replaces wholesale": {
			fn: func(http.Header) http.Header {
				return http.Header{"X-Only": {"1"}}
			},
			want: http.Header{"X-Only": {"1"}},
		},
		"nil clears": {
			fn:   func(http.Header) http.Header { return nil },
			want: http.Header{},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c, tr := apitest.NewStubClient(t, apitest.Respond(http.StatusOK, nil),
				rest.WithHeaders(http.Header{"X-Client": {"rest"}}))

			c.UpdateHeaders(tc.fn)
			assert.Equal(t, tc.want, c.Headers())

			rest.Get[rest.Void, rest.Void](c, "/ping")(context.Background(), nil)
			sent := tr.Last().Header
			for k := range tc.want {
				assert.Equal(t, tc.want.Get(k), sent.Get(k))
			}
		})
	}
}

func TestUpdateHeaders_does_not_affect_in_flight_calls(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	release := make(chan struct{})
	c, tr := apitest.NewStubClient(t, func(_ context.Context, req *rest.Request) (*rest.RawResponse, error) {
		if req.Pattern == "/slow" {
			close(entered)
			<-release
		}
		return &rest.RawResponse{StatusCode: http.StatusOK}, nil
	}, rest.WithHeaders(http.Header{"Authorization": {"Bearer old"}}))

	pending := rest.Get[rest.Void, rest.Void](c, "/slow").Async(context.Background(), nil)
	<-entered

	c.UpdateHeaders(func(h http.Header) http.Header {
		h.Set("Authorization", "Bearer new")
		return h
	})
	close(release)
	require.True(t, (<-pending).OK())

	rest.Get[rest.Void, rest.Void](c, "/fast")(context.Background(), nil)

	reqs := tr.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "Bearer old", reqs[0].Header.Get("Authorization"))
	assert.Equal(t, "Bearer new", reqs[1].Header.Get("Authorization"))
}

func TestUpdateHeaders_concurrent(t *testing.T) {
	t.Parallel()

	c, _ := apitest.NewStubClient(t, apitest.Respond(http.StatusOK, nil))
	ping := rest.Get[rest.Void, rest.Void](c, "/ping")

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.UpdateHeaders(func(h http.Header) http.Header {
				h.Add("X-Count", "1")
				return h
			})
		}()
		go func() {
			defer wg.Done()
			ping(context.Background(), nil)
		}()
	}
	wg.Wait()

	assert.Len(t, c.Headers().Values("X-Count"), 50, "every update applies exactly once")
}

func TestClient_Contract(t *testing.T) {
	t.Parallel()

	contract := rest.Contract{"/ping": {http.MethodGet: {}}}
	c, err := rest.New("http://api.test", rest.WithContract(contract))
	require.NoError(t, err)
	assert.Equal(t, contract, c.Contract())

	plain, err := rest.New("http://api.test")
	require.NoError(t, err)
	assert.Nil(t, plain.Contract())
}

func TestUpdateHeaders_fn_may_read_headers(t *testing.T) {
	t.Parallel()

	c, err := rest.New("http://api.test", rest.WithHeaders(http.Header{"X-Version": {"1"}}))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.UpdateHeaders(func(h http.Header) http.Header {
			h.Set("X-Previous", c.Headers().Get("X-Version"))
			h.Set("X-Version", "2")
			return h
		})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("UpdateHeaders blocked while fn read the current headers")
	}

	assert.Equal(t, "1", c.Headers().Get("X-Previous"))
	assert.Equal(t, "2", c.Headers().Get("X-Version"))
}
