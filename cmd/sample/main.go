// Command sample demonstrates the github.com/bjaus/rest client against a
// small accounts API.
//
// Run against the bundled demo server:
//
//	go run ./cmd/sample -serve
//
// Print the endpoint contract:
//
//	go run ./cmd/sample -contract
//
// Configuration is read from REST_SAMPLE_* environment variables, optionally
// loaded from a .env file:
//
//	REST_SAMPLE_BASE_URL   base URL of the API (default http://localhost:8080)
//	REST_SAMPLE_CONTRACT   path to a YAML contract (default: built in)
//	REST_SAMPLE_TIMEOUT    per-call timeout (default 5s)
//	REST_SAMPLE_RATE       calls per second (default 10)
//	REST_SAMPLE_TOKEN      bearer token sent as Authorization
//	REST_SAMPLE_LOG_LEVEL  debug, info, warn or error (default info)
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bjaus/rest"
	"github.com/bjaus/rest/restprom"
)

const defaultContract = `
/accounts-list:
  POST:
    data: {offset: number, limit: number}
    response: {data: array, limit: number, offset: number, total: number}
    errorResponse: {message: string}
/accounts:
  POST:
    data: {name: string, email: string}
    response: {id: string, name: string, email: string}
    errorResponse: {message: string}
/accounts/:id:
  GET:
    pathParams: {id: string}
    response: {id: string, name: string, email: string}
    errorResponse: {message: string}
  DELETE:
    pathParams: {id: string}
    errorResponse: {message: string}
`

type listAccountsRequest struct {
	Offset int `json:"offset" validate:"gte=0"`
	Limit  int `json:"limit" validate:"gte=1,lte=100"`
}

type listAccountsResponse struct {
	Data   []Account `json:"data"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
	Total  int       `json:"total"`
}

type createAccountRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type accountPath struct {
	ID string `path:"id"`
}

type apiError struct {
	Message string `json:"message"`
}

func main() {
	serveFlag := flag.Bool("serve", false, "Run the demo server in-process and call it")
	contractFlag := flag.Bool("contract", false, "Print the endpoint contract as YAML and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Debug(".env file not found, relying on environment")
	}

	cfg, err := loadConfig()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.level()}))
	slog.SetDefault(logger)

	contract, err := loadContract(cfg.Contract)
	if err != nil {
		slog.Error("failed to load contract", "err", err)
		os.Exit(1)
	}

	if *contractFlag {
		if err := contract.WriteYAML(os.Stdout); err != nil {
			slog.Error("failed to write contract", "err", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *serveFlag {
		baseURL, shutdown, err := serveDemo()
		if err != nil {
			slog.Error("failed to start demo server", "err", err)
			os.Exit(1)
		}
		defer shutdown()
		cfg.BaseURL = baseURL
	}

	reg := prometheus.NewRegistry()
	if err := run(ctx, cfg, contract, reg, os.Stdout); err != nil {
		slog.Error("sample failed", "err", err)
		os.Exit(1)
	}
	logMetrics(reg)
}

func loadContract(path string) (rest.Contract, error) {
	if path != "" {
		return rest.LoadContractFile(path)
	}
	return rest.ParseContract(strings.NewReader(defaultContract))
}

// serveDemo starts the demo API on a loopback port.
func serveDemo() (string, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}

	srv := &http.Server{
		Handler:           newDemoHandler(newAccountStore()),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("demo server error", "err", err)
		}
	}()
	slog.Info("demo server started", "addr", ln.Addr().String())

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("demo server shutdown", "err", err)
		}
	}
	return "http://" + ln.Addr().String(), shutdown, nil
}

func newClient(cfg *config, contract rest.Contract, reg prometheus.Registerer) (*rest.Client, error) {
	headers := http.Header{}
	if cfg.Token != "" {
		headers.Set("Authorization", "Bearer "+cfg.Token)
	}

	return rest.New(cfg.BaseURL,
		rest.WithContract(contract),
		rest.WithHeaders(headers),
		rest.WithValidator(rest.NewStructValidator()),
		rest.WithMaxResponseBytes(1<<20),
		rest.WithMiddleware(
			rest.Recovery(),
			rest.RequestID(),
			rest.Logger(slog.Default()),
			restprom.New(reg).Middleware(),
			rest.RateLimit(rest.RateLimitConfig{Rate: cfg.Rate, Burst: 1}),
			rest.Timeout(cfg.Timeout),
		),
	)
}

// run walks through the accounts API and prints every envelope to out.
func run(ctx context.Context, cfg *config, contract rest.Contract, reg prometheus.Registerer, out io.Writer) error {
	c, err := newClient(cfg, contract, reg)
	if err != nil {
		return err
	}

	listAccounts := rest.Post[listAccountsRequest, listAccountsResponse, apiError](c, "/accounts-list")
	createAccount := rest.Post[createAccountRequest, Account, apiError](c, "/accounts")
	getAccount := rest.Get[Account, apiError](c, "/accounts/:id")
	deleteAccount := rest.Delete[rest.Void, rest.Void, apiError](c, "/accounts/:id")

	show := func(label string, v any) {
		b, err := json.Marshal(v)
		if err != nil {
			slog.Error("failed to encode envelope", "err", err)
			return
		}
		_, _ = fmt.Fprintf(out, "%-16s %s\n", label, b)
	}

	show("list", listAccounts(ctx, &rest.Options[listAccountsRequest]{
		Data: &listAccountsRequest{Offset: 0, Limit: 10},
	}))

	show("list invalid", listAccounts(ctx, &rest.Options[listAccountsRequest]{
		Data: &listAccountsRequest{Offset: 0, Limit: 0},
	}))

	created := createAccount(ctx, &rest.Options[createAccountRequest]{
		Data: &createAccountRequest{Name: "Carol", Email: "carol@example.com"},
	})
	show("create", created)

	if created.Status == rest.StatusFailure && created.StatusCode == http.StatusUnauthorized {
		c.UpdateHeaders(func(h http.Header) http.Header {
			h.Set("Authorization", "Bearer sample")
			return h
		})
		created = createAccount(ctx, &rest.Options[createAccountRequest]{
			Data: &createAccountRequest{Name: "Carol", Email: "carol@example.com"},
		})
		show("create retry", created)
	}

	ids := []string{"1", "2", "404"}
	if created.OK() {
		ids = append(ids, created.Data.ID)
	}
	pending := make([]<-chan *rest.Response[Account, apiError], 0, len(ids))
	for _, id := range ids {
		pending = append(pending, getAccount.Async(ctx, &rest.Options[rest.Void]{
			PathParams: rest.Params{"id": id},
		}))
	}
	for i, ch := range pending {
		show("get "+ids[i], <-ch)
	}

	if created.OK() {
		show("delete", deleteAccount(ctx, &rest.Options[rest.Void]{
			Values: accountPath{ID: created.Data.ID},
		}))
	}

	show("unknown", rest.Put[rest.Void, rest.Void, apiError](c, "/accounts/:id")(ctx, nil))

	return nil
}

func logMetrics(g prometheus.Gatherer) {
	mfs, err := g.Gather()
	if err != nil {
		slog.Warn("failed to gather metrics", "err", err)
		return
	}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			attrs := []any{"metric", mf.GetName()}
			for _, lp := range m.GetLabel() {
				attrs = append(attrs, lp.GetName(), lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				attrs = append(attrs, "value", m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				attrs = append(attrs, "count", m.GetHistogram().GetSampleCount())
			}
			slog.Info("metric", attrs...)
		}
	}
}
