// Package rest is a generics-first HTTP client for Go. Endpoint types are the
// source of truth: the request body, the success payload, and the failure
// payload are all expressed as Go type parameters, and the client derives
// encoding, parameter substitution, and response decoding from them.
//
// Endpoints are bound with package-level generic functions:
//
//	c, err := rest.New("https://api.example.com",
//	    rest.WithHeaders(http.Header{"Authorization": {"Bearer " + token}}),
//	    rest.WithMiddleware(rest.Logger(slog.Default()), rest.RequestID()),
//	)
//	listAccounts := rest.Post[ListReq, ListResp, APIError](c, "/accounts-list")
//	getUser := rest.Get[User, APIError](c, "/users/:id")
//
// Every call returns a Response envelope tagged SUCCESS, FAILURE or ERROR.
// Nothing is ever returned as a Go error or panic:
//
//	resp := getUser(ctx, &rest.Options[rest.Void]{PathParams: rest.Params{"id": 42}})
//	switch resp.Status {
//	case rest.StatusSuccess:
//	    fmt.Println(resp.Data.Name)
//	case rest.StatusFailure:
//	    fmt.Println(resp.StatusCode, resp.ErrorData.Message)
//	case rest.StatusError:
//	    fmt.Println(resp.Err)
//	}
//
// Middleware wraps the Transport with the func(Transport) Transport
// signature, so logging, request IDs, timeouts and rate limiting compose the
// same way server middleware does.
//
// An optional Contract, written in Go or loaded from YAML, restricts a client
// to the declared path and verb pairs.
package rest
