package rest

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors carried by ERROR envelopes and construction failures.
var (
	ErrUnknownEndpoint  = errors.New("unknown endpoint")
	ErrPathParams       = errors.New("path params")
	ErrEncodeParams     = errors.New("encode params")
	ErrEncodeBody       = errors.New("encode body")
	ErrDecodeResponse   = errors.New("decode response")
	ErrValidation       = errors.New("validation")
	ErrRateLimited      = errors.New("rate limited")
	ErrResponseTooLarge = errors.New("response too large")
	ErrPanic            = errors.New("panic")
	ErrInvalidContract  = errors.New("invalid contract")
	ErrInvalidBaseURL   = errors.New("invalid base url")
	ErrNoResponse       = errors.New("transport returned no response")
)

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// ResponseError is returned by a Transport that rejects a call while still
// holding a structured response. The dispatcher turns it into a FAILURE
// envelope instead of an ERROR one.
type ResponseError struct {
	Response *RawResponse
}

// Error returns a message naming the response status.
func (e *ResponseError) Error() string {
	if e.Response == nil {
		return "response error"
	}
	return fmt.Sprintf("response error: %d %s", e.Response.StatusCode, http.StatusText(e.Response.StatusCode))
}

// StatusCode returns the HTTP status code of the carried response.
func (e *ResponseError) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

// Reject returns a ResponseError for the given status, header and body.
func Reject(status int, header http.Header, body []byte) error {
	return &ResponseError{Response: &RawResponse{StatusCode: status, Header: header, Body: body}}
}

// ErrorStatus extracts the HTTP status code from an error. Returns 0 if the
// error does not implement StatusCoder, which is the case for every
// transport-level failure.
func ErrorStatus(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return 0
}

// wrap joins a sentinel with its cause the way every call-time error is
// reported.
func wrap(sentinel, cause error) error {
	return fmt.Errorf("%w: %w", sentinel, cause)
}
