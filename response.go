package rest

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Status tags a Response envelope.
type Status string

// Envelope tags. Every call produces exactly one of them.
const (
	StatusSuccess Status = "SUCCESS" // transport returned an accepted response
	StatusFailure Status = "FAILURE" // transport returned or rejected with a non-accepted response
	StatusError   Status = "ERROR"   // no usable response: network, timeout, cancellation, encoding
)

// Response is the normalized result of a call. Status decides which of
// Data, ErrorData and Err is meaningful.
type Response[Resp, ErrResp any] struct {
	Status     Status
	StatusCode int

	// Data is the success payload, set when Status is StatusSuccess.
	Data Resp

	// ErrorData is the failure payload, set when Status is StatusFailure.
	ErrorData ErrResp

	// Err describes why no usable response exists, set when Status is
	// StatusError.
	Err error

	Header http.Header
	Raw    []byte
}

// OK reports whether the call succeeded.
func (r *Response[Resp, ErrResp]) OK() bool { return r.Status == StatusSuccess }

// Error returns nil for a success envelope, Err for a transport error, and
// an error carrying the status code for a failure. A failure whose payload
// could not be decoded also carries that decode error.
func (r *Response[Resp, ErrResp]) Error() error {
	switch r.Status {
	case StatusSuccess:
		return nil
	case StatusFailure:
		re := &ResponseError{Response: &RawResponse{StatusCode: r.StatusCode, Header: r.Header, Body: r.Raw}}
		if r.Err != nil {
			return errors.Join(re, r.Err)
		}
		return re
	default:
		return r.Err
	}
}

type payloadEnvelope struct {
	Status     Status `json:"status"`
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
}

type errorEnvelope struct {
	Status     Status `json:"status"`
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error,omitempty"`
}

// MarshalJSON renders the envelope as {"status", "statusCode", "data"}, with
// the payload matching the tag. "data" is always present for SUCCESS and
// FAILURE, null when the payload is. Transport errors carry "error" instead.
func (r Response[Resp, ErrResp]) MarshalJSON() ([]byte, error) {
	switch r.Status {
	case StatusSuccess:
		return json.Marshal(payloadEnvelope{Status: r.Status, StatusCode: r.StatusCode, Data: r.Data})
	case StatusFailure:
		return json.Marshal(payloadEnvelope{Status: r.Status, StatusCode: r.StatusCode, Data: r.ErrorData})
	}

	out := errorEnvelope{Status: r.Status, StatusCode: r.StatusCode}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

func success[Resp, ErrResp any](raw *RawResponse, data Resp) *Response[Resp, ErrResp] {
	return &Response[Resp, ErrResp]{
		Status:     StatusSuccess,
		StatusCode: raw.StatusCode,
		Data:       data,
		Header:     raw.Header,
		Raw:        raw.Body,
	}
}

func failure[Resp, ErrResp any](raw *RawResponse, data ErrResp) *Response[Resp, ErrResp] {
	return &Response[Resp, ErrResp]{
		Status:     StatusFailure,
		StatusCode: raw.StatusCode,
		ErrorData:  data,
		Header:     raw.Header,
		Raw:        raw.Body,
	}
}

// transportError builds an ERROR envelope. raw is nil unless a response
// arrived but could not be used.
func transportError[Resp, ErrResp any](raw *RawResponse, err error) *Response[Resp, ErrResp] {
	resp := &Response[Resp, ErrResp]{Status: StatusError, Err: err}
	if raw != nil {
		resp.StatusCode = raw.StatusCode
		resp.Header = raw.Header
		resp.Raw = raw.Body
	}
	return resp
}
