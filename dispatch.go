package rest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/bjaus/rest/internal/pathtmpl"
)

// endpoint is a bound path and verb.
type endpoint struct {
	method  string
	pattern string

	tmpl    *pathtmpl.Template
	tmplErr error
}

func newEndpoint(method, pattern string) endpoint {
	ep := endpoint{method: method, pattern: pattern}
	ep.tmpl, ep.tmplErr = pathtmpl.Compile(pattern)
	return ep
}

// dispatch runs one call end to end. It never panics and never returns nil.
func dispatch[Data, Resp, ErrResp any](ctx context.Context, c *Client, ep endpoint, opts *Options[Data]) (resp *Response[Resp, ErrResp]) {
	defer func() {
		if rec := recover(); rec != nil {
			resp = transportError[Resp, ErrResp](nil, fmt.Errorf("%w: %v", ErrPanic, rec))
		}
	}()

	if opts == nil {
		opts = &Options[Data]{}
	}

	if c.contract != nil && !c.contract.Allows(ep.method, ep.pattern) {
		return transportError[Resp, ErrResp](nil, fmt.Errorf("%w: %s %s", ErrUnknownEndpoint, ep.method, ep.pattern))
	}

	req, err := buildRequest(c, ep, opts)
	if err != nil {
		return transportError[Resp, ErrResp](nil, err)
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	raw, err := c.chain.Do(ctx, req)
	return normalize[Resp, ErrResp](c, raw, err)
}

// buildRequest resolves the URL, query, headers and body of a call. The
// default headers are copied here, so later UpdateHeaders calls do not
// affect this request.
func buildRequest[Data any](c *Client, ep endpoint, opts *Options[Data]) (*Request, error) {
	if opts.Values != nil && !hasParamTags(reflect.TypeOf(opts.Values)) {
		return nil, fmt.Errorf("%w: values %T has no path, query or header fields", ErrEncodeParams, opts.Values)
	}
	vals, err := encodeValues(opts.Values)
	if err != nil {
		return nil, err
	}

	path := ep.pattern
	if opts.PathParams != nil || len(vals.path) > 0 {
		if ep.tmplErr != nil {
			return nil, wrap(ErrPathParams, ep.tmplErr)
		}
		params, err := encodeParams(opts.PathParams)
		if err != nil {
			return nil, err
		}
		for k, v := range vals.path {
			if _, ok := params[k]; !ok {
				params[k] = v
			}
		}
		path, err = ep.tmpl.Expand(params)
		if err != nil {
			return nil, wrap(ErrPathParams, err)
		}
	}

	target, rawQuery, _ := strings.Cut(c.resolve(path), "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, wrap(ErrEncodeParams, err)
	}
	if err := encodeQuery(opts.Query, query); err != nil {
		return nil, err
	}
	for k, vs := range vals.query {
		query[k] = append(query[k], vs...)
	}

	header := c.Headers()
	if header.Get("Accept") == "" {
		header.Set("Accept", c.codecs.accept)
	}

	var body []byte
	if ep.method != http.MethodGet && opts.Data != nil {
		if err := validateData(opts.Data, c.validator); err != nil {
			return nil, err
		}

		enc, ok := c.codecs.encoderFor(opts.ContentType)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported content type %q", ErrEncodeBody, opts.ContentType)
		}
		var buf bytes.Buffer
		if err := enc.Encode(&buf, opts.Data); err != nil {
			return nil, wrap(ErrEncodeBody, err)
		}
		body = buf.Bytes()
		header.Set("Content-Type", enc.ContentType())
	}

	for k, vs := range vals.header {
		header[k] = vs
	}
	for k, vs := range opts.Header {
		header[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}

	return &Request{
		Method:  ep.method,
		Pattern: ep.pattern,
		URL:     target,
		Query:   query,
		Header:  header,
		Body:    body,
	}, nil
}

// normalize turns a transport outcome into an envelope.
func normalize[Resp, ErrResp any](c *Client, raw *RawResponse, err error) *Response[Resp, ErrResp] {
	if err != nil {
		var re *ResponseError
		if !errors.As(err, &re) || re.Response == nil {
			return transportError[Resp, ErrResp](nil, err)
		}
		return normalizeFailure[Resp, ErrResp](c, re.Response)
	}
	if raw == nil {
		return transportError[Resp, ErrResp](nil, ErrNoResponse)
	}
	if !c.validateStatus(raw.StatusCode) {
		return normalizeFailure[Resp, ErrResp](c, raw)
	}
	if err := c.checkSize(raw); err != nil {
		return transportError[Resp, ErrResp](raw, err)
	}

	data, err := decodePayload[Resp](c.codecs, raw)
	if err != nil {
		return transportError[Resp, ErrResp](raw, wrap(ErrDecodeResponse, err))
	}
	return success[Resp, ErrResp](raw, data)
}

// normalizeFailure builds a FAILURE envelope. The status code is kept even
// when the error payload cannot be decoded; Err then says why.
func normalizeFailure[Resp, ErrResp any](c *Client, raw *RawResponse) *Response[Resp, ErrResp] {
	if err := c.checkSize(raw); err != nil {
		return transportError[Resp, ErrResp](raw, err)
	}

	data, err := decodePayload[ErrResp](c.codecs, raw)
	resp := failure[Resp, ErrResp](raw, data)
	if err != nil {
		resp.Err = wrap(ErrDecodeResponse, err)
	}
	return resp
}

func (c *Client) checkSize(raw *RawResponse) error {
	if c.maxResponseBytes > 0 && int64(len(raw.Body)) > c.maxResponseBytes {
		return fmt.Errorf("%w: limit %d bytes", ErrResponseTooLarge, c.maxResponseBytes)
	}
	return nil
}

// decodePayload decodes raw into a T. Void skips decoding, []byte and
// string receive the body as-is, and an empty body leaves the zero value.
func decodePayload[T any](codecs *codecRegistry, raw *RawResponse) (T, error) {
	var out T
	if len(raw.Body) == 0 {
		return out, nil
	}

	switch p := any(&out).(type) {
	case *Void:
		return out, nil
	case *[]byte:
		*p = bytes.Clone(raw.Body)
		return out, nil
	case *string:
		*p = string(raw.Body)
		return out, nil
	}

	dec := codecs.decoderFor(raw.Header.Get("Content-Type"))
	if err := dec.Decode(bytes.NewReader(raw.Body), &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
