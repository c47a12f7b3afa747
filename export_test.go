package rest

import (
	"net/http"
	"net/url"
)

// Test-only exports for internal functions.
var (
	HasParamTags  = hasParamTags
	TagOptions    = tagOptions
	TagContains   = tagContains
	IsAbsoluteURL = isAbsoluteURL
	BuildAccept   = buildAccept
)

// EncodedValues exposes encodeValues with plain return values.
func EncodedValues(v any) (map[string]string, url.Values, http.Header, error) {
	out, err := encodeValues(v)
	return out.path, out.query, out.header, err
}

// Resolve exposes the client's URL joining.
func (c *Client) Resolve(path string) string { return c.resolve(path) }

// DecoderFor exposes the content type of the decoder picked for a response.
func (c *Client) DecoderFor(contentType string) string {
	return c.codecs.decoderFor(contentType).ContentType()
}
