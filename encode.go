package rest

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"mime"
	"strconv"
	"strings"
)

// Encoder encodes request bodies to a wire format.
type Encoder interface {
	ContentType() string
	Encode(w io.Writer, v any) error
}

// Decoder decodes response payloads from a wire format.
type Decoder interface {
	ContentType() string
	Decode(r io.Reader, v any) error
}

// jsonCodec implements both Encoder and Decoder for JSON.
type jsonCodec struct{}

func (jsonCodec) ContentType() string { return "application/json" }

func (jsonCodec) Encode(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

func (jsonCodec) Decode(r io.Reader, v any) error {
	err := json.NewDecoder(r).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// xmlCodec implements both Encoder and Decoder for XML.
type xmlCodec struct{}

func (xmlCodec) ContentType() string { return "application/xml" }

func (xmlCodec) Encode(w io.Writer, v any) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(v)
}

func (xmlCodec) Decode(r io.Reader, v any) error {
	err := xml.NewDecoder(r).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// codecRegistry holds all registered encoders and decoders.
// Index 0 is always JSON (the default).
type codecRegistry struct {
	encoders []Encoder
	decoders []Decoder
	accept   string
}

// newCodecRegistry builds a registry with JSON first, XML second, then any
// user-registered encoders and decoders.
func newCodecRegistry(userEncoders []Encoder, userDecoders []Decoder) *codecRegistry {
	cr := &codecRegistry{
		encoders: make([]Encoder, 0, 2+len(userEncoders)),
		decoders: make([]Decoder, 0, 2+len(userDecoders)),
	}
	cr.encoders = append(cr.encoders, jsonCodec{}, xmlCodec{})
	cr.encoders = append(cr.encoders, userEncoders...)
	cr.decoders = append(cr.decoders, jsonCodec{}, xmlCodec{})
	cr.decoders = append(cr.decoders, userDecoders...)
	cr.accept = buildAccept(cr.decoders)
	return cr
}

// encoderFor returns the encoder registered for contentType.
// Returns (JSON encoder, true) for an empty content type.
func (cr *codecRegistry) encoderFor(contentType string) (Encoder, bool) {
	if contentType == "" {
		return cr.encoders[0], true
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, false
	}

	for _, enc := range cr.encoders {
		if enc.ContentType() == mediaType {
			return enc, true
		}
	}
	return nil, false
}

// decoderFor returns the decoder matching a response Content-Type. Structured
// syntax suffixes ("+json", "+xml") match their base codec. Missing or
// unrecognized content types fall back to JSON, since many servers label
// JSON payloads loosely.
func (cr *codecRegistry) decoderFor(contentType string) Decoder {
	if contentType == "" {
		return cr.decoders[0]
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return cr.decoders[0]
	}

	for _, dec := range cr.decoders {
		if dec.ContentType() == mediaType {
			return dec
		}
	}

	if _, suffix, ok := strings.Cut(mediaType, "+"); ok {
		for _, dec := range cr.decoders {
			if strings.HasSuffix(dec.ContentType(), "/"+suffix) {
				return dec
			}
		}
	}

	return cr.decoders[0]
}

// buildAccept renders an Accept header listing every decoder, preferring
// registration order.
func buildAccept(decoders []Decoder) string {
	parts := make([]string, 0, len(decoders)+1)
	q := 1.0
	for i, dec := range decoders {
		if i == 0 {
			parts = append(parts, dec.ContentType())
			continue
		}
		q -= 0.1
		if q < 0.1 {
			q = 0.1
		}
		parts = append(parts, dec.ContentType()+";q="+strconv.FormatFloat(q, 'f', 1, 64))
	}
	parts = append(parts, "*/*;q=0.1")
	return strings.Join(parts, ", ")
}
