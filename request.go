package rest

import (
	"encoding"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"time"
)

// Params maps path placeholder names to values. Values are strings or numbers;
// anything encodable as a single query value is accepted.
type Params map[string]any

// Query maps query parameter names to primitive values or slices of them.
// Slices produce repeated keys.
type Query map[string]any

// Options configures a single call. Every field is optional; a nil *Options
// behaves like the zero value.
type Options[Data any] struct {
	// PathParams are substituted into the endpoint path. When neither
	// PathParams nor tagged path fields are present the path is used verbatim.
	PathParams Params

	// Query is encoded into the query string.
	Query Query

	// Data is encoded as the request body. GET never sends a body.
	Data *Data

	// Values is a struct whose fields tagged `path`, `query` or `header` are
	// merged into the call. A `default` tag supplies zero-valued fields and
	// the ",omitempty" option skips them.
	Values any

	// Header overrides the client's default headers for this call only.
	Header http.Header

	// Timeout bounds this call. Zero means no per-call timeout.
	Timeout time.Duration

	// ContentType selects the body encoder. Empty means JSON.
	ContentType string
}

// encodedParams is the result of flattening a tagged Values struct.
type encodedParams struct {
	path   map[string]string
	query  url.Values
	header http.Header
}

// encodeValues walks the tagged fields of v. A nil v yields empty results.
func encodeValues(v any) (encodedParams, error) {
	out := encodedParams{
		path:   map[string]string{},
		query:  url.Values{},
		header: http.Header{},
	}
	if v == nil {
		return out, nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return out, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return out, fmt.Errorf("%w: values must be a struct, got %s", ErrEncodeParams, rv.Type())
	}

	t := rv.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		field := rv.Field(i)

		for _, tag := range paramTags {
			raw := f.Tag.Get(tag)
			if raw == "" {
				continue
			}
			name, opts := tagOptions(raw)

			vals, err := fieldValues(field)
			if err != nil {
				return out, fmt.Errorf("%w: %s %q: %w", ErrEncodeParams, tag, name, err)
			}
			if len(vals) == 0 || (len(vals) == 1 && field.IsZero()) {
				if tagContains(opts, "omitempty") {
					continue
				}
				if def := f.Tag.Get("default"); def != "" {
					vals = []string{def}
				}
			}
			if len(vals) == 0 || (len(vals) == 1 && vals[0] == "") {
				continue
			}

			switch tag {
			case "path":
				if len(vals) > 1 {
					return out, fmt.Errorf("%w: path %q: multiple values", ErrEncodeParams, name)
				}
				out.path[name] = vals[0]
			case "query":
				for _, s := range vals {
					out.query.Add(name, s)
				}
			case "header":
				for _, s := range vals {
					out.header.Add(name, s)
				}
			}
		}
	}

	return out, nil
}

// encodeParams formats a Params map for path expansion.
func encodeParams(params Params) (map[string]string, error) {
	out := make(map[string]string, len(params))
	for name, v := range params {
		vals, err := anyValues(v)
		if err != nil {
			return nil, fmt.Errorf("%w: path %q: %w", ErrEncodeParams, name, err)
		}
		if len(vals) != 1 {
			return nil, fmt.Errorf("%w: path %q: expected a single value", ErrEncodeParams, name)
		}
		out[name] = vals[0]
	}
	return out, nil
}

// encodeQuery formats a Query map into url.Values.
func encodeQuery(q Query, into url.Values) error {
	for name, v := range q {
		vals, err := anyValues(v)
		if err != nil {
			return fmt.Errorf("%w: query %q: %w", ErrEncodeParams, name, err)
		}
		for _, s := range vals {
			into.Add(name, s)
		}
	}
	return nil
}

func anyValues(v any) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	return fieldValues(reflect.ValueOf(v))
}

// fieldValues formats a value as zero or more strings. Slices and arrays
// yield one string per element; nil pointers yield none.
func fieldValues(v reflect.Value) ([]string, error) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}

	if (v.Kind() == reflect.Slice || v.Kind() == reflect.Array) && !isTextMarshaler(v) {
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
			return []string{string(v.Bytes())}, nil
		}
		out := make([]string, 0, v.Len())
		for i := range v.Len() {
			s, err := formatValue(v.Index(i))
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	}

	s, err := formatValue(v)
	if err != nil {
		return nil, err
	}
	return []string{s}, nil
}

func isTextMarshaler(v reflect.Value) bool {
	return v.Type().Implements(reflect.TypeFor[encoding.TextMarshaler]())
}

// formatValue renders a scalar, supporting the same kinds the server side
// binds from strings.
func formatValue(v reflect.Value) (string, error) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return "", nil
		}
		v = v.Elem()
	}

	switch v.Type() {
	case reflect.TypeFor[time.Duration]():
		return time.Duration(v.Int()).String(), nil
	case reflect.TypeFor[time.Time]():
		return v.Interface().(time.Time).Format(time.RFC3339Nano), nil //nolint:forcetypeassert // type checked above
	}

	if v.CanInterface() {
		if tm, ok := v.Interface().(encoding.TextMarshaler); ok {
			b, err := tm.MarshalText()
			if err != nil {
				return "", err
			}
			return string(b), nil
		}
	}

	//exhaustive:ignore
	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	default:
		return "", errors.New("unsupported type: " + v.Type().String())
	}
}
