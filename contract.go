package rest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/bjaus/rest/internal/pathtmpl"
)

// Shape describes one path and verb of an API. Its entries are descriptive
// only; at runtime just the declared pathParams names are checked against
// the path template.
type Shape struct {
	Data          any `yaml:"data,omitempty" json:"data,omitempty"`
	Query         any `yaml:"query,omitempty" json:"query,omitempty"`
	PathParams    any `yaml:"pathParams,omitempty" json:"pathParams,omitempty"`
	Response      any `yaml:"response,omitempty" json:"response,omitempty"`
	ErrorResponse any `yaml:"errorResponse,omitempty" json:"errorResponse,omitempty"`
}

// Contract maps endpoint paths to the verbs they support.
//
//	/users/:id:
//	  GET:
//	    pathParams: {id: string}
//	    response: {id: string, name: string}
type Contract map[string]map[string]Shape

// Endpoint names one path and verb.
type Endpoint struct {
	Method string
	Path   string
}

// String returns "METHOD path".
func (e Endpoint) String() string { return e.Method + " " + e.Path }

var supportedMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// ParseContract reads a YAML contract and validates it. Verb keys are
// case-insensitive.
func ParseContract(r io.Reader) (Contract, error) {
	var raw map[string]map[string]Shape
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidContract, err)
	}

	c := make(Contract, len(raw))
	for path, methods := range raw {
		verbs := make(map[string]Shape, len(methods))
		for method, shape := range methods {
			verbs[strings.ToUpper(method)] = shape
		}
		c[path] = verbs
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadContractFile reads a YAML contract from path.
func LoadContractFile(path string) (Contract, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidContract, err)
	}
	defer func() { _ = f.Close() }()
	return ParseContract(f)
}

// Validate reports every problem in the contract: unsupported verbs,
// malformed path templates, and declared pathParams that disagree with the
// template placeholders.
func (c Contract) Validate() error {
	var errs []error

	for _, path := range c.paths() {
		methods := c[path]
		if path == "" {
			errs = append(errs, errors.New("empty path"))
			continue
		}
		if len(methods) == 0 {
			errs = append(errs, fmt.Errorf("%s: no verbs declared", path))
		}

		tmpl, err := pathtmpl.Compile(path)
		if err != nil {
			errs = append(errs, err)
		}

		for _, method := range sortedKeys(methods) {
			if !slices.Contains(supportedMethods, method) {
				errs = append(errs, fmt.Errorf("%s %s: unsupported verb", method, path))
				continue
			}
			if tmpl == nil {
				continue
			}
			declared, ok := declaredNames(methods[method].PathParams)
			if !ok {
				continue
			}
			if names := tmpl.Names(); !sameNames(names, declared) {
				errs = append(errs, fmt.Errorf("%s %s: pathParams %v do not match placeholders %v",
					method, path, declared, names))
			}
		}
	}

	if err := multierr.Combine(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidContract, err)
	}
	return nil
}

// Allows reports whether the contract declares method on path.
func (c Contract) Allows(method, path string) bool {
	methods, ok := c[path]
	if !ok {
		return false
	}
	_, ok = methods[strings.ToUpper(method)]
	return ok
}

// Endpoints lists every declared endpoint, sorted by path then verb.
func (c Contract) Endpoints() []Endpoint {
	var out []Endpoint
	for _, path := range c.paths() {
		for _, method := range sortedKeys(c[path]) {
			out = append(out, Endpoint{Method: method, Path: path})
		}
	}
	return out
}

// WriteYAML writes the contract as YAML to w.
func (c Contract) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]map[string]Shape(c)); err != nil {
		return err
	}
	return enc.Close()
}

func (c Contract) paths() []string {
	return sortedKeys(c)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// declaredNames extracts the keys of a pathParams shape. It reports false
// when the shape is absent or not a mapping.
func declaredNames(shape any) ([]string, bool) {
	switch m := shape.(type) {
	case map[string]any:
		return sortedKeys(m), true
	case map[string]string:
		return sortedKeys(m), true
	default:
		return nil, false
	}
}

func sameNames(a, b []string) bool {
	x := slices.Clone(a)
	y := slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}
