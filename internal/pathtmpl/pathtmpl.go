// Package pathtmpl compiles URL path patterns with named placeholders and
// expands them against parameter values.
//
// Two placeholder spellings are accepted and may be mixed:
//
//	/users/:id
//	/users/{id}
//	/files/{path...}
//
// Names start with a letter or underscore, so host ports such as ":8080"
// stay literal. A trailing "..." marks a wildcard whose value may contain
// slashes; each of its segments is escaped separately.
package pathtmpl

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Sentinel errors returned by Compile and Expand.
var (
	ErrPattern = errors.New("invalid path pattern")
	ErrMissing = errors.New("missing path parameter")
)

type token struct {
	literal  string
	name     string
	wildcard bool
}

// Template is a compiled path pattern. It is immutable and safe for
// concurrent use.
type Template struct {
	pattern string
	tokens  []token
	names   []string
}

// Compile parses pattern into a Template.
func Compile(pattern string) (*Template, error) {
	t := &Template{pattern: pattern}
	seen := make(map[string]bool)

	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.tokens = append(t.tokens, token{literal: lit.String()})
			lit.Reset()
		}
	}
	addParam := func(name string, wildcard bool) error {
		if name == "" {
			return fmt.Errorf("%w: %q: empty parameter name", ErrPattern, pattern)
		}
		if seen[name] {
			return fmt.Errorf("%w: %q: duplicate parameter %q", ErrPattern, pattern, name)
		}
		seen[name] = true
		flush()
		t.tokens = append(t.tokens, token{name: name, wildcard: wildcard})
		t.names = append(t.names, name)
		return nil
	}

	for i := 0; i < len(pattern); {
		switch c := pattern[i]; {
		case c == '{':
			end := strings.IndexByte(pattern[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("%w: %q: unterminated '{'", ErrPattern, pattern)
			}
			name := pattern[i+1 : i+end]
			wildcard := strings.HasSuffix(name, "...")
			name = strings.TrimSuffix(name, "...")
			if !validName(name) {
				return nil, fmt.Errorf("%w: %q: bad parameter name %q", ErrPattern, pattern, name)
			}
			if err := addParam(name, wildcard); err != nil {
				return nil, err
			}
			i += end + 1
		case c == ':' && i+1 < len(pattern) && isNameStart(pattern[i+1]):
			j := i + 1
			for j < len(pattern) && isNameByte(pattern[j]) {
				j++
			}
			if err := addParam(pattern[i+1:j], false); err != nil {
				return nil, err
			}
			i = j
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()

	return t, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string) *Template {
	t, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return t
}

// Pattern returns the source pattern.
func (t *Template) Pattern() string { return t.pattern }

// Names returns the placeholder names in the order they appear.
func (t *Template) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Expand substitutes params into the template. Every placeholder must have
// a non-empty value; unused params are ignored.
func (t *Template) Expand(params map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(t.pattern))

	for _, tok := range t.tokens {
		if tok.name == "" {
			b.WriteString(tok.literal)
			continue
		}
		val, ok := params[tok.name]
		if !ok || val == "" {
			return "", fmt.Errorf("%w: %q", ErrMissing, tok.name)
		}
		if !tok.wildcard {
			b.WriteString(url.PathEscape(val))
			continue
		}
		for i, seg := range strings.Split(val, "/") {
			if i > 0 {
				b.WriteByte('/')
			}
			b.WriteString(url.PathEscape(seg))
		}
	}

	return b.String(), nil
}

func validName(name string) bool {
	if name == "" || !isNameStart(name[0]) {
		return false
	}
	for i := range len(name) {
		if !isNameByte(name[i]) {
			return false
		}
	}
	return true
}

func isNameStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isNameByte(c byte) bool {
	return isNameStart(c) || ('0' <= c && c <= '9')
}
