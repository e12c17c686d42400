package rewriter

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSelector is returned by ParseSelector for malformed input.
var ErrInvalidSelector = errors.New("invalid selector")

// Condition is one bracketed attribute test of a Selector.
type Condition struct {
	// Name is the lower-cased attribute name.
	Name string

	// Value is compared with ASCII case folding when HasValue is set.
	Value string

	// HasValue distinguishes [name=value] from [name].
	HasValue bool
}

// Selector matches start tags by name and attributes, in the style of the
// CSS compound selector tag[attr][attr=value].
type Selector struct {
	// Tag is the lower-cased element name.
	Tag string

	// Conditions must all hold for the selector to match.
	Conditions []Condition
}

// ParseSelector parses selectors such as "script[src]" or
// "link[rel=stylesheet][href]". Values may be quoted.
func ParseSelector(s string) (Selector, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '[')
	tag := s
	if open >= 0 {
		tag = s[:open]
	}
	if tag == "" || strings.ContainsAny(tag, " \t\n]=\"'") {
		return Selector{}, fmt.Errorf("%w: %q: missing or malformed tag name", ErrInvalidSelector, s)
	}

	sel := Selector{Tag: strings.ToLower(tag)}
	rest := ""
	if open >= 0 {
		rest = s[open:]
	}

	for rest != "" {
		if rest[0] != '[' {
			return Selector{}, fmt.Errorf("%w: %q: unexpected %q", ErrInvalidSelector, s, rest)
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return Selector{}, fmt.Errorf("%w: %q: unterminated condition", ErrInvalidSelector, s)
		}

		cond, err := parseCondition(rest[1:end])
		if err != nil {
			return Selector{}, fmt.Errorf("%w: %q: %w", ErrInvalidSelector, s, err)
		}
		sel.Conditions = append(sel.Conditions, cond)
		rest = rest[end+1:]
	}

	return sel, nil
}

// MustParseSelector is like ParseSelector but panics on error.
// It is intended for selectors fixed at compile time.
func MustParseSelector(s string) Selector {
	sel, err := ParseSelector(s)
	if err != nil {
		panic(err)
	}
	return sel
}

func parseCondition(body string) (Condition, error) {
	name, value, hasValue := strings.Cut(body, "=")
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, " \t\n\"'") {
		return Condition{}, errors.New("missing or malformed attribute name")
	}

	cond := Condition{Name: strings.ToLower(name), HasValue: hasValue}
	if hasValue {
		value = strings.TrimSpace(value)
		if n := len(value); n >= 2 && (value[0] == '"' || value[0] == '\'') && value[n-1] == value[0] {
			value = value[1 : n-1]
		}
		cond.Value = value
	}
	return cond, nil
}

// Matches reports whether el satisfies the selector.
func (s Selector) Matches(el *Element) bool {
	if el.TagName() != s.Tag {
		return false
	}
	for _, c := range s.Conditions {
		v, ok := el.Attribute(c.Name)
		if !ok {
			return false
		}
		if c.HasValue && !strings.EqualFold(v, c.Value) {
			return false
		}
	}
	return true
}

// String renders the selector in its parseable form.
func (s Selector) String() string {
	var b strings.Builder
	b.WriteString(s.Tag)
	for _, c := range s.Conditions {
		b.WriteByte('[')
		b.WriteString(c.Name)
		if c.HasValue {
			b.WriteByte('=')
			b.WriteString(c.Value)
		}
		b.WriteByte(']')
	}
	return b.String()
}
