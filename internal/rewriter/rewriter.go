package rewriter

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html"
)

// HandlerFunc is invoked for every start tag matching a Rule's selector.
// Returning an error aborts the rewrite.
type HandlerFunc func(ctx context.Context, el *Element) error

// Rule pairs a selector with the handler run for matching elements.
type Rule struct {
	Selector Selector
	Handler  HandlerFunc
}

// Rewriter streams a document through its rules.
type Rewriter struct {
	rules []Rule
}

// New creates a Rewriter. Rules are applied in order; an element matching
// several rules is handed to each of them and sees earlier edits.
func New(rules ...Rule) *Rewriter {
	return &Rewriter{rules: rules}
}

// Rewrite reads the document from r and writes the rewritten document to w
// in one forward pass. Bytes outside modified attribute values are copied
// verbatim.
func (rw *Rewriter) Rewrite(ctx context.Context, r io.Reader, w io.Writer) error {
	z := html.NewTokenizer(r)

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// A truncated trailing construct is still passed through.
			if raw := z.Raw(); len(raw) > 0 {
				if _, err := w.Write(raw); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
			}
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return fmt.Errorf("failed to tokenize document: %w", err)
			}
			return nil
		}

		out := z.Raw()
		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			rewritten, err := rw.element(ctx, out)
			if err != nil {
				return err
			}
			out = rewritten
		}

		if _, err := w.Write(out); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
}

// element runs the matching rules on one start tag and returns its output bytes.
func (rw *Rewriter) element(ctx context.Context, raw []byte) ([]byte, error) {
	var el *Element
	for _, rule := range rw.rules {
		if el == nil {
			// The tokenizer reuses its buffer on the next call.
			el = newElement(append([]byte(nil), raw...))
			if !rw.anyTag(el.TagName()) {
				return raw, nil
			}
		}
		if !rule.Selector.Matches(el) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := rule.Handler(ctx, el); err != nil {
			return nil, fmt.Errorf("%s: %w", rule.Selector, err)
		}
	}
	if el == nil {
		return raw, nil
	}
	return el.Bytes(), nil
}

// anyTag reports whether some rule targets the given element name.
func (rw *Rewriter) anyTag(tag string) bool {
	for _, rule := range rw.rules {
		if rule.Selector.Tag == tag {
			return true
		}
	}
	return false
}
