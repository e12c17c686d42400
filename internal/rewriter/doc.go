// Package rewriter is a single-pass streaming HTML rewriter.
//
// The document is tokenized with golang.org/x/net/html and every token is
// copied to the output exactly as it appeared in the input. Start tags that
// match a Rule are handed to the rule's handler as an *Element; the handler
// may read and replace attribute values, and only the replaced value spans
// differ in the output. Nothing else about the element is re-serialized:
// attribute order, quoting, whitespace and letter case all survive.
//
// No tree is built. Handlers run inline on the caller's goroutine, in
// document order, and a handler error stops the pass.
//
// # Usage
//
//	rw := rewriter.New(rewriter.Rule{
//	    Selector: rewriter.MustParseSelector("script[src]"),
//	    Handler: func(ctx context.Context, el *rewriter.Element) error {
//	        src, _ := el.Attribute("src")
//	        el.SetAttribute("src", strings.ToUpper(src))
//	        return nil
//	    },
//	})
//	err := rw.Rewrite(ctx, input, output)
package rewriter
