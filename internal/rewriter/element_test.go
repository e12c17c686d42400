package rewriter

import "testing"

func TestElementAttributes(t *testing.T) {
	t.Parallel()

	el := newElement([]byte("<Script\n  SRC='/app.js?v=1&amp;x=2' defer data-x=plain type = \"module\">"))

	if got := el.TagName(); got != "script" {
		t.Errorf("TagName() = %q, want script", got)
	}

	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{name: "src", want: "/app.js?v=1&x=2", wantOK: true},
		{name: "SRC", want: "/app.js?v=1&x=2", wantOK: true},
		{name: "defer", want: "", wantOK: true},
		{name: "data-x", want: "plain", wantOK: true},
		{name: "type", want: "module", wantOK: true},
		{name: "async", want: "", wantOK: false},
	}
	for _, tt := range tests {
		got, ok := el.Attribute(tt.name)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Attribute(%q) = (%q, %v), want (%q, %v)", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestElementFirstAttributeWins(t *testing.T) {
	t.Parallel()

	el := newElement([]byte(`<script src="a.js" src="b.js">`))
	if got, _ := el.Attribute("src"); got != "a.js" {
		t.Errorf("Attribute(src) = %q, want a.js", got)
	}

	el.SetAttribute("src", "c.js")
	if got := string(el.Bytes()); got != `<script src="c.js" src="b.js">` {
		t.Errorf("Bytes() = %s", got)
	}
}

func TestElementSetAttribute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		raw   string
		attr  string
		value string
		want  string
	}{
		{
			name: "double quoted", raw: `<script src="/app.js" defer>`,
			attr: "src", value: "app_1.js", want: `<script src="app_1.js" defer>`,
		},
		{
			name: "single quoted keeps its quotes", raw: `<script src='/app.js'>`,
			attr: "src", value: "app_1.js", want: `<script src='app_1.js'>`,
		},
		{
			name: "unquoted", raw: `<link rel=stylesheet href=a.css>`,
			attr: "href", value: "a_1.css", want: `<link rel=stylesheet href="a_1.css">`,
		},
		{
			name: "escaped on output", raw: `<script src="x">`,
			attr: "src", value: `a"b&c.js`, want: `<script src="a&#34;b&amp;c.js">`,
		},
		{
			name: "valueless attribute", raw: `<script defer src=x.js>`,
			attr: "DEFER", value: "defer", want: `<script defer="defer" src=x.js>`,
		},
		{
			name: "appended", raw: `<script src="x.js">`,
			attr: "async", value: "", want: `<script src="x.js" async="">`,
		},
		{
			name: "appended before self-closing slash", raw: `<link href="a.css"/>`,
			attr: "rel", value: "stylesheet", want: `<link href="a.css" rel="stylesheet"/>`,
		},
		{
			name: "appended after unquoted slash value", raw: `<link href=css/>`,
			attr: "rel", value: "x", want: `<link href=css/ rel="x">`,
		},
		{
			name: "whitespace around equals preserved", raw: "<link href = 'a.css' >",
			attr: "href", value: "b.css", want: "<link href = 'b.css' >",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			el := newElement([]byte(tt.raw))
			el.SetAttribute(tt.attr, tt.value)
			if got := string(el.Bytes()); got != tt.want {
				t.Errorf("Bytes() = %s, want %s", got, tt.want)
			}
			if got, ok := el.Attribute(tt.attr); !ok || got != tt.value {
				t.Errorf("Attribute(%q) after set = (%q, %v)", tt.attr, got, ok)
			}
		})
	}
}

func TestElementUnmodifiedBytes(t *testing.T) {
	t.Parallel()

	raw := []byte(`<LINK  Rel=StyleSheet   href='a.css' />`)
	el := newElement(raw)
	if el.Modified() {
		t.Fatal("Modified() = true before any edit")
	}
	if got := string(el.Bytes()); got != string(raw) {
		t.Errorf("Bytes() = %s, want %s", got, raw)
	}
}
