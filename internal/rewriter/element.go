package rewriter

import (
	"bytes"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// attribute locates one attribute inside the raw bytes of a start tag.
type attribute struct {
	// name is lower-cased.
	name string

	// value is the entity-decoded value.
	value string

	// nameEnd is the offset just past the attribute name.
	nameEnd int

	// valStart and valEnd delimit the value including any quotes.
	// Both are -1 for an attribute written without a value.
	valStart int
	valEnd   int

	// quote is the quote character of the value, or 0 when unquoted.
	quote byte
}

// Element is a matched start tag handed to a Rule's handler.
// Its bytes are re-emitted unchanged unless SetAttribute is called.
type Element struct {
	tag   string
	raw   []byte
	attrs []attribute

	// edits maps an index in attrs to its new decoded value.
	edits map[int]string

	// added holds attributes set on the element that it did not carry.
	added []addedAttr
}

type addedAttr struct {
	name  string
	value string
}

// newElement scans the raw text of a start tag. raw must not be modified
// by the caller afterwards.
func newElement(raw []byte) *Element {
	el := &Element{raw: raw, edits: make(map[int]string)}
	n := len(raw)

	i := 0
	if i < n && raw[i] == '<' {
		i++
	}
	start := i
	for i < n && !isSpace(raw[i]) && raw[i] != '/' && raw[i] != '>' {
		i++
	}
	el.tag = strings.ToLower(string(raw[start:i]))

	for {
		for i < n && (isSpace(raw[i]) || raw[i] == '/') {
			i++
		}
		if i >= n || raw[i] == '>' {
			break
		}

		// The first character of a name is taken as is, even '='.
		nameStart := i
		i++
		for i < n && !isSpace(raw[i]) && raw[i] != '/' && raw[i] != '>' && raw[i] != '=' {
			i++
		}
		a := attribute{
			name:     strings.ToLower(string(raw[nameStart:i])),
			nameEnd:  i,
			valStart: -1,
			valEnd:   -1,
		}

		j := i
		for j < n && isSpace(raw[j]) {
			j++
		}
		if j < n && raw[j] == '=' {
			j++
			for j < n && isSpace(raw[j]) {
				j++
			}
			a.valStart = j
			if j < n && (raw[j] == '"' || raw[j] == '\'') {
				quote := raw[j]
				a.quote = quote
				j++
				vs := j
				for j < n && raw[j] != quote {
					j++
				}
				a.value = html.UnescapeString(string(raw[vs:j]))
				if j < n {
					j++
				}
			} else {
				vs := j
				for j < n && !isSpace(raw[j]) && raw[j] != '>' {
					j++
				}
				a.value = html.UnescapeString(string(raw[vs:j]))
			}
			a.valEnd = j
			i = j
		}

		el.attrs = append(el.attrs, a)
	}

	return el
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

// TagName returns the lower-cased element name.
func (e *Element) TagName() string {
	return e.tag
}

// Attribute returns the decoded value of the first attribute called name.
// Names are matched case-insensitively.
func (e *Element) Attribute(name string) (string, bool) {
	name = strings.ToLower(name)
	if i := e.index(name); i >= 0 {
		if v, ok := e.edits[i]; ok {
			return v, true
		}
		return e.attrs[i].value, true
	}
	for _, a := range e.added {
		if a.name == name {
			return a.value, true
		}
	}
	return "", false
}

// SetAttribute replaces the value of the first attribute called name, or
// appends the attribute when the element does not carry it.
// The value is HTML-escaped on output and quoted with the attribute's own
// quote character, or with double quotes.
func (e *Element) SetAttribute(name, value string) {
	name = strings.ToLower(name)
	if i := e.index(name); i >= 0 {
		e.edits[i] = value
		return
	}
	for k := range e.added {
		if e.added[k].name == name {
			e.added[k].value = value
			return
		}
	}
	e.added = append(e.added, addedAttr{name: name, value: value})
}

// Modified reports whether SetAttribute changed anything.
func (e *Element) Modified() bool {
	return len(e.edits) > 0 || len(e.added) > 0
}

// Bytes returns the element's start tag as it must appear in the output.
func (e *Element) Bytes() []byte {
	if !e.Modified() {
		return e.raw
	}

	type splice struct {
		start, end int
		text       string
	}
	splices := make([]splice, 0, len(e.edits)+1)

	for i, v := range e.edits {
		a := e.attrs[i]
		q := `"`
		if a.quote == '\'' {
			q = "'"
		}
		quoted := q + html.EscapeString(v) + q
		if a.valStart < 0 {
			splices = append(splices, splice{start: a.nameEnd, end: a.nameEnd, text: "=" + quoted})
		} else {
			splices = append(splices, splice{start: a.valStart, end: a.valEnd, text: quoted})
		}
	}

	if len(e.added) > 0 {
		var b strings.Builder
		for _, a := range e.added {
			b.WriteByte(' ')
			b.WriteString(a.name)
			b.WriteString(`="`)
			b.WriteString(html.EscapeString(a.value))
			b.WriteByte('"')
		}
		at := e.tagEnd()
		splices = append(splices, splice{start: at, end: at, text: b.String()})
	}

	sort.Slice(splices, func(i, j int) bool { return splices[i].start < splices[j].start })

	var out bytes.Buffer
	out.Grow(len(e.raw) + 64)
	pos := 0
	for _, s := range splices {
		out.Write(e.raw[pos:s.start])
		out.WriteString(s.text)
		pos = s.end
	}
	out.Write(e.raw[pos:])
	return out.Bytes()
}

// index returns the position of the first attribute called name, or -1.
func (e *Element) index(name string) int {
	for i, a := range e.attrs {
		if a.name == name {
			return i
		}
	}
	return -1
}

// tagEnd returns the offset where appended attributes go: before a closing
// "/>" or ">", or at the end of a truncated tag.
func (e *Element) tagEnd() int {
	end := len(e.raw)
	if end > 0 && e.raw[end-1] == '>' {
		end--
		if end > 0 && e.raw[end-1] == '/' {
			// An unquoted value may end in '/', e.g. href=css/.
			if len(e.attrs) == 0 || e.attrs[len(e.attrs)-1].valEnd != end {
				end--
			}
		}
	}
	return end
}
