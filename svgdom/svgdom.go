// Provides a minimal SVG element tree.
// Chart layouts build their output as Elements, and the export
// pipeline clones, rewrites and serializes them. Only what the
// chart surface needs is supported, not general XML.
package svgdom

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// Attr is one attribute on an element. Order is preserved.
type Attr struct {
	Name  string
	Value string
}

// Element is one node of the SVG tree.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []*Element
	Text     string // character data directly inside this element
}

// New returns an element with the given name.
func New(name string) *Element {
	return &Element{Name: name}
}

// Attr returns the value of the named attribute and whether it is set.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the named attribute or def when unset.
func (e *Element) AttrOr(name, def string) string {
	if v, ok := e.Attr(name); ok {
		return v
	}
	return def
}

// SetAttr sets or replaces the named attribute and returns e.
func (e *Element) SetAttr(name, value string) *Element {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
	return e
}

// RemoveAttr deletes the named attribute if present.
func (e *Element) RemoveAttr(name string) {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs = append(e.Attrs[:i], e.Attrs[i+1:]...)
			return
		}
	}
}

// Append adds children to e and returns e.
func (e *Element) Append(children ...*Element) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// RemoveChildren drops all children, keeping attributes.
func (e *Element) RemoveChildren() {
	e.Children = nil
	e.Text = ""
}

// Clone returns a deep copy, sharing nothing with the original.
func (e *Element) Clone() *Element {
	out := &Element{Name: e.Name, Text: e.Text}
	out.Attrs = append([]Attr(nil), e.Attrs...)
	for _, c := range e.Children {
		out.Children = append(out.Children, c.Clone())
	}
	return out
}

// Find returns the first descendant (depth-first, e excluded) with the
// given element name, or nil.
func (e *Element) Find(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
		if m := c.Find(name); m != nil {
			return m
		}
	}
	return nil
}

// FindAll returns every descendant with the given element name.
func (e *Element) FindAll(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
		out = append(out, c.FindAll(name)...)
	}
	return out
}

// Parse reads an SVG document and returns its root element.
func Parse(r io.Reader) (*Element, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel

	var root *Element
	var stack []*Element
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		switch se := t.(type) {
		case xml.StartElement:
			el := New(se.Name.Local)
			for _, a := range se.Attr {
				name := a.Name.Local
				// keep the xlink prefix, href resolution depends on it;
				// the prefix form shows up when the namespace is undeclared
				if a.Name.Space == "http://www.w3.org/1999/xlink" || a.Name.Space == "xlink" {
					name = "xlink:" + name
				} else if a.Name.Space == "xmlns" {
					name = "xmlns:" + name
				}
				el.SetAttr(name, a.Value)
			}
			if len(stack) == 0 {
				root = el
			} else {
				stack[len(stack)-1].Append(el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errors.New("unbalanced svg xml")
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				if s := string(se); strings.TrimSpace(s) != "" {
					stack[len(stack)-1].Text += s
				}
			}
		}
	}
	if root == nil {
		return nil, errors.New("invalid svg xml document")
	}
	return root, nil
}

// WriteTo serializes the element as XML.
func (e *Element) WriteTo(w io.Writer) error {
	var sb strings.Builder
	e.write(&sb)
	_, err := io.WriteString(w, sb.String())
	return err
}

// String returns the XML serialization of the element.
func (e *Element) String() string {
	var sb strings.Builder
	e.write(&sb)
	return sb.String()
}

func (e *Element) write(sb *strings.Builder) {
	sb.WriteByte('<')
	sb.WriteString(e.Name)
	for _, a := range e.Attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
		sb.WriteString(`="`)
		xml.EscapeText(sb, []byte(a.Value))
		sb.WriteByte('"')
	}
	if len(e.Children) == 0 && e.Text == "" {
		sb.WriteString("/>")
		return
	}
	sb.WriteByte('>')
	if e.Text != "" {
		xml.EscapeText(sb, []byte(e.Text))
	}
	for _, c := range e.Children {
		c.write(sb)
	}
	sb.WriteString("</")
	sb.WriteString(e.Name)
	sb.WriteByte('>')
}
