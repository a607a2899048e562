package doc

import (
	"strconv"
	"strings"
)

// childText looks up the text of the child called name. ok is false when the
// child is absent, or present but empty; absentOK and emptyOK tell whether
// these cases are expected or should be reported.
func (n *Node) childText(name string, absentOK, emptyOK bool) (text string, ok bool) {
	if n == nil {
		n.Logger().Debug("reading a field of a nil node", "field", name)
		return "", false
	}
	c := n.Child(name)
	if c == nil {
		if !absentOK {
			n.Logger().Warn("field should exist", "node", n.path(), "field", name)
		}
		return "", false
	}
	if c.Text == "" {
		if !emptyOK {
			n.Logger().Warn("field should not be empty", "node", n.path(), "field", name)
		}
		return "", false
	}
	return c.Text, true
}

// ReadString returns the text of the child called name, or def when the child
// is absent or empty.
func (n *Node) ReadString(name, def string, absentOK, emptyOK bool) string {
	text, ok := n.childText(name, absentOK, emptyOK)
	if !ok {
		n.Logger().Debug("using default value", "field", name, "default", def)
		return def
	}
	return text
}

// ReadFloat parses the child called name as a float32. Absent, empty and
// unparsable fields yield def.
func (n *Node) ReadFloat(name string, def float32, absentOK, emptyOK bool) float32 {
	text, ok := n.childText(name, absentOK, emptyOK)
	if !ok {
		n.Logger().Debug("using default value", "field", name, "default", def)
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 32)
	if err != nil {
		n.Logger().Warn("field is not a number, using default value", "node", n.path(), "field", name, "text", text, "default", def)
		return def
	}
	return float32(v)
}

// ReadInt parses the child called name as a base 10 integer. Absent, empty
// and unparsable fields yield def.
func (n *Node) ReadInt(name string, def int, absentOK, emptyOK bool) int {
	text, ok := n.childText(name, absentOK, emptyOK)
	if !ok {
		n.Logger().Debug("using default value", "field", name, "default", def)
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		n.Logger().Warn("field is not an integer, using default value", "node", n.path(), "field", name, "text", text, "default", def)
		return def
	}
	return v
}

// ReadBool returns true if the child called name reads "true"; any other
// present text is false. Absent and empty fields yield def.
func (n *Node) ReadBool(name string, def bool, absentOK, emptyOK bool) bool {
	text, ok := n.childText(name, absentOK, emptyOK)
	if !ok {
		n.Logger().Debug("using default value", "field", name, "default", def)
		return def
	}
	return text == "true"
}

// WriteString appends a leaf child called name holding value.
func (n *Node) WriteString(name, value string) {
	n.AppendChild(&Node{Name: name, Text: value})
}

// WriteFloat appends value in the shortest form that parses back to the same
// float32.
func (n *Node) WriteFloat(name string, value float32) {
	n.WriteString(name, FormatFloat(value))
}

func (n *Node) WriteInt(name string, value int) {
	n.WriteString(name, strconv.Itoa(value))
}

func (n *Node) WriteBool(name string, value bool) {
	n.WriteString(name, strconv.FormatBool(value))
}

// FormatFloat is the canonical text form of a float field.
func FormatFloat(value float32) string {
	return strconv.FormatFloat(float64(value), 'g', -1, 32)
}
