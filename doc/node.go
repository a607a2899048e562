// Package doc implements the structured text documents drum kits and
// instruments are persisted in: a tree of named nodes whose leaves carry text,
// with typed accessors and XML and YAML encodings.
package doc

import (
	"io"
	"log/slog"
)

type (
	// Node is an element of a document. Leaf nodes carry their value in Text;
	// nodes with children are containers and their Text is ignored. Children
	// with the same Name may repeat and their order is significant.
	Node struct {
		Name     string
		Text     string
		Children []*Node

		log *slog.Logger
	}
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// NewNode returns an empty node that logs its read anomalies to log. A nil
// log discards them.
func NewNode(name string, log *slog.Logger) *Node {
	return &Node{Name: name, log: log}
}

// Logger returns the logger diagnostics about this node are written to.
func (n *Node) Logger() *slog.Logger {
	if n == nil || n.log == nil {
		return discard
	}
	return n.log
}

// SetLogger sets the logger of n and all its descendants.
func (n *Node) SetLogger(log *slog.Logger) {
	if n == nil {
		return
	}
	n.log = log
	for _, c := range n.Children {
		c.SetLogger(log)
	}
}

// Child returns the first child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns the children with the given name, in document order.
func (n *Node) ChildrenNamed(name string) []*Node {
	if n == nil {
		return nil
	}
	var ret []*Node
	for _, c := range n.Children {
		if c.Name == name {
			ret = append(ret, c)
		}
	}
	return ret
}

// AppendChild adds c as the last child of n. c inherits the logger of n.
func (n *Node) AppendChild(c *Node) *Node {
	c.SetLogger(n.log)
	n.Children = append(n.Children, c)
	return c
}

// CreateChild appends a new empty child called name and returns it.
func (n *Node) CreateChild(name string) *Node {
	return n.AppendChild(&Node{Name: name})
}

func (n *Node) path() string {
	if n == nil {
		return "<nil>"
	}
	return n.Name
}
