package doc

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

func decodeXML(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	var stack []*Node
	var texts []string
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, errors.New("document has no root element")
		}
		if err != nil {
			return nil, fmt.Errorf("could not parse xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
			texts = append(texts, "")
		case xml.CharData:
			if len(stack) > 0 {
				texts[len(texts)-1] += string(t)
			}
		case xml.EndElement:
			n := stack[len(stack)-1]
			if len(n.Children) == 0 {
				n.Text = texts[len(texts)-1]
			}
			stack = stack[:len(stack)-1]
			texts = texts[:len(texts)-1]
			if len(stack) == 0 {
				return n, nil
			}
		}
	}
}

func encodeXML(w io.Writer, root *Node) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("could not write xml header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", " ")
	if err := encodeXMLNode(enc, root); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("could not flush xml: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func encodeXMLNode(enc *xml.Encoder, n *Node) error {
	start := xml.StartElement{Name: xml.Name{Local: n.Name}}
	if err := enc.EncodeToken(start); err != nil {
		return fmt.Errorf("could not encode element %v: %w", n.Name, err)
	}
	if len(n.Children) == 0 {
		if n.Text != "" {
			if err := enc.EncodeToken(xml.CharData(n.Text)); err != nil {
				return fmt.Errorf("could not encode text of %v: %w", n.Name, err)
			}
		}
	} else {
		for _, c := range n.Children {
			if err := encodeXMLNode(enc, c); err != nil {
				return err
			}
		}
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return fmt.Errorf("could not encode element %v: %w", n.Name, err)
	}
	return nil
}
