package doc

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// In YAML, a container node is a mapping from child names to child values.
// Children sharing a name are grouped into a sequence under that name, placed
// where the first of them appeared.

func decodeYAML(r io.Reader) (*Node, error) {
	var document yaml.Node
	if err := yaml.NewDecoder(r).Decode(&document); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("document has no root element")
		}
		return nil, fmt.Errorf("could not parse yaml: %w", err)
	}
	top := &document
	if top.Kind == yaml.DocumentNode && len(top.Content) > 0 {
		top = top.Content[0]
	}
	if top.Kind != yaml.MappingNode || len(top.Content) != 2 {
		return nil, errors.New("yaml document should be a mapping with exactly one root element")
	}
	nodes, err := decodeYAMLValue(top.Content[0].Value, top.Content[1])
	if err != nil {
		return nil, err
	}
	if len(nodes) != 1 {
		return nil, fmt.Errorf("yaml document should have exactly one root element, got %d", len(nodes))
	}
	return nodes[0], nil
}

func decodeYAMLValue(name string, v *yaml.Node) ([]*Node, error) {
	switch v.Kind {
	case yaml.ScalarNode:
		return []*Node{{Name: name, Text: v.Value}}, nil
	case yaml.AliasNode:
		return decodeYAMLValue(name, v.Alias)
	case yaml.SequenceNode:
		var ret []*Node
		for _, item := range v.Content {
			if item.Kind == yaml.SequenceNode {
				return nil, fmt.Errorf("line %d: nested sequences are not allowed for %v", item.Line, name)
			}
			nodes, err := decodeYAMLValue(name, item)
			if err != nil {
				return nil, err
			}
			ret = append(ret, nodes...)
		}
		return ret, nil
	case yaml.MappingNode:
		n := &Node{Name: name}
		for i := 0; i+1 < len(v.Content); i += 2 {
			key := v.Content[i]
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: keys of %v should be scalars", key.Line, name)
			}
			children, err := decodeYAMLValue(key.Value, v.Content[i+1])
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, children...)
		}
		return []*Node{n}, nil
	}
	return nil, fmt.Errorf("line %d: unsupported yaml node for %v", v.Line, name)
}

func encodeYAML(w io.Writer, root *Node) error {
	top := &yaml.Node{Kind: yaml.MappingNode}
	top.Content = append(top.Content, yamlScalar(root.Name), encodeYAMLValue(root))
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{top}}); err != nil {
		return fmt.Errorf("could not encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("could not encode yaml: %w", err)
	}
	return nil
}

func encodeYAMLValue(n *Node) *yaml.Node {
	if len(n.Children) == 0 {
		return yamlScalar(n.Text)
	}
	ret := &yaml.Node{Kind: yaml.MappingNode}
	groups := map[string][]*Node{}
	var order []string
	for _, c := range n.Children {
		if _, ok := groups[c.Name]; !ok {
			order = append(order, c.Name)
		}
		groups[c.Name] = append(groups[c.Name], c)
	}
	for _, name := range order {
		group := groups[name]
		var value *yaml.Node
		if len(group) == 1 {
			value = encodeYAMLValue(group[0])
		} else {
			value = &yaml.Node{Kind: yaml.SequenceNode}
			for _, c := range group {
				value.Content = append(value.Content, encodeYAMLValue(c))
			}
		}
		ret.Content = append(ret.Content, yamlScalar(name), value)
	}
	return ret
}

func yamlScalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: value}
}
