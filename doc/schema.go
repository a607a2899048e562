package doc

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type (
	// Schema describes the documents a reader is willing to accept: the name
	// of the root node and, per node name, which children must exist and how
	// typed leaf children have to parse.
	Schema struct {
		Root     string                 `yaml:"root"`
		Elements map[string]ElementRule `yaml:"elements"`
	}

	ElementRule struct {
		Required []string             `yaml:"required,omitempty"`
		Fields   map[string]FieldType `yaml:"fields,omitempty"`
	}

	// FieldType is one of "string", "int", "float" or "bool".
	FieldType string
)

const (
	StringField FieldType = "string"
	IntField    FieldType = "int"
	FloatField  FieldType = "float"
	BoolField   FieldType = "bool"
)

// ErrSchemaValidation is wrapped by every error returned by Schema.Validate.
var ErrSchemaValidation = errors.New("document does not match schema")

// ParseSchema decodes a schema from YAML. Unknown keys and unknown field types
// make the schema invalid.
func ParseSchema(b []byte) (*Schema, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	var s Schema
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	if s.Root == "" {
		return nil, errors.New("invalid schema: root is not set")
	}
	for name, rule := range s.Elements {
		for field, typ := range rule.Fields {
			switch typ {
			case StringField, IntField, FloatField, BoolField:
			default:
				return nil, fmt.Errorf("invalid schema: element %v: field %v has unknown type %q", name, field, typ)
			}
		}
	}
	return &s, nil
}

// LoadSchema reads and parses the schema file at path.
func LoadSchema(path string) (*Schema, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read schema: %w", err)
	}
	s, err := ParseSchema(b)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	return s, nil
}

// Validate checks the tree rooted at root against the schema.
func (s *Schema) Validate(root *Node) error {
	if root == nil {
		return fmt.Errorf("%w: empty document", ErrSchemaValidation)
	}
	if root.Name != s.Root {
		return fmt.Errorf("%w: root is %v, expected %v", ErrSchemaValidation, root.Name, s.Root)
	}
	return s.validateNode(root, root.Name)
}

func (s *Schema) validateNode(n *Node, path string) error {
	if rule, ok := s.Elements[n.Name]; ok {
		for _, name := range rule.Required {
			if n.Child(name) == nil {
				return fmt.Errorf("%w: %v: missing %v", ErrSchemaValidation, path, name)
			}
		}
		for _, c := range n.Children {
			typ, ok := rule.Fields[c.Name]
			if !ok || c.Text == "" {
				continue
			}
			if len(c.Children) > 0 {
				return fmt.Errorf("%w: %v/%v: expected a %v value, got an element", ErrSchemaValidation, path, c.Name, typ)
			}
			if !typ.accepts(c.Text) {
				return fmt.Errorf("%w: %v/%v: %q is not a valid %v", ErrSchemaValidation, path, c.Name, c.Text, typ)
			}
		}
	}
	for _, c := range n.Children {
		if err := s.validateNode(c, path+"/"+c.Name); err != nil {
			return err
		}
	}
	return nil
}

func (t FieldType) accepts(text string) bool {
	text = strings.TrimSpace(text)
	switch t {
	case IntField:
		_, err := strconv.Atoi(text)
		return err == nil
	case FloatField:
		_, err := strconv.ParseFloat(text, 32)
		return err == nil
	case BoolField:
		return text == "true" || text == "false"
	}
	return true
}
