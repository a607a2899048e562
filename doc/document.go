package doc

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type (
	// Format is the text encoding of a document on disk.
	Format int

	// Document is a tree read from or to be written to a file.
	Document struct {
		Root *Node
		Log  *slog.Logger
	}
)

const (
	XML Format = iota
	YAML
)

func (f Format) String() string {
	switch f {
	case XML:
		return "xml"
	case YAML:
		return "yaml"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// FormatOf picks the format from the extension of path: .yml and .yaml are
// YAML, everything else is XML.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return YAML
	}
	return XML
}

// NewDocument returns a document with an empty root node called rootName.
func NewDocument(rootName string, log *slog.Logger) *Document {
	return &Document{Root: NewNode(rootName, log), Log: log}
}

// Decode parses a tree from r. The nodes of the tree log to log.
func Decode(r io.Reader, f Format, log *slog.Logger) (*Node, error) {
	var root *Node
	var err error
	switch f {
	case YAML:
		root, err = decodeYAML(r)
	default:
		root, err = decodeXML(r)
	}
	if err != nil {
		return nil, err
	}
	root.SetLogger(log)
	return root, nil
}

// Encode writes the tree rooted at root to w.
func Encode(w io.Writer, root *Node, f Format) error {
	if f == YAML {
		return encodeYAML(w, root)
	}
	return encodeXML(w, root)
}

// ReadFile reads the document at path. When schemaPath is not empty the
// document is validated against it: a schema that cannot be read or parsed is
// logged and the document is read unvalidated, but a document that does not
// match a successfully loaded schema is rejected with an error wrapping
// ErrSchemaValidation.
func ReadFile(path, schemaPath string, log *slog.Logger) (*Document, error) {
	if log == nil {
		log = discard
	}
	var schema *Schema
	if schemaPath != "" {
		b, err := os.ReadFile(schemaPath)
		if err != nil {
			log.Error("could not open schema, reading without validation", "schema", schemaPath, "err", err)
		} else if schema, err = ParseSchema(b); err != nil {
			log.Warn("schema is not valid, reading without validation", "schema", schemaPath, "err", err)
		}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read document: %w", err)
	}
	root, err := Decode(bytes.NewReader(b), FormatOf(path), log)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	if schema != nil {
		if err := schema.Validate(root); err != nil {
			return nil, fmt.Errorf("%v: %w", path, err)
		}
	}
	return &Document{Root: root, Log: log}, nil
}

// WriteFile writes the document to path in the format implied by its
// extension.
func (d *Document) WriteFile(path string) error {
	if d.Root == nil {
		return fmt.Errorf("could not write %v: document has no root", path)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, d.Root, FormatOf(path)); err != nil {
		return fmt.Errorf("could not encode %v: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("could not write document: %w", err)
	}
	return nil
}
