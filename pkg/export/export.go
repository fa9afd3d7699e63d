// Package export writes a compiled scenario as a versioned document that
// holds the scenario metadata, a structural summary and the flat graph.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ritzau/deflex-graph/pkg/graph"
	"github.com/ritzau/deflex-graph/pkg/logging"
	"github.com/ritzau/deflex-graph/pkg/model"
	"github.com/ritzau/deflex-graph/pkg/scenario"
)

// SchemaVersion is the version of the document layout
const SchemaVersion = 1

var (
	// ErrNotCompiled is returned when exporting a scenario that has no
	// compiled registry.
	ErrNotCompiled = errors.New("scenario not compiled")

	// ErrUnsupportedSchema is returned when reading a document of another
	// schema version.
	ErrUnsupportedSchema = errors.New("unsupported schema version")
)

// Format is a document encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension. Anything that
// is not .yaml or .yml is written as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Document is the exported form of a compiled scenario
type Document struct {
	SchemaVersion int               `json:"schemaVersion" yaml:"schema_version"`
	Metadata      scenario.Metadata `json:"metadata" yaml:"metadata"`
	Summary       graph.Summary     `json:"summary" yaml:"summary"`
	Graph         *model.Graph      `json:"graph" yaml:"graph"`
}

// NewDocument creates the document of a compiled scenario
func NewDocument(s *scenario.Scenario) (*Document, error) {
	nodes := s.Nodes()
	if nodes == nil {
		return nil, fmt.Errorf("export %q: %w", s.Name, ErrNotCompiled)
	}
	return &Document{
		SchemaVersion: SchemaVersion,
		Metadata:      s.Metadata(),
		Summary:       graph.Analyze(nodes),
		Graph:         nodes.Graph(),
	}, nil
}

// Encode writes the document to w
func (d *Document) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// Decode reads a document from r and checks its schema version
func Decode(r io.Reader, format Format) (*Document, error) {
	var d Document
	var err error
	switch format {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&d)
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&d)
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if d.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("schema version %d: %w", d.SchemaVersion, ErrUnsupportedSchema)
	}
	return &d, nil
}

// WriteFile writes the document to path in the format its extension names
func WriteFile(path string, d *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := d.Encode(f, FormatFromPath(path)); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	logging.Info("exported scenario", "path", path, "nodes", len(d.Graph.Nodes), "edges", len(d.Graph.Edges))
	return nil
}

// ReadFile reads a document written by WriteFile
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := Decode(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return d, nil
}
