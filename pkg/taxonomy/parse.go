package taxonomy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse parses a taxonomy document from JSON.
func Parse(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing taxonomy json: %w", err)
	}
	normalize(&d)
	return &d, nil
}

// ParseYAML parses a taxonomy document from YAML.
func ParseYAML(data []byte) (*Document, error) {
	var d Document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing taxonomy yaml: %w", err)
	}
	normalize(&d)
	return &d, nil
}

// ParseFormat parses data according to a file extension (".json", ".yaml",
// ".yml"). Unknown extensions are treated as JSON.
func ParseFormat(data []byte, ext string) (*Document, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return Parse(data)
	}
}

// ParseFile reads and parses a taxonomy file, choosing the format by
// extension.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFormat(data, filepath.Ext(path))
}

// ToJSON converts a document to JSON.
func ToJSON(d *Document, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(d, "", "  ")
	}
	return json.Marshal(d)
}

// normalize fills unset layers from depth and replaces nil child slices and
// label maps so later code can range over them without checks.
func normalize(d *Document) {
	for _, c := range d.Children {
		c.Walk(func(n, parent *Node) bool {
			if n.Layer == 0 {
				n.Layer = LayerCategory
				if parent != nil {
					n.Layer = parent.Layer + 1
				}
			}
			if n.Children == nil {
				n.Children = []*Node{}
			}
			if n.Label == nil {
				n.Label = Label{}
			}
			return true
		})
	}
}
