// Package datasets embeds the built-in flavor taxonomies.
package datasets

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/ha1tch/flavor-wheel/pkg/taxonomy"
)

//go:embed data/*.json
var dataFS embed.FS

// Built-in dataset names.
const (
	Coffee = "coffee"
	Tea    = "tea"
	Luxury = "luxury"
)

// Raw returns the embedded JSON for a built-in dataset.
func Raw(name string) ([]byte, error) {
	data, err := dataFS.ReadFile("data/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("no built-in dataset %q", name)
	}
	return data, nil
}

// Builtin parses and validates a built-in dataset.
func Builtin(name string) (*taxonomy.Document, error) {
	data, err := Raw(name)
	if err != nil {
		return nil, err
	}
	doc, err := taxonomy.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", name, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", name, err)
	}
	return doc, nil
}

// Names lists the built-in datasets.
func Names() []string {
	entries, err := dataFS.ReadDir("data")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}
