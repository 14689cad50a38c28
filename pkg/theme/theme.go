// Package theme holds the colour palettes used to paint the flavor wheel.
//
// Themes are grouped into families (standard, tea, luxury). Each family
// declares a default theme, used when a drink switch changes family.
package theme

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Family identifies a group of related themes.
type Family string

const (
	FamilyStandard Family = "standard"
	FamilyTea      Family = "tea"
	FamilyLuxury   Family = "luxury"
)

// Families lists the built-in families in lookup order.
var Families = []Family{FamilyStandard, FamilyTea, FamilyLuxury}

// Palette maps a taxonomy node id to a colour value ("#rrggbb").
type Palette map[string]string

// Theme is a named colour table.
type Theme struct {
	ID      string  `json:"-" yaml:"-"`
	Name    string  `json:"name" yaml:"name"`
	Palette Palette `json:"palette" yaml:"palette"`
	Family  Family  `json:"-" yaml:"-"`
}

// familyFile is the on-disk representation of one family.
type familyFile struct {
	Default string            `json:"default" yaml:"default"`
	Themes  map[string]*Theme `json:"themes" yaml:"themes"`
}

//go:embed themes/*.json
var builtinFS embed.FS

// Registry resolves theme ids across families.
type Registry struct {
	themes   map[string]*Theme
	defaults map[Family]string
	order    []Family
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		themes:   make(map[string]*Theme),
		defaults: make(map[Family]string),
	}
}

// Builtin returns a registry loaded with the embedded standard, tea and
// luxury families.
func Builtin() *Registry {
	r := NewRegistry()
	for _, fam := range Families {
		data, err := builtinFS.ReadFile("themes/" + string(fam) + ".json")
		if err != nil {
			panic(err) // embedded files are part of the build
		}
		if err := r.Add(fam, data, ".json"); err != nil {
			panic(err)
		}
	}
	return r
}

// Add parses a family table (JSON or YAML, by ext) and merges it into the
// registry. A theme id already registered under another family is an error.
func (r *Registry) Add(fam Family, data []byte, ext string) error {
	var ff familyFile
	var err error
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &ff)
	default:
		err = json.Unmarshal(data, &ff)
	}
	if err != nil {
		return fmt.Errorf("parsing %s themes: %w", fam, err)
	}
	if ff.Default == "" {
		return fmt.Errorf("%s themes: no default theme declared", fam)
	}
	if _, ok := ff.Themes[ff.Default]; !ok {
		return fmt.Errorf("%s themes: default %q not defined", fam, ff.Default)
	}

	for id, th := range ff.Themes {
		if prev, ok := r.themes[id]; ok && prev.Family != fam {
			return fmt.Errorf("theme %q defined in both %s and %s", id, prev.Family, fam)
		}
		th.ID = id
		th.Family = fam
		if th.Palette == nil {
			th.Palette = Palette{}
		}
		r.themes[id] = th
	}
	if _, seen := r.defaults[fam]; !seen {
		r.order = append(r.order, fam)
	}
	r.defaults[fam] = ff.Default
	return nil
}

// AddFile is Add for a file on disk; the family is named after the file.
func (r *Registry) AddFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	ext := filepath.Ext(path)
	fam := Family(strings.TrimSuffix(filepath.Base(path), ext))
	return r.Add(fam, data, ext)
}

// Has reports whether id names a registered theme.
func (r *Registry) Has(id string) bool {
	_, ok := r.themes[id]
	return ok
}

// Lookup returns the theme with the given id.
func (r *Registry) Lookup(id string) (*Theme, bool) {
	th, ok := r.themes[id]
	return th, ok
}

// FamilyOf returns the family of a registered theme, or FamilyStandard for
// unknown ids.
func (r *Registry) FamilyOf(id string) Family {
	if th, ok := r.themes[id]; ok {
		return th.Family
	}
	return FamilyStandard
}

// Default returns the default theme id of a family.
func (r *Registry) Default(fam Family) string {
	return r.defaults[fam]
}

// List returns the themes of a family sorted by id.
func (r *Registry) List(fam Family) []*Theme {
	var out []*Theme
	for _, th := range r.themes {
		if th.Family == fam {
			out = append(out, th)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FamilyNames returns the registered families in registration order.
func (r *Registry) FamilyNames() []Family {
	return append([]Family(nil), r.order...)
}

// PaletteFor returns the palette to paint with when id is active. Unknown ids
// resolve to the standard family default.
func (r *Registry) PaletteFor(id string) Palette {
	if th, ok := r.themes[id]; ok {
		return th.Palette
	}
	if def, ok := r.themes[r.defaults[FamilyStandard]]; ok {
		return def.Palette
	}
	return Palette{}
}

// Color returns the colour for id and whether the palette defines it.
func (p Palette) Color(id string) (string, bool) {
	c, ok := p[id]
	return c, ok && c != ""
}
