// Package taxonomy provides the flavor taxonomy tree: categories,
// subcategories and descriptors with per-language labels.
package taxonomy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Layers of the taxonomy. The root is implicit and sits at layer 0.
const (
	LayerRoot        = 0
	LayerCategory    = 1
	LayerSubcategory = 2
	LayerDescriptor  = 3

	// MaxLayer is the deepest layer the chart draws a ring for.
	MaxLayer = LayerDescriptor
)

// RootID is the id given to the implicit root node.
const RootID = "__root__"

// DefaultLang is the language every label falls back to.
const DefaultLang = "en"

var (
	ErrEmptyID     = errors.New("node has empty id")
	ErrDuplicateID = errors.New("duplicate node id")
	ErrBadLayer    = errors.New("invalid node layer")
)

// Label maps a language code to display text.
type Label map[string]string

// Get returns the label for lang, falling back to English and then to
// fallback when neither is present.
func (l Label) Get(lang, fallback string) string {
	if s := l[lang]; s != "" {
		return s
	}
	if s := l[DefaultLang]; s != "" {
		return s
	}
	return fallback
}

// Clone returns a copy of the label map.
func (l Label) Clone() Label {
	if l == nil {
		return nil
	}
	out := make(Label, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// Node is one entry of the taxonomy.
type Node struct {
	ID       string  `json:"id" yaml:"id"`
	Layer    int     `json:"layer" yaml:"layer"`
	Label    Label   `json:"label" yaml:"label"`
	Index    *int    `json:"index,omitempty" yaml:"index,omitempty"` // ordering hint, layer 1 only
	Children []*Node `json:"children" yaml:"children"`
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Selectable reports whether a click may add the node to a selection.
// Category nodes (layer 1) and the root never are.
func (n *Node) Selectable() bool {
	return n.Layer >= LayerSubcategory
}

// OrderIndex returns the ordering hint, or 0 when the node has none.
func (n *Node) OrderIndex() int {
	if n.Index == nil {
		return 0
	}
	return *n.Index
}

// DisplayLabel returns the node label in lang with the usual fallbacks.
func (n *Node) DisplayLabel(lang string) string {
	return n.Label.Get(lang, n.ID)
}

// Walk visits n and every descendant depth-first in document order.
// Returning false from fn stops descent into that node's children.
func (n *Node) Walk(fn func(node, parent *Node) bool) {
	walk(n, nil, fn)
}

func walk(n, parent *Node, fn func(node, parent *Node) bool) {
	if !fn(n, parent) {
		return
	}
	for _, c := range n.Children {
		walk(c, n, fn)
	}
}

// Find returns the node with the given id, or nil.
func (n *Node) Find(id string) *Node {
	var found *Node
	n.Walk(func(node, _ *Node) bool {
		if found != nil {
			return false
		}
		if node.ID == id {
			found = node
			return false
		}
		return true
	})
	return found
}

// Entry is the data stored for one selected descriptor.
type Entry struct {
	ID       string `json:"id"`
	Layer    int    `json:"layer"`
	Label    Label  `json:"label"`
	IsCustom bool   `json:"isCustom,omitempty"`
	L1ID     string `json:"L1_id,omitempty"` // owning category, custom entries only
}

// EntryOf captures the selection data of a node.
func EntryOf(n *Node) Entry {
	return Entry{
		ID:    n.ID,
		Layer: n.Layer,
		Label: n.Label.Clone(),
	}
}

// DisplayLabel returns the entry label in lang with the usual fallbacks.
func (e Entry) DisplayLabel(lang string) string {
	return e.Label.Get(lang, e.ID)
}

// Document is a complete taxonomy file with its host-facing metadata.
type Document struct {
	DrinkType   string           `json:"drink_type" yaml:"drink_type"`
	Name        string           `json:"name,omitempty" yaml:"name,omitempty"`
	Separator   Label            `json:"separator,omitempty" yaml:"separator,omitempty"`
	Templates   map[string]Label `json:"templates,omitempty" yaml:"templates,omitempty"`
	Attribution Label            `json:"attribution,omitempty" yaml:"attribution,omitempty"`
	Children    []*Node          `json:"children" yaml:"children"`

	root *Node
}

// Template names understood by the host output generator.
const (
	TemplateFlavorList = "flavor_list"
	TemplateSocialNote = "social_note"
)

// Root returns the implicit layer-0 node whose children are the categories.
// The same node is returned on every call.
func (d *Document) Root() *Node {
	if d.root == nil {
		d.root = &Node{
			ID:    RootID,
			Layer: LayerRoot,
			Label: Label{DefaultLang: d.Name},
		}
	}
	d.root.Children = d.Children
	return d.root
}

// Find returns the node with the given id, or nil.
func (d *Document) Find(id string) *Node {
	for _, c := range d.Children {
		if n := c.Find(id); n != nil {
			return n
		}
	}
	return nil
}

// Categories returns the layer-1 nodes ordered by their index hint.
func (d *Document) Categories() []*Node {
	var cats []*Node
	for _, c := range d.Children {
		if c.Layer == LayerCategory {
			cats = append(cats, c)
		}
	}
	sort.SliceStable(cats, func(i, j int) bool {
		return cats[i].OrderIndex() < cats[j].OrderIndex()
	})
	return cats
}

// CategoryOf returns the id of the layer-1 category that owns id, or ""
// when id is not in the document.
func (d *Document) CategoryOf(id string) string {
	for _, c := range d.Children {
		if c.Find(id) != nil {
			return c.ID
		}
	}
	return ""
}

// SeparatorFor returns the list separator for lang.
func (d *Document) SeparatorFor(lang string) string {
	return d.Separator.Get(lang, ", ")
}

// TemplateFor returns the named output template in lang, or "".
func (d *Document) TemplateFor(name, lang string) string {
	return d.Templates[name].Get(lang, "")
}

// Validate checks that the document forms a well-shaped taxonomy.
func (d *Document) Validate() error {
	if len(d.Children) == 0 {
		return fmt.Errorf("taxonomy %q has no categories", d.DrinkType)
	}
	return ValidateTree(d.Root())
}

// ValidateTree checks id uniqueness and layer consistency below root.
func ValidateTree(root *Node) error {
	seen := map[string]bool{RootID: true}
	var err error
	root.Walk(func(n, parent *Node) bool {
		if err != nil {
			return false
		}
		if parent == nil {
			return true
		}
		if n.ID == "" {
			err = fmt.Errorf("%w (child of %q)", ErrEmptyID, parent.ID)
			return false
		}
		if seen[n.ID] {
			err = fmt.Errorf("%w: %q", ErrDuplicateID, n.ID)
			return false
		}
		seen[n.ID] = true

		if n.Layer < LayerCategory || n.Layer > MaxLayer {
			err = fmt.Errorf("%w: %q has layer %d", ErrBadLayer, n.ID, n.Layer)
			return false
		}
		if n.Layer != parent.Layer+1 {
			err = fmt.Errorf("%w: %q has layer %d under layer %d", ErrBadLayer, n.ID, n.Layer, parent.Layer)
			return false
		}
		return true
	})
	return err
}

// Stats summarises a document.
type Stats struct {
	Categories    int
	Subcategories int
	Descriptors   int
	Leaves        int
}

// Stats counts the nodes of each layer.
func (d *Document) Stats() Stats {
	var s Stats
	d.Root().Walk(func(n, parent *Node) bool {
		if parent == nil {
			return true
		}
		switch n.Layer {
		case LayerCategory:
			s.Categories++
		case LayerSubcategory:
			s.Subcategories++
		case LayerDescriptor:
			s.Descriptors++
		}
		if n.IsLeaf() {
			s.Leaves++
		}
		return true
	})
	return s
}

// String returns a short description of the document.
func (d *Document) String() string {
	var sb strings.Builder
	s := d.Stats()
	sb.WriteString(fmt.Sprintf("Taxonomy[%s]: %s\n", d.DrinkType, d.Name))
	sb.WriteString(fmt.Sprintf("  Categories: %d\n", s.Categories))
	sb.WriteString(fmt.Sprintf("  Subcategories: %d\n", s.Subcategories))
	sb.WriteString(fmt.Sprintf("  Descriptors: %d\n", s.Descriptors))
	sb.WriteString(fmt.Sprintf("  Leaves: %d\n", s.Leaves))
	return sb.String()
}
