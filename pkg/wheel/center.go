package wheel

import (
	"fmt"

	"github.com/ha1tch/flavor-wheel/pkg/locale"
	"github.com/ha1tch/flavor-wheel/pkg/taxonomy"
)

// CenterKind says why the centre display shows what it shows.
type CenterKind string

const (
	CenterPlaceholder   CenterKind = "center"
	CenterHover         CenterKind = "hover"
	CenterHoverCategory CenterKind = "hover-category"
	CenterSelected      CenterKind = "selected"
	CenterUnselected    CenterKind = "unselected"
)

// CenterDisplay is the text shown in the hole of the wheel: a bracketed
// category line above a flavor line.
type CenterDisplay struct {
	Category string
	Flavor   string
	Kind     CenterKind
	FontSize float64
}

// Highlighted reports whether hosts should emphasise the flavor line.
func (c CenterDisplay) Highlighted() bool {
	return c.Kind == CenterSelected || c.Kind == CenterHoverCategory || c.Kind == CenterHover
}

// centerSubject is what the centre display describes.
type centerSubject struct {
	id     string
	layer  int
	label  taxonomy.Label
	parent taxonomy.Label // nil when unknown
}

func subjectOf(n *LayoutNode) centerSubject {
	s := centerSubject{id: n.Data.ID, layer: n.Data.Layer, label: n.Data.Label}
	if n.Parent != nil && n.Parent.Depth > 0 {
		s.parent = n.Parent.Data.Label
	}
	return s
}

func describe(s centerSubject, kind CenterKind, lang string, strs locale.Table, width float64) CenterDisplay {
	d := CenterDisplay{Kind: kind, FontSize: CenterFontSize(width, kind == CenterPlaceholder)}
	label := s.label.Get(lang, s.id)

	var parent string
	switch {
	case s.layer > taxonomy.LayerCategory && s.parent != nil:
		parent = s.parent.Get(lang, "")
	case s.layer == taxonomy.LayerCategory:
		parent = strs.Get(lang, locale.KeyCategoryLabel)
	}
	bracket := func(v string) string {
		if v == "" {
			return ""
		}
		return "[" + v + "]"
	}

	switch kind {
	case CenterHoverCategory:
		d.Category = bracket(label)
		d.Flavor = strs.Get(lang, locale.KeySelectFiner)
	case CenterSelected:
		d.Category = bracket(parent)
		d.Flavor = fmt.Sprintf("%s (%s)", label, strs.Get(lang, locale.KeyFlavorAdded))
	default:
		d.Category = bracket(parent)
		d.Flavor = label
	}
	return d
}

func placeholder(lang string, strs locale.Table, width float64) CenterDisplay {
	return CenterDisplay{
		Flavor:   strs.Get(lang, locale.KeyChartRoot),
		Kind:     CenterPlaceholder,
		FontSize: CenterFontSize(width, true),
	}
}
