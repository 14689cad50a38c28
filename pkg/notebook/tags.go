package notebook

import (
	"sort"

	"github.com/ha1tch/flavor-wheel/pkg/locale"
	"github.com/ha1tch/flavor-wheel/pkg/taxonomy"
	"github.com/ha1tch/flavor-wheel/pkg/wheel"
)

// Tag is one picked flavor as shown in the selection panel.
type Tag struct {
	ID       string
	Text     string
	Color    string // category colour under the active theme
	Category string // owning layer-1 id, "" when unknown
	Custom   bool
	Orphan   bool // not part of the current drink's taxonomy
}

// Tags lists the session entries ordered by their category's index. Orphans
// come last, in the order they were picked.
func (s *Session) Tags() []Tag {
	doc := s.Document()
	pal := s.themes.PaletteFor(s.theme)

	type ranked struct {
		tag   Tag
		index int
	}
	var rows []ranked
	for _, e := range s.entries {
		t := Tag{ID: e.ID, Text: e.DisplayLabel(s.lang), Custom: e.IsCustom}
		if e.IsCustom {
			t.Category = e.L1ID
			cat := doc.Find(e.L1ID)
			t.Orphan = cat == nil || cat.Layer != taxonomy.LayerCategory
		} else {
			t.Category = doc.CategoryOf(e.ID)
			t.Orphan = t.Category == ""
		}

		t.Color = wheel.FallbackColor
		if c, ok := pal.Color(t.Category); ok && !t.Orphan {
			t.Color = c
		}

		r := ranked{tag: t}
		if !t.Orphan {
			r.index = doc.Find(t.Category).OrderIndex()
		}
		rows = append(rows, r)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.tag.Orphan != b.tag.Orphan {
			return !a.tag.Orphan
		}
		return a.index < b.index
	})
	out := make([]Tag, len(rows))
	for i, r := range rows {
		out[i] = r.tag
	}
	return out
}

// EmptyText is shown in place of the tag list when nothing is picked.
func (s *Session) EmptyText() string {
	return s.strs.Get(s.lang, locale.KeyNoneSelected)
}
