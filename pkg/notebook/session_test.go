package notebook

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/flavor-wheel/pkg/locale"
	"github.com/ha1tch/flavor-wheel/pkg/taxonomy"
	"github.com/ha1tch/flavor-wheel/pkg/theme"
	"github.com/ha1tch/flavor-wheel/pkg/wheel"
)

const coffeeJSON = `{
  "drink_type": "coffee",
  "separator": {"en": ", ", "zh": "、"},
  "templates": {"social_note": {"en": "This {{drink}} from {{origin}} shows {{flavors}}."}},
  "attribution": {"en": "Source: test", "zh": "來源：測試"},
  "children": [
    {"id": "x", "layer": 1, "index": 2, "label": {"en": "Ex"}, "children": [
      {"id": "x1", "layer": 2, "label": {"en": "Ex One", "zh": "叉一"}, "children": []}
    ]},
    {"id": "y", "layer": 1, "index": 1, "label": {"en": "Why"}, "children": [
      {"id": "y1", "layer": 2, "label": {"en": "Why One"}, "children": [
        {"id": "y1a", "layer": 3, "label": {"en": "Why One A"}, "children": []}
      ]}
    ]}
  ]
}`

const luxuryJSON = `{
  "drink_type": "luxury",
  "templates": {"social_note": {"en": "{{drink}}: {{flavors}}"}},
  "children": [
    {"id": "z", "layer": 1, "index": 1, "label": {"en": "Zed"}, "children": [
      {"id": "z1", "layer": 2, "label": {"en": "Zed One"}, "children": []}
    ]}
  ]
}`

const standardThemes = `{"default": "plain", "themes": {
  "plain": {"name": "Plain", "palette": {"x": "#aa0000", "y": "#00aa00"}},
  "night": {"name": "Night", "palette": {"x": "#111111"}}
}}`

const luxuryThemes = `{"default": "gold", "themes": {
  "gold": {"name": "Gold", "palette": {"z": "#d4af37"}}
}}`

// fakeChart records what a session asks of it.
type fakeChart struct {
	calls []string
	subs  []func(wheel.SelectionEvent)
	fail  error
}

func (c *fakeChart) UpdateData(doc *taxonomy.Document) error {
	c.calls = append(c.calls, "data:"+doc.DrinkType)
	return c.fail
}
func (c *fakeChart) UpdateTheme(id string)      { c.calls = append(c.calls, "theme:"+id) }
func (c *fakeChart) UpdateLanguage(lang string) { c.calls = append(c.calls, "lang:"+lang) }
func (c *fakeChart) DeselectByID(id string)     { c.calls = append(c.calls, "deselect:"+id) }

func (c *fakeChart) Subscribe(fn func(wheel.SelectionEvent)) func() {
	c.subs = append(c.subs, fn)
	return func() { c.subs = nil }
}

func (c *fakeChart) emit(entries ...taxonomy.Entry) {
	for _, fn := range c.subs {
		fn(wheel.SelectionEvent{Selected: entries})
	}
}

func testDocs(t *testing.T) map[string]*taxonomy.Document {
	t.Helper()
	docs := map[string]*taxonomy.Document{}
	for name, src := range map[string]string{"coffee": coffeeJSON, "luxury": luxuryJSON} {
		d, err := taxonomy.Parse([]byte(src))
		require.NoError(t, err)
		require.NoError(t, d.Validate())
		docs[name] = d
	}
	return docs
}

func testThemes(t *testing.T) *theme.Registry {
	t.Helper()
	reg := theme.NewRegistry()
	require.NoError(t, reg.Add(theme.FamilyStandard, []byte(standardThemes), ".json"))
	require.NoError(t, reg.Add(theme.FamilyLuxury, []byte(luxuryThemes), ".json"))
	return reg
}

func newTestSession(t *testing.T) (*Session, *fakeChart) {
	t.Helper()
	chart := &fakeChart{}
	s, err := NewSession(chart, Options{
		Docs:   testDocs(t),
		Drink:  "coffee",
		Lang:   "en",
		Theme:  "plain",
		Themes: testThemes(t),
	})
	require.NoError(t, err)
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("%s%d", CustomPrefix, n)
	}
	return s, chart
}

func entry(doc *taxonomy.Document, id string) taxonomy.Entry {
	return taxonomy.EntryOf(doc.Find(id))
}

func ids(entries []taxonomy.Entry) []string {
	out := []string{}
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestNewSessionRejectsUnknownDrink(t *testing.T) {
	_, err := NewSession(&fakeChart{}, Options{Docs: testDocs(t), Drink: "juice"})
	require.ErrorIs(t, err, ErrUnknownDrink)
}

func TestHandleSelectionKeepsCustomEntries(t *testing.T) {
	s, chart := newTestSession(t)
	doc := s.Document()

	chart.emit(entry(doc, "x1"))
	_, err := s.AddCustom("  Smoky  ", "y")
	require.NoError(t, err)
	chart.emit(entry(doc, "x1"), entry(doc, "y1a"))

	assert.Equal(t, []string{"custom-1", "x1", "y1a"}, ids(s.Selected()))

	chart.emit()
	assert.Equal(t, []string{"custom-1"}, ids(s.Selected()))
}

func TestAddCustom(t *testing.T) {
	s, _ := newTestSession(t)

	e, err := s.AddCustom("Smoky", "x")
	require.NoError(t, err)
	assert.True(t, e.IsCustom)
	assert.Equal(t, "x", e.L1ID)
	assert.Equal(t, taxonomy.LayerSubcategory, e.Layer)
	for _, lang := range locale.Builtin().Languages() {
		assert.Equal(t, "Smoky", e.Label[lang], lang)
	}

	_, err = s.AddCustom("   ", "x")
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = s.AddCustom("Smoky", "x1")
	assert.ErrorIs(t, err, ErrUnknownCategory, "only categories can own custom flavors")
	_, err = s.AddCustom("Smoky", "nope")
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.Len(t, s.Selected(), 1)
}

func TestCustomIDsAreUnique(t *testing.T) {
	chart := &fakeChart{}
	s, err := NewSession(chart, Options{Docs: testDocs(t), Drink: "coffee", Lang: "en"})
	require.NoError(t, err)

	a, err := s.AddCustom("One", "x")
	require.NoError(t, err)
	b, err := s.AddCustom("One", "x")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(a.ID, CustomPrefix))
	assert.NotEqual(t, a.ID, b.ID)
}

func TestRemoveTag(t *testing.T) {
	s, chart := newTestSession(t)
	chart.emit(entry(s.Document(), "x1"))
	custom, err := s.AddCustom("Smoky", "y")
	require.NoError(t, err)

	require.True(t, s.RemoveTag(custom.ID))
	assert.NotContains(t, chart.calls, "deselect:"+custom.ID)

	require.True(t, s.RemoveTag("x1"))
	assert.Contains(t, chart.calls, "deselect:x1")
	assert.Empty(t, s.Selected())

	assert.False(t, s.RemoveTag("x1"))
}

func TestTags(t *testing.T) {
	s, chart := newTestSession(t)
	doc := s.Document()
	chart.emit(entry(doc, "x1"), entry(doc, "y1a"))
	_, err := s.AddCustom("Smoky", "x")
	require.NoError(t, err)

	tags := s.Tags()
	require.Len(t, tags, 3)
	// y has index 1, x index 2; ties keep pick order.
	assert.Equal(t, Tag{ID: "y1a", Text: "Why One A", Color: "#00aa00", Category: "y"}, tags[0])
	assert.Equal(t, Tag{ID: "x1", Text: "Ex One", Color: "#aa0000", Category: "x"}, tags[1])
	assert.Equal(t, Tag{ID: "custom-1", Text: "Smoky", Color: "#aa0000", Category: "x", Custom: true}, tags[2])

	require.NoError(t, s.SwitchTheme("night"))
	assert.Equal(t, wheel.FallbackColor, s.Tags()[0].Color, "y has no colour in night")
}

func TestTagsFlagOrphans(t *testing.T) {
	s, chart := newTestSession(t)
	coffee := s.Document()
	chart.emit(entry(coffee, "x1"))
	_, err := s.AddCustom("Smoky", "y")
	require.NoError(t, err)

	require.NoError(t, s.SwitchDrink("luxury"))
	lux := s.Document()
	chart.emit(entry(coffee, "x1"), entry(lux, "z1"))

	tags := s.Tags()
	require.Len(t, tags, 3)
	assert.Equal(t, "z1", tags[0].ID)
	assert.False(t, tags[0].Orphan)
	assert.Equal(t, "#d4af37", tags[0].Color)
	for _, tag := range tags[1:] {
		assert.True(t, tag.Orphan, tag.ID)
		assert.Equal(t, wheel.FallbackColor, tag.Color, tag.ID)
	}
	assert.Equal(t, []string{"custom-1", "x1"}, []string{tags[1].ID, tags[2].ID})
}

func TestOutputList(t *testing.T) {
	s, chart := newTestSession(t)
	assert.Equal(t, "", s.Output())

	doc := s.Document()
	chart.emit(entry(doc, "x1"), entry(doc, "y1"))
	assert.Equal(t, "Ex One, Why One", s.Output())

	s.SwitchLang("zh")
	assert.Equal(t, "叉一、Why One", s.Output())
}

func TestOutputNote(t *testing.T) {
	s, chart := newTestSession(t)
	require.NoError(t, s.SwitchOutputMode(ModeNote))
	doc := s.Document()
	chart.emit(entry(doc, "x1"), entry(doc, "y1"))

	want := "--- Tasting record ---\n" +
		"Drink: coffee\n" +
		"Origin: N/A\n" +
		"Flavors (en): Ex One, Why One\n" +
		"---\n" +
		"This coffee from  shows Ex One, Why One."
	assert.Equal(t, want, s.Output())

	s.SetOrigin("  Kenya ")
	out := s.Output()
	assert.Contains(t, out, "Origin: Kenya\n")
	assert.True(t, strings.HasSuffix(out, "This coffee from Kenya shows Ex One, Why One."))
	assert.NotContains(t, out, "{{")
}

func TestOutputNoteDrinkWord(t *testing.T) {
	s, _ := newTestSession(t)
	require.NoError(t, s.SwitchOutputMode(ModeNote))
	require.NoError(t, s.SwitchDrink("luxury"))
	assert.True(t, strings.HasSuffix(s.Output(), "drink: "))
}

func TestSwitchOutputMode(t *testing.T) {
	s, _ := newTestSession(t)
	assert.ErrorIs(t, s.SwitchOutputMode("poem"), ErrUnknownMode)
	assert.Equal(t, ModeList, s.Mode())
}

func TestSwitchDrinkMovesThemeFamily(t *testing.T) {
	s, chart := newTestSession(t)

	require.NoError(t, s.SwitchDrink("luxury"))
	assert.Equal(t, "gold", s.Theme())
	assert.Equal(t, []string{"theme:gold", "data:luxury"}, chart.calls)

	chart.calls = nil
	require.NoError(t, s.SwitchDrink("coffee"))
	assert.Equal(t, "plain", s.Theme())
	assert.Equal(t, []string{"theme:plain", "data:coffee"}, chart.calls)

	chart.calls = nil
	require.NoError(t, s.SwitchDrink("coffee"))
	assert.Empty(t, chart.calls, "same drink is a no-op")

	assert.ErrorIs(t, s.SwitchDrink("juice"), ErrUnknownDrink)
}

func TestSwitchDrinkFailureRestoresTheme(t *testing.T) {
	s, chart := newTestSession(t)
	chart.fail = fmt.Errorf("boom")
	require.Error(t, s.SwitchDrink("luxury"))
	assert.Equal(t, "coffee", s.Drink())
	assert.Equal(t, "plain", s.Theme())
}

func TestSwitchThemeAndLang(t *testing.T) {
	s, chart := newTestSession(t)
	assert.ErrorIs(t, s.SwitchTheme("neon"), ErrUnknownTheme)
	require.NoError(t, s.SwitchTheme("night"))
	require.NoError(t, s.SwitchTheme("night"))
	s.SwitchLang("jp")
	s.SwitchLang("jp")
	assert.Equal(t, []string{"theme:night", "lang:jp"}, chart.calls)
	assert.Equal(t, "jp", s.Lang())
}

func TestAttributionAndCategories(t *testing.T) {
	s, _ := newTestSession(t)
	assert.Equal(t, "Source: test", s.Attribution())
	s.SwitchLang("jp")
	assert.Equal(t, "Source: test", s.Attribution(), "falls back to English")
	s.SwitchLang("zh")
	assert.Equal(t, "來源：測試", s.Attribution())

	assert.Equal(t, []Option{{ID: "x", Label: "Ex"}, {ID: "y", Label: "Why"}}, s.CategoryOptions())

	require.NoError(t, s.SwitchDrink("luxury"))
	assert.Equal(t, "", s.Attribution())
}

func TestCloseUnsubscribes(t *testing.T) {
	s, chart := newTestSession(t)
	s.Close()
	s.Close()
	chart.emit(entry(s.Document(), "x1"))
	assert.Empty(t, s.Selected())
}

func TestSessionDrivesWheel(t *testing.T) {
	docs := testDocs(t)
	reg := testThemes(t)
	w, err := wheel.New(docs["coffee"], wheel.Options{
		Lang:   "en",
		Theme:  "plain",
		Themes: reg,
		Clock:  wheel.NewManualClock(time.Unix(0, 0)),
	})
	require.NoError(t, err)
	s, err := NewSession(w, Options{Docs: docs, Drink: "coffee", Lang: "en", Theme: "plain", Themes: reg})
	require.NoError(t, err)

	w.Click("x1")
	w.Click("y1")
	assert.Equal(t, []string{"x1", "y1"}, ids(s.Selected()))

	require.True(t, s.RemoveTag("x1"))
	assert.False(t, w.IsSelected("x1"))
	assert.Equal(t, []string{"y1"}, ids(s.Selected()))

	require.NoError(t, s.SwitchDrink("luxury"))
	assert.Equal(t, "gold", w.Theme())
	assert.Equal(t, []string{"y1"}, ids(s.Selected()), "selection survives a drink switch")
	assert.True(t, s.Tags()[0].Orphan)

	s.SwitchLang("zh")
	assert.Equal(t, "zh", w.Lang())
}
