package wheel

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ha1tch/flavor-wheel/pkg/taxonomy"
	"github.com/ha1tch/flavor-wheel/pkg/theme"
)

const scenarioJSON = `{"drink_type":"test","children":[
  {"id":"a","layer":1,"index":1,"label":{"en":"A","zh":"甲"},"children":[
    {"id":"a1","layer":2,"label":{"en":"A1","zh":"甲一"},"children":[]}
  ]},
  {"id":"b","layer":1,"index":2,"label":{"en":"B"},"children":[
    {"id":"b1","layer":2,"label":{"en":"B1"},"children":[]}
  ]}
]}`

const testThemes = `{
  "default": "plain",
  "themes": {
    "plain": {"name": "Plain", "palette": {"a": "#111111", "b": "#ff0000"}},
    "alt":   {"name": "Alt",   "palette": {"a": "#00ff00", "b1": "#0000ff"}}
  }
}`

type harness struct {
	w      *Wheel
	clock  *ManualClock
	events []SelectionEvent
}

func newHarness(t *testing.T, src string) *harness {
	t.Helper()
	reg := theme.NewRegistry()
	if err := reg.Add(theme.FamilyStandard, []byte(testThemes), ".json"); err != nil {
		t.Fatal(err)
	}
	h := &harness{clock: NewManualClock(time.Unix(1700000000, 0))}
	w, err := New(parseDoc(t, src), Options{
		Width:  700,
		Lang:   "en",
		Theme:  "plain",
		Themes: reg,
		Clock:  h.clock,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.Subscribe(func(ev SelectionEvent) { h.events = append(h.events, ev) })
	h.w = w
	return h
}

// settle runs every pending transition to completion.
func (h *harness) settle() {
	h.clock.Advance(DefaultDuration)
}

func selectedIDs(entries []taxonomy.Entry) []string {
	ids := []string{}
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}

func arcByID(f Frame, id string) (ArcFrame, bool) {
	for _, a := range f.Arcs {
		if a.ID == id {
			return a, true
		}
	}
	return ArcFrame{}, false
}

func labelByID(f Frame, id string) (LabelFrame, bool) {
	for _, l := range f.Labels {
		if l.ID == id {
			return l, true
		}
	}
	return LabelFrame{}, false
}

func TestNewValidates(t *testing.T) {
	if _, err := New(nil, Options{}); err == nil {
		t.Error("nil document should fail")
	}
	if _, err := New(parseDoc(t, scenarioJSON), Options{Width: -1}); err == nil {
		t.Error("negative width should fail")
	}
	bad := &taxonomy.Document{Children: []*taxonomy.Node{{ID: "x", Layer: 2}}}
	if _, err := New(bad, Options{}); err == nil {
		t.Error("invalid taxonomy should fail")
	}
	w, err := New(parseDoc(t, scenarioJSON), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if w.Lang() != DefaultLang || w.Theme() != DefaultTheme || w.Geometry().Width != DefaultWidth {
		t.Errorf("defaults not applied: %s %s %v", w.Lang(), w.Theme(), w.Geometry().Width)
	}
}

func TestClickTogglesSelection(t *testing.T) {
	h := newHarness(t, scenarioJSON)

	h.w.Click("a1")
	h.w.Click("b1")
	if len(h.events) != 2 {
		t.Fatalf("got %d events, want 2", len(h.events))
	}
	last := h.events[1]
	if diff := cmp.Diff([]string{"a1", "b1"}, selectedIDs(last.Selected)); diff != "" {
		t.Errorf("selection (-want +got):\n%s", diff)
	}
	if last.Lang != "en" {
		t.Errorf("event lang %q", last.Lang)
	}
	if last.Selected[0].Label["en"] != "A1" || last.Selected[0].Layer != 2 {
		t.Errorf("entry should carry the node data: %+v", last.Selected[0])
	}

	h.w.Click("a1")
	if len(h.events) != 3 {
		t.Fatalf("got %d events, want 3", len(h.events))
	}
	if diff := cmp.Diff([]string{"b1"}, selectedIDs(h.events[2].Selected)); diff != "" {
		t.Errorf("selection (-want +got):\n%s", diff)
	}
	if h.w.IsSelected("a1") || !h.w.IsSelected("b1") {
		t.Error("IsSelected out of step with the events")
	}
}

func TestClickCategoryNeverSelects(t *testing.T) {
	h := newHarness(t, scenarioJSON)
	before := h.w.Center()
	for i := 0; i < 3; i++ {
		h.w.Click("a")
	}
	if len(h.w.Selected()) != 0 {
		t.Errorf("category was selected: %v", selectedIDs(h.w.Selected()))
	}
	if len(h.events) != 0 {
		t.Errorf("category clicks notified %d times", len(h.events))
	}
	if h.w.Center() != before {
		t.Errorf("centre display changed on category click")
	}
}

func TestClickRootAndUnknownAreNoops(t *testing.T) {
	h := newHarness(t, scenarioJSON)
	h.w.Click(taxonomy.RootID)
	h.w.Click("nope")
	h.w.Hover(taxonomy.RootID)
	h.w.Hover("nope")
	if len(h.events) != 0 || len(h.w.Selected()) != 0 || h.w.Hovered() != "" {
		t.Error("root and unknown ids must be ignored")
	}
}

func TestSelectionSnapshotIsACopy(t *testing.T) {
	h := newHarness(t, scenarioJSON)
	h.w.Click("a1")
	h.events[0].Selected[0].Label["en"] = "mutated"
	if got := h.w.Selected()[0].Label["en"]; got != "A1" {
		t.Errorf("subscriber mutated the selection: %q", got)
	}
}

func TestDeselectRoundTrip(t *testing.T) {
	h := newHarness(t, scenarioJSON)
	h.settle()
	before := h.w.Frame()

	h.w.Click("a1")
	if a, _ := arcByID(h.w.Frame(), "a1"); !a.Selected {
		t.Fatal("a1 should be marked selected")
	}
	h.w.DeselectByID("a1")

	after := h.w.Frame()
	if diff := cmp.Diff(before.Arcs, after.Arcs); diff != "" {
		t.Errorf("arcs differ after round trip (-before +after):\n%s", diff)
	}
	if h.w.IsSelected("a1") {
		t.Error("a1 still selected")
	}
	if len(h.events) != 1 {
		t.Errorf("DeselectByID must not notify, got %d events", len(h.events))
	}
	h.w.DeselectByID("a1") // absent: no-op
}

func TestClearSelection(t *testing.T) {
	h := newHarness(t, scenarioJSON)
	h.w.Click("a1")
	h.w.Click("b1")
	h.w.ClearSelection()

	if len(h.w.Selected()) != 0 {
		t.Error("selection not cleared")
	}
	if len(h.events) != 2 {
		t.Errorf("ClearSelection must not notify, got %d events", len(h.events))
	}
	c := h.w.Center()
	if c.Kind != CenterPlaceholder || c.Flavor != "Flavor Wheel" || c.FontSize != 16 {
		t.Errorf("centre not reset: %+v", c)
	}
	for _, a := range h.w.Frame().Arcs {
		if a.Selected {
			t.Errorf("%s still marked selected", a.ID)
		}
	}
}

func TestHoverHighlightsChain(t *testing.T) {
	h := newHarness(t, scenarioJSON)
	h.settle()

	h.w.Hover("a")
	f := h.w.Frame()
	want := map[string]float64{"a": 1, "a1": 1, "b": DimOpacity, "b1": DimOpacity}
	for id, op := range want {
		a, _ := arcByID(f, id)
		if a.Opacity != op {
			t.Errorf("hover a: %s opacity %v, want %v", id, a.Opacity, op)
		}
	}
	c := h.w.Center()
	if c.Kind != CenterHoverCategory || c.Category != "[A]" || c.Flavor != "Pick a finer flavor" {
		t.Errorf("category hover centre: %+v", c)
	}

	h.w.Hover("b1")
	f = h.w.Frame()
	for id, op := range map[string]float64{"a": DimOpacity, "a1": DimOpacity, "b": 1, "b1": 1} {
		a, _ := arcByID(f, id)
		if a.Opacity != op {
			t.Errorf("hover b1: %s opacity %v, want %v", id, a.Opacity, op)
		}
	}
	c = h.w.Center()
	if c.Kind != CenterHover || c.Category != "[B]" || c.Flavor != "B1" || c.FontSize != CenterFontSize(700, false) {
		t.Errorf("descriptor hover centre: %+v", c)
	}

	h.w.Leave()
	for _, a := range h.w.Frame().Arcs {
		if a.Opacity != 1 {
			t.Errorf("after leave %s opacity %v", a.ID, a.Opacity)
		}
	}
	if c := h.w.Center(); c.Kind != CenterPlaceholder {
		t.Errorf("leave without selection: %+v", c)
	}
}

func TestLeaveShowsLastSelected(t *testing.T) {
	h := newHarness(t, scenarioJSON)
	h.w.Click("b1")
	h.w.Click("a1")
	h.w.Hover("b")
	h.w.Leave()
	c := h.w.Center()
	if c.Kind != CenterSelected || c.Category != "[A]" || c.Flavor != "A1 (added)" {
		t.Errorf("leave centre: %+v", c)
	}
}

func TestClickCenterDisplay(t *testing.T) {
	h := newHarness(t, scenarioJSON)
	h.w.Click("a1")
	if c := h.w.Center(); c.Kind != CenterSelected || c.Flavor != "A1 (added)" || c.Category != "[A]" {
		t.Errorf("after select: %+v", c)
	}
	h.w.Click("a1")
	if c := h.w.Center(); c.Kind != CenterUnselected || c.Flavor != "A1" {
		t.Errorf("after unselect: %+v", c)
	}
}

func TestUpdateThemeUnknownIsNoop(t *testing.T) {
	h := newHarness(t, scenarioJSON)
	h.settle()
	before := h.w.Frame()
	h.w.UpdateTheme("no-such-theme")
	h.settle()
	after := h.w.Frame()
	if h.w.Theme() != "plain" {
		t.Errorf("theme changed to %q", h.w.Theme())
	}
	if diff := cmp.Diff(before.Arcs, after.Arcs); diff != "" {
		t.Errorf("colours changed (-before +after):\n%s", diff)
	}
}

func TestUpdateThemeRepaints(t *testing.T) {
	h := newHarness(t, scenarioJSON)
	h.settle()
	f := h.w.Frame()
	for id, want := range map[string]string{"a": "#111111", "a1": "#111111", "b": "#ff0000", "b1": "#ff0000"} {
		if a, _ := arcByID(f, id); a.Fill != want {
			t.Errorf("plain %s = %s, want %s", id, a.Fill, want)
		}
	}

	h.w.UpdateTheme("alt")
	if h.w.Theme() != "alt" {
		t.Fatalf("theme not switched")
	}
	h.clock.Advance(DefaultDuration / 2)
	mid, _ := arcByID(h.w.Frame(), "a")
	if mid.Fill == "#111111" || mid.Fill == "#00ff00" {
		t.Errorf("colour should be mid-transition, got %s", mid.Fill)
	}

	h.settle()
	f = h.w.Frame()
	// b has no colour in alt; b1 has its own.
	for id, want := range map[string]string{"a": "#00ff00", "a1": "#00ff00", "b": FallbackColor, "b1": "#0000ff"} {
		if a, _ := arcByID(f, id); a.Fill != want {
			t.Errorf("alt %s = %s, want %s", id, a.Fill, want)
		}
	}
	if f.Animating {
		t.Error("transition should have finished")
	}
}

func TestUpdateLanguageIsIdempotent(t *testing.T) {
	h := newHarness(t, scenarioJSON)
	h.w.Click("a1")
	h.settle()
	before := h.w.Frame()
	sel := h.w.Selected()

	h.w.UpdateLanguage("en")

	after := h.w.Frame()
	if diff := cmp.Diff(before.Labels, after.Labels); diff != "" {
		t.Errorf("labels changed (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(sel, h.w.Selected()); diff != "" {
		t.Errorf("selection changed (-before +after):\n%s", diff)
	}
	if len(h.events) != 2 || h.events[1].Lang != "en" {
		t.Errorf("UpdateLanguage should notify once: %+v", h.events)
	}
}

func TestUpdateLanguageCrossFadesLabels(t *testing.T) {
	h := newHarness(t, scenarioJSON)
	h.settle()

	h.w.UpdateLanguage("zh")
	if h.w.Lang() != "zh" {
		t.Fatal("language not switched")
	}
	if len(h.events) != 1 || h.events[0].Lang != "zh" {
		t.Errorf("expected one zh event, got %+v", h.events)
	}

	h.clock.Advance(100 * time.Millisecond)
	l, _ := labelByID(h.w.Frame(), "a")
	if l.Text != "A" || l.TextOpacity >= 1 || l.TextOpacity <= 0 {
		t.Errorf("fading out: %+v", l)
	}
	if l.Opacity != 1 {
		t.Errorf("label group should stay visible, opacity %v", l.Opacity)
	}

	h.clock.Advance(200 * time.Millisecond)
	l, _ = labelByID(h.w.Frame(), "a")
	if l.Text != "甲" || l.TextOpacity >= 1 {
		t.Errorf("fading in: %+v", l)
	}

	h.settle()
	f := h.w.Frame()
	for id, want := range map[string]string{"a": "甲", "a1": "甲一", "b": "B", "b1": "B1"} {
		l, _ := labelByID(f, id)
		if l.Text != want || l.TextOpacity != 1 {
			t.Errorf("%s: %+v, want %q", id, l, want)
		}
	}
	if c := h.w.Center(); c.Flavor != "風味輪" {
		t.Errorf("centre placeholder not localised: %+v", c)
	}
}

func TestUpdateDataKeepsSelection(t *testing.T) {
	h := newHarness(t, scenarioJSON)
	h.w.Click("a1")
	h.settle()

	next := parseDoc(t, `{"drink_type":"next","children":[
	  {"id":"b","layer":1,"index":1,"label":{"en":"B"},"children":[
	    {"id":"b1","layer":2,"label":{"en":"B1"},"children":[]},
	    {"id":"b2","layer":2,"label":{"en":"B2"},"children":[]}
	  ]}
	]}`)
	if err := h.w.UpdateData(next); err != nil {
		t.Fatalf("UpdateData: %v", err)
	}

	if diff := cmp.Diff([]string{"a1"}, selectedIDs(h.w.Selected())); diff != "" {
		t.Errorf("selection (-want +got):\n%s", diff)
	}
	if len(h.events) != 2 {
		t.Fatalf("UpdateData should notify, got %d events", len(h.events))
	}
	if diff := cmp.Diff([]string{"a1"}, selectedIDs(h.events[1].Selected)); diff != "" {
		t.Errorf("event selection (-want +got):\n%s", diff)
	}
	if h.w.FindNodeByID("a1") != nil {
		t.Error("a1 is an orphan and must not be found")
	}
	if n := h.w.FindNodeByID("b2"); n == nil || n.Category().ID() != "b" {
		t.Error("b2 should be laid out under b")
	}

	f := h.w.Frame()
	if a, ok := arcByID(f, "a1"); !ok || !a.Exiting {
		t.Errorf("a1 should be fading out: %+v", a)
	}
	if a, ok := arcByID(f, "b2"); !ok || a.Opacity != 0 {
		t.Errorf("b2 should start invisible: %+v", a)
	}
	if b, _ := arcByID(f, "b"); b.X0 < 3.14 {
		t.Errorf("b should animate from its previous span: %+v", b)
	}

	h.settle()
	f = h.w.Frame()
	if _, ok := arcByID(f, "a1"); ok {
		t.Error("a1 should be removed once its exit finishes")
	}
	if _, ok := labelByID(f, "a"); ok {
		t.Error("label a should be removed once its exit finishes")
	}
	if a, _ := arcByID(f, "b2"); a.Opacity != 1 {
		t.Errorf("b2 should have faded in: %+v", a)
	}
	if b, _ := arcByID(f, "b"); b.X0 != 0 || b.X1 < 6.28 {
		t.Errorf("b should span the whole wheel: %+v", b)
	}
}

func TestUpdateDataRejectsInvalid(t *testing.T) {
	h := newHarness(t, scenarioJSON)
	if err := h.w.UpdateData(nil); err == nil {
		t.Error("nil document accepted")
	}
	bad := &taxonomy.Document{Children: []*taxonomy.Node{{ID: "", Layer: 1}}}
	if err := h.w.UpdateData(bad); err == nil {
		t.Error("invalid document accepted")
	}
	if h.w.Document().DrinkType != "test" || len(h.events) != 0 {
		t.Error("chart changed after a rejected update")
	}
}

func TestTransitionInterruptsFromCurrentState(t *testing.T) {
	h := newHarness(t, scenarioJSON)
	h.settle()

	grow := `{"children":[
	  {"id":"a","layer":1,"index":1,"label":{},"children":[
	    {"id":"a1","layer":2,"label":{},"children":[]},
	    {"id":"a2","layer":2,"label":{},"children":[]},
	    {"id":"a3","layer":2,"label":{},"children":[]}
	  ]},
	  {"id":"b","layer":1,"index":2,"label":{},"children":[
	    {"id":"b1","layer":2,"label":{},"children":[]}
	  ]}
	]}`
	if err := h.w.UpdateData(parseDoc(t, grow)); err != nil {
		t.Fatal(err)
	}
	h.clock.Advance(DefaultDuration / 2)
	mid, _ := arcByID(h.w.Frame(), "a")

	if err := h.w.UpdateData(parseDoc(t, scenarioJSON)); err != nil {
		t.Fatal(err)
	}
	restart, _ := arcByID(h.w.Frame(), "a")
	if diff := cmp.Diff(mid.X1, restart.X1); diff != "" {
		t.Errorf("interrupted transition jumped (-mid +restart):\n%s", diff)
	}
	if !h.w.Animating() {
		t.Error("a new transition should be running")
	}
	h.settle()
	a, _ := arcByID(h.w.Frame(), "a")
	if a.X1 < 3.14159 || a.X1 > 3.14160 {
		t.Errorf("a should end at half the wheel, X1 = %v", a.X1)
	}
}

func TestEnteringArcsFadeIn(t *testing.T) {
	h := newHarness(t, scenarioJSON)
	f := h.w.Frame()
	for _, a := range f.Arcs {
		if a.Opacity != 0 {
			t.Errorf("%s should start transparent, opacity %v", a.ID, a.Opacity)
		}
	}
	if !f.Animating {
		t.Error("initial draw should animate")
	}
	h.clock.Advance(DefaultDuration / 2)
	a, _ := arcByID(h.w.Frame(), "a")
	if a.Opacity <= 0 || a.Opacity >= 1 {
		t.Errorf("half way opacity %v", a.Opacity)
	}
	h.settle()
	if h.w.Animating() {
		t.Error("should be settled")
	}
}

func TestRootIsNotDrawn(t *testing.T) {
	h := newHarness(t, scenarioJSON)
	for _, a := range h.w.Frame().Arcs {
		if a.ID == taxonomy.RootID {
			t.Error("root arc drawn")
		}
	}
	if got := ArcColor(h.w.Root(), nil); got != Transparent {
		t.Errorf("root colour %s", got)
	}
}

func TestNoAnimation(t *testing.T) {
	w, err := New(parseDoc(t, scenarioJSON), Options{Lang: "en", Duration: -1, Clock: NewManualClock(time.Unix(0, 0))})
	if err != nil {
		t.Fatal(err)
	}
	f := w.Frame()
	if f.Animating {
		t.Error("animation disabled but frame animating")
	}
	for _, a := range f.Arcs {
		if a.Opacity != 1 {
			t.Errorf("%s opacity %v", a.ID, a.Opacity)
		}
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	h := newHarness(t, scenarioJSON)
	var got int
	unsubscribe := h.w.Subscribe(func(SelectionEvent) { got++ })
	h.w.Click("a1")
	unsubscribe()
	unsubscribe()
	h.w.Click("b1")
	if got != 1 {
		t.Errorf("second subscriber got %d events, want 1", got)
	}
	if len(h.events) != 2 {
		t.Errorf("first subscriber got %d events, want 2", len(h.events))
	}
}

func TestResizeKeepsState(t *testing.T) {
	h := newHarness(t, scenarioJSON)
	h.w.Click("a1")
	h.w.Resize(400)
	if h.w.Geometry().Width != 400 || !h.w.IsSelected("a1") {
		t.Error("resize lost state")
	}
	if c := h.w.Center(); c.Kind != CenterSelected || c.FontSize != CenterFontSize(400, false) {
		t.Errorf("centre after resize: %+v", c)
	}
	if len(h.events) != 1 {
		t.Error("resize must not notify")
	}
}

func TestHitTest(t *testing.T) {
	h := newHarness(t, scenarioJSON)
	// width 700: radius 350, hole 100, rings of 250/3.
	tests := []struct {
		name   string
		x, y   float64
		want   string
		wantOK bool
	}{
		{"centre hole", 350, 300, "", false},
		{"outside", 5, 5, "", false},
		{"a ring 1", 360, 210, "a", true},
		{"a1 ring 2", 360, 130, "a1", true},
		{"empty ring 3", 360, 60, "", false},
		{"b ring 1", 210, 350, "b", true},
		{"b1 ring 2", 130, 350, "b1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := h.w.HitTest(tt.x, tt.y)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("HitTest(%v, %v) = %q, %v; want %q, %v", tt.x, tt.y, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPointerEvents(t *testing.T) {
	h := newHarness(t, scenarioJSON)
	if id := h.w.PointerMove(360, 130); id != "a1" || h.w.Hovered() != "a1" {
		t.Errorf("move onto a1: %q, hovered %q", id, h.w.Hovered())
	}
	h.w.PointerClick(360, 130)
	if !h.w.IsSelected("a1") {
		t.Error("pointer click did not select a1")
	}
	h.w.PointerMove(350, 350)
	if h.w.Hovered() != "" {
		t.Error("moving into the hole should leave")
	}
	if c := h.w.Center(); !strings.HasPrefix(c.Flavor, "A1") || c.Kind != CenterSelected {
		t.Errorf("centre after leave: %+v", c)
	}
}
