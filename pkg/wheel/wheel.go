package wheel

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/ha1tch/flavor-wheel/pkg/locale"
	"github.com/ha1tch/flavor-wheel/pkg/taxonomy"
	"github.com/ha1tch/flavor-wheel/pkg/theme"
)

// Defaults applied by New.
const (
	DefaultWidth = 700
	DefaultLang  = "zh"
	DefaultTheme = "default"
)

// Options configures a chart.
type Options struct {
	Width        float64 // canvas width and height in pixels
	CenterRadius float64 // <= 0 selects DynamicCenterRadius
	Lang         string
	Theme        string
	Themes       *theme.Registry
	Strings      locale.Table
	Duration     time.Duration // 0 selects DefaultDuration, < 0 disables animation
	Ordering     Ordering
	Clock        Clock
	Logger       *zap.Logger
}

// SelectionEvent is delivered to subscribers whenever the chart's selection
// is reported: after a click that changed it, and after a data or language
// change.
type SelectionEvent struct {
	Selected []taxonomy.Entry
	Lang     string
}

type subscriber struct {
	id int
	fn func(SelectionEvent)
}

// Wheel is an interactive sunburst chart. It owns its selection, theme and
// language; hosts drive it through the methods below and observe it through
// Subscribe. A Wheel is not safe for concurrent use.
type Wheel struct {
	opts     Options
	doc      *taxonomy.Document
	root     *LayoutNode
	index    map[string]*LayoutNode
	geo      Geometry
	lang     string
	theme    string
	scene    *Scene
	sel      *selection
	center   CenterDisplay
	hovered  string
	subs     []subscriber
	nextSub  int
	log      *zap.Logger
	clock    Clock
	duration time.Duration
}

// New builds a chart for doc and draws it.
func New(doc *taxonomy.Document, opts Options) (*Wheel, error) {
	if doc == nil {
		return nil, errors.New("wheel: no taxonomy")
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("wheel: %w", err)
	}
	if opts.Width == 0 {
		opts.Width = DefaultWidth
	}
	if opts.Width < 0 || math.IsNaN(opts.Width) {
		return nil, fmt.Errorf("wheel: invalid width %v", opts.Width)
	}
	if opts.Lang == "" {
		opts.Lang = DefaultLang
	}
	if opts.Theme == "" {
		opts.Theme = DefaultTheme
	}
	if opts.Themes == nil {
		opts.Themes = theme.Builtin()
	}
	if opts.Strings == nil {
		opts.Strings = locale.Builtin()
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	dur := opts.Duration
	switch {
	case dur == 0:
		dur = DefaultDuration
	case dur < 0:
		dur = 0
	}

	w := &Wheel{
		opts:     opts,
		doc:      doc,
		geo:      NewGeometry(opts.Width, opts.CenterRadius),
		lang:     opts.Lang,
		theme:    opts.Theme,
		sel:      newSelection(),
		log:      opts.Logger,
		clock:    opts.Clock,
		duration: dur,
	}
	w.scene = newScene(dur)
	w.draw()
	w.log.Debug("wheel created",
		zap.String("drink", doc.DrinkType),
		zap.Float64("width", w.geo.Width),
		zap.Float64("center_radius", w.geo.CenterRadius),
		zap.String("theme", w.theme),
		zap.String("lang", w.lang))
	return w, nil
}

// draw lays the current data out and reconciles the scene with it. The
// centre display returns to its placeholder.
func (w *Wheel) draw() {
	w.root = Partition(w.doc.Root(), w.opts.Ordering)
	w.index = make(map[string]*LayoutNode)
	for _, n := range w.root.Descendants() {
		w.index[n.Data.ID] = n
	}
	w.scene.sync(w.sceneInput(), w.clock.Now())
	w.hovered = ""
	w.center = placeholder(w.lang, w.opts.Strings, w.geo.Width)
}

func (w *Wheel) sceneInput() sceneInput {
	return sceneInput{
		root:     w.root,
		geo:      w.geo,
		palette:  w.palette(),
		lang:     w.lang,
		fontSize: LabelFontSize(w.geo.Width, w.lang),
		selected: w.sel.has,
	}
}

func (w *Wheel) palette() theme.Palette {
	return w.opts.Themes.PaletteFor(w.theme)
}

// UpdateData swaps in a new taxonomy. The selection is kept as is; entries
// that no longer match a node are left for the host to show as orphans.
// Subscribers are notified. An invalid document leaves the chart untouched.
func (w *Wheel) UpdateData(doc *taxonomy.Document) error {
	if doc == nil {
		return errors.New("wheel: no taxonomy")
	}
	if err := doc.Validate(); err != nil {
		w.log.Warn("rejected taxonomy update", zap.Error(err))
		return fmt.Errorf("wheel: %w", err)
	}
	w.doc = doc
	w.draw()
	w.log.Info("taxonomy updated",
		zap.String("drink", doc.DrinkType),
		zap.Int("selected", w.sel.len()))
	w.notify()
	return nil
}

// UpdateTheme repaints arc colours with the named theme. Unknown ids and the
// current theme are ignored.
func (w *Wheel) UpdateTheme(id string) {
	if id == w.theme {
		return
	}
	th, ok := w.opts.Themes.Lookup(id)
	if !ok {
		w.log.Debug("ignoring unknown theme", zap.String("theme", id))
		return
	}
	w.theme = id
	w.scene.repaint(th.Palette, w.clock.Now())
	w.log.Info("theme switched", zap.String("theme", id), zap.String("name", th.Name))
}

// UpdateLanguage redraws labels in lang and notifies subscribers.
func (w *Wheel) UpdateLanguage(lang string) {
	w.lang = lang
	w.draw()
	w.notify()
}

// Resize redraws the chart for a new canvas width. Selection, theme and
// language are kept and nobody is notified.
func (w *Wheel) Resize(width float64) {
	if width <= 0 || width == w.geo.Width {
		return
	}
	w.geo = NewGeometry(width, w.opts.CenterRadius)
	center := w.center
	w.draw()
	center.FontSize = CenterFontSize(width, center.Kind == CenterPlaceholder)
	w.center = center
}

// DeselectByID removes one entry from the selection. Subscribers are not
// notified.
func (w *Wheel) DeselectByID(id string) {
	if w.sel.remove(id) {
		w.scene.markSelected(w.sel.has)
	}
}

// ClearSelection empties the selection and resets the centre display.
// Subscribers are not notified.
func (w *Wheel) ClearSelection() {
	w.sel.clear()
	w.scene.markSelected(w.sel.has)
	w.center = placeholder(w.lang, w.opts.Strings, w.geo.Width)
}

// Hover highlights a node together with its ancestors and descendants and
// describes it in the centre. Unknown ids and the root are ignored.
func (w *Wheel) Hover(id string) {
	n := w.index[id]
	if n == nil || n.Depth == 0 {
		return
	}
	kind := CenterHover
	if n.Data.Layer == taxonomy.LayerCategory {
		kind = CenterHoverCategory
	}
	w.hovered = id
	w.center = describe(subjectOf(n), kind, w.lang, w.opts.Strings, w.geo.Width)
	w.scene.setDim(func(p *LayoutNode) float64 {
		if n.Related(p) {
			return 1
		}
		return DimOpacity
	})
}

// Leave ends a hover. The centre shows the most recently selected entry, or
// the placeholder when nothing is selected.
func (w *Wheel) Leave() {
	w.hovered = ""
	w.scene.setDim(nil)
	e, ok := w.sel.last()
	if !ok {
		w.center = placeholder(w.lang, w.opts.Strings, w.geo.Width)
		return
	}
	subj := centerSubject{id: e.ID, layer: e.Layer, label: e.Label}
	if n := w.index[e.ID]; n != nil {
		subj = subjectOf(n)
	}
	w.center = describe(subj, CenterSelected, w.lang, w.opts.Strings, w.geo.Width)
}

// Click toggles a node in the selection. Categories and the root cannot be
// selected; clicking them changes nothing and notifies nobody.
func (w *Wheel) Click(id string) {
	n := w.index[id]
	if n == nil || n.Depth == 0 {
		return
	}
	switch {
	case w.sel.has(id):
		w.sel.remove(id)
	case n.Data.Selectable():
		w.sel.add(taxonomy.EntryOf(n.Data))
	default:
		return
	}
	w.scene.markSelected(w.sel.has)

	kind := CenterUnselected
	if w.sel.has(id) {
		kind = CenterSelected
	}
	w.center = describe(subjectOf(n), kind, w.lang, w.opts.Strings, w.geo.Width)
	w.notify()
}

// FindNodeByID returns the layout node with the given id, or nil.
func (w *Wheel) FindNodeByID(id string) *LayoutNode {
	return w.index[id]
}

// Root returns the current layout.
func (w *Wheel) Root() *LayoutNode { return w.root }

// Document returns the taxonomy being drawn.
func (w *Wheel) Document() *taxonomy.Document { return w.doc }

// Selected returns a copy of the selection in the order entries were added.
func (w *Wheel) Selected() []taxonomy.Entry { return w.sel.snapshot() }

// IsSelected reports whether id is in the selection.
func (w *Wheel) IsSelected(id string) bool { return w.sel.has(id) }

// Center returns the centre display.
func (w *Wheel) Center() CenterDisplay { return w.center }

// Hovered returns the id of the hovered node, or "".
func (w *Wheel) Hovered() string { return w.hovered }

// Theme returns the active theme id.
func (w *Wheel) Theme() string { return w.theme }

// Lang returns the active language.
func (w *Wheel) Lang() string { return w.lang }

// Geometry returns the chart dimensions.
func (w *Wheel) Geometry() Geometry { return w.geo }

// Subscribe registers fn for selection events. The returned function removes
// it again and may be called more than once.
func (w *Wheel) Subscribe(fn func(SelectionEvent)) (unsubscribe func()) {
	w.nextSub++
	id := w.nextSub
	w.subs = append(w.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range w.subs {
			if s.id == id {
				w.subs = append(w.subs[:i:i], w.subs[i+1:]...)
				return
			}
		}
	}
}

func (w *Wheel) notify() {
	subs := append([]subscriber(nil), w.subs...)
	for _, s := range subs {
		s.fn(SelectionEvent{Selected: w.sel.snapshot(), Lang: w.lang})
	}
}

// Frame is the chart as it should be painted at one instant.
type Frame struct {
	Geometry  Geometry
	Arcs      []ArcFrame
	Labels    []LabelFrame
	Center    CenterDisplay
	Animating bool
}

// Frame returns the interpolated scene at the clock's current time.
func (w *Wheel) Frame() Frame {
	return w.FrameAt(w.clock.Now())
}

// FrameAt returns the interpolated scene at now.
func (w *Wheel) FrameAt(now time.Time) Frame {
	arcs, labels := w.scene.snapshot(now)
	return Frame{
		Geometry:  w.geo,
		Arcs:      arcs,
		Labels:    labels,
		Center:    w.center,
		Animating: w.scene.animating(now),
	}
}

// Animating reports whether a transition is still running.
func (w *Wheel) Animating() bool {
	return w.scene.animating(w.clock.Now())
}
