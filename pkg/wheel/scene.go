package wheel

import (
	"sort"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ha1tch/flavor-wheel/pkg/theme"
)

// DimOpacity is the fill opacity of arcs unrelated to the hovered node.
const DimOpacity = 0.6

// ArcFrame is one arc as it should be painted at a given instant.
type ArcFrame struct {
	ID       string
	Layer    int
	X0, X1   float64
	Inner    float64
	Outer    float64
	Fill     string  // #rrggbb
	Opacity  float64 // fill opacity, hover dimming included
	Selected bool
	Exiting  bool
}

// Path returns the SVG path data of the arc, relative to the chart centre.
func (a ArcFrame) Path() string {
	return ArcPath(a.X0, a.X1, a.Inner, a.Outer)
}

// LabelFrame is one label as it should be painted at a given instant. X and
// Y are relative to the chart centre; Rotate is in degrees.
type LabelFrame struct {
	ID          string
	X, Y        float64
	Rotate      float64
	Opacity     float64
	Text        string
	TextOpacity float64
	FontSize    float64
}

// arcValues are the animated properties of an arc.
type arcValues struct {
	X0, X1, Inner, Outer float64
	Opacity              float64
	Fill                 colorful.Color
}

func (a arcValues) interpolate(b arcValues, t float64) arcValues {
	return arcValues{
		X0:      lerp(a.X0, b.X0, t),
		X1:      lerp(a.X1, b.X1, t),
		Inner:   lerp(a.Inner, b.Inner, t),
		Outer:   lerp(a.Outer, b.Outer, t),
		Opacity: lerp(a.Opacity, b.Opacity, t),
		Fill:    blend(a.Fill, b.Fill, t),
	}
}

type arcElem struct {
	node     *LayoutNode
	from, to arcValues
	start    time.Time
	exiting  bool
	selected bool
	dim      float64
}

func (e *arcElem) at(now time.Time, dur time.Duration) arcValues {
	return e.from.interpolate(e.to, progress(e.start, now, dur))
}

// retarget starts a transition to v from wherever the arc is now. A running
// transition is interrupted, not queued.
func (e *arcElem) retarget(v arcValues, now time.Time, dur time.Duration) {
	if v == e.to {
		return
	}
	e.from = e.at(now, dur)
	e.to = v
	e.start = now
}

func (e *arcElem) settled(now time.Time, dur time.Duration) bool {
	return !now.Before(e.start.Add(dur))
}

// labelValues are the animated properties of a label group.
type labelValues struct {
	X, Y, Rotate, Opacity float64
}

func (a labelValues) interpolate(b labelValues, t float64) labelValues {
	return labelValues{
		X:       lerp(a.X, b.X, t),
		Y:       lerp(a.Y, b.Y, t),
		Rotate:  lerp(a.Rotate, b.Rotate, t),
		Opacity: lerp(a.Opacity, b.Opacity, t),
	}
}

// textFade swaps label text: the old text fades out over the first half of
// the duration, the new text fades in over the second half.
type textFade struct {
	start time.Time
	from  float64
	next  string
}

type labelElem struct {
	node     *LayoutNode
	from, to labelValues
	start    time.Time
	exiting  bool
	text     string
	fontSize float64
	fade     *textFade
}

func (e *labelElem) at(now time.Time, dur time.Duration) labelValues {
	return e.from.interpolate(e.to, progress(e.start, now, dur))
}

func (e *labelElem) retarget(v labelValues, now time.Time, dur time.Duration) {
	if v == e.to {
		return
	}
	e.from = e.at(now, dur)
	e.from.Rotate = nearestTurn(e.from.Rotate, v.Rotate)
	e.to = v
	e.start = now
}

func (e *labelElem) textAt(now time.Time, dur time.Duration) (string, float64) {
	if e.fade == nil {
		return e.text, 1
	}
	half := dur / 2
	if now.Before(e.fade.start.Add(half)) {
		return e.text, lerp(e.fade.from, 0, progress(e.fade.start, now, half))
	}
	return e.fade.next, progress(e.fade.start.Add(half), now, half)
}

// setText starts a cross-fade to text unless it is already shown or on its
// way in.
func (e *labelElem) setText(text string, now time.Time, dur time.Duration) {
	if e.fade == nil {
		if text != e.text {
			e.fade = &textFade{start: now, from: 1, next: text}
		}
		return
	}
	if text == e.fade.next {
		return
	}
	cur, op := e.textAt(now, dur)
	e.text = cur
	e.fade = &textFade{start: now, from: op, next: text}
}

func (e *labelElem) settled(now time.Time, dur time.Duration) bool {
	end := e.start.Add(dur)
	if e.fade != nil && e.fade.start.Add(dur).After(end) {
		end = e.fade.start.Add(dur)
	}
	return !now.Before(end)
}

// Scene is the retained set of arcs and labels drawn for a chart. Elements
// are keyed by node id so that nodes surviving a data change keep their
// identity and animate from their previous state.
type Scene struct {
	dur    time.Duration
	arcs   map[string]*arcElem
	labels map[string]*labelElem
	order  []string // live ids in paint order
}

func newScene(dur time.Duration) *Scene {
	return &Scene{
		dur:    dur,
		arcs:   make(map[string]*arcElem),
		labels: make(map[string]*labelElem),
	}
}

// sceneInput is everything the scene needs to reconcile against.
type sceneInput struct {
	root     *LayoutNode
	geo      Geometry
	palette  theme.Palette
	lang     string
	fontSize float64
	selected func(id string) bool
}

// sync reconciles the scene with a new layout. New nodes fade in, surviving
// nodes move to their new place, and vanished nodes fade out and are removed
// once their transition ends. Hover dimming is reset.
func (s *Scene) sync(in sceneInput, now time.Time) {
	s.advance(now)

	live := make(map[string]bool)
	s.order = s.order[:0]
	for _, n := range in.root.Descendants() {
		if n.Depth == 0 {
			continue
		}
		id := n.Data.ID
		live[id] = true
		s.order = append(s.order, id)

		inner, outer := in.geo.InnerRadius(n.Layer()), in.geo.OuterRadius(n.Layer())
		av := arcValues{
			X0: n.X0, X1: n.X1,
			Inner: inner, Outer: outer,
			Opacity: 1,
			Fill:    parseColor(ArcColor(n, in.palette)),
		}
		if a, ok := s.arcs[id]; ok {
			a.node = n
			a.exiting = false
			a.retarget(av, now, s.dur)
		} else {
			from := av
			from.Opacity = 0
			s.arcs[id] = &arcElem{node: n, from: from, to: av, start: now}
		}
		a := s.arcs[id]
		a.dim = 1
		a.selected = in.selected != nil && in.selected(id)

		cx, cy := Centroid(n.X0, n.X1, inner, outer)
		lv := labelValues{X: cx, Y: cy, Rotate: LabelAngle(n.X0, n.X1), Opacity: 1}
		text := n.Data.DisplayLabel(in.lang)
		if l, ok := s.labels[id]; ok {
			l.node = n
			l.exiting = false
			l.fontSize = in.fontSize
			l.retarget(lv, now, s.dur)
			l.setText(text, now, s.dur)
		} else {
			from := lv
			from.Opacity = 0
			s.labels[id] = &labelElem{node: n, from: from, to: lv, start: now, text: text, fontSize: in.fontSize}
		}
	}

	for id, a := range s.arcs {
		if live[id] || a.exiting {
			continue
		}
		a.exiting = true
		a.selected = false
		a.dim = 1
		v := a.at(now, s.dur)
		v.Opacity = 0
		a.retarget(v, now, s.dur)
	}
	for id, l := range s.labels {
		if live[id] || l.exiting {
			continue
		}
		l.exiting = true
		v := l.at(now, s.dur)
		v.Opacity = 0
		l.retarget(v, now, s.dur)
	}
}

// repaint transitions every live arc to its colour under pal.
func (s *Scene) repaint(pal theme.Palette, now time.Time) {
	for _, id := range s.order {
		a := s.arcs[id]
		v := a.to
		v.Fill = parseColor(ArcColor(a.node, pal))
		a.retarget(v, now, s.dur)
	}
}

// setDim applies hover dimming immediately. A nil fn clears it.
func (s *Scene) setDim(fn func(n *LayoutNode) float64) {
	for _, id := range s.order {
		a := s.arcs[id]
		if fn == nil {
			a.dim = 1
		} else {
			a.dim = fn(a.node)
		}
	}
}

// markSelected resynchronises the selected marker of every live arc.
func (s *Scene) markSelected(selected func(id string) bool) {
	for _, id := range s.order {
		s.arcs[id].selected = selected(id)
	}
}

// advance drops exited elements and completes finished text swaps.
func (s *Scene) advance(now time.Time) {
	for id, a := range s.arcs {
		if a.exiting && a.settled(now, s.dur) {
			delete(s.arcs, id)
		}
	}
	for id, l := range s.labels {
		if l.exiting && l.settled(now, s.dur) {
			delete(s.labels, id)
			continue
		}
		if l.fade != nil && !now.Before(l.fade.start.Add(s.dur)) {
			l.text = l.fade.next
			l.fade = nil
		}
	}
}

// animating reports whether any element is still in transition at now.
func (s *Scene) animating(now time.Time) bool {
	for _, a := range s.arcs {
		if !a.settled(now, s.dur) {
			return true
		}
	}
	for _, l := range s.labels {
		if !l.settled(now, s.dur) {
			return true
		}
	}
	return false
}

// paintOrder returns exiting ids (sorted) followed by live ids.
func (s *Scene) paintOrder(exiting func(id string) bool, all []string) []string {
	var gone []string
	for _, id := range all {
		if exiting(id) {
			gone = append(gone, id)
		}
	}
	sort.Strings(gone)
	return append(gone, s.order...)
}

// snapshot returns the interpolated arcs and labels at now.
func (s *Scene) snapshot(now time.Time) ([]ArcFrame, []LabelFrame) {
	s.advance(now)

	arcIDs := make([]string, 0, len(s.arcs))
	for id := range s.arcs {
		arcIDs = append(arcIDs, id)
	}
	arcs := make([]ArcFrame, 0, len(s.arcs))
	for _, id := range s.paintOrder(func(id string) bool { return s.arcs[id].exiting }, arcIDs) {
		a := s.arcs[id]
		v := a.at(now, s.dur)
		arcs = append(arcs, ArcFrame{
			ID:       id,
			Layer:    a.node.Layer(),
			X0:       v.X0,
			X1:       v.X1,
			Inner:    v.Inner,
			Outer:    v.Outer,
			Fill:     v.Fill.Hex(),
			Opacity:  v.Opacity * a.dim,
			Selected: a.selected,
			Exiting:  a.exiting,
		})
	}

	labelIDs := make([]string, 0, len(s.labels))
	for id := range s.labels {
		labelIDs = append(labelIDs, id)
	}
	labels := make([]LabelFrame, 0, len(s.labels))
	for _, id := range s.paintOrder(func(id string) bool { return s.labels[id].exiting }, labelIDs) {
		l := s.labels[id]
		v := l.at(now, s.dur)
		text, op := l.textAt(now, s.dur)
		labels = append(labels, LabelFrame{
			ID:          id,
			X:           v.X,
			Y:           v.Y,
			Rotate:      v.Rotate,
			Opacity:     v.Opacity,
			Text:        text,
			TextOpacity: op,
			FontSize:    l.fontSize,
		})
	}
	return arcs, labels
}
