package wheel

import "math"

// HitTest returns the id of the node drawn at canvas position (x, y), with
// the origin at the top-left corner of the chart. The centre hole and the
// area outside the wheel hit nothing.
func (w *Wheel) HitTest(x, y float64) (string, bool) {
	n := hit(w.root, w.geo, x-w.geo.Radius, y-w.geo.Radius)
	if n == nil {
		return "", false
	}
	return n.Data.ID, true
}

// hit finds the node under (dx, dy), measured from the chart centre.
func hit(root *LayoutNode, geo Geometry, dx, dy float64) *LayoutNode {
	if root == nil {
		return nil
	}
	r := math.Hypot(dx, dy)
	if r < geo.CenterRadius || r > geo.Radius {
		return nil
	}
	a := math.Atan2(dx, -dy)
	if a < 0 {
		a += 2 * math.Pi
	}
	for _, n := range root.Descendants() {
		if n.Depth == 0 {
			continue
		}
		layer := n.Layer()
		if r < geo.InnerRadius(layer) || r >= geo.OuterRadius(layer) {
			continue
		}
		if a >= n.X0 && a < n.X1 {
			return n
		}
	}
	return nil
}

// PointerMove translates a pointer position into Hover or Leave, and returns
// the id now under the pointer.
func (w *Wheel) PointerMove(x, y float64) string {
	id, ok := w.HitTest(x, y)
	switch {
	case !ok && w.hovered != "":
		w.Leave()
	case ok && id != w.hovered:
		w.Hover(id)
	}
	return id
}

// PointerClick clicks whatever node is at (x, y).
func (w *Wheel) PointerClick(x, y float64) {
	if id, ok := w.HitTest(x, y); ok {
		w.Click(id)
	}
}
