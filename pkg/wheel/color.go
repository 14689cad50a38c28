package wheel

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ha1tch/flavor-wheel/pkg/theme"
)

// FallbackColor paints arcs whose whole ancestor chain is missing from the
// palette.
const FallbackColor = "#cccccc"

// Transparent is the fill of the root node.
const Transparent = "transparent"

// ArcColor resolves the fill of a node: its own palette entry, else the
// nearest ancestor's, else FallbackColor. The root is transparent.
func ArcColor(n *LayoutNode, pal theme.Palette) string {
	if n.Depth == 0 {
		return Transparent
	}
	for p := n; p != nil; p = p.Parent {
		if c, ok := pal.Color(p.Data.ID); ok {
			return c
		}
	}
	return FallbackColor
}

// parseColor converts a palette value to a colour. Values that do not parse
// are treated as the fallback grey.
func parseColor(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		c, _ = colorful.Hex(FallbackColor)
	}
	return c
}

// blend interpolates two colours in RGB space, t in [0, 1].
func blend(a, b colorful.Color, t float64) colorful.Color {
	return a.BlendRgb(b, t).Clamped()
}
