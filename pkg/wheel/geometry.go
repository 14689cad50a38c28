package wheel

import (
	"fmt"
	"math"
	"strings"
)

// DefaultRings is the number of rings drawn outside the centre hole.
const DefaultRings = 3

// Geometry holds the radial dimensions of a chart.
type Geometry struct {
	Width        float64
	Radius       float64
	CenterRadius float64
	Rings        int
}

// NewGeometry derives the chart geometry for a square canvas of the given
// width. A non-positive centerRadius selects DynamicCenterRadius. The centre
// hole never takes more than half the radius.
func NewGeometry(width, centerRadius float64) Geometry {
	g := Geometry{Width: width, Radius: width / 2, Rings: DefaultRings}
	if centerRadius <= 0 {
		centerRadius = DynamicCenterRadius(width)
	}
	if limit := g.Radius / 2; centerRadius > limit {
		centerRadius = limit
	}
	g.CenterRadius = centerRadius
	return g
}

// DynamicCenterRadius scales the centre hole with the chart: 15% of the
// width, kept between 60 and 100 pixels.
func DynamicCenterRadius(width float64) float64 {
	return math.Max(60, math.Min(width*0.15, 100))
}

// RingWidth is the radial thickness of one ring.
func (g Geometry) RingWidth() float64 {
	rings := g.Rings
	if rings <= 0 {
		rings = DefaultRings
	}
	return (g.Radius - g.CenterRadius) / float64(rings)
}

// InnerRadius returns the inner radius of the ring for layer. Layers below 1
// are drawn in the first ring.
func (g Geometry) InnerRadius(layer int) float64 {
	if layer < 1 {
		layer = 1
	}
	return g.CenterRadius + float64(layer-1)*g.RingWidth()
}

// OuterRadius returns the outer radius of the ring for layer.
func (g Geometry) OuterRadius(layer int) float64 {
	if layer < 1 {
		layer = 1
	}
	return g.CenterRadius + float64(layer)*g.RingWidth()
}

// Point converts a polar position (angle clockwise from 12 o'clock) to
// coordinates relative to the chart centre, y pointing down.
func Point(angle, r float64) (x, y float64) {
	return r * math.Sin(angle), -r * math.Cos(angle)
}

// Centroid returns the middle of an annular sector, relative to the centre.
func Centroid(x0, x1, inner, outer float64) (x, y float64) {
	r := (inner + outer) / 2
	a := (x0+x1)/2 - math.Pi/2
	return math.Cos(a) * r, math.Sin(a) * r
}

// LabelAngle returns the rotation in degrees for a label on the sector
// [x0, x1]. Labels on the left half are flipped so they never read upside
// down.
func LabelAngle(x0, x1 float64) float64 {
	angle := (x0+x1)/2*180/math.Pi - 90
	if angle > 90 && angle < 270 {
		return angle + 180
	}
	return angle
}

// LabelFontSize returns the arc label size in pixels. Japanese labels are
// set smaller on narrow charts.
func LabelFontSize(width float64, lang string) float64 {
	if width >= 768 {
		return 20
	}
	if lang == "jp" {
		return 3
	}
	return 5
}

// CenterFontSize returns the size of the centre display text. The resting
// placeholder uses a fixed size.
func CenterFontSize(width float64, placeholder bool) float64 {
	if placeholder {
		return 16
	}
	return math.Max(8, math.Min(width/30, 26))
}

// ArcPath returns SVG path data for the annular sector [x0, x1] between the
// two radii, relative to the chart centre.
func ArcPath(x0, x1, inner, outer float64) string {
	if outer < inner {
		inner, outer = outer, inner
	}
	span := x1 - x0
	if span <= 0 || outer <= 0 {
		return ""
	}
	var sb strings.Builder

	if span >= 2*math.Pi-1e-6 {
		// full ring: two half circles each way, inner ring cut out by winding
		fmt.Fprintf(&sb, "M0,%s", num(-outer))
		fmt.Fprintf(&sb, "A%s,%s,0,1,1,0,%s", num(outer), num(outer), num(outer))
		fmt.Fprintf(&sb, "A%s,%s,0,1,1,0,%s", num(outer), num(outer), num(-outer))
		if inner > 0 {
			fmt.Fprintf(&sb, "M0,%s", num(-inner))
			fmt.Fprintf(&sb, "A%s,%s,0,1,0,0,%s", num(inner), num(inner), num(inner))
			fmt.Fprintf(&sb, "A%s,%s,0,1,0,0,%s", num(inner), num(inner), num(-inner))
		}
		sb.WriteString("Z")
		return sb.String()
	}

	large := 0
	if span > math.Pi {
		large = 1
	}
	ox0, oy0 := Point(x0, outer)
	ox1, oy1 := Point(x1, outer)
	fmt.Fprintf(&sb, "M%s,%s", num(ox0), num(oy0))
	fmt.Fprintf(&sb, "A%s,%s,0,%d,1,%s,%s", num(outer), num(outer), large, num(ox1), num(oy1))
	if inner > 0 {
		ix1, iy1 := Point(x1, inner)
		ix0, iy0 := Point(x0, inner)
		fmt.Fprintf(&sb, "L%s,%s", num(ix1), num(iy1))
		fmt.Fprintf(&sb, "A%s,%s,0,%d,0,%s,%s", num(inner), num(inner), large, num(ix0), num(iy0))
	} else {
		sb.WriteString("L0,0")
	}
	sb.WriteString("Z")
	return sb.String()
}

// num formats a coordinate with three decimals and no trailing zeros.
func num(v float64) string {
	if math.Abs(v) < 5e-4 {
		return "0"
	}
	s := fmt.Sprintf("%.3f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
