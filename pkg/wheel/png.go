// Native PNG rendering for wheel frames.
// Mirrors the SVG renderer output using Go's image packages.

package wheel

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// PNGOptions configures PNG rendering.
type PNGOptions struct {
	Scale      int    // supersampling factor, 0 = 4
	Background string // canvas colour, "" = white (or dark in DarkMode)
	DarkMode   bool
	HideCenter bool
	HideLabels bool
	// FontData is a TrueType/OpenType font used for all text. Go Regular is
	// used when nil; it has no CJK glyphs.
	FontData []byte
}

// DefaultPNGOptions returns sensible defaults for PNG rendering.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{Scale: 4}
}

// renderContext holds rendering parameters including scale
type renderContext struct {
	img   *image.RGBA
	scale float64
	fnt   *opentype.Font
	faces map[float64]font.Face
}

func newRenderContext(img *image.RGBA, scale int, fontData []byte) (*renderContext, error) {
	if fontData == nil {
		fontData = goregular.TTF
	}
	fnt, err := opentype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	return &renderContext{
		img:   img,
		scale: float64(scale),
		fnt:   fnt,
		faces: make(map[float64]font.Face),
	}, nil
}

// face returns a face for a chart font size, scaled for supersampling.
func (ctx *renderContext) face(size float64) (font.Face, error) {
	if f, ok := ctx.faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(ctx.fnt, &opentype.FaceOptions{
		Size:    size * ctx.scale,
		DPI:     72,
		Hinting: font.HintingNone, // No hinting - we supersample instead
	})
	if err != nil {
		return nil, err
	}
	ctx.faces[size] = f
	return f, nil
}

func (ctx *renderContext) close() {
	for _, f := range ctx.faces {
		f.Close()
	}
}

// RenderPNG renders a frame to PNG format.
// Uses supersampling for smoother output.
func RenderPNG(f Frame, w io.Writer, opts PNGOptions) error {
	img, err := RenderImage(f, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// RenderImage rasterises a frame at the chart's width.
func RenderImage(f Frame, opts PNGOptions) (*image.RGBA, error) {
	scale := opts.Scale
	if scale <= 0 {
		scale = 4
	}
	width := int(math.Ceil(f.Geometry.Width))
	if width <= 0 {
		return nil, fmt.Errorf("invalid frame width %v", f.Geometry.Width)
	}

	// Render large image, then downsample
	large := image.NewRGBA(image.Rect(0, 0, width*scale, width*scale))
	ctx, err := newRenderContext(large, scale, opts.FontData)
	if err != nil {
		return nil, err
	}
	defer ctx.close()

	textColor, strokeColor := parseRGBA(textLight), parseRGBA(strokeLight)
	bg := opts.Background
	if opts.DarkMode {
		textColor, strokeColor = parseRGBA(textDark), parseRGBA(strokeDark)
		if bg == "" {
			bg = backgroundDark
		}
	}
	if bg == "" {
		bg = "#ffffff"
	}
	draw.Draw(large, large.Bounds(), image.NewUniform(parseRGBA(bg)), image.Point{}, draw.Src)

	paintArcs(ctx, f, strokeColor, parseRGBA(accentSelected))

	if !opts.HideLabels {
		for _, l := range f.Labels {
			alpha := l.Opacity * l.TextOpacity
			if alpha <= 0 || l.Text == "" {
				continue
			}
			face, err := ctx.face(l.FontSize)
			if err != nil {
				return nil, err
			}
			cx := (f.Geometry.Radius + l.X) * ctx.scale
			cy := (f.Geometry.Radius + l.Y) * ctx.scale
			drawTextRotated(ctx, cx, cy, l.Rotate, l.Text, face, l.FontSize*ctx.scale, textColor, alpha)
		}
	}

	if !opts.HideCenter {
		if err := drawCenter(ctx, f, textColor); err != nil {
			return nil, err
		}
	}

	final := image.NewRGBA(image.Rect(0, 0, width, width))
	draw.CatmullRom.Scale(final, final.Bounds(), large, large.Bounds(), draw.Src, nil)
	return final, nil
}

// arcPaint is an arc prepared for rasterisation.
type arcPaint struct {
	ArcFrame
	fill   color.RGBA
	stroke color.RGBA
	width  float64 // half stroke width in chart units
}

// paintArcs rasterises every arc in paint order. Each pixel is tested in
// polar coordinates around the chart centre.
func paintArcs(ctx *renderContext, f Frame, stroke, selected color.RGBA) {
	var arcs []arcPaint
	for _, a := range f.Arcs {
		if a.Opacity <= 0 || a.X1 <= a.X0 {
			continue
		}
		p := arcPaint{ArcFrame: a, fill: parseRGBA(a.Fill), stroke: stroke, width: 0.5}
		if a.Selected {
			p.stroke = selected
			p.width = 1.5
		}
		arcs = append(arcs, p)
	}
	if len(arcs) == 0 {
		return
	}

	img := ctx.img
	b := img.Bounds()
	centre := f.Geometry.Radius * ctx.scale
	for py := b.Min.Y; py < b.Max.Y; py++ {
		for px := b.Min.X; px < b.Max.X; px++ {
			dx := (float64(px) + 0.5 - centre) / ctx.scale
			dy := (float64(py) + 0.5 - centre) / ctx.scale
			r := math.Hypot(dx, dy)
			if r > f.Geometry.Radius+2 {
				continue
			}
			ang := math.Atan2(dx, -dy)
			if ang < 0 {
				ang += 2 * math.Pi
			}
			for i := range arcs {
				a := &arcs[i]
				if r < a.Inner || r >= a.Outer {
					continue
				}
				span := a.X1 - a.X0
				t := math.Mod(ang-a.X0+4*math.Pi, 2*math.Pi)
				if span < 2*math.Pi && t >= span {
					continue
				}
				c := a.fill
				edge := math.Min(r-a.Inner, a.Outer-r)
				if span < 2*math.Pi {
					edge = math.Min(edge, math.Min(t, span-t)*r)
				}
				if edge < a.width {
					c = a.stroke
				}
				blendPixel(img, px, py, c, a.Opacity)
			}
		}
	}
}

// drawCenter writes the centre display into the hole.
func drawCenter(ctx *renderContext, f Frame, text color.RGBA) error {
	c := f.Center
	if c.Flavor == "" && c.Category == "" {
		return nil
	}
	size := FitFontSize(c.Flavor, c.FontSize, f.Geometry.CenterRadius*1.8)
	face, err := ctx.face(size)
	if err != nil {
		return err
	}
	flavorColor := text
	switch c.Kind {
	case CenterSelected, CenterHoverCategory:
		flavorColor = parseRGBA(accentSelected)
	case CenterHover:
		flavorColor = parseRGBA(accentHover)
	}
	cx := f.Geometry.Radius * ctx.scale
	drawTextRotated(ctx, cx, cx, 0, c.Flavor, face, size*ctx.scale, flavorColor, 1)

	if c.Category != "" {
		small, err := ctx.face(12)
		if err != nil {
			return err
		}
		drawTextRotated(ctx, cx, cx-size*0.9*ctx.scale-6*ctx.scale, 0, c.Category, small, 12*ctx.scale, text, 1)
	}
	return nil
}

// drawTextRotated draws text centred on (cx, cy) and rotated by deg degrees
// clockwise. The text is rasterised into a mask first and then sampled
// through the inverse rotation.
func drawTextRotated(ctx *renderContext, cx, cy, deg float64, text string, face font.Face, size float64, c color.RGBA, alpha float64) {
	w := font.MeasureString(face, text).Ceil()
	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	h := ascent + descent
	if w <= 0 || h <= 0 {
		return
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(0, ascent),
	}
	d.DrawString(text)

	// The anchor sits 0.35em above the baseline, like dy="0.35em" in SVG.
	ox := float64(w) / 2
	oy := float64(ascent) - 0.35*size

	theta := deg * math.Pi / 180
	cos, sin := math.Cos(theta), math.Sin(theta)
	reach := math.Hypot(float64(w), float64(h))

	b := ctx.img.Bounds()
	x0, x1 := int(math.Max(float64(b.Min.X), cx-reach)), int(math.Min(float64(b.Max.X), cx+reach))
	y0, y1 := int(math.Max(float64(b.Min.Y), cy-reach)), int(math.Min(float64(b.Max.Y), cy+reach))
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			rx := float64(px) + 0.5 - cx
			ry := float64(py) + 0.5 - cy
			mx := int(math.Floor(rx*cos + ry*sin + ox))
			my := int(math.Floor(-rx*sin + ry*cos + oy))
			if mx < 0 || my < 0 || mx >= w || my >= h {
				continue
			}
			a := mask.AlphaAt(mx, my).A
			if a == 0 {
				continue
			}
			blendPixel(ctx.img, px, py, c, alpha*float64(a)/255)
		}
	}
}

// blendPixel composites c over the pixel at (x, y) with the given opacity.
func blendPixel(img *image.RGBA, x, y int, c color.RGBA, alpha float64) {
	if alpha <= 0 {
		return
	}
	if alpha > 1 {
		alpha = 1
	}
	dst := img.RGBAAt(x, y)
	mix := func(s, d uint8) uint8 {
		return uint8(math.Round(float64(s)*alpha + float64(d)*(1-alpha)))
	}
	img.SetRGBA(x, y, color.RGBA{
		R: mix(c.R, dst.R),
		G: mix(c.G, dst.G),
		B: mix(c.B, dst.B),
		A: 255,
	})
}

// parseRGBA converts "#rrggbb" (or "white") to an opaque colour.
func parseRGBA(s string) color.RGBA {
	if s == "white" {
		return color.RGBA{255, 255, 255, 255}
	}
	var c colorful.Color
	if s == Transparent {
		c = colorful.Color{R: 1, G: 1, B: 1}
	} else {
		c = parseColor(s)
	}
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 255}
}
