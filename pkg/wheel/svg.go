package wheel

import (
	"fmt"
	"html"
	"strings"

	"github.com/mattn/go-runewidth"
)

// SVGOptions controls SVG rendering.
type SVGOptions struct {
	Title      string // drawn above the wheel when set
	Background string // canvas fill, "" for none
	DarkMode   bool   // light text on a dark background
	HideCenter bool   // omit the centre display
	HideLabels bool   // omit arc labels
}

// DefaultSVGOptions returns sensible defaults.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Background: "white"}
}

// Palette of the surrounding chrome, light and dark.
const (
	textLight      = "#333333"
	textDark       = "#ebdbb2"
	backgroundDark = "#282828"
	strokeLight    = "#ffffff"
	strokeDark     = "#282828"
	accentSelected = "#b8bb26"
	accentHover    = "#fabd2f"
)

// RenderSVG renders a frame as a standalone SVG document.
func RenderSVG(f Frame, opts SVGOptions) string {
	width := f.Geometry.Width
	r := f.Geometry.Radius

	text, stroke := textLight, strokeLight
	bg := opts.Background
	if opts.DarkMode {
		text, stroke = textDark, strokeDark
		if bg == "" || bg == "white" {
			bg = backgroundDark
		}
	}

	var sb strings.Builder

	// SVG header
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">
<style>
  .flavor-arc { stroke: %s; stroke-width: 1; }
  .flavor-arc.selected { stroke: %s; stroke-width: 3; }
  .flavor-label { font-family: sans-serif; fill: %s; pointer-events: none; }
  .center-category { font-family: sans-serif; font-size: 12px; fill: %s; text-anchor: middle; }
  .center-flavor { font-family: sans-serif; font-weight: bold; fill: %s; text-anchor: middle; }
  .title { font-family: sans-serif; font-size: 18px; font-weight: bold; fill: %s; text-anchor: middle; }
</style>
`, num(width), num(width), num(width), num(width), stroke, text, text, text, text, text))

	// Background
	if bg != "" {
		sb.WriteString(fmt.Sprintf(`<rect width="%s" height="%s" fill="%s"/>
`, num(width), num(width), html.EscapeString(bg)))
	}

	if opts.Title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%s" y="22" class="title">%s</text>
`, num(r), html.EscapeString(opts.Title)))
	}

	sb.WriteString(fmt.Sprintf(`<g transform="translate(%s,%s)">
`, num(r), num(r)))

	// Arcs
	for _, a := range f.Arcs {
		path := a.Path()
		if path == "" {
			continue
		}
		class := fmt.Sprintf("flavor-arc layer-%d", a.Layer)
		if a.Selected {
			class += " selected"
		}
		sb.WriteString(fmt.Sprintf(`  <path class="%s" data-id="%s" d="%s" fill="%s" fill-opacity="%s"/>
`, class, html.EscapeString(a.ID), path, a.Fill, num(a.Opacity)))
	}

	// Labels
	if !opts.HideLabels {
		for _, l := range f.Labels {
			if l.Opacity <= 0 || l.TextOpacity <= 0 || l.Text == "" {
				continue
			}
			sb.WriteString(fmt.Sprintf(`  <g class="label-group" transform="translate(%s,%s) rotate(%s)" opacity="%s">`,
				num(l.X), num(l.Y), num(l.Rotate), num(l.Opacity)))
			sb.WriteString(fmt.Sprintf(`<text class="flavor-label" dy="0.35em" text-anchor="middle" font-size="%spx" opacity="%s">%s</text></g>
`, num(l.FontSize), num(l.TextOpacity), html.EscapeString(l.Text)))
		}
	}

	// Centre display
	if !opts.HideCenter {
		writeCenterSVG(&sb, f.Center, f.Geometry.CenterRadius)
	}

	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}

func writeCenterSVG(sb *strings.Builder, c CenterDisplay, holeRadius float64) {
	size := FitFontSize(c.Flavor, c.FontSize, holeRadius*1.8)
	fill := ""
	switch c.Kind {
	case CenterSelected, CenterHoverCategory:
		fill = fmt.Sprintf(` style="fill: %s"`, accentSelected)
	case CenterHover:
		fill = fmt.Sprintf(` style="fill: %s"`, accentHover)
	}
	if c.Category != "" {
		sb.WriteString(fmt.Sprintf(`  <text class="center-category" y="%s">%s</text>
`, num(-size*0.9), html.EscapeString(c.Category)))
	}
	sb.WriteString(fmt.Sprintf(`  <text class="center-flavor" dy="0.35em" font-size="%spx"%s>%s</text>
`, num(size), fill, html.EscapeString(c.Flavor)))
}

// TextWidth estimates the rendered width of s at the given font size, with
// East Asian wide characters counted double.
func TextWidth(s string, fontSize float64) float64 {
	return float64(runewidth.StringWidth(s)) * fontSize * 0.55
}

// FitFontSize shrinks size until s fits in maxWidth, never below 6.
func FitFontSize(s string, size, maxWidth float64) float64 {
	if maxWidth <= 0 {
		return size
	}
	for size > 6 && TextWidth(s, size) > maxWidth {
		size--
	}
	return size
}
