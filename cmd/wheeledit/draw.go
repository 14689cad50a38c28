package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"

	"github.com/ha1tch/flavor-wheel/pkg/locale"
	"github.com/ha1tch/flavor-wheel/pkg/taxonomy"
	"github.com/ha1tch/flavor-wheel/pkg/wheel"
)

// Styles
var (
	styleDefault    = tcell.StyleDefault
	styleMenu       = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleMenuSel    = tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite)
	styleSidebar    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleSidebarH   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleOrphan     = tcell.StyleDefault.Foreground(tcell.ColorGray).Italic(true)
	styleStatus     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo    = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError   = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleMsgSuccess = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgWarning = tcell.StyleDefault.Foreground(tcell.ColorYellow).Background(tcell.ColorNavy)
	styleHelp       = tcell.StyleDefault.Foreground(tcell.ColorGray) // Help bar on default background
	styleInput      = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	styleBorder     = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// Centre text colours, matching the accents of the image renderers.
var (
	colorAccentSelected = tcell.NewRGBColor(0xd4, 0xa0, 0x17)
	colorAccentHover    = tcell.NewRGBColor(0x8b, 0x45, 0x13)
)

// Canvas backgrounds
var (
	backgroundLight = colorful.Color{R: 1, G: 1, B: 1}
	backgroundDark  = colorful.Color{R: 0x1e / 255.0, G: 0x1e / 255.0, B: 0x1e / 255.0}
)

// Flash pattern: normal(0-125) -> inverted(125-250) -> normal(250-375) -> inverted(375-500) -> normal(500+)
const (
	flashPeriod = 500
	flashPhase  = 125
)

// viewport maps terminal cells onto chart coordinates. Cells are about
// twice as tall as they are wide, so the wheel spans twice as many columns
// as rows.
type viewport struct {
	left, top  int
	cols, rows int
	scale      float64 // chart pixels per row
}

func newViewport(canvasW, canvasH int, chartWidth float64) viewport {
	rows := canvasH
	if 2*rows > canvasW {
		rows = canvasW / 2
	}
	if rows < 0 {
		rows = 0
	}
	vp := viewport{
		left: (canvasW - 2*rows) / 2,
		top:  (canvasH - rows) / 2,
		cols: 2 * rows,
		rows: rows,
	}
	if rows > 0 {
		vp.scale = chartWidth / float64(rows)
	}
	return vp
}

// toChart returns the chart position at the centre of cell (x, y), and
// whether the cell lies on the wheel's square.
func (vp viewport) toChart(x, y int) (cx, cy float64, ok bool) {
	if x < vp.left || x >= vp.left+vp.cols || y < vp.top || y >= vp.top+vp.rows {
		return 0, 0, false
	}
	cx = (float64(x-vp.left) + 0.5) * vp.scale / 2
	cy = (float64(y-vp.top) + 0.5) * vp.scale
	return cx, cy, true
}

// toCell is the inverse of toChart.
func (vp viewport) toCell(cx, cy float64) (x, y int) {
	if vp.scale == 0 {
		return vp.left, vp.top
	}
	x = vp.left + int(math.Floor(cx/(vp.scale/2)))
	y = vp.top + int(math.Floor(cy/vp.scale))
	return x, y
}

func (ed *Editor) viewport(w, h int) viewport {
	canvasW := w - ed.sidebarWidth
	if canvasW < 0 {
		canvasW = 0
	}
	return newViewport(canvasW, h-2, ed.chart.Geometry().Width)
}

func (ed *Editor) draw() {
	ed.screen.Clear()
	w, h := ed.screen.Size()

	f := ed.chart.Frame()
	vp := ed.viewport(w, h)
	ed.drawWheel(f, vp)
	ed.drawLabels(f, vp)
	ed.drawCenter(f, vp)
	ed.drawSidebar(w, h)

	switch ed.mode {
	case ModeInput:
		ed.drawInputBox(w, h)
	case ModeSelectCategory:
		ed.drawCategoryMenu(w, h)
	}

	ed.drawStatusBar(w, h)
}

func (ed *Editor) background() colorful.Color {
	if ed.sess.DarkMode() {
		return backgroundDark
	}
	return backgroundLight
}

// arcAt returns the top-most arc painted at (dx, dy), measured from the
// chart centre. Later arcs in the frame paint over earlier ones.
func arcAt(f wheel.Frame, dx, dy float64) *wheel.ArcFrame {
	r := math.Hypot(dx, dy)
	a := math.Atan2(dx, -dy)
	if a < 0 {
		a += 2 * math.Pi
	}
	var found *wheel.ArcFrame
	for i := range f.Arcs {
		arc := &f.Arcs[i]
		if r < arc.Inner || r >= arc.Outer || arc.X1 <= arc.X0 {
			continue
		}
		for _, t := range [...]float64{a, a - 2*math.Pi, a + 2*math.Pi} {
			if t >= arc.X0 && t < arc.X1 {
				found = arc
				break
			}
		}
	}
	return found
}

// cellColor composites an arc's fill over the background at its opacity.
func cellColor(arc *wheel.ArcFrame, bg colorful.Color) colorful.Color {
	if arc == nil || arc.Fill == wheel.Transparent {
		return bg
	}
	c, err := colorful.Hex(arc.Fill)
	if err != nil {
		c, _ = colorful.Hex(wheel.FallbackColor)
	}
	return bg.BlendRgb(c, clamp01(arc.Opacity))
}

func tcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// inkFor picks black or white text for a background.
func inkFor(bg colorful.Color) tcell.Color {
	l, _, _ := bg.Lab()
	if l > 0.6 {
		return tcell.ColorBlack
	}
	return tcell.ColorWhite
}

func (ed *Editor) drawWheel(f wheel.Frame, vp viewport) {
	bg := ed.background()
	radius := f.Geometry.Radius
	for y := vp.top; y < vp.top+vp.rows; y++ {
		for x := vp.left; x < vp.left+vp.cols; x++ {
			cx, cy, _ := vp.toChart(x, y)
			arc := arcAt(f, cx-radius, cy-radius)
			c := cellColor(arc, bg)
			style := styleDefault.Background(tcellColor(c)).Foreground(inkFor(c))
			r := ' '
			if arc != nil && arc.Selected {
				r = '•'
			}
			ed.screen.SetContent(x, y, r, nil, style)
		}
	}
}

// drawLabels writes the category names across the inner ring. The other
// rings are too narrow for text at terminal resolution.
func (ed *Editor) drawLabels(f wheel.Frame, vp viewport) {
	if vp.scale == 0 {
		return
	}
	radius := f.Geometry.Radius
	maxW := int(f.Geometry.RingWidth() / (vp.scale / 2))
	if maxW < 3 {
		return
	}
	for _, lf := range f.Labels {
		if lf.TextOpacity < 0.5 || lf.Opacity < 0.5 {
			continue
		}
		n := ed.chart.FindNodeByID(lf.ID)
		if n == nil || n.Layer() != taxonomy.LayerCategory {
			continue
		}
		text := truncate(lf.Text, maxW)
		x, y := vp.toCell(lf.X+radius, lf.Y+radius)
		x -= runewidth.StringWidth(text) / 2
		ed.drawOnCanvas(x, y, text)
	}
}

// drawOnCanvas writes text over already painted cells, keeping each cell's
// background.
func (ed *Editor) drawOnCanvas(x, y int, s string) {
	for _, r := range s {
		_, _, style, _ := ed.screen.GetContent(x, y)
		_, bg, _ := style.Decompose()
		fg := tcell.ColorBlack
		if bg != tcell.ColorDefault {
			rr, gg, bb := bg.RGB()
			fg = inkFor(colorful.Color{R: float64(rr) / 255, G: float64(gg) / 255, B: float64(bb) / 255})
		}
		ed.screen.SetContent(x, y, r, nil, style.Foreground(fg))
		x += runewidth.RuneWidth(r)
	}
}

func (ed *Editor) drawCenter(f wheel.Frame, vp viewport) {
	if vp.rows == 0 {
		return
	}
	cx, cy := vp.left+vp.cols/2, vp.top+vp.rows/2
	holeCols := int(2 * f.Geometry.CenterRadius / (vp.scale / 2))
	if holeCols < 4 {
		return
	}
	bg := ed.background()
	base := styleDefault.Background(tcellColor(bg)).Foreground(inkFor(bg))
	flavor := base
	switch f.Center.Kind {
	case wheel.CenterSelected, wheel.CenterHoverCategory:
		flavor = base.Foreground(colorAccentSelected).Bold(true)
	case wheel.CenterHover:
		flavor = base.Foreground(colorAccentHover).Bold(true)
	}

	if f.Center.Category != "" {
		s := truncate(f.Center.Category, holeCols)
		ed.drawString(cx-runewidth.StringWidth(s)/2, cy-1, s, base)
	}
	s := truncate(f.Center.Flavor, holeCols)
	ed.drawString(cx-runewidth.StringWidth(s)/2, cy, s, flavor)
}

func (ed *Editor) drawSidebar(w, h int) {
	divider := w - ed.sidebarWidth
	if divider < 0 {
		return
	}
	for y := 0; y < h-2; y++ {
		ed.screen.SetContent(divider, y, '│', nil, styleBorder)
	}
	x := divider + 2
	width := ed.sidebarWidth - 3
	y := 0
	bottom := h - 3

	doc := ed.sess.Document()
	title := doc.Name
	if title == "" {
		title = ed.sess.Drink()
	}
	ed.drawString(x, y, truncate(title, width), styleSidebarH)
	y++
	ed.drawString(x, y, truncate(fmt.Sprintf("%s · %s", ed.sess.Theme(), ed.sess.Lang()), width), styleSidebar)
	y += 2

	ed.drawString(x, y, "Selected:", styleSidebarH)
	y++
	tags := ed.sess.Tags()
	if len(tags) == 0 {
		ed.drawString(x, y, truncate(ed.sess.EmptyText(), width), styleHelp)
		y++
	}
	for i, tag := range tags {
		if y >= bottom {
			ed.drawString(x, y, "  ...", styleSidebar)
			return
		}
		style := styleSidebar
		if tag.Orphan {
			style = styleOrphan
		}
		if i == ed.selectedTag {
			style = styleMenuSel
		}
		swatch, _ := colorful.Hex(tag.Color)
		ed.screen.SetContent(x, y, '■', nil, styleDefault.Foreground(tcellColor(swatch)))
		text := tag.Text
		if tag.Custom {
			text += " +"
		}
		if tag.Orphan {
			text += " (" + ed.sess.Strings().Get(ed.sess.Lang(), locale.KeyOrphanHint) + ")"
		}
		ed.drawString(x+2, y, truncate(text, width-2), style)
		y++
	}
	y++

	if y < bottom {
		ed.drawString(x, y, fmt.Sprintf("Output (%s):", ed.sess.Mode()), styleSidebarH)
		y++
	}
	for _, line := range wrap(ed.sess.Output(), width) {
		if y >= bottom {
			break
		}
		ed.drawString(x, y, line, styleSidebar)
		y++
	}

	if a := ed.sess.Attribution(); a != "" && bottom > y {
		ed.drawString(x, bottom, truncate(a, width), styleHelp)
	}
}

func (ed *Editor) drawStatusBar(w, h int) {
	y := h - 1

	// Background
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	info := fmt.Sprintf("%s · %s · %s", ed.sess.Drink(), ed.sess.Lang(), ed.sess.Theme())
	if ed.sess.DarkMode() {
		info += " · dark"
	}
	ed.drawString(1, y, info, styleStatus)

	// Mode
	modeStr := ed.modeString()
	ed.drawString(w/2-runewidth.StringWidth(modeStr)/2, y, modeStr, styleStatus)

	// Message
	if ed.message != "" {
		style := styleMsgInfo
		switch ed.messageType {
		case MsgError:
			style = styleMsgError
		case MsgSuccess:
			style = styleMsgSuccess
		case MsgWarning:
			style = styleMsgWarning
		}
		if ed.flashing(time.Now().UnixMilli()) && shouldInvert(time.Now().UnixMilli()-ed.messageFlashStart) {
			style = style.Reverse(true)
		}
		ed.drawString(w-runewidth.StringWidth(ed.message)-2, y, ed.message, style)
	}

	// Help bar
	y = h - 2
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleDefault)
	}
	ed.drawString(1, y, ed.helpString(), styleHelp)
}

func (ed *Editor) drawInputBox(w, h int) {
	boxW := 50
	boxH := 3
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	ed.drawBox(boxX, boxY, boxW, boxH, styleInput)
	ed.drawString(boxX+2, boxY+1, ed.inputPrompt, styleInput)
	ed.drawString(boxX+2+runewidth.StringWidth(ed.inputPrompt), boxY+1, ed.inputBuffer+"_", styleInput)
}

func (ed *Editor) drawCategoryMenu(w, h int) {
	menuW := 36
	menuH := len(ed.menuItems) + 4
	startX := (w - menuW) / 2
	startY := (h - menuH) / 2
	if startX < 0 {
		startX = 0
	}
	if startY < 0 {
		startY = 0
	}

	ed.drawBox(startX, startY, menuW, menuH, styleMenu)
	ed.drawString(startX+2, startY+1, truncate(ed.sess.Strings().Get(ed.sess.Lang(), locale.KeyCategoryDefault)+": "+ed.pendingName, menuW-4), styleSidebarH)
	for i, item := range ed.menuItems {
		style := styleMenu
		if i == ed.menuSel {
			style = styleMenuSel
		}
		ed.drawString(startX+2, startY+3+i, truncate(item.Label, menuW-4), style)
	}
}

func (ed *Editor) drawBox(x, y, w, h int, style tcell.Style) {
	// Corners
	ed.screen.SetContent(x, y, '┌', nil, styleBorder)
	ed.screen.SetContent(x+w-1, y, '┐', nil, styleBorder)
	ed.screen.SetContent(x, y+h-1, '└', nil, styleBorder)
	ed.screen.SetContent(x+w-1, y+h-1, '┘', nil, styleBorder)

	// Horizontal borders
	for i := x + 1; i < x+w-1; i++ {
		ed.screen.SetContent(i, y, '─', nil, styleBorder)
		ed.screen.SetContent(i, y+h-1, '─', nil, styleBorder)
	}

	// Vertical borders
	for i := y + 1; i < y+h-1; i++ {
		ed.screen.SetContent(x, i, '│', nil, styleBorder)
		ed.screen.SetContent(x+w-1, i, '│', nil, styleBorder)
	}

	// Fill
	for row := y + 1; row < y+h-1; row++ {
		for col := x + 1; col < x+w-1; col++ {
			ed.screen.SetContent(col, row, ' ', nil, style)
		}
	}
}

// drawString writes s from column x, advancing two columns for wide runes.
func (ed *Editor) drawString(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		ed.screen.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
}

func (ed *Editor) modeString() string {
	switch ed.mode {
	case ModeInput:
		return "INPUT"
	case ModeSelectCategory:
		return "SELECT CATEGORY"
	default:
		return ""
	}
}

func (ed *Editor) helpString() string {
	switch ed.mode {
	case ModeInput:
		return "Type text  Enter:Confirm  Esc:Cancel"
	case ModeSelectCategory:
		return "↑↓:Select  Enter:Confirm  Esc:Cancel"
	default:
		return "Click:Pick  ↑↓:Tag  X:Remove  A:Custom  O:Origin  C:Clear  D:Drink  L:Lang  T:Theme  M:Output  Shift+D:Dark  Q:Quit"
	}
}

func shouldInvert(elapsed int64) bool {
	if elapsed < 0 || elapsed >= flashPeriod {
		return false
	}
	phase := elapsed / flashPhase
	return phase == 1 || phase == 3
}

func shouldFlash(msgType MessageType) bool {
	switch msgType {
	case MsgError, MsgSuccess, MsgWarning:
		return true
	}
	return false
}

// truncate shortens s to maxWidth display columns.
func truncate(s string, maxWidth int) string {
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// wrap breaks text into lines of at most width columns, at spaces where it
// can and anywhere when a word is too long.
func wrap(text string, width int) []string {
	if width <= 0 {
		return nil
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			for runewidth.StringWidth(word) > width {
				head := runewidth.Truncate(word, width, "")
				if head == "" {
					break
				}
				if line != "" {
					lines = append(lines, line)
					line = ""
				}
				lines = append(lines, head)
				word = word[len(head):]
			}
			switch {
			case word == "":
			case line == "":
				line = word
			case runewidth.StringWidth(line)+1+runewidth.StringWidth(word) <= width:
				line += " " + word
			default:
				lines = append(lines, line)
				line = word
			}
		}
		lines = append(lines, line)
	}
	return lines
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
