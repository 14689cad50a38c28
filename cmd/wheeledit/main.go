// Command wheeledit is a terminal flavor wheel: point at flavors with the
// mouse, pick them, and read the tasting note the picks produce.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ha1tch/flavor-wheel/internal/config"
	"github.com/ha1tch/flavor-wheel/internal/logging"
	"github.com/ha1tch/flavor-wheel/pkg/loader"
	"github.com/ha1tch/flavor-wheel/pkg/locale"
	"github.com/ha1tch/flavor-wheel/pkg/notebook"
	"github.com/ha1tch/flavor-wheel/pkg/taxonomy"
	"github.com/ha1tch/flavor-wheel/pkg/theme"
	"github.com/ha1tch/flavor-wheel/pkg/wheel"
)

// Mode represents the current editor mode
type Mode int

const (
	ModeWheel          Mode = iota
	ModeInput               // typing a custom flavor name or an origin
	ModeSelectCategory      // picking the category of a custom flavor
)

// MessageType for status messages
type MessageType int

const (
	MsgInfo    MessageType = iota // Informative, no flash
	MsgError                      // Errors, flash
	MsgSuccess                    // State changes, flash
	MsgWarning                    // Warnings, flash
)

// inputTarget says what a finished input line is for.
type inputTarget int

const (
	inputCustom inputTarget = iota
	inputOrigin
)

// Editor holds all editor state
type Editor struct {
	screen      tcell.Screen
	chart       *wheel.Wheel
	sess        *notebook.Session
	docs        map[string]*taxonomy.Document // shared with sess
	themes      *theme.Registry
	cfg         *config.Config
	cfgPath     string
	log         *zap.Logger
	mode        Mode
	message     string
	messageType MessageType

	messageFlashStart int64 // Unix milliseconds when message was shown

	sidebarWidth int
	selectedTag  int  // -1 = none
	mouseDown    bool // button 1 held; a click fires on press only

	// Input state
	inputPrompt string
	inputBuffer string
	inputFor    inputTarget
	pendingName string // custom flavor name waiting for a category
	menuItems   []notebook.Option
	menuSel     int

	animating atomic.Bool // read by the refresh ticker
	watcher   *loader.Watcher
}

func main() {
	var (
		configPath string
		logPath    string
		verbose    bool
	)
	pflag.StringVar(&configPath, "config", config.DefaultPath(), "config file")
	pflag.StringVar(&logPath, "log", filepath.Join(os.TempDir(), "wheeledit.log"), "log file")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pflag.Parse()

	cfg, err := config.Load(configPath)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if pflag.NArg() > 0 {
		cfg.Drink = pflag.Arg(0)
	}

	logger, err := logging.NewFile(logPath, verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ed, err := newEditor(context.Background(), cfg, configPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer ed.close()

	// Initialize screen
	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing screen: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse()
	screen.Clear()
	ed.screen = screen

	if cfg.Watch {
		ed.watch(context.Background())
	}

	ed.run()

	screen.Fini()
}

// newEditor loads every configured dataset and builds the chart and the
// session around it. The screen is attached later.
func newEditor(ctx context.Context, cfg *config.Config, cfgPath string, logger *zap.Logger) (*Editor, error) {
	docs, err := loader.Load(ctx, cfg.Sources(), logger)
	if err != nil {
		return nil, err
	}
	reg := theme.Builtin()
	for _, path := range cfg.ThemeFiles {
		if err := reg.AddFile(path); err != nil {
			return nil, fmt.Errorf("loading themes from %s: %w", path, err)
		}
	}
	doc, ok := docs[cfg.Drink]
	if !ok {
		return nil, fmt.Errorf("%w: %q", notebook.ErrUnknownDrink, cfg.Drink)
	}
	chart, err := wheel.New(doc, wheel.Options{
		Width:        cfg.Width,
		CenterRadius: cfg.CenterRadius,
		Lang:         cfg.Lang,
		Theme:        cfg.Theme,
		Themes:       reg,
		Duration:     cfg.Transition(),
		Ordering:     cfg.WheelOrdering(),
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}
	sess, err := notebook.NewSession(chart, notebook.Options{
		Docs:   docs,
		Drink:  cfg.Drink,
		Lang:   cfg.Lang,
		Theme:  cfg.Theme,
		Mode:   notebook.Mode(cfg.OutputMode),
		Dark:   cfg.DarkMode,
		Themes: reg,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	return &Editor{
		chart:        chart,
		sess:         sess,
		docs:         docs,
		themes:       reg,
		cfg:          cfg,
		cfgPath:      cfgPath,
		log:          logger,
		sidebarWidth: 34,
		selectedTag:  -1,
	}, nil
}

func (ed *Editor) close() {
	if ed.watcher != nil {
		ed.watcher.Stop()
	}
	ed.sess.Close()
}

// watch reloads file-backed datasets as they change. Updates are handed to
// the event loop so the chart is only touched from one goroutine.
func (ed *Editor) watch(ctx context.Context) {
	files := loader.FileSources(ed.cfg.Sources())
	if len(files) == 0 {
		return
	}
	w, err := loader.NewWatcher(files, ed.log)
	if err != nil {
		ed.log.Warn("dataset watch disabled", zap.Error(err))
		ed.showMessage("Watch disabled: "+err.Error(), MsgWarning)
		return
	}
	ed.watcher = w
	w.Start(ctx)
	go func() {
		for u := range w.Updates() {
			if err := ed.screen.PostEvent(tcell.NewEventInterrupt(u)); err != nil {
				ed.log.Warn("dropped dataset update", zap.String("name", u.Name), zap.Error(err))
			}
		}
	}()
}

func (ed *Editor) run() {
	// Use a goroutine to send periodic refresh events during transitions
	// and message flashes
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond) // 20fps
		defer ticker.Stop()
		for range ticker.C {
			if ed.animating.Load() {
				ed.screen.PostEvent(tcell.NewEventInterrupt(nil))
			}
		}
	}()

	for {
		ed.draw()
		ed.screen.Show()
		ed.animating.Store(ed.chart.Animating() || ed.flashing(time.Now().UnixMilli()))

		ev := ed.screen.PollEvent()
		if ev == nil {
			return
		}
		if ed.handleEvent(ev) {
			return
		}
	}
}

// handleEvent dispatches one event and reports whether the editor should
// quit.
func (ed *Editor) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		ed.screen.Sync()
	case *tcell.EventKey:
		return ed.handleKey(ev)
	case *tcell.EventMouse:
		ed.handleMouse(ev)
	case *tcell.EventInterrupt:
		if u, ok := ev.Data().(loader.Update); ok {
			ed.applyUpdate(u)
		}
	}
	return false
}

func (ed *Editor) handleKey(ev *tcell.EventKey) bool {
	switch ed.mode {
	case ModeInput:
		ed.handleInputKey(ev)
		return false
	case ModeSelectCategory:
		ed.handleCategoryKey(ev)
		return false
	}

	switch ev.Key() {
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyEscape:
		ed.selectedTag = -1
		return false
	case tcell.KeyUp:
		ed.moveTagCursor(-1)
		return false
	case tcell.KeyDown:
		ed.moveTagCursor(1)
		return false
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		ed.removeSelectedTag()
		return false
	case tcell.KeyRune:
	default:
		return false
	}

	switch ev.Rune() {
	case 'q':
		return true
	case 'l':
		ed.cycleLang()
	case 't':
		ed.cycleTheme()
	case 'd':
		ed.cycleDrink()
	case 'c':
		ed.chart.ClearSelection()
		ed.syncSelection()
		ed.showMessage("Selection cleared", MsgSuccess)
	case 'm':
		ed.toggleOutputMode()
	case 'x':
		ed.removeSelectedTag()
	case 'a':
		ed.startInput("Custom flavor: ", inputCustom, "")
	case 'o':
		ed.startInput("Origin: ", inputOrigin, ed.sess.Origin())
	case 'D':
		ed.toggleDark()
	}
	return false
}

func (ed *Editor) startInput(prompt string, target inputTarget, initial string) {
	ed.mode = ModeInput
	ed.inputPrompt = prompt
	ed.inputFor = target
	ed.inputBuffer = initial
}

func (ed *Editor) handleInputKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		ed.mode = ModeWheel
	case tcell.KeyEnter:
		ed.finishInput()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if r := []rune(ed.inputBuffer); len(r) > 0 {
			ed.inputBuffer = string(r[:len(r)-1])
		}
	case tcell.KeyRune:
		ed.inputBuffer += string(ev.Rune())
	}
}

func (ed *Editor) finishInput() {
	switch ed.inputFor {
	case inputOrigin:
		ed.sess.SetOrigin(ed.inputBuffer)
		ed.mode = ModeWheel
		ed.showMessage("Origin set", MsgSuccess)
	case inputCustom:
		ed.pendingName = ed.inputBuffer
		if ed.pendingName == "" {
			ed.mode = ModeWheel
			ed.showMessage(notebook.ErrEmptyName.Error(), MsgError)
			return
		}
		ed.menuItems = ed.sess.CategoryOptions()
		ed.menuSel = 0
		ed.mode = ModeSelectCategory
	}
}

func (ed *Editor) handleCategoryKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		ed.mode = ModeWheel
	case tcell.KeyUp:
		if ed.menuSel > 0 {
			ed.menuSel--
		}
	case tcell.KeyDown:
		if ed.menuSel < len(ed.menuItems)-1 {
			ed.menuSel++
		}
	case tcell.KeyEnter:
		ed.mode = ModeWheel
		if len(ed.menuItems) == 0 {
			return
		}
		cat := ed.menuItems[ed.menuSel]
		e, err := ed.sess.AddCustom(ed.pendingName, cat.ID)
		if err != nil {
			ed.showMessage(err.Error(), MsgError)
			return
		}
		lang := ed.sess.Lang()
		ed.showMessage(fmt.Sprintf("[%s] %s %s", cat.Label, e.DisplayLabel(lang), ed.sess.Strings().Get(lang, locale.KeyCustomAdded)), MsgSuccess)
	}
}

func (ed *Editor) handleMouse(ev *tcell.EventMouse) {
	if ed.mode != ModeWheel {
		return
	}
	x, y := ev.Position()
	w, h := ed.screen.Size()
	vp := ed.viewport(w, h)

	cx, cy, inside := vp.toChart(x, y)
	if !inside {
		ed.mouseDown = ev.Buttons()&tcell.Button1 != 0
		if ed.chart.Hovered() != "" {
			ed.chart.Leave()
		}
		return
	}
	pressed := ev.Buttons()&tcell.Button1 != 0
	ed.chart.PointerMove(cx, cy)
	if pressed && !ed.mouseDown {
		before := len(ed.chart.Selected())
		ed.chart.PointerClick(cx, cy)
		if len(ed.chart.Selected()) > before {
			ed.selectedTag = -1
		}
	}
	ed.mouseDown = pressed
}

// syncSelection hands the chart's selection to the session after a change
// the chart does not report.
func (ed *Editor) syncSelection() {
	ed.sess.HandleSelection(wheel.SelectionEvent{Selected: ed.chart.Selected(), Lang: ed.chart.Lang()})
	ed.selectedTag = -1
}

func (ed *Editor) moveTagCursor(delta int) {
	n := len(ed.sess.Tags())
	if n == 0 {
		ed.selectedTag = -1
		return
	}
	ed.selectedTag += delta
	if ed.selectedTag < 0 {
		ed.selectedTag = 0
	}
	if ed.selectedTag >= n {
		ed.selectedTag = n - 1
	}
}

func (ed *Editor) removeSelectedTag() {
	tags := ed.sess.Tags()
	if ed.selectedTag < 0 || ed.selectedTag >= len(tags) {
		ed.showMessage("No tag selected", MsgWarning)
		return
	}
	tag := tags[ed.selectedTag]
	if ed.sess.RemoveTag(tag.ID) {
		ed.showMessage("Removed "+tag.Text, MsgSuccess)
	}
	if ed.selectedTag >= len(tags)-1 {
		ed.selectedTag = len(tags) - 2
	}
}

func (ed *Editor) cycleLang() {
	langs := ed.sess.Strings().Languages()
	if len(langs) == 0 {
		return
	}
	next := langs[(indexOf(langs, ed.sess.Lang())+1)%len(langs)]
	ed.sess.SwitchLang(next)
	ed.showMessage("Language: "+next, MsgSuccess)
}

// cycleTheme moves to the next theme of the active theme's family.
func (ed *Editor) cycleTheme() {
	list := ed.themes.List(ed.themes.FamilyOf(ed.sess.Theme()))
	if len(list) == 0 {
		return
	}
	ids := make([]string, len(list))
	for i, th := range list {
		ids[i] = th.ID
	}
	next := ids[(indexOf(ids, ed.sess.Theme())+1)%len(ids)]
	if err := ed.sess.SwitchTheme(next); err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.showMessage("Theme: "+next, MsgSuccess)
}

func (ed *Editor) cycleDrink() {
	drinks := make([]string, 0, len(ed.docs))
	for name := range ed.docs {
		drinks = append(drinks, name)
	}
	sort.Strings(drinks)
	next := drinks[(indexOf(drinks, ed.sess.Drink())+1)%len(drinks)]
	if err := ed.sess.SwitchDrink(next); err != nil {
		ed.log.Error("drink switch failed", zap.String("drink", next), zap.Error(err))
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.selectedTag = -1
	ed.showMessage("Drink: "+next, MsgSuccess)
}

func (ed *Editor) toggleOutputMode() {
	next := notebook.ModeNote
	if ed.sess.Mode() == notebook.ModeNote {
		next = notebook.ModeList
	}
	if err := ed.sess.SwitchOutputMode(next); err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.showMessage("Output: "+string(next), MsgInfo)
}

// toggleDark flips dark mode and remembers it in the config file.
func (ed *Editor) toggleDark() {
	ed.cfg.DarkMode = ed.sess.ToggleDark()
	if err := ed.cfg.Save(ed.cfgPath); err != nil {
		ed.log.Warn("saving config", zap.String("path", ed.cfgPath), zap.Error(err))
		ed.showMessage("Could not save config: "+err.Error(), MsgError)
		return
	}
	if ed.cfg.DarkMode {
		ed.showMessage("Dark mode on", MsgSuccess)
	} else {
		ed.showMessage("Dark mode off", MsgSuccess)
	}
}

// applyUpdate installs a reloaded dataset. The chart is redrawn when it is
// showing that drink.
func (ed *Editor) applyUpdate(u loader.Update) {
	if u.Err != nil {
		ed.showMessage(fmt.Sprintf("Reload of %s failed: %v", u.Name, u.Err), MsgError)
		return
	}
	ed.docs[u.Name] = u.Doc
	if u.Name != ed.sess.Drink() {
		ed.showMessage("Reloaded "+u.Name, MsgInfo)
		return
	}
	if err := ed.chart.UpdateData(u.Doc); err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.showMessage("Reloaded "+u.Name, MsgSuccess)
}

func (ed *Editor) showMessage(msg string, msgType MessageType) {
	ed.message = msg
	ed.messageType = msgType
	ed.messageFlashStart = time.Now().UnixMilli()
	// Trigger immediate refresh for flash animation
	if ed.screen != nil {
		ed.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}
}

// flashing reports whether the status message is still inside its flash.
func (ed *Editor) flashing(now int64) bool {
	if ed.message == "" || ed.messageFlashStart == 0 || !shouldFlash(ed.messageType) {
		return false
	}
	elapsed := now - ed.messageFlashStart
	return elapsed >= 0 && elapsed < flashPeriod
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
