// Package notebook keeps the state of a tasting session around a flavor
// wheel: which drink is open, which flavors the taster has picked (from the
// wheel or typed in), and the text generated from them.
package notebook

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ha1tch/flavor-wheel/pkg/locale"
	"github.com/ha1tch/flavor-wheel/pkg/taxonomy"
	"github.com/ha1tch/flavor-wheel/pkg/theme"
	"github.com/ha1tch/flavor-wheel/pkg/wheel"
)

var (
	ErrUnknownDrink    = errors.New("unknown drink")
	ErrUnknownTheme    = errors.New("unknown theme")
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownMode     = errors.New("unknown output mode")
	ErrEmptyName       = errors.New("custom flavor needs a name")
)

// CustomPrefix starts the id of every custom entry.
const CustomPrefix = "custom-"

// Chart is the part of a wheel a session drives.
type Chart interface {
	UpdateData(doc *taxonomy.Document) error
	UpdateTheme(id string)
	UpdateLanguage(lang string)
	DeselectByID(id string)
	Subscribe(fn func(wheel.SelectionEvent)) (unsubscribe func())
}

// Options configures a Session.
type Options struct {
	Docs    map[string]*taxonomy.Document // keyed by drink
	Drink   string
	Lang    string
	Theme   string
	Mode    Mode
	Origin  string
	Dark    bool
	Themes  *theme.Registry
	Strings locale.Table
	Logger  *zap.Logger
}

// Session is the application state shared by a wheel and the panels around
// it. Like the wheel it is meant to be used from one goroutine.
type Session struct {
	chart   Chart
	docs    map[string]*taxonomy.Document
	themes  *theme.Registry
	strs    locale.Table
	log     *zap.Logger
	newID   func() string
	unsub   func()
	drink   string
	lang    string
	theme   string
	mode    Mode
	origin  string
	dark    bool
	entries []taxonomy.Entry
}

// NewSession attaches a session to chart. The chart is expected to be
// showing opts.Docs[opts.Drink] already.
func NewSession(chart Chart, opts Options) (*Session, error) {
	if _, ok := opts.Docs[opts.Drink]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDrink, opts.Drink)
	}
	if opts.Lang == "" {
		opts.Lang = wheel.DefaultLang
	}
	if opts.Theme == "" {
		opts.Theme = wheel.DefaultTheme
	}
	if opts.Mode == "" {
		opts.Mode = ModeList
	}
	if opts.Themes == nil {
		opts.Themes = theme.Builtin()
	}
	if opts.Strings == nil {
		opts.Strings = locale.Builtin()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &Session{
		chart:  chart,
		docs:   opts.Docs,
		themes: opts.Themes,
		strs:   opts.Strings,
		log:    opts.Logger,
		newID:  func() string { return CustomPrefix + uuid.NewString() },
		drink:  opts.Drink,
		lang:   opts.Lang,
		theme:  opts.Theme,
		mode:   opts.Mode,
		origin: strings.TrimSpace(opts.Origin),
		dark:   opts.Dark,
	}
	s.unsub = chart.Subscribe(s.HandleSelection)
	return s, nil
}

// Close detaches the session from its chart.
func (s *Session) Close() {
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
}

// HandleSelection replaces the wheel entries with those reported by the
// chart. Custom entries are kept and stay in front.
func (s *Session) HandleSelection(ev wheel.SelectionEvent) {
	var next []taxonomy.Entry
	for _, e := range s.entries {
		if e.IsCustom {
			next = append(next, e)
		}
	}
	s.entries = append(next, ev.Selected...)
}

// AddCustom adds a flavor the taster typed in, filed under a category of
// the current drink.
func (s *Session) AddCustom(name, categoryID string) (taxonomy.Entry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return taxonomy.Entry{}, ErrEmptyName
	}
	cat := s.Document().Find(categoryID)
	if cat == nil || cat.Layer != taxonomy.LayerCategory {
		return taxonomy.Entry{}, fmt.Errorf("%w: %q", ErrUnknownCategory, categoryID)
	}

	label := taxonomy.Label{s.lang: name}
	for _, lang := range s.strs.Languages() {
		label[lang] = name
	}
	e := taxonomy.Entry{
		ID:       s.newID(),
		Layer:    taxonomy.LayerSubcategory,
		Label:    label,
		IsCustom: true,
		L1ID:     categoryID,
	}
	s.entries = append(s.entries, e)
	s.log.Debug("custom flavor added", zap.String("id", e.ID), zap.String("category", categoryID))
	return e, nil
}

// RemoveTag drops an entry. Entries that came from the wheel are deselected
// there too. It reports whether anything was removed.
func (s *Session) RemoveTag(id string) bool {
	for i, e := range s.entries {
		if e.ID != id {
			continue
		}
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
		if !e.IsCustom {
			s.chart.DeselectByID(id)
		}
		return true
	}
	return false
}

// SetOrigin records where the drink comes from, for note output.
func (s *Session) SetOrigin(origin string) {
	s.origin = strings.TrimSpace(origin)
}

// SwitchDrink loads another drink's taxonomy into the chart. Moving into or
// out of the luxury drink also moves to that family's default theme. The
// selection is kept; entries the new taxonomy lacks show up as orphans.
func (s *Session) SwitchDrink(drink string) error {
	doc, ok := s.docs[drink]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDrink, drink)
	}
	if drink == s.drink {
		return nil
	}
	const luxury = "luxury"
	prev := s.theme
	switch {
	case drink == luxury && s.drink != luxury:
		s.theme = s.themes.Default(theme.FamilyLuxury)
	case drink != luxury && s.drink == luxury:
		s.theme = s.themes.Default(theme.FamilyStandard)
	}
	s.chart.UpdateTheme(s.theme)
	if err := s.chart.UpdateData(doc); err != nil {
		s.theme = prev
		s.chart.UpdateTheme(prev)
		return fmt.Errorf("switching to %s: %w", drink, err)
	}
	s.drink = drink
	s.log.Info("drink switched", zap.String("drink", drink), zap.String("theme", s.theme))
	return nil
}

// SwitchLang changes the display language of the chart and the output.
func (s *Session) SwitchLang(lang string) {
	if lang == s.lang {
		return
	}
	s.lang = lang
	s.chart.UpdateLanguage(lang)
}

// SwitchTheme repaints the chart with a registered theme.
func (s *Session) SwitchTheme(id string) error {
	if !s.themes.Has(id) {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, id)
	}
	if id == s.theme {
		return nil
	}
	s.theme = id
	s.chart.UpdateTheme(id)
	return nil
}

// SwitchOutputMode selects list or note output.
func (s *Session) SwitchOutputMode(m Mode) error {
	switch m {
	case ModeList, ModeNote:
		s.mode = m
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownMode, m)
}

// ToggleDark flips the dark-mode preference and returns the new value.
func (s *Session) ToggleDark() bool {
	s.dark = !s.dark
	return s.dark
}

// Attribution returns the data source credit of the current drink.
func (s *Session) Attribution() string {
	return s.Document().Attribution.Get(s.lang, "")
}

// Option is one choice of the custom flavor category picker.
type Option struct {
	ID    string
	Label string
}

// CategoryOptions lists the categories of the current drink in document
// order.
func (s *Session) CategoryOptions() []Option {
	var out []Option
	for _, c := range s.Document().Children {
		if c.Layer != taxonomy.LayerCategory {
			continue
		}
		out = append(out, Option{ID: c.ID, Label: c.DisplayLabel(s.lang)})
	}
	return out
}

// Document returns the taxonomy of the current drink.
func (s *Session) Document() *taxonomy.Document { return s.docs[s.drink] }

// Selected returns a copy of the session entries, custom entries first.
func (s *Session) Selected() []taxonomy.Entry {
	return append([]taxonomy.Entry(nil), s.entries...)
}

func (s *Session) Drink() string { return s.drink }
func (s *Session) Lang() string { return s.lang }
func (s *Session) Theme() string { return s.theme }
func (s *Session) Mode() Mode { return s.mode }
func (s *Session) Origin() string { return s.origin }
func (s *Session) DarkMode() bool { return s.dark }
func (s *Session) Strings() locale.Table { return s.strs }
