package notebook

import (
	"fmt"
	"strings"

	"github.com/ha1tch/flavor-wheel/pkg/locale"
	"github.com/ha1tch/flavor-wheel/pkg/taxonomy"
)

// Mode selects what Output generates.
type Mode string

const (
	// ModeList joins the picked flavor names with the drink's separator.
	ModeList Mode = "list"
	// ModeNote fills the drink's social note template and prefixes a
	// machine-readable summary.
	ModeNote Mode = "note"
)

// Template placeholders.
const (
	PlaceholderOrigin  = "{{origin}}"
	PlaceholderDrink   = "{{drink}}"
	PlaceholderFlavors = "{{flavors}}"
)

// FlavorText joins the labels of every entry, custom ones included, in the
// current language.
func (s *Session) FlavorText() string {
	labels := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		labels = append(labels, e.DisplayLabel(s.lang))
	}
	return strings.Join(labels, s.Document().SeparatorFor(s.lang))
}

// Output generates the text for the current output mode.
func (s *Session) Output() string {
	flavors := s.FlavorText()
	if s.mode != ModeNote {
		return flavors
	}

	doc := s.Document()
	note := strings.NewReplacer(
		PlaceholderOrigin, s.origin,
		PlaceholderDrink, s.strs.Get(s.lang, drinkKey(doc.DrinkType)),
		PlaceholderFlavors, flavors,
	).Replace(doc.TemplateFor(taxonomy.TemplateSocialNote, s.lang))

	origin := s.origin
	if origin == "" {
		origin = "N/A"
	}
	var sb strings.Builder
	sb.WriteString(s.strs.Get(s.lang, locale.KeyAIHeader))
	sb.WriteString(fmt.Sprintf("%s: %s\n", s.strs.Get(s.lang, locale.KeyAIDrink), doc.DrinkType))
	sb.WriteString(fmt.Sprintf("%s: %s\n", s.strs.Get(s.lang, locale.KeyAIOrigin), origin))
	sb.WriteString(fmt.Sprintf("%s (%s): %s\n", s.strs.Get(s.lang, locale.KeyAIFlavors), s.lang, flavors))
	sb.WriteString("---\n")
	sb.WriteString(note)
	return sb.String()
}

// drinkKey names the localized word for a drink type.
func drinkKey(drinkType string) string {
	switch drinkType {
	case "coffee":
		return locale.KeyCoffeeType
	case "luxury":
		return locale.KeyLuxuryType
	default:
		return locale.KeyTeaType
	}
}
