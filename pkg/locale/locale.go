// Package locale holds the user-facing strings of the flavor wheel in each
// supported language.
package locale

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
)

// Keys read by the chart itself.
const (
	KeyChartRoot       = "chart_root"
	KeyCategoryLabel   = "layer1_category_label"
	KeySelectFiner     = "select_finer_flavor"
	KeyFlavorAdded     = "flavor_added"
	KeyNoneSelected    = "no_flavors_selected"
	KeyCustomAdded     = "custom_flavor_added"
	KeyOrphanHint      = "orphan_hint"
	KeyCategoryDefault = "select_category_default"
)

// Keys read by hosts when generating output text.
const (
	KeyAIHeader   = "ai_friendly_header"
	KeyAIDrink    = "ai_friendly_drink"
	KeyAIOrigin   = "ai_friendly_origin"
	KeyAIFlavors  = "ai_friendly_flavors"
	KeyCoffeeType = "coffee_drink_type"
	KeyTeaType    = "tea_drink_type"
	KeyLuxuryType = "luxury_drink_type"
)

// FallbackLang is consulted when a key is missing in the requested language.
const FallbackLang = "en"

//go:embed strings.json
var builtinJSON []byte

// Table maps language code → key → text.
type Table map[string]map[string]string

// Builtin returns the embedded string table (zh, en, jp).
func Builtin() Table {
	t, err := Parse(builtinJSON)
	if err != nil {
		panic(err) // embedded table is part of the build
	}
	return t
}

// Parse reads a string table from JSON.
func Parse(data []byte) (Table, error) {
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing string table: %w", err)
	}
	return t, nil
}

// Get returns the text for key in lang, then in English, then the key itself.
func (t Table) Get(lang, key string) string {
	if s, ok := t[lang][key]; ok {
		return s
	}
	if s, ok := t[FallbackLang][key]; ok {
		return s
	}
	return key
}

// Has reports whether lang is present in the table.
func (t Table) Has(lang string) bool {
	_, ok := t[lang]
	return ok
}

// Languages returns the language codes in the table, sorted.
func (t Table) Languages() []string {
	langs := make([]string, 0, len(t))
	for l := range t {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}
