package locale

import "testing"

func TestBuiltinGet(t *testing.T) {
	tab := Builtin()
	tests := []struct {
		lang, key, want string
	}{
		{"zh", KeyChartRoot, "風味輪"},
		{"jp", KeyChartRoot, "風味の輪"},
		{"en", KeySelectFiner, "Pick a finer flavor"},
		{"fr", KeyChartRoot, "Flavor Wheel"},
		{"en", "no_such_key", "no_such_key"},
	}
	for _, tt := range tests {
		if got := tab.Get(tt.lang, tt.key); got != tt.want {
			t.Errorf("Get(%q, %q) = %q, want %q", tt.lang, tt.key, got, tt.want)
		}
	}
}

func TestEveryLanguageHasEveryKey(t *testing.T) {
	tab := Builtin()
	for key := range tab[FallbackLang] {
		for _, lang := range tab.Languages() {
			if _, ok := tab[lang][key]; !ok {
				t.Errorf("%s is missing key %q", lang, key)
			}
		}
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("[1,2")); err == nil {
		t.Error("expected an error")
	}
}
