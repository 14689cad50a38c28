package wheel

import (
	"testing"

	"github.com/ha1tch/flavor-wheel/pkg/taxonomy"
	"github.com/ha1tch/flavor-wheel/pkg/theme"
)

func TestArcColor(t *testing.T) {
	root := Partition(parseDoc(t, `{"children":[
	  {"id":"a","layer":1,"label":{},"children":[
	    {"id":"a1","layer":2,"label":{},"children":[
	      {"id":"a1x","layer":3,"label":{},"children":[]}
	    ]},
	    {"id":"a2","layer":2,"label":{},"children":[]}
	  ]},
	  {"id":"b","layer":1,"label":{},"children":[]}
	]}`).Root(), Ordering{})

	pal := theme.Palette{"a": "#111111", "a2": "#222222", "b": ""}
	tests := []struct {
		id   string
		want string
	}{
		{taxonomy.RootID, Transparent},
		{"a", "#111111"},
		{"a1", "#111111"},
		{"a1x", "#111111"},
		{"a2", "#222222"},
		{"b", FallbackColor},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			n := root.Find(tt.id)
			if n == nil {
				t.Fatalf("%s not laid out", tt.id)
			}
			if got := ArcColor(n, pal); got != tt.want {
				t.Errorf("ArcColor(%s) = %s, want %s", tt.id, got, tt.want)
			}
		})
	}

	if got := ArcColor(root.Find("a1x"), nil); got != FallbackColor {
		t.Errorf("nil palette: got %s", got)
	}
}

func TestParseColorFallsBack(t *testing.T) {
	if got := parseColor("not a colour").Hex(); got != FallbackColor {
		t.Errorf("got %s, want %s", got, FallbackColor)
	}
	if got := parseColor("#D05663").Hex(); got != "#d05663" {
		t.Errorf("got %s", got)
	}
}

func TestBlendEndpoints(t *testing.T) {
	a, b := parseColor("#000000"), parseColor("#ffffff")
	if got := blend(a, b, 0).Hex(); got != "#000000" {
		t.Errorf("t=0: %s", got)
	}
	if got := blend(a, b, 1).Hex(); got != "#ffffff" {
		t.Errorf("t=1: %s", got)
	}
	if got := blend(a, b, 0.5).Hex(); got == "#000000" || got == "#ffffff" {
		t.Errorf("t=0.5 should be between: %s", got)
	}
}
