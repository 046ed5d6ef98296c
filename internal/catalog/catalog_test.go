package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOfferValue(t *testing.T) {
	c := Defaults()
	c.values["dragon"] = 120

	if v := c.OfferValue(100, nil); v != 100 {
		t.Fatalf("coins only: %d", v)
	}
	if v := c.OfferValue(0, []string{"dragon"}); v != 120 {
		t.Fatalf("priced item: %d", v)
	}
	// Unpriced items fall back to the default value.
	if v := c.OfferValue(10, []string{"pebble", "pebble2"}); v != 12 {
		t.Fatalf("unpriced items: %d", v)
	}
}

func TestBalanced(t *testing.T) {
	c := Defaults()
	cases := []struct {
		va, vb int64
		want   bool
	}{
		{0, 0, true},     // empty for empty
		{100, 0, false},  // something for nothing
		{0, 100, false},
		{100, 100, true},
		{100, 50, true},  // exactly at the 50% floor
		{100, 49, false},
		{50, 100, true},  // symmetric
	}
	for _, tc := range cases {
		if got := c.Balanced(tc.va, tc.vb); got != tc.want {
			t.Fatalf("Balanced(%d, %d) = %v, want %v", tc.va, tc.vb, got, tc.want)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.yaml")
	data := "default_value: 2\nfair_min_pct: 60\nitems:\n  dragon: 120\n  sword: 15\n  junk: -1\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.ItemValue("dragon") != 120 || c.ItemValue("sword") != 15 {
		t.Fatalf("priced items: %d %d", c.ItemValue("dragon"), c.ItemValue("sword"))
	}
	if c.ItemValue("unknown") != 2 {
		t.Fatalf("default value: %d", c.ItemValue("unknown"))
	}
	// Non-positive values are dropped, not honored.
	if c.ItemValue("junk") != 2 {
		t.Fatalf("junk value: %d", c.ItemValue("junk"))
	}
	if c.Balanced(100, 59) {
		t.Fatalf("60%% floor not applied")
	}
	if !c.Balanced(100, 60) {
		t.Fatalf("60%% floor rejects boundary")
	}
}
