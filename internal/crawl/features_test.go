package crawl

import "testing"

func TestFeatureColumns_CoverCatalog(t *testing.T) {
	if len(FeatureColumns) != 3 {
		t.Fatalf("picker expects 3 columns, got %d", len(FeatureColumns))
	}
	flat := FeatureTypes()
	if len(flat) != 13 {
		t.Fatalf("catalog should hold 13 types, got %d", len(flat))
	}
	seen := make(map[string]bool, len(flat))
	for _, ft := range flat {
		if ft.Key == "" || ft.Label == "" {
			t.Fatalf("catalog entry missing key or label: %+v", ft)
		}
		if seen[ft.Key] {
			t.Fatalf("duplicate catalog key %q", ft.Key)
		}
		seen[ft.Key] = true
	}
}

func TestFeatureLabel(t *testing.T) {
	if got := FeatureLabel("place_of_power"); got != "Place of Power" {
		t.Fatalf("label for place_of_power = %q", got)
	}
	if got := FeatureLabel("dungeon"); got != "Dungeon" {
		t.Fatalf("label for dungeon = %q", got)
	}
	if got := FeatureLabel("throne_room"); got != "" {
		t.Fatalf("unknown key should have no label, got %q", got)
	}
}

func TestDemoFeature_CoversLabels(t *testing.T) {
	for label := 1; label <= 5; label++ {
		f := DemoFeature(label)
		if f.Name == "" || f.Type == "" || f.Text == "" || f.Category == "" {
			t.Fatalf("demo feature %d incomplete: %+v", label, f)
		}
	}
	if DemoFeature(2).Name != "The Missing Gate" {
		t.Fatalf("demo feature 2 = %q", DemoFeature(2).Name)
	}
}

func TestDemoFeature_FallbackOutsideRange(t *testing.T) {
	for _, label := range []int{0, 6, -1} {
		f := DemoFeature(label)
		if f.Name != "(no feature)" {
			t.Fatalf("label %d should fall back, got %q", label, f.Name)
		}
	}
}

func TestUnknownFeature_PromptsExploration(t *testing.T) {
	if UnknownFeature.Type != "Unexplored" {
		t.Fatalf("unexplored placeholder type = %q", UnknownFeature.Type)
	}
	if UnknownFeature.Text == "" {
		t.Fatal("unexplored placeholder should carry a prompt")
	}
}
