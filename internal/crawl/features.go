package crawl

// FeatureType is one entry of the feature catalog: a stable key for
// persistence and a display label.
type FeatureType struct {
	Key   string
	Label string
}

// FeatureColumn groups related feature types for the explore picker.
type FeatureColumn struct {
	Title string
	Types []FeatureType
}

// FeatureColumns is the picker layout: three themed columns covering the
// full catalog.
var FeatureColumns = []FeatureColumn{
	{Title: "Mystic", Types: []FeatureType{
		{"place_of_power", "Place of Power"},
		{"mystical_meddling", "Mystical Meddling"},
		{"portal", "Portal"},
		{"passage", "Passage"},
	}},
	{Title: "Danger", Types: []FeatureType{
		{"hazard", "Hazard"},
		{"dungeon", "Dungeon"},
		{"lair", "Lair"},
	}},
	{Title: "Civilization", Types: []FeatureType{
		{"outpost", "Outpost"},
		{"village", "Village"},
		{"town", "Town"},
		{"city", "City"},
		{"landmark", "Landmark"},
		{"attraction", "Attraction"},
	}},
}

// FeatureTypes flattens the columns in picker order.
func FeatureTypes() []FeatureType {
	var out []FeatureType
	for _, col := range FeatureColumns {
		out = append(out, col.Types...)
	}
	return out
}

// FeatureLabel returns the display label for a key, or "" if unknown.
func FeatureLabel(key string) string {
	for _, ft := range FeatureTypes() {
		if ft.Key == key {
			return ft.Label
		}
	}
	return ""
}

// Feature is the text block shown for a diamond on the right panel.
type Feature struct {
	Name     string
	Type     string
	Text     string
	Category string
}

// UnknownFeature is shown for diamonds not yet explored.
var UnknownFeature = Feature{
	Name: "Unknown",
	Type: "Unexplored",
	Text: "Press Enter to explore.",
}

// demoFeatures maps each severity label to a canned feature, used by the
// headless demo render when no sheet exists.
var demoFeatures = map[int]Feature{
	1: {
		Name: "The Field of Bones",
		Type: "Place of Power",
		Text: "A scholar academy covets the bones, but slinker hounds menace any scavenger bold " +
			"enough to gather them. The bones are piled here by an order of scholars returning from " +
			"expeditions across this region and beyond. Weird resonances attract a ghost singer who " +
			"hums through the site.",
		Category: "Into the Wilderness",
	},
	2: {
		Name: "The Missing Gate",
		Type: "Portal",
		Text: "Insecure warlords rely on it; conservative wizards despise it. It is 'missing' because " +
			"the other gates were found and razed. The worst of its history: it once sparked a " +
			"cataclysmic civil war in this area.",
		Category: "Stranger Places",
	},
	3: {
		Name: "The Spring Estate",
		Type: "Outpost",
		Text: "Nearby woods brim with rare herbs, but a walled-up dream-walker haunts the grounds. " +
			"A miller once fortified his mill here, and now a retired assassin quietly runs a " +
			"body-disposal service.",
		Category: "Settled Lands",
	},
	4: {
		Name: "Shrine of Chains",
		Type: "Place of Power",
		Text: "Undead guardians keep vigil while a royal bloodline vows to crush the site. Built for " +
			"grim rites: the heads of scholars are sacrificed to bind their knowledge to the shrine. " +
			"Pilgrims arrive seeking the will of an otherworldly patron.",
		Category: "The Underrealms",
	},
	5: {
		Name: "Upriver Ruin",
		Type: "Hazard",
		Text: "Primary danger: lethal wasps. Secondary threat: a mean drunk wizard. The site remains " +
			"unclaimed due to disputes over who rules these waters. Those who come may yet rescue " +
			"stranded locals.",
		Category: "On the High Seas",
	},
}

// DemoFeature returns the canned feature for a severity label, with a
// placeholder fallback for labels outside 1..5.
func DemoFeature(label int) Feature {
	if f, ok := demoFeatures[label]; ok {
		return f
	}
	return Feature{
		Name: "(no feature)",
		Text: "Select a numbered diamond (1-5) to view its details.",
	}
}
