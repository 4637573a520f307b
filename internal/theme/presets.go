package theme

// Preset is a named built-in palette.
type Preset struct {
	Description string
	Colors      ColorConfig
}

// Presets are the palettes selectable with `theme.preset` in config.
var Presets = map[string]Preset{
	"default": {
		Description: "Orange on light gray",
		Colors:      Defaults(),
	},
	"ocean": {
		Description: "Blues with a slate background",
		Colors: ColorConfig{
			Primary:      "#0ea5e9",
			PrimaryLight: "#38bdf8",
			Secondary:    "#94a3b8",
			Background:   "#1e293b",
			Text:         "#e2e8f0",
			Tooltip:      "#f8fafc",
		},
	},
	"forest": {
		Description: "Greens on a dark background",
		Colors: ColorConfig{
			Primary:      "#16a34a",
			PrimaryLight: "#4ade80",
			Secondary:    "#6b7280",
			Background:   "#111827",
			Text:         "#d1fae5",
			Tooltip:      "#ecfdf5",
		},
	},
	"dracula": {
		Description: "Dracula purple and pink",
		Colors: ColorConfig{
			Primary:      "#BD93F9",
			PrimaryLight: "#FF79C6",
			Secondary:    "#6272A4",
			Background:   "#282A36",
			Text:         "#F8F8F2",
			Tooltip:      "#F8F8F2",
		},
	},
}
