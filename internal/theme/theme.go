// Package theme holds the six-slot color configuration shared by the
// histogram and slider views, plus the lipgloss styles derived from it.
package theme

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// ColorConfig names the six color slots. Values are hex strings ("#f97316").
type ColorConfig struct {
	Primary      string `mapstructure:"primary" yaml:"primary" json:"primary"`
	PrimaryLight string `mapstructure:"primary_light" yaml:"primary_light" json:"primaryLight"`
	Secondary    string `mapstructure:"secondary" yaml:"secondary" json:"secondary"`
	Background   string `mapstructure:"background" yaml:"background" json:"background"`
	Text         string `mapstructure:"text" yaml:"text" json:"text"`
	Tooltip      string `mapstructure:"tooltip" yaml:"tooltip" json:"tooltip"`
}

// DimmedOpacity is applied to histogram bars outside the selected range.
const DimmedOpacity = 0.3

// ErrUnknownPreset is returned when a preset name has no definition.
var ErrUnknownPreset = errors.New("unknown theme preset")

// Defaults returns the built-in color for every slot.
func Defaults() ColorConfig {
	return ColorConfig{
		Primary:      "#f97316",
		PrimaryLight: "#fb923c",
		Secondary:    "#d1d5db",
		Background:   "#f3f4f6",
		Text:         "#1f2937",
		Tooltip:      "#1f2937",
	}
}

// Merge fills every empty slot of overrides from base. Slots are resolved
// independently; one empty override never resets the others.
func Merge(overrides, base ColorConfig) ColorConfig {
	pick := func(override, fallback string) string {
		if strings.TrimSpace(override) != "" {
			return override
		}
		return fallback
	}
	return ColorConfig{
		Primary:      pick(overrides.Primary, base.Primary),
		PrimaryLight: pick(overrides.PrimaryLight, base.PrimaryLight),
		Secondary:    pick(overrides.Secondary, base.Secondary),
		Background:   pick(overrides.Background, base.Background),
		Text:         pick(overrides.Text, base.Text),
		Tooltip:      pick(overrides.Tooltip, base.Tooltip),
	}
}

// Resolve merges overrides over the named preset, or over Defaults when
// preset is empty.
func Resolve(preset string, overrides ColorConfig) (ColorConfig, error) {
	if strings.TrimSpace(preset) == "" {
		return Merge(overrides, Defaults()), nil
	}
	p, ok := Presets[preset]
	if !ok {
		return Merge(overrides, Defaults()), fmt.Errorf("%w: %q", ErrUnknownPreset, preset)
	}
	return Merge(overrides, p.Colors), nil
}

// Blend mixes fg toward bg so that fg appears at the given opacity.
// Unparseable colors return fg unchanged.
func Blend(fg, bg string, opacity float64) string {
	if opacity >= 1 {
		return fg
	}
	f, err := colorful.Hex(fg)
	if err != nil {
		return fg
	}
	b, err := colorful.Hex(bg)
	if err != nil {
		return fg
	}
	if opacity < 0 {
		opacity = 0
	}
	// BlendRgb(b, t) moves from f toward b as t goes 0 -> 1
	return b.BlendRgb(f, opacity).Clamped().Hex()
}

// Styles is the set of lipgloss styles the views render with.
type Styles struct {
	Bar          lipgloss.Style
	BarDimmed    lipgloss.Style
	ZeroLine     lipgloss.Style
	Track        lipgloss.Style
	Fill         lipgloss.Style
	Handle       lipgloss.Style
	HandleActive lipgloss.Style // handle being dragged or hovered
	Label        lipgloss.Style
	Value        lipgloss.Style
	Tooltip      lipgloss.Style
}

// NewStyles builds Styles from a resolved color config.
func NewStyles(c ColorConfig) Styles {
	primary := lipgloss.Color(c.Primary)
	return Styles{
		Bar:          lipgloss.NewStyle().Foreground(primary),
		BarDimmed:    lipgloss.NewStyle().Foreground(lipgloss.Color(Blend(c.Primary, c.Background, DimmedOpacity))),
		ZeroLine:     lipgloss.NewStyle().Foreground(lipgloss.Color(Blend(c.Text, c.Background, DimmedOpacity))),
		Track:        lipgloss.NewStyle().Foreground(lipgloss.Color(c.Secondary)),
		Fill:         lipgloss.NewStyle().Foreground(primary),
		Handle:       lipgloss.NewStyle().Foreground(primary).Bold(true),
		HandleActive: lipgloss.NewStyle().Foreground(lipgloss.Color(c.PrimaryLight)).Bold(true),
		Label:        lipgloss.NewStyle().Foreground(lipgloss.Color(c.Text)).Bold(true),
		Value:        lipgloss.NewStyle().Foreground(lipgloss.Color(c.Text)),
		Tooltip: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Tooltip)).
			Background(lipgloss.Color(c.Background)),
	}
}
