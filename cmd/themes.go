package cmd

import (
	"fmt"
	"sort"

	"github.com/zjrosen/rangeslider/internal/theme"

	"github.com/spf13/cobra"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available theme presets",
	Long:  `Display all built-in theme presets that can be used in your config file.`,
	Run:   runThemes,
}

func init() {
	rootCmd.AddCommand(themesCmd)
}

func runThemes(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Available theme presets:")
	fmt.Fprintln(out)

	// Sort preset names for consistent output
	names := make([]string, 0, len(theme.Presets))
	for name := range theme.Presets {
		names = append(names, name)
	}
	sort.Strings(names)

	maxLen := 0
	for _, name := range names {
		maxLen = max(maxLen, len(name))
	}

	for _, name := range names {
		preset := theme.Presets[name]
		fmt.Fprintf(out, "  %-*s  %s\n", maxLen, name, preset.Description)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Use in config.yaml:")
	fmt.Fprintln(out, "  theme:")
	fmt.Fprintln(out, "    preset: ocean")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Override specific colors:")
	fmt.Fprintln(out, "  theme:")
	fmt.Fprintln(out, "    preset: dracula")
	fmt.Fprintln(out, "    colors:")
	fmt.Fprintln(out, "      primary: \"#FF0000\"")
}
