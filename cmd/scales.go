package cmd

import (
	"fmt"

	"github.com/zjrosen/rangeslider/internal/histogram"

	"github.com/spf13/cobra"
)

var scalesCmd = &cobra.Command{
	Use:   "scales",
	Short: "List histogram scales",
	Long:  `Display the transforms that can be used for histogram_scale or --scale.`,
	Run:   runScales,
}

func init() {
	rootCmd.AddCommand(scalesCmd)
}

func runScales(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Available histogram scales:")
	fmt.Fprintln(out)

	maxLen := 0
	for _, s := range histogram.Scales {
		maxLen = max(maxLen, len(s))
	}
	for _, s := range histogram.Scales {
		fmt.Fprintf(out, "  %-*s  %s\n", maxLen, s, s.Description())
	}
}
