package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/zjrosen/rangeslider/internal/config"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a rangeslider config file in the current directory",
	Long:  `Creates a .rangeslider/config.yaml file in the current directory with default settings.`,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := filepath.Join(config.ProjectDir, config.FileName)

	if err := config.WriteDefaultConfig(configPath); err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			return err
		}
		return fmt.Errorf("creating config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", configPath)
	return nil
}
