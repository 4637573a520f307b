// Package cmd holds the rangeslider cobra commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/rangeslider/internal/config"
	"github.com/zjrosen/rangeslider/internal/log"
)

const debugLogFile = "rangeslider-debug.log"

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "rangeslider",
	Short: "Select a numeric range over a histogram in the terminal",
	Long: `rangeslider shows a dual-handle range slider with a histogram of the
configured distribution. Drag a handle or sweep across bars to select a range.
Every change is written to a JSON document and logged as a range-changed event.
The config file is watched and changes apply live.`,
	SilenceUsage: true,
	RunE:         runRoot,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default .rangeslider/config.yaml, then ~/.config/rangeslider/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false,
		"enable debug logging to "+debugLogFile)
	rootCmd.Flags().StringP("output", "o", "", "selected range document path")
	rootCmd.Flags().String("scale", "", "histogram scale override (linear, logarithmic, sqrt)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the located config file with the command flags bound over it.
func loadConfig(cmd *cobra.Command, path string) (config.Config, error) {
	v := viper.New()
	for key, flag := range map[string]string{"output": "output", "histogram_scale": "scale"} {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return config.Config{}, fmt.Errorf("binding --%s: %w", flag, err)
			}
		}
	}
	return config.Load(v, path)
}

// setupLogging enables the file logger when --debug or log_file is set.
func setupLogging(cfg config.Config) (func(), error) {
	path := cfg.LogFile
	if path == "" && debug {
		path = debugLogFile
	}
	if path == "" {
		return func() {}, nil
	}

	cleanup, err := log.Init(path)
	if err != nil {
		return func() {}, err
	}
	level := log.ParseLevel(cfg.LogLevel)
	if debug {
		level = log.LevelDebug
	}
	log.SetLevel(level)
	return cleanup, nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	path := config.Locate(cfgFile)
	cfg, err := loadConfig(cmd, path)
	if err != nil {
		return err
	}

	cleanup, err := setupLogging(cfg)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	defer cleanup()

	log.Info(log.CatConfig, "config loaded", "path", path)

	h := newHost(cmd, path, cfg)
	return h.run(cmd.Context())
}
