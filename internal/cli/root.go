// Package cli wires the cobra command tree. Running edumentor with no
// subcommand opens the interactive study session; the subcommands are
// one-shot equivalents for scripting.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"edumentor/internal/config"
)

// GlobalFlags holds flags shared across all commands.
type GlobalFlags struct {
	BackendURL string
	Mute       bool
	Verbose    bool
}

var globalFlags GlobalFlags

var rootCmd = &cobra.Command{
	Use:   "edumentor",
	Short: "Interactive study assistant for your own documents",
	Long: "edumentor turns uploaded study material into guided learning sessions:\n" +
		"question answering, five learning modes, and a voice-driven Vision Tutor.",
	RunE: runStudy,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.BackendURL, "backend", "", "backend base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.Mute, "mute", false, "never speak answers aloud")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(modeCmd)
	rootCmd.AddCommand(summariesCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads layered configuration and applies the global flags on top.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if globalFlags.BackendURL != "" {
		cfg.Backend.URL = globalFlags.BackendURL
	}
	if globalFlags.Mute {
		cfg.Mute = true
	}
	if globalFlags.Verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

func exitWith(code int, msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(code)
}
