// Package commands implements mcprobe's cobra CLI surface (SPEC_FULL.md
// 6.2), grounded in dantte-lp-gobfd/cmd/gobfdctl/commands/root.go's
// persistent-flags-then-override pattern.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// configPath is the optional YAML config file (internal/config.Load).
	configPath string

	// inputPath overrides config.InputPath when non-empty.
	inputPath string

	// outputPath overrides config.OutputPath when non-empty.
	outputPath string

	// checkAuth overrides config.Scan.CheckAuth when the flag is set.
	checkAuth bool

	// concurrency overrides config.Scan.MaxConcurrent when > 0.
	concurrency int64
)

// rootCmd is the top-level cobra command for mcprobe.
var rootCmd = &cobra.Command{
	Use:   "mcprobe",
	Short: "Probe a list of Minecraft Java-edition servers",
	Long:  "mcprobe speaks the Minecraft Java-edition status and login-intent handshakes against a list of endpoints and writes a structured report.",
	// Silence cobra's built-in usage/error printing so Execute controls it.
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to configuration file (YAML)")
	rootCmd.PersistentFlags().StringVar(&inputPath, "input", "",
		"path to the endpoint list (overrides config input_path)")
	rootCmd.PersistentFlags().StringVar(&outputPath, "output", "",
		"path to write the JSON report (overrides config output_path)")
	rootCmd.PersistentFlags().BoolVar(&checkAuth, "check-auth", false,
		"run the auth-probe state machine for every endpoint")
	rootCmd.PersistentFlags().Int64Var(&concurrency, "concurrency", 0,
		"maximum simultaneously open sockets (overrides config scan.max_concurrent)")

	rootCmd.AddCommand(scanCmd())
}

// Execute runs the root command and exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
