package cmd

import (
	"fmt"
	"os"

	"github.com/alexiusacademia/gotno/internal/config"
	"github.com/alexiusacademia/gotno/internal/version"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	settings *config.Settings
)

var rootCmd = &cobra.Command{
	Use:   "gotno",
	Short: "Thrust Network Optimisation for masonry vaults",
	Long: `gotno - Go Thrust Network Optimisation

A CLI tool for the lower-bound limit analysis of masonry arches,
domes and vaults with the thrust network method.

This tool helps structural engineers:
  - Generate masonry envelopes (arch, dome, pavillion vault)
  - Generate form diagrams (arch, radial, orthogonal)
  - Find the minimum and maximum horizontal thrust
  - Find the thrust network for a support displacement
  - Find the maximum load factor of a point load
  - Locate cracks (hinges) where the thrust touches the envelope

Settings are read from --config (YAML, JSON or TOML), GOTNO_*
environment variables and the flags below.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		settings = s
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println()
		fmt.Println("  ╔═══════════════════════════════════════════════════════════╗")
		fmt.Println("  ║                                                           ║")
		fmt.Printf("  ║   gotno v%-49s║\n", version.Version)
		fmt.Println("  ║   Go Thrust Network Optimisation                          ║")
		fmt.Println("  ║   Alexius S. Academia ©  2025                             ║")
		fmt.Println("  ║                                                           ║")
		fmt.Println("  ╚═══════════════════════════════════════════════════════════╝")
		fmt.Println()
		fmt.Println("  Lower-bound limit analysis of masonry vaults")
		fmt.Println("  with the thrust network method.")
		fmt.Println()
		fmt.Println("  Features:")
		fmt.Println("    • Parametric arches, domes and pavillion vaults")
		fmt.Println("    • Minimum and maximum thrust analysis")
		fmt.Println("    • Support displacement (complementary energy) analysis")
		fmt.Println("    • Maximum load factor analysis")
		fmt.Println("    • Digitised vaults from JSON point, line and mesh files")
		fmt.Println()
		fmt.Println("  Use 'gotno --help' to see available commands.")
		fmt.Println()
		fmt.Println("  ─────────────────────────────────────────────────────────────")
		fmt.Printf("  Copyright © %s %s. All rights reserved.\n", version.Year, version.Author)
		fmt.Println()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (yaml, json or toml)")

	// Solver settings, bound to the config keys of the same name
	pf.String("solver", "auglag-bfgs", "Solver: auglag-bfgs or auglag-lbfgs")
	pf.Int("max-iter", 60, "Maximum outer iterations")
	pf.Float64("tol", 1e-6, "Constraint and objective tolerance")
	pf.Float64("friction", 0.75, "Support friction coefficient (reac_bounds)")
	pf.Float64("crack-tol", 1e-3, "Distance to the envelope counted as a crack (m)")
	pf.Bool("printout", false, "Print solver iterations")

	// Output settings
	pf.Float64("density", 20, "Masonry unit weight (kN/m³)")
	pf.String("output", "", "Directory for drawings and reports")
	pf.String("format", "yaml", "Report format: yaml or json")
}
