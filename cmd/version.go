package cmd

import (
	"fmt"

	"github.com/alexiusacademia/gotno/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gotno",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String())
		fmt.Println("Thrust Network Optimisation for masonry vaults")
		fmt.Printf("Copyright © %s %s\n", version.Year, version.Author)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
