package cmd

import (
	"fmt"

	"github.com/alexiusacademia/gotno/internal/host"
	"github.com/alexiusacademia/gotno/internal/optimiser"
	"github.com/spf13/cobra"
)

var (
	vaultDir       string
	vaultSpec      = host.DefaultVault()
	vaultObjective string
	vaultMaxLambda float64
)

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Analyse a digitised vault from JSON selections",
	Long: `Analyse a vault digitised in a CAD program and exported as JSON files
in one directory:

  form.json           lines of the form diagram
  supports.json       support points
  intrados.json       intrados mesh {"vertices": [...], "faces": [...]}
  extrados.json       extrados mesh
  displacements.json  support displacement vectors (displacement)
  loads.json          load vectors, vertical extent in kN (max_load)

Every file holds one item or an array of items. The thrust network,
its elevation and plan, and a report are written to --output (the
selection directory by default).

Examples:
  gotno vault --dir sangelo --objective min_thrust --thk 0.25
  gotno vault --dir sangelo --objective max_load --max-lambda 200`,
	Run: runVault,
}

func init() {
	rootCmd.AddCommand(vaultCmd)

	vaultCmd.Flags().StringVarP(&vaultDir, "dir", "d", ".", "Directory of the JSON selections")
	vaultCmd.Flags().StringVar(&vaultSpec.Name, "name", vaultSpec.Name, "Name of the outputs")
	vaultCmd.Flags().Float64Var(&vaultSpec.Thickness, "thk", vaultSpec.Thickness, "Average thickness (m)")
	vaultCmd.Flags().StringVar(&vaultObjective, "objective", string(optimiser.MinThrust), "Objective: min_thrust, max_thrust, displacement, max_load")
	vaultCmd.Flags().Float64Var(&vaultMaxLambda, "max-lambda", optimiser.DefaultMaxLambda, "Upper bound of the load factor (max_load)")
}

func runVault(cmd *cobra.Command, args []string) {
	h := host.NewFileHost(vaultDir)
	if settings != nil {
		if settings.Output != "" {
			h.OutDir = settings.Output
		}
		h.Format = settings.Format
	}
	vaultSpec.Density = density()

	ctx, stop := interruptible()
	defer stop()
	resp, err := host.Analyse(ctx, h, vaultSpec, optimiser.Objective(vaultObjective), vaultMaxLambda, applySettings)
	if resp == nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	printHeader("DIGITISED VAULT ANALYSIS - " + vaultSpec.Name)
	printShape(resp.Shape)
	printForm(resp.Form, -1)
	printResult(resp.Form, resp.Optimiser, resp.Result)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
	}
	fmt.Printf("Outputs written to: %s\n", h.OutDir)
}
