package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alexiusacademia/gotno/internal/service"
	"github.com/spf13/cobra"
)

var runResponseFile string

var runCmd = &cobra.Command{
	Use:   "run <request.json>",
	Short: "Solve a JSON request of form, shape and optimiser",
	Long: `Solve a request file holding the JSON data of a form diagram, a
shape and an optimiser:

{
  "form":      { ... },
  "shape":     { ... },
  "optimiser": { "objective": "min_thrust",
                 "constraints": ["funicular", "envelope"], ... }
}

The response carries the form lifted to the thrust network, the
optimiser with its status, message and fopt, and the full result.
Solver flags and config settings are not applied: the request is
solved as given.

Examples:
  gotno shape arch --save shape.json
  gotno form arch --save form.json
  gotno run request.json --response response.json`,
	Args: cobra.ExactArgs(1),
	Run:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runResponseFile, "response", "r", "", "Write the JSON response to this file")
}

func runRun(cmd *cobra.Command, args []string) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Printf("Error reading request: %v\n", err)
		return
	}

	ctx, stop := interruptible()
	defer stop()
	out, runErr := service.Handle(ctx, data)
	if out == nil {
		fmt.Printf("Error: %v\n", runErr)
		return
	}

	var resp service.Response
	if err := json.Unmarshal(out, &resp); err != nil {
		fmt.Printf("Error decoding response: %v\n", err)
		return
	}

	printHeader("THRUST NETWORK ANALYSIS - " + args[0])
	printShape(resp.Shape)
	printForm(resp.Form, -1)
	printResult(resp.Form, resp.Optimiser, resp.Result)
	if runErr != nil {
		fmt.Printf("Error: %v\n", runErr)
	}

	if runResponseFile != "" {
		if err := os.WriteFile(runResponseFile, out, 0644); err != nil {
			fmt.Printf("Error writing response: %v\n", err)
			return
		}
		fmt.Printf("Response written to: %s\n", runResponseFile)
	}
}
