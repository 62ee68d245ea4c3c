package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"apdudispatch/report"
	"apdudispatch/scenario"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Replay the built-in conformance scenario suite",
	Long: `Run the six reference scenarios (simple select, unknown AID,
ingress chaining, egress chaining, cross-interface interleave, spurious
GET RESPONSE) against a fresh in-memory Dispatcher and print a pass/fail
report.`,
	RunE: runScenario,
}

func init() {
	rootCmd.AddCommand(scenarioCmd)
}

func runScenario(cmd *cobra.Command, args []string) error {
	suite := scenario.NewSuite()
	results := suite.RunAll()

	rendered := make([]report.ScenarioResult, len(results))
	failed := 0
	for i, r := range results {
		rendered[i] = r.ToReport()
		if !r.Passed() {
			failed++
		}
	}
	report.PrintScenarioSummary(rendered)

	if failed > 0 {
		return fmt.Errorf("%d scenario(s) failed", failed)
	}
	return nil
}
