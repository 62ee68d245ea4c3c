package report

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
)

// ScenarioResult is the generic shape report renders a scenario run as.
// It carries no dependency on the scenario package itself -- the caller
// converts its own richer result type into this one, the same way the
// teacher's output package keeps its own copy of TestResult/TestSummary
// shapes rather than importing the testing package.
type ScenarioResult struct {
	Name     string
	Passed   bool
	Request  string
	Expected string
	Actual   string
	Error    string
}

// PrintScenarioSummary renders a scenario.Suite run, mirroring the
// teacher's output.PrintTestSummary.
func PrintScenarioSummary(results []ScenarioResult) {
	if len(results) == 0 {
		PrintWarning("No scenario results")
		return
	}

	passed, failed := 0, 0
	for _, r := range results {
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}
	passRate := float64(passed) / float64(len(results)) * 100

	fmt.Println()
	t := newTable()
	t.SetTitle("SCENARIO SUITE SUMMARY")
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Colors: colorLabel, WidthMin: 20},
		{Number: 2, Colors: colorValue, WidthMin: 15},
	})
	t.AppendRow(table.Row{"Total", len(results)})
	t.AppendRow(table.Row{"Passed", colorSuccess.Sprintf("%d", passed)})
	t.AppendRow(table.Row{"Failed", colorError.Sprintf("%d", failed)})
	t.AppendRow(table.Row{"Pass Rate", fmt.Sprintf("%.1f%%", passRate)})
	t.Render()

	fmt.Println()
	t2 := newTable()
	t2.SetTitle("SCENARIO DETAIL")
	t2.AppendHeader(table.Row{"Status", "Name", "Request", "Expected", "Actual"})
	t2.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 6},
		{Number: 2, Colors: colorLabel, WidthMin: 20},
		{Number: 3, Colors: colorValue, WidthMin: 24},
		{Number: 4, Colors: colorValue, WidthMin: 18},
		{Number: 5, Colors: colorValue, WidthMin: 18},
	})
	for _, r := range results {
		status := colorSuccess.Sprint("✓")
		actual := r.Actual
		if !r.Passed {
			status = colorError.Sprint("✗")
			if r.Error != "" {
				actual = r.Error
			}
		}
		t2.AppendRow(table.Row{status, r.Name, r.Request, r.Expected, actual})
	}
	t2.Render()
}
