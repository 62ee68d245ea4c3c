package report

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Color styles, matching the teacher's output package palette.
var (
	colorHeader  = text.Colors{text.FgCyan, text.Bold}
	colorLabel   = text.Colors{text.FgYellow}
	colorValue   = text.Colors{text.FgWhite}
	colorSuccess = text.Colors{text.FgGreen}
	colorError   = text.Colors{text.FgRed}
	colorWarn    = text.Colors{text.FgYellow}
)

func getTableStyle() table.Style {
	style := table.StyleRounded
	style.Color.Header = colorHeader
	style.Color.Row = text.Colors{text.FgWhite}
	style.Color.RowAlternate = text.Colors{text.FgHiWhite}
	style.Options.SeparateRows = false
	return style
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(getTableStyle())
	t.Style().Options.SeparateRows = false
	return t
}

// PrintLog renders a dispatcher activity log as a table.
func PrintLog(entries []Entry) {
	fmt.Println()
	t := newTable()
	t.SetTitle("DISPATCHER ACTIVITY LOG")
	t.AppendHeader(table.Row{"#", "Interface", "Event", "Detail"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Colors: colorLabel, WidthMin: 5},
		{Number: 2, Colors: colorValue, WidthMin: 12},
		{Number: 3, Colors: colorValue, WidthMin: 14},
		{Number: 4, Colors: colorValue, WidthMax: 60},
	})

	if len(entries) == 0 {
		t.AppendRow(table.Row{"-", "-", "(empty)", "-"})
	} else {
		for _, e := range entries {
			iface := e.Iface
			if iface == "" {
				iface = "-"
			}
			t.AppendRow(table.Row{e.Seq, iface, e.Event, e.Detail})
		}
	}
	t.Render()
}

// PrintReaderList prints available PC/SC readers, matching the teacher's
// output.PrintReaderList.
func PrintReaderList(readers []string) {
	fmt.Println()
	t := newTable()
	t.SetTitle("AVAILABLE SMART CARD READERS")
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Colors: colorLabel, WidthMin: 8},
		{Number: 2, Colors: colorValue, WidthMin: 50},
	})

	if len(readers) == 0 {
		t.AppendRow(table.Row{"Status", colorWarn.Sprint("No readers found")})
	} else {
		for i, r := range readers {
			t.AppendRow(table.Row{fmt.Sprintf("[%d]", i), r})
		}
	}
	t.Render()
}

// PrintError prints an error message.
func PrintError(msg string) {
	fmt.Println(colorError.Sprintf("✗ Error: %s", msg))
}

// PrintSuccess prints a success message.
func PrintSuccess(msg string) {
	fmt.Println(colorSuccess.Sprintf("✓ %s", msg))
}

// PrintWarning prints a warning message.
func PrintWarning(msg string) {
	fmt.Println(colorWarn.Sprintf("⚠ %s", msg))
}
