package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"apdudispatch/report"
	"apdudispatch/transport"
)

var readersCmd = &cobra.Command{
	Use:   "readers",
	Short: "List available PC/SC smart card readers",
	Long: `List attached PC/SC readers, for use as -r/--reader with any
command that can mirror traffic against a real card.`,
	RunE: runReaders,
}

func init() {
	rootCmd.AddCommand(readersCmd)
}

func runReaders(cmd *cobra.Command, args []string) error {
	readers, err := transport.ListPCSCReaders()
	if err != nil {
		return fmt.Errorf("failed to list readers: %w", err)
	}
	report.PrintReaderList(readers)
	return nil
}
