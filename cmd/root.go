// Package cmd implements the reference CLI: a thin Cobra front end over
// the dispatch/transport/registry/apps/scenario packages, mirroring the
// teacher's own cmd package structure (a root command plus one
// subcommand per concern).
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"

	// readerIndex selects a PC/SC reader for commands that can exercise a
	// real card as a conformance oracle alongside the simulated transport.
	readerIndex int
)

var rootCmd = &cobra.Command{
	Use:   "apdudispatch",
	Short: "APDU dispatch core reference CLI",
	Long: `apdudispatch v` + version + `

A single-applet-at-a-time APDU dispatcher arbitrating a contact and a
contactless transport endpoint, implementing ISO/IEC 7816-4 command
chaining on ingress and GET RESPONSE chaining on egress.

This tool supports:
  - Replaying the built-in conformance scenario suite
  - Injecting raw APDUs against a simulated transport
  - Listing attached PC/SC readers for conformance mirroring`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&readerIndex, "reader", "r", -1,
		"PC/SC reader index to mirror traffic against (see 'apdudispatch readers')")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetVersion returns the current version.
func GetVersion() string {
	return version
}
