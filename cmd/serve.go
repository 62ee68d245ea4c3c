package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"apdudispatch/apps"
	"apdudispatch/dispatch"
	"apdudispatch/registry"
	"apdudispatch/report"
	"apdudispatch/transport"
)

var serveAID string

var serveCmd = &cobra.Command{
	Use:   "serve <apdu-hex> [apdu-hex...]",
	Short: "Inject raw APDUs against a simulated contact endpoint",
	Long: `Run the dispatch core against a simulated contact transport,
feeding it one raw APDU per argument (hex-encoded, e.g. "00A4040007A0000000621122").

A reference Echo applet and a PIV-like applet are pre-registered. With
-r/--reader, each injected APDU is also mirrored against a real card on
that PC/SC reader for conformance comparison; the dispatcher's own
contact endpoint remains the simulated one (see transport.PCSC's doc
comment for why a PC/SC reader is not wired as ingress directly).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAID, "echo-aid", "A0000000621122", "AID (hex) for the reference Echo applet")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	aid, err := hex.DecodeString(serveAID)
	if err != nil {
		return fmt.Errorf("invalid --echo-aid: %w", err)
	}

	var mirror *transport.PCSC
	if readerIndex >= 0 {
		mirror, err = transport.ConnectPCSC(readerIndex)
		if err != nil {
			return fmt.Errorf("failed to connect reader %d: %w", readerIndex, err)
		}
		defer mirror.Close()
		report.PrintSuccess(fmt.Sprintf("mirroring against reader: %s", mirror.Name()))
	}

	log := report.NewLog(256)
	contact := transport.NewSimulated()
	contactless := transport.NewSimulated()
	reg := registry.New(
		apps.NewEcho(aid),
		apps.NewPIV([]byte{0xA0, 0x00, 0x00, 0x03, 0x08}),
	)
	disp := dispatch.New(contactless, contact, log)

	for _, h := range args {
		raw, err := hex.DecodeString(h)
		if err != nil {
			return fmt.Errorf("invalid APDU hex %q: %w", h, err)
		}
		if err := contact.Push(raw); err != nil {
			return fmt.Errorf("push %q: %w", h, err)
		}

		var resp []byte
		var ok bool
		for i := 0; i < 8 && !ok; i++ {
			disp.Poll(reg)
			resp, ok = contact.Sent()
		}
		if !ok {
			return fmt.Errorf("no response produced for %q within poll budget", h)
		}
		report.PrintSuccess(fmt.Sprintf("%s -> %X", h, resp))

		if mirror != nil {
			cardResp, err := mirror.MirrorToCard(raw)
			if err != nil {
				report.PrintWarning(fmt.Sprintf("mirror transmit failed: %v", err))
			} else {
				report.PrintSuccess(fmt.Sprintf("card mirror -> %X", cardResp))
			}
		}
	}

	report.PrintLog(log.Entries())
	return nil
}
