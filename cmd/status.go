package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ferasOS/calabash-ios/internal/config"
	"github.com/ferasOS/calabash-ios/internal/keyboard"
	"github.com/ferasOS/calabash-ios/internal/ui"
)

var statusStrict bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current keyboard mode",
	Long: `Show which keyboard layout is on screen: docked, undocked, split or unknown.

With --strict the command fails when no keyboard is visible, and a screenshot
is saved when diagnostics are enabled. It also fails on phone-like devices,
whose keyboard has no modes.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusStrict, "strict", false, "Fail when no keyboard is visible")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := newSession(config.Get())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if statusStrict {
		// phone keyboards have no modes to report
		if err := s.detector.RequireModes(ctx, "status"); err != nil {
			return err
		}
	}

	snap, err := s.detector.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to read keyboard state: %w", err)
	}

	mode := snap.Mode()
	if statusStrict && mode == keyboard.ModeUnknown {
		if mode, err = s.detector.CurrentMode(ctx, true); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.FormatHeader("Keyboard"))
	fmt.Fprintln(out, ui.FormatField("mode", ui.FormatMode(mode)))
	fmt.Fprintln(out, ui.FormatField("visible", snap.Visible()))
	fmt.Fprintln(out, ui.FormatField("phone-like", snap.PhoneLike))
	if snap.KeyPlane != nil {
		fmt.Fprintln(out, ui.FormatField("key-plane", fmt.Sprintf("y=%g height=%g", snap.KeyPlane.Y, snap.KeyPlane.Height)))
		fmt.Fprintln(out, ui.FormatField("orientation", snap.Orientation))
	}
	return nil
}
