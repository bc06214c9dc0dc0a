package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ferasOS/calabash-ios/internal/config"
	"github.com/ferasOS/calabash-ios/internal/keyboard"
	"github.com/ferasOS/calabash-ios/internal/logger"
	"github.com/ferasOS/calabash-ios/internal/ui"
)

var ensureCmd = &cobra.Command{
	Use:   "ensure <docked|undocked|split>",
	Short: "Put the keyboard into a mode",
	Long: `Wait for the keyboard to appear and move it into the requested mode.

The mode key is long-pressed and dragged onto the popup option that leads to
the target. Leaving a split keyboard always docks it first. The command fails
if the target mode is not observed within the configured wait.mode_timeout.

  kbmode ensure split
  kbmode ensure docked --device http://192.168.1.20:37265`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"docked", "undocked", "split"},
	RunE:      runEnsure,
}

func init() {
	rootCmd.AddCommand(ensureCmd)
}

func runEnsure(cmd *cobra.Command, args []string) error {
	target, err := keyboard.ParseMode(args[0])
	if err != nil {
		return err
	}

	s, err := newSession(config.Get())
	if err != nil {
		return err
	}

	logger.Debugf("Ensuring %s keyboard via %s", target, config.Get().Device.URL)
	if err := s.controller.Ensure(cmd.Context(), target); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), ui.FormatResult(true, "keyboard is "+ui.FormatMode(target)))
	return nil
}
