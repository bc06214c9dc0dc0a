package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ferasOS/calabash-ios/internal/config"
	"github.com/ferasOS/calabash-ios/internal/ui"
)

var watchReadOnly bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the keyboard mode live",
	Long: `Poll the device and show the keyboard mode as it changes.

Press d, u or s to dock, undock or split the keyboard, q to quit.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchReadOnly, "read-only", false, "Disable the mode switching keys")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	s, err := newSession(cfg)
	if err != nil {
		return err
	}

	var switcher ui.Switcher
	if !watchReadOnly {
		switcher = s.controller
	}

	ctx := cmd.Context()
	model := ui.NewWatchModel(ctx, s.detector, switcher, cfg.Wait.PollInterval)
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(cmd.OutOrStdout()))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
