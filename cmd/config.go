package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ferasOS/calabash-ios/internal/config"
	"github.com/ferasOS/calabash-ios/internal/logger"
	"github.com/ferasOS/calabash-ios/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage kbmode configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, ui.FormatField("config file", config.GetConfigPath()))

		fmt.Fprintln(out, ui.FormatHeader("[device]"))
		fmt.Fprintln(out, ui.FormatField("url", cfg.Device.URL))
		fmt.Fprintln(out, ui.FormatField("timeout", cfg.Device.RequestTimeout))
		fmt.Fprintln(out, ui.FormatField("unsupported", cfg.Device.UnsupportedMajorVersions))

		fmt.Fprintln(out, ui.FormatHeader("[wait]"))
		fmt.Fprintln(out, ui.FormatField("keyboard", cfg.Wait.KeyboardTimeout))
		fmt.Fprintln(out, ui.FormatField("mode", cfg.Wait.ModeTimeout))
		fmt.Fprintln(out, ui.FormatField("interval", cfg.Wait.PollInterval))
		fmt.Fprintln(out, ui.FormatField("post settle", cfg.Wait.PostSettle))

		fmt.Fprintln(out, ui.FormatHeader("[gesture]"))
		fmt.Fprintln(out, ui.FormatField("drag settle", cfg.Gesture.SettleAfterDrag))
		fmt.Fprintln(out, ui.FormatField("long press", cfg.Gesture.LongPress))
		fmt.Fprintln(out, ui.FormatField("bottom row", cfg.Gesture.BottomRowOffset))
		fmt.Fprintln(out, ui.FormatField("top row", cfg.Gesture.TopRowOffset))

		fmt.Fprintln(out, ui.FormatHeader("[diagnostics]"))
		fmt.Fprintln(out, ui.FormatField("enabled", cfg.Diagnostics.Enabled))
		fmt.Fprintln(out, ui.FormatField("screenshots", cfg.Diagnostics.ScreenshotDir))

		fmt.Fprintln(out, ui.FormatHeader("[logging]"))
		fmt.Fprintln(out, ui.FormatField("level", cfg.Logging.LogLevel))
		fmt.Fprintln(out, ui.FormatField("format", cfg.Logging.Format))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), config.GetConfigPath())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the current configuration to file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Save(); err != nil {
			return err
		}
		logger.Infof("Configuration saved to: %s", config.GetConfigPath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
