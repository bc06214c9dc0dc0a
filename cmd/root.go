package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ferasOS/calabash-ios/internal/config"
	"github.com/ferasOS/calabash-ios/internal/logger"
)

var (
	configPath string
	deviceURL  string

	rootCmd = &cobra.Command{
		Use:   "kbmode",
		Short: "kbmode - software keyboard mode control for UI tests",
		Long: `kbmode detects whether the software keyboard of a tablet under test is
docked, undocked or split, and switches between those modes by driving the
keyboard's mode key through the device automation agent.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				config.SetConfigPath(configPath)
			}
			if err := config.Init(); err != nil {
				return err
			}
			cfg := config.Get()
			if deviceURL != "" {
				cfg.Device.URL = deviceURL
			}
			if cfg.Logging.LogLevel != "" {
				logger.SetLevel(cfg.Logging.LogLevel)
			}
			if os.Getenv("LOG_FORMAT") == "" {
				if err := logger.SetFormat(cfg.Logging.Format); err != nil {
					return err
				}
			}
			return nil
		},
	}
)

// Execute runs the root command. An interrupt cancels any wait in progress.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to kbmode.toml")
	rootCmd.PersistentFlags().StringVar(&deviceURL, "device", "", "Device agent URL (overrides config)")
}
