package cmd

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ferasOS/calabash-ios/internal/config"
	"github.com/ferasOS/calabash-ios/internal/logger"
	"github.com/ferasOS/calabash-ios/internal/ui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactively write a kbmode configuration",
	Long: `Ask for the device agent URL, wait timeouts and screenshot settings,
check that the agent answers, and save the result to the config file.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

// setupAnswers holds the form fields as the user typed them
type setupAnswers struct {
	URL           string
	ModeTimeout   string
	PollInterval  string
	Screenshots   bool
	ScreenshotDir string
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	answers := setupAnswers{
		URL:           cfg.Device.URL,
		ModeTimeout:   cfg.Wait.ModeTimeout.String(),
		PollInterval:  cfg.Wait.PollInterval.String(),
		Screenshots:   cfg.Diagnostics.Enabled,
		ScreenshotDir: cfg.Diagnostics.ScreenshotDir,
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Device agent URL").
				Description("Where the automation agent on the device listens").
				Value(&answers.URL).
				Validate(validateAgentURL),
			huh.NewInput().
				Title("Mode timeout").
				Description("How long to wait for the keyboard to reach a mode").
				Value(&answers.ModeTimeout).
				Validate(validatePositiveDuration),
			huh.NewInput().
				Title("Poll interval").
				Value(&answers.PollInterval).
				Validate(validatePositiveDuration),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save screenshots on failure?").
				Value(&answers.Screenshots),
			huh.NewInput().
				Title("Screenshot directory").
				Value(&answers.ScreenshotDir),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	if err := config.Update(answers.apply); err != nil {
		return err
	}

	s, err := newSession(config.Get())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if phone, err := s.client.IsPhoneLike(cmd.Context()); err != nil {
		fmt.Fprintln(out, ui.FormatResult(false, "device agent did not answer: "+err.Error()))
	} else {
		fmt.Fprintln(out, ui.FormatResult(true, "device agent answered"))
		fmt.Fprintln(out, ui.FormatField("phone-like", phone))
	}

	if err := config.Save(); err != nil {
		return err
	}
	logger.Infof("Configuration saved to: %s", config.GetConfigPath())
	return nil
}

func (a setupAnswers) apply(c *config.Config) {
	c.Device.URL = strings.TrimSpace(a.URL)
	// both durations passed validation in the form
	c.Wait.ModeTimeout, _ = time.ParseDuration(a.ModeTimeout)
	c.Wait.PollInterval, _ = time.ParseDuration(a.PollInterval)
	c.Diagnostics.Enabled = a.Screenshots
	if dir := strings.TrimSpace(a.ScreenshotDir); dir != "" {
		c.Diagnostics.ScreenshotDir = dir
	}
}

func validateAgentURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must start with http:// or https://")
	}
	if u.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	return nil
}

func validatePositiveDuration(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("duration must be positive")
	}
	return nil
}
