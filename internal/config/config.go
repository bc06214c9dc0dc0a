// Package config handles configuration management using Viper
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/ferasOS/calabash-ios/internal/keyboard"
)

// Config represents the application configuration
type Config struct {
	// Device agent connection
	Device DeviceConfig `mapstructure:"device"`

	// Polling behaviour
	Wait WaitConfig `mapstructure:"wait"`

	// Mode key gestures
	Gesture GestureConfig `mapstructure:"gesture"`

	// Failure screenshots
	Diagnostics DiagnosticsConfig `mapstructure:"diagnostics"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// DeviceConfig contains device agent settings
type DeviceConfig struct {
	URL                      string        `mapstructure:"url"`
	RequestTimeout           time.Duration `mapstructure:"request_timeout"`
	UnsupportedMajorVersions []int         `mapstructure:"unsupported_major_versions"` // OS versions that cannot switch keyboard modes
}

// WaitConfig contains polling settings
type WaitConfig struct {
	KeyboardTimeout time.Duration `mapstructure:"keyboard_timeout"`
	ModeTimeout     time.Duration `mapstructure:"mode_timeout"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	PostSettle      time.Duration `mapstructure:"post_settle"`
}

// GestureConfig contains mode key gesture settings
type GestureConfig struct {
	SettleAfterDrag time.Duration `mapstructure:"settle_after_drag"`
	LongPress       time.Duration `mapstructure:"long_press"`
	BottomRowOffset float64       `mapstructure:"bottom_row_offset"`
	TopRowOffset    float64       `mapstructure:"top_row_offset"`
}

// DiagnosticsConfig contains screenshot settings
type DiagnosticsConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ScreenshotDir string `mapstructure:"screenshot_dir"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	LogLevel string `mapstructure:"log_level"` // Override LOG_LEVEL env var
	Format   string `mapstructure:"format"`    // text, json or logfmt
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Device: DeviceConfig{
			URL:                      "http://localhost:37265",
			RequestTimeout:           30 * time.Second,
			UnsupportedMajorVersions: []int{8},
		},
		Wait: WaitConfig{
			KeyboardTimeout: keyboard.DefaultOptions().KeyboardTimeout,
			ModeTimeout:     keyboard.DefaultOptions().ModeTimeout,
			PollInterval:    keyboard.DefaultOptions().PollInterval,
			PostSettle:      keyboard.DefaultOptions().PostSettle,
		},
		Gesture: GestureConfig{
			SettleAfterDrag: keyboard.DefaultOptions().DragSettle,
			LongPress:       keyboard.DefaultOptions().LongPress,
			BottomRowOffset: keyboard.DefaultBottomRowOffset,
			TopRowOffset:    keyboard.DefaultTopRowOffset,
		},
		Diagnostics: DiagnosticsConfig{
			Enabled:       true,
			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			LogLevel: "", // Empty means use LOG_LEVEL env var
			Format:   "text",
		},
	}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("kbmode")
	viper.SetConfigType("toml")

	if configPathOverride == "" {
		configPathOverride = os.Getenv("KBMODE_CONFIG")
	}

	// If a specific path is set, use only that
	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "kbmode"))
		}
		viper.AddConfigPath(".") // Current directory (lowest priority)
	}

	viper.SetEnvPrefix("KBMODE")
	if err := viper.BindEnv("device.url", "KBMODE_DEVICE_URL"); err != nil {
		return fmt.Errorf("failed to bind environment: %w", err)
	}

	// Set defaults - need to set individual fields for proper merging
	viper.SetDefault("device.url", DefaultConfig.Device.URL)
	viper.SetDefault("device.request_timeout", DefaultConfig.Device.RequestTimeout)
	viper.SetDefault("device.unsupported_major_versions", DefaultConfig.Device.UnsupportedMajorVersions)

	viper.SetDefault("wait.keyboard_timeout", DefaultConfig.Wait.KeyboardTimeout)
	viper.SetDefault("wait.mode_timeout", DefaultConfig.Wait.ModeTimeout)
	viper.SetDefault("wait.poll_interval", DefaultConfig.Wait.PollInterval)
	viper.SetDefault("wait.post_settle", DefaultConfig.Wait.PostSettle)

	viper.SetDefault("gesture.settle_after_drag", DefaultConfig.Gesture.SettleAfterDrag)
	viper.SetDefault("gesture.long_press", DefaultConfig.Gesture.LongPress)
	viper.SetDefault("gesture.bottom_row_offset", DefaultConfig.Gesture.BottomRowOffset)
	viper.SetDefault("gesture.top_row_offset", DefaultConfig.Gesture.TopRowOffset)

	viper.SetDefault("diagnostics.enabled", DefaultConfig.Diagnostics.Enabled)
	viper.SetDefault("diagnostics.screenshot_dir", DefaultConfig.Diagnostics.ScreenshotDir)

	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)
	viper.SetDefault("logging.format", DefaultConfig.Logging.Format)

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if configPathOverride == "" || !os.IsNotExist(err) {
				return fmt.Errorf("error reading config file: %w", err)
			}
		}
		// Config file not found, use defaults
	}

	// Unmarshal config
	loaded := &Config{}
	if err := viper.Unmarshal(loaded); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if _, err := loaded.KeyboardOptions(); err != nil {
		return err
	}

	cfg = loaded
	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		// Return defaults if not initialized
		return &DefaultConfig
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}

// Update applies fn to a copy of the current configuration, validates the
// result and stages it for Save
func Update(fn func(c *Config)) error {
	next := *Get()
	next.Device.UnsupportedMajorVersions = append([]int(nil), next.Device.UnsupportedMajorVersions...)
	fn(&next)

	if _, err := next.KeyboardOptions(); err != nil {
		return err
	}

	viper.Set("device.url", next.Device.URL)
	viper.Set("device.request_timeout", next.Device.RequestTimeout.String())
	viper.Set("device.unsupported_major_versions", next.Device.UnsupportedMajorVersions)

	viper.Set("wait.keyboard_timeout", next.Wait.KeyboardTimeout.String())
	viper.Set("wait.mode_timeout", next.Wait.ModeTimeout.String())
	viper.Set("wait.poll_interval", next.Wait.PollInterval.String())
	viper.Set("wait.post_settle", next.Wait.PostSettle.String())

	viper.Set("gesture.settle_after_drag", next.Gesture.SettleAfterDrag.String())
	viper.Set("gesture.long_press", next.Gesture.LongPress.String())
	viper.Set("gesture.bottom_row_offset", next.Gesture.BottomRowOffset)
	viper.Set("gesture.top_row_offset", next.Gesture.TopRowOffset)

	viper.Set("diagnostics.enabled", next.Diagnostics.Enabled)
	viper.Set("diagnostics.screenshot_dir", next.Diagnostics.ScreenshotDir)

	viper.Set("logging.log_level", next.Logging.LogLevel)
	viper.Set("logging.format", next.Logging.Format)

	cfg = &next
	return nil
}

// Save writes the current settings to the config file
func Save() error {
	configPath := GetConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if configPathOverride != "" {
		return configPathOverride
	}

	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "kbmode.toml"
	}
	return filepath.Join(home, ".config", "kbmode", "kbmode.toml")
}

// KeyboardOptions converts the wait and gesture settings into controller options
func (c *Config) KeyboardOptions() (keyboard.Options, error) {
	opts := keyboard.Options{
		KeyboardTimeout: c.Wait.KeyboardTimeout,
		ModeTimeout:     c.Wait.ModeTimeout,
		PollInterval:    c.Wait.PollInterval,
		PostSettle:      c.Wait.PostSettle,
		DragSettle:      c.Gesture.SettleAfterDrag,
		LongPress:       c.Gesture.LongPress,
		BottomRowOffset: c.Gesture.BottomRowOffset,
		TopRowOffset:    c.Gesture.TopRowOffset,
	}
	if err := opts.Validate(); err != nil {
		return opts, fmt.Errorf("invalid keyboard settings: %w", err)
	}
	return opts, nil
}
