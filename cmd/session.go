package cmd

import (
	"fmt"

	"github.com/ferasOS/calabash-ios/internal/config"
	"github.com/ferasOS/calabash-ios/internal/device"
	"github.com/ferasOS/calabash-ios/internal/diagnostics"
	"github.com/ferasOS/calabash-ios/internal/keyboard"
)

// session bundles the collaborators needed to work with one device
type session struct {
	client     *device.Client
	detector   *keyboard.Detector
	controller *keyboard.Controller
}

func newSession(cfg *config.Config) (*session, error) {
	opts, err := cfg.KeyboardOptions()
	if err != nil {
		return nil, err
	}

	client, err := device.NewClient(device.Config{
		BaseURL:                  cfg.Device.URL,
		Timeout:                  cfg.Device.RequestTimeout,
		UnsupportedMajorVersions: cfg.Device.UnsupportedMajorVersions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create device client: %w", err)
	}

	recorder := diagnostics.NewRecorder(client, cfg.Diagnostics.ScreenshotDir, cfg.Diagnostics.Enabled)
	detector := keyboard.NewDetector(client, client, recorder)
	controller, err := keyboard.NewController(detector, client, client, recorder, opts)
	if err != nil {
		return nil, err
	}

	return &session{
		client:     client,
		detector:   detector,
		controller: controller,
	}, nil
}
