// Package device talks to the automation agent running on the device under
// test. It is the HTTP backend for the keyboard package's query, gesture and
// device collaborators.
package device

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/ferasOS/calabash-ios/internal/keyboard"
	"github.com/ferasOS/calabash-ios/internal/logger"
)

// ModeKeyCommand locates the key whose long-press opens the dock/undock/split popup
const ModeKeyCommand = "uia.keyboard().buttons()['Hide keyboard'].rect()"

// Config holds the connection settings for a device agent
type Config struct {
	BaseURL string
	Timeout time.Duration

	// UnsupportedMajorVersions lists OS major versions where keyboard mode
	// switching cannot be automated
	UnsupportedMajorVersions []int
}

// Client is an HTTP client for the device agent
type Client struct {
	baseURL     string
	httpClient  *http.Client
	unsupported map[int]bool
}

// NewClient creates a device agent client
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("device URL cannot be empty")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	unsupported := make(map[int]bool, len(cfg.UnsupportedMajorVersions))
	for _, v := range cfg.UnsupportedMajorVersions {
		unsupported[v] = true
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		unsupported: unsupported,
	}, nil
}

// Query runs a view query and returns the matching elements
func (c *Client) Query(ctx context.Context, selector string) ([]keyboard.Element, error) {
	body, err := sjson.Set("", "query", selector)
	if err != nil {
		return nil, fmt.Errorf("failed to build query request: %w", err)
	}

	resp, err := c.call(ctx, http.MethodPost, "/query", body)
	if err != nil {
		return nil, err
	}

	results := resp.Get("results").Array()
	elements := make([]keyboard.Element, 0, len(results))
	for _, r := range results {
		if !r.IsObject() {
			continue
		}
		elements = append(elements, keyboard.Element{
			Class: r.Get("class").String(),
			Label: r.Get("label").String(),
			Rect:  parseRect(r.Get("rect")),
		})
	}
	return elements, nil
}

// ModeKeyRect returns the frame of the keyboard's mode key
func (c *Client) ModeKeyRect(ctx context.Context) (keyboard.Rect, error) {
	value, err := c.uia(ctx, ModeKeyCommand)
	if err != nil {
		return keyboard.Rect{}, err
	}
	if !value.Get("origin").Exists() {
		return keyboard.Rect{}, fmt.Errorf("mode key not found")
	}
	return keyboard.Rect{
		X:      value.Get("origin.x").Float(),
		Y:      value.Get("origin.y").Float(),
		Width:  value.Get("size.width").Float(),
		Height: value.Get("size.height").Float(),
	}, nil
}

// Drag presses at drag.From for drag.Hold and pans to drag.To
func (c *Client) Drag(ctx context.Context, drag keyboard.Drag) error {
	cmd := fmt.Sprintf("UIATarget.localTarget().dragFromToForDuration({x:%s, y:%s}, {x:%s, y:%s}, %s)",
		formatFloat(drag.From.X), formatFloat(drag.From.Y),
		formatFloat(drag.To.X), formatFloat(drag.To.Y),
		formatFloat(drag.Hold.Seconds()))
	_, err := c.uia(ctx, cmd)
	return err
}

// IsPhoneLike reports iPhone and iPod form factors, which have no keyboard modes
func (c *Client) IsPhoneLike(ctx context.Context) (bool, error) {
	info, err := c.version(ctx)
	if err != nil {
		return false, err
	}
	form := strings.ToLower(info.Get("form_factor").String())
	return strings.HasPrefix(form, "iphone") || strings.HasPrefix(form, "ipod"), nil
}

// ScreenMetrics returns the raw screen dimensions
func (c *Client) ScreenMetrics(ctx context.Context) (keyboard.ScreenMetrics, error) {
	info, err := c.version(ctx)
	if err != nil {
		return keyboard.ScreenMetrics{}, err
	}
	dims := info.Get("screen_dimensions")
	if !dims.Exists() {
		return keyboard.ScreenMetrics{}, fmt.Errorf("device did not report screen dimensions")
	}
	return keyboard.ScreenMetrics{
		Width:  dims.Get("width").Float(),
		Height: dims.Get("height").Float(),
		Scale:  dims.Get("scale").Float(),
	}, nil
}

// Orientation returns the status bar orientation
func (c *Client) Orientation(ctx context.Context) (keyboard.Orientation, error) {
	body, err := sjson.Set("", "query", nil)
	if err == nil {
		body, err = sjson.Set(body, "operation.method_name", "orientation")
	}
	if err == nil {
		body, err = sjson.Set(body, "operation.arguments", []string{"status_bar"})
	}
	if err != nil {
		return keyboard.OrientationUp, fmt.Errorf("failed to build orientation request: %w", err)
	}

	resp, err := c.call(ctx, http.MethodPost, "/map", body)
	if err != nil {
		return keyboard.OrientationUp, err
	}
	return keyboard.ParseOrientation(resp.Get("results.0").String())
}

// ModeChangeUnsupported reports whether the OS major version is configured as
// unable to switch keyboard modes
func (c *Client) ModeChangeUnsupported(ctx context.Context) (bool, error) {
	info, err := c.version(ctx)
	if err != nil {
		return false, err
	}
	major, err := majorVersion(info.Get("iOS_version").String())
	if err != nil {
		return false, err
	}
	return c.unsupported[major], nil
}

// Screenshot returns a PNG of the current screen
func (c *Client) Screenshot(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/screenshot", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create screenshot request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("screenshot request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("screenshot request failed: HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) version(ctx context.Context) (gjson.Result, error) {
	return c.call(ctx, http.MethodGet, "/version", "")
}

// uia runs an automation command and returns its value
func (c *Client) uia(ctx context.Context, command string) (gjson.Result, error) {
	body, err := sjson.Set("", "command", command)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to build uia request: %w", err)
	}

	resp, err := c.call(ctx, http.MethodPost, "/uia", body)
	if err != nil {
		return gjson.Result{}, err
	}

	result := resp.Get("results.0")
	if status := result.Get("status").String(); status != "success" {
		return gjson.Result{}, fmt.Errorf("uia command %q failed: %s", command, result.Get("value").String())
	}
	return result.Get("value"), nil
}

// call sends a JSON request and checks the agent's outcome field
func (c *Client) call(ctx context.Context, method, path, body string) (gjson.Result, error) {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.Debug("Device request", "method", method, "path", path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to read %s response: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("%s %s failed: HTTP %d", method, path, resp.StatusCode)
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("invalid JSON from %s", path)
	}

	result := gjson.ParseBytes(data)
	if outcome := result.Get("outcome").String(); outcome != "" && outcome != "SUCCESS" {
		return gjson.Result{}, fmt.Errorf("%s %s: %s", method, path, result.Get("reason").String())
	}
	return result, nil
}

func parseRect(r gjson.Result) keyboard.Rect {
	return keyboard.Rect{
		X:      r.Get("x").Float(),
		Y:      r.Get("y").Float(),
		Width:  r.Get("width").Float(),
		Height: r.Get("height").Float(),
	}
}

func majorVersion(version string) (int, error) {
	head, _, _ := strings.Cut(strings.TrimSpace(version), ".")
	major, err := strconv.Atoi(head)
	if err != nil {
		return 0, fmt.Errorf("invalid OS version %q", version)
	}
	return major, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
