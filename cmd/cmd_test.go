package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/ferasOS/calabash-ios/internal/config"
	"github.com/ferasOS/calabash-ios/internal/keyboard"
)

const testConfig = `[wait]
keyboard_timeout = "500ms"
mode_timeout = "500ms"
poll_interval = "5ms"

[gesture]
settle_after_drag = "0s"
long_press = "100ms"

[diagnostics]
enabled = false
`

// tablet serves a docked/undocked/split keyboard on a 768x704 screen
type tablet struct {
	mu         sync.Mutex
	mode       string
	visible    bool
	formFactor string
}

func (tb *tablet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	req := gjson.ParseBytes(body)

	switch r.URL.Path {
	case "/version":
		_, _ = io.WriteString(w, `{"outcome":"SUCCESS","form_factor":"`+tb.form()+`","iOS_version":"9.3","screen_dimensions":{"width":768,"height":704,"scale":1}}`)
	case "/map":
		_, _ = io.WriteString(w, `{"outcome":"SUCCESS","results":["up"]}`)
	case "/query":
		_, _ = io.WriteString(w, `{"outcome":"SUCCESS","results":[`+tb.results(req.Get("query").String())+`]}`)
	case "/uia":
		cmd := req.Get("command").String()
		if strings.Contains(cmd, "rect()") {
			_, _ = io.WriteString(w, `{"outcome":"SUCCESS","results":[{"status":"success","value":{"origin":{"x":700,"y":650},"size":{"width":60,"height":50}}}]}`)
			return
		}
		top := strings.Contains(cmd, "y:735")
		switch {
		case tb.mode == "split" && top:
			tb.mode = "undocked"
		case tb.mode == "split":
			tb.mode = "docked"
		case top && tb.mode == "docked":
			tb.mode = "undocked"
		case top:
			tb.mode = "docked"
		default:
			tb.mode = "split"
		}
		_, _ = io.WriteString(w, `{"outcome":"SUCCESS","results":[{"status":"success","value":null}]}`)
	default:
		_, _ = io.WriteString(w, `{"outcome":"FAILURE","reason":"unknown route"}`)
	}
}

func (tb *tablet) results(selector string) string {
	if !tb.visible {
		return ""
	}
	if strings.Contains(selector, "UIKBKeyplaneView") {
		switch tb.mode {
		case "docked":
			return `{"class":"UIKBKeyplaneView","rect":{"x":0,"y":488,"width":768,"height":216}}`
		case "undocked":
			return `{"class":"UIKBKeyplaneView","rect":{"x":0,"y":260,"width":768,"height":216}}`
		}
		return ""
	}
	return `{"class":"UIKBKeyView","label":"a","rect":{"x":10,"y":500,"width":40,"height":40}}`
}

func (tb *tablet) form() string {
	if tb.formFactor == "" {
		return "ipad"
	}
	return tb.formFactor
}

func (tb *tablet) current() string {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.mode
}

// run executes kbmode against the tablet and returns its stdout
func run(t *testing.T, tb *tablet, args ...string) (string, error) {
	t.Helper()

	server := httptest.NewServer(tb)
	t.Cleanup(server.Close)

	path := filepath.Join(t.TempDir(), "kbmode.toml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0644))

	viper.Reset()
	statusStrict = false
	t.Cleanup(func() {
		viper.Reset()
		config.SetConfigPath("")
		config.Set(nil)
		configPath, deviceURL = "", ""
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--config", path, "--device", server.URL))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestEnsureCommand(t *testing.T) {
	tests := []struct {
		name string
		from string
		arg  string
		want string
	}{
		{"docked to split", "docked", "split", "split"},
		{"split to undocked", "split", "undocked", "undocked"},
		{"undocked to docked", "undocked", "docked", "docked"},
		{"already docked", "docked", "dock", "docked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := &tablet{mode: tt.from, visible: true}

			out, err := run(t, tb, "ensure", tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tb.current())
			assert.Contains(t, out, "keyboard is")
		})
	}
}

func TestEnsureCommandRejectsUnknownMode(t *testing.T) {
	_, err := run(t, &tablet{mode: "docked", visible: true}, "ensure", "sideways")
	assert.Error(t, err)
}

func TestEnsureCommandWithoutKeyboard(t *testing.T) {
	_, err := run(t, &tablet{mode: "docked"}, "ensure", "split")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keyboard did not appear")
}

func TestStatusCommand(t *testing.T) {
	out, err := run(t, &tablet{mode: "undocked", visible: true}, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "undocked")
	assert.Contains(t, out, "key-plane")

	out, err = run(t, &tablet{mode: "split", visible: true}, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "split")
	assert.NotContains(t, out, "key-plane")
}

func TestStatusCommandStrict(t *testing.T) {
	out, err := run(t, &tablet{mode: "docked"}, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "unknown")

	_, err = run(t, &tablet{mode: "docked"}, "status", "--strict")
	assert.Error(t, err)
}

func TestStatusCommandStrictOnPhone(t *testing.T) {
	phone := &tablet{mode: "docked", visible: true, formFactor: "iphone 6"}

	out, err := run(t, phone, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "docked")

	_, err = run(t, phone, "status", "--strict")
	require.Error(t, err)
	assert.True(t, errors.Is(err, keyboard.ErrNotApplicable))
}

func TestConfigPathCommand(t *testing.T) {
	out, err := run(t, &tablet{}, "config", "path")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "kbmode.toml"))
}

func TestConfigShowCommand(t *testing.T) {
	out, err := run(t, &tablet{}, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[wait]")
	assert.Contains(t, out, "5ms")
}
