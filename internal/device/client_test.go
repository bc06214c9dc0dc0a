package device

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/ferasOS/calabash-ios/internal/keyboard"
)

// agent is a minimal device agent serving one keyboard that reacts to mode key drags
type agent struct {
	mu          sync.Mutex
	formFactor  string
	version     string
	orientation string
	mode        keyboard.Mode
	commands    []string
}

func (a *agent) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()

		body, _ := io.ReadAll(r.Body)
		req := gjson.ParseBytes(body)
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/version":
			_, _ = io.WriteString(w, `{"outcome":"SUCCESS","form_factor":"`+a.formFactor+`","iOS_version":"`+a.version+`","screen_dimensions":{"width":768,"height":704,"scale":1,"sample":1}}`)
		case "/map":
			if req.Get("operation.method_name").String() != "orientation" {
				http.Error(w, "bad map", http.StatusBadRequest)
				return
			}
			_, _ = io.WriteString(w, `{"outcome":"SUCCESS","results":["`+a.orientation+`"]}`)
		case "/query":
			_, _ = io.WriteString(w, `{"outcome":"SUCCESS","results":[`+a.queryResults(req.Get("query").String())+`]}`)
		case "/uia":
			cmd := req.Get("command").String()
			a.commands = append(a.commands, cmd)
			if cmd == ModeKeyCommand {
				_, _ = io.WriteString(w, `{"outcome":"SUCCESS","results":[{"status":"success","value":{"origin":{"x":700,"y":650},"size":{"width":60,"height":50}}}]}`)
				return
			}
			a.applyDrag(cmd)
			_, _ = io.WriteString(w, `{"outcome":"SUCCESS","results":[{"status":"success","value":null}]}`)
		case "/screenshot":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("png-bytes"))
		default:
			_, _ = io.WriteString(w, `{"outcome":"FAILURE","reason":"unknown route"}`)
		}
	})
}

func (a *agent) set(fn func(a *agent)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(a)
}

func (a *agent) queryResults(selector string) string {
	switch selector {
	case keyboard.KeyPlaneSelector:
		switch a.mode {
		case keyboard.ModeDocked:
			return `{"class":"UIKBKeyplaneView","label":null,"rect":{"x":0,"y":488,"width":768,"height":216}}`
		case keyboard.ModeUndocked:
			return `{"class":"UIKBKeyplaneView","label":null,"rect":{"x":0,"y":300,"width":768,"height":216}}`
		default:
			return ""
		}
	case keyboard.KeyViewSelector:
		if a.mode == keyboard.ModeUnknown {
			return ""
		}
		return `{"class":"UIKBKeyView","label":"q","rect":{"x":4,"y":500,"width":50,"height":50}},{"class":"UIKBKeyView","label":"w","rect":{"x":60,"y":500,"width":50,"height":50}}`
	default:
		return ""
	}
}

func (a *agent) applyDrag(cmd string) {
	top := strings.Contains(cmd, "{x:615, y:735}")
	switch a.mode {
	case keyboard.ModeDocked:
		if top {
			a.mode = keyboard.ModeUndocked
		} else {
			a.mode = keyboard.ModeSplit
		}
	case keyboard.ModeUndocked:
		if top {
			a.mode = keyboard.ModeDocked
		} else {
			a.mode = keyboard.ModeSplit
		}
	case keyboard.ModeSplit:
		if top {
			a.mode = keyboard.ModeUndocked
		} else {
			a.mode = keyboard.ModeDocked
		}
	case keyboard.ModeUnknown:
	}
}

func newTestClient(t *testing.T, a *agent) *Client {
	t.Helper()
	server := httptest.NewServer(a.handler())
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL + "/", Timeout: time.Second, UnsupportedMajorVersions: []int{8}})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresURL(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestClientDeviceInfo(t *testing.T) {
	ctx := context.Background()
	a := &agent{formFactor: "ipad", version: "9.3.5", orientation: "left"}
	client := newTestClient(t, a)

	phone, err := client.IsPhoneLike(ctx)
	require.NoError(t, err)
	assert.False(t, phone)

	metrics, err := client.ScreenMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, keyboard.ScreenMetrics{Width: 768, Height: 704, Scale: 1}, metrics)

	orientation, err := client.Orientation(ctx)
	require.NoError(t, err)
	assert.Equal(t, keyboard.OrientationLeft, orientation)

	unsupported, err := client.ModeChangeUnsupported(ctx)
	require.NoError(t, err)
	assert.False(t, unsupported)

	a.set(func(a *agent) { a.version = "8.1" })
	unsupported, err = client.ModeChangeUnsupported(ctx)
	require.NoError(t, err)
	assert.True(t, unsupported)

	a.set(func(a *agent) { a.formFactor = "iphone 4in" })
	phone, err = client.IsPhoneLike(ctx)
	require.NoError(t, err)
	assert.True(t, phone)
}

func TestClientQuery(t *testing.T) {
	a := &agent{formFactor: "ipad", version: "9.0", orientation: "up", mode: keyboard.ModeDocked}
	client := newTestClient(t, a)

	elements, err := client.Query(context.Background(), keyboard.KeyPlaneSelector)
	require.NoError(t, err)
	require.Len(t, elements, 1)
	assert.Equal(t, "UIKBKeyplaneView", elements[0].Class)
	assert.Equal(t, keyboard.Rect{X: 0, Y: 488, Width: 768, Height: 216}, elements[0].Rect)

	a.set(func(a *agent) { a.mode = keyboard.ModeUnknown })
	elements, err = client.Query(context.Background(), keyboard.KeyPlaneSelector)
	require.NoError(t, err)
	assert.Empty(t, elements)
}

func TestClientFailureOutcome(t *testing.T) {
	a := &agent{}
	client := newTestClient(t, a)

	_, err := client.call(context.Background(), http.MethodGet, "/nope", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown route")
}

func TestClientScreenshot(t *testing.T) {
	client := newTestClient(t, &agent{})

	data, err := client.Screenshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestClientDrivesController(t *testing.T) {
	a := &agent{formFactor: "ipad", version: "9.3", orientation: "up", mode: keyboard.ModeSplit}
	client := newTestClient(t, a)

	opts := keyboard.DefaultOptions()
	opts.PollInterval = time.Millisecond
	opts.DragSettle = 0
	opts.LongPress = 500 * time.Millisecond
	opts.ModeTimeout = time.Second

	detector := keyboard.NewDetector(client, client, nil)
	controller, err := keyboard.NewController(detector, client, client, nil, opts)
	require.NoError(t, err)

	require.NoError(t, controller.EnsureUndocked(context.Background()))

	a.mu.Lock()
	defer a.mu.Unlock()
	assert.Equal(t, keyboard.ModeUndocked, a.mode)
	assert.Equal(t, []string{
		ModeKeyCommand,
		"UIATarget.localTarget().dragFromToForDuration({x:700, y:650}, {x:665, y:685}, 0.5)",
		ModeKeyCommand,
		"UIATarget.localTarget().dragFromToForDuration({x:700, y:650}, {x:615, y:735}, 0.5)",
	}, a.commands)
}

func TestMajorVersion(t *testing.T) {
	major, err := majorVersion("10.3.1")
	require.NoError(t, err)
	assert.Equal(t, 10, major)

	_, err = majorVersion("beta")
	assert.Error(t, err)
}
