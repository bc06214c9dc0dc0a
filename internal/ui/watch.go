package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ferasOS/calabash-ios/internal/keyboard"
)

// Prober reads the keyboard state shown by the watch view
type Prober interface {
	Snapshot(ctx context.Context) (keyboard.Snapshot, error)
}

// Switcher moves the keyboard into a mode on request
type Switcher interface {
	Ensure(ctx context.Context, target keyboard.Mode) error
}

// ModeChange is one observed transition between classifications
type ModeChange struct {
	At       time.Time
	From, To keyboard.Mode
}

type snapshotMsg struct {
	snap keyboard.Snapshot
	err  error
	at   time.Time
}

type pollMsg time.Time

type ensureDoneMsg struct {
	target keyboard.Mode
	err    error
}

// WatchModel is a live view of the keyboard mode. The d, u and s keys ask
// the switcher for docked, undocked and split.
type WatchModel struct {
	ctx      context.Context
	prober   Prober
	switcher Switcher
	interval time.Duration

	spinner spinner.Model
	width   int

	// polling is set while a poll or its follow-up tick is outstanding; at
	// most one such chain exists
	polling bool

	seen     bool
	snap     keyboard.Snapshot
	mode     keyboard.Mode
	lastPoll time.Time
	pollErr  error

	busy   bool
	target keyboard.Mode
	result string
	failed bool

	history    []ModeChange
	maxHistory int
}

// NewWatchModel creates a watch view polling every interval. switcher may be nil
// for a read-only view.
func NewWatchModel(ctx context.Context, prober Prober, switcher Switcher, interval time.Duration) *WatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &WatchModel{
		ctx:        ctx,
		prober:     prober,
		switcher:   switcher,
		interval:   interval,
		spinner:    s,
		maxHistory: 8,
	}
}

func (m *WatchModel) Init() tea.Cmd {
	m.polling = true
	return tea.Batch(m.spinner.Tick, m.poll())
}

func (m *WatchModel) poll() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.prober.Snapshot(m.ctx)
		return snapshotMsg{snap: snap, err: err, at: time.Now()}
	}
}

func (m *WatchModel) schedulePoll() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

func (m *WatchModel) ensure(target keyboard.Mode) tea.Cmd {
	return func() tea.Msg {
		return ensureDoneMsg{target: target, err: m.switcher.Ensure(m.ctx, target)}
	}
}

func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "d":
			return m, m.request(keyboard.ModeDocked)
		case "u":
			return m, m.request(keyboard.ModeUndocked)
		case "s":
			return m, m.request(keyboard.ModeSplit)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case snapshotMsg:
		m.record(msg)
		return m, m.continuePolling(m.schedulePoll)

	case pollMsg:
		return m, m.continuePolling(m.poll)

	case ensureDoneMsg:
		m.busy = false
		m.failed = msg.err != nil
		if msg.err != nil {
			m.result = msg.err.Error()
		} else {
			m.result = "keyboard is " + msg.target.String()
		}
		if m.polling {
			return m, nil
		}
		m.polling = true
		return m, m.poll()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// continuePolling extends the poll chain, or ends it while a mode change
// owns the device. The chain restarts when the change completes.
func (m *WatchModel) continuePolling(next func() tea.Cmd) tea.Cmd {
	if m.busy {
		m.polling = false
		return nil
	}
	m.polling = true
	return next()
}

func (m *WatchModel) request(target keyboard.Mode) tea.Cmd {
	if m.switcher == nil || m.busy {
		return nil
	}
	m.busy = true
	m.target = target
	m.result = ""
	return m.ensure(target)
}

func (m *WatchModel) record(msg snapshotMsg) {
	m.lastPoll = msg.at
	m.pollErr = msg.err
	if msg.err != nil {
		return
	}

	mode := msg.snap.Mode()
	if m.seen && mode != m.mode {
		m.history = append(m.history, ModeChange{At: msg.at, From: m.mode, To: mode})
		if len(m.history) > m.maxHistory {
			m.history = m.history[len(m.history)-m.maxHistory:]
		}
	}
	m.seen = true
	m.snap = msg.snap
	m.mode = mode
}

// Mode returns the last classification
func (m *WatchModel) Mode() keyboard.Mode {
	return m.mode
}

// History returns the recorded mode changes, oldest first
func (m *WatchModel) History() []ModeChange {
	out := make([]ModeChange, len(m.history))
	copy(out, m.history)
	return out
}

// Busy reports whether a mode change is in flight
func (m *WatchModel) Busy() bool {
	return m.busy
}

func (m *WatchModel) View() string {
	var b strings.Builder

	b.WriteString(FormatHeader("kbmode watch"))
	b.WriteString("\n")

	if !m.seen && m.pollErr == nil {
		b.WriteString(m.spinner.View() + " reading keyboard...\n")
	} else {
		b.WriteString(FormatField("mode", FormatMode(m.mode)) + "\n")
		b.WriteString(FormatField("visible", m.snap.Visible()) + "\n")
		if m.snap.KeyPlane != nil {
			b.WriteString(FormatField("key-plane", fmt.Sprintf("y=%g height=%g", m.snap.KeyPlane.Y, m.snap.KeyPlane.Height)) + "\n")
			b.WriteString(FormatField("orientation", m.snap.Orientation) + "\n")
		}
		if !m.lastPoll.IsZero() {
			b.WriteString(FormatField("updated", m.lastPoll.Format("15:04:05.000")) + "\n")
		}
	}
	if m.pollErr != nil {
		b.WriteString(FormatResult(false, m.pollErr.Error()) + "\n")
	}

	if len(m.history) > 0 {
		b.WriteString("\n" + HeaderStyle.Render("Changes") + "\n")
		for _, c := range m.history {
			b.WriteString(fmt.Sprintf("  %s  %s → %s\n", SubtleStyle.Render(c.At.Format("15:04:05")), c.From, ModeStyle(c.To).Render(c.To.String())))
		}
	}

	b.WriteString("\n")
	switch {
	case m.busy:
		b.WriteString(m.spinner.View() + " switching to " + m.target.String() + "...\n")
	case m.result != "":
		b.WriteString(FormatResult(!m.failed, m.result) + "\n")
	}

	help := "[q] quit"
	if m.switcher != nil {
		help = "[d] docked  [u] undocked  [s] split  " + help
	}
	b.WriteString("\n" + SubtleStyle.Render(help))
	return b.String()
}
