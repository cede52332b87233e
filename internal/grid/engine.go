// internal/grid/engine.go
package grid

import (
	"log/slog"
	"reflect"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// State is the scheduling state of an Engine
type State int

const (
	Idle State = iota
	PassScheduled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PassScheduled:
		return "pass-scheduled"
	default:
		return "unknown"
	}
}

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// passMsg runs the pending layout pass of the engine with the same id
type passMsg struct {
	id int
}

// LayoutCompleteMsg is sent on the tick after a layout pass has been applied
type LayoutCompleteMsg struct {
	ID int
}

// Options configures an Engine
type Options struct {
	// Count is the visible item hint, 0 shows every item
	Count int
	// OnPass is called with every applied result
	OnPass func(Result)
	Logger *slog.Logger
}

// Engine lays out the items of a Host. At most one pass is pending at any
// time; triggers arriving while a pass is scheduled are dropped.
//
// An Engine is not safe for concurrent use. It is meant to be driven from a
// Bubble Tea Update loop.
type Engine struct {
	id     int
	host   Host
	state  State
	count  int
	onPass func(Result)
	log    *slog.Logger

	width     float64
	preferred int
	requested int // last value passed to SetPreferredWidth
	context   any

	passes int
	last   Result
}

// NewEngine creates an engine bound to host
func NewEngine(host Host, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		id:     nextID(),
		host:   host,
		count:  opts.Count,
		onPass: opts.OnPass,
		log:    logger.With("component", "grid"),
	}
}

// ID identifies the engine's messages
func (e *Engine) ID() int { return e.id }

// State returns the current scheduling state
func (e *Engine) State() State { return e.state }

// Count returns the visible item hint
func (e *Engine) Count() int { return e.count }

// PreferredWidth returns the explicit width override, 0 when automatic
func (e *Engine) PreferredWidth() int { return e.preferred }

// Passes returns how many layout passes have run
func (e *Engine) Passes() int { return e.passes }

// Last returns the result of the most recent pass
func (e *Engine) Last() Result { return e.last }

// Request moves the engine from Idle to PassScheduled. It reports false when
// a pass is already pending.
func (e *Engine) Request() bool {
	if e.state == PassScheduled {
		return false
	}
	e.state = PassScheduled
	return true
}

// Schedule requests a pass and returns the command that delivers it, or nil
// when a pass is already pending.
func (e *Engine) Schedule() tea.Cmd {
	if !e.Request() {
		return nil
	}
	id := e.id
	return func() tea.Msg {
		return passMsg{id: id}
	}
}

// Update runs the scheduled pass when msg belongs to this engine and returns
// the command that emits LayoutCompleteMsg.
func (e *Engine) Update(msg tea.Msg) tea.Cmd {
	m, ok := msg.(passMsg)
	if !ok || m.id != e.id {
		return nil
	}
	e.Run()
	id := e.id
	return func() tea.Msg {
		return LayoutCompleteMsg{ID: id}
	}
}

// OnWidthChanged schedules a pass when the container width changed
func (e *Engine) OnWidthChanged(width float64) tea.Cmd {
	if width == e.width {
		return nil
	}
	e.width = width
	return e.Schedule()
}

// OnCountChanged updates the visible item hint
func (e *Engine) OnCountChanged(count int) tea.Cmd {
	if count < 0 {
		count = 0
	}
	if count == e.count {
		return nil
	}
	e.count = count
	return e.Schedule()
}

// OnItemsChanged is called when items are attached to or detached from the host
func (e *Engine) OnItemsChanged() tea.Cmd {
	return e.Schedule()
}

// OnResize is called when the viewport is resized
func (e *Engine) OnResize() tea.Cmd {
	return e.Schedule()
}

// OnContextSelected forces a pass when the opaque context value changes
func (e *Engine) OnContextSelected(v any) tea.Cmd {
	if reflect.DeepEqual(e.context, v) {
		return nil
	}
	e.context = v
	return e.Schedule()
}

// SetPreferredWidth sets an explicit container width. A request wider than
// the previous request clears the override back to automatic.
func (e *Engine) SetPreferredWidth(width int) tea.Cmd {
	if width < 0 {
		width = 0
	}
	prev := e.requested
	e.requested = width
	if width != 0 && prev != 0 && width > prev {
		width = 0
	}
	e.preferred = width
	e.host.SetWidth(width)
	return e.Schedule()
}

// Run executes a layout pass on the host and returns the engine to Idle
func (e *Engine) Run() Result {
	defer func() { e.state = Idle }()

	n := e.host.Len()
	items := make([]Measurement, n)
	for i := range items {
		items[i] = e.host.Measure(i)
	}

	res := Layout(e.host.Width(), items, e.count)
	e.passes++
	e.last = res

	if n == 0 {
		e.host.SetHeight(0)
		e.finish(res)
		return res
	}

	for i, pos := range res.Positions {
		target := Placement{X: pos.X, Y: pos.Y, Width: res.ItemWidth, Scale: 1}

		// Pop in: snap to the target at zero scale without animating, then
		// let the host animate to full scale.
		if !e.host.Transformed(i) {
			snap := target
			snap.Scale = 0
			e.host.SetTransitions(i, false)
			e.host.ApplyPosition(i, snap)
			e.host.Reflow(i)
		}

		e.host.SetTransitions(i, true)
		e.host.ApplyPosition(i, target)

		if e.host.Hidden(i) && clean(items[i].Height) != 0 {
			e.host.Show(i)
		}
	}

	for i := res.Visible; i < n; i++ {
		e.host.Hide(i)
	}

	e.host.SetHeight(res.Height)
	e.finish(res)
	return res
}

func (e *Engine) finish(res Result) {
	e.log.Debug("layout pass",
		"items", e.host.Len(),
		"columns", res.Columns,
		"visible", res.Visible,
		"height", res.Height,
	)
	if e.onPass != nil {
		e.onPass(res)
	}
}
