package grid

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeItem struct {
	m           Measurement
	transformed bool
	hidden      bool
	placement   Placement
}

type fakeHost struct {
	width     float64
	items     []*fakeItem
	height    float64
	explicitW int
	calls     []string
}

func newFakeHost(width float64, n int, m Measurement) *fakeHost {
	h := &fakeHost{width: width}
	for i := 0; i < n; i++ {
		h.items = append(h.items, &fakeItem{m: m})
	}
	return h
}

func (h *fakeHost) Width() float64            { return h.width }
func (h *fakeHost) Len() int                  { return len(h.items) }
func (h *fakeHost) Measure(i int) Measurement { return h.items[i].m }
func (h *fakeHost) Transformed(i int) bool    { return h.items[i].transformed }
func (h *fakeHost) Hidden(i int) bool         { return h.items[i].hidden }
func (h *fakeHost) SetHeight(v float64)       { h.height = v }
func (h *fakeHost) SetWidth(w int)            { h.explicitW = w }

func (h *fakeHost) SetTransitions(i int, enabled bool) {
	h.calls = append(h.calls, fmt.Sprintf("transitions %d %v", i, enabled))
}

func (h *fakeHost) Reflow(i int) {
	h.calls = append(h.calls, fmt.Sprintf("reflow %d", i))
}

func (h *fakeHost) ApplyPosition(i int, p Placement) {
	h.items[i].transformed = true
	h.items[i].placement = p
	h.calls = append(h.calls, fmt.Sprintf("apply %d %.0f,%.0f scale=%.0f", i, p.X, p.Y, p.Scale))
}

func (h *fakeHost) Show(i int) {
	h.items[i].hidden = false
	h.calls = append(h.calls, fmt.Sprintf("show %d", i))
}

func (h *fakeHost) Hide(i int) {
	h.items[i].hidden = true
	h.calls = append(h.calls, fmt.Sprintf("hide %d", i))
}

func quietOptions() Options {
	return Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

var card = Measurement{Height: 10, MinWidth: 150, MaxWidth: 300}

func TestEngineCoalescesBurst(t *testing.T) {
	host := newFakeHost(600, 5, card)
	e := NewEngine(host, quietOptions())

	scheduled := 0
	var pending []func() any
	for i := 0; i < 5; i++ {
		if cmd := e.OnResize(); cmd != nil {
			scheduled++
			pending = append(pending, func() any { return cmd() })
		}
	}

	require.Equal(t, 1, scheduled)
	assert.Equal(t, PassScheduled, e.State())

	msg := pending[0]()
	done := e.Update(msg)
	require.NotNil(t, done)
	assert.Equal(t, LayoutCompleteMsg{ID: e.ID()}, done())
	assert.Equal(t, 1, e.Passes())
	assert.Equal(t, Idle, e.State())

	// Guard is released after the pass
	assert.NotNil(t, e.OnResize())
}

func TestEngineIgnoresForeignPass(t *testing.T) {
	a := NewEngine(newFakeHost(600, 2, card), quietOptions())
	b := NewEngine(newFakeHost(600, 2, card), quietOptions())

	cmd := a.OnItemsChanged()
	require.NotNil(t, cmd)

	assert.Nil(t, b.Update(cmd()))
	assert.Equal(t, 0, b.Passes())
	assert.Nil(t, b.Update("unrelated"))
}

func TestEnginePopIn(t *testing.T) {
	host := newFakeHost(300, 2, card)
	e := NewEngine(host, quietOptions())

	e.Run()
	assert.Equal(t, []string{
		"transitions 0 false",
		"apply 0 0,0 scale=0",
		"reflow 0",
		"transitions 0 true",
		"apply 0 0,0 scale=1",
		"transitions 1 false",
		"apply 1 150,0 scale=0",
		"reflow 1",
		"transitions 1 true",
		"apply 1 150,0 scale=1",
	}, host.calls)

	host.calls = nil
	e.Run()
	assert.NotContains(t, host.calls, "reflow 0")
	assert.NotContains(t, host.calls, "reflow 1")
	assert.Equal(t, 150, host.items[1].placement.Width)
	assert.Equal(t, 1.0, host.items[1].placement.Scale)
}

func TestEngineHidesBeyondVisible(t *testing.T) {
	host := newFakeHost(600, 6, card)
	host.items[2].hidden = true
	e := NewEngine(host, Options{Count: 3, Logger: quietOptions().Logger})

	res := e.Run()

	assert.Equal(t, 4, res.Visible)
	assert.False(t, host.items[2].hidden, "visible item with height is shown again")
	assert.False(t, host.items[3].hidden)
	assert.True(t, host.items[4].hidden)
	assert.True(t, host.items[5].hidden)
	assert.Equal(t, 10.0, host.height)
}

func TestEngineKeepsZeroHeightHidden(t *testing.T) {
	host := newFakeHost(600, 3, card)
	host.items[1].m.Height = 0
	host.items[1].hidden = true
	e := NewEngine(host, quietOptions())

	e.Run()

	assert.True(t, host.items[1].hidden)
	assert.True(t, host.items[1].transformed, "zero-height items are still positioned")
}

func TestEngineNoItems(t *testing.T) {
	host := newFakeHost(600, 0, card)
	host.height = 42
	var results []Result
	e := NewEngine(host, Options{OnPass: func(r Result) { results = append(results, r) }, Logger: quietOptions().Logger})

	cmd := e.OnItemsChanged()
	require.NotNil(t, cmd)
	done := e.Update(cmd())
	require.NotNil(t, done)

	assert.Equal(t, 0.0, host.height)
	assert.Empty(t, host.calls)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Positions)
	assert.Equal(t, LayoutCompleteMsg{ID: e.ID()}, done())
}

func TestEngineIdempotent(t *testing.T) {
	host := newFakeHost(500, 7, Measurement{Height: 4, MinWidth: 90, MaxWidth: 120, MarginLeft: 1, MarginRight: 1})
	e := NewEngine(host, quietOptions())

	first := e.Run()
	placements := make([]Placement, len(host.items))
	for i, it := range host.items {
		placements[i] = it.placement
	}
	height := host.height

	second := e.Run()

	assert.Equal(t, first, second)
	assert.Equal(t, height, host.height)
	for i, it := range host.items {
		assert.Equal(t, placements[i], it.placement)
	}
}

func TestEngineWidthAndCountTriggers(t *testing.T) {
	e := NewEngine(newFakeHost(600, 3, card), quietOptions())

	require.NotNil(t, e.OnWidthChanged(80))
	e.Run()
	assert.Nil(t, e.OnWidthChanged(80), "same width does not relayout")

	require.NotNil(t, e.OnCountChanged(4))
	e.Run()
	assert.Equal(t, 4, e.Count())
	assert.Nil(t, e.OnCountChanged(4))

	require.NotNil(t, e.OnCountChanged(-3))
	assert.Equal(t, 0, e.Count())
}

func TestEngineContextSelected(t *testing.T) {
	e := NewEngine(newFakeHost(600, 3, card), quietOptions())

	require.NotNil(t, e.OnContextSelected("abc"))
	e.Run()
	assert.Nil(t, e.OnContextSelected("abc"))
	assert.NotNil(t, e.OnContextSelected("def"))
}

func TestEnginePreferredWidth(t *testing.T) {
	host := newFakeHost(600, 3, card)
	e := NewEngine(host, quietOptions())

	tests := []struct {
		set  int
		want int
	}{
		{80, 80},
		{60, 60},
		{70, 0}, // growing clears the override
		{75, 0}, // compared with the last request, not the cleared width
		{50, 50},
		{0, 0},
		{90, 90}, // from automatic any width is taken
	}

	for _, tt := range tests {
		e.SetPreferredWidth(tt.set)
		e.Run()
		assert.Equal(t, tt.want, e.PreferredWidth(), "set %d", tt.set)
		assert.Equal(t, tt.want, host.explicitW, "set %d", tt.set)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "pass-scheduled", PassScheduled.String())
	assert.Equal(t, "unknown", State(9).String())
}
