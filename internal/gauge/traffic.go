// internal/gauge/traffic.go
package gauge

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/docker/go-units"
)

var (
	trafficTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#B4BEFE"))
	trafficInStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#89B4FA"))
	trafficOutStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF"))
	trafficDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
)

// Sample is a cumulative network counter reading
type Sample struct {
	At time.Time
	Rx uint64
	Tx uint64
}

// Traffic turns cumulative rx/tx counters into per-second rates and draws
// them as two sparklines.
type Traffic struct {
	capacity    int
	in          []float64
	out         []float64
	last        *Sample
	placeholder string
}

// NewTraffic keeps at most capacity rate points per direction
func NewTraffic(capacity int) *Traffic {
	if capacity < 1 {
		capacity = 1
	}
	return &Traffic{capacity: capacity}
}

// SetData records a new counter reading
func (t *Traffic) SetData(rx, tx uint64, at time.Time) {
	cur := Sample{At: at, Rx: rx, Tx: tx}
	t.placeholder = ""

	prev := t.last
	t.last = &cur
	if prev == nil || !at.After(prev.At) {
		return
	}
	// Counters reset when the container restarts; take the new baseline
	if rx < prev.Rx || tx < prev.Tx {
		return
	}

	secs := at.Sub(prev.At).Seconds()
	t.in = push(t.in, float64(rx-prev.Rx)/secs, t.capacity)
	t.out = push(t.out, float64(tx-prev.Tx)/secs, t.capacity)
}

// Preload feeds historical readings in order
func (t *Traffic) Preload(samples []Sample) {
	for _, s := range samples {
		t.SetData(s.Rx, s.Tx, s.At)
	}
}

// Reset drops all data and shows text instead of the graph
func (t *Traffic) Reset(text string) {
	t.in = nil
	t.out = nil
	t.last = nil
	t.placeholder = text
}

// Rates returns the most recent in/out rates in bytes per second
func (t *Traffic) Rates() (in, out float64) {
	if len(t.in) > 0 {
		in = t.in[len(t.in)-1]
	}
	if len(t.out) > 0 {
		out = t.out[len(t.out)-1]
	}
	return in, out
}

// Points returns the number of rate points held
func (t *Traffic) Points() int { return len(t.in) }

// View renders the widget within width cells
func (t *Traffic) View(width int) string {
	var s strings.Builder
	s.WriteString(trafficTitleStyle.Render("Network") + "\n")

	if t.placeholder != "" {
		s.WriteString(trafficDimStyle.Render(t.placeholder))
		return s.String()
	}
	if len(t.in) == 0 {
		s.WriteString(trafficDimStyle.Render("Collecting samples..."))
		return s.String()
	}

	in, out := t.Rates()
	inLabel := fmt.Sprintf(" %10s/s", units.BytesSize(in))
	outLabel := fmt.Sprintf(" %10s/s", units.BytesSize(out))

	graphWidth := width - 6 - lipgloss.Width(inLabel)
	if graphWidth < 8 {
		graphWidth = 8
	}

	s.WriteString("In  " + trafficInStyle.Render(Sparkline(t.in, graphWidth)) + inLabel + "\n")
	s.WriteString("Out " + trafficOutStyle.Render(Sparkline(t.out, graphWidth)) + outLabel)
	return s.String()
}

func push(series []float64, v float64, capacity int) []float64 {
	series = append(series, v)
	if len(series) > capacity {
		series = series[len(series)-capacity:]
	}
	return series
}
