// Package stats holds the container statistics panel: two radial gauges for
// CPU and memory and a network traffic graph, fed by polled samples.
package stats

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/docker/go-units"
	"github.com/rusenback/dockerconsole/internal/gauge"
	"github.com/rusenback/dockerconsole/internal/model"
)

// Unavailable is shown wherever a value cannot be displayed
const Unavailable = "unavailable"

// Usage classes
const (
	ClassNone    = ""
	ClassInfo    = "info"
	ClassWarning = "warning"
	ClassDanger  = "danger"
)

var (
	panelTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F5C2E7"))
	detailStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6ADC8"))
	stoppedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))

	classColors = map[string]lipgloss.Color{
		ClassNone:    lipgloss.Color("#6C7086"),
		ClassInfo:    lipgloss.Color("#89B4FA"),
		ClassWarning: lipgloss.Color("#FAB387"),
		ClassDanger:  lipgloss.Color("#F38BA8"),
	}
)

// Class buckets a usage percentage
func Class(percent float64) string {
	switch {
	case percent == 0:
		return ClassNone
	case percent < 50:
		return ClassInfo
	case percent < 80:
		return ClassWarning
	default:
		return ClassDanger
	}
}

// Options configures a Panel
type Options struct {
	Diameter      int
	TrafficPoints int
}

// Panel is the statistics view-model of a single container
type Panel struct {
	container model.Container
	cpu       *gauge.Radial
	memory    *gauge.Radial
	network   *gauge.Traffic // nil for containers without their own network

	stopped  bool
	cpuKnown bool
	cpuPct   float64
	memPct   float64
	last     *model.Stats
}

// NewPanel builds the gauges for c and starts in the unavailable state
func NewPanel(c model.Container, opts Options) *Panel {
	if opts.Diameter == 0 {
		opts.Diameter = 20
	}
	if opts.TrafficPoints == 0 {
		opts.TrafficPoints = 120
	}

	p := &Panel{
		container: c,
		cpu:       gauge.NewRadial().Diameter(opts.Diameter).Value(0).MajorTitle(Unavailable).Label("CPU"),
		memory:    gauge.NewRadial().Diameter(opts.Diameter).Value(0).MajorTitle(Unavailable).Label("Memory"),
	}
	if !c.Networkless() {
		p.network = gauge.NewTraffic(opts.TrafficPoints)
	}

	p.reset()
	p.stopped = c.Stopped()
	return p
}

// ContainerID returns the id of the subject container
func (p *Panel) ContainerID() string { return p.container.ID }

// Stopped reports whether the subject is stopped
func (p *Panel) Stopped() bool { return p.stopped }

// CPUPercent returns the last CPU value and whether it was known
func (p *Panel) CPUPercent() (float64, bool) { return p.cpuPct, p.cpuKnown }

// MemoryPercent returns the last memory value
func (p *Panel) MemoryPercent() float64 { return p.memPct }

// HasData reports whether the panel shows a sample
func (p *Panel) HasData() bool { return p.last != nil }

// CPU returns the CPU gauge
func (p *Panel) CPU() *gauge.Radial { return p.cpu }

// Memory returns the memory gauge
func (p *Panel) Memory() *gauge.Radial { return p.memory }

// Network returns the traffic widget, nil when the container has none
func (p *Panel) Network() *gauge.Traffic { return p.network }

// OnDataUpdate renders a new sample. Missing data or a stopped subject
// resets the panel.
func (p *Panel) OnDataUpdate(s *model.Stats) {
	if s == nil || p.stopped {
		p.reset()
		return
	}
	p.last = s

	p.cpuKnown = s.CPUKnown
	if s.CPUKnown {
		p.cpuPct = s.CPUPercent
		p.cpu.Value(s.CPUPercent).MajorTitle("").Color(classColors[Class(s.CPUPercent)]).Render()
	} else {
		p.cpuPct = 0
		p.cpu.Value(0).MajorTitle(Unavailable).Render()
	}

	p.memPct = s.MemoryPercent()
	p.memory.
		MajorTitle(units.BytesSize(float64(s.MemoryUsage))).
		MinorTitle(units.BytesSize(float64(s.MemoryLimit))).
		Value(p.memPct).
		Color(classColors[Class(p.memPct)]).
		Render()

	if p.network != nil {
		p.network.SetData(s.NetworkRx, s.NetworkTx, s.Timestamp)
	}
}

// OnContainerUpdate tracks state changes of the subject
func (p *Panel) OnContainerUpdate(state string) {
	p.container.State = state
	if model.IsStoppedState(state) {
		p.stopped = true
		p.reset()
		return
	}
	p.stopped = false
}

// Preload seeds the traffic graph from stored history
func (p *Panel) Preload(samples []gauge.Sample) {
	if p.network == nil || p.stopped {
		return
	}
	p.network.Preload(samples)
}

func (p *Panel) reset() {
	p.last = nil
	p.cpuKnown = false
	p.cpuPct = 0
	p.memPct = 0
	p.cpu.Value(0).MajorTitle(Unavailable).Render()
	p.memory.MajorTitle(Unavailable).MinorTitle(Unavailable).Value(0).Render()
	if p.network != nil {
		p.network.Reset(Unavailable)
	}
}

// View renders the panel within width cells
func (p *Panel) View(width int) string {
	var s strings.Builder

	s.WriteString(panelTitleStyle.Render("Container: "+p.container.Name) + "\n\n")

	if p.stopped {
		s.WriteString(stoppedStyle.Render("Container is stopped") + "\n\n")
	}

	gauges := lipgloss.JoinHorizontal(lipgloss.Top, p.cpu.View(), "  ", p.memory.View())
	s.WriteString(gauges + "\n\n")
	s.WriteString(p.classLine() + "\n")

	if p.last != nil {
		s.WriteString(detailStyle.Render(fmt.Sprintf("PIDs: %d  Disk read: %s  write: %s",
			p.last.PIDs,
			units.BytesSize(float64(p.last.BlockRead)),
			units.BytesSize(float64(p.last.BlockWrite)),
		)) + "\n")
	}
	s.WriteString("\n")

	if p.network != nil {
		s.WriteString(p.network.View(width))
	} else {
		s.WriteString(detailStyle.Render("Network statistics are not available for this container"))
	}

	return s.String()
}

func (p *Panel) classLine() string {
	label := func(name string, pct float64) string {
		class := Class(pct)
		if class == ClassNone {
			class = "-"
		}
		return name + " " + lipgloss.NewStyle().Foreground(classColors[Class(pct)]).Render(class)
	}
	return label("CPU", p.cpuPct) + "  " + label("Memory", p.memPct)
}
