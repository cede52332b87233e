package stats

import (
	"testing"
	"time"

	"github.com/rusenback/dockerconsole/internal/gauge"
	"github.com/rusenback/dockerconsole/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func running() model.Container {
	return model.Container{ID: "abc123", Name: "web", State: "running", NetworkMode: "bridge"}
}

func TestClass(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{0, ClassNone},
		{0.1, ClassInfo},
		{49.9, ClassInfo},
		{50, ClassWarning},
		{79.9, ClassWarning},
		{80, ClassDanger},
		{140, ClassDanger},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Class(tt.pct), "pct %v", tt.pct)
	}
}

func TestNewPanelStartsUnavailable(t *testing.T) {
	p := NewPanel(running(), Options{})

	assert.Equal(t, Unavailable, p.CPU().Title())
	assert.Equal(t, Unavailable, p.Memory().Title())
	assert.Equal(t, 0.0, p.CPU().Percent())
	require.NotNil(t, p.Network())
	assert.Contains(t, p.Network().View(40), Unavailable)
	assert.False(t, p.Stopped())
}

func TestNewPanelStoppedContainer(t *testing.T) {
	c := running()
	c.State = "exited"

	p := NewPanel(c, Options{})
	p.OnDataUpdate(&model.Stats{CPUKnown: true, CPUPercent: 30})

	assert.True(t, p.Stopped())
	assert.Equal(t, Unavailable, p.CPU().Title())
}

func TestOnDataUpdate(t *testing.T) {
	p := NewPanel(running(), Options{})
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	p.OnDataUpdate(&model.Stats{
		CPUKnown:    true,
		CPUPercent:  42,
		MemoryUsage: 512 * 1024 * 1024,
		MemoryLimit: 2048 * 1024 * 1024,
		NetworkRx:   1000,
		NetworkTx:   100,
		Timestamp:   at,
	})

	cpu, known := p.CPUPercent()
	assert.True(t, known)
	assert.Equal(t, 42.0, cpu)
	assert.Equal(t, "42.0%", p.CPU().Title())
	assert.Equal(t, 25.0, p.MemoryPercent())
	assert.Equal(t, "512MiB", p.Memory().Title())

	p.OnDataUpdate(&model.Stats{
		CPUKnown:    true,
		CPUPercent:  10,
		MemoryUsage: 1,
		MemoryLimit: 4,
		NetworkRx:   3000,
		NetworkTx:   300,
		Timestamp:   at.Add(2 * time.Second),
	})
	in, out := p.Network().Rates()
	assert.Equal(t, 1000.0, in)
	assert.Equal(t, 100.0, out)
}

func TestOnDataUpdateUnknownCPU(t *testing.T) {
	p := NewPanel(running(), Options{})

	p.OnDataUpdate(&model.Stats{CPUKnown: false, CPUPercent: 99, MemoryUsage: 5})

	cpu, known := p.CPUPercent()
	assert.False(t, known)
	assert.Equal(t, 0.0, cpu)
	assert.Equal(t, Unavailable, p.CPU().Title())
	assert.Equal(t, 0.0, p.MemoryPercent(), "no limit means zero percent")
}

func TestOnDataUpdateNilResets(t *testing.T) {
	p := NewPanel(running(), Options{})
	assert.False(t, p.HasData())
	p.OnDataUpdate(&model.Stats{CPUKnown: true, CPUPercent: 60, MemoryUsage: 1, MemoryLimit: 2})
	assert.True(t, p.HasData())

	p.OnDataUpdate(nil)

	assert.False(t, p.HasData())
	assert.Equal(t, Unavailable, p.CPU().Title())
	assert.Equal(t, Unavailable, p.Memory().Title())
	assert.Equal(t, 0.0, p.MemoryPercent())
}

func TestOnContainerUpdate(t *testing.T) {
	p := NewPanel(running(), Options{})
	p.OnDataUpdate(&model.Stats{CPUKnown: true, CPUPercent: 60})

	p.OnContainerUpdate("exited")
	assert.True(t, p.Stopped())
	assert.Equal(t, Unavailable, p.CPU().Title())

	// Samples are ignored while stopped
	p.OnDataUpdate(&model.Stats{CPUKnown: true, CPUPercent: 70})
	assert.Equal(t, Unavailable, p.CPU().Title())

	p.OnContainerUpdate("running")
	assert.False(t, p.Stopped())
	p.OnDataUpdate(&model.Stats{CPUKnown: true, CPUPercent: 70})
	assert.Equal(t, "70.0%", p.CPU().Title())
}

func TestNetworklessContainer(t *testing.T) {
	c := running()
	c.NetworkMode = "host"

	p := NewPanel(c, Options{})
	p.OnDataUpdate(&model.Stats{CPUKnown: true, CPUPercent: 5, NetworkRx: 10})
	p.Preload([]gauge.Sample{{At: time.Now(), Rx: 1}})

	assert.Nil(t, p.Network())
	assert.Contains(t, p.View(60), "not available")
}

func TestPreload(t *testing.T) {
	p := NewPanel(running(), Options{TrafficPoints: 10})
	start := time.Now()

	p.Preload([]gauge.Sample{
		{At: start, Rx: 0, Tx: 0},
		{At: start.Add(time.Second), Rx: 100, Tx: 50},
		{At: start.Add(2 * time.Second), Rx: 300, Tx: 150},
	})

	assert.Equal(t, 2, p.Network().Points())
}

func TestView(t *testing.T) {
	p := NewPanel(running(), Options{Diameter: 16})
	p.OnDataUpdate(&model.Stats{CPUKnown: true, CPUPercent: 85, MemoryUsage: 1, MemoryLimit: 4, PIDs: 7})

	view := p.View(70)

	assert.Contains(t, view, "Container: web")
	assert.Contains(t, view, "CPU danger")
	assert.Contains(t, view, "Memory info")
	assert.Contains(t, view, "PIDs: 7")
}
