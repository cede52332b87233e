package docker

import (
	"testing"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/stretchr/testify/assert"
)

func sample() *types.StatsJSON {
	var s types.StatsJSON
	s.Read = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	s.CPUStats.CPUUsage.TotalUsage = 400
	s.PreCPUStats.CPUUsage.TotalUsage = 200
	s.CPUStats.SystemUsage = 2000
	s.PreCPUStats.SystemUsage = 1000
	s.CPUStats.OnlineCPUs = 2
	s.MemoryStats.Usage = 1000
	s.MemoryStats.Limit = 4000
	s.MemoryStats.Stats = map[string]uint64{"inactive_file": 200}
	s.PidsStats.Current = 12
	s.Networks = map[string]types.NetworkStats{
		"eth0": {RxBytes: 100, TxBytes: 10, RxPackets: 3, TxPackets: 1},
		"eth1": {RxBytes: 50, TxBytes: 5, RxPackets: 2, TxPackets: 1},
	}
	s.BlkioStats.IoServiceBytesRecursive = []types.BlkioStatEntry{
		{Op: "Read", Value: 4096},
		{Op: "write", Value: 1024},
		{Op: "Total", Value: 5120},
	}
	return &s
}

func TestConvertStats(t *testing.T) {
	got := convertStats(sample())

	assert.True(t, got.CPUKnown)
	assert.InDelta(t, 40.0, got.CPUPercent, 0.0001)
	assert.Equal(t, uint64(800), got.MemoryUsage, "page cache is excluded")
	assert.Equal(t, uint64(200), got.MemoryCache)
	assert.Equal(t, uint64(4000), got.MemoryLimit)
	assert.Equal(t, 20.0, got.MemoryPercent())
	assert.Equal(t, uint64(150), got.NetworkRx)
	assert.Equal(t, uint64(15), got.NetworkTx)
	assert.Equal(t, uint64(5), got.NetworkRxPackets)
	assert.Equal(t, uint64(2), got.NetworkTxPackets)
	assert.Equal(t, uint64(4096), got.BlockRead)
	assert.Equal(t, uint64(1024), got.BlockWrite)
	assert.Equal(t, uint64(12), got.PIDs)
	assert.Equal(t, sample().Read, got.Timestamp)
}

func TestCalculateCPUPercent(t *testing.T) {
	first := sample()
	first.PreCPUStats.SystemUsage = 0
	_, known := calculateCPUPercent(first)
	assert.False(t, known, "first sample has no previous reading")

	percpu := sample()
	percpu.CPUStats.OnlineCPUs = 0
	percpu.CPUStats.CPUUsage.PercpuUsage = []uint64{1, 1, 1, 1}
	pct, known := calculateCPUPercent(percpu)
	assert.True(t, known)
	assert.InDelta(t, 80.0, pct, 0.0001)

	idle := sample()
	idle.CPUStats.CPUUsage.TotalUsage = 200
	pct, known = calculateCPUPercent(idle)
	assert.True(t, known)
	assert.Equal(t, 0.0, pct)
}

func TestMemoryCache(t *testing.T) {
	assert.Equal(t, uint64(7), memoryCache(map[string]uint64{"total_inactive_file": 7, "inactive_file": 9}))
	assert.Equal(t, uint64(9), memoryCache(map[string]uint64{"inactive_file": 9}))
	assert.Equal(t, uint64(3), memoryCache(map[string]uint64{"cache": 3}))
	assert.Equal(t, uint64(0), memoryCache(nil))
}

func TestToContainer(t *testing.T) {
	c := types.Container{
		ID:      "0123456789abcdef0123",
		Names:   []string{"/api"},
		Image:   "nginx:1.27",
		State:   "running",
		Status:  "Up 3 minutes",
		Created: 1700000000,
		Ports:   []types.Port{{PrivatePort: 80, PublicPort: 8080, Type: "tcp"}},
	}
	c.HostConfig.NetworkMode = "bridge"

	got := toContainer(c)

	assert.Equal(t, "0123456789ab", got.ID)
	assert.Equal(t, "api", got.Name)
	assert.Equal(t, "bridge", got.NetworkMode)
	assert.Equal(t, time.Unix(1700000000, 0), got.Created)
	assert.Len(t, got.Ports, 1)
	assert.Equal(t, 8080, got.Ports[0].Public)

	short := toContainer(types.Container{ID: "abc"})
	assert.Equal(t, "abc", short.ID)
	assert.Equal(t, "abc", short.Name)
}
