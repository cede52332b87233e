// internal/model/stats.go
package model

import "time"

// Stats is one resource usage sample of a container
type Stats struct {
	// CPUKnown is false when no previous sample existed to compute a delta
	CPUKnown   bool
	CPUPercent float64

	MemoryUsage uint64
	MemoryLimit uint64
	MemoryCache uint64 // Cache memory (can be freed)

	// Network, cumulative
	NetworkRx        uint64
	NetworkTx        uint64
	NetworkRxPackets uint64
	NetworkTxPackets uint64

	// Block I/O (Disk)
	BlockRead  uint64
	BlockWrite uint64

	PIDs uint64

	Timestamp time.Time
}

// MemoryPercent returns usage relative to the limit, 0 when either is unknown
func (s *Stats) MemoryPercent() float64 {
	if s == nil || s.MemoryUsage == 0 || s.MemoryLimit == 0 {
		return 0
	}
	return float64(s.MemoryUsage) / float64(s.MemoryLimit) * 100.0
}
