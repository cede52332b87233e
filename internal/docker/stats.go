// internal/docker/stats.go
package docker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/rusenback/dockerconsole/internal/model"
)

// GetContainerStats fetches a single stats sample
func (c *Client) GetContainerStats(id string) (*model.Stats, error) {
	ctx, cancel := context.WithTimeout(c.ctx, 5*time.Second)
	defer cancel()

	resp, err := c.cli.ContainerStats(ctx, id, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var stats types.StatsJSON
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	return convertStats(&stats), nil
}

// StreamContainerStats streams stats until the returned cancel func is called.
// The stats channel is closed when the stream ends.
func (c *Client) StreamContainerStats(id string) (<-chan *model.Stats, <-chan error, func()) {
	statsChan := make(chan *model.Stats)
	errChan := make(chan error, 1)
	ctx, cancel := context.WithCancel(c.ctx)

	go func() {
		defer close(statsChan)
		defer close(errChan)

		resp, err := c.cli.ContainerStats(ctx, id, true)
		if err != nil {
			errChan <- err
			return
		}
		defer resp.Body.Close()

		decoder := json.NewDecoder(resp.Body)
		for {
			var stats types.StatsJSON
			if err := decoder.Decode(&stats); err != nil {
				if err == io.EOF || errors.Is(err, context.Canceled) || ctx.Err() != nil {
					return
				}
				errChan <- err
				return
			}

			select {
			case statsChan <- convertStats(&stats):
			case <-ctx.Done():
				return
			}
		}
	}()

	return statsChan, errChan, cancel
}

// convertStats maps a daemon sample to the model, the same way docker stats does
func convertStats(s *types.StatsJSON) *model.Stats {
	out := &model.Stats{
		Timestamp:   s.Read,
		MemoryLimit: s.MemoryStats.Limit,
		PIDs:        s.PidsStats.Current,
	}
	if out.Timestamp.IsZero() {
		out.Timestamp = time.Now()
	}

	out.CPUPercent, out.CPUKnown = calculateCPUPercent(s)

	out.MemoryCache = memoryCache(s.MemoryStats.Stats)
	out.MemoryUsage = s.MemoryStats.Usage
	if out.MemoryCache < out.MemoryUsage {
		out.MemoryUsage -= out.MemoryCache
	}

	for _, network := range s.Networks {
		out.NetworkRx += network.RxBytes
		out.NetworkTx += network.TxBytes
		out.NetworkRxPackets += network.RxPackets
		out.NetworkTxPackets += network.TxPackets
	}

	for _, entry := range s.BlkioStats.IoServiceBytesRecursive {
		switch strings.ToLower(entry.Op) {
		case "read":
			out.BlockRead += entry.Value
		case "write":
			out.BlockWrite += entry.Value
		}
	}

	return out
}

// calculateCPUPercent returns CPU usage in percent and whether a previous
// sample existed to compute it from
func calculateCPUPercent(s *types.StatsJSON) (float64, bool) {
	if s.PreCPUStats.SystemUsage == 0 {
		return 0, false
	}

	cpuDelta := float64(s.CPUStats.CPUUsage.TotalUsage) - float64(s.PreCPUStats.CPUUsage.TotalUsage)
	systemDelta := float64(s.CPUStats.SystemUsage) - float64(s.PreCPUStats.SystemUsage)

	cpus := float64(s.CPUStats.OnlineCPUs)
	if cpus == 0 {
		cpus = float64(len(s.CPUStats.CPUUsage.PercpuUsage))
	}

	if systemDelta > 0.0 && cpuDelta > 0.0 {
		return (cpuDelta / systemDelta) * cpus * 100.0, true
	}
	return 0.0, true
}

// memoryCache picks the page cache counter for cgroup v1 or v2
func memoryCache(stats map[string]uint64) uint64 {
	if v, ok := stats["total_inactive_file"]; ok {
		return v
	}
	if v, ok := stats["inactive_file"]; ok {
		return v
	}
	return stats["cache"]
}
