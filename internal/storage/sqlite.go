package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// TimeRange represents different time window options
type TimeRange int

const (
	Range30Min TimeRange = iota
	Range1Hour
	Range6Hour
	Range1Day
	Range1Week
)

func (t TimeRange) String() string {
	switch t {
	case Range30Min:
		return "30min"
	case Range1Hour:
		return "1hour"
	case Range6Hour:
		return "6hours"
	case Range1Day:
		return "1day"
	case Range1Week:
		return "1week"
	default:
		return "unknown"
	}
}

// Duration returns the time duration for the range
func (t TimeRange) Duration() time.Duration {
	switch t {
	case Range30Min:
		return 30 * time.Minute
	case Range1Hour:
		return 1 * time.Hour
	case Range6Hour:
		return 6 * time.Hour
	case Range1Day:
		return 24 * time.Hour
	case Range1Week:
		return 7 * 24 * time.Hour
	default:
		return 30 * time.Minute
	}
}

// bucket returns the aggregation bucket in seconds, 0 for full resolution
func (t TimeRange) bucket() int64 {
	switch t {
	case Range1Hour:
		return 30
	case Range6Hour:
		return 300
	case Range1Day:
		return 600
	case Range1Week:
		return 3600
	default:
		return 0
	}
}

// DataPoint represents a single data point in time
type DataPoint struct {
	Timestamp     time.Time
	CPUPercent    float64
	MemoryPercent float64
	NetworkRx     uint64
	NetworkTx     uint64
}

// StatsEntry represents a stats entry to be written
type StatsEntry struct {
	ContainerID   string
	Timestamp     time.Time
	CPUPercent    float64
	MemoryPercent float64
	MemoryUsage   uint64
	MemoryLimit   uint64
	NetworkRx     uint64
	NetworkTx     uint64
	BlockRead     uint64
	BlockWrite    uint64
	PIDs          uint64
}

// Options configures a Storage
type Options struct {
	// Path of the database file, empty for ~/.dockerconsole/stats.db
	Path          string
	Retention     time.Duration
	FlushInterval time.Duration
	Logger        *slog.Logger
}

// Storage handles persistent statistics storage
type Storage struct {
	db        *sql.DB
	log       *slog.Logger
	retention time.Duration
	flush     time.Duration
	writeChan chan *StatsEntry
	closeChan chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	dropped   atomic.Int64
}

// DefaultPath returns the database location under the user's home
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".dockerconsole", "stats.db"), nil
}

// Open opens or creates the database and starts the background writer
func Open(opts Options) (*Storage, error) {
	path := opts.Path
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if opts.Retention == 0 {
		opts.Retention = 7 * 24 * time.Hour
	}
	if opts.FlushInterval == 0 {
		opts.FlushInterval = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps writes and reads serialized for SQLite
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	s := &Storage{
		db:        db,
		log:       opts.Logger.With("component", "storage"),
		retention: opts.Retention,
		flush:     opts.FlushInterval,
		writeChan: make(chan *StatsEntry, 1000),
		closeChan: make(chan struct{}),
	}

	s.wg.Add(2)
	go s.writer()
	go s.cleanup()

	return s, nil
}

// createTables creates the database schema
func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS container_stats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		container_id TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		cpu_percent REAL,
		memory_percent REAL,
		memory_usage INTEGER,
		memory_limit INTEGER,
		network_rx INTEGER,
		network_tx INTEGER,
		block_read INTEGER,
		block_write INTEGER,
		pids INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_container_time
	ON container_stats(container_id, timestamp);
	`

	_, err := db.Exec(schema)
	return err
}

// Write queues a stats entry for writing. Entries are dropped when the
// queue is full so the UI never blocks on disk.
func (s *Storage) Write(entry *StatsEntry) {
	select {
	case s.writeChan <- entry:
	default:
		s.dropped.Add(1)
	}
}

// Dropped returns how many entries were discarded because the queue was full
func (s *Storage) Dropped() int64 {
	return s.dropped.Load()
}

// writer runs in background and batch writes to database
func (s *Storage) writer() {
	defer s.wg.Done()

	buffer := make([]*StatsEntry, 0, 100)
	ticker := time.NewTicker(s.flush)
	defer ticker.Stop()

	for {
		select {
		case entry := <-s.writeChan:
			buffer = append(buffer, entry)
			if len(buffer) >= 50 {
				s.batchWrite(buffer)
				buffer = buffer[:0]
			}

		case <-ticker.C:
			if len(buffer) > 0 {
				s.batchWrite(buffer)
				buffer = buffer[:0]
			}

		case <-s.closeChan:
			// Drain whatever is still queued, then flush
		drain:
			for {
				select {
				case entry := <-s.writeChan:
					buffer = append(buffer, entry)
				default:
					break drain
				}
			}
			if len(buffer) > 0 {
				s.batchWrite(buffer)
			}
			return
		}
	}
}

// batchWrite writes a batch of entries in one transaction
func (s *Storage) batchWrite(entries []*StatsEntry) {
	tx, err := s.db.Begin()
	if err != nil {
		s.log.Error("begin batch", "error", err)
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO container_stats
		(container_id, timestamp, cpu_percent, memory_percent,
		 memory_usage, memory_limit, network_rx, network_tx,
		 block_read, block_write, pids)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		s.log.Error("prepare insert", "error", err)
		return
	}
	defer stmt.Close()

	for _, entry := range entries {
		_, err := stmt.Exec(
			entry.ContainerID,
			entry.Timestamp.Unix(),
			entry.CPUPercent,
			entry.MemoryPercent,
			int64(entry.MemoryUsage),
			int64(entry.MemoryLimit),
			int64(entry.NetworkRx),
			int64(entry.NetworkTx),
			int64(entry.BlockRead),
			int64(entry.BlockWrite),
			int64(entry.PIDs),
		)
		if err != nil {
			s.log.Warn("insert stats entry", "container", entry.ContainerID, "error", err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.log.Error("commit batch", "error", err)
		return
	}
	s.log.Debug("stats batch written", "entries", len(entries))
}

// Query retrieves data points for a container and time range. Ranges above
// 30 minutes are averaged into buckets; network counters take the bucket max
// since they are cumulative.
func (s *Storage) Query(containerID string, timeRange TimeRange) ([]DataPoint, error) {
	return s.queryAt(containerID, timeRange, time.Now())
}

func (s *Storage) queryAt(containerID string, timeRange TimeRange, now time.Time) ([]DataPoint, error) {
	cutoff := now.Add(-timeRange.Duration()).Unix()

	var rows *sql.Rows
	var err error

	if size := timeRange.bucket(); size == 0 {
		rows, err = s.db.Query(`
			SELECT timestamp, cpu_percent, memory_percent, network_rx, network_tx
			FROM container_stats
			WHERE container_id = ? AND timestamp > ?
			ORDER BY timestamp ASC
		`, containerID, cutoff)
	} else {
		rows, err = s.db.Query(`
			SELECT
				(timestamp / ?) * ? as bucket,
				AVG(cpu_percent),
				AVG(memory_percent),
				MAX(network_rx),
				MAX(network_tx)
			FROM container_stats
			WHERE container_id = ? AND timestamp > ?
			GROUP BY bucket
			ORDER BY bucket ASC
		`, size, size, containerID, cutoff)
	}
	if err != nil {
		return nil, fmt.Errorf("query %s stats: %w", timeRange, err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// scanRows scans database rows into DataPoints
func scanRows(rows *sql.Rows) ([]DataPoint, error) {
	var points []DataPoint

	for rows.Next() {
		var timestamp, rx, tx int64
		var cpu, mem float64

		if err := rows.Scan(&timestamp, &cpu, &mem, &rx, &tx); err != nil {
			return points, err
		}

		points = append(points, DataPoint{
			Timestamp:     time.Unix(timestamp, 0),
			CPUPercent:    cpu,
			MemoryPercent: mem,
			NetworkRx:     uint64(rx),
			NetworkTx:     uint64(tx),
		})
	}

	return points, rows.Err()
}

// cleanup removes old data periodically
func (s *Storage) cleanup() {
	defer s.wg.Done()

	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.deleteBefore(time.Now().Add(-s.retention).Unix())

		case <-s.closeChan:
			return
		}
	}
}

// deleteBefore removes old records in batches to prevent long-running locks
func (s *Storage) deleteBefore(cutoff int64) int64 {
	const batchSize = 1000
	var total int64
	for {
		result, err := s.db.Exec(`
			DELETE FROM container_stats WHERE id IN (
				SELECT id FROM container_stats WHERE timestamp < ? LIMIT ?
			)`,
			cutoff,
			batchSize,
		)
		if err != nil {
			s.log.Error("delete old stats", "error", err)
			return total
		}

		n, err := result.RowsAffected()
		if err != nil || n == 0 {
			return total
		}
		total += n
	}
}

// Close flushes pending entries and closes the database
func (s *Storage) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closeChan)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}
