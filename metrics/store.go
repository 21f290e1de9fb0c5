// Package metrics persists per-run performance samples of the collision
// and pathfinding systems to SQLite, for offline comparison of cell
// sizes, maps and entity counts.
package metrics

import (
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	_ "modernc.org/sqlite"
)

const (
	sampleBufSize = 1024
	flushBatch    = 50
	flushInterval = 5 * time.Second
)

// Sample is one periodic measurement of a running simulation.
type Sample struct {
	RunID        string
	Tick         uint64
	Objects      int
	Cells        int
	AvgPerCell   float64
	Checks       uint64
	Hits         uint64
	PathRequests uint64
	PathFailures uint64
}

// Run is a recorded simulation run.
type Run struct {
	ID        string
	World     string
	StartedAt time.Time
	Ticks     uint64
	Duration  float64 // seconds
}

// Store wraps the SQLite database and a background batched writer, so
// recording a sample never blocks the simulation loop.
type Store struct {
	conn    *sql.DB
	samples chan Sample
	stop    chan struct{}
	wg      sync.WaitGroup
	log     *logrus.Entry
}

// Open opens (or creates) the metrics database and starts the writer.
func Open(path string, log *logrus.Logger) (*Store, error) {
	if log == nil {
		log = logrus.New()
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}

	s := &Store{
		conn:    conn,
		samples: make(chan Sample, sampleBufSize),
		stop:    make(chan struct{}),
		log:     log.WithField("component", "metrics"),
	}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	s.wg.Add(1)
	go s.writer()
	return s, nil
}

// Close flushes pending samples and closes the database.
func (s *Store) Close() error {
	close(s.stop)
	s.wg.Wait()
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		world TEXT NOT NULL DEFAULT '',
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		ticks INTEGER NOT NULL DEFAULT 0,
		duration REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS samples (
		run_id TEXT NOT NULL REFERENCES runs(id),
		tick INTEGER NOT NULL,
		objects INTEGER NOT NULL DEFAULT 0,
		cells INTEGER NOT NULL DEFAULT 0,
		avg_per_cell REAL NOT NULL DEFAULT 0,
		checks INTEGER NOT NULL DEFAULT 0,
		hits INTEGER NOT NULL DEFAULT 0,
		path_requests INTEGER NOT NULL DEFAULT 0,
		path_failures INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, tick)
	);

	CREATE INDEX IF NOT EXISTS idx_samples_run ON samples(run_id);
	`
	_, err := s.conn.Exec(schema)
	if err != nil {
		s.log.WithError(err).Error("migration failed")
	}
	return err
}

// BeginRun records a new run header and returns its ID.
func (s *Store) BeginRun(world string) (string, error) {
	id := uuid.NewString()
	_, err := s.conn.Exec("INSERT INTO runs (id, world) VALUES (?, ?)", id, world)
	return id, err
}

// FinishRun stores the final tick count and wall-clock duration.
func (s *Store) FinishRun(runID string, ticks uint64, duration float64) error {
	_, err := s.conn.Exec(
		"UPDATE runs SET ticks = ?, duration = ? WHERE id = ?",
		ticks, duration, runID,
	)
	return err
}

// Record enqueues a sample for async persistence. Non-blocking: when the
// buffer is full the sample is dropped rather than stalling the caller.
func (s *Store) Record(sample Sample) {
	select {
	case s.samples <- sample:
	default:
	}
}

// writer batches and writes samples in the background.
func (s *Store) writer() {
	defer s.wg.Done()

	batch := make([]Sample, 0, flushBatch)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case sample := <-s.samples:
			batch = append(batch, sample)
			if len(batch) >= flushBatch {
				s.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.flush(batch)
				batch = batch[:0]
			}
		case <-s.stop:
			// drain whatever is still queued
			for {
				select {
				case sample := <-s.samples:
					batch = append(batch, sample)
				default:
					if len(batch) > 0 {
						s.flush(batch)
					}
					return
				}
			}
		}
	}
}

func (s *Store) flush(batch []Sample) {
	tx, err := s.conn.Begin()
	if err != nil {
		s.log.WithError(err).Warn("begin tx failed")
		return
	}
	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO samples
		(run_id, tick, objects, cells, avg_per_cell, checks, hits, path_requests, path_failures)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		s.log.WithError(err).Warn("prepare failed")
		tx.Rollback()
		return
	}
	defer stmt.Close()

	for _, sm := range batch {
		if _, err := stmt.Exec(
			sm.RunID, sm.Tick, sm.Objects, sm.Cells, sm.AvgPerCell,
			sm.Checks, sm.Hits, sm.PathRequests, sm.PathFailures,
		); err != nil {
			s.log.WithError(err).Warn("sample insert failed")
		}
	}
	if err := tx.Commit(); err != nil {
		s.log.WithError(err).Warn("commit failed")
	}
}

// GetRun returns a run header, or nil when the ID is unknown.
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.conn.QueryRow(
		"SELECT id, world, started_at, ticks, duration FROM runs WHERE id = ?", id,
	)
	r := &Run{}
	err := row.Scan(&r.ID, &r.World, &r.StartedAt, &r.Ticks, &r.Duration)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

// RunSamples returns all samples of a run ordered by tick.
func (s *Store) RunSamples(runID string) ([]Sample, error) {
	rows, err := s.conn.Query(`
		SELECT run_id, tick, objects, cells, avg_per_cell, checks, hits, path_requests, path_failures
		FROM samples WHERE run_id = ? ORDER BY tick`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Sample
	for rows.Next() {
		var sm Sample
		if err := rows.Scan(
			&sm.RunID, &sm.Tick, &sm.Objects, &sm.Cells, &sm.AvgPerCell,
			&sm.Checks, &sm.Hits, &sm.PathRequests, &sm.PathFailures,
		); err != nil {
			return nil, err
		}
		result = append(result, sm)
	}
	return result, rows.Err()
}
