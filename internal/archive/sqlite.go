// Package archive keeps a SQLite index of finished runs: seed, distance,
// duration and the replay file path, so past runs can be listed and ranked.
package archive

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one archived play run.
type Run struct {
	ID         string
	Seed       int64
	StartedAt  time.Time
	Duration   time.Duration
	Distance   float64
	Ticks      uint64
	ReplayPath string

	flushDone chan struct{}
}

// Archive wraps the runs database. Writes go through a single goroutine so
// the simulation loop never blocks on disk.
type Archive struct {
	db *sql.DB

	ch   chan Run
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

// Open opens (creating if needed) the runs database at path.
func Open(path string) (*Archive, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &Archive{
		db: db,
		ch: make(chan Run, 64),
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.loop()
	}()
	return a, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			distance REAL NOT NULL,
			ticks INTEGER NOT NULL,
			replay_path TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_distance ON runs(distance DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_seed ON runs(seed, distance DESC);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close drains pending writes and closes the database.
func (a *Archive) Close() error {
	var err error
	a.once.Do(func() {
		a.closed.Store(true)
		close(a.ch)
		a.wg.Wait()
		err = a.db.Close()
	})
	return err
}

// Record queues a finished run for insertion. Drops the row if the writer has
// fallen behind; the replay file remains the source of truth.
func (a *Archive) Record(r Run) {
	if a == nil || a.closed.Load() {
		return
	}
	select {
	case a.ch <- r:
	default:
	}
}

// Flush blocks until every run queued before the call is on disk.
func (a *Archive) Flush() {
	if a == nil || a.closed.Load() {
		return
	}
	done := make(chan struct{})
	a.ch <- Run{flushDone: done}
	<-done
}

func (a *Archive) loop() {
	insert, err := a.db.Prepare(`INSERT OR REPLACE INTO runs(id,seed,started_at,duration_ms,distance,ticks,replay_path) VALUES(?,?,?,?,?,?,?)`)
	if err != nil {
		for range a.ch {
		}
		return
	}
	defer insert.Close()

	for r := range a.ch {
		if r.flushDone != nil {
			close(r.flushDone)
			continue
		}
		_, _ = insert.Exec(
			r.ID,
			r.Seed,
			r.StartedAt.UTC().Format(time.RFC3339Nano),
			r.Duration.Milliseconds(),
			r.Distance,
			int64(r.Ticks),
			r.ReplayPath,
		)
	}
}

// TopRuns returns up to limit runs ordered by distance, best first.
func (a *Archive) TopRuns(limit int) ([]Run, error) {
	rows, err := a.db.Query(
		`SELECT id,seed,started_at,duration_ms,distance,ticks,replay_path FROM runs ORDER BY distance DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRuns(rows)
}

// RunsForSeed returns the runs recorded for one seed, best first.
func (a *Archive) RunsForSeed(seed int64, limit int) ([]Run, error) {
	rows, err := a.db.Query(
		`SELECT id,seed,started_at,duration_ms,distance,ticks,replay_path FROM runs WHERE seed = ? ORDER BY distance DESC LIMIT ?`,
		seed, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRuns(rows)
}

// RunByID fetches one run, sql.ErrNoRows if absent.
func (a *Archive) RunByID(id string) (Run, error) {
	row := a.db.QueryRow(
		`SELECT id,seed,started_at,duration_ms,distance,ticks,replay_path FROM runs WHERE id = ?`, id,
	)
	return scanRun(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRun(s rowScanner) (Run, error) {
	var (
		r       Run
		started string
		durMS   int64
		ticks   int64
	)
	if err := s.Scan(&r.ID, &r.Seed, &started, &durMS, &r.Distance, &ticks, &r.ReplayPath); err != nil {
		return Run{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: started_at: %w", r.ID, err)
	}
	r.StartedAt = t
	r.Duration = time.Duration(durMS) * time.Millisecond
	r.Ticks = uint64(ticks)
	return r, nil
}
