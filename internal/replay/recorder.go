// Package replay records per-tick session frames as compressed JSONL, one file
// per run, and reads them back for inspection or re-simulation checks.
package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// Header is the first line of every replay file.
type Header struct {
	RunID     string    `json:"run_id"`
	Seed      int64     `json:"seed"`
	StartedAt time.Time `json:"started_at"`
}

// Recorder appends JSON lines to a zstd-compressed run file. Not safe for
// concurrent use; the simulation loop owns it.
type Recorder struct {
	runID string
	path  string

	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// NewRecorder creates dir if needed and opens a fresh run file named after a
// random run ID. The header is written immediately.
func NewRecorder(dir string, seed int64) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	path := filepath.Join(dir, fmt.Sprintf("run-%s.jsonl.zst", runID))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	r := &Recorder{
		runID: runID,
		path:  path,
		f:     f,
		enc:   enc,
		w:     bufio.NewWriterSize(enc, 128*1024),
	}
	if err := r.Write(Header{RunID: runID, Seed: seed, StartedAt: time.Now().UTC()}); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}

// RunID returns the run identifier embedded in the file name and header.
func (r *Recorder) RunID() string { return r.runID }

// Path returns the replay file path.
func (r *Recorder) Path() string { return r.path }

// Write appends one JSON line.
func (r *Recorder) Write(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := r.w.Write(b); err != nil {
		return err
	}
	return r.w.WriteByte('\n')
}

// Close flushes and closes the run file.
func (r *Recorder) Close() error {
	var err1 error
	if r.w != nil {
		if err := r.w.Flush(); err != nil {
			err1 = err
		}
		r.w = nil
	}
	if r.enc != nil {
		if err := r.enc.Close(); err1 == nil {
			err1 = err
		}
		r.enc = nil
	}
	if r.f != nil {
		if err := r.f.Close(); err1 == nil {
			err1 = err
		}
		r.f = nil
	}
	return err1
}

// Reader streams lines back out of a replay file.
type Reader struct {
	f   *os.File
	dec *zstd.Decoder
	sc  *bufio.Scanner

	header Header
}

// Open opens a replay file and consumes its header line.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	r := &Reader{f: f, dec: dec, sc: sc}
	if !sc.Scan() {
		_ = r.Close()
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%s: empty replay", filepath.Base(path))
	}
	if err := json.Unmarshal(sc.Bytes(), &r.header); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("%s: header: %w", filepath.Base(path), err)
	}
	return r, nil
}

// Header returns the run header.
func (r *Reader) Header() Header { return r.header }

// Next decodes the next line into v. It returns false at end of file; check
// Err afterwards.
func (r *Reader) Next(v any) (bool, error) {
	if !r.sc.Scan() {
		return false, r.sc.Err()
	}
	if err := json.Unmarshal(r.sc.Bytes(), v); err != nil {
		return false, err
	}
	return true, nil
}

// Close releases the decoder and file.
func (r *Reader) Close() error {
	if r.dec != nil {
		r.dec.Close()
		r.dec = nil
	}
	if r.f != nil {
		err := r.f.Close()
		r.f = nil
		return err
	}
	return nil
}

// List returns the replay files under dir, sorted by name.
func List(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if len(name) > 14 && name[:4] == "run-" && filepath.Ext(name) == ".zst" {
			out = append(out, filepath.Join(dir, name))
		}
	}
	return out, nil
}
