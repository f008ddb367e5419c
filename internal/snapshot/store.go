package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ShayCichocki/cadre/pkg/models"
)

// FileSystem is the byte-stream abstraction snapshots are persisted through.
type FileSystem interface {
	Open(path string) (io.ReadCloser, error)
	Create(path string) (io.WriteCloser, error)
}

// aborter is implemented by writers that can discard a partial write.
type aborter interface {
	Abort() error
}

// OSFileSystem persists snapshots on the local disk. Create writes to a
// temporary file that replaces the target only when closed successfully.
type OSFileSystem struct{}

// Open opens path for reading.
func (OSFileSystem) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// Create returns an atomic writer for path, creating parent directories.
func (OSFileSystem) Create(path string) (io.WriteCloser, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, err
	}
	return &atomicFile{f: tmp, target: path}, nil
}

type atomicFile struct {
	f      *os.File
	target string
	done   bool
}

func (a *atomicFile) Write(p []byte) (int, error) {
	return a.f.Write(p)
}

func (a *atomicFile) Close() error {
	if a.done {
		return nil
	}
	a.done = true
	if err := a.f.Sync(); err != nil {
		a.f.Close()
		os.Remove(a.f.Name())
		return err
	}
	if err := a.f.Close(); err != nil {
		os.Remove(a.f.Name())
		return err
	}
	if err := os.Rename(a.f.Name(), a.target); err != nil {
		os.Remove(a.f.Name())
		return err
	}
	return nil
}

func (a *atomicFile) Abort() error {
	if a.done {
		return nil
	}
	a.done = true
	a.f.Close()
	return os.Remove(a.f.Name())
}

// Save writes snap as indented JSON to path.
func Save(fsys FileSystem, path string, snap SessionSnapshot) error {
	if snap.SchemaVersion == 0 {
		snap.SchemaVersion = SchemaVersion
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	w, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot %s: %w", path, err)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		if ab, ok := w.(aborter); ok {
			ab.Abort()
		} else {
			w.Close()
		}
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close snapshot %s: %w", path, err)
	}
	return nil
}

// Load reads and validates the snapshot at path. Failures wrap one of
// ErrSnapshotNotFound, ErrSnapshotCorrupt or ErrSnapshotSchemaMismatch.
func Load(fsys FileSystem, path string) (SessionSnapshot, error) {
	r, err := fsys.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return SessionSnapshot{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, path)
		}
		return SessionSnapshot{}, fmt.Errorf("%w: %s: %w", ErrSnapshotCorrupt, path, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return SessionSnapshot{}, fmt.Errorf("%w: %s: %w", ErrSnapshotCorrupt, path, err)
	}
	return Decode(data)
}

// Decode parses and validates a snapshot document.
func Decode(data []byte) (SessionSnapshot, error) {
	var probe struct {
		SchemaVersion json.RawMessage `json:"schemaVersion"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return SessionSnapshot{}, fmt.Errorf("%w: %w", ErrSnapshotCorrupt, err)
	}
	raw := string(bytes.TrimSpace(probe.SchemaVersion))
	if raw == "" || raw == "null" {
		return SessionSnapshot{}, fmt.Errorf("%w: schemaVersion missing", ErrSnapshotSchemaMismatch)
	}
	if version, err := strconv.Atoi(raw); err != nil || version != SchemaVersion {
		return SessionSnapshot{}, fmt.Errorf("%w: got %s, want %d", ErrSnapshotSchemaMismatch, raw, SchemaVersion)
	}

	var snap SessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return SessionSnapshot{}, fmt.Errorf("%w: %w", ErrSnapshotCorrupt, err)
	}
	if err := validate(snap); err != nil {
		return SessionSnapshot{}, fmt.Errorf("%w: %w", ErrSnapshotCorrupt, err)
	}
	if snap.Patterns == nil {
		snap.Patterns = []models.LearningPattern{}
	}
	if snap.WorkerStates == nil {
		snap.WorkerStates = []models.WorkerState{}
	}
	if snap.SpringboardPaths == nil {
		snap.SpringboardPaths = []SpringboardPath{}
	}
	return snap, nil
}

func validate(snap SessionSnapshot) error {
	for _, p := range snap.Patterns {
		if !p.Kind.Valid() {
			return fmt.Errorf("pattern %s: unknown kind %q", p.ID, p.Kind)
		}
		if p.Confidence < 0 || p.Confidence > 1 {
			return fmt.Errorf("pattern %s: confidence %v out of range", p.ID, p.Confidence)
		}
		if p.LearningDepth < 0 || p.RecursiveImprovementCount < 0 {
			return fmt.Errorf("pattern %s: negative depth or improvement count", p.ID)
		}
	}
	for _, w := range snap.WorkerStates {
		if !w.State.Valid() {
			return fmt.Errorf("worker %s: unknown state %q", w.ID, w.State)
		}
	}
	return nil
}
