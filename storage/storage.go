package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"nameplate/model"
)

// Store saves exported nameplates on disk, organized by date.
type Store struct {
	baseDir string
	mu      sync.Mutex
}

// New creates a new Store instance with the given base directory.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// EnsureDirs creates the necessary directory structure for storing exports.
func (s *Store) EnsureDirs() error {
	return os.MkdirAll(filepath.Join(s.baseDir, "exports"), 0o755)
}

// SaveExport writes the PNG and a JSON record next to it. It returns the
// path of the PNG.
func (s *Store) SaveExport(rec *model.ExportRecord, png []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec == nil {
		return "", errors.New("nil export record")
	}
	if rec.Filename == "" || filepath.Base(rec.Filename) != rec.Filename {
		return "", fmt.Errorf("invalid export filename %q", rec.Filename)
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	t := rec.Timestamp.UTC()
	dir := filepath.Join(
		s.baseDir,
		"exports",
		fmt.Sprintf("%04d", t.Year()),
		fmt.Sprintf("%02d", t.Month()),
		fmt.Sprintf("%02d", t.Day()),
	)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, rec.Filename)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", err
	}

	f, err := os.Create(strings.TrimSuffix(path, filepath.Ext(path)) + ".json")
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return "", err
	}
	return path, nil
}

// ListExports retrieves the records of all exports within the specified time
// range, sorted by timestamp in ascending order.
func (s *Store) ListExports(from, to time.Time) ([]model.ExportRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from = from.UTC()
	to = to.UTC()

	base := filepath.Join(s.baseDir, "exports")
	var records []model.ExportRecord

	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".json" {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		var r model.ExportRecord
		if err := json.NewDecoder(f).Decode(&r); err != nil {
			return err
		}
		if r.Timestamp.IsZero() {
			return nil
		}

		t := r.Timestamp.UTC()
		if t.Before(from) || t.After(to) {
			return nil
		}

		records = append(records, r)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})

	return records, nil
}

// PruneExports deletes exports recorded before cutoff together with their
// records, then removes date directories left empty. It returns the number
// of exports deleted.
func (s *Store) PruneExports(cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff = cutoff.UTC()
	base := filepath.Join(s.baseDir, "exports")

	var stale []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var r model.ExportRecord
		if err := json.Unmarshal(data, &r); err != nil {
			return nil
		}
		if !r.Timestamp.IsZero() && r.Timestamp.UTC().Before(cutoff) {
			stale = append(stale, path)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	for _, rec := range stale {
		png := strings.TrimSuffix(rec, ".json") + ".png"
		if err := os.Remove(png); err != nil && !os.IsNotExist(err) {
			return 0, err
		}
		if err := os.Remove(rec); err != nil {
			return 0, err
		}
		removeEmptyParents(filepath.Dir(rec), base)
	}
	return len(stale), nil
}

func removeEmptyParents(dir, stop string) {
	for dir != stop && strings.HasPrefix(dir, stop) {
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}
