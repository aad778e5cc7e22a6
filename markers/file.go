package markers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
)

// ErrBadFile is returned when a marker file cannot be parsed.
var ErrBadFile = errors.New("markers: malformed marker file")

// File is the on-disk form of a store.
type File struct {
	Markers  []Marker `json:"markers"`
	Disabled []string `json:"disabled,omitempty"`
}

// Export captures the store contents in insertion order.
func (s *Store) Export() File {
	f := File{Markers: s.All()}
	s.mu.RLock()
	for c := range s.disabled {
		f.Disabled = append(f.Disabled, c)
	}
	s.mu.RUnlock()
	sort.Strings(f.Disabled)
	return f
}

// Read decodes a marker file into a new store.
func Read(r io.Reader, log zerolog.Logger) (*Store, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFile, err)
	}
	s := NewStore(log)
	for i, m := range f.Markers {
		if err := s.Put(m); err != nil {
			return nil, fmt.Errorf("%w: marker %d (%q): %v", ErrBadFile, i, m.ID, err)
		}
	}
	for _, c := range f.Disabled {
		s.SetCategoryEnabled(c, false)
	}
	return s, nil
}

// Write encodes the store as indented JSON.
func (s *Store) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s.Export())
}

// LoadFile reads the marker file at path.
func LoadFile(path string, log zerolog.Logger) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("markers: %w", err)
	}
	defer f.Close()
	return Read(f, log)
}

// SaveFile atomically replaces the marker file at path.
func (s *Store) SaveFile(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".markers-*.json")
	if err != nil {
		return fmt.Errorf("markers: %w", err)
	}
	if err = s.Write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("markers: write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("markers: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
