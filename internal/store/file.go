package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/i474232898/weather-cli/internal/weather"
)

var (
	// ErrNotFound is returned when no settings file exists yet.
	ErrNotFound = errors.New("no settings file")
	// ErrConfigIO is returned when the settings file cannot be written.
	ErrConfigIO = errors.New("settings file i/o")
)

// FileStore reads and writes the settings record as a JSON file on an
// afero filesystem.
type FileStore struct {
	fs   afero.Fs
	path string
}

// NewFileStore creates a FileStore for path on fs.
func NewFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{
		fs:   fs,
		path: path,
	}
}

// Path returns the settings file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the draft record. A missing file yields ErrNotFound; a file that
// cannot be read or decoded yields the underlying error. Callers treat both
// as an empty draft.
func (s *FileStore) Load() (weather.Draft, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return weather.Draft{}, ErrNotFound
		}
		return weather.Draft{}, fmt.Errorf("read %s: %w", s.path, err)
	}

	var d weather.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return weather.Draft{}, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return d, nil
}

// Save overwrites the settings file with the full resolved record.
func (s *FileStore) Save(settings weather.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrConfigIO, err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrConfigIO, err)
		}
	}

	// The record carries API keys.
	if err := afero.WriteFile(s.fs, s.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigIO, err)
	}
	return nil
}
