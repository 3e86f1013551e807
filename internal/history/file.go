package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// FileStore keeps the whole history as one pretty-printed JSON array and
// rewrites the file on every append. Operations are serialized by mu; other
// processes writing the same file are not coordinated with.
type FileStore struct {
	path string
	mu   sync.Mutex
	log  *zap.SugaredLogger
}

// NewFileStore creates the backing file with an empty array if it does not
// exist. An existing but unparseable file is kept and read as empty.
func NewFileStore(path string, log *zap.SugaredLogger) (*FileStore, error) {
	s := &FileStore{path: path, log: log}

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create history directory: %w", err)
			}
		}
		if err := s.write([]Record{}); err != nil {
			return nil, err
		}
		log.Infow("Initialized history file", "path", path)
	case err != nil:
		return nil, fmt.Errorf("failed to stat history file: %w", err)
	default:
		records, err := s.read()
		if err != nil {
			return nil, err
		}
		log.Infow("Loaded history file", "path", path, "records", len(records))
	}
	return s, nil
}

// read returns the stored records. A missing or corrupt file reads as empty.
func (s *FileStore) read() ([]Record, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		s.log.Warnw("History file is not a valid JSON array, treating as empty", "path", s.path, "error", err)
		return []Record{}, nil
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// write replaces the file through a temp file and rename.
func (s *FileStore) write(records []Record) error {
	raw, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp history file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}

func (s *FileStore) Append(_ context.Context, rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return Record{}, err
	}
	rec.ID = len(records) + 1
	rec = normalize(rec)
	records = append(records, rec)
	if err := s.write(records); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *FileStore) All(_ context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *FileStore) Get(_ context.Context, id int) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return Record{}, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, ErrNotFound
}

func (s *FileStore) Close() error {
	return nil
}
