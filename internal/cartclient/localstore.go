package cartclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"shopcart/internal/domain"
)

// Store is the client's durable key-value storage: identity, cached cart and
// merge progress live here. Implementations must survive process restarts.
type Store interface {
	Load(key string, v interface{}) error
	Save(key string, v interface{}) error
	Delete(key string) error
}

// FileStore keeps one JSON file per key under a directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Load(key string, v interface{}) error {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.ErrNotFound
		}
		return err
	}
	return json.Unmarshal(data, v)
}

// Save writes via a temp file and rename so a crash mid-write never leaves a
// truncated record behind.
func (s *FileStore) Save(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, key+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path(key))
}

func (s *FileStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
