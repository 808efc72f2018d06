package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// APIKey is one entry of api_keys.json.
type APIKey struct {
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"createdAt"`
}

// FileStore keeps API keys in a JSON array on disk and in memory.
type FileStore struct {
	path string

	mu    sync.RWMutex
	keys  []APIKey
	index map[string]struct{}
}

// OpenFileStore loads path. A missing file yields an empty store.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, index: make(map[string]struct{})}
	keys, err := ReadKeyFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("module", "credentials.file").Str("path", path).Msg("api keys file not found, starting empty")
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	s.keys = keys
	for _, k := range keys {
		s.index[k.Key] = struct{}{}
	}
	log.Info().Str("module", "credentials.file").Int("count", len(keys)).Msg("loaded api keys")
	return s, nil
}

// ReadKeyFile decodes an api_keys.json file.
func ReadKeyFile(path string) ([]APIKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var keys []APIKey
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return keys, nil
}

func (s *FileStore) Valid(_ context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[token]
	return ok, nil
}

func (s *FileStore) Generate(_ context.Context) (string, error) {
	key := APIKey{Key: uuid.NewString(), CreatedAt: time.Now().UTC()}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(append([]APIKey(nil), s.keys...), key)
	if err := writeKeyFile(s.path, next); err != nil {
		return "", err
	}
	s.keys = next
	s.index[key.Key] = struct{}{}
	log.Info().Str("module", "credentials.file").Int("count", len(next)).Msg("generated api key")
	return key.Key, nil
}

func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

func (s *FileStore) Close() error { return nil }

// writeKeyFile replaces path atomically.
func writeKeyFile(path string, keys []APIKey) error {
	data, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".api_keys-*.json")
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
	return os.Rename(tmp.Name(), path)
}
