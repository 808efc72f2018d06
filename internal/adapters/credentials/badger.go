package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "apikey:"

// BadgerStore keeps API keys as apikey:<key> -> creation time.
type BadgerStore struct {
	db *badger.DB
}

func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(badgerLogger{log.With().Str("module", "credentials.badger").Logger()})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return NewBadgerStore(db), nil
}

func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func (s *BadgerStore) Valid(_ context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyPrefix + token))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *BadgerStore) Generate(ctx context.Context) (string, error) {
	key := APIKey{Key: uuid.NewString(), CreatedAt: time.Now().UTC()}
	if err := s.Import(ctx, key); err != nil {
		return "", err
	}
	log.Info().Str("module", "credentials.badger").Msg("generated api key")
	return key.Key, nil
}

// Import stores keys in a single transaction.
func (s *BadgerStore) Import(_ context.Context, keys ...APIKey) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if k.Key == "" {
				continue
			}
			if err := txn.Set([]byte(keyPrefix+k.Key), []byte(k.CreatedAt.Format(time.RFC3339))); err != nil {
				return err
			}
		}
		return nil
	})
}

// ImportFile seeds the store from an api_keys.json file.
func (s *BadgerStore) ImportFile(ctx context.Context, path string) (int, error) {
	keys, err := ReadKeyFile(path)
	if err != nil {
		return 0, err
	}
	if err := s.Import(ctx, keys...); err != nil {
		return 0, err
	}
	log.Info().Str("module", "credentials.badger").Str("path", path).Int("count", len(keys)).Msg("imported api keys")
	return len(keys), nil
}

// Len counts stored keys.
func (s *BadgerStore) Len() int {
	n := 0
	_ = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// badgerLogger routes badger's internal logging through zerolog.
type badgerLogger struct {
	l zerolog.Logger
}

func (b badgerLogger) Errorf(f string, v ...any)   { b.l.Error().Msgf(f, v...) }
func (b badgerLogger) Warningf(f string, v ...any) { b.l.Warn().Msgf(f, v...) }
func (b badgerLogger) Infof(f string, v ...any)    { b.l.Debug().Msgf(f, v...) }
func (b badgerLogger) Debugf(f string, v ...any)   { b.l.Trace().Msgf(f, v...) }
