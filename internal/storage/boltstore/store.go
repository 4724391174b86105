// Package boltstore keeps savegames in a single bbolt file. It backs the
// save and load commands in interactive fiction mode.
package boltstore

import (
	"context"
	"fmt"
	"strings"

	bbolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tale/internal/savegame"
)

var bucketSavegames = []byte("savegames")

// Store implements savegame.Store on top of bbolt.
type Store struct {
	bolt   *bbolt.DB
	logger *zap.Logger
}

// Open opens or creates the database file at path.
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("boltstore: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSavegames)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("boltstore: create buckets: %w", err)
	}
	return &Store{bolt: db, logger: logger}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	if s.bolt != nil {
		return s.bolt.Close()
	}
	return nil
}

// Path returns the filesystem path of the database.
func (s *Store) Path() string { return s.bolt.Path() }

func key(name string) []byte { return []byte(strings.ToLower(name)) }

// Save stores snap under name, replacing an earlier savegame.
func (s *Store) Save(_ context.Context, name string, snap *savegame.Snapshot) error {
	data, err := savegame.Marshal(snap)
	if err != nil {
		return err
	}
	err = s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSavegames).Put(key(name), data)
	})
	if err != nil {
		return fmt.Errorf("boltstore: save %s: %w", name, err)
	}
	s.logger.Info("savegame written", zap.String("name", name), zap.Int("bytes", len(data)))
	return nil
}

// Load returns the savegame stored under name.
func (s *Store) Load(_ context.Context, name string) (*savegame.Snapshot, error) {
	var data []byte
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketSavegames).Get(key(name)); v != nil {
			// v is only valid inside the transaction
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: load %s: %w", name, err)
	}
	if data == nil {
		return nil, savegame.ErrSavegameNotFound
	}
	return savegame.Unmarshal(data)
}

// Delete removes the savegame stored under name, if any.
func (s *Store) Delete(_ context.Context, name string) error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSavegames).Delete(key(name))
	})
}

// Names lists the names that have a savegame, sorted.
func (s *Store) Names() ([]string, error) {
	var out []string
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSavegames).ForEach(func(k, _ []byte) error {
			out = append(out, string(k))
			return nil
		})
	})
	return out, err
}
