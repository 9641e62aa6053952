package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketPrefs = []byte("prefs")

// PrefStore implements domain.CredentialStore using BoltDB.
type PrefStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string]string
}

// Open opens (or creates) the store for a server under baseDir.
// An empty baseDir gives a memory-only store.
func Open(baseDir, serverURL string) (*PrefStore, error) {
	if baseDir == "" {
		return &PrefStore{cache: make(map[string]string)}, nil
	}

	dir := baseDir
	if serverURL != "" {
		dir = filepath.Join(baseDir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := bolt.Open(filepath.Join(dir, "reel.db"), 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPrefs)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &PrefStore{db: db, cache: make(map[string]string)}, nil
}

// hashServerURL keeps sessions for different servers apart
func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *PrefStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetString returns the value for key and whether it was present
func (s *PrefStore) GetString(key string) (string, bool) {
	s.mu.RLock()
	if v, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return v, true
	}
	s.mu.RUnlock()

	if s.db == nil {
		return "", false
	}

	var (
		value string
		found bool
	)
	s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketPrefs).Get([]byte(key)); v != nil {
			value = string(v) // copies out of the mmap
			found = true
		}
		return nil
	})
	if !found {
		return "", false
	}

	s.mu.Lock()
	s.cache[key] = value
	s.mu.Unlock()

	return value, true
}

// SetString stores a single value
func (s *PrefStore) SetString(key, value string) error {
	return s.SetStrings(map[string]string{key: value})
}

// SetStrings stores several values in one transaction, so readers never
// observe a partial update.
func (s *PrefStore) SetStrings(values map[string]string) error {
	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			b := tx.Bucket(bucketPrefs)
			for k, v := range values {
				if err := b.Put([]byte(k), []byte(v)); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to write prefs: %w", err)
		}
	}

	s.mu.Lock()
	for k, v := range values {
		s.cache[k] = v
	}
	s.mu.Unlock()
	return nil
}

// Delete removes keys from memory and disk
func (s *PrefStore) Delete(keys ...string) error {
	s.mu.Lock()
	for _, k := range keys {
		delete(s.cache, k)
	}
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPrefs)
		for _, k := range keys {
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}
