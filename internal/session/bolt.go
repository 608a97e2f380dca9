package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketSessions = []byte("sessions")

// BoltStore implements Store using BoltDB.
type BoltStore struct {
	db   *bolt.DB
	path string
}

// NewBoltStore opens (or creates) a session database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSessions)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltStore{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *BoltStore) Path() string {
	return s.path
}

// Save stores a session under its host.
func (s *BoltStore) Save(sess *Session) error {
	if sess.Host == "" {
		return fmt.Errorf("session has no host")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.Put([]byte(sess.Host), data)
	})
}

// Load returns the session for host, or nil when none is stored.
func (s *BoltStore) Load(host string) (*Session, error) {
	var sess *Session

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		data := b.Get([]byte(host))
		if data == nil {
			return nil
		}

		sess = &Session{}
		return json.Unmarshal(data, sess)
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Delete removes the session for host.
func (s *BoltStore) Delete(host string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.Delete([]byte(host))
	})
}

// Hosts lists hosts with a stored session.
func (s *BoltStore) Hosts() ([]string, error) {
	var hosts []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.ForEach(func(k, _ []byte) error {
			hosts = append(hosts, string(k))
			return nil
		})
	})
	return hosts, err
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
