package recorder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"time"

	bolt "go.etcd.io/bbolt"
)

const sessionsBucket = "sessions"

var errStoreBusy = errors.New(
	"is another recorder instance running? The database is locked",
)

// Store persists session records in a BoltDB database.
type Store struct {
	db *bolt.DB
}

// NewStore creates or opens the database at dbPath and ensures the
// sessions bucket exists.
func NewStore(dbPath string) (*Store, error) {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(
		dbPath,
		fileMode,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		if errors.Is(err, bolt.ErrDatabaseOpen) ||
			errors.Is(err, bolt.ErrTimeout) {
			return nil, errStoreBusy
		}

		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(sessionsBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

func recordKey(courseID int, userID string) []byte {
	return []byte(fmt.Sprintf("%d:%s", courseID, userID))
}

// Increment applies the session-window rule for one completed focus period
// and returns the updated record. The first call for a (course, user) pair
// creates the record with a count of 1; subsequent calls within the window
// increment it and calls outside the window reset it to 1. The last start
// time is always overwritten with startts.
func (s *Store) Increment(
	courseID int,
	userID string,
	startts int64,
) (Status, error) {
	var st Status

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(sessionsBucket))
		key := recordKey(courseID, userID)

		prev := b.Get(key)
		if len(prev) > 0 {
			if err := json.Unmarshal(prev, &st); err != nil {
				return fmt.Errorf("decoding session record: %w", err)
			}
		}

		if len(prev) > 0 && startts-st.LastStartTime < SessionWindow {
			st.SessionsCount++
		} else {
			st.SessionsCount = 1
		}

		st.LastStartTime = startts

		val, err := json.Marshal(st)
		if err != nil {
			return err
		}

		return b.Put(key, val)
	})

	return st, err
}

// Get returns the record for a (course, user) pair, or a zero Status when
// none exists.
func (s *Store) Get(courseID int, userID string) (Status, error) {
	var st Status

	err := s.db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket([]byte(sessionsBucket)).Get(recordKey(courseID, userID))
		if len(val) == 0 {
			return nil
		}

		return json.Unmarshal(val, &st)
	})

	return st, err
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}
