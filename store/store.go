// Package store persists the shared timer state and notifies other widget
// instances when it changes. Every instance of the same user points at the
// same state directory; the last write to a key wins and readers re-derive
// validity from the stored deadline rather than trusting any local copy.
package store

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/peterbourgon/diskv/v3"

	"github.com/adetunwase/pomodoro/internal/scope"
)

const cacheSizeMax = 1024 * 1024 // 1MB

// KV is a durable string-keyed store backed by one file per key.
type KV struct {
	d        *diskv.Diskv
	basePath string
}

// New opens (creating if necessary) the state directory at basePath.
func New(basePath string) (*KV, error) {
	if basePath == "" {
		return nil, errors.New("store: base path must not be empty")
	}

	return &KV{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPath,
			InverseTransform:  pathToKey,
			CacheSizeMax:      cacheSizeMax,
		}),
		basePath: basePath,
	}, nil
}

// Write stores val under key, replacing any previous value.
func (kv *KV) Write(key string, val []byte) error {
	if err := kv.d.Write(key, val); err != nil {
		return fmt.Errorf("store: write %s: %w", key, err)
	}

	return nil
}

// Read returns the value stored under key. The second return value reports
// whether the key was present.
func (kv *KV) Read(key string) ([]byte, bool) {
	val, err := kv.d.Read(key)
	if err != nil {
		return nil, false
	}

	return val, true
}

// Erase removes key. Erasing an absent key is not an error.
func (kv *KV) Erase(key string) error {
	err := kv.d.Erase(key)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("store: erase %s: %w", key, err)
	}

	return nil
}

// Key names contain characters that are unsafe in file names, so each key is
// base64-encoded into a flat file under the base path.
func keyToPath(key string) *diskv.PathKey {
	return &diskv.PathKey{
		Path:     []string{},
		FileName: base64.URLEncoding.EncodeToString([]byte(key)),
	}
}

func pathToKey(pk *diskv.PathKey) string {
	b, err := base64.URLEncoding.DecodeString(pk.FileName)
	if err != nil {
		return ""
	}

	return string(b)
}

// State exposes the timer's persisted values for one course scope. There is
// no transaction across keys: writers order their writes so that a reader
// observing a deadline without the running flag treats the timer as not yet
// confirmed running and re-checks the deadline against the current time.
type State struct {
	kv   *KV
	keys scope.Keys
}

// NewState binds a KV store to the keys of one course scope.
func NewState(kv *KV, keys scope.Keys) *State {
	return &State{kv: kv, keys: keys}
}

// Keys returns the scope this state is bound to.
func (s *State) Keys() scope.Keys {
	return s.keys
}

// KV returns the underlying store, shared with the messaging fallback.
func (s *State) KV() *KV {
	return s.kv
}

// SetEnd persists the absolute deadline (Unix ms) of the active countdown.
func (s *State) SetEnd(ts int64) error {
	return s.kv.Write(s.keys.End, []byte(strconv.FormatInt(ts, 10)))
}

func (s *State) ClearEnd() error {
	return s.kv.Erase(s.keys.End)
}

// ReadEnd returns the persisted deadline, if any.
func (s *State) ReadEnd() (int64, bool) {
	return s.readInt(s.keys.End)
}

func (s *State) SetRunning(running bool) error {
	v := "0"
	if running {
		v = "1"
	}

	return s.kv.Write(s.keys.Running, []byte(v))
}

func (s *State) ReadRunning() bool {
	val, ok := s.kv.Read(s.keys.Running)

	return ok && string(val) == "1"
}

// SetRemaining persists the milliseconds left in a paused countdown.
func (s *State) SetRemaining(ms int64) error {
	return s.kv.Write(s.keys.Remaining, []byte(strconv.FormatInt(ms, 10)))
}

func (s *State) ClearRemaining() error {
	return s.kv.Erase(s.keys.Remaining)
}

func (s *State) ReadRemaining() (int64, bool) {
	return s.readInt(s.keys.Remaining)
}

// SetPhase records the current cycle stage. The break kind is stored only
// when non-empty and cleared otherwise.
func (s *State) SetPhase(phase, breakKind string) error {
	if err := s.kv.Write(s.keys.Phase, []byte(phase)); err != nil {
		return err
	}

	if breakKind != "" {
		return s.kv.Write(s.keys.BreakKind, []byte(breakKind))
	}

	return s.kv.Erase(s.keys.BreakKind)
}

// GetPhase returns the stored phase and break kind, empty when unset.
func (s *State) GetPhase() (phase, breakKind string) {
	if val, ok := s.kv.Read(s.keys.Phase); ok {
		phase = string(val)
	}

	if val, ok := s.kv.Read(s.keys.BreakKind); ok {
		breakKind = string(val)
	}

	return phase, breakKind
}

func (s *State) readInt(key string) (int64, bool) {
	val, ok := s.kv.Read(key)
	if !ok {
		return 0, false
	}

	n, err := strconv.ParseInt(string(val), 10, 64)
	if err != nil {
		return 0, false
	}

	return n, true
}
