package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Event describes one observed change to the store. Events are snapshots of
// the new state of a key, not a replay queue: rapid writes to the same key
// may coalesce and consumers must treat each event as "key is now Value".
type Event struct {
	Key     string
	Value   []byte
	Removed bool
}

// Watch streams change events for the whole store until ctx is cancelled.
// Unlike a browser storage listener it also observes this instance's own
// writes; consumers that need to ignore those filter by a sender id they
// put inside the value. The channel is closed once ctx is done or the
// watcher fails. Slow consumers lose events rather than block the watcher.
func (kv *KV) Watch(ctx context.Context) (<-chan Event, error) {
	if err := os.MkdirAll(kv.basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}

	var closeOnce sync.Once

	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "store: watcher close: %v\n", err)
			}
		})
	}

	if err := watcher.Add(kv.basePath); err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: watch %s: %w", kv.basePath, err)
	}

	events := make(chan Event, 64)

	go func() {
		defer close(events)
		defer closeWatcher()

		send := func(ev Event) {
			select {
			case events <- ev:
			default:
				// Drop events if the consumer is not ready. Consumers
				// re-derive state from the store, so a missed event is
				// recovered on the next read.
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}

				key := kv.keyForPath(evt.Name)
				if key == "" {
					continue
				}

				if evt.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
					send(Event{Key: key, Removed: true})
					continue
				}

				if evt.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}

				val, err := os.ReadFile(evt.Name)
				if err != nil {
					// The value vanished between the event and the read;
					// report the key as removed.
					if errors.Is(err, fs.ErrNotExist) {
						send(Event{Key: key, Removed: true})
					}

					continue
				}

				send(Event{Key: key, Value: val})
			}
		}
	}()

	return events, nil
}

// keyForPath maps a file inside the state directory back to its store key.
func (kv *KV) keyForPath(path string) string {
	rel, err := filepath.Rel(kv.basePath, path)
	if err != nil || rel == "." || filepath.Dir(rel) != "." {
		return ""
	}

	b, err := base64.URLEncoding.DecodeString(rel)
	if err != nil {
		return ""
	}

	return string(b)
}
