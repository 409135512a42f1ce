package broadcast

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adetunwase/pomodoro/internal/timeutil"
	"github.com/adetunwase/pomodoro/store"
)

// msgGracePeriod bounds how long a fallback message lingers in the store.
// It only needs to survive until sibling watchers have observed the write;
// deleting it afterwards prevents replay on the next load.
const msgGracePeriod = 50 * time.Millisecond

// StorageTransport is the fallback transport for instances that do not
// share a process: each message is written to the scope's transient message
// key and delivered to siblings through the store's change watch.
type StorageTransport struct {
	kv     *store.KV
	msgKey string
	id     string

	mu      sync.Mutex
	handler func(Message)

	cancel context.CancelFunc
}

// NewStorageTransport starts watching kv for messages written by sibling
// instances under msgKey.
func NewStorageTransport(kv *store.KV, msgKey string) (*StorageTransport, error) {
	ctx, cancel := context.WithCancel(context.Background())

	events, err := kv.Watch(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	t := &StorageTransport{
		kv:     kv,
		msgKey: msgKey,
		id:     uuid.NewString(),
		cancel: cancel,
	}

	go t.receive(events)

	return t, nil
}

func (t *StorageTransport) receive(events <-chan store.Event) {
	for ev := range events {
		if ev.Key != t.msgKey || ev.Removed {
			continue
		}

		msg, err := decode(ev.Value)
		if err != nil {
			slog.Debug(
				"dropping malformed message",
				slog.String("key", ev.Key),
				slog.Any("error", err),
			)

			continue
		}

		// The watch reports our own writes too; only messages from
		// sibling instances are delivered.
		if msg.Sender == t.id {
			continue
		}

		t.mu.Lock()
		fn := t.handler
		t.mu.Unlock()

		if fn != nil {
			fn(msg)
		}
	}
}

// Send writes msg plus a send timestamp to the message key, then erases the
// key after a short grace period so the store does not accumulate stale
// messages.
func (t *StorageTransport) Send(msg Message) error {
	msg.Sender = t.id
	msg.T = timeutil.Now()

	b, err := encode(msg)
	if err != nil {
		return err
	}

	if err := t.kv.Write(t.msgKey, b); err != nil {
		return err
	}

	time.AfterFunc(msgGracePeriod, func() {
		_ = t.kv.Erase(t.msgKey)
	})

	return nil
}

func (t *StorageTransport) OnMessage(fn func(Message)) {
	t.mu.Lock()
	t.handler = fn
	t.mu.Unlock()
}

// Close stops the watch. Pending grace-period deletions still run.
func (t *StorageTransport) Close() error {
	t.cancel()
	return nil
}
