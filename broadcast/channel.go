package broadcast

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var errChannelClosed = errors.New("broadcast: channel is closed")

const inboxSize = 16

// Process-wide registry of named channels, keyed by channel name. Instances
// hosted in the same process discover each other here.
var (
	registryMu sync.Mutex
	registry   = make(map[string][]*Channel)
)

// Channel is the in-process transport: publish/subscribe on a shared
// channel name. Messages are delivered asynchronously to every other
// subscriber of the same name, never to the sender.
type Channel struct {
	name string
	id   string

	mu      sync.Mutex
	handler func(Message)
	closed  bool

	inbox chan Message
	done  chan struct{}
}

// NewChannel subscribes to the named channel.
func NewChannel(name string) *Channel {
	c := &Channel{
		name:  name,
		id:    uuid.NewString(),
		inbox: make(chan Message, inboxSize),
		done:  make(chan struct{}),
	}

	go c.pump()

	registryMu.Lock()
	registry[name] = append(registry[name], c)
	registryMu.Unlock()

	return c
}

func (c *Channel) pump() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.inbox:
			c.mu.Lock()
			fn := c.handler
			c.mu.Unlock()

			if fn != nil {
				fn(msg)
			}
		}
	}
}

// Send queues msg for every other subscriber of the channel name. A
// subscriber whose inbox is full misses the message; it will re-derive its
// state from the store on the next signal.
func (c *Channel) Send(msg Message) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return errChannelClosed
	}

	msg.Sender = c.id

	registryMu.Lock()
	subscribers := append([]*Channel(nil), registry[c.name]...)
	registryMu.Unlock()

	for _, sub := range subscribers {
		if sub == c {
			continue
		}

		select {
		case sub.inbox <- msg:
		default:
		}
	}

	return nil
}

func (c *Channel) OnMessage(fn func(Message)) {
	c.mu.Lock()
	c.handler = fn
	c.mu.Unlock()
}

// Close unsubscribes from the channel. Closing twice is a no-op.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}

	c.closed = true
	c.mu.Unlock()

	close(c.done)

	registryMu.Lock()
	subs := registry[c.name]

	for i, sub := range subs {
		if sub == c {
			registry[c.name] = append(subs[:i], subs[i+1:]...)
			break
		}
	}

	if len(registry[c.name]) == 0 {
		delete(registry, c.name)
	}
	registryMu.Unlock()

	return nil
}
