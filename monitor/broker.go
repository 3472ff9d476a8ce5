package monitor

import (
	"sync"
)

const (
	maxSubscribers   = 50
	subscriberBuffer = 64
)

// Subscription receives the envelopes of one job, or of every job when
// it was created with an empty name.
type Subscription struct {
	C <-chan Envelope

	ch     chan Envelope
	name   string
	broker *Broker
}

// Close detaches the subscription and closes C. It may be called more
// than once.
func (s *Subscription) Close() {
	s.broker.remove(s)
}

// Broker hands progress to in-process watchers, such as a CLI printing
// live progress. A watcher that falls behind misses updates instead of
// slowing the job down.
type Broker struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
}

var _ Sender = (*Broker)(nil)

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[*Subscription]struct{})}
}

// Subscribe watches the job with the given name; an empty name watches
// all jobs. It returns nil when the broker is closed or full.
func (b *Broker) Subscribe(name string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || len(b.subs) >= maxSubscribers {
		return nil
	}

	ch := make(chan Envelope, subscriberBuffer)
	s := &Subscription{C: ch, ch: ch, name: name, broker: b}
	b.subs[s] = struct{}{}
	return s
}

func (b *Broker) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[s]; ok {
		delete(b.subs, s)
		close(s.ch)
	}
}

// Close ends every subscription. Later sends are dropped.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for s := range b.subs {
		delete(b.subs, s)
		close(s.ch)
	}
}

// Send delivers the envelope to every matching subscription without blocking.
func (b *Broker) Send(env Envelope) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for s := range b.subs {
		if s.name != "" && s.name != env.Data.Name {
			continue
		}
		select {
		case s.ch <- env:
		default:
			// watcher too slow, drop
		}
	}
}
