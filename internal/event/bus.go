// Package event provides the notification bus connecting the chunked
// engine to the viewer: window reload completions, document growth,
// and session lifecycle transitions all publish here, and the viewer
// re-queries the line source when they arrive.
package event

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// Errors returned by bus operations.
var (
	ErrBusNotRunning = errors.New("event bus is not running")
	ErrNilHandler    = errors.New("handler must not be nil")
	ErrInvalidTopic  = errors.New("topic must not be empty")
	ErrQueueFull     = errors.New("event queue is full")
)

// Event is a published notification.
type Event struct {
	Topic   Topic
	Payload any
	Time    time.Time
}

// Handler processes a delivered event.
type Handler func(Event)

// Subscription is a handle for cancelling a subscription.
type Subscription struct {
	id      uint64
	pattern Topic
	fn      Handler
}

// Stats reports bus counters.
type Stats struct {
	Published uint64
	Delivered uint64
	Dropped   uint64
}

// Bus delivers events asynchronously on a single worker goroutine, so
// handlers observe publications in order. Publish never blocks: when
// the queue is full the event is dropped and counted.
type Bus struct {
	mu     sync.RWMutex
	subs   []*Subscription
	nextID uint64

	queue   chan Event
	done    chan struct{}
	stopped chan struct{}
	running atomic.Bool

	published atomic.Uint64
	delivered atomic.Uint64
	dropped   atomic.Uint64
}

// NewBus creates a bus with the given options.
func NewBus(opts ...BusOption) *Bus {
	cfg := busConfig{queueSize: 256}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Bus{
		queue:   make(chan Event, cfg.queueSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start starts the delivery worker.
func (b *Bus) Start() {
	if !b.running.CompareAndSwap(false, true) {
		return
	}
	go b.run()
}

// Stop drains pending events and stops the worker. It returns when
// the worker has exited or the context is cancelled.
func (b *Bus) Stop(ctx context.Context) error {
	if !b.running.CompareAndSwap(true, false) {
		return ErrBusNotRunning
	}
	close(b.done)

	select {
	case <-b.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning returns true if the bus is delivering events.
func (b *Bus) IsRunning() bool {
	return b.running.Load()
}

// Publish queues an event for asynchronous delivery.
func (b *Bus) Publish(topic Topic, payload any) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if !b.running.Load() {
		return ErrBusNotRunning
	}

	e := Event{Topic: topic, Payload: payload, Time: time.Now()}
	select {
	case b.queue <- e:
		b.published.Add(1)
		return nil
	default:
		b.dropped.Add(1)
		return ErrQueueFull
	}
}

// SubscribeFunc registers a handler for topics matching the pattern.
func (b *Bus) SubscribeFunc(pattern Topic, fn Handler) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	if pattern == "" {
		return nil, ErrInvalidTopic
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{id: b.nextID, pattern: pattern, fn: fn}
	b.subs = append(b.subs, sub)
	return sub, nil
}

// Unsubscribe removes a subscription. Unknown subscriptions are
// ignored.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == sub.id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Stats returns a snapshot of the bus counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Published: b.published.Load(),
		Delivered: b.delivered.Load(),
		Dropped:   b.dropped.Load(),
	}
}

// run is the delivery worker. On shutdown it drains whatever is
// already queued before exiting.
func (b *Bus) run() {
	defer close(b.stopped)

	for {
		select {
		case e := <-b.queue:
			b.deliver(e)
		case <-b.done:
			for {
				select {
				case e := <-b.queue:
					b.deliver(e)
				default:
					return
				}
			}
		}
	}
}

// deliver invokes every matching handler, recovering from panics so a
// misbehaving handler cannot kill the worker.
func (b *Bus) deliver(e Event) {
	b.mu.RLock()
	subs := make([]*Subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, sub := range subs {
		if !e.Topic.Match(sub.pattern) {
			continue
		}
		func() {
			defer func() { _ = recover() }()
			sub.fn(e)
		}()
		b.delivered.Add(1)
	}
}
