// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package events implements the typed publish/subscribe bus used to deliver
// notifications between the host and installed plugins.
package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/inkpad-io/inkpad/logging"
	"github.com/inkpad-io/inkpad/metrics"
)

// SystemOrigin is the origin id used for events published by the host itself.
const SystemOrigin = "system"

// Well-known event types published by the host.
const (
	TypePluginInstalled     = "system.plugin.installed"
	TypePluginUninstalled   = "system.plugin.uninstalled"
	TypeApplicationStopping = "system.application.stopping"
)

// defaultQueueSize bounds the per-subscriber queue. When the queue is full
// the oldest unprocessed event for that subscriber is dropped and counted.
const defaultQueueSize = 256

// Event is a typed, ordered notification. Seq is assigned by the bus at
// publish time and is monotonic across the process lifetime.
type Event struct {
	Type    string      `json:"type"`
	Origin  string      `json:"origin"`
	Seq     uint64      `json:"seq"`
	Payload interface{} `json:"payload,omitempty"`
}

// Handler is implemented by plugins that want event delivery. Plugins whose
// entry does not implement Handler are silently skipped.
type Handler interface {
	OnEvent(ctx context.Context, evt Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, evt Event) error

// OnEvent invokes f.
func (f HandlerFunc) OnEvent(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

// Subscription is the handle returned by Subscribe. It identifies a single
// (event type, plugin) registration and is required to unsubscribe.
type Subscription struct {
	id        string
	eventType string
	pluginID  string
}

// ID returns the unique id of the subscription.
func (s *Subscription) ID() string { return s.id }

// EventType returns the subscribed event type.
func (s *Subscription) EventType() string { return s.eventType }

// PluginID returns the owning plugin id.
func (s *Subscription) PluginID() string { return s.pluginID }

type subscriber struct {
	sub     *Subscription
	handler Handler
	queue   chan Event
	stop    chan struct{}
	once    sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() {
		close(s.stop)
	})
}

// Bus fans events out to subscribers. Each subscriber has a dedicated worker
// goroutine and a bounded FIFO queue, so a slow or failing handler never
// blocks the publisher or other subscribers.
type Bus struct {
	mtx       sync.RWMutex
	byType    map[string][]*subscriber
	byID      map[string]*subscriber
	seq       uint64
	queueSize int
	closed    bool
	wg        sync.WaitGroup
	logger    logging.Logger
	metrics   metrics.Metrics
}

// NewBus returns a started Bus.
func NewBus() *Bus {
	return &Bus{
		byType:    map[string][]*subscriber{},
		byID:      map[string]*subscriber{},
		queueSize: defaultQueueSize,
		logger:    logging.NewNoOpLogger(),
		metrics:   metrics.NoOp(),
	}
}

// WithLogger sets the logger on the bus.
func (b *Bus) WithLogger(logger logging.Logger) *Bus {
	b.logger = logger
	return b
}

// WithMetrics sets the metrics provider on the bus.
func (b *Bus) WithMetrics(m metrics.Metrics) *Bus {
	b.metrics = m
	return b
}

// WithQueueSize overrides the per-subscriber queue bound.
func (b *Bus) WithQueueSize(n int) *Bus {
	if n > 0 {
		b.queueSize = n
	}
	return b
}

// Subscribe registers handler for events of the given type on behalf of
// pluginID and returns the subscription handle.
func (b *Bus) Subscribe(eventType, pluginID string, handler Handler) *Subscription {
	sub := &Subscription{
		id:        uuid.NewString(),
		eventType: eventType,
		pluginID:  pluginID,
	}

	s := &subscriber{
		sub:     sub,
		handler: handler,
		queue:   make(chan Event, b.queueSize),
		stop:    make(chan struct{}),
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()
	if b.closed {
		return sub
	}
	b.byType[eventType] = append(b.byType[eventType], s)
	b.byID[sub.id] = s

	b.wg.Add(1)
	go b.dispatch(s)

	return sub
}

// Unsubscribe removes the subscription. It is idempotent; unsubscribing a
// handle twice has no effect.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mtx.Lock()
	s, ok := b.byID[sub.id]
	if ok {
		delete(b.byID, sub.id)
		b.byType[sub.eventType] = remove(b.byType[sub.eventType], s)
		if len(b.byType[sub.eventType]) == 0 {
			delete(b.byType, sub.eventType)
		}
	}
	b.mtx.Unlock()
	if ok {
		s.close()
	}
}

// UnsubscribeAll removes every subscription owned by pluginID. Used when a
// plugin is stopped or uninstalled.
func (b *Bus) UnsubscribeAll(pluginID string) {
	var closing []*subscriber

	b.mtx.Lock()
	for id, s := range b.byID {
		if s.sub.pluginID != pluginID {
			continue
		}
		delete(b.byID, id)
		b.byType[s.sub.eventType] = remove(b.byType[s.sub.eventType], s)
		if len(b.byType[s.sub.eventType]) == 0 {
			delete(b.byType, s.sub.eventType)
		}
		closing = append(closing, s)
	}
	b.mtx.Unlock()

	for _, s := range closing {
		s.close()
	}
}

// Subscriptions returns the ids of the active subscriptions held by pluginID.
func (b *Bus) Subscriptions(pluginID string) []string {
	b.mtx.RLock()
	defer b.mtx.RUnlock()
	var result []string
	for id, s := range b.byID {
		if s.sub.pluginID == pluginID {
			result = append(result, id)
		}
	}
	return result
}

// Publish assigns the next sequence number to evt and enqueues it for every
// current subscriber of evt.Type. Publish never blocks beyond enqueueing:
// when a subscriber's queue is full its oldest unprocessed event is dropped
// and counted. The assigned sequence number is returned.
func (b *Bus) Publish(evt Event) uint64 {
	evt.Seq = atomic.AddUint64(&b.seq, 1)
	if evt.Origin == "" {
		evt.Origin = SystemOrigin
	}

	b.mtx.RLock()
	subs := make([]*subscriber, len(b.byType[evt.Type]))
	copy(subs, b.byType[evt.Type])
	b.mtx.RUnlock()

	b.metrics.Counter(metrics.EventsPublished).Incr()

	for _, s := range subs {
		b.enqueue(s, evt)
	}

	return evt.Seq
}

// enqueue performs a non-blocking send, dropping the subscriber's oldest
// queued event to make room when the queue is full. Bounded retries cover
// the race where another publisher fills the freed slot.
func (b *Bus) enqueue(s *subscriber, evt Event) {
	const maxRetry = 1000

	for i := 0; i < maxRetry; i++ {
		select {
		case s.queue <- evt:
			return
		default:
		}

		select {
		case dropped := <-s.queue:
			b.metrics.Counter(metrics.EventsDropped).Incr()
			b.logger.Warn("Dropped event %v (seq %d) for plugin %v: queue full.",
				dropped.Type, dropped.Seq, s.sub.pluginID)
		default:
		}
	}

	// Other publishers kept refilling the freed slot. Give up and drop the
	// new event instead of spinning.
	b.metrics.Counter(metrics.EventsDropped).Incr()
	b.logger.Warn("Dropped event %v (seq %d) for plugin %v: queue contended.",
		evt.Type, evt.Seq, s.sub.pluginID)
}

// dispatch is the per-subscriber worker. It preserves publish order for its
// subscriber and isolates handler failures from the publisher and from other
// subscribers.
func (b *Bus) dispatch(s *subscriber) {
	defer b.wg.Done()

	for {
		select {
		case evt := <-s.queue:
			b.deliver(s, evt)
		case <-s.stop:
			// Drain whatever was enqueued before the unsubscribe.
			for {
				select {
				case evt := <-s.queue:
					b.deliver(s, evt)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) deliver(s *subscriber, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			b.metrics.Counter(metrics.EventHandlerFailures).Incr()
			b.logger.Error("Event handler for plugin %v panicked on %v: %v.", s.sub.pluginID, evt.Type, r)
		}
	}()

	if err := s.handler.OnEvent(context.Background(), evt); err != nil {
		b.metrics.Counter(metrics.EventHandlerFailures).Incr()
		b.logger.Error("Event handler for plugin %v failed on %v: %v.", s.sub.pluginID, evt.Type, err)
	}
}

// Close stops the bus. Workers drain their queues and exit; Close returns
// once they are done or the context expires.
func (b *Bus) Close(ctx context.Context) error {
	b.mtx.Lock()
	if b.closed {
		b.mtx.Unlock()
		return nil
	}
	b.closed = true
	closing := make([]*subscriber, 0, len(b.byID))
	for _, s := range b.byID {
		closing = append(closing, s)
	}
	b.byID = map[string]*subscriber{}
	b.byType = map[string][]*subscriber{}
	b.mtx.Unlock()

	for _, s := range closing {
		s.close()
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func remove(subs []*subscriber, target *subscriber) []*subscriber {
	for i := range subs {
		if subs[i] == target {
			return append(subs[:i:i], subs[i+1:]...)
		}
	}
	return subs
}

// WaitSettled is a test helper that blocks until every subscriber queue is
// empty or the timeout expires.
func (b *Bus) WaitSettled(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if b.settled() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return b.settled()
}

func (b *Bus) settled() bool {
	b.mtx.RLock()
	defer b.mtx.RUnlock()
	for _, s := range b.byID {
		if len(s.queue) > 0 {
			return false
		}
	}
	return true
}
