// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/inkpad-io/inkpad/metrics"
)

type recorder struct {
	mtx  sync.Mutex
	seen []Event
}

func (r *recorder) OnEvent(_ context.Context, evt Event) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.seen = append(r.seen, evt)
	return nil
}

func (r *recorder) events() []Event {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	cpy := make([]Event, len(r.seen))
	copy(cpy, r.seen)
	return cpy
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestPublishFanoutOrdering(t *testing.T) {
	bus := NewBus()
	defer bus.Close(context.Background())

	a := &recorder{}
	b := &recorder{}
	bus.Subscribe("note.created", "plugin-a", a)
	bus.Subscribe("note.created", "plugin-b", b)

	var want []uint64
	for i := 0; i < 3; i++ {
		seq := bus.Publish(Event{Type: "note.created", Origin: "system", Payload: i})
		want = append(want, seq)
	}

	waitFor(t, func() bool { return len(a.events()) == 3 && len(b.events()) == 3 })

	for name, r := range map[string]*recorder{"a": a, "b": b} {
		var got []uint64
		for _, evt := range r.events() {
			got = append(got, evt.Seq)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("subscriber %v saw events out of order (-want +got):\n%s", name, diff)
		}
	}
}

func TestPublishNoSubscribers(t *testing.T) {
	bus := NewBus()
	defer bus.Close(context.Background())

	if seq := bus.Publish(Event{Type: "note.updated"}); seq == 0 {
		t.Fatal("expected non-zero sequence number")
	}
}

func TestHandlerFailureIsolated(t *testing.T) {
	m := metrics.New()
	bus := NewBus().WithMetrics(m)
	defer bus.Close(context.Background())

	bus.Subscribe("note.updated", "plugin-a", HandlerFunc(func(context.Context, Event) error {
		panic("boom")
	}))
	bus.Subscribe("note.updated", "plugin-b", HandlerFunc(func(context.Context, Event) error {
		return errors.New("handler error")
	}))
	ok := &recorder{}
	bus.Subscribe("note.updated", "plugin-c", ok)

	bus.Publish(Event{Type: "note.updated"})

	waitFor(t, func() bool { return len(ok.events()) == 1 })
	waitFor(t, func() bool {
		return m.Counter(metrics.EventHandlerFailures).Int64() == 2
	})
}

func TestUnsubscribeIdempotent(t *testing.T) {
	bus := NewBus()
	defer bus.Close(context.Background())

	r := &recorder{}
	sub := bus.Subscribe("note.created", "plugin-a", r)

	if got := bus.Subscriptions("plugin-a"); len(got) != 1 {
		t.Fatalf("expected one subscription, got %v", got)
	}

	bus.Unsubscribe(sub)
	bus.Unsubscribe(sub)

	if got := bus.Subscriptions("plugin-a"); len(got) != 0 {
		t.Fatalf("expected no subscriptions, got %v", got)
	}

	bus.Publish(Event{Type: "note.created"})
	time.Sleep(10 * time.Millisecond)

	if n := len(r.events()); n != 0 {
		t.Fatalf("expected no deliveries after unsubscribe, got %d", n)
	}
}

func TestUnsubscribeAll(t *testing.T) {
	bus := NewBus()
	defer bus.Close(context.Background())

	r := &recorder{}
	bus.Subscribe("note.created", "plugin-a", r)
	bus.Subscribe("note.updated", "plugin-a", r)
	other := &recorder{}
	bus.Subscribe("note.created", "plugin-b", other)

	bus.UnsubscribeAll("plugin-a")

	if got := bus.Subscriptions("plugin-a"); len(got) != 0 {
		t.Fatalf("expected no subscriptions for plugin-a, got %v", got)
	}
	if got := bus.Subscriptions("plugin-b"); len(got) != 1 {
		t.Fatalf("expected plugin-b subscription to survive, got %v", got)
	}
}

func TestQueueFullDropsOldest(t *testing.T) {
	m := metrics.New()

	release := make(chan struct{})
	slow := &recorder{}
	started := make(chan struct{})
	var once sync.Once

	bus := NewBus().WithMetrics(m).WithQueueSize(2)
	defer bus.Close(context.Background())

	bus.Subscribe("note.created", "plugin-a", HandlerFunc(func(ctx context.Context, evt Event) error {
		once.Do(func() { close(started) })
		<-release
		return slow.OnEvent(ctx, evt)
	}))

	// First event occupies the worker, the next two fill the queue.
	bus.Publish(Event{Type: "note.created", Payload: "e1"})
	<-started
	bus.Publish(Event{Type: "note.created", Payload: "e2"})
	bus.Publish(Event{Type: "note.created", Payload: "e3"})
	bus.Publish(Event{Type: "note.created", Payload: "e4"})

	waitFor(t, func() bool { return m.Counter(metrics.EventsDropped).Int64() == 1 })

	close(release)
	waitFor(t, func() bool { return len(slow.events()) == 3 })

	var payloads []interface{}
	for _, evt := range slow.events() {
		payloads = append(payloads, evt.Payload)
	}
	if diff := cmp.Diff([]interface{}{"e1", "e3", "e4"}, payloads); diff != "" {
		t.Errorf("unexpected deliveries (-want +got):\n%s", diff)
	}
}

func TestEnqueueGivesUpWhenContended(t *testing.T) {
	m := metrics.New()
	bus := NewBus().WithMetrics(m)

	// An unbuffered queue with no worker can never accept the send, so the
	// retry loop must exhaust and count the new event as dropped.
	s := &subscriber{
		sub:   &Subscription{id: "sub", eventType: "note.created", pluginID: "plugin-a"},
		queue: make(chan Event),
		stop:  make(chan struct{}),
	}

	bus.enqueue(s, Event{Type: "note.created", Seq: 1})

	if n := m.Counter(metrics.EventsDropped).Int64(); n != 1 {
		t.Fatalf("expected the discarded event to be counted, got %d", n)
	}
}

func TestCloseDrainsQueues(t *testing.T) {
	bus := NewBus()

	r := &recorder{}
	bus.Subscribe("note.created", "plugin-a", r)

	for i := 0; i < 10; i++ {
		bus.Publish(Event{Type: "note.created", Payload: fmt.Sprint(i)})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := bus.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	if n := len(r.events()); n != 10 {
		t.Fatalf("expected all queued events delivered on close, got %d", n)
	}
}
