// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package plugins

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/inkpad-io/inkpad/bundle"
	"github.com/inkpad-io/inkpad/events"
	"github.com/inkpad-io/inkpad/registry"
	"github.com/inkpad-io/inkpad/security"
	"github.com/inkpad-io/inkpad/types"
)

type fakeEntry struct {
	mtx        sync.Mutex
	descriptor types.Descriptor
	initCalls  int
	startCalls int
	stopCalls  int
	failInit   bool
	failStart  bool
	failStop   bool
	panicStart bool
	seen       []events.Event
	health     types.Health
	healthErr  error
}

func (e *fakeEntry) Info() types.Descriptor { return e.descriptor }

func (e *fakeEntry) Initialize(_ context.Context, _ map[string]interface{}) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.initCalls++
	if e.failInit {
		return errors.New("init refused")
	}
	return nil
}

func (e *fakeEntry) Start(context.Context) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.startCalls++
	if e.panicStart {
		panic("start panic")
	}
	if e.failStart {
		return errors.New("start refused")
	}
	return nil
}

func (e *fakeEntry) Stop(context.Context) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.stopCalls++
	if e.failStop {
		return errors.New("stop refused")
	}
	return nil
}

func (e *fakeEntry) HealthCheck(context.Context) (types.Health, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	if e.healthErr != nil {
		return types.Health{}, e.healthErr
	}
	if e.health.State == "" {
		return types.Health{State: types.HealthOK}, nil
	}
	return e.health, nil
}

func (e *fakeEntry) OnEvent(_ context.Context, evt events.Event) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.seen = append(e.seen, evt)
	return nil
}

func (e *fakeEntry) Execute(_ context.Context, op string, params map[string]string) (map[string]string, error) {
	result := map[string]string{"op": op}
	for k, v := range params {
		result[k] = v
	}
	return result, nil
}

var (
	factoryMtx sync.Mutex
	nextEntry  *fakeEntry
)

func init() {
	bundle.RegisterEntrypoint("fake-entry", func(m bundle.Manifest) types.Entry {
		factoryMtx.Lock()
		defer factoryMtx.Unlock()
		e := nextEntry
		nextEntry = nil
		if e == nil {
			e = &fakeEntry{}
		}
		e.descriptor = m.Descriptor
		return e
	})
}

// useEntry arranges for the next constructed entry to be e.
func useEntry(e *fakeEntry) {
	factoryMtx.Lock()
	defer factoryMtx.Unlock()
	nextEntry = e
}

func writeBundleFile(t *testing.T, d types.Descriptor) string {
	t.Helper()
	var buf bytes.Buffer
	err := bundle.Write(&buf, bundle.Bundle{
		Manifest: bundle.Manifest{Descriptor: d, Entrypoints: []string{"fake-entry"}},
		Artifacts: []bundle.ArtifactFile{
			{Path: "fake-entry.dat", Raw: []byte("entry")},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), d.Name+bundle.Suffix)
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

// waitSeen blocks until e has observed n events or the deadline expires.
func waitSeen(t *testing.T, e *fakeEntry, n int) []events.Event {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		e.mtx.Lock()
		if len(e.seen) >= n {
			seen := append([]events.Event{}, e.seen...)
			e.mtx.Unlock()
			return seen
		}
		e.mtx.Unlock()
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("expected %d events before deadline", n)
	return nil
}

func testDescriptor(name string) types.Descriptor {
	return types.Descriptor{
		Name:                name,
		Version:             "1.0.0",
		Capabilities:        []string{"notes.summarize"},
		RequiredPermissions: []string{"notes.read"},
		SubscribedEvents:    []string{"note.created"},
	}
}

type fixture struct {
	manager  *Manager
	bus      *events.Bus
	security *security.Manager
	store    registry.Store
}

func newFixture(t *testing.T, opts ...func(*Manager)) *fixture {
	t.Helper()
	bus := events.NewBus()
	t.Cleanup(func() { bus.Close(context.Background()) })
	sec := security.NewManager()
	store := registry.NewInmemStore()
	return &fixture{
		manager:  New(store, bus, sec, opts...),
		bus:      bus,
		security: sec,
		store:    store,
	}
}

func TestInstallLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	recorder := &fakeEntry{}
	f.bus.Subscribe(events.TypePluginInstalled, "host", recorder)

	entry := &fakeEntry{}
	useEntry(entry)
	id, err := f.manager.Install(ctx, writeBundleFile(t, testDescriptor("word-count")), map[string]interface{}{"limit": "5"})
	if err != nil {
		t.Fatal(err)
	}

	// The declared name is the plugin's identity.
	if id != "word-count" {
		t.Fatalf("expected the declared name as id, got %q", id)
	}
	if got := f.manager.Status(id); got != types.StateActive {
		t.Fatalf("expected active, got %v", got)
	}
	if entry.initCalls != 1 || entry.startCalls != 1 {
		t.Fatalf("expected one initialize and one start, got %d/%d", entry.initCalls, entry.startCalls)
	}

	// Permissions granted and token minted.
	if !f.security.HasPermission(id, "notes.read") {
		t.Error("expected notes.read to be granted")
	}
	token, err := f.manager.Token(id)
	if err != nil || len(token) != 32 {
		t.Fatalf("expected 32-char token, got %q, %v", token, err)
	}
	if got, ok := f.security.LookupByToken(token); !ok || got != id {
		t.Errorf("expected token to resolve to %v, got %v, %v", id, got, ok)
	}

	// Declared events subscribed.
	if subs := f.bus.Subscriptions(id); len(subs) != 1 {
		t.Errorf("expected one subscription, got %v", subs)
	}

	// Registry record persisted as active.
	rec, err := f.store.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if rec.LastKnownState != types.StateActive || rec.Descriptor.Name != "word-count" {
		t.Errorf("unexpected record %+v", rec)
	}
	if diff := cmp.Diff(map[string]interface{}{"limit": "5"}, rec.Config); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}

	// Install event published.
	seen := waitSeen(t, recorder, 1)
	if seen[0].Type != events.TypePluginInstalled {
		t.Fatalf("expected an installed event, got %v", seen)
	}
}

func TestInstallNameConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.manager.Install(ctx, writeBundleFile(t, testDescriptor("word-count")), nil); err != nil {
		t.Fatal(err)
	}
	_, err := f.manager.Install(ctx, writeBundleFile(t, testDescriptor("word-count")), nil)
	if !types.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestInstallConcurrentDuplicateName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	paths := []string{
		writeBundleFile(t, testDescriptor("word-count")),
		writeBundleFile(t, testDescriptor("word-count")),
	}
	errs := make([]error, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			_, errs[i] = f.manager.Install(ctx, path, nil)
		}(i, path)
	}
	wg.Wait()

	var installed, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			installed++
		case types.IsConflict(err):
			conflicts++
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	if installed != 1 || conflicts != 1 {
		t.Fatalf("expected exactly one install to win, got %d installed, %d conflicts", installed, conflicts)
	}
	if ids := f.manager.List(); len(ids) != 1 {
		t.Fatalf("expected a single instance, got %v", ids)
	}
}

func TestInstallTokenFailure(t *testing.T) {
	f := newFixture(t)
	f.manager.mintToken = func(string) (string, error) {
		return "", errors.New("entropy exhausted")
	}

	_, err := f.manager.Install(context.Background(), writeBundleFile(t, testDescriptor("word-count")), nil)
	if !types.IsLifecycle(err) {
		t.Fatalf("expected lifecycle error, got %v", err)
	}

	// The instance must not linger mid-install; it is parked in Error like
	// any other lifecycle failure.
	if got := f.manager.Status("word-count"); got != types.StateError {
		t.Fatalf("expected error state, got %v", got)
	}
	rec, err := f.store.Get(context.Background(), "word-count")
	if err != nil {
		t.Fatal(err)
	}
	if rec.LastKnownState != types.StateError {
		t.Fatalf("expected record in error state, got %v", rec.LastKnownState)
	}
}

func TestInstallUnknownPermission(t *testing.T) {
	f := newFixture(t)
	d := testDescriptor("word-count")
	d.RequiredPermissions = []string{"filesystem.write"}
	_, err := f.manager.Install(context.Background(), writeBundleFile(t, d), nil)
	if !types.IsInvalid(err) {
		t.Fatalf("expected invalid, got %v", err)
	}
}

func TestInstallInitializeFailure(t *testing.T) {
	f := newFixture(t)
	entry := &fakeEntry{failInit: true}
	useEntry(entry)

	_, err := f.manager.Install(context.Background(), writeBundleFile(t, testDescriptor("word-count")), nil)
	if !types.IsLifecycle(err) {
		t.Fatalf("expected lifecycle error, got %v", err)
	}

	// The failed instance is retained in Error for recovery.
	ids := f.manager.List()
	if len(ids) != 1 {
		t.Fatalf("expected one instance, got %v", ids)
	}
	if got := f.manager.Status(ids[0]); got != types.StateError {
		t.Fatalf("expected error state, got %v", got)
	}
}

func TestInstallStartPanic(t *testing.T) {
	f := newFixture(t)
	entry := &fakeEntry{panicStart: true}
	useEntry(entry)

	_, err := f.manager.Install(context.Background(), writeBundleFile(t, testDescriptor("word-count")), nil)
	if !types.IsLifecycle(err) {
		t.Fatalf("expected recovered panic as lifecycle error, got %v", err)
	}
}

func TestStartStopRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry := &fakeEntry{}
	useEntry(entry)
	id, err := f.manager.Install(ctx, writeBundleFile(t, testDescriptor("word-count")), nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := f.manager.Stop(ctx, id); err != nil {
		t.Fatal(err)
	}
	if got := f.manager.Status(id); got != types.StateInactive {
		t.Fatalf("expected inactive, got %v", got)
	}
	if subs := f.bus.Subscriptions(id); len(subs) != 0 {
		t.Fatalf("expected subscriptions removed on stop, got %v", subs)
	}

	// Stopping again is a no-op.
	if err := f.manager.Stop(ctx, id); err != nil {
		t.Fatal(err)
	}
	if entry.stopCalls != 1 {
		t.Fatalf("expected one stop call, got %d", entry.stopCalls)
	}

	if err := f.manager.Start(ctx, id); err != nil {
		t.Fatal(err)
	}
	if got := f.manager.Status(id); got != types.StateActive {
		t.Fatalf("expected active, got %v", got)
	}
	if subs := f.bus.Subscriptions(id); len(subs) != 1 {
		t.Fatalf("expected resubscription on start, got %v", subs)
	}
	// Inactive restart does not re-initialize.
	if entry.initCalls != 1 {
		t.Fatalf("expected one initialize, got %d", entry.initCalls)
	}
}

func TestStartFromErrorReinitializes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry := &fakeEntry{failStart: true}
	useEntry(entry)
	_, err := f.manager.Install(ctx, writeBundleFile(t, testDescriptor("word-count")), nil)
	if !types.IsLifecycle(err) {
		t.Fatalf("expected lifecycle error, got %v", err)
	}
	id := f.manager.List()[0]

	entry.mtx.Lock()
	entry.failStart = false
	entry.mtx.Unlock()

	if err := f.manager.Start(ctx, id); err != nil {
		t.Fatal(err)
	}
	if got := f.manager.Status(id); got != types.StateActive {
		t.Fatalf("expected active, got %v", got)
	}
	if entry.initCalls != 2 {
		t.Fatalf("expected recovery to re-initialize, got %d init calls", entry.initCalls)
	}
}

func TestUninstall(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	recorder := &fakeEntry{}
	f.bus.Subscribe(events.TypePluginUninstalled, "host", recorder)

	entry := &fakeEntry{}
	useEntry(entry)
	id, err := f.manager.Install(ctx, writeBundleFile(t, testDescriptor("word-count")), nil)
	if err != nil {
		t.Fatal(err)
	}
	token, _ := f.manager.Token(id)

	if err := f.manager.Uninstall(ctx, id); err != nil {
		t.Fatal(err)
	}

	if got := f.manager.Status(id); got != types.StateUnknown {
		t.Fatalf("expected unknown after uninstall, got %v", got)
	}
	if _, err := f.store.Get(ctx, id); !types.IsNotFound(err) {
		t.Fatalf("expected registry record removed, got %v", err)
	}
	if _, ok := f.security.LookupByToken(token); ok {
		t.Error("expected token destroyed")
	}
	if got := f.security.Permissions(id); len(got) != 0 {
		t.Errorf("expected permissions revoked, got %v", got)
	}
	if subs := f.bus.Subscriptions(id); len(subs) != 0 {
		t.Errorf("expected subscriptions removed, got %v", subs)
	}

	waitSeen(t, recorder, 1)

	// Uninstalling again fails.
	if err := f.manager.Uninstall(ctx, id); !types.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUninstallSwallowsStopFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry := &fakeEntry{failStop: true}
	useEntry(entry)
	id, err := f.manager.Install(ctx, writeBundleFile(t, testDescriptor("word-count")), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.manager.Uninstall(ctx, id); err != nil {
		t.Fatalf("expected best-effort uninstall, got %v", err)
	}
}

func TestShutdown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	recorder := &fakeEntry{}
	f.bus.Subscribe(events.TypeApplicationStopping, "host", recorder)

	var entries []*fakeEntry
	for _, name := range []string{"a", "b"} {
		entry := &fakeEntry{}
		entries = append(entries, entry)
		useEntry(entry)
		if _, err := f.manager.Install(ctx, writeBundleFile(t, testDescriptor(name)), nil); err != nil {
			t.Fatal(err)
		}
	}

	if err := f.manager.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}

	for i, entry := range entries {
		if entry.stopCalls != 1 {
			t.Errorf("expected entry %d stopped once, got %d", i, entry.stopCalls)
		}
	}
	if got := f.manager.List(); len(got) != 0 {
		t.Fatalf("expected maps cleared, got %v", got)
	}

	seen := waitSeen(t, recorder, 1)
	if seen[0].Type != events.TypeApplicationStopping {
		t.Fatalf("expected stopping event, got %v", seen)
	}
}

func TestBootstrap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	good := writeBundleFile(t, testDescriptor("word-count"))
	now := time.Now().UTC()
	records := []registry.Record{
		{
			ID:             "good",
			Descriptor:     testDescriptor("word-count"),
			BundlePath:     good,
			Config:         map[string]interface{}{"limit": "5"},
			LastKnownState: types.StateActive,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		{
			ID:             "broken",
			Descriptor:     testDescriptor("broken"),
			BundlePath:     filepath.Join(t.TempDir(), "missing.tar.gz"),
			LastKnownState: types.StateActive,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
	}
	for _, rec := range records {
		if err := f.store.Put(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	entry := &fakeEntry{}
	useEntry(entry)
	if err := f.manager.Bootstrap(ctx); err == nil {
		t.Fatal("expected aggregated error for the broken record")
	}

	if got := f.manager.Status("good"); got != types.StateActive {
		t.Fatalf("expected good plugin active, got %v", got)
	}
	if entry.initCalls != 1 || entry.startCalls != 1 {
		t.Fatalf("expected restore to initialize and start, got %d/%d", entry.initCalls, entry.startCalls)
	}
	if !f.security.HasPermission("good", "notes.read") {
		t.Error("expected permissions re-granted on bootstrap")
	}

	rec, err := f.store.Get(ctx, "broken")
	if err != nil {
		t.Fatal(err)
	}
	if rec.LastKnownState != types.StateError {
		t.Fatalf("expected broken record marked error, got %v", rec.LastKnownState)
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if got := f.manager.Health(ctx, "missing"); got.State != types.HealthUnknown {
		t.Fatalf("expected unknown for missing plugin, got %+v", got)
	}

	entry := &fakeEntry{}
	useEntry(entry)
	id, err := f.manager.Install(ctx, writeBundleFile(t, testDescriptor("word-count")), nil)
	if err != nil {
		t.Fatal(err)
	}

	if got := f.manager.Health(ctx, id); got.State != types.HealthOK {
		t.Fatalf("expected healthy, got %+v", got)
	}

	entry.mtx.Lock()
	entry.healthErr = errors.New("degraded")
	entry.mtx.Unlock()
	if got := f.manager.Health(ctx, id); got.State != types.HealthUnhealthy {
		t.Fatalf("expected unhealthy, got %+v", got)
	}
}

func TestConfigureAndExecute(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry := &fakeEntry{}
	useEntry(entry)
	id, err := f.manager.Install(ctx, writeBundleFile(t, testDescriptor("word-count")), nil)
	if err != nil {
		t.Fatal(err)
	}

	cfg := map[string]interface{}{"limit": "10"}
	if err := f.manager.Configure(ctx, id, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := f.manager.GetConfiguration(id)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("unexpected configuration (-want +got):\n%s", diff)
	}
	rec, err := f.store.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cfg, rec.Config); diff != "" {
		t.Errorf("expected configuration persisted (-want +got):\n%s", diff)
	}

	result, err := f.manager.Execute(ctx, id, "count", map[string]string{"text": "one two"})
	if err != nil {
		t.Fatal(err)
	}
	if result["op"] != "count" || result["text"] != "one two" {
		t.Fatalf("unexpected execute result %v", result)
	}

	if err := f.manager.Stop(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := f.manager.Execute(ctx, id, "count", nil); !types.IsLifecycle(err) {
		t.Fatalf("expected lifecycle error for inactive plugin, got %v", err)
	}
}

func TestEventDeliveryToInstalledPlugin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry := &fakeEntry{}
	useEntry(entry)
	if _, err := f.manager.Install(ctx, writeBundleFile(t, testDescriptor("word-count")), nil); err != nil {
		t.Fatal(err)
	}

	f.bus.Publish(events.Event{Type: "note.created", Origin: "host"})
	seen := waitSeen(t, entry, 1)
	if seen[0].Type != "note.created" {
		t.Fatalf("unexpected event %v", seen)
	}
}
