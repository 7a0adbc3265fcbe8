// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package plugins implements lifecycle management of installed plugins and
// gives them access to runtime-wide components like the event bus and the
// security manager.
package plugins

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	multierror "github.com/hashicorp/go-multierror"

	"github.com/inkpad-io/inkpad/bundle"
	"github.com/inkpad-io/inkpad/download"
	"github.com/inkpad-io/inkpad/events"
	"github.com/inkpad-io/inkpad/logging"
	"github.com/inkpad-io/inkpad/metrics"
	"github.com/inkpad-io/inkpad/registry"
	"github.com/inkpad-io/inkpad/security"
	"github.com/inkpad-io/inkpad/types"
)

const (
	defaultInstallTimeout = 60 * time.Second
	defaultStopTimeout    = 30 * time.Second
)

// instance is the in-memory state of one installed plugin.
type instance struct {
	id         string
	entry      types.Entry
	descriptor types.Descriptor
	bundlePath string
	config     map[string]interface{}
	token      string
	createdAt  time.Time
}

// Manager orchestrates install, start, stop and uninstall of plugins. All
// lifecycle operations for the same plugin id are serialized by a per-id
// mutex; operations on different plugins proceed in parallel.
type Manager struct {
	mtx       sync.RWMutex
	instances map[string]*instance
	states    map[string]types.State

	lockMtx sync.Mutex
	locks   map[string]*sync.Mutex

	store          registry.Store
	bus            *events.Bus
	security       *security.Manager
	downloader     *download.Loader
	installTimeout time.Duration
	stopTimeout    time.Duration
	logger         logging.Logger
	metrics        metrics.Metrics

	mintToken func(string) (string, error)
}

// New returns a Manager wired to the given collaborators.
func New(store registry.Store, bus *events.Bus, sec *security.Manager, opts ...func(*Manager)) *Manager {
	m := &Manager{
		instances:      map[string]*instance{},
		states:         map[string]types.State{},
		locks:          map[string]*sync.Mutex{},
		store:          store,
		bus:            bus,
		security:       sec,
		installTimeout: defaultInstallTimeout,
		stopTimeout:    defaultStopTimeout,
		logger:         logging.NewNoOpLogger(),
		metrics:        metrics.NoOp(),
	}
	m.mintToken = sec.MintToken
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Logger sets the logger on the manager.
func Logger(logger logging.Logger) func(*Manager) {
	return func(m *Manager) {
		m.logger = logger
	}
}

// Metrics sets the metrics provider on the manager.
func Metrics(mx metrics.Metrics) func(*Manager) {
	return func(m *Manager) {
		m.metrics = mx
	}
}

// Downloader sets the remote loader used when install is given a URL.
func Downloader(l *download.Loader) func(*Manager) {
	return func(m *Manager) {
		m.downloader = l
	}
}

// InstallTimeout bounds install and start operations.
func InstallTimeout(d time.Duration) func(*Manager) {
	return func(m *Manager) {
		m.installTimeout = d
	}
}

// StopTimeout bounds stop operations.
func StopTimeout(d time.Duration) func(*Manager) {
	return func(m *Manager) {
		m.stopTimeout = d
	}
}

// Install loads the bundle at path (a filesystem path or an https URL),
// validates it, persists it, initializes and starts its entry, and wires
// events, permissions and a token. The declared name is the plugin's
// identity and is returned as its id.
func (m *Manager) Install(ctx context.Context, path string, config map[string]interface{}) (string, error) {
	b, bundlePath, err := m.open(ctx, path)
	if err != nil {
		return "", err
	}

	descriptor := b.Manifest.Descriptor
	if err := descriptor.Validate(); err != nil {
		return "", err
	}
	if !m.security.CanInstall(descriptor.Name, descriptor.RequiredPermissions) {
		return "", types.NewError(types.InvalidErr, "plugin %v requests permissions outside the catalog", descriptor.Name)
	}

	entry, err := bundle.NewEntry(&b)
	if err != nil {
		return "", err
	}

	id := descriptor.Name
	unlock := m.lock(id)
	defer unlock()

	inst := &instance{
		id:         id,
		entry:      entry,
		descriptor: descriptor,
		bundlePath: bundlePath,
		config:     config,
		createdAt:  time.Now().UTC(),
	}

	// The uniqueness check and the insert happen under one lock so two
	// concurrent installs of the same name cannot both reserve it.
	m.mtx.Lock()
	if m.nameInUseLocked(descriptor.Name) {
		m.mtx.Unlock()
		return "", types.NewError(types.ConflictErr, "plugin name %v is already installed", descriptor.Name)
	}
	m.instances[id] = inst
	m.states[id] = types.StateInstalling
	m.mtx.Unlock()

	if err := m.persist(ctx, inst, types.StateInstalling); err != nil {
		m.remove(id)
		return "", err
	}

	opCtx, cancel := context.WithTimeout(ctx, m.installTimeout)
	defer cancel()

	if err := safeCall(func() error { return entry.Initialize(opCtx, config) }); err != nil {
		err = m.lifecycleError(opCtx, "initialize", inst, err)
		return "", err
	}
	if err := safeCall(func() error { return entry.Start(opCtx) }); err != nil {
		err = m.lifecycleError(opCtx, "start", inst, err)
		return "", err
	}

	m.subscribeDeclared(inst)
	m.security.Grant(id, descriptor.RequiredPermissions)
	token, err := m.mintToken(id)
	if err != nil {
		return "", m.lifecycleError(opCtx, "token minting", inst, err)
	}
	inst.token = token

	m.setState(id, types.StateActive)
	if err := m.persist(ctx, inst, types.StateActive); err != nil {
		return "", err
	}

	m.metrics.Counter(metrics.PluginInstall).Incr()
	m.logger.Info("Installed plugin %v (%v %v).", id, descriptor.Name, descriptor.Version)
	m.bus.Publish(events.Event{
		Type:   events.TypePluginInstalled,
		Origin: events.SystemOrigin,
		Payload: map[string]interface{}{
			"id":      id,
			"name":    descriptor.Name,
			"version": descriptor.Version,
		},
	})

	return id, nil
}

// Uninstall tears the plugin down. Stop failures are logged, not
// propagated: uninstall is best-effort beyond the existence check.
func (m *Manager) Uninstall(ctx context.Context, id string) error {
	unlock := m.lock(id)
	defer unlock()

	inst, _ := m.get(id)
	if inst == nil {
		return types.NewError(types.NotFoundErr, "plugin %v not found", id)
	}

	m.setState(id, types.StateUninstalling)

	if err := m.stopEntry(ctx, inst); err != nil {
		m.logger.Warn("Stopping plugin %v during uninstall failed: %v.", id, err)
	}

	m.bus.UnsubscribeAll(id)
	if err := m.store.Delete(ctx, id); err != nil {
		m.logger.Warn("Removing registry record for %v failed: %v.", id, err)
	}
	m.security.RevokeAll(id)
	m.remove(id)

	m.logger.Info("Uninstalled plugin %v (%v).", id, inst.descriptor.Name)
	m.bus.Publish(events.Event{
		Type:    events.TypePluginUninstalled,
		Origin:  events.SystemOrigin,
		Payload: map[string]interface{}{"id": id},
	})
	return nil
}

// Initialize re-runs the entry's initialize with a fresh configuration.
// Only Inactive or Error plugins may be re-initialized; success moves the
// plugin to Inactive.
func (m *Manager) Initialize(ctx context.Context, id string, config map[string]interface{}) error {
	unlock := m.lock(id)
	defer unlock()

	inst, state := m.get(id)
	if inst == nil {
		return types.NewError(types.NotFoundErr, "plugin %v not found", id)
	}
	if state == types.StateActive {
		return types.NewError(types.LifecycleErr, "plugin %v must be stopped before re-initialization", id)
	}

	opCtx, cancel := context.WithTimeout(ctx, m.installTimeout)
	defer cancel()

	if err := safeCall(func() error { return inst.entry.Initialize(opCtx, config) }); err != nil {
		return m.lifecycleError(opCtx, "initialize", inst, err)
	}

	inst.config = config
	m.setState(id, types.StateInactive)
	return m.persist(ctx, inst, types.StateInactive)
}

// Start transitions an Inactive or Error plugin to Active. Recovery from
// Error re-initializes the entry before starting it.
func (m *Manager) Start(ctx context.Context, id string) error {
	unlock := m.lock(id)
	defer unlock()

	inst, state := m.get(id)
	if inst == nil {
		return types.NewError(types.NotFoundErr, "plugin %v not found", id)
	}

	switch state {
	case types.StateActive:
		return nil
	case types.StateInactive, types.StateError:
	default:
		return types.NewError(types.LifecycleErr, "plugin %v cannot start from state %v", id, state)
	}

	opCtx, cancel := context.WithTimeout(ctx, m.installTimeout)
	defer cancel()

	if state == types.StateError {
		if err := safeCall(func() error { return inst.entry.Initialize(opCtx, inst.config) }); err != nil {
			return m.lifecycleError(opCtx, "initialize", inst, err)
		}
	}
	if err := safeCall(func() error { return inst.entry.Start(opCtx) }); err != nil {
		return m.lifecycleError(opCtx, "start", inst, err)
	}

	m.subscribeDeclared(inst)
	m.setState(id, types.StateActive)
	if err := m.persist(ctx, inst, types.StateActive); err != nil {
		return err
	}
	m.metrics.Counter(metrics.PluginStart).Incr()
	m.logger.Info("Started plugin %v.", id)
	return nil
}

// Stop transitions an Active plugin to Inactive. Event subscriptions are
// removed before the entry is stopped.
func (m *Manager) Stop(ctx context.Context, id string) error {
	unlock := m.lock(id)
	defer unlock()

	inst, state := m.get(id)
	if inst == nil {
		return types.NewError(types.NotFoundErr, "plugin %v not found", id)
	}
	if state != types.StateActive {
		return nil
	}

	m.bus.UnsubscribeAll(id)

	if err := m.stopEntry(ctx, inst); err != nil {
		m.setState(id, types.StateError)
		if perr := m.persist(ctx, inst, types.StateError); perr != nil {
			m.logger.Warn("Persisting error state for %v failed: %v.", id, perr)
		}
		return err
	}

	m.setState(id, types.StateInactive)
	if err := m.persist(ctx, inst, types.StateInactive); err != nil {
		return err
	}
	m.metrics.Counter(metrics.PluginStop).Incr()
	m.logger.Info("Stopped plugin %v.", id)
	return nil
}

// Bootstrap restores every plugin whose last known state is Active. A
// failing plugin is left in Error; the rest keep bootstrapping.
func (m *Manager) Bootstrap(ctx context.Context) error {
	recs, err := m.store.ListActive(ctx)
	if err != nil {
		return err
	}

	var result *multierror.Error
	for _, rec := range recs {
		if err := m.restore(ctx, rec); err != nil {
			m.logger.Error("Bootstrap of plugin %v failed: %v.", rec.ID, err)
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (m *Manager) restore(ctx context.Context, rec registry.Record) error {
	b, err := bundle.OpenPath(rec.BundlePath)
	if err != nil {
		return m.recordBootstrapFailure(ctx, rec, err)
	}
	entry, err := bundle.NewEntry(&b)
	if err != nil {
		return m.recordBootstrapFailure(ctx, rec, err)
	}

	unlock := m.lock(rec.ID)
	defer unlock()

	inst := &instance{
		id:         rec.ID,
		entry:      entry,
		descriptor: rec.Descriptor,
		bundlePath: rec.BundlePath,
		config:     rec.Config,
		createdAt:  rec.CreatedAt,
	}

	m.mtx.Lock()
	m.instances[rec.ID] = inst
	m.states[rec.ID] = types.StateInactive
	m.mtx.Unlock()

	opCtx, cancel := context.WithTimeout(ctx, m.installTimeout)
	defer cancel()

	if err := safeCall(func() error { return entry.Initialize(opCtx, rec.Config) }); err != nil {
		return m.lifecycleError(opCtx, "initialize", inst, err)
	}
	if err := safeCall(func() error { return entry.Start(opCtx) }); err != nil {
		return m.lifecycleError(opCtx, "start", inst, err)
	}

	m.subscribeDeclared(inst)
	m.security.Grant(rec.ID, rec.Descriptor.RequiredPermissions)
	token, err := m.mintToken(rec.ID)
	if err != nil {
		return m.lifecycleError(opCtx, "token minting", inst, err)
	}
	inst.token = token

	m.setState(rec.ID, types.StateActive)
	return m.persist(ctx, inst, types.StateActive)
}

func (m *Manager) recordBootstrapFailure(ctx context.Context, rec registry.Record, err error) error {
	rec.LastKnownState = types.StateError
	rec.UpdatedAt = time.Now().UTC()
	if perr := m.store.Put(ctx, rec); perr != nil {
		m.logger.Warn("Persisting bootstrap failure for %v failed: %v.", rec.ID, perr)
	}
	return err
}

// Shutdown publishes the stopping event, stops every Active plugin and
// clears the in-memory maps. Individual stop failures are aggregated and
// returned for logging but do not abort the shutdown.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.bus.Publish(events.Event{
		Type:   events.TypeApplicationStopping,
		Origin: events.SystemOrigin,
	})

	m.mtx.RLock()
	active := make([]string, 0, len(m.states))
	for id, state := range m.states {
		if state == types.StateActive {
			active = append(active, id)
		}
	}
	m.mtx.RUnlock()

	var result *multierror.Error
	for _, id := range active {
		if err := m.Stop(ctx, id); err != nil {
			m.logger.Error("Stopping plugin %v during shutdown failed: %v.", id, err)
			result = multierror.Append(result, err)
		}
	}

	m.mtx.Lock()
	m.instances = map[string]*instance{}
	m.states = map[string]types.State{}
	m.mtx.Unlock()

	return result.ErrorOrNil()
}

// Health runs the plugin's health check. Missing plugins report unknown;
// failing checks report unhealthy.
func (m *Manager) Health(ctx context.Context, id string) types.Health {
	inst, _ := m.get(id)
	if inst == nil {
		return types.Health{State: types.HealthUnknown, Message: "plugin not found"}
	}

	var health types.Health
	err := safeCall(func() error {
		var herr error
		health, herr = inst.entry.HealthCheck(ctx)
		return herr
	})
	if err != nil {
		return types.Health{State: types.HealthUnhealthy, Message: err.Error()}
	}
	if health.State == "" {
		health.State = types.HealthUnknown
	}
	return health
}

// Status returns the lifecycle state of id. Unknown plugins report
// StateUnknown.
func (m *Manager) Status(id string) types.State {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	if state, ok := m.states[id]; ok {
		return state
	}
	return types.StateUnknown
}

// Info returns the descriptor of id.
func (m *Manager) Info(id string) (types.Descriptor, error) {
	inst, _ := m.get(id)
	if inst == nil {
		return types.Descriptor{}, types.NewError(types.NotFoundErr, "plugin %v not found", id)
	}
	return inst.descriptor, nil
}

// Capabilities returns the declared capabilities of id.
func (m *Manager) Capabilities(id string) ([]string, error) {
	info, err := m.Info(id)
	if err != nil {
		return nil, err
	}
	return info.Capabilities, nil
}

// List returns the ids of all installed plugins.
func (m *Manager) List() []string {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	ids := make([]string, 0, len(m.instances))
	for id := range m.instances {
		ids = append(ids, id)
	}
	return ids
}

// Configure replaces the plugin's configuration and persists it. The new
// configuration takes effect on the next initialize.
func (m *Manager) Configure(ctx context.Context, id string, config map[string]interface{}) error {
	unlock := m.lock(id)
	defer unlock()

	inst, _ := m.get(id)
	if inst == nil {
		return types.NewError(types.NotFoundErr, "plugin %v not found", id)
	}
	inst.config = config
	return m.persist(ctx, inst, m.Status(id))
}

// GetConfiguration returns the plugin's current configuration.
func (m *Manager) GetConfiguration(id string) (map[string]interface{}, error) {
	inst, _ := m.get(id)
	if inst == nil {
		return nil, types.NewError(types.NotFoundErr, "plugin %v not found", id)
	}
	return inst.config, nil
}

// Execute dispatches a named operation to the plugin's entry. Entries that
// do not implement the Executor capability reject the call.
func (m *Manager) Execute(ctx context.Context, id, op string, params map[string]string) (map[string]string, error) {
	inst, state := m.get(id)
	if inst == nil {
		return nil, types.NewError(types.NotFoundErr, "plugin %v not found", id)
	}
	if state != types.StateActive {
		return nil, types.NewError(types.LifecycleErr, "plugin %v is not active", id)
	}
	executor, ok := inst.entry.(types.Executor)
	if !ok {
		return nil, types.NewError(types.InvalidErr, "plugin %v does not support operations", id)
	}

	var result map[string]string
	err := safeCall(func() error {
		var xerr error
		result, xerr = executor.Execute(ctx, op, params)
		return xerr
	})
	return result, err
}

// Token returns the access token minted for id at install time.
func (m *Manager) Token(id string) (string, error) {
	inst, _ := m.get(id)
	if inst == nil {
		return "", types.NewError(types.NotFoundErr, "plugin %v not found", id)
	}
	return inst.token, nil
}

func (m *Manager) open(ctx context.Context, path string) (bundle.Bundle, string, error) {
	if isURL(path) {
		if m.downloader == nil {
			return bundle.Bundle{}, "", types.NewError(types.InvalidErr, "remote install is not configured")
		}
		return m.downloader.Load(ctx, path, "")
	}
	b, err := bundle.OpenPath(path)
	return b, path, err
}

func isURL(path string) bool {
	if !strings.Contains(path, "://") {
		return false
	}
	u, err := url.Parse(path)
	return err == nil && u.Scheme != ""
}

// nameInUseLocked reports whether name is held by an installed plugin.
// Callers must hold m.mtx.
func (m *Manager) nameInUseLocked(name string) bool {
	for id, inst := range m.instances {
		if inst.descriptor.Name == name && m.states[id] != types.StateUninstalling {
			return true
		}
	}
	return false
}

func (m *Manager) subscribeDeclared(inst *instance) {
	handler, ok := inst.entry.(events.Handler)
	if !ok {
		return
	}
	for _, eventType := range inst.descriptor.SubscribedEvents {
		m.bus.Subscribe(eventType, inst.id, handler)
	}
}

func (m *Manager) stopEntry(ctx context.Context, inst *instance) error {
	opCtx, cancel := context.WithTimeout(ctx, m.stopTimeout)
	defer cancel()
	return safeCall(func() error { return inst.entry.Stop(opCtx) })
}

// lifecycleError moves inst to Error, persists the transition and returns
// the failure as a typed error.
func (m *Manager) lifecycleError(ctx context.Context, op string, inst *instance, err error) error {
	m.setState(inst.id, types.StateError)
	if perr := m.persist(ctx, inst, types.StateError); perr != nil {
		m.logger.Warn("Persisting error state for %v failed: %v.", inst.id, perr)
	}
	code := types.LifecycleErr
	if ctx.Err() == context.DeadlineExceeded {
		code = types.TimeoutErr
	}
	return types.NewError(code, "plugin %v %v failed: %v", inst.id, op, err)
}

func (m *Manager) persist(ctx context.Context, inst *instance, state types.State) error {
	now := time.Now().UTC()
	rec := registry.Record{
		ID:             inst.id,
		Descriptor:     inst.descriptor,
		BundlePath:     inst.bundlePath,
		Config:         inst.config,
		LastKnownState: state,
		CreatedAt:      inst.createdAt,
		UpdatedAt:      now,
	}
	if err := m.store.Put(ctx, rec); err != nil {
		return types.WrapError(types.InternalErr, err)
	}
	return nil
}

func (m *Manager) get(id string) (*instance, types.State) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.instances[id], m.states[id]
}

func (m *Manager) setState(id string, state types.State) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if _, ok := m.instances[id]; ok {
		m.states[id] = state
	}
}

func (m *Manager) remove(id string) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	delete(m.instances, id)
	delete(m.states, id)
}

// lock acquires the per-id lifecycle mutex and returns its unlock func.
func (m *Manager) lock(id string) func() {
	m.lockMtx.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	m.lockMtx.Unlock()
	l.Lock()
	return l.Unlock
}

// safeCall invokes fn, converting panics in plugin code into errors.
func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = types.NewError(types.LifecycleErr, "plugin panicked: %v", r)
		}
	}()
	return fn()
}
