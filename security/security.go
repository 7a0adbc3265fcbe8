// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package security implements the permission catalog, per-plugin grants,
// access tokens and the endpoint authorization table of the plugin runtime.
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gobwas/glob"

	"github.com/inkpad-io/inkpad/logging"
)

// Catalog is the fixed set of permissions a plugin may request. Permissions
// outside the catalog are never grantable.
var Catalog = []string{
	"notes.read",
	"notes.write",
	"notes.delete",
	"users.read",
	"system.events.publish",
	"system.events.subscribe",
	"blockchain.read",
	"admin.plugins",
}

var catalogSet = func() map[string]struct{} {
	s := make(map[string]struct{}, len(Catalog))
	for _, p := range Catalog {
		s[p] = struct{}{}
	}
	return s
}()

// IsCatalogPermission reports whether p names a permission in the catalog.
func IsCatalogPermission(p string) bool {
	_, ok := catalogSet[p]
	return ok
}

type endpointRule struct {
	pattern    glob.Glob
	raw        string
	method     string
	permission string
}

// Manager tracks granted permissions and access tokens per plugin and
// answers authorization queries. All operations are total: unknown plugin
// ids yield false or empty results, never errors.
type Manager struct {
	mtx    sync.RWMutex
	grants map[string]map[string]struct{}
	tokens map[string]string
	rules  []endpointRule
	logger logging.Logger
}

// NewManager returns a Manager preloaded with the default endpoint table.
func NewManager() *Manager {
	m := &Manager{
		grants: map[string]map[string]struct{}{},
		tokens: map[string]string{},
		logger: logging.NewNoOpLogger(),
	}
	for _, r := range []struct{ pattern, method, permission string }{
		{"/api/v1/notes", "GET", "notes.read"},
		{"/api/v1/notes/*", "GET", "notes.read"},
		{"/api/v1/notes", "POST", "notes.write"},
		{"/api/v1/notes/*", "PUT", "notes.write"},
		{"/api/v1/notes/*", "DELETE", "notes.delete"},
		{"/api/v1/users/*", "GET", "users.read"},
		{"/api/v1/events", "POST", "system.events.publish"},
		{"/api/v1/events/subscriptions", "POST", "system.events.subscribe"},
		{"/api/v1/blockchain/*", "GET", "blockchain.read"},
		{"/api/v1/admin/plugins/*", "*", "admin.plugins"},
	} {
		if err := m.AddEndpointRule(r.pattern, r.method, r.permission); err != nil {
			panic(err)
		}
	}
	return m
}

// WithLogger sets the logger on the manager.
func (m *Manager) WithLogger(logger logging.Logger) *Manager {
	m.logger = logger
	return m
}

// AddEndpointRule maps an endpoint glob pattern and HTTP method (or "*") to
// the permission required to call it.
func (m *Manager) AddEndpointRule(pattern, method, permission string) error {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return fmt.Errorf("invalid endpoint pattern %q: %w", pattern, err)
	}
	if !IsCatalogPermission(permission) {
		return fmt.Errorf("unknown permission %q", permission)
	}
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.rules = append(m.rules, endpointRule{
		pattern:    g,
		raw:        pattern,
		method:     strings.ToUpper(method),
		permission: permission,
	})
	return nil
}

// CanInstall reports whether every requested permission is in the catalog.
// Unknown permissions make the whole request uninstallable.
func (m *Manager) CanInstall(pluginID string, required []string) bool {
	for _, p := range required {
		if !IsCatalogPermission(p) {
			m.logger.Warn("Plugin %v requests unknown permission %v.", pluginID, p)
			return false
		}
	}
	return true
}

// Grant adds the given permissions to pluginID's set, intersected with the
// catalog. Unknown permissions are dropped with a warning.
func (m *Manager) Grant(pluginID string, permissions []string) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	set, ok := m.grants[pluginID]
	if !ok {
		set = map[string]struct{}{}
		m.grants[pluginID] = set
	}
	for _, p := range permissions {
		if !IsCatalogPermission(p) {
			m.logger.Warn("Dropping unknown permission %v for plugin %v.", p, pluginID)
			continue
		}
		set[p] = struct{}{}
	}
}

// Revoke removes the given permissions from pluginID's set.
func (m *Manager) Revoke(pluginID string, permissions []string) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	set, ok := m.grants[pluginID]
	if !ok {
		return
	}
	for _, p := range permissions {
		delete(set, p)
	}
	if len(set) == 0 {
		delete(m.grants, pluginID)
	}
}

// RevokeAll removes every permission and the token held by pluginID.
func (m *Manager) RevokeAll(pluginID string) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	delete(m.grants, pluginID)
	delete(m.tokens, pluginID)
}

// HasPermission reports whether pluginID holds permission p.
func (m *Manager) HasPermission(pluginID, p string) bool {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	_, ok := m.grants[pluginID][p]
	return ok
}

// Permissions returns the sorted permissions granted to pluginID.
func (m *Manager) Permissions(pluginID string) []string {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	result := make([]string, 0, len(m.grants[pluginID]))
	for p := range m.grants[pluginID] {
		result = append(result, p)
	}
	sort.Strings(result)
	return result
}

// MintToken generates a fresh 128-bit hex token for pluginID, replacing any
// existing one, and returns it.
func (m *Manager) MintToken(pluginID string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("mint token: %w", err)
	}
	token := hex.EncodeToString(buf)
	m.mtx.Lock()
	m.tokens[pluginID] = token
	m.mtx.Unlock()
	return token, nil
}

// LookupByToken returns the plugin id holding token. Comparison is constant
// time per stored token and scans all tokens regardless of matches.
func (m *Manager) LookupByToken(token string) (string, bool) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	var (
		found string
		ok    bool
	)
	for id, stored := range m.tokens {
		if len(stored) == len(token) &&
			subtle.ConstantTimeCompare([]byte(stored), []byte(token)) == 1 {
			found, ok = id, true
		}
	}
	return found, ok
}

// AuthorizeAPICall reports whether pluginID may call endpoint with method.
// Endpoints with no matching rule deny by default.
func (m *Manager) AuthorizeAPICall(pluginID, endpoint, method string) bool {
	method = strings.ToUpper(method)

	m.mtx.RLock()
	defer m.mtx.RUnlock()
	for _, r := range m.rules {
		if r.method != "*" && r.method != method {
			continue
		}
		if !r.pattern.Match(endpoint) {
			continue
		}
		_, ok := m.grants[pluginID][r.permission]
		return ok
	}
	return false
}
