// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package security

import (
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/inkpad-io/inkpad/logging"
	loggingtest "github.com/inkpad-io/inkpad/logging/test"
)

func TestIsCatalogPermission(t *testing.T) {
	for _, p := range Catalog {
		if !IsCatalogPermission(p) {
			t.Errorf("expected %v to be a catalog permission", p)
		}
	}
	for _, p := range []string{"", "notes", "notes.admin", "filesystem.write"} {
		if IsCatalogPermission(p) {
			t.Errorf("expected %v to be rejected", p)
		}
	}
}

func TestCanInstall(t *testing.T) {
	m := NewManager()
	if !m.CanInstall("p1", nil) {
		t.Error("expected empty request to be installable")
	}
	if !m.CanInstall("p1", []string{"notes.read", "users.read"}) {
		t.Error("expected catalog permissions to be installable")
	}
	if m.CanInstall("p1", []string{"notes.read", "filesystem.write"}) {
		t.Error("expected unknown permission to block install")
	}
}

func TestGrantIntersectsWithCatalog(t *testing.T) {
	logger := loggingtest.New()
	logger.SetLevel(logging.Warn)

	m := NewManager().WithLogger(logger)
	m.Grant("p1", []string{"notes.read", "filesystem.write", "notes.write"})

	want := []string{"notes.read", "notes.write"}
	if diff := cmp.Diff(want, m.Permissions("p1")); diff != "" {
		t.Errorf("unexpected grants (-want +got):\n%s", diff)
	}

	var warned bool
	for _, entry := range logger.Entries() {
		if entry.Level == logging.Warn {
			warned = true
		}
	}
	if !warned {
		t.Error("expected a warning for the dropped permission")
	}
}

func TestRevoke(t *testing.T) {
	m := NewManager()
	m.Grant("p1", []string{"notes.read", "notes.write"})
	m.Revoke("p1", []string{"notes.read"})

	if m.HasPermission("p1", "notes.read") {
		t.Error("expected notes.read to be revoked")
	}
	if !m.HasPermission("p1", "notes.write") {
		t.Error("expected notes.write to survive")
	}

	m.Revoke("unknown", []string{"notes.read"})
	m.RevokeAll("p1")
	if got := m.Permissions("p1"); len(got) != 0 {
		t.Errorf("expected no permissions after revoke all, got %v", got)
	}
}

func TestMintTokenAndLookup(t *testing.T) {
	m := NewManager()

	tok1, err := m.MintToken("p1")
	if err != nil {
		t.Fatal(err)
	}
	if !regexp.MustCompile(`^[0-9a-f]{32}$`).MatchString(tok1) {
		t.Fatalf("expected 32 hex chars, got %q", tok1)
	}

	if id, ok := m.LookupByToken(tok1); !ok || id != "p1" {
		t.Fatalf("expected lookup to yield p1, got %q, %v", id, ok)
	}

	// Re-minting replaces the old token.
	tok2, err := m.MintToken("p1")
	if err != nil {
		t.Fatal(err)
	}
	if tok1 == tok2 {
		t.Fatal("expected a fresh token")
	}
	if _, ok := m.LookupByToken(tok1); ok {
		t.Error("expected the replaced token to stop resolving")
	}
	if id, ok := m.LookupByToken(tok2); !ok || id != "p1" {
		t.Errorf("expected the fresh token to resolve to p1, got %q, %v", id, ok)
	}

	if _, ok := m.LookupByToken("0123456789abcdef0123456789abcdef"); ok {
		t.Error("expected unknown token to miss")
	}
}

func TestAuthorizeAPICall(t *testing.T) {
	m := NewManager()
	m.Grant("p1", []string{"notes.read", "admin.plugins"})

	tests := []struct {
		note     string
		endpoint string
		method   string
		want     bool
	}{
		{"granted read", "/api/v1/notes/42", "GET", true},
		{"list endpoint", "/api/v1/notes", "GET", true},
		{"method case-insensitive", "/api/v1/notes/42", "get", true},
		{"not granted write", "/api/v1/notes", "POST", false},
		{"wildcard method", "/api/v1/admin/plugins/x", "DELETE", true},
		{"unlisted endpoint denies", "/api/v1/settings", "GET", false},
		{"not granted users", "/api/v1/users/7", "GET", false},
	}
	for _, tc := range tests {
		t.Run(tc.note, func(t *testing.T) {
			if got := m.AuthorizeAPICall("p1", tc.endpoint, tc.method); got != tc.want {
				t.Fatalf("expected %v for %v %v", tc.want, tc.method, tc.endpoint)
			}
		})
	}

	if m.AuthorizeAPICall("unknown", "/api/v1/notes", "GET") {
		t.Error("expected unknown plugin to be denied")
	}
}
