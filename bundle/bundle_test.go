// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package bundle

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/inkpad-io/inkpad/types"
)

func testManifest(entrypoints ...string) Manifest {
	return Manifest{
		Descriptor: types.Descriptor{
			Name:    "word-count",
			Version: "1.2.0",
		},
		Entrypoints: entrypoints,
	}
}

func writeBundle(t *testing.T, b Bundle) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := Write(&buf, b); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestReadRoundTrip(t *testing.T) {
	in := Bundle{
		Manifest: testManifest("word-count"),
		Artifacts: []ArtifactFile{
			{Path: "plugin.dat", Raw: []byte("artifact bytes")},
			{Path: "assets/help.md", Raw: []byte("# help")},
		},
	}

	out, err := NewReader(bytes.NewReader(writeBundle(t, in))).Read()
	if err != nil {
		t.Fatal(err)
	}

	if out.Manifest.Name != "word-count" || out.Manifest.Version != "1.2.0" {
		t.Fatalf("unexpected manifest: %+v", out.Manifest)
	}
	if out.Manifest.Runtime != types.RuntimeBundle || out.Manifest.Kind != types.KindInternal {
		t.Fatalf("expected runtime/kind defaults, got %+v", out.Manifest)
	}

	raw, ok := out.Artifact("plugin.dat")
	if !ok || !bytes.Equal(raw, []byte("artifact bytes")) {
		t.Fatalf("unexpected artifact: %q, %v", raw, ok)
	}
	if diff := cmp.Diff([]string{"plugin.dat", "assets/help.md"}, []string{out.Artifacts[0].Path, out.Artifacts[1].Path}); diff != "" {
		t.Errorf("unexpected artifact paths (-want +got):\n%s", diff)
	}
}

func TestReadMissingManifest(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	content := []byte("x")
	if err := tw.WriteHeader(&tar.Header{Name: "/plugin.dat", Mode: 0600, Typeflag: tar.TypeReg, Size: int64(len(content))}); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}

	_, err := NewReader(bytes.NewReader(buf.Bytes())).Read()
	if err == nil || !types.IsInvalid(err) || !strings.Contains(err.Error(), ManifestName) {
		t.Fatalf("expected missing manifest error, got %v", err)
	}
}

func TestReadNotGzip(t *testing.T) {
	if _, err := NewReader(strings.NewReader("not a bundle")).Read(); err == nil {
		t.Fatal("expected error")
	}
}

func TestReadSizeLimit(t *testing.T) {
	in := Bundle{
		Manifest:  testManifest("word-count"),
		Artifacts: []ArtifactFile{{Path: "plugin.dat", Raw: bytes.Repeat([]byte("a"), 4096)}},
	}
	raw := writeBundle(t, in)

	if _, err := NewReader(bytes.NewReader(raw)).WithSizeLimitBytes(1024).Read(); !types.IsIntegrity(err) {
		t.Fatalf("expected integrity error, got %v", err)
	}
	if _, err := NewReader(bytes.NewReader(raw)).WithSizeLimitBytes(1 << 20).Read(); err != nil {
		t.Fatalf("expected read under the limit to succeed, got %v", err)
	}
}

func TestEntrypoint(t *testing.T) {
	tests := []struct {
		note        string
		entrypoints []string
		wantErr     string
	}{
		{"single", []string{"word-count"}, ""},
		{"none", nil, "none"},
		{"ambiguous", []string{"a", "b"}, "ambiguous"},
	}
	for _, tc := range tests {
		t.Run(tc.note, func(t *testing.T) {
			b := Bundle{Manifest: testManifest(tc.entrypoints...)}
			got, err := b.Entrypoint()
			if tc.wantErr == "" {
				if err != nil || got != tc.entrypoints[0] {
					t.Fatalf("expected %v, got %v, %v", tc.entrypoints[0], got, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

type nopEntry struct {
	manifest Manifest
}

func (e *nopEntry) Info() types.Descriptor { return e.manifest.Descriptor }
func (e *nopEntry) Initialize(context.Context, map[string]interface{}) error {
	return nil
}
func (e *nopEntry) Start(context.Context) error { return nil }
func (e *nopEntry) Stop(context.Context) error  { return nil }
func (e *nopEntry) HealthCheck(context.Context) (types.Health, error) {
	return types.Health{State: types.HealthOK}, nil
}

func TestNewEntry(t *testing.T) {
	RegisterEntrypoint("test-entry", func(m Manifest) types.Entry {
		return &nopEntry{manifest: m}
	})

	b := Bundle{Manifest: testManifest("test-entry")}
	entry, err := NewEntry(&b)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Info().Name != "word-count" {
		t.Fatalf("unexpected descriptor: %+v", entry.Info())
	}

	b = Bundle{Manifest: testManifest("unregistered")}
	if _, err := NewEntry(&b); !types.IsInvalid(err) {
		t.Fatalf("expected invalid error, got %v", err)
	}
}

func TestOpenPathArchive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "word-count"+Suffix)
	in := Bundle{
		Manifest:  testManifest("word-count"),
		Artifacts: []ArtifactFile{{Path: "plugin.dat", Raw: []byte("x")}},
	}
	if err := os.WriteFile(path, writeBundle(t, in), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := OpenPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if out.Manifest.Name != "word-count" || len(out.Artifacts) != 1 {
		t.Fatalf("unexpected bundle: %+v", out)
	}
}

func TestOpenPathDirectory(t *testing.T) {
	dir := t.TempDir()
	manifest := `{"name": "word-count", "version": "1.2.0", "entrypoints": ["word-count"]}`
	if err := os.WriteFile(filepath.Join(dir, ManifestName), []byte(manifest), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "assets"), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "assets", "help.md"), []byte("# help"), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := OpenPath(dir)
	if err != nil {
		t.Fatal(err)
	}
	if out.Manifest.Name != "word-count" {
		t.Fatalf("unexpected manifest: %+v", out.Manifest)
	}
	if raw, ok := out.Artifact("assets/help.md"); !ok || string(raw) != "# help" {
		t.Fatalf("unexpected artifact: %q, %v", raw, ok)
	}
}

func TestOpenPathErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := OpenPath(filepath.Join(dir, "missing"+Suffix)); !types.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	plain := filepath.Join(dir, "plugin.zip")
	if err := os.WriteFile(plain, []byte("zip"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenPath(plain); !types.IsInvalid(err) {
		t.Fatalf("expected invalid suffix error, got %v", err)
	}

	if _, err := OpenPath(dir); !types.IsInvalid(err) {
		t.Fatalf("expected missing manifest error for empty dir, got %v", err)
	}
}
