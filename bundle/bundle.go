// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package bundle implements the plugin bundle format: a gzipped tarball
// containing a manifest.json plus the plugin's artifact files.
package bundle

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/inkpad-io/inkpad/types"
	"github.com/inkpad-io/inkpad/util"
)

// Suffix is the accepted file extension for bundle archives.
const Suffix = ".tar.gz"

// ManifestName is the name of the manifest file inside a bundle.
const ManifestName = "manifest.json"

// defaultSizeLimitBytes bounds decompressed reads to protect against gzip
// bombs. Hosts lower this to their configured bundle size limit.
const defaultSizeLimitBytes = (1024 * 1024 * 1024) + 1

// Manifest is the metadata file every bundle carries. It embeds the plugin
// descriptor and declares the entrypoints the runtime may construct.
type Manifest struct {
	types.Descriptor
	Entrypoints []string `json:"entrypoints"`
}

func (m *Manifest) validateAndInjectDefaults() error {
	if err := m.Descriptor.Validate(); err != nil {
		return err
	}
	if m.Runtime == "" {
		m.Runtime = types.RuntimeBundle
	}
	if m.Kind == "" {
		m.Kind = types.KindInternal
	}
	return nil
}

// ArtifactFile is a single non-manifest file contained in a bundle.
type ArtifactFile struct {
	Path string
	Raw  []byte
}

// Bundle represents a loaded plugin bundle.
type Bundle struct {
	Manifest  Manifest
	Artifacts []ArtifactFile
}

// Artifact returns the raw bytes of the artifact at path, or false when the
// bundle holds no such file.
func (b *Bundle) Artifact(path string) ([]byte, bool) {
	for i := range b.Artifacts {
		if b.Artifacts[i].Path == path {
			return b.Artifacts[i].Raw, true
		}
	}
	return nil, false
}

// Entrypoint returns the bundle's single declared entrypoint. Zero declared
// entrypoints yield an error mentioning "none", more than one "ambiguous".
func (b *Bundle) Entrypoint() (string, error) {
	switch len(b.Manifest.Entrypoints) {
	case 0:
		return "", types.NewError(types.InvalidErr, "bundle %v declares none of the required entrypoints", b.Manifest.Name)
	case 1:
		return b.Manifest.Entrypoints[0], nil
	default:
		return "", types.NewError(types.InvalidErr, "bundle %v entrypoint is ambiguous: %v", b.Manifest.Name, strings.Join(b.Manifest.Entrypoints, ", "))
	}
}

// Reader loads a bundle archive from an io.Reader.
type Reader struct {
	r              io.Reader
	sizeLimitBytes int64
}

// NewReader returns a new Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, sizeLimitBytes: defaultSizeLimitBytes}
}

// WithSizeLimitBytes caps the total decompressed size Read will accept.
func (r *Reader) WithSizeLimitBytes(n int64) *Reader {
	if n > 0 {
		r.sizeLimitBytes = n + 1
	}
	return r
}

// Read returns the Bundle loaded from the reader.
func (r *Reader) Read() (Bundle, error) {

	var bundle Bundle
	var sawManifest bool
	remaining := r.sizeLimitBytes

	gr, err := gzip.NewReader(r.r)
	if err != nil {
		return bundle, fmt.Errorf("bundle read failed: %w", err)
	}

	tr := tar.NewReader(gr)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return bundle, fmt.Errorf("bundle read failed: %w", err)
		}

		if header.Typeflag != tar.TypeReg {
			continue
		}

		var buf bytes.Buffer
		n, err := io.CopyN(&buf, tr, remaining)
		if err != nil && err != io.EOF {
			return bundle, err
		} else if err == nil && n >= remaining {
			return bundle, types.NewError(types.IntegrityErr, "bundle exceeded max size (%v bytes)", r.sizeLimitBytes-1)
		}
		remaining -= n

		path := strings.TrimPrefix(header.Name, "/")

		if filepath.Base(path) == ManifestName {
			if err := util.NewJSONDecoder(&buf).Decode(&bundle.Manifest); err != nil {
				return bundle, types.NewError(types.InvalidErr, "bundle load failed on manifest decode: %v", err)
			}
			sawManifest = true
		} else {
			bundle.Artifacts = append(bundle.Artifacts, ArtifactFile{
				Path: path,
				Raw:  buf.Bytes(),
			})
		}
	}

	if !sawManifest {
		return bundle, types.NewError(types.InvalidErr, "bundle missing %v", ManifestName)
	}

	if err := bundle.Manifest.validateAndInjectDefaults(); err != nil {
		return bundle, err
	}

	return bundle, nil
}

// Write serializes bundle as a gzipped tarball and writes it to w.
func Write(w io.Writer, bundle Bundle) error {
	gw := gzip.NewWriter(w)
	tw := tar.NewWriter(gw)

	raw := util.MustMarshalJSON(bundle.Manifest)
	if err := writeFile(tw, ManifestName, raw); err != nil {
		return err
	}

	for _, artifact := range bundle.Artifacts {
		if err := writeFile(tw, artifact.Path, artifact.Raw); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}

	return gw.Close()
}

func writeFile(tw *tar.Writer, path string, bs []byte) error {

	hdr := &tar.Header{
		Name:     "/" + strings.TrimLeft(path, "/"),
		Mode:     0600,
		Typeflag: tar.TypeReg,
		Size:     int64(len(bs)),
	}

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}

	_, err := tw.Write(bs)
	return err
}
