// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package bundle

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/inkpad-io/inkpad/types"
	"github.com/inkpad-io/inkpad/util"
)

// EntryFactory constructs the entry object for a loaded bundle. Factories
// must not execute plugin logic; initialization happens later through the
// entry's lifecycle methods.
type EntryFactory func(Manifest) types.Entry

var (
	factoryMtx      sync.RWMutex
	factories       = map[string]EntryFactory{}
	externalFactory EntryFactory
)

// RegisterEntrypoint registers factory under the entrypoint name bundles
// reference in their manifests. Calling it twice for the same name replaces
// the previous factory.
func RegisterEntrypoint(name string, factory EntryFactory) {
	factoryMtx.Lock()
	defer factoryMtx.Unlock()
	factories[name] = factory
}

// RegisterExternalFactory sets the factory used for external-kind bundles,
// whose entrypoint is a service address rather than a registered name.
func RegisterExternalFactory(factory EntryFactory) {
	factoryMtx.Lock()
	defer factoryMtx.Unlock()
	externalFactory = factory
}

// NewEntry resolves b's single entrypoint against the registered factories
// and constructs the entry object. No plugin code runs beyond construction.
// External-kind bundles resolve through the external factory instead.
func NewEntry(b *Bundle) (types.Entry, error) {
	entrypoint, err := b.Entrypoint()
	if err != nil {
		return nil, err
	}

	if b.Manifest.Kind == types.KindExternal {
		factoryMtx.RLock()
		factory := externalFactory
		factoryMtx.RUnlock()
		if factory == nil {
			return nil, types.NewError(types.InvalidErr, "bundle %v is external but no external factory is registered", b.Manifest.Name)
		}
		return factory(b.Manifest), nil
	}

	factoryMtx.RLock()
	factory, ok := factories[entrypoint]
	factoryMtx.RUnlock()
	if !ok {
		return nil, types.NewError(types.InvalidErr, "bundle %v references unregistered entrypoint %v", b.Manifest.Name, entrypoint)
	}

	return factory(b.Manifest), nil
}

// OpenPath loads the bundle at path, which is either a bundle archive or a
// directory holding an unpacked bundle (manifest.json plus artifacts).
func OpenPath(path string) (Bundle, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Bundle{}, types.NewError(types.NotFoundErr, "bundle path %v: %v", path, err)
	}

	if fi.IsDir() {
		return openDir(path)
	}

	if !strings.HasSuffix(path, Suffix) {
		return Bundle{}, types.NewError(types.InvalidErr, "bundle path %v does not have the %v suffix", path, Suffix)
	}

	f, err := os.Open(path)
	if err != nil {
		return Bundle{}, types.NewError(types.NotFoundErr, "bundle path %v: %v", path, err)
	}
	defer f.Close()

	return NewReader(f).Read()
}

func openDir(dir string) (Bundle, error) {
	var bundle Bundle

	raw, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return bundle, types.NewError(types.InvalidErr, "bundle directory %v missing %v", dir, ManifestName)
	}

	if err := util.UnmarshalJSON(raw, &bundle.Manifest); err != nil {
		return bundle, types.NewError(types.InvalidErr, "bundle directory %v manifest decode: %v", dir, err)
	}

	err = filepath.Walk(dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() || filepath.Base(path) == ManifestName {
			return nil
		}
		bs, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		bundle.Artifacts = append(bundle.Artifacts, ArtifactFile{
			Path: filepath.ToSlash(rel),
			Raw:  bs,
		})
		return nil
	})
	if err != nil {
		return bundle, err
	}

	if err := bundle.Manifest.validateAndInjectDefaults(); err != nil {
		return bundle, err
	}

	return bundle, nil
}
