// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package registry defines the persistent record of installed plugins and
// provides in-memory and disk-backed store implementations.
package registry

import (
	"context"
	"time"

	"github.com/inkpad-io/inkpad/types"
)

// Record is the durable state kept per installed plugin. The manager writes
// a record on install and updates LastKnownState on every transition.
type Record struct {
	ID             string                 `json:"id"`
	Descriptor     types.Descriptor       `json:"descriptor"`
	BundlePath     string                 `json:"bundle_path,omitempty"`
	Config         map[string]interface{} `json:"config,omitempty"`
	LastKnownState types.State            `json:"last_known_state"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// Store persists plugin records. Implementations must be safe for
// concurrent use.
type Store interface {
	Put(ctx context.Context, rec Record) error
	Get(ctx context.Context, id string) (Record, error)
	Delete(ctx context.Context, id string) error
	ListActive(ctx context.Context) ([]Record, error)
	Close() error
}
