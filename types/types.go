// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package types contains the shared data model of the plugin runtime.
package types

import (
	"context"
	"fmt"

	goversion "github.com/hashicorp/go-version"
)

// Kind describes where a plugin executes.
type Kind string

const (
	// KindInternal plugins are linked into the host process and invoked
	// directly.
	KindInternal Kind = "internal"

	// KindExternal plugins run out of process and are reached over gRPC.
	KindExternal Kind = "external"
)

// Runtime is a hint describing how a plugin is packaged.
type Runtime string

const (
	// RuntimeBundle plugins ship as a bundle archive.
	RuntimeBundle Runtime = "bundle"

	// RuntimeService plugins are long-running services addressed by the
	// runtime.
	RuntimeService Runtime = "service"
)

// State defines the lifecycle states a plugin instance moves through.
type State string

const (
	// StateInstalling indicates install is in progress and the instance is
	// not yet usable.
	StateInstalling State = "installing"

	// StateInactive indicates the instance is loaded but stopped.
	StateInactive State = "inactive"

	// StateActive indicates the instance is started and receiving events.
	StateActive State = "active"

	// StateError indicates the last lifecycle operation failed. The
	// instance may be recovered with a start.
	StateError State = "error"

	// StateUninstalling indicates the instance is being torn down.
	StateUninstalling State = "uninstalling"

	// StateUnknown is reported for plugins the runtime has no record of.
	StateUnknown State = "unknown"
)

// Descriptor is the immutable metadata a plugin declares. It is read from the
// bundle manifest at install time and never mutated afterwards.
type Descriptor struct {
	Name                string   `json:"name"`
	Version             string   `json:"version"`
	Kind                Kind     `json:"kind,omitempty"`
	Runtime             Runtime  `json:"runtime,omitempty"`
	Author              string   `json:"author,omitempty"`
	Description         string   `json:"description,omitempty"`
	Capabilities        []string `json:"capabilities,omitempty"`
	RequiredPermissions []string `json:"required_permissions,omitempty"`
	SubscribedEvents    []string `json:"subscribed_events,omitempty"`
	PublishedEvents     []string `json:"published_events,omitempty"`
	APIVersion          string   `json:"api_version,omitempty"`
}

// Validate checks the structural requirements on a descriptor: non-empty
// name, parseable semver version, and known kind/runtime values.
func (d *Descriptor) Validate() error {
	if d.Name == "" {
		return NewError(InvalidErr, "descriptor name must be non-empty")
	}
	if d.Version == "" {
		return NewError(InvalidErr, "descriptor version must be non-empty")
	}
	if _, err := goversion.NewSemver(d.Version); err != nil {
		return NewError(InvalidErr, "descriptor version %q is not a valid semantic version", d.Version)
	}
	switch d.Kind {
	case "", KindInternal, KindExternal:
	default:
		return NewError(InvalidErr, "descriptor kind %q is not recognized", d.Kind)
	}
	switch d.Runtime {
	case "", RuntimeBundle, RuntimeService:
	default:
		return NewError(InvalidErr, "descriptor runtime %q is not recognized", d.Runtime)
	}
	return nil
}

// SemVersion returns the parsed descriptor version. Validate must have
// succeeded first.
func (d *Descriptor) SemVersion() *goversion.Version {
	v, err := goversion.NewSemver(d.Version)
	if err != nil {
		panic(fmt.Sprintf("descriptor version not validated: %v", err))
	}
	return v
}

// HealthState enumerates the values a health check can report.
type HealthState string

const (
	// HealthOK indicates the plugin reported itself healthy.
	HealthOK HealthState = "healthy"

	// HealthUnhealthy indicates the plugin reported a problem or the check
	// itself failed.
	HealthUnhealthy HealthState = "unhealthy"

	// HealthUnknown is reported when the plugin cannot be found.
	HealthUnknown HealthState = "unknown"
)

// Health is the result of a plugin health check.
type Health struct {
	State   HealthState `json:"state"`
	Message string      `json:"message,omitempty"`
}

// Entry is the interface plugin entry objects expose to the runtime. The
// runtime constructs an entry when a bundle is loaded and drives it through
// the lifecycle. Every method may fail with a typed error.
type Entry interface {
	Info() Descriptor
	Initialize(ctx context.Context, config map[string]interface{}) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	HealthCheck(ctx context.Context) (Health, error)
}

// Executor is an optional capability interface for entries that accept named
// operations from the host (exposed through the gRPC execute RPC).
type Executor interface {
	Execute(ctx context.Context, op string, params map[string]string) (map[string]string, error)
}
