// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package types

import (
	"errors"
	"fmt"
)

// ErrCode represents the collection of error kinds that may be returned by
// the plugin runtime.
type ErrCode int

const (
	// InternalErr indicates an unknown, internal error has occurred.
	InternalErr ErrCode = iota

	// NotFoundErr indicates the operation referenced a plugin id the
	// runtime has no record of.
	NotFoundErr

	// ConflictErr indicates an install collided with an active plugin of
	// the same name.
	ConflictErr

	// InvalidErr indicates a malformed descriptor, unknown permission or
	// bad URL.
	InvalidErr

	// UnauthorizedErr indicates a token or permission check failed.
	UnauthorizedErr

	// IntegrityErr indicates a checksum mismatch or a size limit was
	// exceeded.
	IntegrityErr

	// NetworkErr indicates a DNS, TLS or read failure while talking to a
	// remote host.
	NetworkErr

	// SecurityErr indicates the static screen flagged a denylisted
	// reference or a download targeted a blocked host.
	SecurityErr

	// LifecycleErr indicates a plugin initialize/start/stop failed.
	LifecycleErr

	// TimeoutErr indicates a bounded operation exceeded its deadline.
	TimeoutErr
)

func (c ErrCode) String() string {
	switch c {
	case NotFoundErr:
		return "not_found"
	case ConflictErr:
		return "conflict"
	case InvalidErr:
		return "invalid"
	case UnauthorizedErr:
		return "unauthorized"
	case IntegrityErr:
		return "integrity_failed"
	case NetworkErr:
		return "network_error"
	case SecurityErr:
		return "security_violation"
	case LifecycleErr:
		return "lifecycle_failed"
	case TimeoutErr:
		return "timeout"
	default:
		return "internal"
	}
}

// Error is the error type returned by the plugin runtime.
type Error struct {
	Code    ErrCode
	Message string
}

func (err *Error) Error() string {
	return fmt.Sprintf("%v: %v", err.Code, err.Message)
}

// NewError returns a runtime error with the given code and formatted message.
func NewError(code ErrCode, f string, a ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(f, a...),
	}
}

// WrapError returns a runtime error with the given code wrapping err's
// message. A nil err yields a nil result.
func WrapError(code ErrCode, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: err.Error(),
	}
}

// CodeOf extracts the error code from err, or InternalErr if err carries no
// runtime error.
func CodeOf(err error) ErrCode {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Code
	}
	return InternalErr
}

// IsNotFound returns true if this error is a NotFoundErr.
func IsNotFound(err error) bool {
	return is(err, NotFoundErr)
}

// IsConflict returns true if this error is a ConflictErr.
func IsConflict(err error) bool {
	return is(err, ConflictErr)
}

// IsInvalid returns true if this error is an InvalidErr.
func IsInvalid(err error) bool {
	return is(err, InvalidErr)
}

// IsUnauthorized returns true if this error is an UnauthorizedErr.
func IsUnauthorized(err error) bool {
	return is(err, UnauthorizedErr)
}

// IsIntegrity returns true if this error is an IntegrityErr.
func IsIntegrity(err error) bool {
	return is(err, IntegrityErr)
}

// IsNetwork returns true if this error is a NetworkErr.
func IsNetwork(err error) bool {
	return is(err, NetworkErr)
}

// IsSecurity returns true if this error is a SecurityErr.
func IsSecurity(err error) bool {
	return is(err, SecurityErr)
}

// IsLifecycle returns true if this error is a LifecycleErr.
func IsLifecycle(err error) bool {
	return is(err, LifecycleErr)
}

// IsTimeout returns true if this error is a TimeoutErr.
func IsTimeout(err error) bool {
	return is(err, TimeoutErr)
}

func is(err error, code ErrCode) bool {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Code == code
	}
	return false
}
