// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package commonstates

import (
	"errors"
	"fmt"
)

// Registry errors.
var (
	// ErrNilDevice is returned when acquiring states for a nil device.
	ErrNilDevice = errors.New("commonstates: device is nil")

	// ErrNoHALDevice is returned by AcquireProvider when the provider does
	// not expose a hal.Device.
	ErrNoHALDevice = errors.New("commonstates: provider does not expose a HAL device")

	// ErrRegistryClosed is returned when acquiring from a closed registry.
	ErrRegistryClosed = errors.New("commonstates: registry is closed")

	// ErrUncomparableDevice is returned by Acquire when the device's dynamic
	// type cannot be compared, such as a struct value holding a slice.
	ErrUncomparableDevice = errors.New("commonstates: device type is not comparable")

	// ErrReleased is returned by Sampler when the handle was already released
	// or its bundle has been destroyed.
	ErrReleased = errors.New("commonstates: states released")
)

// ResourceCreationError reports that the device rejected a
// descriptor or object creation request while building a state bundle.
//
// The underlying device error is available through errors.Unwrap, so callers
// can match device-specific failures (device lost, out of memory) with
// errors.Is.
type ResourceCreationError struct {
	// Object is the kind of object being created, e.g. "sampler".
	Object string

	// Label is the debug label of the object that failed.
	Label string

	// Err is the error returned by the device.
	Err error
}

func (e *ResourceCreationError) Error() string {
	return fmt.Sprintf("commonstates: create %s %q: %v", e.Object, e.Label, e.Err)
}

func (e *ResourceCreationError) Unwrap() error {
	return e.Err
}
