// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package commonstates

import "github.com/gogpu/gpucontext"

// halProvider is implemented by device providers that expose their HAL
// device, such as the gogpu application context.
type halProvider interface {
	HalDevice() any
}

// AcquireProvider acquires the states of the HAL device behind a host
// application's device provider.
//
// The provider must implement HalDevice() any returning a hal.Device (or any
// other Device). Returns ErrNoHALDevice otherwise.
func (r *Registry) AcquireProvider(provider gpucontext.DeviceProvider) (*CommonStates, error) {
	if provider == nil {
		return nil, ErrNilDevice
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALDevice
	}
	device, ok := hp.HalDevice().(Device)
	if !ok || device == nil {
		return nil, ErrNoHALDevice
	}
	return r.Acquire(device)
}
