// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package commonstates

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/wgpu/hal"
	lru "github.com/hashicorp/golang-lru/v2"
)

// errNilSampler is wrapped in a ResourceCreationError when a device reports
// success but hands back no sampler.
var errNilSampler = errors.New("device returned nil sampler")

// Device is the part of a GPU device the registry needs: sampler creation and
// destruction. Every hal.Device implements it.
//
// Devices are used as map keys, so the dynamic type must be comparable;
// Acquire rejects other types with ErrUncomparableDevice. Pointer types, which all HAL backends use, compare by identity.
type Device interface {
	CreateSampler(desc *hal.SamplerDescriptor) (hal.Sampler, error)
	DestroySampler(sampler hal.Sampler)
}

var _ Device = hal.Device(nil)

// stateBundle is the per-device set of descriptors and the sampler objects
// realized from them. The table and samplers are immutable after
// newStateBundle returns; only the ad hoc sampler cache and the destroyed
// flag change.
type stateBundle struct {
	device      Device
	table       DescriptorTable
	fingerprint uint64
	labelPrefix string

	samplers [samplerKindCount]hal.Sampler

	destroyed atomic.Bool

	// mu guards adhoc and serializes teardown with ad hoc creation.
	mu    sync.Mutex
	adhoc *lru.Cache[SamplerDesc, hal.Sampler]
}

// newStateBundle builds the descriptor table and creates the common samplers
// on device. Construction is all-or-nothing: on failure every sampler
// created so far is destroyed before the error is returned.
func newStateBundle(device Device, opts *registryOptions) (*stateBundle, error) {
	b := &stateBundle{
		device:      device,
		table:       buildDescriptors(opts.maxAnisotropy),
		labelPrefix: opts.labelPrefix,
	}
	b.fingerprint = b.table.Hash()

	// Roll back on error and on a panicking device alike.
	ok := false
	defer func() {
		if !ok {
			b.destroySamplers()
		}
	}()

	for _, kind := range SamplerKinds() {
		label := b.labelPrefix + "_" + kind.String()
		s, err := createSampler(device, b.table.Samplers[kind], label)
		if err != nil {
			return nil, err
		}
		b.samplers[kind] = s
	}

	adhoc, err := lru.NewWithEvict[SamplerDesc, hal.Sampler](opts.samplerCacheSize, b.evictSampler)
	if err != nil {
		return nil, fmt.Errorf("commonstates: create sampler cache: %w", err)
	}
	b.adhoc = adhoc

	ok = true
	return b, nil
}

func createSampler(device Device, desc SamplerDesc, label string) (hal.Sampler, error) {
	s, err := device.CreateSampler(desc.HALDescriptor(label))
	if err != nil {
		return nil, &ResourceCreationError{Object: "sampler", Label: label, Err: err}
	}
	if s == nil {
		return nil, &ResourceCreationError{Object: "sampler", Label: label, Err: errNilSampler}
	}
	return s, nil
}

// sampler returns a cached sampler object for desc, creating it on a miss.
func (b *stateBundle) sampler(desc SamplerDesc) (hal.Sampler, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.destroyed.Load() {
		return nil, ErrReleased
	}
	if s, ok := b.adhoc.Get(desc); ok {
		return s, nil
	}

	label := fmt.Sprintf("%s_sampler_%016x", b.labelPrefix, desc.Hash())
	s, err := createSampler(b.device, desc, label)
	if err != nil {
		return nil, err
	}
	b.adhoc.Add(desc, s)
	return s, nil
}

// evictSampler is the LRU eviction callback. It runs with b.mu held.
func (b *stateBundle) evictSampler(desc SamplerDesc, s hal.Sampler) {
	Logger().Debug("commonstates: destroying cached sampler",
		"filter", desc.Filter.String(),
		"hash", desc.Hash())
	b.device.DestroySampler(s)
}

// destroy releases every device object owned by the bundle. It reports
// whether this call performed the teardown; later calls are no-ops.
func (b *stateBundle) destroy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.destroyed.Load() {
		return false
	}
	b.destroyed.Store(true)
	b.adhoc.Purge()
	b.destroySamplers()
	return true
}

// samplerObject returns the common sampler of the given kind, or nil once
// the bundle is destroyed.
func (b *stateBundle) samplerObject(kind SamplerKind) hal.Sampler {
	if kind >= samplerKindCount || b.destroyed.Load() {
		return nil
	}
	return b.samplers[kind]
}

// destroySamplers destroys the common samplers in reverse creation order.
// The slots are left in place; readers check the destroyed flag instead.
func (b *stateBundle) destroySamplers() {
	for i := len(b.samplers) - 1; i >= 0; i-- {
		if b.samplers[i] != nil {
			b.device.DestroySampler(b.samplers[i])
		}
	}
}
