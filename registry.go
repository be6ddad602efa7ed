// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package commonstates

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// Registry hands out one shared state bundle per device.
//
// The first Acquire for a device builds the bundle; later Acquire calls for
// the same device share it. The bundle is torn down, and its sampler objects
// destroyed, when the last CommonStates referencing it is released. The
// registry itself holds no reference, so a device whose handles are all
// released has no entry.
//
// Thread Safety:
// Registry is safe for concurrent use. Concurrent first-time acquisitions of
// one device wait on a single in-flight construction instead of racing, so
// exactly one bundle is built. Construction runs outside the registry lock
// and does not block acquisitions for other devices.
//
// Usage:
//
//	reg := commonstates.NewRegistry()
//	states, err := reg.Acquire(device)
//	if err != nil {
//	    // no valid states for this device
//	}
//	defer states.Release()
//	blend := states.AlphaBlend()
type Registry struct {
	opts registryOptions

	// mu protects entries, closed and every entry's refs.
	mu      sync.Mutex
	entries map[Device]*entry
	closed  bool

	constructions atomic.Uint64
	hits          atomic.Uint64
	failures      atomic.Uint64
	destroyed     atomic.Uint64
}

// entry is the registry slot for one device. ready is closed once bundle or
// err is set; both are read-only afterwards.
type entry struct {
	device Device
	ready  chan struct{}
	bundle *stateBundle
	err    error

	// refs counts outstanding handles plus in-flight acquisitions.
	refs int
}

// Stats holds registry counters.
type Stats struct {
	// Constructions is the number of bundles successfully built.
	Constructions uint64

	// Hits is the number of acquisitions served by an existing or
	// in-flight bundle.
	Hits uint64

	// Failures is the number of failed constructions.
	Failures uint64

	// Destroyed is the number of bundles torn down.
	Destroyed uint64

	// Live is the number of devices with a registry entry.
	Live int
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	o := defaultRegistryOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry{
		opts:    o,
		entries: make(map[Device]*entry),
	}
}

// Acquire returns a handle to the state bundle of device, building the bundle
// if the device has none.
//
// Returns ErrUncomparableDevice if device cannot be used as a map key, or a
// *ResourceCreationError if the device rejects a sampler. A failed
// construction leaves no entry behind, so the next Acquire tries again.
// Callers waiting on the same in-flight construction receive the same error.
func (r *Registry) Acquire(device Device) (*CommonStates, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if !reflect.TypeOf(device).Comparable() {
		return nil, ErrUncomparableDevice
	}

	e, fresh, err := r.lookupOrInsert(device)
	if err != nil {
		return nil, err
	}
	if !fresh {
		return r.join(e)
	}
	return r.build(e)
}

// lookupOrInsert takes a reference on the entry for device, inserting an
// in-flight entry if there is none. fresh reports whether the caller must
// build the bundle.
func (r *Registry) lookupOrInsert(device Device) (e *entry, fresh bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, false, ErrRegistryClosed
	}
	if e, ok := r.entries[device]; ok {
		e.refs++
		return e, false, nil
	}
	e = &entry{
		device: device,
		ready:  make(chan struct{}),
		refs:   1,
	}
	r.entries[device] = e
	return e, true, nil
}

// join waits for e to be ready and adopts its bundle. The caller already
// holds a reference on e.
func (r *Registry) join(e *entry) (*CommonStates, error) {
	<-e.ready
	if e.err != nil {
		r.mu.Lock()
		e.refs--
		r.mu.Unlock()
		return nil, e.err
	}
	r.hits.Add(1)
	return newCommonStates(r, e), nil
}

// build constructs the bundle for a freshly inserted entry and publishes the
// result to any waiters.
func (r *Registry) build(e *entry) (*CommonStates, error) {
	var (
		bundle *stateBundle
		err    error
	)
	defer close(e.ready)
	defer func() {
		// A panicking device must not leave waiters blocked on a half-built
		// entry.
		if p := recover(); p != nil {
			r.failures.Add(1)
			r.fail(e, fmt.Errorf("commonstates: state bundle construction panicked: %v", p))
			panic(p)
		}
	}()

	bundle, err = newStateBundle(e.device, &r.opts)
	if err != nil {
		r.failures.Add(1)
		Logger().Warn("commonstates: state bundle construction failed", "err", err)
		r.fail(e, err)
		return nil, err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		bundle.destroy()
		r.fail(e, ErrRegistryClosed)
		return nil, ErrRegistryClosed
	}
	e.bundle = bundle
	r.mu.Unlock()

	r.constructions.Add(1)
	Logger().Debug("commonstates: state bundle created",
		"fingerprint", bundle.fingerprint,
		"samplers", len(bundle.samplers))

	return newCommonStates(r, e), nil
}

// fail records err on e, drops the builder's reference and removes the
// entry so the next Acquire starts over.
func (r *Registry) fail(e *entry, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.err = err
	e.refs--
	if r.entries[e.device] == e {
		delete(r.entries, e.device)
	}
}

// retain adds a reference to e.
func (r *Registry) retain(e *entry) {
	r.mu.Lock()
	e.refs++
	r.mu.Unlock()
}

// release drops a reference to e and tears the bundle down when it was the
// last one.
func (r *Registry) release(e *entry) {
	r.mu.Lock()
	e.refs--
	last := e.refs == 0
	if last && r.entries[e.device] == e {
		delete(r.entries, e.device)
	}
	r.mu.Unlock()

	if last && e.bundle != nil {
		r.teardown(e.bundle)
	}
}

func (r *Registry) teardown(b *stateBundle) {
	if b.destroy() {
		r.destroyed.Add(1)
		Logger().Debug("commonstates: state bundle destroyed", "fingerprint", b.fingerprint)
	}
}

// Len returns the number of devices that currently have a bundle or an
// in-flight construction.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Stats returns registry counters.
//
// Counters are read atomically and may not be perfectly synchronized with
// each other.
func (r *Registry) Stats() Stats {
	return Stats{
		Constructions: r.constructions.Load(),
		Hits:          r.hits.Load(),
		Failures:      r.failures.Load(),
		Destroyed:     r.destroyed.Load(),
		Live:          r.Len(),
	}
}

// Close destroys every live bundle and rejects further acquisitions.
//
// Use Close when the devices themselves are being torn down. Outstanding
// handles keep returning descriptor values but their sampler objects become
// nil. Releasing them afterwards is safe.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	live := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		live = append(live, e)
	}
	r.entries = make(map[Device]*entry)
	r.mu.Unlock()

	for _, e := range live {
		// An in-flight construction either publishes its bundle before
		// seeing closed or destroys it itself and leaves bundle nil.
		<-e.ready
		if e.bundle != nil {
			r.teardown(e.bundle)
		}
	}
}
