// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package commonstates

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// Mock Types for Testing
// =============================================================================

var errDeviceLost = errors.New("mock: device lost")

// mockSampler is a test double for hal.Sampler.
type mockSampler struct {
	label     string
	destroyed atomic.Bool
}

// Destroy implements hal.Resource.
func (s *mockSampler) Destroy() {}

// NativeHandle implements hal.NativeHandle.
func (s *mockSampler) NativeHandle() uintptr { return 0 }

// mockDevice implements Device and records every sampler it creates.
type mockDevice struct {
	mu        sync.Mutex
	descs     []hal.SamplerDescriptor
	samplers  []*mockSampler
	destroyed int
	calls     int

	// failCall makes the n-th CreateSampler call (1-based) fail with failErr.
	failCall int
	failErr  error

	// gate, when set, blocks every CreateSampler call until it is closed.
	gate chan struct{}
}

func newMockDevice() *mockDevice {
	return &mockDevice{}
}

func (d *mockDevice) failAt(call int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failCall = call
	d.failErr = err
}

func (d *mockDevice) CreateSampler(desc *hal.SamplerDescriptor) (hal.Sampler, error) {
	if d.gate != nil {
		<-d.gate
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.failCall != 0 && d.calls == d.failCall {
		return nil, d.failErr
	}
	s := &mockSampler{label: desc.Label}
	d.descs = append(d.descs, *desc)
	d.samplers = append(d.samplers, s)
	return s, nil
}

func (d *mockDevice) DestroySampler(sampler hal.Sampler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := sampler.(*mockSampler); ok {
		s.destroyed.Store(true)
	}
	d.destroyed++
}

// panicDevice panics on the n-th CreateSampler call.
type panicDevice struct {
	*mockDevice
	panicAt int
}

func (d *panicDevice) CreateSampler(desc *hal.SamplerDescriptor) (hal.Sampler, error) {
	if d.created() == d.panicAt-1 {
		panic("mock: driver crash")
	}
	return d.mockDevice.CreateSampler(desc)
}

// live returns the number of created samplers not yet destroyed.
func (d *mockDevice) live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, s := range d.samplers {
		if !s.destroyed.Load() {
			n++
		}
	}
	return n
}

func (d *mockDevice) created() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.samplers)
}

// mockGPUDevice implements gpucontext.Device for testing.
type mockGPUDevice struct{}

func (m *mockGPUDevice) Poll(wait bool) {}
func (m *mockGPUDevice) Destroy()       {}

// mockQueue implements gpucontext.Queue for testing.
type mockQueue struct{}

// mockAdapter implements gpucontext.Adapter for testing.
type mockAdapter struct{}

// mockProvider implements gpucontext.DeviceProvider for testing.
type mockProvider struct {
	device gpucontext.Device
}

func (m *mockProvider) Device() gpucontext.Device             { return m.device }
func (m *mockProvider) Queue() gpucontext.Queue               { return &mockQueue{} }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return &mockAdapter{} }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }
func (m *mockProvider) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{} }

// mockHalProvider additionally exposes a HAL device.
type mockHalProvider struct {
	mockProvider
	hal any
}

func (m *mockHalProvider) HalDevice() any { return m.hal }

func mustAcquire(t *testing.T, reg *Registry, dev Device) *CommonStates {
	t.Helper()
	states, err := reg.Acquire(dev)
	if err != nil {
		t.Fatalf("Acquire() = %v", err)
	}
	return states
}

// =============================================================================
// Registry Tests
// =============================================================================

func TestAcquire_NilDevice(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Acquire(nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("Acquire(nil) = %v, want ErrNilDevice", err)
	}
}

// sliceDevice is a Device whose dynamic type cannot be a map key.
type sliceDevice struct {
	calls []int
}

func (d sliceDevice) CreateSampler(*hal.SamplerDescriptor) (hal.Sampler, error) {
	return &mockSampler{}, nil
}

func (d sliceDevice) DestroySampler(hal.Sampler) {}

// hiddenSliceDevice is comparable by type but holds an uncomparable value.
type hiddenSliceDevice struct {
	inner Device
}

func (d hiddenSliceDevice) CreateSampler(desc *hal.SamplerDescriptor) (hal.Sampler, error) {
	return d.inner.CreateSampler(desc)
}

func (d hiddenSliceDevice) DestroySampler(s hal.Sampler) { d.inner.DestroySampler(s) }

func TestAcquire_UncomparableDevice(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Acquire(sliceDevice{}); !errors.Is(err, ErrUncomparableDevice) {
		t.Errorf("Acquire(sliceDevice) = %v, want ErrUncomparableDevice", err)
	}

	// A panic from hashing the key must not leave the registry locked.
	func() {
		defer func() {
			if recover() == nil {
				t.Error("Acquire(hiddenSliceDevice) did not panic")
			}
		}()
		_, _ = reg.Acquire(hiddenSliceDevice{inner: sliceDevice{}})
	}()

	done := make(chan int)
	go func() { done <- reg.Len() }()
	select {
	case n := <-done:
		if n != 0 {
			t.Errorf("Len() = %d, want 0", n)
		}
	case <-time.After(time.Second):
		t.Fatal("Len() blocked after a panicking Acquire")
	}

	states := mustAcquire(t, reg, newMockDevice())
	states.Release()
}

func TestAcquire_CreatesCommonSamplers(t *testing.T) {
	dev := newMockDevice()
	reg := NewRegistry()

	states := mustAcquire(t, reg, dev)
	defer states.Release()

	if got := dev.created(); got != len(SamplerKinds()) {
		t.Errorf("samplers created = %d, want %d", got, len(SamplerKinds()))
	}
	for _, kind := range SamplerKinds() {
		if states.SamplerObject(kind) == nil {
			t.Errorf("SamplerObject(%v) = nil", kind)
		}
	}
	if states.Device() != Device(dev) {
		t.Error("Device() does not return the acquiring device")
	}
}

func TestAcquire_SameDeviceSharesBundle(t *testing.T) {
	dev := newMockDevice()
	reg := NewRegistry()

	a := mustAcquire(t, reg, dev)
	b := mustAcquire(t, reg, dev)
	defer a.Release()
	defer b.Release()

	if a.bundle() != b.bundle() {
		t.Error("handles for the same device reference different bundles")
	}
	if a.SamplerObject(LinearWrap) != b.SamplerObject(LinearWrap) {
		t.Error("handles for the same device returned different sampler objects")
	}
	stats := reg.Stats()
	if stats.Constructions != 1 || stats.Hits != 1 || stats.Live != 1 {
		t.Errorf("Stats() = %+v, want 1 construction, 1 hit, 1 live", stats)
	}
	if dev.created() != len(SamplerKinds()) {
		t.Errorf("second Acquire created samplers: total %d", dev.created())
	}
}

func TestAcquire_DistinctDevices(t *testing.T) {
	dev1, dev2 := newMockDevice(), newMockDevice()
	reg := NewRegistry()

	a := mustAcquire(t, reg, dev1)
	b := mustAcquire(t, reg, dev2)
	defer b.Release()

	if a.bundle() == b.bundle() {
		t.Fatal("distinct devices share a bundle")
	}
	if reg.Len() != 2 {
		t.Errorf("Len() = %d, want 2", reg.Len())
	}

	// Lifetimes are independent.
	a.Release()
	if dev1.live() != 0 {
		t.Errorf("dev1 live samplers = %d after release, want 0", dev1.live())
	}
	if dev2.live() != len(SamplerKinds()) {
		t.Errorf("dev2 live samplers = %d, want %d", dev2.live(), len(SamplerKinds()))
	}
	if b.SamplerObject(PointClamp) == nil {
		t.Error("releasing dev1 destroyed dev2 samplers")
	}
}

func TestAcquire_ConcurrentSingleConstruction(t *testing.T) {
	const n = 64
	dev := newMockDevice()
	dev.gate = make(chan struct{})
	reg := NewRegistry()

	handles := make([]*CommonStates, n)
	var started sync.WaitGroup
	started.Add(n)
	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			started.Done()
			states, err := reg.Acquire(dev)
			handles[i] = states
			return err
		})
	}
	started.Wait()
	close(dev.gate)
	if err := g.Wait(); err != nil {
		t.Fatalf("Acquire() = %v", err)
	}

	if got := reg.Stats().Constructions; got != 1 {
		t.Errorf("Constructions = %d, want 1", got)
	}
	if got := dev.created(); got != len(SamplerKinds()) {
		t.Errorf("samplers created = %d, want %d", got, len(SamplerKinds()))
	}
	want := handles[0].Table()
	for i, h := range handles {
		if h.bundle() != handles[0].bundle() {
			t.Errorf("handle %d references a different bundle", i)
		}
		if h.Table() != want || h.Fingerprint() != handles[0].Fingerprint() {
			t.Errorf("handle %d observed different descriptors", i)
		}
	}

	for _, h := range handles {
		h.Release()
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d after releasing all handles, want 0", reg.Len())
	}
	if dev.live() != 0 {
		t.Errorf("live samplers = %d after releasing all handles, want 0", dev.live())
	}
}

func TestAcquire_ConcurrentDistinctDevices(t *testing.T) {
	const n = 16
	devs := make([]*mockDevice, n)
	for i := range devs {
		devs[i] = newMockDevice()
	}
	reg := NewRegistry()

	var g errgroup.Group
	for _, dev := range devs {
		for range 4 {
			g.Go(func() error {
				states, err := reg.Acquire(dev)
				if err != nil {
					return err
				}
				states.Release()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("Acquire() = %v", err)
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d, want 0", reg.Len())
	}
	for i, dev := range devs {
		if dev.live() != 0 {
			t.Errorf("device %d leaked %d samplers", i, dev.live())
		}
	}
}

func TestRelease_LastHandleDestroysBundle(t *testing.T) {
	dev := newMockDevice()
	reg := NewRegistry()

	a := mustAcquire(t, reg, dev)
	b := a.Clone()

	a.Release()
	if dev.live() != len(SamplerKinds()) {
		t.Fatalf("samplers destroyed while a clone is alive")
	}
	if b.SamplerObject(AnisotropicWrap) == nil {
		t.Fatal("clone lost its sampler objects")
	}

	b.Release()
	if dev.live() != 0 {
		t.Errorf("live samplers = %d, want 0", dev.live())
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d, want 0", reg.Len())
	}
	if got := reg.Stats().Destroyed; got != 1 {
		t.Errorf("Destroyed = %d, want 1", got)
	}

	// Descriptor values outlive the bundle; device objects do not.
	if b.DepthDefault() != Descriptors().DepthDefault {
		t.Error("descriptor accessor changed after release")
	}
	if b.SamplerObject(PointWrap) != nil {
		t.Error("SamplerObject() after release should be nil")
	}
}

func TestRelease_Idempotent(t *testing.T) {
	dev := newMockDevice()
	reg := NewRegistry()

	a := mustAcquire(t, reg, dev)
	b := mustAcquire(t, reg, dev)

	a.Release()
	a.Release()
	if dev.live() == 0 {
		t.Fatal("double Release dropped another handle's reference")
	}
	b.Release()
	if dev.live() != 0 {
		t.Errorf("live samplers = %d, want 0", dev.live())
	}
}

func TestClone_AfterReleasePanics(t *testing.T) {
	states := mustAcquire(t, NewRegistry(), newMockDevice())
	states.Release()

	defer func() {
		if recover() == nil {
			t.Error("Clone() of released handle did not panic")
		}
	}()
	_ = states.Clone()
}

func TestAcquire_FreshBundleAfterFullRelease(t *testing.T) {
	dev := newMockDevice()
	reg := NewRegistry()

	first := mustAcquire(t, reg, dev)
	firstBundle := first.bundle()
	first.Release()

	second := mustAcquire(t, reg, dev)
	defer second.Release()

	if second.bundle() == firstBundle {
		t.Error("Acquire after full release reused the destroyed bundle")
	}
	if got := reg.Stats().Constructions; got != 2 {
		t.Errorf("Constructions = %d, want 2", got)
	}
	if second.SamplerObject(LinearClamp) == nil {
		t.Error("fresh bundle has no sampler objects")
	}
}

func TestAcquire_FailureLeavesNoEntry(t *testing.T) {
	dev := newMockDevice()
	dev.failAt(4, errDeviceLost)
	reg := NewRegistry()

	states, err := reg.Acquire(dev)
	if states != nil {
		t.Error("Acquire() returned a handle on failure")
	}
	var rce *ResourceCreationError
	if !errors.As(err, &rce) {
		t.Fatalf("Acquire() = %v, want *ResourceCreationError", err)
	}
	if !errors.Is(err, errDeviceLost) {
		t.Errorf("error does not wrap the device error: %v", err)
	}
	if rce.Object != "sampler" || rce.Label != "commonstates_LinearClamp" {
		t.Errorf("ResourceCreationError = %+v", rce)
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d after failure, want 0", reg.Len())
	}
	if dev.live() != 0 {
		t.Errorf("partial construction leaked %d samplers", dev.live())
	}
	if got := reg.Stats().Failures; got != 1 {
		t.Errorf("Failures = %d, want 1", got)
	}

	// The device recovers; the registry must try again.
	dev.failAt(0, nil)
	states = mustAcquire(t, reg, dev)
	defer states.Release()
	if got := reg.Stats().Constructions; got != 1 {
		t.Errorf("Constructions = %d, want 1", got)
	}
}

func TestAcquire_ConcurrentFailureSharedError(t *testing.T) {
	const n = 8
	dev := newMockDevice()
	dev.failAt(1, errDeviceLost)
	dev.gate = make(chan struct{})
	reg := NewRegistry()

	var started sync.WaitGroup
	started.Add(n)
	errs := make([]error, n)
	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			started.Done()
			states, err := reg.Acquire(dev)
			if states != nil {
				states.Release()
			}
			errs[i] = err
			return nil
		})
	}
	started.Wait()
	close(dev.gate)
	_ = g.Wait()

	failed := 0
	for _, err := range errs {
		if errors.Is(err, errDeviceLost) {
			failed++
		}
	}
	if failed == 0 {
		t.Error("no caller observed the construction failure")
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d, want 0", reg.Len())
	}
	if dev.live() != 0 {
		t.Errorf("live samplers = %d, want 0", dev.live())
	}
}

func TestAcquire_NilSamplerIsCreationError(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Acquire(nilSamplerDevice{})
	var rce *ResourceCreationError
	if !errors.As(err, &rce) {
		t.Fatalf("Acquire() = %v, want *ResourceCreationError", err)
	}
	if !errors.Is(err, errNilSampler) {
		t.Errorf("error = %v, want errNilSampler", err)
	}
}

type nilSamplerDevice struct{}

//nolint:nilnil // Mock: a device that reports success without a sampler.
func (nilSamplerDevice) CreateSampler(*hal.SamplerDescriptor) (hal.Sampler, error) { return nil, nil }
func (nilSamplerDevice) DestroySampler(hal.Sampler)                                 {}

func TestRegistry_Close(t *testing.T) {
	dev := newMockDevice()
	reg := NewRegistry()

	states := mustAcquire(t, reg, dev)
	reg.Close()

	if dev.live() != 0 {
		t.Errorf("Close() left %d live samplers", dev.live())
	}
	if _, err := reg.Acquire(dev); !errors.Is(err, ErrRegistryClosed) {
		t.Errorf("Acquire() after Close = %v, want ErrRegistryClosed", err)
	}
	if states.SamplerObject(PointWrap) != nil {
		t.Error("SamplerObject() after Close should be nil")
	}
	if states.Opaque() != Descriptors().Opaque {
		t.Error("descriptor accessor changed after Close")
	}

	states.Release()
	reg.Close()
	if got := reg.Stats().Destroyed; got != 1 {
		t.Errorf("Destroyed = %d, want 1", got)
	}
}

func TestAcquireProvider(t *testing.T) {
	dev := newMockDevice()
	reg := NewRegistry()

	p := &mockHalProvider{mockProvider: mockProvider{device: &mockGPUDevice{}}, hal: dev}
	a, err := reg.AcquireProvider(p)
	if err != nil {
		t.Fatalf("AcquireProvider() = %v", err)
	}
	defer a.Release()

	b := mustAcquire(t, reg, dev)
	defer b.Release()
	if a.bundle() != b.bundle() {
		t.Error("AcquireProvider and Acquire produced different bundles for one device")
	}
}

func TestAcquireProvider_NoHAL(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name     string
		provider gpucontext.DeviceProvider
		want     error
	}{
		{"nil", nil, ErrNilDevice},
		{"no HalDevice", &mockProvider{device: &mockGPUDevice{}}, ErrNoHALDevice},
		{"wrong type", &mockHalProvider{mockProvider: mockProvider{device: &mockGPUDevice{}}, hal: "device"}, ErrNoHALDevice},
		{"nil HAL", &mockHalProvider{mockProvider: mockProvider{device: &mockGPUDevice{}}}, ErrNoHALDevice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := reg.AcquireProvider(tt.provider); !errors.Is(err, tt.want) {
				t.Errorf("AcquireProvider() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRegistryOptions(t *testing.T) {
	dev := newMockDevice()
	reg := NewRegistry(WithMaxAnisotropy(4), WithLabelPrefix("ui"))

	states := mustAcquire(t, reg, dev)
	defer states.Release()

	if got := states.AnisotropicWrap().MaxAnisotropy; got != 4 {
		t.Errorf("MaxAnisotropy = %d, want 4", got)
	}
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.descs[0].Label != "ui_PointWrap" {
		t.Errorf("first sampler label = %q, want %q", dev.descs[0].Label, "ui_PointWrap")
	}
	aniso := dev.descs[AnisotropicWrap]
	if aniso.Anisotropy != 4 {
		t.Errorf("HAL anisotropy = %d, want 4", aniso.Anisotropy)
	}
}

func TestWithMaxAnisotropy_Zero(t *testing.T) {
	o := defaultRegistryOptions()
	WithMaxAnisotropy(0)(&o)
	if o.maxAnisotropy != 1 {
		t.Errorf("maxAnisotropy = %d, want 1", o.maxAnisotropy)
	}
	WithSamplerCacheSize(-3)(&o)
	if o.samplerCacheSize != DefaultSamplerCacheSize {
		t.Errorf("samplerCacheSize = %d, want default", o.samplerCacheSize)
	}
}

func TestAcquire_PanicRollsBack(t *testing.T) {
	dev := &panicDevice{mockDevice: newMockDevice(), panicAt: 3}
	reg := NewRegistry()

	func() {
		defer func() {
			if recover() == nil {
				t.Error("Acquire() did not propagate the device panic")
			}
		}()
		_, _ = reg.Acquire(dev)
	}()

	if dev.created() != 2 || dev.live() != 0 {
		t.Errorf("created %d, live %d after panic; want 2 created, 0 live", dev.created(), dev.live())
	}
	if st := reg.Stats(); st.Failures != 1 || st.Live != 0 {
		t.Errorf("Stats() = %+v, want 1 failure and no live entry", st)
	}

	dev.panicAt = 0
	states := mustAcquire(t, reg, dev)
	states.Release()
}
