// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package commonstates

import (
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// CommonStates is a reference to the shared state bundle of one device.
//
// Handles are obtained from Registry.Acquire. Each handle owns one
// reference: call Release when done, and Clone to hand an independent
// reference to another owner. Copying the pointer does not add a reference.
//
// Descriptor accessors are plain reads of immutable values. They never fail
// and are safe for concurrent use, even after Release.
type CommonStates struct {
	registry *Registry
	entry    *entry
	released atomic.Bool
}

func newCommonStates(r *Registry, e *entry) *CommonStates {
	return &CommonStates{registry: r, entry: e}
}

func (s *CommonStates) bundle() *stateBundle {
	return s.entry.bundle
}

// Device returns the device the states were built for.
func (s *CommonStates) Device() Device {
	return s.entry.device
}

// Fingerprint returns the hash of the descriptor table. Handles built with
// the same options share a fingerprint regardless of device.
func (s *CommonStates) Fingerprint() uint64 {
	return s.bundle().fingerprint
}

// Table returns a copy of the full descriptor table.
func (s *CommonStates) Table() DescriptorTable {
	return s.bundle().table
}

// Clone returns a new handle to the same bundle. The bundle stays alive
// until both handles are released.
//
// Clone panics if s was already released.
func (s *CommonStates) Clone() *CommonStates {
	if s.released.Load() {
		panic("commonstates: Clone of released CommonStates")
	}
	s.registry.retain(s.entry)
	return newCommonStates(s.registry, s.entry)
}

// Release drops the reference held by s. The bundle is destroyed when the
// last reference goes. Releasing twice is a no-op.
func (s *CommonStates) Release() {
	if !s.released.CompareAndSwap(false, true) {
		return
	}
	s.registry.release(s.entry)
}

// =============================================================================
// Blend states
// =============================================================================

// Opaque returns a blend state that overwrites the destination.
func (s *CommonStates) Opaque() BlendDesc { return s.bundle().table.Opaque }

// AlphaBlend returns premultiplied alpha blending.
func (s *CommonStates) AlphaBlend() BlendDesc { return s.bundle().table.AlphaBlend }

// Additive returns additive blending scaled by source alpha.
func (s *CommonStates) Additive() BlendDesc { return s.bundle().table.Additive }

// NonPremultiplied returns straight (non-premultiplied) alpha blending.
func (s *CommonStates) NonPremultiplied() BlendDesc { return s.bundle().table.NonPremultiplied }

// =============================================================================
// Depth stencil states
// =============================================================================

// DepthNone disables the depth test and depth writes.
func (s *CommonStates) DepthNone() DepthStencilDesc { return s.bundle().table.DepthNone }

// DepthDefault enables the depth test and depth writes.
func (s *CommonStates) DepthDefault() DepthStencilDesc { return s.bundle().table.DepthDefault }

// DepthRead enables the depth test without depth writes.
func (s *CommonStates) DepthRead() DepthStencilDesc { return s.bundle().table.DepthRead }

// DepthReverseZ is DepthDefault for a reversed depth range.
func (s *CommonStates) DepthReverseZ() DepthStencilDesc { return s.bundle().table.DepthReverseZ }

// DepthReadReverseZ is DepthRead for a reversed depth range.
func (s *CommonStates) DepthReadReverseZ() DepthStencilDesc {
	return s.bundle().table.DepthReadReverseZ
}

// =============================================================================
// Rasterizer states
// =============================================================================

// CullNone draws both faces.
func (s *CommonStates) CullNone() RasterizerDesc { return s.bundle().table.CullNone }

// CullClockwise culls clockwise triangles.
func (s *CommonStates) CullClockwise() RasterizerDesc { return s.bundle().table.CullClockwise }

// CullCounterClockwise culls counter-clockwise triangles.
func (s *CommonStates) CullCounterClockwise() RasterizerDesc {
	return s.bundle().table.CullCounterClockwise
}

// Wireframe draws triangle edges, culling counter-clockwise triangles.
func (s *CommonStates) Wireframe() RasterizerDesc { return s.bundle().table.Wireframe }

// =============================================================================
// Sampler states
// =============================================================================

// SamplerDesc returns the descriptor of a common sampler. Unknown kinds
// return the zero descriptor.
func (s *CommonStates) SamplerDesc(kind SamplerKind) SamplerDesc {
	if kind >= samplerKindCount {
		return SamplerDesc{}
	}
	return s.bundle().table.Samplers[kind]
}

// PointWrap samples with point filtering with wrapped addressing.
func (s *CommonStates) PointWrap() SamplerDesc { return s.SamplerDesc(PointWrap) }

// PointClamp samples with point filtering with clamped addressing.
func (s *CommonStates) PointClamp() SamplerDesc { return s.SamplerDesc(PointClamp) }

// LinearWrap samples with linear filtering with wrapped addressing.
func (s *CommonStates) LinearWrap() SamplerDesc { return s.SamplerDesc(LinearWrap) }

// LinearClamp samples with linear filtering with clamped addressing.
func (s *CommonStates) LinearClamp() SamplerDesc { return s.SamplerDesc(LinearClamp) }

// AnisotropicWrap samples with anisotropic filtering with wrapped addressing.
func (s *CommonStates) AnisotropicWrap() SamplerDesc { return s.SamplerDesc(AnisotropicWrap) }

// AnisotropicClamp samples with anisotropic filtering with clamped addressing.
func (s *CommonStates) AnisotropicClamp() SamplerDesc { return s.SamplerDesc(AnisotropicClamp) }

// StaticSampler returns a common sampler in static form, bound at the given
// slot and space and visible to the given stages.
func (s *CommonStates) StaticSampler(kind SamplerKind, slot, space uint32, visibility gputypes.ShaderStage) StaticSamplerDesc {
	return ToStaticSampler(s.SamplerDesc(kind), slot, space, visibility)
}

// PointWrapStatic returns PointWrap in static form.
func (s *CommonStates) PointWrapStatic(slot, space uint32, vis gputypes.ShaderStage) StaticSamplerDesc {
	return s.StaticSampler(PointWrap, slot, space, vis)
}

// PointClampStatic returns PointClamp in static form.
func (s *CommonStates) PointClampStatic(slot, space uint32, vis gputypes.ShaderStage) StaticSamplerDesc {
	return s.StaticSampler(PointClamp, slot, space, vis)
}

// LinearWrapStatic returns LinearWrap in static form.
func (s *CommonStates) LinearWrapStatic(slot, space uint32, vis gputypes.ShaderStage) StaticSamplerDesc {
	return s.StaticSampler(LinearWrap, slot, space, vis)
}

// LinearClampStatic returns LinearClamp in static form.
func (s *CommonStates) LinearClampStatic(slot, space uint32, vis gputypes.ShaderStage) StaticSamplerDesc {
	return s.StaticSampler(LinearClamp, slot, space, vis)
}

// AnisotropicWrapStatic returns AnisotropicWrap in static form.
func (s *CommonStates) AnisotropicWrapStatic(slot, space uint32, vis gputypes.ShaderStage) StaticSamplerDesc {
	return s.StaticSampler(AnisotropicWrap, slot, space, vis)
}

// AnisotropicClampStatic returns AnisotropicClamp in static form.
func (s *CommonStates) AnisotropicClampStatic(slot, space uint32, vis gputypes.ShaderStage) StaticSamplerDesc {
	return s.StaticSampler(AnisotropicClamp, slot, space, vis)
}

// SamplerObject returns the device sampler created for a common sampler.
// It returns nil for unknown kinds and once the bundle has been destroyed.
func (s *CommonStates) SamplerObject(kind SamplerKind) hal.Sampler {
	return s.bundle().samplerObject(kind)
}

// Sampler returns a device sampler for an arbitrary descriptor, creating it
// on first use. Samplers are cached per bundle; the least recently used one
// is destroyed when the cache is full, so callers should not hold a sampler
// across more than a frame's worth of other Sampler calls.
//
// Returns ErrReleased once this handle is released or the bundle has been
// destroyed, or a *ResourceCreationError if the device rejects the sampler.
func (s *CommonStates) Sampler(desc SamplerDesc) (hal.Sampler, error) {
	if s.released.Load() {
		return nil, ErrReleased
	}
	return s.bundle().sampler(desc)
}
