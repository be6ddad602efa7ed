// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package commonstates

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// MaxRenderTargets is the number of color targets a BlendDesc describes.
const MaxRenderTargets = 8

// Stencil masks used when the stencil test is disabled.
const (
	DefaultStencilReadMask  uint32 = 0xFF
	DefaultStencilWriteMask uint32 = 0xFF
)

// VisibilityAll makes a static sampler visible to every shader stage.
const VisibilityAll = gputypes.ShaderStageVertex | gputypes.ShaderStageFragment | gputypes.ShaderStageCompute

// =============================================================================
// Blend
// =============================================================================

// BlendComponent describes a blend component (color or alpha).
type BlendComponent struct {
	// SrcFactor is the source blend factor.
	SrcFactor gputypes.BlendFactor

	// DstFactor is the destination blend factor.
	DstFactor gputypes.BlendFactor

	// Operation is the blend operation.
	Operation gputypes.BlendOperation
}

// RenderTargetBlendDesc describes blending for a single color target.
type RenderTargetBlendDesc struct {
	// BlendEnable turns blending on. When false the source replaces the
	// destination and Color/Alpha are ignored.
	BlendEnable bool

	// Color is the color blending configuration.
	Color BlendComponent

	// Alpha is the alpha blending configuration.
	Alpha BlendComponent

	// WriteMask selects which channels are written.
	WriteMask gputypes.ColorWriteMask
}

// BlendDesc describes the blend state of all color targets of a pipeline.
type BlendDesc struct {
	AlphaToCoverageEnable  bool
	IndependentBlendEnable bool

	// RenderTarget holds per-target blending. Only index 0 is used unless
	// IndependentBlendEnable is set.
	RenderTarget [MaxRenderTargets]RenderTargetBlendDesc
}

// ColorTarget returns the color target state for target 0 with the given
// attachment format, ready to be placed in a render pipeline's fragment state.
func (d BlendDesc) ColorTarget(format gputypes.TextureFormat) gputypes.ColorTargetState {
	rt := d.RenderTarget[0]
	target := gputypes.ColorTargetState{
		Format:    format,
		WriteMask: rt.WriteMask,
	}
	if rt.BlendEnable {
		target.Blend = &gputypes.BlendState{
			Color: gputypes.BlendComponent{
				SrcFactor: rt.Color.SrcFactor,
				DstFactor: rt.Color.DstFactor,
				Operation: rt.Color.Operation,
			},
			Alpha: gputypes.BlendComponent{
				SrcFactor: rt.Alpha.SrcFactor,
				DstFactor: rt.Alpha.DstFactor,
				Operation: rt.Alpha.Operation,
			},
		}
	}
	return target
}

// =============================================================================
// Depth / stencil
// =============================================================================

// StencilFaceDesc describes the stencil operations of one face.
type StencilFaceDesc struct {
	FailOp      hal.StencilOperation
	DepthFailOp hal.StencilOperation
	PassOp      hal.StencilOperation
	Compare     gputypes.CompareFunction
}

// DepthStencilDesc describes depth testing and stencil state.
type DepthStencilDesc struct {
	// DepthEnable turns the depth test on.
	DepthEnable bool

	// DepthWriteEnable allows depth buffer writes. Ignored when DepthEnable
	// is false.
	DepthWriteEnable bool

	// DepthCompare is the depth comparison function.
	DepthCompare gputypes.CompareFunction

	StencilEnable    bool
	StencilReadMask  uint32
	StencilWriteMask uint32
	FrontFace        StencilFaceDesc
	BackFace         StencilFaceDesc
}

// HALState converts the descriptor to the HAL depth/stencil state for an
// attachment of the given format.
//
// A disabled depth test maps to an Always compare without writes. A disabled
// stencil test zeroes both masks.
func (d DepthStencilDesc) HALState(format gputypes.TextureFormat) *hal.DepthStencilState {
	state := &hal.DepthStencilState{
		Format:            format,
		DepthWriteEnabled: d.DepthEnable && d.DepthWriteEnable,
		DepthCompare:      gputypes.CompareFunctionAlways,
		StencilFront:      d.FrontFace.halFace(),
		StencilBack:       d.BackFace.halFace(),
	}
	if d.DepthEnable {
		state.DepthCompare = d.DepthCompare
	}
	if d.StencilEnable {
		state.StencilReadMask = d.StencilReadMask
		state.StencilWriteMask = d.StencilWriteMask
	}
	return state
}

func (f StencilFaceDesc) halFace() hal.StencilFaceState {
	return hal.StencilFaceState{
		Compare:     f.Compare,
		FailOp:      f.FailOp,
		DepthFailOp: f.DepthFailOp,
		PassOp:      f.PassOp,
	}
}

// =============================================================================
// Rasterizer
// =============================================================================

// FillMode selects how primitives are filled.
type FillMode uint8

const (
	// FillModeSolid fills triangle interiors.
	FillModeSolid FillMode = iota

	// FillModeWireframe draws triangle edges only.
	FillModeWireframe
)

// String returns the fill mode name.
func (m FillMode) String() string {
	switch m {
	case FillModeSolid:
		return "Solid"
	case FillModeWireframe:
		return "Wireframe"
	default:
		return "Unknown"
	}
}

// RasterizerDesc describes rasterizer state.
type RasterizerDesc struct {
	FillMode  FillMode
	CullMode  gputypes.CullMode
	FrontFace gputypes.FrontFace

	DepthBias            int32
	DepthBiasClamp       float32
	SlopeScaledDepthBias float32

	DepthClipEnable       bool
	MultisampleEnable     bool
	AntialiasedLineEnable bool
}

// PrimitiveState converts the descriptor to a primitive state with the given
// topology. Fill mode and depth bias have no primitive-state equivalent and
// are left to the caller.
func (d RasterizerDesc) PrimitiveState(topology gputypes.PrimitiveTopology) gputypes.PrimitiveState {
	return gputypes.PrimitiveState{
		Topology:  topology,
		FrontFace: d.FrontFace,
		CullMode:  d.CullMode,
	}
}

// =============================================================================
// Sampler
// =============================================================================

// Filter selects texture filtering for a sampler.
type Filter uint8

const (
	// FilterPoint uses nearest-neighbor filtering for min, mag and mip.
	FilterPoint Filter = iota

	// FilterLinear uses linear filtering for min, mag and mip.
	FilterLinear

	// FilterAnisotropic uses anisotropic filtering.
	FilterAnisotropic
)

// String returns the filter name.
func (f Filter) String() string {
	switch f {
	case FilterPoint:
		return "Point"
	case FilterLinear:
		return "Linear"
	case FilterAnisotropic:
		return "Anisotropic"
	default:
		return "Unknown"
	}
}

// filterModes returns the per-stage filter modes for f.
func (f Filter) filterModes() (mag, minf, mip gputypes.FilterMode) {
	if f == FilterPoint {
		return gputypes.FilterModeNearest, gputypes.FilterModeNearest, gputypes.FilterModeNearest
	}
	return gputypes.FilterModeLinear, gputypes.FilterModeLinear, gputypes.FilterModeLinear
}

// SamplerDesc describes a sampler.
//
// SamplerDesc is comparable and is used directly as a cache key.
type SamplerDesc struct {
	Filter   Filter
	AddressU gputypes.AddressMode
	AddressV gputypes.AddressMode
	AddressW gputypes.AddressMode

	MipLODBias float32

	// MaxAnisotropy is the anisotropy clamp, used only with FilterAnisotropic.
	MaxAnisotropy uint16

	Compare gputypes.CompareFunction

	// BorderColor is the RGBA border color for border addressing.
	BorderColor [4]float32

	MinLOD float32
	MaxLOD float32
}

// HALDescriptor converts the descriptor to a HAL sampler descriptor.
func (d SamplerDesc) HALDescriptor(label string) *hal.SamplerDescriptor {
	mag, minf, mip := d.Filter.filterModes()
	anisotropy := uint16(1)
	if d.Filter == FilterAnisotropic && d.MaxAnisotropy > 1 {
		anisotropy = d.MaxAnisotropy
	}
	return &hal.SamplerDescriptor{
		Label:        label,
		AddressModeU: d.AddressU,
		AddressModeV: d.AddressV,
		AddressModeW: d.AddressW,
		MagFilter:    mag,
		MinFilter:    minf,
		MipmapFilter: mip,
		LodMinClamp:  d.MinLOD,
		LodMaxClamp:  d.MaxLOD,
		Anisotropy:   anisotropy,
	}
}

// StaticBorderColor is one of the border colors representable in a static
// sampler.
type StaticBorderColor uint8

const (
	StaticBorderTransparentBlack StaticBorderColor = iota
	StaticBorderOpaqueBlack
	StaticBorderOpaqueWhite
)

// String returns the border color name.
func (c StaticBorderColor) String() string {
	switch c {
	case StaticBorderTransparentBlack:
		return "TransparentBlack"
	case StaticBorderOpaqueBlack:
		return "OpaqueBlack"
	case StaticBorderOpaqueWhite:
		return "OpaqueWhite"
	default:
		return "Unknown"
	}
}

// StaticSamplerDesc is a sampler embedded in a binding layout rather than
// created as a separate device object.
type StaticSamplerDesc struct {
	Filter        Filter
	AddressU      gputypes.AddressMode
	AddressV      gputypes.AddressMode
	AddressW      gputypes.AddressMode
	MipLODBias    float32
	MaxAnisotropy uint16
	Compare       gputypes.CompareFunction
	BorderColor   StaticBorderColor
	MinLOD        float32
	MaxLOD        float32

	// ShaderRegister is the binding slot.
	ShaderRegister uint32

	// RegisterSpace is the binding space (bind group index).
	RegisterSpace uint32

	// Visibility lists the shader stages that can see the sampler.
	Visibility gputypes.ShaderStage
}

// LayoutEntry returns the bind group layout entry declaring this sampler.
func (d StaticSamplerDesc) LayoutEntry() gputypes.BindGroupLayoutEntry {
	return gputypes.BindGroupLayoutEntry{
		Binding:    d.ShaderRegister,
		Visibility: d.Visibility,
		Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
	}
}

// SamplerDesc returns the dynamic sampler equivalent of d. The border color
// expands to its RGBA value.
func (d StaticSamplerDesc) SamplerDesc() SamplerDesc {
	return SamplerDesc{
		Filter:        d.Filter,
		AddressU:      d.AddressU,
		AddressV:      d.AddressV,
		AddressW:      d.AddressW,
		MipLODBias:    d.MipLODBias,
		MaxAnisotropy: d.MaxAnisotropy,
		Compare:       d.Compare,
		BorderColor:   d.BorderColor.rgba(),
		MinLOD:        d.MinLOD,
		MaxLOD:        d.MaxLOD,
	}
}
