// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package commonstates

import (
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DefaultMaxAnisotropy is the anisotropy clamp of the anisotropic samplers.
const DefaultMaxAnisotropy uint16 = 16

// SamplerKind identifies one of the common samplers.
type SamplerKind uint8

const (
	PointWrap SamplerKind = iota
	PointClamp
	LinearWrap
	LinearClamp
	AnisotropicWrap
	AnisotropicClamp

	samplerKindCount
)

var samplerKindNames = [samplerKindCount]string{
	PointWrap:        "PointWrap",
	PointClamp:       "PointClamp",
	LinearWrap:       "LinearWrap",
	LinearClamp:      "LinearClamp",
	AnisotropicWrap:  "AnisotropicWrap",
	AnisotropicClamp: "AnisotropicClamp",
}

// String returns the sampler name.
func (k SamplerKind) String() string {
	if k < samplerKindCount {
		return samplerKindNames[k]
	}
	return "Unknown"
}

// SamplerKinds returns all common sampler kinds in table order.
func SamplerKinds() []SamplerKind {
	kinds := make([]SamplerKind, samplerKindCount)
	for i := range kinds {
		kinds[i] = SamplerKind(i)
	}
	return kinds
}

// DescriptorTable is the complete set of common descriptors. It holds plain
// values only; device objects live in the state bundle.
type DescriptorTable struct {
	Opaque           BlendDesc
	AlphaBlend       BlendDesc
	Additive         BlendDesc
	NonPremultiplied BlendDesc

	DepthNone         DepthStencilDesc
	DepthDefault      DepthStencilDesc
	DepthRead         DepthStencilDesc
	DepthReverseZ     DepthStencilDesc
	DepthReadReverseZ DepthStencilDesc

	CullNone             RasterizerDesc
	CullClockwise        RasterizerDesc
	CullCounterClockwise RasterizerDesc
	Wireframe            RasterizerDesc

	Samplers [samplerKindCount]SamplerDesc
}

// Descriptors returns the common descriptor table with the default
// anisotropy clamp. No device is involved.
func Descriptors() DescriptorTable {
	return buildDescriptors(DefaultMaxAnisotropy)
}

func buildDescriptors(maxAnisotropy uint16) DescriptorTable {
	t := DescriptorTable{
		Opaque:           newBlendDesc(gputypes.BlendFactorOne, gputypes.BlendFactorZero),
		AlphaBlend:       newBlendDesc(gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrcAlpha),
		Additive:         newBlendDesc(gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOne),
		NonPremultiplied: newBlendDesc(gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOneMinusSrcAlpha),

		DepthNone:         newDepthStencilDesc(false, false, gputypes.CompareFunctionLessEqual),
		DepthDefault:      newDepthStencilDesc(true, true, gputypes.CompareFunctionLessEqual),
		DepthRead:         newDepthStencilDesc(true, false, gputypes.CompareFunctionLessEqual),
		DepthReverseZ:     newDepthStencilDesc(true, true, gputypes.CompareFunctionGreaterEqual),
		DepthReadReverseZ: newDepthStencilDesc(true, false, gputypes.CompareFunctionGreaterEqual),

		CullNone:             newRasterizerDesc(gputypes.CullModeNone, FillModeSolid),
		CullClockwise:        newRasterizerDesc(gputypes.CullModeFront, FillModeSolid),
		CullCounterClockwise: newRasterizerDesc(gputypes.CullModeBack, FillModeSolid),
		Wireframe:            newRasterizerDesc(gputypes.CullModeBack, FillModeWireframe),
	}

	t.Samplers[PointWrap] = newSamplerDesc(FilterPoint, gputypes.AddressModeRepeat, maxAnisotropy)
	t.Samplers[PointClamp] = newSamplerDesc(FilterPoint, gputypes.AddressModeClampToEdge, maxAnisotropy)
	t.Samplers[LinearWrap] = newSamplerDesc(FilterLinear, gputypes.AddressModeRepeat, maxAnisotropy)
	t.Samplers[LinearClamp] = newSamplerDesc(FilterLinear, gputypes.AddressModeClampToEdge, maxAnisotropy)
	t.Samplers[AnisotropicWrap] = newSamplerDesc(FilterAnisotropic, gputypes.AddressModeRepeat, maxAnisotropy)
	t.Samplers[AnisotropicClamp] = newSamplerDesc(FilterAnisotropic, gputypes.AddressModeClampToEdge, maxAnisotropy)

	return t
}

// newBlendDesc builds a blend state applying the same factors to color and
// alpha. Blending is enabled unless the factors reduce to a plain copy.
func newBlendDesc(src, dst gputypes.BlendFactor) BlendDesc {
	var d BlendDesc
	component := BlendComponent{
		SrcFactor: src,
		DstFactor: dst,
		Operation: gputypes.BlendOperationAdd,
	}
	d.RenderTarget[0] = RenderTargetBlendDesc{
		BlendEnable: src != gputypes.BlendFactorOne || dst != gputypes.BlendFactorZero,
		Color:       component,
		Alpha:       component,
		WriteMask:   gputypes.ColorWriteMaskAll,
	}
	return d
}

func newDepthStencilDesc(enable, writeEnable bool, compare gputypes.CompareFunction) DepthStencilDesc {
	face := StencilFaceDesc{
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
		Compare:     gputypes.CompareFunctionAlways,
	}
	return DepthStencilDesc{
		DepthEnable:      enable,
		DepthWriteEnable: writeEnable,
		DepthCompare:     compare,
		StencilEnable:    false,
		StencilReadMask:  DefaultStencilReadMask,
		StencilWriteMask: DefaultStencilWriteMask,
		FrontFace:        face,
		BackFace:         face,
	}
}

// newRasterizerDesc builds a rasterizer state with clockwise front faces, so
// CullModeFront culls clockwise triangles.
func newRasterizerDesc(cull gputypes.CullMode, fill FillMode) RasterizerDesc {
	return RasterizerDesc{
		FillMode:          fill,
		CullMode:          cull,
		FrontFace:         gputypes.FrontFaceCW,
		DepthClipEnable:   true,
		MultisampleEnable: true,
	}
}

func newSamplerDesc(filter Filter, address gputypes.AddressMode, maxAnisotropy uint16) SamplerDesc {
	return SamplerDesc{
		Filter:        filter,
		AddressU:      address,
		AddressV:      address,
		AddressW:      address,
		MaxAnisotropy: maxAnisotropy,
		Compare:       gputypes.CompareFunctionNever,
		MaxLOD:        math.MaxFloat32,
	}
}
