// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package commonstates

import "github.com/gogpu/gputypes"

// ToStaticSampler converts a sampler descriptor into its static form bound at
// the given slot and space.
//
// All filtering, addressing, LOD and compare fields are copied unchanged. The
// RGBA border color is snapped to the closest static border color:
// transparent black when alpha is below one half, otherwise opaque white when
// the mean of RGB is at least one half, otherwise opaque black.
func ToStaticSampler(desc SamplerDesc, slot, space uint32, visibility gputypes.ShaderStage) StaticSamplerDesc {
	return StaticSamplerDesc{
		Filter:         desc.Filter,
		AddressU:       desc.AddressU,
		AddressV:       desc.AddressV,
		AddressW:       desc.AddressW,
		MipLODBias:     desc.MipLODBias,
		MaxAnisotropy:  desc.MaxAnisotropy,
		Compare:        desc.Compare,
		BorderColor:    nearestStaticBorder(desc.BorderColor),
		MinLOD:         desc.MinLOD,
		MaxLOD:         desc.MaxLOD,
		ShaderRegister: slot,
		RegisterSpace:  space,
		Visibility:     visibility,
	}
}

func nearestStaticBorder(c [4]float32) StaticBorderColor {
	if c[3] < 0.5 {
		return StaticBorderTransparentBlack
	}
	if (c[0]+c[1]+c[2])/3 >= 0.5 {
		return StaticBorderOpaqueWhite
	}
	return StaticBorderOpaqueBlack
}

func (c StaticBorderColor) rgba() [4]float32 {
	switch c {
	case StaticBorderOpaqueBlack:
		return [4]float32{0, 0, 0, 1}
	case StaticBorderOpaqueWhite:
		return [4]float32{1, 1, 1, 1}
	default:
		return [4]float32{}
	}
}
