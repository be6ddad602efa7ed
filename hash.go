// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package commonstates

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"math"
)

// Hash computes an FNV-1a hash over every field of the blend descriptor.
func (d BlendDesc) Hash() uint64 {
	h := fnv.New64a()
	d.writeHash(h)
	return h.Sum64()
}

func (d BlendDesc) writeHash(h hash.Hash64) {
	hashWriteBool(h, d.AlphaToCoverageEnable)
	hashWriteBool(h, d.IndependentBlendEnable)
	for i := range d.RenderTarget {
		rt := &d.RenderTarget[i]
		hashWriteBool(h, rt.BlendEnable)
		hashWriteUint32(h, uint32(rt.Color.SrcFactor))
		hashWriteUint32(h, uint32(rt.Color.DstFactor))
		hashWriteUint32(h, uint32(rt.Color.Operation))
		hashWriteUint32(h, uint32(rt.Alpha.SrcFactor))
		hashWriteUint32(h, uint32(rt.Alpha.DstFactor))
		hashWriteUint32(h, uint32(rt.Alpha.Operation))
		hashWriteUint32(h, uint32(rt.WriteMask))
	}
}

// Hash computes an FNV-1a hash over every field of the depth/stencil descriptor.
func (d DepthStencilDesc) Hash() uint64 {
	h := fnv.New64a()
	d.writeHash(h)
	return h.Sum64()
}

func (d DepthStencilDesc) writeHash(h hash.Hash64) {
	hashWriteBool(h, d.DepthEnable)
	hashWriteBool(h, d.DepthWriteEnable)
	hashWriteUint32(h, uint32(d.DepthCompare))
	hashWriteBool(h, d.StencilEnable)
	hashWriteUint32(h, d.StencilReadMask)
	hashWriteUint32(h, d.StencilWriteMask)
	for _, f := range [2]StencilFaceDesc{d.FrontFace, d.BackFace} {
		hashWriteUint32(h, uint32(f.FailOp))
		hashWriteUint32(h, uint32(f.DepthFailOp))
		hashWriteUint32(h, uint32(f.PassOp))
		hashWriteUint32(h, uint32(f.Compare))
	}
}

// Hash computes an FNV-1a hash over every field of the rasterizer descriptor.
func (d RasterizerDesc) Hash() uint64 {
	h := fnv.New64a()
	d.writeHash(h)
	return h.Sum64()
}

func (d RasterizerDesc) writeHash(h hash.Hash64) {
	hashWriteUint32(h, uint32(d.FillMode))
	hashWriteUint32(h, uint32(d.CullMode))
	hashWriteUint32(h, uint32(d.FrontFace))
	hashWriteUint32(h, uint32(d.DepthBias)) //nolint:gosec // G115: bit pattern only
	hashWriteFloat32(h, d.DepthBiasClamp)
	hashWriteFloat32(h, d.SlopeScaledDepthBias)
	hashWriteBool(h, d.DepthClipEnable)
	hashWriteBool(h, d.MultisampleEnable)
	hashWriteBool(h, d.AntialiasedLineEnable)
}

// Hash computes an FNV-1a hash over every field of the sampler descriptor.
func (d SamplerDesc) Hash() uint64 {
	h := fnv.New64a()
	d.writeHash(h)
	return h.Sum64()
}

func (d SamplerDesc) writeHash(h hash.Hash64) {
	hashWriteUint32(h, uint32(d.Filter))
	hashWriteUint32(h, uint32(d.AddressU))
	hashWriteUint32(h, uint32(d.AddressV))
	hashWriteUint32(h, uint32(d.AddressW))
	hashWriteFloat32(h, d.MipLODBias)
	hashWriteUint32(h, uint32(d.MaxAnisotropy))
	hashWriteUint32(h, uint32(d.Compare))
	for _, c := range d.BorderColor {
		hashWriteFloat32(h, c)
	}
	hashWriteFloat32(h, d.MinLOD)
	hashWriteFloat32(h, d.MaxLOD)
}

// Hash computes an FNV-1a hash over the whole table. Two tables hash equal
// only if every descriptor is bit-for-bit identical.
func (t *DescriptorTable) Hash() uint64 {
	h := fnv.New64a()
	for _, d := range [...]BlendDesc{t.Opaque, t.AlphaBlend, t.Additive, t.NonPremultiplied} {
		d.writeHash(h)
	}
	for _, d := range [...]DepthStencilDesc{t.DepthNone, t.DepthDefault, t.DepthRead, t.DepthReverseZ, t.DepthReadReverseZ} {
		d.writeHash(h)
	}
	for _, d := range [...]RasterizerDesc{t.CullNone, t.CullClockwise, t.CullCounterClockwise, t.Wireframe} {
		d.writeHash(h)
	}
	for i := range t.Samplers {
		t.Samplers[i].writeHash(h)
	}
	return h.Sum64()
}

// hashWriteUint32 writes a uint32 to the hash.
func hashWriteUint32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

// hashWriteFloat32 writes the IEEE-754 bits of a float32 to the hash.
func hashWriteFloat32(h hash.Hash64, v float32) {
	hashWriteUint32(h, math.Float32bits(v))
}

// hashWriteBool writes a bool to the hash.
func hashWriteBool(h hash.Hash64, v bool) {
	if v {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
}
