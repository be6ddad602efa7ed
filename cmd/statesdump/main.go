// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command statesdump prints the common pipeline state descriptors.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gogpu/commonstates"
)

func main() {
	var (
		static = flag.Bool("static", false, "also print static sampler forms")
		slot   = flag.Uint("slot", 0, "binding slot of the first static sampler")
		space  = flag.Uint("space", 0, "static sampler binding space")
		output = flag.String("output", "", "output file (default stdout)")
	)
	flag.Parse()

	if *output == "" {
		dump(os.Stdout, *static, *slot, *space)
		return
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create output: %v", err)
	}
	dump(f, *static, *slot, *space)
	if err := f.Close(); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
	fmt.Printf("Saved to %s\n", *output)
}

func dump(w io.Writer, static bool, slot, space uint) {
	table := commonstates.Descriptors()
	dumpTable(w, &table)
	if static {
		//nolint:gosec // G115: slot and space are small binding indices
		dumpStatic(w, &table, uint32(slot), uint32(space))
	}
}

func dumpTable(w io.Writer, t *commonstates.DescriptorTable) {
	fmt.Fprintf(w, "table %016x\n\n", t.Hash())

	fmt.Fprintln(w, "blend:")
	for _, b := range []struct {
		name string
		desc commonstates.BlendDesc
	}{
		{"Opaque", t.Opaque},
		{"AlphaBlend", t.AlphaBlend},
		{"Additive", t.Additive},
		{"NonPremultiplied", t.NonPremultiplied},
	} {
		rt := b.desc.RenderTarget[0]
		fmt.Fprintf(w, "  %-18s enable=%-5v src=%v dst=%v op=%v mask=%v  %016x\n",
			b.name, rt.BlendEnable, rt.Color.SrcFactor, rt.Color.DstFactor, rt.Color.Operation,
			rt.WriteMask, b.desc.Hash())
	}

	fmt.Fprintln(w, "depth:")
	for _, d := range []struct {
		name string
		desc commonstates.DepthStencilDesc
	}{
		{"DepthNone", t.DepthNone},
		{"DepthDefault", t.DepthDefault},
		{"DepthRead", t.DepthRead},
		{"DepthReverseZ", t.DepthReverseZ},
		{"DepthReadReverseZ", t.DepthReadReverseZ},
	} {
		fmt.Fprintf(w, "  %-18s test=%-5v write=%-5v compare=%v  %016x\n",
			d.name, d.desc.DepthEnable, d.desc.DepthWriteEnable, d.desc.DepthCompare, d.desc.Hash())
	}

	fmt.Fprintln(w, "rasterizer:")
	for _, r := range []struct {
		name string
		desc commonstates.RasterizerDesc
	}{
		{"CullNone", t.CullNone},
		{"CullClockwise", t.CullClockwise},
		{"CullCounterClockwise", t.CullCounterClockwise},
		{"Wireframe", t.Wireframe},
	} {
		fmt.Fprintf(w, "  %-20s fill=%v cull=%v front=%v  %016x\n",
			r.name, r.desc.FillMode, r.desc.CullMode, r.desc.FrontFace, r.desc.Hash())
	}

	fmt.Fprintln(w, "sampler:")
	for _, kind := range commonstates.SamplerKinds() {
		s := t.Samplers[kind]
		fmt.Fprintf(w, "  %-18s filter=%v address=%v anisotropy=%d  %016x\n",
			kind, s.Filter, s.AddressU, s.MaxAnisotropy, s.Hash())
	}
}

func dumpStatic(w io.Writer, t *commonstates.DescriptorTable, slot, space uint32) {
	fmt.Fprintf(w, "\nstatic samplers (from slot %d, space %d):\n", slot, space)
	for i, kind := range commonstates.SamplerKinds() {
		//nolint:gosec // G115: at most six samplers
		s := commonstates.ToStaticSampler(t.Samplers[kind], slot+uint32(i), space, commonstates.VisibilityAll)
		fmt.Fprintf(w, "  %-18s register=%d space=%d border=%v\n",
			kind, s.ShaderRegister, s.RegisterSpace, s.BorderColor)
	}
}
