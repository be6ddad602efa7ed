// Package commonstates provides the common fixed-function pipeline states of
// a GPU device: blend, depth/stencil, rasterizer and sampler descriptors,
// built once per device and shared.
//
// # Overview
//
// Most rendering code needs the same handful of states: opaque or alpha
// blending, depth testing with or without writes, back-face culling, and
// point, linear or anisotropic samplers with wrap or clamp addressing.
// A Registry builds these once for each device and hands out reference
// counted CommonStates handles. The sampler objects created on the device are
// destroyed when the last handle is released.
//
// # Quick Start
//
//	import "github.com/gogpu/commonstates"
//
//	reg := commonstates.NewRegistry()
//	states, err := reg.Acquire(device) // device is a hal.Device
//	if err != nil {
//	    return err
//	}
//	defer states.Release()
//
//	target := states.AlphaBlend().ColorTarget(gputypes.TextureFormatBGRA8Unorm)
//	depth := states.DepthDefault().HALState(gputypes.TextureFormatDepth24PlusStencil8)
//	sampler := states.SamplerObject(commonstates.LinearClamp)
//
// # Static samplers
//
// Every common sampler is also available in static form, ready to be declared
// in a binding layout instead of created as a device object:
//
//	desc := states.LinearWrapStatic(3, 0, commonstates.VisibilityAll)
//	entry := desc.LayoutEntry()
//
// # Sharing
//
// Handles from the same registry and device share one bundle. Different
// devices never share bundles because device objects are not portable.
// Pass a handle to another owner with Clone; each clone is released on its
// own.
//
// # Logging
//
// The package is silent by default. Call SetLogger to receive construction
// and teardown diagnostics.
package commonstates
