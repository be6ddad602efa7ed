// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package commonstates

// DefaultSamplerCacheSize is the number of ad hoc samplers kept per bundle.
const DefaultSamplerCacheSize = 32

// RegistryOption configures a Registry during creation.
//
// Example:
//
//	reg := commonstates.NewRegistry(
//	    commonstates.WithMaxAnisotropy(8),
//	    commonstates.WithLabelPrefix("ui"),
//	)
type RegistryOption func(*registryOptions)

// registryOptions holds optional configuration for Registry creation.
type registryOptions struct {
	maxAnisotropy    uint16
	samplerCacheSize int
	labelPrefix      string
}

// defaultRegistryOptions returns the default registry options.
func defaultRegistryOptions() registryOptions {
	return registryOptions{
		maxAnisotropy:    DefaultMaxAnisotropy,
		samplerCacheSize: DefaultSamplerCacheSize,
		labelPrefix:      "commonstates",
	}
}

// WithMaxAnisotropy sets the anisotropy clamp of the anisotropic samplers.
// Values below 1 are treated as 1.
func WithMaxAnisotropy(n uint16) RegistryOption {
	return func(o *registryOptions) {
		if n < 1 {
			n = 1
		}
		o.maxAnisotropy = n
	}
}

// WithSamplerCacheSize sets how many ad hoc samplers each bundle keeps alive
// before the least recently used one is destroyed. Non-positive values keep
// the default.
func WithSamplerCacheSize(n int) RegistryOption {
	return func(o *registryOptions) {
		if n > 0 {
			o.samplerCacheSize = n
		}
	}
}

// WithLabelPrefix sets the prefix of debug labels given to device objects.
func WithLabelPrefix(prefix string) RegistryOption {
	return func(o *registryOptions) {
		o.labelPrefix = prefix
	}
}
