// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/xrhost/resources"
)

// Errors.
var (
	// ErrBackendUnavailable is returned when the requested HAL backend
	// is not registered on this system.
	ErrBackendUnavailable = errors.New("wgpu: HAL backend unavailable")

	// ErrNoAdapters is returned when adapter enumeration finds no GPU.
	ErrNoAdapters = errors.New("wgpu: no GPU adapters found")

	// ErrClosed is returned when operating on a closed provider.
	ErrClosed = errors.New("wgpu: provider closed")
)

// Option configures Open.
type Option func(*openOptions)

type openOptions struct {
	backend gputypes.Backend
	format  gputypes.TextureFormat
	label   string
}

// WithBackend selects the HAL backend. The default is Vulkan.
func WithBackend(b gputypes.Backend) Option {
	return func(o *openOptions) { o.backend = b }
}

// WithSurfaceFormat sets the format reported by SurfaceFormat.
// The default is gputypes.TextureFormatBGRA8Unorm.
func WithSurfaceFormat(f gputypes.TextureFormat) Option {
	return func(o *openOptions) { o.format = f }
}

// WithLabel sets the debug label used for created resources.
func WithLabel(label string) Option {
	return func(o *openOptions) { o.label = label }
}

// Provider is a GPU device opened through gogpu/wgpu HAL.
//
// Provider implements resources.DeviceHandle (device access) and
// resources.TextureAllocator (texture creation); pass it as both
// arguments to Host.Initialize.
type Provider struct {
	mu       sync.Mutex
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	format   gputypes.TextureFormat
	label    string
	name     string
	closed   bool
}

// Open selects a HAL backend, picks a GPU adapter, and opens a logical
// device. Close releases it.
func Open(opts ...Option) (*Provider, error) {
	o := openOptions{
		backend: gputypes.BackendVulkan,
		format:  gputypes.TextureFormatBGRA8Unorm,
		label:   "xrhost",
	}
	for _, opt := range opts {
		opt(&o)
	}

	backend, ok := hal.GetBackend(o.backend)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, o.backend)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return nil, ErrNoAdapters
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}

	return &Provider{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		format:   o.format,
		label:    o.label,
		name:     selected.Info.Name,
	}, nil
}

// AdapterName returns the name of the selected GPU adapter.
func (p *Provider) AdapterName() string { return p.name }

// AdapterInfo returns GPU adapter metadata. The adapter type is not
// tracked by the provider, so it reports AdapterTypeUnknown.
func (p *Provider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: p.name, Type: gpucontext.AdapterTypeUnknown}
}

// Device returns the gpucontext view of the HAL device.
func (p *Provider) Device() gpucontext.Device {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	return &halDevice{d: p.device}
}

// Queue returns the gpucontext view of the HAL queue.
func (p *Provider) Queue() gpucontext.Queue {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	return p.queue
}

// Adapter returns nil: HAL adapters are consumed by Open and not
// retained.
func (p *Provider) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns the preferred back-buffer format.
func (p *Provider) SurfaceFormat() gputypes.TextureFormat { return p.format }

// CreateTexture creates a device texture per the descriptor.
func (p *Provider) CreateTexture(desc resources.TextureDescriptor) (resources.Texture, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("wgpu: invalid texture size %dx%d", desc.Width, desc.Height)
	}

	sampleCount := desc.SampleCount
	if sampleCount == 0 {
		sampleCount = 1
	}
	label := desc.Label
	if label == "" {
		label = p.label
	}

	halTex, err := p.device.CreateTexture(&hal.TextureDescriptor{
		Label: label,
		Size: hal.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   sampleCount,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         halUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture: %w", err)
	}

	return &Texture{
		device: p.device,
		tex:    halTex,
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		label:  label,
	}, nil
}

// Close destroys the HAL device. Textures created by the provider must
// be destroyed first.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.device != nil {
		p.device.Destroy()
	}
	p.device = nil
	p.queue = nil
	return nil
}

// halUsage maps resource usage flags to HAL usage flags.
func halUsage(u resources.TextureUsage) gputypes.TextureUsage {
	var out gputypes.TextureUsage
	if u&resources.TextureUsageCopySrc != 0 {
		out |= gputypes.TextureUsageCopySrc
	}
	if u&resources.TextureUsageCopyDst != 0 {
		out |= gputypes.TextureUsageCopyDst
	}
	if u&resources.TextureUsageTextureBinding != 0 {
		out |= gputypes.TextureUsageTextureBinding
	}
	if u&resources.TextureUsageRenderAttachment != 0 {
		out |= gputypes.TextureUsageRenderAttachment
	}
	return out
}

// halDevice adapts a hal.Device to the gpucontext.Device interface.
type halDevice struct {
	d hal.Device
}

// Poll is a no-op: HAL device work completes at submission boundaries.
func (h *halDevice) Poll(wait bool) {}

// Destroy destroys the underlying HAL device.
func (h *halDevice) Destroy() {
	if h.d != nil {
		h.d.Destroy()
	}
}

// Ensure the provider satisfies both host contracts.
var (
	_ resources.DeviceHandle     = (*Provider)(nil)
	_ resources.TextureAllocator = (*Provider)(nil)
)
