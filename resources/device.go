// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package resources

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// The host application (e.g., a gogpu.App or the wgpu backend in
// backend/wgpu) implements DeviceHandle and passes it to the Manager,
// which uses the shared device for per-display resources. The Manager
// never creates or destroys the device itself.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, providing an
// xrhost-specific name for the interface while maintaining full
// compatibility with the gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// Trimmer is implemented by devices that can release unused memory on
// request. Manager.Trim uses it when available.
type Trimmer interface {
	Trim()
}

// Restorer is implemented by device handles that can recreate
// device-dependent singleton resources after a device loss. Manager
// calls it during NotifyDeviceRestored before any display-level
// resource creation resumes.
type Restorer interface {
	RestoreDeviceResources() error
}

// DeviceObserver receives device lifecycle notifications.
// Observers are invoked outside the collection lock.
type DeviceObserver interface {
	// OnDeviceLost is called when the graphics device becomes unusable.
	// All display resources are invalid at this point.
	OnDeviceLost()

	// OnDeviceRestored is called after the device and its singleton
	// resources have been recreated.
	OnDeviceRestored()
}

// TextureDescriptor describes parameters for creating a texture.
type TextureDescriptor struct {
	// Label is an optional debug label for the texture.
	Label string

	// Width is the texture width in pixels.
	Width uint32

	// Height is the texture height in pixels.
	Height uint32

	// Format is the texture pixel format.
	Format gputypes.TextureFormat

	// Usage specifies how the texture will be used.
	Usage TextureUsage

	// SampleCount is the number of samples for multisampling.
	// Zero means 1 (no multisampling).
	SampleCount uint32
}

// TextureUsage specifies how a texture can be used.
// These flags can be combined with bitwise OR.
type TextureUsage uint32

const (
	// TextureUsageCopySrc allows the texture to be used as a copy source.
	TextureUsageCopySrc TextureUsage = 1 << iota

	// TextureUsageCopyDst allows the texture to be used as a copy destination.
	TextureUsageCopyDst

	// TextureUsageTextureBinding allows the texture to be used in a texture binding.
	TextureUsageTextureBinding

	// TextureUsageRenderAttachment allows the texture to be used as a render attachment.
	TextureUsageRenderAttachment
)

// Texture represents a GPU texture resource, either owned by the
// Manager (depth buffers) or provided by the platform per frame (back
// buffers).
type Texture interface {
	// Width returns the texture width in pixels.
	Width() uint32

	// Height returns the texture height in pixels.
	Height() uint32

	// Format returns the texture pixel format.
	Format() gputypes.TextureFormat

	// CreateView creates a view for this texture.
	CreateView() (TextureView, error)

	// Destroy releases GPU resources associated with this texture.
	Destroy()
}

// TextureView represents a view into a texture, bindable as a render
// attachment.
type TextureView interface {
	// Destroy releases resources associated with this view.
	Destroy()
}

// TextureAllocator creates device textures. The swap-chain/device
// wrapper supplies an implementation (see backend/wgpu); tests use
// in-memory fakes.
type TextureAllocator interface {
	CreateTexture(desc TextureDescriptor) (Texture, error)
}

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used in tests and headless runs where no GPU is available.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// AdapterInfo returns unknown adapter metadata for the null device.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}
