// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/xrhost/resources"
)

// Texture is a HAL-backed GPU texture.
//
// Texture is safe for concurrent use. Destroy releases the underlying
// HAL texture; views created from it must be destroyed first.
type Texture struct {
	mu        sync.Mutex
	device    hal.Device
	tex       hal.Texture
	width     uint32
	height    uint32
	format    gputypes.TextureFormat
	label     string
	destroyed bool
}

// Width returns the texture width in pixels.
func (t *Texture) Width() uint32 { return t.width }

// Height returns the texture height in pixels.
func (t *Texture) Height() uint32 { return t.height }

// Format returns the texture pixel format.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// CreateView creates a full-texture view usable as a render attachment.
func (t *Texture) CreateView() (resources.TextureView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		return nil, fmt.Errorf("wgpu: texture %q destroyed", t.label)
	}

	// Zero values inherit from the texture.
	halView, err := t.device.CreateTextureView(t.tex, &hal.TextureViewDescriptor{
		Label:           t.label + " (view)",
		Format:          gputypes.TextureFormatUndefined,
		Dimension:       gputypes.TextureViewDimensionUndefined,
		Aspect:          gputypes.TextureAspectAll,
		BaseMipLevel:    0,
		MipLevelCount:   0,
		BaseArrayLayer:  0,
		ArrayLayerCount: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture view: %w", err)
	}
	return &TextureView{device: t.device, view: halView}, nil
}

// Destroy releases the underlying HAL texture. Idempotent.
func (t *Texture) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		return
	}
	t.destroyed = true
	t.device.DestroyTexture(t.tex)
}

// TextureView is a HAL-backed texture view.
type TextureView struct {
	mu        sync.Mutex
	device    hal.Device
	view      hal.TextureView
	destroyed bool
}

// Destroy releases the underlying HAL texture view. Idempotent.
func (v *TextureView) Destroy() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed {
		return
	}
	v.destroyed = true
	v.device.DestroyTextureView(v.view)
}

// Ensure HAL textures satisfy the resource contracts.
var (
	_ resources.Texture     = (*Texture)(nil)
	_ resources.TextureView = (*TextureView)(nil)
)
