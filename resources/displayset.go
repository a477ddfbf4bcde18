// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package resources

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f64"
)

// DisplayID identifies one attached display (one eye, or one external
// display). IDs are assigned by the platform layer.
type DisplayID uint32

// DisplaySpec describes the resources a display requires.
type DisplaySpec struct {
	// Width is the back-buffer width in pixels.
	Width uint32

	// Height is the back-buffer height in pixels.
	Height uint32

	// ColorFormat is the back-buffer pixel format.
	// Zero means gputypes.TextureFormatBGRA8Unorm.
	ColorFormat gputypes.TextureFormat

	// DepthFormat is the depth-stencil buffer format.
	// Zero means gputypes.TextureFormatDepth24PlusStencil8.
	DepthFormat gputypes.TextureFormat
}

// withDefaults returns the spec with zero formats resolved.
func (s DisplaySpec) withDefaults() DisplaySpec {
	if s.ColorFormat == gputypes.TextureFormatUndefined {
		s.ColorFormat = gputypes.TextureFormatBGRA8Unorm
	}
	if s.DepthFormat == gputypes.TextureFormatUndefined {
		s.DepthFormat = gputypes.TextureFormatDepth24PlusStencil8
	}
	return s
}

// validate reports whether the spec describes a creatable resource set.
func (s DisplaySpec) validate() error {
	if s.Width == 0 || s.Height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDisplaySpec, s.Width, s.Height)
	}
	return nil
}

// DisplaySet holds the per-display graphics resources: a depth-stencil
// buffer owned by the Manager and a render-target view of the platform
// back buffer, which is not guaranteed stable across frames.
//
// DisplaySet is owned exclusively by the Manager and only touched under
// the Manager's collection lock. The render loop never holds a
// DisplaySet across frames; it queries resources freshly each frame.
type DisplaySet struct {
	id   DisplayID
	spec DisplaySpec

	// depth is the owned depth-stencil buffer, nil until built.
	depth     Texture
	depthView TextureView

	// backBuffer is the platform back buffer observed last frame.
	// Not owned; only the view derived from it is.
	backBuffer Texture
	colorView  TextureView

	// view and projection are the derived camera state for the current
	// frame, refreshed by Manager.EnsureResources from the prediction.
	view       f64.Mat4
	projection f64.Mat4

	// valid is false until the set has been built, and again after a
	// device loss until the next rebuild.
	valid bool
}

// ID returns the display this set belongs to.
func (s *DisplaySet) ID() DisplayID { return s.id }

// Spec returns the display's resource spec (formats resolved).
func (s *DisplaySet) Spec() DisplaySpec { return s.spec }

// Valid reports whether the set currently holds usable resources.
func (s *DisplaySet) Valid() bool { return s.valid }

// ColorView returns the render-target view of the current back buffer,
// or nil if the set is not valid this frame.
func (s *DisplaySet) ColorView() TextureView {
	if !s.valid {
		return nil
	}
	return s.colorView
}

// DepthView returns the depth-stencil view, or nil if the set is not
// valid this frame.
func (s *DisplaySet) DepthView() TextureView {
	if !s.valid {
		return nil
	}
	return s.depthView
}

// ViewProjection returns the camera state captured from the most recent
// frame prediction.
func (s *DisplaySet) ViewProjection() (view, projection f64.Mat4) {
	return s.view, s.projection
}

// buildDepth (re)creates the owned depth buffer and its view.
func (s *DisplaySet) buildDepth(alloc TextureAllocator) error {
	if alloc == nil {
		return ErrNilAllocator
	}
	depth, err := alloc.CreateTexture(TextureDescriptor{
		Label:  fmt.Sprintf("display %d depth", s.id),
		Width:  s.spec.Width,
		Height: s.spec.Height,
		Format: s.spec.DepthFormat,
		Usage:  TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("resources: create depth buffer for display %d: %w", s.id, err)
	}
	view, err := depth.CreateView()
	if err != nil {
		depth.Destroy()
		return fmt.Errorf("resources: create depth view for display %d: %w", s.id, err)
	}
	s.depth = depth
	s.depthView = view
	return nil
}

// attachBackBuffer points the set's render-target view at the given
// platform back buffer, replacing any previous view.
func (s *DisplaySet) attachBackBuffer(bb Texture) error {
	view, err := bb.CreateView()
	if err != nil {
		return fmt.Errorf("resources: create back-buffer view for display %d: %w", s.id, err)
	}
	if s.colorView != nil {
		s.colorView.Destroy()
	}
	s.backBuffer = bb
	s.colorView = view
	return nil
}

// release drops every graphics reference held by the set. After release
// returns, no resource handle associated with the display remains
// anywhere in the set.
func (s *DisplaySet) release() {
	if s.colorView != nil {
		s.colorView.Destroy()
		s.colorView = nil
	}
	s.backBuffer = nil
	if s.depthView != nil {
		s.depthView.Destroy()
		s.depthView = nil
	}
	if s.depth != nil {
		s.depth.Destroy()
		s.depth = nil
	}
	s.valid = false
}

// invalidate marks the set's contents unusable after a device loss.
// Handles are dropped without Destroy calls: the device that owned them
// is gone, and the next EnsureResources rebuilds from scratch.
func (s *DisplaySet) invalidate() {
	s.colorView = nil
	s.backBuffer = nil
	s.depthView = nil
	s.depth = nil
	s.valid = false
}
