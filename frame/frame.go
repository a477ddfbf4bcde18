// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package frame

import (
	"time"

	"golang.org/x/image/math/f64"

	"github.com/gogpu/xrhost/resources"
)

// Pose is a predicted display pose: position plus orientation
// quaternion (x, y, z, w).
type Pose struct {
	Position    f64.Vec3
	Orientation f64.Vec4
}

// IdentityPose returns the origin pose with identity orientation.
func IdentityPose() Pose {
	return Pose{Orientation: f64.Vec4{0, 0, 0, 1}}
}

// PredictedDisplay is the predicted state of one display for the
// instant the frame will be presented.
type PredictedDisplay struct {
	// ID identifies the display.
	ID resources.DisplayID

	// Pose is the predicted display pose.
	Pose Pose

	// View is the view matrix derived from the pose.
	View f64.Mat4

	// Projection is the display's projection matrix.
	Projection f64.Mat4
}

// Prediction is the set of displays a frame expects to present to.
// Displays whose attach handshake has not completed never appear here.
type Prediction struct {
	// Displays lists the predicted displays.
	Displays []PredictedDisplay

	// PresentTime is the predicted presentation instant, if the
	// platform provides one.
	PresentTime time.Time
}

// Space produces frames once a window/surface exists.
//
// CreateNextFrame must return an error (not panic, not block
// indefinitely) when the graphics device has failed; the host converts
// such errors into device-lost notifications.
type Space interface {
	CreateNextFrame() (*Frame, error)
}

// Presenter hands a display's rendered back buffer to the platform.
// Implemented by the platform layer that constructed the frame.
type Presenter interface {
	Present(id resources.DisplayID) bool
}

// Frame is one unit of predicted-pose + render + present work.
type Frame struct {
	prediction Prediction
	buffers    map[resources.DisplayID]resources.Texture
	presenter  Presenter
}

// New creates a Frame from a prediction, the platform back buffers for
// the predicted displays, and the presenter to hand rendered buffers
// back to. buffers may be nil for displays with no buffer this frame.
func New(pred Prediction, buffers map[resources.DisplayID]resources.Texture, p Presenter) *Frame {
	return &Frame{
		prediction: pred,
		buffers:    buffers,
		presenter:  p,
	}
}

// Prediction returns the frame's display prediction.
func (f *Frame) Prediction() Prediction { return f.prediction }

// Displays returns the ids referenced by the prediction.
func (f *Frame) Displays() []resources.DisplayID {
	ids := make([]resources.DisplayID, len(f.prediction.Displays))
	for i, d := range f.prediction.Displays {
		ids[i] = d.ID
	}
	return ids
}

// BackBuffer returns the platform back buffer for a display this frame.
func (f *Frame) BackBuffer(id resources.DisplayID) (resources.Texture, bool) {
	t, ok := f.buffers[id]
	return t, ok
}

// ViewProjection returns the predicted camera state for a display.
func (f *Frame) ViewProjection(id resources.DisplayID) (view, projection f64.Mat4, ok bool) {
	for _, d := range f.prediction.Displays {
		if d.ID == id {
			return d.View, d.Projection, true
		}
	}
	return f64.Mat4{}, f64.Mat4{}, false
}

// Present hands the display's rendered back buffer to the platform.
func (f *Frame) Present(id resources.DisplayID) bool {
	if f.presenter == nil {
		return false
	}
	return f.presenter.Present(id)
}

// Ensure Frame satisfies the Manager's per-frame contract.
var _ resources.FrameSource = (*Frame)(nil)
