// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package viewer

import (
	"math"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/strepitus"
	"github.com/gogpu/strepitus/params"
	"github.com/gogpu/strepitus/tracking"
)

// Action is what a key binding does.
type Action uint8

const (
	ActionNone Action = iota
	ActionReloadShaders
	ActionResetView
	ActionToggleTiling
	ActionCycleColorMode
	ActionNextSlice
	ActionPrevSlice
)

var actionNames = []string{"none", "reload_shaders", "reset_view", "toggle_tiling", "cycle_color_mode", "next_slice", "prev_slice"}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

// ScrollScale converts scroll deltas into zoom steps.
const ScrollScale = 1.0 / 1000

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithBinding binds key to action.
func WithBinding(key gpucontext.Key, a Action) ControllerOption {
	return func(c *Controller) { c.bindings[key] = a }
}

// WithReload sets the function ActionReloadShaders calls. It runs on the
// input goroutine and must only hand off, for example by calling
// tracking.Scheduler.RequestRegenerate after queueing a reload.
func WithReload(fn func()) ControllerOption {
	return func(c *Controller) { c.onReload = fn }
}

// Controller turns window input into viewer parameter edits. It only
// writes the viewer cell of the store, which no tracked pass reads, so
// panning and zooming never trigger a recompute.
type Controller struct {
	store *tracking.Store

	mu       sync.Mutex
	win      Window
	bindings map[gpucontext.Key]Action
	onReload func()
}

// NewController returns a controller editing store's viewer parameters.
func NewController(store *tracking.Store, win Window, opts ...ControllerOption) *Controller {
	c := &Controller{
		store:    store,
		win:      win,
		bindings: make(map[gpucontext.Key]Action),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Resize records a new window size.
func (c *Controller) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.win.Width, c.win.Height = width, height
}

// Window returns the current window.
func (c *Controller) Window() Window {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.win
}

func (c *Controller) edit(fn func(v *params.Viewer, m params.Main)) {
	p := c.store.Snapshot()
	v := p.Viewer
	fn(&v, p.Main)
	c.store.SetViewer(v)
}

// Scroll zooms by delta scroll units.
func (c *Controller) Scroll(delta float64) {
	c.edit(func(v *params.Viewer, _ params.Main) {
		v.Zoom += delta * ScrollScale
	})
}

// Drag pans by a pointer movement in pixels.
func (c *Controller) Drag(dx, dy float64) {
	c.edit(func(v *params.Viewer, _ params.Main) {
		v.CenterX -= dx
		v.CenterY -= dy
	})
}

// HandleKey runs the action bound to key and returns it.
func (c *Controller) HandleKey(key gpucontext.Key, _ gpucontext.Modifiers) Action {
	c.mu.Lock()
	a := c.bindings[key]
	reload := c.onReload
	c.mu.Unlock()

	switch a {
	case ActionReloadShaders:
		if reload != nil {
			reload()
		}
	case ActionResetView:
		c.edit(func(v *params.Viewer, _ params.Main) {
			v.CenterX, v.CenterY, v.Zoom = 0, 0, 0
		})
	case ActionToggleTiling:
		c.edit(func(v *params.Viewer, _ params.Main) { v.Tiling = !v.Tiling })
	case ActionCycleColorMode:
		c.edit(func(v *params.Viewer, _ params.Main) {
			v.ColorMode = (v.ColorMode + 1) % (params.ColorRGB + 1)
		})
	case ActionNextSlice, ActionPrevSlice:
		step := 1.0
		if a == ActionPrevSlice {
			step = -1
		}
		c.edit(func(v *params.Viewer, m params.Main) {
			v.Slice = math.Max(0, math.Min(math.Round(v.Slice)+step, float64(m.Slices-1)))
		})
	}
	if a != ActionNone {
		strepitus.Logger().Debug("viewer: key", "action", a)
	}
	return a
}

// Uniforms returns the blit parameters for the current parameters and
// window. It reads the store without recording reads.
func (c *Controller) Uniforms() BlitUniforms {
	p := c.store.Snapshot()
	return Uniforms(p.Viewer, c.Window(), ExtentOf(p.Main))
}
