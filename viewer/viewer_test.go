// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package viewer

import (
	"context"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/strepitus/export"
	"github.com/gogpu/strepitus/params"
	"github.com/gogpu/strepitus/tracking"
)

func r8Image(w, h, s int, pix ...byte) *export.Image {
	return &export.Image{
		Width: w, Height: h, Slices: s,
		Format: params.R8Unorm,
		Spec:   params.R8Unorm.Spec(),
		Pix:    pix,
	}
}

// =============================================================================
// Uniforms
// =============================================================================

func TestUniforms(t *testing.T) {
	win := Window{Width: 1000, Height: 600, PanelWidth: 300}
	tex := Extent{Width: 512, Height: 512, Slices: 4}

	tests := []struct {
		name   string
		p      params.Viewer
		zoom   float32
		ox, oy float32
	}{
		{"default", params.Viewer{}, 1, 394, 44},
		{"zoom in", params.Viewer{Zoom: 1}, 0.5, 394, 44},
		{"zoom out", params.Viewer{Zoom: -2}, 4, 394, 44},
		{"panned", params.Viewer{CenterX: 10, CenterY: 20}, 1, 384, 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := Uniforms(tt.p, win, tex)
			if u.Zoom != tt.zoom {
				t.Errorf("Zoom = %v, want %v", u.Zoom, tt.zoom)
			}
			if u.OffsetX != tt.ox || u.OffsetY != tt.oy {
				t.Errorf("Offset = (%v, %v), want (%v, %v)", u.OffsetX, u.OffsetY, tt.ox, tt.oy)
			}
			want := Viewport{X: 300, Y: 0, Width: 700, Height: 600}
			if u.Viewport != want {
				t.Errorf("Viewport = %v, want %v", u.Viewport, want)
			}
			if u.TexSize != [3]float32{512, 512, 4} {
				t.Errorf("TexSize = %v", u.TexSize)
			}
		})
	}
}

func TestUniformsPanelWiderThanWindow(t *testing.T) {
	u := Uniforms(params.Viewer{}, Window{Width: 100, Height: 50, PanelWidth: 200}, Extent{1, 1, 1})
	if u.Viewport.Width != 0 {
		t.Errorf("Viewport.Width = %d, want 0", u.Viewport.Width)
	}
}

func TestTexelAtCentersTexture(t *testing.T) {
	win := Window{Width: 1000, Height: 600, PanelWidth: 300}
	u := Uniforms(params.Viewer{}, win, Extent{512, 512, 1})

	tx, ty := u.TexelAt(394.5, 44.5)
	if tx != 0.5 || ty != 0.5 {
		t.Errorf("TexelAt(origin) = (%v, %v), want (0.5, 0.5)", tx, ty)
	}

	// Zoom keeps the viewport center fixed.
	uz := Uniforms(params.Viewer{Zoom: 3}, win, Extent{512, 512, 1})
	cx, cy := 300+350.0, 300.0
	ax, ay := u.TexelAt(cx, cy)
	bx, by := uz.TexelAt(cx, cy)
	if ax != bx || ay != by {
		t.Errorf("center moved under zoom: (%v,%v) -> (%v,%v)", ax, ay, bx, by)
	}
}

func TestSamplers(t *testing.T) {
	u := BlitUniforms{Tiling: true}
	if s := u.Sampler(); s.AddressModeU != gputypes.AddressModeRepeat || s.Border {
		t.Errorf("tiling sampler = %+v", s)
	}
	u.Tiling = false
	if s := u.Sampler(); !s.Border || s.AddressModeW != gputypes.AddressModeClampToEdge {
		t.Errorf("border sampler = %+v", s)
	}
}

// =============================================================================
// Preview
// =============================================================================

func TestPreviewFlipsRows(t *testing.T) {
	img := r8Image(2, 2, 1, 10, 20, 30, 40)
	u := Uniforms(params.Viewer{}, Window{Width: 2, Height: 2}, Extent{2, 2, 1})

	out := Preview(img, u)
	want := [][]uint8{{30, 40}, {10, 20}}
	for y := range 2 {
		for x := range 2 {
			if got := out.RGBAAt(x, y).R; got != want[y][x] {
				t.Errorf("pixel (%d,%d) = %d, want %d", x, y, got, want[y][x])
			}
		}
	}
}

func TestPreviewBorderAndTiling(t *testing.T) {
	img := r8Image(2, 2, 1, 10, 20, 30, 40)
	win := Window{Width: 2, Height: 2}

	u := Uniforms(params.Viewer{CenterX: 1}, win, Extent{2, 2, 1})
	out := Preview(img, u)
	if got := out.RGBAAt(1, 1); got != (color.RGBA{}) {
		t.Errorf("border pixel = %v, want transparent", got)
	}
	if got := out.RGBAAt(0, 1).R; got != 20 {
		t.Errorf("shifted pixel = %d, want 20", got)
	}

	u = Uniforms(params.Viewer{CenterX: 1, Tiling: true}, win, Extent{2, 2, 1})
	out = Preview(img, u)
	if got := out.RGBAAt(1, 1).R; got != 10 {
		t.Errorf("tiled pixel = %d, want 10", got)
	}
}

func TestPreviewSliceBlend(t *testing.T) {
	img := r8Image(1, 1, 2, 0, 255)
	win := Window{Width: 1, Height: 1}

	for _, tt := range []struct {
		slice float64
		want  uint8
	}{{0, 0}, {1, 255}, {0.5, 128}, {7, 255}, {-3, 0}} {
		u := Uniforms(params.Viewer{Slice: tt.slice}, win, Extent{1, 1, 2})
		if got := Preview(img, u).RGBAAt(0, 0).R; got != tt.want {
			t.Errorf("slice %v: got %d, want %d", tt.slice, got, tt.want)
		}
	}
}

func TestPreviewColorModes(t *testing.T) {
	img := &export.Image{
		Width: 1, Height: 1, Slices: 1,
		Format: params.R8G8B8A8Unorm,
		Spec:   params.R8G8B8A8Unorm.Spec(),
		Pix:    []byte{10, 20, 30, 40},
	}
	win := Window{Width: 1, Height: 1}
	tests := []struct {
		mode params.ColorMode
		want color.RGBA
	}{
		{params.ColorGrayscale, color.RGBA{10, 10, 10, 255}},
		{params.ColorAlpha, color.RGBA{40, 40, 40, 255}},
		{params.ColorRGB, color.RGBA{10, 20, 30, 255}},
	}
	for _, tt := range tests {
		u := Uniforms(params.Viewer{ColorMode: tt.mode}, win, Extent{1, 1, 1})
		if got := Preview(img, u).RGBAAt(0, 0); got != tt.want {
			t.Errorf("%v: got %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestSliceBlend(t *testing.T) {
	s0, s1, f := sliceBlend(math.NaN(), 4)
	if s0 != 0 || s1 != 0 || f != 0 {
		t.Errorf("NaN slice = %d %d %v", s0, s1, f)
	}
	s0, s1, f = sliceBlend(2.25, 4)
	if s0 != 2 || s1 != 3 || f != 0.25 {
		t.Errorf("2.25 = %d %d %v", s0, s1, f)
	}
}

func TestComposeAndThumbnail(t *testing.T) {
	win := Window{Width: 6, Height: 4, PanelWidth: 2}
	img := r8Image(1, 1, 1, 200)
	u := Uniforms(params.Viewer{Tiling: true}, win, Extent{1, 1, 1})
	canvas := Compose(win, Preview(img, u), u)

	if canvas.Bounds() != image.Rect(0, 0, 6, 4) {
		t.Fatalf("canvas bounds = %v", canvas.Bounds())
	}
	if got := canvas.RGBAAt(0, 0); got != PanelColor {
		t.Errorf("panel = %v, want %v", got, PanelColor)
	}
	if got := canvas.RGBAAt(3, 2).R; got != 200 {
		t.Errorf("frame pixel = %d, want 200", got)
	}

	th := Thumbnail(canvas, 3)
	if b := th.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("thumbnail = %v, want 3x2", b)
	}
	if Thumbnail(canvas, 100) != image.Image(canvas) {
		t.Error("small image should be returned unchanged")
	}
}

// =============================================================================
// Controller
// =============================================================================

var noMods gpucontext.Modifiers

type nopRenderer struct{}

func (nopRenderer) Generate(context.Context, params.Main, []params.Layer) error { return nil }
func (nopRenderer) Process(context.Context, params.Output) error                 { return nil }

func TestControllerEditsNeverDirty(t *testing.T) {
	store := tracking.NewStore(params.DefaultProject())
	sched := tracking.NewScheduler(store, nopRenderer{})
	defer sched.Close()
	if _, err := sched.Frame(context.Background()); err != nil {
		t.Fatal(err)
	}

	reloads := 0
	c := NewController(store, Window{Width: 800, Height: 600, PanelWidth: 200},
		WithBinding(gpucontext.KeySpace, ActionToggleTiling),
		WithReload(func() { reloads++ }))

	c.Scroll(500)
	c.Drag(3, -4)
	if a := c.HandleKey(gpucontext.KeySpace, noMods); a != ActionToggleTiling {
		t.Errorf("action = %v", a)
	}

	v := store.Snapshot().Viewer
	if v.Zoom != 0.5 || v.CenterX != -3 || v.CenterY != 4 || !v.Tiling {
		t.Errorf("viewer = %+v", v)
	}
	if regen, reproc := sched.Pending(); regen || reproc {
		t.Errorf("viewer edits set dirty flags: regenerate=%v reprocess=%v", regen, reproc)
	}
	if reloads != 0 {
		t.Errorf("reloads = %d", reloads)
	}
}

func TestControllerActions(t *testing.T) {
	p := params.DefaultProject()
	p.Main.Slices = 3
	store := tracking.NewStore(p)

	var key gpucontext.Key = gpucontext.KeySpace
	bind := func(a Action) *Controller {
		reload := func() { store.SetViewer(params.Viewer{Zoom: 42}) }
		return NewController(store, Window{}, WithBinding(key, a), WithReload(reload))
	}

	bind(ActionNextSlice).HandleKey(key, noMods)
	bind(ActionNextSlice).HandleKey(key, noMods)
	bind(ActionNextSlice).HandleKey(key, noMods)
	if s := store.Snapshot().Viewer.Slice; s != 2 {
		t.Errorf("slice = %v, want 2 (clamped)", s)
	}
	bind(ActionPrevSlice).HandleKey(key, noMods)
	if s := store.Snapshot().Viewer.Slice; s != 1 {
		t.Errorf("slice = %v, want 1", s)
	}

	c := bind(ActionCycleColorMode)
	for _, want := range []params.ColorMode{params.ColorAlpha, params.ColorRGB, params.ColorGrayscale} {
		c.HandleKey(key, noMods)
		if got := store.Snapshot().Viewer.ColorMode; got != want {
			t.Errorf("color mode = %v, want %v", got, want)
		}
	}

	bind(ActionReloadShaders).HandleKey(key, noMods)
	if z := store.Snapshot().Viewer.Zoom; z != 42 {
		t.Errorf("reload hook not called")
	}
	bind(ActionResetView).HandleKey(key, noMods)
	if z := store.Snapshot().Viewer.Zoom; z != 0 {
		t.Errorf("zoom after reset = %v", z)
	}

	if a := NewController(store, Window{}).HandleKey(key, noMods); a != ActionNone {
		t.Errorf("unbound key = %v", a)
	}
}

func TestControllerResize(t *testing.T) {
	store := tracking.NewStore(params.DefaultProject())
	c := NewController(store, Window{Width: 10, Height: 10, PanelWidth: 4})
	c.Resize(100, 50)
	u := c.Uniforms()
	if u.Viewport != (Viewport{X: 4, Y: 0, Width: 96, Height: 50}) {
		t.Errorf("viewport = %v", u.Viewport)
	}
}
