// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gogpu/strepitus"
	"github.com/gogpu/strepitus/params"
	"github.com/gogpu/strepitus/seed"
)

type testEnv struct {
	env
	out, err bytes.Buffer
}

func newTestEnv(stdin string, vars map[string]string) *testEnv {
	te := &testEnv{}
	te.stdout = &te.out
	te.stderr = &te.err
	te.stdin = strings.NewReader(stdin)
	te.lookup = func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
	return te
}

func (te *testEnv) run(t *testing.T, args ...string) error {
	t.Helper()
	t.Cleanup(func() { strepitus.SetLogger(nil) })
	return run(context.Background(), &te.env, args)
}

// smallProject writes a project with an 8x8 field and returns its path.
func smallProject(t *testing.T, slices int) string {
	t.Helper()
	p := params.DefaultProject()
	p.Main = params.Main{Width: 8, Height: 8, Slices: slices}
	p.Layers[0].FBM.Octaves = 2
	path := filepath.Join(t.TempDir(), "project.json")
	if err := params.SaveProject(path, p); err != nil {
		t.Fatal(err)
	}
	return path
}

// =============================================================================
// Dispatch
// =============================================================================

func TestRunUnknownCommand(t *testing.T) {
	te := newTestEnv("", nil)
	err := te.run(t, "paint")
	if err == nil || !strings.Contains(err.Error(), "paint") {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(te.err.String(), "usage: strepitus") {
		t.Errorf("usage not printed: %q", te.err.String())
	}
}

func TestRunWithoutCommand(t *testing.T) {
	te := newTestEnv("", nil)
	if err := te.run(t); err == nil {
		t.Fatal("expected an error without a command")
	}
	if err := te.run(t, "help"); err != nil {
		t.Fatalf("help: %v", err)
	}
}

// =============================================================================
// Offline commands
// =============================================================================

func TestVersion(t *testing.T) {
	te := newTestEnv("", nil)
	if err := te.run(t, "version"); err != nil {
		t.Fatal(err)
	}
	if got := te.out.String(); got != "strepitus "+strepitus.Version+"\n" {
		t.Errorf("version = %q", got)
	}
}

func TestFormats(t *testing.T) {
	te := newTestEnv("", nil)
	if err := te.run(t, "formats"); err != nil {
		t.Fatal(err)
	}
	for _, f := range params.Formats() {
		if !strings.Contains(te.out.String(), strings.ToUpper(f.String())) {
			t.Errorf("formats table lacks %s", f)
		}
	}
	if err := te.run(t, "formats", "-slices", "0"); err == nil {
		t.Error("expected an error for zero slices")
	}
}

func TestSeed(t *testing.T) {
	te := newTestEnv("", nil)
	if err := te.run(t, "seed", "-layers", "2", "-words", "1"); err != nil {
		t.Fatal(err)
	}
	for i := range 2 {
		if s := seed.DefaultBaseSeed(i); !strings.Contains(te.out.String(), s) {
			t.Errorf("missing default seed %s", s)
		}
	}

	te.out.Reset()
	if err := te.run(t, "seed", "-words", "2", "AAAAAAAA"); err != nil {
		t.Fatal(err)
	}
	w := seed.DeriveWords("AAAAAAAA", 1)[0]
	want := fmt.Sprintf("%08x", uint32(w)) //nolint:gosec // bit pattern
	if !strings.Contains(te.out.String(), want) {
		t.Errorf("derived word %s not printed:\n%s", want, te.out.String())
	}
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "strepitus.yaml")
	proj := filepath.Join(dir, "project.json")
	shaderDir := filepath.Join(dir, "shaders")

	te := newTestEnv("", nil)
	if err := te.run(t, "init", "-config", cfg, "-project", proj, "-shaders", shaderDir); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{cfg, proj, filepath.Join(shaderDir, "value.wgsl")} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s not written: %v", path, err)
		}
	}
	if _, err := params.LoadProject(proj); err != nil {
		t.Errorf("written project does not load: %v", err)
	}

	if err := te.run(t, "init", "-config", cfg, "-project", proj); err == nil {
		t.Error("init overwrote existing files without -force")
	}
	if err := te.run(t, "init", "-config", cfg, "-project", proj, "-force"); err != nil {
		t.Errorf("init -force: %v", err)
	}
}

// =============================================================================
// Rendering commands (CPU device)
// =============================================================================

func TestGenerate(t *testing.T) {
	te := newTestEnv("", nil)
	if err := te.run(t, "generate", "-set", "backend=cpu", "-project", smallProject(t, 1)); err != nil {
		t.Fatalf("generate: %v\n%s", err, te.err.String())
	}
	out := te.out.String()
	for _, want := range []string{"cpu", "8x8x1", "R8G8B8A8_UNORM", "Simplex"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary lacks %q:\n%s", want, out)
		}
	}
}

func TestGenerateBadOverride(t *testing.T) {
	te := newTestEnv("", nil)
	if err := te.run(t, "generate", "-set", "backend=metal"); err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	pngPath := filepath.Join(dir, "out.png")
	binPath := filepath.Join(dir, "nested", "out.bin")

	te := newTestEnv("", nil)
	err := te.run(t, "export", "-set", "backend=cpu", "-project", smallProject(t, 1), pngPath, binPath)
	if err != nil {
		t.Fatalf("export: %v\n%s", err, te.err.String())
	}

	f, err := os.Open(pngPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 8 {
		t.Errorf("png bounds = %v", b)
	}

	fi, err := os.Stat(binPath)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != 8*8*4 {
		t.Errorf("binary size = %d, want %d", fi.Size(), 8*8*4)
	}
}

func TestExportRejectsMultiSlicePNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.png")
	te := newTestEnv("", nil)
	err := te.run(t, "export", "-set", "backend=cpu", "-project", smallProject(t, 2), out)
	if !errors.Is(err, params.ErrMultiSlicePNG) {
		t.Fatalf("err = %v, want ErrMultiSlicePNG", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("rejected export wrote a file")
	}
}

func TestExportNeedsPaths(t *testing.T) {
	te := newTestEnv("", nil)
	if err := te.run(t, "export", "-set", "backend=cpu"); err == nil {
		t.Fatal("expected an error without output files")
	}
}

func TestPreview(t *testing.T) {
	out := filepath.Join(t.TempDir(), "preview.png")
	te := newTestEnv("", nil)
	err := te.run(t, "preview", "-o", out,
		"-set", "backend=cpu",
		"-set", "window.width=64",
		"-set", "window.height=32",
		"-set", "window.panel_width=16",
		"-project", smallProject(t, 1))
	if err != nil {
		t.Fatalf("preview: %v\n%s", err, te.err.String())
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 64 || cfg.Height != 32 {
		t.Errorf("preview size = %dx%d, want 64x32", cfg.Width, cfg.Height)
	}
}

func TestWatchStopsAfterFrames(t *testing.T) {
	out := filepath.Join(t.TempDir(), "watch.bin")
	te := newTestEnv("", map[string]string{"STREPITUS_ALWAYS_REGEN": "1"})
	err := te.run(t, "watch", "-set", "backend=cpu", "-frame", "1ms", "-frames", "2",
		"-o", out, "-project", smallProject(t, 1))
	if err != nil {
		t.Fatalf("watch: %v\n%s", err, te.err.String())
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("watch did not export: %v", err)
	}
}

func TestWatchQuitKey(t *testing.T) {
	te := newTestEnv("g\nq\n", nil)
	err := te.run(t, "watch", "-set", "backend=cpu", "-frame", "1h", "-project", smallProject(t, 1))
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
}

func TestReadKeysStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	keys := make(chan string)
	done := make(chan struct{})
	go func() {
		defer close(done)
		readKeys(ctx, strings.NewReader("g\ng\n"), keys)
	}()

	if k := <-keys; k != keyRegenerate {
		t.Fatalf("key = %q, want %q", k, keyRegenerate)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("readKeys blocked after cancellation")
	}
}

func TestReadKeysSkipsBlankAndStopsOnQuit(t *testing.T) {
	keys := make(chan string, 8)
	readKeys(context.Background(), strings.NewReader("\n R \nq\ng\n"), keys)
	close(keys)
	var got []string
	for k := range keys {
		got = append(got, k)
	}
	if strings.Join(got, ",") != "r,q" {
		t.Errorf("keys = %v, want [r q]", got)
	}
}
