// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package export

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/gogpu/strepitus"
	"github.com/gogpu/strepitus/internal/metrics"
	"github.com/gogpu/strepitus/params"
)

// Source produces readbacks. pipeline.Pipeline implements it.
type Source interface {
	// Target reports the format and dimensions the next Readback returns.
	Target() (params.Format, params.Main, error)
	// Readback copies the processed output to the host.
	Readback(ctx context.Context) (*Image, error)
}

// Check validates that ff can hold format f at m's slice count.
func Check(f params.Format, m params.Main, ff params.FileFormat) error {
	if err := ff.Check(f.Spec(), m.Slices); err != nil {
		return fmt.Errorf("%w: %s as %s: %w", ErrInvalidTarget, f, ff, err)
	}
	return nil
}

// Export validates the target, reads the output back from src and writes
// it to path. An invalid target is rejected before any readback.
func Export(ctx context.Context, src Source, path string, ff params.FileFormat) error {
	f, m, err := src.Target()
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := Check(f, m, ff); err != nil {
		return err
	}
	img, err := src.Readback(ctx)
	if err != nil {
		return fmt.Errorf("export: readback: %w", err)
	}
	return Write(img, path, ff)
}

// Write encodes img into path, creating parent directories.
func Write(img *Image, path string, ff params.FileFormat) (err error) {
	start := time.Now()
	defer func() {
		metrics.Exports.WithLabelValues(ff.String(), metrics.Result(err)).Inc()
		metrics.ExportDuration.WithLabelValues(ff.String()).Observe(time.Since(start).Seconds())
	}()

	if err := Check(img.Format, img.Main(), ff); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	switch ff {
	case params.FilePNG:
		err = writePNG(img, path)
	default:
		err = writeAtomic(path, img.Pix)
	}
	if err != nil {
		return err
	}
	strepitus.Logger().Debug("export: written", "path", path, "format", img.Format, "file", ff,
		"bytes", len(img.Pix), "elapsed", time.Since(start))
	return nil
}

// writeAtomic writes data to a temp file next to path and renames it over
// path, so readers never see a partial file.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

func writePNG(img *Image, path string) error {
	m, err := ToImage(img)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, m); err != nil {
		return fmt.Errorf("export: encode %s: %w", path, err)
	}
	return writeAtomic(path, buf.Bytes())
}

// ToImage converts slice 0 of img to a standard image for PNG encoding.
// Rows are flipped vertically. Int16 is stored offset-binary; alpha is
// never premultiplied.
func ToImage(img *Image) (image.Image, error) {
	if err := Check(img.Format, img.Main(), params.FilePNG); err != nil {
		return nil, err
	}
	w, h := img.Width, img.Height
	rect := image.Rect(0, 0, w, h)
	wide := img.Spec.Type != params.PixelUint8

	sample := func(t []byte, c int) uint16 {
		switch img.Spec.Type {
		case params.PixelUint16:
			return binary.LittleEndian.Uint16(t[2*c:])
		case params.PixelInt16:
			return binary.LittleEndian.Uint16(t[2*c:]) ^ 0x8000
		}
		return uint16(t[c])
	}

	switch {
	case img.Spec.Channels == 1 && !wide:
		out := image.NewGray(rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.SetGray(x, h-1-y, color.Gray{Y: uint8(sample(img.Texel(x, y, 0), 0))}) //nolint:gosec // 8-bit sample
			}
		}
		return out, nil
	case img.Spec.Channels == 1:
		out := image.NewGray16(rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.SetGray16(x, h-1-y, color.Gray16{Y: sample(img.Texel(x, y, 0), 0)})
			}
		}
		return out, nil
	case !wide:
		out := image.NewNRGBA(rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				t := img.Texel(x, y, 0)
				c := color.NRGBA{A: 0xff}
				c.R, c.G, c.B = uint8(sample(t, 0)), uint8(sample(t, 1)), uint8(sample(t, 2)) //nolint:gosec // 8-bit samples
				if img.Spec.Channels == 4 {
					c.A = uint8(sample(t, 3)) //nolint:gosec // 8-bit sample
				}
				out.SetNRGBA(x, h-1-y, c)
			}
		}
		return out, nil
	default:
		out := image.NewNRGBA64(rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				t := img.Texel(x, y, 0)
				c := color.NRGBA64{R: sample(t, 0), G: sample(t, 1), B: sample(t, 2), A: 0xffff}
				if img.Spec.Channels == 4 {
					c.A = sample(t, 3)
				}
				out.SetNRGBA64(x, h-1-y, c)
			}
		}
		return out, nil
	}
}
