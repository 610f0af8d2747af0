// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gogpu/strepitus/params"
	"github.com/gogpu/strepitus/seed"
)

var (
	upper = cases.Upper(language.English)
	title = cases.Title(language.English)

	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	keyColor  = color.New(color.FgHiBlue, color.Bold)
)

func status(e *env, verb, what string) {
	okColor.Fprintf(e.stderr, "%-9s", verb)
	fmt.Fprintln(e.stderr, what)
}

func failure(e *env, what string, err error) {
	failColor.Fprintf(e.stderr, "%-9s", "failed")
	fmt.Fprintf(e.stderr, "%s: %v\n", what, err)
}

// formatLabel renders an enum name such as "r8g8b8a8_unorm" the way the
// formats are usually written, R8G8B8A8_UNORM.
func formatLabel(f params.Format) string { return upper.String(f.String()) }

func enumLabel(s fmt.Stringer) string {
	return title.String(strings.ReplaceAll(s.String(), "_", " "))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}

func printFormats(w io.Writer, sliceCount int) error {
	table := tablewriter.NewWriter(w)
	table.Header("Format", "Device", "Channels", "Pixel", "Bytes", "PNG", "Binary")
	for _, f := range params.Formats() {
		spec := f.Spec()
		row := []string{
			formatLabel(f),
			enumLabel(f.GPUFormat()),
			strconv.Itoa(spec.Channels),
			spec.Type.String(),
			strconv.Itoa(spec.PixelSize),
			yesNo(params.FilePNG.Supports(spec, sliceCount)),
			yesNo(params.FileBinary.Supports(spec, sliceCount)),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func printLayers(w io.Writer, layers []params.Layer) {
	table := tablewriter.NewWriter(w)
	table.Header("#", "On", "Noise", "Composite", "Dim", "Seed", "Freq", "Octaves", "Persistence", "Lacunarity")
	for i, l := range layers {
		_ = table.Append([]string{
			strconv.Itoa(i),
			yesNo(l.Enabled),
			enumLabel(l.NoiseType()),
			enumLabel(l.CompositeMode),
			l.DimensionType.String(),
			l.BaseSeed,
			strconv.Itoa(l.BaseFrequency),
			strconv.Itoa(l.FBM.Octaves),
			strconv.FormatFloat(l.FBM.Persistence, 'g', -1, 64),
			strconv.FormatFloat(l.FBM.Lacunarity, 'g', -1, 64),
		})
	}
	_ = table.Render()
}

type rangeSummary struct {
	min, max   float32
	texels     uint32
	degenerate bool
}

func printSummary(w io.Writer, device string, p params.Project, rng *rangeSummary, elapsed time.Duration) {
	rows := [][2]string{
		{"device", device},
		{"size", p.Main.String()},
		{"format", formatLabel(p.Output.Format)},
		{"spec", p.Output.Format.Spec().String()},
		{"layers", fmt.Sprintf("%d (%d enabled)", len(p.Layers), enabledCount(p.Layers))},
		{"elapsed", elapsed.Round(time.Microsecond).String()},
	}
	switch {
	case rng == nil:
		rows = append(rows, [2]string{"range", fmt.Sprintf("fixed [%g, %g]", p.Output.MinVal, p.Output.MaxVal)})
	case rng.degenerate:
		rows = append(rows, [2]string{"range", fmt.Sprintf("degenerate [%g, %g]", rng.min, rng.max)})
	default:
		rows = append(rows, [2]string{"range", fmt.Sprintf("[%g, %g] over %d texels", rng.min, rng.max, rng.texels)})
	}

	table := tablewriter.NewWriter(w)
	for _, r := range rows {
		_ = table.Append([]string{keyColor.Sprint(r[0]), r[1]})
	}
	_ = table.Render()
}

func enabledCount(layers []params.Layer) int {
	n := 0
	for _, l := range layers {
		if l.Enabled {
			n++
		}
	}
	return n
}

func printSeeds(w io.Writer, seeds []string, words int) {
	table := tablewriter.NewWriter(w)
	table.Header("Seed", "Words")
	for _, s := range seeds {
		ws := seed.DeriveWords(s, words)
		hex := make([]string, len(ws))
		for i, v := range ws {
			hex[i] = fmt.Sprintf("%08x", uint32(v)) //nolint:gosec // bit pattern
		}
		_ = table.Append([]string{strconv.Quote(s), strings.Join(hex, " ")})
	}
	_ = table.Render()
}
