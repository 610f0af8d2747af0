// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package noise

import (
	"math"
	"testing"
)

// =============================================================================
// Hashing
// =============================================================================

func TestHash32_Avalanche(t *testing.T) {
	if Hash32(0) != 0 {
		t.Errorf("Hash32(0) = %#x, want 0", Hash32(0))
	}
	if Hash32(1) == Hash32(2) {
		t.Error("adjacent inputs collide")
	}
}

func TestHash3_AxisDecorrelation(t *testing.T) {
	if Hash3(7, 1, 2, 3) == Hash3(7, 2, 1, 3) {
		t.Error("swapping x and y should change the hash")
	}
	if Hash3(7, 1, 2, 3) == Hash3(8, 1, 2, 3) {
		t.Error("seed should change the hash")
	}
}

func TestWrap(t *testing.T) {
	tests := []struct{ i, p, want int32 }{
		{0, 4, 0}, {5, 4, 1}, {-1, 4, 3}, {-8, 4, 0}, {9, 0, 9}, {-3, -1, -3},
	}
	for _, tt := range tests {
		if got := Wrap(tt.i, tt.p); got != tt.want {
			t.Errorf("Wrap(%d, %d) = %d, want %d", tt.i, tt.p, got, tt.want)
		}
	}
}

func TestUnitRange(t *testing.T) {
	for _, h := range []uint32{0, 1, 0x7fffffff, 0xffffffff} {
		if u := Unit(h); u < 0 || u >= 1 {
			t.Errorf("Unit(%#x) = %v out of [0,1)", h, u)
		}
	}
}

// =============================================================================
// Kernels
// =============================================================================

func TestLatticeNoiseBounded(t *testing.T) {
	kernels := map[string]func(x, y, z float32) float32{
		"value2":   func(x, y, _ float32) float32 { return Value2(x, y, 8, 11) },
		"value3":   func(x, y, z float32) float32 { return Value3(x, y, z, 8, 11) },
		"perlin2":  func(x, y, _ float32) float32 { return Perlin2(x, y, 8, 11) },
		"perlin3":  func(x, y, z float32) float32 { return Perlin3(x, y, z, 8, 11) },
		"simplex2": func(x, y, _ float32) float32 { return Simplex2(x, y, 11) },
		"simplex3": func(x, y, z float32) float32 { return Simplex3(x, y, z, 11) },
	}
	for name, k := range kernels {
		t.Run(name, func(t *testing.T) {
			lo, hi := float32(math.Inf(1)), float32(math.Inf(-1))
			for i := 0; i < 4000; i++ {
				x := float32(i%63) * 0.127
				y := float32(i/63) * 0.131
				z := float32(i%17) * 0.093
				v := k(x, y, z)
				if math.IsNaN(float64(v)) || v < -2 || v > 2 {
					t.Fatalf("%s(%v,%v,%v) = %v", name, x, y, z, v)
				}
				lo, hi = minf(lo, v), maxf(hi, v)
			}
			if hi-lo < 0.2 {
				t.Errorf("%s range [%v, %v] is suspiciously flat", name, lo, hi)
			}
		})
	}
}

func TestValueNoise_LatticePointsAreHashed(t *testing.T) {
	got := Value2(3, 5, 16, 99)
	want := Signed(Hash3(99, 3, 5, 0))
	if got != want {
		t.Errorf("Value2 at lattice point = %v, want %v", got, want)
	}
}

func TestPerlin_ZeroAtLatticePoints(t *testing.T) {
	if v := Perlin2(2, 7, 16, 5); v != 0 {
		t.Errorf("Perlin2 at lattice point = %v, want 0", v)
	}
	if v := Perlin3(1, 2, 3, 16, 5); v != 0 {
		t.Errorf("Perlin3 at lattice point = %v, want 0", v)
	}
}

func TestTiling(t *testing.T) {
	const period = 4
	for _, y := range []float32{0.25, 1.5, 3.75} {
		for _, x := range []float32{0.1, 2.3} {
			if a, b := Value2(x, y, period, 1), Value2(x+period, y, period, 1); !near(a, b) {
				t.Errorf("Value2 does not tile at (%v,%v): %v vs %v", x, y, a, b)
			}
			if a, b := Perlin2(x, y, period, 1), Perlin2(x, y+period, period, 1); !near(a, b) {
				t.Errorf("Perlin2 does not tile at (%v,%v): %v vs %v", x, y, a, b)
			}
			a := Worley2(x, y, period, 1, DistanceEuclidean)
			b := Worley2(x+period, y, period, 1, DistanceEuclidean)
			if !near(a[0], b[0]) {
				t.Errorf("Worley2 F1 does not tile at (%v,%v): %v vs %v", x, y, a[0], b[0])
			}
		}
	}
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestWorleyOrdering(t *testing.T) {
	for _, metric := range []uint32{DistanceEuclidean, DistanceManhattan, DistanceChebyshev} {
		for i := 0; i < 200; i++ {
			x := float32(i) * 0.173
			y := float32(i) * 0.071
			r := Worley2(x, y, 0, 3, metric)
			if r[0] < 0 || r[1] < r[0] {
				t.Fatalf("metric %d: F1=%v F2=%v", metric, r[0], r[1])
			}
			if r[2] != r[1]-r[0] {
				t.Fatalf("metric %d: channel 2 = %v, want F2-F1", metric, r[2])
			}
			r3 := Worley3(x, y, x*0.5, 0, 3, metric)
			if r3[0] < 0 || r3[1] < r3[0] {
				t.Fatalf("3D metric %d: F1=%v F2=%v", metric, r3[0], r3[1])
			}
		}
	}
}

func TestDistanceMetrics(t *testing.T) {
	if d := distance(DistanceEuclidean, 3, 4, 0); d != 5 {
		t.Errorf("euclidean = %v", d)
	}
	if d := distance(DistanceManhattan, 3, -4, 1); d != 8 {
		t.Errorf("manhattan = %v", d)
	}
	if d := distance(DistanceChebyshev, 3, -4, 1); d != 4 {
		t.Errorf("chebyshev = %v", d)
	}
}

// =============================================================================
// FBM
// =============================================================================

func testSeeds() []int32 {
	s := make([]int32, 128)
	for i := range s {
		s[i] = int32(Hash32(uint32(i) + 1)) //nolint:gosec // test data
	}
	return s
}

func TestOctavePeriod(t *testing.T) {
	p := LayerParams{BaseFrequency: 4, Lacunarity: 2}
	for o, want := range []int32{4, 8, 16, 32} {
		if got := p.OctavePeriod(uint32(o)); got != want { //nolint:gosec // small
			t.Errorf("octave %d period = %d, want %d", o, got, want)
		}
	}
	p = LayerParams{BaseFrequency: 1, Lacunarity: 1.5}
	if got := p.OctavePeriod(1); got != 2 {
		t.Errorf("round(1.5) = %d, want 2", got)
	}
}

// A non-integer lacunarity still yields whole-number periods, so every
// octave keeps the lattice wrap and the summed field tiles.
func TestOctavePeriod_NonIntegerLacunarityTiles(t *testing.T) {
	p := LayerParams{NoiseType: TypeValue, BaseFrequency: 5, Octaves: 4, Lacunarity: 1.5, Persistence: 0.5}
	// 5, 7.5, 11.25, 16.875 rounded half to even.
	for o, want := range []int32{5, 8, 11, 17} {
		if got := p.OctavePeriod(uint32(o)); got != want { //nolint:gosec // small
			t.Errorf("octave %d period = %d, want %d", o, got, want)
		}
	}
	if got := (&LayerParams{BaseFrequency: 5, Lacunarity: 0.5}).OctavePeriod(2); got != 1 {
		t.Errorf("period below one = %d, want 1", got)
	}

	seeds := testSeeds()
	for _, uv := range [][2]float32{{0.25, 0.5}, {0.125, 0.75}, {0.5, 0.375}} {
		a := p.FBM(seeds, uv[0], uv[1], 0)
		b := p.FBM(seeds, uv[0]+1, uv[1], 0)
		c := p.FBM(seeds, uv[0], uv[1]+1, 0)
		if math.Abs(float64(a-b)) > 1e-5 || math.Abs(float64(a-c)) > 1e-5 {
			t.Errorf("FBM at %v does not tile: %g, %g, %g", uv, a, b, c)
		}
	}
}

func TestOctaveSeed(t *testing.T) {
	seeds := testSeeds()
	p := LayerParams{PerOctaveSeed: 1}
	if p.OctaveSeed(seeds, 2) != uint32(seeds[16]) { //nolint:gosec // bit pattern
		t.Error("octave 2 should use word 16")
	}
	if p.OctaveSeed(seeds, 16) != uint32(seeds[0]) { //nolint:gosec // bit pattern
		t.Error("octave index should wrap modulo the seed count")
	}
	p.PerOctaveSeed = 0
	if p.OctaveSeed(seeds, 5) != uint32(seeds[0]) { //nolint:gosec // bit pattern
		t.Error("shared seeding should always use word 0")
	}
}

func TestFBM_SingleOctaveEqualsKernel(t *testing.T) {
	seeds := testSeeds()
	p := LayerParams{Width: 4, Height: 4, Slices: 1, NoiseType: TypeValue, BaseFrequency: 4,
		Octaves: 1, Lacunarity: 2, Persistence: 0.5}
	u, v, w := p.TexelCoord(1, 2, 0)
	want := Value2(u*4, v*4, 4, uint32(seeds[0])) //nolint:gosec // bit pattern
	if got := p.FBM(seeds, u, v, w); got != want {
		t.Errorf("FBM = %v, want %v", got, want)
	}
}

func TestSample_GradientModes(t *testing.T) {
	seeds := testSeeds()
	base := LayerParams{Width: 32, Height: 32, Slices: 1, NoiseType: TypePerlin,
		BaseFrequency: 4, Octaves: 2, Lacunarity: 2, Persistence: 0.5}

	p := base
	p.SubMode = GradientValue
	val := p.Sample(seeds, 5, 9, 0)
	if val[0] != val[1] || val[1] != val[2] || val[2] != val[3] {
		t.Errorf("value mode should splat: %v", val)
	}

	p.SubMode = GradientOnly
	grad := p.Sample(seeds, 5, 9, 0)
	if grad[2] != 0 || grad[3] != 0 {
		t.Errorf("2D gradient should have zero z and w: %v", grad)
	}

	p.SubMode = GradientBoth
	both := p.Sample(seeds, 5, 9, 0)
	if both[0] != val[0] || both[1] != grad[0] || both[2] != grad[1] {
		t.Errorf("both = %v, want (%v, %v, %v, 0)", both, val[0], grad[0], grad[1])
	}
}

func TestSample_2DIgnoresSlice(t *testing.T) {
	seeds := testSeeds()
	p := LayerParams{Width: 8, Height: 8, Slices: 4, NoiseType: TypeSimplex,
		BaseFrequency: 2, Octaves: 3, Lacunarity: 2, Persistence: 0.5, PerOctaveSeed: 1}
	if p.Sample(seeds, 3, 3, 0) != p.Sample(seeds, 3, 3, 3) {
		t.Error("2D layer should produce identical slices")
	}
	p.Dimension = 1
	if p.Sample(seeds, 3, 3, 0) == p.Sample(seeds, 3, 3, 3) {
		t.Error("3D layer should vary across slices")
	}
}

func TestComposite(t *testing.T) {
	acc := Vec4{1, 2, 3, 4}
	r := Vec4{2, 2, 2, 2}
	tests := []struct {
		mode uint32
		want Vec4
	}{
		{CompositeNone, Vec4{1, 2, 3, 4}},
		{CompositeAdd, Vec4{3, 4, 5, 6}},
		{CompositeSubtract, Vec4{-1, 0, 1, 2}},
		{CompositeMultiply, Vec4{2, 4, 6, 8}},
	}
	for _, tt := range tests {
		if got := Composite(tt.mode, acc, r); got != tt.want {
			t.Errorf("Composite(%d) = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

// =============================================================================
// Quantization
// =============================================================================

func TestOrderedKey_PreservesOrder(t *testing.T) {
	values := []float32{float32(math.Inf(-1)), -1e30, -2, -0.5, 0, 1e-20, 0.5, 2, 1e30, float32(math.Inf(1))}
	for i := 1; i < len(values); i++ {
		if OrderedKey(values[i-1]) >= OrderedKey(values[i]) {
			t.Errorf("key(%v) >= key(%v)", values[i-1], values[i])
		}
	}
	for _, v := range values {
		if got := FromOrderedKey(OrderedKey(v)); got != v {
			t.Errorf("FromOrderedKey(OrderedKey(%v)) = %v", v, got)
		}
	}
}

func TestRemap(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float32
	}{
		{0.5, 0, 1, 0.5},
		{2, 0, 1, 1},
		{-3, 0, 1, 0},
		{0, -1, 1, 0.5},
		{7, 3, 3, 0},
		{1, float32(math.Inf(1)), float32(math.Inf(-1)), 0},
	}
	for _, tt := range tests {
		if got := Remap(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Remap(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestQuantize(t *testing.T) {
	if got := Quantize(1, 255, 0.5); got != 255 {
		t.Errorf("Quantize(1) = %v", got)
	}
	if got := Quantize(0, 255, 0.99); got != 0 {
		t.Errorf("Quantize(0) with max dither = %v", got)
	}
	if got := Quantize(0.5, 0, 0.5); got != 0.5 {
		t.Errorf("unquantized channel = %v", got)
	}
}

func TestDitherThreshold(t *testing.T) {
	seen := make(map[float32]bool)
	for y := uint32(0); y < 8; y++ {
		for x := uint32(0); x < 8; x++ {
			d := DitherThreshold(x, y, true)
			if d <= 0 || d >= 1 {
				t.Fatalf("threshold(%d,%d) = %v", x, y, d)
			}
			seen[d] = true
			if DitherThreshold(x+8, y+16, true) != d {
				t.Fatalf("threshold should repeat every 8 texels")
			}
		}
	}
	if len(seen) != 64 {
		t.Errorf("expected 64 distinct thresholds, got %d", len(seen))
	}
	if DitherThreshold(3, 3, false) != 0.5 {
		t.Error("no dither should round")
	}
}

func TestPacking(t *testing.T) {
	if got := PackRGBA8(Vec4{1, 2, 3, 255}); got != 0xff030201 {
		t.Errorf("PackRGBA8 = %#x", got)
	}
	if got := PackRGB10A2(Vec4{1023, 0, 1, 3}); got != 0xc01003ff {
		t.Errorf("PackRGB10A2 = %#x", got)
	}
	a, b := Unpack2x16Float(Pack2x16Float(0.5, 1))
	if a != 0.5 || b != 1 {
		t.Errorf("half round-trip = %v, %v", a, b)
	}
	if Pack2x16Float(1, 0)&0xffff != 0x3c00 {
		t.Errorf("half(1) = %#x, want 0x3c00", Pack2x16Float(1, 0)&0xffff)
	}
}

func TestNormalizeTexel(t *testing.T) {
	p := NormalizeParams{Normalize: 1, Levels: [4]float32{255, 255, 255, 255}}
	lo, hi := p.Bounds(OrderedKey(-2), OrderedKey(2))
	if lo != -2 || hi != 2 {
		t.Fatalf("Bounds = %v, %v", lo, hi)
	}
	got := p.Texel(Vec4{-2, 0, 2, 3}, lo, hi, 0, 0)
	if got != (Vec4{0, 128, 255, 255}) {
		t.Errorf("Texel = %v", got)
	}
	p.Flip = 1
	if got := p.Texel(Vec4{-2, 0, 2, 3}, lo, hi, 0, 0); got != (Vec4{255, 128, 0, 0}) {
		t.Errorf("flipped Texel = %v", got)
	}
	fixed := NormalizeParams{MinVal: 0, MaxVal: 1, Levels: [4]float32{255, 255, 255, 255}}
	lo, hi = fixed.Bounds(0, 0)
	if got := fixed.Texel(Vec4{2, 2, 2, 2}, lo, hi, 1, 1); got != (Vec4{255, 255, 255, 255}) {
		t.Errorf("clamped Texel = %v", got)
	}
}
