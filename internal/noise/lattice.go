// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package noise

// cell splits a coordinate into its wrapped lattice index pair and fraction.
func cell(x float32, period int32) (i0, i1 int32, f float32) {
	fl := floorf(x)
	i := int32(fl)
	return Wrap(i, period), Wrap(i+1, period), x - fl
}

// Value2 is value noise: hashed lattice values in [-1, 1] blended with a
// quintic fade. The lattice repeats every period cells.
func Value2(x, y float32, period int32, seed uint32) float32 {
	i0, i1, fx := cell(x, period)
	j0, j1, fy := cell(y, period)
	v00 := Signed(Hash3(seed, i0, j0, 0))
	v10 := Signed(Hash3(seed, i1, j0, 0))
	v01 := Signed(Hash3(seed, i0, j1, 0))
	v11 := Signed(Hash3(seed, i1, j1, 0))
	u, v := fade(fx), fade(fy)
	return lerp(lerp(v00, v10, u), lerp(v01, v11, u), v)
}

// Value3 is the 3D form of Value2.
func Value3(x, y, z float32, period int32, seed uint32) float32 {
	i0, i1, fx := cell(x, period)
	j0, j1, fy := cell(y, period)
	k0, k1, fz := cell(z, period)
	u, v, w := fade(fx), fade(fy), fade(fz)
	c := func(i, j, k int32) float32 { return Signed(Hash3(seed, i, j, k)) }
	x00 := lerp(c(i0, j0, k0), c(i1, j0, k0), u)
	x10 := lerp(c(i0, j1, k0), c(i1, j1, k0), u)
	x01 := lerp(c(i0, j0, k1), c(i1, j0, k1), u)
	x11 := lerp(c(i0, j1, k1), c(i1, j1, k1), u)
	return lerp(lerp(x00, x10, v), lerp(x01, x11, v), w)
}

// grad2 dots one of eight gradient directions, chosen by hash, with (x, y).
func grad2(h uint32, x, y float32) float32 {
	switch h & 7 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	case 3:
		return -x - y
	case 4:
		return x
	case 5:
		return -x
	case 6:
		return y
	default:
		return -y
	}
}

// grad3 dots one of the twelve cube-edge directions, chosen by hash, with (x, y, z).
func grad3(h uint32, x, y, z float32) float32 {
	switch h % 12 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	case 3:
		return -x - y
	case 4:
		return x + z
	case 5:
		return -x + z
	case 6:
		return x - z
	case 7:
		return -x - z
	case 8:
		return y + z
	case 9:
		return -y + z
	case 10:
		return y - z
	default:
		return -y - z
	}
}

// Perlin2 is gradient noise with a quintic fade. The lattice repeats
// every period cells.
func Perlin2(x, y float32, period int32, seed uint32) float32 {
	i0, i1, fx := cell(x, period)
	j0, j1, fy := cell(y, period)
	n00 := grad2(Hash3(seed, i0, j0, 0), fx, fy)
	n10 := grad2(Hash3(seed, i1, j0, 0), fx-1, fy)
	n01 := grad2(Hash3(seed, i0, j1, 0), fx, fy-1)
	n11 := grad2(Hash3(seed, i1, j1, 0), fx-1, fy-1)
	u, v := fade(fx), fade(fy)
	return lerp(lerp(n00, n10, u), lerp(n01, n11, u), v)
}

// Perlin3 is the 3D form of Perlin2.
func Perlin3(x, y, z float32, period int32, seed uint32) float32 {
	i0, i1, fx := cell(x, period)
	j0, j1, fy := cell(y, period)
	k0, k1, fz := cell(z, period)
	u, v, w := fade(fx), fade(fy), fade(fz)
	n000 := grad3(Hash3(seed, i0, j0, k0), fx, fy, fz)
	n100 := grad3(Hash3(seed, i1, j0, k0), fx-1, fy, fz)
	n010 := grad3(Hash3(seed, i0, j1, k0), fx, fy-1, fz)
	n110 := grad3(Hash3(seed, i1, j1, k0), fx-1, fy-1, fz)
	n001 := grad3(Hash3(seed, i0, j0, k1), fx, fy, fz-1)
	n101 := grad3(Hash3(seed, i1, j0, k1), fx-1, fy, fz-1)
	n011 := grad3(Hash3(seed, i0, j1, k1), fx, fy-1, fz-1)
	n111 := grad3(Hash3(seed, i1, j1, k1), fx-1, fy-1, fz-1)
	x00 := lerp(n000, n100, u)
	x10 := lerp(n010, n110, u)
	x01 := lerp(n001, n101, u)
	x11 := lerp(n011, n111, u)
	return lerp(lerp(x00, x10, v), lerp(x01, x11, v), w)
}
