// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package noise

// Skew factors for 2D and 3D simplex grids.
const (
	f2 = 0.36602540378 // (sqrt(3)-1)/2
	g2 = 0.21132486540 // (3-sqrt(3))/6
	f3 = 1.0 / 3.0
	g3 = 1.0 / 6.0
)

// Simplex2 is 2D simplex noise scaled to roughly [-1, 1]. Simplex grids do
// not align with the square period, so it does not tile.
func Simplex2(x, y float32, seed uint32) float32 {
	s := (x + y) * f2
	i := floorf(x + s)
	j := floorf(y + s)
	t := (i + j) * g2
	x0 := x - (i - t)
	y0 := y - (j - t)

	var i1, j1 float32
	if x0 > y0 {
		i1 = 1
	} else {
		j1 = 1
	}
	x1 := x0 - i1 + g2
	y1 := y0 - j1 + g2
	x2 := x0 - 1 + 2*g2
	y2 := y0 - 1 + 2*g2

	ii, jj := int32(i), int32(j)
	var n float32
	if t0 := 0.5 - x0*x0 - y0*y0; t0 > 0 {
		t0 *= t0
		n += t0 * t0 * grad2(Hash3(seed, ii, jj, 0), x0, y0)
	}
	if t1 := 0.5 - x1*x1 - y1*y1; t1 > 0 {
		t1 *= t1
		n += t1 * t1 * grad2(Hash3(seed, ii+int32(i1), jj+int32(j1), 0), x1, y1)
	}
	if t2 := 0.5 - x2*x2 - y2*y2; t2 > 0 {
		t2 *= t2
		n += t2 * t2 * grad2(Hash3(seed, ii+1, jj+1, 0), x2, y2)
	}
	return 70 * n
}

// Simplex3 is 3D simplex noise scaled to roughly [-1, 1].
func Simplex3(x, y, z float32, seed uint32) float32 {
	s := (x + y + z) * f3
	i := floorf(x + s)
	j := floorf(y + s)
	k := floorf(z + s)
	t := (i + j + k) * g3
	x0 := x - (i - t)
	y0 := y - (j - t)
	z0 := z - (k - t)

	var i1, j1, k1, i2, j2, k2 float32
	switch {
	case x0 >= y0 && y0 >= z0:
		i1, i2, j2 = 1, 1, 1
	case x0 >= y0 && x0 >= z0:
		i1, i2, k2 = 1, 1, 1
	case x0 >= y0:
		k1, i2, k2 = 1, 1, 1
	case y0 < z0:
		k1, j2, k2 = 1, 1, 1
	case x0 < z0:
		j1, j2, k2 = 1, 1, 1
	default:
		j1, i2, j2 = 1, 1, 1
	}

	x1, y1, z1 := x0-i1+g3, y0-j1+g3, z0-k1+g3
	x2, y2, z2 := x0-i2+2*g3, y0-j2+2*g3, z0-k2+2*g3
	x3, y3, z3 := x0-1+3*g3, y0-1+3*g3, z0-1+3*g3

	ii, jj, kk := int32(i), int32(j), int32(k)
	corner := func(tx, ty, tz float32, di, dj, dk float32) float32 {
		t := 0.6 - tx*tx - ty*ty - tz*tz
		if t <= 0 {
			return 0
		}
		t *= t
		h := Hash3(seed, ii+int32(di), jj+int32(dj), kk+int32(dk))
		return t * t * grad3(h, tx, ty, tz)
	}
	n := corner(x0, y0, z0, 0, 0, 0) +
		corner(x1, y1, z1, i1, j1, k1) +
		corner(x2, y2, z2, i2, j2, k2) +
		corner(x3, y3, z3, 1, 1, 1)
	return 32 * n
}
