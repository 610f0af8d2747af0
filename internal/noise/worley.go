// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package noise

// Distance metrics, matching params.DistanceFunction.
const (
	DistanceEuclidean uint32 = iota
	DistanceManhattan
	DistanceChebyshev
)

func distance(metric uint32, dx, dy, dz float32) float32 {
	switch metric {
	case DistanceManhattan:
		return absf(dx) + absf(dy) + absf(dz)
	case DistanceChebyshev:
		return maxf(absf(dx), maxf(absf(dy), absf(dz)))
	default:
		return sqrtf(dx*dx + dy*dy + dz*dz)
	}
}

// worleyState tracks the two nearest feature points.
type worleyState struct {
	f1, f2 float32
	cell   uint32
}

func (s *worleyState) visit(d float32, h uint32) {
	switch {
	case d < s.f1:
		s.f2 = s.f1
		s.f1 = d
		s.cell = h
	case d < s.f2:
		s.f2 = d
	}
}

func (s *worleyState) result() Vec4 {
	return Vec4{s.f1, s.f2, s.f2 - s.f1, Signed(Hash32(Hash32(Hash32(s.cell))))}
}

// Worley2 places one jittered feature point in every lattice cell and
// returns (F1, F2, F2-F1, value of the nearest cell). The lattice repeats
// every period cells.
func Worley2(x, y float32, period int32, seed uint32, metric uint32) Vec4 {
	fx, fy := floorf(x), floorf(y)
	ix, iy := int32(fx), int32(fy)
	rx, ry := x-fx, y-fy
	st := worleyState{f1: 1e9, f2: 1e9}
	for dy := int32(-1); dy <= 1; dy++ {
		for dx := int32(-1); dx <= 1; dx++ {
			h := Hash3(seed, Wrap(ix+dx, period), Wrap(iy+dy, period), 0)
			px := float32(dx) + Unit(h)
			py := float32(dy) + Unit(Hash32(h))
			st.visit(distance(metric, px-rx, py-ry, 0), h)
		}
	}
	return st.result()
}

// Worley3 is the 3D form of Worley2.
func Worley3(x, y, z float32, period int32, seed uint32, metric uint32) Vec4 {
	fx, fy, fz := floorf(x), floorf(y), floorf(z)
	ix, iy, iz := int32(fx), int32(fy), int32(fz)
	rx, ry, rz := x-fx, y-fy, z-fz
	st := worleyState{f1: 1e9, f2: 1e9}
	for dz := int32(-1); dz <= 1; dz++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for dx := int32(-1); dx <= 1; dx++ {
				h := Hash3(seed, Wrap(ix+dx, period), Wrap(iy+dy, period), Wrap(iz+dz, period))
				h1 := Hash32(h)
				px := float32(dx) + Unit(h)
				py := float32(dy) + Unit(h1)
				pz := float32(dz) + Unit(Hash32(h1))
				st.visit(distance(metric, px-rx, py-ry, pz-rz), h)
			}
		}
	}
	return st.result()
}
