package codec

import "math"

// Vec3 is a 3-component float vector stored the way the wire stores it
// (32-bit components). Arithmetic runs in float64 to keep the basis repair
// numerically stable.
type Vec3 struct {
	X, Y, Z float32
}

// degenerateLen is the squared-root length below which a stored vector is
// treated as absent and replaced by a canonical fallback axis.
const degenerateLen = 1e-8

func (a Vec3) Dot(b Vec3) float64 {
	return float64(a.X)*float64(b.X) + float64(a.Y)*float64(b.Y) + float64(a.Z)*float64(b.Z)
}

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		X: float32(float64(a.Y)*float64(b.Z) - float64(a.Z)*float64(b.Y)),
		Y: float32(float64(a.Z)*float64(b.X) - float64(a.X)*float64(b.Z)),
		Z: float32(float64(a.X)*float64(b.Y) - float64(a.Y)*float64(b.X)),
	}
}

func (v Vec3) Len() float64 {
	return math.Sqrt(v.Dot(v))
}

func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < degenerateLen {
		return Vec3{}
	}
	return Vec3{X: float32(float64(v.X) / l), Y: float32(float64(v.Y) / l), Z: float32(float64(v.Z) / l)}
}

// RepairBasis rebuilds a right-handed orthonormal basis from stored forward
// and up vectors that are not guaranteed orthogonal (or even non-zero).
//
// x is the normalized forward (falling back to +X when degenerate), the
// lateral axis is up × x, and the returned up is recomputed as x × y. The
// recomputed vector is authoritative, not the stored one. When up is nearly
// parallel to forward, an alternate world axis (+Y unless forward is almost
// +Y, else +Z) stands in for up before recomputing.
func RepairBasis(forward, up Vec3) (x, y, z Vec3) {
	x = forward
	if x.Len() < degenerateLen {
		x = Vec3{X: 1}
	} else {
		x = x.Normalize()
	}

	z = up
	if z.Len() < degenerateLen {
		z = Vec3{Z: 1}
	} else {
		z = z.Normalize()
	}

	y = z.Cross(x)
	if y.Len() < degenerateLen {
		alt := Vec3{Y: 1}
		if math.Abs(x.Dot(Vec3{Y: 1})) >= 0.99 {
			alt = Vec3{Z: 1}
		}
		z = alt.Normalize()
		y = z.Cross(x)
	}

	if y.Len() < degenerateLen {
		y = Vec3{Y: 1}
	} else {
		y = y.Normalize()
	}

	z = x.Cross(y)
	if z.Len() < degenerateLen {
		z = Vec3{Z: 1}
	} else {
		z = z.Normalize()
	}

	return x, y, z
}
