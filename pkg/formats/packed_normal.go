package formats

import (
	"math"

	m "github.com/Faultbox/bim2gltf/pkg/math"
)

const (
	// packSize is the number of steps used for both spherical angles.
	packSize = 252
	// packTolerance treats near-vertical normals as exactly up or down.
	packTolerance = 1e-4
)

// PackedNormal is a unit normal quantised to two bytes of spherical
// coordinates: U is the longitude around +Y, V the latitude from +Y.
type PackedNormal struct {
	U, V uint8
}

// PackNormal quantises a direction. The vector does not need to be unit length.
func PackNormal(n m.Vec3) PackedNormal {
	n = n.Normalize()
	if math.Abs(n.X) < packTolerance && math.Abs(n.Z) < packTolerance {
		if n.Y >= 0 {
			return PackedNormal{U: 0, V: 0}
		}
		return PackedNormal{U: 0, V: packSize}
	}

	lat := math.Acos(clamp(n.Y, -1, 1))
	lon := math.Atan2(n.X, n.Z)
	if lon < 0 {
		lon += 2 * math.Pi
	}

	u := int(math.Round(lon / (2 * math.Pi) * packSize))
	if u >= packSize {
		u = 0
	}
	v := int(math.Round(lat / math.Pi * packSize))
	return PackedNormal{U: uint8(u), V: uint8(v)}
}

// Vec3 expands the packed normal back to a unit vector.
func (p PackedNormal) Vec3() m.Vec3 {
	lon := float64(p.U) / packSize * math.Pi * 2
	lat := float64(p.V) / packSize * math.Pi

	return m.Vec3{
		X: math.Sin(lon) * math.Sin(lat),
		Y: math.Cos(lat),
		Z: math.Cos(lon) * math.Sin(lat),
	}
}

// key returns the two bytes as one value, used to deduplicate vertices.
func (p PackedNormal) key() uint64 {
	return uint64(p.U)<<8 | uint64(p.V)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
