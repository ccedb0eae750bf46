package export

import (
	"fmt"

	"github.com/Faultbox/bim2gltf/pkg/formats"
	"github.com/Faultbox/bim2gltf/pkg/math"
)

// MeshBuffers holds one decoded shape: flat xyz positions and normals of
// equal length and a triangle index list into them.
type MeshBuffers struct {
	Positions []float32
	Normals   []float32
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (m MeshBuffers) VertexCount() int {
	return len(m.Positions) / 3
}

// IsEmpty reports whether the mesh has no triangles.
func (m MeshBuffers) IsEmpty() bool {
	return len(m.Indices) == 0
}

// DecodeMesh decodes a triangulation payload into mesh buffers. Positions are
// placed by transform (nil means identity) and divided by oneMeter; normals
// are only rotated.
func DecodeMesh(data []byte, transform *math.Mat4, oneMeter float64) (MeshBuffers, error) {
	t, err := formats.DecodeTriangulation(data)
	if err != nil {
		return MeshBuffers{}, fmt.Errorf("decode mesh: %w", err)
	}
	if oneMeter <= 0 {
		oneMeter = 1
	}

	points, indices := t.PointsWithNormals()
	out := MeshBuffers{
		Positions: make([]float32, 0, 3*len(points)),
		Normals:   make([]float32, 0, 3*len(points)),
		Indices:   make([]uint32, len(indices)),
	}
	for i, idx := range indices {
		out.Indices[i] = uint32(idx)
	}

	if transform == nil || (transform.IsIdentity() && transform.Rotation().IsIdentity()) {
		placeScaled(&out, points, oneMeter)
	} else {
		placeTransformed(&out, points, *transform, oneMeter)
	}
	return out, nil
}

// placeScaled copies points, only converting positions to meters.
func placeScaled(out *MeshBuffers, points [][6]float32, oneMeter float64) {
	for _, p := range points {
		out.Positions = append(out.Positions,
			float32(float64(p[0])/oneMeter),
			float32(float64(p[1])/oneMeter),
			float32(float64(p[2])/oneMeter))
		out.Normals = append(out.Normals, p[3], p[4], p[5])
	}
}

// placeTransformed moves positions by the full matrix and rotates normals by
// its rotation only, so scale never reaches the normals.
func placeTransformed(out *MeshBuffers, points [][6]float32, transform math.Mat4, oneMeter float64) {
	rotation := transform.Rotation()
	for _, p := range points {
		pos := transform.TransformPoint(math.Vec3{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}).Div(oneMeter)
		n := rotation.Rotate(math.Vec3{X: float64(p[3]), Y: float64(p[4]), Z: float64(p[5])})

		pf, nf := pos.Float32(), n.Float32()
		out.Positions = append(out.Positions, pf[:]...)
		out.Normals = append(out.Normals, nf[:]...)
	}
}
