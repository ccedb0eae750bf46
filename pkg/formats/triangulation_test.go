package formats

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	m "github.com/Faultbox/bim2gltf/pkg/math"
)

// makeQuad builds a planar unit square in the XY plane facing +Z.
func makeQuad() *Triangulation {
	return &Triangulation{
		Version: TriangulationVersion,
		Vertices: []m.Vec3{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 1, Y: 1, Z: 0},
			{X: 0, Y: 1, Z: 0},
		},
		Faces: []Face{{
			Planar:  true,
			Normals: []PackedNormal{PackNormal(m.Vec3{Z: 1})},
			Indices: []int{0, 1, 2, 0, 2, 3},
		}},
	}
}

func mustEncode(t *testing.T, tr *Triangulation) []byte {
	t.Helper()
	data, err := EncodeTriangulation(tr)
	if err != nil {
		t.Fatalf("EncodeTriangulation: %v", err)
	}
	return data
}

func TestTriangulationRoundTrip(t *testing.T) {
	quad := makeQuad()
	decoded, err := DecodeTriangulation(mustEncode(t, quad))
	if err != nil {
		t.Fatalf("DecodeTriangulation: %v", err)
	}

	if decoded.Version != TriangulationVersion {
		t.Errorf("version: got %d, want %d", decoded.Version, TriangulationVersion)
	}
	if len(decoded.Vertices) != 4 {
		t.Fatalf("vertices: got %d, want 4", len(decoded.Vertices))
	}
	if decoded.Vertices[2] != quad.Vertices[2] {
		t.Errorf("vertex 2: got %v, want %v", decoded.Vertices[2], quad.Vertices[2])
	}
	if decoded.TriangleCount() != 2 {
		t.Errorf("triangles: got %d, want 2", decoded.TriangleCount())
	}
	if !decoded.Faces[0].Planar || len(decoded.Faces[0].Normals) != 1 {
		t.Errorf("expected one planar face with one normal, got %+v", decoded.Faces[0])
	}
}

func TestTriangulationNonPlanarFace(t *testing.T) {
	tr := &Triangulation{
		Vertices: []m.Vec3{{X: 0}, {X: 1}, {Y: 1}},
		Faces: []Face{{
			Planar: false,
			Normals: []PackedNormal{
				PackNormal(m.Vec3{Z: 1}),
				PackNormal(m.Vec3{X: 1}),
				PackNormal(m.Vec3{Y: 1}),
			},
			Indices: []int{0, 1, 2},
		}},
	}

	decoded, err := DecodeTriangulation(mustEncode(t, tr))
	if err != nil {
		t.Fatalf("DecodeTriangulation: %v", err)
	}
	face := decoded.Faces[0]
	if face.Planar {
		t.Error("face should be non-planar")
	}
	if len(face.Normals) != 3 {
		t.Fatalf("normals: got %d, want 3", len(face.Normals))
	}

	points, indices := decoded.PointsWithNormals()
	if len(points) != 3 || len(indices) != 3 {
		t.Fatalf("got %d points, %d indices; want 3, 3", len(points), len(indices))
	}
	// Second vertex keeps the +X normal.
	if math.Abs(float64(points[1][3])-1) > 1e-3 {
		t.Errorf("normal of vertex 1: got %v", points[1][3:])
	}
}

func TestTriangulationIndexWidths(t *testing.T) {
	tests := []struct {
		name     string
		vertices int
		width    int
	}{
		{"byte", 10, 1},
		{"byte boundary", 255, 1},
		{"short", 256, 2},
		{"short boundary", 65535, 2},
		{"int", 65536, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := indexWidth(tt.vertices); got != tt.width {
				t.Errorf("indexWidth(%d) = %d, want %d", tt.vertices, got, tt.width)
			}
		})
	}
}

func TestTriangulationLargeIndices(t *testing.T) {
	tr := &Triangulation{Vertices: make([]m.Vec3, 300)}
	for i := range tr.Vertices {
		tr.Vertices[i] = m.Vec3{X: float64(i)}
	}
	tr.Faces = []Face{{
		Planar:  true,
		Normals: []PackedNormal{PackNormal(m.Vec3{Y: 1})},
		Indices: []int{0, 150, 299},
	}}

	decoded, err := DecodeTriangulation(mustEncode(t, tr))
	if err != nil {
		t.Fatalf("DecodeTriangulation: %v", err)
	}
	got := decoded.Faces[0].Indices
	if got[0] != 0 || got[1] != 150 || got[2] != 299 {
		t.Errorf("indices: got %v, want [0 150 299]", got)
	}
}

func TestDecodeTriangulationErrors(t *testing.T) {
	valid := mustEncode(t, makeQuad())

	badVersion := append([]byte(nil), valid...)
	badVersion[0] = 9

	outOfRange := append([]byte(nil), valid...)
	// Last index byte of the quad.
	outOfRange[len(outOfRange)-1] = 200

	hugeVertexCount := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(hugeVertexCount[1:], 1<<20)

	// Triangle count of the only face, right after the face count.
	faceStart := 9 + 4*12 + 4
	minTriangles := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(minTriangles[faceStart:], uint32(1)<<31)

	hugeTriangles := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(hugeTriangles[faceStart:], math.MaxInt32)

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty data", []byte{}, ErrTruncatedTriangulation},
		{"truncated header", valid[:5], ErrTruncatedTriangulation},
		{"truncated faces", valid[:len(valid)-2], ErrTruncatedTriangulation},
		{"unsupported version", badVersion, ErrUnsupportedTriangulationVersion},
		{"index out of range", outOfRange, ErrIndexOutOfRange},
		{"vertex count exceeds data", hugeVertexCount, ErrInvalidVertexCount},
		{"most negative triangle count", minTriangles, ErrMalformedFace},
		{"triangle count exceeds data", hugeTriangles, ErrTruncatedTriangulation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTriangulation(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncodeTriangulationErrors(t *testing.T) {
	tests := []struct {
		name string
		face Face
	}{
		{"partial triangle", Face{Planar: true, Normals: []PackedNormal{{}}, Indices: []int{0, 1}}},
		{"planar without normal", Face{Planar: true, Indices: []int{0, 1, 2}}},
		{"missing per index normals", Face{Planar: false, Normals: []PackedNormal{{}}, Indices: []int{0, 1, 2}}},
		{"index out of range", Face{Planar: true, Normals: []PackedNormal{{}}, Indices: []int{0, 1, 7}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &Triangulation{Vertices: make([]m.Vec3, 3), Faces: []Face{tt.face}}
			if _, err := EncodeTriangulation(tr); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestEmptyTriangulation(t *testing.T) {
	decoded, err := DecodeTriangulation(mustEncode(t, &Triangulation{}))
	if err != nil {
		t.Fatalf("DecodeTriangulation: %v", err)
	}
	if !decoded.IsEmpty() {
		t.Error("expected empty triangulation")
	}
	points, indices := decoded.PointsWithNormals()
	if len(points) != 0 || len(indices) != 0 {
		t.Errorf("expected no points, got %d points %d indices", len(points), len(indices))
	}
}

func TestPointsWithNormalsSharesVertices(t *testing.T) {
	points, indices := makeQuad().PointsWithNormals()

	// Two triangles over four corners with one normal: four unique points.
	if len(points) != 4 {
		t.Fatalf("points: got %d, want 4", len(points))
	}
	want := []int{0, 1, 2, 0, 2, 3}
	for i := range want {
		if indices[i] != want[i] {
			t.Fatalf("indices: got %v, want %v", indices, want)
		}
	}
	if points[2][0] != 1 || points[2][1] != 1 {
		t.Errorf("point 2 position: got %v", points[2][:3])
	}
	if math.Abs(float64(points[0][5])-1) > 1e-6 {
		t.Errorf("point 0 normal should face +Z, got %v", points[0][3:])
	}
}

func TestPointsWithNormalsSplitsByNormal(t *testing.T) {
	// Same corner used by two faces with different normals.
	tr := &Triangulation{
		Vertices: []m.Vec3{{}, {X: 1}, {Y: 1}, {Z: 1}},
		Faces: []Face{
			{Planar: true, Normals: []PackedNormal{PackNormal(m.Vec3{Z: -1})}, Indices: []int{0, 2, 1}},
			{Planar: true, Normals: []PackedNormal{PackNormal(m.Vec3{Y: -1})}, Indices: []int{0, 1, 3}},
		},
	}
	points, indices := tr.PointsWithNormals()
	if len(points) != 6 {
		t.Errorf("points: got %d, want 6", len(points))
	}
	if indices[0] == indices[3] {
		t.Error("corner 0 with different normals must not be shared")
	}
}
