// Polyhedron triangulation payload codec.
//
// Layout (little endian):
//
//	uint8   version
//	int32   vertex count
//	int32   triangle count
//	float32 x, y, z            per vertex
//	int32   face count
//	per face:
//	  int32 triangles (> 0 planar, < 0 non-planar, 0 empty)
//	  planar:     packed normal, then 3*n indices
//	  non-planar: 3*n (index, packed normal) pairs
//
// Indices are 1 byte wide when the vertex count fits a byte, 2 bytes when it
// fits 16 bits, otherwise 4 bytes.

package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	m "github.com/Faultbox/bim2gltf/pkg/math"
)

// TriangulationVersion is the only payload version this package reads and writes.
const TriangulationVersion = 1

// Triangulation format errors.
var (
	ErrTruncatedTriangulation          = errors.New("truncated triangulation data")
	ErrUnsupportedTriangulationVersion = errors.New("unsupported triangulation version")
	ErrInvalidVertexCount              = errors.New("invalid triangulation vertex count")
	ErrIndexOutOfRange                 = errors.New("triangulation index out of range")
	ErrMalformedFace                   = errors.New("malformed triangulation face")
)

// Face is a set of triangles sharing one surface. A planar face stores a
// single normal; a non-planar face stores one normal per index.
type Face struct {
	Planar  bool
	Normals []PackedNormal
	Indices []int
}

// TriangleCount returns the number of triangles in the face.
func (f Face) TriangleCount() int {
	return len(f.Indices) / 3
}

// normalAt returns the normal used by the i-th index.
func (f Face) normalAt(i int) PackedNormal {
	if f.Planar {
		return f.Normals[0]
	}
	return f.Normals[i]
}

// Triangulation is a decoded polyhedron payload.
type Triangulation struct {
	Version  uint8
	Vertices []m.Vec3
	Faces    []Face
}

// TriangleCount returns the number of triangles over all faces.
func (t *Triangulation) TriangleCount() int {
	n := 0
	for _, f := range t.Faces {
		n += f.TriangleCount()
	}
	return n
}

// IsEmpty reports whether the triangulation has no triangles.
func (t *Triangulation) IsEmpty() bool {
	return t.TriangleCount() == 0
}

// DecodeTriangulation parses a triangulation payload.
func DecodeTriangulation(data []byte) (*Triangulation, error) {
	if len(data) < 9 {
		return nil, ErrTruncatedTriangulation
	}

	r := bytes.NewReader(data)
	t := &Triangulation{}

	if err := read(r, &t.Version); err != nil {
		return nil, err
	}
	if t.Version != TriangulationVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedTriangulationVersion, t.Version)
	}

	var vertexCount, triangleCount int32
	if err := read(r, &vertexCount); err != nil {
		return nil, err
	}
	if err := read(r, &triangleCount); err != nil {
		return nil, err
	}
	if vertexCount < 0 || int64(vertexCount)*12 > int64(r.Len()) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVertexCount, vertexCount)
	}

	t.Vertices = make([]m.Vec3, vertexCount)
	for i := range t.Vertices {
		var p [3]float32
		if err := read(r, &p); err != nil {
			return nil, err
		}
		t.Vertices[i] = m.Vec3{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
	}

	var faceCount int32
	if err := read(r, &faceCount); err != nil {
		return nil, err
	}
	if faceCount < 0 {
		return nil, fmt.Errorf("%w: negative face count %d", ErrMalformedFace, faceCount)
	}

	width := indexWidth(int(vertexCount))
	for i := int32(0); i < faceCount; i++ {
		face, err := decodeFace(r, width, int(vertexCount))
		if err != nil {
			return nil, fmt.Errorf("parsing face %d: %w", i, err)
		}
		if face == nil {
			continue
		}
		t.Faces = append(t.Faces, *face)
	}

	return t, nil
}

func decodeFace(r *bytes.Reader, width, vertexCount int) (*Face, error) {
	var triangles int32
	if err := read(r, &triangles); err != nil {
		return nil, err
	}
	if triangles == 0 {
		return nil, nil
	}

	if triangles == math.MinInt32 {
		return nil, fmt.Errorf("%w: triangle count %d", ErrMalformedFace, triangles)
	}

	face := &Face{Planar: triangles > 0}
	if triangles < 0 {
		triangles = -triangles
	}
	if int64(triangles)*3*int64(width) > int64(r.Len()) {
		return nil, ErrTruncatedTriangulation
	}
	count := int(triangles) * 3

	if face.Planar {
		n, err := readNormal(r)
		if err != nil {
			return nil, err
		}
		face.Normals = []PackedNormal{n}
	} else {
		face.Normals = make([]PackedNormal, 0, count)
	}

	face.Indices = make([]int, count)
	for j := 0; j < count; j++ {
		idx, err := readIndex(r, width)
		if err != nil {
			return nil, err
		}
		if idx >= vertexCount {
			return nil, fmt.Errorf("%w: %d >= %d", ErrIndexOutOfRange, idx, vertexCount)
		}
		face.Indices[j] = idx

		if !face.Planar {
			n, err := readNormal(r)
			if err != nil {
				return nil, err
			}
			face.Normals = append(face.Normals, n)
		}
	}

	return face, nil
}

// EncodeTriangulation serialises a triangulation. Faces are validated the
// same way DecodeTriangulation validates them.
func EncodeTriangulation(t *Triangulation) ([]byte, error) {
	var buf bytes.Buffer
	vertexCount := len(t.Vertices)
	width := indexWidth(vertexCount)

	buf.WriteByte(TriangulationVersion)
	binary.Write(&buf, binary.LittleEndian, int32(vertexCount))
	binary.Write(&buf, binary.LittleEndian, int32(t.TriangleCount()))

	for _, v := range t.Vertices {
		binary.Write(&buf, binary.LittleEndian, [3]float32{float32(v.X), float32(v.Y), float32(v.Z)})
	}

	binary.Write(&buf, binary.LittleEndian, int32(len(t.Faces)))
	for i, f := range t.Faces {
		if len(f.Indices)%3 != 0 {
			return nil, fmt.Errorf("face %d: %w: %d indices", i, ErrMalformedFace, len(f.Indices))
		}
		if f.Planar && len(f.Normals) != 1 && len(f.Indices) > 0 {
			return nil, fmt.Errorf("face %d: %w: planar face needs one normal", i, ErrMalformedFace)
		}
		if !f.Planar && len(f.Normals) != len(f.Indices) {
			return nil, fmt.Errorf("face %d: %w: need one normal per index", i, ErrMalformedFace)
		}

		triangles := int32(f.TriangleCount())
		if !f.Planar {
			triangles = -triangles
		}
		binary.Write(&buf, binary.LittleEndian, triangles)
		if triangles == 0 {
			continue
		}

		if f.Planar {
			buf.Write([]byte{f.Normals[0].U, f.Normals[0].V})
		}
		for j, idx := range f.Indices {
			if idx < 0 || idx >= vertexCount {
				return nil, fmt.Errorf("face %d: %w: %d", i, ErrIndexOutOfRange, idx)
			}
			writeIndex(&buf, idx, width)
			if !f.Planar {
				buf.Write([]byte{f.Normals[j].U, f.Normals[j].V})
			}
		}
	}

	return buf.Bytes(), nil
}

// PointsWithNormals flattens the triangulation into unique (position,
// normal) vertices and a triangle index list referencing them. Vertices are
// emitted in first-use order.
func (t *Triangulation) PointsWithNormals() ([][6]float32, []int) {
	points := make([][6]float32, 0, len(t.Vertices))
	indices := make([]int, 0, t.TriangleCount()*3)
	unique := make(map[uint64]int, len(t.Vertices))

	for _, f := range t.Faces {
		for i, idx := range f.Indices {
			normal := f.normalAt(i)
			key := uint64(idx)<<16 | normal.key()

			out, ok := unique[key]
			if !ok {
				p := t.Vertices[idx]
				n := normal.Vec3()
				out = len(points)
				points = append(points, [6]float32{
					float32(p.X), float32(p.Y), float32(p.Z),
					float32(n.X), float32(n.Y), float32(n.Z),
				})
				unique[key] = out
			}
			indices = append(indices, out)
		}
	}

	return points, indices
}

func indexWidth(vertexCount int) int {
	switch {
	case vertexCount <= 0xFF:
		return 1
	case vertexCount <= 0xFFFF:
		return 2
	default:
		return 4
	}
}

func readIndex(r *bytes.Reader, width int) (int, error) {
	switch width {
	case 1:
		b, err := r.ReadByte()
		if err != nil {
			return 0, ErrTruncatedTriangulation
		}
		return int(b), nil
	case 2:
		var v uint16
		if err := read(r, &v); err != nil {
			return 0, err
		}
		return int(v), nil
	default:
		var v int32
		if err := read(r, &v); err != nil {
			return 0, err
		}
		if v < 0 {
			return 0, fmt.Errorf("%w: %d", ErrIndexOutOfRange, v)
		}
		return int(v), nil
	}
}

func writeIndex(w io.Writer, idx, width int) {
	switch width {
	case 1:
		w.Write([]byte{byte(idx)})
	case 2:
		binary.Write(w, binary.LittleEndian, uint16(idx))
	default:
		binary.Write(w, binary.LittleEndian, int32(idx))
	}
}

func readNormal(r *bytes.Reader) (PackedNormal, error) {
	var n PackedNormal
	if err := read(r, &n); err != nil {
		return n, err
	}
	return n, nil
}

func read(r io.Reader, v any) error {
	if err := binary.Read(r, binary.LittleEndian, v); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrTruncatedTriangulation
		}
		return err
	}
	return nil
}
