package export

import (
	"encoding/binary"
	stdmath "math"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/bim2gltf/pkg/formats"
	"github.com/Faultbox/bim2gltf/pkg/ifc"
	"github.com/Faultbox/bim2gltf/pkg/math"
	"github.com/Faultbox/bim2gltf/pkg/scene"
)

var schema = ifc.IFC4()

func typeID(t *testing.T, name string) ifc.TypeID {
	t.Helper()
	id, ok := schema.TypeID(name)
	if !ok {
		t.Fatalf("type %s not in schema", name)
	}
	return id
}

func encode(t *testing.T, tr *formats.Triangulation) []byte {
	t.Helper()
	data, err := formats.EncodeTriangulation(tr)
	if err != nil {
		t.Fatalf("EncodeTriangulation: %v", err)
	}
	return data
}

// quadPayload is a square of the given size in the XY plane facing +Z.
func quadPayload(t *testing.T, size float64) []byte {
	return encode(t, &formats.Triangulation{
		Vertices: []math.Vec3{{}, {X: size}, {X: size, Y: size}, {Y: size}},
		Faces: []formats.Face{{
			Planar:  true,
			Normals: []formats.PackedNormal{formats.PackNormal(math.Vec3{Z: 1})},
			Indices: []int{0, 1, 2, 0, 2, 3},
		}},
	})
}

// triPayload is a single triangle with a normal per corner.
func triPayload(t *testing.T, size float64) []byte {
	up := formats.PackNormal(math.Vec3{Z: 1})
	return encode(t, &formats.Triangulation{
		Vertices: []math.Vec3{{}, {X: size}, {Y: size}},
		Faces: []formats.Face{{
			Normals: []formats.PackedNormal{up, up, up},
			Indices: []int{0, 1, 2},
		}},
	})
}

// stripPayload is a triangle strip with n+2 vertices, for wide indices.
func stripPayload(t *testing.T, n int) []byte {
	tr := &formats.Triangulation{}
	for i := 0; i < n+2; i++ {
		tr.Vertices = append(tr.Vertices, math.Vec3{X: float64(i / 2), Y: float64(i % 2)})
	}
	face := formats.Face{Planar: true, Normals: []formats.PackedNormal{formats.PackNormal(math.Vec3{Z: 1})}}
	for i := 0; i < n; i++ {
		face.Indices = append(face.Indices, i, i+1, i+2)
	}
	tr.Faces = []formats.Face{face}
	return encode(t, tr)
}

func shape(id, element, geometry int, typ ifc.TypeID, style int, transform math.Mat4) scene.ShapeInstance {
	return scene.ShapeInstance{
		ID:              id,
		ElementID:       element,
		ShapeGeometryID: geometry,
		TypeID:          typ,
		StyleID:         style,
		Transform:       transform,
		Representation:  scene.RepresentationResolved,
	}
}

// newHouse builds a small model in millimetres:
//
//	element 10 wall    two shapes of shared geometry 100
//	element 20 slab    geometry 100, styled "Concrete"
//	element 30 window  geometry 101 (face based surface model)
//	element 40 space   geometry 102, excluded by default
//
// Shapes are enumerated out of element order on purpose.
func newHouse(t *testing.T) *scene.Memory {
	t.Helper()
	m := scene.NewMemory(schema, 1000)

	m.AddStyle(scene.Style{ID: 500, Name: "Concrete", Colours: []ifc.Colour{{Name: "Concrete", R: 0.5, G: 0.5, B: 0.5, A: 1}}})
	m.AddStyle(scene.Style{ID: 501})

	m.AddElement(scene.Element{ID: 10, Name: "Wall", GlobalID: "0000000000000000000001", TypeID: typeID(t, "IfcWall")})
	m.AddElement(scene.Element{ID: 20, Name: "Slab", TypeID: typeID(t, "IfcSlab")})
	m.AddElement(scene.Element{ID: 30, Name: "Window", TypeID: typeID(t, "IfcWindow")})
	m.AddElement(scene.Element{ID: 40, Name: "Room", TypeID: typeID(t, "IfcSpace")})

	m.AddGeometry(scene.ShapeGeometry{ID: 100, ItemID: 1100, Format: scene.FormatPolyhedron, Data: quadPayload(t, 1000)})
	m.AddGeometry(scene.ShapeGeometry{ID: 101, ItemID: 1101, Format: scene.FormatPolyhedron, Data: triPayload(t, 500)})
	m.AddGeometry(scene.ShapeGeometry{ID: 102, ItemID: 1102, Format: scene.FormatPolyhedron, Data: quadPayload(t, 4000)})
	m.SetItemKind(1101, scene.ItemFaceBasedSurfaceModel)

	m.AddShape(shape(1, 20, 100, typeID(t, "IfcSlab"), 500, math.Translate(0, 0, 3000)))
	m.AddShape(shape(2, 10, 100, typeID(t, "IfcWall"), 0, math.Translate(1000, 0, 0)))
	m.AddShape(shape(3, 10, 100, typeID(t, "IfcWall"), 0, math.Translate(2000, 0, 0)))
	m.AddShape(shape(4, 30, 101, typeID(t, "IfcWindow"), 0, math.Identity()))
	m.AddShape(shape(5, 40, 102, typeID(t, "IfcSpace"), 0, math.Identity()))

	return m
}

func build(t *testing.T, m scene.Model, opts Options) (*gltf.Document, *Builder) {
	t.Helper()
	b, err := New(m, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	doc, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return doc, b
}

// accessorBytes returns the raw bytes an accessor covers.
func accessorBytes(t *testing.T, doc *gltf.Document, idx int) []byte {
	t.Helper()
	acc := doc.Accessors[idx]
	view := doc.BufferViews[*acc.BufferView]
	width := componentSize(acc.ComponentType)
	if acc.Type == gltf.AccessorVec3 {
		width *= 3
	}
	start := view.ByteOffset + acc.ByteOffset
	end := start + acc.Count*width
	if end > view.ByteOffset+view.ByteLength {
		t.Fatalf("accessor %d overruns its view", idx)
	}
	return doc.Buffers[0].Data[start:end]
}

func accessorFloats(t *testing.T, doc *gltf.Document, idx int) []float32 {
	raw := accessorBytes(t, doc, idx)
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = stdmath.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return out
}

func accessorIndices(t *testing.T, doc *gltf.Document, idx int) []uint32 {
	raw := accessorBytes(t, doc, idx)
	acc := doc.Accessors[idx]
	out := make([]uint32, acc.Count)
	for i := range out {
		switch acc.ComponentType {
		case gltf.ComponentUbyte:
			out[i] = uint32(raw[i])
		case gltf.ComponentUshort:
			out[i] = uint32(binary.LittleEndian.Uint16(raw[2*i:]))
		default:
			out[i] = binary.LittleEndian.Uint32(raw[4*i:])
		}
	}
	return out
}

func componentSize(c gltf.ComponentType) int {
	switch c {
	case gltf.ComponentUbyte, gltf.ComponentByte:
		return 1
	case gltf.ComponentUshort, gltf.ComponentShort:
		return 2
	default:
		return 4
	}
}

// primitives lists every primitive in mesh order.
func primitives(doc *gltf.Document) []*gltf.Primitive {
	var out []*gltf.Primitive
	for _, m := range doc.Meshes {
		out = append(out, m.Primitives...)
	}
	return out
}

func nodeByName(doc *gltf.Document, name string) (int, bool) {
	for i, n := range doc.Nodes {
		if n.Name == name {
			return i, true
		}
	}
	return 0, false
}

func near(a, b float64) bool {
	return stdmath.Abs(a-b) < 1e-5
}
