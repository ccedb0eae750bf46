package scene

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/bim2gltf/pkg/encoding"
	"github.com/Faultbox/bim2gltf/pkg/formats"
	"github.com/Faultbox/bim2gltf/pkg/ifc"
	"github.com/Faultbox/bim2gltf/pkg/math"
)

// ErrInvalidModel wraps every validation failure of a model file.
var ErrInvalidModel = errors.New("invalid model file")

// File is the YAML representation of a tessellated model.
type File struct {
	OneMeter   float64        `yaml:"one_meter"`
	Styles     []StyleFile    `yaml:"styles"`
	Elements   []ElementFile  `yaml:"elements"`
	Geometries []GeometryFile `yaml:"geometries"`
	Shapes     []ShapeFile    `yaml:"shapes"`
	Storeys    []StoreyFile   `yaml:"storeys"`
}

// StyleFile is a surface style entry. Colours are RGB or RGBA.
type StyleFile struct {
	ID      int         `yaml:"id"`
	Name    string      `yaml:"name"`
	Colours [][]float32 `yaml:"colours"`
}

// ElementFile is a building element entry.
type ElementFile struct {
	ID       int    `yaml:"id"`
	Name     string `yaml:"name"`
	GlobalID string `yaml:"global_id"` // compressed or UUID form
	Type     string `yaml:"type"`
}

// GeometryFile is a triangulated geometry entry.
type GeometryFile struct {
	ID       int          `yaml:"id"`
	Item     int          `yaml:"item"`
	ItemKind string       `yaml:"item_kind"`
	Format   string       `yaml:"format"`
	Vertices [][3]float64 `yaml:"vertices"`
	Faces    []FaceFile   `yaml:"faces"`
}

// FaceFile is one face. Planar faces set Normal, non-planar faces set one
// entry of Normals per triangle corner.
type FaceFile struct {
	Normal    *[3]float64  `yaml:"normal,omitempty"`
	Normals   [][3]float64 `yaml:"normals,omitempty"`
	Triangles [][3]int     `yaml:"triangles"`
}

// ShapeFile is a shape instance entry. Transform is 16 column-major values;
// omitted means identity.
type ShapeFile struct {
	ID             int       `yaml:"id"`
	Element        int       `yaml:"element"`
	Geometry       int       `yaml:"geometry"`
	Style          int       `yaml:"style"`
	Representation string    `yaml:"representation"`
	Transform      []float64 `yaml:"transform"`
}

// StoreyFile is a building storey entry.
type StoreyFile struct {
	ID       int    `yaml:"id"`
	Name     string `yaml:"name"`
	Elements []int  `yaml:"elements"`
}

// Load reads a YAML model file and builds an in-memory model using the IFC4
// type schema.
func Load(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	return Parse(data, ifc.IFC4())
}

// Parse decodes YAML model data. Every validation problem is reported, not
// just the first.
func Parse(data []byte, schema *ifc.Schema) (*Memory, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	return f.Build(schema)
}

// Build validates the file and converts it to a model.
func (f *File) Build(schema *ifc.Schema) (*Memory, error) {
	var errs error
	fail := func(format string, args ...any) {
		errs = multierr.Append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidModel}, args...)...))
	}

	m := NewMemory(schema, f.OneMeter)
	if f.OneMeter < 0 {
		fail("one_meter must not be negative")
	}

	for _, s := range f.Styles {
		style := Style{ID: s.ID, Name: encoding.DecodeStepString(s.Name)}
		for _, c := range s.Colours {
			switch len(c) {
			case 3:
				style.Colours = append(style.Colours, ifc.Colour{Name: style.Name, R: c[0], G: c[1], B: c[2], A: 1})
			case 4:
				style.Colours = append(style.Colours, ifc.Colour{Name: style.Name, R: c[0], G: c[1], B: c[2], A: c[3]})
			default:
				fail("style #%d: colour needs 3 or 4 components, got %d", s.ID, len(c))
			}
		}
		m.AddStyle(style)
	}

	elements := make(map[int]bool, len(f.Elements))
	for _, e := range f.Elements {
		if elements[e.ID] {
			fail("element #%d: duplicate id", e.ID)
			continue
		}
		elements[e.ID] = true

		typeID, ok := schema.TypeID(e.Type)
		if !ok {
			fail("element #%d: unknown type %q", e.ID, e.Type)
		}
		globalID := e.GlobalID
		if globalID != "" {
			id, err := ifc.NormalizeGlobalID(globalID)
			if err != nil {
				fail("element #%d: %v", e.ID, err)
			}
			globalID = id
		}
		m.AddElement(Element{ID: e.ID, Name: encoding.DecodeStepString(e.Name), GlobalID: globalID, TypeID: typeID})
	}

	geometries := make(map[int]bool, len(f.Geometries))
	for _, g := range f.Geometries {
		if geometries[g.ID] {
			fail("geometry #%d: duplicate id", g.ID)
			continue
		}
		geometries[g.ID] = true

		kind, err := parseItemKind(g.ItemKind)
		if err != nil {
			fail("geometry #%d: %v", g.ID, err)
		}
		m.SetItemKind(g.Item, kind)

		format, err := parseFormat(g.Format)
		if err != nil {
			fail("geometry #%d: %v", g.ID, err)
			continue
		}

		payload, err := g.encode()
		if err != nil {
			fail("geometry #%d: %v", g.ID, err)
			continue
		}
		m.AddGeometry(ShapeGeometry{ID: g.ID, ItemID: g.Item, Format: format, Data: payload})
	}

	for i, s := range f.Shapes {
		if !elements[s.Element] {
			fail("shape %d: unknown element #%d", i, s.Element)
			continue
		}
		if !geometries[s.Geometry] {
			fail("shape %d: unknown geometry #%d", i, s.Geometry)
			continue
		}

		rep, err := ParseRepresentation(s.Representation)
		if err != nil {
			fail("shape %d: %v", i, err)
			continue
		}

		transform := math.Identity()
		if len(s.Transform) > 0 {
			var ok bool
			if transform, ok = math.FromSlice(s.Transform); !ok {
				fail("shape %d: transform needs 16 values, got %d", i, len(s.Transform))
				continue
			}
		}

		id := s.ID
		if id == 0 {
			id = i + 1
		}
		element, _ := m.Element(s.Element)
		m.AddShape(ShapeInstance{
			ID:              id,
			ElementID:       s.Element,
			ShapeGeometryID: s.Geometry,
			TypeID:          element.TypeID,
			StyleID:         s.Style,
			Transform:       transform,
			Representation:  rep,
		})
	}

	for _, s := range f.Storeys {
		for _, id := range s.Elements {
			if !elements[id] {
				fail("storey #%d: unknown element #%d", s.ID, id)
			}
		}
		m.AddStorey(Storey{ID: s.ID, Name: encoding.DecodeStepString(s.Name), Elements: append([]int(nil), s.Elements...)})
	}

	if errs != nil {
		return nil, errs
	}
	return m, nil
}

// encode converts the face lists to a binary triangulation payload.
func (g GeometryFile) encode() ([]byte, error) {
	t := &formats.Triangulation{
		Version:  formats.TriangulationVersion,
		Vertices: make([]math.Vec3, len(g.Vertices)),
	}
	for i, v := range g.Vertices {
		t.Vertices[i] = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	}

	for i, f := range g.Faces {
		face := formats.Face{Planar: f.Normal != nil}
		for _, tri := range f.Triangles {
			face.Indices = append(face.Indices, tri[0], tri[1], tri[2])
		}
		if face.Planar {
			face.Normals = []formats.PackedNormal{packNormal(*f.Normal)}
		} else {
			if len(f.Normals) != len(face.Indices) {
				return nil, fmt.Errorf("face %d: need a normal or one normal per corner", i)
			}
			for _, n := range f.Normals {
				face.Normals = append(face.Normals, packNormal(n))
			}
		}
		t.Faces = append(t.Faces, face)
	}

	return formats.EncodeTriangulation(t)
}

func packNormal(n [3]float64) formats.PackedNormal {
	return formats.PackNormal(math.Vec3{X: n[0], Y: n[1], Z: n[2]})
}

func parseItemKind(s string) (ItemKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "other":
		return ItemOther, nil
	case "face_based_surface_model":
		return ItemFaceBasedSurfaceModel, nil
	case "shell_based_surface_model":
		return ItemShellBasedSurfaceModel, nil
	default:
		return ItemOther, fmt.Errorf("unknown item kind %q", s)
	}
}

func parseFormat(s string) (GeometryFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "polyhedron":
		return FormatPolyhedron, nil
	case "polyhedron_text":
		return FormatPolyhedronText, nil
	default:
		return FormatUnknown, fmt.Errorf("unknown geometry format %q", s)
	}
}
