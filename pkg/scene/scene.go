// Package scene defines the tessellated building model the exporter reads:
// shape instances, shared shape geometry, elements, styles and storeys.
package scene

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/bim2gltf/pkg/ifc"
	"github.com/Faultbox/bim2gltf/pkg/math"
)

// Lookup errors.
var (
	ErrElementNotFound  = errors.New("element not found")
	ErrStyleNotFound    = errors.New("surface style not found")
	ErrGeometryNotFound = errors.New("shape geometry not found")
	ErrReaderClosed     = errors.New("geometry reader closed")
)

// RepresentationKind tells which variant of an element's geometry a shape
// instance carries.
type RepresentationKind int

const (
	RepresentationUnknown RepresentationKind = iota
	// RepresentationResolved is the final shape with openings and additions applied.
	RepresentationResolved
	// RepresentationExcluded is the body before openings and additions.
	RepresentationExcluded
	// RepresentationOpeningsAndAdditions is the opening or addition solid itself.
	RepresentationOpeningsAndAdditions
)

var representationNames = map[RepresentationKind]string{
	RepresentationUnknown:              "unknown",
	RepresentationResolved:             "resolved",
	RepresentationExcluded:             "excluded",
	RepresentationOpeningsAndAdditions: "openings_and_additions",
}

func (k RepresentationKind) String() string {
	if s, ok := representationNames[k]; ok {
		return s
	}
	return fmt.Sprintf("RepresentationKind(%d)", int(k))
}

// ParseRepresentation parses the names produced by String.
func ParseRepresentation(s string) (RepresentationKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RepresentationResolved, nil
	}
	for k, name := range representationNames {
		if name == s {
			return k, nil
		}
	}
	return RepresentationUnknown, fmt.Errorf("unknown representation %q", s)
}

// GeometryFormat identifies the encoding of a geometry payload.
type GeometryFormat int

const (
	FormatUnknown GeometryFormat = iota
	// FormatPolyhedron is the binary triangulation read by formats.DecodeTriangulation.
	FormatPolyhedron
	// FormatPolyhedronText is a textual polyhedron dump; the exporter skips it.
	FormatPolyhedronText
)

func (f GeometryFormat) String() string {
	switch f {
	case FormatPolyhedron:
		return "polyhedron"
	case FormatPolyhedronText:
		return "polyhedron_text"
	default:
		return "unknown"
	}
}

// ItemKind classifies the representation item a geometry came from.
type ItemKind int

const (
	ItemOther ItemKind = iota
	ItemFaceBasedSurfaceModel
	ItemShellBasedSurfaceModel
)

// DoubleSided reports whether surfaces of this kind have no inside.
func (k ItemKind) DoubleSided() bool {
	return k == ItemFaceBasedSurfaceModel || k == ItemShellBasedSurfaceModel
}

// ShapeInstance places a shared shape geometry in the model for one element.
type ShapeInstance struct {
	ID              int
	ElementID       int
	ShapeGeometryID int
	TypeID          ifc.TypeID
	StyleID         int
	Transform       math.Mat4
	Representation  RepresentationKind
}

// ShapeGeometry is a triangulated geometry shared by RefCount instances.
type ShapeGeometry struct {
	ID       int
	ItemID   int
	RefCount int
	Format   GeometryFormat
	Data     []byte
}

// Element is a building element owning shape instances.
type Element struct {
	ID       int
	Name     string
	GlobalID string
	TypeID   ifc.TypeID
}

// DisplayName returns the name used for scene nodes.
func (e Element) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return "Element"
}

// Style is a surface style with its colours in declaration order.
type Style struct {
	ID      int
	Name    string
	Colours []ifc.Colour
}

// Storey is a building storey and the elements it contains.
type Storey struct {
	ID       int
	Name     string
	Elements []int
}

// GeometryStore gives access to the tessellated shapes of a model.
type GeometryStore interface {
	IsEmpty() bool
	BeginRead() (GeometryReader, error)
}

// GeometryReader is a read session over a GeometryStore. The caller must
// Close it.
type GeometryReader interface {
	StyleIDs() []int
	ShapeInstances() []ShapeInstance
	ShapeGeometry(id int) (*ShapeGeometry, error)
	Close() error
}

// Model is the building model the exporter converts.
type Model interface {
	GeometryStore() GeometryStore
	Schema() ifc.TypeResolver
	Element(id int) (Element, error)
	SurfaceStyle(id int) (Style, error)
	ItemKind(id int) ItemKind
	OneMeter() float64
}

// StoreyLister is implemented by models that know their storeys.
type StoreyLister interface {
	Storeys() []Storey
}
