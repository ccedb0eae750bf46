package export

import (
	"fmt"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/bim2gltf/pkg/ifc"
	"github.com/Faultbox/bim2gltf/pkg/scene"
)

// newMaterial builds a base colour only PBR material. The black emissive
// factor and unit roughness are glTF defaults and are left out of the JSON.
func newMaterial(name string, c ifc.Colour) *gltf.Material {
	alpha := gltf.AlphaOpaque
	if c.Transparent() {
		alpha = gltf.AlphaBlend
	}
	rgba := c.RGBA()
	return &gltf.Material{
		Name: name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &rgba,
			MetallicFactor:  gltf.Float(0),
			RoughnessFactor: gltf.Float(1),
		},
		AlphaMode: alpha,
	}
}

// ColourKey identifies the material of a shape: its style when it has one,
// otherwise its negated type id.
func ColourKey(inst scene.ShapeInstance) int {
	if inst.StyleID > 0 {
		return inst.StyleID
	}
	return -int(inst.TypeID)
}

// Materials assigns material indices to shapes. It is used by a single
// pipeline stage and is not safe for concurrent use.
type Materials struct {
	model   scene.Model
	colours *ifc.ColourMap
	writer  *Writer
	byKey   map[int]int
}

// NewMaterials creates a resolver writing through w. A nil colour map uses
// ifc.DefaultColourMap.
func NewMaterials(model scene.Model, colours *ifc.ColourMap, w *Writer) *Materials {
	if colours == nil {
		colours = ifc.DefaultColourMap()
	}
	return &Materials{
		model:   model,
		colours: colours,
		writer:  w,
		byKey:   make(map[int]int),
	}
}

// RegisterStyles writes one material per style id, in order.
func (m *Materials) RegisterStyles(styleIDs []int) error {
	for _, id := range styleIDs {
		style, err := m.model.SurfaceStyle(id)
		if err != nil {
			return fmt.Errorf("register style #%d: %w", id, err)
		}

		colour := ifc.NeutralGray(style.Name)
		if len(style.Colours) > 0 {
			colour = style.Colours[0]
		}
		m.byKey[id] = m.writer.AddMaterial(style.Name, colour)
	}
	return nil
}

// Resolve returns the material of a shape, creating a type coloured one on
// first use of its key. The material's double sided flag is set from the
// shape's representation item.
func (m *Materials) Resolve(inst scene.ShapeInstance, geom *scene.ShapeGeometry) int {
	key := ColourKey(inst)
	idx, ok := m.byKey[key]
	if !ok {
		name := m.model.Schema().TypeName(inst.TypeID)
		idx = m.writer.AddMaterial(name, m.colours.Lookup(name))
		m.byKey[key] = idx
	}

	m.writer.SetDoubleSided(idx, m.model.ItemKind(geom.ItemID).DoubleSided())
	return idx
}
