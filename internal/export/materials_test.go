package export

import (
	"errors"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/bim2gltf/pkg/ifc"
	"github.com/Faultbox/bim2gltf/pkg/math"
	"github.com/Faultbox/bim2gltf/pkg/scene"
)

func TestColourKey(t *testing.T) {
	tests := []struct {
		style int
		typ   ifc.TypeID
		want  int
	}{
		{500, 12, 500},
		{0, 12, -12},
		{-1, 25, -25},
	}
	for _, tt := range tests {
		got := ColourKey(scene.ShapeInstance{StyleID: tt.style, TypeID: tt.typ})
		if got != tt.want {
			t.Errorf("ColourKey(style %d, type %d) = %d, want %d", tt.style, tt.typ, got, tt.want)
		}
	}
}

func TestMaterialsRegisterStyles(t *testing.T) {
	m := newHouse(t)
	w := NewWriter(false)
	defer w.Close()

	mats := NewMaterials(m, nil, w)
	if err := mats.RegisterStyles([]int{500, 501}); err != nil {
		t.Fatalf("RegisterStyles: %v", err)
	}
	if len(mats.byKey) != 2 {
		t.Errorf("registered keys = %d, want 2", len(mats.byKey))
	}

	w.WriteVec3([]float32{0, 0, 0})
	doc := w.Document()
	if len(doc.Materials) != 3 {
		t.Fatalf("len(Materials) = %d, want 3", len(doc.Materials))
	}
	if doc.Materials[1].Name != "Concrete" || doc.Materials[2].Name != "" {
		t.Errorf("material names = %q, %q", doc.Materials[1].Name, doc.Materials[2].Name)
	}
	if got := *doc.Materials[1].PBRMetallicRoughness.BaseColorFactor; got[0] != 0.5 || got[3] != 1 {
		t.Errorf("Concrete colour = %v", got)
	}
}

func TestMaterialsRegisterMissingStyle(t *testing.T) {
	w := NewWriter(false)
	defer w.Close()

	err := NewMaterials(newHouse(t), nil, w).RegisterStyles([]int{999})
	if !errors.Is(err, scene.ErrStyleNotFound) {
		t.Fatalf("err = %v, want ErrStyleNotFound", err)
	}
}

func TestMaterialsResolve(t *testing.T) {
	m := newHouse(t)
	w := NewWriter(false)
	defer w.Close()

	mats := NewMaterials(m, nil, w)
	if err := mats.RegisterStyles([]int{500}); err != nil {
		t.Fatalf("RegisterStyles: %v", err)
	}

	solid := &scene.ShapeGeometry{ID: 100, ItemID: 1100}
	surface := &scene.ShapeGeometry{ID: 101, ItemID: 1101}
	wall := typeID(t, "IfcWall")

	styled := mats.Resolve(shape(1, 20, 100, typeID(t, "IfcSlab"), 500, math.Identity()), solid)
	if styled != 1 {
		t.Errorf("styled material = %d, want 1", styled)
	}

	byType := mats.Resolve(shape(2, 10, 100, wall, 0, math.Identity()), solid)
	again := mats.Resolve(shape(3, 10, 100, wall, 0, math.Identity()), solid)
	if byType != 2 || again != 2 {
		t.Errorf("type materials = %d, %d, want 2, 2", byType, again)
	}

	w.WriteVec3([]float32{0, 0, 0})
	doc := w.Document()
	if doc.Materials[2].Name != "IfcWall" {
		t.Errorf("type material name = %q", doc.Materials[2].Name)
	}
	want := ifc.DefaultColourMap().Lookup("IfcWall").RGBA()
	if got := *doc.Materials[2].PBRMetallicRoughness.BaseColorFactor; got != want {
		t.Errorf("IfcWall colour = %v, want %v", got, want)
	}

	// the flag follows the last shape resolved to the material
	mats.Resolve(shape(4, 10, 101, wall, 0, math.Identity()), surface)
	if !w.Document().Materials[2].DoubleSided {
		t.Errorf("surface model did not make material double sided")
	}
	mats.Resolve(shape(5, 10, 100, wall, 0, math.Identity()), solid)
	if w.Document().Materials[2].DoubleSided {
		t.Errorf("solid shape left material double sided")
	}
}

func TestNewMaterialAlpha(t *testing.T) {
	opaque := newMaterial("a", ifc.Colour{R: 1, A: 1})
	blend := newMaterial("b", ifc.Colour{R: 1, A: 0.5})

	if opaque.AlphaMode != gltf.AlphaOpaque {
		t.Errorf("opaque alpha mode = %v", opaque.AlphaMode)
	}
	if blend.AlphaMode != gltf.AlphaBlend {
		t.Errorf("blend alpha mode = %v", blend.AlphaMode)
	}
	if blend.EmissiveFactor != [3]float64{} {
		t.Errorf("emissive = %v", blend.EmissiveFactor)
	}
}
