package ifc

// DefaultColourName is the colour map entry used for unknown types.
const DefaultColourName = "Default"

// Colour is a named RGBA colour with components in [0, 1].
type Colour struct {
	Name       string
	R, G, B, A float32
}

// Transparent reports whether the colour has any transparency.
func (c Colour) Transparent() bool {
	return c.A < 1
}

// RGBA returns the components in the layout of a glTF colour factor.
func (c Colour) RGBA() [4]float64 {
	return [4]float64{float64(c.R), float64(c.G), float64(c.B), float64(c.A)}
}

// NeutralGray is the fallback colour for styles without a colour.
func NeutralGray(name string) Colour {
	return Colour{Name: name, R: 0.8, G: 0.8, B: 0.8, A: 1}
}

// ColourMap maps type names to default colours.
type ColourMap struct {
	colours map[string]Colour
}

// NewColourMap builds a colour map. The entry named DefaultColourName, if
// present, answers lookups for unknown types.
func NewColourMap(colours ...Colour) *ColourMap {
	cm := &ColourMap{colours: make(map[string]Colour, len(colours))}
	for _, c := range colours {
		cm.colours[normalizeTag(c.Name)] = c
	}
	return cm
}

// Lookup returns the colour for a type name, falling back to the default
// entry, then to neutral gray.
func (cm *ColourMap) Lookup(typeName string) Colour {
	if c, ok := cm.colours[normalizeTag(typeName)]; ok {
		return c
	}
	if c, ok := cm.colours[normalizeTag(DefaultColourName)]; ok {
		return c
	}
	return NeutralGray(DefaultColourName)
}

// DefaultColourMap returns the product type colour table.
func DefaultColourMap() *ColourMap {
	return NewColourMap(
		Colour{DefaultColourName, 0.98, 0.92, 0.74, 1},
		Colour{"IfcWall", 0.98, 0.92, 0.74, 1},
		Colour{"IfcWallStandardCase", 0.98, 0.92, 0.74, 1},
		Colour{"IfcRoof", 0.28, 0.24, 0.55, 1},
		Colour{"IfcBeam", 0.0, 0.0, 0.55, 1},
		Colour{"IfcBuildingElementProxy", 0.95, 0.94, 0.74, 1},
		Colour{"IfcColumn", 0.0, 0.0, 0.55, 1},
		Colour{"IfcSlab", 0.47, 0.53, 0.60, 1},
		Colour{"IfcWindow", 0.68, 0.85, 0.90, 0.5},
		Colour{"IfcCurtainWall", 0.68, 0.85, 0.90, 0.4},
		Colour{"IfcPlate", 0.68, 0.85, 0.90, 0.4},
		Colour{"IfcDoor", 0.97, 0.19, 0, 1},
		Colour{"IfcSpace", 0.68, 0.85, 0.90, 0.4},
		Colour{"IfcMember", 0.34, 0.34, 0.34, 1},
		Colour{"IfcDistributionElement", 0.0, 0.0, 0.55, 1},
		Colour{"IfcFurnishingElement", 1, 0, 0, 1},
		Colour{"IfcOpeningElement", 0.2, 0.2, 0.8, 0.2},
		Colour{"IfcFeatureElementSubtraction", 1.0, 1.0, 1.0, 0.0},
		Colour{"IfcFlowTerminal", 0.95, 0.94, 0.74, 1},
		Colour{"IfcFlowSegment", 0.95, 0.94, 0.74, 1},
		Colour{"IfcDistributionFlowElement", 0.95, 0.94, 0.74, 1},
		Colour{"IfcFlowFitting", 0.95, 0.94, 0.74, 1},
		Colour{"IfcRailing", 0.95, 0.94, 0.74, 1},
	)
}

// With returns a copy of the map with the given colours added or replaced.
func (cm *ColourMap) With(colours ...Colour) *ColourMap {
	out := &ColourMap{colours: make(map[string]Colour, len(cm.colours)+len(colours))}
	for k, c := range cm.colours {
		out.colours[k] = c
	}
	for _, c := range colours {
		out.colours[normalizeTag(c.Name)] = c
	}
	return out
}
