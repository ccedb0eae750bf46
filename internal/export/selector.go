package export

import (
	"go.uber.org/zap"

	"github.com/Faultbox/bim2gltf/pkg/ifc"
	"github.com/Faultbox/bim2gltf/pkg/scene"
)

// DefaultExcludedTypes are left out of every export unless the caller
// supplies its own list.
var DefaultExcludedTypes = []string{"IfcSpace", "IfcFeatureElement"}

// Filter decides whether a shape instance is left out. It returns true to
// exclude.
type Filter func(scene.ShapeInstance) bool

// AcceptAll is the Filter that excludes nothing.
func AcceptAll(scene.ShapeInstance) bool { return false }

// OnlyElements excludes every shape whose element is not listed.
func OnlyElements(ids ...int) Filter {
	keep := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	return func(inst scene.ShapeInstance) bool {
		_, ok := keep[inst.ElementID]
		return !ok
	}
}

// AnyOf excludes a shape when any of the filters excludes it. Nil filters
// are skipped.
func AnyOf(filters ...Filter) Filter {
	return func(inst scene.ShapeInstance) bool {
		for _, f := range filters {
			if f != nil && f(inst) {
				return true
			}
		}
		return false
	}
}

// AllOf excludes a shape only when every filter excludes it. Nil filters
// are skipped; with no filters nothing is excluded.
func AllOf(filters ...Filter) Filter {
	return func(inst scene.ShapeInstance) bool {
		seen := false
		for _, f := range filters {
			if f == nil {
				continue
			}
			if !f(inst) {
				return false
			}
			seen = true
		}
		return seen
	}
}

// ResolveExclusions expands type names into the set of concrete type ids they
// cover. Unknown names are ignored.
func ResolveExclusions(resolver ifc.TypeResolver, tags []string, log *zap.Logger) map[ifc.TypeID]struct{} {
	excluded := make(map[ifc.TypeID]struct{})
	for _, tag := range tags {
		ids := resolver.ConcreteDescendants(tag)
		if len(ids) == 0 {
			log.Debug("ignoring unknown excluded type", zap.String("type", tag))
			continue
		}
		for _, id := range ids {
			excluded[id] = struct{}{}
		}
	}
	return excluded
}

// Selector decides which shape instances are exported and how hierarchy
// mode keys their geometry.
type Selector struct {
	excluded map[ifc.TypeID]struct{}
	filter   Filter

	// first non resolved geometry per element, in enumeration order
	secondary map[int]int
}

// NewSelector builds a selector. A nil tags slice selects
// DefaultExcludedTypes; a nil filter accepts all.
func NewSelector(resolver ifc.TypeResolver, tags []string, filter Filter, log *zap.Logger) *Selector {
	if tags == nil {
		tags = DefaultExcludedTypes
	}
	if filter == nil {
		filter = AcceptAll
	}
	return &Selector{
		excluded:  ResolveExclusions(resolver, tags, log),
		filter:    filter,
		secondary: make(map[int]int),
	}
}

// Index records, per element, the geometry of the first shape whose
// representation is not the resolved one. Call it with the full enumeration
// before GroupingKey.
func (s *Selector) Index(shapes []scene.ShapeInstance) {
	for _, inst := range shapes {
		if inst.Representation == scene.RepresentationResolved {
			continue
		}
		if _, ok := s.secondary[inst.ElementID]; !ok {
			s.secondary[inst.ElementID] = inst.ShapeGeometryID
		}
	}
}

// Excluded reports whether a type id is excluded.
func (s *Selector) Excluded(id ifc.TypeID) bool {
	_, ok := s.excluded[id]
	return ok
}

// Select reports whether a shape instance is exported.
func (s *Selector) Select(inst scene.ShapeInstance) bool {
	if inst.Representation != scene.RepresentationResolved {
		return false
	}
	if s.Excluded(inst.TypeID) {
		return false
	}
	return !s.filter(inst)
}

// GroupingKey returns the key naming a shape's sub-node and its cache entry.
// A geometry id equal to the element id is replaced by the geometry of the
// element's first non resolved shape, when there is one.
func (s *Selector) GroupingKey(inst scene.ShapeInstance, geom *scene.ShapeGeometry) int {
	if geom.ID == inst.ElementID {
		if id, ok := s.secondary[inst.ElementID]; ok {
			return id
		}
	}
	return geom.ID
}
