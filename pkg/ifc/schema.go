// Package ifc provides the building-model metadata the exporter consumes:
// the product type hierarchy, default colours per type and GlobalId helpers.
package ifc

import (
	"sort"
	"strings"
)

// TypeID is the numeric identifier of an entity type.
type TypeID int16

// TypeResolver answers type hierarchy queries.
type TypeResolver interface {
	// ConcreteDescendants returns the ids of every non-abstract type that is
	// tag itself or derives from it. Unknown tags yield nil.
	ConcreteDescendants(tag string) []TypeID
	// TypeID returns the id registered for a type name.
	TypeID(name string) (TypeID, bool)
	// TypeName returns the canonical name of a type id, or "" when unknown.
	TypeName(id TypeID) string
}

// EntityType is one registered type.
type EntityType struct {
	ID       TypeID
	Name     string
	Super    string
	Abstract bool
}

// Schema is an in-memory type hierarchy. It is immutable after construction
// and safe for concurrent use.
type Schema struct {
	types    []EntityType
	byName   map[string]int
	byID     map[TypeID]int
	children map[string][]string
}

// NewSchema builds a schema from a type table. Types must be listed after
// their supertype; ids must be unique.
func NewSchema(types []EntityType) *Schema {
	s := &Schema{
		types:    append([]EntityType(nil), types...),
		byName:   make(map[string]int, len(types)),
		byID:     make(map[TypeID]int, len(types)),
		children: make(map[string][]string),
	}
	for i, t := range s.types {
		key := normalizeTag(t.Name)
		s.byName[key] = i
		s.byID[t.ID] = i
		if t.Super != "" {
			parent := normalizeTag(t.Super)
			s.children[parent] = append(s.children[parent], key)
		}
	}
	return s
}

// ConcreteDescendants implements TypeResolver.
func (s *Schema) ConcreteDescendants(tag string) []TypeID {
	root := normalizeTag(tag)
	if _, ok := s.byName[root]; !ok {
		return nil
	}

	var ids []TypeID
	stack := []string{root}
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		t := s.types[s.byName[name]]
		if !t.Abstract {
			ids = append(ids, t.ID)
		}
		stack = append(stack, s.children[name]...)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// TypeID implements TypeResolver.
func (s *Schema) TypeID(name string) (TypeID, bool) {
	i, ok := s.byName[normalizeTag(name)]
	if !ok {
		return 0, false
	}
	return s.types[i].ID, true
}

// TypeName implements TypeResolver.
func (s *Schema) TypeName(id TypeID) string {
	i, ok := s.byID[id]
	if !ok {
		return ""
	}
	return s.types[i].Name
}

// Supertypes returns the chain of supertypes of name, nearest first.
func (s *Schema) Supertypes(name string) []string {
	var chain []string
	i, ok := s.byName[normalizeTag(name)]
	for ok && s.types[i].Super != "" {
		chain = append(chain, s.types[i].Super)
		i, ok = s.byName[normalizeTag(s.types[i].Super)]
	}
	return chain
}

// normalizeTag accepts "IfcWall", "IFCWALL" and interface style "IIfcWall".
func normalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	if len(tag) > 4 && strings.HasPrefix(tag, "IIfc") {
		tag = tag[1:]
	}
	return strings.ToUpper(tag)
}
