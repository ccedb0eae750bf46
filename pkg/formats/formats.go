// Package formats provides codecs for tessellated geometry payloads stored
// alongside building models: the polyhedron triangulation and its packed
// unit normals.
package formats
