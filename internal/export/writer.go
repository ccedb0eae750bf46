package export

import (
	"sync"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/bim2gltf/pkg/ifc"
)

// Generator is written to the asset metadata of every document.
const Generator = "bim2gltf"

const (
	defaultMaterialName = "Default material"
	rootNodeName        = "Z_UP"
)

// zUpMatrix turns the Z-up model basis into glTF's Y-up basis.
var zUpMatrix = [16]float64{
	1, 0, 0, 0,
	0, 0, -1, 0,
	0, 1, 0, 0,
	0, 0, 0, 1,
}

// Writer accumulates the glTF document. A single goroutine owns the
// document; every method sends it a command and waits for the result, so
// Writer is safe for concurrent use. Packing of buffer bytes happens in the
// caller's goroutine.
type Writer struct {
	allow8Bit bool
	cmds      chan func(*assetState)
	done      chan struct{}
	closeOnce sync.Once
}

type assetState struct {
	nodes     []*gltf.Node
	topLevel  []int
	meshes    []*gltf.Mesh
	materials []*gltf.Material
	accessors []*gltf.Accessor
	indexBuf  []byte
	vertexBuf []byte
}

// NewWriter starts a writer holding the default material (index 0) and the
// Z_UP root node (index 0). allow8Bit permits UNSIGNED_BYTE index accessors.
func NewWriter(allow8Bit bool) *Writer {
	w := &Writer{
		allow8Bit: allow8Bit,
		cmds:      make(chan func(*assetState)),
		done:      make(chan struct{}),
	}

	s := &assetState{}
	s.materials = append(s.materials, newMaterial(defaultMaterialName, ifc.NeutralGray(defaultMaterialName)))
	s.nodes = append(s.nodes, &gltf.Node{Name: rootNodeName, Matrix: zUpMatrix})

	go w.run(s)
	return w
}

func (w *Writer) run(s *assetState) {
	defer close(w.done)
	for cmd := range w.cmds {
		cmd(s)
	}
}

// do runs fn on the owner goroutine and waits for it.
func (w *Writer) do(fn func(*assetState)) {
	ack := make(chan struct{})
	w.cmds <- func(s *assetState) {
		fn(s)
		close(ack)
	}
	<-ack
}

// Close stops the owner goroutine. The writer must not be used afterwards.
func (w *Writer) Close() {
	w.closeOnce.Do(func() {
		close(w.cmds)
		<-w.done
	})
}

// AddMaterial appends a material and returns its index.
func (w *Writer) AddMaterial(name string, c ifc.Colour) int {
	m := newMaterial(name, c)
	var idx int
	w.do(func(s *assetState) {
		s.materials = append(s.materials, m)
		idx = len(s.materials) - 1
	})
	return idx
}

// SetDoubleSided assigns the double sided flag of a material.
func (w *Writer) SetDoubleSided(material int, doubleSided bool) {
	w.do(func(s *assetState) {
		if material >= 0 && material < len(s.materials) {
			s.materials[material].DoubleSided = doubleSided
		}
	})
}

// AddMesh appends an empty mesh and returns its index.
func (w *Writer) AddMesh(name string) int {
	var idx int
	w.do(func(s *assetState) {
		s.meshes = append(s.meshes, &gltf.Mesh{Name: name})
		idx = len(s.meshes) - 1
	})
	return idx
}

// AddNode appends a node parented by the root node.
func (w *Writer) AddNode(node *gltf.Node) int {
	var idx int
	w.do(func(s *assetState) {
		s.nodes = append(s.nodes, node)
		idx = len(s.nodes) - 1
		s.topLevel = append(s.topLevel, idx)
	})
	return idx
}

// AddSubNode appends a node that another node will list as a child.
func (w *Writer) AddSubNode(node *gltf.Node) int {
	var idx int
	w.do(func(s *assetState) {
		s.nodes = append(s.nodes, node)
		idx = len(s.nodes) - 1
	})
	return idx
}

// AddPrimitive appends a triangle list primitive to a mesh.
func (w *Writer) AddPrimitive(mesh int, accessors AccessorSet, material int) {
	prim := &gltf.Primitive{
		Attributes: map[string]int{
			gltf.NORMAL:   accessors.Normals,
			gltf.POSITION: accessors.Positions,
		},
		Indices:  gltf.Index(accessors.Indices),
		Material: gltf.Index(material),
		Mode:     gltf.PrimitiveTriangles,
	}
	w.do(func(s *assetState) {
		if mesh >= 0 && mesh < len(s.meshes) {
			s.meshes[mesh].Primitives = append(s.meshes[mesh].Primitives, prim)
		}
	})
}

// WriteIndices packs an index list into the index region and returns the
// accessor index.
func (w *Writer) WriteIndices(indices []uint32) int {
	p := packIndices(indices, w.allow8Bit)

	var idx int
	w.do(func(s *assetState) {
		if padded := alignTo(len(s.indexBuf), p.size); padded > len(s.indexBuf) {
			s.indexBuf = append(s.indexBuf, make([]byte, padded-len(s.indexBuf))...)
		}
		offset := len(s.indexBuf)
		s.indexBuf = append(s.indexBuf, p.data...)
		s.accessors = append(s.accessors, &gltf.Accessor{
			BufferView:    gltf.Index(0),
			ByteOffset:    offset,
			ComponentType: p.componentType,
			Count:         p.count,
			Type:          gltf.AccessorScalar,
			Min:           []float64{float64(p.min)},
			Max:           []float64{float64(p.max)},
		})
		idx = len(s.accessors) - 1
	})
	return idx
}

// WriteVec3 packs flat xyz floats into the vertex region and returns the
// accessor index.
func (w *Writer) WriteVec3(values []float32) int {
	p := packVec3(values)

	var idx int
	w.do(func(s *assetState) {
		offset := len(s.vertexBuf)
		s.vertexBuf = append(s.vertexBuf, p.data...)
		s.accessors = append(s.accessors, &gltf.Accessor{
			BufferView:    gltf.Index(1),
			ByteOffset:    offset,
			ComponentType: gltf.ComponentFloat,
			Count:         p.count,
			Type:          gltf.AccessorVec3,
			Min:           widen(p.min),
			Max:           widen(p.max),
		})
		idx = len(s.accessors) - 1
	})
	return idx
}

// WriteMesh writes the three accessors of a decoded mesh.
func (w *Writer) WriteMesh(mesh MeshBuffers) AccessorSet {
	return AccessorSet{
		Indices:   w.WriteIndices(mesh.Indices),
		Normals:   w.WriteVec3(mesh.Normals),
		Positions: w.WriteVec3(mesh.Positions),
	}
}

// Document assembles the glTF document from everything written so far.
// Meshes that never received a primitive are left out together with the
// nodes that only existed to carry them. Without vertex data the document
// carries only its asset metadata.
func (w *Writer) Document() *gltf.Document {
	var doc *gltf.Document
	w.do(func(s *assetState) {
		doc = s.document()
	})
	return doc
}

func (s *assetState) document() *gltf.Document {
	doc := &gltf.Document{
		Asset: gltf.Asset{Generator: Generator, Version: "2.0"},
	}
	if len(s.vertexBuf) == 0 {
		return doc
	}

	vertexOffset := alignTo(len(s.indexBuf), 4)
	data := make([]byte, vertexOffset+len(s.vertexBuf))
	copy(data, s.indexBuf)
	copy(data[vertexOffset:], s.vertexBuf)

	nodes, meshes := s.prune()

	doc.Scene = gltf.Index(0)
	doc.Scenes = []*gltf.Scene{{Nodes: []int{0}}}
	doc.Nodes = nodes
	doc.Meshes = meshes
	doc.Materials = make([]*gltf.Material, len(s.materials))
	for i, m := range s.materials {
		c := *m
		doc.Materials[i] = &c
	}
	doc.Accessors = append([]*gltf.Accessor(nil), s.accessors...)
	doc.BufferViews = []*gltf.BufferView{
		{
			Buffer:     0,
			ByteOffset: 0,
			ByteLength: len(s.indexBuf),
			Target:     gltf.TargetElementArrayBuffer,
		},
		{
			Buffer:     0,
			ByteOffset: vertexOffset,
			ByteLength: len(s.vertexBuf),
			ByteStride: 12,
			Target:     gltf.TargetArrayBuffer,
		},
	}
	doc.Buffers = []*gltf.Buffer{{ByteLength: len(data), Data: data}}
	return doc
}

// prune copies the node and mesh lists without empty meshes. A node survives
// when its mesh has primitives or one of its children survives; the root
// always survives and lists the surviving top level nodes. Indices are
// renumbered in order.
func (s *assetState) prune() ([]*gltf.Node, []*gltf.Mesh) {
	meshIndex := make([]int, len(s.meshes))
	var meshes []*gltf.Mesh
	for i, m := range s.meshes {
		meshIndex[i] = -1
		if len(m.Primitives) == 0 {
			continue
		}
		meshIndex[i] = len(meshes)
		meshes = append(meshes, &gltf.Mesh{Name: m.Name, Primitives: append([]*gltf.Primitive(nil), m.Primitives...)})
	}

	keep := make([]int8, len(s.nodes)) // 0 unknown, 1 keep, -1 drop
	var visit func(i int) bool
	visit = func(i int) bool {
		if keep[i] != 0 {
			return keep[i] > 0
		}
		n := s.nodes[i]
		ok := n.Mesh != nil && meshIndex[*n.Mesh] >= 0
		for _, c := range n.Children {
			if visit(c) {
				ok = true
			}
		}
		keep[i] = -1
		if ok {
			keep[i] = 1
		}
		return ok
	}
	keep[0] = 1
	for i := 1; i < len(s.nodes); i++ {
		visit(i)
	}

	nodeIndex := make([]int, len(s.nodes))
	next := 0
	for i := range s.nodes {
		nodeIndex[i] = -1
		if keep[i] > 0 {
			nodeIndex[i] = next
			next++
		}
	}

	remap := func(children []int) []int {
		var out []int
		for _, c := range children {
			if nodeIndex[c] >= 0 {
				out = append(out, nodeIndex[c])
			}
		}
		return out
	}

	nodes := make([]*gltf.Node, 0, next)
	for i, n := range s.nodes {
		if keep[i] < 0 {
			continue
		}
		c := *n
		if n.Mesh != nil {
			c.Mesh = nil
			if mi := meshIndex[*n.Mesh]; mi >= 0 {
				c.Mesh = gltf.Index(mi)
			}
		}
		c.Children = remap(n.Children)
		if i == 0 {
			c.Children = remap(s.topLevel)
		}
		nodes = append(nodes, &c)
	}
	return nodes, meshes
}

func widen(v [3]float32) []float64 {
	return []float64{float64(v[0]), float64(v[1]), float64(v[2])}
}
