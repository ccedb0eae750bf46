package export

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/bim2gltf/pkg/ifc"
	"github.com/Faultbox/bim2gltf/pkg/math"
	"github.com/Faultbox/bim2gltf/pkg/scene"
)

// shapeJob is a selected shape with its geometry and material.
type shapeJob struct {
	inst     scene.ShapeInstance
	geom     *scene.ShapeGeometry
	material int
}

// meshJob asks the mesh stage to add a geometry's primitive to a mesh.
type meshJob struct {
	geom     *scene.ShapeGeometry
	key      int
	mesh     int
	material int
}

// NodeExtras is the extras object of an element node.
type NodeExtras struct {
	GlobalID string `json:"globalId"`
	GUID     string `json:"guid,omitempty"`
}

// placement converts a shape placement to meters and applies the overall
// output transform.
func (b *Builder) placement(t math.Mat4) [16]float64 {
	t = t.WithTranslation(t.Translation().Div(b.oneMeter))
	return b.transform.Mul(t)
}

// elementNode returns the named node of an element, with extras if enabled.
func (b *Builder) elementNode(el scene.Element) *gltf.Node {
	node := &gltf.Node{Name: fmt.Sprintf("%s #%d", el.DisplayName(), el.ID)}
	if !b.opts.Extras || el.GlobalID == "" {
		return node
	}

	extras := &NodeExtras{GlobalID: el.GlobalID}
	if u, err := ifc.ExpandGlobalID(el.GlobalID); err == nil {
		extras.GUID = u.String()
	} else {
		b.log.Debug("global id not expandable", zap.Int("element", el.ID), zap.Error(err))
	}
	node.Extras = extras
	return node
}

// assembleMerged creates one mesh and node per element; every shape of the
// element becomes a primitive of that mesh. Shapes arrive sorted by element.
func (b *Builder) assembleMerged(w *Writer, in *Queue[shapeJob], out *Queue[meshJob]) error {
	var (
		current int
		started bool
		mesh    int
	)

	for {
		job, ok := in.Pop()
		if !ok {
			return nil
		}

		if !started || job.inst.ElementID != current {
			el, err := b.model.Element(job.inst.ElementID)
			if err != nil {
				return fmt.Errorf("shape #%d: %w", job.inst.ID, err)
			}

			mesh = w.AddMesh(fmt.Sprintf("Instance %d", job.inst.ElementID))
			node := b.elementNode(el)
			node.Matrix = b.placement(job.inst.Transform)
			node.Mesh = gltf.Index(mesh)
			w.AddNode(node)

			current, started = job.inst.ElementID, true
			b.stats.Elements++
		}

		out.Push(meshJob{geom: job.geom, key: job.geom.ID, mesh: mesh, material: job.material})
	}
}

// assembleHierarchy creates one mesh and sub-node per shape and groups the
// sub-nodes under one parent node per element.
func (b *Builder) assembleHierarchy(w *Writer, in *Queue[shapeJob], out *Queue[meshJob]) error {
	var (
		current   scene.Element
		currentID int
		started   bool
		children  []int
	)

	flush := func() {
		if len(children) == 0 {
			return
		}
		node := b.elementNode(current)
		node.Matrix = math.Identity()
		node.Children = children
		w.AddNode(node)
		children = nil
		b.stats.Elements++
	}

	for {
		job, ok := in.Pop()
		if !ok {
			break
		}

		if !started || job.inst.ElementID != currentID {
			flush()
			el, err := b.model.Element(job.inst.ElementID)
			if err != nil {
				return fmt.Errorf("shape #%d: %w", job.inst.ID, err)
			}
			current, currentID, started = el, job.inst.ElementID, true
		}

		key := b.selector.GroupingKey(job.inst, job.geom)
		mesh := w.AddMesh(fmt.Sprintf("Instance %d", job.inst.ElementID))
		sub := w.AddSubNode(&gltf.Node{
			Name:   fmt.Sprintf("Shape #%d", key),
			Matrix: b.placement(job.inst.Transform),
			Mesh:   gltf.Index(mesh),
		})
		children = append(children, sub)

		out.Push(meshJob{geom: job.geom, key: key, mesh: mesh, material: job.material})
	}

	flush()
	return nil
}
