// Package export converts a tessellated building model into a glTF 2.0
// document.
//
// A build runs three stages concurrently: the producer selects shapes and
// resolves their materials, node assembly groups them into meshes and nodes,
// and the mesh stage decodes geometry and writes accessors. All document
// mutations go through a Writer.
package export

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/bim2gltf/internal/logger"
	"github.com/Faultbox/bim2gltf/pkg/ifc"
	"github.com/Faultbox/bim2gltf/pkg/math"
	"github.com/Faultbox/bim2gltf/pkg/scene"
)

// Construction errors.
var (
	ErrNilModel           = errors.New("model is nil")
	ErrEmptyGeometryStore = errors.New("geometry store is empty")
)

// Options controls a build.
type Options struct {
	// MergePrimitives puts all shapes of an element into one mesh on one
	// node. Otherwise each shape gets its own mesh and sub-node.
	MergePrimitives bool

	// Prevent8BitIndices forbids UNSIGNED_BYTE index accessors.
	Prevent8BitIndices bool

	// ExcludeTypes names types left out together with their subtypes.
	// Nil means DefaultExcludedTypes.
	ExcludeTypes []string

	// Filter excludes further shapes. Nil accepts all.
	Filter Filter

	// Elements, when not empty, lists the element ids to export. A shape of
	// an unlisted element is left out only if Filter also excludes it, or
	// if Filter is nil.
	Elements []int

	// Transform is applied to every element placement. Nil means identity.
	Transform *math.Mat4

	// Extras attaches the element GlobalId and GUID to element nodes.
	Extras bool

	// Colours gives type default colours. Nil means ifc.DefaultColourMap.
	Colours *ifc.ColourMap

	// Logger defaults to logger.Log.
	Logger *zap.Logger
}

// DefaultOptions returns hierarchy mode with 16 bit minimum indices.
func DefaultOptions() Options {
	return Options{Prevent8BitIndices: true}
}

// EffectiveFilter combines Elements and Filter into the filter a build
// applies.
func (o Options) EffectiveFilter() Filter {
	if len(o.Elements) == 0 {
		return o.Filter
	}
	return AllOf(OnlyElements(o.Elements...), o.Filter)
}

// Stats summarises a build.
type Stats struct {
	Shapes           int
	Selected         int
	Skipped          int
	Elements         int
	EmptyMeshes      int
	CacheHits        int
	SharedGeometries int
	Nodes            int
	Meshes           int
	Accessors        int
	Materials        int
}

// Builder converts a model. A Builder may be reused; builds must not overlap.
type Builder struct {
	model     scene.Model
	opts      Options
	log       *zap.Logger
	oneMeter  float64
	transform math.Mat4

	selector *Selector
	stats    Stats
}

// New validates the model and returns a builder for it.
func New(model scene.Model, opts Options) (*Builder, error) {
	if model == nil {
		return nil, ErrNilModel
	}
	store := model.GeometryStore()
	if store == nil || store.IsEmpty() {
		return nil, fmt.Errorf("%w: model has no tessellated shapes", ErrEmptyGeometryStore)
	}

	b := &Builder{
		model:     model,
		opts:      opts,
		log:       opts.Logger,
		oneMeter:  model.OneMeter(),
		transform: math.Identity(),
	}
	if b.log == nil {
		b.log = logger.Log
	}
	if b.oneMeter <= 0 {
		b.oneMeter = 1
	}
	if opts.Transform != nil {
		b.transform = *opts.Transform
	}
	return b, nil
}

// Stats returns the statistics of the last build.
func (b *Builder) Stats() Stats {
	return b.stats
}

// Build runs the pipeline and returns the document. The first stage error
// is returned after every stage has finished.
func (b *Builder) Build() (*gltf.Document, error) {
	start := time.Now()
	b.stats = Stats{}
	b.selector = NewSelector(b.model.Schema(), b.opts.ExcludeTypes, b.opts.EffectiveFilter(), b.log)

	w := NewWriter(!b.opts.Prevent8BitIndices)
	defer w.Close()

	materials := NewMaterials(b.model, b.opts.Colours, w)
	shapes := NewQueue[shapeJob]()
	meshes := NewQueue[meshJob]()

	var g errgroup.Group
	g.Go(func() error {
		defer shapes.Close()
		return b.stage("produce", func() error { return b.produce(materials, shapes) })
	})
	g.Go(func() error {
		defer meshes.Close()
		if b.opts.MergePrimitives {
			return b.stage("assemble merged", func() error { return b.assembleMerged(w, shapes, meshes) })
		}
		return b.stage("assemble hierarchy", func() error { return b.assembleHierarchy(w, shapes, meshes) })
	})
	g.Go(func() error {
		return b.stage("build meshes", func() error { return b.buildMeshes(w, meshes) })
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	doc := w.Document()
	b.stats.Nodes = len(doc.Nodes)
	b.stats.Meshes = len(doc.Meshes)
	b.stats.Accessors = len(doc.Accessors)
	b.stats.Materials = len(doc.Materials)

	b.log.Info("glTF build complete",
		zap.Int("shapes", b.stats.Selected),
		zap.Int("skipped", b.stats.Skipped),
		zap.Int("elements", b.stats.Elements),
		zap.Int("nodes", b.stats.Nodes),
		zap.Int("meshes", b.stats.Meshes),
		zap.Int("accessors", b.stats.Accessors),
		zap.Int("materials", b.stats.Materials),
		zap.Int("cacheHits", b.stats.CacheHits),
		zap.Int("shared", b.stats.SharedGeometries),
		zap.Duration("elapsed", time.Since(start)),
	)
	return doc, nil
}

func (b *Builder) stage(name string, run func() error) error {
	b.log.Debug("stage started", zap.String("stage", name))
	err := run()
	if err != nil {
		b.log.Debug("stage failed", zap.String("stage", name), zap.Error(err))
		return err
	}
	b.log.Debug("stage finished", zap.String("stage", name))
	return nil
}

// produce reads the geometry store and queues every selected shape, sorted
// by element. The reader is closed on every path.
func (b *Builder) produce(materials *Materials, out *Queue[shapeJob]) error {
	reader, err := b.model.GeometryStore().BeginRead()
	if err != nil {
		return fmt.Errorf("begin read: %w", err)
	}
	defer reader.Close()

	if err := materials.RegisterStyles(reader.StyleIDs()); err != nil {
		return err
	}

	all := reader.ShapeInstances()
	b.selector.Index(all)
	b.stats.Shapes = len(all)

	selected := make([]scene.ShapeInstance, 0, len(all))
	for _, inst := range all {
		if b.selector.Select(inst) {
			selected = append(selected, inst)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].ElementID < selected[j].ElementID
	})

	for _, inst := range selected {
		geom, err := reader.ShapeGeometry(inst.ShapeGeometryID)
		if err != nil {
			return fmt.Errorf("shape #%d: %w", inst.ID, err)
		}
		if geom.Format != scene.FormatPolyhedron {
			b.stats.Skipped++
			continue
		}

		material := materials.Resolve(inst, geom)
		out.Push(shapeJob{inst: inst, geom: geom, material: material})
		b.stats.Selected++
	}
	return nil
}

// buildMeshes decodes queued geometries and appends their primitives.
// Geometries referenced more than once are written once per key.
func (b *Builder) buildMeshes(w *Writer, in *Queue[meshJob]) error {
	cache := NewMeshCache()
	defer func() {
		b.stats.CacheHits, _ = cache.Stats()
		b.stats.SharedGeometries = cache.Len()
	}()

	for {
		job, ok := in.Pop()
		if !ok {
			return nil
		}

		shared := job.geom.RefCount > 1
		var (
			set    AccessorSet
			cached bool
		)
		if shared {
			set, cached = cache.Get(job.key)
		}

		if !cached {
			mesh, err := DecodeMesh(job.geom.Data, nil, b.oneMeter)
			if err != nil {
				return fmt.Errorf("geometry #%d: %w", job.geom.ID, err)
			}
			if mesh.IsEmpty() {
				b.stats.EmptyMeshes++
				continue
			}
			set = w.WriteMesh(mesh)
			if shared {
				cache.Put(job.key, set)
			}
		}

		w.AddPrimitive(job.mesh, set, job.material)
	}
}
