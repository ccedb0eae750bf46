package scene

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Faultbox/bim2gltf/pkg/ifc"
)

// Memory is a Model held entirely in memory. It is safe for concurrent use;
// readers see a snapshot taken by BeginRead.
type Memory struct {
	mu         sync.RWMutex
	schema     ifc.TypeResolver
	oneMeter   float64
	elements   map[int]Element
	styles     map[int]Style
	styleOrder []int
	geometries map[int]*ShapeGeometry
	itemKinds  map[int]ItemKind
	shapes     []ShapeInstance
	refs       map[int]int
	storeys    []Storey
	open       int
}

// NewMemory creates an empty model. A non-positive oneMeter defaults to 1.
func NewMemory(schema ifc.TypeResolver, oneMeter float64) *Memory {
	if oneMeter <= 0 {
		oneMeter = 1
	}
	return &Memory{
		schema:     schema,
		oneMeter:   oneMeter,
		elements:   make(map[int]Element),
		styles:     make(map[int]Style),
		geometries: make(map[int]*ShapeGeometry),
		itemKinds:  make(map[int]ItemKind),
		refs:       make(map[int]int),
	}
}

// AddElement registers or replaces an element.
func (m *Memory) AddElement(e Element) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.elements[e.ID] = e
}

// AddStyle registers a surface style. Styles enumerate in insertion order.
func (m *Memory) AddStyle(s Style) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.styles[s.ID]; !ok {
		m.styleOrder = append(m.styleOrder, s.ID)
	}
	m.styles[s.ID] = s
}

// AddGeometry registers a shape geometry. A zero RefCount is derived from
// the shapes referencing it.
func (m *Memory) AddGeometry(g ShapeGeometry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.geometries[g.ID] = &g
}

// SetItemKind records the kind of a representation item.
func (m *Memory) SetItemKind(itemID int, kind ItemKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.itemKinds[itemID] = kind
}

// AddShape appends a shape instance. Shapes enumerate in insertion order.
func (m *Memory) AddShape(s ShapeInstance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shapes = append(m.shapes, s)
	m.refs[s.ShapeGeometryID]++
}

// AddStorey appends a storey.
func (m *Memory) AddStorey(s Storey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeys = append(m.storeys, s)
}

// OpenReaders returns the number of read sessions not yet closed.
func (m *Memory) OpenReaders() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.open
}

// ElementIDs returns all element ids in ascending order.
func (m *Memory) ElementIDs() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]int, 0, len(m.elements))
	for id := range m.elements {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// GeometryStore implements Model.
func (m *Memory) GeometryStore() GeometryStore { return m }

// Schema implements Model.
func (m *Memory) Schema() ifc.TypeResolver { return m.schema }

// OneMeter implements Model.
func (m *Memory) OneMeter() float64 { return m.oneMeter }

// Element implements Model.
func (m *Memory) Element(id int) (Element, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.elements[id]
	if !ok {
		return Element{}, fmt.Errorf("%w: #%d", ErrElementNotFound, id)
	}
	return e, nil
}

// SurfaceStyle implements Model.
func (m *Memory) SurfaceStyle(id int) (Style, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.styles[id]
	if !ok {
		return Style{}, fmt.Errorf("%w: #%d", ErrStyleNotFound, id)
	}
	return s, nil
}

// ItemKind implements Model.
func (m *Memory) ItemKind(id int) ItemKind {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.itemKinds[id]
}

// Storeys implements StoreyLister.
func (m *Memory) Storeys() []Storey {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Storey(nil), m.storeys...)
}

// IsEmpty implements GeometryStore.
func (m *Memory) IsEmpty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.shapes) == 0 && len(m.geometries) == 0
}

// BeginRead implements GeometryStore.
func (m *Memory) BeginRead() (GeometryReader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	geoms := make(map[int]ShapeGeometry, len(m.geometries))
	for id, g := range m.geometries {
		snap := *g
		if snap.RefCount == 0 {
			snap.RefCount = m.refs[id]
		}
		geoms[id] = snap
	}

	m.open++
	return &memoryReader{
		owner:    m,
		styleIDs: append([]int(nil), m.styleOrder...),
		shapes:   append([]ShapeInstance(nil), m.shapes...),
		geoms:    geoms,
	}, nil
}

type memoryReader struct {
	owner    *Memory
	styleIDs []int
	shapes   []ShapeInstance
	geoms    map[int]ShapeGeometry
	once     sync.Once
	closed   bool
	mu       sync.Mutex
}

func (r *memoryReader) StyleIDs() []int { return r.styleIDs }

func (r *memoryReader) ShapeInstances() []ShapeInstance { return r.shapes }

func (r *memoryReader) ShapeGeometry(id int) (*ShapeGeometry, error) {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return nil, ErrReaderClosed
	}

	g, ok := r.geoms[id]
	if !ok {
		return nil, fmt.Errorf("%w: #%d", ErrGeometryNotFound, id)
	}
	return &g, nil
}

func (r *memoryReader) Close() error {
	r.once.Do(func() {
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()

		r.owner.mu.Lock()
		r.owner.open--
		r.owner.mu.Unlock()
	})
	return nil
}
