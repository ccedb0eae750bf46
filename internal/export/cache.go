package export

import "sync"

// AccessorSet is the accessors written for one decoded geometry.
type AccessorSet struct {
	Indices   int
	Normals   int
	Positions int
}

// MeshCache remembers accessors of geometries shared by several shape
// instances so their bytes are written once.
type MeshCache struct {
	entries map[int]AccessorSet
	mu      sync.Mutex

	hits   int
	misses int
}

// NewMeshCache creates an empty cache.
func NewMeshCache() *MeshCache {
	return &MeshCache{
		entries: make(map[int]AccessorSet),
	}
}

// Get returns the accessors stored under key.
func (c *MeshCache) Get(key int) (AccessorSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	set, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return set, ok
}

// Put stores accessors under key.
func (c *MeshCache) Put(key int, set AccessorSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = set
}

// Len returns the number of cached geometries.
func (c *MeshCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns lookup statistics.
func (c *MeshCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
