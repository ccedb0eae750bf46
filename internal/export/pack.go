package export

import (
	"encoding/binary"
	"math"

	"github.com/qmuntal/gltf"
)

// packedIndices is an index list encoded at its narrowest legal width.
type packedIndices struct {
	data          []byte
	componentType gltf.ComponentType
	size          int
	count         int
	min, max      uint32
}

// packIndices picks the component type for an index list. The all-ones value
// of each width is the primitive restart value, hence the strict bounds: a
// maximum of exactly 255 or 65535 moves to the next width, one step earlier
// than a plain "fits in N bytes" rule.
func packIndices(indices []uint32, allow8Bit bool) packedIndices {
	p := packedIndices{count: len(indices), min: math.MaxUint32}
	for _, v := range indices {
		if v < p.min {
			p.min = v
		}
		if v > p.max {
			p.max = v
		}
	}
	if len(indices) == 0 {
		p.min = 0
	}

	switch {
	case allow8Bit && p.max < math.MaxUint8:
		p.componentType, p.size = gltf.ComponentUbyte, 1
		p.data = make([]byte, len(indices))
		for i, v := range indices {
			p.data[i] = byte(v)
		}
	case p.max < math.MaxUint16:
		p.componentType, p.size = gltf.ComponentUshort, 2
		p.data = make([]byte, 2*len(indices))
		for i, v := range indices {
			binary.LittleEndian.PutUint16(p.data[2*i:], uint16(v))
		}
	default:
		p.componentType, p.size = gltf.ComponentUint, 4
		p.data = make([]byte, 4*len(indices))
		for i, v := range indices {
			binary.LittleEndian.PutUint32(p.data[4*i:], v)
		}
	}
	return p
}

// packedVec3 is a float VEC3 attribute with per component bounds.
type packedVec3 struct {
	data     []byte
	count    int
	min, max [3]float32
}

func packVec3(values []float32) packedVec3 {
	p := packedVec3{
		data:  make([]byte, 4*len(values)),
		count: len(values) / 3,
		min:   [3]float32{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		max:   [3]float32{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
	for i, v := range values {
		k := i % 3
		if v < p.min[k] {
			p.min[k] = v
		}
		if v > p.max[k] {
			p.max[k] = v
		}
		binary.LittleEndian.PutUint32(p.data[4*i:], math.Float32bits(v))
	}
	return p
}

// alignTo returns n rounded up to a multiple of size.
func alignTo(n, size int) int {
	if size <= 1 {
		return n
	}
	if r := n % size; r != 0 {
		return n + size - r
	}
	return n
}
