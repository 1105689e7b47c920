package nodes

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"math"
)

// hasher accumulates a 64-bit FNV-1a hash over the semantic fields of a node.
// Each hash starts with the node kind so that different variants with the
// same field values do not collide trivially.
type hasher struct {
	h   hash.Hash64
	buf [8]byte
}

func newHasher(kind string) *hasher {
	h := &hasher{h: fnv.New64a()}
	return h.str(kind)
}

func (h *hasher) u64(v uint64) *hasher {
	binary.BigEndian.PutUint64(h.buf[:], v)
	_, _ = h.h.Write(h.buf[:])
	return h
}

// str writes a length prefix first so that ("ab","c") and ("a","bc") differ.
func (h *hasher) str(s string) *hasher {
	h.u64(uint64(len(s)))
	_, _ = h.h.Write([]byte(s))
	return h
}

func (h *hasher) boolean(b bool) *hasher {
	if b {
		return h.u64(1)
	}
	return h.u64(0)
}

func (h *hasher) float(f float64) *hasher {
	return h.u64(math.Float64bits(f))
}

// node hashes an optional child. Absent children hash as a fixed marker.
func (h *hasher) node(n Node) *hasher {
	if n == nil {
		return h.u64(0)
	}
	return h.u64(1).u64(n.Hash())
}

func hashSlice[T Node](h *hasher, items []T) *hasher {
	h.u64(uint64(len(items)))
	for _, it := range items {
		h.u64(it.Hash())
	}
	return h
}

func (h *hasher) sum() uint64 { return h.h.Sum64() }
