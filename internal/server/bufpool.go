package server

import "sync"

// BytePool is a pool of reusable []byte encode buffers.
// Reduces GC pressure on the per-packet send path.
type BytePool struct {
	pool sync.Pool
}

// NewBytePool creates a pool whose fresh slices have the given capacity.
func NewBytePool(defaultCap int) *BytePool {
	p := &BytePool{}
	p.pool.New = func() any {
		return make([]byte, 0, defaultCap)
	}
	return p
}

// Get returns a zero-length slice, reusing a pooled allocation when possible.
func (p *BytePool) Get() []byte {
	return p.pool.Get().([]byte)[:0]
}

// Put returns a slice to the pool for reuse.
func (p *BytePool) Put(b []byte) {
	if b == nil {
		return
	}
	p.pool.Put(b[:0])
}
