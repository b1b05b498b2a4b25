package audio

import "sync"

// BufferPool reuses byte slices for frame payloads to keep allocation
// pressure down on hot audio paths.
type BufferPool struct {
	pool sync.Pool
}

// NewBufferPool creates a pool whose fresh buffers start at initialSize.
func NewBufferPool(initialSize int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				return make([]byte, initialSize)
			},
		},
	}
}

// Get retrieves a buffer of at least minSize bytes.
func (p *BufferPool) Get(minSize int) []byte {
	buf := p.pool.Get().([]byte)
	if cap(buf) < minSize {
		return make([]byte, minSize)
	}
	return buf[:minSize]
}

// Put returns a buffer to the pool.
func (p *BufferPool) Put(buf []byte) {
	p.pool.Put(buf[:cap(buf)])
}

var globalBufferPool = NewBufferPool(4096)

// GetBuffer gets a buffer from the shared pool.
func GetBuffer(size int) []byte {
	return globalBufferPool.Get(size)
}

// PutBuffer returns a buffer to the shared pool.
func PutBuffer(buf []byte) {
	globalBufferPool.Put(buf)
}
