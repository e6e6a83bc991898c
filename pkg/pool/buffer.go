package pool

import (
	"bytes"
	"sync"
)

// BufferPool manages a pool of byte buffers used to stage records
// before they are framed and handed to a sink.
type BufferPool struct {
	size        int       // Initial capacity of new buffers.
	maxRetained int       // Buffers that grew beyond this are dropped.
	pool        sync.Pool // Thread-safe pool of buffers.
}

// Creates a new buffer pool. New buffers start with size bytes of capacity;
// buffers that grew past maxRetained are left to the garbage collector so a
// single huge response does not pin memory forever.
func NewBufferPool(size, maxRetained int) *BufferPool {
	if maxRetained < size {
		maxRetained = size
	}

	return &BufferPool{
		size:        size,
		maxRetained: maxRetained,
		pool: sync.Pool{
			New: func() any {
				return bytes.NewBuffer(make([]byte, 0, size))
			},
		},
	}
}

// Retrieves an empty buffer from the pool.
func (bp *BufferPool) Get() *bytes.Buffer {
	buf := bp.pool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// Returns a buffer to the pool.
func (bp *BufferPool) Put(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > bp.maxRetained {
		return
	}

	buf.Reset()
	bp.pool.Put(buf)
}
