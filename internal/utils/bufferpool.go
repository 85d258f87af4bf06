package utils

import (
	"io"
	"sync"

	"github.com/valyala/bytebufferpool"
)

// copyBufferSize is the chunk size used when streaming sources through a pooled buffer
const copyBufferSize = 32 * 1024

// BufferPool provides pooled byte buffers for reading sources
// Uses bytebufferpool for automatic size-class management and anti-fragmentation
type BufferPool struct {
	pool *bytebufferpool.Pool
}

var (
	globalPool     *BufferPool
	globalPoolOnce sync.Once
)

// NewBufferPool creates a new buffer pool
func NewBufferPool() *BufferPool {
	return &BufferPool{
		pool: &bytebufferpool.Pool{},
	}
}

// Get retrieves a buffer from the pool
func (bp *BufferPool) Get() *bytebufferpool.ByteBuffer {
	return bp.pool.Get()
}

// Put returns a buffer to the pool
func (bp *BufferPool) Put(buf *bytebufferpool.ByteBuffer) {
	bp.pool.Put(buf)
}

// Copy streams src into dst through a pooled chunk buffer.
// WriterTo and ReaderFrom are hidden so the copy always goes through the pooled buffer.
func (bp *BufferPool) Copy(dst io.Writer, src io.Reader) (int64, error) {
	buf := bp.Get()
	defer bp.Put(buf)

	if cap(buf.B) < copyBufferSize {
		buf.B = make([]byte, copyBufferSize)
	}
	return io.CopyBuffer(writerOnly{dst}, readerOnly{src}, buf.B[:copyBufferSize])
}

type readerOnly struct{ io.Reader }

type writerOnly struct{ io.Writer }

// Global returns the global buffer pool instance
func Global() *BufferPool {
	globalPoolOnce.Do(func() {
		globalPool = NewBufferPool()
	})
	return globalPool
}

// Copy is a convenience function that uses the global pool
func Copy(dst io.Writer, src io.Reader) (int64, error) {
	return Global().Copy(dst, src)
}
