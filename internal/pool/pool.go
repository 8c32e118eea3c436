// Package pool provides bucketed sync.Pool instances for the transient
// buffers the codec needs per call: the one-byte-per-pixel index buffer
// used while flipping bottom-up rows, and header/color-table scratch.
// Buffers are organized by size class to minimize waste.
package pool

import "sync"

// Size classes. Header scratch fits in the smallest class; index buffers
// scale with the pixel count, from icon-sized images up to megapixel ones.
const (
	Size2K  = 2048
	Size64K = 65536
	Size1M  = 1048576
	Size16M = 16777216
)

var sizes = [4]int{Size2K, Size64K, Size1M, Size16M}

// bucketIndex returns the pool index for a given size.
func bucketIndex(size int) int {
	switch {
	case size <= Size2K:
		return 0
	case size <= Size64K:
		return 1
	case size <= Size1M:
		return 2
	default:
		return 3
	}
}

var pools [4]sync.Pool

func init() {
	for i := range pools {
		sz := sizes[i]
		pools[i] = sync.Pool{
			New: func() any {
				b := make([]byte, sz)
				return &b
			},
		}
	}
}

// Get returns a byte slice of at least the requested size from the pool.
// The returned slice has length == size and may have a larger capacity.
// The caller must call Put when done.
func Get(size int) []byte {
	idx := bucketIndex(size)
	bp := pools[idx].Get().(*[]byte)
	b := *bp
	if cap(b) < size {
		b = make([]byte, size)
		*bp = b
		return b
	}
	return b[:size]
}

// Put returns a byte slice to the pool. The slice must have been obtained
// from Get. Slices smaller than Size2K are not pooled.
func Put(b []byte) {
	c := cap(b)
	if c < Size2K {
		return
	}
	idx := bucketIndex(c)
	b = b[:c]
	pools[idx].Put(&b)
}
