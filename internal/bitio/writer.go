// Package bitio provides accumulator-based bit readers and writers for the
// BMP indexed pixel layout. Bit fields are packed most-significant-bit first
// within each byte, the order the format stores sub-byte palette indices in.
package bitio

// maxBitsPerOp is the maximum number of bits a single WriteBits or
// ReadBits call can handle.
const maxBitsPerOp = 24

// kBitMask[n] has the low n bits set.
var kBitMask = [maxBitsPerOp + 1]uint32{
	0x000000, 0x000001, 0x000003, 0x000007,
	0x00000f, 0x00001f, 0x00003f, 0x00007f,
	0x0000ff, 0x0001ff, 0x0003ff, 0x0007ff,
	0x000fff, 0x001fff, 0x003fff, 0x007fff,
	0x00ffff, 0x01ffff, 0x03ffff, 0x07ffff,
	0x0fffff, 0x1fffff, 0x3fffff, 0x7fffff,
	0xffffff,
}

// Writer accumulates bit fields MSB-first and emits whole bytes into an
// in-memory buffer.
//
// Bits are shifted into the low end of a 64-bit register; whenever eight or
// more bits are buffered, the oldest eight are flushed as the next output
// byte. A partial byte stays in the register until AlignByte or Finish
// pads it with zero bits on the right.
type Writer struct {
	bits uint64 // bit accumulator, newest bits in the low end
	used int    // number of bits buffered in the accumulator
	buf  []byte // output buffer
	cur  int    // current write position in buf
}

// NewWriter creates a Writer pre-allocated for expectedSize output bytes.
func NewWriter(expectedSize int) *Writer {
	if expectedSize < 64 {
		expectedSize = 64
	}
	return &Writer{
		buf: make([]byte, expectedSize),
	}
}

// WriteBits appends the low nBits of v to the stream, most significant
// bit first. nBits must be in [0, 24].
func (bw *Writer) WriteBits(v uint32, nBits int) {
	if nBits <= 0 {
		return
	}
	bw.bits = bw.bits<<uint(nBits) | uint64(v&kBitMask[nBits])
	bw.used += nBits
	for bw.used >= 8 {
		bw.used -= 8
		bw.grow(1)
		bw.buf[bw.cur] = byte(bw.bits >> uint(bw.used))
		bw.cur++
	}
}

// AlignByte pads any partial byte with zero bits on the right and flushes
// it, leaving the writer on a byte boundary. A no-op when already aligned.
func (bw *Writer) AlignByte() {
	if bw.used > 0 {
		bw.WriteBits(0, 8-bw.used)
	}
}

// WriteZeroBytes appends n zero bytes. The writer must be byte-aligned.
func (bw *Writer) WriteZeroBytes(n int) {
	bw.grow(n)
	for i := 0; i < n; i++ {
		bw.buf[bw.cur] = 0
		bw.cur++
	}
}

// BitsBuffered returns the number of bits pending in the accumulator,
// i.e. how far past the last byte boundary the stream currently is.
func (bw *Writer) BitsBuffered() int {
	return bw.used
}

// NumBytes returns the number of complete output bytes written so far,
// excluding any partial byte in the accumulator.
func (bw *Writer) NumBytes() int {
	return bw.cur
}

// Finish byte-aligns the stream and returns the complete output buffer.
func (bw *Writer) Finish() []byte {
	bw.AlignByte()
	return bw.buf[:bw.cur]
}

// grow ensures at least n bytes of capacity remain at bw.cur.
func (bw *Writer) grow(n int) {
	if bw.cur+n <= len(bw.buf) {
		return
	}
	newSize := len(bw.buf) * 3 / 2
	need := bw.cur + n
	if newSize < need {
		newSize = need
	}
	tmp := make([]byte, newSize)
	copy(tmp, bw.buf[:bw.cur])
	bw.buf = tmp
}
