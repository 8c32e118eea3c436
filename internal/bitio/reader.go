package bitio

// Reader extracts MSB-first bit fields from a byte slice.
//
// Whole bytes are loaded into a 32-bit register as needed; ReadBits peels
// fields off the high end of the buffered bits. Reading past the end of
// the buffer sets a sticky end-of-stream flag and yields zeros, so callers
// can check EOS once per logical unit instead of after every call.
type Reader struct {
	buf  []byte // input byte buffer
	pos  int    // next byte position in buf
	acc  uint32 // buffered bits, oldest in the high end of the low `fill` bits
	fill int    // number of valid bits in acc
	eos  bool   // set when a read requested more bits than remain
}

// NewReader creates a Reader over the given byte slice.
func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

// ReadBits reads the next nBits (0..24) from the stream, most significant
// bit first. Returns 0 and sets the EOS flag if fewer bits remain.
func (br *Reader) ReadBits(nBits int) uint32 {
	if br.eos || nBits <= 0 {
		return 0
	}
	for br.fill < nBits {
		if br.pos >= len(br.buf) {
			br.eos = true
			return 0
		}
		br.acc = br.acc<<8 | uint32(br.buf[br.pos])
		br.pos++
		br.fill += 8
	}
	br.fill -= nBits
	return (br.acc >> uint(br.fill)) & kBitMask[nBits]
}

// AlignByte discards buffered bits up to the next byte boundary. The
// dropped bits are the right-hand filler of a partially consumed byte.
func (br *Reader) AlignByte() {
	br.fill -= br.fill % 8
}

// SkipBytes advances past n bytes without interpreting them. The reader
// must be byte-aligned. Skipping beyond the end of the buffer is not an
// error by itself; the next ReadBits reports EOS.
func (br *Reader) SkipBytes(n int) {
	for n > 0 && br.fill >= 8 {
		br.fill -= 8
		n--
	}
	br.pos += n
	if br.pos > len(br.buf) {
		br.pos = len(br.buf)
		br.eos = true
	}
}

// EOS reports whether a read has run past the end of the buffer.
func (br *Reader) EOS() bool {
	return br.eos
}
