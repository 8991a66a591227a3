package checksum

import "hash"

const (
	// Polynomial is x^8+x^2+x+1 (0x107) shifted left by 7 inside a 16 bit
	// register; the doubling after the XOR moves it into the high byte.
	Polynomial = 0x8380

	topBit = 0x8000
	// Size is the length of the serialized checksum trailer.
	Size = 1
)

// Compute returns the configuration checksum of data. The register is never
// masked during the loop: the XOR always clears the top bit before the
// doubling, so it stays within 16 bits for any input length.
func Compute(data []byte) uint32 {
	var crc uint32
	for _, b := range data {
		crc = step(crc, b)
	}
	return (crc >> 8) & 0xFFFFFF
}

// Sum8 returns the checksum truncated to the single trailer byte.
func Sum8(data []byte) byte {
	return byte(Compute(data))
}

// Verify reports whether trailer matches the checksum of data.
func Verify(data []byte, trailer byte) bool {
	return Sum8(data) == trailer
}

func step(crc uint32, b byte) uint32 {
	crc ^= uint32(b) << 8
	for i := 0; i < 8; i++ {
		if crc&topBit != 0 {
			crc ^= Polynomial
		}
		crc *= 2
	}
	return crc
}

// Hash is a streaming form of Compute implementing hash.Hash.
type Hash struct {
	crc uint32
}

var _ hash.Hash = (*Hash)(nil)

// New returns a Hash with an empty register.
func New() *Hash {
	return &Hash{}
}

func (h *Hash) Write(p []byte) (int, error) {
	for _, b := range p {
		h.crc = step(h.crc, b)
	}
	return len(p), nil
}

// Sum appends the one byte checksum to b.
func (h *Hash) Sum(b []byte) []byte {
	return append(b, h.Sum8())
}

func (h *Hash) Sum8() byte {
	return byte((h.crc >> 8) & 0xFFFFFF)
}

func (h *Hash) Reset()         { h.crc = 0 }
func (h *Hash) Size() int      { return Size }
func (h *Hash) BlockSize() int { return 1 }
