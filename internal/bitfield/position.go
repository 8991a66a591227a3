package bitfield

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	ErrFormat          = errors.New("invalid position format")
	ErrRange           = errors.New("bit index out of range")
	ErrWidth           = errors.New("value width mismatch")
	ErrIndexOutOfRange = errors.New("byte index out of range")
	ErrInvalidBits     = errors.New("bit string must contain only 0 and 1")
)

// MaxBit is the index of the most significant bit in a byte.
const MaxBit = 7

var positionPattern = regexp.MustCompile(`^\[(\d+)\]\[(\d+):(\d+)\]`)

// Position addresses a bit range inside a single byte of a configuration
// buffer. The zero value addresses bit 0 of byte 0; any other value must be
// obtained from ParsePosition.
type Position struct {
	byteIdx int
	high    uint8
	low     uint8
}

// ParsePosition parses a descriptor of the form "[byte][high:low]".
func ParsePosition(s string) (Position, error) {
	m := positionPattern.FindStringSubmatch(s)
	if m == nil {
		return Position{}, fmt.Errorf("%w: %q", ErrFormat, s)
	}
	byteIdx, err := strconv.Atoi(m[1])
	if err != nil {
		return Position{}, fmt.Errorf("%w: byte index in %q: %v", ErrFormat, s, err)
	}
	high, err := parseBit("high", m[2])
	if err != nil {
		return Position{}, err
	}
	low, err := parseBit("low", m[3])
	if err != nil {
		return Position{}, err
	}
	if low > high {
		return Position{}, fmt.Errorf("%w: low bit %d should be less than high bit %d", ErrRange, low, high)
	}
	return Position{byteIdx: byteIdx, high: high, low: low}, nil
}

// MustParsePosition is like ParsePosition but panics on error. It is meant
// for constant descriptors in tests and tables.
func MustParsePosition(s string) Position {
	p, err := ParsePosition(s)
	if err != nil {
		panic(err)
	}
	return p
}

func parseBit(name, digits string) (uint8, error) {
	// Atoi on a long digit run overflows; report it as a range problem.
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 || n > MaxBit {
		return 0, fmt.Errorf("%w: %s bit %s should be in range [0...%d]", ErrRange, name, digits, MaxBit)
	}
	return uint8(n), nil
}

func (p Position) Byte() int   { return p.byteIdx }
func (p Position) High() uint8 { return p.high }
func (p Position) Low() uint8  { return p.low }

// Width is the number of bits covered by the position.
func (p Position) Width() int {
	return int(p.high) - int(p.low) + 1
}

// Mask returns the in-byte mask selecting the position's bits.
func (p Position) Mask() byte {
	return byte(uint(1)<<uint(p.Width())-1) << p.low
}

// CheckBounds reports ErrIndexOutOfRange when the position does not fit in a
// buffer of the given length.
func (p Position) CheckBounds(size int) error {
	if p.byteIdx >= size {
		return fmt.Errorf("%w: index %d, buffer size %d", ErrIndexOutOfRange, p.byteIdx, size)
	}
	return nil
}

func (p Position) String() string {
	return fmt.Sprintf("[%d][%d:%d]", p.byteIdx, p.high, p.low)
}
