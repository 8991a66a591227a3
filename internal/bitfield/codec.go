package bitfield

import (
	"fmt"
	"strconv"
	"strings"
)

// Bits renders b as an 8 character bit string, bit 7 first.
func Bits(b byte) string {
	return fmt.Sprintf("%08b", b)
}

// span returns the [start, end) character range of pos inside Bits output.
// Bit index b maps to character 7-b.
func span(pos Position) (int, int) {
	return MaxBit - int(pos.high), MaxBit + 1 - int(pos.low)
}

// ReadBits returns the bits of pos as a string, most significant bit first.
func ReadBits(buf []byte, pos Position) (string, error) {
	if err := pos.CheckBounds(len(buf)); err != nil {
		return "", err
	}
	start, end := span(pos)
	return Bits(buf[pos.byteIdx])[start:end], nil
}

// ReadNumber returns the bits of pos as an unsigned integer.
func ReadNumber(buf []byte, pos Position) (uint8, error) {
	bits, err := ReadBits(buf, pos)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(bits, 2, 8)
	if err != nil {
		return 0, err
	}
	return uint8(n), nil
}

// WriteBits stores value into pos and returns the bits it replaced. The
// length of value must equal the width of pos.
func WriteBits(buf []byte, pos Position, value string) (string, error) {
	if len(value) != pos.Width() {
		return "", fmt.Errorf("%w: bit string length %d is not equal to expected %d", ErrWidth, len(value), pos.Width())
	}
	if !IsBitString(value) {
		return "", fmt.Errorf("%w: %q", ErrInvalidBits, value)
	}
	if err := pos.CheckBounds(len(buf)); err != nil {
		return "", err
	}
	start, end := span(pos)
	current := Bits(buf[pos.byteIdx])
	updated := current[:start] + value + current[end:]
	n, err := strconv.ParseUint(updated, 2, 8)
	if err != nil {
		return "", err
	}
	buf[pos.byteIdx] = byte(n)
	return current[start:end], nil
}

// WriteNumber stores value into pos, zero padded to the field width, and
// returns the value it replaced. Values wider than the field are rejected,
// never truncated.
func WriteNumber(buf []byte, pos Position, value uint) (uint8, error) {
	bits := strconv.FormatUint(uint64(value), 2)
	if len(bits) > pos.Width() {
		return 0, fmt.Errorf("%w: value %d needs %d bits, field %s holds %d", ErrWidth, value, len(bits), pos, pos.Width())
	}
	bits = strings.Repeat("0", pos.Width()-len(bits)) + bits
	prev, err := WriteBits(buf, pos, bits)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(prev, 2, 8)
	if err != nil {
		return 0, err
	}
	return uint8(n), nil
}

// IsBitString reports whether s is a non-empty run of '0' and '1'.
func IsBitString(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '0' && s[i] != '1' {
			return false
		}
	}
	return true
}
