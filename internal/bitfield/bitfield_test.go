package bitfield

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		byteIdx int
		high    uint8
		low     uint8
		wantErr error
	}{
		{name: "middle range", in: "[2][5:3]", byteIdx: 2, high: 5, low: 3},
		{name: "whole byte", in: "[0][7:0]", byteIdx: 0, high: 7, low: 0},
		{name: "single bit", in: "[17][4:4]", byteIdx: 17, high: 4, low: 4},
		{name: "trailing text ignored", in: "[1][1:0] # flags", byteIdx: 1, high: 1, low: 0},
		{name: "reversed range", in: "[2][3:5]", wantErr: ErrRange},
		{name: "high bit too large", in: "[2][9:0]", wantErr: ErrRange},
		{name: "low bit too large", in: "[2][7:8]", wantErr: ErrRange},
		{name: "huge bit", in: "[0][99999999999999999999:0]", wantErr: ErrRange},
		{name: "missing bracket", in: "2][5:3]", wantErr: ErrFormat},
		{name: "negative index", in: "[-1][5:3]", wantErr: ErrFormat},
		{name: "no range", in: "[2][5]", wantErr: ErrFormat},
		{name: "empty", in: "", wantErr: ErrFormat},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParsePosition(tc.in)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.byteIdx, pos.Byte())
			assert.Equal(t, tc.high, pos.High())
			assert.Equal(t, tc.low, pos.Low())
		})
	}
}

func TestPositionEquality(t *testing.T) {
	assert.Equal(t, MustParsePosition("[2][5:3]"), MustParsePosition("[2][5:3]"))
	assert.NotEqual(t, MustParsePosition("[2][5:3]"), MustParsePosition("[2][5:2]"))
	assert.Equal(t, "[2][5:3]", MustParsePosition("[2][5:3]").String())
}

func TestMask(t *testing.T) {
	assert.Equal(t, byte(0xFF), MustParsePosition("[0][7:0]").Mask())
	assert.Equal(t, byte(0x38), MustParsePosition("[0][5:3]").Mask())
	assert.Equal(t, byte(0x01), MustParsePosition("[0][0:0]").Mask())
}

func TestReadBits(t *testing.T) {
	buf := []byte{0b10110010}
	tests := []struct {
		pos  string
		want string
	}{
		{pos: "[0][7:0]", want: "10110010"},
		{pos: "[0][3:0]", want: "0010"},
		{pos: "[0][7:4]", want: "1011"},
		{pos: "[0][1:1]", want: "1"},
		{pos: "[0][0:0]", want: "0"},
		{pos: "[0][5:3]", want: "110"},
	}
	for _, tc := range tests {
		t.Run(tc.pos, func(t *testing.T) {
			got, err := ReadBits(buf, MustParsePosition(tc.pos))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestReadNumber(t *testing.T) {
	buf := []byte{0x00, 0b10110010}
	n, err := ReadNumber(buf, MustParsePosition("[1][7:4]"))
	require.NoError(t, err)
	assert.Equal(t, uint8(11), n)

	_, err = ReadNumber(buf, MustParsePosition("[2][7:4]"))
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestWriteBits(t *testing.T) {
	buf := []byte{0x00, 0b10110010, 0xFF}
	prev, err := WriteBits(buf, MustParsePosition("[1][5:3]"), "001")
	require.NoError(t, err)
	assert.Equal(t, "110", prev)
	assert.Equal(t, []byte{0x00, 0b10001010, 0xFF}, buf)
}

func TestWriteBitsErrors(t *testing.T) {
	buf := []byte{0xA5}
	_, err := WriteBits(buf, MustParsePosition("[0][3:0]"), "101")
	require.ErrorIs(t, err, ErrWidth)
	_, err = WriteBits(buf, MustParsePosition("[0][2:0]"), "1x1")
	require.ErrorIs(t, err, ErrInvalidBits)
	_, err = WriteBits(buf, MustParsePosition("[1][2:0]"), "101")
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Equal(t, []byte{0xA5}, buf)
}

func TestWriteNumber(t *testing.T) {
	buf := []byte{0b11110000}
	prev, err := WriteNumber(buf, MustParsePosition("[0][5:2]"), 3)
	require.NoError(t, err)
	assert.Equal(t, uint8(0b1100), prev)
	assert.Equal(t, byte(0b11001100), buf[0])
}

func TestWriteNumberTooWide(t *testing.T) {
	buf := []byte{0x00}
	_, err := WriteNumber(buf, MustParsePosition("[0][3:0]"), 0x1F)
	require.ErrorIs(t, err, ErrWidth)
	assert.Equal(t, byte(0x00), buf[0])
}

// Every value that fits must survive a write/read cycle, every value that
// does not must be rejected, and bits outside the field must be preserved.
func TestNumberRoundTripAllPositions(t *testing.T) {
	for high := 0; high <= MaxBit; high++ {
		for low := 0; low <= high; low++ {
			pos := MustParsePosition(fmt.Sprintf("[1][%d:%d]", high, low))
			limit := uint(1) << pos.Width()
			for v := uint(0); v < 256; v++ {
				buf := []byte{0x5A, 0xC3, 0x3C}
				_, err := WriteNumber(buf, pos, v)
				if v >= limit {
					require.ErrorIs(t, err, ErrWidth, "pos %s value %d", pos, v)
					continue
				}
				require.NoError(t, err, "pos %s value %d", pos, v)
				got, err := ReadNumber(buf, pos)
				require.NoError(t, err)
				require.Equal(t, uint8(v), got, "pos %s", pos)
				require.Equal(t, byte(0xC3)&^pos.Mask(), buf[1]&^pos.Mask(), "pos %s leaked outside field", pos)
				require.Equal(t, byte(0x5A), buf[0])
				require.Equal(t, byte(0x3C), buf[2])
			}
		}
	}
}

func TestIsBitString(t *testing.T) {
	assert.True(t, IsBitString("0"))
	assert.True(t, IsBitString("10110"))
	assert.False(t, IsBitString(""))
	assert.False(t, IsBitString("102"))
	assert.False(t, IsBitString(" 1"))
}
