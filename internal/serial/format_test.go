package serial

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DymOK93/GWM-Harman-VCE/internal/checksum"
)

func TestNew(t *testing.T) {
	f, err := New("binary")
	require.NoError(t, err)
	assert.True(t, f.IsBinary())
	assert.Equal(t, ".bin", f.Ext())

	f, err = New("text")
	require.NoError(t, err)
	assert.False(t, f.IsBinary())
	assert.Equal(t, "text", f.Name())

	_, err = New("json")
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestBinaryEncodeAppendsChecksum(t *testing.T) {
	body := []byte("123456789")
	blob := Binary{}.Encode(body)
	require.Len(t, blob, len(body)+1)
	assert.Equal(t, byte(0xF4), blob[len(blob)-1])
	assert.Equal(t, []byte("123456789"), body, "input must not be modified")
}

func TestBinaryRoundTrip(t *testing.T) {
	body := []byte{0x0A, 0x01, 0x02, 0x03}
	blob := append(append([]byte(nil), body...), checksum.Sum8(body))

	decoded, err := Binary{}.Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, body, decoded)
	assert.Equal(t, blob, Binary{}.Encode(decoded))
}

func TestBinaryDecodeDoesNotVerify(t *testing.T) {
	blob := []byte{0x0A, 0x01, 0x02, 0x03, 0x00}
	decoded, err := Binary{}.Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0A, 0x01, 0x02, 0x03}, decoded)

	_, trailer, err := Split(blob)
	require.NoError(t, err)
	assert.False(t, checksum.Verify(decoded, trailer))

	_, err = Binary{}.Decode(nil)
	require.ErrorIs(t, err, ErrEmptyBlob)
}

func TestText(t *testing.T) {
	enc := Text{}.Encode([]byte{0xDE, 0xAD, 0x01})
	assert.Equal(t, "dead01", string(enc))

	dec, err := Text{}.Decode([]byte("DEAD01\n"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xDE, 0xAD, 0x01}, dec)

	_, err = Text{}.Decode([]byte("abc"))
	require.Error(t, err)
}

func TestTextDecodeIgnoresWhitespace(t *testing.T) {
	dec, err := Text{}.Decode([]byte("de ad\n\t01 FF\r\n"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xDE, 0xAD, 0x01, 0xFF}, dec)

	_, err = Text{}.Decode([]byte("de a"))
	require.Error(t, err)
}

func TestDefaultPaths(t *testing.T) {
	src, dst := DefaultPaths(Binary{}, "", "")
	assert.Equal(t, "VehicleConfig.bin", src)
	assert.Equal(t, "NewVehicleConfig.bin", dst)

	src, dst = DefaultPaths(Text{}, "", "out.txt")
	assert.Equal(t, "VehicleConfig.txt", src)
	assert.Equal(t, "out.txt", dst)
}

func TestReadWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "NewVehicleConfig.bin")
	body := []byte{0x0A, 0x01, 0x02, 0x03}

	require.NoError(t, Write(Binary{}, path, body))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0A, 0x01, 0x02, 0x03, 0xD4}, raw)

	got, err := Read(Binary{}, path)
	require.NoError(t, err)
	assert.Equal(t, body, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}
