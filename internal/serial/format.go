package serial

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/DymOK93/GWM-Harman-VCE/internal/checksum"
)

var (
	ErrUnknownType = errors.New("unknown config type")
	ErrEmptyBlob   = errors.New("config blob has no checksum trailer")
)

const (
	TypeBinary = "binary"
	TypeText   = "text"
)

// Format converts between a configuration buffer and its on-disk form.
type Format interface {
	// Name is the value accepted by New.
	Name() string
	// IsBinary reports whether the on-disk form is raw bytes.
	IsBinary() bool
	// Ext is the file extension used for default paths.
	Ext() string
	Decode(data []byte) ([]byte, error)
	Encode(buf []byte) []byte
}

// New returns the format registered under name.
func New(name string) (Format, error) {
	switch name {
	case TypeBinary:
		return Binary{}, nil
	case TypeText:
		return Text{}, nil
	default:
		return nil, fmt.Errorf("%w %q (want %s or %s)", ErrUnknownType, name, TypeBinary, TypeText)
	}
}

// Binary is the raw form with a one byte checksum trailer.
type Binary struct{}

func (Binary) Name() string   { return TypeBinary }
func (Binary) IsBinary() bool { return true }
func (Binary) Ext() string    { return ".bin" }

// Decode strips the trailer. The trailer is not checked against the body;
// use Split and checksum.Verify for that.
func (Binary) Decode(data []byte) ([]byte, error) {
	body, _, err := Split(data)
	return body, err
}

// Encode appends a freshly computed trailer.
func (Binary) Encode(buf []byte) []byte {
	out := make([]byte, 0, len(buf)+checksum.Size)
	out = append(out, buf...)
	return append(out, checksum.Sum8(buf))
}

// Split separates a binary blob into body and stored trailer.
func Split(data []byte) ([]byte, byte, error) {
	if len(data) < checksum.Size {
		return nil, 0, ErrEmptyBlob
	}
	n := len(data) - checksum.Size
	body := make([]byte, n)
	copy(body, data[:n])
	return body, data[n], nil
}

// Text is lowercase hex without a checksum.
type Text struct{}

func (Text) Name() string   { return TypeText }
func (Text) IsBinary() bool { return false }
func (Text) Ext() string    { return ".txt" }

// Decode accepts upper or lower case hex; whitespace anywhere in the input
// is ignored, so "de ad\n" decodes like "dead".
func (Text) Decode(data []byte) ([]byte, error) {
	buf, err := hex.DecodeString(strings.Join(strings.Fields(string(data)), ""))
	if err != nil {
		return nil, fmt.Errorf("decode hex config: %w", err)
	}
	return buf, nil
}

func (Text) Encode(buf []byte) []byte {
	return []byte(hex.EncodeToString(buf))
}
