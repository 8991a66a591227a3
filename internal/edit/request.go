package edit

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/DymOK93/GWM-Harman-VCE/internal/bitfield"
)

var (
	ErrFormat         = errors.New("argument should be in format PROPERTY:BITSTRING or PROPERTY=DECVALUE or PROPERTY=HEXVALUE")
	ErrInvalidLiteral = errors.New("invalid literal")
	ErrProtectedField = errors.New("property cannot be changed")
)

// Kind tells how a request value was written.
type Kind int

const (
	KindBits Kind = iota
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindBits:
		return "bits"
	case KindNumber:
		return "number"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Request is a single parsed "name:bits" or "name=value" argument.
type Request struct {
	Name   string
	Kind   Kind
	Bits   string
	Number uint8
}

// Parse parses a command line edit token. The ':' form is tried before the
// '=' form and each splits at the first occurrence of its separator.
func Parse(token string) (Request, error) {
	if name, value, ok := strings.Cut(token, ":"); ok {
		if name == "" {
			return Request{}, fmt.Errorf("%w: %q has no property name", ErrFormat, token)
		}
		if !bitfield.IsBitString(value) {
			return Request{}, fmt.Errorf("%w: bitstring %q should contain only 0 and 1", ErrInvalidLiteral, value)
		}
		return Request{Name: name, Kind: KindBits, Bits: value}, nil
	}
	if name, value, ok := strings.Cut(token, "="); ok {
		if name == "" {
			return Request{}, fmt.Errorf("%w: %q has no property name", ErrFormat, token)
		}
		n, err := parseNumber(value)
		if err != nil {
			return Request{}, err
		}
		return Request{Name: name, Kind: KindNumber, Number: n}, nil
	}
	return Request{}, fmt.Errorf("%w: got %q", ErrFormat, token)
}

// parseNumber accepts decimal and prefixed (0x, 0o, 0b) literals that fit in
// a byte. A decimal literal with a leading zero ("010") is rejected rather
// than read as octal.
func parseNumber(s string) (uint8, error) {
	if hasLeadingZero(s) {
		return 0, fmt.Errorf("%w: number %q: leading zeros in decimal literal; use 0o prefix for octal", ErrInvalidLiteral, s)
	}
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: number %q: %v", ErrInvalidLiteral, s, errors.Unwrap(err))
	}
	if n < 0 || n > 255 {
		return 0, fmt.Errorf("%w: number %d should be in range [0...255]", ErrInvalidLiteral, n)
	}
	return uint8(n), nil
}

func hasLeadingZero(s string) bool {
	s = strings.TrimLeft(s, "+-")
	if len(s) < 2 || s[0] != '0' {
		return false
	}
	switch s[1] {
	case 'x', 'X', 'o', 'O', 'b', 'B':
		return false
	}
	return strings.Trim(s, "0_") != ""
}

// Value renders the requested value the way it was written.
func (r Request) Value() string {
	if r.Kind == KindBits {
		return r.Bits
	}
	return strconv.Itoa(int(r.Number))
}

func (r Request) String() string {
	if r.Kind == KindBits {
		return r.Name + ":" + r.Bits
	}
	return r.Name + "=" + r.Value()
}

// Change records one applied edit. Before and After are bit strings of the
// field width.
type Change struct {
	Name     string
	Position bitfield.Position
	Kind     Kind
	Before   string
	After    string
}

// OldValue renders the previous value in the request's notation.
func (c Change) OldValue() string {
	return c.render(c.Before)
}

// NewValue renders the written value in the request's notation.
func (c Change) NewValue() string {
	return c.render(c.After)
}

func (c Change) render(bits string) string {
	if c.Kind == KindBits {
		return bits
	}
	n, err := strconv.ParseUint(bits, 2, 8)
	if err != nil {
		return bits
	}
	return strconv.FormatUint(n, 10)
}

func (c Change) String() string {
	return fmt.Sprintf("Update property %s: %s -> %s", c.Name, c.OldValue(), c.NewValue())
}

// Apply writes the request into buf at pos.
func (r Request) Apply(buf []byte, pos bitfield.Position) (Change, error) {
	change := Change{Name: r.Name, Position: pos, Kind: r.Kind}
	var err error
	switch r.Kind {
	case KindBits:
		change.Before, err = bitfield.WriteBits(buf, pos, r.Bits)
	case KindNumber:
		var prev uint8
		prev, err = bitfield.WriteNumber(buf, pos, uint(r.Number))
		if err == nil {
			change.Before = padBits(prev, pos.Width())
		}
	default:
		err = fmt.Errorf("unknown request kind %v", r.Kind)
	}
	if err != nil {
		return Change{}, fmt.Errorf("property %s: %w", r.Name, err)
	}
	change.After, err = bitfield.ReadBits(buf, pos)
	if err != nil {
		return Change{}, err
	}
	return change, nil
}

func padBits(v uint8, width int) string {
	s := strconv.FormatUint(uint64(v), 2)
	return strings.Repeat("0", width-len(s)) + s
}
