package report

import (
	"errors"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// Stamp is the compact text encoded into the report QR code, e.g.
// "VCE;S=<session>;H=<sha256>;C=<checksum>".
func Stamp(rep Session) string {
	parts := []string{"VCE"}
	if rep.ID != "" {
		parts = append(parts, "S="+rep.ID)
	}
	if rep.OutputSha256 != "" {
		parts = append(parts, "H="+strings.ToUpper(rep.OutputSha256))
	}
	if rep.Checksum != nil {
		parts = append(parts, fmt.Sprintf("C=%02X", *rep.Checksum))
	}
	return strings.Join(parts, ";")
}

// StampQR renders Stamp(rep) as a PNG. Reports without a written output have
// nothing to stamp.
func StampQR(rep Session, size int) ([]byte, error) {
	if rep.OutputSha256 == "" {
		return nil, errors.New("report has no output hash")
	}
	if size <= 0 {
		size = 128
	}
	return qrcode.Encode(Stamp(rep), qrcode.Medium, size)
}
