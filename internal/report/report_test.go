package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DymOK93/GWM-Harman-VCE/internal/bitfield"
	"github.com/DymOK93/GWM-Harman-VCE/internal/edit"
)

func sampleSession() Session {
	sum := 0xD4
	return Session{
		ID:           "7d3c7e2a-0000-4000-8000-000000000001",
		CreatedAt:    time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
		MapPath:      "map.json",
		Source:       "VehicleConfig.bin",
		Destination:  "NewVehicleConfig.bin",
		Format:       "binary",
		ConfigSize:   4,
		ProjectCode:  10,
		Checksum:     &sum,
		OutputSha256: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		Written:      true,
		Changes: Rows([]edit.Change{{
			Name:     "BBB",
			Position: bitfield.MustParsePosition("[1][5:3]"),
			Kind:     edit.KindBits,
			Before:   "110",
			After:    "001",
		}}),
	}
}

func TestRows(t *testing.T) {
	rows := sampleSession().Changes
	require.Len(t, rows, 1)
	assert.Equal(t, ChangeRow{Property: "BBB", Position: "[1][5:3]", Before: "110", After: "001"}, rows[0])
}

func TestSessionJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	rep := sampleSession()
	require.NoError(t, SaveSessionJSON(rep, path))
	got, err := LoadSessionJSON(path)
	require.NoError(t, err)
	assert.Equal(t, rep.ID, got.ID)
	assert.Equal(t, rep.Changes, got.Changes)
	require.NotNil(t, got.Checksum)
	assert.Equal(t, 0xD4, *got.Checksum)
}

func TestStamp(t *testing.T) {
	rep := sampleSession()
	assert.Equal(t, "VCE;S=7d3c7e2a-0000-4000-8000-000000000001;H=BA7816BF8F01CFEA414140DE5DAE2223B00361A396177A9CB410FF61F20015AD;C=D4", Stamp(rep))

	png, err := StampQR(rep, 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	rep.OutputSha256 = ""
	_, err = StampQR(rep, 64)
	require.Error(t, err)
}

func TestSaveSessionPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, SaveSessionPDF(sampleSession(), path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestWriteSessionPDFValidationOnly(t *testing.T) {
	rep := sampleSession()
	rep.Written = false
	rep.OutputSha256 = ""
	rep.Checksum = nil
	rep.Changes = nil
	var buf bytes.Buffer
	require.NoError(t, WriteSessionPDF(rep, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}
