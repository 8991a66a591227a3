package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const stampImage = "stamp"

// SaveSessionPDF renders the given session report into a PDF document.
func SaveSessionPDF(rep Session, out string) error {
	pdf, err := renderSessionPDF(rep)
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(out)
}

// WriteSessionPDF renders the report into buf.
func WriteSessionPDF(rep Session, buf *bytes.Buffer) error {
	pdf, err := renderSessionPDF(rep)
	if err != nil {
		return err
	}
	return pdf.Output(buf)
}

func renderSessionPDF(rep Session) (*gofpdf.Fpdf, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Vehicle Config Edit Report", false)
	pdf.SetAuthor("vcedit", false)
	pdf.SetCreator("vcedit", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	addPDFTitle(pdf, "Vehicle Config Edit Report")
	if err := addStamp(pdf, rep); err != nil {
		return nil, err
	}
	addSummarySection(pdf, rep)
	addChangesSection(pdf, rep.Changes)

	if pdf.Err() {
		return nil, pdf.Error()
	}
	return pdf, nil
}

func addPDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

// addStamp places the QR code in the top right corner when an output file
// was written.
func addStamp(pdf *gofpdf.Fpdf, rep Session) error {
	if rep.OutputSha256 == "" {
		return nil
	}
	png, err := StampQR(rep, 256)
	if err != nil {
		return err
	}
	opts := gofpdf.ImageOptions{ImageType: "png"}
	pdf.RegisterImageOptionsReader(stampImage, opts, bytes.NewReader(png))
	pageW, _ := pdf.GetPageSize()
	_, _, right, _ := pdf.GetMargins()
	pdf.ImageOptions(stampImage, pageW-right-30, 12, 30, 30, false, opts, 0, "")
	return nil
}

func addSummarySection(pdf *gofpdf.Fpdf, rep Session) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	items := []struct {
		label string
		value string
	}{
		{label: "Session", value: emptyFallback(rep.ID, "-")},
		{label: "Created", value: timeLabel(rep.CreatedAt)},
		{label: "Property map", value: emptyFallback(rep.MapPath, "-")},
		{label: "Source", value: emptyFallback(rep.Source, "-")},
		{label: "Destination", value: destinationLabel(rep)},
		{label: "Format", value: emptyFallback(rep.Format, "-")},
		{label: "Config size", value: strconv.Itoa(rep.ConfigSize) + " bytes"},
		{label: "Project code", value: strconv.Itoa(rep.ProjectCode)},
		{label: "Checksum", value: checksumLabel(rep.Checksum)},
		{label: "Output SHA-256", value: emptyFallback(rep.OutputSha256, "-")},
	}
	for _, item := range items {
		pdf.CellFormat(40, 6, item.label, "", 0, "L", false, 0, "")
		pdf.MultiCell(0, 6, item.value, "", "L", false)
	}
	pdf.Ln(4)
}

func addChangesSection(pdf *gofpdf.Fpdf, rows []ChangeRow) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Changes")
	pdf.Ln(9)

	if len(rows) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, "No properties changed; configuration validated only.", "", "L", false)
		return
	}

	headers := []string{"#", "Property", "Position", "Before", "After"}
	widths := []float64{10, 62, 34, 37, 37}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Courier", "", 9)
	lineHeight := 5.0
	for i, row := range rows {
		values := []string{
			strconv.Itoa(i + 1),
			row.Property,
			row.Position,
			row.Before,
			row.After,
		}
		renderTableRow(pdf, widths, values, lineHeight)
	}
	pdf.Ln(4)
}

func renderTableRow(pdf *gofpdf.Fpdf, widths []float64, values []string, lineHeight float64) {
	xStart := pdf.GetX()
	yStart := pdf.GetY()
	maxLines := 1
	splitCols := make([][]string, len(values))
	for i, val := range values {
		text := strings.TrimSpace(val)
		if text == "" {
			text = "-"
		}
		lines := pdf.SplitText(text, widths[i]-2)
		if len(lines) == 0 {
			lines = []string{""}
		}
		splitCols[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	rowHeight := float64(maxLines) * lineHeight
	x := xStart
	for i, lines := range splitCols {
		pdf.SetXY(x, yStart)
		pdf.MultiCell(widths[i], lineHeight, strings.Join(lines, "\n"), "1", "L", false)
		x += widths[i]
	}
	pdf.SetXY(xStart, yStart+rowHeight)
}

func destinationLabel(rep Session) string {
	if !rep.Written {
		return "not written (validation only)"
	}
	return emptyFallback(rep.Destination, "-")
}

func checksumLabel(sum *int) string {
	if sum == nil {
		return "-"
	}
	return fmt.Sprintf("0x%02X", *sum)
}

func timeLabel(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.UTC().Format(time.RFC3339)
}

func emptyFallback(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
