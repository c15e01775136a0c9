// Package report renders settlement data and raw relation snapshots into
// downloadable files.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"reseller_hub/internal/settlement"
)

const (
	DocumentTitle    = "Settlement & Profit Report"
	DocumentMIMEType = "application/pdf"

	dateLayout      = "2006-01-02"
	generatedLayout = "2006-01-02 15:04:05"
)

var documentHeader = []string{"Date", "Reseller", "Order ID", "Commission", "Status"}

// column widths in mm, summing to the A4 printable width
var documentWidths = []float64{30, 52, 40, 38, 22}

// DocumentFileName is the download name of the settlement document for the
// week starting at weekStart.
func DocumentFileName(weekStart time.Time) string {
	return fmt.Sprintf("Payout_Summary_%s.pdf", weekStart.Format(dateLayout))
}

// DocumentRows returns the table body of the settlement document, one row
// per order in summary order.
func DocumentRows(s settlement.Summary) [][]string {
	rows := make([][]string, 0, len(s.Orders))
	for i := range s.Orders {
		o := &s.Orders[i]
		reseller := o.ResellerName()
		if reseller == "" {
			reseller = "N/A"
		}
		status := "PENDING"
		if o.IsPaid {
			status = "SETTLED"
		}
		rows = append(rows, []string{
			o.Date.Format(dateLayout),
			reseller,
			o.OrderID,
			"Rs. " + o.CommissionAmount.StringFixed(2),
			status,
		})
	}
	return rows
}

// WriteDocument renders the settlement document as a PDF. The header carries
// the summary's week boundary, never a freshly computed one.
func WriteDocument(w io.Writer, s settlement.Summary, generated time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(DocumentTitle, true)
	pdf.SetMargins(14, 14, 14)
	pdf.SetAutoPageBreak(true, 14)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, DocumentTitle, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Week Beginning: %s | Generated: %s",
		s.WeekStart.Format(dateLayout), generated.Format(generatedLayout)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	writeHead := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(15, 23, 42)
		pdf.SetTextColor(255, 255, 255)
		for i, h := range documentHeader {
			pdf.CellFormat(documentWidths[i], 8, h, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
	}
	writeHead()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range DocumentRows(s) {
		if pdf.GetY()+7 > pageHeight-bottom {
			pdf.AddPage()
			writeHead()
		}
		for i, cell := range row {
			pdf.CellFormat(documentWidths[i], 7, tr(cell), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render settlement document: %w", err)
	}
	return nil
}
