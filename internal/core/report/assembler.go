// Package report assembles chart artifacts and narrative text into a single
// multi-page PDF document.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/macroeconlab/macro-report-be/internal/core/series"
)

// ErrNoContent is returned for an empty entry list; an empty document is
// never produced silently.
var ErrNoContent = errors.New("no entries to assemble")

const headerColor = "#0B2E5E"

// Assembler builds landscape-letter PDF reports: a cover page followed by
// one page per entry, each with a header bar and page-number footer.
type Assembler struct {
	margin    float64
	headerH   float64
	narration float64
}

// NewAssembler creates an assembler with the report's standard layout.
func NewAssembler() *Assembler {
	return &Assembler{
		margin:    43,  // 0.6in in points
		headerH:   36,  // 0.5in header bar
		narration: 86,  // narrative band under the chart
	}
}

// Assemble serializes the entries into one PDF. Pages follow ascending entry
// Position, re-read at call time, so callers can reorder entries after
// rendering without touching the artifacts. The input slice is not mutated.
func (a *Assembler) Assemble(entries []*series.ReportEntry, title string, asOf time.Time) ([]byte, error) {
	if len(entries) == 0 {
		return nil, ErrNoContent
	}

	ordered := sortByPosition(entries)
	asOfLabel := asOf.Format("January 2, 2006")

	pdf := gofpdf.New("L", "pt", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	// A fixed creation date keeps output byte-identical for identical input.
	pdf.SetCreationDate(asOf)

	a.coverPage(pdf, title, asOfLabel)

	for i, entry := range ordered {
		pdf.AddPage()
		a.headerFooter(pdf, title, asOfLabel, pdf.PageNo())
		if err := a.chartPage(pdf, entry, i); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (a *Assembler) coverPage(pdf *gofpdf.Fpdf, title, asOfLabel string) {
	pdf.AddPage()
	w, h := pdf.GetPageSize()

	pdf.SetFont("Helvetica", "B", 28)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(centeredX(pdf, w, strings.ToUpper(title)), h*0.35, strings.ToUpper(title))

	pdf.SetFont("Helvetica", "", 14)
	label := "As of " + asOfLabel
	pdf.Text(centeredX(pdf, w, label), h*0.42, label)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(128, 128, 128)
	sub := "Generated from public data series (see specification file)."
	pdf.Text(centeredX(pdf, w, sub), h*0.47, sub)

	a.pageNumber(pdf, w, h, pdf.PageNo())
}

func (a *Assembler) chartPage(pdf *gofpdf.Fpdf, entry *series.ReportEntry, idx int) error {
	w, h := pdf.GetPageSize()
	art := entry.Artifact

	imgName := fmt.Sprintf("chart-%03d", idx)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	info := pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(art.PNG))
	if pdf.Err() {
		return fmt.Errorf("failed to embed chart %q: %v", art.Title, pdf.Error())
	}

	top := a.headerH + a.margin*0.5
	bottom := a.margin
	if entry.Narrative != "" {
		bottom += a.narration
	}
	boxW := w - 2*a.margin
	boxH := h - top - bottom

	// Fit preserving aspect ratio, centered in the box.
	scale := boxW / info.Width()
	if s := boxH / info.Height(); s < scale {
		scale = s
	}
	imgW, imgH := info.Width()*scale, info.Height()*scale
	x := a.margin + (boxW-imgW)/2
	y := top + (boxH-imgH)/2
	pdf.ImageOptions(imgName, x, y, imgW, imgH, false, opts, 0, "")

	if entry.Narrative != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(40, 40, 40)
		pdf.SetXY(a.margin, h-a.margin-a.narration)
		text := clampToBand(pdf, entry.Narrative, boxW, int(a.narration/narrativeLineH))
		pdf.MultiCell(boxW, narrativeLineH, text, "", "L", false)
	}
	return nil
}

const narrativeLineH = 13

// clampToBand truncates text to maxLines at the current font. Auto page
// break is off, so an overlong narrative would otherwise run past the
// footer instead of wrapping to a new page.
func clampToBand(pdf *gofpdf.Fpdf, text string, w float64, maxLines int) string {
	lines := pdf.SplitText(text, w)
	if len(lines) <= maxLines {
		return text
	}
	last := lines[maxLines-1]
	for len(last) > 0 && pdf.GetStringWidth(last+"...") > w-4 {
		last = last[:len(last)-1]
	}
	lines[maxLines-1] = strings.TrimRight(last, " ") + "..."
	return strings.Join(lines[:maxLines], "\n")
}

func (a *Assembler) headerFooter(pdf *gofpdf.Fpdf, title, asOfLabel string, page int) {
	w, h := pdf.GetPageSize()

	r, g, b := hexToRGB(headerColor)
	pdf.SetFillColor(r, g, b)
	pdf.Rect(0, 0, w, a.headerH, "F")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(a.margin, a.headerH-13, strings.ToUpper(title))

	pdf.SetFont("Helvetica", "", 10)
	right := "As of " + asOfLabel
	pdf.Text(w-a.margin-pdf.GetStringWidth(right), a.headerH-13, right)

	a.pageNumber(pdf, w, h, page)
}

func (a *Assembler) pageNumber(pdf *gofpdf.Fpdf, w, h float64, page int) {
	pdf.SetTextColor(128, 128, 128)
	pdf.SetFont("Helvetica", "", 9)
	label := fmt.Sprintf("Page %d", page)
	pdf.Text(w-a.margin-pdf.GetStringWidth(label), h-25, label)
	pdf.SetTextColor(0, 0, 0)
}

// sortByPosition returns the entries in ascending ordinal position without
// mutating the caller's slice. The sort is stable so equal positions keep
// their relative order.
func sortByPosition(entries []*series.ReportEntry) []*series.ReportEntry {
	ordered := make([]*series.ReportEntry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})
	return ordered
}

func centeredX(pdf *gofpdf.Fpdf, pageW float64, s string) float64 {
	return (pageW - pdf.GetStringWidth(s)) / 2
}

// hexToRGB converts a hex color to RGB components.
func hexToRGB(hex string) (int, int, int) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return 0, 0, 0
	}
	var r, g, b int
	fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b)
	return r, g, b
}
