package render

import (
	"bytes"
	"io"
	"math"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"

	nb "github.com/akeil/notebook"
	"github.com/akeil/notebook/internal/imaging"
	"github.com/akeil/notebook/internal/logging"
)

// Options control the PDF output.
type Options struct {
	// PageSize is one of the gofpdf page sizes, e.g. "A4" or "Letter".
	PageSize string
	// Gray converts images to grayscale.
	Gray bool
	// MaxImageWidth limits the width of embedded images in pixels.
	// Larger images are scaled down. Zero means no limit.
	MaxImageWidth int
}

// DefaultOptions are used by the command line tool.
func DefaultOptions() Options {
	return Options{
		PageSize:      "A4",
		MaxImageWidth: 1600,
	}
}

const (
	tsFormat   = "2006-01-02 15:04:05"
	margin     = 48.0
	bodySize   = 11.0
	lineHeight = 15.0
	// embedded images are assumed to have 96 dpi
	pxToPt = 72.0 / 96.0
)

var headingSizes = []float64{20, 16, 14, 12}

// PDF renders the document and writes the result to w.
//
// Every content node starts on a new page, folders are rendered as headings
// above the content that follows them. Each section gets a bookmark.
func PDF(doc *Document, w io.Writer, opts Options) error {
	logging.Debug("Render PDF for %q with %d sections", doc.Title, len(doc.Sections))
	pdf := setupPDF(opts.PageSize, doc)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageHasContent := false
	for _, s := range doc.Sections {
		if pdf.PageNo() == 0 || pageHasContent {
			pdf.AddPage()
			pageHasContent = false
		}

		pdf.Bookmark(tr(s.Title), s.Level, -1)
		renderHeading(pdf, tr(s.Title), s.Level)
		if s.Folder {
			continue
		}

		if s.Text != "" {
			pdf.SetFont("helvetica", "", bodySize)
			pdf.SetTextColor(0, 0, 0)
			pdf.MultiCell(0, lineHeight, tr(s.Text), "", "L", false)
			pdf.Ln(lineHeight / 2)
		}
		for _, img := range s.Images {
			err := renderImage(pdf, img, opts)
			if err != nil {
				return nb.Wrap(err, "render image %q of %q", img.Name, s.ID)
			}
		}
		pageHasContent = true

		if pdf.Err() {
			return pdf.Error()
		}
	}

	// an empty document still needs a page
	if pdf.PageNo() == 0 {
		pdf.AddPage()
	}

	return pdf.Output(w)
}

func setupPDF(pageSize string, d *Document) *gofpdf.Fpdf {
	if pageSize == "" {
		pageSize = "A4"
	}
	orientation := "P" // [P]ortrait or [L]andscape
	sizeUnit := "pt"
	fontDir := ""
	pdf := gofpdf.New(orientation, sizeUnit, pageSize, fontDir)

	pdf.SetMargins(margin, margin, margin) // left, top, right
	pdf.SetAutoPageBreak(true, margin)
	pdf.AliasNbPages("{totalPages}")
	pdf.SetProducer("nbtool", true)

	pdf.SetTitle(d.Title, true)
	if !d.Modified.IsZero() {
		modified := d.Modified.UTC()
		pdf.SetModificationDate(modified)
		pdf.SetCreationDate(modified)
	}

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-margin + 12)
		pdf.SetFont("helvetica", "", 8)
		pdf.SetTextColor(127, 127, 127)
		if d.Modified.IsZero() {
			pdf.Cellf(0, 10, "%d / {totalPages}  |  %v", pdf.PageNo(), tr(d.Title))
		} else {
			pdf.Cellf(0, 10, "%d / {totalPages}  |  %v (%v)",
				pdf.PageNo(),
				tr(d.Title),
				d.Modified.Local().Format(tsFormat))
		}
	})

	return pdf
}

func renderHeading(pdf *gofpdf.Fpdf, title string, level int) {
	size := headingSizes[len(headingSizes)-1]
	if level < len(headingSizes) {
		size = headingSizes[level]
	}
	pdf.SetFont("helvetica", "B", size)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(0, size*1.3, title, "", "L", false)
	pdf.Ln(size / 2)
}

func renderImage(pdf *gofpdf.Fpdf, img Image, opts Options) error {
	i, _, err := imaging.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return err
	}
	i = imaging.Fit(i, opts.MaxImageWidth)
	if opts.Gray {
		i = imaging.ToGray(i)
	}

	// gofpdf does not know all formats, always embed as PNG
	data, err := imaging.EncodePNG(i)
	if err != nil {
		return err
	}
	name := uuid.New().String()
	imgOpts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader(name, imgOpts, bytes.NewReader(data))

	// scale down to the usable page width, never up
	wPage, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	maxW := wPage - left - right
	w := math.Min(maxW, float64(i.Bounds().Dx())*pxToPt)

	x := left
	y := -1.0
	h := 0.0
	flow := true
	link := 0
	linkStr := ""
	pdf.ImageOptions(name, x, y, w, h, flow, imgOpts, link, linkStr)
	pdf.Ln(lineHeight / 2)

	return nil
}
