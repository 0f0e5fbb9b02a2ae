package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cosmograph/cosmograph/pkg/graph"
)

const (
	// Below this much total text the document is suspect; below
	// scannedPageTextThreshold on an image-bearing page it is treated
	// as scanned.
	scannedTotalTextThreshold = 100
	scannedPageTextThreshold  = 50
	scannedMinimumText        = 20
)

// pdfPage is the per-page evidence the scanned-document heuristic
// works from.
type pdfPage struct {
	text     string
	hasImage bool
}

// PDFExtractor pulls page text out of a PDF in reading order and
// delegates entity extraction to the legal extractor.
type PDFExtractor struct {
	graph  *graph.Graph
	logger *logrus.Logger
}

// NewPDF creates a PDF extractor writing into g.
func NewPDF(g *graph.Graph) *PDFExtractor {
	return &PDFExtractor{graph: g, logger: newLogger()}
}

// Supports reports true for PDF files.
func (e *PDFExtractor) Supports(path string) bool {
	return hasExtension(path, pdfExtensions)
}

// Extract reads the PDF's text and runs legal extraction over it.
// Password-protected PDFs fail with ErrPasswordProtected; documents
// that appear to be scanned fail with ErrNoExtractableText.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (*graph.Graph, error) {
	fileName := filepath.Base(path)

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}

	// Empty password probe: encrypted documents surface as
	// ErrInvalidPassword here.
	reader, err := pdf.NewReaderEncrypted(f, info.Size(), func() string { return "" })
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return nil, errors.Wrap(ErrPasswordProtected, fileName)
		}
		return nil, errors.Wrapf(err, "parsing %s", fileName)
	}

	pages := readPages(reader)
	var parts []string
	for _, p := range pages {
		parts = append(parts, p.text)
	}
	fullText := strings.Join(parts, "\n")

	if isLikelyScanned(fullText, pages) {
		return nil, errors.Wrap(ErrNoExtractableText, fileName)
	}

	e.logger.WithFields(logrus.Fields{
		"source": fileName,
		"pages":  len(pages),
		"chars":  len(fullText),
	}).Info("Extracted PDF text")

	legal := NewLegal(e.graph)
	return legal.ExtractText(fullText, fileStem(path), fileName), nil
}

func readPages(reader *pdf.Reader) []pdfPage {
	var pages []pdfPage
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Pages that fail text extraction still count for the
			// image heuristic.
			text = ""
		}
		pages = append(pages, pdfPage{
			text:     text,
			hasImage: pageHasImage(page),
		})
	}
	return pages
}

func pageHasImage(page pdf.Page) bool {
	xobjects := page.V.Key("Resources").Key("XObject")
	for _, name := range xobjects.Keys() {
		if xobjects.Key(name).Key("Subtype").Name() == "Image" {
			return true
		}
	}
	return false
}

// isLikelyScanned decides whether a PDF is an image-only scan:
// substantial text rules it out, an image-bearing page with almost no
// text rules it in, and a near-empty document is treated as scanned.
func isLikelyScanned(text string, pages []pdfPage) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) > scannedTotalTextThreshold {
		return false
	}
	for _, p := range pages {
		if p.hasImage && len(strings.TrimSpace(p.text)) < scannedPageTextThreshold {
			return true
		}
	}
	return len(trimmed) < scannedMinimumText
}
