package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/BerylCAtieno/paper-genie/internal/models"
)

// PageFallback stands in for a page that produced no text, so one bad page
// does not abort the whole document.
const PageFallback = "[no extractable text on this page]"

var (
	ErrNotPDF     = errors.New("file is not a PDF")
	ErrNoPages    = errors.New("PDF has no pages")
	ErrNoText     = errors.New("no text could be extracted from PDF")
	pdfMagicBytes = []byte("%PDF-")
)

// IsPDF checks the magic bytes at the start of data.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagicBytes)
}

// ExtractPDF returns the text of every page in page order. The joined text
// separates pages with a newline.
func ExtractPDF(data []byte) (ext *models.Extraction, err error) {
	if !IsPDF(data) {
		return nil, ErrNotPDF
	}

	// ledongthuc/pdf panics on some malformed object graphs.
	defer func() {
		if r := recover(); r != nil {
			ext = nil
			err = fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	numPages := pdfReader.NumPage()
	if numPages == 0 {
		return nil, ErrNoPages
	}

	pages := make([]string, 0, numPages)
	found := false
	for i := 1; i <= numPages; i++ {
		text, ok := pageText(pdfReader, i)
		if !ok {
			pages = append(pages, PageFallback)
			continue
		}
		found = true
		pages = append(pages, text)
	}

	if !found {
		return nil, ErrNoText
	}

	return &models.Extraction{
		Pages: pages,
		Text:  strings.Join(pages, "\n"),
	}, nil
}

func pageText(r *pdf.Reader, n int) (string, bool) {
	page := r.Page(n)
	if page.V.IsNull() {
		return "", false
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", false
	}

	text = Normalize(text)
	if text == "" {
		return "", false
	}
	return text, true
}
