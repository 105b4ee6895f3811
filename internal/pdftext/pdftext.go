package pdftext

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extract pulls the plain text out of a PDF resume, page by page. Pages that
// fail to decode are skipped; scanned image-only PDFs yield an error because
// nothing textual can be validated against them.
func Extract(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", filePath, err)
	}
	defer f.Close()

	var builder strings.Builder
	totalPages := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPages; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if builder.Len() > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(text)
	}

	text := strings.TrimSpace(builder.String())
	if text == "" {
		return "", fmt.Errorf("no text content found in %s (scanned PDFs need OCR)", filePath)
	}

	return text, nil
}
