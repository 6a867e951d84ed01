package engine

import (
	"io"

	"github.com/ledongthuc/pdf"
)

// extractPDFText reads the plain text content out of a PDF already written
// to disk at path. Encrypted and scanned (image-only) PDFs return an error;
// callers treat that as "no extracted text", not a crawl failure.
func extractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	text, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}

	return string(text), nil
}
