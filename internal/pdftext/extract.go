package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Document is an opened PDF ready for text extraction.
type Document struct {
	reader *pdf.Reader
}

// Open parses raw PDF bytes. Malformed input yields a *ReadError.
func Open(data []byte) (doc *Document, err error) {
	if len(data) == 0 {
		return nil, &ReadError{Message: "empty document"}
	}

	// the parser panics on some truncated or corrupt files
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = &ReadError{Message: "failed to open PDF", Cause: fmt.Errorf("%v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ReadError{Message: "failed to open PDF", Cause: err}
	}
	return &Document{reader: reader}, nil
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.reader.NumPage()
}

// Text returns the text of every page in page order, joined by a single newline.
// A page whose text cannot be extracted contributes an empty string.
func (d *Document) Text() string {
	return joinPages(d.PageCount(), d.pageText)
}

func (d *Document) pageText(i int) (string, error) {
	page := d.reader.Page(i)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d missing", i)
	}
	return page.GetPlainText(nil)
}

// Extract opens data and returns its full text. It is the one-call form of Open followed by Text.
func Extract(data []byte) (string, error) {
	doc, err := Open(data)
	if err != nil {
		return "", err
	}
	return doc.Text(), nil
}

// joinPages collects pages 1..n through pageText, tolerating per-page errors and panics.
func joinPages(n int, pageText func(int) (string, error)) string {
	texts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		texts = append(texts, safePageText(i, pageText))
	}
	return strings.Join(texts, "\n")
}

func safePageText(i int, pageText func(int) (string, error)) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	text, err := pageText(i)
	if err != nil {
		return ""
	}
	return text
}
