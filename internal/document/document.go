// Package document turns course PDFs into plain text for the completion
// backed features (mind map, chat, workshop generators).
package document

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const (
	// MinExtractableChars is the trimmed length below which a document is
	// treated as a scan with no text layer.
	MinExtractableChars = 50

	// MaxContextChars caps the document text sent with chat and generator
	// prompts.
	MaxContextChars = 800000

	// TruncationMarker is appended when ContextText cuts the document.
	TruncationMarker = "...(tronqué)"
)

var (
	// ErrNotPDF is returned for files that are not PDF documents.
	ErrNotPDF = errors.New("document: not a PDF file")

	// ErrNoExtractableText is returned when a PDF has (almost) no text
	// layer, typically a scanned image.
	ErrNoExtractableText = errors.New("document: no extractable text (scanned or image-only PDF)")
)

// Page is the text of one PDF page. Number is 1-based.
type Page struct {
	Number int
	Text   string
}

// Document is an extracted PDF.
type Document struct {
	Name      string
	Digest    string // hex sha256 of the file bytes
	PageCount int    // pages in the file, including empty ones
	Pages     []Page // non-empty pages only
	Text      string // pages joined with "--- Page N ---" markers
}

// ExtractFile reads and extracts the PDF at path.
func ExtractFile(path string) (*Document, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return nil, ErrNotPDF
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return Extract(f, info.Size(), filepath.Base(path))
}

// Extract reads a PDF of the given size from r. name is used for display.
func Extract(r io.ReaderAt, size int64, name string) (doc *Document, err error) {
	if !hasPDFHeader(r, size) {
		return nil, ErrNotPDF
	}

	digest, err := digestOf(r, size)
	if err != nil {
		return nil, err
	}

	// The pdf package panics on some malformed object streams.
	defer func() {
		if p := recover(); p != nil {
			doc, err = nil, fmt.Errorf("read PDF %s: malformed document: %v", name, p)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("read PDF %s: %w", name, err)
	}

	doc = &Document{Name: name, Digest: digest, PageCount: reader.NumPage()}
	var b strings.Builder
	for n := 1; n <= doc.PageCount; n++ {
		page := reader.Page(n)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		doc.Pages = append(doc.Pages, Page{Number: n, Text: text})
		fmt.Fprintf(&b, "--- Page %d ---\n%s\n\n", n, text)
	}
	doc.Text = b.String()
	return doc, nil
}

// CheckExtractable fails with ErrNoExtractableText when text is too short
// to be a real text layer.
func CheckExtractable(text string) error {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinExtractableChars {
		return ErrNoExtractableText
	}
	return nil
}

// Prefix returns at most n characters (runes) from the start of text.
func Prefix(text string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(text) <= n {
		return text
	}
	i := 0
	for pos := range text {
		if i == n {
			return text[:pos]
		}
		i++
	}
	return text
}

// ContextText caps text at MaxContextChars, marking the cut.
func ContextText(text string) string {
	p := Prefix(text, MaxContextChars)
	if len(p) == len(text) {
		return text
	}
	return p + TruncationMarker
}

// PageText returns the text of page n (1-based). Empty pages yield "" and
// true; pages outside the document yield false.
func (d *Document) PageText(n int) (string, bool) {
	if n < 1 || n > d.PageCount {
		return "", false
	}
	for _, p := range d.Pages {
		if p.Number == n {
			return p.Text, true
		}
	}
	return "", true
}

func hasPDFHeader(r io.ReaderAt, size int64) bool {
	n := int64(1024)
	if size < n {
		n = size
	}
	if n < 5 {
		return false
	}
	buf := make([]byte, n)
	read, err := r.ReadAt(buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	return bytes.Contains(buf[:read], []byte("%PDF-"))
}

func digestOf(r io.ReaderAt, size int64) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, io.NewSectionReader(r, 0, size)); err != nil {
		return "", fmt.Errorf("hash document: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
