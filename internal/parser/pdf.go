package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/dgallion1/docrank/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser extracts per-page text from PDF files. It tries the Go library
// first, then falls back to pdftotext if enabled.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	pages, err := extractPDFPages(data)
	if err != nil && p.FallbackPdftotext {
		pages, err = extractPdftotext(data)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	return pagesToTree(pages, filename), nil
}

// pagesToTree turns page texts into one node per non-empty page, keeping the
// original page numbers.
func pagesToTree(pages []string, filename string) *doctree.DocTree {
	tree := &doctree.DocTree{
		Title:    trimExt(filename, ".pdf"),
		Document: filename,
	}
	for i, page := range pages {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		tree.Children = append(tree.Children, &doctree.DocNode{
			Title: fmt.Sprintf("Page %d", i+1),
			Text:  page,
			Page:  i + 1,
		})
	}
	return tree
}

func extractPDFPages(data []byte) ([]string, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	numPages := reader.NumPage()
	pages := make([]string, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages[i-1] = text
	}
	return pages, nil
}

func extractPdftotext(data []byte) ([]string, error) {
	// pdftotext needs a path on disk.
	tmp, err := os.CreateTemp("", "docrank-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	out, err := exec.Command("pdftotext", "-layout", tmpPath, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return splitPages(string(out)), nil
}

// splitPages splits pdftotext output on form feeds.
func splitPages(text string) []string {
	return strings.Split(strings.TrimSuffix(text, "\f"), "\f")
}
