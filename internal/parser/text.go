package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docrank/internal/doctree"
)

// TextParser handles plain text files. Form feeds mark page breaks; blank
// lines separate paragraphs within a page.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	tree := &doctree.DocTree{
		Title:    trimExt(filename, ".txt"),
		Document: filename,
	}

	page := 1
	var current strings.Builder
	emit := func() {
		if current.Len() == 0 {
			return
		}
		tree.Children = append(tree.Children, &doctree.DocNode{
			Text: current.String(),
			Page: page,
		})
		current.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		for strings.Contains(line, "\f") {
			before, after, _ := strings.Cut(line, "\f")
			if strings.TrimSpace(before) != "" {
				if current.Len() > 0 {
					current.WriteString("\n")
				}
				current.WriteString(before)
			}
			emit()
			page++
			line = after
		}
		if strings.TrimSpace(line) == "" {
			emit()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	emit()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return tree, nil
}
