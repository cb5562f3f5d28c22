package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgallion1/docrank/internal/chunker"
	"github.com/dgallion1/docrank/internal/parser"
	"github.com/dgallion1/docrank/internal/refine"
)

// ChunkSource turns a document path into chunks and raw text.
type ChunkSource interface {
	Load(path string) (*refine.DocumentData, error)
}

// FileSource parses files from disk with the parser registry and chunks them.
type FileSource struct {
	Parser  parser.Options
	Chunker chunker.Config
}

func (s FileSource) Load(path string) (*refine.DocumentData, error) {
	name := filepath.Base(path)
	p, err := parser.ForFile(name, s.Parser)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	tree, err := p.Parse(f, name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	tree.Document = name

	return &refine.DocumentData{
		Document: name,
		Chunks:   chunker.ChunkTree(tree, s.Chunker),
		Text:     tree.PlainText(),
	}, nil
}
