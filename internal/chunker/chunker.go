package chunker

import (
	"strings"

	"github.com/dgallion1/docrank/internal/doctree"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Target chunk size in tokens.
	ChunkOverlap int // Overlap between consecutive chunks in tokens.
	MinChunk     int // Minimum chunk size to emit.
}

// DefaultConfig returns the defaults used for section ranking: chunks stay
// close to one page of prose so each one can stand alone as a section.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    400,
		ChunkOverlap: 50,
		MinChunk:     8,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ChunkSize <= 0 {
		c.ChunkSize = d.ChunkSize
	}
	if c.ChunkOverlap <= 0 {
		c.ChunkOverlap = d.ChunkOverlap
	}
	if c.MinChunk <= 0 {
		c.MinChunk = d.MinChunk
	}
	return c
}

// ChunkTree walks a DocTree and produces page-scoped chunks in document order.
func ChunkTree(tree *doctree.DocTree, cfg Config) []doctree.Chunk {
	cfg = cfg.withDefaults()

	w := &walker{cfg: cfg, document: tree.Document}
	if w.document == "" {
		w.document = tree.Title
	}
	for _, child := range tree.Children {
		w.walk(child, nil, 1)
	}
	return w.chunks
}

type walker struct {
	cfg      Config
	document string
	chunks   []doctree.Chunk
}

// walk visits a node and its children. Nodes without a page inherit their
// parent's page.
func (w *walker) walk(node *doctree.DocNode, breadcrumb []string, page int) {
	bc := breadcrumb
	if node.Title != "" {
		bc = append(append([]string(nil), breadcrumb...), node.Title)
	}
	if node.Page > 0 {
		page = node.Page
	}

	if node.Text != "" {
		parts := []string{node.Text}
		if EstimateTokens(node.Text) > w.cfg.ChunkSize {
			parts = splitText(node.Text, w.cfg.ChunkSize, w.cfg.ChunkOverlap)
		}
		for _, part := range parts {
			if EstimateTokens(part) < w.cfg.MinChunk {
				continue
			}
			w.chunks = append(w.chunks, doctree.Chunk{
				Document:   w.document,
				Page:       page,
				Index:      len(w.chunks),
				Breadcrumb: copyBreadcrumb(bc),
				Text:       part,
			})
		}
	}

	for _, child := range node.Children {
		w.walk(child, bc, page)
	}
}

// splitText breaks text into chunks of approximately targetTokens, with overlap.
func splitText(text string, targetTokens, overlapTokens int) []string {
	var result []string
	acc := newAccumulator(targetTokens, overlapTokens, "\n\n")

	for _, para := range splitByParagraphs(text) {
		if EstimateTokens(para) > targetTokens {
			// An oversized paragraph is split on sentences on its own.
			result = append(result, acc.drain()...)
			result = append(result, splitBySentences(para, targetTokens, overlapTokens)...)
			continue
		}
		result = append(result, acc.add(para)...)
	}

	return append(result, acc.drain()...)
}

// splitBySentences breaks a large paragraph into sentence-based chunks.
func splitBySentences(text string, targetTokens, overlapTokens int) []string {
	var result []string
	acc := newAccumulator(targetTokens, overlapTokens, " ")
	for _, sent := range splitSentences(text) {
		result = append(result, acc.add(sent)...)
	}
	return append(result, acc.drain()...)
}

// accumulator packs pieces into chunks up to a token budget and seeds each new
// chunk with the tail of the previous one.
type accumulator struct {
	target, overlap int
	sep             string
	current         strings.Builder
	tokens          int
}

func newAccumulator(target, overlap int, sep string) *accumulator {
	return &accumulator{target: target, overlap: overlap, sep: sep}
}

func (a *accumulator) add(piece string) []string {
	var out []string
	pieceTokens := EstimateTokens(piece)
	if a.tokens+pieceTokens > a.target && a.tokens > 0 {
		full := a.current.String()
		out = append(out, full)
		a.current.Reset()
		a.tokens = 0
		if tail := getOverlapText(full, a.overlap); tail != "" {
			a.current.WriteString(tail)
			a.tokens = EstimateTokens(tail)
		}
	}
	if a.current.Len() > 0 {
		a.current.WriteString(a.sep)
	}
	a.current.WriteString(piece)
	a.tokens += pieceTokens
	return out
}

// drain flushes the buffer without carrying overlap forward.
func (a *accumulator) drain() []string {
	if a.tokens == 0 {
		return nil
	}
	out := []string{a.current.String()}
	a.current.Reset()
	a.tokens = 0
	return out
}

// splitByParagraphs splits on double-newlines.
func splitByParagraphs(text string) []string {
	var result []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitSentences does basic sentence splitting on ". ", "! " and "? ".
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// getOverlapText extracts the last N tokens worth of text for overlap.
func getOverlapText(text string, targetTokens int) string {
	words := strings.Fields(text)
	targetWords := int(float64(targetTokens) / 1.33)
	if targetWords <= 0 || len(words) <= targetWords {
		return ""
	}
	return strings.Join(words[len(words)-targetWords:], " ")
}

func copyBreadcrumb(bc []string) []string {
	if len(bc) == 0 {
		return nil
	}
	out := make([]string, len(bc))
	copy(out, bc)
	return out
}
