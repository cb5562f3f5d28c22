// Package refine selects and trims document excerpts into compact
// subsection entries, falling back to templated text when a document has too
// little extractable content.
package refine

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/dgallion1/docrank/internal/relevance"
)

const (
	// MaxRefinedChars bounds refined text before the truncation marker.
	MaxRefinedChars = 400
	// TruncationMarker is appended to refined text cut at MaxRefinedChars.
	TruncationMarker = "..."

	minChunkChars = 50  // chunks at or below this (trimmed) are skipped
	minRawChars   = 100 // raw text at or below this is not excerpted
	rawWindow     = 300 // characters taken from raw text
	sampleChunks  = 3   // first, middle and last chunk

	maxSectionSentences = 3
)

// Subsection is one refined excerpt.
type Subsection struct {
	Document    string `json:"document"`
	RefinedText string `json:"refined_text"`
	PageNumber  int    `json:"page_number"`
}

// DocumentData is what the chunk source produced for one document: ordered
// chunks and/or the raw full text.
type DocumentData struct {
	Document string
	Chunks   []doctree.Chunk
	Text     string
}

// Excerpt extracts a representative excerpt from real document content and
// the page it starts on. ok is false when the document has too little text.
func Excerpt(doc *DocumentData) (text string, page int, ok bool) {
	if doc == nil {
		return "", 0, false
	}

	if len(doc.Chunks) > 0 {
		var parts []string
		for _, c := range sample(doc.Chunks) {
			t := strings.TrimSpace(c.Text)
			if utf8.RuneCountInString(t) <= minChunkChars {
				continue
			}
			if len(parts) == 0 {
				page = c.Page
			}
			parts = append(parts, t)
		}
		if len(parts) > 0 {
			text = strings.Join(parts, " ")
		}
	}

	if text == "" {
		// Skip the first quarter of the raw text: covers and headers live there.
		raw := []rune(strings.TrimSpace(doc.Text))
		if len(raw) > minRawChars {
			start := len(raw) / 4
			end := min(start+rawWindow, len(raw))
			text = strings.TrimSpace(string(raw[start:end]))
			page = 1
		}
	}

	if text == "" {
		return "", 0, false
	}
	if page < 1 {
		page = 1
	}
	return Normalize(text), page, true
}

// sample picks the first, middle and last chunk for spatial diversity, or
// every chunk when there are fewer than three.
func sample(chunks []doctree.Chunk) []doctree.Chunk {
	if len(chunks) < sampleChunks {
		return chunks
	}
	return []doctree.Chunk{chunks[0], chunks[len(chunks)/2], chunks[len(chunks)-1]}
}

// Normalize collapses whitespace and truncates to MaxRefinedChars runes plus
// the truncation marker.
func Normalize(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) > MaxRefinedChars {
		text = string([]rune(text)[:MaxRefinedChars]) + TruncationMarker
	}
	return text
}

// Refine produces the subsection entry for a single document: a real
// excerpt when one exists, otherwise the context-aware template.
func Refine(doc *DocumentData, persona, job string) []Subsection {
	if doc == nil {
		return nil
	}
	if text, page, ok := Excerpt(doc); ok {
		return []Subsection{{Document: doc.Document, RefinedText: text, PageNumber: page}}
	}
	return []Subsection{{
		Document:    doc.Document,
		RefinedText: ContextText(doc.Document, persona, job),
		PageNumber:  1,
	}}
}

// ForSection builds the subsection analysis of one ranked section: up to three
// sentences mentioning the query, or the whole section text when none do.
func ForSection(document string, page int, text string, q relevance.Query) []Subsection {
	if page < 1 {
		page = 1
	}
	var picked []string
	for _, s := range sentences(text) {
		if relevance.MatchesAny(s, q) {
			picked = append(picked, s)
			if len(picked) == maxSectionSentences {
				break
			}
		}
	}
	if len(picked) == 0 {
		if whole := Normalize(text); whole != "" {
			picked = []string{whole}
		}
	}

	out := make([]Subsection, 0, len(picked))
	for _, s := range picked {
		out = append(out, Subsection{Document: document, RefinedText: Normalize(s), PageNumber: page})
	}
	return out
}

// sentences splits whitespace-normalized text after '.', '!' or '?' followed
// by a space.
func sentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if i+1 < len(text) && text[i+1] == ' ' {
				out = append(out, text[start:i+1])
				start = i + 2
			}
		}
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}
