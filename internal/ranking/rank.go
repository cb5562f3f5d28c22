// Package ranking turns scored chunks into ranked, deduplicated sections.
package ranking

import (
	"sort"
	"strings"

	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/dgallion1/docrank/internal/refine"
	"github.com/dgallion1/docrank/internal/relevance"
)

// DefaultScoreThreshold is the nominal cutoff for a "relevant" section.
const DefaultScoreThreshold = 0.1

// ScoredChunk is one chunk with its relevance score.
type ScoredChunk struct {
	Chunk      doctree.Chunk
	Title      string
	Score      float64
	Breakdown  relevance.Breakdown
	KeyPhrases []string
}

// ScoredSection is a ranked section ready for output.
type ScoredSection struct {
	Document           string
	Page               int
	SectionTitle       string
	Text               string
	Score              float64
	ScoreBreakdown     relevance.Breakdown
	ImportanceRank     int
	KeyPhrases         []string
	SubsectionAnalysis []refine.Subsection
}

// Options control ranking.
type Options struct {
	// Threshold is recorded in output metadata. It only filters sections
	// when EnforceThreshold is set.
	Threshold        float64
	EnforceThreshold bool
	// MaxSections truncates the ranked list; 0 keeps everything.
	MaxSections int
}

// DefaultOptions keeps the threshold advisory.
func DefaultOptions() Options {
	return Options{Threshold: DefaultScoreThreshold}
}

// Ranker orders sections by relevance.
type Ranker struct {
	opts Options
}

func NewRanker(opts Options) *Ranker {
	return &Ranker{opts: opts}
}

// Threshold returns the configured score threshold.
func (r *Ranker) Threshold() float64 { return r.opts.Threshold }

// ScoreChunks scores every chunk in order.
func ScoreChunks(s *relevance.Scorer, q relevance.Query, chunks []doctree.Chunk) []ScoredChunk {
	out := make([]ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		score, breakdown := s.Score(c, q)
		out = append(out, ScoredChunk{
			Chunk:      c,
			Title:      relevance.SectionTitle(c),
			Score:      score,
			Breakdown:  breakdown,
			KeyPhrases: relevance.KeyPhrases(c.Text, q),
		})
	}
	return out
}

// Rank groups chunks into sections (one per chunk), drops duplicates,
// optionally applies the threshold, and assigns dense 1-based ranks in
// descending score order. Ties keep the original chunk order. The input is
// not modified.
func (r *Ranker) Rank(chunks []ScoredChunk) []ScoredSection {
	sections := make([]ScoredSection, 0, len(chunks))
	seen := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		key := dedupeKey(c.Chunk.Text)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if r.opts.EnforceThreshold && c.Score < r.opts.Threshold {
			continue
		}
		page := c.Chunk.Page
		if page < 1 {
			page = 1
		}
		sections = append(sections, ScoredSection{
			Document:       c.Chunk.Document,
			Page:           page,
			SectionTitle:   c.Title,
			Text:           c.Chunk.Text,
			Score:          c.Score,
			ScoreBreakdown: copyBreakdown(c.Breakdown),
			KeyPhrases:     append([]string(nil), c.KeyPhrases...),
		})
	}

	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Score > sections[j].Score
	})

	if r.opts.MaxSections > 0 && len(sections) > r.opts.MaxSections {
		sections = sections[:r.opts.MaxSections]
	}
	return AssignRanks(sections)
}

// AssignRanks returns a copy of sections with ImportanceRank set from list
// order, overwriting any previous rank.
func AssignRanks(sections []ScoredSection) []ScoredSection {
	out := make([]ScoredSection, len(sections))
	for i, s := range sections {
		s.ImportanceRank = i + 1
		out[i] = s
	}
	return out
}

func dedupeKey(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

func copyBreakdown(b relevance.Breakdown) relevance.Breakdown {
	if b == nil {
		return nil
	}
	out := make(relevance.Breakdown, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
