package relevance

import (
	"fmt"
	"math"
	"strings"

	"github.com/dgallion1/docrank/internal/doctree"
)

// Signal names as they appear in score breakdowns.
const (
	SignalKeywordMatch = "keyword_match"
	SignalTermDensity  = "term_density"
	SignalPhraseMatch  = "phrase_match"
	SignalTitleMatch   = "title_match"
)

// Weights sets the contribution of each signal to the aggregate score.
type Weights struct {
	KeywordMatch float64
	TermDensity  float64
	PhraseMatch  float64
	TitleMatch   float64
}

// DefaultWeights sum to 1 so scores stay in [0,1].
func DefaultWeights() Weights {
	return Weights{
		KeywordMatch: 0.45,
		TermDensity:  0.20,
		PhraseMatch:  0.20,
		TitleMatch:   0.15,
	}
}

// densityScale maps "one query term every ten words" to a full density score.
const densityScale = 10.0

// maxKeyPhrases caps the key phrases reported per section.
const maxKeyPhrases = 5

// Breakdown maps signal name to its weighted contribution.
type Breakdown map[string]float64

// Scorer computes deterministic relevance scores. The zero value is not
// usable; construct with NewScorer.
type Scorer struct {
	weights Weights
}

func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Score rates a chunk against the query. Blank chunks score 0 with a nil
// breakdown.
func (s *Scorer) Score(chunk doctree.Chunk, q Query) (float64, Breakdown) {
	tokens := Tokenize(chunk.Text)
	if len(tokens) == 0 {
		return 0, nil
	}

	terms := q.terms
	present := tokenSet(tokens)

	keyword := 0.0
	hits := 0
	if len(terms) > 0 {
		matched := 0
		termSet := make(map[string]bool, len(terms))
		for _, t := range terms {
			termSet[t] = true
			if present[t] {
				matched++
			}
		}
		keyword = float64(matched) / float64(len(terms))
		for _, tok := range tokens {
			if termSet[tok] {
				hits++
			}
		}
	}

	density := math.Min(1, float64(hits)/float64(len(tokens))*densityScale)

	phrase := 0.0
	if len(q.phrases) > 0 {
		bigrams := bigramSet(tokens)
		matched := 0
		for _, p := range q.phrases {
			if bigrams[p] {
				matched++
			}
		}
		phrase = float64(matched) / float64(len(q.phrases))
	}

	title := 0.0
	if len(terms) > 0 {
		titleTokens := tokenSet(Tokenize(SectionTitle(chunk)))
		matched := 0
		for _, t := range terms {
			if titleTokens[t] {
				matched++
			}
		}
		title = float64(matched) / float64(len(terms))
	}

	b := Breakdown{
		SignalKeywordMatch: round4(s.weights.KeywordMatch * keyword),
		SignalTermDensity:  round4(s.weights.TermDensity * density),
		SignalPhraseMatch:  round4(s.weights.PhraseMatch * phrase),
		SignalTitleMatch:   round4(s.weights.TitleMatch * title),
	}
	// Summed in a fixed order so float addition is reproducible.
	total := b[SignalKeywordMatch] + b[SignalTermDensity] + b[SignalPhraseMatch] + b[SignalTitleMatch]
	return round4(total), b
}

// KeyPhrases lists the query phrases then terms found in text, capped at five.
func KeyPhrases(text string, q Query) []string {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	present := tokenSet(tokens)
	bigrams := bigramSet(tokens)

	var out []string
	for _, p := range q.phrases {
		if len(out) == maxKeyPhrases {
			return out
		}
		if bigrams[p] {
			out = append(out, p)
		}
	}
	for _, t := range q.terms {
		if len(out) == maxKeyPhrases {
			return out
		}
		if present[t] {
			out = append(out, t)
		}
	}
	return out
}

// MatchesAny reports whether text contains at least one query term.
func MatchesAny(text string, q Query) bool {
	if len(q.terms) == 0 {
		return false
	}
	present := tokenSet(Tokenize(text))
	for _, t := range q.terms {
		if present[t] {
			return true
		}
	}
	return false
}

// SectionTitle picks a heading for a chunk: a short first line, else the
// deepest breadcrumb, else the page label.
func SectionTitle(chunk doctree.Chunk) string {
	for _, line := range strings.Split(chunk.Text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		if n := len([]rune(line)); n >= 3 && n <= 80 {
			return line
		}
		break
	}
	if n := len(chunk.Breadcrumb); n > 0 && chunk.Breadcrumb[n-1] != "" {
		return chunk.Breadcrumb[n-1]
	}
	page := chunk.Page
	if page < 1 {
		page = 1
	}
	return fmt.Sprintf("Page %d", page)
}

func tokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

func bigramSet(tokens []string) map[string]bool {
	set := make(map[string]bool)
	for i := 0; i+1 < len(tokens); i++ {
		set[tokens[i]+" "+tokens[i+1]] = true
	}
	return set
}

func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}
