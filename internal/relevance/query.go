// Package relevance scores document chunks against a persona and
// job-to-be-done using lexical overlap signals.
package relevance

import (
	"strings"
	"unicode"
)

// Query is the persona+job pair driving a run. It is immutable once built.
type Query struct {
	Persona string
	Job     string

	terms   []string
	phrases []string
}

// NewQuery derives matching terms and phrases from persona and job.
func NewQuery(persona, job string) Query {
	q := Query{Persona: persona, Job: job}

	seen := make(map[string]bool)
	for _, raw := range words(persona + " " + job) {
		if !isQueryTerm(raw) {
			continue
		}
		if tok := fold(raw); !seen[tok] {
			seen[tok] = true
			q.terms = append(q.terms, tok)
		}
	}

	// Phrases are adjacent job terms, e.g. "corporate gathering".
	seenPhrase := make(map[string]bool)
	jobWords := words(job)
	for i := 0; i+1 < len(jobWords); i++ {
		a, b := jobWords[i], jobWords[i+1]
		if !isQueryTerm(a) || !isQueryTerm(b) {
			continue
		}
		p := fold(a) + " " + fold(b)
		if !seenPhrase[p] {
			seenPhrase[p] = true
			q.phrases = append(q.phrases, p)
		}
	}
	return q
}

// Terms returns the distinct normalized query terms in first-seen order.
func (q Query) Terms() []string { return append([]string(nil), q.terms...) }

// Phrases returns the normalized two-word job phrases.
func (q Query) Phrases() []string { return append([]string(nil), q.phrases...) }

// PersonaLower and JobLower are the forms interpolated into templates.
func (q Query) PersonaLower() string { return strings.ToLower(q.Persona) }
func (q Query) JobLower() string     { return strings.ToLower(q.Job) }

// Tokenize lowercases text, splits on anything that is not a letter or digit,
// and folds simple plurals.
func Tokenize(text string) []string {
	fields := words(text)
	for i, f := range fields {
		fields[i] = fold(f)
	}
	return fields
}

func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func fold(tok string) string {
	if len([]rune(tok)) > 3 && strings.HasSuffix(tok, "s") && !strings.HasSuffix(tok, "ss") {
		return tok[:len(tok)-1]
	}
	return tok
}

// isQueryTerm reports whether an unfolded word carries meaning for matching.
func isQueryTerm(tok string) bool {
	return len([]rune(tok)) >= 3 && !stopwords[tok]
}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true,
	"this": true, "from": true, "into": true, "your": true, "you": true,
	"are": true, "was": true, "were": true, "will": true, "can": true,
	"all": true, "any": true, "how": true, "what": true, "which": true,
	"who": true, "not": true, "but": true, "our": true, "their": true,
	"they": true, "them": true, "its": true, "has": true, "have": true,
	"had": true, "been": true, "about": true, "over": true, "also": true,
	"such": true, "each": true, "some": true, "more": true, "most": true,
	"other": true, "than": true, "then": true, "there": true, "these": true,
	"those": true, "when": true, "where": true, "while": true, "use": true,
	"using": true, "need": true, "want": true, "make": true, "like": true,
	"based": true,
}
