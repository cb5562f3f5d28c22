package output

import (
	"fmt"
	"sort"
	"strings"
)

const (
	reportTopSections = 10
	previewChars      = 100
)

// CreateSummaryReport renders a plain-text digest of a per-document output:
// the top sections by rank and how many sections each document contributed.
func CreateSummaryReport(out PerDocumentOutput) string {
	lines := []string{
		"=== DOCUMENT ANALYSIS SUMMARY ===",
		"Persona: " + out.Metadata.Persona,
		"Job/Task: " + out.Metadata.Job,
		"Processing Time: " + out.Metadata.Datetime,
		fmt.Sprintf("Total Relevant Sections: %d", len(out.Sections)),
		"",
		"=== TOP SECTIONS BY RELEVANCE ===",
		"",
	}

	for i, s := range out.Sections[:min(reportTopSections, len(out.Sections))] {
		lines = append(lines,
			fmt.Sprintf("%d. %s (Page %d)", i+1, s.SectionTitle, s.Page),
			"   Document: "+s.Document,
			"   Text Preview: "+preview(s.Text)+"...",
			fmt.Sprintf("   Subsections: %d", len(s.SubsectionAnalysis)),
			"",
		)
	}

	counts := make(map[string]int)
	for _, s := range out.Sections {
		counts[s.Document]++
	}
	docs := make([]string, 0, len(counts))
	for d := range counts {
		docs = append(docs, d)
	}
	sort.Strings(docs)

	lines = append(lines, "=== DOCUMENT DISTRIBUTION ===", "")
	for _, d := range docs {
		lines = append(lines, fmt.Sprintf("%s: %d relevant sections", d, counts[d]))
	}
	return strings.Join(lines, "\n")
}

func preview(text string) string {
	r := []rune(text)
	if len(r) > previewChars {
		r = r[:previewChars]
	}
	return string(r)
}
