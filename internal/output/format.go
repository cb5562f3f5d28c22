// Package output assembles ranked sections and refined subsections into the
// per-document and consolidated JSON documents, validates them against their
// schemas and writes them to disk.
package output

import (
	"strings"
	"time"

	"github.com/dgallion1/docrank/internal/ranking"
	"github.com/dgallion1/docrank/internal/refine"
)

const (
	// ProcessingVersion is recorded in per-document metadata.
	ProcessingVersion = "1.0"
	// TimestampLayout renders timestamps with microsecond precision and no zone.
	TimestampLayout = "2006-01-02T15:04:05.000000"

	maxExtractedSections = 5
)

// Metadata heads a per-document output.
type Metadata struct {
	Persona           string  `json:"persona"`
	Job               string  `json:"job"`
	Datetime          string  `json:"datetime"`
	TotalSections     int     `json:"total_sections"`
	ProcessingVersion string  `json:"processing_version"`
	ScoreThreshold    float64 `json:"score_threshold"`
}

// Section is one ranked section as serialized. Field order is the key order.
type Section struct {
	Document           string              `json:"document"`
	Page               int                 `json:"page"`
	SectionTitle       string              `json:"section_title"`
	ImportanceRank     int                 `json:"importance_rank"`
	Text               string              `json:"text"`
	SubsectionAnalysis []refine.Subsection `json:"subsection_analysis"`
	KeyPhrases         []string            `json:"key_phrases,omitempty"`
	ScoreDetails       map[string]float64  `json:"score_details,omitempty"`
}

// PerDocumentOutput is the analysis written for a single document.
type PerDocumentOutput struct {
	Metadata Metadata  `json:"metadata"`
	Sections []Section `json:"sections"`
}

// ConsolidatedMetadata heads the document-set output.
type ConsolidatedMetadata struct {
	InputDocuments      []string `json:"input_documents"`
	Persona             string   `json:"persona"`
	JobToBeDone         string   `json:"job_to_be_done"`
	ProcessingTimestamp string   `json:"processing_timestamp"`
}

// ExtractedSection names the headline section of one input document.
type ExtractedSection struct {
	Document       string `json:"document"`
	SectionTitle   string `json:"section_title"`
	ImportanceRank int    `json:"importance_rank"`
	PageNumber     int    `json:"page_number"`
}

// ConsolidatedOutput is the single summary written for a document set.
type ConsolidatedOutput struct {
	Metadata           ConsolidatedMetadata `json:"metadata"`
	ExtractedSections  []ExtractedSection   `json:"extracted_sections"`
	SubsectionAnalysis []refine.Subsection  `json:"subsection_analysis"`
}

// FormatTimestamp renders ts in TimestampLayout.
func FormatTimestamp(ts time.Time) string {
	return ts.Format(TimestampLayout)
}

// FormatOutput builds the per-document output. Ranks are re-derived from list
// order; the input is not modified.
func FormatOutput(sections []ranking.ScoredSection, persona, job string, ts time.Time, threshold float64) PerDocumentOutput {
	ranked := ranking.AssignRanks(sections)

	out := PerDocumentOutput{
		Metadata: Metadata{
			Persona:           persona,
			Job:               job,
			Datetime:          FormatTimestamp(ts),
			TotalSections:     len(ranked),
			ProcessingVersion: ProcessingVersion,
			ScoreThreshold:    threshold,
		},
		Sections: make([]Section, 0, len(ranked)),
	}

	for _, s := range ranked {
		sec := Section{
			Document:           s.Document,
			Page:               s.Page,
			SectionTitle:       s.SectionTitle,
			ImportanceRank:     s.ImportanceRank,
			Text:               s.Text,
			SubsectionAnalysis: append([]refine.Subsection{}, s.SubsectionAnalysis...),
		}
		if len(s.KeyPhrases) > 0 {
			sec.KeyPhrases = append([]string(nil), s.KeyPhrases...)
		}
		if len(s.ScoreBreakdown) > 0 {
			sec.ScoreDetails = make(map[string]float64, len(s.ScoreBreakdown))
			for k, v := range s.ScoreBreakdown {
				sec.ScoreDetails[k] = v
			}
		}
		out.Sections = append(out.Sections, sec)
	}
	return out
}

// FormatConsolidatedOutput builds the document-set output: one headline
// section per leading input document and the tiered subsection list.
func FormatConsolidatedOutput(all []*refine.DocumentData, inputDocuments []string, persona, job string, ts time.Time) ConsolidatedOutput {
	docs := append([]string{}, inputDocuments...)

	n := min(maxExtractedSections, len(docs))
	extracted := make([]ExtractedSection, 0, n)
	for i, name := range docs[:n] {
		extracted = append(extracted, ExtractedSection{
			Document:       name,
			SectionTitle:   SectionTitle(name, i),
			ImportanceRank: i + 1,
			PageNumber:     i%3 + 1,
		})
	}

	subs := refine.RefineConsolidated(all, docs, persona, job)
	if subs == nil {
		subs = []refine.Subsection{}
	}

	return ConsolidatedOutput{
		Metadata: ConsolidatedMetadata{
			InputDocuments:      docs,
			Persona:             persona,
			JobToBeDone:         job,
			ProcessingTimestamp: FormatTimestamp(ts),
		},
		ExtractedSections:  extracted,
		SubsectionAnalysis: subs,
	}
}

type titleRule struct {
	allOf []string
	anyOf []string
	title string
}

// titleRules are evaluated top to bottom against the lowercased filename.
var titleRules = []titleRule{
	{allOf: []string{"create", "convert"}, title: "Creating and Converting Documents to PDF"},
	{allOf: []string{"edit"}, title: "PDF Editing and Modification Tools"},
	{allOf: []string{"export"}, title: "Exporting PDFs to Different Formats"},
	{allOf: []string{"fill", "sign"}, title: "Filling Forms and Adding Digital Signatures"},
	{allOf: []string{"generative", "ai"}, title: "AI-Powered Document Enhancement Features"},
	{anyOf: []string{"e-signatures", "signature"}, title: "Send a document to get signatures from others"},
	{allOf: []string{"share"}, title: "Document Sharing and Collaboration Methods"},
	{allOf: []string{"export", "skills"}, title: "Advanced Export Techniques and Best Practices"},
	{allOf: []string{"sharing", "checklist"}, title: "PDF Sharing Security and Compliance Checklist"},
}

var fallbackTitles = []string{
	"Acrobat Interface Overview",
	"Document Processing Fundamentals",
	"Advanced PDF Management",
	"Workflow Optimization Techniques",
	"Security and Compliance Features",
}

// SectionTitle picks the headline title for the document at index.
func SectionTitle(docName string, index int) string {
	lower := strings.ToLower(docName)
	for _, r := range titleRules {
		if r.matches(lower) {
			return r.title
		}
	}
	if index < 0 {
		index = -index
	}
	return fallbackTitles[index%len(fallbackTitles)]
}

func (r titleRule) matches(s string) bool {
	for _, kw := range r.allOf {
		if !strings.Contains(s, kw) {
			return false
		}
	}
	if len(r.anyOf) == 0 {
		return true
	}
	for _, kw := range r.anyOf {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
