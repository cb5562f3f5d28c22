package refine

const (
	// MaxSubsections caps the consolidated subsection list.
	MaxSubsections = 5
	// MinSubsections is the floor backfilled with placeholders, limited by the
	// number of input documents.
	MinSubsections = 3
)

// Outcome records which tier produced a consolidated entry.
type Outcome int

const (
	OutcomeExtracted Outcome = iota + 1
	OutcomeContext
	OutcomePlaceholder
)

func (o Outcome) String() string {
	switch o {
	case OutcomeExtracted:
		return "extracted"
	case OutcomeContext:
		return "context"
	case OutcomePlaceholder:
		return "placeholder"
	}
	return "unknown"
}

// Entry is a consolidated subsection tagged with its producing tier.
type Entry struct {
	Subsection
	Outcome Outcome
}

// RefineConsolidated builds the document-set subsection list. See
// PlanConsolidated for the tiering.
func RefineConsolidated(all []*DocumentData, inputDocuments []string, persona, job string) []Subsection {
	entries := PlanConsolidated(all, inputDocuments, persona, job)
	out := make([]Subsection, len(entries))
	for i, e := range entries {
		out[i] = e.Subsection
	}
	return out
}

// PlanConsolidated runs the three tiers in order, each appending to the list
// and never touching entries already produced:
//
//  1. extracted: real excerpts from the first five document results, page i*2+1
//  2. context: filename templates for the input documents not yet covered,
//     up to MaxSubsections, page continuing the same 1,3,5,... sequence
//  3. placeholder: domain templates while the list is shorter than
//     min(MinSubsections, len(inputDocuments))
//
// A nil entry in all is a document that failed to process.
func PlanConsolidated(all []*DocumentData, inputDocuments []string, persona, job string) []Entry {
	var entries []Entry

	for i, doc := range all[:min(MaxSubsections, len(all))] {
		if doc == nil {
			continue
		}
		if text, _, ok := Excerpt(doc); ok {
			entries = append(entries, Entry{
				Subsection: Subsection{Document: doc.Document, RefinedText: text, PageNumber: i*2 + 1},
				Outcome:    OutcomeExtracted,
			})
		}
	}

	if covered := len(entries); covered < MaxSubsections && covered < len(inputDocuments) {
		for _, name := range inputDocuments[covered:] {
			if len(entries) == MaxSubsections {
				break
			}
			entries = append(entries, Entry{
				Subsection: Subsection{
					Document:    name,
					RefinedText: ContextText(name, persona, job),
					PageNumber:  len(entries)*2 + 1,
				},
				Outcome: OutcomeContext,
			})
		}
	}

	floor := min(MinSubsections, len(inputDocuments))
	if len(entries) < floor {
		placeholders := Placeholders(inputDocuments, persona, job)
		for k := len(entries); k < len(placeholders) && len(entries) < floor; k++ {
			entries = append(entries, Entry{Subsection: placeholders[k], Outcome: OutcomePlaceholder})
		}
	}

	return entries
}
