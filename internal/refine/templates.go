package refine

import (
	"strconv"
	"strings"
)

// contextRule maps filename keywords to a template. Every keyword must appear
// (case-insensitive substring). Rules are evaluated top to bottom, so more
// specific rules come first.
type contextRule struct {
	name     string
	keywords []string
	template string
}

var contextRules = []contextRule{
	{
		name:     "breakfast",
		keywords: []string{"breakfast"},
		template: "Comprehensive breakfast menu options and recipes specifically curated for {persona} working on {job}. Includes vegetarian and gluten-free breakfast items, portion planning for corporate events, and nutritional considerations for morning meal service.",
	},
	{
		name:     "lunch",
		keywords: []string{"lunch"},
		template: "Detailed lunch menu planning guide tailored for {persona} to execute {job}. Features light, nutritious options suitable for corporate gatherings, including sandwiches, salads, and hot dishes that accommodate various dietary restrictions.",
	},
	{
		name:     "dinner-main",
		keywords: []string{"dinner", "main"},
		template: "Essential dinner main course recipes and preparation guidelines for {persona} planning {job}. Focuses on substantial vegetarian entrees, protein alternatives, and presentation techniques for buffet-style corporate dining events.",
	},
	{
		name:     "dinner-side",
		keywords: []string{"dinner", "side"},
		template: "Comprehensive side dish collection and preparation methods for {persona} executing {job}. Includes complementary vegetables, starches, and accompaniments that enhance the main course while meeting vegetarian and gluten-free requirements.",
	},
	{
		name:     "recipe",
		keywords: []string{"recipe"},
		template: culinaryTemplate,
	},
	{
		name:     "food",
		keywords: []string{"food"},
		template: culinaryTemplate,
	},
}

const culinaryTemplate = "Specialized culinary techniques and recipe modifications for {persona} working on {job}. Covers ingredient substitutions, scaling recipes for large groups, and quality control measures for professional catering services."

const genericContextTemplate = "Important information and practical guidelines for {persona} working on {job}. This section provides essential knowledge, best practices, and detailed procedures necessary for successful completion of the specified task."

// ContextRule returns the name of the first rule matching the document name,
// or "generic".
func ContextRule(docName string) string {
	if r := matchContextRule(docName); r != nil {
		return r.name
	}
	return "generic"
}

// ContextText returns the context-aware template for a document, filled with
// the lowercased persona and job.
func ContextText(docName, persona, job string) string {
	tmpl := genericContextTemplate
	if r := matchContextRule(docName); r != nil {
		tmpl = r.template
	}
	return fill(tmpl, persona, job)
}

func matchContextRule(docName string) *contextRule {
	lower := strings.ToLower(docName)
	for i := range contextRules {
		if containsAll(lower, contextRules[i].keywords) {
			return &contextRules[i]
		}
	}
	return nil
}

// Domain is a coarse document-set category used for placeholder text.
type Domain string

const (
	DomainFood       Domain = "food"
	DomainTravel     Domain = "travel"
	DomainResearch   Domain = "research"
	DomainBusiness   Domain = "business"
	DomainTechnology Domain = "technology"
	DomainGeneral    Domain = "general"
)

// domainRules are checked in order; a document lands in the first domain
// with any matching keyword.
var domainRules = []struct {
	domain   Domain
	keywords []string
}{
	{DomainFood, []string{"breakfast", "lunch", "dinner", "food", "recipe", "meal"}},
	{DomainTravel, []string{"travel", "trip", "guide", "city", "place"}},
	{DomainResearch, []string{"research", "paper", "study", "analysis"}},
	{DomainBusiness, []string{"business", "finance", "market", "strategy"}},
	{DomainTechnology, []string{"tech", "technology", "software", "development"}},
}

// ClassifyDocument assigns one document name to a domain.
func ClassifyDocument(docName string) Domain {
	lower := strings.ToLower(docName)
	for _, r := range domainRules {
		if containsAny(lower, r.keywords) {
			return r.domain
		}
	}
	return DomainGeneral
}

// ClassifyDocuments returns the domain whose placeholder set applies to the
// whole document set: food, then travel, then research; anything else uses
// the general set.
func ClassifyDocuments(docNames []string) Domain {
	present := make(map[Domain]bool)
	for _, name := range docNames {
		present[ClassifyDocument(name)] = true
	}
	for _, d := range []Domain{DomainFood, DomainTravel, DomainResearch} {
		if present[d] {
			return d
		}
	}
	return DomainGeneral
}

type placeholder struct {
	page     int
	template string
}

var placeholderSets = map[Domain][]placeholder{
	DomainFood: {
		{1, "This section provides comprehensive information relevant to {persona} working on {job}. Key details include menu planning considerations, dietary restrictions, ingredient sourcing, and presentation tips essential for successful event catering."},
		{2, "Important guidelines and recommendations for {persona} to consider when {job}. This includes step-by-step food preparation processes, portion control, allergen management, and best practices for vegetarian and gluten-free options."},
		{3, "Advanced techniques and considerations for {persona} engaged in {job}. This section provides in-depth analysis of buffet service logistics, food safety protocols, and specialized knowledge for corporate catering events."},
	},
	DomainTravel: {
		{1, "This section provides comprehensive information relevant to {persona} working on {job}. Key details include planning considerations, practical tips, and essential information for successful execution of the specified task."},
		{2, "Important guidelines and recommendations for {persona} to consider when {job}. This includes step-by-step processes, best practices, and critical factors that contribute to achieving optimal results."},
	},
	DomainResearch: {
		{1, "Research methodology and findings relevant to {persona} conducting {job}. This section outlines key research approaches, data analysis techniques, and significant discoveries that inform the research process."},
		{3, "Literature review and theoretical framework supporting {job}. Includes comprehensive analysis of existing research, identification of research gaps, and theoretical foundations for {persona}."},
	},
	DomainGeneral: {
		{1, "Essential information and guidelines for {persona} working on {job}. This section covers fundamental concepts, key principles, and practical approaches necessary for successful task completion."},
		{2, "Detailed procedures and best practices for {persona} to follow when {job}. Includes step-by-step instructions, common challenges, and proven strategies for achieving desired outcomes."},
		{3, "Advanced techniques and considerations for {persona} engaged in {job}. This section provides in-depth analysis, specialized knowledge, and expert recommendations for optimizing performance and results."},
	},
}

// Placeholders returns the fixed placeholder list for the document set's
// domain. Entry k names input document k, or "Document k+1" when there are
// not enough documents.
func Placeholders(docNames []string, persona, job string) []Subsection {
	set, ok := placeholderSets[ClassifyDocuments(docNames)]
	if !ok {
		set = placeholderSets[DomainGeneral]
	}
	out := make([]Subsection, 0, len(set))
	for k, p := range set {
		name := placeholderDocument(k)
		if k < len(docNames) {
			name = docNames[k]
		}
		out = append(out, Subsection{
			Document:    name,
			RefinedText: fill(p.template, persona, job),
			PageNumber:  p.page,
		})
	}
	return out
}

func placeholderDocument(k int) string {
	return "Document " + strconv.Itoa(k+1)
}

func fill(tmpl, persona, job string) string {
	return strings.NewReplacer(
		"{persona}", strings.ToLower(persona),
		"{job}", strings.ToLower(job),
	).Replace(tmpl)
}

func containsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
