package doctree

import "strings"

// DocTree is the root of a parsed document.
type DocTree struct {
	Title    string     // Document title (from metadata or filename)
	Document string     // Source filename the tree was parsed from
	Children []*DocNode // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     // Section heading (empty for leaf text)
	Text     string     // Text content of this node (may be empty for container nodes)
	Page     int        // Source page, 1-based (0 if unknown)
	Children []*DocNode // Subsections
}

// PlainText joins every node's text in document order, separated by blank lines.
func (t *DocTree) PlainText() string {
	var parts []string
	var walk func(nodes []*DocNode)
	walk = func(nodes []*DocNode) {
		for _, n := range nodes {
			if n.Text != "" {
				parts = append(parts, n.Text)
			}
			walk(n.Children)
		}
	}
	walk(t.Children)

	return strings.Join(parts, "\n\n")
}

// Chunk is a page-scoped unit of extracted document text. The core never
// mutates a chunk once the chunker has produced it.
type Chunk struct {
	Document   string   // Source document filename
	Page       int      // 1-based page number
	Index      int      // Sequence number within document
	Breadcrumb []string // Heading hierarchy, e.g. ["Dinner Mains", "Vegetarian"]
	Text       string   // Raw chunk text
}
