package parser

import (
	"strings"

	"github.com/dgallion1/docrank/internal/doctree"
)

// outline assembles a heading hierarchy from a flat stream of headings and
// paragraphs. Paragraph text attaches to the most recent heading.
type outline struct {
	root    *doctree.DocNode
	stack   []outlineEntry
	pending strings.Builder
}

type outlineEntry struct {
	node  *doctree.DocNode
	level int
}

func newOutline(title string) *outline {
	root := &doctree.DocNode{Title: title, Page: 1}
	return &outline{
		root:  root,
		stack: []outlineEntry{{node: root, level: 0}},
	}
}

// heading opens a new section at level (1 = top). Sections at the same or a
// deeper level are closed first.
func (o *outline) heading(level int, title string) {
	o.flush()
	node := &doctree.DocNode{Title: title, Page: 1}
	for len(o.stack) > 1 && o.stack[len(o.stack)-1].level >= level {
		o.stack = o.stack[:len(o.stack)-1]
	}
	parent := o.stack[len(o.stack)-1].node
	parent.Children = append(parent.Children, node)
	o.stack = append(o.stack, outlineEntry{node: node, level: level})
}

// paragraph buffers body text for the current section.
func (o *outline) paragraph(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if o.pending.Len() > 0 {
		o.pending.WriteString("\n\n")
	}
	o.pending.WriteString(text)
}

func (o *outline) flush() {
	t := strings.TrimSpace(o.pending.String())
	o.pending.Reset()
	if t == "" {
		return
	}
	top := o.stack[len(o.stack)-1].node
	if top.Text != "" {
		top.Text += "\n\n" + t
	} else {
		top.Text = t
	}
}

// tree finalizes the outline. A document without headings becomes a single
// text node.
func (o *outline) tree(document string) *doctree.DocTree {
	o.flush()
	tree := &doctree.DocTree{Title: o.root.Title, Document: document}
	tree.Children = o.root.Children
	if len(tree.Children) == 0 && o.root.Text != "" {
		tree.Children = []*doctree.DocNode{{Text: o.root.Text, Page: 1}}
	} else if o.root.Text != "" {
		// Preamble before the first heading.
		lead := &doctree.DocNode{Text: o.root.Text, Page: 1}
		tree.Children = append([]*doctree.DocNode{lead}, tree.Children...)
	}
	return tree
}

func trimExt(filename string, exts ...string) string {
	for _, ext := range exts {
		if strings.HasSuffix(strings.ToLower(filename), ext) {
			return filename[:len(filename)-len(ext)]
		}
	}
	return filename
}
