// Package markdown converts between a structured rich-text node tree and its
// plain-text markup representation. Both directions are pure functions; the
// round trip ToText -> FromText -> ToText is idempotent for any tree that
// FromText can produce.
package markdown

// Node types.
const (
	NodeDoc            = "doc"
	NodeParagraph      = "paragraph"
	NodeHeading        = "heading"
	NodeBulletList     = "bulletList"
	NodeOrderedList    = "orderedList"
	NodeTaskList       = "taskList"
	NodeListItem       = "listItem"
	NodeTaskItem       = "taskItem"
	NodeCodeBlock      = "codeBlock"
	NodeBlockquote     = "blockquote"
	NodeHorizontalRule = "horizontalRule"
	NodeImage          = "image"
	NodeText           = "text"
	NodeHardBreak      = "hardBreak"
)

// Mark types.
const (
	MarkBold      = "bold"
	MarkItalic    = "italic"
	MarkStrike    = "strike"
	MarkCode      = "code"
	MarkLink      = "link"
	MarkUnderline = "underline"
)

// Attrs holds node attributes. Only the fields relevant to the node type are
// set; the JSON tags match the editor's document format so legacy tree JSON
// decodes directly into this struct.
type Attrs struct {
	Level   int    `json:"level,omitempty"`
	Checked bool   `json:"checked,omitempty"`
	Src     string `json:"src,omitempty"`
	Alt     string `json:"alt,omitempty"`
	Width   int    `json:"width,omitempty"`
}

// MarkAttrs holds mark attributes (currently only link targets).
type MarkAttrs struct {
	Href string `json:"href,omitempty"`
}

// Mark is an inline formatting mark attached to a text node.
type Mark struct {
	Type  string    `json:"type"`
	Attrs MarkAttrs `json:"attrs,omitempty"`
}

// Node is one node of the document tree.
type Node struct {
	Type    string  `json:"type"`
	Text    string  `json:"text,omitempty"`
	Attrs   Attrs   `json:"attrs,omitempty"`
	Marks   []Mark  `json:"marks,omitempty"`
	Content []*Node `json:"content,omitempty"`
}

func (n *Node) hasMark(t string) bool {
	for _, m := range n.Marks {
		if m.Type == t {
			return true
		}
	}
	return false
}

func (n *Node) markAttr(t string) MarkAttrs {
	for _, m := range n.Marks {
		if m.Type == t {
			return m.Attrs
		}
	}
	return MarkAttrs{}
}

// plainText concatenates the raw text of a node and its descendants.
func plainText(n *Node) string {
	out := n.Text
	for _, c := range n.Content {
		out += plainText(c)
	}
	return out
}
