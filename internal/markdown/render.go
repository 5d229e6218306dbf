package markdown

import (
	"fmt"
	"strings"
)

// ToText renders a document tree to markup text. Blocks are separated by one
// blank line. Embedded data-URL image sources pass through untouched;
// attachment extraction is a separate stage that operates on the emitted text.
func ToText(doc *Node) string {
	if doc == nil || len(doc.Content) == 0 {
		return ""
	}
	parts := make([]string, 0, len(doc.Content))
	for _, n := range doc.Content {
		parts = append(parts, blockText(n, 0))
	}
	return strings.Join(parts, "\n")
}

func blockText(n *Node, depth int) string {
	switch n.Type {
	case NodeParagraph:
		return inlineText(n) + "\n"

	case NodeHeading:
		level := n.Attrs.Level
		if level < 1 {
			level = 1
		}
		return strings.Repeat("#", level) + " " + inlineText(n) + "\n"

	case NodeBulletList:
		return listText(n, depth, func(int, *Node) string { return "- " })

	case NodeOrderedList:
		return listText(n, depth, func(i int, _ *Node) string { return fmt.Sprintf("%d. ", i+1) })

	case NodeTaskList:
		return listText(n, depth, func(_ int, item *Node) string {
			if item.Attrs.Checked {
				return "- [x] "
			}
			return "- [ ] "
		})

	case NodeCodeBlock:
		return "```\n" + plainText(n) + "\n```\n"

	case NodeBlockquote:
		lines := make([]string, 0, len(n.Content))
		for _, child := range n.Content {
			lines = append(lines, "> "+strings.TrimRight(blockText(child, depth), "\n"))
		}
		return strings.Join(lines, "\n") + "\n"

	case NodeHorizontalRule:
		return "---\n"

	case NodeImage:
		return imageText(n) + "\n"

	default:
		return inlineText(n) + "\n"
	}
}

func listText(list *Node, depth int, prefix func(int, *Node) string) string {
	items := make([]string, 0, len(list.Content))
	for i, item := range list.Content {
		items = append(items, listItemText(item, depth, prefix(i, item)))
	}
	return strings.Join(items, "\n") + "\n"
}

func listItemText(item *Node, depth int, prefix string) string {
	indent := strings.Repeat("  ", depth)
	var lines []string
	for i, child := range item.Content {
		switch child.Type {
		case NodeBulletList, NodeOrderedList, NodeTaskList:
			lines = append(lines, strings.TrimRight(blockText(child, depth+1), "\n"))
		default:
			if i == 0 {
				lines = append(lines, indent+prefix+inlineText(child))
			} else {
				lines = append(lines, indent+"  "+inlineText(child))
			}
		}
	}
	return strings.Join(lines, "\n")
}

func imageText(n *Node) string {
	if n.Attrs.Width > 0 {
		return fmt.Sprintf(`<img src=%q alt=%q width="%d">`, n.Attrs.Src, n.Attrs.Alt, n.Attrs.Width)
	}
	return fmt.Sprintf("![%s](%s)", n.Attrs.Alt, n.Attrs.Src)
}

func inlineText(n *Node) string {
	var b strings.Builder
	for _, c := range n.Content {
		b.WriteString(inlineNode(c))
	}
	return b.String()
}

func inlineNode(n *Node) string {
	switch n.Type {
	case NodeHardBreak:
		return "\n"
	case NodeImage:
		return imageText(n)
	case NodeText:
		return wrapMarks(n)
	default:
		return ""
	}
}

// wrapMarks applies inline wrappers in a fixed order so that rendering is
// deterministic regardless of the order marks were attached: code is
// exclusive, then bold/italic (combined as ***), strike, link, underline.
func wrapMarks(n *Node) string {
	text := n.Text
	if n.hasMark(MarkCode) {
		return "`" + text + "`"
	}
	bold, italic := n.hasMark(MarkBold), n.hasMark(MarkItalic)
	switch {
	case bold && italic:
		text = "***" + text + "***"
	case bold:
		text = "**" + text + "**"
	case italic:
		text = "*" + text + "*"
	}
	if n.hasMark(MarkStrike) {
		text = "~~" + text + "~~"
	}
	if n.hasMark(MarkLink) {
		text = "[" + text + "](" + n.markAttr(MarkLink).Href + ")"
	}
	if n.hasMark(MarkUnderline) {
		text = "<u>" + text + "</u>"
	}
	return text
}
