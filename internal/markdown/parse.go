package markdown

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	headingRe = regexp.MustCompile(`^(#{1,3})\s+(.+)$`)
	hrRe      = regexp.MustCompile(`^[-*_]{3,}\s*$`)
	htmlImgRe = regexp.MustCompile(`^<img\s+src="([^"]+)"\s+alt="([^"]*)"(?:\s+width="(\d+)")?\s*>$`)
	imgLineRe = regexp.MustCompile(`^!\[([^\]]*)\]\(([^)]+)\)$`)

	taskLineRe    = regexp.MustCompile(`^(\s*)[-*]\s+\[([ xX])\]\s+(.*)$`)
	bulletLineRe  = regexp.MustCompile(`^(\s*)[-*]\s+(.*)$`)
	orderedLineRe = regexp.MustCompile(`^(\s*)\d+\.\s+(.*)$`)
)

// FromText parses markup text into a document tree. It never fails:
// unrecognized constructs degrade to plain paragraphs containing the raw line.
func FromText(text string) *Node {
	doc := &Node{Type: NodeDoc}
	lines := strings.Split(text, "\n")
	i := 0

	for i < len(lines) {
		line := lines[i]

		// Fenced code block: captured verbatim until the closing fence.
		if strings.HasPrefix(line, "```") {
			var code []string
			i++
			for i < len(lines) && !strings.HasPrefix(lines[i], "```") {
				code = append(code, lines[i])
				i++
			}
			i++ // closing fence (or EOF)
			doc.Content = append(doc.Content, &Node{
				Type:    NodeCodeBlock,
				Content: []*Node{{Type: NodeText, Text: strings.Join(code, "\n")}},
			})
			continue
		}

		if strings.TrimSpace(line) == "" {
			i++
			continue
		}

		if m := headingRe.FindStringSubmatch(line); m != nil {
			doc.Content = append(doc.Content, &Node{
				Type:    NodeHeading,
				Attrs:   Attrs{Level: len(m[1])},
				Content: parseInline(m[2]),
			})
			i++
			continue
		}

		if hrRe.MatchString(line) {
			doc.Content = append(doc.Content, &Node{Type: NodeHorizontalRule})
			i++
			continue
		}

		if m := htmlImgRe.FindStringSubmatch(line); m != nil {
			width, _ := strconv.Atoi(m[3])
			doc.Content = append(doc.Content, &Node{
				Type:  NodeImage,
				Attrs: Attrs{Src: m[1], Alt: m[2], Width: width},
			})
			i++
			continue
		}

		if m := imgLineRe.FindStringSubmatch(line); m != nil {
			doc.Content = append(doc.Content, &Node{
				Type:  NodeImage,
				Attrs: Attrs{Alt: m[1], Src: m[2]},
			})
			i++
			continue
		}

		if _, ok := matchListLine(line); ok {
			var run []listLine
			for i < len(lines) {
				ll, ok := matchListLine(lines[i])
				if !ok {
					break
				}
				run = append(run, ll)
				i++
			}
			pos := 0
			for pos < len(run) {
				var list *Node
				list, pos = buildList(run, pos, run[pos].depth)
				doc.Content = append(doc.Content, list)
			}
			continue
		}

		if strings.HasPrefix(line, ">") {
			var quoted []string
			for i < len(lines) && strings.HasPrefix(lines[i], ">") {
				quoted = append(quoted, strings.TrimPrefix(strings.TrimPrefix(lines[i], ">"), " "))
				i++
			}
			doc.Content = append(doc.Content, &Node{
				Type: NodeBlockquote,
				Content: []*Node{{
					Type:    NodeParagraph,
					Content: parseInline(strings.Join(quoted, " ")),
				}},
			})
			continue
		}

		doc.Content = append(doc.Content, &Node{
			Type:    NodeParagraph,
			Content: parseInline(line),
		})
		i++
	}

	return doc
}

// --- List parsing ---

type listLine struct {
	depth   int // two spaces of indent per level
	kind    string
	checked bool
	text    string
}

func matchListLine(line string) (listLine, bool) {
	// Task items first: they would also match the bullet pattern.
	if m := taskLineRe.FindStringSubmatch(line); m != nil {
		return listLine{
			depth:   len(m[1]) / 2,
			kind:    NodeTaskList,
			checked: m[2] != " ",
			text:    m[3],
		}, true
	}
	if m := bulletLineRe.FindStringSubmatch(line); m != nil {
		return listLine{depth: len(m[1]) / 2, kind: NodeBulletList, text: m[2]}, true
	}
	if m := orderedLineRe.FindStringSubmatch(line); m != nil {
		return listLine{depth: len(m[1]) / 2, kind: NodeOrderedList, text: m[2]}, true
	}
	return listLine{}, false
}

// buildList assembles one list node from run[start:], consuming items at the
// given depth plus any deeper items, which nest under the preceding item.
func buildList(run []listLine, start, depth int) (*Node, int) {
	kind := run[start].kind
	list := &Node{Type: kind}
	i := start

	for i < len(run) {
		ll := run[i]
		if ll.depth < depth {
			break
		}
		if ll.depth > depth {
			nested, next := buildList(run, i, ll.depth)
			if n := len(list.Content); n > 0 {
				item := list.Content[n-1]
				item.Content = append(item.Content, nested)
			} else {
				list.Content = append(list.Content, nested)
			}
			i = next
			continue
		}
		if ll.kind != kind {
			break
		}

		itemType := NodeListItem
		var attrs Attrs
		if kind == NodeTaskList {
			itemType = NodeTaskItem
			attrs = Attrs{Checked: ll.checked}
		}
		list.Content = append(list.Content, &Node{
			Type:  itemType,
			Attrs: attrs,
			Content: []*Node{{
				Type:    NodeParagraph,
				Content: parseInline(ll.text),
			}},
		})
		i++
	}

	return list, i
}
