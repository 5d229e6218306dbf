package markdown

import (
	"regexp"
	"strconv"
)

var (
	codeSpanRe    = regexp.MustCompile("`([^`]+)`")
	placeholderRe = regexp.MustCompile("\x00(\\d+)\x00")

	// Alternation order matters: earlier alternatives win at the same
	// position, so image precedes link and *** precedes ** precedes *.
	inlineTokenRe = regexp.MustCompile(
		`!\[([^\]]*)\]\(([^)]+)\)` + // 1,2  image
			`|\[([^\]]+)\]\(([^)]*)\)` + // 3,4  link
			`|\*\*\*(.+?)\*\*\*` + // 5    bold+italic
			`|\*\*(.+?)\*\*` + // 6    bold
			`|\*([^*]+)\*` + // 7    italic
			`|~~(.+?)~~` + // 8    strike
			`|<u>(.+?)</u>`, // 9    underline
	)
)

// parseInline parses one line's inline content into a span list. Code spans
// are extracted into placeholders first so that emphasis, link, and image
// patterns cannot match inside them; they are restored last.
func parseInline(text string) []*Node {
	var codes []string
	masked := codeSpanRe.ReplaceAllStringFunc(text, func(m string) string {
		codes = append(codes, m[1:len(m)-1])
		return "\x00" + strconv.Itoa(len(codes)-1) + "\x00"
	})
	return parseSpans(masked, codes)
}

func parseSpans(text string, codes []string) []*Node {
	var out []*Node
	last := 0

	for _, loc := range inlineTokenRe.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] > last {
			out = append(out, literalSpans(text[last:loc[0]], codes)...)
		}
		out = append(out, tokenSpans(text, loc, codes)...)
		last = loc[1]
	}
	if last < len(text) {
		out = append(out, literalSpans(text[last:], codes)...)
	}
	return out
}

func tokenSpans(text string, loc []int, codes []string) []*Node {
	group := func(i int) (string, bool) {
		if loc[2*i] < 0 {
			return "", false
		}
		return text[loc[2*i]:loc[2*i+1]], true
	}

	if alt, ok := group(1); ok {
		src, _ := group(2)
		return []*Node{{Type: NodeImage, Attrs: Attrs{Alt: alt, Src: src}}}
	}
	if inner, ok := group(3); ok {
		href, _ := group(4)
		return addMark(parseSpans(inner, codes), Mark{Type: MarkLink, Attrs: MarkAttrs{Href: href}})
	}
	if inner, ok := group(5); ok {
		return addMark(addMark(parseSpans(inner, codes), Mark{Type: MarkBold}), Mark{Type: MarkItalic})
	}
	if inner, ok := group(6); ok {
		return addMark(parseSpans(inner, codes), Mark{Type: MarkBold})
	}
	if inner, ok := group(7); ok {
		return addMark(parseSpans(inner, codes), Mark{Type: MarkItalic})
	}
	if inner, ok := group(8); ok {
		return addMark(parseSpans(inner, codes), Mark{Type: MarkStrike})
	}
	if inner, ok := group(9); ok {
		return addMark(parseSpans(inner, codes), Mark{Type: MarkUnderline})
	}
	return nil
}

// literalSpans turns a plain segment into text nodes, restoring code-span
// placeholders as code-marked nodes.
func literalSpans(segment string, codes []string) []*Node {
	var out []*Node
	last := 0
	for _, loc := range placeholderRe.FindAllStringSubmatchIndex(segment, -1) {
		if loc[0] > last {
			out = append(out, &Node{Type: NodeText, Text: segment[last:loc[0]]})
		}
		idx, err := strconv.Atoi(segment[loc[2]:loc[3]])
		if err == nil && idx < len(codes) {
			out = append(out, &Node{
				Type:  NodeText,
				Text:  codes[idx],
				Marks: []Mark{{Type: MarkCode}},
			})
		}
		last = loc[1]
	}
	if last < len(segment) {
		out = append(out, &Node{Type: NodeText, Text: segment[last:]})
	}
	return out
}

// addMark attaches a mark to every text node in spans. Non-text nodes
// (inline images) are left alone.
func addMark(spans []*Node, mark Mark) []*Node {
	for _, s := range spans {
		if s.Type == NodeText {
			s.Marks = append(s.Marks, mark)
		}
	}
	return spans
}
