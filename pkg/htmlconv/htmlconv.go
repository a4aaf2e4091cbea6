// Package htmlconv converts rich-text note markup (HTML) into the export
// formats served by the API and reproduced by the offline client. Both sides
// use this package so online and offline exports are byte-identical.
package htmlconv

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var blankRuns = regexp.MustCompile(`\n{4,}`)

// ToMarkdown converts note HTML to Markdown. Supported structure: headings
// h1-h6, bold, italic, underline, strikethrough, links, images, inline code,
// fenced code blocks, block quotes, ordered and unordered lists (nested),
// paragraphs, line breaks and horizontal rules. Runs of three or more blank
// lines collapse to exactly one blank line.
func ToMarkdown(src string) string {
	body := parseBody(src)
	if body == nil {
		return strings.TrimSpace(src)
	}
	blocks := renderBlocks(body)
	out := strings.Join(blocks, "\n\n")
	out = blankRuns.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// ToText strips all markup, keeping one line per block element.
func ToText(src string) string {
	body := parseBody(src)
	if body == nil {
		return strings.TrimSpace(src)
	}
	var blocks []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && isBlockTag(c.Data) {
				walk(c)
				continue
			}
			text := strings.TrimSpace(inlineText(c))
			if text != "" {
				blocks = append(blocks, text)
			}
		}
	}
	walk(body)
	return strings.TrimSpace(strings.Join(blocks, "\n"))
}

func parseBody(src string) *html.Node {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil
	}
	var body *html.Node
	var find func(n *html.Node)
	find = func(n *html.Node) {
		if body != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "body" {
			body = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(doc)
	return body
}

func isBlockTag(tag string) bool {
	switch tag {
	case "p", "div", "section", "article", "h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "blockquote", "pre", "hr", "table", "tr":
		return true
	}
	return false
}

// renderBlocks converts the children of n into markdown block strings.
func renderBlocks(n *html.Node) []string {
	var blocks []string
	var pendingInline strings.Builder

	flush := func() {
		text := strings.TrimSpace(pendingInline.String())
		pendingInline.Reset()
		if text != "" {
			blocks = append(blocks, text)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode || (c.Type == html.ElementNode && !isBlockTag(c.Data)) {
			// Loose inline content between blocks forms its own paragraph.
			pendingInline.WriteString(renderInline(c))
			continue
		}
		if c.Type != html.ElementNode {
			continue
		}
		flush()
		switch c.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			level := int(c.Data[1] - '0')
			blocks = append(blocks, strings.Repeat("#", level)+" "+inlineChildren(c))
		case "p", "div", "section", "article":
			if hasBlockChildren(c) {
				blocks = append(blocks, renderBlocks(c)...)
			} else if text := inlineChildren(c); text != "" {
				blocks = append(blocks, text)
			}
		case "pre":
			blocks = append(blocks, renderCodeBlock(c))
		case "blockquote":
			blocks = append(blocks, quoteBlocks(renderBlocks(c)))
		case "ul":
			blocks = append(blocks, renderList(c, false, 0))
		case "ol":
			blocks = append(blocks, renderList(c, true, 0))
		case "hr":
			blocks = append(blocks, "---")
		case "table", "tbody", "thead", "tr":
			blocks = append(blocks, renderBlocks(c)...)
		default:
			if text := inlineChildren(c); text != "" {
				blocks = append(blocks, text)
			}
		}
	}
	flush()

	var out []string
	for _, b := range blocks {
		if strings.TrimSpace(b) != "" {
			out = append(out, b)
		}
	}
	return out
}

func hasBlockChildren(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && isBlockTag(c.Data) {
			return true
		}
	}
	return false
}

func inlineChildren(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(renderInline(c))
	}
	return strings.TrimSpace(b.String())
}

func renderInline(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return collapseSpaces(n.Data)
	case html.ElementNode:
	default:
		return ""
	}

	switch n.Data {
	case "strong", "b":
		return wrapNonEmpty(inlineChildren(n), "**")
	case "em", "i":
		return wrapNonEmpty(inlineChildren(n), "*")
	case "s", "del", "strike":
		return wrapNonEmpty(inlineChildren(n), "~~")
	case "u":
		if inner := inlineChildren(n); inner != "" {
			return "<u>" + inner + "</u>"
		}
		return ""
	case "code":
		if inner := inlineText(n); strings.TrimSpace(inner) != "" {
			return "`" + strings.TrimSpace(inner) + "`"
		}
		return ""
	case "a":
		inner := inlineChildren(n)
		href := attr(n, "href")
		if inner == "" {
			inner = href
		}
		return fmt.Sprintf("[%s](%s)", inner, href)
	case "img":
		return fmt.Sprintf("![%s](%s)", attr(n, "alt"), attr(n, "src"))
	case "br":
		return "\n"
	}

	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(renderInline(c))
	}
	return b.String()
}

func wrapNonEmpty(inner, mark string) string {
	if inner == "" {
		return ""
	}
	return mark + inner + mark
}

func renderCodeBlock(pre *html.Node) string {
	lang := ""
	source := pre
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "code" {
			source = c
			for _, class := range strings.Fields(attr(c, "class")) {
				if rest, ok := strings.CutPrefix(class, "language-"); ok {
					lang = rest
				}
			}
			break
		}
	}
	content := strings.TrimRight(rawText(source), "\n")
	return "```" + lang + "\n" + content + "\n```"
}

func quoteBlocks(blocks []string) string {
	joined := strings.Join(blocks, "\n\n")
	lines := strings.Split(joined, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + line
		}
	}
	return strings.Join(lines, "\n")
}

func renderList(list *html.Node, ordered bool, depth int) string {
	indent := strings.Repeat("  ", depth)
	var lines []string
	index := 0
	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		index++
		marker := "- "
		if ordered {
			marker = fmt.Sprintf("%d. ", index)
		}

		var inline strings.Builder
		var nested []string
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				nested = append(nested, renderList(c, c.Data == "ol", depth+1))
				continue
			}
			inline.WriteString(renderInline(c))
		}

		lines = append(lines, indent+marker+strings.TrimSpace(inline.String()))
		lines = append(lines, nested...)
	}
	return strings.Join(lines, "\n")
}

func inlineText(n *html.Node) string {
	if n.Type == html.TextNode {
		return collapseSpaces(n.Data)
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(inlineText(c))
	}
	return b.String()
}

// rawText preserves whitespace; used inside pre blocks.
func rawText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(rawText(c))
	}
	return b.String()
}

var spaceRuns = regexp.MustCompile(`[ \t\r\n]+`)

func collapseSpaces(s string) string {
	return spaceRuns.ReplaceAllString(s, " ")
}

// attr returns the value of the named attribute on n, or "" if absent.
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
