package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// DefaultMaxChars bounds normalized output to keep prompt cost predictable.
const DefaultMaxChars = 3000

// ErrNoContent is returned when no text-bearing element survives filtering.
var ErrNoContent = errors.New("no textual content found")

// Document is a simplified representation of extracted page content.
type Document struct {
	Title string
	Text  string
	// Full is the joined text before the maxChars cut.
	Full string
}

// removedTags are dropped from the tree, with their descendants, before any
// container selection happens.
var removedTags = map[string]bool{
	"script": true,
	"style":  true,
	"nav":    true,
	"footer": true,
	"header": true,
	"aside":  true,
}

// textTags is the allow-list of elements whose text is kept.
var textTags = map[string]bool{
	"h1": true,
	"h2": true,
	"h3": true,
	"p":  true,
	"li": true,
}

// Normalize extracts readable text from HTML. It prefers <main>, then
// <article>, falling back to <body>, keeps only headings h1-h3, paragraphs and
// list items in document order, joins them with newlines and cuts the result
// at maxChars characters. A non-positive maxChars means DefaultMaxChars.
func Normalize(input []byte, maxChars int) (Document, error) {
	root, err := html.Parse(bytes.NewReader(input))
	if err != nil || root == nil {
		return Document{}, fmt.Errorf("parse html: %w", err)
	}

	title := collapseSpaces(strings.TrimSpace(findTitle(root)))
	prune(root)

	content := findFirst(root, "main")
	if content == nil {
		content = findFirst(root, "article")
	}
	if content == nil {
		content = findFirst(root, "body")
	}
	if content == nil {
		return Document{Title: title}, ErrNoContent
	}

	var parts []string
	for c := content.FirstChild; c != nil; c = c.NextSibling {
		collectBlocks(c, &parts)
	}
	text := strings.Join(parts, "\n")
	if strings.TrimSpace(text) == "" {
		return Document{Title: title}, ErrNoContent
	}
	return Document{Title: title, Text: Truncate(text, maxChars), Full: text}, nil
}

// Truncate cuts s to at most max characters (runes). It does not look for
// sentence boundaries.
func Truncate(s string, max int) string {
	if max <= 0 {
		max = DefaultMaxChars
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

func findTitle(n *html.Node) string {
	head := findFirst(n, "head")
	if head == nil {
		return ""
	}
	t := findFirst(head, "title")
	if t == nil || t.FirstChild == nil {
		return ""
	}
	return t.FirstChild.Data
}

func findFirst(n *html.Node, tag string) *html.Node {
	var res *html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if res != nil {
			return
		}
		if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, tag) {
			res = cur
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
			if res != nil {
				return
			}
		}
	}
	dfs(n)
	return res
}

// prune detaches every removed element. Nodes are collected first because
// RemoveChild invalidates sibling links during traversal.
func prune(root *html.Node) {
	var doomed []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && removedTags[strings.ToLower(n.Data)] {
			doomed = append(doomed, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	for _, n := range doomed {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
}

// collectBlocks appends the text of every allow-listed element under n in
// document order. Allow-listed descendants of an allow-listed element are
// visited too, so a <p> inside an <li> contributes on its own line as well.
func collectBlocks(n *html.Node, parts *[]string) {
	if n.Type == html.ElementNode && textTags[strings.ToLower(n.Data)] {
		if t := collapseSpaces(strings.TrimSpace(textContent(n))); t != "" {
			*parts = append(*parts, t)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectBlocks(c, parts)
	}
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		switch cur.Type {
		case html.TextNode:
			b.WriteString(cur.Data)
		case html.ElementNode:
			if strings.EqualFold(cur.Data, "br") {
				b.WriteByte(' ')
			}
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\u00a0' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}
