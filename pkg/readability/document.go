// Package readability extracts the main article content from arbitrary
// HTML using a heuristic content-scoring algorithm. The entry point is
// Extract; the scoring, cleanup, and metadata stages are pure functions of
// the parsed tree, so extraction is deterministic and needs no locking.
package readability

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document wraps a parsed HTML tree together with the URL it was served
// from, which anchors relative reference resolution.
type Document struct {
	doc  *goquery.Document
	base *url.URL
}

// ParseDocument builds a Document from raw markup. Malformed markup is
// tolerated where the HTML5 tree-construction rules can recover it; only
// an unrecoverable decode failure returns an error.
func ParseDocument(markup string, base *url.URL) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{doc: doc, base: base}, nil
}

// root returns the document's root html node.
func (d *Document) root() *html.Node {
	nodes := d.doc.Selection.Nodes
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// skippedText reports tags whose text content is never article prose.
func skippedText(tag string) bool {
	switch tag {
	case "script", "style", "noscript", "template":
		return true
	}
	return false
}

// nodeText returns the concatenated, whitespace-normalized text of a
// subtree, ignoring script and style content.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		switch cur.Type {
		case html.TextNode:
			b.WriteString(cur.Data)
		case html.ElementNode:
			if skippedText(cur.Data) {
				return
			}
		default:
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(b.String(), " "))
}

// linkDensity is the ratio of anchor-wrapped text length to total text
// length within a node, clamped to [0, 1]. Nodes that are mostly links
// (navigation, related-article lists) score close to 1.
func linkDensity(n *html.Node) float64 {
	total := len(nodeText(n))
	if total == 0 {
		return 0
	}
	var linked int
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.ElementNode && cur.Data == "a" {
			linked += len(nodeText(cur))
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	density := float64(linked) / float64(total)
	if density > 1 {
		density = 1
	}
	return density
}

// attrValue returns the value of the named attribute, or "".
func attrValue(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

// setAttr replaces or adds an attribute.
func setAttr(n *html.Node, name, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// removeAttr drops an attribute if present.
func removeAttr(n *html.Node, name string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// detach removes a node from its parent, leaving the subtree intact.
func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// replaceNode swaps old for repl in old's parent, preserving child order.
func replaceNode(old, repl *html.Node) {
	parent := old.Parent
	if parent == nil {
		return
	}
	detach(repl)
	parent.InsertBefore(repl, old)
	parent.RemoveChild(old)
}

// newElement creates a detached element node.
func newElement(tag string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag}
}

// walkElements visits every element in document order. Returning false
// from the visitor skips the node's descendants.
func walkElements(root *html.Node, visit func(*html.Node) bool) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && !visit(n) {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
}

// collectElements gathers matching elements first so callers can mutate
// the tree without invalidating an in-flight traversal.
func collectElements(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	walkElements(root, func(n *html.Node) bool {
		if match(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// cloneSubtree deep-copies a node and its descendants into a detached tree.
func cloneSubtree(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(cloneSubtree(c))
	}
	return clone
}

// RenderNode serializes a subtree back to HTML.
func RenderNode(n *html.Node) (string, error) {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}
	return b.String(), nil
}
