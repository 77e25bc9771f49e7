package readability

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Styling hook classes consumed by the packaging stylesheet. The
// normalizer tags structure only; presentation stays in the stylesheet.
const (
	headingClass = "webtome-heading"
	imageClass   = "webtome-img"
	preClass     = "webtome-pre"
)

// normalize rewrites the selected subtree into a clean, self-contained
// article body. Passes run in a fixed order and are idempotent, so
// re-normalizing an already-clean tree is a no-op.
func normalize(candidate *html.Node, base *url.URL, tun Tuning) *html.Node {
	stripNonContent(candidate, tun)
	root := unwrapWrappers(candidate)
	absolutizeReferences(root, base)
	pruneEmpty(root)
	// Pruning can leave a wrapper with a single block child, so wrappers
	// are collapsed once more. Unwrapping never creates empty blocks, so
	// this reaches the fixed point.
	root = unwrapWrappers(root)
	tagStylingHooks(root)
	return root
}

// strippedOutright lists tags that never carry article content.
func strippedOutright(tag string) bool {
	switch tag {
	case "script", "style", "noscript", "template", "iframe", "object",
		"embed", "applet", "form", "input", "button", "select", "textarea",
		"option", "link", "meta", "nav", "aside", "footer":
		return true
	}
	return false
}

// stripNonContent removes script/style/embed/form-control tags, comment
// nodes, share/comment-pattern class matches, and containers whose text
// density marks them as boilerplate.
func stripNonContent(root *html.Node, tun Tuning) {
	for _, n := range collectElements(root, func(n *html.Node) bool {
		return n != root && strippedOutright(n.Data)
	}) {
		detach(n)
	}

	// HTML comments.
	var comments []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.CommentNode {
			comments = append(comments, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	for _, n := range comments {
		detach(n)
	}

	// Containers with negative or share class/id patterns, except the
	// root itself. Prose tags are spared so a stray class name on a
	// paragraph cannot delete article text.
	for _, n := range collectElements(root, func(n *html.Node) bool {
		if n == root {
			return false
		}
		switch n.Data {
		case "div", "section", "table", "ul", "ol", "dl", "li", "span":
		default:
			return false
		}
		attrs := attrValue(n, "class") + " " + attrValue(n, "id")
		return shareRe.MatchString(attrs) ||
			classWeight(attrValue(n, "class"), attrValue(n, "id"), tun) < 0
	}) {
		if stillAttached(root, n) {
			detach(n)
		}
	}

	stripBoilerplate(root, tun)
}

// stripBoilerplate removes structural containers whose text-to-structure
// ratio marks them as chrome rather than prose: link farms, input-heavy
// blocks, and image grids with no surrounding text.
func stripBoilerplate(root *html.Node, tun Tuning) {
	for _, n := range collectElements(root, func(n *html.Node) bool {
		if n == root {
			return false
		}
		switch n.Data {
		case "div", "section", "table", "ul", "ol", "dl":
			return true
		}
		return false
	}) {
		if !stillAttached(root, n) {
			continue
		}
		text := nodeText(n)
		paragraphs := countTag(n, "p")
		images := countTag(n, "img")
		inputs := countTag(n, "input")
		switch {
		case inputs > 0 && inputs*3 > paragraphs:
			detach(n)
		case images > paragraphs && len(text) < tun.MinTextLength:
			detach(n)
		case linkDensity(n) > 0.5 && len(text) > 0:
			detach(n)
		}
	}
}

// stillAttached reports whether n is still in root's subtree. Earlier
// removals in the same pass can orphan collected nodes.
func stillAttached(root, n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == root {
			return true
		}
	}
	return false
}

func countTag(root *html.Node, tag string) int {
	count := 0
	walkElements(root, func(n *html.Node) bool {
		if n.Data == tag {
			count++
		}
		return true
	})
	return count
}

// blockLevel lists the tags a wrapper may collapse into.
func blockLevel(tag string) bool {
	switch tag {
	case "div", "section", "article", "main", "p", "ul", "ol", "dl",
		"table", "blockquote", "pre", "figure":
		return true
	}
	return false
}

// unwrapWrappers collapses containers whose only content is a single
// block-level child, reducing nesting depth without losing content. It
// returns the possibly-new subtree root.
func unwrapWrappers(root *html.Node) *html.Node {
	for {
		changed := false
		for _, n := range collectElements(root, func(n *html.Node) bool {
			switch n.Data {
			case "div", "section", "article":
				return true
			}
			return false
		}) {
			child := soleBlockChild(n)
			if child == nil {
				continue
			}
			if n == root {
				detach(child)
				root = child
			} else {
				replaceNode(n, child)
			}
			changed = true
			break
		}
		if !changed {
			return root
		}
	}
}

// soleBlockChild returns the single block-level element child if the node
// holds nothing else but whitespace, or nil.
func soleBlockChild(n *html.Node) *html.Node {
	var only *html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return nil
			}
		case html.ElementNode:
			if only != nil || !blockLevel(c.Data) {
				return nil
			}
			only = c
		}
	}
	return only
}

// absolutizeReferences resolves relative image and link references
// against the page's base URL. Images with unresolvable or empty sources
// are dropped; srcset is removed since the packaged source is absolute.
func absolutizeReferences(root *html.Node, base *url.URL) {
	for _, img := range collectElements(root, func(n *html.Node) bool {
		return n.Data == "img"
	}) {
		src := firstImageSource(img)
		abs, ok := resolveRef(base, src)
		if !ok {
			detach(img)
			continue
		}
		setAttr(img, "src", abs)
		removeAttr(img, "srcset")
		removeAttr(img, "data-src")
	}

	for _, a := range collectElements(root, func(n *html.Node) bool {
		return n.Data == "a"
	}) {
		if href := attrValue(a, "href"); href != "" {
			if abs, ok := resolveRef(base, href); ok {
				setAttr(a, "href", abs)
			}
		}
	}
}

// firstImageSource prefers src, falling back to the lazy-load attribute
// some sites use for the real image.
func firstImageSource(img *html.Node) string {
	if src := attrValue(img, "src"); src != "" {
		return src
	}
	return attrValue(img, "data-src")
}

func resolveRef(base *url.URL, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	if base == nil {
		parsed, err := url.Parse(ref)
		if err != nil || !parsed.IsAbs() {
			return "", false
		}
		return ref, true
	}
	resolved, err := base.Parse(ref)
	if err != nil || resolved.Scheme == "" {
		return "", false
	}
	return resolved.String(), true
}

// meaningfulLeaf reports element tags that justify keeping an otherwise
// text-free block.
func meaningfulLeaf(tag string) bool {
	switch tag {
	case "img", "picture", "video", "audio", "hr", "br":
		return true
	}
	return false
}

// pruneEmpty collapses consecutive whitespace-only text nodes and removes
// empty block elements, iterating to a fixed point since removing an
// empty child can empty its parent.
func pruneEmpty(root *html.Node) {
	for {
		removed := false

		// Merge runs of whitespace-only text siblings down to one.
		var texts []*html.Node
		var walk func(*html.Node)
		walk = func(n *html.Node) {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" &&
					c.PrevSibling != nil && c.PrevSibling.Type == html.TextNode &&
					strings.TrimSpace(c.PrevSibling.Data) == "" {
					texts = append(texts, c)
				}
				walk(c)
			}
		}
		walk(root)
		for _, t := range texts {
			detach(t)
			removed = true
		}

		for _, n := range collectElements(root, func(n *html.Node) bool {
			if n == root || meaningfulLeaf(n.Data) {
				return false
			}
			if nodeText(n) != "" {
				return false
			}
			keep := false
			walkElements(n, func(d *html.Node) bool {
				if d != n && meaningfulLeaf(d.Data) {
					keep = true
				}
				return !keep
			})
			return !keep
		}) {
			if stillAttached(root, n) {
				detach(n)
				removed = true
			}
		}

		if !removed {
			return
		}
	}
}

// tagStylingHooks marks headings, images, and pre blocks with the classes
// the packaging stylesheet targets.
func tagStylingHooks(root *html.Node) {
	walkElements(root, func(n *html.Node) bool {
		switch n.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			addClass(n, headingClass)
		case "img":
			addClass(n, imageClass)
		case "pre":
			addClass(n, preClass)
		}
		return true
	})
}

func addClass(n *html.Node, class string) {
	existing := attrValue(n, "class")
	for _, c := range strings.Fields(existing) {
		if c == class {
			return
		}
	}
	if existing == "" {
		setAttr(n, "class", class)
		return
	}
	setAttr(n, "class", existing+" "+class)
}
