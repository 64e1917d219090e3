// Package selector produces and resolves the locators that tie findings,
// fused issues and patches to document nodes.
package selector

import (
	"bytes"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// General is the locator of findings that do not point at an element
const General = "general"

// Locator returns a stable, human-readable locator for n: "#id" when the
// element has an id, else ".class" for its first class, else its tag name.
func Locator(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return "unknown"
	}
	if id := strings.TrimSpace(Attr(n, "id")); id != "" {
		return "#" + id
	}
	if classes := strings.Fields(Attr(n, "class")); len(classes) > 0 {
		return "." + classes[0]
	}
	return n.Data
}

// Resolve finds the first element matching locator in document order.
// "#id" and ".class" locators are first matched literally, since ids such as
// "user.email" are valid CSS that selects something else. Anything else is
// compiled as a CSS selector. It returns nil when nothing matches.
func Resolve(root *html.Node, locator string) *html.Node {
	locator = strings.TrimSpace(locator)
	if root == nil || locator == "" || locator == General {
		return nil
	}
	if strings.HasPrefix(locator, "#") || strings.HasPrefix(locator, ".") {
		if n := resolveLiteral(root, locator); n != nil {
			return n
		}
	}
	if sel, err := cascadia.Compile(locator); err == nil {
		return sel.MatchFirst(root)
	}
	return resolveLiteral(root, locator)
}

func resolveLiteral(root *html.Node, locator string) *html.Node {
	var match func(n *html.Node) bool
	switch {
	case strings.HasPrefix(locator, "#"):
		id := locator[1:]
		match = func(n *html.Node) bool { return Attr(n, "id") == id }
	case strings.HasPrefix(locator, "."):
		class := locator[1:]
		match = func(n *html.Node) bool { return HasClass(n, class) }
	default:
		tag := strings.ToLower(locator)
		match = func(n *html.Node) bool { return n.Data == tag }
	}
	for _, n := range Elements(root) {
		if match(n) {
			return n
		}
	}
	return nil
}

// Parse parses a full document
func Parse(markup string) (*html.Node, error) {
	return html.Parse(strings.NewReader(markup))
}

// Render serializes n and its subtree
func Render(n *html.Node) string {
	if n == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// Truncate renders n and cuts the result to max bytes
func Truncate(n *html.Node, max int) string {
	s := Render(n)
	if len(s) > max {
		return s[:max]
	}
	return s
}

// Elements returns every element under root in document order
func Elements(root *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}

// FindAll returns the elements with one of the given tag names, in document order
func FindAll(root *html.Node, tags ...string) []*html.Node {
	want := make(map[string]bool, len(tags))
	for _, t := range tags {
		want[t] = true
	}
	var out []*html.Node
	for _, n := range Elements(root) {
		if want[n.Data] {
			out = append(out, n)
		}
	}
	return out
}

// First returns the first element with the given tag name
func First(root *html.Node, tag string) *html.Node {
	for _, n := range Elements(root) {
		if n.Data == tag {
			return n
		}
	}
	return nil
}

// Ancestor returns the closest ancestor of n with the given tag name
func Ancestor(n *html.Node, tag string) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == tag {
			return p
		}
	}
	return nil
}

// Attr returns the value of attribute key, or "" when absent
func Attr(n *html.Node, key string) string {
	v, _ := Lookup(n, key)
	return v
}

// Lookup returns the value of attribute key and whether it is present
func Lookup(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether attribute key is present, whatever its value
func HasAttr(n *html.Node, key string) bool {
	_, ok := Lookup(n, key)
	return ok
}

// SetAttr sets attribute key, replacing an existing value in place
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes attribute key and reports whether it was present
func RemoveAttr(n *html.Node, key string) bool {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return true
		}
	}
	return false
}

// HasClass reports whether class is one of n's classes
func HasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// Text returns the text content of n with whitespace runs collapsed
func Text(n *html.Node) string {
	return strings.Join(strings.Fields(RawText(n, " ")), " ")
}

// RawText joins the text nodes under n with sep, skipping script and style
func RawText(n *html.Node, sep string) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && (node.Data == "script" || node.Data == "style") {
			return
		}
		if node.Type == html.TextNode {
			if t := strings.TrimSpace(node.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return strings.Join(parts, sep)
}
