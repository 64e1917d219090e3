package detect

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/juparave/a11yfix/internal/domain"
	"github.com/juparave/a11yfix/internal/selector"
)

var keyboardAttrs = []string{"onkeydown", "onkeyup", "onkeypress"}

func detectKeyboard(doc *Document, e *emitter) {
	for _, n := range selector.FindAll(doc.Root, "a", "button", "input", "select", "textarea") {
		checkTabindex(n, e)
		checkDisabledState(n, e)
	}
	body := selector.First(doc.Root, "body")
	if body == nil {
		body = doc.Root
	}
	js := newScriptText(doc.JS)
	for _, n := range selector.Elements(body) {
		checkClickHandler(n, js, e)
	}
}

func checkTabindex(n *html.Node, e *emitter) {
	tabindex := strings.TrimSpace(selector.Attr(n, "tabindex"))
	if v, err := strconv.Atoi(tabindex); err == nil && v > 0 {
		e.add(at(n, domain.RawFinding{
			Type:        domain.IssueInvalidTabindex,
			Severity:    domain.SeverityHigh,
			WCAGLevel:   domain.LevelA,
			WCAGRule:    "2.1.1",
			Message:     "Positive tabindex breaks natural tab order",
			Description: "tabindex > 0 breaks the natural tab order and can confuse keyboard users.",
			FixHint:     "Remove tabindex or use tabindex='-1' if element should not be in tab order",
		}))
	}
	if tabindex != "-1" || n.Data != "a" {
		return
	}
	switch href := selector.Attr(n, "href"); href {
	case "", "#", "javascript:void(0)":
		return
	}
	e.add(at(n, domain.RawFinding{
		Type:        domain.IssueRemovedFromTabOrder,
		Severity:    domain.SeverityMedium,
		WCAGLevel:   domain.LevelA,
		WCAGRule:    "2.1.1",
		Message:     "Link removed from keyboard navigation",
		Description: "Link is removed from tab order. Ensure alternative keyboard access is provided.",
		FixHint:     "Remove tabindex='-1' or provide alternative keyboard navigation method",
	}))
}

func checkDisabledState(n *html.Node, e *emitter) {
	if selector.Attr(n, "aria-disabled") != "true" || selector.HasAttr(n, "disabled") {
		return
	}
	switch n.Data {
	case "input", "button", "select", "textarea":
	default:
		return
	}
	e.add(at(n, domain.RawFinding{
		Type:        domain.IssueInconsistentDisabled,
		Severity:    domain.SeverityLow,
		WCAGLevel:   domain.LevelA,
		WCAGRule:    "4.1.2",
		Message:     "aria-disabled without disabled attribute",
		Description: "For form elements, use the disabled attribute along with aria-disabled for consistency.",
		FixHint:     "Add disabled attribute or remove aria-disabled if element should be interactive",
	}))
}

// checkClickHandler is a static heuristic: a script "handles clicks" on an
// element when it mentions the element's #id, getElementById("id") or its
// first .class, and "handles keys" when a key event name follows such a
// mention on the same line. Links and buttons are keyboard operable already.
func checkClickHandler(n *html.Node, js scriptText, e *emitter) {
	if n.Data == "a" || n.Data == "button" {
		return
	}
	if !selector.HasAttr(n, "onclick") && !scriptClicks(n, js) {
		return
	}
	for _, attr := range keyboardAttrs {
		if selector.HasAttr(n, attr) {
			return
		}
	}
	if scriptHandlesKeys(n, js) {
		return
	}
	e.add(at(n, domain.RawFinding{
		Type:        domain.IssueMissingKeyboardHandler,
		Severity:    domain.SeverityHigh,
		WCAGLevel:   domain.LevelA,
		WCAGRule:    "2.1.1",
		Message:     "Click handler without keyboard support",
		Description: "Elements with click handlers should also support keyboard activation (Enter/Space keys).",
		FixHint:     "Add keyboard event handlers (keydown/keypress) that respond to Enter and Space keys",
	}))
}

func firstClass(n *html.Node) string {
	if classes := strings.Fields(selector.Attr(n, "class")); len(classes) > 0 {
		return classes[0]
	}
	return ""
}

// scriptText is the page script kept as written and as lower-cased lines,
// prepared once per document.
type scriptText struct {
	raw   string
	lines []string
}

func newScriptText(js string) scriptText {
	if js == "" {
		return scriptText{}
	}
	return scriptText{raw: js, lines: strings.Split(strings.ToLower(js), "\n")}
}

func isWordByte(c byte) bool {
	return c == '_' || '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

// classAt returns the index just past the first ".class" in s that ends on
// a word boundary, or -1.
func classAt(s, class string) int {
	needle := "." + class
	for off := 0; ; {
		i := strings.Index(s[off:], needle)
		if i < 0 {
			return -1
		}
		end := off + i + len(needle)
		if end == len(s) || !isWordByte(s[end]) {
			return end
		}
		off = off + i + 1
	}
}

// after returns the part of s following the first occurrence of sub
func after(s, sub string) (string, bool) {
	i := strings.Index(s, sub)
	if i < 0 {
		return "", false
	}
	return s[i+len(sub):], true
}

func hasKeyEvent(s string, events ...string) bool {
	for _, ev := range events {
		if strings.Contains(s, ev) {
			return true
		}
	}
	return false
}

func scriptClicks(n *html.Node, js scriptText) bool {
	if js.raw == "" {
		return false
	}
	if id := selector.Attr(n, "id"); id != "" {
		if strings.Contains(js.raw, "#"+id) || strings.Contains(js.raw, `getElementById("`+id+`")`) {
			return true
		}
	}
	if class := firstClass(n); class != "" {
		return classAt(js.raw, class) >= 0
	}
	return false
}

func scriptHandlesKeys(n *html.Node, js scriptText) bool {
	if js.raw == "" {
		return false
	}
	id := strings.ToLower(selector.Attr(n, "id"))
	class := strings.ToLower(firstClass(n))
	for _, line := range js.lines {
		if id != "" {
			if rest, ok := after(line, "#"+id); ok && hasKeyEvent(rest, "keydown", "keypress", "keyup") {
				return true
			}
			if rest, ok := after(line, "getelementbyid"); ok {
				if rest, ok := after(rest, id); ok && hasKeyEvent(rest, "keydown", "keypress") {
					return true
				}
			}
		}
		if class != "" {
			if end := classAt(line, class); end >= 0 && hasKeyEvent(line[end:], "keydown", "keypress", "keyup") {
				return true
			}
		}
	}
	return false
}
