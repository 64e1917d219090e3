package detect

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/juparave/a11yfix/internal/domain"
	"github.com/juparave/a11yfix/internal/selector"
)

// ValidRoles is the set of ARIA roles accepted on any element
var ValidRoles = map[string]bool{
	"alert": true, "alertdialog": true, "article": true, "banner": true,
	"button": true, "cell": true, "checkbox": true, "columnheader": true,
	"complementary": true, "contentinfo": true, "definition": true,
	"dialog": true, "directory": true, "document": true, "feed": true,
	"figure": true, "form": true, "grid": true, "gridcell": true, "group": true,
	"heading": true, "img": true, "link": true, "list": true, "listbox": true,
	"listitem": true, "log": true, "main": true, "marquee": true, "math": true,
	"menu": true, "menubar": true, "menuitem": true, "menuitemcheckbox": true,
	"menuitemradio": true, "navigation": true, "none": true, "note": true,
	"option": true, "presentation": true, "progressbar": true, "radio": true,
	"radiogroup": true, "region": true, "row": true, "rowgroup": true,
	"rowheader": true, "scrollbar": true, "search": true, "searchbox": true,
	"separator": true, "slider": true, "spinbutton": true, "status": true,
	"switch": true, "tab": true, "table": true, "tablist": true,
	"tabpanel": true, "term": true, "textbox": true, "timer": true,
	"toolbar": true, "tooltip": true, "tree": true, "treegrid": true,
	"treeitem": true,
}

// ImplicitRole returns the role an element already has without a role
// attribute, or "" when it has none worth comparing against.
func ImplicitRole(n *html.Node) string {
	switch n.Data {
	case "button":
		return "button"
	case "a":
		return "link"
	case "input":
		if selector.Attr(n, "type") == "text" {
			return "textbox"
		}
	case "img":
		return "img"
	case "nav":
		return "navigation"
	case "main":
		return "main"
	case "article":
		return "article"
	case "aside":
		return "complementary"
	case "header":
		return "banner"
	case "footer":
		return "contentinfo"
	}
	return ""
}

var (
	namedTags      = map[string]bool{"button": true, "a": true, "input": true, "select": true, "textarea": true}
	namedRoles     = map[string]bool{"button": true, "link": true, "textbox": true, "checkbox": true, "radio": true, "switch": true}
	requiredTags   = map[string]bool{"input": true, "select": true, "textarea": true}
	requiredRoles  = map[string]bool{"textbox": true, "checkbox": true, "radio": true, "combobox": true, "listbox": true}
	focusableTags  = map[string]bool{"a": true, "button": true, "input": true, "select": true, "textarea": true}
	focusableRoles = map[string]bool{"button": true, "link": true, "textbox": true}
)

func hasARIA(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key == "role" || strings.HasPrefix(a.Key, "aria-") {
			return true
		}
	}
	return false
}

func detectARIA(doc *Document, e *emitter) {
	for _, n := range selector.Elements(doc.Root) {
		if !hasARIA(n) {
			continue
		}
		checkRole(n, e)
		checkAccessibleName(n, e)
		checkRequired(n, e)
		checkHidden(n, e)
	}
}

func checkRole(n *html.Node, e *emitter) {
	role, ok := selector.Lookup(n, "role")
	role = strings.TrimSpace(role)
	if !ok || role == "" {
		return
	}
	if !ValidRoles[role] {
		e.add(at(n, domain.RawFinding{
			Type:        domain.IssueInvalidARIARole,
			Severity:    domain.SeverityHigh,
			WCAGLevel:   domain.LevelA,
			WCAGRule:    "4.1.2",
			Message:     fmt.Sprintf("Invalid ARIA role: %s", role),
			Description: fmt.Sprintf("The role '%s' is not a valid ARIA role. This can confuse screen readers.", role),
			FixHint:     "Use a valid ARIA role from the ARIA specification or remove the role attribute if not needed.",
		}))
	}
	if implicit := ImplicitRole(n); implicit != "" && implicit == role {
		e.add(at(n, domain.RawFinding{
			Type:        domain.IssueRedundantARIARole,
			Severity:    domain.SeverityLow,
			WCAGLevel:   domain.LevelA,
			WCAGRule:    "4.1.2",
			Message:     fmt.Sprintf("Redundant ARIA role: %s", role),
			Description: fmt.Sprintf("The role '%s' is redundant because the element already has that semantic meaning.", role),
			FixHint:     "Remove the redundant role attribute",
		}))
	}
}

// checkAccessibleName flags interactive elements with no accessible name.
// Visible text counts only for buttons and links.
func checkAccessibleName(n *html.Node, e *emitter) {
	role := selector.Attr(n, "role")
	if !namedTags[n.Data] && !namedRoles[role] {
		return
	}
	named := selector.Attr(n, "aria-label") != "" ||
		selector.Attr(n, "aria-labelledby") != "" ||
		(n.Data == "input" && selector.Attr(n, "placeholder") != "")
	if !named && (n.Data == "button" || n.Data == "a" || role == "button" || role == "link") {
		named = selector.Text(n) != ""
	}
	if named {
		return
	}
	e.add(at(n, domain.RawFinding{
		Type:        domain.IssueMissingARIALabel,
		Severity:    domain.SeverityHigh,
		WCAGLevel:   domain.LevelA,
		WCAGRule:    "4.1.2",
		Message:     "Element missing accessible name",
		Description: "Interactive elements must have an accessible name for screen reader users.",
		FixHint:     "Add aria-label or aria-labelledby attribute, or ensure element has visible text/label",
	}))
}

func checkRequired(n *html.Node, e *emitter) {
	if selector.Attr(n, "aria-required") == "" || requiredTags[n.Data] || requiredRoles[selector.Attr(n, "role")] {
		return
	}
	e.add(at(n, domain.RawFinding{
		Type:        domain.IssueMisusedARIARequired,
		Severity:    domain.SeverityMedium,
		WCAGLevel:   domain.LevelA,
		WCAGRule:    "4.1.2",
		Message:     "aria-required used on non-form element",
		Description: "aria-required should only be used on form input elements.",
		FixHint:     "Remove aria-required or use required attribute on form element",
	}))
}

func checkHidden(n *html.Node, e *emitter) {
	if selector.Attr(n, "aria-hidden") != "true" || !isFocusable(n) {
		return
	}
	e.add(at(n, domain.RawFinding{
		Type:        domain.IssueARIAHiddenFocusable,
		Severity:    domain.SeverityHigh,
		WCAGLevel:   domain.LevelA,
		WCAGRule:    "4.1.2",
		Message:     "Focusable element hidden from screen readers",
		Description: "Using aria-hidden='true' on focusable elements hides them from screen readers but keyboard users can still reach them, creating confusion.",
		FixHint:     "Remove aria-hidden or make element non-focusable",
	}))
}

func isFocusable(n *html.Node) bool {
	if focusableTags[n.Data] || focusableRoles[selector.Attr(n, "role")] {
		return true
	}
	tabindex := strings.TrimSpace(selector.Attr(n, "tabindex"))
	return tabindex != "" && tabindex != "-1"
}
