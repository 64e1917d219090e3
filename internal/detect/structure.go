package detect

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/juparave/a11yfix/internal/domain"
	"github.com/juparave/a11yfix/internal/selector"
)

func detectAltText(doc *Document, e *emitter) {
	for _, img := range selector.FindAll(doc.Root, "img") {
		alt, ok := selector.Lookup(img, "alt")
		switch {
		case !ok:
			e.add(at(img, domain.RawFinding{
				Type:        domain.IssueMissingAltText,
				Severity:    domain.SeverityHigh,
				WCAGLevel:   domain.LevelA,
				WCAGRule:    "1.1.1",
				Message:     "Image missing alt attribute",
				Description: "Images must have an alt attribute to provide text alternatives for screen readers.",
				FixHint:     "Add alt attribute with descriptive text",
			}))
		case alt == "" && !isDecorative(img):
			e.add(at(img, domain.RawFinding{
				Type:        domain.IssueEmptyAltText,
				Severity:    domain.SeverityMedium,
				WCAGLevel:   domain.LevelA,
				WCAGRule:    "1.1.1",
				Message:     "Image has empty alt attribute - ensure it's decorative or add description",
				Description: "Empty alt text should only be used for decorative images. If the image conveys information, add descriptive alt text.",
				FixHint:     "Add descriptive alt text or mark image as decorative with role='presentation'",
			}))
		}
	}
}

func isDecorative(img *html.Node) bool {
	return selector.Attr(img, "role") == "presentation" || selector.Attr(img, "aria-hidden") == "true"
}

func detectSemantic(doc *Document, e *emitter) {
	for _, n := range selector.FindAll(doc.Root, "div", "span") {
		if selector.Attr(n, "onclick") == "" && selector.Attr(n, "role") != "button" {
			continue
		}
		e.add(at(n, domain.RawFinding{
			Type:        domain.IssueSemanticHTML,
			Severity:    domain.SeverityMedium,
			WCAGLevel:   domain.LevelA,
			WCAGRule:    "4.1.2",
			Message:     fmt.Sprintf("Using %s as button - use semantic <button> element", n.Data),
			Description: "Use semantic HTML elements for better accessibility. Screen readers can better identify interactive elements.",
			FixHint:     "Replace with <button> element",
		}))
	}
}

func detectForms(doc *Document, e *emitter) {
	labelFor := LabelTargets(doc.Root)
	for _, field := range selector.FindAll(doc.Root, "input", "select", "textarea") {
		if strings.EqualFold(selector.Attr(field, "type"), "hidden") {
			continue
		}
		if HasLabel(field, labelFor) {
			continue
		}
		if selector.Attr(field, "placeholder") != "" {
			e.add(at(field, domain.RawFinding{
				Type:        domain.IssuePlaceholderInsteadLabel,
				Severity:    domain.SeverityHigh,
				WCAGLevel:   domain.LevelA,
				WCAGRule:    "1.3.1",
				Message:     "Form input missing proper label",
				Description: "Form inputs must have associated labels for screen reader users. Placeholder text is not sufficient.",
				FixHint:     "Add <label> element or aria-label/aria-labelledby attribute",
			}))
			continue
		}
		e.add(at(field, domain.RawFinding{
			Type:        domain.IssueMissingLabel,
			Severity:    domain.SeverityHigh,
			WCAGLevel:   domain.LevelA,
			WCAGRule:    "1.3.1",
			Message:     "Form input missing label",
			Description: "All form inputs must have associated labels for accessibility.",
			FixHint:     "Add <label> element or aria-label/aria-labelledby attribute",
		}))
	}
}

// LabelTargets returns the ids referenced by label[for]
func LabelTargets(root *html.Node) map[string]bool {
	labelFor := make(map[string]bool)
	for _, l := range selector.FindAll(root, "label") {
		if id := selector.Attr(l, "for"); id != "" {
			labelFor[id] = true
		}
	}
	return labelFor
}

// HasLabel reports whether a form field has an accessible label: a
// <label for> naming its id, a wrapping <label>, aria-label or
// aria-labelledby. labelFor holds the ids referenced by label[for].
func HasLabel(field *html.Node, labelFor map[string]bool) bool {
	if id := selector.Attr(field, "id"); id != "" && labelFor[id] {
		return true
	}
	if selector.Ancestor(field, "label") != nil {
		return true
	}
	return selector.Attr(field, "aria-label") != "" || selector.Attr(field, "aria-labelledby") != ""
}

func detectHeadings(doc *Document, e *emitter) {
	headings := selector.FindAll(doc.Root, "h1", "h2", "h3", "h4", "h5", "h6")
	if len(headings) == 0 {
		e.add(domain.RawFinding{
			Type:        domain.IssueMissingHeadings,
			Severity:    domain.SeverityMedium,
			WCAGLevel:   domain.LevelAA,
			WCAGRule:    "1.3.1",
			Message:     "Page missing heading structure",
			Description: "Headings help screen reader users navigate the page structure.",
			FixHint:     "Add heading elements (h1-h6) to structure content",
		})
		return
	}

	previous := 0
	for _, h := range headings {
		level := int(h.Data[1] - '0')
		// Only downward skips are flagged; going back up (h3 -> h1) is fine.
		if previous > 0 && level > previous+1 {
			f := at(h, domain.RawFinding{
				Type:        domain.IssueHeadingHierarchy,
				Severity:    domain.SeverityMedium,
				WCAGLevel:   domain.LevelAA,
				WCAGRule:    "1.3.1",
				Message:     fmt.Sprintf("Heading level jumps from h%d to h%d", previous, level),
				Description: "Heading hierarchy should not skip levels. This confuses screen reader users navigating by headings.",
				FixHint:     fmt.Sprintf("Use h%d or adjust heading structure", previous+1),
			})
			f.Heading = &domain.HeadingDetails{From: previous, To: level}
			e.add(f)
		}
		previous = level
	}
}

func detectLanguage(doc *Document, e *emitter) {
	root := selector.First(doc.Root, "html")
	if root != nil && strings.TrimSpace(selector.Attr(root, "lang")) != "" {
		return
	}
	element := "<html>"
	if root != nil {
		element = selector.Truncate(root, elementExcerpt)
	}
	e.add(domain.RawFinding{
		Type:        domain.IssueMissingLang,
		Severity:    domain.SeverityHigh,
		WCAGLevel:   domain.LevelA,
		WCAGRule:    "3.1.1",
		Selector:    "html",
		Element:     element,
		Message:     "HTML element missing lang attribute",
		Description: "The lang attribute helps screen readers pronounce content correctly and search engines understand the language.",
		FixHint:     `Add lang attribute to <html> tag (e.g., <html lang="en">)`,
	})
}
