package detect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"

	"github.com/juparave/a11yfix/internal/contrast"
	"github.com/juparave/a11yfix/internal/domain"
	"github.com/juparave/a11yfix/internal/readability"
	"github.com/juparave/a11yfix/internal/selector"
)

var textTags = []string{"p", "span", "div", "h1", "h2", "h3", "h4", "h5", "h6", "a", "button", "label"}

// detectContrast reads colours from inline styles only. Elements that do
// not declare both a text and a background colour are skipped.
func detectContrast(doc *Document, e *emitter) {
	for _, n := range selector.FindAll(doc.Root, textTags...) {
		if selector.Text(n) == "" {
			continue
		}
		text, bg := contrast.InlineColors(selector.Attr(n, "style"))
		if text == "" || bg == "" {
			continue
		}
		ratio := contrast.Ratio(text, bg)
		large := contrast.IsLargeText(n)
		required := contrast.Required(large)
		if ratio >= required {
			continue
		}
		f := at(n, domain.RawFinding{
			Type:        domain.IssueContrastRatio,
			Severity:    domain.SeverityHigh,
			WCAGLevel:   domain.LevelAA,
			WCAGRule:    "1.4.3",
			Message:     fmt.Sprintf("Color contrast ratio %.2f:1 is below WCAG AA standard (%.1f:1)", ratio, required),
			Description: fmt.Sprintf("Text color (%s) and background color (%s) have insufficient contrast for readability.", text, bg),
			FixHint:     "Adjust colors to meet contrast requirements",
		})
		f.Contrast = &domain.ContrastDetails{
			CurrentRatio:    ratio,
			RequiredRatio:   required,
			TextColor:       text,
			BackgroundColor: bg,
			LargeText:       large,
		}
		e.add(f)
	}
}

func detectReadability(doc *Document, e *emitter) {
	region := selector.First(doc.Root, "main")
	if region == nil {
		region = selector.First(doc.Root, "article")
	}
	if region == nil {
		region = selector.First(doc.Root, "body")
	}
	if region == nil {
		return
	}
	text := selector.RawText(region, " ")
	if readability.Clean(text) == "" {
		return
	}
	score := readability.Score(text)
	if score >= readability.Threshold {
		return
	}
	e.add(domain.RawFinding{
		Type:             domain.IssueReadability,
		Severity:         domain.SeverityLow,
		WCAGLevel:        domain.LevelAAA,
		WCAGRule:         "3.1.5",
		Selector:         selector.Locator(region),
		Message:          "Text may be too complex for general audience",
		Description:      fmt.Sprintf("Readability score: %.1f. Consider simplifying language for better comprehension.", score),
		FixHint:          "Simplify sentence structure and vocabulary",
		ReadabilityScore: score,
	})
}

var (
	focusRulePattern   = regexp.MustCompile(`(?i):focus(-visible)?\s*[,{]`)
	outlineNonePattern = regexp.MustCompile(`(?i)outline\s*:\s*(none|0)\b`)
)

func detectFocus(doc *Document, e *emitter) {
	if strings.TrimSpace(doc.CSS) == "" {
		return
	}
	hasFocus, outlineRemoved := scanFocusRules(doc.CSS)
	switch {
	case hasFocus:
		return
	case outlineRemoved:
		e.add(domain.RawFinding{
			Type:        domain.IssueFocusIndicator,
			Severity:    domain.SeverityHigh,
			WCAGLevel:   domain.LevelAA,
			WCAGRule:    "2.4.7",
			Message:     "Focus indicators removed without replacement",
			Description: "Removing outline without adding custom focus styles makes keyboard navigation difficult.",
			FixHint:     "Add visible focus styles (border, box-shadow, or outline)",
		})
	default:
		e.add(domain.RawFinding{
			Type:        domain.IssueFocusIndicator,
			Severity:    domain.SeverityMedium,
			WCAGLevel:   domain.LevelAA,
			WCAGRule:    "2.4.7",
			Message:     "Custom focus indicators recommended",
			Description: "While default browser focus indicators exist, custom visible focus styles improve accessibility.",
			FixHint:     "Add :focus and :focus-visible styles",
		})
	}
}

// scanFocusRules reports whether the stylesheet has any :focus rule and
// whether any rule removes the outline. Sheets douceur cannot parse are
// scanned with regular expressions instead.
func scanFocusRules(sheet string) (hasFocus, outlineRemoved bool) {
	parsed, err := parser.Parse(sheet)
	if err != nil {
		return focusRulePattern.MatchString(sheet), outlineNonePattern.MatchString(sheet)
	}
	var walk func(rules []*css.Rule)
	walk = func(rules []*css.Rule) {
		for _, r := range rules {
			for _, sel := range r.Selectors {
				if strings.Contains(strings.ToLower(sel), ":focus") {
					hasFocus = true
				}
			}
			for _, d := range r.Declarations {
				if strings.EqualFold(d.Property, "outline") && removesOutline(d.Value) {
					outlineRemoved = true
				}
			}
			walk(r.Rules)
		}
	}
	walk(parsed.Rules)
	return hasFocus, outlineRemoved
}

func removesOutline(value string) bool {
	for _, f := range strings.Fields(strings.ToLower(value)) {
		if f == "none" || f == "0" {
			return true
		}
	}
	return false
}
