package fusion

import (
	"fmt"
	"strings"

	"github.com/juparave/a11yfix/internal/contrast"
	"github.com/juparave/a11yfix/internal/domain"
)

type template struct {
	issueType   domain.IssueType
	action      string
	code        string
	explanation string
	confidence  float64
}

// templates is matched by exact type first, then by the first entry whose
// type is a substring of the issue type
var templates = []template{
	{domain.IssueMissingAltText, "add_alt_attribute", `<img src="..." alt="[AI-generated description]" />`, "Add descriptive alt text to image", 0.9},
	{domain.IssueMissingFocusIndicator, "add_focus_styles", `*:focus-visible { outline: 2px solid #0066cc; outline-offset: 2px; }`, "Add visible focus indicator for keyboard navigation", 0.85},
	{domain.IssueLowContrast, "increase_contrast", `color: #000000; background-color: #ffffff; /* 21:1 contrast */`, "Increase color contrast to meet WCAG AA (4.5:1) or AAA (7:1)", 0.8},
	{domain.IssueMissingLabel, "add_label", `<label for="input-id">Field Name</label><input id="input-id" />`, "Add accessible label for form input", 0.9},
	{domain.IssueImproperSemantics, "fix_semantics", `<button type="button">Click me</button>`, "Use semantic HTML elements instead of generic divs", 0.85},

	{domain.IssueEmptyAltText, "add_alt_attribute", `<img src="..." alt="[description]" />`, "Describe the image or mark it decorative with role=\"presentation\"", 0.75},
	{domain.IssueFocusIndicator, "add_focus_styles", `*:focus-visible { outline: 2px solid #0066cc; outline-offset: 2px; }`, "Add visible focus indicator for keyboard navigation", 0.85},
	{domain.IssueContrastRatio, "increase_contrast", `color: #000000; background-color: #ffffff; /* 21:1 contrast */`, "Increase color contrast to meet WCAG AA (4.5:1) or AAA (7:1)", 0.8},
	{domain.IssuePlaceholderInsteadLabel, "add_label", `<label for="input-id">Field Name</label><input id="input-id" placeholder="..." />`, "Add a visible label; placeholder text disappears while typing", 0.85},
	{domain.IssueSemanticHTML, "fix_semantics", `<button type="button">Click me</button>`, "Use semantic HTML elements instead of generic divs", 0.85},
	{domain.IssueMissingARIALabel, "add_aria_label", `<button aria-label="[purpose]">...</button>`, "Give the element an accessible name", 0.8},
	{domain.IssueMissingLang, "add_lang_attribute", `<html lang="en">`, "Declare the page language", 0.95},
	{domain.IssueInvalidTabindex, "remove_tabindex", `<button>...</button>`, "Remove positive tabindex to restore natural tab order", 0.9},
	{domain.IssueRemovedFromTabOrder, "remove_tabindex", `<a href="...">...</a>`, "Return the link to the tab order", 0.7},
	{domain.IssueInvalidARIARole, "remove_role", `<div>...</div>`, "Remove the invalid role or replace it with a valid ARIA role", 0.75},
	{domain.IssueRedundantARIARole, "remove_role", `<button>...</button>`, "Remove the redundant role attribute", 0.95},
	{domain.IssueMisusedARIARequired, "remove_aria_required", `<div>...</div>`, "Remove aria-required from non-form elements", 0.9},
	{domain.IssueHeadingHierarchy, "fix_heading_level", `<h2>...</h2>`, "Use the next heading level instead of skipping levels", 0.75},
	{domain.IssueMissingKeyboardHandler, "add_keyboard_handler", `el.addEventListener("keydown", e => { if (e.key === "Enter" || e.key === " ") el.click(); });`, "Let keyboard users activate the element with Enter and Space", 0.6},
}

func lookup(t domain.IssueType) (template, bool) {
	for _, tpl := range templates {
		if tpl.issueType == t {
			return tpl, true
		}
	}
	lower := strings.ToLower(string(t))
	for _, tpl := range templates {
		if strings.Contains(lower, string(tpl.issueType)) {
			return tpl, true
		}
	}
	return template{}, false
}

// recommend attaches the fix template for the issue's type. An AI
// suggestion overrides the template's confidence with its own.
func recommend(issue *domain.FusedIssue) {
	issue.FixConfidence = DefaultFixConfidence
	tpl, ok := lookup(issue.Type)
	if !ok {
		if issue.AISuggestion != "" {
			issue.FixConfidence = issue.AIConfidence
		}
		return
	}
	rec := &domain.Recommendation{
		Action:      tpl.action,
		Code:        tpl.code,
		Explanation: tpl.explanation,
		Confidence:  tpl.confidence,
	}
	if tpl.action == "increase_contrast" {
		rec.Color, rec.Background = contrastColors(issue.Contrast)
		rec.Code = fmt.Sprintf("color: %s; background-color: %s;", rec.Color, rec.Background)
	}
	if issue.AISuggestion != "" {
		rec.AISuggestion = issue.AISuggestion
		rec.Confidence = issue.AIConfidence
	}
	issue.Recommendation = rec
	issue.FixConfidence = clamp01(rec.Confidence)
}

// contrastColors picks a text colour meeting the required ratio against
// the existing background. Without measurements it falls back to black on
// white.
func contrastColors(details *domain.ContrastDetails) (color, background string) {
	if details == nil {
		return "#000000", "#ffffff"
	}
	bg, ok := contrast.ParseColor(details.BackgroundColor)
	if !ok {
		return "#000000", "#ffffff"
	}
	required := details.RequiredRatio
	if required <= 0 {
		required = contrast.Required(details.LargeText)
	}
	text := details.TextColor
	if _, ok := contrast.ParseColor(text); !ok {
		text = "#000000"
	}
	return contrast.SuggestAccessibleColor(text, bg.Hex(), required), bg.Hex()
}
