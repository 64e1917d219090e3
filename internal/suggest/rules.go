package suggest

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Confidence of keyword-rule suggestions per kind
const (
	RuleAltConfidence      = 0.3
	RuleLabelConfidence    = 0.4
	RuleARIAConfidence     = 0.5
	RuleSimplifyConfidence = 0.3
)

const methodRuleBased = "rule_based"

// RuleBased suggests text from keywords in the request. It never calls out
// and never fails for a known kind.
type RuleBased struct{}

// Suggest implements Suggester
func (RuleBased) Suggest(_ context.Context, req Request) (Suggestion, error) {
	switch req.Kind {
	case KindAltText:
		return Suggestion{Text: altFromContext(req.Context), Confidence: RuleAltConfidence, Method: methodRuleBased}, nil
	case KindLabel:
		return Suggestion{Text: labelFromContext(req), Confidence: RuleLabelConfidence, Method: methodRuleBased}, nil
	case KindARIALabel:
		return Suggestion{Text: ariaFromContext(req), Confidence: RuleARIAConfidence, Method: methodRuleBased}, nil
	case KindSimplify:
		return Suggestion{Text: req.Context, Confidence: RuleSimplifyConfidence, Method: "no_change"}, nil
	}
	return Suggestion{}, fmt.Errorf("%w: %s", ErrUnsupportedKind, req.Kind)
}

func altFromContext(context string) string {
	c := strings.ToLower(context)
	switch {
	case strings.Contains(c, "logo"), strings.Contains(c, "brand"):
		return "Company logo"
	case strings.Contains(c, "button"), strings.Contains(c, "click"):
		return "Interactive button"
	case strings.Contains(c, "icon"):
		return "Icon"
	case strings.Contains(c, "photo"), strings.Contains(c, "image"):
		return "Image"
	}
	return "Decorative image"
}

func labelFromContext(req Request) string {
	if c := strings.TrimSpace(req.Context); c != "" && len(c) <= 60 {
		return c
	}
	if p := strings.TrimSpace(req.Placeholder); p != "" {
		r := []rune(strings.ToLower(p))
		return strings.ToUpper(string(r[:1])) + string(r[1:])
	}
	typ := strings.TrimPrefix(req.ElementType, "input-")
	if typ == "" {
		typ = "input"
	}
	return cases.Title(language.English).String(typ) + " field"
}

func ariaFromContext(req Request) string {
	text := textOf(req.ElementHTML)
	ctx := strings.TrimSpace(req.Context)
	switch req.ElementType {
	case "button":
		if text != "" {
			return "Button: " + text
		}
		if ctx != "" {
			return "Button: " + ctx
		}
		return "Button"
	case "a", "link":
		if text != "" {
			return "Link to: " + text
		}
		if ctx != "" {
			return "Link: " + ctx
		}
		return "Link"
	case "input":
		if ctx != "" {
			return ctx
		}
		return "Input field"
	}
	if text != "" {
		return text
	}
	if ctx != "" {
		return ctx
	}
	typ := req.ElementType
	if typ == "" {
		typ = "interactive"
	}
	return cases.Title(language.English).String(typ) + " element"
}

var strict = bluemonday.StrictPolicy()

// textOf returns the visible text of an HTML fragment
func textOf(fragment string) string {
	return strings.Join(strings.Fields(html.UnescapeString(strict.Sanitize(fragment))), " ")
}
