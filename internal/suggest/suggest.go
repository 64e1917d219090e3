// Package suggest produces candidate text for fixes: alt text, form labels,
// ARIA labels and simplified prose. Suggestions are optional input to fusion.
package suggest

import (
	"context"
	"errors"
	"log"

	"github.com/juparave/a11yfix/internal/domain"
)

// Kind is the sort of text being suggested
type Kind string

const (
	KindAltText   Kind = "alt_text"
	KindLabel     Kind = "label"
	KindARIALabel Kind = "aria_label"
	KindSimplify  Kind = "simplify"
)

// ErrUnsupportedKind is returned for kinds a suggester cannot produce
var ErrUnsupportedKind = errors.New("unsupported suggestion kind")

// Request describes the element a suggestion is wanted for
type Request struct {
	Kind        Kind
	ElementHTML string
	ElementType string // tag name, or input type for inputs
	Context     string // nearby text
	Placeholder string
}

// Suggestion is candidate text with the producer's confidence in it
type Suggestion struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
}

// Suggester produces a suggestion for one request
type Suggester interface {
	Suggest(ctx context.Context, req Request) (Suggestion, error)
}

// KindFor maps an issue type to the suggestion that would help fix it
func KindFor(t domain.IssueType) (Kind, bool) {
	switch t {
	case domain.IssueMissingAltText, domain.IssueEmptyAltText:
		return KindAltText, true
	case domain.IssueMissingLabel, domain.IssuePlaceholderInsteadLabel:
		return KindLabel, true
	case domain.IssueMissingARIALabel, domain.IssueMissingARIA, domain.IssueInvalidARIA:
		return KindARIALabel, true
	case domain.IssueReadability:
		return KindSimplify, true
	}
	return "", false
}

// Fallback asks Primary first and Secondary when Primary fails
type Fallback struct {
	Primary   Suggester
	Secondary Suggester
	Logger    *log.Logger
}

// Suggest implements Suggester
func (f Fallback) Suggest(ctx context.Context, req Request) (Suggestion, error) {
	if f.Primary != nil {
		s, err := f.Primary.Suggest(ctx, req)
		if err == nil && s.Text != "" {
			return s, nil
		}
		if err != nil && f.Logger != nil {
			f.Logger.Printf("Warning: suggestion for %s failed, using fallback: %v", req.Kind, err)
		}
	}
	if f.Secondary == nil {
		return Suggestion{}, ErrUnsupportedKind
	}
	return f.Secondary.Suggest(ctx, req)
}
