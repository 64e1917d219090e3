package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidFinding is returned when a finding is missing required fields
var ErrInvalidFinding = errors.New("invalid finding")

// Severity represents the importance level of a finding
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Valid reports whether s is one of the known severities
func (s Severity) Valid() bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Weight is the ranking weight used by fusion. Unknown values weigh as low.
func (s Severity) Weight() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

// Penalty is the weight used by the accessibility score. Unknown values weigh as low.
func (s Severity) Penalty() int {
	switch s {
	case SeverityHigh:
		return 5
	case SeverityMedium:
		return 3
	default:
		return 1
	}
}

// WCAGLevel is a WCAG conformance level
type WCAGLevel string

const (
	LevelA   WCAGLevel = "A"
	LevelAA  WCAGLevel = "AA"
	LevelAAA WCAGLevel = "AAA"
)

// Valid reports whether l is one of the known levels
func (l WCAGLevel) Valid() bool {
	switch l {
	case LevelA, LevelAA, LevelAAA:
		return true
	}
	return false
}

// Weight ranks levels so that A (the most basic requirement) weighs most.
// Unknown values weigh as AAA.
func (l WCAGLevel) Weight() int {
	switch l {
	case LevelA:
		return 3
	case LevelAA:
		return 2
	default:
		return 1
	}
}

// Source names the kind of detector that produced a finding
type Source string

const (
	SourceRule   Source = "rule"   // static DOM/CSS rules
	SourceVisual Source = "visual" // screenshot / vision heuristics
	SourceLLM    Source = "llm"    // generative suggestions
)

// TrustWeight is how much fusion trusts a finding from this source
func (s Source) TrustWeight() float64 {
	switch s {
	case SourceRule:
		return 1.0
	case SourceVisual:
		return 0.8
	case SourceLLM:
		return 0.7
	default:
		return 0.5
	}
}

// IssueType identifies the kind of defect. The set is open so external
// collaborators can contribute types the built-in detectors do not emit.
type IssueType string

const (
	IssueMissingAltText          IssueType = "missing_alt_text"
	IssueEmptyAltText            IssueType = "empty_alt_text"
	IssueContrastRatio           IssueType = "contrast_ratio"
	IssueLowContrast             IssueType = "low_contrast"
	IssueInvalidARIARole         IssueType = "invalid_aria_role"
	IssueRedundantARIARole       IssueType = "redundant_aria_role"
	IssueMissingARIALabel        IssueType = "missing_aria_label"
	IssueMisusedARIARequired     IssueType = "misused_aria_required"
	IssueARIAHiddenFocusable     IssueType = "aria_hidden_focusable"
	IssueMissingARIA             IssueType = "missing_aria"
	IssueInvalidARIA             IssueType = "invalid_aria"
	IssueInvalidTabindex         IssueType = "invalid_tabindex"
	IssueRemovedFromTabOrder     IssueType = "removed_from_taborder"
	IssueMissingKeyboardHandler  IssueType = "missing_keyboard_handler"
	IssueInconsistentDisabled    IssueType = "inconsistent_disabled_state"
	IssueSemanticHTML            IssueType = "semantic_html"
	IssueImproperSemantics       IssueType = "improper_semantics"
	IssueMissingLabel            IssueType = "missing_label"
	IssuePlaceholderInsteadLabel IssueType = "placeholder_instead_of_label"
	IssueMissingHeadings         IssueType = "missing_headings"
	IssueHeadingHierarchy        IssueType = "heading_hierarchy"
	IssueReadability             IssueType = "readability"
	IssueFocusIndicator          IssueType = "focus_indicator"
	IssueMissingFocusIndicator   IssueType = "missing_focus_indicator"
	IssueLayout                  IssueType = "layout_issue"
	IssueMissingLang             IssueType = "missing_lang"
)

// GeneralLocator is the key used for findings that do not point at an element
const GeneralLocator = "general"

// IssueKey identifies "the same defect on the same element"
type IssueKey struct {
	Type    IssueType
	Locator string
}

func (k IssueKey) String() string {
	return string(k.Type) + ":" + k.Locator
}

// ContrastDetails carries the measurements behind a contrast finding
type ContrastDetails struct {
	CurrentRatio    float64 `json:"current_ratio"`
	RequiredRatio   float64 `json:"required_ratio"`
	TextColor       string  `json:"text_color"`
	BackgroundColor string  `json:"bg_color"`
	LargeText       bool    `json:"large_text"`
}

// HeadingDetails names the levels of a heading jump
type HeadingDetails struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// RawFinding is one detector's report of a single defect instance
type RawFinding struct {
	ID          string    `json:"id"`
	Source      Source    `json:"source"`
	Detector    string    `json:"detector"`
	Type        IssueType `json:"type"`
	Severity    Severity  `json:"severity"`
	WCAGLevel   WCAGLevel `json:"wcag_level"`
	WCAGRule    string    `json:"wcag_rule"`
	Selector    string    `json:"selector"`
	Element     string    `json:"element,omitempty"`
	Message     string    `json:"message"`
	Description string    `json:"description"`
	FixHint     string    `json:"fix_suggestion"`

	// Confidence is set only by sources that report their own certainty
	Confidence *float64 `json:"confidence,omitempty"`
	Suggestion string   `json:"ai_suggestion,omitempty"`

	Contrast         *ContrastDetails `json:"contrast,omitempty"`
	Heading          *HeadingDetails  `json:"heading,omitempty"`
	ReadabilityScore float64          `json:"readability_score,omitempty"`
}

// Validate checks the fields every finding must carry
func (f RawFinding) Validate() error {
	switch {
	case f.Type == "":
		return fmt.Errorf("%w: missing type", ErrInvalidFinding)
	case f.Source == "":
		return fmt.Errorf("%w: %s has no source", ErrInvalidFinding, f.Type)
	case !f.Severity.Valid():
		return fmt.Errorf("%w: %s has severity %q", ErrInvalidFinding, f.Type, f.Severity)
	case !f.WCAGLevel.Valid():
		return fmt.Errorf("%w: %s has wcag level %q", ErrInvalidFinding, f.Type, f.WCAGLevel)
	case f.Message == "":
		return fmt.Errorf("%w: %s has no message", ErrInvalidFinding, f.Type)
	}
	if f.Confidence != nil && (*f.Confidence < 0 || *f.Confidence > 1) {
		return fmt.Errorf("%w: %s confidence %.2f out of range", ErrInvalidFinding, f.Type, *f.Confidence)
	}
	return nil
}

// Key returns the fusion identity of the finding
func (f RawFinding) Key() IssueKey {
	loc := f.Selector
	if loc == "" {
		loc = GeneralLocator
	}
	return IssueKey{Type: f.Type, Locator: loc}
}

// Float returns a pointer to v, for optional confidences
func Float(v float64) *float64 {
	return &v
}

// GetSeverity returns the finding's severity
func (f RawFinding) GetSeverity() Severity { return f.Severity }

// GetWCAGLevel returns the finding's WCAG level
func (f RawFinding) GetWCAGLevel() WCAGLevel { return f.WCAGLevel }
