package domain

// Recommendation is a canned fix template attached by fusion
type Recommendation struct {
	Action       string  `json:"action"`
	Code         string  `json:"code"`
	Explanation  string  `json:"explanation"`
	Confidence   float64 `json:"confidence"`
	AISuggestion string  `json:"ai_suggestion,omitempty"`

	// Color and Background are set for contrast fixes
	Color      string `json:"color,omitempty"`
	Background string `json:"background,omitempty"`
}

// IssueContext is page metadata relevant to one issue
type IssueContext struct {
	PageURL      string `json:"page_url,omitempty"`
	ElementCount int    `json:"element_count"`
	ElementType  string `json:"element_type,omitempty"`
	ElementID    string `json:"element_id,omitempty"`
}

// FusedIssue merges every finding that shares an IssueKey
type FusedIssue struct {
	ID          string    `json:"id"`
	Type        IssueType `json:"type"`
	Severity    Severity  `json:"severity"`
	WCAGLevel   WCAGLevel `json:"wcag_level"`
	WCAGRule    string    `json:"wcag_rule"`
	Selector    string    `json:"selector"`
	Element     string    `json:"element,omitempty"`
	Message     string    `json:"message"`
	Description string    `json:"description"`
	FixHint     string    `json:"fix_suggestion"`

	Confidence       float64  `json:"confidence"`
	DetectionSources []Source `json:"detection_sources"`
	DetectionCount   int      `json:"detection_count"`
	PriorityRank     int      `json:"priority_rank"`
	PriorityScore    float64  `json:"priority_score"`

	AISuggestion string  `json:"ai_suggestion,omitempty"`
	AIConfidence float64 `json:"ai_confidence,omitempty"`

	Recommendation *Recommendation `json:"recommended_fix,omitempty"`
	FixConfidence  float64         `json:"fix_confidence"`
	Context        *IssueContext   `json:"context,omitempty"`

	Contrast         *ContrastDetails `json:"contrast,omitempty"`
	Heading          *HeadingDetails  `json:"heading,omitempty"`
	ReadabilityScore float64          `json:"readability_score,omitempty"`

	// Findings are the raw findings merged into this issue, in encounter order
	Findings []RawFinding `json:"-"`
}

// GetSeverity returns the issue's merged severity
func (i FusedIssue) GetSeverity() Severity { return i.Severity }

// GetWCAGLevel returns the issue's merged WCAG level
func (i FusedIssue) GetWCAGLevel() WCAGLevel { return i.WCAGLevel }
