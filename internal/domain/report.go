package domain

import "time"

// Compliance is the overall conformance tier of a page
type Compliance string

const (
	ComplianceAAA          Compliance = "AAA"
	ComplianceAA           Compliance = "AA"
	ComplianceA            Compliance = "A"
	ComplianceNonCompliant Compliance = "Non-compliant"
)

// Report represents the result of scanning one page
type Report struct {
	ID         string        `json:"id,omitempty"`
	URL        string        `json:"url"`
	Date       time.Time     `json:"date"`
	Score      float64       `json:"score"`
	Compliance Compliance    `json:"wcag_level"`
	Issues     []FusedIssue  `json:"issues"`
	Patches    []Patch       `json:"patches,omitempty"`
	Duration   time.Duration `json:"scan_duration"`
	Metadata   *PageMetadata `json:"metadata,omitempty"`
	Model      string        `json:"model,omitempty"` // The LLM model used for suggestions
}

// HighCount returns the number of high severity issues
func (r *Report) HighCount() int {
	return r.countSeverity(SeverityHigh)
}

// MediumCount returns the number of medium severity issues
func (r *Report) MediumCount() int {
	return r.countSeverity(SeverityMedium)
}

// LowCount returns the number of low severity issues
func (r *Report) LowCount() int {
	return r.countSeverity(SeverityLow)
}

func (r *Report) countSeverity(s Severity) int {
	count := 0
	for _, i := range r.Issues {
		if i.Severity == s {
			count++
		}
	}
	return count
}

// SeverityBreakdown returns issue counts keyed by severity
func (r *Report) SeverityBreakdown() map[Severity]int {
	return map[Severity]int{
		SeverityHigh:   r.HighCount(),
		SeverityMedium: r.MediumCount(),
		SeverityLow:    r.LowCount(),
	}
}

// TotalIssues returns the total number of issues
func (r *Report) TotalIssues() int {
	return len(r.Issues)
}

// HasIssues returns true if there are any issues
func (r *Report) HasIssues() bool {
	return len(r.Issues) > 0
}
