// Package fusion merges raw findings from several sources into ranked,
// deduplicated issues with a combined confidence and a fix recommendation.
package fusion

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/juparave/a11yfix/internal/domain"
)

const (
	// MaxDescription caps the merged description length
	MaxDescription = 500
	// DefaultFixConfidence applies when no template or suggestion sets one
	DefaultFixConfidence = 0.7
	// DefaultAIConfidence applies to suggestions that report no confidence
	DefaultAIConfidence = 0.5

	defaultDescription = "Accessibility issue detected"
)

// Metadata is optional DOM metadata about the scanned page
type Metadata = domain.PageMetadata

// Fuse groups findings by IssueKey, merges each group into one issue,
// ranks the issues and attaches fix recommendations. Findings are taken in
// the order given; that order breaks ranking ties. Every finding ends up in
// exactly one issue.
func Fuse(findings []domain.RawFinding, meta *Metadata) []domain.FusedIssue {
	var keys []domain.IssueKey
	groups := make(map[domain.IssueKey][]domain.RawFinding)
	for _, f := range findings {
		k := f.Key()
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], f)
	}

	issues := make([]domain.FusedIssue, 0, len(keys))
	for i, k := range keys {
		issue := merge(groups[k], meta)
		if issue.ID == "" {
			issue.ID = fmt.Sprintf("issue-%d", i)
		}
		issues = append(issues, issue)
	}

	rank(issues)
	for i := range issues {
		recommend(&issues[i])
	}
	return issues
}

func merge(group []domain.RawFinding, meta *Metadata) domain.FusedIssue {
	base := group[0]
	issue := domain.FusedIssue{
		ID:               base.ID,
		Type:             base.Type,
		Severity:         base.Severity,
		WCAGLevel:        base.WCAGLevel,
		WCAGRule:         base.WCAGRule,
		Selector:         base.Selector,
		Element:          base.Element,
		Message:          base.Message,
		FixHint:          base.FixHint,
		Contrast:         base.Contrast,
		Heading:          base.Heading,
		ReadabilityScore: base.ReadabilityScore,
		DetectionCount:   len(group),
		Confidence:       Confidence(group),
		Findings:         group,
	}

	bestSev, bestLevel := 0, 0
	var descriptions []string
	for _, f := range group {
		if w := f.Severity.Weight(); w > bestSev {
			bestSev, issue.Severity = w, f.Severity
		}
		if w := f.WCAGLevel.Weight(); w > bestLevel {
			bestLevel, issue.WCAGLevel = w, f.WCAGLevel
		}
		if !slices.Contains(issue.DetectionSources, f.Source) {
			issue.DetectionSources = append(issue.DetectionSources, f.Source)
		}
		descriptions = append(descriptions, f.Description)
		fillGaps(&issue, f)
	}
	issue.Description = combineDescriptions(descriptions)

	for _, f := range group {
		if f.Source == domain.SourceLLM && f.Suggestion != "" {
			issue.AISuggestion = f.Suggestion
			issue.AIConfidence = DefaultAIConfidence
			if f.Confidence != nil {
				issue.AIConfidence = clamp01(*f.Confidence)
			}
			break
		}
	}

	if meta != nil {
		issue.Context = issueContext(issue.Selector, meta)
	}
	return issue
}

// fillGaps copies details the base finding lacks from later findings
func fillGaps(issue *domain.FusedIssue, f domain.RawFinding) {
	if issue.Element == "" {
		issue.Element = f.Element
	}
	if issue.WCAGRule == "" {
		issue.WCAGRule = f.WCAGRule
	}
	if issue.FixHint == "" {
		issue.FixHint = f.FixHint
	}
	if issue.Contrast == nil {
		issue.Contrast = f.Contrast
	}
	if issue.Heading == nil {
		issue.Heading = f.Heading
	}
}

// Confidence combines the trust weights of the sources in a group with any
// self-reported confidences, plus a bonus of 0.1 per finding capped at 0.3.
// The result is clamped to [0, 1].
func Confidence(group []domain.RawFinding) float64 {
	if len(group) == 0 {
		return 0
	}
	total := 0.0
	var reported []float64
	for _, f := range group {
		total += f.Source.TrustWeight()
		if f.Confidence != nil {
			reported = append(reported, clamp01(*f.Confidence))
		}
	}
	confidence := math.Min(total/float64(len(group)), 1)
	if len(reported) > 0 {
		sum := 0.0
		for _, c := range reported {
			sum += c
		}
		confidence = (confidence + sum/float64(len(reported))) / 2
	}
	boost := math.Min(0.1*float64(len(group)), 0.3)
	return clamp01(confidence + boost)
}

func combineDescriptions(descriptions []string) string {
	var unique []string
	for _, d := range descriptions {
		if strings.TrimSpace(d) != "" {
			unique = append(unique, d)
		}
	}
	if len(unique) == 0 {
		return defaultDescription
	}
	combined := unique[0]
	for _, d := range unique[1:] {
		if !strings.Contains(combined, d) && !strings.Contains(d, combined) {
			combined += " " + d
		}
	}
	if len(combined) > MaxDescription {
		combined = truncate(combined, MaxDescription)
	}
	return combined
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence
func truncate(s string, n int) string {
	for n > 0 && n < len(s) && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}

func issueContext(sel string, meta *Metadata) *domain.IssueContext {
	ctx := &domain.IssueContext{PageURL: meta.URL, ElementCount: meta.ElementCount}
	if sel == "" {
		return ctx
	}
	for _, el := range meta.FormElements {
		if (el.ID != "" && sel == "#"+el.ID) || (el.Class != "" && sel == "."+strings.Fields(el.Class)[0]) {
			ctx.ElementType = el.Tag
			ctx.ElementID = el.ID
			break
		}
	}
	return ctx
}

// PriorityScore is severityWeight*10 + wcagWeight*5 + confidence*3
func PriorityScore(issue domain.FusedIssue) float64 {
	return float64(issue.Severity.Weight())*10 + float64(issue.WCAGLevel.Weight())*5 + issue.Confidence*3
}

// rank sorts issues by descending priority, keeping encounter order on
// ties, and numbers them 1..N
func rank(issues []domain.FusedIssue) {
	for i := range issues {
		issues[i].PriorityScore = math.Round(PriorityScore(issues[i])*1000) / 1000
	}
	slices.SortStableFunc(issues, func(a, b domain.FusedIssue) int {
		return cmp.Compare(b.PriorityScore, a.PriorityScore)
	})
	for i := range issues {
		issues[i].PriorityRank = i + 1
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
