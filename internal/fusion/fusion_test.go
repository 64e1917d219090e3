package fusion

import (
	"strings"
	"testing"

	"github.com/juparave/a11yfix/internal/contrast"
	"github.com/juparave/a11yfix/internal/domain"
)

func raw(id string, src domain.Source, typ domain.IssueType, sel string, sev domain.Severity, level domain.WCAGLevel) domain.RawFinding {
	return domain.RawFinding{
		ID: id, Source: src, Type: typ, Selector: sel, Severity: sev, WCAGLevel: level,
		Message: string(typ), Description: "desc " + id,
	}
}

func TestFuseMergesSameKeyAcrossSources(t *testing.T) {
	visual := raw("v1", domain.SourceVisual, domain.IssueLowContrast, ".hero", domain.SeverityMedium, domain.LevelAA)
	llm := raw("l1", domain.SourceLLM, domain.IssueLowContrast, ".hero", domain.SeverityHigh, domain.LevelAAA)

	issues := Fuse([]domain.RawFinding{visual, llm}, nil)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	got := issues[0]
	if got.DetectionCount != 2 || len(got.DetectionSources) != 2 {
		t.Fatalf("unexpected detection info %+v", got)
	}
	for _, single := range []domain.RawFinding{visual, llm} {
		if alone := Confidence([]domain.RawFinding{single}); got.Confidence <= alone {
			t.Fatalf("merged confidence %v should exceed single-source %v", got.Confidence, alone)
		}
		if got.Confidence <= single.Source.TrustWeight() {
			t.Fatalf("merged confidence %v should exceed trust weight %v", got.Confidence, single.Source.TrustWeight())
		}
	}
	if got.Severity != domain.SeverityHigh || got.WCAGLevel != domain.LevelAA {
		t.Fatalf("severity/level not maximised: %s %s", got.Severity, got.WCAGLevel)
	}
	if got.Description != "desc v1 desc l1" {
		t.Fatalf("description = %q", got.Description)
	}
	if got.ID != "v1" {
		t.Fatalf("issue should keep the base finding id, got %s", got.ID)
	}
}

func TestConfidence(t *testing.T) {
	rule := raw("r", domain.SourceRule, domain.IssueMissingAltText, "img", domain.SeverityHigh, domain.LevelA)
	if got := Confidence([]domain.RawFinding{rule}); got != 1.0 {
		t.Fatalf("single rule finding confidence = %v, want 1", got)
	}
	llm := raw("l", domain.SourceLLM, domain.IssueMissingAltText, "img", domain.SeverityHigh, domain.LevelA)
	llm.Confidence = domain.Float(0.3)
	// weights 0.7, reported 0.3 -> (0.7+0.3)/2 + 0.1
	if got := Confidence([]domain.RawFinding{llm}); got < 0.5999 || got > 0.6001 {
		t.Fatalf("llm confidence = %v, want 0.6", got)
	}
	if got := Confidence(nil); got != 0 {
		t.Fatalf("empty group confidence = %v", got)
	}
}

func TestFuseNeverDropsFindings(t *testing.T) {
	findings := []domain.RawFinding{
		raw("a", domain.SourceRule, domain.IssueMissingAltText, "img", domain.SeverityHigh, domain.LevelA),
		raw("b", domain.SourceRule, domain.IssueMissingAltText, "img", domain.SeverityHigh, domain.LevelA),
		raw("c", domain.SourceRule, domain.IssueFocusIndicator, "", domain.SeverityMedium, domain.LevelAA),
		raw("d", domain.SourceRule, domain.IssueReadability, "main", domain.SeverityLow, domain.LevelAAA),
	}
	issues := Fuse(findings, nil)
	total := 0
	for _, i := range issues {
		total += len(i.Findings)
	}
	if len(issues) != 3 || total != len(findings) {
		t.Fatalf("got %d issues holding %d findings", len(issues), total)
	}
}

func TestRankingIsAPermutationAndNonIncreasing(t *testing.T) {
	findings := []domain.RawFinding{
		raw("low", domain.SourceRule, domain.IssueReadability, "main", domain.SeverityLow, domain.LevelAAA),
		raw("med", domain.SourceRule, domain.IssueSemanticHTML, "div", domain.SeverityMedium, domain.LevelA),
		raw("high1", domain.SourceRule, domain.IssueMissingAltText, "img", domain.SeverityHigh, domain.LevelA),
		raw("high2", domain.SourceRule, domain.IssueMissingLabel, "#q", domain.SeverityHigh, domain.LevelA),
		raw("aa", domain.SourceRule, domain.IssueContrastRatio, "p", domain.SeverityHigh, domain.LevelAA),
	}
	issues := Fuse(findings, nil)
	seen := make(map[int]bool)
	for i, issue := range issues {
		if issue.PriorityRank != i+1 || seen[issue.PriorityRank] {
			t.Fatalf("rank %d at position %d", issue.PriorityRank, i)
		}
		seen[issue.PriorityRank] = true
		if i > 0 && issues[i-1].PriorityScore < issue.PriorityScore {
			t.Fatalf("priority increases at rank %d", issue.PriorityRank)
		}
	}
	// equal scores keep encounter order
	if issues[0].ID != "high1" || issues[1].ID != "high2" || issues[len(issues)-1].ID != "low" {
		t.Fatalf("unexpected order: %s %s ... %s", issues[0].ID, issues[1].ID, issues[len(issues)-1].ID)
	}
}

func TestGeneralLocatorCollapsesPageLevelFindings(t *testing.T) {
	a := raw("a", domain.SourceRule, domain.IssueFocusIndicator, "", domain.SeverityMedium, domain.LevelAA)
	b := raw("b", domain.SourceVisual, domain.IssueFocusIndicator, "general", domain.SeverityHigh, domain.LevelAA)
	issues := Fuse([]domain.RawFinding{a, b}, nil)
	if len(issues) != 1 || issues[0].DetectionCount != 2 {
		t.Fatalf("page-level findings should collapse, got %+v", issues)
	}
}

func TestDescriptionsDedupAndCap(t *testing.T) {
	if got := combineDescriptions([]string{"", "  "}); got != defaultDescription {
		t.Fatalf("empty descriptions = %q", got)
	}
	if got := combineDescriptions([]string{"Low contrast text.", "Low contrast"}); got != "Low contrast text." {
		t.Fatalf("contained description not deduplicated: %q", got)
	}
	long := []string{strings.Repeat("a", 300), strings.Repeat("b", 300)}
	if got := combineDescriptions(long); len(got) != MaxDescription {
		t.Fatalf("len = %d, want %d", len(got), MaxDescription)
	}
}

func TestAISuggestionOverridesTemplateConfidence(t *testing.T) {
	rule := raw("r", domain.SourceRule, domain.IssueMissingAltText, "#hero", domain.SeverityHigh, domain.LevelA)
	llm := raw("l", domain.SourceLLM, domain.IssueMissingAltText, "#hero", domain.SeverityHigh, domain.LevelA)
	llm.Suggestion = "Team photo at the summit"
	llm.Confidence = domain.Float(0.65)

	issue := Fuse([]domain.RawFinding{rule, llm}, nil)[0]
	if issue.AISuggestion != "Team photo at the summit" || issue.AIConfidence != 0.65 {
		t.Fatalf("ai suggestion not copied: %+v", issue)
	}
	rec := issue.Recommendation
	if rec == nil || rec.Action != "add_alt_attribute" || rec.Confidence != 0.65 || rec.AISuggestion == "" {
		t.Fatalf("unexpected recommendation %+v", rec)
	}
	if issue.FixConfidence != 0.65 {
		t.Fatalf("fix confidence = %v", issue.FixConfidence)
	}
}

func TestRecommendationLookup(t *testing.T) {
	tests := []struct {
		typ    domain.IssueType
		action string
		conf   float64
	}{
		{domain.IssueMissingLabel, "add_label", 0.9},
		{"low_contrast_text", "increase_contrast", 0.8},
		{domain.IssueRedundantARIARole, "remove_role", 0.95},
		{domain.IssueReadability, "", DefaultFixConfidence},
	}
	for _, tt := range tests {
		issue := Fuse([]domain.RawFinding{raw("x", domain.SourceRule, tt.typ, "p", domain.SeverityLow, domain.LevelA)}, nil)[0]
		if tt.action == "" {
			if issue.Recommendation != nil {
				t.Fatalf("%s: unexpected recommendation %+v", tt.typ, issue.Recommendation)
			}
		} else if issue.Recommendation == nil || issue.Recommendation.Action != tt.action {
			t.Fatalf("%s: recommendation = %+v, want %s", tt.typ, issue.Recommendation, tt.action)
		}
		if issue.FixConfidence != tt.conf {
			t.Fatalf("%s: fix confidence = %v, want %v", tt.typ, issue.FixConfidence, tt.conf)
		}
	}
}

func TestContrastRecommendationMeetsRatio(t *testing.T) {
	f := raw("c", domain.SourceRule, domain.IssueContrastRatio, ".muted", domain.SeverityHigh, domain.LevelAA)
	f.Contrast = &domain.ContrastDetails{CurrentRatio: 2.3, RequiredRatio: 4.5, TextColor: "#aaaaaa", BackgroundColor: "#ffffff"}
	rec := Fuse([]domain.RawFinding{f}, nil)[0].Recommendation
	if rec == nil || rec.Background != "#ffffff" {
		t.Fatalf("unexpected recommendation %+v", rec)
	}
	if r := contrast.Ratio(rec.Color, rec.Background); r < 4.5 {
		t.Fatalf("recommended %s on %s has ratio %v", rec.Color, rec.Background, r)
	}
	if !strings.Contains(rec.Code, rec.Color) {
		t.Fatalf("code %q should use the recommended colour", rec.Code)
	}
}

func TestContextFromMetadata(t *testing.T) {
	meta := &Metadata{
		URL:          "https://example.com",
		ElementCount: 42,
		FormElements: []domain.FormElement{{Tag: "input", ID: "email"}, {Tag: "select", Class: "country wide"}},
	}
	findings := []domain.RawFinding{
		raw("a", domain.SourceRule, domain.IssueMissingLabel, "#email", domain.SeverityHigh, domain.LevelA),
		raw("b", domain.SourceRule, domain.IssueMissingLabel, ".country", domain.SeverityHigh, domain.LevelA),
		raw("c", domain.SourceRule, domain.IssueMissingAltText, "img", domain.SeverityHigh, domain.LevelA),
	}
	byID := make(map[string]domain.FusedIssue)
	for _, i := range Fuse(findings, meta) {
		byID[i.ID] = i
	}
	if c := byID["a"].Context; c == nil || c.ElementType != "input" || c.ElementID != "email" || c.ElementCount != 42 {
		t.Fatalf("unexpected context %+v", c)
	}
	if c := byID["b"].Context; c == nil || c.ElementType != "select" {
		t.Fatalf("unexpected context %+v", c)
	}
	if c := byID["c"].Context; c == nil || c.ElementType != "" || c.PageURL != "https://example.com" {
		t.Fatalf("unexpected context %+v", c)
	}
}
