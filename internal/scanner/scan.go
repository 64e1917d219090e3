// Package scanner runs the detectors over a page and scores the result.
package scanner

import (
	"fmt"
	"log"
	"math"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/juparave/a11yfix/internal/config"
	"github.com/juparave/a11yfix/internal/detect"
	"github.com/juparave/a11yfix/internal/domain"
)

// Scanner runs a fixed, ordered set of detectors
type Scanner struct {
	logger    *log.Logger
	detectors []detect.Detector
	workers   int
}

// New creates a Scanner with the detectors selected by cfg
func New(cfg config.ScanConfig, logger *log.Logger) (*Scanner, error) {
	detectors, err := detect.Select(cfg.Detectors, cfg.Disabled)
	if err != nil {
		return nil, fmt.Errorf("selecting detectors: %w", err)
	}
	return NewWithDetectors(logger, cfg.Workers, detectors...), nil
}

// NewWithDetectors creates a Scanner over an explicit detector list
func NewWithDetectors(logger *log.Logger, workers int, detectors ...detect.Detector) *Scanner {
	if workers < 1 {
		workers = 1
	}
	return &Scanner{logger: logger, detectors: detectors, workers: workers}
}

// Detectors returns the names of the detectors this scanner runs
func (s *Scanner) Detectors() []string {
	names := make([]string, len(s.detectors))
	for i, d := range s.detectors {
		names[i] = d.Name()
	}
	return names
}

// Scan runs every detector over doc and returns their findings in
// registration order, then emission order. Detectors run concurrently; a
// detector that panics contributes one low-severity error finding instead.
func (s *Scanner) Scan(doc *detect.Document) []domain.RawFinding {
	results := make([][]domain.RawFinding, len(s.detectors))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, d := range s.detectors {
		g.Go(func() error {
			results[i] = s.runDetector(d, doc)
			return nil
		})
	}
	_ = g.Wait()

	var findings []domain.RawFinding
	for _, r := range results {
		findings = append(findings, r...)
	}
	return findings
}

func (s *Scanner) runDetector(d detect.Detector, doc *detect.Document) (findings []domain.RawFinding) {
	defer func() {
		if r := recover(); r != nil {
			if s.logger != nil {
				s.logger.Printf("Warning: detector %s failed: %v\n%s", d.Name(), r, debug.Stack())
			}
			findings = []domain.RawFinding{errorFinding(d.Name(), r)}
		}
	}()
	return d.Detect(doc)
}

func errorFinding(name string, cause any) domain.RawFinding {
	return domain.RawFinding{
		ID:          name + "-error",
		Source:      domain.SourceRule,
		Detector:    name,
		Type:        domain.IssueType(name + "_error"),
		Severity:    domain.SeverityLow,
		WCAGLevel:   domain.LevelAAA,
		Message:     fmt.Sprintf("Detector %s failed", name),
		Description: fmt.Sprintf("The %s check could not complete: %v", name, cause),
	}
}

// Scorable is anything carrying a severity and WCAG level, such as a raw
// finding or a fused issue
type Scorable interface {
	GetSeverity() domain.Severity
	GetWCAGLevel() domain.WCAGLevel
}

// Score returns 100 - 100*sum(penalty)/(N*5), clamped to [0, 100] and
// rounded to two decimals. No findings scores 100.
func Score[T Scorable](items []T) float64 {
	if len(items) == 0 {
		return 100
	}
	total := 0
	for _, it := range items {
		total += it.GetSeverity().Penalty()
	}
	maxPenalty := len(items) * domain.SeverityHigh.Penalty()
	score := 100 - float64(total)/float64(maxPenalty)*100
	score = math.Max(0, math.Min(100, score))
	return math.Round(score*100) / 100
}

// Compliance returns the conformance tier for a set of findings
func Compliance[T Scorable](items []T) domain.Compliance {
	if len(items) == 0 {
		return domain.ComplianceAAA
	}
	blocking := 0
	for _, it := range items {
		level := it.GetWCAGLevel()
		if it.GetSeverity() == domain.SeverityHigh && (level == domain.LevelA || level == domain.LevelAA) {
			blocking++
		}
	}
	switch {
	case blocking == 0:
		return domain.ComplianceAA
	case blocking <= 3:
		return domain.ComplianceA
	default:
		return domain.ComplianceNonCompliant
	}
}

// Rule is one WCAG success criterion the detectors check
type Rule struct {
	Rule        string           `json:"rule"`
	Level       domain.WCAGLevel `json:"level"`
	Description string           `json:"description"`
}

// Rules returns the WCAG success criteria covered by the built-in detectors
func Rules() []Rule {
	return []Rule{
		{"1.1.1", domain.LevelA, "Non-text Content - Images must have alt text"},
		{"1.3.1", domain.LevelA, "Info and Relationships - Proper heading hierarchy and form labels"},
		{"1.4.3", domain.LevelAA, "Contrast (Minimum) - Text contrast ratio of at least 4.5:1"},
		{"2.1.1", domain.LevelA, "Keyboard - All functionality must be keyboard accessible"},
		{"2.4.7", domain.LevelAA, "Focus Visible - Keyboard focus must be visible"},
		{"3.1.1", domain.LevelA, "Language of Page - HTML must have lang attribute"},
		{"3.1.5", domain.LevelAAA, "Reading Level - Text should be simple enough"},
		{"4.1.2", domain.LevelA, "Name, Role, Value - Proper ARIA usage and semantic HTML"},
	}
}
