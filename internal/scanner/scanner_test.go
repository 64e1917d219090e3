package scanner

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/juparave/a11yfix/internal/config"
	"github.com/juparave/a11yfix/internal/detect"
	"github.com/juparave/a11yfix/internal/domain"
)

var quiet = log.New(io.Discard, "", 0)

const page = `<html><body>
<img src="a.png">
<h1>Title</h1><h3>Skipped</h3>
<input id="q">
<div onclick="go()">Go</div>
</body></html>`

func mustDoc(t *testing.T, markup string) *detect.Document {
	t.Helper()
	doc, err := detect.NewDocument(markup, "", "")
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	return doc
}

func TestScanIsDeterministic(t *testing.T) {
	s, err := New(config.ScanConfig{Workers: 8}, quiet)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	first := s.Scan(mustDoc(t, page))
	if len(first) == 0 {
		t.Fatalf("expected findings")
	}
	for run := 0; run < 5; run++ {
		again := s.Scan(mustDoc(t, page))
		if len(again) != len(first) {
			t.Fatalf("run %d: %d findings, want %d", run, len(again), len(first))
		}
		for i := range first {
			if again[i].ID != first[i].ID {
				t.Fatalf("run %d: finding %d is %s, want %s", run, i, again[i].ID, first[i].ID)
			}
		}
	}
	if first[0].Type != domain.IssueMissingAltText {
		t.Fatalf("alt text detector should report first, got %s", first[0].Type)
	}
}

func TestScanRecoversDetectorPanic(t *testing.T) {
	boom := detect.New("boom", func(*detect.Document) []domain.RawFinding { panic("kaput") })
	ok := detect.New("ok", func(*detect.Document) []domain.RawFinding {
		return []domain.RawFinding{{Type: "ok_issue", Severity: domain.SeverityLow, WCAGLevel: domain.LevelA, Message: "fine"}}
	})
	s := NewWithDetectors(quiet, 2, boom, ok)

	got := s.Scan(mustDoc(t, "<p>x</p>"))
	if len(got) != 2 {
		t.Fatalf("expected error finding plus one finding, got %+v", got)
	}
	if got[0].Type != "boom_error" || got[0].Severity != domain.SeverityLow {
		t.Fatalf("unexpected error finding %+v", got[0])
	}
	if got[1].Type != "ok_issue" {
		t.Fatalf("other detectors must still run, got %+v", got[1])
	}
}

func TestNewRejectsUnknownDetector(t *testing.T) {
	if _, err := New(config.ScanConfig{Disabled: []string{"nope"}}, quiet); err == nil {
		t.Fatalf("expected error")
	}
}

func finding(sev domain.Severity, level domain.WCAGLevel) domain.RawFinding {
	return domain.RawFinding{Severity: sev, WCAGLevel: level}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		findings []domain.RawFinding
		want     float64
	}{
		{"none", nil, 100},
		{"one high", []domain.RawFinding{finding(domain.SeverityHigh, domain.LevelA)}, 0},
		{"one low", []domain.RawFinding{finding(domain.SeverityLow, domain.LevelA)}, 80},
		{"mixed", []domain.RawFinding{
			finding(domain.SeverityHigh, domain.LevelA),
			finding(domain.SeverityMedium, domain.LevelAA),
			finding(domain.SeverityLow, domain.LevelAAA),
		}, 40},
		{"unknown severity counts as low", []domain.RawFinding{finding("weird", "??")}, 80},
	}
	for _, tt := range tests {
		if got := Score(tt.findings); got != tt.want {
			t.Fatalf("%s: Score = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCompliance(t *testing.T) {
	high := finding(domain.SeverityHigh, domain.LevelA)
	tests := []struct {
		name     string
		findings []domain.RawFinding
		want     domain.Compliance
	}{
		{"none", nil, domain.ComplianceAAA},
		{"only medium", []domain.RawFinding{finding(domain.SeverityMedium, domain.LevelA)}, domain.ComplianceAA},
		{"high AAA does not block", []domain.RawFinding{finding(domain.SeverityHigh, domain.LevelAAA)}, domain.ComplianceAA},
		{"one high A", []domain.RawFinding{high}, domain.ComplianceA},
		{"three high", []domain.RawFinding{high, high, high}, domain.ComplianceA},
		{"four high", []domain.RawFinding{high, high, high, high}, domain.ComplianceNonCompliant},
	}
	for _, tt := range tests {
		if got := Compliance(tt.findings); got != tt.want {
			t.Fatalf("%s: Compliance = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestScoreAcceptsFusedIssues(t *testing.T) {
	issues := []domain.FusedIssue{{Severity: domain.SeverityMedium, WCAGLevel: domain.LevelAA}}
	if got := Score(issues); got != 40 {
		t.Fatalf("Score = %v, want 40", got)
	}
	if got := Compliance(issues); got != domain.ComplianceAA {
		t.Fatalf("Compliance = %s, want AA", got)
	}
}

func TestFindPages(t *testing.T) {
	root := t.TempDir()
	files := []string{
		"index.html",
		"about/team.HTM",
		"about/notes.txt",
		"node_modules/pkg/readme.html",
		".cache/old.html",
	}
	for _, f := range files {
		path := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("<p>x</p>"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	s := NewWithDetectors(quiet, 1)
	pages, err := s.FindPages(root)
	if err != nil {
		t.Fatalf("FindPages: %v", err)
	}
	var names []string
	for _, p := range pages {
		names = append(names, filepath.ToSlash(PageName(root, p)))
	}
	sort.Strings(names)
	if len(names) != 2 || names[0] != "about/team.HTM" || names[1] != "index.html" {
		t.Fatalf("FindPages = %v", names)
	}
}

func TestRulesCoverDetectorRules(t *testing.T) {
	rules := make(map[string]bool)
	for _, r := range Rules() {
		rules[r.Rule] = true
	}
	for _, want := range []string{"1.1.1", "1.3.1", "1.4.3", "2.1.1", "2.4.7", "3.1.1", "3.1.5", "4.1.2"} {
		if !rules[want] {
			t.Fatalf("Rules() missing %s", want)
		}
	}
}
