package patch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/juparave/a11yfix/internal/config"
	"github.com/juparave/a11yfix/internal/diff"
	"github.com/juparave/a11yfix/internal/domain"
)

func newGenerator() *Generator {
	return NewGenerator(config.FixConfig{AutoApplyThreshold: 0.8, DefaultLang: "en"}, 2, nil)
}

func issue(id string, typ domain.IssueType, sel string) domain.FusedIssue {
	return domain.FusedIssue{
		ID: id, Type: typ, Selector: sel,
		Severity: domain.SeverityHigh, WCAGLevel: domain.LevelA,
		Confidence: 1, FixConfidence: 0.9,
	}
}

func TestMissingLangChangesOneLine(t *testing.T) {
	page := "<html><body><p>Hello</p></body></html>"
	p := newGenerator().Generate(issue("language-1", domain.IssueMissingLang, "html"), page, "")

	if p.IsNoOp() {
		t.Fatalf("expected a change, got no-op: %s", p.Reason)
	}
	if !strings.Contains(p.After[domain.ArtifactHTML], `lang="en"`) {
		t.Fatalf("after = %q", p.After[domain.ArtifactHTML])
	}
	added, removed := diff.Stat(p.Diff[domain.ArtifactHTML])
	if added != 1 || removed != 1 {
		t.Fatalf("diff stat = +%d -%d, want +1 -1\n%s", added, removed, p.Diff[domain.ArtifactHTML])
	}
	if !strings.HasPrefix(p.VCSPatch, "diff --git a/fix-language-1.html b/fix-language-1.html\n") {
		t.Fatalf("vcs patch header = %q", p.VCSPatch)
	}
}

func TestMissingLangAlreadySet(t *testing.T) {
	page := `<html lang="fr"><body></body></html>`
	p := newGenerator().Generate(issue("l", domain.IssueMissingLang, "html"), page, "")
	if !p.IsNoOp() {
		t.Fatalf("expected no-op when lang is present")
	}
}

func TestHTMLFixes(t *testing.T) {
	tests := []struct {
		name  string
		page  string
		issue domain.FusedIssue
		want  []string
	}{
		{
			name:  "alt text",
			page:  `<html><body><img src="a.png"></body></html>`,
			issue: issue("a", domain.IssueMissingAltText, "img"),
			want:  []string{`alt="Descriptive image text"`},
		},
		{
			name: "alt text from suggestion",
			page: `<html><body><img src="cat.png" alt=""></body></html>`,
			issue: func() domain.FusedIssue {
				i := issue("a", domain.IssueEmptyAltText, "img")
				i.AISuggestion = "A sleeping cat"
				return i
			}(),
			want: []string{`alt="A sleeping cat"`},
		},
		{
			name:  "label insertion",
			page:  `<html><body><form><input type="text" name="user_name"></form></body></html>`,
			issue: issue("f", domain.IssueMissingLabel, "input"),
			want:  []string{`<label for="input-user_name">User Name</label><input`, `id="input-user_name"`},
		},
		{
			name:  "alt text on dotted id",
			page:  `<html><body><img id="logo.main" src="logo.png"></body></html>`,
			issue: issue("a", domain.IssueMissingAltText, "#logo.main"),
			want:  []string{`alt="Descriptive image text"`},
		},
		{
			name:  "label for dotted id",
			page:  `<html><body><input id="user.email" type="email"></body></html>`,
			issue: issue("f", domain.IssueMissingLabel, "#user.email"),
			want:  []string{`<label for="user.email">`},
		},
		{
			name:  "clickable div becomes button",
			page:  `<html><body><div class="btn" onclick="go()">Go</div></body></html>`,
			issue: issue("s", domain.IssueImproperSemantics, ".btn"),
			want:  []string{`<button type="button" class="btn">Go</button>`},
		},
		{
			name:  "tabindex removed",
			page:  `<html><body><a id="skip" href="#" tabindex="-1">Skip</a></body></html>`,
			issue: issue("t", domain.IssueRemovedFromTabOrder, "#skip"),
			want:  []string{`<a id="skip" href="#">Skip</a>`},
		},
		{
			name: "heading renamed",
			page: `<html><body><h1>Title</h1><h4 id="deep">Deep</h4></body></html>`,
			issue: func() domain.FusedIssue {
				i := issue("h", domain.IssueHeadingHierarchy, "#deep")
				i.Heading = &domain.HeadingDetails{From: 1, To: 4}
				return i
			}(),
			want: []string{`<h2 id="deep">Deep</h2>`},
		},
		{
			name:  "labelledby links existing label",
			page:  `<html><body><label for="email">Email</label><input id="email" type="email"></body></html>`,
			issue: issue("r", domain.IssueMissingARIA, "#email"),
			want:  []string{`aria-labelledby="email-label"`},
		},
		{
			name:  "aria-label without label",
			page:  `<html><body><button id="x"></button></body></html>`,
			issue: issue("r", domain.IssueMissingARIALabel, "#x"),
			want:  []string{`aria-label="Interactive element"`},
		},
		{
			name:  "invalid role removed",
			page:  `<html><body><div id="w" role="widgetish">x</div></body></html>`,
			issue: issue("r", domain.IssueInvalidARIARole, "#w"),
			want:  []string{`<div id="w">x</div>`},
		},
	}

	g := newGenerator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := g.Generate(tt.issue, tt.page, "")
			if p.IsNoOp() {
				t.Fatalf("unexpected no-op: %s", p.Reason)
			}
			after := p.After[domain.ArtifactHTML]
			for _, w := range tt.want {
				if !strings.Contains(after, w) {
					t.Fatalf("after %q does not contain %q", after, w)
				}
			}
			if p.Before[domain.ArtifactHTML] == after {
				t.Fatalf("before and after are identical")
			}
			if p.Diff[domain.ArtifactHTML] == "" {
				t.Fatalf("missing diff")
			}
			if !strings.Contains(p.PreviewScript, "if (!element) return;") {
				t.Fatalf("preview script does not guard a missing element:\n%s", p.PreviewScript)
			}
		})
	}
}

func TestPreviewScriptGuardsWholeBody(t *testing.T) {
	g := newGenerator()
	page := `<html><body><img id="logo.main" src="logo.png"></body></html>`
	p := g.Generate(issue("a", domain.IssueMissingAltText, "#logo.main"), page, "")
	if p.IsNoOp() {
		t.Fatalf("expected a change, got no-op: %s", p.Reason)
	}
	if !strings.Contains(p.PreviewScript, `document.getElementById("logo.main")`) {
		t.Fatalf("id locator not looked up literally:\n%s", p.PreviewScript)
	}
	try := strings.Index(p.PreviewScript, "try {")
	lookup := strings.Index(p.PreviewScript, "const element")
	mutation := strings.Index(p.PreviewScript, "setAttribute")
	catch := strings.Index(p.PreviewScript, "} catch (e)")
	if try < 0 || !(try < lookup && lookup < mutation && mutation < catch) {
		t.Fatalf("mutation is not inside try/catch:\n%s", p.PreviewScript)
	}

	css := g.Generate(issue("f", domain.IssueMissingFocusIndicator, ""), "", "a { color: red; }")
	try = strings.Index(css.PreviewScript, "try {")
	appendAt := strings.Index(css.PreviewScript, "document.head.appendChild")
	catch = strings.Index(css.PreviewScript, "} catch (e)")
	if try < 0 || !(try < appendAt && appendAt < catch) {
		t.Fatalf("style injection is not inside try/catch:\n%s", css.PreviewScript)
	}
}

func TestLookupExpr(t *testing.T) {
	tests := []struct {
		locator, want string
	}{
		{"#user.email", `document.getElementById("user.email") || document.querySelector("#user.email")`},
		{".btn", `document.getElementsByClassName("btn")[0] || document.querySelector(".btn")`},
		{"input", `document.querySelector("input")`},
	}
	for _, tt := range tests {
		if got := lookupExpr(tt.locator); got != tt.want {
			t.Fatalf("lookupExpr(%q) = %s, want %s", tt.locator, got, tt.want)
		}
	}
}

func TestFocusFixOnlyAppends(t *testing.T) {
	sheet := "a { color: red; }"
	p := newGenerator().Generate(issue("focus-1", domain.IssueMissingFocusIndicator, ""), "", sheet)

	if p.PatchType != domain.PatchCSS || p.IsNoOp() {
		t.Fatalf("unexpected patch %+v", p)
	}
	after := p.After[domain.ArtifactCSS]
	if !strings.HasPrefix(after, sheet) {
		t.Fatalf("existing rules were edited: %q", after)
	}
	if !strings.Contains(after, "/* Accessibility fix: Add visible focus indicator */") || !strings.Contains(after, "*:focus-visible") {
		t.Fatalf("after = %q", after)
	}
	added, removed := diff.Stat(p.Diff[domain.ArtifactCSS])
	if removed != 0 || added == 0 {
		t.Fatalf("diff stat = +%d -%d", added, removed)
	}
	if !strings.Contains(p.PreviewScript, "document.head.appendChild(style)") {
		t.Fatalf("preview = %q", p.PreviewScript)
	}
}

func TestContrastFixUsesRecommendation(t *testing.T) {
	i := issue("c", domain.IssueLowContrast, ".muted")
	i.Recommendation = &domain.Recommendation{Color: "#595959", Background: "#ffffff"}
	p := newGenerator().Generate(i, "", "")
	after := p.After[domain.ArtifactCSS]
	if !strings.Contains(after, ".muted {") || !strings.Contains(after, "color: #595959;") {
		t.Fatalf("after = %q", after)
	}
}

func TestUnresolvedLocatorIsNoOp(t *testing.T) {
	page := `<html><body><img src="a.png"></body></html>`
	p := newGenerator().Generate(issue("a", domain.IssueMissingAltText, "#nope"), page, "")
	if !p.IsNoOp() {
		t.Fatalf("expected no-op")
	}
	if p.Before[domain.ArtifactHTML] != page || p.After[domain.ArtifactHTML] != page {
		t.Fatalf("no-op must leave the page untouched")
	}
	if p.Diff[domain.ArtifactHTML] != "" || p.VCSPatch != "" {
		t.Fatalf("no-op must have an empty diff")
	}
	if !strings.Contains(p.Reason, ErrUnresolvedLocator.Error()) {
		t.Fatalf("reason = %q", p.Reason)
	}
}

func TestUnsupportedIssue(t *testing.T) {
	for _, typ := range []domain.IssueType{domain.IssueReadability, domain.IssueLayout} {
		p := newGenerator().Generate(issue("x", typ, ""), "<p>x</p>", "")
		if !p.IsNoOp() || !strings.Contains(p.Reason, ErrUnsupportedIssue.Error()) {
			t.Fatalf("%s: expected unsupported no-op, got %+v", typ, p)
		}
	}
	if _, ok := Route(domain.IssueReadability); ok {
		t.Fatalf("readability should not route")
	}
}

func TestRequiresApproval(t *testing.T) {
	g := newGenerator()
	page := `<html><body><img src="a.png"></body></html>`

	low := issue("a", domain.IssueMissingAltText, "img")
	low.FixConfidence = 0.5
	if p := g.Generate(low, page, ""); !p.RequiresApproval {
		t.Fatalf("fix confidence 0.5 should require approval")
	}
	high := issue("a", domain.IssueMissingAltText, "img")
	if p := g.Generate(high, page, ""); p.RequiresApproval {
		t.Fatalf("fix confidence 0.9 should auto-apply")
	}
}

func TestGenerateBatch(t *testing.T) {
	page := `<html><body><img src="a.png"><input name="q"></body></html>`
	issues := []domain.FusedIssue{
		issue("one", domain.IssueMissingAltText, "img"),
		issue("two", domain.IssueMissingAltText, "#missing"),
		issue("three", domain.IssueMissingLabel, "input"),
	}
	results := newGenerator().GenerateBatch(context.Background(), issues, page, "")
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	for i, want := range []bool{true, false, true} {
		if results[i].IssueID != issues[i].ID {
			t.Fatalf("result %d is for %s", i, results[i].IssueID)
		}
		if results[i].Success != want {
			t.Fatalf("result %d success = %v, error %q", i, results[i].Success, results[i].Error)
		}
		if results[i].Patch == nil {
			t.Fatalf("result %d has no patch", i)
		}
	}
}

func TestGenerateBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := newGenerator().GenerateBatch(ctx, []domain.FusedIssue{issue("a", domain.IssueMissingLang, "html")}, "<html></html>", "")
	if results[0].Success || !strings.Contains(results[0].Error, context.Canceled.Error()) {
		t.Fatalf("unexpected result %+v", results[0])
	}
}

func TestOverallConfidence(t *testing.T) {
	if got := OverallConfidence(nil); got != 0 {
		t.Fatalf("empty = %v", got)
	}
	got := OverallConfidence([]domain.Patch{{FixConfidence: 0.4}, {FixConfidence: 0.8}})
	if got < 0.5999 || got > 0.6001 {
		t.Fatalf("mean = %v", got)
	}
}

func TestLabelText(t *testing.T) {
	tests := []struct{ suggestion, name, placeholder, want string }{
		{"Email address", "email", "", "Email address"},
		{"", "first-name", "", "First Name"},
		{"", "", "Search", "Search"},
		{"", "", "", "Field label"},
	}
	for _, tt := range tests {
		if got := LabelText(tt.suggestion, tt.name, tt.placeholder); got != tt.want {
			t.Fatalf("LabelText(%q, %q, %q) = %q, want %q", tt.suggestion, tt.name, tt.placeholder, got, tt.want)
		}
	}
}

func TestHTMLFixErrors(t *testing.T) {
	g := newGenerator()
	_, err := g.htmlFix(issue("x", domain.IssueMissingAltText, "p"), "<p>text</p>")
	if !errors.Is(err, ErrNothingToChange) {
		t.Fatalf("err = %v", err)
	}
	_, err = g.htmlFix(issue("x", domain.IssueMissingAltText, "#gone"), "<p>text</p>")
	if !errors.Is(err, ErrUnresolvedLocator) {
		t.Fatalf("err = %v", err)
	}
}
