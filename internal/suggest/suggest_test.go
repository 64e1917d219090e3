package suggest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/juparave/a11yfix/internal/detect"
	"github.com/juparave/a11yfix/internal/domain"
)

type stubSuggester struct {
	mu    sync.Mutex
	calls []Request
	err   error
	text  string
}

func (s *stubSuggester) Suggest(_ context.Context, req Request) (Suggestion, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()
	if s.err != nil {
		return Suggestion{}, s.err
	}
	return Suggestion{Text: s.text, Confidence: 0.9, Method: "stub"}, nil
}

func TestRuleBased(t *testing.T) {
	tests := []struct {
		name     string
		req      Request
		wantText string
		wantConf float64
	}{
		{"alt logo", Request{Kind: KindAltText, Context: "Acme brand header"}, "Company logo", RuleAltConfidence},
		{"alt icon", Request{Kind: KindAltText, Context: "settings icon"}, "Icon", RuleAltConfidence},
		{"alt default", Request{Kind: KindAltText}, "Decorative image", RuleAltConfidence},
		{"label nearby", Request{Kind: KindLabel, Context: "Your email"}, "Your email", RuleLabelConfidence},
		{"label placeholder", Request{Kind: KindLabel, Placeholder: "SEARCH here"}, "Search here", RuleLabelConfidence},
		{"label type", Request{Kind: KindLabel, ElementType: "input-email"}, "Email field", RuleLabelConfidence},
		{"aria button text", Request{Kind: KindARIALabel, ElementType: "button", ElementHTML: "<button><b>Save</b></button>"}, "Button: Save", RuleARIAConfidence},
		{"aria link context", Request{Kind: KindARIALabel, ElementType: "a", Context: "Pricing"}, "Link: Pricing", RuleARIAConfidence},
		{"aria generic", Request{Kind: KindARIALabel, ElementType: "div"}, "Div element", RuleARIAConfidence},
		{"simplify unchanged", Request{Kind: KindSimplify, Context: "Some text."}, "Some text.", RuleSimplifyConfidence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RuleBased{}.Suggest(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Text != tt.wantText || got.Confidence != tt.wantConf {
				t.Fatalf("got %+v, want %q @ %v", got, tt.wantText, tt.wantConf)
			}
		})
	}

	if _, err := (RuleBased{}).Suggest(context.Background(), Request{Kind: "poem"}); !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("err = %v", err)
	}
}

func TestFallback(t *testing.T) {
	primary := &stubSuggester{err: errors.New("quota exceeded")}
	f := Fallback{Primary: primary, Secondary: RuleBased{}}

	got, err := f.Suggest(context.Background(), Request{Kind: KindAltText})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Method != methodRuleBased || len(primary.calls) != 1 {
		t.Fatalf("expected fallback after primary failure, got %+v", got)
	}

	ok := &stubSuggester{text: "A red bicycle"}
	got, _ = Fallback{Primary: ok, Secondary: RuleBased{}}.Suggest(context.Background(), Request{Kind: KindAltText})
	if got.Text != "A red bicycle" {
		t.Fatalf("primary result not used: %+v", got)
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantText string
		wantConf float64
	}{
		{"plain", `{"text": "Search", "confidence": 0.8}`, "Search", 0.8},
		{"fenced json", "```json\n{\"text\": \"Search\", \"confidence\": 0.7}\n```", "Search", 0.7},
		{"fenced", "```\n{\"text\": \"Search\"}\n```", "Search", 0.5},
		{"clamped", `{"text": "Search", "confidence": 3}`, "Search", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseResponse(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Text != tt.wantText || got.Confidence != tt.wantConf {
				t.Fatalf("got %+v", got)
			}
		})
	}
	if _, err := parseResponse("sure, here you go"); err == nil {
		t.Fatalf("expected error for non-JSON response")
	}
}

func TestCleanText(t *testing.T) {
	if got := cleanText(KindLabel, ` "Email address" `); got != "Email address" {
		t.Fatalf("got %q", got)
	}
	long := strings.Repeat("a", 200)
	if got := cleanText(KindAltText, long); len(got) != maxAltLength || !strings.HasSuffix(got, "...") {
		t.Fatalf("alt text not bounded: %d", len(got))
	}
}

func TestBuildPrompt(t *testing.T) {
	p, err := buildPrompt(Request{Kind: KindLabel, ElementType: "input-email", Placeholder: "you@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(p, "input-email") || !strings.Contains(p, "you@example.com") || !strings.Contains(p, `"confidence"`) {
		t.Fatalf("prompt missing request details:\n%s", p)
	}
	if _, err := buildPrompt(Request{Kind: "poem"}); !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("err = %v", err)
	}
}

func TestKindFor(t *testing.T) {
	if k, ok := KindFor(domain.IssueEmptyAltText); !ok || k != KindAltText {
		t.Fatalf("empty alt -> %q %v", k, ok)
	}
	if k, ok := KindFor(domain.IssueReadability); !ok || k != KindSimplify {
		t.Fatalf("readability -> %q %v", k, ok)
	}
	if _, ok := KindFor(domain.IssueLowContrast); ok {
		t.Fatalf("contrast should have no suggestion kind")
	}
}

func finding(id string, typ domain.IssueType, sel string) domain.RawFinding {
	return domain.RawFinding{
		ID: id, Source: domain.SourceRule, Type: typ, Selector: sel,
		Severity: domain.SeverityHigh, WCAGLevel: domain.LevelA, Message: "m",
	}
}

func TestAnnotate(t *testing.T) {
	doc, err := detect.NewDocument(`<html><body><p>Our team <img id="team" src="t.jpg"></p><input id="q" type="search" placeholder="Find"></body></html>`, "", "")
	if err != nil {
		t.Fatal(err)
	}
	findings := []domain.RawFinding{
		finding("alt-text-1", domain.IssueMissingAltText, "#team"),
		finding("alt-text-2", domain.IssueMissingAltText, "#team"), // same key
		finding("forms-1", domain.IssueMissingLabel, "#q"),
		finding("contrast-1", domain.IssueLowContrast, "p"),
	}

	s := &stubSuggester{text: "Team photo"}
	out := Annotate(context.Background(), s, doc, findings, nil)

	if len(s.calls) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(s.calls))
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 annotations, got %d", len(out))
	}
	if out[0].ID != "alt-text-1-ai" || out[1].ID != "forms-1-ai" {
		t.Fatalf("annotations out of order: %s, %s", out[0].ID, out[1].ID)
	}
	for _, a := range out {
		if a.Source != domain.SourceLLM || a.Suggestion != "Team photo" || a.Confidence == nil || *a.Confidence != 0.9 {
			t.Fatalf("bad annotation %+v", a)
		}
		if err := a.Validate(); err != nil {
			t.Fatalf("annotation invalid: %v", err)
		}
	}
	for _, req := range s.calls {
		if req.Kind == KindLabel && (req.ElementType != "input-search" || req.Placeholder != "Find") {
			t.Fatalf("label request = %+v", req)
		}
		if req.Kind == KindAltText && !strings.Contains(req.Context, "Our team") {
			t.Fatalf("alt request context = %q", req.Context)
		}
	}
}

func TestAnnotateSkipsFailures(t *testing.T) {
	doc, _ := detect.NewDocument(`<img src="x.png">`, "", "")
	s := &stubSuggester{err: errors.New("offline")}
	out := Annotate(context.Background(), s, doc, []domain.RawFinding{finding("a", domain.IssueMissingAltText, "img")}, nil)
	if len(out) != 0 {
		t.Fatalf("expected no annotations, got %d", len(out))
	}
}
