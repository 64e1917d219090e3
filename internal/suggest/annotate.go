package suggest

import (
	"context"
	"log"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/juparave/a11yfix/internal/detect"
	"github.com/juparave/a11yfix/internal/domain"
	"github.com/juparave/a11yfix/internal/selector"
)

// maxConcurrent bounds simultaneous suggestion requests
const maxConcurrent = 4

// contextLength bounds the surrounding text sent with a request
const contextLength = 500

// Annotate asks s for one suggestion per supported issue in findings and
// returns them as LLM-source findings to be fused with the rule findings.
// Findings sharing an issue key get a single request. Failed requests are
// logged and skipped.
func Annotate(ctx context.Context, s Suggester, doc *detect.Document, findings []domain.RawFinding, logger *log.Logger) []domain.RawFinding {
	if s == nil || doc == nil {
		return nil
	}

	var targets []domain.RawFinding
	seen := make(map[domain.IssueKey]bool)
	for _, f := range findings {
		if _, ok := KindFor(f.Type); !ok || seen[f.Key()] {
			continue
		}
		seen[f.Key()] = true
		targets = append(targets, f)
	}

	// requests are built before fanning out so goroutines never touch the tree
	reqs := make([]Request, len(targets))
	for i, f := range targets {
		reqs[i] = buildRequest(doc, f)
	}

	slots := make([]*domain.RawFinding, len(targets))
	var eg errgroup.Group
	eg.SetLimit(maxConcurrent)
	for i, f := range targets {
		eg.Go(func() error {
			sug, err := s.Suggest(ctx, reqs[i])
			if err != nil {
				if logger != nil {
					logger.Printf("Warning: no suggestion for %s: %v", f.ID, err)
				}
				return nil
			}
			if sug.Text == "" {
				return nil
			}
			a := annotation(f, sug)
			slots[i] = &a
			return nil
		})
	}
	_ = eg.Wait()

	var out []domain.RawFinding
	for _, a := range slots {
		if a != nil {
			out = append(out, *a)
		}
	}
	return out
}

func buildRequest(doc *detect.Document, f domain.RawFinding) Request {
	kind, _ := KindFor(f.Type)
	req := Request{Kind: kind, ElementHTML: f.Element}

	el := selector.Resolve(doc.Root, f.Selector)
	if el == nil {
		if kind == KindSimplify {
			req.Context = truncate(selector.Text(doc.Root), contextLength)
		}
		return req
	}

	req.ElementType = el.Data
	if el.Data == "input" {
		if t := selector.Attr(el, "type"); t != "" {
			req.ElementType = "input-" + t
		}
	}
	req.Placeholder = selector.Attr(el, "placeholder")
	if req.ElementHTML == "" {
		req.ElementHTML = selector.Truncate(el, 1000)
	}

	switch kind {
	case KindSimplify:
		req.Context = truncate(selector.Text(el), contextLength)
	case KindAltText:
		req.Context = nearbyText(el)
		if t := selector.Attr(el, "title"); t != "" {
			req.Context = t + " " + req.Context
		}
	default:
		req.Context = nearbyText(el)
	}
	return req
}

// nearbyText is the text of the closest ancestor that has any
func nearbyText(n *html.Node) string {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		if t := selector.Text(p); t != "" {
			return truncate(t, contextLength)
		}
		if p.Data == "body" {
			break
		}
	}
	return ""
}

func annotation(f domain.RawFinding, sug Suggestion) domain.RawFinding {
	return domain.RawFinding{
		ID:          f.ID + "-ai",
		Source:      domain.SourceLLM,
		Detector:    "suggest",
		Type:        f.Type,
		Severity:    f.Severity,
		WCAGLevel:   f.WCAGLevel,
		WCAGRule:    f.WCAGRule,
		Selector:    f.Selector,
		Element:     f.Element,
		Message:     f.Message,
		Description: "Suggested text: " + sug.Text,
		FixHint:     f.FixHint,
		Confidence:  domain.Float(sug.Confidence),
		Suggestion:  sug.Text,
	}
}
