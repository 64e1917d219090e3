// Package patch turns fused issues into before/after code changes with
// unified diffs, a live preview script and a git-style patch.
package patch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/juparave/a11yfix/internal/config"
	"github.com/juparave/a11yfix/internal/diff"
	"github.com/juparave/a11yfix/internal/domain"
)

var (
	// ErrUnresolvedLocator means the issue's locator matches nothing in the page
	ErrUnresolvedLocator = errors.New("locator does not resolve")
	// ErrUnsupportedIssue means no automatic fix exists for the issue type
	ErrUnsupportedIssue = errors.New("no automatic fix for issue type")
	// ErrNothingToChange means the element already satisfies the fix
	ErrNothingToChange = errors.New("element already fixed")
)

// Generator builds patches for fused issues
type Generator struct {
	logger  *log.Logger
	cfg     config.FixConfig
	workers int
}

// NewGenerator creates a Generator
func NewGenerator(cfg config.FixConfig, workers int, logger *log.Logger) *Generator {
	if cfg.AutoApplyThreshold <= 0 {
		cfg.AutoApplyThreshold = 0.8
	}
	if cfg.DefaultLang == "" {
		cfg.DefaultLang = "en"
	}
	if workers < 1 {
		workers = 1
	}
	return &Generator{logger: logger, cfg: cfg, workers: workers}
}

// change is what a fix family produces for one artifact
type change struct {
	artifact    domain.Artifact
	before      string
	after       string
	explanation string
	script      []string // preview statements run against `element`
	style       string   // preview stylesheet text, for CSS fixes
}

// Generate builds the patch for issue against the original page text. It
// never fails: problems yield a no-op patch whose Reason says why.
func (g *Generator) Generate(issue domain.FusedIssue, originalHTML, originalCSS string) domain.Patch {
	p := g.skeleton(issue)

	family, ok := Route(issue.Type)
	if !ok {
		return g.noop(p, domain.ArtifactHTML, originalHTML, fmt.Errorf("%w: %s", ErrUnsupportedIssue, issue.Type))
	}
	p.PatchType = family

	var (
		ch  change
		err error
	)
	switch family {
	case domain.PatchCSS:
		ch, err = g.cssFix(issue, originalCSS)
		if err != nil {
			return g.noop(p, domain.ArtifactCSS, originalCSS, err)
		}
	default:
		ch, err = g.htmlFix(issue, originalHTML)
		if err != nil {
			return g.noop(p, domain.ArtifactHTML, originalHTML, err)
		}
	}

	p.Outcome = domain.OutcomeApplied
	p.Before[ch.artifact] = ch.before
	p.After[ch.artifact] = ch.after
	if ch.explanation != "" {
		p.Explanation = ch.explanation
	}

	unified, err := diff.Unified(ch.before, ch.after, "before."+string(ch.artifact), "after."+string(ch.artifact))
	if err != nil {
		g.warn("Warning: diff for %s failed: %v", issue.ID, err)
	}
	p.Diff[ch.artifact] = unified

	vcs, err := diff.Envelope(fmt.Sprintf("fix-%s.%s", issue.ID, p.PatchType), ch.before, ch.after)
	if err != nil {
		g.warn("Warning: patch envelope for %s failed: %v", issue.ID, err)
	}
	p.VCSPatch = vcs
	p.PreviewScript = previewScript(issue, ch)
	return p
}

func (g *Generator) skeleton(issue domain.FusedIssue) domain.Patch {
	fixConfidence := issue.FixConfidence
	if fixConfidence <= 0 {
		fixConfidence = 0.7
	}
	return domain.Patch{
		IssueID:          issue.ID,
		IssueType:        issue.Type,
		Selector:         issue.Selector,
		Severity:         issue.Severity,
		WCAGLevel:        issue.WCAGLevel,
		WCAGRule:         issue.WCAGRule,
		PatchType:        domain.PatchHTML,
		Before:           make(map[domain.Artifact]string),
		After:            make(map[domain.Artifact]string),
		Diff:             make(map[domain.Artifact]string),
		RequiresApproval: fixConfidence < g.cfg.AutoApplyThreshold,
		Confidence:       issue.Confidence,
		FixConfidence:    fixConfidence,
		Explanation:      issue.Description,
	}
}

// noop records an unchanged artifact and the reason nothing was done
func (g *Generator) noop(p domain.Patch, artifact domain.Artifact, original string, reason error) domain.Patch {
	p.Outcome = domain.OutcomeNoOp
	p.Reason = reason.Error()
	p.Explanation = fmt.Sprintf("No change made: %v", reason)
	p.Before[artifact] = original
	p.After[artifact] = original
	p.Diff[artifact] = ""
	return p
}

// GenerateBatch builds patches for every issue concurrently. One issue
// failing never affects the others; results keep the order of issues.
func (g *Generator) GenerateBatch(ctx context.Context, issues []domain.FusedIssue, originalHTML, originalCSS string) []domain.FixResult {
	results := make([]domain.FixResult, len(issues))

	var eg errgroup.Group
	eg.SetLimit(g.workers)
	for i, issue := range issues {
		eg.Go(func() error {
			results[i] = g.fixOne(ctx, issue, originalHTML, originalCSS)
			return nil
		})
	}
	_ = eg.Wait()
	return results
}

func (g *Generator) fixOne(ctx context.Context, issue domain.FusedIssue, originalHTML, originalCSS string) (res domain.FixResult) {
	res.IssueID = issue.ID
	defer func() {
		if r := recover(); r != nil {
			g.warn("Warning: fixing %s panicked: %v\n%s", issue.ID, r, debug.Stack())
			res.Success = false
			res.Error = fmt.Sprintf("internal error: %v", r)
			res.Patch = nil
		}
	}()
	if err := ctx.Err(); err != nil {
		res.Error = err.Error()
		return res
	}
	p := g.Generate(issue, originalHTML, originalCSS)
	res.Patch = &p
	res.Success = !p.IsNoOp()
	if p.IsNoOp() {
		res.Error = p.Reason
	}
	return res
}

// OverallConfidence is the mean fix confidence of patches, 0 when empty
func OverallConfidence(patches []domain.Patch) float64 {
	if len(patches) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range patches {
		total += p.FixConfidence
	}
	return total / float64(len(patches))
}

func (g *Generator) warn(format string, args ...any) {
	if g.logger != nil {
		g.logger.Printf(format, args...)
	}
}
