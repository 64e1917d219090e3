package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/juparave/a11yfix/internal/config"
	"github.com/juparave/a11yfix/internal/detect"
	"github.com/juparave/a11yfix/internal/domain"
	"github.com/juparave/a11yfix/internal/fetch"
	"github.com/juparave/a11yfix/internal/fusion"
	"github.com/juparave/a11yfix/internal/notify"
	"github.com/juparave/a11yfix/internal/patch"
	"github.com/juparave/a11yfix/internal/report"
	"github.com/juparave/a11yfix/internal/scanner"
	"github.com/juparave/a11yfix/internal/store"
	"github.com/juparave/a11yfix/internal/suggest"
	"github.com/juparave/a11yfix/internal/util"
)

// Target is a page to scan: a URL, or a local HTML file with optional
// stylesheet and script files
type Target struct {
	Location string
	CSSPath  string
	JSPath   string
}

// ScanResult is the outcome of scanning one page
type ScanResult struct {
	Report     *domain.Report
	ReportPath string
	RecordID   string
	Emailed    bool
}

// FixOutcome is the outcome of fixing issues on one page
type FixOutcome struct {
	URL               string
	Results           []domain.FixResult
	OverallConfidence float64
	PatchDir          string
}

// Runner orchestrates scanning, fixing and reporting
type Runner struct {
	config    *config.Config
	logger    *log.Logger
	fetcher   *fetch.Fetcher
	scanner   *scanner.Scanner
	suggester suggest.Suggester
	model     string
	patches   *patch.Generator
	report    *report.Formatter
	store     store.Store
	notify    *notify.Service
	ready     bool
}

// NewRunner creates a new Runner instance
func NewRunner(cfg *config.Config) *Runner {
	return NewRunnerWithLogger(cfg, log.New(os.Stdout, "[A11Y] ", log.LstdFlags))
}

// NewRunnerWithLogger creates a Runner that logs to logger
func NewRunnerWithLogger(cfg *config.Config, logger *log.Logger) *Runner {
	return &Runner{
		config: cfg,
		logger: logger,
		report: report.NewFormatter(cfg.Reports.OutputDir),
		// the rest is initialized in prepare() after validation
	}
}

// prepare validates the configuration and builds the services it selects
func (r *Runner) prepare() error {
	if r.ready {
		return nil
	}
	if err := r.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	sc, err := scanner.New(r.config.Scan, r.logger)
	if err != nil {
		return fmt.Errorf("initializing scanner: %w", err)
	}
	r.scanner = sc
	r.fetcher = fetch.New(r.config.Scan, r.logger)
	r.patches = patch.NewGenerator(r.config.Fix, r.config.Scan.Workers, r.logger)

	if r.config.AI.Enabled {
		r.log("Initializing suggestion model...")
		g, err := suggest.NewGenkit(r.config.AI, r.logger)
		if err != nil {
			r.logger.Printf("Warning: AI suggestions unavailable, using rule-based text: %v", err)
			r.suggester = suggest.RuleBased{}
			r.model = "rule_based"
		} else {
			r.suggester = suggest.Fallback{Primary: g, Secondary: suggest.RuleBased{}, Logger: r.logger}
			r.model = g.Model()
		}
	}

	if !r.config.DryRun {
		st, err := store.Open(r.config.Reports)
		if err != nil {
			return fmt.Errorf("opening report store: %w", err)
		}
		r.store = st

		if r.config.Email.Enabled {
			n, err := notify.NewService(r.config.Email, r.logger)
			if err != nil {
				return fmt.Errorf("initializing email service: %w", err)
			}
			r.notify = n
		}
	}

	r.ready = true
	return nil
}

// Close releases the report store
func (r *Runner) Close() error {
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}

// ScanAll scans a URL, a file, or every page under a directory. Pages that
// fail are logged and skipped.
func (r *Runner) ScanAll(ctx context.Context, target Target) ([]*ScanResult, error) {
	if util.IsURL(target.Location) || !util.DirExists(target.Location) {
		res, err := r.Scan(ctx, target)
		if err != nil {
			return nil, err
		}
		return []*ScanResult{res}, nil
	}

	if err := r.prepare(); err != nil {
		return nil, err
	}
	r.log("Scanning for pages in %s...", target.Location)
	pages, err := r.scanner.FindPages(target.Location)
	if err != nil {
		return nil, fmt.Errorf("finding pages: %w", err)
	}
	r.log("Found %d pages", len(pages))

	var results []*ScanResult
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := r.Scan(ctx, Target{Location: page, CSSPath: target.CSSPath, JSPath: target.JSPath})
		if err != nil {
			r.logger.Printf("Warning: failed to scan %s: %v", scanner.PageName(target.Location, page), err)
			continue
		}
		results = append(results, res)
	}
	return results, nil
}

// Scan runs the full pipeline for one page: load, detect, suggest, fuse,
// score, patch, then write, store and mail the report
func (r *Runner) Scan(ctx context.Context, target Target) (*ScanResult, error) {
	startTime := time.Now()
	if err := r.prepare(); err != nil {
		return nil, err
	}

	page, doc, err := r.load(ctx, target)
	if err != nil {
		return nil, err
	}

	issues := r.analyze(ctx, doc, page)

	r.log("Generating patches...")
	var patches []domain.Patch
	for _, res := range r.patches.GenerateBatch(ctx, issues, page.HTML, page.CSS) {
		if res.Success && res.Patch != nil {
			patches = append(patches, *res.Patch)
		}
	}
	r.log("Generated %d patches", len(patches))

	rpt := &domain.Report{
		ID:         uuid.NewString(),
		URL:        page.URL,
		Date:       time.Now(),
		Score:      scanner.Score(issues),
		Compliance: scanner.Compliance(issues),
		Issues:     issues,
		Patches:    patches,
		Duration:   time.Since(startTime),
		Metadata:   page.Metadata,
		Model:      r.model,
	}
	res := &ScanResult{Report: rpt}

	if r.config.DryRun {
		r.log("Dry run, skipping report output")
		return res, nil
	}

	r.log("Generating report...")
	res.ReportPath, err = r.report.Write(rpt, r.config.Reports.Format)
	if err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}
	r.log("Report saved to %s", res.ReportPath)

	rec, err := store.NewRecord(rpt, page.HTML)
	if err != nil {
		r.logger.Printf("Warning: cannot store report: %v", err)
	} else if res.RecordID, err = r.store.Save(ctx, rec); err != nil {
		r.logger.Printf("Warning: cannot store report: %v", err)
	}

	if r.notify != nil && r.notify.ShouldSend(rpt) {
		r.log("Sending email notification...")
		sent, err := r.notify.SendReport(ctx, rpt)
		if err != nil {
			return res, fmt.Errorf("sending email: %w", err)
		}
		res.Emailed = sent
		r.log("Email sent successfully")
	}

	r.log("Scan of %s complete in %s", page.URL, time.Since(startTime).Round(time.Millisecond))
	return res, nil
}

// Fix scans the page and builds patches for the issues named by issueIDs,
// or for every issue when none are named. Unknown ids get a failed result.
func (r *Runner) Fix(ctx context.Context, target Target, issueIDs []string) (*FixOutcome, error) {
	if err := r.prepare(); err != nil {
		return nil, err
	}
	page, doc, err := r.load(ctx, target)
	if err != nil {
		return nil, err
	}
	issues := r.analyze(ctx, doc, page)

	selected := issues
	var missing []domain.FixResult
	if len(issueIDs) > 0 {
		byID := make(map[string]domain.FusedIssue, len(issues))
		for _, issue := range issues {
			byID[issue.ID] = issue
		}
		selected = nil
		for _, id := range issueIDs {
			issue, ok := byID[id]
			if !ok {
				missing = append(missing, domain.FixResult{IssueID: id, Error: "issue not found"})
				continue
			}
			selected = append(selected, issue)
		}
	}

	results := r.patches.GenerateBatch(ctx, selected, page.HTML, page.CSS)
	results = append(results, missing...)

	var applied []domain.Patch
	for _, res := range results {
		if res.Success && res.Patch != nil {
			applied = append(applied, *res.Patch)
		}
	}
	out := &FixOutcome{
		URL:               page.URL,
		Results:           results,
		OverallConfidence: patch.OverallConfidence(applied),
	}

	if r.config.DryRun || len(applied) == 0 {
		return out, nil
	}
	out.PatchDir, err = r.writePatches(page.URL, applied)
	if err != nil {
		return out, err
	}
	r.log("Wrote %d patches to %s", len(applied), out.PatchDir)
	return out, nil
}

func (r *Runner) writePatches(pageURL string, patches []domain.Patch) (string, error) {
	dir := filepath.Join(util.ExpandPath(r.config.Reports.OutputDir), "patches", util.SafeName(pageURL))
	if err := util.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("creating patch directory: %w", err)
	}
	for _, p := range patches {
		if p.VCSPatch == "" {
			continue
		}
		path := filepath.Join(dir, util.SafeName(p.IssueID)+".patch")
		if err := os.WriteFile(path, []byte(p.VCSPatch), 0644); err != nil {
			return dir, fmt.Errorf("writing patch %s: %w", p.IssueID, err)
		}
	}
	return dir, nil
}

func (r *Runner) load(ctx context.Context, target Target) (*domain.Page, *detect.Document, error) {
	var (
		page *domain.Page
		err  error
	)
	if util.IsURL(target.Location) {
		r.log("Fetching %s...", target.Location)
		page, err = r.fetcher.Fetch(ctx, target.Location)
	} else {
		r.log("Loading %s...", target.Location)
		page, err = fetch.LoadFile(target.Location, target.CSSPath, target.JSPath)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading page: %w", err)
	}

	doc, err := detect.NewDocument(page.HTML, page.CSS, page.JS)
	if err != nil {
		return nil, nil, fmt.Errorf("preparing document: %w", err)
	}
	return page, doc, nil
}

// analyze runs the detectors, adds suggestions and fuses the findings.
// Rule findings come before suggestions so ranking ties keep detector order.
func (r *Runner) analyze(ctx context.Context, doc *detect.Document, page *domain.Page) []domain.FusedIssue {
	r.log("Running %d detectors...", len(r.scanner.Detectors()))
	findings := r.scanner.Scan(doc)
	r.log("Found %d raw findings", len(findings))

	if r.suggester != nil && len(findings) > 0 {
		r.log("Requesting suggestions...")
		annotations := suggest.Annotate(ctx, r.suggester, doc, findings, r.logger)
		r.log("Received %d suggestions", len(annotations))
		findings = append(findings, annotations...)
	}

	issues := fusion.Fuse(findings, page.Metadata)
	r.log("Fused into %d issues", len(issues))
	return issues
}

func (r *Runner) log(format string, args ...interface{}) {
	if r.config.Verbose {
		r.logger.Printf(format, args...)
	}
}
