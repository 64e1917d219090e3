// Package report renders scan reports as Markdown, HTML and JSON and
// writes them to the output directory.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/juparave/a11yfix/internal/diff"
	"github.com/juparave/a11yfix/internal/domain"
	"github.com/juparave/a11yfix/internal/util"
)

// Output formats
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatJSON     = "json"
)

// Formatter renders reports
type Formatter struct {
	outputDir string
	md        goldmark.Markdown
}

// NewFormatter creates a Formatter writing under outputDir
func NewFormatter(outputDir string) *Formatter {
	return &Formatter{
		outputDir: outputDir,
		md:        goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Write renders rpt in format and saves it, returning the file path
func (f *Formatter) Write(rpt *domain.Report, format string) (string, error) {
	var (
		content []byte
		ext     string
		err     error
	)
	switch format {
	case "", FormatMarkdown:
		content, ext = []byte(f.ToMarkdown(rpt)), "md"
	case FormatHTML:
		content, ext = []byte(f.ToHTML(rpt)), "html"
	case FormatJSON:
		content, err = f.ToJSON(rpt)
		ext = "json"
	default:
		return "", fmt.Errorf("unknown report format %q", format)
	}
	if err != nil {
		return "", err
	}

	dir := util.ExpandPath(f.outputDir)
	if err := util.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	name := fmt.Sprintf("a11y-%s-%s.%s", util.SafeName(rpt.URL), rpt.Date.Format("2006-01-02-150405"), ext)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// ToJSON returns the report as indented JSON
func (f *Formatter) ToJSON(rpt *domain.Report) ([]byte, error) {
	data, err := json.MarshalIndent(rpt, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	return data, nil
}

// ToMarkdown renders the report as Markdown
func (f *Formatter) ToMarkdown(rpt *domain.Report) string {
	var sb strings.Builder

	sb.WriteString("# Accessibility Report\n\n")
	fmt.Fprintf(&sb, "**Page:** %s  \n", rpt.URL)
	fmt.Fprintf(&sb, "**Date:** %s  \n", rpt.Date.Format("January 2, 2006 15:04"))
	fmt.Fprintf(&sb, "**Score:** %.0f/100  \n", rpt.Score)
	fmt.Fprintf(&sb, "**WCAG level:** %s  \n", rpt.Compliance)
	if rpt.Model != "" {
		fmt.Fprintf(&sb, "**Suggestions by:** %s  \n", rpt.Model)
	}
	if rpt.Duration > 0 {
		fmt.Fprintf(&sb, "**Scan time:** %s  \n", rpt.Duration.Round(time.Millisecond))
	}
	sb.WriteString("\n")

	if !rpt.HasIssues() {
		sb.WriteString("✅ No accessibility issues found.\n")
		return sb.String()
	}

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Severity | Count |\n|----------|-------|\n")
	fmt.Fprintf(&sb, "| 🔴 High | %d |\n", rpt.HighCount())
	fmt.Fprintf(&sb, "| 🟡 Medium | %d |\n", rpt.MediumCount())
	fmt.Fprintf(&sb, "| 🟢 Low | %d |\n", rpt.LowCount())
	fmt.Fprintf(&sb, "| **Total** | **%d** |\n\n", rpt.TotalIssues())

	sb.WriteString("## Issues\n\n")
	for _, issue := range rpt.Issues {
		writeIssue(&sb, issue)
	}

	if len(rpt.Patches) > 0 {
		sb.WriteString("## Suggested Fixes\n\n")
		for _, p := range rpt.Patches {
			writePatch(&sb, p)
		}
	}
	return sb.String()
}

func writeIssue(sb *strings.Builder, issue domain.FusedIssue) {
	fmt.Fprintf(sb, "### %d. %s %s\n\n", issue.PriorityRank, severityIcon(issue.Severity), issue.Message)
	fmt.Fprintf(sb, "- **Type:** `%s`\n", issue.Type)
	fmt.Fprintf(sb, "- **WCAG:** %s (Level %s)\n", issue.WCAGRule, issue.WCAGLevel)
	if issue.Selector != "" {
		fmt.Fprintf(sb, "- **Element:** %s\n", code(issue.Selector))
	}
	fmt.Fprintf(sb, "- **Confidence:** %.0f%%", issue.Confidence*100)
	if len(issue.DetectionSources) > 0 {
		sources := make([]string, len(issue.DetectionSources))
		for i, s := range issue.DetectionSources {
			sources[i] = string(s)
		}
		fmt.Fprintf(sb, " (%s)", strings.Join(sources, ", "))
	}
	sb.WriteString("\n\n")

	if issue.Description != "" {
		sb.WriteString(issue.Description + "\n\n")
	}
	if issue.Element != "" {
		fmt.Fprintf(sb, "```html\n%s\n```\n\n", issue.Element)
	}
	if issue.FixHint != "" {
		fmt.Fprintf(sb, "**Fix:** %s\n\n", issue.FixHint)
	}
	if issue.AISuggestion != "" {
		fmt.Fprintf(sb, "**Suggested text:** %s\n\n", issue.AISuggestion)
	}
	sb.WriteString("---\n\n")
}

func writePatch(sb *strings.Builder, p domain.Patch) {
	status := "auto-apply"
	if p.RequiresApproval {
		status = "needs approval"
	}
	if p.IsNoOp() {
		status = "no change"
	}
	fmt.Fprintf(sb, "### %s %s (%s)\n\n", code(p.IssueID), p.PatchType, status)
	sb.WriteString(p.Explanation + "\n\n")
	for _, art := range []domain.Artifact{domain.ArtifactHTML, domain.ArtifactCSS} {
		if d := p.Diff[art]; d != "" {
			fmt.Fprintf(sb, "```diff\n%s\n```\n\n", strings.TrimRight(diff.Truncate(d), "\n"))
		}
	}
}

func severityIcon(s domain.Severity) string {
	switch s {
	case domain.SeverityHigh:
		return "🔴"
	case domain.SeverityMedium:
		return "🟡"
	default:
		return "🟢"
	}
}

// code wraps s in a Markdown code span
func code(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "'") + "`"
}

// ToHTML renders the Markdown report as a standalone HTML page
func (f *Formatter) ToHTML(rpt *domain.Report) string {
	var body bytes.Buffer
	if err := f.md.Convert([]byte(f.ToMarkdown(rpt)), &body); err != nil {
		body.Reset()
		fmt.Fprintf(&body, "<pre>%s</pre>", err)
	}
	return fmt.Sprintf(htmlTemplate, body.String())
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Accessibility Report</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; max-width: 860px; margin: 0 auto; padding: 24px; color: #1a1a1a; line-height: 1.5; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 12px; text-align: left; }
pre { background: #f5f5f5; padding: 12px; overflow-x: auto; }
code { font-family: SFMono-Regular, Consolas, monospace; font-size: 0.9em; }
</style>
</head>
<body>
%s
</body>
</html>
`
