package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/juparave/a11yfix/internal/app"
	"github.com/juparave/a11yfix/internal/domain"
)

// maxListed bounds how many issues the scan summary prints per page
const maxListed = 10

var scanCmd = &cobra.Command{
	Use:   "scan <url|file|directory>",
	Short: "Scan pages for accessibility issues",
	Long:  "Run every detector against a page, a local HTML file or all pages under a directory, then write a ranked report.",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	runner := app.NewRunner(cfg)
	defer runner.Close()

	results, err := runner.ScanAll(cmd.Context(), app.Target{Location: args[0], CSSPath: cssPath, JSPath: jsPath})
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No pages found")
		return nil
	}
	for _, res := range results {
		printScan(res)
	}
	return nil
}

func printScan(res *app.ScanResult) {
	rpt := res.Report
	fmt.Println()
	heading.Println(rpt.URL)
	fmt.Printf("  Score: %s   WCAG level: %s   Issues: %d (%s high, %s medium, %s low)\n",
		scoreColor(rpt.Score).Sprintf("%.0f/100", rpt.Score),
		heading.Sprint(rpt.Compliance),
		rpt.TotalIssues(),
		failure.Sprint(rpt.HighCount()),
		warning.Sprint(rpt.MediumCount()),
		muted.Sprint(rpt.LowCount()),
	)

	for i, issue := range rpt.Issues {
		if i == maxListed {
			muted.Printf("  ... %d more in the report\n", len(rpt.Issues)-maxListed)
			break
		}
		printIssue(issue)
	}

	if len(rpt.Patches) > 0 {
		fmt.Printf("  %d issues have an automatic fix; run `a11y fix %s` to review them\n", len(rpt.Patches), rpt.URL)
	}
	if res.ReportPath != "" {
		muted.Printf("  Report: %s\n", res.ReportPath)
	}
	if res.RecordID != "" {
		muted.Printf("  Record: %s\n", res.RecordID)
	}
	if res.Emailed {
		muted.Println("  Report emailed")
	}
}

func printIssue(issue domain.FusedIssue) {
	sev := severityColor(issue.Severity)
	fmt.Printf("  %2d. %s %s", issue.PriorityRank, sev.Sprintf("[%s]", issue.Severity), issue.Message)
	if issue.Selector != "" {
		muted.Printf(" (%s)", issue.Selector)
	}
	fmt.Println()
	muted.Printf("      %s  WCAG %s %s  confidence %.0f%%\n", issue.ID, issue.WCAGRule, issue.WCAGLevel, issue.Confidence*100)
}
