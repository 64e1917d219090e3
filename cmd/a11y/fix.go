package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/juparave/a11yfix/internal/app"
	"github.com/juparave/a11yfix/internal/diff"
	"github.com/juparave/a11yfix/internal/domain"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] <url|file>",
	Short: "Generate patches for accessibility issues",
	Long:  "Scan a page and build before/after patches for the selected issues, or for every fixable issue when none are selected.",
	Args:  cobra.ExactArgs(1),
	RunE:  runFix,
}

func init() {
	fixCmd.Flags().StringSlice("issue", nil, "issue id to fix (repeatable)")
	fixCmd.Flags().Bool("script", false, "print the live preview script for each patch")
}

func runFix(cmd *cobra.Command, args []string) error {
	ids, err := cmd.Flags().GetStringSlice("issue")
	if err != nil {
		return err
	}
	showScript, err := cmd.Flags().GetBool("script")
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	runner := app.NewRunner(cfg)
	defer runner.Close()

	out, err := runner.Fix(cmd.Context(), app.Target{Location: args[0], CSSPath: cssPath, JSPath: jsPath}, ids)
	if err != nil {
		return err
	}

	fixed := 0
	for _, res := range out.Results {
		if res.Success {
			fixed++
		}
		printFixResult(res, showScript)
	}

	fmt.Println()
	fmt.Printf("%s of %d issues fixed, overall confidence %.0f%%\n",
		success.Sprint(fixed), len(out.Results), out.OverallConfidence*100)
	if out.PatchDir != "" {
		muted.Printf("Patches written to %s\n", out.PatchDir)
	}
	return nil
}

func printFixResult(res domain.FixResult, showScript bool) {
	fmt.Println()
	if !res.Success {
		fmt.Printf("%s %s: %s\n", warning.Sprint("skip"), res.IssueID, res.Error)
		return
	}
	p := res.Patch
	status := success.Sprint("auto-apply")
	if p.RequiresApproval {
		status = warning.Sprint("needs approval")
	}
	heading.Printf("%s ", res.IssueID)
	fmt.Printf("%s patch, %s, confidence %.0f%%\n", p.PatchType, status, p.FixConfidence*100)
	fmt.Println(p.Explanation)

	for _, art := range []domain.Artifact{domain.ArtifactHTML, domain.ArtifactCSS} {
		if d := p.Diff[art]; d != "" {
			plus, minus := diff.Stat(d)
			muted.Printf("%s: %s %s\n", art, added.Sprintf("+%d", plus), removed.Sprintf("-%d", minus))
			printDiff(diff.Truncate(d))
		}
	}
	if showScript && p.PreviewScript != "" {
		muted.Println(strings.TrimRight(p.PreviewScript, "\n"))
	}
}

func printDiff(unified string) {
	s := bufio.NewScanner(strings.NewReader(unified))
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	inHunk := false
	for s.Scan() {
		line := s.Text()
		switch {
		case strings.HasPrefix(line, "@@"):
			inHunk = true
			hunk.Println(line)
		case !inHunk:
			heading.Println(line)
		case strings.HasPrefix(line, "+"):
			added.Println(line)
		case strings.HasPrefix(line, "-"):
			removed.Println(line)
		default:
			fmt.Println(line)
		}
	}
}
