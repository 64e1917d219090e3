package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/juparave/a11yfix/internal/config"
)

var (
	version = "0.1.0"
	cfgFile string
	dryRun  bool
	verbose bool
	noAI    bool
	output  string
	format  string
	cssPath string
	jsPath  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "a11y",
		Short:         "Accessibility scanner and fixer",
		Long:          `a11y checks web pages against WCAG 2.1, ranks what it finds and proposes code patches for the issues it can fix.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "Path to config file (default: ~/.config/a11y/config.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	pf.BoolVar(&dryRun, "dry-run", false, "Analyze without writing reports, storing results or sending email")
	pf.BoolVar(&noAI, "no-ai", false, "Disable AI suggestions")
	pf.StringVarP(&output, "output", "o", "", "Report output directory")
	pf.StringVarP(&format, "format", "f", "", "Report format: markdown, html or json")
	pf.StringVar(&cssPath, "css", "", "Extra stylesheet to include with a local page")
	pf.StringVar(&jsPath, "js", "", "Extra script to include with a local page")

	rootCmd.AddCommand(scanCmd, fixCmd, rulesCmd, contrastCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, failure.Sprint("Error:"), err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies CLI overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if output != "" {
		cfg.Reports.OutputDir = output
	}
	if format != "" {
		cfg.Reports.Format = format
	}
	if noAI {
		cfg.AI.Enabled = false
	}
	if dryRun {
		cfg.Email.Enabled = false
	}
	cfg.DryRun = dryRun
	cfg.Verbose = verbose
	return cfg, nil
}
