package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/juparave/a11yfix/internal/detect"
	"github.com/juparave/a11yfix/internal/scanner"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the WCAG rules and detectors",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		heading.Println("WCAG 2.1 success criteria checked")
		for _, r := range scanner.Rules() {
			fmt.Printf("  %-6s %-4s %s\n", r.Rule, r.Level, r.Description)
		}
		fmt.Println()
		heading.Println("Detectors")
		fmt.Printf("  %s\n", strings.Join(detect.Names(), ", "))
	},
}
