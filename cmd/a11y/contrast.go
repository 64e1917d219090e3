package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/juparave/a11yfix/internal/contrast"
)

var contrastCmd = &cobra.Command{
	Use:   "contrast <foreground> <background>",
	Short: "Check the contrast ratio of two colors",
	Long:  "Compute the WCAG contrast ratio of two CSS colors (names, hex or rgb()) and suggest a passing foreground when needed.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fg, bg := args[0], args[1]
		for _, c := range args {
			if _, ok := contrast.ParseColor(c); !ok {
				return fmt.Errorf("cannot parse color %q", c)
			}
		}

		ratio := contrast.Ratio(fg, bg)
		fmt.Printf("Contrast ratio: %s\n", heading.Sprintf("%.2f:1", ratio))
		fmt.Printf("  AA normal text  (%.1f:1)  %s\n", contrast.NormalTextAA, passFail(ratio >= contrast.NormalTextAA))
		fmt.Printf("  AA large text   (%.1f:1)  %s\n", contrast.LargeTextAA, passFail(ratio >= contrast.LargeTextAA))
		fmt.Printf("  AAA normal text (%.1f:1)  %s\n", contrast.NormalTextAAA, passFail(ratio >= contrast.NormalTextAAA))
		fmt.Printf("  AAA large text  (%.1f:1)  %s\n", contrast.LargeTextAAA, passFail(ratio >= contrast.LargeTextAAA))

		if ratio < contrast.NormalTextAA {
			suggested := contrast.SuggestAccessibleColor(fg, bg, contrast.NormalTextAA)
			fmt.Printf("Suggested foreground: %s (%.2f:1)\n", success.Sprint(suggested), contrast.Ratio(suggested, bg))
		}
		return nil
	},
}
