package patch

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/juparave/a11yfix/internal/domain"
)

// jsString quotes s as a JavaScript string literal
func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}

// previewScript returns a self-contained script that applies the change to
// a live page. The whole body runs inside try/catch, and element fixes do
// nothing when the locator no longer matches.
func previewScript(issue domain.FusedIssue, ch change) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// Preview fix for %s (%s)\n", issue.ID, issue.Type)
	b.WriteString("(function () {\n")
	b.WriteString("  try {\n")

	if ch.style != "" {
		b.WriteString("    const style = document.createElement('style');\n")
		fmt.Fprintf(&b, "    style.setAttribute('data-a11y-fix', %s);\n", jsString(issue.ID))
		fmt.Fprintf(&b, "    style.textContent = %s;\n", jsString(ch.style))
		b.WriteString("    document.head.appendChild(style);\n")
	} else {
		query := issue.Selector
		if issue.Type == domain.IssueMissingLang {
			query = "html"
		}
		fmt.Fprintf(&b, "    const element = %s;\n", lookupExpr(query))
		b.WriteString("    if (!element) return;\n")
		for _, stmt := range ch.script {
			b.WriteString("    ")
			b.WriteString(stmt)
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "  } catch (e) {\n    console.warn('a11y preview for ' + %s + ' failed', e);\n  }\n", jsString(issue.ID))
	b.WriteString("})();\n")
	return b.String()
}

// lookupExpr finds the element the way selector.Resolve does: ids and
// classes literally first, so "#user.email" is not read as id plus class.
func lookupExpr(locator string) string {
	q := jsString(locator)
	switch {
	case strings.HasPrefix(locator, "#") && len(locator) > 1:
		return fmt.Sprintf("document.getElementById(%s) || document.querySelector(%s)", jsString(locator[1:]), q)
	case strings.HasPrefix(locator, ".") && len(locator) > 1 && !strings.ContainsAny(locator, " \t"):
		return fmt.Sprintf("document.getElementsByClassName(%s)[0] || document.querySelector(%s)", jsString(locator[1:]), q)
	default:
		return fmt.Sprintf("document.querySelector(%s)", q)
	}
}
