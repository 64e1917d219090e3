package main

import (
	"github.com/fatih/color"

	"github.com/juparave/a11yfix/internal/domain"
)

var (
	heading = color.New(color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warning = color.New(color.FgYellow, color.Bold)
	failure = color.New(color.FgRed, color.Bold)
	muted   = color.New(color.Faint)
	added   = color.New(color.FgGreen)
	removed = color.New(color.FgRed)
	hunk    = color.New(color.FgCyan)
)

func severityColor(s domain.Severity) *color.Color {
	switch s {
	case domain.SeverityHigh:
		return failure
	case domain.SeverityMedium:
		return warning
	default:
		return muted
	}
}

func scoreColor(score float64) *color.Color {
	switch {
	case score >= 90:
		return success
	case score >= 70:
		return warning
	default:
		return failure
	}
}

func passFail(ok bool) string {
	if ok {
		return success.Sprint("pass")
	}
	return failure.Sprint("fail")
}
