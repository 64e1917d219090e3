package notify

import (
	"log"
	"strings"
	"testing"
	"time"

	"github.com/juparave/a11yfix/internal/config"
	"github.com/juparave/a11yfix/internal/domain"
)

func TestShouldSend(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		score   float64
		want    bool
	}{
		{"disabled", false, 10, false},
		{"below threshold", true, 89.5, true},
		{"at threshold", true, 90, false},
		{"above threshold", true, 97, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := NewService(config.EmailConfig{Enabled: tt.enabled, MinScore: 90}, log.Default())
			if got := s.ShouldSend(&domain.Report{Score: tt.score}); got != tt.want {
				t.Fatalf("ShouldSend = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubject(t *testing.T) {
	date := time.Date(2026, 5, 6, 0, 0, 0, 0, time.UTC)
	clean := &domain.Report{URL: "https://example.com/", Date: date, Score: 100}
	if got := Subject(clean); got != "[A11Y] example.com - May 6 - ✅ No issues" {
		t.Fatalf("subject = %q", got)
	}

	bad := &domain.Report{URL: "https://example.com/", Date: date, Score: 61, Issues: []domain.FusedIssue{
		{Severity: domain.SeverityHigh}, {Severity: domain.SeverityLow},
	}}
	if got := Subject(bad); !strings.Contains(got, "score 61, 2 issues (1 high)") {
		t.Fatalf("subject = %q", got)
	}
}

func TestBuildMessage(t *testing.T) {
	s, _ := NewService(config.EmailConfig{
		SMTPHost: "smtp.example.com", FromName: "Scanner", FromAddress: "a11y@example.com", ToAddress: "team@example.com",
	}, log.Default())
	msg := string(s.buildMessage("[A11Y] ✅ ok", "<p>hi</p>"))
	for _, want := range []string{
		"From: Scanner <a11y@example.com>\r\n",
		"To: team@example.com\r\n",
		"Subject: =?utf-8?q?",
		"Content-Type: text/html; charset=UTF-8\r\n",
		"@smtp.example.com>\r\n",
		"\r\n\r\n<p>hi</p>",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q\n%s", want, msg)
		}
	}
}

func TestValidate(t *testing.T) {
	s, _ := NewService(config.EmailConfig{}, log.Default())
	if err := s.Validate(); err == nil || !strings.Contains(err.Error(), "smtp_host") {
		t.Fatalf("err = %v", err)
	}
}
