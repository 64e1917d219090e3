// Package notify mails scan reports to the configured recipient.
package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"mime"
	"net"
	"net/smtp"
	"time"

	"github.com/google/uuid"

	"github.com/juparave/a11yfix/internal/config"
	"github.com/juparave/a11yfix/internal/domain"
	"github.com/juparave/a11yfix/internal/report"
	"github.com/juparave/a11yfix/internal/util"
)

const maxAttempts = 3

// Service handles email notifications
type Service struct {
	config    config.EmailConfig
	logger    *log.Logger
	formatter *report.Formatter
}

// NewService creates a new notification Service
func NewService(cfg config.EmailConfig, logger *log.Logger) (*Service, error) {
	return &Service{
		config:    cfg,
		logger:    logger,
		formatter: report.NewFormatter(""),
	}, nil
}

// ShouldSend reports whether rpt scores low enough to be mailed
func (s *Service) ShouldSend(rpt *domain.Report) bool {
	return s.config.Enabled && rpt.Score < s.config.MinScore
}

// SendReport mails the report when ShouldSend allows it. It reports whether
// a message went out.
func (s *Service) SendReport(ctx context.Context, rpt *domain.Report) (bool, error) {
	if !s.ShouldSend(rpt) {
		return false, nil
	}
	htmlBody := s.formatter.ToHTML(rpt)
	if err := s.send(ctx, Subject(rpt), htmlBody); err != nil {
		return false, err
	}
	return true, nil
}

// Subject summarizes the report in one line
func Subject(rpt *domain.Report) string {
	site := util.Host(rpt.URL)
	if site == "local" {
		site = util.SafeName(rpt.URL)
	}
	date := rpt.Date.Format("Jan 2")

	if !rpt.HasIssues() {
		return fmt.Sprintf("[A11Y] %s - %s - ✅ No issues", site, date)
	}
	if high := rpt.HighCount(); high > 0 {
		return fmt.Sprintf("[A11Y] %s - %s - ⚠️ score %.0f, %d issues (%d high)", site, date, rpt.Score, rpt.TotalIssues(), high)
	}
	return fmt.Sprintf("[A11Y] %s - %s - score %.0f, %d issues", site, date, rpt.Score, rpt.TotalIssues())
}

func (s *Service) send(ctx context.Context, subject, htmlBody string) error {
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)
	message := s.buildMessage(subject, htmlBody)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := s.sendWithTimeout(addr, message, 30*time.Second)
		if err == nil {
			return nil
		}

		lastErr = err
		s.logger.Printf("Email attempt %d failed: %v", attempt, err)

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return fmt.Errorf("sending email: %w", ctx.Err())
			case <-time.After(time.Duration(attempt*attempt) * time.Second):
			}
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}

func (s *Service) buildMessage(subject, htmlBody string) []byte {
	var buf bytes.Buffer

	// Headers
	fmt.Fprintf(&buf, "From: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", s.config.FromName), s.config.FromAddress)
	fmt.Fprintf(&buf, "To: %s\r\n", s.config.ToAddress)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "Message-ID: <%s@%s>\r\n", uuid.NewString(), s.config.SMTPHost)
	buf.WriteString("\r\n")

	buf.WriteString(htmlBody)

	return buf.Bytes()
}

func (s *Service) sendWithTimeout(addr string, message []byte, timeout time.Duration) error {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return fmt.Errorf("connecting to SMTP server: %w", err)
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(timeout))

	client, err := smtp.NewClient(conn, s.config.SMTPHost)
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Quit()

	// Start TLS if port is 587
	if s.config.SMTPPort == 587 {
		tlsConfig := &tls.Config{ServerName: s.config.SMTPHost}
		if err = client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("starting TLS: %w", err)
		}
	}

	if s.config.SMTPUser != "" && s.config.SMTPPassword != "" {
		auth := smtp.PlainAuth("", s.config.SMTPUser, s.config.SMTPPassword, s.config.SMTPHost)
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("authenticating: %w", err)
		}
	}

	if err = client.Mail(s.config.FromAddress); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err = client.Rcpt(s.config.ToAddress); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("getting data writer: %w", err)
	}
	if _, err = writer.Write(message); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	return writer.Close()
}

// Validate checks that the email configuration is complete and the SMTP
// server is reachable
func (s *Service) Validate() error {
	if s.config.SMTPHost == "" {
		return fmt.Errorf("smtp_host is required")
	}
	if s.config.ToAddress == "" {
		return fmt.Errorf("to_address is required")
	}
	if s.config.FromAddress == "" {
		return fmt.Errorf("from_address is required")
	}

	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("cannot reach SMTP server: %w", err)
	}
	conn.Close()

	return nil
}
