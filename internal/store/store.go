// Package store persists scan results so earlier reports can be looked up
// by id or by site.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/juparave/a11yfix/internal/config"
	"github.com/juparave/a11yfix/internal/domain"
	"github.com/juparave/a11yfix/internal/util"
)

// MaxHTMLExcerpt bounds the page markup kept with a record
const MaxHTMLExcerpt = 10000

// ErrNotFound is returned by Get for unknown ids
var ErrNotFound = errors.New("report not found")

// Record is the persisted form of one scan
type Record struct {
	ID                string                  `json:"id"`
	URL               string                  `json:"url"`
	Domain            string                  `json:"domain"`
	Score             float64                 `json:"score"`
	WCAGLevel         domain.Compliance       `json:"wcag_level"`
	TotalIssues       int                     `json:"total_issues"`
	Issues            json.RawMessage         `json:"issues"`
	SeverityBreakdown map[domain.Severity]int `json:"severity_breakdown"`
	ScanDuration      float64                 `json:"scan_duration"` // seconds
	HTMLExcerpt       string                  `json:"html_excerpt,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
}

// Store saves and loads records
type Store interface {
	Save(ctx context.Context, rec Record) (string, error)
	Get(ctx context.Context, id string) (*Record, error)
	// History returns the newest records for a domain, newest first
	History(ctx context.Context, domain string, limit int) ([]Record, error)
	Close() error
}

// NewRecord builds the record for a report and the markup it scanned
func NewRecord(r *domain.Report, markup string) (Record, error) {
	issues, err := json.Marshal(r.Issues)
	if err != nil {
		return Record{}, fmt.Errorf("encoding issues: %w", err)
	}
	if len(markup) > MaxHTMLExcerpt {
		markup = markup[:MaxHTMLExcerpt]
	}
	created := r.Date
	if created.IsZero() {
		created = time.Now()
	}
	return Record{
		ID:                r.ID,
		URL:               r.URL,
		Domain:            util.Host(r.URL),
		Score:             r.Score,
		WCAGLevel:         r.Compliance,
		TotalIssues:       r.TotalIssues(),
		Issues:            issues,
		SeverityBreakdown: r.SeverityBreakdown(),
		ScanDuration:      r.Duration.Seconds(),
		HTMLExcerpt:       markup,
		CreatedAt:         created,
	}, nil
}

// Open returns the store selected by cfg.Backend
func Open(cfg config.ReportsConfig) (Store, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileStore(cfg.OutputDir)
	case "redis":
		return NewRedisStore(cfg.RedisURL, cfg.KeyPrefix, time.Duration(cfg.TTLSeconds)*time.Second)
	case "none":
		return Discard{}, nil
	}
	return nil, fmt.Errorf("unknown report backend %q", cfg.Backend)
}

// Discard drops every record
type Discard struct{}

func (Discard) Save(_ context.Context, rec Record) (string, error) { return rec.ID, nil }
func (Discard) Get(_ context.Context, id string) (*Record, error) {
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}
func (Discard) History(context.Context, string, int) ([]Record, error) { return nil, nil }
func (Discard) Close() error                                           { return nil }
