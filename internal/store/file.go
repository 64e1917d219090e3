package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/juparave/a11yfix/internal/util"
)

// FileStore keeps one JSON file per record in a directory
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore under dir/history
func NewFileStore(dir string) (*FileStore, error) {
	dir = filepath.Join(util.ExpandPath(dir), "history")
	if err := util.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes rec and returns its id, minting one when rec has none
func (s *FileStore) Save(_ context.Context, rec Record) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	} else if _, err := uuid.Parse(rec.ID); err != nil {
		return "", fmt.Errorf("invalid record id %q: %w", rec.ID, err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding record: %w", err)
	}
	if err := os.WriteFile(s.path(rec.ID), data, 0644); err != nil {
		return "", fmt.Errorf("writing record: %w", err)
	}
	return rec.ID, nil
}

// Get loads the record with the given id
func (s *FileStore) Get(_ context.Context, id string) (*Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding record %s: %w", id, err)
	}
	return &rec, nil
}

// History scans every record in the directory
func (s *FileStore) History(ctx context.Context, domain string, limit int) ([]Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	var out []Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		rec, err := s.Get(ctx, strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			continue
		}
		if rec.Domain == domain {
			out = append(out, *rec)
		}
	}
	slices.SortStableFunc(out, func(a, b Record) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close implements Store
func (s *FileStore) Close() error { return nil }
