package scanner

import (
	"os"
	"path/filepath"
	"strings"
)

// ExcludedDirs are directories to skip during page discovery
var ExcludedDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
}

// PageExtensions are the file extensions treated as pages
var PageExtensions = map[string]bool{
	".html": true,
	".htm":  true,
}

// FindPages recursively finds all HTML pages under rootPath
func (s *Scanner) FindPages(rootPath string) ([]string, error) {
	var pages []string

	err := filepath.WalkDir(rootPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip directories we can't access
		}

		name := d.Name()
		if path != rootPath && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if ExcludedDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if PageExtensions[strings.ToLower(filepath.Ext(name))] {
			pages = append(pages, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return pages, nil
}

// PageName returns the page path relative to rootPath, for display
func PageName(rootPath, pagePath string) string {
	if rel, err := filepath.Rel(rootPath, pagePath); err == nil {
		return rel
	}
	return filepath.Base(pagePath)
}
