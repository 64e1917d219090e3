package util

import (
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsURL reports whether target is an http(s) URL rather than a local path
func IsURL(target string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Host returns the host of an http(s) target, or "local" for file paths
func Host(target string) string {
	if !IsURL(target) {
		return "local"
	}
	u, _ := url.Parse(target)
	return u.Hostname()
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeName turns a URL or path into a string usable as a file name
func SafeName(target string) string {
	target = strings.TrimPrefix(strings.TrimPrefix(target, "https://"), "http://")
	name := strings.Trim(unsafeChars.ReplaceAllString(target, "_"), "_.")
	if name == "" {
		return "page"
	}
	if len(name) > 80 {
		name = name[:80]
	}
	return name
}
