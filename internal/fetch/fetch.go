// Package fetch loads the static text of a page: its markup plus the CSS
// and script it references, from a URL or from local files.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/juparave/a11yfix/internal/config"
	"github.com/juparave/a11yfix/internal/domain"
	"github.com/juparave/a11yfix/internal/selector"
)

// maxBody bounds how much of any one response is read
const maxBody = 10 << 20

var (
	stylesheetLinks = cascadia.MustCompile(`link[rel~="stylesheet" i][href]`)
	styleBlocks     = cascadia.MustCompile(`style`)
	scriptBlocks    = cascadia.MustCompile(`script`)
)

// Fetcher downloads pages and their stylesheets and scripts
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	logger     *log.Logger
}

// New creates a Fetcher from scan settings
func New(cfg config.ScanConfig, logger *log.Logger) *Fetcher {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "a11yfix/1.0"
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  ua,
		logger:     logger,
	}
}

// Fetch downloads the page at rawURL. Stylesheets and scripts that fail to
// load are skipped with a warning.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*domain.Page, error) {
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url: %w", err)
	}
	body, err := f.get(ctx, base.String())
	if err != nil {
		return nil, err
	}

	root, err := selector.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	var css, js []string
	for _, link := range stylesheetLinks.MatchAll(root) {
		ref, err := base.Parse(selector.Attr(link, "href"))
		if err != nil {
			f.warn("Warning: bad stylesheet href %q: %v", selector.Attr(link, "href"), err)
			continue
		}
		text, err := f.get(ctx, ref.String())
		if err != nil {
			f.warn("Warning: skipping stylesheet %s: %v", ref, err)
			continue
		}
		css = append(css, text)
	}
	css = append(css, inline(root, styleBlocks)...)

	for _, script := range scriptBlocks.MatchAll(root) {
		src := selector.Attr(script, "src")
		if src == "" {
			if text := strings.TrimSpace(rawChildText(script)); text != "" {
				js = append(js, text)
			}
			continue
		}
		ref, err := base.Parse(src)
		if err != nil {
			f.warn("Warning: bad script src %q: %v", src, err)
			continue
		}
		text, err := f.get(ctx, ref.String())
		if err != nil {
			f.warn("Warning: skipping script %s: %v", ref, err)
			continue
		}
		js = append(js, text)
	}

	return &domain.Page{
		URL:      base.String(),
		HTML:     body,
		CSS:      strings.Join(css, "\n"),
		JS:       strings.Join(js, "\n"),
		Metadata: ExtractMetadata(root, base.String()),
	}, nil
}

func (f *Fetcher) get(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: status %d", target, resp.StatusCode)
	}

	r, err := charset.NewReader(io.LimitReader(resp.Body, maxBody), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", target, err)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", target, err)
	}
	return string(b), nil
}

// LoadFile builds a page from a local HTML file and optional stylesheet and
// script files. Inline <style> and <script> text is included as well.
func LoadFile(path, cssPath, jsPath string) (*domain.Page, error) {
	markup, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	root, err := selector.Parse(string(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var css, js []string
	if cssPath != "" {
		b, err := os.ReadFile(cssPath)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", cssPath, err)
		}
		css = append(css, string(b))
	}
	css = append(css, inline(root, styleBlocks)...)

	if jsPath != "" {
		b, err := os.ReadFile(jsPath)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", jsPath, err)
		}
		js = append(js, string(b))
	}
	for _, script := range scriptBlocks.MatchAll(root) {
		if selector.Attr(script, "src") != "" {
			continue
		}
		if text := strings.TrimSpace(rawChildText(script)); text != "" {
			js = append(js, text)
		}
	}

	return &domain.Page{
		URL:      path,
		HTML:     string(markup),
		CSS:      strings.Join(css, "\n"),
		JS:       strings.Join(js, "\n"),
		Metadata: ExtractMetadata(root, path),
	}, nil
}

func inline(root *html.Node, sel cascadia.Selector) []string {
	var out []string
	for _, n := range sel.MatchAll(root) {
		if text := strings.TrimSpace(rawChildText(n)); text != "" {
			out = append(out, text)
		}
	}
	return out
}

// rawChildText returns the unparsed text content of a raw-text element
func rawChildText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func (f *Fetcher) warn(format string, args ...any) {
	if f.logger != nil {
		f.logger.Printf(format, args...)
	}
}
