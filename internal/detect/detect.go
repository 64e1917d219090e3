// Package detect holds the rule detectors that inspect a parsed page and
// report raw accessibility findings. Detectors only read the document.
package detect

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/juparave/a11yfix/internal/domain"
	"github.com/juparave/a11yfix/internal/selector"
)

// elementExcerpt is how much serialized markup a finding keeps
const elementExcerpt = 200

// Document is one page prepared for scanning. It must not be mutated while
// detectors run.
type Document struct {
	Root *html.Node
	CSS  string
	JS   string
}

// NewDocument parses markup and pairs it with the page's CSS and script text
func NewDocument(markup, css, js string) (*Document, error) {
	root, err := selector.Parse(markup)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	return &Document{Root: root, CSS: css, JS: js}, nil
}

// Detector reports one family of accessibility defects
type Detector interface {
	Name() string
	Detect(doc *Document) []domain.RawFinding
}

type detectorFunc struct {
	name string
	fn   func(doc *Document, e *emitter)
}

func (d detectorFunc) Name() string { return d.name }

func (d detectorFunc) Detect(doc *Document) []domain.RawFinding {
	e := &emitter{detector: d.name}
	d.fn(doc, e)
	return e.findings
}

// New wraps a function as a Detector
func New(name string, fn func(doc *Document) []domain.RawFinding) Detector {
	return detectorFunc{name: name, fn: func(doc *Document, e *emitter) {
		for _, f := range fn(doc) {
			e.add(f)
		}
	}}
}

// Detector names, in registration order
const (
	AltText     = "alt_text"
	Contrast    = "contrast"
	ARIA        = "aria"
	Keyboard    = "keyboard"
	Semantic    = "semantic"
	Forms       = "forms"
	Headings    = "headings"
	Readability = "readability"
	Focus       = "focus"
	Language    = "language"
)

// All returns the built-in detectors in their fixed registration order.
// Fusion relies on this order to break ranking ties deterministically.
func All() []Detector {
	return []Detector{
		detectorFunc{AltText, detectAltText},
		detectorFunc{Contrast, detectContrast},
		detectorFunc{ARIA, detectARIA},
		detectorFunc{Keyboard, detectKeyboard},
		detectorFunc{Semantic, detectSemantic},
		detectorFunc{Forms, detectForms},
		detectorFunc{Headings, detectHeadings},
		detectorFunc{Readability, detectReadability},
		detectorFunc{Focus, detectFocus},
		detectorFunc{Language, detectLanguage},
	}
}

// Names lists the built-in detector names in registration order
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, d := range all {
		names[i] = d.Name()
	}
	return names
}

// Select filters the built-in detectors. An empty enabled list means all of
// them; disabled names are removed afterwards. Unknown names are an error.
func Select(enabled, disabled []string) ([]Detector, error) {
	known := make(map[string]bool)
	for _, n := range Names() {
		known[n] = true
	}
	for _, n := range append(append([]string{}, enabled...), disabled...) {
		if !known[strings.TrimSpace(n)] {
			return nil, fmt.Errorf("unknown detector %q (available: %s)", n, strings.Join(Names(), ", "))
		}
	}

	on := make(map[string]bool)
	for _, n := range enabled {
		on[strings.TrimSpace(n)] = true
	}
	off := make(map[string]bool)
	for _, n := range disabled {
		off[strings.TrimSpace(n)] = true
	}

	var out []Detector
	for _, d := range All() {
		if len(on) > 0 && !on[d.Name()] {
			continue
		}
		if off[d.Name()] {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// emitter stamps findings with their detector, source and a deterministic id
type emitter struct {
	detector string
	findings []domain.RawFinding
}

// add panics on a malformed finding. The scanner recovers detector panics
// and reports them as a <detector>_error finding.
func (e *emitter) add(f domain.RawFinding) {
	f.Detector = e.detector
	if f.Source == "" {
		f.Source = domain.SourceRule
	}
	if f.ID == "" {
		f.ID = fmt.Sprintf("%s-%d", strings.ReplaceAll(e.detector, "_", "-"), len(e.findings))
	}
	if err := f.Validate(); err != nil {
		panic(fmt.Sprintf("detector %s: %v", e.detector, err))
	}
	e.findings = append(e.findings, f)
}

// at fills the locator and markup excerpt of a finding for element n
func at(n *html.Node, f domain.RawFinding) domain.RawFinding {
	f.Selector = selector.Locator(n)
	f.Element = selector.Truncate(n, elementExcerpt)
	return f
}
