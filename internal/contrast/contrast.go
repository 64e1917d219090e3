// Package contrast implements WCAG colour contrast math.
package contrast

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/aymerick/douceur/parser"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
	"golang.org/x/net/html"

	"github.com/juparave/a11yfix/internal/selector"
)

// WCAG thresholds
const (
	MinRatio        = 1.0
	MaxRatio        = 21.0
	NormalTextAA    = 4.5
	LargeTextAA     = 3.0
	NormalTextAAA   = 7.0
	LargeTextAAA    = 4.5
	linearThreshold = 0.03928
)

// RGB is an 8-bit sRGB colour
type RGB struct {
	R, G, B uint8
}

// Hex formats c as #rrggbb
func (c RGB) Hex() string {
	return c.colorful().Hex()
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

var (
	rgbPattern      = regexp.MustCompile(`^rgba?\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)`)
	rgbFindPattern  = regexp.MustCompile(`(?i)rgba?\([^)]*\)`)
	fontSizePattern = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)(px|pt|em|rem)$`)
)

// ParseColor accepts CSS colour keywords, 3/6-digit hex and rgb()/rgba()
func ParseColor(s string) (RGB, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RGB{}, false
	}
	if c, ok := colornames.Map[s]; ok {
		return RGB{R: c.R, G: c.G, B: c.B}, true
	}
	if strings.HasPrefix(s, "#") {
		if len(s) != 4 && len(s) != 7 {
			return RGB{}, false
		}
		c, err := colorful.Hex(s)
		if err != nil {
			return RGB{}, false
		}
		r, g, b := c.RGB255()
		return RGB{R: r, G: g, B: b}, true
	}
	m := rgbPattern.FindStringSubmatch(s)
	if m == nil {
		return RGB{}, false
	}
	var ch [3]uint8
	for i := range ch {
		v, err := strconv.Atoi(m[i+1])
		if err != nil {
			return RGB{}, false
		}
		c, err := safecast.Convert[uint8](v)
		if err != nil {
			return RGB{}, false
		}
		ch[i] = c
	}
	return RGB{R: ch[0], G: ch[1], B: ch[2]}, true
}

// Luminance is the WCAG relative luminance of c
func Luminance(c RGB) float64 {
	return 0.2126*linearize(c.R) + 0.7152*linearize(c.G) + 0.0722*linearize(c.B)
}

func linearize(channel uint8) float64 {
	v := float64(channel) / 255.0
	if v <= linearThreshold {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// Ratio returns the contrast ratio of two colours rounded to two decimals.
// Unparsable input yields MinRatio so the pair is reported, not passed.
func Ratio(a, b string) float64 {
	ca, okA := ParseColor(a)
	cb, okB := ParseColor(b)
	if !okA || !okB {
		return MinRatio
	}
	return RatioRGB(ca, cb)
}

// RatioRGB returns the contrast ratio of two parsed colours
func RatioRGB(a, b RGB) float64 {
	la, lb := Luminance(a), Luminance(b)
	lighter, darker := math.Max(la, lb), math.Min(la, lb)
	ratio := (lighter + 0.05) / (darker + 0.05)
	return math.Round(ratio*100) / 100
}

// Required returns the AA minimum ratio for normal or large text
func Required(large bool) float64 {
	if large {
		return LargeTextAA
	}
	return NormalTextAA
}

// IsLargeText reports whether n qualifies as WCAG large text.
// An explicit font-size decides on its own: >= 18pt, or >= 14pt when bold.
// px converts at 0.75pt and em/rem at 12pt, which assumes a 16px root.
// Without a font-size only h1-h3 count as large.
func IsLargeText(n *html.Node) bool {
	if n == nil {
		return false
	}
	decls := Declarations(selector.Attr(n, "style"))
	if size, ok := decls["font-size"]; ok {
		if m := fontSizePattern.FindStringSubmatch(strings.TrimSpace(size)); m != nil {
			value, _ := strconv.ParseFloat(m[1], 64)
			pt := value
			switch strings.ToLower(m[2]) {
			case "px":
				pt = value * 0.75
			case "em", "rem":
				pt = value * 12
			}
			return pt >= 18 || (pt >= 14 && isBold(n, decls))
		}
	}
	switch n.Data {
	case "h1", "h2", "h3":
		return true
	}
	return false
}

func isBold(n *html.Node, decls map[string]string) bool {
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6", "b", "strong":
		return true
	}
	weight := strings.ToLower(strings.TrimSpace(decls["font-weight"]))
	if strings.Contains(weight, "bold") {
		return true
	}
	if w, err := strconv.Atoi(weight); err == nil {
		return w >= 700
	}
	return false
}

// SuggestAccessibleColor picks a gray that meets minRatio against bg.
// Light backgrounds search 0,10,...,90 and fall back to black; dark
// backgrounds search 255,245,...,155 and fall back to white. fg is
// returned unchanged when either colour cannot be parsed.
func SuggestAccessibleColor(fg, bg string, minRatio float64) string {
	_, okFg := ParseColor(fg)
	bgRGB, okBg := ParseColor(bg)
	if !okFg || !okBg {
		return fg
	}
	if Luminance(bgRGB) > 0.5 {
		for g := 0; g < 100; g += 10 {
			candidate := gray(g)
			if RatioRGB(candidate, bgRGB) >= minRatio {
				return candidate.Hex()
			}
		}
		return "#000000"
	}
	for g := 255; g > 150; g -= 10 {
		candidate := gray(g)
		if RatioRGB(candidate, bgRGB) >= minRatio {
			return candidate.Hex()
		}
	}
	return "#ffffff"
}

func gray(v int) RGB {
	c := uint8(v)
	return RGB{R: c, G: c, B: c}
}

// Declarations parses an inline style attribute into lower-cased property
// names mapped to values. Later declarations win.
func Declarations(style string) map[string]string {
	out := make(map[string]string)
	if strings.TrimSpace(style) == "" {
		return out
	}
	// The parser drops the value of a final declaration with no ';'.
	if !strings.HasSuffix(strings.TrimSpace(style), ";") {
		style = strings.TrimSpace(style) + ";"
	}
	decls, err := parser.ParseDeclarations(style)
	if err != nil {
		// Malformed styles fall back to a plain split so one bad
		// declaration does not hide the others.
		for _, part := range strings.Split(style, ";") {
			prop, val, ok := strings.Cut(part, ":")
			if !ok || strings.TrimSpace(val) == "" {
				continue
			}
			out[strings.ToLower(strings.TrimSpace(prop))] = strings.TrimSpace(val)
		}
		return out
	}
	for _, d := range decls {
		if v := strings.TrimSpace(d.Value); v != "" {
			out[strings.ToLower(strings.TrimSpace(d.Property))] = v
		}
	}
	return out
}

// InlineColors extracts the text and background colours declared in an
// inline style. Either may be empty. A background shorthand is reduced to
// its colour token when one can be found.
func InlineColors(style string) (text, background string) {
	decls := Declarations(style)
	text = decls["color"]
	if bg, ok := decls["background-color"]; ok {
		background = bg
	} else if bg, ok := decls["background"]; ok {
		background = colorToken(bg)
	}
	return text, background
}

func colorToken(value string) string {
	if _, ok := ParseColor(value); ok {
		return value
	}
	if m := rgbFindPattern.FindString(value); m != "" {
		return m
	}
	for _, field := range strings.Fields(value) {
		if _, ok := ParseColor(field); ok {
			return field
		}
	}
	return value
}
