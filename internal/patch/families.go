package patch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/juparave/a11yfix/internal/domain"
	"github.com/juparave/a11yfix/internal/selector"
)

const (
	defaultAltText   = "Descriptive image text"
	defaultAriaLabel = "Interactive element"
	defaultLabelText = "Field label"

	focusOutline = "2px solid #0066cc"
)

// Route returns the patch family for an issue type. Detector names and the
// shorter fix names map to the same family.
func Route(t domain.IssueType) (domain.PatchType, bool) {
	switch t {
	case domain.IssueMissingAltText, domain.IssueEmptyAltText,
		domain.IssueMissingLabel, domain.IssuePlaceholderInsteadLabel,
		domain.IssueImproperSemantics, domain.IssueSemanticHTML,
		domain.IssueMissingARIALabel, domain.IssueMissingLang,
		domain.IssueInvalidTabindex, domain.IssueRemovedFromTabOrder,
		domain.IssueHeadingHierarchy, domain.IssueMisusedARIARequired:
		return domain.PatchHTML, true
	case domain.IssueLowContrast, domain.IssueContrastRatio,
		domain.IssueMissingFocusIndicator, domain.IssueFocusIndicator,
		domain.IssueLayout:
		return domain.PatchCSS, true
	case domain.IssueMissingARIA, domain.IssueInvalidARIA,
		domain.IssueInvalidARIARole, domain.IssueRedundantARIARole:
		return domain.PatchARIA, true
	}
	return "", false
}

// htmlFix applies an element-level fix to a fresh parse of the page. The
// before/after texts are the located element serialized before and after
// the change.
func (g *Generator) htmlFix(issue domain.FusedIssue, original string) (change, error) {
	root, err := selector.Parse(original)
	if err != nil {
		return change{}, fmt.Errorf("parsing html: %w", err)
	}

	var el *html.Node
	if issue.Type == domain.IssueMissingLang {
		el = selector.First(root, "html")
	} else {
		el = selector.Resolve(root, issue.Selector)
	}
	if el == nil {
		return change{}, fmt.Errorf("%w: %q", ErrUnresolvedLocator, issue.Selector)
	}

	ch := change{artifact: domain.ArtifactHTML, before: selector.Render(el)}
	switch issue.Type {
	case domain.IssueMissingAltText, domain.IssueEmptyAltText:
		err = fixAlt(el, issue, &ch)
	case domain.IssueMissingLabel, domain.IssuePlaceholderInsteadLabel:
		err = fixLabel(root, el, issue, &ch)
	case domain.IssueImproperSemantics, domain.IssueSemanticHTML:
		err = fixSemantics(el, &ch)
	case domain.IssueMissingARIALabel:
		setAttr(el, "aria-label", orDefault(issue.AISuggestion, defaultAriaLabel), &ch)
		ch.explanation = fmt.Sprintf("Added aria-label=%q to provide an accessible name for screen reader users.", selector.Attr(el, "aria-label"))
	case domain.IssueMissingLang:
		err = fixLang(el, g.cfg.DefaultLang, &ch)
	case domain.IssueInvalidTabindex, domain.IssueRemovedFromTabOrder:
		err = removeAttr(el, "tabindex", &ch, "Removed tabindex to restore the natural tab order.")
	case domain.IssueMisusedARIARequired:
		err = removeAttr(el, "aria-required", &ch, "Removed aria-required from an element that is not a form control.")
	case domain.IssueHeadingHierarchy:
		err = fixHeading(root, el, issue, &ch)
	case domain.IssueInvalidARIARole, domain.IssueRedundantARIARole:
		err = removeAttr(el, "role", &ch, "Removed the role attribute; the element's native semantics apply.")
	case domain.IssueMissingARIA, domain.IssueInvalidARIA:
		fixAriaName(root, el, issue, &ch)
	default:
		return change{}, fmt.Errorf("%w: %s", ErrUnsupportedIssue, issue.Type)
	}
	if err != nil {
		return change{}, err
	}
	if ch.after == "" {
		ch.after = selector.Render(el)
	}
	return ch, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func setAttr(el *html.Node, key, val string, ch *change) {
	selector.SetAttr(el, key, val)
	ch.script = append(ch.script, fmt.Sprintf("element.setAttribute(%s, %s);", jsString(key), jsString(val)))
}

func removeAttr(el *html.Node, key string, ch *change, explanation string) error {
	if !selector.RemoveAttr(el, key) {
		return fmt.Errorf("%w: no %s attribute", ErrNothingToChange, key)
	}
	ch.script = append(ch.script, fmt.Sprintf("element.removeAttribute(%s);", jsString(key)))
	ch.explanation = explanation
	return nil
}

func fixAlt(el *html.Node, issue domain.FusedIssue, ch *change) error {
	if el.Data != "img" {
		return fmt.Errorf("%w: %s is not an image", ErrNothingToChange, issue.Selector)
	}
	alt := orDefault(issue.AISuggestion, defaultAltText)
	setAttr(el, "alt", alt, ch)
	ch.explanation = fmt.Sprintf("Added alt attribute with description %q. This provides a text alternative for screen reader users.", alt)
	return nil
}

var idUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// fixLabel inserts <label for> before a form field, giving the field an id
// when it has none
func fixLabel(root, el *html.Node, issue domain.FusedIssue, ch *change) error {
	switch el.Data {
	case "input", "select", "textarea":
	default:
		return fmt.Errorf("%w: %s is not a form field", ErrNothingToChange, issue.Selector)
	}
	if el.Parent == nil {
		return fmt.Errorf("%w: %s has no parent", ErrUnresolvedLocator, issue.Selector)
	}

	id := selector.Attr(el, "id")
	if id == "" {
		id = mintID(root, el.Data+"-"+orDefault(idUnsafe.ReplaceAllString(selector.Attr(el, "name"), "-"), issue.ID))
		setAttr(el, "id", id, ch)
	}

	text := LabelText(issue.AISuggestion, selector.Attr(el, "name"), selector.Attr(el, "placeholder"))
	label := &html.Node{
		Type:     html.ElementNode,
		Data:     "label",
		DataAtom: atom.Label,
		Attr:     []html.Attribute{{Key: "for", Val: id}},
	}
	label.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	el.Parent.InsertBefore(label, el)

	ch.after = selector.Render(label) + selector.Render(el)
	ch.script = append(ch.script,
		"const label = document.createElement('label');",
		fmt.Sprintf("label.htmlFor = %s;", jsString(id)),
		fmt.Sprintf("label.textContent = %s;", jsString(text)),
		"element.parentNode.insertBefore(label, element);",
	)
	ch.explanation = fmt.Sprintf("Added <label for=%q> with text %q so screen readers announce the field's purpose.", id, text)
	return nil
}

// LabelText picks label text: an AI suggestion, else the field name in
// title case, else its placeholder
func LabelText(suggestion, name, placeholder string) string {
	if s := strings.TrimSpace(suggestion); s != "" {
		return s
	}
	if name = strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(name)); name != "" {
		return cases.Title(language.English).String(name)
	}
	return orDefault(placeholder, defaultLabelText)
}

// mintID returns base, or base-N, whichever is unused in the document
func mintID(root *html.Node, base string) string {
	base = strings.Trim(base, "-")
	if base == "" {
		base = "field"
	}
	used := make(map[string]bool)
	for _, n := range selector.Elements(root) {
		if id := selector.Attr(n, "id"); id != "" {
			used[id] = true
		}
	}
	id := base
	for i := 2; used[id]; i++ {
		id = base + "-" + strconv.Itoa(i)
	}
	return id
}

// fixSemantics replaces a clickable div or span with a <button> carrying
// the same text and every attribute except its click handler
func fixSemantics(el *html.Node, ch *change) error {
	if el.Data == "button" {
		return fmt.Errorf("%w: already a button", ErrNothingToChange)
	}
	if el.Data != "div" && el.Data != "span" {
		return fmt.Errorf("%w: <%s> is not a generic container", ErrNothingToChange, el.Data)
	}
	if el.Parent == nil {
		return fmt.Errorf("%w: element has no parent", ErrUnresolvedLocator)
	}

	button := &html.Node{
		Type:     html.ElementNode,
		Data:     "button",
		DataAtom: atom.Button,
		Attr:     []html.Attribute{{Key: "type", Val: "button"}},
	}
	for _, a := range el.Attr {
		if a.Key == "onclick" || a.Key == "type" || (a.Key == "role" && a.Val == "button") {
			continue
		}
		button.Attr = append(button.Attr, a)
	}
	text := selector.Text(el)
	button.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	el.Parent.InsertBefore(button, el)
	el.Parent.RemoveChild(el)

	ch.after = selector.Render(button)
	ch.script = append(ch.script,
		"const button = document.createElement('button');",
		"button.type = 'button';",
		"for (const attr of Array.from(element.attributes)) {",
		"  if (attr.name !== 'onclick' && !(attr.name === 'role' && attr.value === 'button')) button.setAttribute(attr.name, attr.value);",
		"}",
		"button.textContent = element.textContent;",
		"element.replaceWith(button);",
	)
	ch.explanation = fmt.Sprintf("Replaced <%s> with a native <button>, which is focusable and keyboard operable.", el.Data)
	return nil
}

func fixLang(el *html.Node, lang string, ch *change) error {
	if strings.TrimSpace(selector.Attr(el, "lang")) != "" {
		return fmt.Errorf("%w: lang already set", ErrNothingToChange)
	}
	setAttr(el, "lang", lang, ch)
	ch.explanation = fmt.Sprintf("Added lang=%q to the <html> element. Update the language code if the page is in a different language.", lang)
	return nil
}

// fixHeading renames a heading to one level below the preceding heading
func fixHeading(root, el *html.Node, issue domain.FusedIssue, ch *change) error {
	level := headingLevel(el)
	if level == 0 {
		return fmt.Errorf("%w: <%s> is not a heading", ErrNothingToChange, el.Data)
	}
	previous := 0
	if issue.Heading != nil {
		previous = issue.Heading.From
	} else {
		for _, h := range selector.FindAll(root, "h1", "h2", "h3", "h4", "h5", "h6") {
			if h == el {
				break
			}
			previous = headingLevel(h)
		}
	}
	if previous == 0 || level <= previous+1 {
		return fmt.Errorf("%w: heading level is consistent", ErrNothingToChange)
	}

	name := fmt.Sprintf("h%d", previous+1)
	el.Data = name
	el.DataAtom = atom.Lookup([]byte(name))

	ch.script = append(ch.script,
		fmt.Sprintf("const heading = document.createElement(%s);", jsString(name)),
		"for (const attr of Array.from(element.attributes)) heading.setAttribute(attr.name, attr.value);",
		"heading.innerHTML = element.innerHTML;",
		"element.replaceWith(heading);",
	)
	ch.explanation = fmt.Sprintf("Changed heading from h%d to %s to keep the hierarchy without skipped levels.", level, name)
	return nil
}

func headingLevel(n *html.Node) int {
	if len(n.Data) == 2 && n.Data[0] == 'h' && n.Data[1] >= '1' && n.Data[1] <= '6' {
		return int(n.Data[1] - '0')
	}
	return 0
}

// fixAriaName wires aria-labelledby to the field's <label for> when one
// exists, minting the label an id if needed, and sets aria-label otherwise
func fixAriaName(root, el *html.Node, issue domain.FusedIssue, ch *change) {
	if id := selector.Attr(el, "id"); id != "" {
		for _, label := range selector.FindAll(root, "label") {
			if selector.Attr(label, "for") != id {
				continue
			}
			labelID := selector.Attr(label, "id")
			if labelID == "" {
				labelID = mintID(root, id+"-label")
				selector.SetAttr(label, "id", labelID)
				ch.script = append(ch.script,
					fmt.Sprintf("const label = document.querySelector('label[for=' + CSS.escape(%s) + ']');", jsString(id)),
					fmt.Sprintf("if (label) label.id = %s;", jsString(labelID)),
				)
			}
			setAttr(el, "aria-labelledby", labelID, ch)
			ch.explanation = fmt.Sprintf("Linked the element to its visible label with aria-labelledby=%q.", labelID)
			return
		}
	}
	label := orDefault(issue.AISuggestion, defaultAriaLabel)
	setAttr(el, "aria-label", label, ch)
	ch.explanation = fmt.Sprintf("Added aria-label=%q to provide an accessible name for screen reader users.", label)
}

// cssSelector is the selector CSS fixes are scoped to. Page-level issues
// apply to every element.
func cssSelector(issue domain.FusedIssue) string {
	sel := strings.TrimSpace(issue.Selector)
	if sel == "" || sel == domain.GeneralLocator {
		return "*"
	}
	return sel
}

// cssFix appends a rule to the stylesheet. Existing rules are never edited.
func (g *Generator) cssFix(issue domain.FusedIssue, original string) (change, error) {
	sel := cssSelector(issue)
	rule := css.NewRule(css.QualifiedRule)

	var comment, explanation string
	switch issue.Type {
	case domain.IssueMissingFocusIndicator, domain.IssueFocusIndicator:
		rule.Selectors = []string{sel + ":focus-visible"}
		rule.Declarations = []*css.Declaration{
			{Property: "outline", Value: focusOutline},
			{Property: "outline-offset", Value: "2px"},
		}
		comment = "Add visible focus indicator"
		explanation = "Added a :focus-visible outline so keyboard users can see which element has focus."
	case domain.IssueLowContrast, domain.IssueContrastRatio:
		color, background := "#000000", "#ffffff"
		if rec := issue.Recommendation; rec != nil {
			color = orDefault(rec.Color, color)
			background = orDefault(rec.Background, background)
		}
		rule.Selectors = []string{sel}
		rule.Declarations = []*css.Declaration{
			{Property: "color", Value: color},
			{Property: "background-color", Value: background},
		}
		comment = "Increase contrast ratio"
		explanation = fmt.Sprintf("Set text colour %s on background %s to meet the WCAG AA contrast ratio.", color, background)
	case domain.IssueLayout:
		return change{}, fmt.Errorf("%w: layout issues need manual review", ErrUnsupportedIssue)
	default:
		return change{}, fmt.Errorf("%w: %s", ErrUnsupportedIssue, issue.Type)
	}
	rule.Prelude = strings.Join(rule.Selectors, ", ")

	block := rule.String()
	if _, err := parser.Parse(block); err != nil {
		return change{}, fmt.Errorf("generated rule for %q does not parse: %w", sel, err)
	}

	after := original
	if after != "" && !strings.HasSuffix(after, "\n") {
		after += "\n"
	}
	after += fmt.Sprintf("\n/* Accessibility fix: %s */\n%s\n", comment, block)
	return change{
		artifact:    domain.ArtifactCSS,
		before:      original,
		after:       after,
		explanation: explanation,
		style:       block,
	}, nil
}
