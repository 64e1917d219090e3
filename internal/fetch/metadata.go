package fetch

import (
	"golang.org/x/net/html"

	"github.com/juparave/a11yfix/internal/detect"
	"github.com/juparave/a11yfix/internal/domain"
	"github.com/juparave/a11yfix/internal/selector"
)

// ExtractMetadata summarizes the elements of a parsed page
func ExtractMetadata(root *html.Node, pageURL string) *domain.PageMetadata {
	meta := &domain.PageMetadata{URL: pageURL}
	labelFor := detect.LabelTargets(root)

	for _, n := range selector.Elements(root) {
		meta.ElementCount++
		switch n.Data {
		case "img":
			meta.ImageCount++
		case "a":
			if selector.HasAttr(n, "href") {
				meta.LinkCount++
			}
		case "input", "select", "textarea":
			meta.FormElements = append(meta.FormElements, domain.FormElement{
				Tag:      n.Data,
				Type:     selector.Attr(n, "type"),
				ID:       selector.Attr(n, "id"),
				Class:    selector.Attr(n, "class"),
				HasLabel: detect.HasLabel(n, labelFor),
			})
		}
	}
	return meta
}
