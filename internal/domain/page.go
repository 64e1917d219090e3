package domain

// FormElement describes one form control seen by the renderer
type FormElement struct {
	Tag      string `json:"tag"`
	Type     string `json:"type,omitempty"`
	ID       string `json:"id,omitempty"`
	Class    string `json:"class,omitempty"`
	HasLabel bool   `json:"has_label"`
}

// PageMetadata is optional DOM metadata supplied with a page
type PageMetadata struct {
	URL          string        `json:"url"`
	ElementCount int           `json:"element_count"`
	ImageCount   int           `json:"image_count"`
	LinkCount    int           `json:"link_count"`
	FormElements []FormElement `json:"form_elements"`
}

// Page is the static text of a rendered document
type Page struct {
	URL      string
	HTML     string
	CSS      string
	JS       string
	Metadata *PageMetadata
}
