// Package render generates the tab-based product description HTML that the
// layout classifier recognizes. Rendering and detection share one marker
// vocabulary: anything rendered here classifies as the new layout.
package render

import (
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/domain"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/layout"
)

// layoutTemplate produces one container with a nav link and a tab-content
// block per section. The id and data-section attributes are load-bearing:
// they are the markers classification looks for.
const layoutTemplate = `<div class="container" data-sku="{{.SKU}}">
<ul class="tab-nav">
{{- range .Sections}}
<li class="tab-link"><a href="#{{.Key}}">{{.Title}}</a></li>
{{- end}}
</ul>
{{- range .Sections}}
<div class="tab-content" id="{{.Key}}" data-section="{{.Key}}">
<h2>{{.Title}}</h2>
{{.Body}}
</div>
{{- end}}
</div>`

// defaultTitles maps section keys to their display titles when the author
// left the title blank.
var defaultTitles = map[layout.SectionKey]string{
	layout.SectionDescription:         "Description",
	layout.SectionFeatures:            "Features",
	layout.SectionApplications:        "Applications",
	layout.SectionSpecifications:      "Specifications",
	layout.SectionDocumentation:       "Documentation",
	layout.SectionVideos:              "Videos",
	layout.SectionSafetyGuidelines:    "Safety Guidelines",
	layout.SectionSterilizationMethod: "Sterilization Method",
	layout.SectionCompatibleContainer: "Compatible Container",
	layout.SectionSKUNomenclature:     "SKU Nomenclature",
}

// Renderer executes the tab layout template.
type Renderer struct {
	tmpl *template.Template
}

// New parses the layout template. The template is a compile-time constant,
// so a parse failure is a programming error.
func New() *Renderer {
	return &Renderer{
		tmpl: template.Must(template.New("tab-layout").Parse(layoutTemplate)),
	}
}

// templateData is the root context for the layout template.
type templateData struct {
	SKU      string
	Sections []templateSection
}

type templateSection struct {
	Key   string
	Title string
	// Body is operator-authored HTML and is rendered verbatim. Titles and
	// keys go through contextual escaping as usual.
	Body template.HTML
}

// Render produces the full tab layout for one product. Sections with empty
// bodies are skipped; remaining sections are ordered by Position, ties
// keeping their input order. Rendering an empty section set returns the
// empty string so publishing a gutted draft clears the product body instead
// of leaving an empty template shell.
func (r *Renderer) Render(sku string, sections []domain.SectionContent) (string, error) {
	kept := make([]domain.SectionContent, 0, len(sections))
	for _, s := range sections {
		if strings.TrimSpace(s.BodyHTML) == "" {
			continue
		}
		kept = append(kept, s)
	}
	if len(kept) == 0 {
		return "", nil
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Position < kept[j].Position
	})

	data := templateData{
		SKU:      sku,
		Sections: make([]templateSection, len(kept)),
	}
	for i, s := range kept {
		data.Sections[i] = templateSection{
			Key:   s.Key,
			Title: sectionTitle(s),
			Body:  template.HTML(s.BodyHTML), //nolint:gosec // operator-authored content, rendered as-is on purpose
		}
	}

	var b strings.Builder
	if err := r.tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render tab layout: %w", err)
	}

	return b.String(), nil
}

// sectionTitle picks the author's title, the vocabulary default, or a
// titleized form of the key, in that order.
func sectionTitle(s domain.SectionContent) string {
	if strings.TrimSpace(s.Title) != "" {
		return s.Title
	}
	if title, ok := defaultTitles[layout.SectionKey(s.Key)]; ok {
		return title
	}
	return titleize(s.Key)
}

// titleize turns a hyphenated key like "care-instructions" into
// "Care Instructions".
func titleize(key string) string {
	words := strings.Split(key, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
