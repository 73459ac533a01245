// Package layout recognizes the product template's generated markup inside
// stored catalog HTML. Detection is a heuristic substring scan, not a parse:
// product bodies are routinely malformed fragments, and downstream status
// comparisons depend on reproducing the containment semantics exactly.
package layout

import (
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// Result is the outcome of classifying one HTML string.
type Result struct {
	// IsNewLayout is true when the HTML carries the template's structure:
	// the SKU marker plus at least one weaker structural marker. The SKU
	// marker alone is not enough; prose mentioning a SKU attribute would
	// otherwise false-positive.
	IsNewLayout bool `json:"is_new_layout"`

	// ContentCount is the number of known section keys present, each
	// counted at most once however often its markers recur.
	ContentCount int `json:"content_count"`
}

// Classifier scans HTML for template markers in a single pass.
// It is immutable after construction and safe for concurrent use.
type Classifier struct {
	matcher *ahocorasick.Matcher
	markers []marker
}

// New builds a classifier over the fixed marker vocabulary.
func New() *Classifier {
	markers := buildMarkers()

	texts := make([]string, len(markers))
	for i, m := range markers {
		texts[i] = m.text
	}

	return &Classifier{
		matcher: ahocorasick.NewStringMatcher(texts),
		markers: markers,
	}
}

// Classify decides whether html was produced by the tab template and how
// many known sections it contains. Empty or whitespace-only input yields the
// zero Result. Classify never fails and has no side effects; identical input
// always produces identical output.
func (c *Classifier) Classify(html string) Result {
	found := c.scan(html)

	structural := found.container || found.tabContent || found.tabID || found.dataSection

	count := 0
	for _, present := range found.sections {
		if present {
			count++
		}
	}

	return Result{
		IsNewLayout:  found.sku && structural,
		ContentCount: count,
	}
}

// DetectSections returns the known section keys present in html, in template
// order. len(DetectSections(h)) always equals Classify(h).ContentCount.
func (c *Classifier) DetectSections(html string) []SectionKey {
	found := c.scan(html)

	keys := make([]SectionKey, 0, len(found.sections))
	for _, key := range sectionKeys {
		if found.sections[key] {
			keys = append(keys, key)
		}
	}
	return keys
}

// findings accumulates the signals and sections established by one scan.
type findings struct {
	sku         bool
	container   bool
	tabContent  bool
	tabID       bool
	dataSection bool
	sections    map[SectionKey]bool
}

// scan runs the automaton once over html and fans each hit out to its
// marker's effects. MatchThreadSafe keeps the classifier usable from any
// number of goroutines without coordination; the plain Match variant keeps
// per-call state on the matcher.
func (c *Classifier) scan(html string) findings {
	found := findings{sections: make(map[SectionKey]bool, len(sectionKeys))}

	if strings.TrimSpace(html) == "" {
		return found
	}

	hits := c.matcher.MatchThreadSafe([]byte(html))
	for _, hit := range hits {
		if hit >= len(c.markers) {
			continue
		}
		m := c.markers[hit]

		switch m.signal {
		case signalSKU:
			found.sku = true
		case signalContainer:
			found.container = true
		case signalTabContent:
			found.tabContent = true
		case signalTabID:
			found.tabID = true
		case signalDataSection:
			found.dataSection = true
		case signalNone:
		}

		if m.section != "" {
			found.sections[m.section] = true
		}
	}

	return found
}
