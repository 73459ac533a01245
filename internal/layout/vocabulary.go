package layout

// VocabularyVersion identifies the marker vocabulary below. Counts computed
// under different vocabulary versions are not comparable, so the version is
// persisted alongside every stored status snapshot. Bump it whenever a
// section key or structural marker is added or removed.
const VocabularyVersion = 1

// Structural markers emitted by the tab template. Matching is literal,
// case-sensitive substring containment over the raw HTML; stored product
// content is often malformed or hand-edited, so these must never be
// normalized or parsed.
const (
	skuMarker         = `data-sku=`
	containerMarker   = `class="container"`
	tabContentMarker  = `tab-content`
	dataSectionMarker = `data-section=`
)

// SectionKey names one of the content tabs the template manages per product.
type SectionKey string

// The fixed tab vocabulary, in template order.
const (
	SectionDescription         SectionKey = "description"
	SectionFeatures            SectionKey = "features"
	SectionApplications        SectionKey = "applications"
	SectionSpecifications      SectionKey = "specifications"
	SectionDocumentation       SectionKey = "documentation"
	SectionVideos              SectionKey = "videos"
	SectionSafetyGuidelines    SectionKey = "safety-guidelines"
	SectionSterilizationMethod SectionKey = "sterilization-method"
	SectionCompatibleContainer SectionKey = "compatible-container"
	SectionSKUNomenclature     SectionKey = "sku-nomenclature"
)

// sectionKeys lists every known section in template order. DetectSections
// reports findings in this order.
var sectionKeys = []SectionKey{
	SectionDescription,
	SectionFeatures,
	SectionApplications,
	SectionSpecifications,
	SectionDocumentation,
	SectionVideos,
	SectionSafetyGuidelines,
	SectionSterilizationMethod,
	SectionCompatibleContainer,
	SectionSKUNomenclature,
}

// idDetectedSections are the tabs that older generated layouts mark with a
// bare id attribute. Their id markers double as the tab-id structural signal.
var idDetectedSections = []SectionKey{
	SectionDescription,
	SectionFeatures,
	SectionApplications,
	SectionSpecifications,
}

// SectionKeys returns the known section keys in template order.
func SectionKeys() []SectionKey {
	keys := make([]SectionKey, len(sectionKeys))
	copy(keys, sectionKeys)
	return keys
}

// KnownSection reports whether key is part of the current vocabulary.
func KnownSection(key SectionKey) bool {
	for _, k := range sectionKeys {
		if k == key {
			return true
		}
	}
	return false
}

// structuralSignal identifies which template signal a marker contributes to.
type structuralSignal int

const (
	signalNone structuralSignal = iota
	signalSKU
	signalContainer
	signalTabContent
	signalTabID
	signalDataSection
)

// marker is one dictionary entry: the literal text to find in the HTML and
// the signal and/or section its presence establishes. A single marker can
// feed both (id="description" is a tab-id signal and detects the
// description section), which is why the dictionary maps each unique string
// to its full effect instead of listing strings twice.
type marker struct {
	text    string
	signal  structuralSignal
	section SectionKey // empty when the marker is purely structural
}

// buildMarkers assembles the full dictionary: 4 structural markers,
// 4 id-based tab markers, and 10 data-section markers. Every text is unique;
// the data-section= prefix overlapping its quoted forms is fine because the
// automaton reports all contained patterns.
func buildMarkers() []marker {
	markers := make([]marker, 0, 4+len(idDetectedSections)+len(sectionKeys))

	markers = append(markers,
		marker{text: skuMarker, signal: signalSKU},
		marker{text: containerMarker, signal: signalContainer},
		marker{text: tabContentMarker, signal: signalTabContent},
		marker{text: dataSectionMarker, signal: signalDataSection},
	)

	for _, key := range idDetectedSections {
		markers = append(markers, marker{
			text:    `id="` + string(key) + `"`,
			signal:  signalTabID,
			section: key,
		})
	}

	for _, key := range sectionKeys {
		markers = append(markers, marker{
			text:    `data-section="` + string(key) + `"`,
			section: key,
		})
	}

	return markers
}
