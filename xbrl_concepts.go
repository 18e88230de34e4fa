package edgar

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed concept_mappings.json
var defaultConceptMappingsJSON []byte

// ConceptMapping is the structure of concept_mappings.json.
type ConceptMapping struct {
	Schema      string                       `json:"$schema"`
	Description string                       `json:"description"`
	Version     string                       `json:"version"`
	Mappings    map[string]ConceptDefinition `json:"mappings"`
}

// ConceptDefinition defines a standardized concept and its XBRL variations.
type ConceptDefinition struct {
	Concepts []string `json:"concepts"`
	Notes    string   `json:"notes"`
}

// ConceptMapper looks up standardized labels for XBRL concepts. It is built
// explicitly by NewConceptMapper and passed by reference to everything that
// needs it, rather than lived as a package-level singleton: multiple
// concurrent pipeline runs can load their own mapping overlays without
// contending on global state, and tests can construct one from a fixture
// without an init()-time embed dependency.
type ConceptMapper struct {
	mappings      map[string]ConceptDefinition
	reverseLookup map[string]string
}

// NewConceptMapper builds a mapper from the embedded default mappings.
func NewConceptMapper() (*ConceptMapper, error) {
	return NewConceptMapperFromJSON(defaultConceptMappingsJSON)
}

// NewConceptMapperFromJSON builds a mapper from caller-supplied JSON in the
// same shape as concept_mappings.json, for tests or filer-specific overlays.
func NewConceptMapperFromJSON(data []byte) (*ConceptMapper, error) {
	var mapping ConceptMapping
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("parse concept mappings: %w", err)
	}

	m := &ConceptMapper{
		mappings:      mapping.Mappings,
		reverseLookup: make(map[string]string),
	}
	for label, def := range mapping.Mappings {
		for _, concept := range def.Concepts {
			m.reverseLookup[concept] = label
		}
	}
	return m, nil
}

// GetStandardizedLabel returns the standardized label for an XBRL concept,
// or "" if no mapping exists.
func (m *ConceptMapper) GetStandardizedLabel(xbrlConcept string) string {
	if label, ok := m.reverseLookup[xbrlConcept]; ok {
		return label
	}
	for concept, label := range m.reverseLookup {
		if strings.EqualFold(concept, xbrlConcept) {
			return label
		}
	}
	return ""
}

// GetConcepts returns all XBRL concepts mapped to a standardized label.
func (m *ConceptMapper) GetConcepts(standardizedLabel string) ([]string, error) {
	def, ok := m.mappings[standardizedLabel]
	if !ok {
		return nil, fmt.Errorf("unknown standardized label: %s", standardizedLabel)
	}
	return def.Concepts, nil
}

// GetAllStandardizedLabels returns all available standardized labels.
func (m *ConceptMapper) GetAllStandardizedLabels() []string {
	labels := make([]string, 0, len(m.mappings))
	for label := range m.mappings {
		labels = append(labels, label)
	}
	return labels
}

// HasMapping reports whether the XBRL concept has a standardized mapping.
func (m *ConceptMapper) HasMapping(xbrlConcept string) bool {
	return m.GetStandardizedLabel(xbrlConcept) != ""
}

// defaultMapperOnce guards defaultMapper, which backs GetStandardizedLabel,
// the package-level convenience wrapper callers that don't need a custom
// mapper can use. The mapper is built lazily on first use rather than at
// init time; a failure to parse the embedded JSON panics at that first use.
var (
	defaultMapperOnce sync.Once
	defaultMapper     *ConceptMapper
)

func defaultConceptMapper() *ConceptMapper {
	defaultMapperOnce.Do(func() {
		m, err := NewConceptMapper()
		if err != nil {
			// The embedded mapping file is part of this binary; a parse
			// failure here means the build is broken, not bad input.
			panic(fmt.Sprintf("embedded concept_mappings.json is invalid: %v", err))
		}
		defaultMapper = m
	})
	return defaultMapper
}

// GetStandardizedLabel is a package-level convenience wrapper around the
// lazily-built default mapper, for callers that don't maintain their own.
func GetStandardizedLabel(xbrlConcept string) string {
	return defaultConceptMapper().GetStandardizedLabel(xbrlConcept)
}

// GetConceptsForLabel is the package-level convenience counterpart to
// ConceptMapper.GetConcepts.
func GetConceptsForLabel(standardizedLabel string) ([]string, error) {
	return defaultConceptMapper().GetConcepts(standardizedLabel)
}

// GetAllStandardizedLabels is the package-level convenience counterpart to
// ConceptMapper.GetAllStandardizedLabels.
func GetAllStandardizedLabels() []string {
	return defaultConceptMapper().GetAllStandardizedLabels()
}

// HasMapping is the package-level convenience counterpart to
// ConceptMapper.HasMapping.
func HasMapping(xbrlConcept string) bool {
	return defaultConceptMapper().HasMapping(xbrlConcept)
}
