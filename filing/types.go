// Package filing holds the shared data model that flows between pipeline
// stages: the inbound FilingDescriptor a caller supplies, and the
// ProcessedFiling each stage enriches in turn.
package filing

import (
	"time"

	edgar "github.com/secfilings/go-edgar-pipeline"
	"github.com/secfilings/go-edgar-pipeline/fiscal"
	"github.com/secfilings/go-edgar-pipeline/hierarchy"
)

// FilingDescriptor is the unit of work handed to the orchestrator, either
// by an external collaborator or by orchestrator.DiscoverFilings, which
// builds them from the EDGAR submissions API for the tickers it knows.
type FilingDescriptor struct {
	Ticker        string
	CIK           string // digit string, left-padded to 10
	AccessionNo   string
	FilingType    string // "10-K" or "10-Q"
	PrimaryDocURL string
	FilingDate    string
	PeriodEndHint string // filer-asserted period end, if known ahead of fetch

	// FiscalYear and FiscalPeriod are set by a caller that already knows the
	// fiscal period (e.g. relaying values from its own filing index). The
	// storage coordinator's metadata_values fallback uses them verbatim when
	// the fiscal registry has no mapping for PeriodEndHint.
	FiscalYear   string
	FiscalPeriod string

	// PresentationLinkbaseURL is the filer's presentation linkbase document,
	// when the caller's filing index exposes it. Hierarchy resolution falls
	// back to concept-suffix classification when this is empty.
	PresentationLinkbaseURL string
	LabelLinkbaseURL         string
}

// DataIntegrityRecord documents a fiscal-period fallback decision so the
// storage coordinator's output is auditable: every filing that didn't hit
// an exact fiscal registry match carries one of these explaining why.
type DataIntegrityRecord struct {
	Strategy string // "registry", "metadata_values", "annual_for_10K", "quarter_placeholder"
	Detail   string
}

// ProcessedFiling accumulates the output of every pipeline stage for one
// filing. Stages are sequential per filing (fetch -> extract -> hierarchy ->
// validate -> format -> store), so this struct is only ever mutated by one
// goroutine at a time.
type ProcessedFiling struct {
	Descriptor FilingDescriptor

	RawDocument []byte
	Extraction  *edgar.Extraction

	Hierarchy *hierarchy.Tree
	Labels    map[string]string // concept -> preferred label

	Fiscal         fiscal.PeriodInfo
	DataIntegrity  []DataIntegrityRecord

	Diagnostics []edgar.ValidationWarning

	LLMArtifact string

	CanonicalID   string
	CanonicalPath string

	ProcessedAt time.Time
}

// DisplayPeriod is the human-facing "FY2024" / "FY2024 Q1" label used in
// both the LLM artifact header and the metadata-store record.
func (p *ProcessedFiling) DisplayPeriod() string {
	if p.Fiscal.FiscalPeriod() == "annual" || p.Fiscal.FiscalPeriod() == "" {
		return "FY" + p.Fiscal.FiscalYear()
	}
	return "FY" + p.Fiscal.FiscalYear() + " " + p.Fiscal.FiscalPeriod()
}
