package storage

import (
	"context"
	"strings"
	"time"

	edgar "github.com/secfilings/go-edgar-pipeline"
	"github.com/secfilings/go-edgar-pipeline/filing"
	"github.com/secfilings/go-edgar-pipeline/fiscal"
)

// PublishOptions controls one Publish call.
type PublishOptions struct {
	Bucket         string
	CompanyName    string
	Force          bool // skip the existence check and overwrite
	RawPeriodEnd   string
	FilingTextSize int // size of the plain extracted text, if produced separately from LLMArtifact
}

// PublishResult reports what Publish actually did.
type PublishResult struct {
	CanonicalID   string
	ObjectPath    string
	Uploaded      bool // false when the object already existed and Force was not set
	DataIntegrity filing.DataIntegrityRecord
}

// Coordinator wires an ObjectPutter and a MetadataUpserter together behind
// the idempotent publish algorithm.
type Coordinator struct {
	Objects  ObjectPutter
	Metadata MetadataUpserter
}

// NewCoordinator returns a Coordinator backed by the given stores.
func NewCoordinator(objects ObjectPutter, metadata MetadataUpserter) *Coordinator {
	return &Coordinator{Objects: objects, Metadata: metadata}
}

// DeriveFiscalInfo determines the fiscal year/period for a filing, trying
// the registry first and falling through the three documented fallbacks in
// fixed order when the registry has no mapping. It never returns an error:
// every branch produces a usable PeriodInfo, the DataIntegrityRecord is
// what distinguishes an authoritative registry hit from a degraded guess.
func DeriveFiscalInfo(desc filing.FilingDescriptor, reg *fiscal.Registry) (fiscal.PeriodInfo, filing.DataIntegrityRecord) {
	periodEnd := desc.PeriodEndHint

	if periodEnd != "" {
		if info, err := reg.Determine(desc.Ticker, periodEnd, desc.FilingType); err == nil {
			return info, filing.DataIntegrityRecord{Strategy: "registry", Detail: "exact fiscal registry match"}
		}
	}

	if desc.FiscalYear != "" && desc.FiscalPeriod != "" {
		info, err := fiscal.NewPeriodInfo(desc.Ticker, normalizedOrRaw(periodEnd), desc.FiscalYear, desc.FiscalPeriod, desc.FilingType, "metadata_values", 0.8)
		if err == nil {
			return info, filing.DataIntegrityRecord{Strategy: "metadata_values", Detail: "caller-supplied fiscal_year/fiscal_period used"}
		}
	}

	year := extractYear(desc.FilingDate)
	if desc.FilingType == "10-K" {
		info, err := fiscal.NewPeriodInfo(desc.Ticker, normalizedOrRaw(periodEnd), year, "annual", desc.FilingType, "annual_for_10K", 0.5)
		if err == nil {
			return info, filing.DataIntegrityRecord{Strategy: "annual_for_10K", Detail: "10-K filing defaulted to annual fiscal period"}
		}
	}

	info, _ := fiscal.NewPeriodInfo(desc.Ticker, normalizedOrRaw(periodEnd), year, "Q?", desc.FilingType, "quarter_placeholder", 0.2)
	return info, filing.DataIntegrityRecord{Strategy: "quarter_placeholder", Detail: "non-10-K filing with no registry match or caller metadata; fiscal quarter unknown"}
}

// normalizedOrRaw normalizes periodEnd when possible, falling back to a
// fixed placeholder date so fallback PeriodInfo construction (which
// requires a YYYY-MM-DD-shaped string) never fails on a missing or
// unparseable period end.
func normalizedOrRaw(periodEnd string) string {
	if normalized, err := fiscal.Normalize(periodEnd); err == nil {
		return normalized
	}
	return "0000-01-01"
}

func extractYear(filingDate string) string {
	if len(filingDate) >= 4 {
		if normalized, err := fiscal.Normalize(filingDate); err == nil {
			return strings.SplitN(normalized, "-", 2)[0]
		}
		return filingDate[:4]
	}
	return "0000"
}

// Publish uploads pf's rendered LLM artifact and upserts its metadata
// record. An existence check on the destination object precedes the upload
// unless opts.Force is set; a filing republished with identical inputs
// always resolves to the same canonical id and object path, so the upsert
// never creates a duplicate metadata row.
func (c *Coordinator) Publish(ctx context.Context, pf *filing.ProcessedFiling, opts PublishOptions) (*PublishResult, error) {
	path := CanonicalPath(pf.Descriptor.Ticker, pf.Descriptor.FilingType, pf.Fiscal.FiscalYear(), pf.Fiscal.FiscalPeriod(), "llm.txt")
	docID := CanonicalDocumentID(pf.Descriptor.Ticker, pf.Descriptor.FilingType, pf.Fiscal.FiscalYear(), pf.Fiscal.FiscalPeriod())

	uploaded := false
	if opts.Force {
		if err := c.Objects.Put(ctx, path, []byte(pf.LLMArtifact), "text/plain; charset=utf-8"); err != nil {
			return nil, err
		}
		uploaded = true
	} else {
		exists, err := c.Objects.Exists(ctx, path)
		if err != nil {
			return nil, err
		}
		if !exists {
			if err := c.Objects.Put(ctx, path, []byte(pf.LLMArtifact), "text/plain; charset=utf-8"); err != nil {
				return nil, err
			}
			uploaded = true
		}
	}

	var integrity filing.DataIntegrityRecord
	if len(pf.DataIntegrity) > 0 {
		integrity = pf.DataIntegrity[len(pf.DataIntegrity)-1]
	} else {
		integrity = filing.DataIntegrityRecord{Strategy: "registry", Detail: "exact fiscal registry match"}
	}

	now := pf.ProcessedAt
	if now.IsZero() {
		now = time.Unix(0, 0).UTC()
	}

	rec := MetadataRecord{
		FilingID:                docID,
		CompanyTicker:           strings.ToUpper(pf.Descriptor.Ticker),
		CompanyName:             opts.CompanyName,
		FilingType:              pf.Descriptor.FilingType,
		FiscalYear:              pf.Fiscal.FiscalYear(),
		FiscalPeriod:            pf.Fiscal.FiscalPeriod(),
		DisplayPeriod:           pf.DisplayPeriod(),
		PeriodEndDate:           pf.Fiscal.PeriodEndDate(),
		PeriodEndDateRaw:        opts.RawPeriodEnd,
		FilingDate:              pf.Descriptor.FilingDate,
		TextFilePath:            path,
		TextFileSize:            opts.FilingTextSize,
		TextTokenCount:          opts.FilingTextSize / 4,
		LLMFilePath:             path,
		LLMFileSize:             len(pf.LLMArtifact),
		LLMTokenCount:           len(pf.LLMArtifact) / 4,
		HasLLMFormat:            pf.LLMArtifact != "",
		FiscalSource:            pf.Fiscal.Source(),
		FiscalIntegrityVerified: integrity.Strategy == "registry",
		DataIntegrity: DataIntegrityDoc{
			ValidationSource: integrity.Strategy,
			FallbackUsed:     fallbackName(integrity.Strategy),
			Timestamp:        now,
		},
		UploadDate:   now,
		LastAccessed: now,
		AccessCount:  0,
	}

	if pf.Extraction != nil {
		if snapshot, err := pf.Extraction.GetSnapshot(); err == nil {
			rec.Financials = snapshot
		}
	}

	if err := c.Metadata.Upsert(ctx, rec); err != nil {
		return nil, err
	}

	return &PublishResult{
		CanonicalID:   docID,
		ObjectPath:    path,
		Uploaded:      uploaded,
		DataIntegrity: integrity,
	}, nil
}

func fallbackName(strategy string) string {
	if strategy == "registry" {
		return ""
	}
	return strategy
}
