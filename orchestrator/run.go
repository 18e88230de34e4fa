package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	edgar "github.com/secfilings/go-edgar-pipeline"
	"github.com/secfilings/go-edgar-pipeline/fetcher"
	"github.com/secfilings/go-edgar-pipeline/filing"
	"github.com/secfilings/go-edgar-pipeline/fiscal"
	"github.com/secfilings/go-edgar-pipeline/hierarchy"
	"github.com/secfilings/go-edgar-pipeline/llmformat"
	"github.com/secfilings/go-edgar-pipeline/storage"
	"github.com/secfilings/go-edgar-pipeline/validate"
	"github.com/secfilings/go-edgar-pipeline/verify"
)

// FilingResult is the per-filing outcome the orchestrator reports, one per
// input FilingDescriptor regardless of success or failure.
type FilingResult struct {
	Descriptor filing.FilingDescriptor
	Published  *storage.PublishResult
	Verify     *verify.Report
	Err        error
}

// RunReport summarizes one orchestrator run: every per-filing outcome plus
// the run's correlation id.
type RunReport struct {
	RunID   string
	Results []FilingResult
}

// Deps bundles the external collaborators Run threads through every
// filing's pipeline. Tests substitute fakes for Objects/Metadata; Registry
// is shared by reference across every worker goroutine, matching the
// fiscal package's explicit-construction-not-singleton design.
type Deps struct {
	Fetch    *fetcher.Client
	Registry *fiscal.Registry
	Objects  storage.ObjectPutter
	Metadata storage.MetadataUpserter
	Log      zerolog.Logger
}

// Run drives one filing per goroutine through
// fetch -> extract -> hierarchy -> validate -> format -> store -> verify,
// bounded by cfg.MaxConcurrency. Cross-filing there are no ordering
// guarantees; within a filing, stages run in this fixed order.
func Run(ctx context.Context, cfg Config, filings []filing.FilingDescriptor, deps Deps) (*RunReport, error) {
	runID := ulid.Make().String()
	log := deps.Log.With().Str("run_id", runID).Logger()

	results := make([]FilingResult, len(filings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.MaxConcurrency)

	coord := storage.NewCoordinator(deps.Objects, deps.Metadata)

	for i, desc := range filings {
		i, desc := i, desc
		g.Go(func() error {
			taskID := ulid.Make().String()
			taskLog := log.With().Str("task_id", taskID).Str("ticker", desc.Ticker).Str("filing_type", desc.FilingType).Logger()

			filingCtx, cancel := context.WithTimeout(gctx, cfg.FilingTimeout)
			defer cancel()

			res := processFiling(filingCtx, desc, cfg, deps, coord, taskLog)
			results[i] = res

			if res.Err != nil {
				taskLog.Error().Err(res.Err).Msg("filing failed")
			} else {
				taskLog.Info().Msg("filing published")
			}
			// Errors from one filing never cancel its siblings: the
			// errgroup's shared context is only used for cooperative
			// per-request cancellation, not aggregate failure.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &RunReport{RunID: runID, Results: results}, nil
}

func processFiling(ctx context.Context, desc filing.FilingDescriptor, cfg Config, deps Deps, coord *storage.Coordinator, log zerolog.Logger) FilingResult {
	result := FilingResult{Descriptor: desc}

	log.Info().Str("url", desc.PrimaryDocURL).Msg("fetching primary document")
	raw, err := deps.Fetch.Fetch(ctx, desc.PrimaryDocURL)
	if err != nil {
		result.Err = fmt.Errorf("fetch primary document: %w", err)
		return result
	}

	extraction, err := edgar.ParseXBRLAuto(raw)
	if err != nil {
		result.Err = fmt.Errorf("extract xbrl: %w", err)
		return result
	}

	pf := &filing.ProcessedFiling{
		Descriptor:  desc,
		RawDocument: raw,
		Extraction:  extraction,
		ProcessedAt: time.Now(),
	}
	if extraction.ContextsSynthetic {
		pf.Diagnostics = append(pf.Diagnostics, edgar.ValidationWarning{
			Code:    "CONTEXTS_SYNTHESIZED",
			Message: "one or more contexts were synthesized from context-id naming conventions",
		})
	}
	pf.Diagnostics = append(pf.Diagnostics, extraction.Warnings...)

	pf.Hierarchy = resolveHierarchy(ctx, desc, deps, log)

	pf.Diagnostics = append(pf.Diagnostics, validate.CheckReferentialIntegrity(extraction.XBRL)...)
	pf.Diagnostics = append(pf.Diagnostics, checkBalanceSheets(extraction.XBRL)...)

	info, integrity := storage.DeriveFiscalInfo(desc, deps.Registry)
	pf.Fiscal = info
	pf.DataIntegrity = append(pf.DataIntegrity, integrity)

	artifact, err := llmformat.Render(pf)
	if err != nil {
		result.Err = fmt.Errorf("render llm artifact: %w", err)
		return result
	}
	pf.LLMArtifact = artifact

	runVerify := func() error {
		report, verr := verify.Verify(artifact, verify.DumpFromExtraction(extraction), cfg.VerifyThreshold)
		result.Verify = report
		if verr != nil {
			log.Warn().Err(verr).Msg("verifier coverage below threshold")
		}
		return verr
	}

	if cfg.DryRun {
		runVerify()
		return result
	}

	published, err := coord.Publish(ctx, pf, storage.PublishOptions{
		Bucket:         cfg.Bucket,
		Force:          cfg.Force,
		FilingTextSize: len(pf.RawDocument),
	})
	if err != nil {
		result.Err = fmt.Errorf("publish: %w", err)
		return result
	}
	result.Published = published

	if verr := runVerify(); verr != nil {
		result.Err = verr
	}
	return result
}

func resolveHierarchy(ctx context.Context, desc filing.FilingDescriptor, deps Deps, log zerolog.Logger) *hierarchy.Tree {
	if desc.PresentationLinkbaseURL == "" {
		return nil
	}
	data, err := deps.Fetch.Fetch(ctx, desc.PresentationLinkbaseURL)
	if err != nil {
		log.Warn().Err(err).Msg("presentation linkbase fetch failed, falling back to concept classification")
		return nil
	}
	arcsByRole, err := hierarchy.ParseLinkbase(data)
	if err != nil {
		log.Warn().Err(err).Msg("presentation linkbase parse failed, falling back to concept classification")
		return nil
	}

	var best *hierarchy.Tree
	bestSize := -1
	for role, arcs := range arcsByRole {
		if hierarchy.ClassifyRole(role) == hierarchy.Unclassified {
			continue
		}
		tree := hierarchy.ResolveRole(role, arcs)
		if len(tree.Roots) > bestSize {
			best = tree
			bestSize = len(tree.Roots)
		}
	}
	return best
}

func checkBalanceSheets(x *edgar.XBRL) []edgar.ValidationWarning {
	byContext := make(map[string]*validate.BalanceSheetFacts)

	assign := func(contextRef string, set func(*validate.BalanceSheetFacts)) {
		f, ok := byContext[contextRef]
		if !ok {
			f = &validate.BalanceSheetFacts{ContextRef: contextRef}
			byContext[contextRef] = f
		}
		set(f)
	}

	facts := x.Query().InstantOnly().Get()
	for _, f := range facts {
		if f.NumericValue == nil {
			continue
		}
		d := decimal.NewFromFloat(*f.NumericValue)
		switch {
		case matchesConcept(f.Concept, "Assets") && !matchesConcept(f.Concept, "AssetsCurrent"):
			assign(f.ContextRef, func(b *validate.BalanceSheetFacts) { b.Assets = &d })
		case matchesConcept(f.Concept, "Liabilities") && !matchesConcept(f.Concept, "LiabilitiesCurrent") && !matchesConcept(f.Concept, "LiabilitiesAndStockholdersEquity"):
			assign(f.ContextRef, func(b *validate.BalanceSheetFacts) { b.Liabilities = &d })
		case matchesConcept(f.Concept, "StockholdersEquity"):
			assign(f.ContextRef, func(b *validate.BalanceSheetFacts) { b.StockholdersEquity = &d })
		case matchesConcept(f.Concept, "MinorityInterest"):
			assign(f.ContextRef, func(b *validate.BalanceSheetFacts) { b.MinorityInterest = &d })
		case matchesConcept(f.Concept, "LiabilitiesAndStockholdersEquity"):
			assign(f.ContextRef, func(b *validate.BalanceSheetFacts) { b.LiabilitiesAndStockholdersEquity = &d })
		}
	}

	var warnings []edgar.ValidationWarning
	for _, b := range byContext {
		warnings = append(warnings, validate.CheckBalanceSheet(*b)...)
	}
	return warnings
}

func matchesConcept(concept, suffix string) bool {
	local := concept
	for i := len(concept) - 1; i >= 0; i-- {
		if concept[i] == ':' {
			local = concept[i+1:]
			break
		}
	}
	return local == suffix
}
