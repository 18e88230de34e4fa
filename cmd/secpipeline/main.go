// Command secpipeline runs the filing processing pipeline over a set of
// tickers/filing-types, publishing the rendered LLM artifact and its
// metadata record, or printing a dry-run summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	edgar "github.com/secfilings/go-edgar-pipeline"
	"github.com/secfilings/go-edgar-pipeline/fetcher"
	"github.com/secfilings/go-edgar-pipeline/filing"
	"github.com/secfilings/go-edgar-pipeline/fiscal"
	"github.com/secfilings/go-edgar-pipeline/orchestrator"
	"github.com/secfilings/go-edgar-pipeline/storage"
)

// repeatableFlag collects every occurrence of a repeatable flag (e.g.
// -ticker AAPL -ticker MSFT) into a slice, mirroring the teacher's
// single-value flag.StringVar calls generalized to multi-value.
type repeatableFlag []string

func (r *repeatableFlag) String() string { return strings.Join(*r, ",") }
func (r *repeatableFlag) Set(v string) error {
	*r = append(*r, v)
	return nil
}

func main() {
	var (
		tickers      repeatableFlag
		filingTypes  repeatableFlag
		yearFrom     string
		yearTo       string
		maxConcurr   int
		cacheDir     string
		bucket       string
		mongoURI     string
		mongoDB      string
		project      string
		fiscalOvly   string
		dryRun       bool
		force        bool
		verifyFloor  float64
		email        string
	)

	flag.Var(&tickers, "ticker", "ticker to process (repeatable)")
	flag.Var(&filingTypes, "filing-type", "filing type to process, 10-K or 10-Q (repeatable)")
	flag.StringVar(&yearFrom, "year-from", "", "start of filing-date range (YYYY-MM-DD)")
	flag.StringVar(&yearTo, "year-to", "", "end of filing-date range (YYYY-MM-DD)")
	flag.IntVar(&maxConcurr, "max-concurrency", 4, "maximum concurrent filing pipelines")
	flag.StringVar(&cacheDir, "cache-dir", "", "on-disk fetch cache directory (empty disables caching)")
	flag.StringVar(&bucket, "bucket", "", "object-store bucket for published artifacts")
	flag.StringVar(&mongoURI, "mongo-uri", "", "document-metadata store connection URI")
	flag.StringVar(&mongoDB, "mongo-database", "secfilings", "document-metadata store database name")
	flag.StringVar(&project, "project", "", "operator-facing run label, attached to log lines only")
	flag.StringVar(&fiscalOvly, "fiscal-overlay", "", "optional YAML fiscal calendar overlay")
	flag.BoolVar(&dryRun, "dry-run", false, "run the pipeline without publishing")
	flag.BoolVar(&force, "force", false, "overwrite existing published objects")
	flag.Float64Var(&verifyFloor, "verify-threshold", 0.995, "minimum exact-match coverage to pass the verifier gate")
	flag.StringVar(&email, "email", "", "email for SEC User-Agent header (or SEC_EMAIL env var)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: secpipeline [options]\n\n")
		fmt.Fprintf(os.Stderr, "Process SEC filings into LLM-facing artifacts and publish them.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  secpipeline -ticker AAPL -ticker MSFT -filing-type 10-K -filing-type 10-Q \\\n")
		fmt.Fprintf(os.Stderr, "    -bucket filings-bucket -mongo-uri mongodb://localhost:27017\n")
	}

	flag.Parse()

	if err := run(tickers, filingTypes, yearFrom, yearTo, maxConcurr, cacheDir, bucket, mongoURI, mongoDB, project, fiscalOvly, dryRun, force, verifyFloor, email); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(tickers, filingTypes repeatableFlag, yearFrom, yearTo string, maxConcurr int, cacheDir, bucket, mongoURI, mongoDB, project, fiscalOverlay string, dryRun, force bool, verifyFloor float64, email string) error {
	if len(tickers) == 0 || len(filingTypes) == 0 {
		flag.Usage()
		return fmt.Errorf("at least one -ticker and one -filing-type are required")
	}

	if email == "" {
		var err error
		email, err = edgar.GetSecEmail()
		if err != nil {
			return err
		}
	}

	registry := fiscal.NewRegistry()
	if fiscalOverlay != "" {
		if err := registry.LoadOverlay(fiscalOverlay); err != nil {
			return fmt.Errorf("load fiscal overlay: %w", err)
		}
	}

	fetchClient, err := fetcher.New(fetcher.Config{Email: email, CacheDir: cacheDir})
	if err != nil {
		return fmt.Errorf("build fetch client: %w", err)
	}

	ctx := context.Background()

	var objects storage.ObjectPutter
	var metadata storage.MetadataUpserter
	if dryRun {
		objects = &noopObjects{}
		metadata = &noopMetadata{}
	} else {
		if bucket == "" || mongoURI == "" {
			return fmt.Errorf("-bucket and -mongo-uri are required unless -dry-run is set")
		}
		s3store, err := storage.NewS3Store(ctx, bucket)
		if err != nil {
			return fmt.Errorf("connect object store: %w", err)
		}
		objects = s3store
		mongoStore, err := storage.NewMongoMetadataStore(ctx, mongoURI, mongoDB)
		if err != nil {
			return fmt.Errorf("connect metadata store: %w", err)
		}
		metadata = mongoStore
	}

	var descriptors []filing.FilingDescriptor
	for _, ticker := range tickers {
		for _, ft := range filingTypes {
			found, err := orchestrator.DiscoverFilings(ticker, ft, yearFrom, yearTo, email)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
				continue
			}
			descriptors = append(descriptors, found...)
		}
	}
	if len(descriptors) == 0 {
		return fmt.Errorf("no filings discovered for the given tickers/filing-types/date-range")
	}

	cfg := orchestrator.Defaults()
	cfg.MaxConcurrency = maxConcurr
	cfg.Bucket = bucket
	cfg.MongoURI = mongoURI
	cfg.MongoDatabase = mongoDB
	cfg.CacheDir = cacheDir
	cfg.Email = email
	cfg.VerifyThreshold = verifyFloor
	cfg.Force = force
	cfg.DryRun = dryRun

	log := orchestrator.NewLogger(project)
	deps := orchestrator.Deps{
		Fetch:    fetchClient,
		Registry: registry,
		Objects:  objects,
		Metadata: metadata,
		Log:      log,
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(len(descriptors))*cfg.FilingTimeout)
	defer cancel()

	report, err := orchestrator.Run(runCtx, cfg, descriptors, deps)
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	failed := 0
	for _, r := range report.Results {
		status := "PASS"
		if r.Err != nil {
			status = "FAIL"
			failed++
		}
		fmt.Printf("%s %s %s %s: %v\n", status, r.Descriptor.Ticker, r.Descriptor.FilingType, r.Descriptor.AccessionNo, r.Err)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d filings failed", failed, len(report.Results))
	}
	return nil
}

type noopObjects struct{}

func (n *noopObjects) Put(ctx context.Context, key string, body []byte, contentType string) error {
	return nil
}
func (n *noopObjects) Exists(ctx context.Context, key string) (bool, error) { return false, nil }

type noopMetadata struct{}

func (n *noopMetadata) Upsert(ctx context.Context, rec storage.MetadataRecord) error { return nil }
