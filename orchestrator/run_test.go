package orchestrator_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secfilings/go-edgar-pipeline/fetcher"
	"github.com/secfilings/go-edgar-pipeline/filing"
	"github.com/secfilings/go-edgar-pipeline/fiscal"
	"github.com/secfilings/go-edgar-pipeline/orchestrator"
	"github.com/secfilings/go-edgar-pipeline/storage"
)

const sampleStandaloneXBRL = `<?xml version="1.0" encoding="UTF-8"?>
<xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance" xmlns:us-gaap="http://fasb.org/us-gaap/2023">
  <context id="c1">
    <entity><identifier>0000320193</identifier></entity>
    <period><instant>2023-09-30</instant></period>
  </context>
  <unit id="usd"><measure>iso4217:USD</measure></unit>
  <us-gaap:Assets contextRef="c1" unitRef="usd" decimals="-3">1000000</us-gaap:Assets>
  <us-gaap:Liabilities contextRef="c1" unitRef="usd" decimals="-3">400000</us-gaap:Liabilities>
  <us-gaap:StockholdersEquity contextRef="c1" unitRef="usd" decimals="-3">600000</us-gaap:StockholdersEquity>
</xbrl>`

type stubObjects struct {
	mu   sync.Mutex
	puts int
}

func (s *stubObjects) Put(ctx context.Context, key string, body []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	return nil
}
func (s *stubObjects) Exists(ctx context.Context, key string) (bool, error) { return false, nil }

type stubMetadata struct {
	mu      sync.Mutex
	records []storage.MetadataRecord
}

func (s *stubMetadata) Upsert(ctx context.Context, rec storage.MetadataRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func TestRun_SingleFilingEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(sampleStandaloneXBRL))
	}))
	defer srv.Close()

	fetchClient, err := fetcher.New(fetcher.Config{Email: "test@acme.com", RequestsPerSecond: 100})
	require.NoError(t, err)

	objects := &stubObjects{}
	metadata := &stubMetadata{}
	deps := orchestrator.Deps{
		Fetch:    fetchClient,
		Registry: fiscal.NewRegistry(),
		Objects:  objects,
		Metadata: metadata,
		Log:      orchestrator.NewLogger("test"),
	}

	cfg := orchestrator.Defaults()
	cfg.MaxConcurrency = 2

	descs := []filing.FilingDescriptor{
		{Ticker: "AAPL", CIK: "0000320193", AccessionNo: "0001", FilingType: "10-K", PrimaryDocURL: srv.URL, FilingDate: "2023-11-01", PeriodEndHint: "2023-09-30"},
	}

	report, err := orchestrator.Run(context.Background(), cfg, descs, deps)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)

	res := report.Results[0]
	require.NoError(t, res.Err)
	require.NotNil(t, res.Published)
	assert.Equal(t, "AAPL_10-K_2023", res.Published.CanonicalID)
	assert.Equal(t, "registry", res.Published.DataIntegrity.Strategy)
	require.NotNil(t, res.Verify)
	assert.Equal(t, 1.0, res.Verify.ExactCoverage)
	assert.Equal(t, 1, objects.puts)
	assert.Len(t, metadata.records, 1)
}

func TestRun_DryRunSkipsPublish(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(sampleStandaloneXBRL))
	}))
	defer srv.Close()

	fetchClient, err := fetcher.New(fetcher.Config{Email: "test@acme.com", RequestsPerSecond: 100})
	require.NoError(t, err)

	objects := &stubObjects{}
	metadata := &stubMetadata{}
	deps := orchestrator.Deps{
		Fetch:    fetchClient,
		Registry: fiscal.NewRegistry(),
		Objects:  objects,
		Metadata: metadata,
		Log:      orchestrator.NewLogger("test"),
	}

	cfg := orchestrator.Defaults()
	cfg.DryRun = true

	descs := []filing.FilingDescriptor{
		{Ticker: "AAPL", CIK: "0000320193", AccessionNo: "0001", FilingType: "10-K", PrimaryDocURL: srv.URL, FilingDate: "2023-11-01", PeriodEndHint: "2023-09-30"},
	}

	report, err := orchestrator.Run(context.Background(), cfg, descs, deps)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Nil(t, report.Results[0].Published)
	assert.Equal(t, 0, objects.puts)
}

func TestRun_OneFilingFailureDoesNotAbortSiblings(t *testing.T) {
	okSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(sampleStandaloneXBRL))
	}))
	defer okSrv.Close()

	badSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer badSrv.Close()

	fetchClient, err := fetcher.New(fetcher.Config{Email: "test@acme.com", RequestsPerSecond: 100})
	require.NoError(t, err)

	deps := orchestrator.Deps{
		Fetch:    fetchClient,
		Registry: fiscal.NewRegistry(),
		Objects:  &stubObjects{},
		Metadata: &stubMetadata{},
		Log:      orchestrator.NewLogger("test"),
	}

	cfg := orchestrator.Defaults()
	cfg.DryRun = true

	descs := []filing.FilingDescriptor{
		{Ticker: "AAPL", CIK: "0000320193", AccessionNo: "bad", FilingType: "10-K", PrimaryDocURL: badSrv.URL, FilingDate: "2023-11-01", PeriodEndHint: "2023-09-30"},
		{Ticker: "AAPL", CIK: "0000320193", AccessionNo: "good", FilingType: "10-K", PrimaryDocURL: okSrv.URL, FilingDate: "2023-11-01", PeriodEndHint: "2023-09-30"},
	}

	report, err := orchestrator.Run(context.Background(), cfg, descs, deps)
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	assert.Error(t, report.Results[0].Err)
	assert.NoError(t, report.Results[1].Err)
}
