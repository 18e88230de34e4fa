package orchestrator

import (
	"fmt"
	"strings"

	edgar "github.com/secfilings/go-edgar-pipeline"
	"github.com/secfilings/go-edgar-pipeline/filing"
)

// knownCIKs resolves a ticker to its zero-padded CIK for the small set of
// issuers this pipeline ships fiscal calendars for. Full ticker->CIK
// resolution against the regulator's company_tickers.json index is
// discovery, which is out of scope here; a caller working with an issuer
// outside this set should build filing.FilingDescriptor values directly
// instead of going through DiscoverFilings.
var knownCIKs = map[string]string{
	"NVDA":  "0001045810",
	"MSFT":  "0000789019",
	"AAPL":  "0000320193",
	"GOOGL": "0001652044",
}

// DiscoverFilings resolves ticker to its CIK, fetches its EDGAR submissions
// index, and returns a FilingDescriptor for each filing matching formType
// whose filing date falls within [from, to] (either bound may be empty for
// an open range). It is a thin, intentionally narrow adapter over the
// teacher's FetchSubmissions/FilterByForm/FilterByDateRange helpers — real
// index discovery (arbitrary tickers, full-text search) stays an external
// collaborator's responsibility.
func DiscoverFilings(ticker, formType, from, to, email string) ([]filing.FilingDescriptor, error) {
	ticker = strings.ToUpper(ticker)
	cik, ok := knownCIKs[ticker]
	if !ok {
		return nil, fmt.Errorf("no known CIK for ticker %q; supply a filing.FilingDescriptor directly instead", ticker)
	}

	submissions, err := edgar.FetchSubmissions(cik, email)
	if err != nil {
		return nil, fmt.Errorf("fetch submissions for %s: %w", ticker, err)
	}

	recent := submissions.GetRecentFilings()
	matched := edgar.FilterByForm(recent, formType)
	matched = edgar.FilterByDateRange(matched, from, to)

	descriptors := make([]filing.FilingDescriptor, 0, len(matched))
	for _, f := range matched {
		descriptors = append(descriptors, filing.FilingDescriptor{
			Ticker:        ticker,
			CIK:           cik,
			AccessionNo:   f.AccessionNumber,
			FilingType:    formType,
			PrimaryDocURL: f.BuildURL(),
			FilingDate:    f.FilingDate,
			PeriodEndHint: f.ReportDate,
		})
	}
	return descriptors, nil
}
