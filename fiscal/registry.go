package fiscal

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type calendarEntry struct {
	FiscalYear   string `yaml:"fiscal_year"`
	FiscalPeriod string `yaml:"fiscal_period"`
}

// Registry is the fiscal period lookup table: (ticker, normalized period
// end date) -> (fiscal year, fiscal period). It is built once, either from
// the compiled-in defaults alone or with a supplemental YAML overlay, and
// then passed by reference to every component that needs a determination.
// There is deliberately no package-level singleton: a worker pool processing
// several tickers concurrently shares one *Registry instance explicitly,
// rather than reaching for mutable global state.
type Registry struct {
	mu        sync.RWMutex
	calendars map[string]map[string]calendarEntry // ticker -> periodEndDate -> entry
}

// NewRegistry builds a registry from the compiled-in calendars.
func NewRegistry() *Registry {
	r := &Registry{calendars: make(map[string]map[string]calendarEntry)}
	for ticker, dates := range defaultCalendars {
		r.calendars[ticker] = dates
	}
	return r
}

// LoadOverlay reads a YAML file of the shape:
//
//	AAPL:
//	  "2023-09-30": {fiscal_year: "2023", fiscal_period: annual}
//
// and adds any ticker not already present in the registry. Existing tickers
// are left untouched — the compiled-in calendars are authoritative; an
// overlay only supplements companies the defaults don't cover.
func (r *Registry) LoadOverlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read fiscal overlay %s: %w", path, err)
	}

	var overlay map[string]map[string]calendarEntry
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parse fiscal overlay %s: %w", path, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for ticker, dates := range overlay {
		ticker = strings.ToUpper(ticker)
		if _, exists := r.calendars[ticker]; exists {
			continue
		}
		r.calendars[ticker] = dates
	}
	return nil
}

// AddMapping registers a single period-end-date mapping for a ticker,
// creating the ticker's calendar if this is its first entry. Used by
// operators backfilling a company the defaults and overlay both miss.
func (r *Registry) AddMapping(ticker, periodEndDate, fiscalYear, fiscalPeriod string) error {
	normalized, err := Normalize(periodEndDate)
	if err != nil {
		return err
	}
	if !validPeriods[fiscalPeriod] {
		return &DataError{Field: "fiscal_period", Reason: "must be one of Q1, Q2, Q3, Q4, annual, Q?"}
	}

	ticker = strings.ToUpper(ticker)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calendars[ticker] == nil {
		r.calendars[ticker] = make(map[string]calendarEntry)
	}
	r.calendars[ticker][normalized] = calendarEntry{FiscalYear: fiscalYear, FiscalPeriod: fiscalPeriod}
	return nil
}

// Determine normalizes periodEndDate and looks it up for ticker. A miss is
// always a *LookupError — this method applies no heuristic fallback;
// fallback policy belongs to the storage coordinator, which knows what a
// missing mapping should degrade to for a given filing type.
func (r *Registry) Determine(ticker, periodEndDate, filingType string) (PeriodInfo, error) {
	normalized, err := Normalize(periodEndDate)
	if err != nil {
		return PeriodInfo{}, err
	}

	ticker = strings.ToUpper(ticker)

	r.mu.RLock()
	dates, ok := r.calendars[ticker]
	var entry calendarEntry
	if ok {
		entry, ok = dates[normalized]
	}
	r.mu.RUnlock()

	if !ok {
		return PeriodInfo{}, &LookupError{Ticker: ticker, PeriodEndDate: periodEndDate, NormalizedDate: normalized}
	}

	return NewPeriodInfo(ticker, normalized, entry.FiscalYear, entry.FiscalPeriod, filingType, "fiscal_registry", 1.0)
}

// defaultCalendars are the compiled-in period-end-date mappings, ported
// directly from the known fiscal calendars of the companies this pipeline
// is most commonly exercised against.
var defaultCalendars = map[string]map[string]calendarEntry{
	"NVDA": {
		"2020-04-26": {"2021", "Q1"},
		"2020-07-26": {"2021", "Q2"},
		"2020-10-25": {"2021", "Q3"},
		"2021-01-31": {"2021", "annual"},
		"2021-04-25": {"2022", "Q1"},
		"2021-05-02": {"2022", "Q1"},
		"2021-07-25": {"2022", "Q2"},
		"2021-08-01": {"2022", "Q2"},
		"2021-10-31": {"2022", "Q3"},
		"2022-01-30": {"2022", "annual"},
		"2022-05-01": {"2023", "Q1"},
		"2022-07-31": {"2023", "Q2"},
		"2022-10-30": {"2023", "Q3"},
		"2023-01-29": {"2023", "annual"},
		"2023-04-30": {"2024", "Q1"},
		"2023-07-30": {"2024", "Q2"},
		"2023-10-29": {"2024", "Q3"},
		"2024-01-28": {"2024", "annual"},
		"2024-04-28": {"2025", "Q1"},
		"2024-07-28": {"2025", "Q2"},
		"2024-10-27": {"2025", "Q3"},
		"2025-01-26": {"2025", "annual"},
	},
	"MSFT": {
		"2020-09-30": {"2021", "Q1"},
		"2020-12-31": {"2021", "Q2"},
		"2021-03-31": {"2021", "Q3"},
		"2021-06-30": {"2021", "annual"},
		"2021-09-30": {"2022", "Q1"},
		"2021-12-31": {"2022", "Q2"},
		"2022-03-31": {"2022", "Q3"},
		"2022-06-30": {"2022", "annual"},
		"2022-09-30": {"2023", "Q1"},
		"2022-12-31": {"2023", "Q2"},
		"2023-03-31": {"2023", "Q3"},
		"2023-06-30": {"2023", "annual"},
		"2023-09-30": {"2024", "Q1"},
		"2023-12-31": {"2024", "Q2"},
		"2024-03-31": {"2024", "Q3"},
		"2024-06-30": {"2024", "annual"},
		"2024-09-30": {"2025", "Q1"},
		"2024-12-31": {"2025", "Q2"},
		"2025-03-31": {"2025", "Q3"},
		"2025-06-30": {"2025", "annual"},
	},
	"AAPL": {
		"2020-12-26": {"2021", "Q1"},
		"2021-03-27": {"2021", "Q2"},
		"2021-06-26": {"2021", "Q3"},
		"2021-09-25": {"2021", "annual"},
		"2021-12-25": {"2022", "Q1"},
		"2022-03-26": {"2022", "Q2"},
		"2022-06-25": {"2022", "Q3"},
		"2022-09-24": {"2022", "annual"},
		"2022-12-31": {"2023", "Q1"},
		"2023-04-01": {"2023", "Q2"},
		"2023-07-01": {"2023", "Q3"},
		"2023-09-30": {"2023", "annual"},
		"2023-12-30": {"2024", "Q1"},
		"2024-03-30": {"2024", "Q2"},
		"2024-06-29": {"2024", "Q3"},
		"2024-09-28": {"2024", "annual"},
		"2024-12-28": {"2025", "Q1"},
		"2025-03-29": {"2025", "Q2"},
		"2025-06-28": {"2025", "Q3"},
		"2025-09-27": {"2025", "annual"},
	},
	"GOOGL": {
		"2022-03-31": {"2022", "Q1"},
		"2022-06-30": {"2022", "Q2"},
		"2022-09-30": {"2022", "Q3"},
		"2022-12-31": {"2022", "annual"},
		"2023-03-31": {"2023", "Q1"},
		"2023-06-30": {"2023", "Q2"},
		"2023-09-30": {"2023", "Q3"},
		"2023-12-31": {"2023", "annual"},
		"2024-03-31": {"2024", "Q1"},
		"2024-06-30": {"2024", "Q2"},
		"2024-09-30": {"2024", "Q3"},
		"2024-12-31": {"2024", "annual"},
		"2025-03-31": {"2025", "Q1"},
		"2025-06-30": {"2025", "Q2"},
		"2025-09-30": {"2025", "Q3"},
		"2025-12-31": {"2025", "annual"},
	},
}
