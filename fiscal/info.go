package fiscal

import "strings"

// "Q?" is a valid fiscal_period value alongside the four quarters and
// annual: it is the storage coordinator's last-resort placeholder when
// neither a registry match nor caller-supplied metadata can identify which
// quarter a non-10-K filing belongs to.
var validPeriods = map[string]bool{
	"Q1": true, "Q2": true, "Q3": true, "Q4": true, "annual": true, "Q?": true,
}

// PeriodInfo is an immutable, validated fiscal period determination. It can
// only be constructed through NewPeriodInfo, so callers never observe a
// zero-value or partially-populated instance.
type PeriodInfo struct {
	ticker        string
	periodEndDate string
	fiscalYear    string
	fiscalPeriod  string
	filingType    string
	source        string
	confidence    float64
}

func (p PeriodInfo) Ticker() string        { return p.ticker }
func (p PeriodInfo) PeriodEndDate() string  { return p.periodEndDate }
func (p PeriodInfo) FiscalYear() string     { return p.fiscalYear }
func (p PeriodInfo) FiscalPeriod() string   { return p.fiscalPeriod }
func (p PeriodInfo) FilingType() string     { return p.filingType }
func (p PeriodInfo) Source() string         { return p.source }
func (p PeriodInfo) Confidence() float64    { return p.confidence }

// NewPeriodInfo validates every field before returning a PeriodInfo.
// PeriodEndDate must already be normalized (caller runs Normalize first);
// this constructor only checks shape, not parseability.
func NewPeriodInfo(ticker, periodEndDate, fiscalYear, fiscalPeriod, filingType, source string, confidence float64) (PeriodInfo, error) {
	if ticker == "" {
		return PeriodInfo{}, &DataError{Field: "ticker", Reason: "must not be empty"}
	}
	if !isoDatePattern.MatchString(periodEndDate) {
		return PeriodInfo{}, &DataError{Field: "period_end_date", Reason: "must be YYYY-MM-DD"}
	}
	if fiscalYear == "" {
		return PeriodInfo{}, &DataError{Field: "fiscal_year", Reason: "must not be empty"}
	}
	if !validPeriods[fiscalPeriod] {
		return PeriodInfo{}, &DataError{Field: "fiscal_period", Reason: "must be one of Q1, Q2, Q3, Q4, annual, Q?"}
	}
	if filingType != "" && filingType != "10-K" && filingType != "10-Q" {
		return PeriodInfo{}, &DataError{Field: "filing_type", Reason: "must be 10-K or 10-Q"}
	}
	if confidence < 0.0 || confidence > 1.0 {
		return PeriodInfo{}, &DataError{Field: "confidence", Reason: "must be between 0.0 and 1.0"}
	}

	return PeriodInfo{
		ticker:        strings.ToUpper(ticker),
		periodEndDate: periodEndDate,
		fiscalYear:    fiscalYear,
		fiscalPeriod:  fiscalPeriod,
		filingType:    filingType,
		source:        source,
		confidence:    confidence,
	}, nil
}
