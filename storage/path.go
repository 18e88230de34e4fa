// Package storage derives canonical object-store paths and document ids for
// a processed filing, and publishes the rendered artifact plus its metadata
// record through an object store and a document-metadata store.
package storage

import (
	"fmt"
	"strings"
)

// CanonicalPath returns the object-store key for a filing artifact. Both
// this function and CanonicalDocumentID derive from the same
// (ticker, filingType, fiscalYear, fiscalPeriod) tuple, so a path and its
// document id always agree bit-for-bit and re-deriving either from the
// same inputs is idempotent.
//
// Annual filings omit the fiscal-period path segment entirely
// (companies/AAPL/10-K/2023/llm.txt), quarterly filings include it
// (companies/AAPL/10-Q/2023/Q1/llm.txt).
func CanonicalPath(ticker, filingType, fiscalYear, fiscalPeriod, artifact string) string {
	ticker = strings.ToUpper(ticker)
	if fiscalPeriod == "" || fiscalPeriod == "annual" {
		return fmt.Sprintf("companies/%s/%s/%s/%s", ticker, filingType, fiscalYear, artifact)
	}
	return fmt.Sprintf("companies/%s/%s/%s/%s/%s", ticker, filingType, fiscalYear, fiscalPeriod, artifact)
}

// CanonicalDocumentID returns the document-metadata-store primary key for a
// filing, sharing the same (ticker, filingType, fiscalYear, fiscalPeriod)
// tuple CanonicalPath derives its prefix from.
func CanonicalDocumentID(ticker, filingType, fiscalYear, fiscalPeriod string) string {
	ticker = strings.ToUpper(ticker)
	if fiscalPeriod == "" || fiscalPeriod == "annual" {
		return fmt.Sprintf("%s_%s_%s", ticker, filingType, fiscalYear)
	}
	return fmt.Sprintf("%s_%s_%s_%s", ticker, filingType, fiscalYear, fiscalPeriod)
}
