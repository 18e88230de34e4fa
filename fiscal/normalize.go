// Package fiscal is the single source of truth for mapping a company's
// reported period end date to the fiscal year and fiscal period (Q1/Q2/Q3/
// Q4/annual) an LLM-facing artifact should file under.
package fiscal

import (
	"fmt"
	"regexp"
	"time"
)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
var compactDatePattern = regexp.MustCompile(`^\d{8}$`)

// layouts tried in order after the ISO and compact forms fail, mirroring the
// fallback chain a filer's raw metadata can show up in.
var layouts = []string{
	"01/02/2006",
	"2006/01/02",
	"01-02-2006",
	"02-01-2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// Normalize validates a period end date string and returns it in
// YYYY-MM-DD form. It accepts ISO dates, compact YYYYMMDD (common in
// filename-derived metadata), and several slash/dash/month-name formats.
// Normalize is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) (string, error) {
	if raw == "" {
		return "", &InvalidDateFormatError{Raw: raw, Err: fmt.Errorf("empty")}
	}

	if isoDatePattern.MatchString(raw) {
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			return "", &InvalidDateFormatError{Raw: raw, Err: err}
		}
		return raw, nil
	}

	if compactDatePattern.MatchString(raw) {
		if t, err := time.Parse("20060102", raw); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}

	return "", &InvalidDateFormatError{Raw: raw, Err: fmt.Errorf("no recognized layout matched")}
}
