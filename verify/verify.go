// Package verify checks that the LLM-facing artifact llmformat emits is a
// faithful, countable rendering of the raw extracted facts it came from,
// the way the teacher's FactQuery lets a caller re-select facts out of a
// parsed document and check them against an expectation.
package verify

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	edgar "github.com/secfilings/go-edgar-pipeline"
)

// DefaultThreshold is the exact-match coverage floor below which Verify
// reports a failure, matching the 99.5% the financial-pipeline operators
// gate a publish on.
const DefaultThreshold = 0.995

// RawTuple is one fact as it exists in the source document, keyed by
// concept and a human-readable period description rather than the raw
// contextRef/unitRef pair: the rendered artifact consolidates context ids
// into short "c-N" codes and drops unit refs entirely to save tokens, so a
// tuple derived straight from raw contextRef/unitRef strings would never
// match anything parsed back out of the artifact. The period description
// is exactly the string both the renderer and this package compute from a
// Context's Period, so it is the only key that survives the round trip.
type RawTuple struct {
	Concept string
	Period  string
	Value   float64
}

// RawDump is the full set of raw numeric facts extracted from a document,
// the left-hand side Verify compares the parsed-back artifact against.
type RawDump []RawTuple

// DumpFromExtraction builds a RawDump from every numeric, non-hidden fact
// in an extraction. Hidden ix:hidden facts are excluded from the dump, so
// they never count against coverage; the renderer still writes them into
// the artifact's statement section like any other numeric fact.
func DumpFromExtraction(ext *edgar.Extraction) RawDump {
	if ext == nil {
		return nil
	}

	periods := make(map[string]string, len(ext.Contexts))
	for _, c := range ext.Contexts {
		periods[c.ID] = describePeriod(c.Period)
	}

	var dump RawDump
	for _, f := range ext.Facts {
		if f.NonNumeric || f.Hidden || f.NumericValue == nil {
			continue
		}
		dump = append(dump, RawTuple{
			Concept: f.Concept,
			Period:  periods[f.ContextRef],
			Value:   *f.NumericValue,
		})
	}
	return dump
}

func describePeriod(p edgar.Period) string {
	if p.Instant != "" {
		return fmt.Sprintf("instant %s", p.Instant)
	}
	if p.StartDate != "" && p.EndDate != "" {
		return fmt.Sprintf("duration %s to %s", p.StartDate, p.EndDate)
	}
	return "unknown period"
}

var normalizedStatementLine = regexp.MustCompile(`^[^|]+\|([^|]+)\|([^|]+)\|[^|]+\|(.+)$`)

// ParseArtifact recovers the (concept, period, value) tuples llmformat
// wrote into the @NORMALIZED_FINANCIAL_STATEMENTS section of a rendered
// artifact. Every other section is ignored: text blocks and the mapping
// section carry no numeric facts to verify.
func ParseArtifact(artifact string) (RawDump, error) {
	lines := strings.Split(artifact, "\n")
	inSection := false
	var dump RawDump

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "@NORM_STMTS" || trimmed == "@NORMALIZED_FINANCIAL_STATEMENTS":
			inSection = true
			continue
		case strings.HasPrefix(trimmed, "@NORMALIZED_FORMAT"):
			continue
		case strings.HasPrefix(trimmed, "@") && inSection:
			inSection = false
			continue
		}
		if !inSection || trimmed == "" {
			continue
		}

		m := normalizedStatementLine.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		value, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		dump = append(dump, RawTuple{Concept: m[1], Period: m[3], Value: value})
	}
	return dump, nil
}

// Mismatch is one raw fact that the artifact failed to reproduce exactly.
type Mismatch struct {
	Concept string
	Period  string
	Want    float64
	Got     *float64 // nil when the concept/period pair is missing entirely
}

// Report is the outcome of comparing a raw dump against a parsed-back
// artifact.
type Report struct {
	TotalRaw        int
	ExactMatches    int
	ConceptMatches  int
	ExactCoverage   float64
	ConceptCoverage float64
	Mismatches      []Mismatch
}

// CoverageError is returned when ExactCoverage falls below the configured
// threshold.
type CoverageError struct {
	Coverage  float64
	Threshold float64
}

func (e *CoverageError) Error() string {
	return fmt.Sprintf("exact-match coverage %.4f below threshold %.4f", e.Coverage, e.Threshold)
}

const maxSampleMismatches = 20

// Verify parses llmArtifact back into fact tuples and checks it against
// raw, the dump of facts the artifact was rendered from. threshold <= 0
// uses DefaultThreshold. Verify always returns a populated *Report; the
// error return is non-nil only when exact coverage misses the threshold,
// so a caller that only cares about pass/fail can check err alone while
// one that wants the numbers can inspect the report regardless.
func Verify(llmArtifact string, raw RawDump, threshold float64) (*Report, error) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	parsed, err := ParseArtifact(llmArtifact)
	if err != nil {
		return nil, fmt.Errorf("parse artifact: %w", err)
	}

	exactSeen := make(map[string]float64, len(parsed))
	conceptSeen := make(map[string]bool, len(parsed))
	for _, t := range parsed {
		exactSeen[exactKey(t.Concept, t.Period)] = t.Value
		conceptSeen[t.Concept] = true
	}

	rep := &Report{TotalRaw: len(raw)}
	for _, t := range raw {
		key := exactKey(t.Concept, t.Period)
		if got, ok := exactSeen[key]; ok && valuesEqual(got, t.Value) {
			rep.ExactMatches++
		} else if len(rep.Mismatches) < maxSampleMismatches {
			var gotPtr *float64
			if ok {
				g := got
				gotPtr = &g
			}
			rep.Mismatches = append(rep.Mismatches, Mismatch{
				Concept: t.Concept, Period: t.Period, Want: t.Value, Got: gotPtr,
			})
		}
		if conceptSeen[t.Concept] {
			rep.ConceptMatches++
		}
	}

	if rep.TotalRaw > 0 {
		rep.ExactCoverage = float64(rep.ExactMatches) / float64(rep.TotalRaw)
		rep.ConceptCoverage = float64(rep.ConceptMatches) / float64(rep.TotalRaw)
	} else {
		rep.ExactCoverage = 1.0
		rep.ConceptCoverage = 1.0
	}

	sort.Slice(rep.Mismatches, func(i, j int) bool {
		if rep.Mismatches[i].Concept != rep.Mismatches[j].Concept {
			return rep.Mismatches[i].Concept < rep.Mismatches[j].Concept
		}
		return rep.Mismatches[i].Period < rep.Mismatches[j].Period
	})

	if rep.ExactCoverage < threshold {
		return rep, &CoverageError{Coverage: rep.ExactCoverage, Threshold: threshold}
	}
	return rep, nil
}

func exactKey(concept, period string) string { return concept + "\x00" + period }

func valuesEqual(a, b float64) bool {
	const epsilon = 1e-6
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= epsilon
}
