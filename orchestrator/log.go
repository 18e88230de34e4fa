package orchestrator

import (
	"os"

	"github.com/rs/zerolog"
)

// NewLogger builds the run's structured logger, one short present-tense
// event per pipeline stage in place of the teacher's bare
// fmt.Fprintf(os.Stderr, ...) progress lines — the same call sites, now
// logger calls, since a concurrent pool interleaves several filings'
// progress on stderr at once and plain text stops being enough to tell
// them apart.
func NewLogger(runID string) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().
		Timestamp().
		Str("run_id", runID).
		Logger()
}
