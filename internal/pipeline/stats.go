package pipeline

import "time"

// RunStats tracks aggregate counters across a batch run.
type RunStats struct {
	Total       int
	Current     int
	Processed   int
	Skipped     int
	Failed      int
	Frames      int
	OutputBytes int64
	Elapsed     time.Duration
	Aborted     bool // Stopped by FailurePolicy=abort.
	Interrupted bool // Stopped by context cancellation.
	Rejected    bool // Refused before the first file: the temp dir holds an input.
}

// Stopped reports whether the batch ended before reaching every candidate.
func (s *RunStats) Stopped() bool {
	return s.Aborted || s.Interrupted || s.Rejected
}
