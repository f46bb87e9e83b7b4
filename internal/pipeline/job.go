package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/backmassage/rawflow/internal/naming"
)

// State is a step in the per-file lifecycle.
type State string

const (
	StatePending          State = "pending"
	StateResultDirChecked State = "result-dir-checked"
	StateSkipped          State = "skipped" // Terminal: result directory already present.
	StateTempPrepared     State = "temp-prepared"
	StateDNGsExtracted    State = "dngs-extracted"
	StateProxyGenerated   State = "proxy-generated"
	StateFinalizedMoved   State = "finalized-moved"
	StateDone             State = "done"   // Terminal: result directory in place.
	StateFailed           State = "failed" // Terminal: staging left behind, no result directory.
)

// Job is one input file moving through the pipeline. It lives for a single
// Process call.
type Job struct {
	RunID      string
	Source     string
	ResultDir  string // Final location; its existence marks the source as done.
	StagingDir string // Where the result is assembled before the rename.
	TempDir    string // Staging dir, or the shared scratch directory.

	State   State
	History []State

	Frames      int
	ProxyFile   string
	PosterFile  string
	SourceBytes int64
	OutputBytes int64
	Started     time.Time
	Finished    time.Time
}

// NewJob derives the directories for source under outputDir (empty means
// beside the source).
func NewJob(source, outputDir string) *Job {
	result := naming.ResultDir(outputDir, source)
	return &Job{
		RunID:      uuid.NewString(),
		Source:     source,
		ResultDir:  result,
		StagingDir: naming.StagingDir(result),
		State:      StatePending,
		History:    []State{StatePending},
	}
}

// ShortID is the first block of RunID, for log lines.
func (j *Job) ShortID() string {
	if len(j.RunID) >= 8 {
		return j.RunID[:8]
	}
	return j.RunID
}

// advance moves the job to next, rejecting edges the lifecycle does not have.
func (j *Job) advance(next State) error {
	if !isValidTransition(j.State, next) {
		return fmt.Errorf("invalid transition: %s -> %s", j.State, next)
	}
	j.State = next
	j.History = append(j.History, next)
	return nil
}

// fail marks the job failed from any non-terminal state.
func (j *Job) fail() {
	if isTerminal(j.State) {
		return
	}
	j.State = StateFailed
	j.History = append(j.History, StateFailed)
}

func isTerminal(s State) bool {
	return s == StateSkipped || s == StateDone || s == StateFailed
}

// isValidTransition enforces the allowed lifecycle edges. Proxy generation
// is optional, so extraction may go straight to finalization.
func isValidTransition(from, to State) bool {
	switch from {
	case StatePending:
		return to == StateResultDirChecked || to == StateSkipped
	case StateResultDirChecked:
		return to == StateTempPrepared
	case StateTempPrepared:
		return to == StateDNGsExtracted
	case StateDNGsExtracted:
		return to == StateProxyGenerated || to == StateFinalizedMoved
	case StateProxyGenerated:
		return to == StateFinalizedMoved
	case StateFinalizedMoved:
		return to == StateDone
	default:
		return false
	}
}
