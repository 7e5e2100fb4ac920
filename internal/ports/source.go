package ports

import (
	"context"

	"github.com/Shounaks/OpenCoderRank/internal/domain/evaluation"
)

// Job pairs a learner submission with the spec it is checked against.
type Job struct {
	ID         string
	Submission evaluation.Submission
	Spec       evaluation.TestSpec
}

// JobVerdict is the outcome of one evaluated job.
type JobVerdict struct {
	Job     Job
	Verdict evaluation.Verdict
}

// JobSource provides evaluation jobs to a worker service. NextJob blocks
// until a job is available, the context ends, or the source signals
// completion via io.EOF.
type JobSource interface {
	NextJob(ctx context.Context) (Job, error)
}
