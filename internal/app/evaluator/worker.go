package evaluator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Shounaks/OpenCoderRank/internal/ports"
)

// EvaluateFromSource pulls jobs from the supplied source and evaluates them
// with bounded parallelism. Each job gets its own workspace and sandbox
// instance, so concurrent evaluations share no mutable state.
//
// If maxJobs is greater than zero the loop stops after that many jobs.
// Otherwise it keeps consuming until the context is cancelled or the source
// signals completion via io.EOF.
//
// When onVerdict is provided it is invoked after every evaluation with the
// corresponding job verdict.
func (s *Service) EvaluateFromSource(
	ctx context.Context,
	source ports.JobSource,
	maxJobs int,
	maxParallel int,
	onVerdict func(ports.JobVerdict),
) error {
	if maxParallel <= 0 {
		maxParallel = 1
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxParallel)
	processed := 0

	finish := func(err error) error {
		wg.Wait()
		return err
	}

	for {
		if maxJobs > 0 && processed >= maxJobs {
			return finish(nil)
		}

		job, err := source.NextJob(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
				return finish(nil)
			}

			return finish(fmt.Errorf("get next job: %w", err))
		}

		sem <- struct{}{}
		wg.Add(1)
		processed++
		go func(job ports.Job) {
			defer wg.Done()
			defer func() { <-sem }()

			v := s.Evaluate(ctx, job.Submission, job.Spec)
			if onVerdict != nil {
				onVerdict(ports.JobVerdict{Job: job, Verdict: v})
			}
		}(job)
	}
}
