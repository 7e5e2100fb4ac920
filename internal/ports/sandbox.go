package ports

import (
	"context"

	"github.com/Shounaks/OpenCoderRank/internal/domain/evaluation"
)

// Sandbox executes a prepared harness inside an isolated environment under
// hard resource limits. Implementations must remove the sandbox on every exit
// path and must terminate forcibly when the wall-clock limit expires; a
// timeout is reported through ExecutionResult.TimedOut, never by blocking.
type Sandbox interface {
	// Run executes command with workspaceDir available as the sandbox working
	// directory. It returns the captured output, or an error when the run
	// could not be started at all.
	Run(ctx context.Context, workspaceDir string, command []string, limits evaluation.RunLimits) (*evaluation.ExecutionResult, error)
	Close() error
}
