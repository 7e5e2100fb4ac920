// Package process runs evaluation harnesses as bounded-lifetime host
// processes. It is the degraded mode used when container isolation is
// unavailable; the wall-clock limit is still enforced, but memory, CPU and
// network limits are not.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"github.com/Shounaks/OpenCoderRank/internal/domain/evaluation"
	"github.com/Shounaks/OpenCoderRank/internal/ports"
)

// pipeAbandonDelay bounds how long Wait keeps draining the output pipes after
// the process group is killed. Without it an orphaned grandchild holding the
// inherited pipe ends would block Wait past the wall-clock limit.
const pipeAbandonDelay = time.Second

// Runner implements ports.Sandbox by spawning the harness command directly
// with the workspace as its working directory.
type Runner struct{}

var _ ports.Sandbox = (*Runner)(nil)

// New creates a subprocess Runner.
func New() *Runner {
	return &Runner{}
}

// Close implements ports.Sandbox; the runner holds no long-lived resources.
func (r *Runner) Close() error { return nil }

// Run executes command inside workspaceDir. The command runs in its own
// process group, and the whole group is killed when the wall-clock limit
// expires, so spawned children cannot outlive the run or block it.
func (r *Runner) Run(ctx context.Context, workspaceDir string, command []string, limits evaluation.RunLimits) (*evaluation.ExecutionResult, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("process sandbox: empty command")
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if limits.WallClock > 0 {
		runCtx, cancel = context.WithTimeout(ctx, limits.WallClock)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, command[0], command[1:]...)
	cmd.Dir = workspaceDir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = pipeAbandonDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	result := &evaluation.ExecutionResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: duration,
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		result.TimedOut = true
		result.ExitCode = -1
		return result, nil
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.ExitCode = int64(exitErr.ExitCode())
			return result, nil
		}
		return nil, &evaluation.SandboxUnavailableError{Err: fmt.Errorf("run %s: %w", command[0], runErr)}
	}

	return result, nil
}
