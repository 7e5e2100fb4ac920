// Package docker runs evaluation harnesses inside ephemeral Docker
// containers via the official SDK.
package docker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	typesimage "github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/Shounaks/OpenCoderRank/internal/domain/evaluation"
	"github.com/Shounaks/OpenCoderRank/internal/ports"
)

// Mountpoint is the fixed in-sandbox path where the workspace is mounted and
// where the harness runs.
const Mountpoint = "/app"

// Config describes how to create a Docker-backed sandbox.
type Config struct {
	// Image is the base image every evaluation container starts from.
	Image string
}

// Runner implements ports.Sandbox on top of ephemeral Docker containers. One
// container is created per run and force-removed on every exit path.
type Runner struct {
	cli   dockerClient
	image string

	pullOnce sync.Once
	pullErr  error
}

var _ ports.Sandbox = (*Runner)(nil)

// New creates a Runner using the Docker client configured by the environment.
func New(cfg Config) (*Runner, error) {
	if cfg.Image == "" {
		return nil, fmt.Errorf("docker sandbox: image must be configured")
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, &evaluation.SandboxUnavailableError{Err: fmt.Errorf("create docker client: %w", err)}
	}

	return newRunner(cli, cfg), nil
}

func newRunner(cli dockerClient, cfg Config) *Runner {
	return &Runner{
		cli:   cli,
		image: cfg.Image,
	}
}

// Close releases the underlying Docker client.
func (r *Runner) Close() error {
	return r.cli.Close()
}

// Run executes command in a fresh container with workspaceDir bind-mounted
// read-write at Mountpoint. A wall-clock overrun forcibly terminates the
// container and is reported through ExecutionResult.TimedOut.
func (r *Runner) Run(ctx context.Context, workspaceDir string, command []string, limits evaluation.RunLimits) (*evaluation.ExecutionResult, error) {
	if err := r.ensureImage(ctx); err != nil {
		return nil, &evaluation.SandboxUnavailableError{Err: err}
	}

	containerID, cleanup, err := r.createContainer(ctx, workspaceDir, command, limits)
	if err != nil {
		return nil, &evaluation.SandboxUnavailableError{Err: err}
	}
	defer cleanup()

	start := time.Now()
	if err := r.cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return nil, &evaluation.SandboxUnavailableError{Err: fmt.Errorf("start container: %w", err)}
	}

	waitCtx := ctx
	var cancel context.CancelFunc
	if limits.WallClock > 0 {
		waitCtx, cancel = context.WithTimeout(ctx, limits.WallClock)
	}
	status, err := r.waitForExit(waitCtx, containerID)
	if cancel != nil {
		cancel()
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && limits.WallClock > 0 && ctx.Err() == nil {
			return r.handleTimeout(containerID, start)
		}
		return nil, err
	}

	logCtx := ctx
	if logCtx.Err() != nil {
		logCtx = context.Background()
	}
	stdout, stderr, err := r.fetchLogs(logCtx, containerID)
	if err != nil {
		return nil, fmt.Errorf("fetch logs: %w", err)
	}

	return &evaluation.ExecutionResult{
		Stdout:   stdout,
		Stderr:   stderr,
		ExitCode: status.StatusCode,
		Duration: time.Since(start),
	}, nil
}

func (r *Runner) ensureImage(ctx context.Context) error {
	r.pullOnce.Do(func() {
		reader, err := r.cli.ImagePull(ctx, r.image, typesimage.PullOptions{})
		if err != nil {
			r.pullErr = fmt.Errorf("pull image %s: %w", r.image, err)
			return
		}
		defer reader.Close()
		if _, err := io.Copy(io.Discard, reader); err != nil {
			r.pullErr = fmt.Errorf("consume pull output for %s: %w", r.image, err)
		}
	})
	return r.pullErr
}

func (r *Runner) createContainer(ctx context.Context, workspaceDir string, command []string, limits evaluation.RunLimits) (string, func(), error) {
	hostConfig := &container.HostConfig{
		Mounts: []mount.Mount{
			{
				Type:   mount.TypeBind,
				Source: workspaceDir,
				Target: Mountpoint,
			},
		},
		Resources: container.Resources{
			CPUQuota:  limits.CPUQuota,
			CPUPeriod: limits.CPUPeriod,
		},
	}
	if limits.MemoryBytes > 0 {
		hostConfig.Resources.Memory = limits.MemoryBytes
		hostConfig.Resources.MemorySwap = limits.MemoryBytes
	}
	if limits.NetworkDisabled {
		hostConfig.NetworkMode = "none"
	}

	resp, err := r.cli.ContainerCreate(
		ctx,
		&container.Config{
			Image:      r.image,
			Cmd:        command,
			WorkingDir: Mountpoint,
		},
		hostConfig,
		nil,
		nil,
		"",
	)
	if err != nil {
		return "", nil, fmt.Errorf("create container: %w", err)
	}

	cleanup := func() {
		_ = r.cli.ContainerRemove(context.Background(), resp.ID, container.RemoveOptions{Force: true})
	}

	return resp.ID, cleanup, nil
}

// handleTimeout stops an overrunning container and salvages whatever output
// it produced before the kill.
func (r *Runner) handleTimeout(containerID string, start time.Time) (*evaluation.ExecutionResult, error) {
	stopCtx, cancelStop := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelStop()

	stopTimeout := 0 // SIGKILL immediately
	if err := r.cli.ContainerStop(stopCtx, containerID, container.StopOptions{Timeout: &stopTimeout}); err != nil && !client.IsErrNotFound(err) {
		return nil, fmt.Errorf("stop container after timeout: %w", err)
	}

	stdout, stderr, err := r.fetchLogs(context.Background(), containerID)
	if err != nil {
		stdout, stderr = "", ""
	}

	return &evaluation.ExecutionResult{
		Stdout:   stdout,
		Stderr:   stderr,
		ExitCode: -1,
		TimedOut: true,
		Duration: time.Since(start),
	}, nil
}

func (r *Runner) waitForExit(ctx context.Context, containerID string) (*container.WaitResponse, error) {
	statusCh, errCh := r.cli.ContainerWait(ctx, containerID, container.WaitConditionNotRunning)
	select {
	case status := <-statusCh:
		if status.Error != nil {
			return nil, fmt.Errorf("container error: %s", status.Error.Message)
		}
		return &status, nil
	case err := <-errCh:
		return nil, fmt.Errorf("wait for container: %w", err)
	case <-ctx.Done():
		return nil, fmt.Errorf("wait for container: %w", ctx.Err())
	}
}

func (r *Runner) fetchLogs(ctx context.Context, containerID string) (stdout, stderr string, err error) {
	logs, err := r.cli.ContainerLogs(ctx, containerID, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return "", "", err
	}
	defer logs.Close()

	var stdoutBuf, stderrBuf bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdoutBuf, &stderrBuf, logs); err != nil {
		return "", "", err
	}

	return stdoutBuf.String(), stderrBuf.String(), nil
}
