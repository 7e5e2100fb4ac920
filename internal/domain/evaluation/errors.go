package evaluation

import (
	"fmt"
	"time"
)

// AllocationError reports a failure to create the evaluation workspace.
type AllocationError struct {
	Path string
	Err  error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("allocate workspace %s: %v", e.Path, e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }

// PermissionError reports a workspace that exists but cannot be written to.
type PermissionError struct {
	Path string
	Err  error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("no write permission for workspace %s", e.Path)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// AssetMissingError reports a required harness template that is not available.
type AssetMissingError struct {
	Name string
}

func (e *AssetMissingError) Error() string {
	return fmt.Sprintf("harness asset %q not found", e.Name)
}

// SandboxUnavailableError reports that the sandbox engine or its base image
// could not be reached before the run started.
type SandboxUnavailableError struct {
	Err error
}

func (e *SandboxUnavailableError) Error() string {
	return fmt.Sprintf("sandbox unavailable: %v", e.Err)
}

func (e *SandboxUnavailableError) Unwrap() error { return e.Err }

// TimeoutError reports a run that exceeded its wall-clock bound and was
// forcibly terminated. Output holds whatever the sandbox produced before the
// kill.
type TimeoutError struct {
	Limit  time.Duration
	Output string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("execution timed out after %s", e.Limit)
}

// PayloadParseError reports harness output that could not be decoded as the
// structured payload. It is always classified as an error verdict, never as
// an incorrect answer.
type PayloadParseError struct {
	Output string
	Err    error
}

func (e *PayloadParseError) Error() string {
	return fmt.Sprintf("parse harness payload: %v", e.Err)
}

func (e *PayloadParseError) Unwrap() error { return e.Err }
