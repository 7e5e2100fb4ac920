package evaluation

import "time"

// ExecutionResult captures the raw outcome of one sandbox run. It is produced
// exactly once per run and never mutated afterwards.
type ExecutionResult struct {
	Stdout   string
	Stderr   string
	ExitCode int64
	TimedOut bool
	Duration time.Duration
}

// TestCaseResult records the outcome of a single test case as reported by the
// harness. Actual is present iff Error is empty.
type TestCaseResult struct {
	Name     string `json:"name"`
	Input    []any  `json:"input"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
	Passed   bool   `json:"passed"`
	Error    string `json:"error,omitempty"`
}

// Status classifies the final outcome of an evaluation.
type Status string

const (
	// StatusCorrect means the submission satisfied the spec completely.
	StatusCorrect Status = "correct"
	// StatusIncorrect means the submission ran but did not match.
	StatusIncorrect Status = "incorrect"
	// StatusError means the evaluation could not produce a trustworthy
	// comparison: infrastructure faults, timeouts, malformed payloads or
	// malformed submissions.
	StatusError Status = "error"
)

// Verdict is the single caller-facing outcome of one evaluation.
type Verdict struct {
	Status    Status
	PassedAll bool
	Report    Report
	RawError  string
}
