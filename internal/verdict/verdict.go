// Package verdict turns raw sandbox output into the final evaluation outcome.
// Malformed or partial payloads are always classified as errors: a garbled
// run can never become a false "correct".
package verdict

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Shounaks/OpenCoderRank/internal/domain/evaluation"
)

const (
	summaryAllPassed  = "All tests passed!"
	summarySomeFailed = "Some tests failed."
)

// FromCode normalizes the result of a code-submission run. wantCases is the
// length of the instructor's test-case sequence; a payload of any other
// length is rejected rather than trusted.
func FromCode(res *evaluation.ExecutionResult, wantCases int, limits evaluation.RunLimits) evaluation.Verdict {
	if res.TimedOut {
		return FromFailure(&evaluation.TimeoutError{Limit: limits.WallClock, Output: combinedOutput(res)})
	}
	if res.ExitCode != 0 {
		return evaluation.Verdict{
			Status:   evaluation.StatusIncorrect,
			Report:   evaluation.Report{Failure: "Error during code execution: " + combinedOutput(res)},
			RawError: combinedOutput(res),
		}
	}

	results, err := parseCodePayload(res.Stdout)
	if err != nil {
		return FromFailure(err)
	}
	if len(results) != wantCases {
		return FromFailure(&evaluation.PayloadParseError{
			Output: res.Stdout,
			Err:    fmt.Errorf("expected %d test results, payload has %d", wantCases, len(results)),
		})
	}

	passedAll := true
	for _, r := range results {
		if !r.Passed {
			passedAll = false
		}
	}

	status := evaluation.StatusIncorrect
	summary := summarySomeFailed
	if passedAll {
		status = evaluation.StatusCorrect
		summary = summaryAllPassed
	}

	return evaluation.Verdict{
		Status:    status,
		PassedAll: passedAll,
		Report:    evaluation.Report{Summary: summary, Tests: results},
	}
}

// FromQuery normalizes the result of a query-submission run. Any fault
// captured inside the sandbox forces an error verdict, even when the
// captured result sets happen to match.
func FromQuery(res *evaluation.ExecutionResult, limits evaluation.RunLimits) evaluation.Verdict {
	if res.TimedOut {
		return FromFailure(&evaluation.TimeoutError{Limit: limits.WallClock, Output: combinedOutput(res)})
	}
	if res.ExitCode != 0 {
		return evaluation.Verdict{
			Status:   evaluation.StatusIncorrect,
			Report:   evaluation.Report{Failure: "Error during SQL execution: " + combinedOutput(res)},
			RawError: combinedOutput(res),
		}
	}

	payload, err := parseQueryPayload(res.Stdout)
	if err != nil {
		return FromFailure(err)
	}

	outcome := &evaluation.QueryOutcome{
		UserCols:      payload.UserCols,
		UserRows:      payload.UserRows,
		ReferenceCols: payload.ReferenceCols,
		ReferenceRows: payload.ReferenceRows,
	}

	if payload.Error != "" {
		outcome.Err = payload.Error
		return evaluation.Verdict{
			Status:   evaluation.StatusError,
			Report:   evaluation.Report{Query: outcome},
			RawError: payload.Error,
		}
	}

	outcome.Matched = columnsEqual(payload.UserCols, payload.ReferenceCols) &&
		rowsEqual(payload.UserRows, payload.ReferenceRows)

	status := evaluation.StatusIncorrect
	summary := summarySomeFailed
	if outcome.Matched {
		status = evaluation.StatusCorrect
		summary = summaryAllPassed
	}

	return evaluation.Verdict{
		Status:    status,
		PassedAll: outcome.Matched,
		Report:    evaluation.Report{Summary: summary, Query: outcome},
	}
}

// FromChoice compares a single-choice selection without any sandbox run. A
// non-numeric or out-of-range selection is an error, not a wrong answer.
func FromChoice(selected string, options []string, correctIndex int) evaluation.Verdict {
	index, err := strconv.Atoi(strings.TrimSpace(selected))
	if err != nil {
		return evaluation.Verdict{
			Status:   evaluation.StatusError,
			Report:   evaluation.Report{Failure: "Invalid answer format."},
			RawError: fmt.Sprintf("selection %q is not a number", selected),
		}
	}
	if index < 0 || index >= len(options) {
		return evaluation.Verdict{
			Status:   evaluation.StatusError,
			Report:   evaluation.Report{Failure: "Selected option is out of range."},
			RawError: fmt.Sprintf("selection %d outside options [0, %d)", index, len(options)),
		}
	}

	outcome := &evaluation.ChoiceOutcome{
		Selected:    index,
		Correct:     correctIndex,
		CorrectText: "N/A",
		Matched:     index == correctIndex,
	}
	if correctIndex >= 0 && correctIndex < len(options) {
		outcome.CorrectText = options[correctIndex]
	}

	status := evaluation.StatusIncorrect
	if outcome.Matched {
		status = evaluation.StatusCorrect
	}

	return evaluation.Verdict{
		Status:    status,
		PassedAll: outcome.Matched,
		Report:    evaluation.Report{Choice: outcome},
	}
}

// FromFailure maps an evaluation fault onto an error verdict with a
// human-readable report. Every failure path still renders.
func FromFailure(err error) evaluation.Verdict {
	v := evaluation.Verdict{
		Status:   evaluation.StatusError,
		RawError: err.Error(),
	}

	var timeout *evaluation.TimeoutError
	var parse *evaluation.PayloadParseError
	switch {
	case errors.As(err, &timeout):
		v.Report = evaluation.Report{Failure: fmt.Sprintf("Execution timed out (%s).", timeout.Limit)}
		if timeout.Output != "" {
			v.RawError = timeout.Output
		}
	case errors.As(err, &parse):
		v.Report = evaluation.Report{Failure: "Error parsing evaluation output."}
		v.RawError = parse.Output
	default:
		v.Report = evaluation.Report{Failure: err.Error()}
	}

	return v
}

func combinedOutput(res *evaluation.ExecutionResult) string {
	if res.Stderr == "" {
		return res.Stdout
	}
	if res.Stdout == "" {
		return res.Stderr
	}
	return strings.TrimRight(res.Stdout, "\n") + "\n" + res.Stderr
}
